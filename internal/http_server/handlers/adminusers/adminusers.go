package adminusers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"internship_portal/internal/auth"
	resp "internship_portal/internal/lib/api/response"
	sl "internship_portal/internal/lib/logger"
	"internship_portal/internal/models"
	"internship_portal/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type ListResponse struct {
	resp.Response
	Users []models.UserProfile `json:"users"`
}

type UpdateRequest struct {
	IsActive *bool `json:"is_active"`
	IsStaff  *bool `json:"is_staff"`
}

type UpdateResponse struct {
	resp.Response
	models.UserProfile
}

func List(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminusers.List"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		users, err := authService.Users(ctx)
		if err != nil {
			log.Error("failed to list users", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		profiles := make([]models.UserProfile, 0, len(users))
		for _, u := range users {
			profiles = append(profiles, u.Profile())
		}

		render.JSON(w, r, ListResponse{
			Response: resp.OK(),
			Users:    profiles,
		})
	}
}

// Update partially updates the two admin-managed flags. OTP and password
// fields are never reachable through this path.
func Update(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminusers.Update"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("User not found"))

			return
		}

		var req UpdateRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := authService.UpdateUserFlags(ctx, userID, req.IsActive, req.IsStaff)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("User not found"))

				return
			}

			log.Error("failed to update user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("user flags updated", slog.Int64("uid", userID))

		render.JSON(w, r, UpdateResponse{
			Response:    resp.OK(),
			UserProfile: user.Profile(),
		})
	}
}
