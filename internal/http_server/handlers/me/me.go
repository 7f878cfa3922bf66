package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"internship_portal/internal/auth"
	"internship_portal/internal/http_server/middleware/authn"
	resp "internship_portal/internal/lib/api/response"
	sl "internship_portal/internal/lib/logger"
	"internship_portal/internal/models"
	"internship_portal/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	models.UserProfile
}

func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.me.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		claims, ok := authn.FromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("unauthenticated"))

			return
		}

		userID, err := claims.UserID()
		if err != nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("unauthenticated"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := authService.UserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("unauthenticated"))

				return
			}

			log.Error("failed to load user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response:    resp.OK(),
			UserProfile: user.Profile(),
		})
	}
}
