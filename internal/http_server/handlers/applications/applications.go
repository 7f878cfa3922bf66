package applications

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	resp "internship_portal/internal/lib/api/response"
	sl "internship_portal/internal/lib/logger"
	"internship_portal/internal/models"
	"internship_portal/internal/students"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type SubmitRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"required,email"`
	CollegeName string `json:"college_name" validate:"required"`
	Course      string `json:"course" validate:"required"`
	YearOfStudy int    `json:"year_of_study" validate:"required,min=1,max=6"`
}

type SubmitResponse struct {
	resp.Response
	Application models.StudentApplication `json:"application"`
}

type ListResponse struct {
	resp.Response
	Applications []models.StudentApplication `json:"applications"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending under_review accepted rejected"`
}

type StatusResponse struct {
	resp.Response
	Application models.StudentApplication `json:"application"`
}

func Submit(
	log *slog.Logger,
	validate *validator.Validate,
	service *students.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.applications.Submit"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req SubmitRequest

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

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		app, err := service.Submit(ctx, models.StudentApplication{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			CollegeName: req.CollegeName,
			Course:      req.Course,
			YearOfStudy: req.YearOfStudy,
		})
		if err != nil {
			log.Error("failed to submit application", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, SubmitResponse{
			Response:    resp.OK(),
			Application: app,
		})
	}
}

func List(
	log *slog.Logger,
	service *students.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.applications.List"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		apps, err := service.List(ctx)
		if err != nil {
			log.Error("failed to list applications", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, ListResponse{
			Response:     resp.OK(),
			Applications: apps,
		})
	}
}

func UpdateStatus(
	log *slog.Logger,
	validate *validator.Validate,
	service *students.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.applications.UpdateStatus"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Application not found"))

			return
		}

		var req StatusRequest

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

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		app, err := service.UpdateStatus(ctx, id, req.Status)
		if err != nil {
			if errors.Is(err, students.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Application not found"))

				return
			}

			log.Error("failed to update status", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, StatusResponse{
			Response:    resp.OK(),
			Application: app,
		})
	}
}
