package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"internship_portal/internal/auth"
	"internship_portal/internal/captcha"
	resp "internship_portal/internal/lib/api/response"
	sl "internship_portal/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username       string `json:"username" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Pass           string `json:"password" validate:"required,min=8"`
	FirstName      string `json:"firstName" validate:"required"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`
}

type Response struct {
	resp.Response
	Message string `json:"message"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
	captchaVerifier captcha.Verifier,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if !captchaVerifier.Verify(ctx, req.RecaptchaToken) {
			log.Warn("captcha verification failed")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid reCAPTCHA"))

			return
		}

		userID, err := authService.Register(ctx, req.Email, req.Username, req.FirstName, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Email already registered"))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User registered", slog.Int64("id", userID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "User registered. OTP sent to email.",
		})
	}
}
