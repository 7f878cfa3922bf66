package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"internship_portal/internal/auth"
	"internship_portal/internal/captcha"
	"internship_portal/internal/http_server/cookies"
	resp "internship_portal/internal/lib/api/response"
	sl "internship_portal/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username       string `json:"username" validate:"required"`
	Pass           string `json:"password" validate:"required"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`
}

type Response struct {
	resp.Response
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"status"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
	captchaVerifier captcha.Verifier,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

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

		pair, user, err := authService.Login(ctx, req.Username, req.Pass)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrNotVerified):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Account not verified"))
			case errors.Is(err, auth.ErrInvalidCredentials):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Invalid credentials"))
			default:
				log.Error("failed to login user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		cookies.SetAccess(w, pair.Access, authService.AccessTTL())
		cookies.SetRefresh(w, pair.Refresh, authService.RefreshTTL())

		log.Info("User logged in successfully")

		render.JSON(w, r, Response{
			Response: resp.OK(),
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role(),
		})
	}
}
