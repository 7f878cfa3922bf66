package verifyotp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"internship_portal/internal/auth"
	resp "internship_portal/internal/lib/api/response"
	sl "internship_portal/internal/lib/logger"
	"internship_portal/internal/lib/otp"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type Response struct {
	resp.Response
	Message string `json:"message"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verifyotp.New"

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

		code, err := otp.ParseCode(req.OTP)
		if err != nil {
			log.Warn("non-numeric otp supplied")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("OTP must be numeric"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := authService.VerifyOTP(ctx, req.Email, code); err != nil {
			switch {
			case errors.Is(err, auth.ErrOTPExpired):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("OTP expired"))
			case errors.Is(err, auth.ErrInvalidOTP):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Invalid OTP"))
			default:
				log.Error("failed to verify otp", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("otp verified")

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "OTP verified successfully",
		})
	}
}
