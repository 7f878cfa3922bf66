package resendotp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"internship_portal/internal/auth"
	resp "internship_portal/internal/lib/api/response"
	sl "internship_portal/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	resp.Response
	Message string `json:"message"`
}

// New re-issues a verification code. The endpoint answers 200 whether or
// not the email belongs to an unverified account, so it cannot be used to
// probe which addresses are registered.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resendotp.New"

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

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if err := authService.ResendOTP(ctx, req.Email); err != nil {
			log.Error("failed to resend otp", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "If the account is pending verification, a new OTP has been sent.",
		})
	}
}
