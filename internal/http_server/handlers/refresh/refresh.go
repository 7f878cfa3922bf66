package refresh

import (
	"errors"
	"log/slog"
	"net/http"

	"internship_portal/internal/auth"
	"internship_portal/internal/http_server/cookies"
	resp "internship_portal/internal/lib/api/response"
	"internship_portal/internal/lib/jwt"
	sl "internship_portal/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Message string `json:"message"`
}

// New reissues the access cookie from a valid refresh cookie. The refresh
// cookie is left untouched.
func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.refresh.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		cookie, err := r.Cookie(cookies.RefreshName)
		if err != nil {
			log.Warn("no refresh token cookie")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("No refresh token"))

			return
		}

		access, err := authService.RefreshAccess(cookie.Value)
		if err != nil {
			if errors.Is(err, jwt.ErrInvalidToken) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Invalid token"))

				return
			}

			log.Error("failed to refresh access token", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		cookies.SetAccess(w, access, authService.AccessTTL())

		log.Info("access token refreshed")

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "Token refreshed",
		})
	}
}
