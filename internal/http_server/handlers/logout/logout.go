package logout

import (
	"log/slog"
	"net/http"

	"internship_portal/internal/http_server/cookies"
	resp "internship_portal/internal/lib/api/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Message string `json:"message"`
}

// New clears both session cookies. Tokens are stateless, so the refresh
// token stays technically valid until its own expiry; logout only removes
// it from the client.
func New(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		cookies.Clear(w)

		log.Info("user logged out")

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "Logged out successfully",
		})
	}
}
