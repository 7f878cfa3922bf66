package authn

import (
	"context"
	"log/slog"
	"net/http"

	resp "internship_portal/internal/lib/api/response"
	"internship_portal/internal/lib/jwt"
	"internship_portal/internal/models"

	"github.com/go-chi/render"
)

type ctxKey struct{}

// New authenticates requests by the access cookie. Claims land in the
// request context; anything without a valid access token gets a 401.
func New(log *slog.Logger, tokens *jwt.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("access")
			if err != nil {
				unauthenticated(w, r)
				return
			}

			claims, err := tokens.Parse(cookie.Value, jwt.KindAccess)
			if err != nil {
				log.Debug("rejected access token", slog.String("op", "authn"))
				unauthenticated(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates admin routes to staff and superuser roles. Must run
// after New.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		if !ok {
			unauthenticated(w, r)
			return
		}

		if claims.Role != models.RoleStaff && claims.Role != models.RoleSuperuser {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, resp.Error("forbidden"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func FromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(*jwt.Claims)
	return claims, ok
}

func unauthenticated(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error("unauthenticated"))
}
