package cookies

import (
	"net/http"
	"time"
)

const (
	AccessName  = "access"
	RefreshName = "refresh"
)

// Session tokens travel only as HttpOnly cookies; the server never reads
// them from a request body. SameSite=None because the frontend is served
// from a different origin.
func SetAccess(w http.ResponseWriter, token string, ttl time.Duration) {
	set(w, AccessName, token, int(ttl.Seconds()))
}

func SetRefresh(w http.ResponseWriter, token string, ttl time.Duration) {
	set(w, RefreshName, token, int(ttl.Seconds()))
}

// Clear expires both session cookies unconditionally.
func Clear(w http.ResponseWriter) {
	set(w, AccessName, "", -1)
	set(w, RefreshName, "", -1)
}

func set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
