package middleware

import (
	"context"
	"net/http"
)

type ContextKey string

// SessionSecretKey holds the opaque session secret issued by the identity
// backend for the current request, if any.
const SessionSecretKey ContextKey = "session_secret"

// SessionCookieName is the cookie carrying the identity backend's session secret.
const SessionCookieName = "horizon_session"

// Session extracts the session cookie and stores its secret in the request
// context. Anonymous requests pass through untouched; each handler decides
// whether it tolerates the absence of a session.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			ctx := context.WithValue(r.Context(), SessionSecretKey, cookie.Value)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// SessionSecret returns the session secret for the request, or "" if the
// caller is anonymous.
func SessionSecret(ctx context.Context) string {
	secret, _ := ctx.Value(SessionSecretKey).(string)
	return secret
}

// SetSessionCookie issues the session cookie with the attribute set required
// for the identity secret: path=/, HttpOnly, SameSite=Strict, Secure.
func SetSessionCookie(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
