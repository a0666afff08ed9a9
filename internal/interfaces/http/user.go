package http

import (
	"errors"
	"log"
	"net/http"

	"horizon/internal/domain/user"
	"horizon/internal/shared/middleware"
)

// UserHandler exposes the current-user lookup.
type UserHandler struct {
	users *user.Service
}

func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{users: users}
}

// HandleMe resolves the directory record behind the session cookie.
// Anonymous callers get a 200 with a null user, not an error, so clients can
// probe session state without special-casing failures.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	u, err := h.users.CurrentUser(r.Context(), middleware.SessionSecret(r.Context()))
	if err != nil {
		if errors.Is(err, user.ErrNoSession) || errors.Is(err, user.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"user": nil})
			return
		}
		log.Printf("Error resolving current user: %v", err)
		writeError(w, http.StatusBadGateway, "Failed to resolve current user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// currentUser resolves the authenticated user for handlers that require one.
// It writes the error response itself and reports success via ok.
func currentUser(w http.ResponseWriter, r *http.Request, users *user.Service) (*user.User, bool) {
	u, err := users.CurrentUser(r.Context(), middleware.SessionSecret(r.Context()))
	if err != nil {
		if errors.Is(err, user.ErrNoSession) || errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return nil, false
		}
		log.Printf("Error resolving current user: %v", err)
		writeError(w, http.StatusBadGateway, "Failed to resolve current user")
		return nil, false
	}
	return u, true
}
