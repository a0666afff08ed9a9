package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"horizon/internal/domain/user"
	"horizon/internal/shared/middleware"
)

// AuthHandler handles registration, sign-in and logout.
type AuthHandler struct {
	users *user.Service
}

func NewAuthHandler(users *user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

// HandleSignUp registers a new user and opens a session for it.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var params user.SignUpParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if params.Email == "" || params.Password == "" || params.FirstName == "" || params.LastName == "" {
		writeError(w, http.StatusBadRequest, "email, password, firstName and lastName are required")
		return
	}

	u, session, err := h.users.SignUp(r.Context(), params)
	if err != nil {
		log.Printf("Error signing up %s: %v", params.Email, err)
		writeError(w, http.StatusBadGateway, "Failed to sign up")
		return
	}

	middleware.SetSessionCookie(w, session.Secret)
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignIn exchanges credentials for a session cookie.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, session, err := h.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("Error signing in %s: %v", req.Email, err)
		writeError(w, http.StatusBadGateway, "Failed to sign in")
		return
	}

	middleware.SetSessionCookie(w, session.Secret)
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// HandleLogout invalidates the session server-side and expires the cookie.
// The cookie is cleared even when the backend no longer knows the session.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	secret := middleware.SessionSecret(r.Context())
	if err := h.users.Logout(r.Context(), secret); err != nil && !errors.Is(err, user.ErrNoSession) {
		log.Printf("Error deleting session: %v", err)
	}

	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
