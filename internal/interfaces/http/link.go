package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"horizon/internal/domain/link"
	"horizon/internal/domain/user"
)

// LinkHandler drives the bank-link handshake for the authenticated user.
type LinkHandler struct {
	links *link.Service
	users *user.Service
}

func NewLinkHandler(links *link.Service, users *user.Service) *LinkHandler {
	return &LinkHandler{links: links, users: users}
}

// HandleCreateToken issues an ephemeral token for the client-side link flow.
func (h *LinkHandler) HandleCreateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	u, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	token, err := h.links.CreateLinkToken(r.Context(), u)
	if err != nil {
		log.Printf("Error creating link token for user %s: %v", u.ID, err)
		writeError(w, http.StatusBadGateway, "Failed to create link token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"linkToken": token})
}

type exchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

// HandleExchange completes the link handshake for a public token produced by
// the client-side flow.
func (h *LinkHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	u, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PublicToken == "" {
		writeError(w, http.StatusBadRequest, "publicToken is required")
		return
	}

	created, err := h.links.ExchangePublicToken(r.Context(), u, req.PublicToken)
	if err != nil {
		if errors.Is(err, link.ErrAmbiguousAccounts) {
			writeError(w, http.StatusConflict, "Linked item has multiple accounts")
			return
		}
		var stepErr *link.StepError
		if errors.As(err, &stepErr) {
			log.Printf("Link handshake failed for user %s at step %s: %v", u.ID, stepErr.Step, stepErr.Err)
		} else {
			log.Printf("Link handshake failed for user %s: %v", u.ID, err)
		}
		writeError(w, http.StatusBadGateway, "Failed to complete bank link")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"bank": created})
}
