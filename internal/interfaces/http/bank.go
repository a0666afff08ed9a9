package http

import (
	"errors"
	"log"
	"net/http"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/user"
)

// BankHandler exposes bank-link record queries.
type BankHandler struct {
	banks *bank.Service
	users *user.Service
}

func NewBankHandler(banks *bank.Service, users *user.Service) *BankHandler {
	return &BankHandler{banks: banks, users: users}
}

// HandleListBanks returns all bank links owned by the authenticated user.
func (h *BankHandler) HandleListBanks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	u, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	banks, err := h.banks.GetBanks(r.Context(), u.ID)
	if err != nil {
		log.Printf("Error listing banks for user %s: %v", u.ID, err)
		writeError(w, http.StatusBadGateway, "Failed to list banks")
		return
	}
	if banks == nil {
		banks = []*bank.Bank{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"banks": banks})
}

// HandleBankByID returns one bank link by record id. Records owned by other
// users are reported as absent, not forbidden.
func (h *BankHandler) HandleBankByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	u, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Bank ID is required")
		return
	}

	b, err := h.banks.GetBank(r.Context(), id)
	if err != nil {
		if errors.Is(err, bank.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bank not found")
			return
		}
		log.Printf("Error fetching bank %s: %v", id, err)
		writeError(w, http.StatusBadGateway, "Failed to fetch bank")
		return
	}
	if b.UserID != u.ID {
		writeError(w, http.StatusNotFound, "Bank not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bank": b})
}

// HandleBankByAccountID resolves the bank link holding an external account
// id. Ambiguous account ids resolve to not-found.
func (h *BankHandler) HandleBankByAccountID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	u, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	accountID := r.PathValue("accountId")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "Account ID is required")
		return
	}

	b, err := h.banks.GetBankByAccountID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, bank.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bank not found")
			return
		}
		log.Printf("Error resolving bank for account %s: %v", accountID, err)
		writeError(w, http.StatusBadGateway, "Failed to resolve bank")
		return
	}
	if b.UserID != u.ID {
		writeError(w, http.StatusNotFound, "Bank not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bank": b})
}
