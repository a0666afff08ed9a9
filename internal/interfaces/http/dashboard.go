package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/dashboard"
	"horizon/internal/domain/user"
)

// DashboardHandler composes the home view for the authenticated user.
type DashboardHandler struct {
	dashboards *dashboard.Service
	users      *user.Service
}

func NewDashboardHandler(dashboards *dashboard.Service, users *user.Service) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, users: users}
}

// HandleDashboard returns the composed dashboard. Query parameters: id picks
// the bank whose transactions to show (defaults to the first account) and
// page selects the 1-based transactions page.
//
// A user with no linked accounts gets an empty view, not an error.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	u, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	view, err := h.dashboards.Compose(r.Context(), u, r.URL.Query().Get("id"), page)
	if err != nil {
		if errors.Is(err, dashboard.ErrNoAccounts) {
			writeJSON(w, http.StatusOK, emptyView(page))
			return
		}
		if errors.Is(err, bank.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bank not found")
			return
		}
		log.Printf("Error composing dashboard for user %s: %v", u.ID, err)
		writeError(w, http.StatusBadGateway, "Failed to compose dashboard")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func emptyView(page int) *dashboard.View {
	return &dashboard.View{
		Summary: dashboard.Summary{
			Accounts: []dashboard.Account{},
		},
		Transactions: []dashboard.Transaction{},
		Page:         page,
		TotalPages:   1,
	}
}
