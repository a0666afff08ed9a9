package main

import (
	"log"
	"net/http"

	httphandlers "horizon/internal/interfaces/http"
	"horizon/internal/shared/config"
	"horizon/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/sign-up", deps.AuthHandler.HandleSignUp)
	mux.HandleFunc("/api/auth/sign-in", deps.AuthHandler.HandleSignIn)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Session-aware routes; each handler resolves the caller itself
	mux.HandleFunc("/api/users/me", deps.UserHandler.HandleMe)
	mux.HandleFunc("/api/link/token", deps.LinkHandler.HandleCreateToken)
	mux.HandleFunc("/api/link/exchange", deps.LinkHandler.HandleExchange)
	mux.HandleFunc("/api/banks", deps.BankHandler.HandleListBanks)
	mux.HandleFunc("/api/banks/by-account/{accountId}", deps.BankHandler.HandleBankByAccountID)
	mux.HandleFunc("/api/banks/{id}", deps.BankHandler.HandleBankByID)
	mux.HandleFunc("/api/dashboard", deps.DashboardHandler.HandleDashboard)

	// Apply global middleware
	var handler http.Handler = middleware.Session(mux)
	if cfg.Telemetry.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(handler))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
