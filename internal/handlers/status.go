package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"akatsuki.pw/bancho/internal/config"
)

// StatusHandler handles requests for the general system status.
// It is intended primarily for API clients and monitoring tools.
type StatusHandler struct {
	cfg *config.AppConfig
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(cfg *config.AppConfig) *StatusHandler {
	return &StatusHandler{cfg: cfg}
}

// RegisterRoutes registers the system status endpoints with the Chi router.
// It registers routes under both `/status` and `/api/status` for compatibility.
func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.GetSystemStatus)
	r.Get("/api/status", h.GetSystemStatus)
}

// GetSystemStatus returns the current operational status of the system.
// It checks for maintenance mode and provides a consistent JSON response.
func (h *StatusHandler) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	var statusText, messageText string

	if h.cfg.MaintenanceMode {
		statusText = "unavailable"
		messageText = "Service is temporarily unavailable due to maintenance."
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		statusText = "available"
		messageText = "System is operating normally."
		w.WriteHeader(http.StatusOK)
	}

	response := map[string]interface{}{
		"maintenance_enabled": h.cfg.MaintenanceMode,
		"status":              statusText,
		"message":             messageText,
	}

	RespondWithJSON(w, 0, response)
}
