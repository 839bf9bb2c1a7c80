package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"akatsuki.pw/bancho/internal/login"
)

// BanchoHandler serves the single bancho wire endpoint: POST / with an
// osu-token header drains a session's queued packets, without one it's a
// login attempt.
type BanchoHandler struct {
	controller *login.Controller
}

// NewBanchoHandler creates a new BanchoHandler.
func NewBanchoHandler(controller *login.Controller) *BanchoHandler {
	return &BanchoHandler{controller: controller}
}

// RegisterRoutes registers the bancho endpoint with the Chi router.
func (h *BanchoHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Handle)
}

// Handle dispatches to either the packet-drain path or the login path
// depending on the osu-token header, matching bancho_endpoint exactly.
func (h *BanchoHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if tokenID := r.Header.Get("osu-token"); tokenID != "" {
		result := h.controller.HandlePacketRequest(tokenID)
		writeBanchoResponse(w, result)
		return
	}

	result, err := h.controller.Login(r.Context(), body, r)
	if err != nil {
		log.Printf("[LOGIN] login attempt failed: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to process login")
		return
	}
	writeBanchoResponse(w, result)
}

func writeBanchoResponse(w http.ResponseWriter, result login.Result) {
	w.Header().Set("cho-token", result.ChoToken)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}
