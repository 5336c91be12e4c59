package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eldtechnologies/wisp/internal/relay"
	"github.com/eldtechnologies/wisp/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	messages store.MessageStore
	presence *relay.Coordinator
}

// NewHandler creates a new Handler with the given store and coordinator.
func NewHandler(messages store.MessageStore, presence *relay.Coordinator) *Handler {
	return &Handler{messages: messages, presence: presence}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
