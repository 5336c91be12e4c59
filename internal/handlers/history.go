package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eldtechnologies/wisp/internal/models"
)

// HistoryResponse represents the conversation history response.
type HistoryResponse struct {
	Messages []models.Message `json:"messages"`
}

// GetHistory handles fetching the conversation between two users.
// The pair is unordered: /messages/a/b and /messages/b/a return the same
// conversation, oldest message first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userA := chi.URLParam(r, "userA")
	userB := chi.URLParam(r, "userB")

	if userA == "" || userB == "" {
		h.Error(w, http.StatusBadRequest, "both user ids are required")
		return
	}

	messages, err := h.messages.History(r.Context(), userA, userB)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	h.JSON(w, http.StatusOK, HistoryResponse{Messages: messages})
}
