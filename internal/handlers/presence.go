package handlers

import "net/http"

// OnlineResponse represents the presence snapshot response.
type OnlineResponse struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// GetOnline handles the read-side presence query: the sorted set of users
// currently holding a live connection.
func (h *Handler) GetOnline(w http.ResponseWriter, r *http.Request) {
	users := h.presence.Online()
	h.JSON(w, http.StatusOK, OnlineResponse{
		Users: users,
		Count: len(users),
	})
}
