package actions

import (
	"encoding/json"
	"net/http"

	"github.com/careloop/frontdesk/pkg/logging"
)

// Handler serves the dispatch endpoint.
type Handler struct {
	dispatcher *Dispatcher
	logger     *logging.Logger
}

// NewHandler creates the HTTP handler over a dispatcher.
func NewHandler(dispatcher *Dispatcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{dispatcher: dispatcher, logger: logger}
}

// Perform handles POST /api/actions.
func (h *Handler) Perform(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{"error": "Invalid JSON"})
		return
	}
	resp, status := h.dispatcher.Dispatch(r.Context(), req)
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
