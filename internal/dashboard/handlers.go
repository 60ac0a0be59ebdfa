package dashboard

import (
	"encoding/json"
	"net/http"
)

// Handler содержит HTTP обработчики дашборда
type Handler struct {
	service *Service
}

// NewHandler создаёт новый handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGetDashboard обрабатывает GET /v1/dashboard.
// Всегда 200: состояние вида передаётся в поле state.
func (h *Handler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	view := h.service.Load(r.Context(), r.Header.Get("Authorization"))
	h.sendJSON(w, http.StatusOK, view)
}

// sendJSON отправляет JSON ответ
func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
