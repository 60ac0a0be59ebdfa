package effect

import (
	"encoding/json"
	"net/http"
)

// Handler содержит HTTP обработчики страницы ожидаемого эффекта
type Handler struct {
	service *Service
}

// NewHandler создаёт новый handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGetEffect обрабатывает GET /v1/effect.
// Нет токена — state=unauthenticated без запроса к backend.
func (h *Handler) HandleGetEffect(w http.ResponseWriter, r *http.Request) {
	view := h.service.Load(r.Context(), r.Header.Get("Authorization"))
	h.sendJSON(w, http.StatusOK, view)
}

// sendJSON отправляет JSON ответ
func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
