package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmbondo/kitanda-backend/internal/modules/order"
)

// Handler exposes the payment webhook endpoint. It is unauthenticated:
// the gateway signs its callbacks and unknown transaction ids are
// rejected without side effects.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/webhooks/payment", h.webhook)
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	_, err := h.service.HandleWebhook(r.Context(), payload)
	switch {
	case errors.Is(err, ErrMissingFields):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, order.ErrNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
	case err != nil:
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		respond(w, http.StatusOK, map[string]string{"status": "received"})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
