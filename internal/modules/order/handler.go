package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmbondo/kitanda-backend/internal/modules/partner"
)

// Handler exposes checkout HTTP endpoints.
type Handler struct {
	service Service
	auth    func(http.Handler) http.Handler
}

func NewHandler(service Service, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/create-payment", h.createPayment)
		r.Get("/payment-reference/{merchantTransactionId}", h.paymentReference)
		r.Get("/", h.listOrders)
	})
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partner.IDFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := h.service.CreatePayment(r.Context(), partnerID, req)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// 202: the charge is created asynchronously, poll for the reference.
	respond(w, http.StatusAccepted, resp)
}

func (h *Handler) paymentReference(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partner.IDFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	mtxID := chi.URLParam(r, "merchantTransactionId")

	ref, err := h.service.GetPaymentReference(r.Context(), partnerID, mtxID)
	switch {
	case errors.Is(err, ErrNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, ErrReferencePending):
		respond(w, http.StatusAccepted, map[string]string{"status": "pending"})
	case errors.Is(err, ErrChargeFailed):
		respond(w, http.StatusGone, map[string]string{"error": "charge creation failed"})
	case err != nil:
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		respond(w, http.StatusOK, ref)
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partner.IDFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	orders, err := h.service.ListPartnerOrders(r.Context(), partnerID)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
