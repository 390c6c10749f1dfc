package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jmbondo/kitanda-backend/internal/modules/partner"
)

// Handler exposes the catalog HTTP endpoints.
type Handler struct {
	service  Service
	syncer   *Syncer
	partners partner.Service
	auth     func(http.Handler) http.Handler
}

func NewHandler(service Service, syncer *Syncer, partners partner.Service, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, syncer: syncer, partners: partners, auth: auth}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/api/v1/products", h.listProducts)
		r.Post("/api/v1/catalog/sync", h.syncCatalog)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partner.IDFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	// The pricing context is never cached with the page: it comes from
	// the partner row on every request.
	pctx, err := h.partners.PricingContext(r.Context(), partnerID)
	if err != nil {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unknown partner"})
		return
	}

	q := Query{
		CategoryID: r.URL.Query().Get("category_id"),
		Page:       intParam(r, "page", 1),
		PerPage:    intParam(r, "per_page", 20),
		Search:     r.URL.Query().Get("search"),
	}

	page, err := h.service.BrowseProducts(r.Context(), q, pctx)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, page)
}

func (h *Handler) syncCatalog(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncer.SyncAll(r.Context())
	if err != nil {
		respond(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, report)
}

func intParam(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
