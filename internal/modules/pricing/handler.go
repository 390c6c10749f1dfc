package pricing

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CacheInvalidator lets the ingestion endpoint drop cached catalog
// pages after a stock sheet upload without this package knowing about
// the cache implementation.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Handler exposes the stock-sheet ingestion endpoint.
type Handler struct {
	ingestor *Ingestor
	cache    CacheInvalidator
	auth     func(http.Handler) http.Handler
	logger   *zap.Logger
}

func NewHandler(ingestor *Ingestor, cache CacheInvalidator, auth func(http.Handler) http.Handler, logger *zap.Logger) *Handler {
	return &Handler{ingestor: ingestor, cache: cache, auth: auth, logger: logger}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/v1/stock/upload", h.upload)
	})
}

// upload ingests a CSV body of sku,price_b2b,price_b2c[,stock] rows.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	report, err := h.ingestor.Ingest(r.Context(), r.Body)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]interface{}{
			"error":  err.Error(),
			"report": report,
		})
		return
	}

	// Cached pages may show stale stock flags until dropped.
	if err := h.cache.InvalidateAll(r.Context()); err != nil {
		h.logger.Warn("cache invalidation after stock upload failed", zap.Error(err))
	}

	respond(w, http.StatusOK, report)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
