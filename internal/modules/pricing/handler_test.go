package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) InvalidateAll(ctx context.Context) error {
	f.calls++
	return f.err
}

func passthroughAuth(next http.Handler) http.Handler { return next }

func uploadSheet(t *testing.T, invalidator *fakeInvalidator, logger *zap.Logger) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	NewHandler(NewIngestor(newMemoryRepo(), zap.NewNop()), invalidator, passthroughAuth, logger).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/upload",
		strings.NewReader("ARZ-25,18000,20000,50\n"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadInvalidatesPageCache(t *testing.T) {
	invalidator := &fakeInvalidator{}

	rec := uploadSheet(t, invalidator, zap.NewNop())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, invalidator.calls)
}

func TestUploadLogsFailedInvalidation(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	invalidator := &fakeInvalidator{err: errors.New("redis down")}

	rec := uploadSheet(t, invalidator, zap.New(core))

	// The rows are already persisted; a failed invalidation is logged,
	// not surfaced to the uploader.
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("cache invalidation after stock upload failed").Len())
}
