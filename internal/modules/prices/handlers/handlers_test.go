package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmi/dashboard/internal/modules/prices"
	testingpkg "github.com/vmi/dashboard/internal/testing"
)

func newRouter() chi.Router {
	svc := prices.NewService(testingpkg.NewMockQuoteProvider().
		WithPrice("VTI", 250, "2025-03-07").
		WithPrice("BND", 72.5, "2025-03-07"), zerolog.Nop())
	r := chi.NewRouter()
	NewHandler(svc, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func TestHandleGetPrices(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/prices?tickers=vti,bnd,zzz", nil)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                  `json:"success"`
		Prices  map[string]priceEntry `json:"prices"`
		Errors  map[string]string     `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, 250.0, body.Prices["VTI"].Price)
	require.NotNil(t, body.Prices["BND"].AsOf)
	assert.Equal(t, "2025-03-07", *body.Prices["BND"].AsOf)
	assert.Contains(t, body.Errors["ZZZ"], "no price")
}

func TestHandleGetPrices_NoTickers(t *testing.T) {
	for _, path := range []string{"/prices", "/prices?tickers=,,"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		newRouter().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, path)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		errs, ok := body["errors"].(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, errs["_global"])
	}
}
