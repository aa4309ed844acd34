package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmi/dashboard/internal/modules/accounts"
	"github.com/vmi/dashboard/internal/modules/holdings"
	"github.com/vmi/dashboard/internal/modules/transactions"
	testingpkg "github.com/vmi/dashboard/internal/testing"
)

func TestTransactionRoutes(t *testing.T) {
	db := testingpkg.NewMemoryDB(t)
	log := zerolog.Nop()
	svc := transactions.NewService(db, transactions.NewRepository(db, log), accounts.NewRepository(db, log), holdings.NewRepository(db, log), log)
	accountID := testingpkg.SeedAccount(t, db, 1, "IRA")

	r := chi.NewRouter()
	NewHandler(svc, 1, log).RegisterRoutes(r)

	body := `{"accountId":` + strconv.FormatInt(accountID, 10) + `,"transactionType":"buy","transactionDate":"2025-01-02","symbol":"bnd","shares":3,"price":70}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, true, created["success"])
	assert.NotEmpty(t, created["uuid"])
	assert.NotZero(t, created["transactionId"])

	req = httptest.NewRequest(http.MethodGet, "/transactions/?accountId="+strconv.FormatInt(accountID, 10)+"&symbol=BND", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Success      bool `json:"success"`
		Transactions []struct {
			Symbol string `json:"symbol"`
		} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Transactions, 1)
	assert.Equal(t, "BND", listed.Transactions[0].Symbol)

	req = httptest.NewRequest(http.MethodPost, "/transactions/", strings.NewReader(`{"transactionType":"BUY"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/transactions/?accountId=x", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
