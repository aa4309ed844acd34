package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmi/dashboard/internal/domain"
	"github.com/vmi/dashboard/internal/modules/contributions"
	testingpkg "github.com/vmi/dashboard/internal/testing"
)

func TestHandleList(t *testing.T) {
	db := testingpkg.NewMemoryDB(t)
	repo := contributions.NewRepository(db, zerolog.Nop())
	accountID := testingpkg.SeedAccount(t, db, 1, "401k")
	_, err := repo.Insert(context.Background(), db.Conn(), &domain.ContributionSchedule{
		UserID: 1, AccountID: accountID, Amount: 250, Frequency: "biweekly",
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(repo, 1, zerolog.Nop()).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contribution-schedules", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success   bool `json:"success"`
		Schedules []struct {
			Frequency string  `json:"frequency"`
			NextDue   *string `json:"nextDue"`
			Amount    float64 `json:"amount"`
		} `json:"schedules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Schedules, 1)
	assert.Equal(t, "biweekly", body.Schedules[0].Frequency)
	assert.Equal(t, 250.0, body.Schedules[0].Amount)
	assert.NotNil(t, body.Schedules[0].NextDue)
}
