package transactions

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmi/dashboard/internal/domain"
	"github.com/vmi/dashboard/internal/modules/accounts"
	"github.com/vmi/dashboard/internal/modules/holdings"
	testingpkg "github.com/vmi/dashboard/internal/testing"
)

func f(v float64) *float64 { return &v }

func newService(t *testing.T) (*Service, *holdings.Repository, int64) {
	t.Helper()

	db := testingpkg.NewMemoryDB(t)
	log := zerolog.Nop()
	holdingsRepo := holdings.NewRepository(db, log)
	svc := NewService(db, NewRepository(db, log), accounts.NewRepository(db, log), holdingsRepo, log)
	accountID := testingpkg.SeedAccount(t, db, 1, "Brokerage")
	return svc, holdingsRepo, accountID
}

func TestPostRequest_Validate(t *testing.T) {
	valid := PostRequest{
		AccountID:       1,
		TransactionType: "buy",
		TransactionDate: "2025-01-15",
		Symbol:          " vti ",
		Shares:          f(2),
		Price:           f(100),
	}

	tx, err := valid.Validate(7)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeBuy, tx.TransactionType)
	assert.Equal(t, "VTI", *tx.Symbol)
	assert.Equal(t, int64(7), tx.UserID)

	tests := []struct {
		name  string
		field string
		edit  func(p *PostRequest)
	}{
		{"missing account", "accountId", func(p *PostRequest) { p.AccountID = 0 }},
		{"missing type", "transactionType", func(p *PostRequest) { p.TransactionType = " " }},
		{"unknown type", "transactionType", func(p *PostRequest) { p.TransactionType = "SWAP" }},
		{"missing date", "transactionDate", func(p *PostRequest) { p.TransactionDate = "" }},
		{"bad date", "transactionDate", func(p *PostRequest) { p.TransactionDate = "15/01/2025" }},
		{"missing symbol", "symbol", func(p *PostRequest) { p.Symbol = "" }},
		{"zero shares", "shares", func(p *PostRequest) { p.Shares = f(0) }},
		{"missing price", "price", func(p *PostRequest) { p.Price = nil }},
		{"negative fees", "fees", func(p *PostRequest) { p.Fees = f(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.edit(&p)
			_, err := p.Validate(1)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPostRequest_ValidateBaselineNeedsNoInstrument(t *testing.T) {
	p := PostRequest{AccountID: 1, TransactionType: "baseline", TransactionDate: "2025-01-15"}
	tx, err := p.Validate(1)
	require.NoError(t, err)
	assert.Nil(t, tx.Symbol)
}

func TestApplyTrade(t *testing.T) {
	sym := "VTI"
	h := &domain.Holding{Symbol: &sym}

	buy := &domain.Transaction{TransactionType: domain.TransactionTypeBuy, Shares: f(10), Price: f(100), Fees: 5}
	require.NoError(t, ApplyTrade(h, buy))
	assert.InDelta(t, 10, *h.TotalShares, 1e-9)
	assert.InDelta(t, 1005, h.TotalCostBasis, 1e-9)
	assert.InDelta(t, 100.5, *h.AvgCostPerShare, 1e-9)

	sell := &domain.Transaction{TransactionType: domain.TransactionTypeSell, Shares: f(4), Price: f(120)}
	require.NoError(t, ApplyTrade(h, sell))
	assert.InDelta(t, 6, *h.TotalShares, 1e-9)
	assert.InDelta(t, 603, h.TotalCostBasis, 1e-9)
	assert.InDelta(t, 100.5, *h.AvgCostPerShare, 1e-9)

	oversell := &domain.Transaction{TransactionType: domain.TransactionTypeSell, Shares: f(7), Price: f(120)}
	assert.True(t, domain.IsValidationError(ApplyTrade(h, oversell)))
	assert.InDelta(t, 6, *h.TotalShares, 1e-9)

	all := &domain.Transaction{TransactionType: domain.TransactionTypeSell, Shares: f(6), Price: f(120)}
	require.NoError(t, ApplyTrade(h, all))
	assert.Equal(t, 0.0, *h.TotalShares)
	assert.Equal(t, 0.0, h.TotalCostBasis)
	assert.Nil(t, h.AvgCostPerShare)
}

func TestApplyTrade_ValueSnapshotRejected(t *testing.T) {
	sym := "VTI"
	for _, shares := range []*float64{nil, f(0)} {
		h := &domain.Holding{Symbol: &sym, TotalShares: shares, TotalCostBasis: 5000, IsBaseline: true}

		buy := &domain.Transaction{TransactionType: domain.TransactionTypeBuy, Shares: f(1), Price: f(250)}
		err := ApplyTrade(h, buy)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "symbol", ve.Field)
		assert.Equal(t, 5000.0, h.TotalCostBasis)
		assert.Equal(t, shares, h.TotalShares)

		sell := &domain.Transaction{TransactionType: domain.TransactionTypeSell, Shares: f(1), Price: f(250)}
		assert.True(t, domain.IsValidationError(ApplyTrade(h, sell)))
	}
}

func TestService_PostBuyOnValueSnapshotRollsBack(t *testing.T) {
	svc, holdingsRepo, accountID := newService(t)
	ctx := context.Background()
	sym := "VTI"

	_, err := holdingsRepo.Create(ctx, svc.db.Conn(), &domain.Holding{
		UserID: 1, AccountID: accountID, Symbol: &sym, TotalCostBasis: 5000, IsBaseline: true,
	})
	require.NoError(t, err)

	_, err = svc.Post(ctx, 1, PostRequest{
		AccountID: accountID, TransactionType: "BUY", TransactionDate: "2025-03-10",
		Symbol: "VTI", Shares: f(1), Price: f(250),
	})
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, 0, testingpkg.CountRows(t, svc.db.Conn(), "transactions"))

	h, err := holdingsRepo.GetByAccountSymbol(ctx, svc.db.Conn(), accountID, "VTI")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, h.TotalCostBasis)
	assert.Zero(t, h.Shares())

	eval := holdings.Evaluate(*h, f(250))
	assert.Nil(t, eval.Gain)
}

func TestService_PostBuyThenSell(t *testing.T) {
	svc, holdingsRepo, accountID := newService(t)
	ctx := context.Background()

	buy, err := svc.Post(ctx, 1, PostRequest{
		AccountID: accountID, TransactionType: "BUY", TransactionDate: "2025-01-02",
		Symbol: "vti", Shares: f(10), Price: f(200),
	})
	require.NoError(t, err)
	assert.NotZero(t, buy.ID)
	assert.Len(t, buy.UUID, 36)

	h, err := holdingsRepo.GetByAccountSymbol(ctx, svc.db.Conn(), accountID, "VTI")
	require.NoError(t, err)
	assert.InDelta(t, 10, *h.TotalShares, 1e-9)
	assert.InDelta(t, 2000, h.TotalCostBasis, 1e-9)

	_, err = svc.Post(ctx, 1, PostRequest{
		AccountID: accountID, TransactionType: "SELL", TransactionDate: "2025-02-02",
		Symbol: "VTI", Shares: f(5), Price: f(220),
	})
	require.NoError(t, err)

	h, err = holdingsRepo.GetByAccountSymbol(ctx, svc.db.Conn(), accountID, "VTI")
	require.NoError(t, err)
	assert.InDelta(t, 5, *h.TotalShares, 1e-9)
	assert.InDelta(t, 1000, h.TotalCostBasis, 1e-9)

	list, err := svc.List(ctx, 1, Filter{Symbol: "vti"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.TransactionTypeSell, list[0].TransactionType)
	assert.Equal(t, domain.TransactionTypeBuy, list[1].TransactionType)
}

func TestService_PostOversellRollsBack(t *testing.T) {
	svc, _, accountID := newService(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, 1, PostRequest{
		AccountID: accountID, TransactionType: "SELL", TransactionDate: "2025-01-02",
		Symbol: "VTI", Shares: f(1), Price: f(200),
	})
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, 0, testingpkg.CountRows(t, svc.db.Conn(), "transactions"))
	assert.Equal(t, 0, testingpkg.CountRows(t, svc.db.Conn(), "holdings"))
}

func TestService_PostUnknownAccount(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Post(context.Background(), 1, PostRequest{
		AccountID: 999, TransactionType: "DIVIDEND", TransactionDate: "2025-01-02",
		Symbol: "VTI", Shares: f(1), Price: f(0.5),
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "accountId", ve.Field)
}

func TestService_PostDividendLeavesHoldingsAlone(t *testing.T) {
	svc, _, accountID := newService(t)

	_, err := svc.Post(context.Background(), 1, PostRequest{
		AccountID: accountID, TransactionType: "dividend", TransactionDate: "2025-03-01",
		Symbol: "VTI", Shares: f(10), Price: f(0.8),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, testingpkg.CountRows(t, svc.db.Conn(), "transactions"))
	assert.Equal(t, 0, testingpkg.CountRows(t, svc.db.Conn(), "holdings"))
}
