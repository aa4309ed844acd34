package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTransactionType(t *testing.T) {
	assert.Equal(t, TransactionTypeBuy, ParseTransactionType(" buy "))
	assert.Equal(t, TransactionTypeBaseline, ParseTransactionType("Baseline"))
	assert.False(t, TransactionTypeBaseline.RequiresInstrument())
	assert.True(t, TransactionTypeSell.RequiresInstrument())
}

func TestHolding_Accessors(t *testing.T) {
	var h Holding
	assert.Equal(t, "", h.SymbolOrEmpty())
	assert.Equal(t, 0.0, h.Shares())

	sym := " VTI "
	shares := 4.5
	h = Holding{Symbol: &sym, TotalShares: &shares}
	assert.Equal(t, "VTI", h.SymbolOrEmpty())
	assert.Equal(t, 4.5, h.Shares())
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create baseline: %w", NewValidationError("accountValue", "must be positive"))

	assert.True(t, IsValidationError(err))
	assert.EqualError(t, err, "create baseline: accountValue: must be positive")

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "accountValue", ve.Field)

	assert.False(t, IsValidationError(ErrNotFound))
	assert.Equal(t, "bad input", (&ValidationError{Reason: "bad input"}).Error())
}
