package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvoiceStatus(t *testing.T) {
	for _, status := range Statuses {
		parsed, err := ParseInvoiceStatus(" " + string(status) + " ")
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	parsed, err := ParseInvoiceStatus("OVERDUE")
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, parsed)

	for _, value := range []string{"", "draft", "cancelled"} {
		_, err := ParseInvoiceStatus(value)
		assert.ErrorIs(t, err, ErrInvalidStatus, value)
	}
}

func TestBalance(t *testing.T) {
	inv := Invoice{
		TotalAmount: decimal.RequireFromString("1000.00"),
		PaidAmount:  decimal.RequireFromString("400.00"),
	}
	assert.True(t, decimal.RequireFromString("600").Equal(inv.Balance()))

	inv.PaidAmount = inv.TotalAmount
	assert.True(t, inv.Balance().IsZero())
}

func TestAmountsEncodeAsNumbers(t *testing.T) {
	raw, err := json.Marshal(Invoice{TotalAmount: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalAmount":12.5`)
}
