package compat

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverterToUSD(t *testing.T) {
	conv := DefaultConverter()

	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"usd identity", "30.00", "USD", "30.00"},
		{"eur", "100.00", "EUR", "110.00"},
		{"jpy", "5000", "JPY", "35.00"},
		{"jpy rounding", "1234", "JPY", "8.64"},
		{"gbp", "10.00", "GBP", "12.70"},
		{"cad", "10.00", "CAD", "7.30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := NewAuditTrail()
			amount := decimal.RequireFromString(tt.amount)
			got := conv.ToUSD(amount, tt.currency, audit)
			assert.Equal(t, tt.want, got.StringFixed(2))
			assert.False(t, audit.HasWarnings())
		})
	}
}

func TestConverterUnknownCurrencyFallback(t *testing.T) {
	conv := DefaultConverter()
	audit := NewAuditTrail()

	got := conv.ToUSD(decimal.RequireFromString("42.00"), "XCD", audit)
	assert.Equal(t, "42.00", got.StringFixed(2))
	require.True(t, audit.HasWarnings())
	assert.Contains(t, audit.Warnings[0], "Unknown currency 'XCD'")
}

func TestNewConverterValidation(t *testing.T) {
	_, err := NewConverter(nil)
	assert.Error(t, err)

	_, err = NewConverter(map[string]string{"EUR": "1.10"})
	assert.Error(t, err, "missing USD")

	_, err = NewConverter(map[string]string{"USD": "one"})
	assert.Error(t, err, "non-numeric rate")

	conv, err := NewConverter(map[string]string{"USD": "1.0", "EUR": "1.10"})
	require.NoError(t, err)
	assert.True(t, conv.HasRate("EUR"))
	assert.False(t, conv.HasRate("JPY"))
}
