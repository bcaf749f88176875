package sales_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain/sales"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTotal_DosLineas(t *testing.T) {
	total := sales.Total([]sales.Line{
		{Quantity: 2, UnitPrice: dec("10.00")},
		{Quantity: 1, UnitPrice: dec("8.00")},
	})
	assert.True(t, total.Equal(dec("28.00")), "total esperado 28.00, obtenido %s", total)
	assert.Equal(t, "28.00", total.StringFixed(2))
}

func TestTotal_SinDerivaDecimal(t *testing.T) {
	// 0.10 * 3 + 0.20 con float64 no da 0.50 exacto; con decimal sí.
	total := sales.Total([]sales.Line{
		{Quantity: 3, UnitPrice: dec("0.10")},
		{Quantity: 1, UnitPrice: dec("0.20")},
	})
	assert.True(t, total.Equal(dec("0.50")))
}

func TestLineTotal(t *testing.T) {
	assert.True(t, sales.LineTotal(5, dec("10.00")).Equal(dec("50.00")))
	assert.True(t, sales.LineTotal(3, dec("19.99")).Equal(dec("59.97")))
}

func TestChange(t *testing.T) {
	cases := []struct {
		name     string
		received string
		total    string
		want     string
	}{
		{"con vuelto", "30.00", "28.00", "2.00"},
		{"pago exacto", "28.00", "28.00", "0"},
		{"pago menor se limita a cero", "20.00", "28.00", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sales.Change(dec(tc.received), dec(tc.total))
			assert.True(t, got.Equal(dec(tc.want)), "vuelto esperado %s, obtenido %s", tc.want, got)
			assert.False(t, got.IsNegative())
		})
	}
}
