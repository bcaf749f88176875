// Package sales contiene las reglas de dinero de una venta (totales y vuelto).
package sales

import "github.com/shopspring/decimal"

// Line cantidad y precio unitario de una línea de venta.
type Line struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

// LineTotal devuelve quantity × unitPrice a 2 decimales.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(2)
}

// Total suma los totales de línea. Se redondea cada línea y la suma, ambos a 2 decimales.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	return total.Round(2)
}

// Change devuelve max(0, received - total).
func Change(received, total decimal.Decimal) decimal.Decimal {
	diff := received.Sub(total)
	if diff.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return diff.Round(2)
}
