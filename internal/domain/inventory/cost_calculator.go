package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// El resultado se redondea a 2 decimales, igual que el costo persistido del producto.
// El divisor se calcula en decimal, así que no desborda aunque la suma supere int64.
func CostCalculator(stockActual int64, costoActual decimal.Decimal, cantEntrada int64, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual < 0 || cantEntrada < 0 || (stockActual == 0 && cantEntrada == 0) {
		return decimal.Zero
	}
	sum := decimal.NewFromInt(stockActual).Add(decimal.NewFromInt(cantEntrada))
	num := decimal.NewFromInt(stockActual).Mul(costoActual).
		Add(decimal.NewFromInt(cantEntrada).Mul(costoEntrada))
	return num.Div(sum).Round(2)
}
