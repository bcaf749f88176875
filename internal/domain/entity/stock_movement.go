package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIn         = "in"         // entrada
	MovementTypeOut        = "out"        // salida
	MovementTypeAdjustment = "adjustment" // ajuste a valor absoluto
)

// StockMovement registro inmutable de un cambio de stock.
// Quantity es siempre el delta con signo aplicado al stock: +q en entradas, -q en salidas,
// (objetivo - anterior) en ajustes. StockBefore/StockAfter guardan los valores absolutos.
type StockMovement struct {
	ID          string
	ProductID   string
	Type        string
	Quantity    int64
	StockBefore int64
	StockAfter  int64
	ReferenceID string // ID de la venta que lo originó (vacío si es manual)
	Note        string
	ActorID     string // usuario que registró el movimiento
	CreatedAt   time.Time
}

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}
