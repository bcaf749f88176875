package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ReceiptLine línea del comprobante con los datos del producto resueltos.
type ReceiptLine struct {
	ProductName string
	SKU         string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// ReceiptData todo lo que necesita el generador para dibujar el comprobante.
type ReceiptData struct {
	StoreName   string
	Sale        *entity.Sale
	CashierName string
	Lines       []ReceiptLine
}

// ReceiptGenerator genera el comprobante de venta (PDF) y devuelve sus bytes.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

// SalesExporter serializa las ventas de un rango para el sistema de reportes.
// Devuelve el documento y un digest SHA-256 (hex) de su forma canónica.
type SalesExporter interface {
	ExportSales(ctx context.Context, from, to time.Time, sales []*entity.Sale) (doc []byte, digest string, err error)
}
