package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

const (
	defaultSalesLimit = 50
	maxSalesLimit     = 200
	maxExportSales    = 10000
)

// SalesQueryUseCase consultas de ventas ya confirmadas: detalle, listado, comprobante y exportación.
type SalesQueryUseCase struct {
	sales     repository.SaleRepository
	products  repository.ProductRepository
	users     repository.UserRepository
	receipts  ReceiptGenerator
	exporter  SalesExporter
	storeName string
}

// NewSalesQueryUseCase construye el caso de uso. receipts y exporter pueden ser nil
// si la instalación no los usa; en ese caso Receipt y Export devuelven error.
func NewSalesQueryUseCase(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	receipts ReceiptGenerator,
	exporter SalesExporter,
	storeName string,
) *SalesQueryUseCase {
	return &SalesQueryUseCase{
		sales:     sales,
		products:  products,
		users:     users,
		receipts:  receipts,
		exporter:  exporter,
		storeName: storeName,
	}
}

// GetSale devuelve la venta con sus líneas.
func (uc *SalesQueryUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	return s, nil
}

// ListSales lista ventas en [from, to), más reciente primero. Un to cero significa "hasta ahora".
func (uc *SalesQueryUseCase) ListSales(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	if limit <= 0 {
		limit = defaultSalesLimit
	}
	if limit > maxSalesLimit {
		limit = maxSalesLimit
	}
	if offset < 0 {
		offset = 0
	}
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	return uc.sales.ListByDateRange(ctx, from, to, limit, offset)
}

// Receipt genera el PDF del comprobante de la venta.
func (uc *SalesQueryUseCase) Receipt(ctx context.Context, saleID string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, fmt.Errorf("receipt: generador no configurado")
	}

	// ── 1. Cargar venta ──
	sale, err := uc.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	// ── 2. Resolver cajero y productos ──
	data := ReceiptData{StoreName: uc.storeName, Sale: sale, CashierName: sale.CashierID}
	if u, err := uc.users.GetByID(ctx, sale.CashierID); err != nil {
		return nil, fmt.Errorf("receipt: obtener cajero: %w", err)
	} else if u != nil {
		data.CashierName = u.Name
	}
	for _, it := range sale.Items {
		line := ReceiptLine{
			ProductName: it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		}
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("receipt: obtener producto: %w", err)
		}
		if p != nil {
			line.ProductName = p.Name
			line.SKU = p.SKU
		}
		data.Lines = append(data.Lines, line)
	}

	// ── 3. Generar PDF ──
	pdf, err := uc.receipts.GenerateReceipt(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("receipt: generar pdf: %w", err)
	}
	return pdf, nil
}

// Export serializa las ventas de [from, to) y devuelve el documento con su digest.
func (uc *SalesQueryUseCase) Export(ctx context.Context, from, to time.Time) ([]byte, string, error) {
	if uc.exporter == nil {
		return nil, "", fmt.Errorf("export: exportador no configurado")
	}
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, "", err
	}
	list, err := uc.sales.ListByDateRange(ctx, from, to, maxExportSales, 0)
	if err != nil {
		return nil, "", fmt.Errorf("export: listar ventas: %w", err)
	}
	return uc.exporter.ExportSales(ctx, from, to, list)
}

func normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = time.Now().UTC().Add(time.Second)
	}
	if !from.IsZero() && !from.Before(to) {
		return from, to, fmt.Errorf("%w: from debe ser anterior a to", domain.ErrInvalidInput)
	}
	return from.UTC(), to.UTC(), nil
}
