package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	domainsales "github.com/jhoicas/pos-api/internal/domain/sales"
)

var tracer = otel.Tracer("pos-api/sales")

// SaleLineInput una línea del carrito.
type SaleLineInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// CreateSaleInput entrada del motor de ventas. CashierID es también el actor de los movimientos.
type CreateSaleInput struct {
	CashierID      string
	PaymentMethod  string
	AmountReceived decimal.Decimal
	Lines          []SaleLineInput
}

// Validate revisa cantidades, precios y método de pago. No consulta la BD.
func (in CreateSaleInput) Validate() error {
	if strings.TrimSpace(in.CashierID) == "" {
		return fmt.Errorf("%w: cajero requerido", domain.ErrInvalidInput)
	}
	if !entity.IsValidPaymentMethod(in.PaymentMethod) {
		return fmt.Errorf("%w: método de pago %q inválido (cash, card, digital)", domain.ErrInvalidInput, in.PaymentMethod)
	}
	if !in.AmountReceived.IsPositive() {
		return fmt.Errorf("%w: el monto recibido debe ser mayor a 0", domain.ErrInvalidInput)
	}
	if !hasCents(in.AmountReceived) {
		return fmt.Errorf("%w: el monto recibido admite máximo 2 decimales", domain.ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return fmt.Errorf("%w: línea %d sin product_id", domain.ErrInvalidInput, i+1)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: línea %d: la cantidad debe ser mayor a 0", domain.ErrInvalidInput, i+1)
		}
		if !l.UnitPrice.IsPositive() || !hasCents(l.UnitPrice) {
			return fmt.Errorf("%w: línea %d: el precio unitario debe ser mayor a 0 con máximo 2 decimales", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

func hasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Policy reglas configurables del motor de ventas.
type Policy struct {
	AllowUnderpayment bool // si es false, recibido < total se rechaza con ErrInsufficientPayment
	ValidateCashier   bool // si es true, el cajero debe existir y estar activo
}

// CreateSaleUseCase procesa un checkout completo como una sola unidad de trabajo:
// valida todas las líneas con bloqueo de fila, guarda cabecera y líneas y descuenta stock.
type CreateSaleUseCase struct {
	txRunner   inventory.TxRunner
	ledger     *inventory.Ledger
	dispatcher *events.Dispatcher
	policy     Policy
	now        func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.Ledger,
	dispatcher *events.Dispatcher,
	policy Policy,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:   txRunner,
		ledger:     ledger,
		dispatcher: dispatcher,
		policy:     policy,
		now:        time.Now,
	}
}

// NewTransactionID genera TXN-<yyyyMMddHHmmss UTC>-<8 hex aleatorios>.
func NewTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

// CreateSale ejecuta la venta. Cualquier error revierte cabecera, líneas, movimientos y stock.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in CreateSaleInput) (*entity.Sale, error) {
	ctx, span := tracer.Start(ctx, "sales.create_sale")
	defer span.End()
	span.SetAttributes(
		attribute.String("sale.cashier_id", in.CashierID),
		attribute.Int("sale.lines", len(in.Lines)),
	)

	sale, applied, err := uc.createSale(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("sale.id", sale.ID),
		attribute.String("sale.transaction_id", sale.TransactionID),
	)

	uc.dispatcher.Dispatch(ctx, saleEvents(sale, applied)...)
	return sale, nil
}

func (uc *CreateSaleUseCase) createSale(ctx context.Context, in CreateSaleInput) (*entity.Sale, []*inventory.Applied, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	// 1) Totales (solo dependen de la entrada)
	lines := make([]domainsales.Line, len(in.Lines))
	requested := make(map[string]int64, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = domainsales.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice}
		sum, err := domaininv.AddQuantity(requested[l.ProductID], l.Quantity)
		if err != nil {
			return nil, nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		requested[l.ProductID] = sum
	}
	total := domainsales.Total(lines)
	if !uc.policy.AllowUnderpayment && in.AmountReceived.LessThan(total) {
		return nil, nil, fmt.Errorf("%w: recibido %s, total %s",
			domain.ErrInsufficientPayment, in.AmountReceived.StringFixed(2), total.StringFixed(2))
	}
	change := domainsales.Change(in.AmountReceived, total)

	// Bloqueo en orden de id para que dos ventas concurrentes no se bloqueen mutuamente.
	productIDs := make([]string, 0, len(requested))
	for id := range requested {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	now := uc.now().UTC()
	var sale *entity.Sale
	var applied []*inventory.Applied

	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		// 2) Validación completa antes de cualquier escritura
		if uc.policy.ValidateCashier {
			cashier, err := uow.Users().GetByID(ctx, in.CashierID)
			if err != nil {
				return err
			}
			if cashier == nil || !cashier.Active {
				return fmt.Errorf("%w: %s", domain.ErrCashierNotFound, in.CashierID)
			}
		}
		for _, id := range productIDs {
			p, err := uow.Products().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
			}
			if !p.Active {
				return fmt.Errorf("%w: %q (%s) no está disponible para la venta", domain.ErrProductInactive, p.Name, p.ID)
			}
			if requested[id] > p.CurrentStock {
				return domaininv.InsufficientStockError(p, requested[id])
			}
		}

		// 3) Cabecera
		sale = &entity.Sale{
			ID:             uuid.New().String(),
			TransactionID:  NewTransactionID(now),
			CashierID:      in.CashierID,
			TotalAmount:    total,
			PaymentMethod:  in.PaymentMethod,
			AmountReceived: in.AmountReceived.Round(2),
			ChangeGiven:    change,
			CreatedAt:      now,
		}
		if err := uow.Sales().Create(ctx, sale); err != nil {
			return err
		}

		// 4) Líneas + salida de inventario por cada una
		for _, l := range in.Lines {
			item := &entity.SaleItem{
				ID:         uuid.New().String(),
				SaleID:     sale.ID,
				ProductID:  l.ProductID,
				Quantity:   l.Quantity,
				UnitPrice:  l.UnitPrice.Round(2),
				TotalPrice: domainsales.LineTotal(l.Quantity, l.UnitPrice),
			}
			if err := uow.Sales().CreateItem(ctx, item); err != nil {
				return err
			}
			a, err := uc.ledger.Apply(ctx, uow, inventory.MovementCommand{
				ProductID:   l.ProductID,
				Type:        entity.MovementTypeOut,
				Quantity:    l.Quantity,
				ActorID:     in.CashierID,
				Note:        "Venta " + sale.TransactionID,
				ReferenceID: sale.ID,
			})
			if err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)
			applied = append(applied, a)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, applied, nil
}

// saleEvents arma sale.created y un stock.changed por producto con el último estado aplicado.
func saleEvents(sale *entity.Sale, applied []*inventory.Applied) []events.Event {
	evts := []events.Event{events.NewSaleCreated(sale.CreatedAt, events.SaleCreated{
		SaleID:        sale.ID,
		TransactionID: sale.TransactionID,
		CashierID:     sale.CashierID,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		Items:         len(sale.Items),
	})}
	last := make(map[string]int, len(applied))
	for i, a := range applied {
		last[a.Product.ID] = i
	}
	for i, a := range applied {
		if last[a.Product.ID] == i {
			evts = append(evts, inventory.StockChangedEvent(a))
		}
	}
	return evts
}
