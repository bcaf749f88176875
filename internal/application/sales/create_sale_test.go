package sales_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

// ── helpers ──

type capture struct {
	mu   sync.Mutex
	evts []events.Event
}

func (c *capture) Publish(_ context.Context, evt events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evts = append(c.evts, evt)
	return nil
}

type fixture struct {
	store *memory.Store
	uc    *sales.CreateSaleUseCase
	pub   *capture
}

func newFixture(t *testing.T, policy sales.Policy) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := &capture{}
	ledger := inventory.NewLedger(store.Products())
	uc := sales.NewCreateSaleUseCase(store, ledger, events.NewDispatcher(nil, pub), policy)

	require.NoError(t, store.Users().Create(context.Background(), &entity.User{
		ID: "cajero-1", Username: "cajero", Name: "Ana Cajera", Role: entity.RoleCashier, Active: true,
	}))
	return &fixture{store: store, uc: uc, pub: pub}
}

func (f *fixture) product(t *testing.T, id string, stock int64, price string) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID:           id,
		Name:         "Producto " + id,
		SKU:          "SKU-" + id,
		Price:        decimal.RequireFromString(price),
		CurrentStock: stock,
		Active:       true,
		CreatedAt:    time.Now(),
	}))
}

func (f *fixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (f *fixture) movements(t *testing.T) []*entity.StockMovement {
	t.Helper()
	list, err := f.store.Movements().List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	return list
}

func (f *fixture) sales(t *testing.T) []*entity.Sale {
	t.Helper()
	list, err := f.store.Sales().ListByDateRange(context.Background(), time.Time{}, time.Now().Add(time.Hour), 0, 0)
	require.NoError(t, err)
	return list
}

func line(id string, qty int64, price string) sales.SaleLineInput {
	return sales.SaleLineInput{ProductID: id, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func input(received string, lines ...sales.SaleLineInput) sales.CreateSaleInput {
	return sales.CreateSaleInput{
		CashierID:      "cajero-1",
		PaymentMethod:  entity.PaymentMethodCash,
		AmountReceived: decimal.RequireFromString(received),
		Lines:          lines,
	}
}

var strict = sales.Policy{ValidateCashier: true}

// ── venta exitosa ──

func TestCreateSale_DescuentaStockYRegistraMovimiento(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 100, "10.00")

	sale, err := f.uc.CreateSale(context.Background(), input("50.00", line("p1", 5, "10.00")))
	require.NoError(t, err)

	assert.Equal(t, int64(95), f.stock(t, "p1"))
	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].TotalPrice.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, sale.ChangeGiven.IsZero())
	assert.Regexp(t, `^TXN-\d{14}-[0-9A-F]{8}$`, sale.TransactionID)

	movs := f.movements(t)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOut, movs[0].Type)
	assert.Equal(t, int64(-5), movs[0].Quantity)
	assert.Equal(t, int64(100), movs[0].StockBefore)
	assert.Equal(t, int64(95), movs[0].StockAfter)
	assert.Equal(t, sale.ID, movs[0].ReferenceID)
	assert.Equal(t, "cajero-1", movs[0].ActorID)
	assert.Equal(t, "Venta "+sale.TransactionID, movs[0].Note)
}

func TestCreateSale_TotalesYCambio(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "a", 10, "10.00")
	f.product(t, "b", 10, "8.00")

	sale, err := f.uc.CreateSale(context.Background(), input("30.00",
		line("a", 2, "10.00"),
		line("b", 1, "8.00"),
	))
	require.NoError(t, err)

	assert.Equal(t, "28.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "2.00", sale.ChangeGiven.StringFixed(2))
	assert.Equal(t, "30.00", sale.AmountReceived.StringFixed(2))
}

func TestCreateSale_UnMovimientoPorLinea(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "a", 10, "1.00")
	f.product(t, "b", 10, "2.00")
	f.product(t, "c", 10, "3.00")

	sale, err := f.uc.CreateSale(context.Background(), input("100.00",
		line("a", 1, "1.00"),
		line("b", 2, "2.00"),
		line("c", 3, "3.00"),
	))
	require.NoError(t, err)

	stored, err := f.store.Sales().GetByID(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 3)

	movs := f.movements(t)
	require.Len(t, movs, 3)
	for _, m := range movs {
		assert.Equal(t, sale.ID, m.ReferenceID)
	}
	assert.Equal(t, int64(9), f.stock(t, "a"))
	assert.Equal(t, int64(8), f.stock(t, "b"))
	assert.Equal(t, int64(7), f.stock(t, "c"))
}

func TestCreateSale_MismoProductoEnVariasLineasSeAcumula(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 5, "1.00")

	_, err := f.uc.CreateSale(context.Background(), input("10.00",
		line("p1", 3, "1.00"),
		line("p1", 3, "1.00"),
	))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), f.stock(t, "p1"))
}

func TestCreateSale_CantidadesQueDesbordanSeRechazan(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 5, "0.01")

	_, err := f.uc.CreateSale(context.Background(), input("1.00",
		line("p1", math.MaxInt64, "0.01"),
		line("p1", math.MaxInt64, "0.01"),
	))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), f.stock(t, "p1"))
	assert.Empty(t, f.movements(t))
}

func TestCreateSale_PublicaEventosTrasCommit(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 10, "1.00")

	sale, err := f.uc.CreateSale(context.Background(), input("2.00", line("p1", 1, "1.00"), line("p1", 1, "1.00")))
	require.NoError(t, err)

	require.Len(t, f.pub.evts, 2)
	assert.Equal(t, events.TypeSaleCreated, f.pub.evts[0].Type)
	assert.Equal(t, sale.ID, f.pub.evts[0].Key)
	assert.Equal(t, events.TypeStockChanged, f.pub.evts[1].Type)
	sc, ok := f.pub.evts[1].Payload.(events.StockChanged)
	require.True(t, ok)
	assert.Equal(t, int64(8), sc.Stock)
}

// ── concurrencia ──

func TestCreateSale_VentasConcurrentesSobreElMismoProducto(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 50, "1.00")

	const workers = 20
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.CreateSale(context.Background(), input("5.00", line("p1", 5, "1.00")))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, int64(0), f.stock(t, "p1"))
	assert.Len(t, f.sales(t), 10)

	movs := f.movements(t)
	require.Len(t, movs, 10)
	var sum int64
	for _, m := range movs {
		sum += m.Quantity
	}
	assert.Equal(t, int64(-50), sum)
}

// ── rechazos y rollback ──

func TestCreateSale_ProductoInexistenteNoPersisteNada(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 10, "1.00")

	_, err := f.uc.CreateSale(context.Background(), input("10.00",
		line("p1", 1, "1.00"),
		line("no-existe", 1, "1.00"),
	))
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.Equal(t, int64(10), f.stock(t, "p1"))
	assert.Empty(t, f.movements(t))
	assert.Empty(t, f.sales(t))
	assert.Empty(t, f.pub.evts)
}

func TestCreateSale_StockInsuficienteEnUnaLineaRevierteTodo(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "a", 10, "1.00")
	f.product(t, "b", 2, "1.00")

	_, err := f.uc.CreateSale(context.Background(), input("20.00",
		line("a", 4, "1.00"),
		line("b", 3, "1.00"),
	))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "disponible 2")
	assert.Contains(t, err.Error(), "solicitado 3")

	assert.Equal(t, int64(10), f.stock(t, "a"))
	assert.Equal(t, int64(2), f.stock(t, "b"))
	assert.Empty(t, f.movements(t))
	assert.Empty(t, f.sales(t))
}

func TestCreateSale_ProductoInactivo(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 10, "1.00")
	require.NoError(t, f.store.Products().SetActive(context.Background(), "p1", false, time.Now()))

	_, err := f.uc.CreateSale(context.Background(), input("1.00", line("p1", 1, "1.00")))
	require.ErrorIs(t, err, domain.ErrProductInactive)
	assert.Equal(t, int64(10), f.stock(t, "p1"))
}

func TestCreateSale_PagoInsuficiente(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 10, "10.00")

	_, err := f.uc.CreateSale(context.Background(), input("5.00", line("p1", 1, "10.00")))
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)
	assert.Empty(t, f.sales(t))
}

func TestCreateSale_PagoInsuficientePermitidoPorPolitica(t *testing.T) {
	f := newFixture(t, sales.Policy{AllowUnderpayment: true, ValidateCashier: true})
	f.product(t, "p1", 10, "10.00")

	sale, err := f.uc.CreateSale(context.Background(), input("5.00", line("p1", 1, "10.00")))
	require.NoError(t, err)
	assert.True(t, sale.ChangeGiven.IsZero())
}

func TestCreateSale_CajeroInexistente(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 10, "1.00")

	in := input("1.00", line("p1", 1, "1.00"))
	in.CashierID = "fantasma"
	_, err := f.uc.CreateSale(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrCashierNotFound)
	assert.Equal(t, int64(10), f.stock(t, "p1"))
}

func TestCreateSale_ValidacionDeEntrada(t *testing.T) {
	f := newFixture(t, strict)
	f.product(t, "p1", 10, "1.00")

	cases := map[string]func(in *sales.CreateSaleInput){
		"carrito vacío":      func(in *sales.CreateSaleInput) { in.Lines = nil },
		"cantidad cero":      func(in *sales.CreateSaleInput) { in.Lines[0].Quantity = 0 },
		"precio negativo":    func(in *sales.CreateSaleInput) { in.Lines[0].UnitPrice = decimal.NewFromInt(-1) },
		"precio 3 decimales": func(in *sales.CreateSaleInput) { in.Lines[0].UnitPrice = decimal.RequireFromString("1.005") },
		"método desconocido": func(in *sales.CreateSaleInput) { in.PaymentMethod = "cheque" },
		"recibido cero":      func(in *sales.CreateSaleInput) { in.AmountReceived = decimal.Zero },
		"sin cajero":         func(in *sales.CreateSaleInput) { in.CashierID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := input("10.00", line("p1", 1, "1.00"))
			mutate(&in)
			_, err := f.uc.CreateSale(context.Background(), in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "error: %v", err)
		})
	}
	assert.Equal(t, int64(10), f.stock(t, "p1"))
}

func TestNewTransactionID_Formato(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	id := sales.NewTransactionID(at)
	assert.Regexp(t, `^TXN-20240305140709-[0-9A-F]{8}$`, id)
	assert.NotEqual(t, id, sales.NewTransactionID(at))
}
