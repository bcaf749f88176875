package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func newProductUC(store *memory.Store) *usecase.ProductUseCase {
	return usecase.NewProductUseCase(store.Products(), store.Categories(), store, inventory.NewLedger(store.Products()), nil)
}

func req(name, sku string, initial int64) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Name:         name,
		SKU:          sku,
		Price:        decimal.RequireFromString("4.50"),
		Cost:         decimal.RequireFromString("3.00"),
		InitialStock: initial,
		MinStock:     5,
	}
}

// ── creación ──

func TestProductCreate_StockInicialGeneraMovimiento(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)

	p, err := uc.Create(context.Background(), "admin-1", req("Café Molido", "CAF-1", 100))
	require.NoError(t, err)
	assert.Equal(t, int64(100), p.CurrentStock)
	assert.True(t, p.Active)

	movs, err := store.Movements().List(context.Background(), repository.MovementFilter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(100), movs[0].Quantity)
	assert.Equal(t, "Stock inicial", movs[0].Note)
	assert.Equal(t, "admin-1", movs[0].ActorID)
}

func TestProductCreate_SinStockInicialNoGeneraMovimiento(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)

	p, err := uc.Create(context.Background(), "admin-1", req("Azúcar", "AZU-1", 0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.CurrentStock)
	assert.True(t, p.LowStock)

	movs, err := store.Movements().List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestProductCreate_SKUDuplicado(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)

	_, err := uc.Create(context.Background(), "admin-1", req("Sal", "SAL-1", 10))
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), "admin-1", req("Sal marina", "SAL-1", 10))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductCreate_Validaciones(t *testing.T) {
	uc := newProductUC(memory.NewStore())

	bad := req("Sal", "SAL-1", 0)
	bad.Price = decimal.RequireFromString("1.999")
	_, err := uc.Create(context.Background(), "admin-1", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad = req("", "SAL-1", 0)
	_, err = uc.Create(context.Background(), "admin-1", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad = req("Sal", "SAL-1", 0)
	bad.CategoryID = "11111111-1111-1111-1111-111111111111"
	_, err = uc.Create(context.Background(), "admin-1", bad)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── consultas y cambios ──

func TestProductSearch_IgnoraTildesYMayusculas(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)
	_, err := uc.Create(context.Background(), "admin-1", req("Café Molido", "CAF-1", 1))
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), "admin-1", req("Té Verde", "TE-1", 1))
	require.NoError(t, err)

	found, err := uc.Search(context.Background(), "CAFE", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "CAF-1", found[0].SKU)

	found, err = uc.Search(context.Background(), "te-1", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = uc.Search(context.Background(), "  ", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUpdate_NoTocaStock(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)
	p, err := uc.Create(context.Background(), "admin-1", req("Arroz", "ARZ-1", 30))
	require.NoError(t, err)

	price := decimal.RequireFromString("5.25")
	name := "Arroz Premium"
	upd, err := uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Arroz Premium", upd.Name)
	assert.Equal(t, "5.25", upd.Price.StringFixed(2))

	got, err := uc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got.CurrentStock)
}

func TestProductSetActiveYLowStock(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)
	low, err := uc.Create(context.Background(), "admin-1", req("Harina", "HAR-1", 2))
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), "admin-1", req("Aceite", "ACE-1", 50))
	require.NoError(t, err)

	list, err := uc.LowStock(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, low.ID, list.Items[0].ID)

	off, err := uc.SetActive(context.Background(), low.ID, false)
	require.NoError(t, err)
	assert.False(t, off.Active)

	list, err = uc.LowStock(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	active, err := uc.List(context.Background(), repository.ProductFilter{ActiveOnly: true}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, active.Items, 1)

	_, err = uc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
