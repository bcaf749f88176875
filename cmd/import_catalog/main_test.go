package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ── códigos de salida ──

func TestRun_SinArchivoEsErrorDeUso(t *testing.T) {
	assert.Equal(t, exitUsage, run(nil))
	assert.Equal(t, exitUsage, run([]string{"-file", "x.csv"}))
	assert.Equal(t, exitUsage, run([]string{"-flag-inexistente"}))
}

func TestRun_DryRun(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("DB_DRIVER", "memory")
	dir := t.TempDir()

	ok := filepath.Join(dir, "ok.csv")
	require.NoError(t, os.WriteFile(ok, []byte("name,sku,price\nArroz,ARZ-1,3.50\n"), 0o600))
	assert.Equal(t, exitOK, run([]string{"-file", ok, "-dry-run"}))

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("name,price\nArroz,3.50\n"), 0o600))
	assert.Equal(t, exitError, run([]string{"-file", bad, "-dry-run"}))

	assert.Equal(t, exitError, run([]string{"-file", filepath.Join(dir, "no-existe.csv"), "-dry-run"}))
}

// ── importación ──

func TestImportRows(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewLedger(store.Products())
	imp := &importer{
		products:   usecase.NewProductUseCase(store.Products(), store.Categories(), store, ledger, nil),
		categories: usecase.NewCategoryUseCase(store.Categories(), store.Products()),
		log:        logger.Nop(),
	}
	ctx := context.Background()

	rows := []catalogRow{
		{Line: 2, Category: "Granos", Product: dto.CreateProductRequest{Name: "Arroz", SKU: "ARZ-1", Price: decimal.RequireFromString("3.50"), InitialStock: 20}},
		{Line: 3, Category: "granos", Product: dto.CreateProductRequest{Name: "Frijol", SKU: "FRJ-1", Price: decimal.RequireFromString("4.10")}},
		{Line: 4, Product: dto.CreateProductRequest{Name: "Arroz repetido", SKU: "ARZ-1", Price: decimal.RequireFromString("3.50")}},
		{Line: 5, Product: dto.CreateProductRequest{Name: "Precio negativo", SKU: "PN-1", Price: decimal.RequireFromString("-1")}},
	}
	res, err := imp.importRows(ctx, "admin-1", rows)
	require.NoError(t, err)
	assert.Equal(t, importResult{Created: 2, Skipped: 1, Failed: 1}, res)

	cats, err := store.Categories().List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	movs, err := store.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(20), movs[0].Quantity)
	assert.Equal(t, "admin-1", movs[0].ActorID)
}
