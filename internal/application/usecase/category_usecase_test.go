package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func TestCategory_CRUDYBorradoEnUso(t *testing.T) {
	store := memory.NewStore()
	cats := usecase.NewCategoryUseCase(store.Categories(), store.Products())
	products := newProductUC(store)
	ctx := context.Background()

	bebidas, err := cats.Create(ctx, dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)
	_, err = cats.Create(ctx, dto.CategoryRequest{Name: "Bebidas"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	aseo, err := cats.Create(ctx, dto.CategoryRequest{Name: "Aseo"})
	require.NoError(t, err)

	list, err := cats.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aseo", list[0].Name)

	r := req("Gaseosa", "GAS-1", 0)
	r.CategoryID = bebidas.ID
	_, err = products.Create(ctx, "admin-1", r)
	require.NoError(t, err)

	err = cats.Delete(ctx, bebidas.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, cats.Delete(ctx, aseo.ID))
	_, err = cats.GetByID(ctx, aseo.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	upd, err := cats.Update(ctx, bebidas.ID, dto.CategoryRequest{Name: "Bebidas frías", Description: "Refrigerados"})
	require.NoError(t, err)
	assert.Equal(t, "Bebidas frías", upd.Name)
}
