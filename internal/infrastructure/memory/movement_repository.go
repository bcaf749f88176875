package memory

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*movementRepo)(nil)

type movementRepo struct {
	store *Store
	inTx  bool
}

func (r *movementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	defer r.store.lock(r.inTx)()
	m := *movement
	r.store.data.movements = append(r.store.data.movements, &m)
	return nil
}

// List recorre en orden inverso de inserción: el más reciente primero.
func (r *movementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	defer r.store.lock(r.inTx)()
	all := r.store.data.movements
	list := make([]*entity.StockMovement, 0)
	for i := len(all) - 1; i >= 0; i-- {
		if filter.ProductID != "" && all[i].ProductID != filter.ProductID {
			continue
		}
		m := *all[i]
		list = append(list, &m)
	}
	return page(list, filter.Limit, filter.Offset), nil
}
