package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*saleRepo)(nil)

type saleRepo struct {
	store *Store
	inTx  bool
}

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	defer r.store.lock(r.inTx)()
	d := r.store.data
	for _, other := range d.sales {
		if other.ID == sale.ID || other.TransactionID == sale.TransactionID {
			return domain.ErrDuplicate
		}
	}
	s := *sale
	s.Items = nil
	d.sales[s.ID] = &s
	return nil
}

func (r *saleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	defer r.store.lock(r.inTx)()
	d := r.store.data
	if _, ok := d.sales[item.SaleID]; !ok {
		return domain.ErrNotFound
	}
	it := *item
	d.items = append(d.items, &it)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	defer r.store.lock(r.inTx)()
	s, ok := r.store.data.sales[id]
	if !ok {
		return nil, nil
	}
	return r.withItems(s), nil
}

func (r *saleRepo) ListByDateRange(_ context.Context, from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	defer r.store.lock(r.inTx)()
	list := make([]*entity.Sale, 0)
	for _, s := range r.store.data.sales {
		if s.CreatedAt.Before(from) || !s.CreatedAt.Before(to) {
			continue
		}
		list = append(list, r.withItems(s))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return page(list, limit, offset), nil
}

// withItems copia la cabecera y adjunta sus líneas en orden de inserción. Requiere el lock tomado.
func (r *saleRepo) withItems(s *entity.Sale) *entity.Sale {
	out := *s
	out.Items = nil
	for _, it := range r.store.data.items {
		if it.SaleID == s.ID {
			item := *it
			out.Items = append(out.Items, &item)
		}
	}
	return &out
}
