package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct {
	store *Store
	inTx  bool
}

func (r *productRepo) Create(_ context.Context, product *entity.Product) error {
	defer r.store.lock(r.inTx)()
	d := r.store.data
	if _, ok := d.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	if err := checkProductUnique(d, product); err != nil {
		return err
	}
	p := *product
	d.products[p.ID] = &p
	return nil
}

func checkProductUnique(d *state, product *entity.Product) error {
	for _, other := range d.products {
		if other.ID == product.ID {
			continue
		}
		if other.SKU == product.SKU {
			return domain.ErrDuplicate
		}
		if product.Barcode != "" && other.Barcode == product.Barcode {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.store.lock(r.inTx)()
	p, ok := r.store.data.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// GetForUpdate: dentro de Run el mutex del Store ya serializa la unidad de trabajo completa.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	defer r.store.lock(r.inTx)()
	for _, p := range r.store.data.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *productRepo) Update(_ context.Context, product *entity.Product) error {
	defer r.store.lock(r.inTx)()
	d := r.store.data
	cur, ok := d.products[product.ID]
	if !ok {
		return nil
	}
	if err := checkProductUnique(d, product); err != nil {
		return err
	}
	// stock y estado solo cambian por UpdateStock / SetActive
	upd := *product
	upd.CurrentStock = cur.CurrentStock
	upd.Active = cur.Active
	upd.CreatedAt = cur.CreatedAt
	d.products[product.ID] = &upd
	return nil
}

func (r *productRepo) UpdateStock(_ context.Context, id string, stock int64, updatedAt time.Time) error {
	defer r.store.lock(r.inTx)()
	p, ok := r.store.data.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.CurrentStock = stock
	p.UpdatedAt = updatedAt
	return nil
}

func (r *productRepo) SetActive(_ context.Context, id string, active bool, updatedAt time.Time) error {
	defer r.store.lock(r.inTx)()
	p, ok := r.store.data.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Active = active
	p.UpdatedAt = updatedAt
	return nil
}

func (r *productRepo) List(_ context.Context, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	return r.collect(func(p *entity.Product) bool {
		if filter.ActiveOnly && !p.Active {
			return false
		}
		return filter.CategoryID == "" || p.CategoryID == filter.CategoryID
	}, limit, offset), nil
}

func (r *productRepo) Search(_ context.Context, term string, limit int) ([]*entity.Product, error) {
	return r.collect(func(p *entity.Product) bool {
		return strings.Contains(p.SearchName, term) ||
			strings.Contains(strings.ToLower(p.SKU), term) ||
			(p.Barcode != "" && p.Barcode == term)
	}, limit, 0), nil
}

func (r *productRepo) ListLowStock(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	list := r.collect(func(p *entity.Product) bool {
		return p.Active && p.IsLowStock()
	}, 0, 0)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CurrentStock < list[j].CurrentStock })
	return page(list, limit, offset), nil
}

func (r *productRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	return len(r.collect(func(p *entity.Product) bool { return p.CategoryID == categoryID }, 0, 0)), nil
}

// collect filtra, ordena por fecha de creación descendente y pagina (limit 0 = sin límite).
func (r *productRepo) collect(match func(*entity.Product) bool, limit, offset int) []*entity.Product {
	defer r.store.lock(r.inTx)()
	list := make([]*entity.Product, 0)
	for _, p := range r.store.data.products {
		if match(p) {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset)
}
