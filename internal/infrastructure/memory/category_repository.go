package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*categoryRepo)(nil)

type categoryRepo struct {
	store *Store
}

func (r *categoryRepo) Create(_ context.Context, category *entity.Category) error {
	defer r.store.lock(false)()
	d := r.store.data
	if err := checkCategoryUnique(d, category); err != nil {
		return err
	}
	c := *category
	d.categories[c.ID] = &c
	return nil
}

func checkCategoryUnique(d *state, category *entity.Category) error {
	for _, other := range d.categories {
		if other.ID != category.ID && strings.EqualFold(other.Name, category.Name) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	defer r.store.lock(false)()
	c, ok := r.store.data.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *categoryRepo) Update(_ context.Context, category *entity.Category) error {
	defer r.store.lock(false)()
	d := r.store.data
	if _, ok := d.categories[category.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := checkCategoryUnique(d, category); err != nil {
		return err
	}
	c := *category
	d.categories[c.ID] = &c
	return nil
}

func (r *categoryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	defer r.store.lock(false)()
	list := make([]*entity.Category, 0, len(r.store.data.categories))
	for _, c := range r.store.data.categories {
		cp := *c
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	defer r.store.lock(false)()
	delete(r.store.data.categories, id)
	return nil
}
