package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	store *Store
	inTx  bool
}

func (r *userRepo) Create(_ context.Context, user *entity.User) error {
	defer r.store.lock(r.inTx)()
	d := r.store.data
	if err := checkUserUnique(d, user); err != nil {
		return err
	}
	u := *user
	d.users[u.ID] = &u
	return nil
}

func checkUserUnique(d *state, user *entity.User) error {
	for _, other := range d.users {
		if other.ID == user.ID {
			continue
		}
		if strings.EqualFold(other.Username, user.Username) ||
			(user.Email != "" && strings.EqualFold(other.Email, user.Email)) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.store.lock(r.inTx)()
	u, ok := r.store.data.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	defer r.store.lock(r.inTx)()
	for _, u := range r.store.data.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(_ context.Context, user *entity.User) error {
	defer r.store.lock(r.inTx)()
	d := r.store.data
	if _, ok := d.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := checkUserUnique(d, user); err != nil {
		return err
	}
	u := *user
	d.users[u.ID] = &u
	return nil
}

func (r *userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	defer r.store.lock(r.inTx)()
	list := make([]*entity.User, 0, len(r.store.data.users))
	for _, u := range r.store.data.users {
		cp := *u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return page(list, limit, offset), nil
}

func (r *userRepo) Count(_ context.Context) (int, error) {
	defer r.store.lock(r.inTx)()
	return len(r.store.data.users), nil
}
