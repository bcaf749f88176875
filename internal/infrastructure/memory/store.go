// Package memory implementa los repositorios y el TxRunner en memoria.
// Se usa con DB_DRIVER=memory (demos, desarrollo local) y en los tests de los casos de uso.
// Las unidades de trabajo se serializan con un mutex y el rollback restaura una copia del estado.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	users      map[string]*entity.User
	movements  []*entity.StockMovement // orden de inserción
	sales      map[string]*entity.Sale // sin Items; las líneas viven en items
	items      []*entity.SaleItem
}

func newState() *state {
	return &state{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		users:      make(map[string]*entity.User),
		sales:      make(map[string]*entity.Sale),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.categories {
		cat := *v
		c.categories[k] = &cat
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	for i, m := range s.movements {
		mv := *m
		c.movements[i] = &mv
	}
	for k, v := range s.sales {
		sale := *v
		c.sales[k] = &sale
	}
	c.items = make([]*entity.SaleItem, len(s.items))
	for i, it := range s.items {
		item := *it
		c.items[i] = &item
	}
	return c
}

// Store almacén en memoria seguro para uso concurrente.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn con repositorios atados a una unidad de trabajo exclusiva.
// Si fn devuelve error el estado vuelve a como estaba antes de empezar.
func (s *Store) Run(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&unitOfWork{store: s}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return &productRepo{store: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() repository.CategoryRepository { return &categoryRepo{store: s} }

// Users repositorio de usuarios fuera de transacción.
func (s *Store) Users() repository.UserRepository { return &userRepo{store: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() repository.StockMovementRepository { return &movementRepo{store: s} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{store: s} }

// lock toma el mutex salvo que el repositorio ya esté dentro de Run (que lo tiene tomado).
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Products() repository.ProductRepository {
	return &productRepo{store: u.store, inTx: true}
}

func (u *unitOfWork) Movements() repository.StockMovementRepository {
	return &movementRepo{store: u.store, inTx: true}
}

func (u *unitOfWork) Sales() repository.SaleRepository {
	return &saleRepo{store: u.store, inTx: true}
}

func (u *unitOfWork) Users() repository.UserRepository {
	return &userRepo{store: u.store, inTx: true}
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
