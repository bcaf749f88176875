package repository

// UnitOfWork agrupa los repositorios atados a una misma transacción.
// Todo lo escrito a través de ellos se confirma o se revierte en bloque.
type UnitOfWork interface {
	Products() ProductRepository
	Movements() StockMovementRepository
	Sales() SaleRepository
	Users() UserRepository
}
