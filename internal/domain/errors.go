package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// El detalle (ids, cantidades) se agrega envolviendo con fmt.Errorf("%w: ...") y se compara con errors.Is.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrCashierNotFound     = errors.New("cajero no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrProductInactive     = errors.New("producto inactivo")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInsufficientPayment = errors.New("pago insuficiente")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
)

// IsNotFound agrupa los errores de tipo "no encontrado".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCashierNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
