package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// errorStatus traduce un error de dominio a (status HTTP, código). ok=false si no es un error conocido.
func errorStatus(err error) (int, string, bool) {
	switch {
	case domain.IsNotFound(err):
		return fiber.StatusNotFound, "NOT_FOUND", true
	case errors.Is(err, domain.ErrProductInactive):
		return fiber.StatusUnprocessableEntity, "PRODUCT_INACTIVE", true
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", true
	case errors.Is(err, domain.ErrInsufficientPayment):
		return fiber.StatusBadRequest, "INSUFFICIENT_PAYMENT", true
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", true
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE", true
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", true
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", true
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", true
	}
	return 0, "", false
}

// writeError responde con el ErrorResponse correspondiente. El mensaje es el texto del error
// envuelto (incluye ids y cantidades). Los errores desconocidos se registran y salen como 500.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	if status, code, ok := errorStatus(err); ok {
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	log.Ctx(c.UserContext()).Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// ErrorHandler para fiber.Config: aplica el mismo mapeo a los errores que escapan de los handlers.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, log, err)
	}
}
