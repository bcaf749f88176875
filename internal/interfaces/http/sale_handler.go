package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// HeaderExportDigest lleva el SHA-256 de la forma canónica del XML exportado.
const HeaderExportDigest = "X-Export-Digest"

// SaleHandler maneja el checkout y las consultas de ventas (protegido).
type SaleHandler struct {
	create  *sales.CreateSaleUseCase
	queries *sales.SalesQueryUseCase
	log     *logger.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(create *sales.CreateSaleUseCase, queries *sales.SalesQueryUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{create: create, queries: queries, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Valida productos y stock, descuenta inventario y registra los movimientos en una sola transacción.
// @Description  El cajero es el usuario del token.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "payment_method, amount_received, items"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.create.CreateSaleFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.queries.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(sales.ToSaleResponse(sale))
}

// List godoc
// @Summary      Ventas por rango de fechas
// @Description  Rango [from, to). Fechas RFC3339 o YYYY-MM-DD (to con fecha incluye ese día completo).
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde"
// @Param        to      query  string  false  "Hasta (por defecto ahora)"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.SaleListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	limit, offset := pageParams(c, 50, 200)
	list, err := h.queries.ListSales(c.UserContext(), from, to, limit, offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, sales.ToSaleResponse(s))
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	pdf, err := h.queries.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=\"recibo-%s.pdf\"", c.Params("id")))
	return c.Send(pdf)
}

// Export godoc
// @Summary      Exportar ventas en XML
// @Description  El header X-Export-Digest trae el SHA-256 (hex) de la forma canónica C14N del documento.
// @Tags         sales
// @Security     Bearer
// @Produce      application/xml
// @Param        from  query  string  false  "Desde"
// @Param        to    query  string  false  "Hasta"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales/export [get]
func (h *SaleHandler) Export(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	doc, digest, err := h.queries.Export(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=\"ventas.xml\"")
	c.Set(HeaderExportDigest, digest)
	return c.Send(doc)
}

// dateRange lee from/to de la query. Un to con solo fecha se extiende al final de ese día.
func dateRange(c *fiber.Ctx) (from, to time.Time, err error) {
	if from, _, err = parseDate(c.Query("from")); err != nil {
		return from, to, err
	}
	var dateOnly bool
	if to, dateOnly, err = parseDate(c.Query("to")); err != nil {
		return from, to, err
	}
	if dateOnly {
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: fecha %q (use RFC3339 o YYYY-MM-DD)", domain.ErrInvalidInput, s)
}
