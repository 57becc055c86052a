package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/application/sales"
	"github.com/jhoicas/dukastock-api/internal/domain"
)

// HeaderIdempotencyKey clave opcional para reenvíos seguros desde el punto de venta.
const HeaderIdempotencyKey = "Idempotency-Key"

// SaleHandler ventas y devoluciones.
type SaleHandler struct {
	uc *sales.UseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.UseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  La suma de los pagos debe igualar precio * cantidad (tolerancia 0.01).
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "Clave para reenvíos"
// @Param        body             body    dto.RecordSaleRequest  true   "Venta"
// @Success      201              {object}  dto.SaleResponse
// @Success      200              {object}  dto.SaleResponse  "Reenvío con la misma clave"
// @Failure      400              {object}  dto.ErrorResponse
// @Failure      409              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.RecordSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RecordSale(c.UserContext(), GetUserID(c), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return respondError(c, err)
	}
	if out.Replayed {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetSale(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas por duka y rango de fechas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Duka; all = todo el negocio (solo admin)"
// @Param        from      query  string  false  "Desde (RFC3339 o AAAA-MM-DD)"
// @Param        to        query  string  false  "Hasta (RFC3339 o AAAA-MM-DD, día completo)"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.SaleListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListSales(c.UserContext(), GetUserID(c), c.Query("store_id"), from, to, pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Return godoc
// @Summary      Devolver una venta (admin, staff-admin)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la venta"
// @Param        body  body  dto.RecordReturnRequest  true  "Motivo"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/return [post]
func (h *SaleHandler) Return(c *fiber.Ctx) error {
	var in dto.RecordReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RecordReturn(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListReturns godoc
// @Summary      Listar devoluciones
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Duka; all = todo el negocio (solo admin)"
// @Param        from      query  string  false  "Desde (RFC3339 o AAAA-MM-DD)"
// @Param        to        query  string  false  "Hasta (RFC3339 o AAAA-MM-DD, día completo)"
// @Success      200       {object}  dto.ReturnListResponse
// @Router       /api/returns [get]
func (h *SaleHandler) ListReturns(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListReturns(c.UserContext(), GetUserID(c), c.Query("store_id"), from, to, pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// dateRange lee from/to. Una fecha sin hora en "to" cubre el día completo.
func dateRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	from, err := parseDate(c.Query("from"), false)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDate(c.Query("to"), true)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
