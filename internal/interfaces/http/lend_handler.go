package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/application/lending"
)

// LendHandler préstamos de inventario entre dukas.
type LendHandler struct {
	uc *lending.UseCase
}

// NewLendHandler construye el handler.
func NewLendHandler(uc *lending.UseCase) *LendHandler {
	return &LendHandler{uc: uc}
}

// Create godoc
// @Summary      Prestar pares o un zapato suelto a otra duka
// @Tags         lends
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLendRequest  true  "Origen, destino, tipo y cantidad"
// @Success      201   {object}  dto.LendResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lends [post]
func (h *LendHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLendRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar préstamos (la duka como origen o destino)
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Duka; all = todo el negocio (solo admin)"
// @Param        status    query  string  false  "lent | returned | updated"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.LendListResponse
// @Router       /api/lends [get]
func (h *LendHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetUserID(c), c.Query("store_id"), c.Query("status"), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener préstamo
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del préstamo"
// @Success      200  {object}  dto.LendResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lends/{id} [get]
func (h *LendHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Return godoc
// @Summary      Devolver préstamo a la duka origen
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del préstamo"
// @Success      200  {object}  dto.LendResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/lends/{id}/return [post]
func (h *LendHandler) Return(c *fiber.Ctx) error {
	out, err := h.uc.Return(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkUpdated godoc
// @Summary      Confirmar que el destino registró el préstamo
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del préstamo"
// @Success      200  {object}  dto.LendResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lends/{id}/mark-updated [post]
func (h *LendHandler) MarkUpdated(c *fiber.Ctx) error {
	out, err := h.uc.MarkUpdated(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
