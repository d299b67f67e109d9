package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// LotHandler lotes de un producto.
type LotHandler struct {
	uc  *inventory.LotUseCase
	log *logger.Logger
}

func NewLotHandler(uc *inventory.LotUseCase, log *logger.Logger) *LotHandler {
	return &LotHandler{uc: uc, log: log}
}

// List devuelve el producto con sus lotes en orden FEFO.
// GET /api/products/:id/lotes?dias=
func (h *LotHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Params("id"), optionalInt(c, "dias"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Add godoc
// @Summary      Agregar lote (entrada de mercadería)
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del producto"
// @Param        body  body  dto.CreateLotRequest  true  "Lote"
// @Success      201   {object}  dto.LotResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/lotes [post]
func (h *LotHandler) Add(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Add(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// Update corrige un lote.
// PATCH /api/products/:id/lotes/:loteId
func (h *LotHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLotRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), c.Params("loteId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
