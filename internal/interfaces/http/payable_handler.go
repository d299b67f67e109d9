package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/usecase"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// PayableHandler cuentas por pagar.
type PayableHandler struct {
	uc  *usecase.PayableUseCase
	log *logger.Logger
}

func NewPayableHandler(uc *usecase.PayableUseCase, log *logger.Logger) *PayableHandler {
	return &PayableHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar cuenta por pagar (única por proveedor, categoría y mes)
// @Tags         cuentas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePayableRequest  true  "Cuenta"
// @Success      201   {object}  dto.PayableResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/cuentasPorPagar [post]
func (h *PayableHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePayableRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// List GET /api/cuentasPorPagar?q=&categoria=&estado=&orden=&page=&limit=
func (h *PayableHandler) List(c *fiber.Ctx) error {
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), q.ToListing())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return page(c, out)
}

func (h *PayableHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *PayableHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePayableRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// MarkPaid PATCH /api/cuentasPorPagar/:id/pagar
func (h *PayableHandler) MarkPaid(c *fiber.Ctx) error {
	out, err := h.uc.MarkPaid(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *PayableHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
