package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// SaleHandler ventas, devoluciones y anulaciones.
type SaleHandler struct {
	uc  *inventory.SaleUseCase
	log *logger.Logger
}

func NewSaleHandler(uc *inventory.SaleUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar venta (descuenta stock FEFO)
// @Tags         ventas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas y método de pago"
// @Success      201   {object}  dto.TicketResponse
// @Failure      409   {object}  dto.ErrorResponse  "stock insuficiente o producto desactivado"
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/ventas [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// List historial de tickets.
// GET /api/ventas/tickets?q=&metodo_pago=&desde=&hasta=&estado=&orden=&page=&limit=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var q dto.TicketListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	f, err := ticketFilter(q.MetodoPago, q.Desde, q.Hasta)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}
	out, err := h.uc.List(c.UserContext(), f, q.ToListing())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return page(c, out)
}

// GetByID detalle de un ticket.
// GET /api/ventas/ticket/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Return devolución parcial: repone stock y recalcula el total.
// PUT /api/ventas/ticket/:id
func (h *SaleHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Return(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Void anula el ticket y repone todo su stock.
// DELETE /api/ventas/ticket/:id
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	out, err := h.uc.Void(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

type queryError string

func (e queryError) Error() string { return string(e) }

// ticketFilter interpreta desde/hasta (AAAA-MM-DD, hora local). hasta incluye el día completo.
func ticketFilter(method, from, to string) (inventory.TicketFilter, error) {
	f := inventory.TicketFilter{PaymentMethod: method}
	if from != "" {
		t, err := time.ParseInLocation(time.DateOnly, from, time.Local)
		if err != nil {
			return f, queryError("desde debe tener formato AAAA-MM-DD")
		}
		f.From = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(time.DateOnly, to, time.Local)
		if err != nil {
			return f, queryError("hasta debe tener formato AAAA-MM-DD")
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, queryError("hasta no puede ser anterior a desde")
	}
	return f, nil
}
