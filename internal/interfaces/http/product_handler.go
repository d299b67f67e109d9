package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/usecase"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// ProductHandler maneja las peticiones HTTP de productos (protegido).
type ProductHandler struct {
	uc  *usecase.ProductUseCase
	log *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear producto (opcionalmente con su primer lote)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// GetByBarcode busca un producto por código de barras (lector en caja).
// GET /api/products/barcode/:codigo
func (h *ProductHandler) GetByBarcode(c *fiber.Ctx) error {
	out, err := h.uc.GetByBarcode(c.UserContext(), c.Params("codigo"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q               query  string  false  "Búsqueda (nombre, marca, código)"
// @Param        categoria       query  string  false  "Categoría"
// @Param        estado          query  string  false  "activos|inactivos|todos"
// @Param        disponibilidad  query  string  false  "con_stock|sin_stock|por_vencer"
// @Param        orden           query  string  false  "Orden"
// @Param        page            query  int     false  "Página"  default(1)
// @Param        limit           query  int     false  "Límite"  default(20)
// @Success      200  {object}  dto.Envelope
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var q dto.ProductListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return page(c, out)
}

// Categories lista las categorías en uso.
// GET /api/products/categorias
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	out, err := h.uc.Categories(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	if out == nil {
		out = []string{}
	}
	return ok(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Actualizar producto (precios requieren productos:editar_precio)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [patch]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Deactivate desactiva un producto con motivo.
// PATCH /api/products/:id/desactivar
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	var in dto.DeactivateProductRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Deactivate(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Activate reactiva un producto.
// PATCH /api/products/:id/activar
func (h *ProductHandler) Activate(c *fiber.Ctx) error {
	out, err := h.uc.Activate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete elimina el producto y sus lotes.
// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PriceHistory historial de cambios de precio.
// GET /api/products/:id/historial-precios?limit=
func (h *ProductHandler) PriceHistory(c *fiber.Ctx) error {
	out, err := h.uc.PriceHistory(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// StockHistory movimientos de stock del producto.
// GET /api/products/historial-stock/:id?limit=
func (h *ProductHandler) StockHistory(c *fiber.Ctx) error {
	out, err := h.uc.StockHistory(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// UploadImage godoc
// @Summary      Subir imagen del producto (jpeg, png, webp, gif)
// @Tags         products
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id      path      string  true  "ID del producto"
// @Param        imagen  formData  file    true  "Imagen"
// @Success      200     {object}  dto.ImageUploadResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/products/{id}/imagen [post]
func (h *ProductHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("imagen")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo 'imagen' requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()

	out, err := h.uc.UploadImage(c.UserContext(), c.Params("id"), usecase.ImageUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
