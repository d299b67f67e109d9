package http

import (
	"context"
	"errors"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimal.Decimal se valida como número (gt=0, gte=0).
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Los errores de campo usan el nombre JSON.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bindAndValidate parsea el cuerpo JSON y aplica las etiquetas validate.
// Si falla ya escribió la respuesta: el handler debe devolver el error tal cual.
func bindAndValidate(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe.Namespace())] = fe.Tag()
		}
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "datos inválidos", Fields: fields,
		})
	}
	return true, nil
}

// fieldPath quita el nombre del struct raíz: "CreateSaleRequest.items[0].cantidad" → "items[0].cantidad".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// errorStatus traduce errores de dominio a código HTTP y código de error.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrUnsupportedMedia, fiber.StatusBadRequest, "UNSUPPORTED_MEDIA"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrProductInactive, fiber.StatusConflict, "PRODUCT_INACTIVE"},
	{domain.ErrTicketVoided, fiber.StatusConflict, "TICKET_VOIDED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrAssistantDisabled, fiber.StatusServiceUnavailable, "AI_UNAVAILABLE"},
	{domain.ErrReportFailed, fiber.StatusInternalServerError, "REPORT_FAILED"},
}

// writeError responde con el ErrorResponse correspondiente; los 5xx se registran.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			if e.status >= fiber.StatusInternalServerError {
				logServerError(c, log, err)
			}
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: e.err.Error()})
		}
	}
	if isTimeout(err) {
		return c.Status(fiber.StatusRequestTimeout).JSON(dto.ErrorResponse{
			Code: "TIMEOUT", Message: "el servicio tardó demasiado; intenta de nuevo",
		})
	}
	logServerError(c, log, err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func logServerError(c *fiber.Ctx, log *logger.Logger, err error) {
	if log == nil {
		return
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("user_id", GetUserID(c)).
		Msg("error atendiendo petición")
}

// isTimeout reconoce plazos vencidos o cancelaciones de contexto y timeouts de red.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ok envuelve la respuesta exitosa en {"data": ...}.
func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.Envelope{Data: data})
}

// page respuesta paginada {"data": [...], "meta": {...}}.
func page[T any](c *fiber.Ctx, list *dto.ListResponse[T]) error {
	items := list.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(dto.Envelope{Data: items, Meta: list.Meta})
}

// optionalInt lee un entero opcional del query string; nil si falta o no es válido.
func optionalInt(c *fiber.Ctx, key string) *int {
	if c.Query(key) == "" {
		return nil
	}
	n := c.QueryInt(key, -1)
	if n < 0 {
		return nil
	}
	return &n
}
