package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/usecase"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// ReportHandler descarga de reportes PDF/XLSX.
type ReportHandler struct {
	uc  *usecase.ReportUseCase
	log *logger.Logger
}

func NewReportHandler(uc *usecase.ReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// Download godoc
// @Summary      Descargar reporte
// @Description  Aplica los mismos filtros que el listado correspondiente.
// @Tags         reportes
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        tipo     path   string  true   "productos|ventas|proveedores|cuentas|general"
// @Param        formato  query  string  false  "pdf|xlsx"  default(pdf)
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse  "REPORT_FAILED"
// @Router       /api/reportes/{tipo} [get]
func (h *ReportHandler) Download(c *fiber.Ctx) error {
	var q dto.ReportQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	sales, err := ticketFilter(q.MetodoPago, q.Desde, q.Hasta)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}

	file, err := h.uc.Generate(c.UserContext(), usecase.ReportRequest{
		Kind:   c.Params("tipo"),
		Format: q.Formato,
		Actor:  GetActor(c),
		Products: dto.ProductListQuery{
			ListQuery:      q.ListQuery,
			Disponibilidad: q.Disponibilidad,
			Dias:           optionalInt(c, "dias"),
		},
		Sales: sales,
		Query: q.ToListing(),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	c.Attachment(file.Filename)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Status(fiber.StatusOK).Send(file.Content)
}
