package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/usecase"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// AssistantHandler asistente virtual sobre el inventario.
type AssistantHandler struct {
	uc  *usecase.AssistantUseCase
	log *logger.Logger
}

func NewAssistantHandler(uc *usecase.AssistantUseCase, log *logger.Logger) *AssistantHandler {
	return &AssistantHandler{uc: uc, log: log}
}

// Query godoc
// @Summary      Consultar al asistente virtual
// @Description  Responde preguntas sobre el inventario usando un snapshot de productos como contexto.
//               Timeout interno de 15 s.
// @Tags         assistant
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssistantQueryRequest  true  "consulta"
// @Success      200   {object}  dto.AssistantQueryResponse
// @Failure      408   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/assistant/query [post]
func (h *AssistantHandler) Query(c *fiber.Ctx) error {
	var in dto.AssistantQueryRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Query(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
