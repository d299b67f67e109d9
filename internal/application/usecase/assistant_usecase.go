package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/inventory"
)

const (
	assistantTimeout     = 15 * time.Second
	assistantMaxProducts = 200
)

// AssistantUseCase asistente virtual: responde consultas con un resumen del inventario como contexto.
// Aplica un timeout de 15 s a cada llamada al LLM.
type AssistantUseCase struct {
	llm      ports.LLMService
	products *ProductUseCase
	now      func() time.Time
}

// NewAssistantUseCase construye el caso de uso. llm puede ser nil si no hay API key.
func NewAssistantUseCase(llm ports.LLMService, products *ProductUseCase) *AssistantUseCase {
	return &AssistantUseCase{llm: llm, products: products, now: time.Now}
}

// Query valida la consulta, arma el snapshot y delega en el LLM.
func (uc *AssistantUseCase) Query(ctx context.Context, req dto.AssistantQueryRequest) (*dto.AssistantQueryResponse, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, domain.ErrInvalidInput
	}
	if uc.llm == nil {
		return nil, domain.ErrAssistantDisabled
	}
	snapshot, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, assistantTimeout)
	defer cancel()

	answer, err := uc.llm.Answer(ctx, q, snapshot)
	if err != nil {
		return nil, fmt.Errorf("asistente: %w", err)
	}
	return &dto.AssistantQueryResponse{Answer: answer, Model: uc.llm.Model()}, nil
}

// snapshot una línea por producto activo: nombre, categoría, stock, precio y vencimiento.
func (uc *AssistantUseCase) snapshot(ctx context.Context) (string, error) {
	products, err := uc.products.Products(ctx, dto.ProductListQuery{})
	if err != nil {
		return "", err
	}
	today := uc.now()
	var b strings.Builder
	fmt.Fprintf(&b, "Fecha: %s. Productos activos: %d.\n", today.Format("2006-01-02"), len(products))
	for i, p := range products {
		if i == assistantMaxProducts {
			fmt.Fprintf(&b, "... %d productos más\n", len(products)-i)
			break
		}
		expiry := "sin vencimiento"
		if p.ExpiryDate != nil {
			expiry = p.ExpiryDate.Format("2006-01-02") + " (" +
				string(inventory.ClassifyExpiry(p.ExpiryDate, today, uc.products.expiringSoonDays)) + ")"
		}
		fmt.Fprintf(&b, "- %s | %s | %s | stock %d | venta %s | compra %s | vence %s\n",
			p.Name, p.Brand, p.Category, p.Stock, p.SalePrice.StringFixed(0), p.PurchasePrice.StringFixed(0), expiry)
	}
	return b.String(), nil
}
