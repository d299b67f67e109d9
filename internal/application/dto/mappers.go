package dto

import (
	"strconv"
	"time"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/inventory"
)

// FromProduct arma la salida de un producto con margen y estado de vencimiento.
func FromProduct(p *entity.Product, today time.Time, thresholdDays int) ProductResponse {
	m := inventory.CalculateMargin(p.PurchasePrice, p.SalePrice)
	out := ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Barcode:       p.Barcode,
		Stock:         p.Stock,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Margin:        m.Amount,
		MarginPercent: m.Percent,
		ExpiryDate:    p.ExpiryDate,
		ExpiryStatus:  string(inventory.ClassifyExpiry(p.ExpiryDate, today, thresholdDays)),
		ImageURL:      p.ImageURL,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if d := p.Deactivation; d != nil && !p.Active {
		out.Deactivation = &DeactivationResponse{
			Reason:   d.Reason,
			Comment:  d.Comment,
			UserID:   d.UserID,
			UserName: d.UserName,
			At:       d.At,
		}
	}
	return out
}

// FromLotView salida de un lote ya anotado.
func FromLotView(v inventory.LotView) LotResponse {
	return LotResponse{
		ID:              v.ID,
		ProductID:       v.ProductID,
		Number:          v.Number,
		Quantity:        v.Quantity,
		InitialQuantity: v.InitialQuantity,
		PurchasePrice:   v.PurchasePrice,
		SalePrice:       v.SalePrice,
		Margin:          v.Margin.Amount,
		MarginPercent:   v.Margin.Percent,
		ExpiryDate:      v.ExpiryDate,
		DaysToExpiry:    v.DaysToExpiry,
		ExpiryStatus:    string(v.Status),
		NextToConsume:   v.NextToConsume,
		NextToSell:      v.NextToSell,
		CreatedAt:       v.CreatedAt,
	}
}

// FromTicket salida de un ticket.
func FromTicket(t *entity.Ticket) TicketResponse {
	items := make([]TicketItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, TicketItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Barcode:   it.Barcode,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return TicketResponse{
		ID:            t.ID,
		Number:        t.Number,
		Items:         items,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
		Debtor:        t.Debtor,
		UserID:        t.UserID,
		UserName:      t.UserName,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		VoidedAt:      t.VoidedAt,
		VoidedBy:      t.VoidedBy,
	}
}

// TicketLabel número de ticket formateado para búsquedas y reportes.
func TicketLabel(t *entity.Ticket) string {
	return "T-" + strconv.FormatInt(t.Number, 10)
}

// FromSupplier salida de un proveedor.
func FromSupplier(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:         s.ID,
		Name:       s.Name,
		Contact:    s.Contact,
		Phone:      s.Phone,
		Email:      s.Email,
		Address:    s.Address,
		Categories: nonNil(s.Categories),
		ProductIDs: nonNil(s.ProductIDs),
		Active:     s.Active,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// FromPayable salida de una cuenta por pagar.
func FromPayable(p *entity.Payable) PayableResponse {
	return PayableResponse{
		ID:                 p.ID,
		Provider:           p.Provider,
		VerificationNumber: p.VerificationNumber,
		Category:           p.Category,
		Month:              p.Month,
		Amount:             p.Amount,
		Status:             p.Status,
		Active:             p.Active,
		PaidAt:             p.PaidAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// FromUser salida de un usuario.
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
