package usecase

import (
	"strings"
	"time"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/inventory"
	"github.com/ladespensa/despensa-api/internal/domain/listing"
)

// Filtros de estado comunes.
const (
	statusActive   = "activos"
	statusInactive = "inactivos"
	statusAll      = "todos"
)

func activeMatch(active bool, s string) bool {
	switch s {
	case statusActive:
		return active
	case statusInactive:
		return !active
	}
	return true
}

// ProductSpec búsqueda por nombre, marca o código de barras.
var ProductSpec = listing.Spec[*entity.Product]{
	SearchFields: func(p *entity.Product) []string { return []string{p.Name, p.Brand, p.Barcode} },
	CategoryOf:   func(p *entity.Product) string { return p.Category },
	StatusMatch:  func(p *entity.Product, s string) bool { return activeMatch(p.Active, s) },
	Sorters:      productSorters,
	DefaultSort:  "nombre",
}

var productSorters = map[string]func(a, b *entity.Product) bool{
	"nombre":        func(a, b *entity.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"categoria":     func(a, b *entity.Product) bool { return strings.ToLower(a.Category) < strings.ToLower(b.Category) },
	"stock":         func(a, b *entity.Product) bool { return a.Stock < b.Stock },
	"precio_venta":  func(a, b *entity.Product) bool { return a.SalePrice.LessThan(b.SalePrice) },
	"precio_compra": func(a, b *entity.Product) bool { return a.PurchasePrice.LessThan(b.PurchasePrice) },
	"vencimiento":   func(a, b *entity.Product) bool { return expiryBefore(a.ExpiryDate, b.ExpiryDate) },
	"reciente":      func(a, b *entity.Product) bool { return a.CreatedAt.After(b.CreatedAt) },
}

func expiryBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

// Disponibilidad de productos.
const (
	availInStock  = "con_stock"
	availNoStock  = "sin_stock"
	availExpiring = "por_vencer"
)

// availabilityFilter filtra por disponibilidad antes del pipeline.
func availabilityFilter(products []*entity.Product, avail string, today time.Time, threshold int) []*entity.Product {
	if avail == "" {
		return products
	}
	out := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		var keep bool
		switch avail {
		case availInStock:
			keep = p.Stock > 0
		case availNoStock:
			keep = p.Stock == 0
		case availExpiring:
			st := inventory.ClassifyExpiry(p.ExpiryDate, today, threshold)
			keep = p.Stock > 0 && (st == inventory.StatusExpiringSoon || st == inventory.StatusExpired)
		default:
			keep = true
		}
		if keep {
			out = append(out, p)
		}
	}
	return out
}

// SupplierSpec búsqueda por nombre, contacto o email.
var SupplierSpec = listing.Spec[*entity.Supplier]{
	SearchFields: func(s *entity.Supplier) []string { return []string{s.Name, s.Contact, s.Email} },
	StatusMatch:  func(s *entity.Supplier, st string) bool { return activeMatch(s.Active, st) },
	Sorters:      supplierSorters,
	DefaultSort:  "nombre",
}

var supplierSorters = map[string]func(a, b *entity.Supplier) bool{
	"nombre":   func(a, b *entity.Supplier) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"reciente": func(a, b *entity.Supplier) bool { return a.CreatedAt.After(b.CreatedAt) },
}

// supplierCategoryFilter un proveedor puede tener varias categorías.
func supplierCategoryFilter(in []*entity.Supplier, category string) []*entity.Supplier {
	folded := listing.Fold(category)
	if folded == "" {
		return in
	}
	out := make([]*entity.Supplier, 0, len(in))
	for _, s := range in {
		for _, c := range s.Categories {
			if listing.Fold(c) == folded {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// PayableSpec búsqueda por proveedor, número verificador o categoría.
// Estado: pendiente | pagado | activos | inactivos | todos.
var PayableSpec = listing.Spec[*entity.Payable]{
	SearchFields: func(p *entity.Payable) []string { return []string{p.Provider, p.VerificationNumber, p.Category} },
	CategoryOf:   func(p *entity.Payable) string { return p.Category },
	StatusMatch:  payableStatusMatch,
	Sorters:      payableSorters,
	DefaultSort:  "mes",
}

func payableStatusMatch(p *entity.Payable, s string) bool {
	switch s {
	case entity.PayablePending, entity.PayablePaid:
		return p.Active && p.Status == s
	}
	return activeMatch(p.Active, s)
}

var payableSorters = map[string]func(a, b *entity.Payable) bool{
	"mes":       func(a, b *entity.Payable) bool { return a.Month > b.Month },
	"monto":     func(a, b *entity.Payable) bool { return a.Amount.LessThan(b.Amount) },
	"proveedor": func(a, b *entity.Payable) bool { return strings.ToLower(a.Provider) < strings.ToLower(b.Provider) },
}
