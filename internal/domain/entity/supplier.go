package entity

import "time"

// Supplier (proveedor) con sus datos de contacto y los productos que provee.
type Supplier struct {
	ID         string
	Name       string
	Contact    string
	Phone      string
	Email      string
	Address    string
	Categories []string
	ProductIDs []string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
