package dto

import "time"

// CreateSupplierRequest body de POST /proveedores.
type CreateSupplierRequest struct {
	Name       string   `json:"nombre" validate:"required,min=1,max=200"`
	Contact    string   `json:"contacto" validate:"max=120"`
	Phone      string   `json:"telefono" validate:"max=40"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Address    string   `json:"direccion" validate:"max=300"`
	Categories []string `json:"categorias" validate:"dive,min=1,max=120"`
	ProductIDs []string `json:"productos" validate:"dive,required"`
}

// UpdateSupplierRequest body de PATCH /proveedores/:id.
type UpdateSupplierRequest struct {
	Name       *string   `json:"nombre" validate:"omitempty,min=1,max=200"`
	Contact    *string   `json:"contacto" validate:"omitempty,max=120"`
	Phone      *string   `json:"telefono" validate:"omitempty,max=40"`
	Email      *string   `json:"email" validate:"omitempty,email"`
	Address    *string   `json:"direccion" validate:"omitempty,max=300"`
	Categories *[]string `json:"categorias"`
	ProductIDs *[]string `json:"productos"`
}

// SetActiveRequest body de PATCH /proveedores/:id/estado.
type SetActiveRequest struct {
	Active *bool `json:"activo" validate:"required"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"nombre"`
	Contact    string    `json:"contacto"`
	Phone      string    `json:"telefono"`
	Email      string    `json:"email"`
	Address    string    `json:"direccion"`
	Categories []string  `json:"categorias"`
	ProductIDs []string  `json:"productos"`
	Active     bool      `json:"activo"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
