package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized 401 que persiste después de un refresh exitoso.
	ErrUnauthorized = errors.New("client: no autorizado")
	// ErrSessionExpired el refresh falló; la sesión local quedó limpia.
	ErrSessionExpired = errors.New("client: sesión expirada")
	ErrForbidden      = errors.New("client: permiso denegado")
	ErrNotFound       = errors.New("client: no encontrado")
	ErrConflict       = errors.New("client: conflicto")
	ErrValidation     = errors.New("client: datos inválidos")
)

// APIError respuesta de error de la API ({"code","message","fields"}).
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap permite errors.Is contra los sentinels según el status.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	}
	return nil
}
