package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrProductInactive    = errors.New("producto desactivado")
	ErrTicketVoided       = errors.New("el ticket ya fue anulado")
	ErrReportFailed       = errors.New("no se pudo generar el reporte")
	ErrUnsupportedMedia   = errors.New("tipo de archivo no permitido")
	ErrAssistantDisabled  = errors.New("asistente no configurado")
)
