package dto

import "github.com/ladespensa/despensa-api/internal/domain/listing"

// NoResultsMessage texto que acompaña a un listado vacío.
const NoResultsMessage = "no hay resultados"

// Envelope forma única de toda respuesta exitosa: {"data": ..., "meta": ...}.
type Envelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// ListQuery parámetros comunes de los listados (query string).
type ListQuery struct {
	Q         string `query:"q"`
	Categoria string `query:"categoria"`
	Estado    string `query:"estado"`
	Orden     string `query:"orden"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}

// ToListing convierte a la consulta del pipeline de listados.
func (q ListQuery) ToListing() listing.Query {
	return listing.Query{
		Search:   q.Q,
		Category: q.Categoria,
		Status:   q.Estado,
		Sort:     q.Orden,
		Page:     q.Page,
		PageSize: q.Limit,
	}
}

// PageMeta metadatos de página en respuestas.
type PageMeta struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	Message    string `json:"message,omitempty"`
}

// NewPageMeta construye los metadatos a partir de una página del pipeline.
func NewPageMeta[T any](p listing.Page[T]) PageMeta {
	m := PageMeta{Page: p.Page, Limit: p.PageSize, Total: p.Total, TotalPages: p.TotalPages}
	if p.Empty() {
		m.Message = NoResultsMessage
	}
	return m
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ListResponse lista paginada que devuelven los casos de uso.
type ListResponse[T any] struct {
	Items []T
	Meta  PageMeta
}
