// Package listing implementa el pipeline de vistas derivadas que usan todos los listados:
// filtro → orden → paginación. Es puro y no conoce HTTP ni la base de datos.
package listing

import (
	"sort"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query parámetros de un listado.
type Query struct {
	Search   string
	Category string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// Spec describe cómo filtrar y ordenar una colección concreta.
type Spec[T any] struct {
	// SearchFields devuelve los campos (1 a 3) sobre los que busca Query.Search.
	SearchFields func(T) []string

	// CategoryOf devuelve la categoría del elemento; nil desactiva el filtro.
	CategoryOf func(T) string

	// StatusMatch decide si el elemento cumple Query.Status; nil desactiva el filtro.
	StatusMatch func(item T, status string) bool

	// Sorters comparadores "menor que" por nombre de orden.
	Sorters     map[string]func(a, b T) bool
	DefaultSort string
}

// Page resultado paginado.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// Empty indica que no hubo resultados tras filtrar.
func (p Page[T]) Empty() bool { return p.Total == 0 }

// Apply filtra y ordena. No modifica items.
func Apply[T any](items []T, q Query, spec Spec[T]) []T {
	out := Filter(items, q, spec)
	SortBy(out, q.Sort, spec)
	return out
}

// Run ejecuta el pipeline completo.
func Run[T any](items []T, q Query, spec Spec[T]) Page[T] {
	return Paginate(Apply(items, q, spec), q.Page, q.PageSize)
}

// Filter aplica búsqueda, categoría y estado.
func Filter[T any](items []T, q Query, spec Spec[T]) []T {
	search := Fold(q.Search)
	category := Fold(q.Category)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if search != "" && spec.SearchFields != nil && !matchAny(spec.SearchFields(it), search) {
			continue
		}
		if category != "" && spec.CategoryOf != nil && Fold(spec.CategoryOf(it)) != category {
			continue
		}
		if q.Status != "" && spec.StatusMatch != nil && !spec.StatusMatch(it, q.Status) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchAny(fields []string, folded string) bool {
	for _, f := range fields {
		if strings.Contains(Fold(f), folded) {
			return true
		}
	}
	return false
}

// SortBy ordena in-place de forma estable. Un nombre desconocido usa DefaultSort;
// el prefijo "-" invierte el orden.
func SortBy[T any](items []T, name string, spec Spec[T]) {
	desc := strings.HasPrefix(name, "-")
	name = strings.TrimPrefix(name, "-")
	less, ok := spec.Sorters[name]
	if !ok {
		less, ok = spec.Sorters[spec.DefaultSort]
		desc = false
	}
	if !ok {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// Paginate recorta una colección ya filtrada. TotalPages = ceil(N/P); una página
// fuera de rango se ajusta a la última y page < 1 equivale a 1.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if total == 0 {
		return Page[T]{Items: []T{}, Page: 1, PageSize: pageSize}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
