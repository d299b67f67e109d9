// Package rbac contiene la tabla estática de permisos por rol.
// El middleware HTTP la usa para autorizar y GET /api/auth/permissions la expone a la UI.
package rbac

import (
	"sort"
	"strings"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// Permission acción protegida con formato "recurso:accion".
type Permission string

const (
	ProductsView      Permission = "productos:ver"
	ProductsCreate    Permission = "productos:crear"
	ProductsEdit      Permission = "productos:editar"
	ProductsEditPrice Permission = "productos:editar_precio"
	ProductsDisable   Permission = "productos:desactivar"
	ProductsDelete    Permission = "productos:eliminar"

	LotsCreate Permission = "lotes:crear"
	LotsEdit   Permission = "lotes:editar"

	SalesCreate Permission = "ventas:crear"
	SalesView   Permission = "ventas:ver"
	SalesReturn Permission = "ventas:devolver"
	SalesVoid   Permission = "ventas:anular"

	SuppliersView   Permission = "proveedores:ver"
	SuppliersManage Permission = "proveedores:gestionar"

	PayablesView   Permission = "cuentas:ver"
	PayablesManage Permission = "cuentas:gestionar"
	PayablesPay    Permission = "cuentas:pagar"

	ReportsView    Permission = "reportes:ver"
	StatsView      Permission = "estadisticas:ver"
	AssistantQuery Permission = "asistente:consultar"
	UsersCreate    Permission = "usuarios:crear"
)

// Wildcard "recurso:*" concede todas las acciones del recurso; "*" concede todo.
const Wildcard = "*"

var table = map[string][]Permission{
	entity.RoleAdmin: {
		Wildcard,
	},
	entity.RoleJefe: {
		"productos:*",
		"lotes:*",
		"ventas:*",
		"proveedores:*",
		"cuentas:*",
		ReportsView,
		StatsView,
		AssistantQuery,
	},
	entity.RoleEmpleado: {
		ProductsView,
		ProductsEdit,
		LotsCreate,
		SalesCreate,
		SalesView,
		SalesReturn,
		SuppliersView,
		AssistantQuery,
	},
}

// Can indica si el rol tiene el permiso. Un rol desconocido no tiene ninguno.
func Can(role string, perm Permission) bool {
	for _, granted := range table[role] {
		if matches(granted, perm) {
			return true
		}
	}
	return false
}

func matches(granted, perm Permission) bool {
	if granted == Wildcard || granted == perm {
		return true
	}
	g := string(granted)
	if strings.HasSuffix(g, ":*") {
		return strings.HasPrefix(string(perm), strings.TrimSuffix(g, "*"))
	}
	return false
}

// All lista de permisos conocidos en orden alfabético.
func All() []Permission {
	out := []Permission{
		ProductsView, ProductsCreate, ProductsEdit, ProductsEditPrice, ProductsDisable, ProductsDelete,
		LotsCreate, LotsEdit,
		SalesCreate, SalesView, SalesReturn, SalesVoid,
		SuppliersView, SuppliersManage,
		PayablesView, PayablesManage, PayablesPay,
		ReportsView, StatsView, AssistantQuery, UsersCreate,
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Expand devuelve los permisos concretos del rol (comodines resueltos).
func Expand(role string) []Permission {
	out := make([]Permission, 0, 8)
	for _, p := range All() {
		if Can(role, p) {
			out = append(out, p)
		}
	}
	return out
}

// Table devuelve la tabla completa rol → permisos concretos.
func Table() map[string][]Permission {
	return map[string][]Permission{
		entity.RoleAdmin:    Expand(entity.RoleAdmin),
		entity.RoleJefe:     Expand(entity.RoleJefe),
		entity.RoleEmpleado: Expand(entity.RoleEmpleado),
	}
}
