package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

func TestCan(t *testing.T) {
	cases := []struct {
		role string
		perm Permission
		want bool
	}{
		{entity.RoleAdmin, UsersCreate, true},
		{entity.RoleAdmin, ProductsDelete, true},
		{entity.RoleJefe, ProductsDelete, true},
		{entity.RoleJefe, SalesVoid, true},
		{entity.RoleJefe, PayablesPay, true},
		{entity.RoleJefe, UsersCreate, false},
		{entity.RoleEmpleado, SalesCreate, true},
		{entity.RoleEmpleado, ProductsDelete, false},
		{entity.RoleEmpleado, ProductsEditPrice, false},
		{entity.RoleEmpleado, ProductsCreate, false},
		{entity.RoleEmpleado, LotsCreate, true},
		{entity.RoleEmpleado, SalesVoid, false},
		{entity.RoleEmpleado, PayablesView, false},
		{"invitado", ProductsView, false},
		{"", ProductsView, false},
	}
	for _, tc := range cases {
		t.Run(tc.role+"/"+string(tc.perm), func(t *testing.T) {
			assert.Equal(t, tc.want, Can(tc.role, tc.perm))
		})
	}
}

func TestComodinNoCruzaRecursos(t *testing.T) {
	assert.False(t, matches("cuentas:*", "cuentasx:ver"))
	assert.True(t, matches("cuentas:*", "cuentas:pagar"))
}

func TestTable(t *testing.T) {
	tbl := Table()
	assert.Len(t, tbl[entity.RoleAdmin], len(All()))
	assert.Contains(t, tbl[entity.RoleEmpleado], SalesCreate)
	assert.NotContains(t, tbl[entity.RoleEmpleado], ProductsDelete)
	assert.NotContains(t, tbl[entity.RoleJefe], UsersCreate)
}
