package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseCatalog_PuntoYComaYFormatoLocal(t *testing.T) {
	in := "codigo_barras;nombre;marca;categoria;precio_compra;precio_venta;cantidad;fecha_vencimiento\n" +
		"780001;Arroz grado 1;Tucapel;Abarrotes;1.000,50;$1.500;12;2026-12-31\n" +
		"780002;Sal;Lobos;Abarrotes;300;450;;\n"

	items, err := parseCatalog(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "780001", items[0].Barcode)
	assert.Equal(t, "1000.5", items[0].PurchasePrice.String())
	assert.Equal(t, "1500", items[0].SalePrice.String())
	assert.Equal(t, 12, items[0].Quantity)
	require.NotNil(t, items[0].ExpiryDate)
	assert.Equal(t, 31, items[0].ExpiryDate.Day())

	assert.Equal(t, 0, items[1].Quantity)
	assert.Nil(t, items[1].ExpiryDate)
}

func TestParseCatalog_Latin1(t *testing.T) {
	utf := "codigo_barras,nombre,marca,categoria,precio_compra,precio_venta\n1,Té ñandú,Supremo,Bebidas,100,150\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(utf)
	require.NoError(t, err)

	items, err := parseCatalog(bytes.NewReader([]byte(encoded)), true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Té ñandú", items[0].Name)
}

func TestParseCatalog_Errores(t *testing.T) {
	_, err := parseCatalog(strings.NewReader("codigo_barras,nombre\n1,Sal\n"), false)
	assert.ErrorContains(t, err, "marca")

	_, err = parseCatalog(strings.NewReader("codigo_barras,nombre,marca,categoria,precio_compra,precio_venta\n"), false)
	assert.Error(t, err)

	_, err = parseCatalog(strings.NewReader(
		"codigo_barras,nombre,marca,categoria,precio_compra,precio_venta,cantidad\n1,Sal,,,10,20,-3\n"), false)
	assert.ErrorContains(t, err, "fila 2")
}

func TestParseMoney(t *testing.T) {
	cases := map[string]string{
		"1500":       "1500",
		"1500.50":    "1500.5",
		"1.500":      "1500",
		"$1.250.000": "1250000",
		"1.000,50":   "1000.5",
		"":           "0",
	}
	for in, want := range cases {
		got, err := parseMoney(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}
}
