package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ladespensa/despensa-api/internal/application/dto"
)

// columnas del catálogo exportado de la planilla anterior.
var catalogColumns = []string{
	"codigo_barras", "nombre", "marca", "categoria",
	"precio_compra", "precio_venta", "cantidad", "fecha_vencimiento",
}

// parseCatalog lee el CSV (separador ',' o ';') y devuelve una solicitud de alta por fila.
// Con latin1 el archivo se decodifica desde ISO-8859-1, como exporta Excel en Windows.
func parseCatalog(r io.Reader, latin1 bool) ([]dto.CreateProductRequest, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectComma(text)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(rows) <= 1 {
		return nil, errors.New("catálogo vacío")
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range catalogColumns[:6] {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %q", col)
		}
	}
	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]dto.CreateProductRequest, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		req := dto.CreateProductRequest{
			Barcode:  cell(row, "codigo_barras"),
			Name:     cell(row, "nombre"),
			Brand:    cell(row, "marca"),
			Category: cell(row, "categoria"),
		}
		if req.Barcode == "" || req.Name == "" {
			return nil, fmt.Errorf("fila %d: codigo_barras y nombre son obligatorios", line)
		}
		if req.PurchasePrice, err = parseMoney(cell(row, "precio_compra")); err != nil {
			return nil, fmt.Errorf("fila %d: precio_compra: %w", line, err)
		}
		if req.SalePrice, err = parseMoney(cell(row, "precio_venta")); err != nil {
			return nil, fmt.Errorf("fila %d: precio_venta: %w", line, err)
		}
		if q := cell(row, "cantidad"); q != "" {
			if req.Quantity, err = strconv.Atoi(q); err != nil || req.Quantity < 0 {
				return nil, fmt.Errorf("fila %d: cantidad %q inválida", line, q)
			}
		}
		if f := cell(row, "fecha_vencimiento"); f != "" {
			t, err := time.ParseInLocation(time.DateOnly, f, time.Local)
			if err != nil {
				return nil, fmt.Errorf("fila %d: fecha_vencimiento %q: se espera AAAA-MM-DD", line, f)
			}
			req.ExpiryDate = &t
		}
		out = append(out, req)
	}
	return out, nil
}

// parseMoney acepta "1500", "1500.50" y el formato local "1.500" / "1.500,50". Sin coma, un
// punto seguido de exactamente tres dígitos se toma como separador de miles.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return decimal.Zero, nil
	}
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case thousandsDots(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	return decimal.NewFromString(s)
}

func thousandsDots(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

func detectComma(text string) rune {
	header, _, _ := strings.Cut(text, "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}
