package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/pkg/textnorm"
)

// catalogRow una fila del CSV ya convertida. Category es el nombre (se resuelve a ID después).
type catalogRow struct {
	Line     int
	Category string
	Product  dto.CreateProductRequest
}

var requiredColumns = []string{"name", "sku", "price"}

// parseCatalog lee el CSV (cabecera obligatoria; separador , o ;). Columnas reconocidas:
// name, sku, barcode, category, price, cost, initial_stock, min_stock. Los montos aceptan coma decimal.
func parseCatalog(r io.Reader, sep rune) ([]catalogRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[textnorm.Normalize(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	var (
		rows []catalogRow
		errs []error
	)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(col string) string {
			if i, ok := cols[col]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if get("name") == "" && get("sku") == "" {
			continue
		}
		row, err := buildRow(line, get)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, errors.Join(errs...)
}

func buildRow(line int, get func(string) string) (catalogRow, error) {
	row := catalogRow{Line: line, Category: get("category")}
	p := dto.CreateProductRequest{
		Name:    get("name"),
		SKU:     get("sku"),
		Barcode: get("barcode"),
	}
	var err error
	if p.Price, err = parseMoney(get("price")); err != nil {
		return row, fmt.Errorf("línea %d: price: %w", line, err)
	}
	if p.Cost, err = parseMoney(get("cost")); err != nil {
		return row, fmt.Errorf("línea %d: cost: %w", line, err)
	}
	if p.InitialStock, err = parseQty(get("initial_stock")); err != nil {
		return row, fmt.Errorf("línea %d: initial_stock: %w", line, err)
	}
	if p.MinStock, err = parseQty(get("min_stock")); err != nil {
		return row, fmt.Errorf("línea %d: min_stock: %w", line, err)
	}
	row.Product = p
	return row, nil
}

// parseMoney acepta "1234.50", "1234,50" y "1.234,50". Vacío = 0.
func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

func parseQty(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("no puede ser negativo")
	}
	return n, nil
}
