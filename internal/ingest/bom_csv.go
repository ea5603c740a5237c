package ingest

import (
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
)

var bomHeader = []string{"product_code", "part_name", "quantity", "unit_price_usd"}

// LoadBom parses a bill-of-materials upload into lines grouped by product
// code. Expected columns: product_code, part_name, quantity, unit_price_usd.
func LoadBom(r io.Reader, maxRows int) (map[string][]model.BomItem, []RowError, error) {
	reader := newCSVReader(r)

	if err := requireHeader(reader, bomHeader); err != nil {
		return nil, nil, err
	}

	byProduct := make(map[string][]model.BomItem)
	var rowErrs []RowError
	total := 0

	for rowNum := 2; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "unparseable row"})
			continue
		}
		if isBlank(row) {
			continue
		}
		total++
		if total > maxRows {
			return nil, rowErrs, ErrTooManyRows
		}
		if len(row) != len(bomHeader) {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "expected 4 columns: product_code,part_name,quantity,unit_price_usd"})
			continue
		}

		code := strings.TrimSpace(row[0])
		part := strings.TrimSpace(row[1])
		if code == "" || part == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "product_code and part_name are required"})
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil || qty <= 0 {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "quantity must be a positive integer"})
			continue
		}
		unitPrice, err := decimal.NewFromString(strings.TrimSpace(row[3]))
		if err != nil || unitPrice.IsNegative() {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "unit_price_usd must be a non-negative number"})
			continue
		}

		byProduct[code] = append(byProduct[code], model.BomItem{
			ProductCode:  code,
			PartName:     part,
			Quantity:     qty,
			UnitPriceUSD: unitPrice,
		})
	}
	return byProduct, rowErrs, nil
}
