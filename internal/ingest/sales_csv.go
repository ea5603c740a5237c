// Package ingest parses the three CSV feeds (sales, FX, BOM) into typed
// records. Malformed rows are reported individually and skipped — a bad row
// never sinks the rest of the batch. Whole-file failures are reserved for a
// missing/invalid header and for exceeding the row cap.
package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
)

var salesHeader = []string{"month", "product_code", "price", "units_sold"}

// LoadSales parses the sales feed into records grouped by product code.
// Expected columns: month (YYYY-MM), product_code, price, units_sold.
func LoadSales(r io.Reader, maxRows int) (map[string][]model.SalesRecord, []RowError, error) {
	reader := newCSVReader(r)

	if err := requireHeader(reader, salesHeader); err != nil {
		return nil, nil, err
	}

	byProduct := make(map[string][]model.SalesRecord)
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
		if len(row) != len(salesHeader) {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: fmt.Sprintf("has %d columns; expected %d", len(row), len(salesHeader))})
			continue
		}

		month := strings.TrimSpace(row[0])
		code := strings.TrimSpace(row[1])
		if month == "" || code == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "month and product_code are required"})
			continue
		}

		price, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil || !price.IsPositive() {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "price must be a positive number"})
			continue
		}
		units, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil || units < 0 {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "units_sold must be a non-negative integer"})
			continue
		}

		byProduct[code] = append(byProduct[code], model.SalesRecord{
			Month:       month,
			ProductCode: code,
			Price:       price,
			UnitsSold:   units,
		})
	}
	return byProduct, rowErrs, nil
}
