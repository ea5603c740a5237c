package ingest

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
)

var partPricesHeader = []string{"date", "part_name", "unit_price_usd", "qty", "source"}

// LoadPartPrices parses a component price-history feed into observations
// grouped by part name. Expected columns: date (YYYY-MM-DD), part_name,
// unit_price_usd, qty, source. Qty and source are provenance columns; they
// must parse but do not enter the fit.
func LoadPartPrices(r io.Reader, maxRows int) (map[string][]engine.PartPricePoint, []RowError, error) {
	reader := newCSVReader(r)

	if err := requireHeader(reader, partPricesHeader); err != nil {
		return nil, nil, err
	}

	byPart := make(map[string][]engine.PartPricePoint)
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
		if len(row) != len(partPricesHeader) {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "expected 5 columns: date,part_name,unit_price_usd,qty,source"})
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "date must be YYYY-MM-DD"})
			continue
		}
		part := strings.TrimSpace(row[1])
		if part == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "part_name is required"})
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil || price < 0 {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "unit_price_usd must be a non-negative number"})
			continue
		}
		if qty := strings.TrimSpace(row[3]); qty != "" {
			if n, err := strconv.Atoi(qty); err != nil || n < 0 {
				rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "qty must be a non-negative integer"})
				continue
			}
		}

		byPart[part] = append(byPart[part], engine.PartPricePoint{Date: date, UnitPriceUSD: price})
	}
	return byPart, rowErrs, nil
}
