package ingest

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dev-shahrooz/Smart-Pricing/internal/model"
)

var fxHeader = []string{"date", "usd_rate"}

// LoadFxRates parses the currency feed. Expected columns: date (YYYY-MM-DD),
// usd_rate. Output is sorted by date ascending, the order the forecaster
// consumes.
func LoadFxRates(r io.Reader, maxRows int) ([]model.CurrencyRate, []RowError, error) {
	reader := newCSVReader(r)

	if err := requireHeader(reader, fxHeader); err != nil {
		return nil, nil, err
	}

	var rates []model.CurrencyRate
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
		if len(row) != len(fxHeader) {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "expected 2 columns: date,usd_rate"})
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "date must be YYYY-MM-DD"})
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(row[1]))
		if err != nil || !rate.IsPositive() {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "usd_rate must be a positive number"})
			continue
		}

		rates = append(rates, model.CurrencyRate{Date: date, USDRate: rate})
	}

	sort.Slice(rates, func(i, j int) bool { return rates[i].Date.Before(rates[j].Date) })
	return rates, rowErrs, nil
}
