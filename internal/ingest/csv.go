package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrTooManyRows rejects pathologically large uploads instead of letting a
// fit churn on them.
var ErrTooManyRows = errors.New("csv exceeds the maximum row count")

// FormatError means the file as a whole is unusable (no header, wrong
// columns), as opposed to RowError which rejects a single row.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid csv: " + e.Reason
}

// RowError describes one rejected row: which row, which rule.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// requireHeader consumes the first row and checks it names exactly the
// expected columns (order-sensitive, case-insensitive).
func requireHeader(reader *csv.Reader, expected []string) error {
	header, err := reader.Read()
	if err != nil {
		return &FormatError{Reason: "missing header row"}
	}
	if len(header) != len(expected) {
		return &FormatError{Reason: "header must be: " + strings.Join(expected, ",")}
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), expected[i]) {
			return &FormatError{Reason: "header must be: " + strings.Join(expected, ",")}
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
