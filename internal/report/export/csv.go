// Package export serializes transaction sets into the interchange
// formats (CSV, JSON) offered alongside the PDF report.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"finlog/internal/core"
)

// csvHeader is the fixed column order of the CSV artifact.
var csvHeader = []string{"date", "description", "category", "amount", "type"}

// CSV serializes the transaction sequence one row per transaction,
// order-preserved, with standard quoting for embedded delimiters,
// quotes and newlines. Amounts use the plain decimal form ("12.34").
func CSV(txs []core.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		row := []string{
			t.Date.UTC().Format("2006-01-02"),
			t.Description,
			string(t.Category),
			t.Amount.String(),
			string(t.Type),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
