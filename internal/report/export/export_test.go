package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"finlog/internal/core"
)

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{
			ID:          1,
			OwnerID:     "u1",
			Amount:      core.Money{Cents: 50000},
			Date:        time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC),
			Description: "groceries, weekly \"big\" run",
			Category:    core.CategoryGroceries,
			Type:        core.Expense,
		},
		{
			ID:          2,
			OwnerID:     "u1",
			Amount:      core.Money{Cents: 200000},
			Date:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Description: "salary\nJanuary",
			Type:        core.Income,
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	txs := sampleTransactions()
	b, err := CSV(txs)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("parse generated csv: %v", err)
	}
	if len(records) != len(txs)+1 {
		t.Fatalf("got %d records, want %d", len(records), len(txs)+1)
	}

	want := [][]string{
		{"date", "description", "category", "amount", "type"},
		{"2025-01-05", "groceries, weekly \"big\" run", "groceries", "500.00", "expense"},
		{"2025-01-10", "salary\nJanuary", "", "2000.00", "income"},
	}
	for i, row := range want {
		for j, cell := range row {
			if records[i][j] != cell {
				t.Errorf("record[%d][%d] = %q, want %q", i, j, records[i][j], cell)
			}
		}
	}
}

func TestCSVEmptyInput(t *testing.T) {
	b, err := CSV(nil)
	if err != nil {
		t.Fatalf("CSV(nil): %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("empty input should produce header only, got %d records", len(records))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	txs := sampleTransactions()
	b, err := JSON(txs)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var back []core.Transaction
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal generated json: %v", err)
	}
	if len(back) != len(txs) {
		t.Fatalf("got %d transactions, want %d", len(back), len(txs))
	}
	for i := range txs {
		if back[i].Description != txs[i].Description ||
			back[i].Amount.Cents != txs[i].Amount.Cents ||
			back[i].Category != txs[i].Category ||
			back[i].Type != txs[i].Type {
			t.Errorf("transaction %d mismatch: got %+v, want %+v", i, back[i], txs[i])
		}
	}
}
