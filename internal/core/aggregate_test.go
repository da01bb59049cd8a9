package core

import (
	"errors"
	"testing"
	"time"
)

func tx(amountCents int64, typ TxType, cat Category, day int) Transaction {
	return Transaction{
		OwnerID:     "u1",
		Amount:      Money{Cents: amountCents},
		Date:        time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
		Description: "test",
		Category:    cat,
		Type:        typ,
	}
}

func TestAggregateExample(t *testing.T) {
	// 500 expense on food, 2000 uncategorized income
	txs := []Transaction{
		tx(50000, Expense, CategoryFood, 5),
		tx(200000, Income, "", 10),
	}

	s, err := Aggregate(txs)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if s.TotalIncome.Cents != 200000 {
		t.Errorf("TotalIncome = %d, want 200000", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != 50000 {
		t.Errorf("TotalExpense = %d, want 50000", s.TotalExpense.Cents)
	}
	if s.NetBalance.Cents != 150000 {
		t.Errorf("NetBalance = %d, want 150000", s.NetBalance.Cents)
	}
	if len(s.CategoryTotals) != 1 || s.CategoryTotals[CategoryFood].Cents != 50000 {
		t.Errorf("CategoryTotals = %v, want {food:50000}", s.CategoryTotals)
	}
}

func TestAggregateEmpty(t *testing.T) {
	s, err := Aggregate(nil)
	if err != nil {
		t.Fatalf("Aggregate(nil): %v", err)
	}
	if s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 || s.NetBalance.Cents != 0 {
		t.Errorf("empty input should produce zero totals, got %+v", s)
	}
	if len(s.CategoryTotals) != 0 {
		t.Errorf("empty input should produce no category totals, got %v", s.CategoryTotals)
	}
}

func TestAggregateBalanceInvariants(t *testing.T) {
	txs := []Transaction{
		tx(1099, Expense, CategoryFood, 1),
		tx(2301, Expense, CategoryFood, 2),
		tx(500, Expense, CategoryTransport, 3),
		tx(100000, Income, "", 4),
		tx(999, Income, CategoryOther, 5),
		tx(450, Expense, "", 6),
	}

	s, err := Aggregate(txs)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	// income - expense == net, exactly
	if s.TotalIncome.Cents-s.TotalExpense.Cents != s.NetBalance.Cents {
		t.Errorf("net balance drift: %d - %d != %d",
			s.TotalIncome.Cents, s.TotalExpense.Cents, s.NetBalance.Cents)
	}

	// sum(categoryTotals) + uncategorized == income + expense
	var categorized int64
	for _, m := range s.CategoryTotals {
		categorized += m.Cents
	}
	var uncategorized int64
	for _, x := range txs {
		if x.Category == "" {
			uncategorized += x.Amount.Cents
		}
	}
	if categorized+uncategorized != s.TotalIncome.Cents+s.TotalExpense.Cents {
		t.Errorf("category partition broken: %d + %d != %d + %d",
			categorized, uncategorized, s.TotalIncome.Cents, s.TotalExpense.Cents)
	}
}

func TestAggregateRejectsInvalid(t *testing.T) {
	if _, err := Aggregate([]Transaction{tx(-100, Expense, CategoryFood, 1)}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	bad := tx(100, "transfer", CategoryFood, 1)
	if _, err := Aggregate([]Transaction{bad}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("unknown type: got %v, want ErrInvalidType", err)
	}
}

func TestSummaryByCategoryOrderAndTop(t *testing.T) {
	s, err := Aggregate([]Transaction{
		tx(500, Expense, CategoryTransport, 1),
		tx(900, Expense, CategoryFood, 2),
		tx(900, Expense, CategoryBills, 3),
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	by := s.ByCategory()
	if len(by) != 3 {
		t.Fatalf("ByCategory len = %d, want 3", len(by))
	}
	// display order is fixed regardless of map iteration order
	if by[0].Name != CategoryFood || by[1].Name != CategoryTransport || by[2].Name != CategoryBills {
		t.Errorf("ByCategory order = %v", by)
	}
	// tie between food and bills resolves to the earlier display category
	if got := s.TopCategory(); got != CategoryFood {
		t.Errorf("TopCategory = %q, want food", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := tx(100, Expense, CategoryFood, 1)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero date", func(x *Transaction) { x.Date = time.Time{} }, ErrInvalidDate},
		{"empty description", func(x *Transaction) { x.Description = "  " }, ErrEmptyDescription},
		{"negative amount", func(x *Transaction) { x.Amount.Cents = -1 }, ErrInvalidAmount},
		{"bad type", func(x *Transaction) { x.Type = "loan" }, ErrInvalidType},
		{"bad category", func(x *Transaction) { x.Category = "gadgets" }, ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x := valid
			tc.mutate(&x)
			if err := x.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory(" Food "); err != nil || c != CategoryFood {
		t.Errorf("ParseCategory(Food) = %q, %v", c, err)
	}
	if c, err := ParseCategory(""); err != nil || c != "" {
		t.Errorf("ParseCategory(empty) = %q, %v", c, err)
	}
	if _, err := ParseCategory("gadgets"); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("ParseCategory(gadgets) err = %v", err)
	}
}
