package core

import "fmt"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   Category
	Amount Money
}

// Summary is the aggregate of a transaction set: per-category totals and
// the overall income/expense/net figures.
type Summary struct {
	CategoryTotals map[Category]Money
	TotalIncome    Money
	TotalExpense   Money
	NetBalance     Money
}

// Aggregate reduces a transaction sequence, already filtered to one owner
// and date range, into a Summary. Category totals sum amounts regardless
// of type; uncategorized transactions are excluded from the category map
// but still count toward the income/expense totals. The input order is
// irrelevant and the input is never mutated.
func Aggregate(txs []Transaction) (Summary, error) {
	s := Summary{CategoryTotals: make(map[Category]Money)}
	for _, t := range txs {
		if err := t.Amount.Validate(); err != nil {
			return Summary{}, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		switch t.Type {
		case Income:
			s.TotalIncome.Cents += t.Amount.Cents
		case Expense:
			s.TotalExpense.Cents += t.Amount.Cents
		default:
			return Summary{}, fmt.Errorf("transaction %d: %w", t.ID, ErrInvalidType)
		}
		if t.Category != "" {
			total := s.CategoryTotals[t.Category]
			total.Cents += t.Amount.Cents
			s.CategoryTotals[t.Category] = total
		}
	}
	s.NetBalance.Cents = s.TotalIncome.Cents - s.TotalExpense.Cents
	return s, nil
}

// ByCategory returns the category totals in the fixed display order of
// Categories(). Consumers must not rely on map iteration order for
// anything user-visible.
func (s Summary) ByCategory() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s.CategoryTotals))
	for _, c := range Categories() {
		if amount, ok := s.CategoryTotals[c]; ok {
			out = append(out, CategoryAmount{Name: c, Amount: amount})
		}
	}
	return out
}

// TopCategory returns the category with the largest total, or "" when
// everything is uncategorized. Ties resolve to the earlier category in
// display order.
func (s Summary) TopCategory() Category {
	var top Category
	var best int64 = -1
	for _, ca := range s.ByCategory() {
		if ca.Amount.Cents > best {
			best = ca.Amount.Cents
			top = ca.Name
		}
	}
	return top
}
