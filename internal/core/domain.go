package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryBills         Category = "bills"
	CategoryGroceries     Category = "groceries"
	CategoryOther         Category = "other"
)

type (
	TxType string

	// Category labels a transaction's spending purpose. The empty string
	// means "uncategorized": such transactions still count toward the
	// income/expense totals but never appear in category breakdowns.
	Category string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64     `json:"id"`
		OwnerID     string    `json:"owner_id"`
		Amount      Money     `json:"amount"`
		Date        time.Time `json:"date"`
		Description string    `json:"description"`
		Category    Category  `json:"category,omitempty"`
		Type        TxType    `json:"type"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidDate      = errors.New("invalid date")
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBills,
		CategoryGroceries,
		CategoryOther,
	}
}

// ParseCategory normalizes and validates a category label. The empty
// string is valid and means uncategorized.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, c := range Categories() {
		if Category(s) == c {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", ErrInvalidType
}

// Validate checks a stored amount. Amounts are always non-negative; the
// transaction type decides the sign of the contribution to the net
// balance.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if t.Category != "" {
		if _, err := ParseCategory(string(t.Category)); err != nil {
			return err
		}
	}
	return nil
}
