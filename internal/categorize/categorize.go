// Package categorize assigns a category to transactions that arrive
// without one, using keyword matching on the description.
package categorize

import (
	"strings"

	"finlog/internal/core"
)

type rule struct {
	keywords []string
	category core.Category
}

// Rules are checked in order; the first keyword hit wins. Keep the more
// specific buckets above CategoryOther fallbacks like "store".
var rules = []rule{
	{[]string{"grocer", "supermarket", "mart"}, core.CategoryGroceries},
	{[]string{"restaurant", "cafe", "coffee", "pizza", "food", "dinner", "lunch", "breakfast"}, core.CategoryFood},
	{[]string{"uber", "taxi", "cab", "bus", "train", "metro", "fuel", "petrol", "parking"}, core.CategoryTransport},
	{[]string{"amazon", "flipkart", "mall", "store", "shop", "clothing"}, core.CategoryShopping},
	{[]string{"movie", "cinema", "netflix", "spotify", "game", "concert"}, core.CategoryEntertainment},
	{[]string{"electricity", "water", "internet", "rent", "bill", "recharge", "insurance"}, core.CategoryBills},
}

// Suggest returns the category matched by the description, or
// CategoryOther when nothing matches.
func Suggest(description string) core.Category {
	desc := strings.ToLower(description)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				return r.category
			}
		}
	}
	return core.CategoryOther
}

// Apply fills in the category on a transaction that has none and leaves
// explicit categories untouched.
func Apply(tx core.Transaction) core.Transaction {
	if tx.Category == "" {
		tx.Category = Suggest(tx.Description)
	}
	return tx
}
