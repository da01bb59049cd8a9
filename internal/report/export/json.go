package export

import (
	"encoding/json"
	"fmt"

	"finlog/internal/core"
)

// JSON dumps the full transaction sequence as-is, indented for human
// inspection. No aggregation is performed.
func JSON(txs []core.Transaction) ([]byte, error) {
	b, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal transactions: %w", err)
	}
	return b, nil
}
