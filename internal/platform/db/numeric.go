package db

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseNumeric converts a NUMERIC column selected as text into a decimal.
// Queries cast numeric columns with ::text so no pgx type registration is needed.
func ParseNumeric(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("platform/db: parse numeric %q: %w", raw, err)
	}
	return d, nil
}
