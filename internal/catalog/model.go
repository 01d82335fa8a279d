// Package catalog reads the goods master data referenced by quotation lines.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// StatusActive marks goods that may be quoted.
const StatusActive = "active"

// Good is one catalog entry.
type Good struct {
	ID                   int64           `json:"id"`
	Name                 string          `json:"name"`
	Unit                 string          `json:"unit"`
	MinimumOrderQuantity decimal.Decimal `json:"minimum_order_quantity"`
	Status               string          `json:"status"`
}

// Reader resolves goods by id. Missing ids are simply absent from the result.
type Reader interface {
	Goods(ctx context.Context, ids []int64) (map[int64]Good, error)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
