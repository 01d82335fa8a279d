package catalog

import (
	"context"

	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/db"
)

// Repository reads goods from Postgres.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(exec db.DBTX) *Repository {
	return &Repository{db: exec}
}

// Goods loads the requested ids in one round trip.
func (r *Repository) Goods(ctx context.Context, ids []int64) (map[int64]Good, error) {
	ids = uniqueIDs(ids)
	result := make(map[int64]Good, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, name, unit, minimum_order_quantity::text, status
FROM goods WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			g   Good
			moq string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Unit, &moq, &g.Status); err != nil {
			return nil, err
		}
		if g.MinimumOrderQuantity, err = db.ParseNumeric(moq); err != nil {
			return nil, err
		}
		result[g.ID] = g
	}
	return result, rows.Err()
}
