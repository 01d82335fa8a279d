// Package lineitem models the goods rows shared by quotations, sales orders
// and delivery orders, and the versioned blob they are stored in.
package lineitem

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Line is one row of a goods array.
type Line struct {
	GoodID           *int64          `json:"good_id,omitempty"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit,omitempty"`
	Qty              decimal.Decimal `json:"qty"`
	Price            decimal.Decimal `json:"price"`
	DeliveryTimeDays *int            `json:"delivery_time_days,omitempty"`
	DeadlineDays     *int            `json:"deadline_days,omitempty"`
}

// Key identifies the line across documents: the catalog id when present,
// otherwise the normalized name so free-text legacy rows still reconcile.
func (l Line) Key() string {
	if l.GoodID != nil {
		return "id:" + strconv.FormatInt(*l.GoodID, 10)
	}
	return "name:" + NormalizeName(l.Name)
}

// Subtotal is qty × price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Qty.Mul(l.Price)
}

// Sum returns Σ qty × price over lines.
func Sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Clone deep-copies lines so callers may mutate the result freely.
func Clone(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		if l.GoodID != nil {
			id := *l.GoodID
			l.GoodID = &id
		}
		if l.DeliveryTimeDays != nil {
			d := *l.DeliveryTimeDays
			l.DeliveryTimeDays = &d
		}
		if l.DeadlineDays != nil {
			d := *l.DeadlineDays
			l.DeadlineDays = &d
		}
		out[i] = l
	}
	return out
}

// NormalizeName folds case, applies NFKC and collapses whitespace.
func NormalizeName(name string) string {
	n := norm.NFKC.String(name)
	n = cases.Fold().String(n)
	return strings.Join(strings.Fields(n), " ")
}

// GoodID is a small helper for building lines in code.
func GoodID(id int64) *int64 { return &id }

// Days is a small helper for optional day counts.
func Days(d int) *int { return &d }
