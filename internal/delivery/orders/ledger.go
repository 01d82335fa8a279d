package orders

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
)

// ShippedMap is the fulfillment snapshot: line key to quantity shipped.
type ShippedMap map[string]decimal.Decimal

// Of returns the shipped quantity for key, zero when absent.
func (m ShippedMap) Of(key string) decimal.Decimal {
	if q, ok := m[key]; ok {
		return q
	}
	return decimal.Zero
}

// Add folds lines into a copy of m.
func (m ShippedMap) Add(lines []lineitem.Line) ShippedMap {
	out := make(ShippedMap, len(m)+len(lines))
	for k, v := range m {
		out[k] = v
	}
	for _, l := range lines {
		out[l.Key()] = out.Of(l.Key()).Add(l.Qty)
	}
	return out
}

// BuildShippedMap sums every delivery's lines by key, skipping the delivery
// whose id equals excludeID.
func BuildShippedMap(deliveries []DeliveryOrder, excludeID *int64) ShippedMap {
	shipped := make(ShippedMap)
	for _, d := range deliveries {
		if excludeID != nil && d.ID == *excludeID {
			continue
		}
		for _, l := range d.Goods {
			shipped[l.Key()] = shipped.Of(l.Key()).Add(l.Qty)
		}
	}
	return shipped
}

// RemainingForLine is max(ordered − shipped, 0).
func RemainingForLine(ordered, shipped decimal.Decimal) decimal.Decimal {
	r := ordered.Sub(shipped)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// mergeOrdered collapses ordered lines sharing a key, keeping the first
// line's descriptive fields and summing qty.
func mergeOrdered(lines []lineitem.Line) []lineitem.Line {
	index := make(map[string]int, len(lines))
	out := make([]lineitem.Line, 0, len(lines))
	for _, l := range lines {
		k := l.Key()
		if i, ok := index[k]; ok {
			out[i].Qty = out[i].Qty.Add(l.Qty)
			continue
		}
		index[k] = len(out)
		out = append(out, lineitem.Clone([]lineitem.Line{l})[0])
	}
	return out
}

// Deliverable lists the ordered lines with their remaining quantity and
// drops lines that are fully shipped.
func Deliverable(ordered []lineitem.Line, shipped ShippedMap) []DeliverableLine {
	var out []DeliverableLine
	for _, l := range mergeOrdered(ordered) {
		rem := RemainingForLine(l.Qty, shipped.Of(l.Key()))
		if !rem.IsPositive() {
			continue
		}
		out = append(out, DeliverableLine{Line: l, RemainingQty: rem})
	}
	if out == nil {
		out = []DeliverableLine{}
	}
	return out
}

// Editable lists every ordered line with the ceiling available to the
// delivery being edited. shipped must exclude that delivery. Exhausted lines
// are kept with a zero ceiling.
func Editable(ordered []lineitem.Line, shipped ShippedMap, current []lineitem.Line) []EditableLine {
	own := ShippedMap{}.Add(current)
	merged := mergeOrdered(ordered)
	out := make([]EditableLine, 0, len(merged))
	for _, l := range merged {
		out = append(out, EditableLine{
			Line:       l,
			MaxQty:     RemainingForLine(l.Qty, shipped.Of(l.Key())),
			CurrentQty: own.Of(l.Key()),
		})
	}
	return out
}

// ValidateCommit checks submitted delivery lines against what remains and
// returns the lines to store: one per shipped key, in sales order order,
// carrying the ordered line's identity and price.
func ValidateCommit(ordered []lineitem.Line, shipped ShippedMap, submitted []lineitem.Line) ([]lineitem.Line, error) {
	merged := mergeOrdered(ordered)
	known := make(map[string]struct{}, len(merged))
	for _, l := range merged {
		known[l.Key()] = struct{}{}
	}

	wanted := make(ShippedMap, len(submitted))
	for i, l := range submitted {
		if l.Qty.IsNegative() {
			return nil, fmt.Errorf("%w: line %d", ErrNegativeQty, i+1)
		}
		if _, ok := known[l.Key()]; !ok {
			return nil, fmt.Errorf("%w: line %d (%s)", ErrLineNotOnOrder, i+1, l.Key())
		}
		wanted[l.Key()] = wanted.Of(l.Key()).Add(l.Qty)
	}

	var out []lineitem.Line
	for _, l := range merged {
		qty := wanted.Of(l.Key())
		if !qty.IsPositive() {
			continue
		}
		rem := RemainingForLine(l.Qty, shipped.Of(l.Key()))
		if qty.GreaterThan(rem) {
			return nil, fmt.Errorf("%w: %s qty %s > remaining %s", ErrQtyExceedsRemaining, l.Key(), qty, rem)
		}
		line := l
		line.Qty = qty
		line.DeliveryTimeDays, line.DeadlineDays = nil, nil
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil, ErrEmptyDelivery
	}
	return out, nil
}

// FullyShipped reports whether nothing remains on any ordered line.
func FullyShipped(ordered []lineitem.Line, shipped ShippedMap) bool {
	for _, l := range mergeOrdered(ordered) {
		if RemainingForLine(l.Qty, shipped.Of(l.Key())).IsPositive() {
			return false
		}
	}
	return true
}
