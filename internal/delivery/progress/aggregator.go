// Package progress derives delivered and remaining figures for a sales order
// from its delivery orders. Nothing here is persisted.
package progress

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fulfillment-ledger/internal/delivery/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
)

var hundred = decimal.NewFromInt(100)

// LineProgress is the progress of one ordered line.
type LineProgress struct {
	Key             string          `json:"key"`
	GoodID          *int64          `json:"good_id,omitempty"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit,omitempty"`
	Ordered         decimal.Decimal `json:"ordered"`
	Delivered       decimal.Decimal `json:"delivered"`
	Remaining       decimal.Decimal `json:"remaining"`
	Price           decimal.Decimal `json:"price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	WorkloadPercent decimal.Decimal `json:"workload_percent"`
	ProgressValue   decimal.Decimal `json:"progress_value"`
	RemainingValue  decimal.Decimal `json:"remaining_value"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
}

// Report is the order-level progress.
type Report struct {
	SalesOrderID           int64           `json:"sales_order_id"`
	OrderNumber            string          `json:"order_number"`
	Status                 string          `json:"status"`
	DeliveryCount          int             `json:"delivery_count"`
	Lines                  []LineProgress  `json:"lines"`
	TotalOrdered           decimal.Decimal `json:"total_ordered"`
	TotalDelivered         decimal.Decimal `json:"total_delivered"`
	TotalSubtotal          decimal.Decimal `json:"total_subtotal"`
	ProgressValue          decimal.Decimal `json:"progress_value"`
	RemainingValue         decimal.Decimal `json:"remaining_value"`
	OverallProgressPercent decimal.Decimal `json:"overall_progress_percent"`
}

// Compute builds the report for ordered lines against the shipped map of
// all deliveries. When several ordered lines share a key, shipped quantity
// is consumed by them in order.
func Compute(ordered []lineitem.Line, shipped orders.ShippedMap) Report {
	pool := make(orders.ShippedMap, len(shipped))
	for k, v := range shipped {
		pool[k] = v
	}

	rep := Report{
		Lines:          make([]LineProgress, 0, len(ordered)),
		TotalOrdered:   decimal.Zero,
		TotalDelivered: decimal.Zero,
		TotalSubtotal:  decimal.Zero,
		ProgressValue:  decimal.Zero,
		RemainingValue: decimal.Zero,
	}
	for _, l := range ordered {
		key := l.Key()
		delivered := decimal.Min(pool.Of(key), l.Qty)
		if delivered.IsNegative() {
			delivered = decimal.Zero
		}
		pool[key] = pool.Of(key).Sub(delivered)

		lp := LineProgress{
			Key:            key,
			GoodID:         l.GoodID,
			Name:           l.Name,
			Unit:           l.Unit,
			Ordered:        l.Qty,
			Delivered:      delivered,
			Remaining:      l.Qty.Sub(delivered),
			Price:          l.Price,
			Subtotal:       l.Subtotal(),
			ProgressValue:  delivered.Mul(l.Price),
			RemainingValue: l.Qty.Sub(delivered).Mul(l.Price),
		}
		lp.ProgressPercent = percent(delivered, l.Qty)
		rep.Lines = append(rep.Lines, lp)

		rep.TotalOrdered = rep.TotalOrdered.Add(l.Qty)
		rep.TotalDelivered = rep.TotalDelivered.Add(delivered)
		rep.TotalSubtotal = rep.TotalSubtotal.Add(lp.Subtotal)
		rep.ProgressValue = rep.ProgressValue.Add(lp.ProgressValue)
		rep.RemainingValue = rep.RemainingValue.Add(lp.RemainingValue)
	}
	for i := range rep.Lines {
		rep.Lines[i].WorkloadPercent = percent(rep.Lines[i].Subtotal, rep.TotalSubtotal)
	}
	rep.OverallProgressPercent = percent(rep.TotalDelivered, rep.TotalOrdered)
	return rep
}

// percent is part/whole × 100, zero when whole is not positive.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Rounded returns a copy with percentages rounded to two decimals.
func (r Report) Rounded() Report {
	out := r
	out.Lines = make([]LineProgress, len(r.Lines))
	for i, l := range r.Lines {
		l.WorkloadPercent = l.WorkloadPercent.Round(2)
		l.ProgressPercent = l.ProgressPercent.Round(2)
		out.Lines[i] = l
	}
	out.OverallProgressPercent = r.OverallProgressPercent.Round(2)
	return out
}
