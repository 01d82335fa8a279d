package orders

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
	"github.com/odyssey-erp/fulfillment-ledger/internal/sales/quotations"
)

// FromQuotation builds the sales order for q. edited replaces the quotation
// goods when non-nil; deadlines are matched to lines by index.
//
// Totals carry over from the quotation unless goods were edited. Edited goods
// recompute total_amount and keep the quotation's tax and grand total when
// the snapshot has them, otherwise grand total is subtotal plus tax at the
// quotation rate.
func FromQuotation(q quotations.Quotation, number string, edited []lineitem.Line, deadlines []*int) (SalesOrder, error) {
	so := SalesOrder{
		OrderNumber: strings.TrimSpace(number),
		QuotationID: q.ID,
		IncludeTax:  q.IncludeTax,
		Status:      StatusOngoing,
	}
	if so.OrderNumber == "" {
		return SalesOrder{}, ErrOrderNumberMissing
	}

	if edited == nil {
		so.Goods = lineitem.Clone(q.Goods)
		so.TotalAmount, so.TaxAmount, so.GrandTotal = q.TotalAmount, q.TaxAmount, q.GrandTotal
	} else {
		so.Goods = lineitem.Clone(edited)
		so.TotalAmount = lineitem.Sum(so.Goods).Round(2)
		if q.GrandTotal.IsPositive() {
			so.TaxAmount, so.GrandTotal = q.TaxAmount, q.GrandTotal
		} else {
			t := quotations.ComputeTotals(so.TotalAmount, q.TaxRate, false)
			so.TaxAmount, so.GrandTotal = t.TaxAmount, t.GrandTotal
		}
	}
	if len(so.Goods) == 0 {
		return SalesOrder{}, quotations.ErrEmptyGoods
	}
	if err := applyDeadlines(so.Goods, deadlines); err != nil {
		return SalesOrder{}, err
	}
	return so, nil
}

// applyDeadlines sets DeadlineDays on every line from deadlines by index.
func applyDeadlines(lines []lineitem.Line, deadlines []*int) error {
	for i := range lines {
		if i >= len(deadlines) || deadlines[i] == nil {
			return fmt.Errorf("%w: line %d", ErrDeadlineMissing, i+1)
		}
		if *deadlines[i] < 0 {
			return fmt.Errorf("%w: line %d", ErrDeadlineNegative, i+1)
		}
	}
	for i := range lines {
		lines[i].DeadlineDays = lineitem.Days(*deadlines[i])
	}
	return nil
}

// acceptEditedGoods checks operator-edited lines. Free-text lines are allowed
// here as long as they carry a name.
func acceptEditedGoods(inputs []LineInput) ([]lineitem.Line, error) {
	if len(inputs) == 0 {
		return nil, quotations.ErrEmptyGoods
	}
	lines := make([]lineitem.Line, 0, len(inputs))
	for i, in := range inputs {
		n := i + 1
		name := strings.TrimSpace(in.Name)
		if in.GoodID == nil && lineitem.NormalizeName(name) == "" {
			return nil, fmt.Errorf("%w: line %d", ErrLineKeyMissing, n)
		}
		switch {
		case !in.Qty.Set:
			return nil, fmt.Errorf("%w: line %d", quotations.ErrQtyMissing, n)
		case !in.Price.Set:
			return nil, fmt.Errorf("%w: line %d", quotations.ErrPriceMissing, n)
		case !in.Qty.Decimal.IsPositive():
			return nil, fmt.Errorf("%w: line %d", quotations.ErrQtyNotPositive, n)
		case in.Price.Decimal.IsNegative():
			return nil, fmt.Errorf("%w: line %d", quotations.ErrPriceNegative, n)
		}
		line := lineitem.Line{
			Name:  name,
			Unit:  strings.TrimSpace(in.Unit),
			Qty:   in.Qty.Decimal,
			Price: in.Price.Decimal,
		}
		if in.GoodID != nil {
			line.GoodID = lineitem.GoodID(*in.GoodID)
		}
		if in.DeliveryTimeDays != nil {
			line.DeliveryTimeDays = lineitem.Days(*in.DeliveryTimeDays)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
