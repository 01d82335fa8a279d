package quotations

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the header amounts of a quotation or sales order.
type Totals struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// ComputeTotals derives header amounts from the raw line subtotal S and the
// tax rate r in percent.
//
//	includeTax=false: tax = S·r/100,     total = S,       grand = S + tax
//	includeTax=true:  tax = S·r/(100+r), total = S − tax, grand = S
//
// Amounts are rounded to cents; total is derived after rounding tax so that
// total + tax equals grand exactly in both modes.
func ComputeTotals(subtotal, ratePercent decimal.Decimal, includeTax bool) Totals {
	s := subtotal.Round(2)
	if includeTax {
		tax := s.Mul(ratePercent).Div(hundred.Add(ratePercent)).Round(2)
		return Totals{TotalAmount: s.Sub(tax), TaxAmount: tax, GrandTotal: s}
	}
	tax := s.Mul(ratePercent).Div(hundred).Round(2)
	return Totals{TotalAmount: s, TaxAmount: tax, GrandTotal: s.Add(tax)}
}
