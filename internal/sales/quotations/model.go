// Package quotations implements the quotation negotiation lifecycle.
package quotations

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
)

// Status is a quotation lifecycle state.
type Status string

const (
	StatusWaiting     Status = "waiting"
	StatusNegotiation Status = "negotiation"
	// StatusRenegotiation is a historical alias of StatusWaiting.
	StatusRenegotiation Status = "renegotiation"
	StatusProcess       Status = "process"
	StatusSuccess       Status = "success"
	StatusReject        Status = "reject"
)

// ParseStatus accepts any known status, including the renegotiation alias.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusWaiting, StatusNegotiation, StatusRenegotiation, StatusProcess, StatusSuccess, StatusReject:
		return s, true
	default:
		return "", false
	}
}

// Canonical folds aliases.
func (s Status) Canonical() Status {
	if s == StatusRenegotiation {
		return StatusWaiting
	}
	return s
}

// Terminal reports whether field edits are closed.
func (s Status) Terminal() bool {
	switch s.Canonical() {
	case StatusProcess, StatusSuccess, StatusReject:
		return true
	default:
		return false
	}
}

// CanTransition reports whether from may move to to. Both ends are
// canonicalized, so a renegotiation target is judged as waiting and no
// state moves into it.
func CanTransition(from, to Status) bool {
	to = to.Canonical()
	switch from.Canonical() {
	case StatusWaiting:
		return to == StatusNegotiation || to == StatusReject
	case StatusNegotiation:
		return to == StatusProcess || to == StatusReject
	case StatusProcess:
		return to == StatusSuccess
	default:
		return false
	}
}

// Quotation is a negotiated offer against an RFQ.
type Quotation struct {
	ID               int64           `json:"id"`
	Number           string          `json:"number"`
	RFQRef           string          `json:"rfq_ref,omitempty"`
	CompanyName      string          `json:"company_name"`
	CompanyAddress   string          `json:"company_address,omitempty"`
	PICName          string          `json:"pic_name"`
	PICPhone         string          `json:"pic_phone"`
	PICEmail         string          `json:"pic_email"`
	Goods            []lineitem.Line `json:"goods"`
	IncludeTax       bool            `json:"include_tax"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	Status           Status          `json:"status"`
	NegotiationRound int             `json:"negotiation_round"`
	PerformedBy      int64           `json:"performed_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ApplyTotals copies computed totals onto the quotation.
func (q *Quotation) ApplyTotals(t Totals) {
	q.TotalAmount = t.TotalAmount
	q.TaxAmount = t.TaxAmount
	q.GrandTotal = t.GrandTotal
}

// ListFilter narrows List.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}
