// Package orders materializes accepted quotations into sales orders.
package orders

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
)

// Status is a sales order lifecycle state.
type Status string

const (
	StatusOngoing         Status = "ongoing"
	StatusWaitingApproval Status = "waiting approval"
	StatusWaitingPayment  Status = "waiting payment"
	StatusDone            Status = "done"
	// StatusOnDelivery is display only; it is stored as the OnDelivery flag.
	StatusOnDelivery Status = "on-delivery"
)

var chain = []Status{StatusOngoing, StatusWaitingApproval, StatusWaitingPayment, StatusDone}

// ParseStatus accepts a base status. on-delivery folds to ongoing.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.Join(strings.Fields(strings.ToLower(raw)), " "))
	switch s {
	case StatusOngoing, StatusWaitingApproval, StatusWaitingPayment, StatusDone:
		return s, true
	case StatusOnDelivery:
		return StatusOngoing, true
	default:
		return "", false
	}
}

func (s Status) rank() int {
	for i, c := range chain {
		if c == s {
			return i
		}
	}
	return -1
}

// Locked reports whether the order no longer accepts edits or deliveries.
func (s Status) Locked() bool {
	return s == StatusWaitingPayment || s == StatusDone
}

// RequiresPrivilege reports whether entering s is reserved for privileged roles.
func (s Status) RequiresPrivilege() bool {
	return s == StatusWaitingPayment || s == StatusDone
}

// CanAdvance reports whether from may move to to. Orders only move one step
// forward along the chain.
func CanAdvance(from, to Status) bool {
	f, t := from.rank(), to.rank()
	return f >= 0 && t == f+1
}

// SalesOrder is the one-to-one materialization of a quotation.
type SalesOrder struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	QuotationID int64           `json:"quotation_id"`
	Goods       []lineitem.Line `json:"goods"`
	IncludeTax  bool            `json:"include_tax"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	Status      Status          `json:"status"`
	OnDelivery  bool            `json:"on_delivery"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DisplayStatus renders the on-delivery overlay over an ongoing order.
func (so SalesOrder) DisplayStatus() Status {
	if so.Status == StatusOngoing && so.OnDelivery {
		return StatusOnDelivery
	}
	return so.Status
}

// MarshalJSON adds display_status.
func (so SalesOrder) MarshalJSON() ([]byte, error) {
	type plain SalesOrder
	return json.Marshal(struct {
		plain
		DisplayStatus Status `json:"display_status"`
	}{plain(so), so.DisplayStatus()})
}

// ListFilter narrows List.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}
