package orders

import "github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"

// LineInput is an operator-edited goods row at materialization time.
type LineInput struct {
	GoodID           *int64         `json:"good_id"`
	Name             string         `json:"name"`
	Unit             string         `json:"unit"`
	Qty              lineitem.Value `json:"qty"`
	Price            lineitem.Value `json:"price"`
	DeliveryTimeDays *int           `json:"delivery_time_days"`
}

// MaterializeRequest is the payload of materializeSalesOrder. Deadlines are
// matched to goods lines by index.
type MaterializeRequest struct {
	OrderNumber string       `json:"order_number"`
	Deadlines   []*int       `json:"deadlines"`
	Goods       *[]LineInput `json:"goods,omitempty"`
}

// EditRequest changes the order number and per-line deadlines.
type EditRequest struct {
	OrderNumber *string `json:"order_number,omitempty"`
	Deadlines   []*int  `json:"deadlines,omitempty"`
}

// StatusRequest advances a sales order.
type StatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}
