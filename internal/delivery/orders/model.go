// Package orders implements the fulfillment ledger: delivery orders written
// against a sales order without ever shipping more than was ordered.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
)

// DeliveryOrder ships part of a sales order.
type DeliveryOrder struct {
	ID             int64           `json:"id"`
	DeliveryNumber string          `json:"delivery_number"`
	SalesOrderID   int64           `json:"sales_order_id"`
	DeliveryDate   time.Time       `json:"delivery_date"`
	ShipAddress    string          `json:"ship_address"`
	Goods          []lineitem.Line `json:"goods"`
	CreatedBy      int64           `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DeliverableLine is an ordered line offered in a new delivery.
type DeliverableLine struct {
	lineitem.Line
	RemainingQty decimal.Decimal `json:"remaining_qty"`
}

// EditableLine is an ordered line offered while editing a delivery. MaxQty
// is the ceiling for this delivery; CurrentQty is what it ships today.
type EditableLine struct {
	lineitem.Line
	MaxQty     decimal.Decimal `json:"max_qty"`
	CurrentQty decimal.Decimal `json:"current_qty"`
}

// EditView is the response of getRemainingForEditDelivery.
type EditView struct {
	Delivery DeliveryOrder  `json:"delivery"`
	Lines    []EditableLine `json:"lines"`
}
