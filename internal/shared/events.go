package shared

import (
	"context"
	"time"
)

// QuotationStatusChanged is published after a quotation transition commits.
type QuotationStatusChanged struct {
	QuotationID int64     `json:"quotation_id"`
	Number      string    `json:"number"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Round       int       `json:"round"`
	ActorID     int64     `json:"actor_id"`
	At          time.Time `json:"at"`
}

// SalesOrderMaterialized is published after a quotation becomes a sales order.
type SalesOrderMaterialized struct {
	SalesOrderID int64     `json:"sales_order_id"`
	QuotationID  int64     `json:"quotation_id"`
	OrderNumber  string    `json:"order_number"`
	ActorID      int64     `json:"actor_id"`
	At           time.Time `json:"at"`
}

// DeliveryCommitted is published after a delivery order insert or edit commits.
type DeliveryCommitted struct {
	DeliveryID     int64     `json:"delivery_id"`
	SalesOrderID   int64     `json:"sales_order_id"`
	DeliveryNumber string    `json:"delivery_number"`
	Created        bool      `json:"created"`
	FullyShipped   bool      `json:"fully_shipped"`
	ActorID        int64     `json:"actor_id"`
	At             time.Time `json:"at"`
}

// Notifier forwards committed domain events to background processing.
type Notifier interface {
	QuotationStatusChanged(ctx context.Context, evt QuotationStatusChanged) error
	SalesOrderMaterialized(ctx context.Context, evt SalesOrderMaterialized) error
	DeliveryCommitted(ctx context.Context, evt DeliveryCommitted) error
}

// NopNotifier drops events.
type NopNotifier struct{}

func (NopNotifier) QuotationStatusChanged(context.Context, QuotationStatusChanged) error { return nil }
func (NopNotifier) SalesOrderMaterialized(context.Context, SalesOrderMaterialized) error { return nil }
func (NopNotifier) DeliveryCommitted(context.Context, DeliveryCommitted) error           { return nil }
