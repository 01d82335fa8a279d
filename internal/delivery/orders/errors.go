package orders

import (
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Domain errors for delivery orders.
var (
	ErrNotFound = shared.NewReason("delivery_not_found", httpx.ErrNotFound, "delivery order not found")

	ErrDeliveryDateMissing = shared.NewReason("delivery_date_missing", httpx.ErrValidation, "delivery_date is required")
	ErrDeliveryDateInvalid = shared.NewReason("delivery_date_invalid", httpx.ErrValidation, "delivery_date must be YYYY-MM-DD")
	ErrShipAddressMissing  = shared.NewReason("ship_address_missing", httpx.ErrValidation, "ship_address is required")

	// Ledger rejections.
	ErrLineNotOnOrder      = shared.NewReason("line_not_on_order", httpx.ErrValidation, "line is not on the sales order")
	ErrQtyExceedsRemaining = shared.NewReason("qty_exceeds_remaining", httpx.ErrValidation, "qty exceeds remaining quantity")
	ErrNegativeQty         = shared.NewReason("qty_negative", httpx.ErrValidation, "qty must not be negative")
	ErrEmptyDelivery       = shared.NewReason("empty_delivery", httpx.ErrValidation, "delivery must ship at least one line")

	ErrSalesOrderLocked = shared.NewReason("sales_order_locked", httpx.ErrConflict, "sales order no longer accepts deliveries")
)
