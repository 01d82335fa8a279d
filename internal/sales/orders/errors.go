package orders

import (
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Domain errors for sales orders.
var (
	ErrNotFound                 = shared.NewReason("sales_order_not_found", httpx.ErrNotFound, "sales order not found")
	ErrQuotationNotProcess      = shared.NewReason("quotation_not_process", httpx.ErrConflict, "quotation must be in process to materialize")
	ErrDuplicateMaterialization = shared.NewReason("duplicate_materialization", httpx.ErrDuplicate, "quotation already has a sales order")
	ErrOrderNumberMissing       = shared.NewReason("order_number_missing", httpx.ErrValidation, "order number is required")
	ErrDeadlineMissing          = shared.NewReason("deadline_missing", httpx.ErrValidation, "deadline_days is required for every line")
	ErrDeadlineNegative         = shared.NewReason("deadline_negative", httpx.ErrValidation, "deadline_days must not be negative")
	ErrLineKeyMissing           = shared.NewReason("line_key_missing", httpx.ErrValidation, "goods line needs a good_id or a name")
	ErrUnknownStatus            = shared.NewReason("unknown_status", httpx.ErrValidation, "unknown sales order status")
	ErrInvalidTransition        = shared.NewReason("invalid_transition", httpx.ErrConflict, "invalid status transition")
)
