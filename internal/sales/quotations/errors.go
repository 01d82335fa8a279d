package quotations

import (
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Domain errors for quotations.
var (
	ErrNotFound = shared.NewReason("quotation_not_found", httpx.ErrNotFound, "quotation not found")

	// Contact validation.
	ErrContactMissing = shared.NewReason("contact_missing", httpx.ErrValidation, "required contact field missing")
	ErrInvalidEmail   = shared.NewReason("invalid_email", httpx.ErrValidation, "invalid e-mail address")
	ErrInvalidPhone   = shared.NewReason("invalid_phone", httpx.ErrValidation, "invalid phone number")
	ErrInvalidField   = shared.NewReason("invalid_field", httpx.ErrValidation, "invalid field")

	// Goods validation at submit time.
	ErrEmptyGoods           = shared.NewReason("empty_goods", httpx.ErrValidation, "at least one goods line is required")
	ErrGoodNotSelected      = shared.NewReason("good_not_selected", httpx.ErrValidation, "goods line must reference a catalog good")
	ErrUnknownGood          = shared.NewReason("unknown_good", httpx.ErrValidation, "referenced good does not exist")
	ErrGoodInactive         = shared.NewReason("good_inactive", httpx.ErrValidation, "referenced good is not active")
	ErrQtyMissing           = shared.NewReason("qty_missing", httpx.ErrValidation, "qty is required")
	ErrPriceMissing         = shared.NewReason("price_missing", httpx.ErrValidation, "price is required")
	ErrQtyNotPositive       = shared.NewReason("qty_not_positive", httpx.ErrValidation, "qty must be greater than zero")
	ErrPriceNegative        = shared.NewReason("price_negative", httpx.ErrValidation, "price must not be negative")
	ErrQtyBelowMOQ          = shared.NewReason("qty_below_moq", httpx.ErrValidation, "qty below minimum order quantity")
	ErrDeliveryTimeMissing  = shared.NewReason("delivery_time_missing", httpx.ErrValidation, "delivery_time_days is required")
	ErrDeliveryTimeNegative = shared.NewReason("delivery_time_negative", httpx.ErrValidation, "delivery_time_days must not be negative")

	// Lifecycle.
	ErrUnknownStatus     = shared.NewReason("unknown_status", httpx.ErrValidation, "unknown quotation status")
	ErrInvalidTransition = shared.NewReason("invalid_transition", httpx.ErrConflict, "invalid status transition")

	errDuplicateNumber = shared.NewReason("duplicate_number", httpx.ErrDuplicate, "quotation number already issued")
)
