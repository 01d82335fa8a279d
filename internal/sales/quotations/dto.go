package quotations

import "github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"

// ContactInput carries the company and PIC fields of a quotation.
type ContactInput struct {
	CompanyName    string `json:"company_name" validate:"required,max=200"`
	CompanyAddress string `json:"company_address" validate:"max=500"`
	PICName        string `json:"pic_name" validate:"required,max=120"`
	PICPhone       string `json:"pic_phone" validate:"required,phone"`
	PICEmail       string `json:"pic_email" validate:"required,email,max=254"`
}

// LineInput is a goods row as submitted. Qty and price keep track of
// presence so that an empty string is rejected rather than read as zero.
type LineInput struct {
	GoodID           *int64         `json:"good_id"`
	Name             string         `json:"name"`
	Unit             string         `json:"unit"`
	Qty              lineitem.Value `json:"qty"`
	Price            lineitem.Value `json:"price"`
	DeliveryTimeDays *int           `json:"delivery_time_days"`
}

// CreateRequest is the payload of createQuotation.
type CreateRequest struct {
	RFQRef     string       `json:"rfq_ref" validate:"max=100"`
	Contact    ContactInput `json:"contact"`
	IncludeTax bool         `json:"include_tax"`
	Goods      []LineInput  `json:"goods"`
}

// EditRequest is a partial update; nil fields are left untouched.
type EditRequest struct {
	RFQRef     *string       `json:"rfq_ref,omitempty"`
	Contact    *ContactInput `json:"contact,omitempty"`
	IncludeTax *bool         `json:"include_tax,omitempty"`
	Goods      *[]LineInput  `json:"goods,omitempty"`
}

// StatusRequest is the payload of updateQuotationStatus.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}
