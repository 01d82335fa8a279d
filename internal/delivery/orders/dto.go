package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
)

const dateLayout = "2006-01-02"

// LineInput is a delivery row as submitted. A missing qty ships nothing.
type LineInput struct {
	GoodID *int64         `json:"good_id"`
	Name   string         `json:"name"`
	Unit   string         `json:"unit"`
	Qty    lineitem.Value `json:"qty"`
}

// CommitRequest is the payload of commitDelivery.
type CommitRequest struct {
	DeliveryDate string      `json:"delivery_date"`
	ShipAddress  string      `json:"ship_address"`
	Lines        []LineInput `json:"lines"`
	// IdempotencyKey is taken from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

func (r CommitRequest) validate() (time.Time, error) {
	raw := strings.TrimSpace(r.DeliveryDate)
	if raw == "" {
		return time.Time{}, ErrDeliveryDateMissing
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDeliveryDateInvalid, raw)
	}
	if strings.TrimSpace(r.ShipAddress) == "" {
		return time.Time{}, ErrShipAddressMissing
	}
	return date, nil
}

func (r CommitRequest) lines() []lineitem.Line {
	out := make([]lineitem.Line, 0, len(r.Lines))
	for _, in := range r.Lines {
		l := lineitem.Line{Name: strings.TrimSpace(in.Name), Unit: strings.TrimSpace(in.Unit)}
		if in.GoodID != nil {
			l.GoodID = lineitem.GoodID(*in.GoodID)
		}
		if in.Qty.Set {
			l.Qty = in.Qty.Decimal
		}
		out = append(out, l)
	}
	return out
}
