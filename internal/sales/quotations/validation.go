package quotations

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/fulfillment-ledger/internal/catalog"
	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-.]{6,22}$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	return v
}

func validPhone(raw string) bool {
	raw = strings.TrimSpace(raw)
	if !phonePattern.MatchString(raw) {
		return false
	}
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 8 && digits <= 15
}

// translate maps validator failures onto reason sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s", ErrContactMissing, fe.Field())
	case "email":
		return fmt.Errorf("%w: %s", ErrInvalidEmail, fe.Field())
	case "phone":
		return fmt.Errorf("%w: %s", ErrInvalidPhone, fe.Field())
	default:
		return fmt.Errorf("%w: %s failed %s", ErrInvalidField, fe.Field(), fe.Tag())
	}
}

// goodIDs lists the catalog references present in inputs.
func goodIDs(inputs []LineInput) []int64 {
	ids := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		if in.GoodID != nil {
			ids = append(ids, *in.GoodID)
		}
	}
	return ids
}

// ValidateGoods applies the submit rules to every line and returns the
// accepted lines. goods must hold the catalog entries referenced by inputs.
func ValidateGoods(inputs []LineInput, goods map[int64]catalog.Good) ([]lineitem.Line, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyGoods
	}
	lines := make([]lineitem.Line, 0, len(inputs))
	for i, in := range inputs {
		n := i + 1
		if in.GoodID == nil {
			return nil, fmt.Errorf("%w: line %d", ErrGoodNotSelected, n)
		}
		good, ok := goods[*in.GoodID]
		if !ok {
			return nil, fmt.Errorf("%w: line %d good %d", ErrUnknownGood, n, *in.GoodID)
		}
		if good.Status != "" && good.Status != catalog.StatusActive {
			return nil, fmt.Errorf("%w: line %d good %d", ErrGoodInactive, n, good.ID)
		}
		if !in.Qty.Set {
			return nil, fmt.Errorf("%w: line %d", ErrQtyMissing, n)
		}
		if !in.Price.Set {
			return nil, fmt.Errorf("%w: line %d", ErrPriceMissing, n)
		}
		if !in.Qty.Decimal.IsPositive() {
			return nil, fmt.Errorf("%w: line %d", ErrQtyNotPositive, n)
		}
		if in.Price.Decimal.IsNegative() {
			return nil, fmt.Errorf("%w: line %d", ErrPriceNegative, n)
		}
		if good.MinimumOrderQuantity.IsPositive() && in.Qty.Decimal.LessThan(good.MinimumOrderQuantity) {
			return nil, fmt.Errorf("%w: line %d qty %s < %s", ErrQtyBelowMOQ, n, in.Qty.Decimal, good.MinimumOrderQuantity)
		}
		if in.DeliveryTimeDays == nil {
			return nil, fmt.Errorf("%w: line %d", ErrDeliveryTimeMissing, n)
		}
		if *in.DeliveryTimeDays < 0 {
			return nil, fmt.Errorf("%w: line %d", ErrDeliveryTimeNegative, n)
		}

		line := lineitem.Line{
			GoodID:           lineitem.GoodID(good.ID),
			Name:             strings.TrimSpace(in.Name),
			Unit:             strings.TrimSpace(in.Unit),
			Qty:              in.Qty.Decimal,
			Price:            in.Price.Decimal,
			DeliveryTimeDays: lineitem.Days(*in.DeliveryTimeDays),
		}
		if line.Name == "" {
			line.Name = good.Name
		}
		if line.Unit == "" {
			line.Unit = good.Unit
		}
		lines = append(lines, line)
	}
	return lines, nil
}
