package lineitem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Value is a decimal that remembers whether the caller supplied it. Empty
// strings and null decode as missing, which is distinct from zero.
type Value struct {
	Decimal decimal.Decimal
	Set     bool
}

// Present wraps a supplied decimal.
func Present(d decimal.Decimal) Value {
	return Value{Decimal: d, Set: true}
}

// UnmarshalJSON accepts JSON numbers and numeric strings.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*v = Value{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("lineitem: invalid number %s", s)
		}
		s = strings.TrimSpace(unq)
		if s == "" {
			*v = Value{}
			return nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("lineitem: invalid number %q", s)
	}
	*v = Value{Decimal: d, Set: true}
	return nil
}

// MarshalJSON writes missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(v.Decimal.String())), nil
}
