package lineitem

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CurrentVersion is the envelope version written by Encode.
const CurrentVersion = 2

var (
	// ErrMalformed is returned for payloads that are not a goods blob.
	ErrMalformed = errors.New("lineitem: malformed goods payload")
	// ErrUnsupportedVersion is returned for envelopes from a newer writer.
	ErrUnsupportedVersion = errors.New("lineitem: unsupported goods version")
)

type envelope struct {
	Version int    `json:"v"`
	Lines   []Line `json:"lines"`
}

// Encode serializes lines as a version 2 envelope.
func Encode(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(envelope{Version: CurrentVersion, Lines: lines})
}

// Decode reads a goods blob. It accepts version 2 envelopes, version 1
// envelopes and bare legacy arrays, and one level of string double-encoding.
func Decode(raw []byte) ([]Line, error) {
	return decode(raw, 0)
}

// DecodeOrEmpty is the read path for listings: any decode failure yields an
// empty slice so one corrupt record never aborts an unrelated read.
func DecodeOrEmpty(raw []byte) []Line {
	lines, err := Decode(raw)
	if err != nil {
		return []Line{}
	}
	return lines
}

func decode(raw []byte, depth int) ([]Line, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Line{}, nil
	}
	switch trimmed[0] {
	case '[':
		return decodeLegacy(trimmed)
	case '{':
		var env struct {
			Version int             `json:"v"`
			Lines   json.RawMessage `json:"lines"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch env.Version {
		case 1:
			return decodeLegacy(env.Lines)
		case CurrentVersion:
			var lines []Line
			if len(env.Lines) > 0 {
				if err := json.Unmarshal(env.Lines, &lines); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
				}
			}
			if lines == nil {
				lines = []Line{}
			}
			return lines, nil
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
	case '"':
		if depth > 0 {
			return nil, ErrMalformed
		}
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return decode([]byte(inner), depth+1)
	default:
		return nil, ErrMalformed
	}
}

type legacyLine struct {
	GoodID           flexID  `json:"good_id"`
	ID               flexID  `json:"id"`
	Name             string  `json:"name"`
	Unit             string  `json:"unit"`
	Qty              Value   `json:"qty"`
	Price            Value   `json:"price"`
	DeliveryTimeDays flexInt `json:"delivery_time_days"`
	DeadlineDays     flexInt `json:"deadline_days"`
}

func decodeLegacy(raw []byte) ([]Line, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []Line{}, nil
	}
	var legacy []legacyLine
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	lines := make([]Line, 0, len(legacy))
	for _, l := range legacy {
		line := Line{
			Name:             l.Name,
			Unit:             l.Unit,
			Qty:              l.Qty.Decimal,
			Price:            l.Price.Decimal,
			DeliveryTimeDays: l.DeliveryTimeDays.ptr(),
			DeadlineDays:     l.DeadlineDays.ptr(),
		}
		switch {
		case l.GoodID.set:
			line.GoodID = GoodID(l.GoodID.v)
		case l.ID.set:
			line.GoodID = GoodID(l.ID.v)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// flexID accepts numbers and numeric strings. Anything else leaves it unset
// so the row falls back to its name key.
type flexID struct {
	v   int64
	set bool
}

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	*f = flexID{v: id, set: true}
	return nil
}

type flexInt struct {
	v   int
	set bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("lineitem: invalid day count %q", s)
	}
	*f = flexInt{v: n, set: true}
	return nil
}

func (f flexInt) ptr() *int {
	if !f.set {
		return nil
	}
	return Days(f.v)
}
