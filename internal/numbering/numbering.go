// Package numbering generates and parses document numbers of the form
// NNNN/<company>/<doc>/<romanMonth>/<year>, plus the legacy
// <company>-<doc>-<year>-NNNN form still present on old quotations.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Variant tags the result of Parse.
type Variant int

const (
	Unrecognized Variant = iota
	Current
	Legacy
)

func (v Variant) String() string {
	switch v {
	case Current:
		return "current"
	case Legacy:
		return "legacy"
	default:
		return "unrecognized"
	}
}

// Parsed is a recognised document number.
type Parsed struct {
	Variant  Variant
	Year     int
	Sequence int
}

// Scheme describes one document sequence.
type Scheme struct {
	Company string
	DocType string
	// Legacy enables parsing of the dash separated historical format.
	Legacy bool
}

// QuotationScheme numbers quotations; legacy numbers count towards the sequence.
func QuotationScheme(company string) Scheme {
	return Scheme{Company: company, DocType: "QTN", Legacy: true}
}

// DeliveryScheme numbers delivery orders.
func DeliveryScheme(company string) Scheme {
	return Scheme{Company: company, DocType: "DO"}
}

// Parse recognises either number format.
func (s Scheme) Parse(number string) Parsed {
	number = strings.TrimSpace(number)
	if p, ok := s.parseCurrent(number); ok {
		return p
	}
	if s.Legacy {
		if p, ok := s.parseLegacy(number); ok {
			return p
		}
	}
	return Parsed{Variant: Unrecognized}
}

func (s Scheme) parseCurrent(number string) (Parsed, bool) {
	parts := strings.Split(number, "/")
	if len(parts) != 5 {
		return Parsed{}, false
	}
	if parts[1] != s.Company || parts[2] != s.DocType {
		return Parsed{}, false
	}
	if _, ok := monthFromRoman(parts[3]); !ok {
		return Parsed{}, false
	}
	seq, ok := parseDigits(parts[0])
	if !ok {
		return Parsed{}, false
	}
	year, ok := parseYear(parts[4])
	if !ok {
		return Parsed{}, false
	}
	return Parsed{Variant: Current, Year: year, Sequence: seq}, true
}

func (s Scheme) parseLegacy(number string) (Parsed, bool) {
	prefix := s.Company + "-" + s.DocType + "-"
	if !strings.HasPrefix(number, prefix) {
		return Parsed{}, false
	}
	rest := strings.Split(strings.TrimPrefix(number, prefix), "-")
	if len(rest) != 2 {
		return Parsed{}, false
	}
	year, ok := parseYear(rest[0])
	if !ok {
		return Parsed{}, false
	}
	seq, ok := parseDigits(rest[1])
	if !ok {
		return Parsed{}, false
	}
	return Parsed{Variant: Legacy, Year: year, Sequence: seq}, true
}

// MaxSequence returns the highest sequence among numbers issued in year,
// across every recognised variant.
func (s Scheme) MaxSequence(existing []string, year int) int {
	highest := 0
	for _, n := range existing {
		p := s.Parse(n)
		if p.Variant == Unrecognized || p.Year != year {
			continue
		}
		if p.Sequence > highest {
			highest = p.Sequence
		}
	}
	return highest
}

// Next returns the number following existing for the calendar year of at.
func (s Scheme) Next(existing []string, at time.Time) string {
	return s.Format(s.MaxSequence(existing, at.Year())+1, at)
}

// Format renders a sequence in the current format.
func (s Scheme) Format(seq int, at time.Time) string {
	return fmt.Sprintf("%04d/%s/%s/%s/%d", seq, s.Company, s.DocType, RomanMonth(at.Month()), at.Year())
}

// YearPatterns returns SQL LIKE patterns selecting candidate numbers for year.
func (s Scheme) YearPatterns(year int) []string {
	patterns := []string{fmt.Sprintf("%%/%s/%s/%%/%d", s.Company, s.DocType, year)}
	if s.Legacy {
		patterns = append(patterns, fmt.Sprintf("%s-%s-%d-%%", s.Company, s.DocType, year))
	}
	return patterns
}

func parseDigits(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func parseYear(raw string) (int, bool) {
	if len(raw) != 4 {
		return 0, false
	}
	return parseDigits(raw)
}
