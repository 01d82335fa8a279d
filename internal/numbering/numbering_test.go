package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseVariants(t *testing.T) {
	q := QuotationScheme("RGI")
	cases := []struct {
		in      string
		variant Variant
		year    int
		seq     int
	}{
		{"0008/RGI/QTN/III/2024", Current, 2024, 8},
		{"RGI-QTN-2024-0007", Legacy, 2024, 7},
		{"12345/RGI/QTN/XII/2025", Current, 2025, 12345},
		{"0008/RGI/DO/III/2024", Unrecognized, 0, 0},
		{"0008/ABC/QTN/III/2024", Unrecognized, 0, 0},
		{"0008/RGI/QTN/XIII/2024", Unrecognized, 0, 0},
		{"RGI-QTN-24-0007", Unrecognized, 0, 0},
		{"RGI-QTN-2024-00x7", Unrecognized, 0, 0},
		{"", Unrecognized, 0, 0},
	}
	for _, tc := range cases {
		got := q.Parse(tc.in)
		require.Equal(t, tc.variant, got.Variant, tc.in)
		require.Equal(t, tc.year, got.Year, tc.in)
		require.Equal(t, tc.seq, got.Sequence, tc.in)
	}
}

func TestNextTakesMaxAcrossBothFormats(t *testing.T) {
	q := QuotationScheme("RGI")
	at := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

	next := q.Next([]string{"RGI-QTN-2024-0007", "0008/RGI/QTN/III/2024"}, at)
	require.Equal(t, "0009/RGI/QTN/III/2024", next)

	next = q.Next([]string{"RGI-QTN-2024-0011", "0008/RGI/QTN/III/2024"}, at)
	require.Equal(t, "0012/RGI/QTN/III/2024", next)
}

func TestNextIsScopedToCalendarYear(t *testing.T) {
	q := QuotationScheme("RGI")
	at := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "0001/RGI/QTN/I/2025", q.Next([]string{"0042/RGI/QTN/XII/2024", "RGI-QTN-2024-0050"}, at))
}

func TestDeliverySchemeIgnoresLegacyFormat(t *testing.T) {
	do := DeliveryScheme("RGI")
	at := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, Unrecognized, do.Parse("RGI-DO-2024-0099").Variant)
	require.Equal(t, "0004/RGI/DO/XI/2024", do.Next([]string{"RGI-DO-2024-0099", "0003/RGI/DO/X/2024"}, at))
	require.Len(t, do.YearPatterns(2024), 1)
}

func TestRomanMonth(t *testing.T) {
	require.Equal(t, "I", RomanMonth(time.January))
	require.Equal(t, "IX", RomanMonth(time.September))
	require.Equal(t, "XII", RomanMonth(time.December))
	require.Equal(t, "", RomanMonth(0))
}
