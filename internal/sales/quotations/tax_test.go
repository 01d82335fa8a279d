package quotations

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotalsScenarios(t *testing.T) {
	cases := []struct {
		name       string
		subtotal   string
		rate       string
		includeTax bool
		total      string
		tax        string
		grand      string
	}{
		{"tax added on top", "10000", "11", false, "10000", "1100", "11100"},
		{"tax included in price", "10000", "11", true, "9009.01", "990.99", "10000"},
		{"zero rate", "2500.50", "0", true, "2500.5", "0", "2500.5"},
		{"zero subtotal", "0", "11", false, "0", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(d(tc.subtotal), d(tc.rate), tc.includeTax)
			require.True(t, got.TotalAmount.Equal(d(tc.total)), "total %s", got.TotalAmount)
			require.True(t, got.TaxAmount.Equal(d(tc.tax)), "tax %s", got.TaxAmount)
			require.True(t, got.GrandTotal.Equal(d(tc.grand)), "grand %s", got.GrandTotal)
		})
	}
}

func TestComputeTotalsRoundTripsToTheCent(t *testing.T) {
	for _, s := range []string{"1", "99.99", "1234.56", "10000", "333333.33", "7.77"} {
		for _, r := range []string{"10", "11", "12.5"} {
			inc := ComputeTotals(d(s), d(r), true)
			require.True(t, inc.TotalAmount.Add(inc.TaxAmount).Equal(inc.GrandTotal), "include %s@%s", s, r)
			require.True(t, inc.GrandTotal.Equal(d(s).Round(2)))

			exc := ComputeTotals(d(s), d(r), false)
			require.True(t, exc.TotalAmount.Add(exc.TaxAmount).Equal(exc.GrandTotal), "exclude %s@%s", s, r)
		}
	}
}

func TestTaxModesAreNotInterchangeable(t *testing.T) {
	inc := ComputeTotals(d("10000"), d("11"), true)
	exc := ComputeTotals(d("10000"), d("11"), false)
	require.False(t, inc.GrandTotal.Equal(exc.GrandTotal))
	require.False(t, inc.TaxAmount.Equal(exc.TaxAmount))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusWaiting, StatusNegotiation, true},
		{StatusWaiting, StatusReject, true},
		{StatusWaiting, StatusProcess, false},
		{StatusRenegotiation, StatusNegotiation, true},
		{StatusNegotiation, StatusProcess, true},
		{StatusNegotiation, StatusReject, true},
		{StatusNegotiation, StatusWaiting, false},
		{StatusProcess, StatusSuccess, true},
		{StatusProcess, StatusNegotiation, false},
		{StatusReject, StatusWaiting, false},
		{StatusSuccess, StatusProcess, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusAliasAndTerminal(t *testing.T) {
	s, ok := ParseStatus("Renegotiation")
	require.True(t, ok)
	require.Equal(t, StatusWaiting, s.Canonical())
	require.False(t, s.Terminal())

	for _, st := range []Status{StatusProcess, StatusSuccess, StatusReject} {
		require.True(t, st.Terminal())
	}
	_, ok = ParseStatus("approved")
	require.False(t, ok)
}
