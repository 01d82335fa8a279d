package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func byID(id int64, qty string) lineitem.Line {
	return lineitem.Line{GoodID: lineitem.GoodID(id), Qty: dec(qty)}
}

func byName(name, qty string) lineitem.Line {
	return lineitem.Line{Name: name, Qty: dec(qty)}
}

func TestLedgerPartialDeliveryScenario(t *testing.T) {
	ordered := []lineitem.Line{{GoodID: lineitem.GoodID(1), Name: "Steel pipe", Qty: dec("50"), Price: dec("100")}}
	a := DeliveryOrder{ID: 1, Goods: []lineitem.Line{byID(1, "20")}}

	deliverable := Deliverable(ordered, BuildShippedMap([]DeliveryOrder{a}, nil))
	require.Len(t, deliverable, 1)
	require.True(t, deliverable[0].RemainingQty.Equal(dec("30")))

	b := DeliveryOrder{ID: 2, Goods: []lineitem.Line{byID(1, "25")}}
	all := []DeliveryOrder{a, b}
	require.True(t, BuildShippedMap(all, nil).Of("id:1").Equal(dec("45")))

	excluding := BuildShippedMap(all, &a.ID)
	editable := Editable(ordered, excluding, a.Goods)
	require.True(t, editable[0].MaxQty.Equal(dec("25")))
	require.True(t, editable[0].CurrentQty.Equal(dec("20")))

	_, err := ValidateCommit(ordered, excluding, []lineitem.Line{byID(1, "26")})
	require.ErrorIs(t, err, ErrQtyExceedsRemaining)

	lines, err := ValidateCommit(ordered, excluding, []lineitem.Line{byID(1, "25")})
	require.NoError(t, err)
	require.True(t, lines[0].Qty.Equal(dec("25")))
	require.Equal(t, "Steel pipe", lines[0].Name)
	require.True(t, FullyShipped(ordered, excluding.Add(lines)))
}

func TestDeliverableDropsExhaustedLines(t *testing.T) {
	ordered := []lineitem.Line{byID(1, "10"), byName("Custom Bracket", "4")}
	shipped := BuildShippedMap([]DeliveryOrder{{ID: 1, Goods: []lineitem.Line{byID(1, "10"), byName("custom  bracket", "1")}}}, nil)

	lines := Deliverable(ordered, shipped)
	require.Len(t, lines, 1)
	require.Equal(t, "name:custom bracket", lines[0].Key())
	require.True(t, lines[0].RemainingQty.Equal(dec("3")))

	editable := Editable(ordered, shipped, nil)
	require.Len(t, editable, 2)
	require.True(t, editable[0].MaxQty.IsZero())
}

func TestRemainingNeverNegative(t *testing.T) {
	require.True(t, RemainingForLine(dec("5"), dec("7")).IsZero())
	require.True(t, RemainingForLine(dec("5"), dec("2.5")).Equal(dec("2.5")))
}

func TestValidateCommitRejections(t *testing.T) {
	ordered := []lineitem.Line{byID(1, "10"), byName("Custom bracket", "4")}
	shipped := ShippedMap{"id:1": dec("6")}

	cases := []struct {
		name      string
		submitted []lineitem.Line
		want      error
	}{
		{"unknown good", []lineitem.Line{byID(9, "1")}, ErrLineNotOnOrder},
		{"unknown free text", []lineitem.Line{byName("Hinge", "1")}, ErrLineNotOnOrder},
		{"negative", []lineitem.Line{byID(1, "-1")}, ErrNegativeQty},
		{"nothing shipped", []lineitem.Line{byID(1, "0"), byName("custom bracket", "0")}, ErrEmptyDelivery},
		{"no lines", nil, ErrEmptyDelivery},
		{"exceeds remaining", []lineitem.Line{byID(1, "5")}, ErrQtyExceedsRemaining},
		{"split rows exceed together", []lineitem.Line{byID(1, "3"), byID(1, "2")}, ErrQtyExceedsRemaining},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCommit(ordered, shipped, tc.submitted)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateCommitMergesAndOrdersLines(t *testing.T) {
	ordered := []lineitem.Line{byID(1, "10"), byName("Custom bracket", "4")}
	lines, err := ValidateCommit(ordered, ShippedMap{}, []lineitem.Line{
		byName("CUSTOM BRACKET", "1"),
		byID(1, "2"),
		byID(1, "2"),
		byName("custom bracket", "3"),
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "id:1", lines[0].Key())
	require.True(t, lines[0].Qty.Equal(dec("4")))
	require.Equal(t, "Custom bracket", lines[1].Name)
	require.True(t, lines[1].Qty.Equal(dec("4")))
}

func TestDuplicateOrderedKeysAreSummed(t *testing.T) {
	ordered := []lineitem.Line{byID(1, "10"), byID(1, "5")}
	lines := Deliverable(ordered, ShippedMap{"id:1": dec("12")})
	require.Len(t, lines, 1)
	require.True(t, lines[0].RemainingQty.Equal(dec("3")))
}
