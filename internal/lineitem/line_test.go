package lineitem

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestKeyPrefersGoodID(t *testing.T) {
	require.Equal(t, "id:9", Line{GoodID: GoodID(9), Name: "Anything"}.Key())
	require.Equal(t, "name:baut m10", Line{Name: "  BAUT   M10 "}.Key())
	require.Equal(t, Line{Name: "Ｂａｕｔ m10"}.Key(), Line{Name: "baut M10"}.Key())
}

func TestSumAndClone(t *testing.T) {
	lines := []Line{
		{GoodID: GoodID(1), Qty: decimal.NewFromInt(2), Price: decimal.NewFromInt(3500)},
		{Name: "Service", Qty: decimal.NewFromInt(1), Price: decimal.NewFromInt(3000)},
	}
	require.True(t, Sum(lines).Equal(decimal.NewFromInt(10000)))

	cloned := Clone(lines)
	*cloned[0].GoodID = 99
	require.Equal(t, int64(1), *lines[0].GoodID)
}

func TestValueDistinguishesMissingFromZero(t *testing.T) {
	var payload struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
		D Value `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"","b":0,"c":"12.5","d":null}`), &payload))
	require.False(t, payload.A.Set)
	require.True(t, payload.B.Set)
	require.True(t, payload.B.Decimal.IsZero())
	require.True(t, payload.C.Decimal.Equal(decimal.RequireFromString("12.5")))
	require.False(t, payload.D.Set)

	require.Error(t, json.Unmarshal([]byte(`{"a":"ten"}`), &payload))
}
