package lineitem

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEncodeWritesVersionedEnvelope(t *testing.T) {
	raw, err := Encode([]Line{{GoodID: GoodID(4), Name: "Pipe", Unit: "pcs", Qty: decimal.NewFromInt(10), Price: decimal.NewFromInt(1000), DeliveryTimeDays: Days(7)}})
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &env))
	require.JSONEq(t, "2", string(env["v"]))

	lines, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, int64(4), *lines[0].GoodID)
	require.True(t, lines[0].Qty.Equal(decimal.NewFromInt(10)))
	require.Equal(t, 7, *lines[0].DeliveryTimeDays)
}

func TestEncodeNilWritesEmptyArray(t *testing.T) {
	raw, err := Encode(nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"v":2,"lines":[]}`, string(raw))
}

func TestDecodeLegacyBareArray(t *testing.T) {
	raw := []byte(`[
		{"id":"12","name":"Valve","unit":"pcs","qty":"5","price":250.5,"delivery_time_days":"3"},
		{"good_id":"","name":"Custom bracket","qty":2,"price":"","deadline_days":14},
		{"good_id":"abc","name":"Gasket","qty":1,"price":10}
	]`)
	lines, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	require.Equal(t, "id:12", lines[0].Key())
	require.True(t, lines[0].Price.Equal(decimal.RequireFromString("250.5")))
	require.Equal(t, 3, *lines[0].DeliveryTimeDays)

	require.Nil(t, lines[1].GoodID)
	require.Equal(t, "name:custom bracket", lines[1].Key())
	require.True(t, lines[1].Price.IsZero())
	require.Equal(t, 14, *lines[1].DeadlineDays)

	require.Nil(t, lines[2].GoodID)
	require.Equal(t, "name:gasket", lines[2].Key())
}

func TestDecodeDoubleEncodedString(t *testing.T) {
	inner := `[{"good_id":3,"name":"Hose","qty":4,"price":9}]`
	outer, err := json.Marshal(inner)
	require.NoError(t, err)

	lines, err := Decode(outer)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, "id:3", lines[0].Key())
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	for _, raw := range []string{`{"v":2,"lines":`, `not json`, `{"v":2,"lines":[{"qty":"x"}]}`, `"\"[\\\"nested\\\"]\""`} {
		_, err := Decode([]byte(raw))
		require.ErrorIs(t, err, ErrMalformed, raw)
	}

	_, err := Decode([]byte(`{"v":9,"lines":[]}`))
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeOrEmptyFallsBackToEmptySlice(t *testing.T) {
	lines := DecodeOrEmpty([]byte(`{broken`))
	require.NotNil(t, lines)
	require.Empty(t, lines)

	lines = DecodeOrEmpty(nil)
	require.NotNil(t, lines)
	require.Empty(t, lines)
}
