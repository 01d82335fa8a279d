package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageParamsClamps(t *testing.T) {
	page, limit, offset := PageParams("", "")
	require.Equal(t, 1, page)
	require.Equal(t, 20, limit)
	require.Equal(t, 0, offset)

	page, limit, offset = PageParams("3", "500")
	require.Equal(t, 3, page)
	require.Equal(t, 200, limit)
	require.Equal(t, 400, offset)
}

func TestNewPaginationRoundsUp(t *testing.T) {
	p := NewPagination(2, 20, 41)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 41, p.Total)
}

func TestNumberingLockKeyIsStableAndPositive(t *testing.T) {
	require.Equal(t, NumberingLockKey("delivery"), NumberingLockKey("delivery"))
	require.NotEqual(t, NumberingLockKey("delivery"), NumberingLockKey("quotation"))
	require.Positive(t, NumberingLockKey("quotation"))
}
