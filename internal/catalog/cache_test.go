package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	goods map[int64]Good
	calls [][]int64
}

func (s *stubReader) Goods(ctx context.Context, ids []int64) (map[int64]Good, error) {
	s.calls = append(s.calls, append([]int64(nil), ids...))
	out := make(map[int64]Good)
	for _, id := range ids {
		if g, ok := s.goods[id]; ok {
			out[id] = g
		}
	}
	return out, nil
}

func newStub() *stubReader {
	return &stubReader{goods: map[int64]Good{
		1: {ID: 1, Name: "Steel pipe", Unit: "m", MinimumOrderQuantity: decimal.NewFromInt(10), Status: StatusActive},
		2: {ID: 2, Name: "Valve", Unit: "pcs", MinimumOrderQuantity: decimal.Zero, Status: StatusActive},
	}}
}

func TestCachedReaderServesRepeatReadsFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	stub := newStub()
	reader := NewCachedReader(stub, client, time.Minute, nil)
	ctx := context.Background()

	goods, err := reader.Goods(ctx, []int64{1, 2, 1, 3})
	require.NoError(t, err)
	require.Len(t, goods, 2)
	require.Len(t, stub.calls, 1)
	require.ElementsMatch(t, []int64{1, 2, 3}, stub.calls[0])
	require.True(t, mr.Exists("catalog:good:1"))

	goods, err = reader.Goods(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.True(t, goods[1].MinimumOrderQuantity.Equal(decimal.NewFromInt(10)))
	require.Len(t, stub.calls, 1)

	_, err = reader.Goods(ctx, []int64{1, 3})
	require.NoError(t, err)
	require.Len(t, stub.calls, 2)
	require.Equal(t, []int64{3}, stub.calls[1])
}

func TestCachedReaderExpiresAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	stub := newStub()
	reader := NewCachedReader(stub, client, time.Minute, nil)
	ctx := context.Background()

	_, err := reader.Goods(ctx, []int64{1})
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = reader.Goods(ctx, []int64{1})
	require.NoError(t, err)
	require.Len(t, stub.calls, 2)

	require.NoError(t, reader.Invalidate(ctx, 1))
	require.False(t, mr.Exists("catalog:good:1"))
}

func TestCachedReaderFallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	stub := newStub()
	reader := NewCachedReader(stub, client, time.Minute, nil)
	mr.Close()

	goods, err := reader.Goods(context.Background(), []int64{2})
	require.NoError(t, err)
	require.Equal(t, "Valve", goods[2].Name)
	require.Len(t, stub.calls, 1)
}
