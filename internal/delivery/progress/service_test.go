package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/fulfillment-ledger/internal/delivery/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
	salesorders "github.com/odyssey-erp/fulfillment-ledger/internal/sales/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

type stubLoader struct {
	so         *salesorders.SalesOrder
	deliveries []orders.DeliveryOrder
	err        error
	snapshots  *int
}

func (s stubLoader) Snapshot(ctx context.Context, salesOrderID int64) (*salesorders.SalesOrder, []orders.DeliveryOrder, error) {
	if s.snapshots != nil {
		*s.snapshots++
	}
	if s.err != nil {
		return nil, nil, s.err
	}
	if s.so == nil || s.so.ID != salesOrderID {
		return nil, nil, salesorders.ErrNotFound
	}
	return s.so, s.deliveries, nil
}

var viewer = shared.Actor{ID: 3, Role: shared.RoleStaff}

func TestOrderProgressCountsEveryDelivery(t *testing.T) {
	var snapshots int
	loader := stubLoader{
		snapshots: &snapshots,
		so: &salesorders.SalesOrder{ID: 4, OrderNumber: "PO-4", Status: salesorders.StatusOngoing, OnDelivery: true, Goods: []lineitem.Line{
			{GoodID: lineitem.GoodID(1), Qty: dec("50"), Price: dec("10")},
		}},
		deliveries: []orders.DeliveryOrder{
			{ID: 1, SalesOrderID: 4, Goods: []lineitem.Line{{GoodID: lineitem.GoodID(1), Qty: dec("20")}}},
			{ID: 2, SalesOrderID: 4, Goods: []lineitem.Line{{GoodID: lineitem.GoodID(1), Qty: dec("25")}}},
		},
	}
	svc := NewService(loader, nil)

	rep, err := svc.OrderProgress(context.Background(), 4, viewer)
	require.NoError(t, err)
	require.Equal(t, "PO-4", rep.OrderNumber)
	require.Equal(t, "on-delivery", rep.Status)
	require.Equal(t, 2, rep.DeliveryCount)
	require.True(t, rep.OverallProgressPercent.Equal(dec("90")))
	require.True(t, rep.Lines[0].Remaining.Equal(dec("5")))
	require.Equal(t, 1, snapshots)
}

func TestOrderProgressReadsOrderAndDeliveriesTogether(t *testing.T) {
	so := &salesorders.SalesOrder{ID: 6, OrderNumber: "PO-6", Status: salesorders.StatusOngoing, Goods: []lineitem.Line{
		{GoodID: lineitem.GoodID(1), Qty: dec("10"), Price: dec("10")},
	}}
	deliveries := []orders.DeliveryOrder{
		{ID: 1, SalesOrderID: 6, Goods: []lineitem.Line{{GoodID: lineitem.GoodID(1), Qty: dec("4")}}},
		{ID: 2, SalesOrderID: 6, Goods: []lineitem.Line{{GoodID: lineitem.GoodID(1), Qty: dec("6")}}},
	}
	var snapshots int
	svc := NewService(stubLoader{so: so, deliveries: deliveries, snapshots: &snapshots}, nil)

	rep, err := svc.OrderProgress(context.Background(), 6, viewer)
	require.NoError(t, err)
	require.Equal(t, 1, snapshots)
	require.Equal(t, 2, rep.DeliveryCount)
	require.True(t, rep.OverallProgressPercent.Equal(dec("100")))
	require.True(t, rep.Lines[0].Remaining.IsZero())
}

func TestOrderProgressPropagatesLoadErrors(t *testing.T) {
	svc := NewService(stubLoader{}, nil)
	_, err := svc.OrderProgress(context.Background(), 9, viewer)
	require.ErrorIs(t, err, salesorders.ErrNotFound)

	boom := errors.New("deliveries unavailable")
	svc = NewService(stubLoader{so: &salesorders.SalesOrder{ID: 9}, err: boom}, nil)
	_, err = svc.OrderProgress(context.Background(), 9, viewer)
	require.ErrorIs(t, err, boom)

	_, err = svc.OrderProgress(context.Background(), 9, shared.Actor{})
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}
