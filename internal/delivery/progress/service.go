package progress

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/fulfillment-ledger/internal/delivery/orders"
	salesorders "github.com/odyssey-erp/fulfillment-ledger/internal/sales/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Loader reads a sales order and its deliveries as of one snapshot.
type Loader interface {
	Snapshot(ctx context.Context, salesOrderID int64) (*salesorders.SalesOrder, []orders.DeliveryOrder, error)
}

// Service computes order progress on demand.
type Service struct {
	loader Loader
	group  singleflight.Group
	logger *slog.Logger
}

// NewService constructs the service.
func NewService(loader Loader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{loader: loader, logger: logger}
}

// OrderProgress returns the progress report of a sales order. Concurrent
// requests for the same order share one computation.
func (s *Service) OrderProgress(ctx context.Context, salesOrderID int64, actor shared.Actor) (*Report, error) {
	if err := shared.Authorize(actor, shared.ActionProgressView, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	v, err, joined := s.group.Do(strconv.FormatInt(salesOrderID, 10), func() (any, error) {
		return s.compute(ctx, salesOrderID)
	})
	if err != nil {
		return nil, err
	}
	if joined {
		s.logger.Debug("progress computation shared", slog.Int64("sales_order_id", salesOrderID))
	}
	rep := v.(Report)
	return &rep, nil
}

func (s *Service) compute(ctx context.Context, salesOrderID int64) (Report, error) {
	so, deliveries, err := s.loader.Snapshot(ctx, salesOrderID)
	if err != nil {
		return Report{}, fmt.Errorf("load progress snapshot: %w", err)
	}

	rep := Compute(so.Goods, orders.BuildShippedMap(deliveries, nil))
	rep.SalesOrderID = so.ID
	rep.OrderNumber = so.OrderNumber
	rep.Status = string(so.DisplayStatus())
	rep.DeliveryCount = len(deliveries)
	return rep.Rounded(), nil
}
