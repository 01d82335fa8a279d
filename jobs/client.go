package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/fulfillment-ledger/internal/observability"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client submits notification tasks to the queue. It implements
// shared.Notifier; enqueue failures are logged and counted, never returned.
type Client struct {
	client  enqueuer
	metrics *observability.Metrics
	logger  *slog.Logger
}

var _ shared.Notifier = (*Client)(nil)

// NewClient constructs an Asynq-backed client.
func NewClient(redisOpts asynq.RedisClientOpt, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return newClient(asynq.NewClient(redisOpts), metrics, logger)
}

func newClient(q enqueuer, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{client: q, metrics: metrics, logger: logger}
}

// QuotationStatusChanged enqueues a status change notification.
func (c *Client) QuotationStatusChanged(ctx context.Context, evt shared.QuotationStatusChanged) error {
	task, err := NewQuotationStatusChangedTask(evt)
	c.enqueue(ctx, TaskQuotationStatusChanged, task, err, slog.Int64("quotation_id", evt.QuotationID))
	return nil
}

// SalesOrderMaterialized enqueues a materialization notification.
func (c *Client) SalesOrderMaterialized(ctx context.Context, evt shared.SalesOrderMaterialized) error {
	task, err := NewSalesOrderMaterializedTask(evt)
	c.enqueue(ctx, TaskSalesOrderMaterialized, task, err, slog.Int64("sales_order_id", evt.SalesOrderID))
	return nil
}

// DeliveryCommitted enqueues a delivery notification.
func (c *Client) DeliveryCommitted(ctx context.Context, evt shared.DeliveryCommitted) error {
	task, err := NewDeliveryCommittedTask(evt)
	c.enqueue(ctx, TaskDeliveryCommitted, task, err, slog.Int64("delivery_id", evt.DeliveryID))
	return nil
}

func (c *Client) enqueue(ctx context.Context, typ string, task *asynq.Task, buildErr error, attr slog.Attr) {
	if buildErr != nil {
		c.metrics.Notification(typ, "error")
		c.logger.Error("build notification task", slog.String("type", typ), attr, slog.Any("error", buildErr))
		return
	}
	_, err := c.client.EnqueueContext(ctx, task)
	switch {
	case err == nil:
		c.metrics.Notification(typ, "enqueued")
	case errors.Is(err, asynq.ErrTaskIDConflict), errors.Is(err, asynq.ErrDuplicateTask):
		c.metrics.Notification(typ, "duplicate")
		c.logger.Debug("notification already queued", slog.String("type", typ), attr)
	default:
		c.metrics.Notification(typ, "error")
		c.logger.Warn("enqueue notification", slog.String("type", typ), attr, slog.Any("error", err))
	}
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
