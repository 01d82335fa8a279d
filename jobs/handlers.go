package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/fulfillment-ledger/internal/jobs"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// KeyPruner removes expired idempotency keys.
type KeyPruner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Handlers processes notification and maintenance tasks.
type Handlers struct {
	audit   AuditRecorder
	keys    KeyPruner
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

// NewHandlers wires the task handlers.
func NewHandlers(audit AuditRecorder, keys KeyPruner, metrics *jobmetrics.Metrics, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{audit: audit, keys: keys, metrics: metrics, logger: logger}
}

// Register attaches every handler to mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskQuotationStatusChanged, h.HandleQuotationStatusChanged)
	mux.HandleFunc(TaskSalesOrderMaterialized, h.HandleSalesOrderMaterialized)
	mux.HandleFunc(TaskDeliveryCommitted, h.HandleDeliveryCommitted)
	mux.HandleFunc(TaskIdempotencyCleanup, h.HandleIdempotencyCleanup)
}

// HandleQuotationStatusChanged records the transition in audit_logs.
func (h *Handlers) HandleQuotationStatusChanged(ctx context.Context, t *asynq.Task) error {
	var evt shared.QuotationStatusChanged
	if err := json.Unmarshal(t.Payload(), &evt); err != nil || evt.QuotationID == 0 {
		h.logger.Warn("drop malformed task", slog.String("type", t.Type()))
		return asynq.SkipRetry
	}
	tracker := h.metrics.Track(TaskQuotationStatusChanged)
	err := h.audit.Record(ctx, shared.AuditLog{
		ActorID:  evt.ActorID,
		Action:   "quotation.status_changed",
		Entity:   "quotation",
		EntityID: evt.QuotationID,
		Meta:     map[string]any{"number": evt.Number, "from": evt.From, "to": evt.To, "round": evt.Round},
		At:       evt.At,
	})
	if err == nil {
		h.logger.Info("quotation status changed",
			slog.Int64("quotation_id", evt.QuotationID),
			slog.String("from", evt.From),
			slog.String("to", evt.To))
	}
	return tracker.End(wrap("record quotation transition", err))
}

// HandleSalesOrderMaterialized records the sales order creation.
func (h *Handlers) HandleSalesOrderMaterialized(ctx context.Context, t *asynq.Task) error {
	var evt shared.SalesOrderMaterialized
	if err := json.Unmarshal(t.Payload(), &evt); err != nil || evt.SalesOrderID == 0 {
		h.logger.Warn("drop malformed task", slog.String("type", t.Type()))
		return asynq.SkipRetry
	}
	tracker := h.metrics.Track(TaskSalesOrderMaterialized)
	err := h.audit.Record(ctx, shared.AuditLog{
		ActorID:  evt.ActorID,
		Action:   "sales_order.materialized",
		Entity:   "sales_order",
		EntityID: evt.SalesOrderID,
		Meta:     map[string]any{"quotation_id": evt.QuotationID, "order_number": evt.OrderNumber},
		At:       evt.At,
	})
	return tracker.End(wrap("record sales order materialization", err))
}

// HandleDeliveryCommitted records the delivery commit.
func (h *Handlers) HandleDeliveryCommitted(ctx context.Context, t *asynq.Task) error {
	var evt shared.DeliveryCommitted
	if err := json.Unmarshal(t.Payload(), &evt); err != nil || evt.DeliveryID == 0 {
		h.logger.Warn("drop malformed task", slog.String("type", t.Type()))
		return asynq.SkipRetry
	}
	action := "delivery.updated"
	if evt.Created {
		action = "delivery.created"
	}
	tracker := h.metrics.Track(TaskDeliveryCommitted)
	err := h.audit.Record(ctx, shared.AuditLog{
		ActorID:  evt.ActorID,
		Action:   action,
		Entity:   "delivery_order",
		EntityID: evt.DeliveryID,
		Meta: map[string]any{
			"sales_order_id":  evt.SalesOrderID,
			"delivery_number": evt.DeliveryNumber,
			"fully_shipped":   evt.FullyShipped,
		},
		At: evt.At,
	})
	if err == nil && evt.FullyShipped {
		h.logger.Info("sales order fully shipped", slog.Int64("sales_order_id", evt.SalesOrderID))
	}
	return tracker.End(wrap("record delivery commit", err))
}

// HandleIdempotencyCleanup deletes keys past their retention.
func (h *Handlers) HandleIdempotencyCleanup(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.RetentionHours <= 0 {
		return asynq.SkipRetry
	}
	tracker := h.metrics.Track(TaskIdempotencyCleanup)
	removed, err := h.keys.Cleanup(ctx, time.Duration(payload.RetentionHours)*time.Hour)
	if err == nil {
		h.logger.Info("idempotency keys pruned", slog.Int64("removed", removed))
	}
	return tracker.End(wrap("cleanup idempotency keys", err))
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
