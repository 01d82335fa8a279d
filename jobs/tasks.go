package jobs

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueMaintenance carries scheduled housekeeping.
	QueueMaintenance = "maintenance"

	// TaskQuotationStatusChanged follows a committed quotation transition.
	TaskQuotationStatusChanged = "quotation:status_changed"
	// TaskSalesOrderMaterialized follows a committed sales order creation.
	TaskSalesOrderMaterialized = "sales_order:materialized"
	// TaskDeliveryCommitted follows a committed delivery insert or edit.
	TaskDeliveryCommitted = "delivery:committed"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

var taskNamespace = uuid.MustParse("6f1c1d2e-8a43-4b5e-9a7f-3c2d1e0f4a5b")

// taskID derives a stable ID from the event identity so a retried enqueue
// of the same event collides instead of duplicating.
func taskID(typ string, entityID int64, parts ...string) string {
	name := typ + ":" + strconv.FormatInt(entityID, 10)
	for _, p := range parts {
		name += ":" + p
	}
	return uuid.NewSHA1(taskNamespace, []byte(name)).String()
}

// NewQuotationStatusChangedTask builds the notification task.
func NewQuotationStatusChangedTask(evt shared.QuotationStatusChanged) (*asynq.Task, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	id := taskID(TaskQuotationStatusChanged, evt.QuotationID, evt.To, strconv.Itoa(evt.Round), strconv.FormatInt(evt.At.UnixNano(), 10))
	return asynq.NewTask(TaskQuotationStatusChanged, body, asynq.TaskID(id), asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// NewSalesOrderMaterializedTask builds the notification task.
func NewSalesOrderMaterializedTask(evt shared.SalesOrderMaterialized) (*asynq.Task, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	id := taskID(TaskSalesOrderMaterialized, evt.SalesOrderID)
	return asynq.NewTask(TaskSalesOrderMaterialized, body, asynq.TaskID(id), asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// NewDeliveryCommittedTask builds the notification task.
func NewDeliveryCommittedTask(evt shared.DeliveryCommitted) (*asynq.Task, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	id := taskID(TaskDeliveryCommitted, evt.DeliveryID, strconv.FormatInt(evt.At.UnixNano(), 10))
	return asynq.NewTask(TaskDeliveryCommitted, body, asynq.TaskID(id), asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// IdempotencyCleanupPayload configures the cleanup run.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask builds the scheduled cleanup task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	if retentionHours <= 0 {
		return nil, fmt.Errorf("idempotency retention must be positive, got %d", retentionHours)
	}
	body, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueMaintenance)), nil
}
