package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

type fakeQueue struct {
	tasks []*asynq.Task
	seen  map[string]bool
	err   error
}

func (q *fakeQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.seen == nil {
		q.seen = map[string]bool{}
	}
	key := task.Type() + string(task.Payload())
	if q.seen[key] {
		return nil, asynq.ErrTaskIDConflict
	}
	q.seen[key] = true
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (q *fakeQueue) Close() error { return nil }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestClientEnqueuesEveryEventType(t *testing.T) {
	q := &fakeQueue{}
	c := newClient(q, nil, quietLogger())
	ctx := context.Background()
	at := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, c.QuotationStatusChanged(ctx, shared.QuotationStatusChanged{QuotationID: 1, From: "waiting", To: "process", At: at}))
	require.NoError(t, c.SalesOrderMaterialized(ctx, shared.SalesOrderMaterialized{SalesOrderID: 2, QuotationID: 1, At: at}))
	require.NoError(t, c.DeliveryCommitted(ctx, shared.DeliveryCommitted{DeliveryID: 3, SalesOrderID: 2, Created: true, At: at}))

	require.Len(t, q.tasks, 3)
	require.Equal(t, TaskQuotationStatusChanged, q.tasks[0].Type())
	require.Equal(t, TaskSalesOrderMaterialized, q.tasks[1].Type())
	require.Equal(t, TaskDeliveryCommitted, q.tasks[2].Type())

	var evt shared.DeliveryCommitted
	require.NoError(t, json.Unmarshal(q.tasks[2].Payload(), &evt))
	require.Equal(t, int64(3), evt.DeliveryID)
	require.True(t, evt.Created)
}

func TestClientSwallowsEnqueueFailures(t *testing.T) {
	c := newClient(&fakeQueue{err: errors.New("redis down")}, nil, quietLogger())
	require.NoError(t, c.DeliveryCommitted(context.Background(), shared.DeliveryCommitted{DeliveryID: 3}))

	q := &fakeQueue{}
	c = newClient(q, nil, quietLogger())
	evt := shared.SalesOrderMaterialized{SalesOrderID: 2}
	require.NoError(t, c.SalesOrderMaterialized(context.Background(), evt))
	require.NoError(t, c.SalesOrderMaterialized(context.Background(), evt))
	require.Len(t, q.tasks, 1)
}

func TestTaskIDsAreStablePerEvent(t *testing.T) {
	at := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	require.Equal(t,
		taskID(TaskDeliveryCommitted, 3, "1"),
		taskID(TaskDeliveryCommitted, 3, "1"))
	require.NotEqual(t,
		taskID(TaskDeliveryCommitted, 3, "1"),
		taskID(TaskDeliveryCommitted, 4, "1"))
	require.NotEqual(t,
		taskID(TaskQuotationStatusChanged, 1, "process", "1", at.String()),
		taskID(TaskQuotationStatusChanged, 1, "success", "1", at.String()))
}

func TestIdempotencyCleanupTaskRequiresRetention(t *testing.T) {
	_, err := NewIdempotencyCleanupTask(0)
	require.Error(t, err)

	task, err := NewIdempotencyCleanupTask(168)
	require.NoError(t, err)
	require.Equal(t, TaskIdempotencyCleanup, task.Type())
	require.JSONEq(t, `{"retention_hours":168}`, string(task.Payload()))
}
