package shared

import (
	"context"
	"errors"
	"time"

	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/db"
)

// ApprovalLog represents a single status transition record.
type ApprovalLog struct {
	ID         int64     `json:"id"`
	Module     string    `json:"module"`
	RefID      int64     `json:"ref_id"`
	ActorID    int64     `json:"actor_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Note       string    `json:"note,omitempty"`
	At         time.Time `json:"at"`
}

// ApprovalRecorder persists status transition history. It writes through the
// executor it is given so the history row commits with the transition.
type ApprovalRecorder struct{}

// NewApprovalRecorder constructs ApprovalRecorder.
func NewApprovalRecorder() *ApprovalRecorder {
	return &ApprovalRecorder{}
}

// Record writes an approval entry.
func (r *ApprovalRecorder) Record(ctx context.Context, exec db.DBTX, log ApprovalLog) error {
	if r == nil {
		return errors.New("approval recorder not initialised")
	}
	if log.Module == "" {
		return errors.New("approval module required")
	}
	if log.ActorID == 0 {
		return errors.New("approval actor required")
	}
	if log.RefID == 0 {
		return errors.New("approval ref id required")
	}
	if log.ToStatus == "" {
		return errors.New("approval target status required")
	}
	var at any
	if !log.At.IsZero() {
		at = log.At
	}
	_, err := exec.Exec(ctx, `INSERT INTO approvals (module, ref_id, actor_id, from_status, to_status, note, at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`, log.Module, log.RefID, log.ActorID, log.FromStatus, log.ToStatus, log.Note, at)
	return err
}

// List returns approvals for module/ref in chronological order.
func (r *ApprovalRecorder) List(ctx context.Context, exec db.DBTX, module string, ref int64) ([]ApprovalLog, error) {
	if r == nil {
		return nil, errors.New("approval recorder not initialised")
	}
	rows, err := exec.Query(ctx, `SELECT id, module, ref_id, actor_id, from_status, to_status, note, at
FROM approvals WHERE module=$1 AND ref_id=$2 ORDER BY at ASC, id ASC`, module, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []ApprovalLog
	for rows.Next() {
		var l ApprovalLog
		if err := rows.Scan(&l.ID, &l.Module, &l.RefID, &l.ActorID, &l.FromStatus, &l.ToStatus, &l.Note, &l.At); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
