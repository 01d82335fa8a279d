package quotations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
	"github.com/odyssey-erp/fulfillment-ledger/internal/numbering"
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/db"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Repository defines persistence for quotations.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	// GetForUpdate row-locks the quotation inside a transaction.
	GetForUpdate(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, filter ListFilter) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	Update(ctx context.Context, q Quotation) error
	UpdateStatus(ctx context.Context, id int64, status Status, round int) error
	RecordTransition(ctx context.Context, log shared.ApprovalLog) error
	LockNumbering(ctx context.Context) error
	NumbersForYear(ctx context.Context, scheme numbering.Scheme, year int) ([]string, error)
}

type repository struct {
	db        db.DBTX
	pool      *pgxpool.Pool
	approvals *shared.ApprovalRecorder
}

// NewRepository constructs the pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool, approvals: shared.NewApprovalRecorder()}
}

// Bind returns a repository that runs on exec, typically a transaction owned
// by another package's repository.
func Bind(exec db.DBTX, pool *pgxpool.Pool) Repository {
	return &repository{db: exec, pool: pool, approvals: shared.NewApprovalRecorder()}
}

// WithTx runs fn in a locking transaction; numbering and transitions take
// their locks inside it.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if tx, ok := r.db.(pgx.Tx); ok {
		return fn(ctx, &repository{db: tx, pool: r.pool, approvals: r.approvals})
	}
	return db.WithLockingTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool, approvals: r.approvals})
	})
}

const quotationColumns = `id, number, rfq_ref, company_name, company_address, pic_name, pic_phone, pic_email,
	goods, include_tax, tax_rate::text, total_amount::text, tax_amount::text, grand_total::text,
	status, negotiation_round, performed_by, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var (
		q                            Quotation
		goods                        string
		rate, total, tax, grandTotal string
		status                       string
	)
	err := row.Scan(&q.ID, &q.Number, &q.RFQRef, &q.CompanyName, &q.CompanyAddress, &q.PICName, &q.PICPhone, &q.PICEmail,
		&goods, &q.IncludeTax, &rate, &total, &tax, &grandTotal,
		&status, &q.NegotiationRound, &q.PerformedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	q.Goods = lineitem.DecodeOrEmpty([]byte(goods))
	q.Status = Status(status).Canonical()
	if q.TaxRate, err = db.ParseNumeric(rate); err != nil {
		return nil, err
	}
	if q.TotalAmount, err = db.ParseNumeric(total); err != nil {
		return nil, err
	}
	if q.TaxAmount, err = db.ParseNumeric(tax); err != nil {
		return nil, err
	}
	if q.GrandTotal, err = db.ParseNumeric(grandTotal); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	return scanQuotation(r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id))
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Quotation, error) {
	return scanQuotation(r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1 FOR UPDATE`, id))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Quotation, int, error) {
	where := ""
	args := []any{}
	if filter.Status != nil {
		statuses := []string{string(filter.Status.Canonical())}
		if filter.Status.Canonical() == StatusWaiting {
			statuses = append(statuses, string(StatusRenegotiation))
		}
		args = append(args, statuses)
		where = " WHERE status = ANY($1)"
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM quotations%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		quotationColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	goods, err := lineitem.Encode(q.Goods)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO quotations (number, rfq_ref, company_name, company_address, pic_name, pic_phone, pic_email,
			goods, include_tax, tax_rate, total_amount, tax_amount, grand_total, status, negotiation_round, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11::numeric, $12::numeric, $13::numeric, $14, $15, $16)
		RETURNING id`,
		q.Number, q.RFQRef, q.CompanyName, q.CompanyAddress, q.PICName, q.PICPhone, q.PICEmail,
		string(goods), q.IncludeTax, q.TaxRate.String(), q.TotalAmount.String(), q.TaxAmount.String(), q.GrandTotal.String(),
		string(q.Status), q.NegotiationRound, q.PerformedBy,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, "quotations_number_key") {
			return 0, fmt.Errorf("quotation number %s: %w", q.Number, errDuplicateNumber)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, q Quotation) error {
	goods, err := lineitem.Encode(q.Goods)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET rfq_ref = $2, company_name = $3, company_address = $4, pic_name = $5, pic_phone = $6,
			pic_email = $7, goods = $8, include_tax = $9, total_amount = $10::numeric, tax_amount = $11::numeric,
			grand_total = $12::numeric, updated_at = NOW()
		WHERE id = $1`,
		q.ID, q.RFQRef, q.CompanyName, q.CompanyAddress, q.PICName, q.PICPhone,
		q.PICEmail, string(goods), q.IncludeTax, q.TotalAmount.String(), q.TaxAmount.String(),
		q.GrandTotal.String(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, round int) error {
	tag, err := r.db.Exec(ctx, `UPDATE quotations SET status = $2, negotiation_round = $3, updated_at = NOW() WHERE id = $1`,
		id, string(status), round)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) RecordTransition(ctx context.Context, log shared.ApprovalLog) error {
	return r.approvals.Record(ctx, r.db, log)
}

func (r *repository) LockNumbering(ctx context.Context) error {
	return db.AdvisoryXactLock(ctx, r.db, shared.NumberingLockKey("quotation"))
}

func (r *repository) NumbersForYear(ctx context.Context, scheme numbering.Scheme, year int) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT number FROM quotations WHERE number LIKE ANY($1::text[])`, scheme.YearPatterns(year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}
