package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/db"
	"github.com/odyssey-erp/fulfillment-ledger/internal/sales/quotations"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Repository defines persistence for sales orders.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	// Quotations exposes quotation persistence bound to the same transaction.
	Quotations() quotations.Repository
	Get(ctx context.Context, id int64) (*SalesOrder, error)
	GetForUpdate(ctx context.Context, id int64) (*SalesOrder, error)
	List(ctx context.Context, filter ListFilter) ([]SalesOrder, int, error)
	ExistsForQuotation(ctx context.Context, quotationID int64) (bool, error)
	Create(ctx context.Context, so SalesOrder) (int64, error)
	Update(ctx context.Context, so SalesOrder) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	SetOnDelivery(ctx context.Context, id int64, onDelivery bool) error
	RecordTransition(ctx context.Context, log shared.ApprovalLog) error
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
// by the delivery ledger.
func Bind(exec db.DBTX, pool *pgxpool.Pool) Repository {
	return &repository{db: exec, pool: pool, approvals: shared.NewApprovalRecorder()}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if tx, ok := r.db.(pgx.Tx); ok {
		return fn(ctx, &repository{db: tx, pool: r.pool, approvals: r.approvals})
	}
	return db.WithLockingTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool, approvals: r.approvals})
	})
}

func (r *repository) Quotations() quotations.Repository {
	return quotations.Bind(r.db, r.pool)
}

const salesOrderColumns = `id, order_number, quotation_id, goods, include_tax, total_amount::text, tax_amount::text,
	grand_total::text, status, on_delivery, created_by, created_at, updated_at`

func scanSalesOrder(row pgx.Row) (*SalesOrder, error) {
	var (
		so                SalesOrder
		goods, status     string
		total, tax, grand string
	)
	err := row.Scan(&so.ID, &so.OrderNumber, &so.QuotationID, &goods, &so.IncludeTax, &total, &tax,
		&grand, &status, &so.OnDelivery, &so.CreatedBy, &so.CreatedAt, &so.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	so.Goods = lineitem.DecodeOrEmpty([]byte(goods))
	// Older rows stored the overlay as the status itself.
	if Status(status) == StatusOnDelivery {
		so.Status, so.OnDelivery = StatusOngoing, true
	} else {
		so.Status = Status(status)
	}
	if so.TotalAmount, err = db.ParseNumeric(total); err != nil {
		return nil, err
	}
	if so.TaxAmount, err = db.ParseNumeric(tax); err != nil {
		return nil, err
	}
	if so.GrandTotal, err = db.ParseNumeric(grand); err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*SalesOrder, error) {
	return scanSalesOrder(r.db.QueryRow(ctx, `SELECT `+salesOrderColumns+` FROM sales_orders WHERE id = $1`, id))
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (*SalesOrder, error) {
	return scanSalesOrder(r.db.QueryRow(ctx, `SELECT `+salesOrderColumns+` FROM sales_orders WHERE id = $1 FOR UPDATE`, id))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]SalesOrder, int, error) {
	where := ""
	args := []any{}
	if filter.Status != nil {
		statuses := []string{string(*filter.Status)}
		if *filter.Status == StatusOngoing {
			statuses = append(statuses, string(StatusOnDelivery))
		}
		args = append(args, statuses)
		where = " WHERE status = ANY($1)"
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales_orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM sales_orders%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		salesOrderColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []SalesOrder
	for rows.Next() {
		so, err := scanSalesOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *so)
	}
	return out, total, rows.Err()
}

func (r *repository) ExistsForQuotation(ctx context.Context, quotationID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales_orders WHERE quotation_id = $1)`, quotationID).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, so SalesOrder) (int64, error) {
	goods, err := lineitem.Encode(so.Goods)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO sales_orders (order_number, quotation_id, goods, include_tax, total_amount, tax_amount,
			grand_total, status, on_delivery, created_by)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10)
		RETURNING id`,
		so.OrderNumber, so.QuotationID, string(goods), so.IncludeTax, so.TotalAmount.String(), so.TaxAmount.String(),
		so.GrandTotal.String(), string(so.Status), so.OnDelivery, so.CreatedBy,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, "sales_orders_quotation_id_key") {
			return 0, fmt.Errorf("quotation %d: %w", so.QuotationID, ErrDuplicateMaterialization)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, so SalesOrder) error {
	goods, err := lineitem.Encode(so.Goods)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE sales_orders SET order_number = $2, goods = $3, on_delivery = $4, updated_at = NOW()
		WHERE id = $1`,
		so.ID, so.OrderNumber, string(goods), so.OnDelivery)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE sales_orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetOnDelivery(ctx context.Context, id int64, onDelivery bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE sales_orders SET on_delivery = $2, updated_at = NOW() WHERE id = $1`, id, onDelivery)
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
