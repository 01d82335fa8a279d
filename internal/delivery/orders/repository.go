package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
	"github.com/odyssey-erp/fulfillment-ledger/internal/numbering"
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/db"
	salesorders "github.com/odyssey-erp/fulfillment-ledger/internal/sales/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// IdempotencyModule scopes delivery idempotency keys.
const IdempotencyModule = "delivery"

// Repository defines persistence for delivery orders.
type Repository interface {
	Get(ctx context.Context, id int64) (*DeliveryOrder, error)
	ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]DeliveryOrder, error)
	SalesOrder(ctx context.Context, id int64) (*salesorders.SalesOrder, error)
	// Snapshot reads a sales order and all its deliveries from one
	// consistent view.
	Snapshot(ctx context.Context, salesOrderID int64) (*salesorders.SalesOrder, []DeliveryOrder, error)
	// WithSalesOrderLock runs fn in a transaction holding the sales order's
	// row lock. fn receives the order as read under the lock.
	WithSalesOrderLock(ctx context.Context, salesOrderID int64, fn func(context.Context, TxRepository, *salesorders.SalesOrder) error) error
}

// TxRepository exposes the writes performed under the sales order lock.
type TxRepository interface {
	Get(ctx context.Context, id int64) (*DeliveryOrder, error)
	ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]DeliveryOrder, error)
	Create(ctx context.Context, d DeliveryOrder) (int64, error)
	Update(ctx context.Context, d DeliveryOrder) error
	SetOnDelivery(ctx context.Context, salesOrderID int64, onDelivery bool) error
	LockNumbering(ctx context.Context) error
	NumbersForYear(ctx context.Context, scheme numbering.Scheme, year int) ([]string, error)
	ClaimIdempotencyKey(ctx context.Context, key string) error
}

type repository struct {
	pool        *pgxpool.Pool
	idempotency *shared.IdempotencyStore
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool, idempotency: shared.NewIdempotencyStore(pool)}
}

// txRepository implements TxRepository.
type txRepository struct {
	tx          pgx.Tx
	idempotency *shared.IdempotencyStore
}

func (r *repository) WithSalesOrderLock(ctx context.Context, salesOrderID int64, fn func(context.Context, TxRepository, *salesorders.SalesOrder) error) error {
	return db.WithLockingTx(ctx, r.pool, func(tx pgx.Tx) error {
		so, err := salesorders.Bind(tx, r.pool).GetForUpdate(ctx, salesOrderID)
		if err != nil {
			return err
		}
		return fn(ctx, &txRepository{tx: tx, idempotency: r.idempotency}, so)
	})
}

func (r *repository) Snapshot(ctx context.Context, salesOrderID int64) (*salesorders.SalesOrder, []DeliveryOrder, error) {
	var (
		so         *salesorders.SalesOrder
		deliveries []DeliveryOrder
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if so, err = salesorders.Bind(tx, r.pool).Get(ctx, salesOrderID); err != nil {
			return err
		}
		deliveries, err = listBySalesOrder(ctx, tx, salesOrderID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return so, deliveries, nil
}

func (r *repository) SalesOrder(ctx context.Context, id int64) (*salesorders.SalesOrder, error) {
	return salesorders.Bind(r.pool, r.pool).Get(ctx, id)
}

func (r *repository) Get(ctx context.Context, id int64) (*DeliveryOrder, error) {
	return getDelivery(ctx, r.pool, id, false)
}

func (r *repository) ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]DeliveryOrder, error) {
	return listBySalesOrder(ctx, r.pool, salesOrderID)
}

const deliveryColumns = `id, delivery_number, sales_order_id, delivery_date, ship_address, goods, created_by, created_at, updated_at`

func scanDelivery(row pgx.Row) (*DeliveryOrder, error) {
	var (
		d     DeliveryOrder
		goods string
	)
	err := row.Scan(&d.ID, &d.DeliveryNumber, &d.SalesOrderID, &d.DeliveryDate, &d.ShipAddress, &goods,
		&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.Goods = lineitem.DecodeOrEmpty([]byte(goods))
	return &d, nil
}

func getDelivery(ctx context.Context, exec db.DBTX, id int64, forUpdate bool) (*DeliveryOrder, error) {
	query := `SELECT ` + deliveryColumns + ` FROM delivery_orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanDelivery(exec.QueryRow(ctx, query, id))
}

func listBySalesOrder(ctx context.Context, exec db.DBTX, salesOrderID int64) ([]DeliveryOrder, error) {
	rows, err := exec.Query(ctx, `SELECT `+deliveryColumns+` FROM delivery_orders WHERE sales_order_id = $1 ORDER BY id`, salesOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeliveryOrder
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (t *txRepository) Get(ctx context.Context, id int64) (*DeliveryOrder, error) {
	return getDelivery(ctx, t.tx, id, true)
}

func (t *txRepository) ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]DeliveryOrder, error) {
	return listBySalesOrder(ctx, t.tx, salesOrderID)
}

// Create inserts a delivery order.
func (t *txRepository) Create(ctx context.Context, d DeliveryOrder) (int64, error) {
	goods, err := lineitem.Encode(d.Goods)
	if err != nil {
		return 0, err
	}
	var id int64
	err = t.tx.QueryRow(ctx, `
		INSERT INTO delivery_orders (delivery_number, sales_order_id, delivery_date, ship_address, goods, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		d.DeliveryNumber, d.SalesOrderID, d.DeliveryDate, d.ShipAddress, string(goods), d.CreatedBy,
	).Scan(&id)
	return id, err
}

// Update rewrites the editable fields of a delivery order.
func (t *txRepository) Update(ctx context.Context, d DeliveryOrder) error {
	goods, err := lineitem.Encode(d.Goods)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE delivery_orders SET delivery_date = $2, ship_address = $3, goods = $4, updated_at = $5
		WHERE id = $1`,
		d.ID, d.DeliveryDate, d.ShipAddress, string(goods), time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) SetOnDelivery(ctx context.Context, salesOrderID int64, onDelivery bool) error {
	return salesorders.Bind(t.tx, nil).SetOnDelivery(ctx, salesOrderID, onDelivery)
}

func (t *txRepository) LockNumbering(ctx context.Context) error {
	return db.AdvisoryXactLock(ctx, t.tx, shared.NumberingLockKey("delivery"))
}

func (t *txRepository) NumbersForYear(ctx context.Context, scheme numbering.Scheme, year int) ([]string, error) {
	rows, err := t.tx.Query(ctx, `SELECT delivery_number FROM delivery_orders WHERE delivery_number LIKE ANY($1::text[])`, scheme.YearPatterns(year))
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

func (t *txRepository) ClaimIdempotencyKey(ctx context.Context, key string) error {
	return t.idempotency.CheckAndInsert(ctx, t.tx, key, IdempotencyModule)
}
