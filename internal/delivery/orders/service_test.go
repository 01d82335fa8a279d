package orders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
	"github.com/odyssey-erp/fulfillment-ledger/internal/numbering"
	salesorders "github.com/odyssey-erp/fulfillment-ledger/internal/sales/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

type memoryStore struct {
	mu         sync.Mutex
	orders     map[int64]salesorders.SalesOrder
	deliveries map[int64]DeliveryOrder
	keys       map[string]struct{}
	nextID     int64
	orderLocks map[int64]*sync.Mutex
	failOn     string
}

type memoryRepo struct{ st *memoryStore }

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{st: &memoryStore{
		orders:     make(map[int64]salesorders.SalesOrder),
		deliveries: make(map[int64]DeliveryOrder),
		keys:       make(map[string]struct{}),
		orderLocks: make(map[int64]*sync.Mutex),
	}}
}

func (st *memoryStore) lockFor(id int64) *sync.Mutex {
	st.mu.Lock()
	defer st.mu.Unlock()
	lk, ok := st.orderLocks[id]
	if !ok {
		lk = &sync.Mutex{}
		st.orderLocks[id] = lk
	}
	return lk
}

func (st *memoryStore) get(id int64) (*DeliveryOrder, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	d, ok := st.deliveries[id]
	if !ok {
		return nil, ErrNotFound
	}
	d.Goods = lineitem.Clone(d.Goods)
	return &d, nil
}

func (st *memoryStore) list(salesOrderID int64) []DeliveryOrder {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []DeliveryOrder
	for _, d := range st.deliveries {
		if d.SalesOrderID == salesOrderID {
			d.Goods = lineitem.Clone(d.Goods)
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *memoryStore) salesOrder(id int64) (*salesorders.SalesOrder, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	so, ok := st.orders[id]
	if !ok {
		return nil, salesorders.ErrNotFound
	}
	so.Goods = lineitem.Clone(so.Goods)
	return &so, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*DeliveryOrder, error) { return r.st.get(id) }

func (r *memoryRepo) ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]DeliveryOrder, error) {
	return r.st.list(salesOrderID), nil
}

func (r *memoryRepo) SalesOrder(ctx context.Context, id int64) (*salesorders.SalesOrder, error) {
	return r.st.salesOrder(id)
}

func (r *memoryRepo) Snapshot(ctx context.Context, salesOrderID int64) (*salesorders.SalesOrder, []DeliveryOrder, error) {
	so, err := r.st.salesOrder(salesOrderID)
	if err != nil {
		return nil, nil, err
	}
	return so, r.st.list(salesOrderID), nil
}

// WithSalesOrderLock serializes per order and applies staged writes only
// when fn succeeds.
func (r *memoryRepo) WithSalesOrderLock(ctx context.Context, salesOrderID int64, fn func(context.Context, TxRepository, *salesorders.SalesOrder) error) error {
	lk := r.st.lockFor(salesOrderID)
	lk.Lock()
	defer lk.Unlock()

	so, err := r.st.salesOrder(salesOrderID)
	if err != nil {
		return err
	}
	tx := &memoryTx{st: r.st, onDelivery: make(map[int64]bool)}
	if err := fn(ctx, tx, so); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTx struct {
	st         *memoryStore
	writes     []DeliveryOrder
	onDelivery map[int64]bool
	keys       []string
}

func (t *memoryTx) Get(ctx context.Context, id int64) (*DeliveryOrder, error) { return t.st.get(id) }

func (t *memoryTx) ListBySalesOrder(ctx context.Context, salesOrderID int64) ([]DeliveryOrder, error) {
	return t.st.list(salesOrderID), nil
}

func (t *memoryTx) Create(ctx context.Context, d DeliveryOrder) (int64, error) {
	if t.st.failOn == "create" {
		return 0, errors.New("connection reset")
	}
	t.st.mu.Lock()
	t.st.nextID++
	d.ID = t.st.nextID
	t.st.mu.Unlock()
	t.writes = append(t.writes, d)
	return d.ID, nil
}

func (t *memoryTx) Update(ctx context.Context, d DeliveryOrder) error {
	t.writes = append(t.writes, d)
	return nil
}

func (t *memoryTx) SetOnDelivery(ctx context.Context, salesOrderID int64, onDelivery bool) error {
	if t.st.failOn == "overlay" {
		return errors.New("sales_orders unavailable")
	}
	t.onDelivery[salesOrderID] = onDelivery
	return nil
}

func (t *memoryTx) LockNumbering(ctx context.Context) error { return nil }

func (t *memoryTx) NumbersForYear(ctx context.Context, scheme numbering.Scheme, year int) ([]string, error) {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	var out []string
	for _, d := range t.st.deliveries {
		if scheme.Parse(d.DeliveryNumber).Year == year {
			out = append(out, d.DeliveryNumber)
		}
	}
	return out, nil
}

func (t *memoryTx) ClaimIdempotencyKey(ctx context.Context, key string) error {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	if _, ok := t.st.keys[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	t.keys = append(t.keys, key)
	return nil
}

func (t *memoryTx) commit() {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	for _, d := range t.writes {
		d.Goods = lineitem.Clone(d.Goods)
		t.st.deliveries[d.ID] = d
	}
	for id, v := range t.onDelivery {
		so := t.st.orders[id]
		so.OnDelivery = v
		t.st.orders[id] = so
	}
	for _, k := range t.keys {
		t.st.keys[k] = struct{}{}
	}
}

type recordingNotifier struct {
	shared.NopNotifier
	mu        sync.Mutex
	committed []shared.DeliveryCommitted
}

func (n *recordingNotifier) DeliveryCommitted(ctx context.Context, evt shared.DeliveryCommitted) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.committed = append(n.committed, evt)
	return nil
}

var (
	staff   = shared.Actor{ID: 10, Role: shared.RoleStaff}
	manager = shared.Actor{ID: 20, Role: shared.RoleManager}
)

func seedSalesOrder(repo *memoryRepo, id int64, status salesorders.Status, goods ...lineitem.Line) {
	repo.st.orders[id] = salesorders.SalesOrder{ID: id, OrderNumber: "PO-1", QuotationID: 5, Goods: goods, Status: status}
}

func newTestService(repo *memoryRepo, notifier shared.Notifier) *Service {
	return NewService(repo, ServiceConfig{
		Company:  "RGI",
		Notifier: notifier,
		Clock:    func() time.Time { return time.Date(2024, time.April, 10, 9, 0, 0, 0, time.UTC) },
	})
}

func commitReq(lines ...LineInput) CommitRequest {
	return CommitRequest{DeliveryDate: "2024-04-12", ShipAddress: "Jl. Industri 7, Cikarang", Lines: lines}
}

func ship(goodID int64, qty string) LineInput {
	return LineInput{GoodID: lineitem.GoodID(goodID), Qty: lineitem.Present(dec(qty))}
}

func TestCommitCreateEditScenario(t *testing.T) {
	repo := newMemoryRepo()
	seedSalesOrder(repo, 1, salesorders.StatusOngoing,
		lineitem.Line{GoodID: lineitem.GoodID(1), Name: "Steel pipe", Unit: "m", Qty: dec("50"), Price: dec("100")})
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, commitReq(ship(1, "20")), staff)
	require.NoError(t, err)
	require.Equal(t, "0001/RGI/DO/IV/2024", a.DeliveryNumber)
	require.Equal(t, "Steel pipe", a.Goods[0].Name)
	require.True(t, repo.st.orders[1].OnDelivery)

	remaining, err := svc.RemainingForNew(ctx, 1, staff)
	require.NoError(t, err)
	require.True(t, remaining[0].RemainingQty.Equal(dec("30")))

	b, err := svc.Create(ctx, 1, commitReq(ship(1, "25")), staff)
	require.NoError(t, err)
	require.Equal(t, "0002/RGI/DO/IV/2024", b.DeliveryNumber)

	view, err := svc.RemainingForEdit(ctx, a.ID, staff)
	require.NoError(t, err)
	require.True(t, view.Lines[0].MaxQty.Equal(dec("25")))
	require.True(t, view.Lines[0].CurrentQty.Equal(dec("20")))

	_, err = svc.Update(ctx, a.ID, commitReq(ship(1, "26")), staff)
	require.ErrorIs(t, err, ErrQtyExceedsRemaining)
	stored, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, stored.Goods[0].Qty.Equal(dec("20")))

	edited, err := svc.Update(ctx, a.ID, commitReq(ship(1, "25")), staff)
	require.NoError(t, err)
	require.Equal(t, a.DeliveryNumber, edited.DeliveryNumber)
	require.True(t, edited.Goods[0].Qty.Equal(dec("25")))
	require.False(t, repo.st.orders[1].OnDelivery)

	remaining, err = svc.RemainingForNew(ctx, 1, staff)
	require.NoError(t, err)
	require.Empty(t, remaining)

	require.Len(t, notifier.committed, 3)
	require.True(t, notifier.committed[2].FullyShipped)
	require.False(t, notifier.committed[2].Created)
}

func TestCommitRejectsLockedSalesOrder(t *testing.T) {
	for _, status := range []salesorders.Status{salesorders.StatusWaitingPayment, salesorders.StatusDone} {
		repo := newMemoryRepo()
		seedSalesOrder(repo, 1, status, byID(1, "5"))
		svc := newTestService(repo, nil)

		_, err := svc.Create(context.Background(), 1, commitReq(ship(1, "1")), manager)
		require.ErrorIs(t, err, ErrSalesOrderLocked)
		require.ErrorIs(t, err, shared.ErrStatusLocked)
		require.Empty(t, repo.st.deliveries)
	}
}

func TestCommitRequestValidation(t *testing.T) {
	repo := newMemoryRepo()
	seedSalesOrder(repo, 1, salesorders.StatusOngoing, byID(1, "5"))
	svc := newTestService(repo, nil)
	ctx := context.Background()

	req := commitReq(ship(1, "1"))
	req.DeliveryDate = ""
	_, err := svc.Create(ctx, 1, req, staff)
	require.ErrorIs(t, err, ErrDeliveryDateMissing)

	req.DeliveryDate = "12/04/2024"
	_, err = svc.Create(ctx, 1, req, staff)
	require.ErrorIs(t, err, ErrDeliveryDateInvalid)

	req = commitReq(ship(1, "1"))
	req.ShipAddress = "  "
	_, err = svc.Create(ctx, 1, req, staff)
	require.ErrorIs(t, err, ErrShipAddressMissing)

	_, err = svc.Create(ctx, 1, commitReq(LineInput{Name: "Hinge", Qty: lineitem.Present(dec("1"))}), staff)
	require.ErrorIs(t, err, ErrLineNotOnOrder)

	_, err = svc.Create(ctx, 1, commitReq(LineInput{GoodID: lineitem.GoodID(1)}), staff)
	require.ErrorIs(t, err, ErrEmptyDelivery)

	_, err = svc.Create(ctx, 99, commitReq(ship(1, "1")), staff)
	require.ErrorIs(t, err, salesorders.ErrNotFound)

	_, err = svc.Create(ctx, 1, commitReq(ship(1, "1")), shared.Actor{})
	require.ErrorIs(t, err, shared.ErrUnauthenticated)

	require.Empty(t, repo.st.deliveries)
}

func TestCommitFailureLeavesNothingWritten(t *testing.T) {
	repo := newMemoryRepo()
	seedSalesOrder(repo, 1, salesorders.StatusOngoing, byID(1, "5"))
	repo.st.failOn = "overlay"
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), 1, commitReq(ship(1, "2")), staff)
	require.Error(t, err)
	require.Empty(t, repo.st.deliveries)
	require.False(t, repo.st.orders[1].OnDelivery)
}

func TestCommitIdempotencyKey(t *testing.T) {
	repo := newMemoryRepo()
	seedSalesOrder(repo, 1, salesorders.StatusOngoing, byID(1, "5"))
	svc := newTestService(repo, nil)
	ctx := context.Background()

	req := commitReq(ship(1, "1"))
	req.IdempotencyKey = "3f6c1a4e-retry"
	_, err := svc.Create(ctx, 1, req, staff)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, req, staff)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	require.Len(t, repo.st.deliveries, 1)
}

func TestUpdateRejectsDeliveryOfAnotherOrder(t *testing.T) {
	repo := newMemoryRepo()
	seedSalesOrder(repo, 1, salesorders.StatusOngoing, byID(1, "5"))
	seedSalesOrder(repo, 2, salesorders.StatusOngoing, byID(1, "5"))
	svc := newTestService(repo, nil)
	ctx := context.Background()

	d, err := svc.Create(ctx, 1, commitReq(ship(1, "2")), staff)
	require.NoError(t, err)

	_, err = svc.Commit(ctx, 2, commitReq(ship(1, "1")), staff, &d.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentCommitsNeverOverShip(t *testing.T) {
	repo := newMemoryRepo()
	seedSalesOrder(repo, 1, salesorders.StatusOngoing, byID(1, "10"))
	svc := newTestService(repo, nil)

	const workers = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), 1, commitReq(ship(1, "3")), staff)
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrQtyExceedsRemaining) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 3, success)
	shipped := BuildShippedMap(repo.st.list(1), nil)
	require.True(t, shipped.Of("id:1").Equal(dec("9")))
	require.True(t, repo.st.orders[1].OnDelivery)
}
