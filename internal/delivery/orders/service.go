package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/fulfillment-ledger/internal/numbering"
	"github.com/odyssey-erp/fulfillment-ledger/internal/observability"
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
	salesorders "github.com/odyssey-erp/fulfillment-ledger/internal/sales/orders"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// ServiceConfig carries tunables and optional collaborators.
type ServiceConfig struct {
	Company  string
	Notifier shared.Notifier
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Service provides the fulfillment ledger operations.
type Service struct {
	repo     Repository
	scheme   numbering.Scheme
	notifier shared.Notifier
	metrics  *observability.Metrics
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService constructs a delivery service.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	if cfg.Company == "" {
		cfg.Company = "RGI"
	}
	if cfg.Notifier == nil {
		cfg.Notifier = shared.NopNotifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		repo:     repo,
		scheme:   numbering.DeliveryScheme(cfg.Company),
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		clock:    cfg.Clock,
	}
}

// Get returns one delivery order.
func (s *Service) Get(ctx context.Context, id int64, actor shared.Actor) (*DeliveryOrder, error) {
	if err := shared.Authorize(actor, shared.ActionDeliveryView, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// ListBySalesOrder returns the deliveries of a sales order.
func (s *Service) ListBySalesOrder(ctx context.Context, salesOrderID int64, actor shared.Actor) ([]DeliveryOrder, error) {
	if err := shared.Authorize(actor, shared.ActionDeliveryView, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	if _, err := s.repo.SalesOrder(ctx, salesOrderID); err != nil {
		return nil, err
	}
	return s.repo.ListBySalesOrder(ctx, salesOrderID)
}

// RemainingForNew lists what can still be shipped on a new delivery.
func (s *Service) RemainingForNew(ctx context.Context, salesOrderID int64, actor shared.Actor) ([]DeliverableLine, error) {
	if err := shared.Authorize(actor, shared.ActionDeliveryView, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	so, deliveries, err := s.repo.Snapshot(ctx, salesOrderID)
	if err != nil {
		return nil, err
	}
	return Deliverable(so.Goods, BuildShippedMap(deliveries, nil)), nil
}

// RemainingForEdit returns each ordered line's ceiling for an existing
// delivery: ordered − (shipped by all deliveries − shipped by this one).
func (s *Service) RemainingForEdit(ctx context.Context, deliveryID int64, actor shared.Actor) (*EditView, error) {
	if err := shared.Authorize(actor, shared.ActionDeliveryView, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	d, err := s.repo.Get(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	so, deliveries, err := s.repo.Snapshot(ctx, d.SalesOrderID)
	if err != nil {
		return nil, err
	}
	for _, other := range deliveries {
		if other.ID == d.ID {
			*d = other
		}
	}
	shipped := BuildShippedMap(deliveries, &d.ID)
	return &EditView{Delivery: *d, Lines: Editable(so.Goods, shipped, d.Goods)}, nil
}

// Create commits a new delivery against a sales order.
func (s *Service) Create(ctx context.Context, salesOrderID int64, req CommitRequest, actor shared.Actor) (*DeliveryOrder, error) {
	return s.Commit(ctx, salesOrderID, req, actor, nil)
}

// Update commits an edit of an existing delivery.
func (s *Service) Update(ctx context.Context, deliveryID int64, req CommitRequest, actor shared.Actor) (*DeliveryOrder, error) {
	d, err := s.repo.Get(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, d.SalesOrderID, req, actor, &deliveryID)
}

// Commit validates and writes a delivery under the sales order lock. With
// excludeID set it rewrites that delivery, and that delivery's current lines
// do not count against what remains.
func (s *Service) Commit(ctx context.Context, salesOrderID int64, req CommitRequest, actor shared.Actor, excludeID *int64) (*DeliveryOrder, error) {
	if err := shared.Authorize(actor, shared.ActionDeliveryCommit, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	date, err := req.validate()
	if err != nil {
		s.metrics.DeliveryCommit("rejected")
		return nil, err
	}
	submitted := req.lines()

	var (
		saved   DeliveryOrder
		created = excludeID == nil
		fully   bool
	)
	err = s.repo.WithSalesOrderLock(ctx, salesOrderID, func(ctx context.Context, tx TxRepository, so *salesorders.SalesOrder) error {
		decision := shared.Authorize(actor, shared.ActionDeliveryCommit, shared.Resource{Locked: so.Status.Locked()})
		if !decision.Allowed {
			return fmt.Errorf("%w: %w: sales order %s is %s", ErrSalesOrderLocked, decision.Err(), so.OrderNumber, so.Status)
		}

		if !created {
			existing, err := tx.Get(ctx, *excludeID)
			if err != nil {
				return err
			}
			if existing.SalesOrderID != so.ID {
				return fmt.Errorf("%w: delivery %d is not on sales order %d", ErrNotFound, *excludeID, so.ID)
			}
			saved = *existing
		}

		deliveries, err := tx.ListBySalesOrder(ctx, so.ID)
		if err != nil {
			return fmt.Errorf("load deliveries: %w", err)
		}
		shipped := BuildShippedMap(deliveries, excludeID)
		lines, err := ValidateCommit(so.Goods, shipped, submitted)
		if err != nil {
			return err
		}

		saved.SalesOrderID = so.ID
		saved.DeliveryDate = date
		saved.ShipAddress = strings.TrimSpace(req.ShipAddress)
		saved.Goods = lines

		if created {
			if req.IdempotencyKey != "" {
				if err := tx.ClaimIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
					return err
				}
			}
			if err := s.assignNumber(ctx, tx, &saved); err != nil {
				return err
			}
			saved.CreatedBy = actor.ID
			if saved.ID, err = tx.Create(ctx, saved); err != nil {
				return fmt.Errorf("create delivery order: %w", err)
			}
		} else if err := tx.Update(ctx, saved); err != nil {
			return fmt.Errorf("update delivery order: %w", err)
		}

		fully = FullyShipped(so.Goods, shipped.Add(lines))
		if err := tx.SetOnDelivery(ctx, so.ID, !fully); err != nil {
			return fmt.Errorf("set on-delivery: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.DeliveryCommit(commitResult(err))
		return nil, err
	}
	s.metrics.DeliveryCommit("ok")

	evt := shared.DeliveryCommitted{
		DeliveryID:     saved.ID,
		SalesOrderID:   salesOrderID,
		DeliveryNumber: saved.DeliveryNumber,
		Created:        created,
		FullyShipped:   fully,
		ActorID:        actor.ID,
		At:             s.clock(),
	}
	if err := s.notifier.DeliveryCommitted(ctx, evt); err != nil {
		s.logger.Warn("notify delivery committed", slog.Int64("delivery_id", saved.ID), slog.Any("error", err))
	}
	return s.repo.Get(ctx, saved.ID)
}

func (s *Service) assignNumber(ctx context.Context, tx TxRepository, d *DeliveryOrder) error {
	if err := tx.LockNumbering(ctx); err != nil {
		return err
	}
	now := s.clock()
	existing, err := tx.NumbersForYear(ctx, s.scheme, now.Year())
	if err != nil {
		return fmt.Errorf("load delivery numbers: %w", err)
	}
	d.DeliveryNumber = s.scheme.Next(existing, now)
	return nil
}

func commitResult(err error) string {
	switch {
	case errors.Is(err, ErrSalesOrderLocked):
		return "locked"
	case httpx.IsClientError(err):
		return "rejected"
	default:
		return "error"
	}
}
