package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
	"github.com/odyssey-erp/fulfillment-ledger/internal/observability"
	"github.com/odyssey-erp/fulfillment-ledger/internal/sales/quotations"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// ApprovalModule tags sales order rows in the approvals table.
const ApprovalModule = "sales_order"

// ServiceConfig carries optional collaborators.
type ServiceConfig struct {
	Notifier shared.Notifier
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Service materializes and maintains sales orders.
type Service struct {
	repo     Repository
	notifier shared.Notifier
	metrics  *observability.Metrics
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService constructs the service.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	if cfg.Notifier == nil {
		cfg.Notifier = shared.NopNotifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{repo: repo, notifier: cfg.Notifier, metrics: cfg.Metrics, logger: cfg.Logger, clock: cfg.Clock}
}

// Get returns one sales order.
func (s *Service) Get(ctx context.Context, id int64, actor shared.Actor) (*SalesOrder, error) {
	if err := shared.Authorize(actor, shared.ActionSalesOrderView, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// List returns a page of sales orders.
func (s *Service) List(ctx context.Context, filter ListFilter, actor shared.Actor) ([]SalesOrder, int, error) {
	if err := shared.Authorize(actor, shared.ActionSalesOrderView, shared.Resource{}).Err(); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

// Materialize converts a quotation in status process into its one sales order.
func (s *Service) Materialize(ctx context.Context, quotationID int64, req MaterializeRequest, actor shared.Actor) (*SalesOrder, error) {
	if err := shared.Authorize(actor, shared.ActionSalesOrderMaterialize, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.OrderNumber) == "" {
		return nil, ErrOrderNumberMissing
	}
	var edited []lineitem.Line
	if req.Goods != nil {
		var err error
		if edited, err = acceptEditedGoods(*req.Goods); err != nil {
			return nil, err
		}
	}

	var so SalesOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.Quotations().GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if q.Status != quotations.StatusProcess {
			return fmt.Errorf("%w: quotation %s is %s", ErrQuotationNotProcess, q.Number, q.Status)
		}
		exists, err := repo.ExistsForQuotation(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("check existing sales order: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: quotation %s", ErrDuplicateMaterialization, q.Number)
		}
		so, err = FromQuotation(*q, req.OrderNumber, edited, req.Deadlines)
		if err != nil {
			return err
		}
		so.CreatedBy = actor.ID
		if so.ID, err = repo.Create(ctx, so); err != nil {
			return fmt.Errorf("create sales order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SalesOrderMaterialized()
	evt := shared.SalesOrderMaterialized{
		SalesOrderID: so.ID,
		QuotationID:  quotationID,
		OrderNumber:  so.OrderNumber,
		ActorID:      actor.ID,
		At:           s.clock(),
	}
	if err := s.notifier.SalesOrderMaterialized(ctx, evt); err != nil {
		s.logger.Warn("notify sales order materialized", slog.Int64("sales_order_id", so.ID), slog.Any("error", err))
	}
	return s.repo.Get(ctx, so.ID)
}

// Edit changes the order number and deadlines. Line items stay as
// materialized.
func (s *Service) Edit(ctx context.Context, id int64, req EditRequest, actor shared.Actor) (*SalesOrder, error) {
	if !actor.Valid() {
		return nil, shared.ErrUnauthenticated
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		so, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		decision := shared.Authorize(actor, shared.ActionSalesOrderEdit, shared.Resource{
			OwnerID: so.CreatedBy,
			Locked:  so.Status.Locked(),
		})
		if !decision.Allowed {
			return fmt.Errorf("%w: sales order %s is %s", decision.Err(), so.OrderNumber, so.Status)
		}
		if req.OrderNumber != nil {
			number := strings.TrimSpace(*req.OrderNumber)
			if number == "" {
				return ErrOrderNumberMissing
			}
			so.OrderNumber = number
		}
		if req.Deadlines != nil {
			if err := applyDeadlines(so.Goods, req.Deadlines); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, *so); err != nil {
			return fmt.Errorf("update sales order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus advances a sales order one step. Reaching done closes the
// backing quotation as success in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req StatusRequest, actor shared.Actor) (*SalesOrder, error) {
	to, ok := ParseStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, req.Status)
	}
	if err := shared.Authorize(actor, shared.ActionSalesOrderTransition, shared.Resource{
		RequiresPrivilege: to.RequiresPrivilege(),
	}).Err(); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		so, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !CanAdvance(so.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, so.Status, to)
		}
		if err := repo.UpdateStatus(ctx, id, to); err != nil {
			return fmt.Errorf("update sales order status: %w", err)
		}
		if err := repo.RecordTransition(ctx, shared.ApprovalLog{
			Module:     ApprovalModule,
			RefID:      id,
			ActorID:    actor.ID,
			FromStatus: string(so.Status),
			ToStatus:   string(to),
			Note:       strings.TrimSpace(req.Note),
		}); err != nil {
			return fmt.Errorf("record transition: %w", err)
		}
		if to == StatusDone {
			return closeQuotation(ctx, repo.Quotations(), so.QuotationID, actor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func closeQuotation(ctx context.Context, quotes quotations.Repository, quotationID int64, actor shared.Actor) error {
	q, err := quotes.GetForUpdate(ctx, quotationID)
	if err != nil {
		return fmt.Errorf("load quotation %d: %w", quotationID, err)
	}
	if !quotations.CanTransition(q.Status, quotations.StatusSuccess) {
		return nil
	}
	if err := quotes.UpdateStatus(ctx, q.ID, quotations.StatusSuccess, q.NegotiationRound); err != nil {
		return fmt.Errorf("close quotation: %w", err)
	}
	return quotes.RecordTransition(ctx, shared.ApprovalLog{
		Module:     quotations.ApprovalModule,
		RefID:      q.ID,
		ActorID:    actor.ID,
		FromStatus: string(q.Status),
		ToStatus:   string(quotations.StatusSuccess),
		Note:       "sales order done",
	})
}
