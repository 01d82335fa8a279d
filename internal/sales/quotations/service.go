package quotations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fulfillment-ledger/internal/catalog"
	"github.com/odyssey-erp/fulfillment-ledger/internal/lineitem"
	"github.com/odyssey-erp/fulfillment-ledger/internal/numbering"
	"github.com/odyssey-erp/fulfillment-ledger/internal/observability"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// ApprovalModule tags quotation rows in the approvals table.
const ApprovalModule = "quotation"

// ServiceConfig carries tunables and optional collaborators.
type ServiceConfig struct {
	TaxRate  decimal.Decimal
	Company  string
	Notifier shared.Notifier
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Service implements the negotiation engine.
type Service struct {
	repo     Repository
	goods    catalog.Reader
	scheme   numbering.Scheme
	taxRate  decimal.Decimal
	notifier shared.Notifier
	metrics  *observability.Metrics
	logger   *slog.Logger
	clock    func() time.Time
	validate *validator.Validate
}

// NewService constructs the service.
func NewService(repo Repository, goods catalog.Reader, cfg ServiceConfig) *Service {
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
		goods:    goods,
		scheme:   numbering.QuotationScheme(cfg.Company),
		taxRate:  cfg.TaxRate,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		clock:    cfg.Clock,
		validate: newValidator(),
	}
}

// Get returns one quotation.
func (s *Service) Get(ctx context.Context, id int64, actor shared.Actor) (*Quotation, error) {
	if err := shared.Authorize(actor, shared.ActionQuotationView, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// List returns a page of quotations.
func (s *Service) List(ctx context.Context, filter ListFilter, actor shared.Actor) ([]Quotation, int, error) {
	if err := shared.Authorize(actor, shared.ActionQuotationView, shared.Resource{}).Err(); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

// Create submits a new quotation in status waiting.
func (s *Service) Create(ctx context.Context, req CreateRequest, actor shared.Actor) (*Quotation, error) {
	if err := shared.Authorize(actor, shared.ActionQuotationCreate, shared.Resource{}).Err(); err != nil {
		return nil, err
	}
	if err := translate(s.validate.Struct(req)); err != nil {
		return nil, err
	}
	lines, err := s.acceptGoods(ctx, req.Goods)
	if err != nil {
		return nil, err
	}

	q := Quotation{
		RFQRef:      strings.TrimSpace(req.RFQRef),
		IncludeTax:  req.IncludeTax,
		TaxRate:     s.taxRate,
		Goods:       lines,
		Status:      StatusWaiting,
		PerformedBy: actor.ID,
	}
	applyContact(&q, req.Contact)
	q.ApplyTotals(ComputeTotals(lineitem.Sum(lines), q.TaxRate, q.IncludeTax))

	now := s.clock()
	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.LockNumbering(ctx); err != nil {
			return err
		}
		existing, err := repo.NumbersForYear(ctx, s.scheme, now.Year())
		if err != nil {
			return fmt.Errorf("load quotation numbers: %w", err)
		}
		q.Number = s.scheme.Next(existing, now)
		id, err = repo.Create(ctx, q)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves a quotation along the negotiation state machine.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req StatusRequest, actor shared.Actor) (*Quotation, error) {
	to, ok := ParseStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, req.Status)
	}
	to = to.Canonical()
	if err := shared.Authorize(actor, shared.ActionQuotationTransition, shared.Resource{}).Err(); err != nil {
		return nil, err
	}

	var evt shared.QuotationStatusChanged
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(q.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, q.Status, to)
		}
		round := q.NegotiationRound
		if to == StatusNegotiation {
			round++
		}
		if err := repo.UpdateStatus(ctx, id, to, round); err != nil {
			return fmt.Errorf("update quotation status: %w", err)
		}
		if err := repo.RecordTransition(ctx, shared.ApprovalLog{
			Module:     ApprovalModule,
			RefID:      id,
			ActorID:    actor.ID,
			FromStatus: string(q.Status),
			ToStatus:   string(to),
			Note:       strings.TrimSpace(req.Note),
		}); err != nil {
			return fmt.Errorf("record transition: %w", err)
		}
		evt = shared.QuotationStatusChanged{
			QuotationID: id,
			Number:      q.Number,
			From:        string(q.Status),
			To:          string(to),
			Round:       round,
			ActorID:     actor.ID,
			At:          s.clock(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.QuotationTransition(string(to))
	if err := s.notifier.QuotationStatusChanged(ctx, evt); err != nil {
		s.logger.Warn("notify quotation status", slog.Int64("quotation_id", id), slog.Any("error", err))
	}
	return s.repo.Get(ctx, id)
}

// Edit updates fields of a quotation that is still under negotiation.
func (s *Service) Edit(ctx context.Context, id int64, req EditRequest, actor shared.Actor) (*Quotation, error) {
	if !actor.Valid() {
		return nil, shared.ErrUnauthenticated
	}
	if req.Contact != nil {
		if err := translate(s.validate.Struct(*req.Contact)); err != nil {
			return nil, err
		}
	}
	var lines []lineitem.Line
	if req.Goods != nil {
		var err error
		if lines, err = s.acceptGoods(ctx, *req.Goods); err != nil {
			return nil, err
		}
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		decision := shared.Authorize(actor, shared.ActionQuotationEdit, shared.Resource{
			OwnerID: q.PerformedBy,
			Locked:  q.Status.Terminal(),
		})
		if !decision.Allowed {
			return fmt.Errorf("%w: quotation %s is %s", decision.Err(), q.Number, q.Status)
		}

		if req.RFQRef != nil {
			q.RFQRef = strings.TrimSpace(*req.RFQRef)
		}
		if req.Contact != nil {
			applyContact(q, *req.Contact)
		}
		if req.IncludeTax != nil {
			q.IncludeTax = *req.IncludeTax
		}
		if req.Goods != nil {
			q.Goods = lines
		}
		if req.Goods != nil || req.IncludeTax != nil {
			q.ApplyTotals(ComputeTotals(lineitem.Sum(q.Goods), q.TaxRate, q.IncludeTax))
		}
		if err := repo.Update(ctx, *q); err != nil {
			return fmt.Errorf("update quotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) acceptGoods(ctx context.Context, inputs []LineInput) ([]lineitem.Line, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyGoods
	}
	goods, err := s.goods.Goods(ctx, goodIDs(inputs))
	if err != nil {
		return nil, fmt.Errorf("load catalog goods: %w", err)
	}
	return ValidateGoods(inputs, goods)
}

func applyContact(q *Quotation, c ContactInput) {
	q.CompanyName = strings.TrimSpace(c.CompanyName)
	q.CompanyAddress = strings.TrimSpace(c.CompanyAddress)
	q.PICName = strings.TrimSpace(c.PICName)
	q.PICPhone = strings.TrimSpace(c.PICPhone)
	q.PICEmail = strings.TrimSpace(c.PICEmail)
}
