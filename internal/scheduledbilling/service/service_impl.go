package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/clock"
	jobstatedomain "github.com/smallbiznis/billcollect/internal/jobstate/domain"
	"github.com/smallbiznis/billcollect/internal/proration"
	"github.com/smallbiznis/billcollect/internal/scheduledbilling/calculator"
	"github.com/smallbiznis/billcollect/internal/scheduledbilling/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// FamilyScheduledBilling tags records produced by the recurring billing runner
// in history and fallout rows.
const FamilyScheduledBilling = "scheduled-billing"

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Store jobstatedomain.Store
	Sink  billingdomain.RecordSink
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	store jobstatedomain.Store
	sink  billingdomain.RecordSink
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("scheduledbilling.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		store: p.Store,
		sink:  p.Sink,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.ScheduledBilling, error) {
	externalID := strings.TrimSpace(req.ExternalID)
	if externalID == "" {
		return nil, domain.ErrInvalidExternalID
	}
	if err := validateRule(req.InvoicingDate, req.InvoicingMonths); err != nil {
		return nil, err
	}
	intervalType := strings.TrimSpace(req.IntervalType)
	if _, err := proration.Lookup(&intervalType); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	next, err := calculator.NextInvoiceDate([]int{req.InvoicingDate}, req.InvoicingMonths, now)
	if err != nil {
		return nil, err
	}

	billing := &domain.ScheduledBilling{
		ID:                   s.genID.Generate(),
		ExternalID:           externalID,
		Source:               strings.TrimSpace(req.Source),
		MunicipalityID:       strings.TrimSpace(req.MunicipalityID),
		LegalID:              strings.TrimSpace(req.LegalID),
		InvoicingDate:        req.InvoicingDate,
		InvoicingMonths:      datatypes.JSONSlice[int](req.InvoicingMonths),
		AnnualAmount:         req.AnnualAmount,
		IntervalType:         intervalType,
		NextScheduledBilling: next,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Create(ctx, billing); err != nil {
		return nil, err
	}
	return billing, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.ScheduledBilling, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	billing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if billing == nil {
		return nil, domain.ErrNotFound
	}

	ruleChanged := false
	if req.InvoicingDate != nil {
		billing.InvoicingDate = *req.InvoicingDate
		ruleChanged = true
	}
	if req.InvoicingMonths != nil {
		billing.InvoicingMonths = datatypes.JSONSlice[int](req.InvoicingMonths)
		ruleChanged = true
	}
	if err := validateRule(billing.InvoicingDate, billing.InvoicingMonths); err != nil {
		return nil, err
	}
	if req.AnnualAmount != nil {
		billing.AnnualAmount = *req.AnnualAmount
	}
	if req.IntervalType != nil {
		intervalType := strings.TrimSpace(*req.IntervalType)
		if _, err := proration.Lookup(&intervalType); err != nil {
			return nil, err
		}
		billing.IntervalType = intervalType
	}

	now := s.clock.Now()
	if ruleChanged {
		next, err := calculator.NextInvoiceDate([]int{billing.InvoicingDate}, billing.InvoicingMonths, now)
		if err != nil {
			return nil, err
		}
		billing.NextScheduledBilling = next
	}

	billing.UpdatedAt = now
	if err := s.repo.Update(ctx, billing); err != nil {
		return nil, err
	}
	return billing, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ScheduledBilling, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	billing, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if billing == nil {
		return nil, domain.ErrNotFound
	}
	return billing, nil
}

func (s *Service) List(ctx context.Context) ([]domain.ScheduledBilling, error) {
	return s.repo.List(ctx)
}

func (s *Service) RunDue(ctx context.Context, today time.Time) error {
	due, err := s.repo.ListDue(ctx, today)
	if err != nil {
		return err
	}

	var runErr error
	for _, billing := range due {
		if err := s.billOccurrence(ctx, billing); err != nil {
			runErr = errors.Join(runErr, err)
			s.log.Warn("scheduled billing occurrence failed",
				zap.String("external_id", billing.ExternalID),
				zap.Error(err),
			)
		}
	}
	return runErr
}

func (s *Service) billOccurrence(ctx context.Context, billing domain.ScheduledBilling) error {
	interval, err := proration.Lookup(&billing.IntervalType)
	if err != nil {
		return fmt.Errorf("interval for %s: %w", billing.ExternalID, err)
	}

	amount := interval.PerOccurrenceAmount(decimal.NewFromFloat(billing.AnnualAmount))
	occurrence := billing.NextScheduledBilling
	requestID := uuid.NewString()

	record := &billingdomain.CanonicalBillingRecord{
		SourceReference: fmt.Sprintf("%s:%s", billing.ExternalID, occurrence.Format("2006-01-02")),

		Category:    billing.Source,
		Type:        billingdomain.RecordTypeExternal,
		Status:      billingdomain.RecordStatusApproved,
		Description: fmt.Sprintf("Recurring billing %s", billing.ExternalID),
		Recipient: billingdomain.Recipient{
			LegalID: billing.LegalID,
		},
		Rows: []billingdomain.InvoiceRow{{
			Description: fmt.Sprintf("%s occurrence %s", billing.IntervalType, occurrence.Format("2006-01-02")),
			Quantity:    1,
			CostPerUnit: amount.InexactFloat64(),
			TotalAmount: amount.InexactFloat64(),
			AccountInformation: billingdomain.AccountInformation{
				AccrualKey: interval.AccrualKey,
			},
		}},
		Date: occurrence,
	}

	if err := s.sink.Submit(ctx, record); err != nil {
		if falloutErr := s.store.RecordFallout(ctx, &jobstatedomain.Fallout{
			FamilyID:       FamilyScheduledBilling,
			FlowInstanceID: billing.ExternalID,
			MunicipalityID: billing.MunicipalityID,
			RequestID:      requestID,
			Detail:         err.Error(),
		}); falloutErr != nil {
			s.log.Error("failed to record fallout", zap.Error(falloutErr))
		}
		return fmt.Errorf("%w: %v", billingdomain.ErrSinkRejected, err)
	}

	if err := s.store.RecordHistory(ctx, &jobstatedomain.History{
		FamilyID:       FamilyScheduledBilling,
		FlowInstanceID: billing.ExternalID,
		MunicipalityID: billing.MunicipalityID,
		RequestID:      requestID,
	}); err != nil {
		s.log.Error("failed to record history", zap.Error(err))
	}

	billed := occurrence
	billing.LastBilled = &billed
	next, err := calculator.NextInvoiceDate(
		[]int{billing.InvoicingDate},
		billing.InvoicingMonths,
		occurrence.AddDate(0, 0, 1),
	)
	if err != nil {
		return err
	}
	billing.NextScheduledBilling = next
	billing.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, &billing)
}

func validateRule(invoicingDate int, months []int) error {
	if invoicingDate < 1 || invoicingDate > 31 {
		return domain.ErrInvalidInvoiceDate
	}
	if len(months) == 0 {
		return domain.ErrInvalidInvoiceMonth
	}
	for _, m := range months {
		if m < 1 || m > 12 {
			return domain.ErrInvalidInvoiceMonth
		}
	}
	return nil
}
