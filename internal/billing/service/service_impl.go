package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/billcollect/internal/billing/decorator"
	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/clock"
	jobstatedomain "github.com/smallbiznis/billcollect/internal/jobstate/domain"
	obsmetrics "github.com/smallbiznis/billcollect/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Registry *decorator.Registry
	Source   domain.SourceCollector
	Store    jobstatedomain.Store
	Sink     domain.RecordSink
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	registry *decorator.Registry
	source   domain.SourceCollector
	store    jobstatedomain.Store
	sink     domain.RecordSink
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("billing.service"),
		clock:    p.Clock,
		registry: p.Registry,
		source:   p.Source,
		store:    p.Store,
		sink:     p.Sink,
	}
}

// Trigger accepts immediately and processes the event asynchronously.
// Failures are recorded as fallouts, never propagated to the caller.
func (s *Service) Trigger(ctx context.Context, flowInstanceID string) error {
	flowInstanceID = strings.TrimSpace(flowInstanceID)
	if flowInstanceID == "" {
		return domain.ErrInvalidFlowInstanceID
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		event, err := s.source.FetchOne(bg, flowInstanceID)
		if err != nil || event == nil {
			if err == nil {
				err = domain.ErrEventNotFound
			}
			s.recordFallout(bg, domain.RawEvent{FlowInstanceID: flowInstanceID}, err)
			return
		}
		if err := s.process(bg, *event); err != nil {
			s.log.Warn("ad hoc trigger failed",
				zap.String("flow_instance_id", flowInstanceID),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// TriggerBetweenDates validates synchronously, collects asynchronously.
func (s *Service) TriggerBetweenDates(ctx context.Context, from, to time.Time, familyIDs []string) error {
	if from.After(to) {
		return domain.ErrInvalidDateRange
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		if _, err := s.CollectBetween(bg, from, to, familyIDs); err != nil {
			s.log.Warn("ad hoc collection failed", zap.Error(err))
		}
	}()
	return nil
}

// CollectBetween fetches and processes every event for the given families in
// the window, returning the flow instance ids that were forwarded. Families
// run independently; the processed/fallout partition stays complete because
// every attempted event ends in exactly one of the two outcomes.
func (s *Service) CollectBetween(ctx context.Context, from, to time.Time, familyIDs []string) ([]string, error) {
	if from.After(to) {
		return nil, domain.ErrInvalidDateRange
	}
	if len(familyIDs) == 0 {
		familyIDs = s.registry.FamilyIDs()
	}

	var (
		mu        sync.Mutex
		processed []string
		collected error
		wg        sync.WaitGroup
	)

	for _, familyID := range familyIDs {
		wg.Add(1)
		go func(familyID string) {
			defer wg.Done()
			ids, err := s.collectFamily(ctx, familyID, from, to)
			mu.Lock()
			defer mu.Unlock()
			processed = append(processed, ids...)
			if err != nil {
				collected = errors.Join(collected, err)
			}
		}(familyID)
	}
	wg.Wait()

	return processed, collected
}

func (s *Service) collectFamily(ctx context.Context, familyID string, from, to time.Time) ([]string, error) {
	events, err := s.source.Fetch(ctx, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch family %s: %w", familyID, err)
	}

	ids := make([]string, 0, len(events))
	for _, event := range events {
		if err := s.process(ctx, event); err != nil {
			continue
		}
		ids = append(ids, event.FlowInstanceID)
	}
	return ids, nil
}

// process runs one event through normalize → dispatch → decorate → forward.
// Any failure is recorded as a fallout and returned; the caller decides
// whether to continue with the remaining events.
func (s *Service) process(ctx context.Context, event domain.RawEvent) error {
	wrapper := s.buildWrapper(event)

	d, err := s.registry.Resolve(wrapper.FamilyID)
	if err != nil {
		s.recordFallout(ctx, event, err)
		return err
	}

	if err := d.Decorate(ctx, wrapper); err != nil {
		s.recordFallout(ctx, event, err)
		return err
	}

	if err := s.sink.Submit(ctx, wrapper.Record); err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrSinkRejected, err)
		s.recordFallout(ctx, event, err)
		return err
	}

	obsmetrics.Collector().IncProcessed(event.FamilyID)
	if err := s.store.RecordHistory(ctx, &jobstatedomain.History{
		FamilyID:       event.FamilyID,
		FlowInstanceID: event.FlowInstanceID,
		MunicipalityID: event.MunicipalityID,
		RequestID:      uuid.NewString(),
	}); err != nil {
		s.log.Error("failed to record history",
			zap.String("flow_instance_id", event.FlowInstanceID),
			zap.Error(err),
		)
	}
	return nil
}

func (s *Service) recordFallout(ctx context.Context, event domain.RawEvent, cause error) {
	obsmetrics.Collector().IncFallout(event.FamilyID)
	fallout := &jobstatedomain.Fallout{
		FamilyID:       event.FamilyID,
		FlowInstanceID: event.FlowInstanceID,
		MunicipalityID: event.MunicipalityID,
		RequestID:      uuid.NewString(),
		Detail:         cause.Error(),
	}
	if err := s.store.RecordFallout(ctx, fallout); err != nil {
		s.log.Error("failed to record fallout",
			zap.String("flow_instance_id", event.FlowInstanceID),
			zap.Error(err),
		)
	}
	s.log.Warn("event fell out",
		zap.String("family_id", event.FamilyID),
		zap.String("flow_instance_id", event.FlowInstanceID),
		zap.Error(cause),
	)
}

// buildWrapper normalizes a raw event into the canonical record shape the
// sink accepts. Payload fields default conservatively: an unknown recipient
// type is treated as internal so no identity lookup happens by accident.
func (s *Service) buildWrapper(event domain.RawEvent) *domain.Wrapper {
	recordType := domain.RecordTypeInternal
	private := false
	if v, ok := event.Payload["recipientType"].(string); ok && strings.EqualFold(v, "PRIVATE") {
		recordType = domain.RecordTypeExternal
		private = true
	}

	record := &domain.CanonicalBillingRecord{
		SourceReference: event.FlowInstanceID,
		Category:        stringField(event.Payload, "category"),
		Type:            recordType,
		Status:          domain.RecordStatusNew,
		Recipient: domain.Recipient{
			LegalID:        event.LegalID,
			OrganizationID: stringField(event.Payload, "organizationId"),
		},
		Date: s.clock.Now(),
	}

	if rows, ok := event.Payload["rows"].([]any); ok {
		for _, raw := range rows {
			row, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			record.Rows = append(record.Rows, domain.InvoiceRow{
				Description: stringField(row, "description"),
				Quantity:    floatField(row, "quantity"),
				CostPerUnit: floatField(row, "costPerUnit"),
				TotalAmount: floatField(row, "totalAmount"),
			})
		}
	}

	return &domain.Wrapper{
		Record:                   record,
		FamilyID:                 event.FamilyID,
		FlowInstanceID:           event.FlowInstanceID,
		LegalID:                  event.LegalID,
		MunicipalityID:           event.MunicipalityID,
		IsRecipientPrivatePerson: private,
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
