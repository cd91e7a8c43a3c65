package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/billcollect/internal/billing/decorator"
	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/clock"
	jobstatedomain "github.com/smallbiznis/billcollect/internal/jobstate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type sourceStub struct {
	mu     sync.Mutex
	events map[string][]domain.RawEvent
	one    *domain.RawEvent
	err    error
}

func (s *sourceStub) Fetch(ctx context.Context, familyID string, from, to time.Time) ([]domain.RawEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.events[familyID], nil
}

func (s *sourceStub) FetchOne(ctx context.Context, flowInstanceID string) (*domain.RawEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.one, nil
}

type sinkStub struct {
	mu        sync.Mutex
	submitted []*domain.CanonicalBillingRecord
	failRefs  map[string]error
	done      chan struct{}
}

func (s *sinkStub) Submit(ctx context.Context, record *domain.CanonicalBillingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failRefs[record.SourceReference]; ok {
		return err
	}
	s.submitted = append(s.submitted, record)
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	return nil
}

func (s *sinkStub) references() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]string, 0, len(s.submitted))
	for _, r := range s.submitted {
		refs = append(refs, r.SourceReference)
	}
	return refs
}

type storeStub struct {
	mu        sync.Mutex
	fallouts  []jobstatedomain.Fallout
	histories []jobstatedomain.History
}

func (s *storeStub) Latest(ctx context.Context) (*jobstatedomain.ScheduledJob, error) {
	return nil, nil
}

func (s *storeStub) Save(ctx context.Context, from, to time.Time) (*jobstatedomain.ScheduledJob, error) {
	return &jobstatedomain.ScheduledJob{FromDate: from, ToDate: to}, nil
}

func (s *storeStub) RecordFallout(ctx context.Context, fallout *jobstatedomain.Fallout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallouts = append(s.fallouts, *fallout)
	return nil
}

func (s *storeStub) FalloutsFor(ctx context.Context, ids []string) ([]jobstatedomain.Fallout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]jobstatedomain.Fallout(nil), s.fallouts...), nil
}

func (s *storeStub) RecordHistory(ctx context.Context, entry *jobstatedomain.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories = append(s.histories, *entry)
	return nil
}

func (s *storeStub) HistoryFor(ctx context.Context, ids []string) ([]jobstatedomain.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]jobstatedomain.History(nil), s.histories...), nil
}

type identityStub struct{ partyID string }

func (s identityStub) Resolve(ctx context.Context, legalID string) (string, error) {
	if s.partyID == "" {
		return "", domain.ErrPartyNotFound
	}
	return s.partyID, nil
}

type contractStub struct{ contract *domain.Contract }

func (s contractStub) Get(ctx context.Context, municipalityID, contractID string) (*domain.Contract, error) {
	return s.contract, nil
}

func event(flowID, familyID string, payload datatypes.JSONMap) domain.RawEvent {
	return domain.RawEvent{
		FlowInstanceID: flowID,
		FamilyID:       familyID,
		LegalID:        "19800101-1234",
		MunicipalityID: "0180",
		Payload:        payload,
	}
}

func newTestService(t *testing.T, source *sourceStub, sink *sinkStub, store *storeStub, identity domain.IdentityResolver, contracts domain.ContractLookup) domain.Service {
	t.Helper()
	log := zap.NewNop()
	registry, err := decorator.NewRegistry(
		decorator.NewCustomerInvoiceDecorator(log, identity),
		decorator.NewInternalInvoiceDecorator(log, contracts),
	)
	require.NoError(t, err)

	return New(Params{
		Log:      log,
		Clock:    clock.NewSystemClock(),
		Registry: registry,
		Source:   source,
		Store:    store,
		Sink:     sink,
	})
}

func TestCollectBetween_ForwardsAndRecordsHistory(t *testing.T) {
	source := &sourceStub{events: map[string][]domain.RawEvent{
		decorator.FamilyCustomerInvoice: {
			event("flow-1", decorator.FamilyCustomerInvoice, datatypes.JSONMap{
				"category":      "elderly-care",
				"recipientType": "PRIVATE",
			}),
		},
	}}
	sink := &sinkStub{}
	store := &storeStub{}
	svc := newTestService(t, source, sink, store, identityStub{partyID: "party-9"}, contractStub{})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	processed, err := svc.CollectBetween(context.Background(), from, from.AddDate(0, 0, 1),
		[]string{decorator.FamilyCustomerInvoice})
	require.NoError(t, err)

	assert.Equal(t, []string{"flow-1"}, processed)
	require.Len(t, sink.submitted, 1)
	assert.Equal(t, "party-9", sink.submitted[0].Recipient.PartyID)
	assert.Equal(t, domain.RecordTypeExternal, sink.submitted[0].Type)
	require.Len(t, store.histories, 1)
	assert.Equal(t, "flow-1", store.histories[0].FlowInstanceID)
	assert.Empty(t, store.fallouts)
}

func TestCollectBetween_FailedEventBecomesFallout(t *testing.T) {
	source := &sourceStub{events: map[string][]domain.RawEvent{
		decorator.FamilyCustomerInvoice: {
			event("flow-ok", decorator.FamilyCustomerInvoice, datatypes.JSONMap{"recipientType": "PRIVATE"}),
			event("flow-bad", decorator.FamilyCustomerInvoice, datatypes.JSONMap{"recipientType": "PRIVATE"}),
		},
	}}
	sink := &sinkStub{failRefs: map[string]error{"flow-bad": errors.New("boom")}}
	store := &storeStub{}
	svc := newTestService(t, source, sink, store, identityStub{partyID: "party-9"}, contractStub{})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	processed, err := svc.CollectBetween(context.Background(), from, from,
		[]string{decorator.FamilyCustomerInvoice})
	require.NoError(t, err)

	// Every attempted event ends up either processed or in fallouts.
	assert.Equal(t, []string{"flow-ok"}, processed)
	require.Len(t, store.fallouts, 1)
	assert.Equal(t, "flow-bad", store.fallouts[0].FlowInstanceID)
	assert.Contains(t, store.fallouts[0].Detail, "sink_rejected")
}

func TestCollectBetween_UnsupportedFamilyFallsOut(t *testing.T) {
	source := &sourceStub{events: map[string][]domain.RawEvent{
		"mystery-form": {event("flow-x", "mystery-form", datatypes.JSONMap{})},
	}}
	sink := &sinkStub{}
	store := &storeStub{}
	svc := newTestService(t, source, sink, store, identityStub{partyID: "p"}, contractStub{})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	processed, err := svc.CollectBetween(context.Background(), from, from, []string{"mystery-form"})
	require.NoError(t, err)

	assert.Empty(t, processed)
	require.Len(t, store.fallouts, 1)
	assert.Equal(t, "flow-x", store.fallouts[0].FlowInstanceID)
	assert.Empty(t, sink.submitted)
}

func TestCollectBetween_InvalidRange(t *testing.T) {
	svc := newTestService(t, &sourceStub{}, &sinkStub{}, &storeStub{}, identityStub{partyID: "p"}, contractStub{})

	to := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CollectBetween(context.Background(), to.AddDate(0, 0, 5), to, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestTriggerBetweenDates_InvalidRangeSynchronous(t *testing.T) {
	svc := newTestService(t, &sourceStub{}, &sinkStub{}, &storeStub{}, identityStub{partyID: "p"}, contractStub{})

	to := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := svc.TriggerBetweenDates(context.Background(), to.AddDate(0, 0, 1), to, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestTrigger_EmptyFlowInstanceID(t *testing.T) {
	svc := newTestService(t, &sourceStub{}, &sinkStub{}, &storeStub{}, identityStub{partyID: "p"}, contractStub{})

	err := svc.Trigger(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidFlowInstanceID)
}

func TestTrigger_ProcessesAsynchronously(t *testing.T) {
	evt := event("flow-7", decorator.FamilyCustomerInvoice, datatypes.JSONMap{"recipientType": "PRIVATE"})
	source := &sourceStub{one: &evt}
	sink := &sinkStub{done: make(chan struct{})}
	done := sink.done
	store := &storeStub{}
	svc := newTestService(t, source, sink, store, identityStub{partyID: "party-1"}, contractStub{})

	require.NoError(t, svc.Trigger(context.Background(), "flow-7"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not processed")
	}
	assert.Equal(t, []string{"flow-7"}, sink.references())
}
