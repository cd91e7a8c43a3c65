package domain

import (
	"context"
	"errors"
	"time"
)

// Service is the collector entry surface. Trigger and TriggerBetweenDates have
// asynchronous acceptance semantics: validation failures surface synchronously,
// processing outcomes are recorded as history/fallout rows.
type Service interface {
	Trigger(ctx context.Context, flowInstanceID string) error
	TriggerBetweenDates(ctx context.Context, from, to time.Time, familyIDs []string) error
	CollectBetween(ctx context.Context, from, to time.Time, familyIDs []string) ([]string, error)
}

// Consumed collaborators. Production bindings live in internal/upstream.

// SourceCollector produces billing-eligible events for one source family over a
// date window. One pass per call, finite.
type SourceCollector interface {
	Fetch(ctx context.Context, familyID string, from, to time.Time) ([]RawEvent, error)
	FetchOne(ctx context.Context, flowInstanceID string) (*RawEvent, error)
}

// IdentityResolver maps a legal id to a stable party id.
type IdentityResolver interface {
	Resolve(ctx context.Context, legalID string) (string, error)
}

// ContractLookup resolves a billing contract for a municipality.
type ContractLookup interface {
	Get(ctx context.Context, municipalityID, contractID string) (*Contract, error)
}

// RecordSink forwards a canonical record downstream. Idempotency keyed by
// flowInstanceId is the sink's responsibility.
type RecordSink interface {
	Submit(ctx context.Context, record *CanonicalBillingRecord) error
}

var (
	ErrUnsupportedSource     = errors.New("unsupported_source")
	ErrPartyNotFound         = errors.New("party_not_found")
	ErrContractNotFound      = errors.New("contract_not_found")
	ErrEventNotFound         = errors.New("event_not_found")
	ErrInvalidDateRange      = errors.New("invalid_date_range")
	ErrInvalidFlowInstanceID = errors.New("invalid_flow_instance_id")
	ErrSinkRejected          = errors.New("sink_rejected")
)
