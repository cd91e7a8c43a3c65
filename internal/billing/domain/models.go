package domain

import (
	"time"

	"gorm.io/datatypes"
)

// RecordType distinguishes invoicing toward private persons from
// municipality-to-municipality invoicing.
type RecordType string

const (
	RecordTypeExternal RecordType = "EXTERNAL"
	RecordTypeInternal RecordType = "INTERNAL"
)

// RecordStatus is the lifecycle status the sink expects on submission.
type RecordStatus string

const (
	RecordStatusNew      RecordStatus = "NEW"
	RecordStatusApproved RecordStatus = "APPROVED"
)

// RawEvent is a billing-eligible event as produced by a source collaborator.
// Transient: consumed exactly once by the pipeline, never persisted.
type RawEvent struct {
	FlowInstanceID string
	FamilyID       string
	LegalID        string
	MunicipalityID string
	Payload        datatypes.JSONMap
}

// AccountInformation is the accounting coordinates consumed by the external
// accounting system.
type AccountInformation struct {
	CostCenter     string `json:"costCenter,omitempty"`
	Subaccount     string `json:"subaccount,omitempty"`
	Department     string `json:"department,omitempty"`
	Activity       string `json:"activity,omitempty"`
	AccrualKey     string `json:"accrualKey,omitempty"`
	CounterpartyID string `json:"counterpart,omitempty"`
}

// InvoiceRow is one line on the canonical record.
type InvoiceRow struct {
	Description        string             `json:"description"`
	Quantity           float64            `json:"quantity"`
	CostPerUnit        float64            `json:"costPerUnit"`
	TotalAmount        float64            `json:"totalAmount"`
	AccountInformation AccountInformation `json:"accountInformation"`
}

// Recipient identifies who the invoice is addressed to. PartyID is resolved by
// decoration for external recipients; internal recipients are addressed by
// municipality id alone.
type Recipient struct {
	PartyID        string `json:"partyId,omitempty"`
	LegalID        string `json:"legalId,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
}

// CanonicalBillingRecord is the normalized payload accepted by the downstream
// invoicing sink. SourceReference is the sink's idempotency key; resubmitting
// the same reference must not produce a second invoice.
type CanonicalBillingRecord struct {
	SourceReference string `json:"sourceReference"`

	Category    string       `json:"category"`
	Type        RecordType   `json:"type"`
	Status      RecordStatus `json:"status"`
	Description string       `json:"description,omitempty"`
	Recipient   Recipient    `json:"recipient"`
	Rows        []InvoiceRow `json:"invoiceRows"`
	Date        time.Time    `json:"date"`
}

// Wrapper carries a canonical record through dispatch and decoration together
// with the event coordinates the decorators need. Mutated in place.
type Wrapper struct {
	Record                   *CanonicalBillingRecord
	FamilyID                 string
	FlowInstanceID           string
	LegalID                  string
	MunicipalityID           string
	IsRecipientPrivatePerson bool
}

// Contract holds the contract attributes relevant to billing.
type Contract struct {
	ContractID   string
	IntervalType string
	CostCenter   string
	Counterpart  string
}
