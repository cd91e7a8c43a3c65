package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ScheduledBilling is an operator-edited recurring billing configuration.
// NextScheduledBilling is recomputed whenever the rule changes and after every
// successful billing occurrence.
type ScheduledBilling struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ExternalID string       `gorm:"type:text;not null;uniqueIndex"`
	Source     string       `gorm:"type:text;not null"`

	MunicipalityID string `gorm:"type:text;not null"`
	LegalID        string `gorm:"type:text"`

	// InvoicingDate is the day of month (1..31, clamped to month length).
	InvoicingDate int `gorm:"not null"`
	// InvoicingMonths is a non-empty subset of 1..12.
	InvoicingMonths datatypes.JSONSlice[int] `gorm:"not null"`

	AnnualAmount float64 `gorm:"not null"`
	IntervalType string  `gorm:"type:text;not null"`

	LastBilled           *time.Time `gorm:""`
	NextScheduledBilling time.Time  `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ScheduledBilling) TableName() string { return "scheduled_billings" }

type CreateRequest struct {
	ExternalID      string  `json:"externalId"`
	Source          string  `json:"source"`
	MunicipalityID  string  `json:"municipalityId"`
	LegalID         string  `json:"legalId"`
	InvoicingDate   int     `json:"invoicingDate"`
	InvoicingMonths []int   `json:"invoicingMonths"`
	AnnualAmount    float64 `json:"annualAmount"`
	IntervalType    string  `json:"intervalType"`
}

type UpdateRequest struct {
	ID              string   `json:"-"`
	InvoicingDate   *int     `json:"invoicingDate"`
	InvoicingMonths []int    `json:"invoicingMonths"`
	AnnualAmount    *float64 `json:"annualAmount"`
	IntervalType    *string  `json:"intervalType"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*ScheduledBilling, error)
	Update(ctx context.Context, req UpdateRequest) (*ScheduledBilling, error)
	Get(ctx context.Context, id string) (*ScheduledBilling, error)
	List(ctx context.Context) ([]ScheduledBilling, error)
	// RunDue bills every configuration whose NextScheduledBilling is on or
	// before today, then advances LastBilled and NextScheduledBilling.
	RunDue(ctx context.Context, today time.Time) error
}

type Repository interface {
	Create(ctx context.Context, billing *ScheduledBilling) error
	Update(ctx context.Context, billing *ScheduledBilling) error
	FindByID(ctx context.Context, id snowflake.ID) (*ScheduledBilling, error)
	List(ctx context.Context) ([]ScheduledBilling, error)
	ListDue(ctx context.Context, asOf time.Time) ([]ScheduledBilling, error)
}

var (
	ErrNotFound            = errors.New("scheduled_billing_not_found")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidExternalID   = errors.New("invalid_external_id")
	ErrInvalidInvoiceDate  = errors.New("invalid_invoicing_date")
	ErrInvalidInvoiceMonth = errors.New("invalid_invoicing_months")
)
