package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billcollect/internal/scheduledbilling/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, billing *domain.ScheduledBilling) error {
	return r.db.WithContext(ctx).Create(billing).Error
}

func (r *repo) Update(ctx context.Context, billing *domain.ScheduledBilling) error {
	if billing == nil {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).Exec(
		`UPDATE scheduled_billings
		 SET invoicing_date = ?, invoicing_months = ?, annual_amount = ?, interval_type = ?,
		     last_billed = ?, next_scheduled_billing = ?, updated_at = ?
		 WHERE id = ?`,
		billing.InvoicingDate,
		billing.InvoicingMonths,
		billing.AnnualAmount,
		billing.IntervalType,
		billing.LastBilled,
		billing.NextScheduledBilling,
		billing.UpdatedAt,
		billing.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.ScheduledBilling, error) {
	var billing domain.ScheduledBilling
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&billing).Error
	if err != nil {
		return nil, err
	}
	if billing.ID == 0 {
		return nil, nil
	}
	return &billing, nil
}

func (r *repo) List(ctx context.Context) ([]domain.ScheduledBilling, error) {
	var items []domain.ScheduledBilling
	if err := r.db.WithContext(ctx).Order("external_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListDue(ctx context.Context, asOf time.Time) ([]domain.ScheduledBilling, error) {
	var items []domain.ScheduledBilling
	err := r.db.WithContext(ctx).
		Where("next_scheduled_billing <= ?", asOf).
		Order("next_scheduled_billing ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
