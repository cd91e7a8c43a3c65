package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billcollect/internal/jobstate/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	GenID *snowflake.Node
}

type store struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func Provide(p Params) domain.Store {
	return &store{db: p.DB, genID: p.GenID}
}

func (s *store) Latest(ctx context.Context) (*domain.ScheduledJob, error) {
	var job domain.ScheduledJob
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, from_date, to_date, triggered_at
		 FROM scheduled_jobs
		 ORDER BY triggered_at DESC, id DESC
		 LIMIT 1`,
	).Scan(&job).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrJobStateUnavailable, err)
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (s *store) Save(ctx context.Context, from, to time.Time) (*domain.ScheduledJob, error) {
	job := &domain.ScheduledJob{
		ID:          s.genID.Generate(),
		FromDate:    from,
		ToDate:      to,
		TriggeredAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO scheduled_jobs (id, from_date, to_date, triggered_at)
		 VALUES (?, ?, ?, ?)`,
		job.ID,
		job.FromDate,
		job.ToDate,
		job.TriggeredAt,
	).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrJobStateUnavailable, err)
	}
	return job, nil
}

func (s *store) RecordFallout(ctx context.Context, fallout *domain.Fallout) error {
	if fallout.ID == 0 {
		fallout.ID = s.genID.Generate()
	}
	if fallout.CreatedAt.IsZero() {
		fallout.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO fallouts (id, family_id, flow_instance_id, municipality_id, request_id, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fallout.ID,
		fallout.FamilyID,
		fallout.FlowInstanceID,
		fallout.MunicipalityID,
		fallout.RequestID,
		fallout.Detail,
		fallout.CreatedAt,
	).Error
}

func (s *store) FalloutsFor(ctx context.Context, flowInstanceIDs []string) ([]domain.Fallout, error) {
	if len(flowInstanceIDs) == 0 {
		return nil, nil
	}
	var fallouts []domain.Fallout
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, family_id, flow_instance_id, municipality_id, request_id, detail, created_at
		 FROM fallouts
		 WHERE flow_instance_id IN ?
		 ORDER BY created_at ASC`,
		flowInstanceIDs,
	).Scan(&fallouts).Error
	if err != nil {
		return nil, err
	}
	return fallouts, nil
}

func (s *store) RecordHistory(ctx context.Context, entry *domain.History) error {
	if entry.ID == 0 {
		entry.ID = s.genID.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO histories (id, family_id, flow_instance_id, municipality_id, request_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.FamilyID,
		entry.FlowInstanceID,
		entry.MunicipalityID,
		entry.RequestID,
		entry.CreatedAt,
	).Error
}

func (s *store) HistoryFor(ctx context.Context, flowInstanceIDs []string) ([]domain.History, error) {
	if len(flowInstanceIDs) == 0 {
		return nil, nil
	}
	var entries []domain.History
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, family_id, flow_instance_id, municipality_id, request_id, created_at
		 FROM histories
		 WHERE flow_instance_id IN ?
		 ORDER BY created_at ASC`,
		flowInstanceIDs,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
