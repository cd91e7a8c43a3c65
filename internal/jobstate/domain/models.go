package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ScheduledJob is one immutable window record per collection run. The latest
// row (by TriggeredAt) defines the resume point for the next run.
type ScheduledJob struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	FromDate    time.Time    `gorm:"not null"`
	ToDate      time.Time    `gorm:"not null"`
	TriggeredAt time.Time    `gorm:"not null;index"`
}

func (ScheduledJob) TableName() string { return "scheduled_jobs" }

// Fallout records a billing-eligible event that failed processing and was not
// forwarded. Queryable by flow instance id set for audit.
type Fallout struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	FamilyID       string       `gorm:"type:text;not null;index"`
	FlowInstanceID string       `gorm:"type:text;not null;index"`
	MunicipalityID string       `gorm:"type:text;not null"`
	RequestID      string       `gorm:"type:text;not null"`
	Detail         string       `gorm:"type:text"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Fallout) TableName() string { return "fallouts" }

// History records an event that was successfully forwarded to the sink.
type History struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	FamilyID       string       `gorm:"type:text;not null;index"`
	FlowInstanceID string       `gorm:"type:text;not null;index"`
	MunicipalityID string       `gorm:"type:text;not null"`
	RequestID      string       `gorm:"type:text;not null"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (History) TableName() string { return "histories" }
