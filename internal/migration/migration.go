// Package migration creates the collector's tables automatically on startup so
// local and self-hosted environments are usable out of the box.
package migration

import (
	"errors"

	jobstatedomain "github.com/smallbiznis/billcollect/internal/jobstate/domain"
	sbdomain "github.com/smallbiznis/billcollect/internal/scheduledbilling/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&jobstatedomain.ScheduledJob{},
		&jobstatedomain.Fallout{},
		&jobstatedomain.History{},
		&sbdomain.ScheduledBilling{},
	)
}
