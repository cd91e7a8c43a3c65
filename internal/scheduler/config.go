package scheduler

import "time"

const defaultLockKey = "billcollect:collector:leader"

// Options controls the collection cadence.
type Options struct {
	// CronSpec takes precedence over Interval when set.
	CronSpec       string
	Interval       time.Duration
	MaxRunDuration time.Duration
	LockKey        string
	FamilyIDs      []string
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 24 * time.Hour
	}
	if o.MaxRunDuration <= 0 {
		o.MaxRunDuration = 30 * time.Minute
	}
	if o.LockKey == "" {
		o.LockKey = defaultLockKey
	}
	return o
}
