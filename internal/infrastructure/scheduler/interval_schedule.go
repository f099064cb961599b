package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule fires at a fixed period: each next run is computed
// relative to the previous one, so a slow job shifts the whole series
// rather than piling up missed runs.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule builds a fixed-period schedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{Interval: interval}
}

// Next returns the run time that follows t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String renders the schedule in cron-style "@every" notation.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
