package poller

import (
	"context"
	"fmt"
	"time"
)

// DefaultPeriod is the fixed wait between cycles and the width of the query window.
const DefaultPeriod = 600 * time.Second

// IntervalSchedule runs cycles at a fixed interval and derives the query
// window from the same interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval <= 0 {
		interval = DefaultPeriod
	}
	return &IntervalSchedule{
		Interval: interval,
	}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// WindowStart returns the Unix timestamp the API is queried from at time t.
// The window is always "t minus interval"; it is never advanced from the
// API's own current_date.
func (s *IntervalSchedule) WindowStart(t time.Time) int64 {
	return t.Add(-s.Interval).Unix()
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
