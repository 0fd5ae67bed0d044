package resource

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
)

// ErrUnknownInterval is returned for a scan interval outside IntervalSpecs.
var ErrUnknownInterval = errors.New("unknown scan interval")

// IntervalSpecs maps scheduler intervals to cron descriptors.
var IntervalSpecs = map[string]string{
	"15_minutes": "@every 15m",
	"30_minutes": "@every 30m",
	"1_hour":     "@every 1h",
	"12_hours":   "@every 12h",
	"1_day":      "@every 24h",
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NextRun returns the first run of interval after now.
func NextRun(interval string, now time.Time) (time.Time, error) {
	spec, ok := IntervalSpecs[interval]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownInterval, interval)
	}
	schedule, err := scheduleParser.Parse(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", spec, err)
	}
	return schedule.Next(now), nil
}

// nextScanDefault fills nextScanAt from the interval chosen so far, falling
// back to now when the interval is unknown.
func nextScanDefault(now time.Time, values console.Values) string {
	next, err := NextRun(values["scanInterval"], now.UTC())
	if err != nil {
		next = now.UTC()
	}
	return next.Format(console.DatetimeLayout)
}

// nowDefault fills a datetime field with the current UTC minute.
func nowDefault(now time.Time, _ console.Values) string {
	return now.UTC().Format(console.DatetimeLayout)
}
