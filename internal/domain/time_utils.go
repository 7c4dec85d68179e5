package domain

import (
	"fmt"
	"time"
)

// DatetimeLayout is the UTC timestamp format of persisted match dates
const DatetimeLayout = "2006-01-02T15:04:05Z"

// UsagePeriod names a reporting window for usage statistics
type UsagePeriod string

const (
	// UsagePeriodAll - every recorded match
	UsagePeriodAll UsagePeriod = "all"
	// UsagePeriodMonth - matches since the beginning of the current month
	UsagePeriodMonth UsagePeriod = "month"
	// UsagePeriodYear - matches since the beginning of the current year
	UsagePeriodYear UsagePeriod = "year"
)

// Since returns the start of the period relative to now, zero for UsagePeriodAll
func (p UsagePeriod) Since(now time.Time) (time.Time, error) {
	switch p {
	case "", UsagePeriodAll:
		return time.Time{}, nil
	case UsagePeriodMonth:
		return BeginningOfMonth(now), nil
	case UsagePeriodYear:
		return BeginningOfYear(now), nil
	default:
		return time.Time{}, fmt.Errorf("unknown usage period %q", p)
	}
}

// BeginningOfMonth beginning of month
func BeginningOfMonth(date time.Time) time.Time {
	y, m, _ := date.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, date.Location())
}

// BeginningOfYear beginning of year
func BeginningOfYear(date time.Time) time.Time {
	y, _, _ := date.Date()
	return time.Date(y, time.January, 1, 0, 0, 0, 0, date.Location())
}
