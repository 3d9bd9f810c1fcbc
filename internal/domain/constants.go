package domain

import "time"

// Default scheduling configuration values
const (
	DefaultSessionDurationMinutes = 60
	DefaultMinLeadMinutes         = 60
	DefaultMaxLeadDays            = 60
	DefaultHistoryWeeks           = 52
)

// Business validation constants
const (
	MinSessionDurationMinutes = 5
	MaxSessionDurationMinutes = 240
	MinPrice                  = 20.00
	MaxPrice                  = 4999.99
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// SchedulingPolicy groups the durations every booking decision depends on
type SchedulingPolicy struct {
	SessionDuration time.Duration
	MinLeadTime     time.Duration
	MaxLeadTime     time.Duration
	HistoryWeeks    int // how many past weeks are frozen on a template change
}

// DefaultPolicy returns the policy built from the default constants
func DefaultPolicy() SchedulingPolicy {
	return SchedulingPolicy{
		SessionDuration: DefaultSessionDurationMinutes * time.Minute,
		MinLeadTime:     DefaultMinLeadMinutes * time.Minute,
		MaxLeadTime:     DefaultMaxLeadDays * 24 * time.Hour,
		HistoryWeeks:    DefaultHistoryWeeks,
	}
}

// PeriodsPerDay is the number of grid columns (sessions per day)
func (p SchedulingPolicy) PeriodsPerDay() int {
	return int(24 * time.Hour / p.SessionDuration)
}
