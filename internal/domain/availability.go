package domain

import "time"

// WeekBehavior selects how a concrete week resolves its availability
type WeekBehavior string

const (
	// WeekInherit uses the template plus the week's overrides
	WeekInherit WeekBehavior = "TEMPLATE"
	// WeekCustom uses only the week's overrides
	WeekCustom WeekBehavior = "CUSTOM"
	// WeekUnavailable resolves to nothing
	WeekUnavailable WeekBehavior = "UNAVAILABLE"
)

// ParseWeekBehavior validates a behavior string
func ParseWeekBehavior(s string) (WeekBehavior, bool) {
	switch b := WeekBehavior(s); b {
	case WeekInherit, WeekCustom, WeekUnavailable:
		return b, true
	default:
		return "", false
	}
}

// WeekConfig is the per-week behavior flag of a practitioner.
// A missing row means WeekInherit.
type WeekConfig struct {
	PractitionerID int64
	WeekStart      time.Time // Monday 00:00 UTC
	Behavior       WeekBehavior
	UpdatedAt      time.Time
}

var weekTransitions = map[WeekBehavior][]WeekBehavior{
	WeekInherit:     {WeekCustom, WeekUnavailable},
	WeekCustom:      {WeekInherit, WeekUnavailable},
	WeekUnavailable: {WeekInherit, WeekCustom},
}

// CanSwitchWeekBehavior reports whether a week may move from one behavior to another.
// Setting the same behavior again is allowed and changes nothing.
func CanSwitchWeekBehavior(from, to WeekBehavior) bool {
	if from == to {
		return true
	}
	for _, b := range weekTransitions[from] {
		if b == to {
			return true
		}
	}
	return false
}
