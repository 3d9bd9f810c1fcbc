// Package weekly implements recurring weekly time: points on a fixed reference
// week, wrap-around intervals, concrete windows and the boolean availability grid.
package weekly

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// ReferenceOrigin is Monday 00:00 UTC of the reference week.
// Only its weekday matters; the date keeps DST-free offsets for most zones stable.
var ReferenceOrigin = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Point is a minute-precision offset from ReferenceOrigin in [0, Week).
type Point time.Duration

// ToPoint converts a (ISO weekday, time of day, zone) triple to a UTC point of the reference week.
// Seconds are truncated.
func ToPoint(weekday int, clock time.Duration, loc *time.Location) (Point, error) {
	if weekday < 1 || weekday > 7 {
		return 0, domain.NewValidationError(domain.ErrInvalidInterval, "weekday", weekday, "must be in 1..7")
	}
	if clock < 0 || clock >= Day {
		return 0, domain.NewValidationError(domain.ErrInvalidInterval, "time", clock, "must be within a day")
	}
	if loc == nil {
		loc = time.UTC
	}

	clock = clock.Truncate(time.Minute)
	local := time.Date(
		ReferenceOrigin.Year(), ReferenceOrigin.Month(), ReferenceOrigin.Day()+weekday-1,
		int(clock/time.Hour), int(clock%time.Hour/time.Minute), 0, 0, loc,
	)
	return PointOf(local), nil
}

// PointOf projects any instant onto the reference week.
func PointOf(t time.Time) Point {
	u := t.UTC()
	day := time.Duration(ISOWeekday(u)-1) * Day
	clock := time.Duration(u.Hour())*time.Hour + time.Duration(u.Minute())*time.Minute
	return Point(day + clock)
}

// FromPoint returns the ISO weekday and UTC time of day of p.
func FromPoint(p Point) (weekday int, clock time.Duration) {
	d := time.Duration(p.normalize())
	return int(d/Day) + 1, d % Day
}

func (p Point) normalize() Point {
	m := p % Point(Week)
	if m < 0 {
		m += Point(Week)
	}
	return m
}

// Valid reports whether p lies inside the reference week.
func (p Point) Valid() bool {
	return p >= 0 && p < Point(Week)
}

// Add moves p by d around the week.
func (p Point) Add(d time.Duration) Point {
	return (p + Point(d)).normalize()
}

// Weekday returns the ISO weekday (1 = Monday).
func (p Point) Weekday() int {
	wd, _ := FromPoint(p)
	return wd
}

// Clock returns the UTC time of day.
func (p Point) Clock() time.Duration {
	_, c := FromPoint(p)
	return c
}

// Time returns the instant of p inside the reference week.
func (p Point) Time() time.Time {
	return ReferenceOrigin.Add(time.Duration(p.normalize()))
}

func (p Point) String() string {
	wd, c := FromPoint(p)
	return fmt.Sprintf("%s %02d:%02d", weekdayNames[wd-1], int(c/time.Hour), int(c%time.Hour/time.Minute))
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekStart returns Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day()-(ISOWeekday(u)-1), 0, 0, 0, 0, time.UTC)
}

// IsWeekStart reports whether t is exactly a Monday 00:00 UTC.
func IsWeekStart(t time.Time) bool {
	return t.Equal(WeekStart(t))
}

// Aligned reports whether t is a whole multiple of d away from ReferenceOrigin.
func Aligned(t time.Time, d time.Duration) bool {
	if d <= 0 {
		return false
	}
	return t.Sub(ReferenceOrigin)%d == 0
}

// AlignUp returns the first instant >= t that is aligned to d.
func AlignUp(t time.Time, d time.Duration) time.Time {
	r := t.Sub(ReferenceOrigin) % d
	if r < 0 {
		r += d
	}
	if r == 0 {
		return t
	}
	return t.Add(d - r)
}
