package weekly

import (
	"fmt"
	"iter"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Interval is a recurring closed window [Start, End] on the reference week.
//
// End < Start wraps past Sunday into the next Monday. Start == End is the
// whole-week sentinel, so an interval never spans more than one week.
type Interval struct {
	Start Point
	End   Point
}

// WholeWeek is the sentinel interval anchored at Monday 00:00.
var WholeWeek = Interval{}

// NewInterval validates both endpoints.
func NewInterval(start, end Point) (Interval, error) {
	if !start.Valid() {
		return Interval{}, domain.NewValidationError(domain.ErrInvalidInterval, "start", time.Duration(start), "outside of the week")
	}
	if !end.Valid() {
		return Interval{}, domain.NewValidationError(domain.ErrInvalidInterval, "end", time.Duration(end), "outside of the week")
	}
	return Interval{Start: start.Truncate(), End: end.Truncate()}, nil
}

// ParseInterval builds an interval from local weekday/time pairs in loc.
func ParseInterval(startDay int, startClock time.Duration, endDay int, endClock time.Duration, loc *time.Location) (Interval, error) {
	start, err := ToPoint(startDay, startClock, loc)
	if err != nil {
		return Interval{}, err
	}
	end, err := ToPoint(endDay, endClock, loc)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

// Truncate drops sub-minute precision.
func (p Point) Truncate() Point {
	return Point(time.Duration(p).Truncate(time.Minute))
}

// IsWholeWeek reports whether the interval is the whole-week sentinel.
func (i Interval) IsWholeWeek() bool {
	return i.Start == i.End
}

// Wraps reports whether the interval crosses the end of the week.
func (i Interval) Wraps() bool {
	return i.End < i.Start
}

// Length returns the covered duration.
func (i Interval) Length() time.Duration {
	switch {
	case i.IsWholeWeek():
		return Week
	case i.Wraps():
		return Week - time.Duration(i.Start) + time.Duration(i.End)
	default:
		return time.Duration(i.End - i.Start)
	}
}

// Contains reports whether p lies in [Start, End], both ends inclusive.
// For a wrapping interval this is "not strictly between End and Start".
func (i Interval) Contains(p Point) bool {
	p = p.normalize()
	switch {
	case i.IsWholeWeek():
		return true
	case i.Wraps():
		return !(i.End < p && p < i.Start)
	default:
		return i.Start <= p && p <= i.End
	}
}

// ContainsTime projects t onto the reference week and tests it.
func (i Interval) ContainsTime(t time.Time) bool {
	return i.Contains(PointOf(t))
}

// Overlaps is the closed-interval overlap test; touching endpoints overlap.
// Two arcs on the week circle meet iff one holds an endpoint of the other.
func (i Interval) Overlaps(o Interval) bool {
	if i.IsWholeWeek() || o.IsWholeWeek() {
		return true
	}
	return i.Contains(o.Start) || i.Contains(o.End) ||
		o.Contains(i.Start) || o.Contains(i.End)
}

// SessionStarts yields every session start inside the interval, d apart, beginning at Start.
// The last start leaves room for a full session before End.
func (i Interval) SessionStarts(d time.Duration) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for off := range offsets(i.Length(), d) {
			if !yield(i.Start.Add(off)) {
				return
			}
		}
	}
}

// Project anchors the interval onto the concrete week starting at weekStart.
// A wrapping interval ends in the following week.
func (i Interval) Project(weekStart time.Time) Window {
	start := weekStart.Add(time.Duration(i.Start))
	return Window{Start: start, End: start.Add(i.Length())}
}

func (i Interval) String() string {
	if i.IsWholeWeek() {
		return fmt.Sprintf("[%s, whole week]", i.Start)
	}
	return fmt.Sprintf("[%s, %s]", i.Start, i.End)
}

// OverlappingAny returns the first interval of set that overlaps candidate, if any.
func OverlappingAny(set []Interval, candidate Interval) (Interval, bool) {
	for _, iv := range set {
		if iv.Overlaps(candidate) {
			return iv, true
		}
	}
	return Interval{}, false
}

func offsets(length, d time.Duration) iter.Seq[time.Duration] {
	return func(yield func(time.Duration) bool) {
		if d <= 0 {
			return
		}
		for off := time.Duration(0); off+d <= length; off += d {
			if !yield(off) {
				return
			}
		}
	}
}
