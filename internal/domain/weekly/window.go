package weekly

import (
	"iter"
	"slices"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Window is a concrete half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates that the window is non-empty and no longer than a week.
func NewWindow(start, end time.Time) (Window, error) {
	start = start.UTC().Truncate(time.Minute)
	end = end.UTC().Truncate(time.Minute)
	if !end.After(start) {
		return Window{}, domain.NewValidationError(domain.ErrInvalidInterval, "end", end, "must be after start")
	}
	if end.Sub(start) > Week {
		return Window{}, domain.NewValidationError(domain.ErrInvalidInterval, "end", end, "window spans more than a week")
	}
	return Window{Start: start, End: end}, nil
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Covers reports whether [start, end] lies entirely inside the window.
func (w Window) Covers(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// Overlaps reports whether two windows share time; touching windows do not.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// SessionStarts yields session starts d apart from Start that fit before End.
func (w Window) SessionStarts(d time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for off := range offsets(w.Duration(), d) {
			if !yield(w.Start.Add(off)) {
				return
			}
		}
	}
}

// Interval folds the window back onto the reference week.
// A window of a full week becomes the whole-week sentinel anchored at its start.
func (w Window) Interval() Interval {
	start := PointOf(w.Start)
	if w.Duration() >= Week {
		return Interval{Start: start, End: start}
	}
	return Interval{Start: start, End: start.Add(w.Duration())}
}

// MergeWindows returns the union of ws as sorted, disjoint windows.
// Touching windows are joined.
func MergeWindows(ws []Window) []Window {
	if len(ws) == 0 {
		return nil
	}
	sorted := slices.Clone(ws)
	slices.SortFunc(sorted, func(a, b Window) int { return a.Start.Compare(b.Start) })

	merged := []Window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// SortWindows sorts windows by start in place.
func SortWindows(ws []Window) {
	slices.SortFunc(ws, func(a, b Window) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})
}
