package weekly

import (
	"cmp"
	"encoding/json"
	"slices"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Grid is the 7 x P availability matrix exchanged with clients.
// Row 0 is Sunday (presentation order); column k covers [k*period, (k+1)*period) from midnight UTC.
type Grid [][]bool

// UnmarshalJSON reports any decoding problem as ErrMalformedGrid.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw [][]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.NewValidationError(domain.ErrMalformedGrid, "grid", "", err.Error())
	}
	*g = raw
	return nil
}

// PeriodsPerDay returns P, the number of columns.
func (g Grid) PeriodsPerDay() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// ToGrid marks every period touched by some interval and returns a new grid in presentation order.
func ToGrid(intervals []Interval, periodsPerDay int) (Grid, error) {
	period, err := periodLength(periodsPerDay)
	if err != nil {
		return nil, err
	}

	n := 7 * periodsPerDay
	cells := make([]bool, n)
	for _, iv := range intervals {
		if iv.IsWholeWeek() {
			for k := range cells {
				cells[k] = true
			}
			continue
		}

		first := int(time.Duration(iv.Start) / period)
		end := time.Duration(iv.Start) + iv.Length()
		last := int((end + period - 1) / period)
		for k := first; k < last; k++ {
			cells[k%n] = true
		}
	}

	internal := make(Grid, 7)
	for day := range internal {
		internal[day] = slices.Clone(cells[day*periodsPerDay : (day+1)*periodsPerDay])
	}
	return toPresentation(internal), nil
}

// FromGrid merges every maximal run of true cells (Monday-first, wrapping past Sunday)
// into one interval. A grid that is entirely true becomes the whole-week sentinel.
// The input is never modified.
func FromGrid(g Grid) ([]Interval, error) {
	periodsPerDay, err := validateGrid(g)
	if err != nil {
		return nil, err
	}
	period, err := periodLength(periodsPerDay)
	if err != nil {
		return nil, err
	}

	internal := toInternal(g)
	n := 7 * periodsPerDay
	cells := make([]bool, 0, n)
	for _, row := range internal {
		cells = append(cells, row...)
	}

	firstFree := slices.Index(cells, false)
	switch {
	case firstFree < 0:
		return []Interval{WholeWeek}, nil
	case !slices.Contains(cells, true):
		return nil, nil
	}

	var (
		out      []Interval
		runStart int
		inRun    bool
	)
	// Starting right after a free cell guarantees no run is split at the week boundary.
	for step := 1; step <= n; step++ {
		k := (firstFree + step) % n
		switch {
		case cells[k] && !inRun:
			runStart, inRun = k, true
		case !cells[k] && inRun:
			out = append(out, Interval{
				Start: Point(time.Duration(runStart) * period),
				End:   Point(time.Duration(k) * period).normalize(),
			})
			inRun = false
		}
	}

	slices.SortFunc(out, func(a, b Interval) int { return cmp.Compare(a.Start, b.Start) })
	return out, nil
}

func validateGrid(g Grid) (int, error) {
	if len(g) != 7 {
		return 0, domain.NewValidationError(domain.ErrMalformedGrid, "rows", len(g), "grid must have 7 rows")
	}
	p := len(g[0])
	for i, row := range g {
		if len(row) != p {
			return 0, domain.NewValidationError(domain.ErrMalformedGrid, "row", i, "rows must have equal length")
		}
	}
	return p, nil
}

func periodLength(periodsPerDay int) (time.Duration, error) {
	if periodsPerDay <= 0 || Day%time.Duration(periodsPerDay) != 0 {
		return 0, domain.NewValidationError(domain.ErrMalformedGrid, "periods", periodsPerDay, "must divide a day")
	}
	period := Day / time.Duration(periodsPerDay)
	if period%time.Minute != 0 {
		return 0, domain.NewValidationError(domain.ErrMalformedGrid, "periods", periodsPerDay, "period must be whole minutes")
	}
	return period, nil
}

// toPresentation moves Sunday (last internal row) to the front.
func toPresentation(internal Grid) Grid {
	out := make(Grid, 0, len(internal))
	out = append(out, slices.Clone(internal[len(internal)-1]))
	for _, row := range internal[:len(internal)-1] {
		out = append(out, slices.Clone(row))
	}
	return out
}

// toInternal moves Sunday (first presentation row) to the back.
func toInternal(presentation Grid) Grid {
	out := make(Grid, 0, len(presentation))
	for _, row := range presentation[1:] {
		out = append(out, slices.Clone(row))
	}
	return append(out, slices.Clone(presentation[0]))
}
