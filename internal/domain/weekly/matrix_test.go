package weekly

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const hourly = 24

func emptyGrid(p int) Grid {
	g := make(Grid, 7)
	for i := range g {
		g[i] = make([]bool, p)
	}
	return g
}

func cloneGrid(g Grid) Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]bool(nil), row...)
	}
	return out
}

// presentation rows: 0 = Sunday, 1 = Monday, ..., 6 = Saturday
const (
	rowSunday = 0
	rowMonday = 1
	rowWed    = 3
)

func TestToGrid_PresentationOrder(t *testing.T) {
	g, err := ToGrid([]Interval{
		mustInterval(t, 1, 8, 0, 1, 10, 0),
		mustInterval(t, 7, 22, 0, 1, 2, 0),
	}, hourly)
	require.NoError(t, err)
	require.Len(t, g, 7)

	assert.True(t, g[rowMonday][8])
	assert.True(t, g[rowMonday][9])
	assert.False(t, g[rowMonday][10])

	// wrap crosses from Sunday (row 0) into Monday (row 1)
	assert.True(t, g[rowSunday][22])
	assert.True(t, g[rowSunday][23])
	assert.True(t, g[rowMonday][0])
	assert.True(t, g[rowMonday][1])
	assert.False(t, g[rowMonday][2])
}

func TestToGrid_PartialPeriodIsMarked(t *testing.T) {
	g, err := ToGrid([]Interval{mustInterval(t, 1, 8, 30, 1, 9, 10)}, hourly)
	require.NoError(t, err)

	assert.True(t, g[rowMonday][8])
	assert.True(t, g[rowMonday][9])
	assert.False(t, g[rowMonday][10])
}

func TestToGrid_FifteenMinutePeriods(t *testing.T) {
	g, err := ToGrid([]Interval{mustInterval(t, 2, 8, 15, 2, 9, 0)}, 96)
	require.NoError(t, err)

	tuesday := g[2]
	assert.False(t, tuesday[32])
	assert.True(t, tuesday[33])
	assert.True(t, tuesday[35])
	assert.False(t, tuesday[36])
}

func TestFromGrid_MergesRunsAndWraps(t *testing.T) {
	g := emptyGrid(hourly)
	for h := 8; h < 12; h++ {
		g[rowMonday][h] = true
	}
	g[rowWed][10] = true
	g[rowWed][11] = true
	g[rowWed][12] = true
	g[rowSunday][22] = true
	g[rowSunday][23] = true
	g[rowMonday][0] = true
	g[rowMonday][1] = true

	got, err := FromGrid(g)
	require.NoError(t, err)

	assert.Equal(t, []Interval{
		mustInterval(t, 1, 8, 0, 1, 12, 0),
		mustInterval(t, 3, 10, 0, 3, 13, 0),
		mustInterval(t, 7, 22, 0, 1, 2, 0),
	}, got)
}

func TestFromGrid_RunEndingAtWeekEnd(t *testing.T) {
	g := emptyGrid(hourly)
	g[rowSunday][23] = true

	got, err := FromGrid(g)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Sun 23:00", got[0].Start.String())
	assert.Equal(t, "Mon 00:00", got[0].End.String())
	assert.Equal(t, Day/24, got[0].Length())
}

func TestFromGrid_AllTrueIsWholeWeek(t *testing.T) {
	g := emptyGrid(hourly)
	for _, row := range g {
		for i := range row {
			row[i] = true
		}
	}

	got, err := FromGrid(g)
	require.NoError(t, err)
	assert.Equal(t, []Interval{WholeWeek}, got)
}

func TestFromGrid_Empty(t *testing.T) {
	got, err := FromGrid(emptyGrid(hourly))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFromGrid_DoesNotMutateInput(t *testing.T) {
	g := emptyGrid(hourly)
	g[rowSunday][3] = true
	before := cloneGrid(g)

	_, err := FromGrid(g)
	require.NoError(t, err)
	assert.Equal(t, before, g)
}

func TestFromGrid_Malformed(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
	}{
		{name: "six rows", grid: emptyGrid(hourly)[:6]},
		{name: "ragged rows", grid: func() Grid { g := emptyGrid(hourly); g[4] = g[4][:10]; return g }()},
		{name: "zero periods", grid: emptyGrid(0)},
		{name: "period does not divide a day", grid: emptyGrid(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromGrid(tt.grid)
			assert.ErrorIs(t, err, domain.ErrMalformedGrid)
		})
	}
}

func TestGrid_UnmarshalJSON(t *testing.T) {
	var g Grid
	err := json.Unmarshal([]byte(`[[true,false],[1,0]]`), &g)
	assert.ErrorIs(t, err, domain.ErrMalformedGrid)

	require.NoError(t, json.Unmarshal([]byte(`[[true,false],[false,true]]`), &g))
	assert.Equal(t, Grid{{true, false}, {false, true}}, g)
}

func TestGrid_RoundTrip(t *testing.T) {
	sets := map[string][]Interval{
		"plain and wrap": {
			mustInterval(t, 1, 8, 0, 1, 12, 0),
			mustInterval(t, 7, 22, 0, 1, 2, 0),
		},
		"touching intervals merge": {
			mustInterval(t, 3, 10, 0, 3, 11, 0),
			mustInterval(t, 3, 11, 0, 3, 13, 0),
		},
		"overlapping intervals merge": {
			mustInterval(t, 5, 6, 0, 5, 20, 0),
			mustInterval(t, 5, 18, 0, 6, 3, 0),
		},
		"whole week": {WholeWeek},
		"multi day":  {mustInterval(t, 2, 20, 0, 4, 4, 0)},
	}

	for name, set := range sets {
		t.Run(name, func(t *testing.T) {
			grid, err := ToGrid(set, hourly)
			require.NoError(t, err)

			back, err := FromGrid(grid)
			require.NoError(t, err)

			again, err := ToGrid(back, hourly)
			require.NoError(t, err)
			assert.Equal(t, grid, again)

			for _, iv := range back {
				assert.Zero(t, iv.Length()%(Day/hourly), "%s is not made of whole periods", iv)
			}
		})
	}
}
