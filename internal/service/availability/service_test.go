package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

const practitionerID int64 = 7

// monday 2025-03-03 00:00 UTC
var monday = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

func newTestService(t *testing.T, now time.Time) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store.Availability(), store, domain.DefaultPolicy(), logger.NewNop())
	svc.timeProvider = &fixedTime{now: now}
	return svc, store
}

func interval(t *testing.T, startDay, sh, endDay, eh int) weekly.Interval {
	t.Helper()
	iv, err := weekly.ParseInterval(startDay, time.Duration(sh)*time.Hour, endDay, time.Duration(eh)*time.Hour, time.UTC)
	require.NoError(t, err)
	return iv
}

func window(start time.Time, hours int) weekly.Window {
	return weekly.Window{Start: start, End: start.Add(time.Duration(hours) * time.Hour)}
}

func TestResolveWeek_NoConfigInheritsTemplate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, monday)

	_, err := svc.RedefineTemplateFrom(ctx, practitionerID, monday, []weekly.Interval{interval(t, 1, 8, 1, 12)})
	require.NoError(t, err)

	next := monday.AddDate(0, 0, 7)
	got, err := svc.ResolveWeek(ctx, practitionerID, next.Add(50*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, next, got.WeekStart)
	assert.Equal(t, domain.WeekInherit, got.Behavior)
	assert.Equal(t, []weekly.Window{window(next.Add(8*time.Hour), 4)}, got.Windows)
}

func TestResolveWeek_Behaviors(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, monday)
	repo := store.Availability()

	_, err := svc.RedefineTemplateFrom(ctx, practitionerID, monday, []weekly.Interval{interval(t, 1, 8, 1, 12)})
	require.NoError(t, err)

	week := monday.AddDate(0, 0, 14)
	extra := window(week.Add(2*24*time.Hour+15*time.Hour), 2) // Wed 15:00-17:00
	require.NoError(t, repo.AddOverrides(ctx, practitionerID, week, []weekly.Window{extra}))

	t.Run("inherit is additive", func(t *testing.T) {
		got, err := svc.ResolveWeek(ctx, practitionerID, week)
		require.NoError(t, err)
		assert.Equal(t, []weekly.Window{window(week.Add(8*time.Hour), 4), extra}, got.Windows)
	})

	t.Run("custom uses overrides only", func(t *testing.T) {
		_, err := svc.SetWeekBehavior(ctx, practitionerID, week, domain.WeekCustom)
		require.NoError(t, err)

		got, err := svc.ResolveWeek(ctx, practitionerID, week)
		require.NoError(t, err)
		assert.Equal(t, domain.WeekCustom, got.Behavior)
		assert.Equal(t, []weekly.Window{extra}, got.Windows)
	})

	t.Run("unavailable is empty", func(t *testing.T) {
		_, err := svc.SetWeekBehavior(ctx, practitionerID, week, domain.WeekUnavailable)
		require.NoError(t, err)

		got, err := svc.ResolveWeek(ctx, practitionerID, week)
		require.NoError(t, err)
		assert.Empty(t, got.Windows)
	})

	t.Run("back to inherit", func(t *testing.T) {
		_, err := svc.SetWeekBehavior(ctx, practitionerID, week, domain.WeekInherit)
		require.NoError(t, err)

		got, err := svc.ResolveWeek(ctx, practitionerID, week)
		require.NoError(t, err)
		assert.Len(t, got.Windows, 2)
	})
}

func TestRedefineTemplateFrom_FreezesHistory(t *testing.T) {
	ctx := context.Background()
	start := monday.AddDate(0, 0, -21)
	svc, store := newTestService(t, start)

	oldTemplate := []weekly.Interval{
		interval(t, 1, 8, 1, 12),
		interval(t, 7, 22, 1, 2), // wraps into the next week
	}
	_, err := svc.RedefineTemplateFrom(ctx, practitionerID, start, oldTemplate)
	require.NoError(t, err)

	// one past week carries an extra override, another is custom
	repo := store.Availability()
	extraWeek := monday.AddDate(0, 0, -14)
	require.NoError(t, repo.AddOverrides(ctx, practitionerID, extraWeek, []weekly.Window{window(extraWeek.Add(30*time.Hour), 1)}))
	customWeek := monday.AddDate(0, 0, -7)
	_, err = svc.SaveWeekGrid(ctx, practitionerID, customWeek, gridWith(t, 3, 10))
	require.NoError(t, err)

	svc.timeProvider = &fixedTime{now: monday.Add(36 * time.Hour)}
	w := monday.AddDate(0, 0, 7)

	before := make(map[time.Time][]weekly.Window)
	for wk := start.AddDate(0, 0, -7); wk.Before(w); wk = wk.AddDate(0, 0, 7) {
		got, err := svc.ResolveWeek(ctx, practitionerID, wk)
		require.NoError(t, err)
		before[wk] = got.Windows
	}

	newTemplate := []weekly.Interval{interval(t, 2, 14, 2, 18)}
	_, err = svc.RedefineTemplateFrom(ctx, practitionerID, w, newTemplate)
	require.NoError(t, err)

	for wk, windows := range before {
		got, err := svc.ResolveWeek(ctx, practitionerID, wk)
		require.NoError(t, err)
		assert.ElementsMatch(t, windows, got.Windows, "week %s changed", wk.Format(domain.DateFormat))
	}

	got, err := svc.ResolveWeek(ctx, practitionerID, w)
	require.NoError(t, err)
	assert.Equal(t, domain.WeekInherit, got.Behavior)
	assert.Equal(t, []weekly.Window{newTemplate[0].Project(w)}, got.Windows)

	cfg, err := repo.GetWeekConfig(ctx, practitionerID, w)
	require.NoError(t, err)
	assert.Equal(t, domain.WeekInherit, cfg.Behavior)
}

func TestRedefineTemplateFrom_ClearsFutureWeeks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, monday)

	_, err := svc.RedefineTemplateFrom(ctx, practitionerID, monday, []weekly.Interval{interval(t, 1, 8, 1, 12)})
	require.NoError(t, err)

	future := monday.AddDate(0, 0, 21)
	_, err = svc.SetWeekBehavior(ctx, practitionerID, future, domain.WeekUnavailable)
	require.NoError(t, err)

	w := monday.AddDate(0, 0, 14)
	_, err = svc.RedefineTemplateFrom(ctx, practitionerID, w, []weekly.Interval{interval(t, 3, 9, 3, 11)})
	require.NoError(t, err)

	got, err := svc.ResolveWeek(ctx, practitionerID, future)
	require.NoError(t, err)
	assert.Equal(t, domain.WeekInherit, got.Behavior)
	assert.Equal(t, []weekly.Window{window(future.Add(2*24*time.Hour+9*time.Hour), 2)}, got.Windows)
}

func TestRedefineTemplateFrom_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, monday.Add(time.Hour))

	t.Run("past week", func(t *testing.T) {
		_, err := svc.RedefineTemplateFrom(ctx, practitionerID, monday.AddDate(0, 0, -1), nil)
		assert.ErrorIs(t, err, domain.ErrPastWeek)
	})

	t.Run("overlapping intervals", func(t *testing.T) {
		_, err := svc.RedefineTemplateFrom(ctx, practitionerID, monday, []weekly.Interval{
			interval(t, 1, 8, 1, 12),
			interval(t, 1, 12, 1, 14),
		})
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, err, domain.ErrInvalidInterval)
		assert.Equal(t, "intervals", vErr.Field)
	})
}

func TestAddTemplateInterval(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, monday.Add(time.Hour))

	view, err := svc.AddTemplateInterval(ctx, practitionerID, interval(t, 1, 8, 1, 12))
	require.NoError(t, err)
	assert.Len(t, view.Intervals, 1)

	view, err = svc.AddTemplateInterval(ctx, practitionerID, interval(t, 2, 8, 2, 12))
	require.NoError(t, err)
	assert.Len(t, view.Intervals, 2)

	_, err = svc.AddTemplateInterval(ctx, practitionerID, interval(t, 1, 11, 1, 13))
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	ok, err := svc.HasAvailability(ctx, practitionerID)
	require.NoError(t, err)
	assert.True(t, ok)

	tmpl, err := svc.GetTemplate(ctx, practitionerID)
	require.NoError(t, err)
	assert.Len(t, tmpl.Intervals, 2)
}

func TestSaveWeekGrid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, monday)

	week := monday.AddDate(0, 0, 7)
	grid := gridWith(t, 3, 10) // Wed 10:00-11:00
	// Sunday 23:00 and Monday 00:00 form one wrapping run
	grid[0][23] = true
	grid[1][0] = true

	view, err := svc.SaveWeekGrid(ctx, practitionerID, week, grid)
	require.NoError(t, err)

	assert.Equal(t, domain.WeekCustom, view.Behavior)
	assert.Equal(t, []weekly.Window{
		window(week, 1),
		window(week.Add(2*24*time.Hour+10*time.Hour), 1),
		window(week.Add(6*24*time.Hour+23*time.Hour), 1),
	}, view.Windows)
	assert.Equal(t, grid, view.Grid)

	t.Run("wrong resolution", func(t *testing.T) {
		bad := make(weekly.Grid, 7)
		for i := range bad {
			bad[i] = make([]bool, 48)
		}
		_, err := svc.SaveWeekGrid(ctx, practitionerID, week, bad)
		assert.ErrorIs(t, err, domain.ErrMalformedGrid)
	})
}

func TestSetWeekBehavior_InvalidInput(t *testing.T) {
	svc, _ := newTestService(t, monday)

	_, err := svc.SetWeekBehavior(context.Background(), practitionerID, monday, domain.WeekBehavior("SOMETIMES"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// gridWith returns an hourly grid with one cell set; isoDay is 1 for Monday.
func gridWith(t *testing.T, isoDay, hour int) weekly.Grid {
	t.Helper()
	g := make(weekly.Grid, 7)
	for i := range g {
		g[i] = make([]bool, 24)
	}
	g[isoDay%7][hour] = true
	return g
}

// retryingTx выполняет fn дважды: первая попытка откатывается как при serialization failure
type retryingTx struct {
	store    *memory.Store
	attempts int
	nested   int
}

var errSerialization = errors.New("could not serialize access")

func (r *retryingTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.attempts > 0 && ctx.Value(retryingKey{}) != nil {
		r.nested++
	}
	ctx = context.WithValue(ctx, retryingKey{}, true)
	for {
		r.attempts++
		err := r.store.DoSerializable(ctx, func(txCtx context.Context) error {
			if err := fn(txCtx); err != nil {
				return err
			}
			if r.attempts == 1 {
				return errSerialization
			}
			return nil
		})
		if errors.Is(err, errSerialization) {
			continue
		}
		return err
	}
}

type retryingKey struct{}

func TestAddTemplateInterval_RetriedAsOneTransaction(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tx := &retryingTx{store: store}
	svc := NewService(store.Availability(), tx, domain.DefaultPolicy(), logger.NewNop())
	svc.timeProvider = &fixedTime{now: monday.Add(time.Hour)}

	require.NoError(t, store.Availability().ReplaceTemplate(ctx, practitionerID, []weekly.Interval{interval(t, 1, 8, 1, 12)}))

	view, err := svc.AddTemplateInterval(ctx, practitionerID, interval(t, 2, 8, 2, 12))
	require.NoError(t, err)

	assert.Equal(t, 2, tx.attempts)
	assert.Zero(t, tx.nested)
	assert.Equal(t, []weekly.Interval{interval(t, 1, 8, 1, 12), interval(t, 2, 8, 2, 12)}, view.Intervals)

	prev, err := svc.ResolveWeek(ctx, practitionerID, monday.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, domain.WeekCustom, prev.Behavior)
	assert.Equal(t, []weekly.Window{window(monday.AddDate(0, 0, -7).Add(8*time.Hour), 4)}, prev.Windows)
}
