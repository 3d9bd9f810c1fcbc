package find_slot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

const practitionerID int64 = 3

// monday 2025-03-03 00:00 UTC
var monday = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type fixture struct {
	uc    *UseCase
	store *memory.Store
}

func newFixture(t *testing.T, template ...weekly.Interval) *fixture {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Availability().ReplaceTemplate(context.Background(), practitionerID, template))

	log := logger.NewNop()
	policy := domain.DefaultPolicy()
	resolver := availability.NewService(store.Availability(), store, policy, log)
	return &fixture{
		uc:    NewUseCase(resolver, store.Appointments(), policy, log),
		store: store,
	}
}

func (f *fixture) book(t *testing.T, at time.Time, status domain.AppointmentStatus) {
	t.Helper()
	_, err := f.store.Appointments().Create(context.Background(), &domain.Appointment{
		PatientID:      int64(at.Unix()),
		PractitionerID: practitionerID,
		ScheduledAt:    at,
		RequestedAt:    at.Add(-48 * time.Hour),
		Duration:       time.Hour,
		Status:         status,
	})
	require.NoError(t, err)
}

func interval(t *testing.T, startDay, sh, endDay, eh int) weekly.Interval {
	t.Helper()
	iv, err := weekly.ParseInterval(startDay, time.Duration(sh)*time.Hour, endDay, time.Duration(eh)*time.Hour, time.UTC)
	require.NoError(t, err)
	return iv
}

func TestNextBookable_MondayMorning(t *testing.T) {
	f := newFixture(t, interval(t, 1, 8, 1, 12))

	from := monday.Add(7*time.Hour + 30*time.Minute)
	slot, ok, err := f.uc.NextBookable(context.Background(), practitionerID, from)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, monday.Add(9*time.Hour), slot.StartsAt)
	assert.Equal(t, monday.Add(10*time.Hour), slot.EndsAt)
}

func TestNextBookable_SkipsTakenSlots(t *testing.T) {
	f := newFixture(t, interval(t, 1, 8, 1, 12))
	f.book(t, monday.Add(9*time.Hour), domain.StatusConfirmed)
	f.book(t, monday.Add(10*time.Hour), domain.StatusCancelled)

	slot, ok, err := f.uc.NextBookable(context.Background(), practitionerID, monday.Add(7*time.Hour+30*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, monday.Add(10*time.Hour), slot.StartsAt)
}

func TestNextBookable_WrapsToNextWeek(t *testing.T) {
	f := newFixture(t, interval(t, 1, 8, 1, 12))

	slot, ok, err := f.uc.NextBookable(context.Background(), practitionerID, monday.Add(11*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, monday.AddDate(0, 0, 7).Add(8*time.Hour), slot.StartsAt)
}

func TestNextBookable_WrappingInterval(t *testing.T) {
	f := newFixture(t, interval(t, 7, 22, 1, 2)) // Sun 22:00 -> Mon 02:00

	from := monday.Add(-3 * time.Hour) // Sun 21:00
	var got []time.Time
	for i := 0; i < 4; i++ {
		slot, ok, err := f.uc.NextBookable(context.Background(), practitionerID, from)
		require.NoError(t, err)
		require.True(t, ok)
		got = append(got, slot.StartsAt)
		f.book(t, slot.StartsAt, domain.StatusRequested)
	}

	assert.Equal(t, []time.Time{
		monday.Add(-2 * time.Hour),
		monday.Add(-1 * time.Hour),
		monday,
		monday.Add(time.Hour),
	}, got)
}

func TestNextBookable_NoneWithinMaxLead(t *testing.T) {
	f := newFixture(t)

	_, ok, err := f.uc.NextBookable(context.Background(), practitionerID, monday)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsBookable_LeadTimeBoundaries(t *testing.T) {
	f := newFixture(t, weekly.WholeWeek)
	now := monday.Add(10*time.Hour + 17*time.Minute + 33*time.Second)
	f.uc.timeProvider = &fixedTime{now: now}

	cases := map[string]struct {
		at   time.Time
		want bool
	}{
		"exactly min lead":     {at: now.Add(time.Hour), want: true},
		"one second too soon":  {at: now.Add(59*time.Minute + 59*time.Second), want: false},
		"exactly max lead":     {at: now.Add(60 * 24 * time.Hour), want: true},
		"one millisecond late": {at: now.Add(60*24*time.Hour + time.Millisecond), want: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := f.uc.IsBookable(context.Background(), practitionerID, tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Bookable, res.Reason)
		})
	}
}

func TestCheck_Errors(t *testing.T) {
	f := newFixture(t, interval(t, 1, 8, 1, 12))
	now := monday.AddDate(0, 0, -3)
	f.book(t, monday.Add(10*time.Hour), domain.StatusRequested)

	ctx := context.Background()
	assert.NoError(t, f.uc.Check(ctx, practitionerID, monday.Add(8*time.Hour), now))
	assert.NoError(t, f.uc.Check(ctx, practitionerID, monday.Add(11*time.Hour), now))

	err := f.uc.Check(ctx, practitionerID, monday.Add(11*time.Hour+30*time.Minute), now)
	assert.ErrorIs(t, err, domain.ErrNoAvailabilityAtInstant)

	err = f.uc.Check(ctx, practitionerID, monday.Add(7*time.Hour), now)
	assert.ErrorIs(t, err, domain.ErrNoAvailabilityAtInstant)

	err = f.uc.Check(ctx, practitionerID, monday.Add(10*time.Hour+30*time.Minute), now)
	assert.ErrorIs(t, err, domain.ErrSchedulingConflict)
	assert.False(t, domain.IsRetryableConflict(err))

	err = f.uc.Check(ctx, practitionerID, monday.Add(8*time.Hour), monday.Add(7*time.Hour+1))
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ErrorIs(t, err, domain.ErrLeadTimeViolation)
	assert.Equal(t, "scheduledAt", vErr.Field)
}

func TestCheck_SessionAcrossWeekBoundary(t *testing.T) {
	f := newFixture(t, weekly.WholeWeek)

	at := monday.AddDate(0, 0, 7).Add(-30 * time.Minute) // Sun 23:30
	assert.NoError(t, f.uc.Check(context.Background(), practitionerID, at, monday))
}

func TestListBookable(t *testing.T) {
	f := newFixture(t, interval(t, 1, 8, 1, 12), interval(t, 3, 14, 3, 16))
	f.uc.timeProvider = &fixedTime{now: monday.Add(7*time.Hour + 30*time.Minute)}
	f.book(t, monday.Add(10*time.Hour), domain.StatusConfirmed)

	slots, err := f.uc.ListBookable(context.Background(), practitionerID, monday.Add(72*time.Hour))
	require.NoError(t, err)

	var starts []time.Time
	for _, s := range slots {
		starts = append(starts, s.StartsAt)
	}
	assert.Equal(t, []time.Time{
		monday.Add(9 * time.Hour),
		monday.Add(11 * time.Hour),
		monday.Add(2*24*time.Hour + 14*time.Hour),
		monday.Add(2*24*time.Hour + 15*time.Hour),
	}, starts)
}

func TestCheck_SessionAcrossAdjacentWindows(t *testing.T) {
	f := newFixture(t, interval(t, 1, 8, 1, 9)) // Mon 08:00-09:00
	require.NoError(t, f.store.Availability().AddOverrides(context.Background(), practitionerID, monday,
		[]weekly.Window{{Start: monday.Add(9*time.Hour + 30*time.Minute), End: monday.Add(12 * time.Hour)}}))
	require.NoError(t, f.store.Availability().AddOverrides(context.Background(), practitionerID, monday,
		[]weekly.Window{{Start: monday.Add(9 * time.Hour), End: monday.Add(9*time.Hour + 30*time.Minute)}}))
	now := monday.AddDate(0, 0, -3)
	ctx := context.Background()

	assert.NoError(t, f.uc.Check(ctx, practitionerID, monday.Add(8*time.Hour), now))
	assert.NoError(t, f.uc.Check(ctx, practitionerID, monday.Add(10*time.Hour), now))

	// 09:00-10:00 touches two windows but fits in neither
	err := f.uc.Check(ctx, practitionerID, monday.Add(9*time.Hour), now)
	assert.ErrorIs(t, err, domain.ErrNoAvailabilityAtInstant)

	f.uc.timeProvider = &fixedTime{now: now}
	slots, err := f.uc.ListBookable(ctx, practitionerID, monday)
	require.NoError(t, err)
	var starts []time.Time
	for _, s := range slots {
		starts = append(starts, s.StartsAt)
	}
	assert.Equal(t, []time.Time{
		monday.Add(8 * time.Hour),
		monday.Add(10 * time.Hour),
		monday.Add(11 * time.Hour),
	}, starts)
}

func TestFilterBookable(t *testing.T) {
	const (
		mondayMornings int64 = 3
		wednesdays     int64 = 4
		noTemplate     int64 = 5
	)
	f := newFixture(t, interval(t, 1, 8, 1, 12))
	require.NoError(t, f.store.Availability().ReplaceTemplate(context.Background(), wednesdays,
		[]weekly.Interval{interval(t, 3, 8, 3, 12)}))
	f.uc.timeProvider = &fixedTime{now: monday.AddDate(0, 0, -3)}
	f.book(t, monday.Add(10*time.Hour), domain.StatusRequested)

	cases := []struct {
		name string
		ids  []int64
		at   time.Time
		want []int64
	}{
		{
			name: "free monday slot",
			ids:  []int64{wednesdays, mondayMornings, noTemplate},
			at:   monday.Add(9 * time.Hour),
			want: []int64{mondayMornings},
		},
		{
			name: "taken monday slot",
			ids:  []int64{mondayMornings, wednesdays},
			at:   monday.Add(10 * time.Hour),
			want: []int64{},
		},
		{
			name: "wednesday keeps input order and drops repeats",
			ids:  []int64{wednesdays, noTemplate, wednesdays},
			at:   monday.AddDate(0, 0, 2).Add(8 * time.Hour),
			want: []int64{wednesdays},
		},
		{
			name: "too soon for everybody",
			ids:  []int64{mondayMornings, wednesdays},
			at:   monday.AddDate(0, 0, -3),
			want: []int64{},
		},
		{
			name: "empty list",
			ids:  nil,
			at:   monday.Add(9 * time.Hour),
			want: []int64{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.uc.FilterBookable(context.Background(), tc.ids, tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFilterBookable_TooManyPractitioners(t *testing.T) {
	f := newFixture(t)
	ids := make([]int64, MaxFilterPractitioners+1)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	_, err := f.uc.FilterBookable(context.Background(), ids, monday)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
