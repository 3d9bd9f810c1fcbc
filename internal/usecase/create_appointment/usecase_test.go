package create_appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/lock"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	profileClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

const (
	practitionerID      int64 = 3
	otherPractitionerID int64 = 4
	patientID           int64 = 100
)

// monday 2025-03-03 00:00 UTC
var monday = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type MockProfileClient struct {
	mock.Mock
}

func (m *MockProfileClient) GetPractitioner(ctx context.Context, id int64) (*domain.PractitionerProfile, error) {
	args := m.Called(ctx, id)
	profile, _ := args.Get(0).(*domain.PractitionerProfile)
	return profile, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.AppointmentEvent) error {
	return m.Called(ctx, event).Error(0)
}

type fixture struct {
	uc        *UseCase
	store     *memory.Store
	profiles  *MockProfileClient
	publisher *MockPublisher
}

func completeProfile(id int64) *domain.PractitionerProfile {
	return &domain.PractitionerProfile{ID: id, Price: ptr.Ptr(150.0), Specialties: []string{"cbt"}}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	morning, err := weekly.ParseInterval(1, 8*time.Hour, 1, 12*time.Hour, time.UTC)
	require.NoError(t, err)
	require.NoError(t, store.Availability().ReplaceTemplate(ctx, practitionerID, []weekly.Interval{morning}))
	require.NoError(t, store.Availability().ReplaceTemplate(ctx, otherPractitionerID, []weekly.Interval{morning}))

	log := logger.NewNop()
	policy := domain.DefaultPolicy()
	availabilitySvc := availability.NewService(store.Availability(), store, policy, log)
	finder := find_slot.NewUseCase(availabilitySvc, store.Appointments(), policy, log)

	profiles := &MockProfileClient{}
	profiles.On("GetPractitioner", mock.Anything, practitionerID).Return(completeProfile(practitionerID), nil).Maybe()
	profiles.On("GetPractitioner", mock.Anything, otherPractitionerID).Return(completeProfile(otherPractitionerID), nil).Maybe()

	publisher := &MockPublisher{}

	uc := NewUseCase(store.Appointments(), finder, availabilitySvc, profiles, lock.NoopLocker{}, publisher,
		store, policy, nil, log)
	uc.timeProvider = &fixedTime{now: monday.AddDate(0, 0, -2)}

	return &fixture{uc: uc, store: store, profiles: profiles, publisher: publisher}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.AppointmentEvent) bool {
		return e.Type == domain.EventAppointmentRequested && e.ActorRole == domain.RolePatient && e.To == domain.StatusRequested
	})).Return(nil).Once()

	got, err := f.uc.Execute(context.Background(), &Request{
		PatientID:      patientID,
		PractitionerID: practitionerID,
		ScheduledAt:    monday.Add(9 * time.Hour),
	})
	require.NoError(t, err)

	assert.NotZero(t, got.ID)
	assert.Equal(t, domain.StatusRequested, got.Status)
	assert.Equal(t, time.Hour, got.Duration)
	assert.Equal(t, monday.AddDate(0, 0, -2), got.RequestedAt)
	f.publisher.AssertExpectations(t)
}

func TestExecute_PublishFailureKeepsAppointment(t *testing.T) {
	f := newFixture(t)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	got, err := f.uc.Execute(context.Background(), &Request{
		PatientID:      patientID,
		PractitionerID: practitionerID,
		ScheduledAt:    monday.Add(9 * time.Hour),
	})
	require.NoError(t, err)

	stored, err := f.store.Appointments().GetByID(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRequested, stored.Status)
}

func TestExecute_ConcurrentBookingsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	const attempts = 2
	var (
		wg   sync.WaitGroup
		errs = make([]error, attempts)
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.uc.Execute(context.Background(), &Request{
				PatientID:      patientID + int64(i),
				PractitionerID: practitionerID,
				ScheduledAt:    monday.Add(9 * time.Hour),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrSchedulingConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicts)

	active, err := f.store.Appointments().ListActiveByPractitioner(context.Background(), practitionerID,
		monday.Add(9*time.Hour), monday.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestExecute_ValidationErrors(t *testing.T) {
	cases := map[string]struct {
		req     *Request
		profile *domain.PractitionerProfile
		wantErr error
	}{
		"invalid ids": {
			req:     &Request{PatientID: 0, PractitionerID: practitionerID, ScheduledAt: monday.Add(9 * time.Hour)},
			wantErr: ErrInvalidInput,
		},
		"too soon": {
			req:     &Request{PatientID: patientID, PractitionerID: practitionerID, ScheduledAt: monday.AddDate(0, 0, -2).Add(30 * time.Minute)},
			wantErr: domain.ErrLeadTimeViolation,
		},
		"too far": {
			req:     &Request{PatientID: patientID, PractitionerID: practitionerID, ScheduledAt: monday.AddDate(0, 0, 70).Add(9 * time.Hour)},
			wantErr: domain.ErrLeadTimeViolation,
		},
		"not aligned": {
			req:     &Request{PatientID: patientID, PractitionerID: practitionerID, ScheduledAt: monday.Add(9*time.Hour + 30*time.Minute)},
			wantErr: domain.ErrNotDivisibleBySessionDuration,
		},
		"outside availability": {
			req:     &Request{PatientID: patientID, PractitionerID: practitionerID, ScheduledAt: monday.Add(14 * time.Hour)},
			wantErr: domain.ErrNoAvailabilityAtInstant,
		},
		"profile without price": {
			req:     &Request{PatientID: patientID, PractitionerID: 9, ScheduledAt: monday.Add(9 * time.Hour)},
			profile: &domain.PractitionerProfile{ID: 9, Specialties: []string{"cbt"}},
			wantErr: domain.ErrPractitionerProfileIncomplete,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			if tc.profile != nil {
				f.profiles.On("GetPractitioner", mock.Anything, tc.profile.ID).Return(tc.profile, nil)
			}

			_, err := f.uc.Execute(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
			f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_PractitionerNotFound(t *testing.T) {
	f := newFixture(t)
	f.profiles.On("GetPractitioner", mock.Anything, int64(42)).Return(nil, profileClient.ErrPractitionerNotFound)

	_, err := f.uc.Execute(context.Background(), &Request{
		PatientID:      patientID,
		PractitionerID: 42,
		ScheduledAt:    monday.Add(9 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrPractitionerNotFound)
}

func TestExecute_PatientDoubleBooking(t *testing.T) {
	f := newFixture(t)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{PatientID: patientID, PractitionerID: practitionerID, ScheduledAt: monday.Add(9 * time.Hour)})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{PatientID: patientID, PractitionerID: otherPractitionerID, ScheduledAt: monday.Add(9 * time.Hour)})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ErrorIs(t, err, domain.ErrSchedulingConflict)
	assert.Equal(t, "patientId", vErr.Field)
	assert.False(t, domain.IsRetryableConflict(err))

	_, err = f.uc.Execute(ctx, &Request{PatientID: patientID, PractitionerID: otherPractitionerID, ScheduledAt: monday.Add(10 * time.Hour)})
	assert.NoError(t, err)
}
