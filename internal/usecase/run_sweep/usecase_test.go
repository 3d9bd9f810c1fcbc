package run_sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

var base = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.AppointmentEvent) error {
	return m.Called(ctx, event).Error(0)
}

// failingRepo fails UpdateStatus for one appointment
type failingRepo struct {
	AppointmentRepository
	failID int64
}

func (r *failingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, by *domain.ActorRole) (*domain.Appointment, error) {
	if id == r.failID {
		return nil, errors.New("connection reset")
	}
	return r.AppointmentRepository.UpdateStatus(ctx, id, from, to, by)
}

type seeded struct {
	status domain.AppointmentStatus
	at     time.Time
}

func seed(t *testing.T, store *memory.Store, items []seeded) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(items))
	for i, it := range items {
		a, err := store.Appointments().Create(context.Background(), &domain.Appointment{
			PatientID:      int64(100 + i),
			PractitionerID: int64(10 + i),
			ScheduledAt:    it.at,
			RequestedAt:    it.at.AddDate(0, 0, -1),
			Duration:       time.Hour,
			Status:         it.status,
		})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	return ids
}

func statuses(t *testing.T, store *memory.Store, ids []int64) []domain.AppointmentStatus {
	t.Helper()
	out := make([]domain.AppointmentStatus, 0, len(ids))
	for _, id := range ids {
		a, err := store.Appointments().GetByID(context.Background(), id)
		require.NoError(t, err)
		out = append(out, a.Status)
	}
	return out
}

func TestExecute_Transitions(t *testing.T) {
	store := memory.NewStore()
	now := base.Add(30 * time.Minute)
	ids := seed(t, store, []seeded{
		{domain.StatusRequested, base},                      // inside window
		{domain.StatusConfirmed, base},                      // inside window
		{domain.StatusInProgress, base},                     // inside window, stays
		{domain.StatusRequested, base.Add(-2 * time.Hour)},  // after window
		{domain.StatusConfirmed, base.Add(-2 * time.Hour)},  // after window
		{domain.StatusInProgress, base.Add(-2 * time.Hour)}, // after window
		{domain.StatusConfirmed, base.Add(2 * time.Hour)},   // before window
		{domain.StatusCancelled, base.Add(-3 * time.Hour)},  // terminal
		{domain.StatusFinished, base.Add(-4 * time.Hour)},   // terminal
	})

	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.AppointmentEvent) bool {
		return e.ActorRole == domain.RoleSystem
	})).Return(nil)

	uc := NewUseCase(store.Appointments(), publisher, 2, nil, logger.NewNop())
	res, err := uc.Execute(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, []domain.AppointmentStatus{
		domain.StatusCancelled,
		domain.StatusInProgress,
		domain.StatusInProgress,
		domain.StatusCancelled,
		domain.StatusFinished,
		domain.StatusFinished,
		domain.StatusConfirmed,
		domain.StatusCancelled,
		domain.StatusFinished,
	}, statuses(t, store, ids))
	assert.Equal(t, 5, res.Transitions)
	assert.Equal(t, 6, res.Scanned)
	publisher.AssertNumberOfCalls(t, "Publish", 5)

	cancelled, err := store.Appointments().GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, domain.RoleSystem, *cancelled.CancelledBy)
}

func TestExecute_Idempotent(t *testing.T) {
	store := memory.NewStore()
	now := base.Add(30 * time.Minute)
	ids := seed(t, store, []seeded{
		{domain.StatusRequested, base},
		{domain.StatusConfirmed, base},
		{domain.StatusConfirmed, base.Add(-2 * time.Hour)},
	})

	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	uc := NewUseCase(store.Appointments(), publisher, 0, nil, logger.NewNop())

	_, err := uc.Execute(context.Background(), now)
	require.NoError(t, err)
	once := statuses(t, store, ids)

	res, err := uc.Execute(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, once, statuses(t, store, ids))
	assert.Zero(t, res.Transitions)
	publisher.AssertNumberOfCalls(t, "Publish", 3)
}

func TestExecute_FailureDoesNotAbortBatch(t *testing.T) {
	store := memory.NewStore()
	ids := seed(t, store, []seeded{
		{domain.StatusConfirmed, base.Add(-2 * time.Hour)},
		{domain.StatusConfirmed, base.Add(-3 * time.Hour)},
		{domain.StatusRequested, base.Add(-4 * time.Hour)},
	})

	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	repo := &failingRepo{AppointmentRepository: store.Appointments(), failID: ids[1]}
	uc := NewUseCase(repo, publisher, 0, nil, logger.NewNop())

	res, err := uc.Execute(context.Background(), base)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Transitions)
	assert.Equal(t, []domain.AppointmentStatus{
		domain.StatusFinished,
		domain.StatusConfirmed,
		domain.StatusCancelled,
	}, statuses(t, store, ids))
}
