package run_sweep

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

// DefaultBatchSize размер страницы при обходе записей
const DefaultBatchSize = 100

// UseCase автоматические переходы статусов по времени
type UseCase struct {
	appointmentRepo AppointmentRepository
	publisher       EventPublisher
	batchSize       int
	metrics         *metrics.Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	publisher EventPublisher,
	batchSize int,
	metricsCollector *metrics.Metrics,
	logger Logger,
) *UseCase {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		publisher:       publisher,
		batchSize:       batchSize,
		metrics:         metricsCollector,
		logger:          logger,
	}
}

// Execute переводит все начавшиеся активные записи в положенный к моменту now статус
//
// Каждый переход условный (по текущему статусу), поэтому проход можно прерывать и повторять.
// Ошибка на одной записи не останавливает проход.
func (uc *UseCase) Execute(ctx context.Context, now time.Time) (*Result, error) {
	result := &Result{}
	var afterID int64

	for {
		batch, err := uc.appointmentRepo.ListDue(ctx, now, afterID, uc.batchSize)
		if err != nil {
			uc.logger.Error("RunSweep: failed to list due appointments after id=%d: %v", afterID, err)
			return result, err
		}
		if len(batch) == 0 {
			break
		}

		for _, a := range batch {
			afterID = a.ID
			result.Scanned++
			uc.apply(ctx, a, now, result)
		}

		if len(batch) < uc.batchSize {
			break
		}
	}

	if result.Transitions > 0 || result.Failed > 0 {
		uc.logger.Info("RunSweep: scanned=%d transitions=%d skipped=%d failed=%d",
			result.Scanned, result.Transitions, result.Skipped, result.Failed)
	}
	return result, nil
}

func (uc *UseCase) apply(ctx context.Context, a *domain.Appointment, now time.Time, result *Result) {
	next, ok := a.AutomaticTransition(now)
	if !ok {
		return
	}

	if !domain.CanTransition(a.Status, next, true) {
		result.Failed++
		uc.logger.Error("RunSweep: refused transition %s -> %s for appointment id=%d", a.Status, next, a.ID)
		return
	}

	var cancelledBy *domain.ActorRole
	if next == domain.StatusCancelled {
		role := domain.RoleSystem
		cancelledBy = &role
	}

	from := a.Status
	updated, err := uc.appointmentRepo.UpdateStatus(ctx, a.ID, from, next, cancelledBy)
	switch {
	case errors.Is(err, appointmentRepo.ErrStatusChanged):
		result.Skipped++
		return
	case err != nil:
		result.Failed++
		uc.logger.Error("RunSweep: failed to move appointment id=%d %s -> %s: %v", a.ID, from, next, err)
		return
	}

	result.Transitions++
	uc.metrics.IncTransition(string(from), string(next), "sweep")

	event := domain.NewAppointmentEvent(updated, from, domain.SystemActor, now)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.metrics.IncPublishFailure(string(event.Type))
		uc.logger.Error("RunSweep: failed to publish %s for appointment id=%d: %v", event.Type, a.ID, err)
	}
}
