package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	profileClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// UseCase use case для создания записи на сессию
type UseCase struct {
	appointmentRepo AppointmentRepository
	slots           SlotChecker
	availability    AvailabilityService
	profileClient   ProfileServiceClient
	locker          Locker
	publisher       EventPublisher
	txManager       TransactionManager
	policy          domain.SchedulingPolicy
	timeProvider    TimeProvider
	metrics         *metrics.Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	slots SlotChecker,
	availability AvailabilityService,
	profileClient ProfileServiceClient,
	locker Locker,
	publisher EventPublisher,
	txManager TransactionManager,
	policy domain.SchedulingPolicy,
	metricsCollector *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		slots:           slots,
		availability:    availability,
		profileClient:   profileClient,
		locker:          locker,
		publisher:       publisher,
		txManager:       txManager,
		policy:          policy,
		timeProvider:    &RealTimeProvider{},
		metrics:         metricsCollector,
		logger:          logger,
	}
}

// Execute создает запись в статусе SOLICITADA
//
// Все проверки выполняются до записи. Занятость специалиста и пациента перепроверяется
// в сериализуемой транзакции под блокировкой слотов; конфликт на этом шаге помечен
// domain.ErrConcurrentBooking, чтобы клиент мог выбрать другой слот.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("CreateAppointment: patient=%d, practitioner=%d, scheduledAt=%s",
		req.PatientID, req.PractitionerID, req.ScheduledAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	at := req.ScheduledAt.UTC()
	end := at.Add(uc.policy.SessionDuration)

	// 2. Время упреждения и кратность длительности сессии
	if err := find_slot.CheckLeadTime(uc.policy, at, now); err != nil {
		uc.logger.Warn("CreateAppointment: %v", err)
		return nil, err
	}
	if err := validateAlignment(at, uc.policy.SessionDuration); err != nil {
		uc.logger.Warn("CreateAppointment: %v", err)
		return nil, err
	}

	// 3. Профиль специалиста
	if err := uc.checkProfile(ctx, req.PractitionerID); err != nil {
		return nil, err
	}

	// 4. Предварительная проверка слота и пациента
	if err := uc.slots.Check(ctx, req.PractitionerID, at, now); err != nil {
		if errors.Is(err, domain.ErrSchedulingConflict) {
			uc.metrics.IncSchedulingConflict("precheck")
		}
		uc.logger.Warn("CreateAppointment: slot check failed: %v", err)
		return nil, err
	}
	if err := uc.checkPatientFree(ctx, req.PatientID, at, end, false); err != nil {
		uc.metrics.IncSchedulingConflict("precheck")
		uc.logger.Warn("CreateAppointment: %v", err)
		return nil, err
	}

	// 5. Блокировка слотов и запись в сериализуемой транзакции
	keys := []string{
		lock.SlotKey(string(domain.RolePractitioner), req.PractitionerID, at),
		lock.SlotKey(string(domain.RolePatient), req.PatientID, at),
	}

	var result *domain.Appointment
	err := uc.locker.WithLock(ctx, keys, func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			created, err := uc.create(txCtx, req, at, end, now)
			if err != nil {
				return err
			}
			result = created
			return nil
		})
	})
	if err != nil {
		if conflict := asWriteConflict(err, at); conflict != nil {
			uc.metrics.IncSchedulingConflict("write")
			uc.logger.Warn("CreateAppointment: write-time conflict for practitioner=%d at %s: %v",
				req.PractitionerID, at.Format(time.RFC3339), err)
			return nil, conflict
		}
		uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
		return nil, err
	}

	uc.metrics.IncAppointmentCreated()
	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)

	// 6. Событие публикуется после коммита; ошибка публикации не откатывает запись
	event := domain.NewAppointmentEvent(result, "", domain.Actor{ID: req.PatientID, Role: domain.RolePatient}, now)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.metrics.IncPublishFailure(string(event.Type))
		uc.logger.Error("CreateAppointment: failed to publish %s for appointment id=%d: %v", event.Type, result.ID, err)
	}

	return result, nil
}

// create перепроверяет слот внутри транзакции и сохраняет запись
func (uc *UseCase) create(ctx context.Context, req *Request, at, end, now time.Time) (*domain.Appointment, error) {
	if err := uc.slots.Check(ctx, req.PractitionerID, at, now); err != nil {
		if errors.Is(err, domain.ErrSchedulingConflict) {
			return nil, domain.NewWriteConflict("scheduledAt", at.Format(time.RFC3339), "practitioner slot was taken")
		}
		return nil, err
	}
	if err := uc.checkPatientFree(ctx, req.PatientID, at, end, true); err != nil {
		return nil, err
	}

	created, err := uc.appointmentRepo.Create(ctx, &domain.Appointment{
		PatientID:      req.PatientID,
		PractitionerID: req.PractitionerID,
		ScheduledAt:    at,
		RequestedAt:    now.UTC(),
		Duration:       uc.policy.SessionDuration,
		Status:         domain.StatusRequested,
	})
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrOverlap) {
			return nil, domain.NewWriteConflict("scheduledAt", at.Format(time.RFC3339), "session overlaps another appointment")
		}
		return nil, fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
	}

	return created, nil
}

func (uc *UseCase) checkProfile(ctx context.Context, practitionerID int64) error {
	profile, err := uc.profileClient.GetPractitioner(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, profileClient.ErrPractitionerNotFound) {
			uc.logger.Warn("CreateAppointment: practitioner id=%d not found", practitionerID)
			return ErrPractitionerNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get practitioner id=%d: %v", practitionerID, err)
		return fmt.Errorf("%w: failed to get practitioner: %w", ErrInternal, err)
	}

	hasAvailability, err := uc.availability.HasAvailability(ctx, practitionerID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to check availability of practitioner id=%d: %v", practitionerID, err)
		return fmt.Errorf("%w: failed to check availability: %w", ErrInternal, err)
	}

	if err := validateProfile(profile, hasAvailability); err != nil {
		uc.logger.Warn("CreateAppointment: %v", err)
		return err
	}
	return nil
}

func (uc *UseCase) checkPatientFree(ctx context.Context, patientID int64, at, end time.Time, writeTime bool) error {
	busy, err := uc.appointmentRepo.ListActiveByPatient(ctx, patientID, at, end)
	if err != nil {
		return fmt.Errorf("%w: failed to list patient appointments: %w", ErrInternal, err)
	}
	if len(busy) == 0 {
		return nil
	}

	reason := fmt.Sprintf("patient already has appointment id=%d", busy[0].ID)
	if writeTime {
		return domain.NewWriteConflict("patientId", patientID, reason)
	}
	return domain.NewValidationError(domain.ErrSchedulingConflict, "patientId", patientID, reason)
}

// asWriteConflict приводит ошибки параллельной записи к конфликту, который можно повторить с другим слотом
func asWriteConflict(err error, at time.Time) error {
	switch {
	case domain.IsRetryableConflict(err):
		return err
	case errors.Is(err, lock.ErrLockNotAcquired):
		return domain.NewWriteConflict("scheduledAt", at.Format(time.RFC3339), "slot is being booked concurrently")
	case errors.Is(err, txmanager.ErrSerializationFailure):
		return domain.NewWriteConflict("scheduledAt", at.Format(time.RFC3339), "concurrent transaction won the slot")
	default:
		return nil
	}
}
