package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

// Service сервис для работы с записями: чтение и ручные переходы статусов
type Service struct {
	appointmentRepo AppointmentRepository
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	metrics         *metrics.Metrics
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	metricsCollector *metrics.Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		metrics:         metricsCollector,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Видеть запись могут только ее участники
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for %s=%d", id, actor.Role, actor.ID)

	appointment, err := s.get(ctx, id, "GetByID")
	if err != nil {
		return nil, err
	}

	if !appointment.IsParticipant(actor) {
		s.logger.Warn("GetByID: access denied for %s=%d to appointment id=%d", actor.Role, actor.ID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appointment), nil
}

// List получает записи текущего пользователя с опциональной фильтрацией
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: fetching appointments for %s=%d", req.Actor.Role, req.Actor.ID)

	if req.Actor.Role != domain.RolePatient && req.Actor.Role != domain.RolePractitioner {
		return nil, fmt.Errorf("%w: role %q cannot list appointments", ErrInvalidInput, req.Actor.Role)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d appointments for %s=%d", len(list), req.Actor.Role, req.Actor.ID)
	return models.FromDomainAppointmentList(list), nil
}

// Accept подтверждает запись (SOLICITADA -> CONFIRMADA)
// Подтвердить может только специалист этой записи
func (s *Service) Accept(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("Accept: appointment id=%d by %s=%d", id, actor.Role, actor.ID)

	if actor.Role != domain.RolePractitioner {
		s.logger.Warn("Accept: %s=%d is not a practitioner", actor.Role, actor.ID)
		return nil, ErrAccessDenied
	}

	updated, from, err := s.transition(ctx, id, actor, domain.StatusConfirmed)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, updated, from, actor)
	return models.FromDomainAppointment(updated), nil
}

// Cancel отменяет запись; может любой участник
// Повторная отмена уже отмененной записи ничего не меняет
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: appointment id=%d by %s=%d", id, actor.Role, actor.ID)

	updated, from, err := s.transition(ctx, id, actor, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}

	if from != domain.StatusCancelled {
		s.afterTransition(ctx, updated, from, actor)
	}
	return models.FromDomainAppointment(updated), nil
}

// transition выполняет ручной переход в сериализуемой транзакции
// Возвращает запись после перехода и статус до него
func (s *Service) transition(ctx context.Context, id int64, actor domain.Actor, to domain.AppointmentStatus) (*domain.Appointment, domain.AppointmentStatus, error) {
	var (
		updated *domain.Appointment
		from    domain.AppointmentStatus
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.get(txCtx, id, "transition")
		if err != nil {
			return err
		}
		if !current.IsParticipant(actor) {
			return ErrAccessDenied
		}

		from = current.Status
		if to == domain.StatusCancelled && from == domain.StatusCancelled {
			updated = current
			return nil
		}
		if !domain.CanTransition(from, to, false) {
			return domain.NewValidationError(domain.ErrInvalidStateTransition, "status", from,
				fmt.Sprintf("cannot move appointment id=%d to %s", id, to))
		}

		var cancelledBy *domain.ActorRole
		if to == domain.StatusCancelled {
			cancelledBy = &actor.Role
		}

		updated, err = s.appointmentRepo.UpdateStatus(txCtx, id, from, to, cancelledBy)
		if errors.Is(err, appointmentRepo.ErrStatusChanged) {
			return domain.NewValidationError(domain.ErrInvalidStateTransition, "status", from,
				"status changed concurrently")
		}
		if err != nil {
			return fmt.Errorf("%w: update status: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("transition: appointment id=%d to %s failed: %v", id, to, err)
		return nil, "", err
	}

	return updated, from, nil
}

// afterTransition публикует событие и обновляет метрики после коммита
func (s *Service) afterTransition(ctx context.Context, a *domain.Appointment, from domain.AppointmentStatus, actor domain.Actor) {
	s.metrics.IncTransition(string(from), string(a.Status), "manual")
	s.logger.Info("transition: appointment id=%d %s -> %s", a.ID, from, a.Status)

	event := domain.NewAppointmentEvent(a, from, actor, s.timeProvider.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.IncPublishFailure(string(event.Type))
		s.logger.Error("transition: failed to publish %s for appointment id=%d: %v", event.Type, a.ID, err)
	}
}

func (s *Service) get(ctx context.Context, id int64, op string) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return appointment, nil
}
