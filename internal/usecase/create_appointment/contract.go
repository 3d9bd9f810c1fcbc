package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	ListActiveByPractitioner(ctx context.Context, practitionerID int64, from, to time.Time) ([]*domain.Appointment, error)
	ListActiveByPatient(ctx context.Context, patientID int64, from, to time.Time) ([]*domain.Appointment, error)
}

// SlotChecker проверяет момент записи: время упреждения, доступность и занятость специалиста
type SlotChecker interface {
	Check(ctx context.Context, practitionerID int64, at, now time.Time) error
}

// AvailabilityService интерфейс сервиса доступности
type AvailabilityService interface {
	HasAvailability(ctx context.Context, practitionerID int64) (bool, error)
}

// ProfileServiceClient интерфейс клиента для ProfileService
type ProfileServiceClient interface {
	GetPractitioner(ctx context.Context, practitionerID int64) (*domain.PractitionerProfile, error)
}

// Locker распределенная блокировка слотов участников
type Locker interface {
	WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// EventPublisher публикует события записей после коммита
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AppointmentEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
