package run_sweep

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListDue(ctx context.Context, now time.Time, afterID int64, limit int) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, cancelledBy *domain.ActorRole) (*domain.Appointment, error)
}

// EventPublisher публикует события записей после коммита
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AppointmentEvent) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
