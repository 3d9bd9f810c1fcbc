package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
)

// AvailabilityRepository интерфейс репозитория шаблонов, исключений и конфигурации недель
type AvailabilityRepository interface {
	GetTemplate(ctx context.Context, practitionerID int64) ([]weekly.Interval, error)
	ReplaceTemplate(ctx context.Context, practitionerID int64, intervals []weekly.Interval) error

	GetWeekConfig(ctx context.Context, practitionerID int64, weekStart time.Time) (*domain.WeekConfig, error)
	ListWeekConfigs(ctx context.Context, practitionerID int64, from, to time.Time) ([]*domain.WeekConfig, error)
	UpsertWeekConfig(ctx context.Context, cfg *domain.WeekConfig) error
	DeleteWeekConfigsFrom(ctx context.Context, practitionerID int64, weekStart time.Time) error

	GetOverrides(ctx context.Context, practitionerID int64, weekStart time.Time) ([]weekly.Window, error)
	ReplaceOverrides(ctx context.Context, practitionerID int64, weekStart time.Time, windows []weekly.Window) error
	AddOverrides(ctx context.Context, practitionerID int64, weekStart time.Time, windows []weekly.Window) error
	DeleteOverridesFrom(ctx context.Context, practitionerID int64, weekStart time.Time) error
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
