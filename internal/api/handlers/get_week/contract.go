package get_week

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

type AvailabilityService interface {
	GetWeek(ctx context.Context, practitionerID int64, week time.Time) (*availability.WeekView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
