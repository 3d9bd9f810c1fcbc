package add_template_interval

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

type AvailabilityService interface {
	AddTemplateInterval(ctx context.Context, practitionerID int64, interval weekly.Interval) (*availability.TemplateView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
