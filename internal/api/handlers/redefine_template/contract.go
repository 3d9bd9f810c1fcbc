package redefine_template

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

type AvailabilityService interface {
	RedefineTemplateFrom(ctx context.Context, practitionerID int64, week time.Time, intervals []weekly.Interval) (*availability.TemplateView, error)
	RedefineTemplateFromGrid(ctx context.Context, practitionerID int64, week time.Time, grid weekly.Grid) (*availability.TemplateView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
