package get_template

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

type AvailabilityService interface {
	GetTemplate(ctx context.Context, practitionerID int64) (*availability.TemplateView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
