package is_bookable

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
)

type SlotFinder interface {
	IsBookable(ctx context.Context, practitionerID int64, at time.Time) (*find_slot.BookableResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
