package next_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
)

type SlotFinder interface {
	NextBookable(ctx context.Context, practitionerID int64, from time.Time) (find_slot.Slot, bool, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
