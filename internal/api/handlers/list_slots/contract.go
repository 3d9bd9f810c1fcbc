package list_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
)

type SlotFinder interface {
	ListBookable(ctx context.Context, practitionerID int64, week time.Time) ([]find_slot.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
