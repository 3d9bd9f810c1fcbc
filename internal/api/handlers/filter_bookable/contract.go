package filter_bookable

import (
	"context"
	"time"
)

type SlotFinder interface {
	FilterBookable(ctx context.Context, practitionerIDs []int64, at time.Time) ([]int64, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
