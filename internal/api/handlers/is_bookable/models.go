package is_bookable

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
)

// BookableResponse HTTP response model
type BookableResponse struct {
	At       time.Time `json:"at"`
	Bookable bool      `json:"bookable"`
	Reason   string    `json:"reason,omitempty"`
}

func FromUseCaseResult(res *find_slot.BookableResult) BookableResponse {
	return BookableResponse{
		At:       res.At,
		Bookable: res.Bookable,
		Reason:   res.Reason,
	}
}
