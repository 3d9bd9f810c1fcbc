package next_slot

import "time"

// NextSlotResponse HTTP response model; Found == false, если слота нет до горизонта записи
type NextSlotResponse struct {
	Found    bool       `json:"found"`
	StartsAt *time.Time `json:"startsAt,omitempty"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`
}
