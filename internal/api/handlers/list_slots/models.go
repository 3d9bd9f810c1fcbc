package list_slots

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
)

// SlotResponse HTTP response model
type SlotResponse struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// SlotsResponse свободные слоты недели
type SlotsResponse struct {
	PractitionerID int64          `json:"practitionerId"`
	Slots          []SlotResponse `json:"slots"`
}

func FromUseCaseSlots(practitionerID int64, slots []find_slot.Slot) *SlotsResponse {
	resp := &SlotsResponse{
		PractitionerID: practitionerID,
		Slots:          make([]SlotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, SlotResponse{StartsAt: s.StartsAt, EndsAt: s.EndsAt})
	}
	return resp
}
