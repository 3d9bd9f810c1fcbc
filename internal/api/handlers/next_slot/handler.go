package next_slot

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const (
	msgInvalidPractitionerID = "некорректный ID специалиста"
	msgInvalidFrom           = "некорректный параметр from, ожидается RFC3339"
)

type Handler struct {
	finder SlotFinder
	logger Logger
}

func NewHandler(finder SlotFinder, logger Logger) *Handler {
	return &Handler{
		finder: finder,
		logger: logger,
	}
}

// Handle GET /api/v1/practitioners/{practitionerId}/next-slot?from=RFC3339
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/next-slot - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}
	from, err := handlers.QueryTime(r, "from", time.Now().UTC())
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/next-slot - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFrom)
		return
	}

	slot, ok, err := h.finder.NextBookable(r.Context(), practitionerID, from)
	if err != nil {
		h.logger.Error("GET /practitioners/{id}/next-slot - Failed to find slot: practitioner_id=%d, error=%v",
			practitionerID, err)
		handlers.RespondInternalError(w)
		return
	}

	resp := NextSlotResponse{Found: ok}
	if ok {
		resp.StartsAt = &slot.StartsAt
		resp.EndsAt = &slot.EndsAt
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}
