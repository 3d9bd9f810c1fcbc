package list_slots

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const (
	msgInvalidPractitionerID = "некорректный ID специалиста"
	msgInvalidWeek           = "некорректная неделя, ожидается YYYY-MM-DD"
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

// Handle GET /api/v1/practitioners/{practitionerId}/weeks/{week}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/weeks/{week}/slots - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}
	week, err := handlers.PathWeek(r, "week")
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/weeks/{week}/slots - Invalid week: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeek)
		return
	}

	slots, err := h.finder.ListBookable(r.Context(), practitionerID, week)
	if err != nil {
		h.logger.Error("GET /practitioners/{id}/weeks/{week}/slots - Failed to list slots: practitioner_id=%d, error=%v",
			practitionerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /practitioners/{id}/weeks/{week}/slots - Slots listed: practitioner_id=%d, count=%d",
		practitionerID, len(slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseSlots(practitionerID, slots))
}
