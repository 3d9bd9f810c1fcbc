package get_week

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const (
	msgInvalidPractitionerID = "некорректный ID специалиста"
	msgInvalidWeek           = "некорректная неделя, ожидается YYYY-MM-DD"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/practitioners/{practitionerId}/weeks/{week}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/weeks/{week} - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}
	week, err := handlers.PathWeek(r, "week")
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/weeks/{week} - Invalid week: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeek)
		return
	}

	view, err := h.service.GetWeek(r.Context(), practitionerID, week)
	if err != nil {
		h.logger.Error("GET /practitioners/{id}/weeks/{week} - Failed to resolve week: practitioner_id=%d, error=%v",
			practitionerID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK,
		handlers.NewWeekResponse(view.PractitionerID, view.WeekStart, view.Behavior, view.Windows, view.Grid))
}
