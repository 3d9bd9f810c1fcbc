package get_template

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const (
	msgInvalidPractitionerID = "некорректный ID специалиста"
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

// Handle GET /api/v1/practitioners/{practitionerId}/template
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/template - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}

	view, err := h.service.GetTemplate(r.Context(), practitionerID)
	if err != nil {
		h.logger.Error("GET /practitioners/{id}/template - Failed to get template: practitioner_id=%d, error=%v",
			practitionerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /practitioners/{id}/template - Template retrieved: practitioner_id=%d, intervals=%d",
		practitionerID, len(view.Intervals))
	handlers.RespondJSON(w, http.StatusOK, handlers.NewTemplateResponse(view.PractitionerID, view.Intervals, view.Grid))
}
