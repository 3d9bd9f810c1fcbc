package add_template_interval

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

const (
	msgInvalidPractitionerID = "некорректный ID специалиста"
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgForbidden             = "изменять расписание может только сам специалист"
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

// Handle POST /api/v1/practitioners/{practitionerId}/template/intervals
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("POST /practitioners/{id}/template/intervals - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}
	if !middleware.IsPractitionerSelf(r.Context(), practitionerID) {
		h.logger.Warn("POST /practitioners/{id}/template/intervals - Access denied: practitioner_id=%d", practitionerID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var req AddIntervalRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /practitioners/{id}/template/intervals - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	view, err := h.add(r, practitionerID, &req)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /practitioners/{id}/template/intervals - Rejected: practitioner_id=%d, error=%v", practitionerID, err)
			return
		}
		h.logger.Error("POST /practitioners/{id}/template/intervals - Failed to add interval: practitioner_id=%d, error=%v",
			practitionerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /practitioners/{id}/template/intervals - Interval added: practitioner_id=%d, intervals=%d",
		practitionerID, len(view.Intervals))
	handlers.RespondJSON(w, http.StatusCreated, handlers.NewTemplateResponse(view.PractitionerID, view.Intervals, view.Grid))
}

func (h *Handler) add(r *http.Request, practitionerID int64, req *AddIntervalRequest) (*availability.TemplateView, error) {
	loc, err := handlers.LoadLocation(req.Timezone)
	if err != nil {
		return nil, err
	}
	interval, err := req.IntervalDTO.ToDomain(loc)
	if err != nil {
		return nil, err
	}
	return h.service.AddTemplateInterval(r.Context(), practitionerID, interval)
}
