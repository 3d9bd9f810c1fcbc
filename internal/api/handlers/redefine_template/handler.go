package redefine_template

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

const (
	msgInvalidPractitionerID = "некорректный ID специалиста"
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidWeek           = "некорректная неделя, ожидается YYYY-MM-DD"
	msgGridOrIntervals       = "нужно передать либо grid, либо intervals"
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

// Handle PUT /api/v1/practitioners/{practitionerId}/template
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("PUT /practitioners/{id}/template - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}
	if !middleware.IsPractitionerSelf(r.Context(), practitionerID) {
		h.logger.Warn("PUT /practitioners/{id}/template - Access denied: practitioner_id=%d", practitionerID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var req RedefineTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /practitioners/{id}/template - Invalid request body: %v", err)
		if !handlers.RespondDomainError(w, err) {
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
		}
		return
	}
	week, err := time.Parse(domain.DateFormat, req.FromWeek)
	if err != nil {
		h.logger.Warn("PUT /practitioners/{id}/template - Invalid fromWeek: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeek)
		return
	}
	if (req.Grid == nil) == (req.Intervals == nil) {
		handlers.RespondBadRequest(w, msgGridOrIntervals)
		return
	}

	var view *availability.TemplateView
	if req.Grid != nil {
		view, err = h.service.RedefineTemplateFromGrid(r.Context(), practitionerID, week, req.Grid)
	} else {
		view, err = h.redefineFromIntervals(r, practitionerID, week, &req)
	}
	if err != nil {
		switch {
		case handlers.RespondDomainError(w, err):
			h.logger.Warn("PUT /practitioners/{id}/template - Rejected: practitioner_id=%d, error=%v", practitionerID, err)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("PUT /practitioners/{id}/template - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PUT /practitioners/{id}/template - Failed to redefine template: practitioner_id=%d, error=%v",
				practitionerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /practitioners/{id}/template - Template redefined: practitioner_id=%d, from_week=%s",
		practitionerID, req.FromWeek)
	handlers.RespondJSON(w, http.StatusOK, handlers.NewTemplateResponse(view.PractitionerID, view.Intervals, view.Grid))
}

func (h *Handler) redefineFromIntervals(r *http.Request, practitionerID int64, week time.Time, req *RedefineTemplateRequest) (*availability.TemplateView, error) {
	loc, err := handlers.LoadLocation(req.Timezone)
	if err != nil {
		return nil, err
	}
	intervals, err := handlers.IntervalsToDomain(req.Intervals, loc)
	if err != nil {
		return nil, err
	}
	return h.service.RedefineTemplateFrom(r.Context(), practitionerID, week, intervals)
}
