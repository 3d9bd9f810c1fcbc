package set_week_behavior

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

const (
	msgInvalidPractitionerID = "некорректный ID специалиста"
	msgInvalidWeek           = "некорректная неделя, ожидается YYYY-MM-DD"
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidBehavior       = "некорректный режим недели, ожидается TEMPLATE, CUSTOM или UNAVAILABLE"
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

// Handle PUT /api/v1/practitioners/{practitionerId}/weeks/{week}/behavior
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/behavior - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}
	week, err := handlers.PathWeek(r, "week")
	if err != nil {
		h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/behavior - Invalid week: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeek)
		return
	}
	if !middleware.IsPractitionerSelf(r.Context(), practitionerID) {
		h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/behavior - Access denied: practitioner_id=%d", practitionerID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var req SetWeekBehaviorRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/behavior - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	view, err := h.service.SetWeekBehavior(r.Context(), practitionerID, week, domain.WeekBehavior(req.Behavior))
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/behavior - Invalid behavior: %q", req.Behavior)
			handlers.RespondBadRequest(w, msgInvalidBehavior)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/behavior - Rejected: practitioner_id=%d, error=%v", practitionerID, err)

		default:
			h.logger.Error("PUT /practitioners/{id}/weeks/{week}/behavior - Failed to set behavior: practitioner_id=%d, error=%v",
				practitionerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /practitioners/{id}/weeks/{week}/behavior - Behavior set: practitioner_id=%d, behavior=%s",
		practitionerID, view.Behavior)
	handlers.RespondJSON(w, http.StatusOK,
		handlers.NewWeekResponse(view.PractitionerID, view.WeekStart, view.Behavior, view.Windows, view.Grid))
}
