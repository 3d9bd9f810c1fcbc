package save_week_grid

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

// Handle PUT /api/v1/practitioners/{practitionerId}/weeks/{week}/grid
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/grid - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}
	week, err := handlers.PathWeek(r, "week")
	if err != nil {
		h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/grid - Invalid week: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeek)
		return
	}
	if !middleware.IsPractitionerSelf(r.Context(), practitionerID) {
		h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/grid - Access denied: practitioner_id=%d", practitionerID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var req SaveWeekGridRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/grid - Invalid request body: %v", err)
		if !handlers.RespondDomainError(w, err) {
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
		}
		return
	}

	view, err := h.service.SaveWeekGrid(r.Context(), practitionerID, week, req.Grid)
	if err != nil {
		switch {
		case handlers.RespondDomainError(w, err):
			h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/grid - Rejected: practitioner_id=%d, error=%v", practitionerID, err)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("PUT /practitioners/{id}/weeks/{week}/grid - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PUT /practitioners/{id}/weeks/{week}/grid - Failed to save week: practitioner_id=%d, error=%v",
				practitionerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /practitioners/{id}/weeks/{week}/grid - Week saved: practitioner_id=%d, week=%s, windows=%d",
		practitionerID, view.WeekStart.Format(domain.DateFormat), len(view.Windows))
	handlers.RespondJSON(w, http.StatusOK,
		handlers.NewWeekResponse(view.PractitionerID, view.WeekStart, view.Behavior, view.Windows, view.Grid))
}
