package list_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

const (
	msgInvalidStatus = "некорректный статус"
	msgInvalidRange  = "некорректный диапазон, ожидается RFC3339"
	msgInvalidPeer   = "некорректный параметр counterpart"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments?status=&counterpart=&from=&to=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	req := &models.ListRequest{Actor: actor}

	// Получаем status из query параметров (опционально)
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	// counterpart: специалист для пациента, пациент для специалиста
	if raw := r.URL.Query().Get("counterpart"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.logger.Warn("GET /appointments - Invalid counterpart: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidPeer)
			return
		}
		req.CounterpartID = &id
	}

	from, err := handlers.QueryTime(r, "from", time.Time{})
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}
	to, err := handlers.QueryTime(r, "to", time.Time{})
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}
	if !from.IsZero() {
		req.From = &from
	}
	if !to.IsZero() {
		req.To = &to
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /appointments - Invalid input: user_id=%d, error=%v", actor.ID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /appointments - Failed to list appointments: user_id=%d, error=%v", actor.ID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments - Appointments retrieved successfully: user_id=%d, count=%d",
		actor.ID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
