package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidScheduledAt    = "некорректное время записи, ожидается RFC3339"
	msgPatientsOnly          = "записаться может только пациент"
	msgPractitionerNotFound  = "специалист не найден"
	msgInvalidInput          = "некорректные данные записи"
	msgPractitionerIsPatient = "нельзя записаться к самому себе"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}
	if actor.Role != domain.RolePatient {
		h.logger.Warn("POST /appointments - Not a patient: user_id=%d, role=%s", actor.ID, actor.Role)
		handlers.RespondForbidden(w, msgPatientsOnly)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.PractitionerID == actor.ID {
		handlers.RespondBadRequest(w, msgPractitionerIsPatient)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor.ID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse scheduledAt: %v", err)
		handlers.RespondBadRequest(w, msgInvalidScheduledAt)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrPractitionerNotFound):
			h.logger.Warn("POST /appointments - Practitioner not found: practitioner_id=%d", req.PractitionerID)
			handlers.RespondNotFound(w, msgPractitionerNotFound)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /appointments - Rejected: patient_id=%d, practitioner_id=%d, error=%v",
				actor.ID, req.PractitionerID, err)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: patient_id=%d, practitioner_id=%d, error=%v",
				actor.ID, req.PractitionerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, patient_id=%d, practitioner_id=%d",
		result.ID, actor.ID, req.PractitionerID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainAppointment(result))
}
