package create_appointment

import (
	"time"

	createAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	PractitionerID int64  `json:"practitionerId"`
	ScheduledAt    string `json:"scheduledAt"` // RFC3339
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(patientID int64) (*createAppointment.Request, error) {
	scheduledAt, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		PatientID:      patientID,
		PractitionerID: r.PractitionerID,
		ScheduledAt:    scheduledAt,
	}, nil
}
