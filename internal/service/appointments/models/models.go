package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// ListRequest запрос на получение записей текущего пользователя
type ListRequest struct {
	Actor         domain.Actor
	Status        *string    // Фильтр по статусу (опционально)
	CounterpartID *int64     // Специалист для пациента, пациент для специалиста (опционально)
	From          *time.Time // scheduledAt >= From (опционально)
	To            *time.Time // scheduledAt < To (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
// Пациент видит свои записи, специалист записи к себе
func (r *ListRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{From: r.From, To: r.To}

	switch r.Actor.Role {
	case domain.RolePatient:
		filter.PatientID = &r.Actor.ID
		filter.PractitionerID = r.CounterpartID
	case domain.RolePractitioner:
		filter.PractitionerID = &r.Actor.ID
		filter.PatientID = r.CounterpartID
	}

	if r.Status != nil {
		status, ok := domain.ParseAppointmentStatus(*r.Status)
		if !ok {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64      `json:"id"`
	PatientID       int64      `json:"patientId"`
	PractitionerID  int64      `json:"practitionerId"`
	ScheduledAt     time.Time  `json:"scheduledAt"`
	EndsAt          time.Time  `json:"endsAt"`
	DurationMinutes int        `json:"durationMinutes"`
	Status          string     `json:"status"`
	CancelledBy     *string    `json:"cancelledBy,omitempty"`
	RequestedAt     time.Time  `json:"requestedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// FromDomainAppointment конвертирует domain.Appointment в AppointmentResponse
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		PractitionerID:  a.PractitionerID,
		ScheduledAt:     a.ScheduledAt,
		EndsAt:          a.End(),
		DurationMinutes: int(a.Duration / time.Minute),
		Status:          string(a.Status),
		RequestedAt:     a.RequestedAt,
		CreatedAt:       a.CreatedAt,
	}
	if a.CancelledBy != nil {
		role := string(*a.CancelledBy)
		resp.CancelledBy = &role
	}
	if !a.UpdatedAt.IsZero() {
		updated := a.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// FromDomainAppointmentList конвертирует список записей
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
		Total:        len(list),
	}
	for _, a := range list {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	return resp
}
