package domain

import "time"

// EventType names an appointment event after the state it moved to
type EventType string

const (
	EventAppointmentRequested EventType = "appointment.requested"
	EventAppointmentConfirmed EventType = "appointment.confirmed"
	EventAppointmentCancelled EventType = "appointment.cancelled"
	EventAppointmentStarted   EventType = "appointment.started"
	EventAppointmentFinished  EventType = "appointment.finished"
)

// EventTypeFor maps the target status to the event type
func EventTypeFor(status AppointmentStatus) EventType {
	switch status {
	case StatusConfirmed:
		return EventAppointmentConfirmed
	case StatusCancelled:
		return EventAppointmentCancelled
	case StatusInProgress:
		return EventAppointmentStarted
	case StatusFinished:
		return EventAppointmentFinished
	default:
		return EventAppointmentRequested
	}
}

// AppointmentEvent is emitted after every committed state transition
type AppointmentEvent struct {
	ID             string            `json:"id"`
	Type           EventType         `json:"type"`
	AppointmentID  int64             `json:"appointmentId"`
	PatientID      int64             `json:"patientId"`
	PractitionerID int64             `json:"practitionerId"`
	ScheduledAt    time.Time         `json:"scheduledAt"`
	From           AppointmentStatus `json:"from,omitempty"`
	To             AppointmentStatus `json:"to"`
	ActorID        int64             `json:"actorId"`
	ActorRole      ActorRole         `json:"actorRole"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// NewAppointmentEvent describes the transition of a into its current status.
// from is empty for a newly created appointment.
func NewAppointmentEvent(a *Appointment, from AppointmentStatus, actor Actor, at time.Time) AppointmentEvent {
	return AppointmentEvent{
		Type:           EventTypeFor(a.Status),
		AppointmentID:  a.ID,
		PatientID:      a.PatientID,
		PractitionerID: a.PractitionerID,
		ScheduledAt:    a.ScheduledAt,
		From:           from,
		To:             a.Status,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		OccurredAt:     at,
	}
}
