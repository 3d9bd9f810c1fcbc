package domain

import (
	"time"
)

// AppointmentStatus is the life-cycle state of an appointment
type AppointmentStatus string

const (
	StatusRequested  AppointmentStatus = "SOLICITADA"
	StatusConfirmed  AppointmentStatus = "CONFIRMADA"
	StatusCancelled  AppointmentStatus = "CANCELADA"
	StatusInProgress AppointmentStatus = "EM_ANDAMENTO"
	StatusFinished   AppointmentStatus = "FINALIZADA"
)

// ActorRole identifies who triggered a transition
type ActorRole string

const (
	RolePatient      ActorRole = "patient"
	RolePractitioner ActorRole = "practitioner"
	RoleSystem       ActorRole = "system"
)

// Actor is the caller of an operation. System actors have ID 0.
type Actor struct {
	ID   int64
	Role ActorRole
}

// SystemActor is used by the automatic sweep
var SystemActor = Actor{Role: RoleSystem}

// Appointment is a session between a patient and a practitioner
type Appointment struct {
	ID             int64
	PatientID      int64
	PractitionerID int64
	ScheduledAt    time.Time
	RequestedAt    time.Time
	Duration       time.Duration
	Status         AppointmentStatus
	CancelledBy    *ActorRole

	CreatedAt time.Time
	UpdatedAt time.Time
}

// End returns the end of the session window
func (a *Appointment) End() time.Time {
	return a.ScheduledAt.Add(a.Duration)
}

// BlocksSlot returns true if the appointment occupies its session window
func (a *Appointment) BlocksSlot() bool {
	return a.Status != StatusCancelled
}

// IsTerminal returns true for CANCELADA and FINALIZADA
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusFinished
}

// OverlapsWindow reports whether [start, end) intersects the session window.
// Sessions that only touch do not overlap.
func (a *Appointment) OverlapsWindow(start, end time.Time) bool {
	return a.ScheduledAt.Before(end) && start.Before(a.End())
}

// IsParticipant reports whether the actor is the patient or the practitioner of the appointment
func (a *Appointment) IsParticipant(actor Actor) bool {
	switch actor.Role {
	case RolePatient:
		return actor.ID == a.PatientID
	case RolePractitioner:
		return actor.ID == a.PractitionerID
	case RoleSystem:
		return true
	default:
		return false
	}
}

// manualTransitions allowed for participants
var manualTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusRequested: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

// automaticTransitions allowed for the sweep
var automaticTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusRequested:  {StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusFinished},
	StatusInProgress: {StatusFinished},
}

// CanTransition reports whether from -> to is an edge of the state machine for the given trigger
func CanTransition(from, to AppointmentStatus, automatic bool) bool {
	table := manualTransitions
	if automatic {
		table = automaticTransitions
	}
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AutomaticTransition returns the state the sweep must move the appointment to at now.
// ok is false when nothing has to change.
func (a *Appointment) AutomaticTransition(now time.Time) (next AppointmentStatus, ok bool) {
	if now.Before(a.ScheduledAt) {
		return "", false
	}

	inside := now.Before(a.End())
	switch a.Status {
	case StatusRequested:
		return StatusCancelled, true
	case StatusConfirmed:
		if inside {
			return StatusInProgress, true
		}
		return StatusFinished, true
	case StatusInProgress:
		if inside {
			return "", false
		}
		return StatusFinished, true
	default:
		return "", false
	}
}

// ActiveStatuses are the non-terminal statuses the sweep looks at
var ActiveStatuses = []AppointmentStatus{
	StatusRequested,
	StatusConfirmed,
	StatusInProgress,
}

// ParseAppointmentStatus validates a status string
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case StatusRequested, StatusConfirmed, StatusCancelled, StatusInProgress, StatusFinished:
		return st, true
	default:
		return "", false
	}
}

// AppointmentsFilter selects appointments of a participant, optionally with one counterpart
type AppointmentsFilter struct {
	PatientID      *int64
	PractitionerID *int64
	From           *time.Time // scheduled_at >= From
	To             *time.Time // scheduled_at < To
	Status         *AppointmentStatus
}
