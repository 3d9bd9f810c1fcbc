package memory

import (
	"context"
	"slices"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
)

// AppointmentRepository in-memory реализация репозитория записей
type AppointmentRepository struct {
	store *Store
}

// Create сохраняет запись; пересечение с активной записью того же участника дает ErrOverlap
func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.appointments {
		if !existing.BlocksSlot() || !existing.OverlapsWindow(a.ScheduledAt, a.End()) {
			continue
		}
		if existing.PractitionerID == a.PractitionerID || existing.PatientID == a.PatientID {
			return nil, appointmentRepo.ErrOverlap
		}
	}

	r.store.nextAppointmentID++
	now := time.Now().UTC()
	created := *a
	created.ID = r.store.nextAppointmentID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.store.appointments[created.ID] = created

	*a = created
	return a, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	defer r.store.lock(ctx)()
	a, ok := r.store.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *AppointmentRepository) ListActiveByPractitioner(ctx context.Context, practitionerID int64, from, to time.Time) ([]*domain.Appointment, error) {
	defer r.store.lock(ctx)()
	return r.collect(func(a domain.Appointment) bool {
		return a.PractitionerID == practitionerID && a.BlocksSlot() && a.OverlapsWindow(from, to)
	}), nil
}

func (r *AppointmentRepository) ListActiveByPatient(ctx context.Context, patientID int64, from, to time.Time) ([]*domain.Appointment, error) {
	defer r.store.lock(ctx)()
	return r.collect(func(a domain.Appointment) bool {
		return a.PatientID == patientID && a.BlocksSlot() && a.OverlapsWindow(from, to)
	}), nil
}

func (r *AppointmentRepository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	defer r.store.lock(ctx)()
	return r.collect(func(a domain.Appointment) bool {
		switch {
		case filter.PatientID != nil && a.PatientID != *filter.PatientID:
			return false
		case filter.PractitionerID != nil && a.PractitionerID != *filter.PractitionerID:
			return false
		case filter.From != nil && a.ScheduledAt.Before(*filter.From):
			return false
		case filter.To != nil && !a.ScheduledAt.Before(*filter.To):
			return false
		case filter.Status != nil && a.Status != *filter.Status:
			return false
		}
		return true
	}), nil
}

// UpdateStatus меняет статус, только если текущий статус равен from
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, cancelledBy *domain.ActorRole) (*domain.Appointment, error) {
	defer r.store.lock(ctx)()
	a, ok := r.store.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	if a.Status != from {
		return nil, appointmentRepo.ErrStatusChanged
	}
	a.Status = to
	if cancelledBy != nil {
		role := *cancelledBy
		a.CancelledBy = &role
	}
	a.UpdatedAt = time.Now().UTC()
	r.store.appointments[id] = a
	return &a, nil
}

// ListDue возвращает активные записи, начавшиеся не позже now, постранично по id
func (r *AppointmentRepository) ListDue(ctx context.Context, now time.Time, afterID int64, limit int) ([]*domain.Appointment, error) {
	defer r.store.lock(ctx)()
	out := r.collect(func(a domain.Appointment) bool {
		return a.ID > afterID && slices.Contains(domain.ActiveStatuses, a.Status) && !a.ScheduledAt.After(now)
	})
	slices.SortFunc(out, func(a, b *domain.Appointment) int { return int(a.ID - b.ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AppointmentRepository) collect(match func(domain.Appointment) bool) []*domain.Appointment {
	var out []*domain.Appointment
	for _, a := range r.store.appointments {
		if match(a) {
			c := a
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Appointment) int {
		if c := a.ScheduledAt.Compare(b.ScheduledAt); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out
}
