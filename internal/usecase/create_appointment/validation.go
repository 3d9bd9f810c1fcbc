package create_appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
)

// validateRequest проверяет идентификаторы участников
func validateRequest(req *Request) error {
	if req.PatientID <= 0 {
		return fmt.Errorf("%w: patientId must be positive", ErrInvalidInput)
	}
	if req.PractitionerID <= 0 {
		return fmt.Errorf("%w: practitionerId must be positive", ErrInvalidInput)
	}
	if req.PatientID == req.PractitionerID {
		return fmt.Errorf("%w: patient and practitioner must differ", ErrInvalidInput)
	}
	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", ErrInvalidInput)
	}
	return nil
}

// validateAlignment проверяет, что начало кратно длительности сессии от опорной точки
func validateAlignment(at time.Time, d time.Duration) error {
	if !weekly.Aligned(at, d) {
		return domain.NewValidationError(domain.ErrNotDivisibleBySessionDuration, "scheduledAt", at.Format(time.RFC3339),
			fmt.Sprintf("must be a multiple of %s", d))
	}
	return nil
}

// validateProfile проверяет, что профиль специалиста готов к записи
func validateProfile(profile *domain.PractitionerProfile, hasAvailability bool) error {
	if missing := profile.MissingForBooking(hasAvailability); len(missing) > 0 {
		return domain.NewValidationError(domain.ErrPractitionerProfileIncomplete, "practitionerId", profile.ID,
			"missing "+strings.Join(missing, ", "))
	}
	return nil
}
