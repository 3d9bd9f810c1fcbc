package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"write conflict", domain.NewWriteConflict("scheduledAt", "", "taken"), http.StatusConflict},
		{"pre-check conflict", domain.NewValidationError(domain.ErrSchedulingConflict, "scheduledAt", "", ""), http.StatusConflict},
		{"state transition", fmt.Errorf("%w: CANCELADA -> CONFIRMADA", domain.ErrInvalidStateTransition), http.StatusConflict},
		{"invalid interval", domain.NewValidationError(domain.ErrInvalidInterval, "intervals", "", ""), http.StatusUnprocessableEntity},
		{"malformed grid", domain.ErrMalformedGrid, http.StatusUnprocessableEntity},
		{"lead time", domain.NewValidationError(domain.ErrLeadTimeViolation, "scheduledAt", "", ""), http.StatusUnprocessableEntity},
		{"not divisible", domain.ErrNotDivisibleBySessionDuration, http.StatusUnprocessableEntity},
		{"profile incomplete", domain.ErrPractitionerProfileIncomplete, http.StatusUnprocessableEntity},
		{"no availability", domain.ErrNoAvailabilityAtInstant, http.StatusUnprocessableEntity},
		{"past week", fmt.Errorf("service: %w", domain.ErrPastWeek), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			assert.True(t, RespondDomainError(rec, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `"error":`)
		})
	}
}

func TestRespondDomainError_WriteConflictMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDomainError(rec, domain.NewWriteConflict("scheduledAt", "", "taken"))

	assert.JSONEq(t, `{"error":"слот только что заняли, выберите другое время"}`, rec.Body.String())
}

func TestRespondDomainError_NotDomain(t *testing.T) {
	rec := httptest.NewRecorder()

	assert.False(t, RespondDomainError(rec, fmt.Errorf("storage: connection reset")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
