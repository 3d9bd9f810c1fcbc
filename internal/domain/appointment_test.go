package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []AppointmentStatus{
	StatusRequested,
	StatusConfirmed,
	StatusCancelled,
	StatusInProgress,
	StatusFinished,
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to  AppointmentStatus
		automatic bool
		want      bool
	}{
		{StatusRequested, StatusConfirmed, false, true},
		{StatusRequested, StatusCancelled, false, true},
		{StatusConfirmed, StatusCancelled, false, true},
		{StatusConfirmed, StatusInProgress, false, false},
		{StatusInProgress, StatusCancelled, false, false},
		{StatusRequested, StatusConfirmed, true, false},
		{StatusRequested, StatusCancelled, true, true},
		{StatusConfirmed, StatusInProgress, true, true},
		{StatusConfirmed, StatusFinished, true, true},
		{StatusInProgress, StatusFinished, true, true},
		{StatusInProgress, StatusCancelled, true, false},
		{StatusFinished, StatusCancelled, true, false},
		{StatusCancelled, StatusRequested, false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, tt.automatic),
			"%s -> %s automatic=%v", tt.from, tt.to, tt.automatic)
	}
}

func TestAutomaticTransition_StaysOnAutomaticEdges(t *testing.T) {
	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	moments := []time.Time{
		start.Add(-time.Minute),
		start,
		start.Add(30 * time.Minute),
		start.Add(time.Hour),
		start.Add(48 * time.Hour),
	}

	for _, status := range allStatuses {
		for _, now := range moments {
			a := &Appointment{ScheduledAt: start, Duration: time.Hour, Status: status}
			next, ok := a.AutomaticTransition(now)
			if !ok {
				continue
			}
			assert.True(t, CanTransition(status, next, true), "%s -> %s at %s", status, next, now)
		}
	}
}

func TestAutomaticTransition(t *testing.T) {
	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		status AppointmentStatus
		now    time.Time
		want   AppointmentStatus
		ok     bool
	}{
		{"future request untouched", StatusRequested, start.Add(-time.Second), "", false},
		{"unanswered request expires", StatusRequested, start, StatusCancelled, true},
		{"confirmed starts", StatusConfirmed, start.Add(10 * time.Minute), StatusInProgress, true},
		{"confirmed missed whole session", StatusConfirmed, start.Add(time.Hour), StatusFinished, true},
		{"in progress keeps running", StatusInProgress, start.Add(59 * time.Minute), "", false},
		{"in progress ends", StatusInProgress, start.Add(time.Hour), StatusFinished, true},
		{"cancelled is terminal", StatusCancelled, start.Add(time.Hour), "", false},
		{"finished is terminal", StatusFinished, start.Add(time.Hour), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Appointment{ScheduledAt: start, Duration: time.Hour, Status: tt.status}
			next, ok := a.AutomaticTransition(tt.now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, next)
		})
	}
}
