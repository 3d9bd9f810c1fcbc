// Package notifier hands committed appointment events to the notification collaborator.
// Delivery is at-least-once; callers log and count failures without rolling anything back.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// LogPublisher пишет события в лог; используется, когда брокер не настроен
type LogPublisher struct {
	log Logger
}

// NewLogPublisher создает publisher, который только логирует события
func NewLogPublisher(log Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish логирует событие
func (p *LogPublisher) Publish(_ context.Context, event domain.AppointmentEvent) error {
	p.log.Info("event %s: appointment=%d %s -> %s by %s:%d",
		event.Type, event.AppointmentID, event.From, event.To, event.ActorRole, event.ActorID)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// encode присваивает событию ID, если его нет, и сериализует его
func encode(event *domain.AppointmentEvent) ([]byte, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	return body, nil
}
