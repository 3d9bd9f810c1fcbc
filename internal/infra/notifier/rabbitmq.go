package notifier

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// RabbitPublisher публикует события в очередь RabbitMQ
type RabbitPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   string
}

// NewRabbitPublisher подключается к RabbitMQ и объявляет durable очередь
func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &RabbitPublisher{conn: conn, channel: channel, queue: queue}, nil
}

// Publish отправляет событие в очередь
func (p *RabbitPublisher) Publish(ctx context.Context, event domain.AppointmentEvent) error {
	body, err := encode(&event)
	if err != nil {
		return err
	}

	message := amqp091.Publishing{
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Headers: amqp091.Table{
			"event_type":     string(event.Type),
			"appointment_id": event.AppointmentID,
		},
	}

	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, message); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, p.queue, err)
	}
	return nil
}

// Close закрывает канал и соединение
func (p *RabbitPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}
