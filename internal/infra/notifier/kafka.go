package notifier

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// KafkaPublisher публикует события в топик Kafka с ключом по записи,
// чтобы события одной записи шли в одну партицию по порядку
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher создает writer для топика
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.Hash{},
		}),
	}
}

// Publish отправляет событие в топик
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.AppointmentEvent) error {
	body, err := encode(&event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AppointmentID, 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to kafka: %w", event.Type, err)
	}
	return nil
}

// Close закрывает writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
