package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"chatfeed/internal/model"
)

// EventPublisher pushes moderation events onto a durable queue.
type EventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEventPublisher(conn *amqp.Connection, queueName string) *EventPublisher {
	return &EventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EventPublisher) PublishModeration(ctx context.Context, event model.ModerationEvent) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Timestamp:    event.OccurredAt,
			Type:         "moderation." + string(event.ViolationType),
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish moderation event failed: %w", err)
	}
	return nil
}

func EncodeEvent(event model.ModerationEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal moderation event failed: %w", err)
	}
	return payload, nil
}

func DecodeEvent(body []byte) (model.ModerationEvent, error) {
	var event model.ModerationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return model.ModerationEvent{}, fmt.Errorf("decode moderation event failed: %w", err)
	}
	if event.EventID == "" {
		return model.ModerationEvent{}, fmt.Errorf("decode moderation event failed: missing event_id")
	}
	return event, nil
}
