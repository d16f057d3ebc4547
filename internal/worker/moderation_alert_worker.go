package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"chatfeed/internal/logging"
	"chatfeed/internal/platform/rabbitmq"
)

// ModerationAlertWorker drains the moderation event queue and emits one
// warn-level alert per suppressed post for operators.
type ModerationAlertWorker struct {
	conn      *amqp.Connection
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewModerationAlertWorker(conn *amqp.Connection, queueName string, logger *slog.Logger) *ModerationAlertWorker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ModerationAlertWorker{
		conn:      conn,
		queueName: queueName,
		logger:    logger.With("component", "moderation_alert_worker"),
	}
}

func (w *ModerationAlertWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.Handle(d.Body); err != nil {
					w.logger.Error("drop moderation event", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// Handle processes one raw event body. Undecodable bodies are rejected so
// they are not redelivered forever.
func (w *ModerationAlertWorker) Handle(body []byte) error {
	event, err := rabbitmq.DecodeEvent(body)
	if err != nil {
		return err
	}
	w.logger.Warn("moderation alert",
		"event_id", event.EventID,
		"username", event.Username,
		"violation_type", event.ViolationType,
		"notice_id", event.MessageID,
		"log_id", event.LogID,
		"occurred_at", event.OccurredAt,
	)
	return nil
}

func (w *ModerationAlertWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
