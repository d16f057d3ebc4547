package model

import "time"

// ModerationEvent is published to the message broker after a suppression is
// committed.
type ModerationEvent struct {
	EventID       string        `json:"event_id"`
	MessageID     uint          `json:"message_id"`
	LogID         uint          `json:"log_id"`
	Username      string        `json:"username"`
	ViolationType ViolationType `json:"violation_type"`
	Notice        string        `json:"notice"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
