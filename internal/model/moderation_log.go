package model

import "time"

type ViolationType string

const (
	ViolationRacism ViolationType = "racism"
)

// ModerationLog is the audit row written for every suppressed post. It keeps
// the original text, which is never shown in the public feed.
type ModerationLog struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	MessageID       *uint         `gorm:"index" json:"message_id"`
	Message         *Message      `gorm:"foreignKey:MessageID;constraint:OnDelete:SET NULL" json:"-"`
	Username        string        `gorm:"size:64;not null" json:"username"`
	ViolationType   ViolationType `gorm:"size:32;not null;index" json:"violation_type"`
	OriginalContent string        `gorm:"type:text;not null" json:"original_content"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
}

func (ModerationLog) TableName() string {
	return "moderation_log"
}
