package model

import "time"

const (
	MaxUsernameLength = 30
	MaxContentLength  = 500

	// ModeratorName is the author shown on notices that replace suppressed posts.
	ModeratorName = "🤖 Moderator"
)

type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:64;not null" json:"username"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Timestamp   time.Time `gorm:"column:timestamp;not null;default:CURRENT_TIMESTAMP;precision:0;index" json:"timestamp"`
	IsAIWarning bool      `gorm:"column:is_ai_warning;not null;default:false" json:"is_ai_warning"`
}

func (Message) TableName() string {
	return "messages"
}
