package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chatfeed/internal/model"
)

const (
	DefaultPageSize = 50
	maxPageSize     = 200
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// AutoMigrate creates or updates the messages and moderation_log tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Message{}, &model.ModerationLog{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

// InsertMessage appends a row; ID and Timestamp are filled in on msg.
func (r *MessageRepository) InsertMessage(ctx context.Context, msg *model.Message) error {
	if err := createMessage(r.db.WithContext(ctx), msg); err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// createMessage leaves the timestamp to the column default and reads it back,
// so every row is stamped by the database clock.
func createMessage(tx *gorm.DB, msg *model.Message) error {
	msg.Timestamp = time.Time{}
	if err := tx.Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).Create(msg).Error; err != nil {
		return err
	}

	var stored model.Message
	if err := tx.Select("timestamp").Where("id = ?", msg.ID).Take(&stored).Error; err != nil {
		return fmt.Errorf("read message timestamp failed: %w", err)
	}
	msg.Timestamp = stored.Timestamp
	return nil
}

func (r *MessageRepository) InsertModerationLog(ctx context.Context, entry *model.ModerationLog) error {
	if err := r.db.WithContext(ctx).Omit("Message").Create(entry).Error; err != nil {
		return fmt.Errorf("create moderation log failed: %w", err)
	}
	return nil
}

// InsertSuppressed writes the moderator notice and its audit entry in one
// transaction. entry.MessageID is set to the notice's new ID.
func (r *MessageRepository) InsertSuppressed(ctx context.Context, notice *model.Message, entry *model.ModerationLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createMessage(tx, notice); err != nil {
			return fmt.Errorf("create moderator notice failed: %w", err)
		}
		id := notice.ID
		entry.MessageID = &id
		if err := tx.Omit("Message").Create(entry).Error; err != nil {
			return fmt.Errorf("create moderation log failed: %w", err)
		}
		return nil
	})
	if err != nil {
		notice.ID = 0
		entry.MessageID = nil
		return err
	}
	return nil
}

// ListMessagesAfter returns messages with id > lastID, oldest first.
func (r *MessageRepository) ListMessagesAfter(ctx context.Context, lastID uint, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = DefaultPageSize
	}
	if uint64(lastID) > math.MaxInt64 {
		return []model.Message{}, nil
	}

	messages := make([]model.Message, 0, limit)
	if err := r.db.WithContext(ctx).
		Where("id > ?", lastID).
		Order("timestamp ASC").
		Order("id ASC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db failed: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
