package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatfeed/internal/model"
)

const pgxSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id            SERIAL PRIMARY KEY,
	username      TEXT        NOT NULL,
	content       TEXT        NOT NULL,
	timestamp     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_ai_warning BOOLEAN     NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages (timestamp);
CREATE TABLE IF NOT EXISTS moderation_log (
	id               SERIAL PRIMARY KEY,
	message_id       INTEGER REFERENCES messages(id) ON DELETE SET NULL,
	username         TEXT        NOT NULL,
	violation_type   TEXT        NOT NULL,
	original_content TEXT        NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_moderation_log_message_id ON moderation_log (message_id);
`

// PgxMessageRepository talks to Postgres through a pgx connection pool with
// hand-written SQL instead of gorm.
type PgxMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgxMessageRepository(pool *pgxpool.Pool) *PgxMessageRepository {
	return &PgxMessageRepository{pool: pool}
}

func (r *PgxMessageRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, pgxSchema); err != nil {
		return fmt.Errorf("create schema failed: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertMessage(ctx context.Context, q queryer, msg *model.Message) error {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO messages (username, content, is_ai_warning)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp
	`, msg.Username, msg.Content, msg.IsAIWarning).Scan(&id, &msg.Timestamp)
	if err != nil {
		return err
	}
	msg.ID = uint(id)
	return nil
}

func insertModerationLog(ctx context.Context, q queryer, entry *model.ModerationLog) error {
	var messageID *int64
	if entry.MessageID != nil {
		v := int64(*entry.MessageID)
		messageID = &v
	}
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO moderation_log (message_id, username, violation_type, original_content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, messageID, entry.Username, string(entry.ViolationType), entry.OriginalContent).Scan(&id, &entry.CreatedAt)
	if err != nil {
		return err
	}
	entry.ID = uint(id)
	return nil
}

func (r *PgxMessageRepository) InsertMessage(ctx context.Context, msg *model.Message) error {
	if err := insertMessage(ctx, r.pool, msg); err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *PgxMessageRepository) InsertModerationLog(ctx context.Context, entry *model.ModerationLog) error {
	if err := insertModerationLog(ctx, r.pool, entry); err != nil {
		return fmt.Errorf("create moderation log failed: %w", err)
	}
	return nil
}

func (r *PgxMessageRepository) InsertSuppressed(ctx context.Context, notice *model.Message, entry *model.ModerationLog) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertMessage(ctx, tx, notice); err != nil {
			return fmt.Errorf("create moderator notice failed: %w", err)
		}
		id := notice.ID
		entry.MessageID = &id
		if err := insertModerationLog(ctx, tx, entry); err != nil {
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

func (r *PgxMessageRepository) ListMessagesAfter(ctx context.Context, lastID uint, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = DefaultPageSize
	}
	if uint64(lastID) > math.MaxInt64 {
		return []model.Message{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, username, content, timestamp, is_ai_warning
		FROM messages
		WHERE id > $1
		ORDER BY timestamp ASC, id ASC
		LIMIT $2
	`, int64(lastID), limit)
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0, limit)
	for rows.Next() {
		var (
			id int64
			m  model.Message
		)
		if err := rows.Scan(&id, &m.Username, &m.Content, &m.Timestamp, &m.IsAIWarning); err != nil {
			return nil, fmt.Errorf("scan message failed: %w", err)
		}
		m.ID = uint(id)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

func (r *PgxMessageRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
