package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chatfeed/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func TestInsertMessageAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))

	first := &model.Message{Username: "alice", Content: "one"}
	second := &model.Message{Username: "bob", Content: "two"}
	require.NoError(t, repo.InsertMessage(ctx, first))
	require.NoError(t, repo.InsertMessage(ctx, second))

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, second.Timestamp.Before(first.Timestamp))
}

func TestListMessagesAfter(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))

	var ids []uint
	for i := 0; i < 5; i++ {
		msg := &model.Message{Username: "alice", Content: fmt.Sprintf("msg %d", i)}
		require.NoError(t, repo.InsertMessage(ctx, msg))
		ids = append(ids, msg.ID)
	}

	all, err := repo.ListMessagesAfter(ctx, 0, DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].ID, all[i-1].ID)
	}

	tail, err := repo.ListMessagesAfter(ctx, ids[2], DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, ids[3], tail[0].ID)
	assert.Equal(t, "msg 4", tail[1].Content)

	capped, err := repo.ListMessagesAfter(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)

	again, err := repo.ListMessagesAfter(ctx, 0, DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestInsertMessageUsesDatabaseClock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMessageRepository(db)

	msg := &model.Message{Username: "alice", Content: "hi", Timestamp: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.InsertMessage(ctx, msg))
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)

	// Rows written outside the repository still get a timestamp.
	require.NoError(t, db.Exec("INSERT INTO messages (username, content) VALUES (?, ?)", "bob", "raw").Error)

	messages, err := repo.ListMessagesAfter(ctx, 0, DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	for _, m := range messages {
		assert.WithinDuration(t, time.Now(), m.Timestamp, time.Minute)
	}
	assert.True(t, msg.Timestamp.Equal(messages[0].Timestamp))
}

func TestListMessagesAfterCursorPastInt64(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))
	require.NoError(t, repo.InsertMessage(ctx, &model.Message{Username: "alice", Content: "hi"}))

	page, err := repo.ListMessagesAfter(ctx, uint(math.MaxUint64), DefaultPageSize)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	page, err = repo.ListMessagesAfter(ctx, uint(math.MaxInt64), DefaultPageSize)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestListMessagesAfterDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))

	for i := 0; i < DefaultPageSize+5; i++ {
		require.NoError(t, repo.InsertMessage(ctx, &model.Message{Username: "u", Content: "c"}))
	}

	page, err := repo.ListMessagesAfter(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, DefaultPageSize)

	page, err = repo.ListMessagesAfter(ctx, 0, 10_000)
	require.NoError(t, err)
	assert.Len(t, page, DefaultPageSize)
}

func TestInsertSuppressedLinksLogToNotice(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMessageRepository(db)

	notice := &model.Message{Username: model.ModeratorName, Content: "Hey, bitte bleib freundlich!", IsAIWarning: true}
	entry := &model.ModerationLog{Username: "bob", ViolationType: model.ViolationRacism, OriginalContent: "bad words"}
	require.NoError(t, repo.InsertSuppressed(ctx, notice, entry))

	require.NotNil(t, entry.MessageID)
	assert.Equal(t, notice.ID, *entry.MessageID)

	var stored []model.ModerationLog
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "bad words", stored[0].OriginalContent)
	assert.Equal(t, model.ViolationRacism, stored[0].ViolationType)

	messages, err := repo.ListMessagesAfter(ctx, 0, DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsAIWarning)
	assert.Equal(t, model.ModeratorName, messages[0].Username)
}

func TestInsertSuppressedRollsBackNotice(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	require.NoError(t, db.Migrator().DropTable(&model.ModerationLog{}))

	notice := &model.Message{Username: model.ModeratorName, Content: "warning", IsAIWarning: true}
	entry := &model.ModerationLog{Username: "bob", ViolationType: model.ViolationRacism, OriginalContent: "bad"}
	err := repo.InsertSuppressed(ctx, notice, entry)
	require.Error(t, err)

	assert.Zero(t, notice.ID)
	assert.Nil(t, entry.MessageID)

	var count int64
	require.NoError(t, db.Model(&model.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInsertModerationLogWithoutMessage(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMessageRepository(db)

	entry := &model.ModerationLog{Username: "carol", ViolationType: model.ViolationRacism, OriginalContent: "x"}
	require.NoError(t, repo.InsertModerationLog(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.Nil(t, entry.MessageID)
}

func TestPing(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	assert.NoError(t, repo.Ping(context.Background()))
}
