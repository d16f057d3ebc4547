package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chatfeed/internal/model"
	"chatfeed/internal/moderation"
)

type memStore struct {
	mu       sync.Mutex
	messages []model.Message
	logs     []model.ModerationLog
	nextID   uint
	lists    int

	insertErr error
	logErr    error
	listErr   error
}

func newMemStore() *memStore {
	return &memStore{nextID: 1}
}

func (s *memStore) InsertMessage(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.appendMessage(msg)
	return nil
}

func (s *memStore) InsertSuppressed(ctx context.Context, notice *model.Message, entry *model.ModerationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if s.logErr != nil {
		return s.logErr
	}
	s.appendMessage(notice)
	id := notice.ID
	entry.MessageID = &id
	entry.ID = uint(len(s.logs) + 1)
	entry.CreatedAt = time.Now()
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *memStore) appendMessage(msg *model.Message) {
	msg.ID = s.nextID
	msg.Timestamp = time.Now()
	s.nextID++
	s.messages = append(s.messages, *msg)
}

func (s *memStore) ListMessagesAfter(ctx context.Context, lastID uint, limit int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]model.Message, 0, limit)
	for _, m := range s.messages {
		if m.ID > lastID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

// replyClassifier mimics the external model: it returns a fixed reply, or an
// unavailable error when err is set.
type replyClassifier struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []string
}

func (c *replyClassifier) Classify(ctx context.Context, text string) (moderation.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, text)
	if c.err != nil {
		return moderation.Verdict{}, &moderation.Error{Op: "completion", Cause: c.err}
	}
	return moderation.ParseVerdict(c.reply), nil
}

type memCache struct {
	gen   int64
	pages map[string][]model.Message
	hits  int
	err   error
}

func newMemCache() *memCache {
	return &memCache{pages: map[string][]model.Message{}}
}

func (c *memCache) key(gen int64, lastID uint) string {
	return fmt.Sprintf("%d:%d", gen, lastID)
}

func (c *memCache) Generation(ctx context.Context) (int64, error) {
	return c.gen, c.err
}

func (c *memCache) GetPage(ctx context.Context, gen int64, lastID uint) ([]model.Message, bool, error) {
	page, ok := c.pages[c.key(gen, lastID)]
	if ok {
		c.hits++
	}
	return page, ok, nil
}

func (c *memCache) SetPage(ctx context.Context, gen int64, lastID uint, messages []model.Message) error {
	c.pages[c.key(gen, lastID)] = messages
	return nil
}

func (c *memCache) Invalidate(ctx context.Context) error {
	if c.err != nil {
		return c.err
	}
	c.gen++
	return nil
}

type recordingPublisher struct {
	events []model.ModerationEvent
	err    error
}

func (p *recordingPublisher) PublishModeration(ctx context.Context, event model.ModerationEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

var errDatabaseDown = errors.New("connection refused")
