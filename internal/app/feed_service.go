package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chatfeed/internal/logging"
	"chatfeed/internal/model"
	"chatfeed/internal/moderation"
)

// PageSize is the fixed number of messages returned per feed read.
const PageSize = 50

type Outcome int

const (
	OutcomePublished Outcome = iota + 1
	OutcomeSuppressed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

type SubmitResult struct {
	Outcome Outcome
	// Notice is the moderator text that replaced the post; empty when published.
	Notice string
	// Message is the row that became visible: the post itself or the notice.
	Message model.Message
}

type MessageStore interface {
	InsertMessage(ctx context.Context, msg *model.Message) error
	InsertSuppressed(ctx context.Context, notice *model.Message, entry *model.ModerationLog) error
	ListMessagesAfter(ctx context.Context, lastID uint, limit int) ([]model.Message, error)
}

type FeedCache interface {
	Generation(ctx context.Context) (int64, error)
	GetPage(ctx context.Context, gen int64, lastID uint) ([]model.Message, bool, error)
	SetPage(ctx context.Context, gen int64, lastID uint, messages []model.Message) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishModeration(ctx context.Context, event model.ModerationEvent) error
}

type FeedService struct {
	store      MessageStore
	classifier moderation.Classifier
	cache      FeedCache
	publisher  EventPublisher
	logger     *slog.Logger
}

// NewFeedService wires the ingestion pipeline. cache and publisher are
// optional and may be nil.
func NewFeedService(
	store MessageStore,
	classifier moderation.Classifier,
	cache FeedCache,
	publisher EventPublisher,
	logger *slog.Logger,
) *FeedService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FeedService{
		store:      store,
		classifier: classifier,
		cache:      cache,
		publisher:  publisher,
		logger:     logger,
	}
}

// Submit validates a post, screens it and persists exactly one outcome.
func (s *FeedService) Submit(ctx context.Context, author, body string) (*SubmitResult, error) {
	if err := ValidatePost(author, body); err != nil {
		s.logger.Debug("rejected post", "author", author, "reason", err.Error())
		return nil, err
	}

	s.logger.Debug("moderating post", "author", author, "length", len(body))
	verdict, err := s.classifier.Classify(ctx, body)
	if err != nil {
		// Fail open: an unreachable classifier must not take the chat down.
		s.logger.Warn("moderation unavailable, publishing unmoderated",
			"author", author,
			"unavailable", errors.Is(err, moderation.ErrUnavailable),
			"error", err,
		)
		verdict = moderation.Allow()
	}

	if verdict.IsViolation {
		return s.suppress(ctx, author, body, verdict)
	}
	return s.publish(ctx, author, body)
}

func (s *FeedService) publish(ctx context.Context, author, body string) (*SubmitResult, error) {
	msg := &model.Message{
		Username: author,
		Content:  body,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		s.logger.Error("persist message failed", "author", author, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	s.invalidate(ctx)

	s.logger.Info("message published", "author", author, "message_id", msg.ID)
	return &SubmitResult{
		Outcome: OutcomePublished,
		Message: *msg,
	}, nil
}

func (s *FeedService) suppress(ctx context.Context, author, body string, verdict moderation.Verdict) (*SubmitResult, error) {
	category := verdict.Category
	if category == "" {
		category = model.ViolationRacism
	}

	notice := &model.Message{
		Username:    model.ModeratorName,
		Content:     verdict.Notice,
		IsAIWarning: true,
	}
	entry := &model.ModerationLog{
		Username:        author,
		ViolationType:   category,
		OriginalContent: body,
	}
	if err := s.store.InsertSuppressed(ctx, notice, entry); err != nil {
		s.logger.Error("persist moderation failed", "author", author, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	s.invalidate(ctx)

	s.logger.Info("message moderated",
		"author", author,
		"violation_type", category,
		"notice_id", notice.ID,
		"log_id", entry.ID,
	)
	s.announce(ctx, notice, entry)

	return &SubmitResult{
		Outcome: OutcomeSuppressed,
		Notice:  verdict.Notice,
		Message: *notice,
	}, nil
}

// ListAfter returns up to PageSize messages with id > lastID, oldest first.
func (s *FeedService) ListAfter(ctx context.Context, lastID uint) ([]model.Message, error) {
	gen, cacheOK := int64(0), false
	if s.cache != nil {
		g, err := s.cache.Generation(ctx)
		if err != nil {
			s.logger.Warn("feed cache unavailable", "error", err)
		} else {
			gen, cacheOK = g, true
			if cached, hit, err := s.cache.GetPage(ctx, gen, lastID); err == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.store.ListMessagesAfter(ctx, lastID, PageSize)
	if err != nil {
		s.logger.Error("list messages failed", "last_id", lastID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	if messages == nil {
		messages = []model.Message{}
	}

	if cacheOK {
		if err := s.cache.SetPage(ctx, gen, lastID, messages); err != nil {
			s.logger.Warn("cache feed page failed", "error", err)
		}
	}
	return messages, nil
}

func (s *FeedService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate feed cache failed", "error", err)
	}
}

func (s *FeedService) announce(ctx context.Context, notice *model.Message, entry *model.ModerationLog) {
	if s.publisher == nil {
		return
	}
	event := model.ModerationEvent{
		EventID:       uuid.NewString(),
		MessageID:     notice.ID,
		LogID:         entry.ID,
		Username:      entry.Username,
		ViolationType: entry.ViolationType,
		Notice:        notice.Content,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.PublishModeration(ctx, event); err != nil {
		s.logger.Warn("publish moderation event failed", "event_id", event.EventID, "error", err)
	}
}
