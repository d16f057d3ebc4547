package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chatfeed/internal/app"
	"chatfeed/internal/transport/http/response"
)

const (
	DefaultSubmitTimeout = 30 * time.Second
	DefaultMaxBodyBytes  = 16 << 10
)

type MessageHandler struct {
	feedService   *app.FeedService
	submitTimeout time.Duration
	maxBodyBytes  int64
}

type PostMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// NewMessageHandler builds the feed endpoints. Non-positive limits fall back to
// the defaults.
func NewMessageHandler(feedService *app.FeedService, submitTimeout time.Duration, maxBodyBytes int64) *MessageHandler {
	if submitTimeout <= 0 {
		submitTimeout = DefaultSubmitTimeout
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &MessageHandler{
		feedService:   feedService,
		submitTimeout: submitTimeout,
		maxBodyBytes:  maxBodyBytes,
	}
}

func (h *MessageHandler) List(c *gin.Context) {
	lastID := parseLastID(c.Query("lastId"))

	messages, err := h.feedService.ListAfter(c.Request.Context(), lastID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.MsgDatabaseError)
		return
	}

	response.OK(c, gin.H{"messages": messages})
}

func (h *MessageHandler) Post(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.MsgBodyTooLarge)
			return
		}
		response.Error(c, http.StatusBadRequest, response.MsgMissingFields)
		return
	}

	// A client hanging up must not abort a post that is already being
	// moderated or written, but a stuck dependency must not hold it forever.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.submitTimeout)
	defer cancel()
	result, err := h.feedService.Submit(ctx, req.Username, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingFields):
			response.Error(c, http.StatusBadRequest, response.MsgMissingFields)
		case errors.Is(err, app.ErrAuthorTooLong):
			response.Error(c, http.StatusBadRequest, response.MsgUsernameTooLong)
		case errors.Is(err, app.ErrBodyTooLong):
			response.Error(c, http.StatusBadRequest, response.MsgContentTooLong)
		default:
			response.Error(c, http.StatusInternalServerError, response.MsgSaveFailed)
		}
		return
	}

	if result.Outcome == app.OutcomeSuppressed {
		response.OK(c, gin.H{"moderated": true, "warning": result.Notice})
		return
	}
	response.OK(c, gin.H{"success": true})
}

// parseLastID reads the feed cursor. Garbage and negative values mean 0;
// values past the int64 range saturate so they select nothing.
func parseLastID(raw string) uint {
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if parsed < 0 {
		return 0
	}
	return uint(parsed)
}
