package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatfeed/internal/logging"
)

func TestConnectRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Connect(context.Background(), logging.Discard(), "test", func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestConnectGivesUp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Connect(ctx, logging.Discard(), "test", func(ctx context.Context) error {
		calls++
		return errors.New("down")
	})
	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
