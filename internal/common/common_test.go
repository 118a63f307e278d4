package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrUserNotFoundIsNotFound(t *testing.T) {
	assert.ErrorIs(t, ErrUserNotFound, ErrNotFound)
	assert.ErrorIs(t, MissingField("email"), ErrMissingField)
}

func TestUserError(t *testing.T) {
	base := errors.New("boom")
	err := NewUserError("could not save", base)

	assert.Equal(t, "could not save: boom", err.Error())
	assert.ErrorIs(t, err, base)

	var ue *UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "could not save", ue.UserMessage)
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("flaky")
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return errors.New("down")
		}, opts)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		bad := errors.New("bad request")
		err := WithRetry(ctx, func() error {
			calls++
			return Permanent(bad)
		}, opts)
		require.ErrorIs(t, err, bad)
		assert.Equal(t, 1, calls)
		assert.False(t, IsRetryable(err))
		assert.NotErrorIs(t, err, ErrMaxRetries)
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := WithRetry(cctx, func() error {
			calls++
			cancel()
			return errors.New("down")
		}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour})
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("names the operation", func(t *testing.T) {
		err := WithRetry(ctx, func() error {
			return ErrRateLimit
		}, RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Operation: "write tab"})
		require.ErrorIs(t, err, ErrMaxRetries)
		assert.Contains(t, err.Error(), "write tab after 2 attempts")
	})

	assert.NoError(t, Permanent(nil))
	assert.True(t, IsRetryable(ErrRateLimit))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	LogError(context.Background(), logger, errors.New("db down"), "request failed", Fields{"status": 500})
	assert.Contains(t, buf.String(), `"error":"db down"`)
	assert.Contains(t, buf.String(), `"status":500`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("dono@barbearia.com.br"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("a b@c.d"))
	assert.Equal(t, "dono@x.com", NormalizeEmail("  Dono@X.com "))
}
