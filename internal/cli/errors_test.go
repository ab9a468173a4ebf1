package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *ExitError
		code int
		msg  string
	}{
		{name: "config", err: ConfigError("loading config", cause), code: ExitConfig, msg: "loading config: boom"},
		{name: "expression", err: ExpressionError("parsing expression", cause), code: ExitExpression, msg: "parsing expression: boom"},
		{name: "db", err: DBConnectError("connecting", cause), code: ExitDBConnect, msg: "connecting: boom"},
		{name: "general", err: GeneralError("failed", nil), code: ExitGeneral, msg: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.msg, tt.err.Error())

			var exitErr *ExitError
			assert.True(t, errors.As(fmt.Errorf("wrapped: %w", tt.err), &exitErr))
		})
	}

	assert.ErrorIs(t, ExpressionError("x", cause), cause)
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	logger, err := NewLogger(io.Discard, "warn", 0)
	assert.NoError(t, err)
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))

	logger, err = NewLogger(io.Discard, "warn", 2)
	assert.NoError(t, err)
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug), "two -v flags reach debug")

	_, err = NewLogger(io.Discard, "loud", 0)
	assert.Error(t, err)
}
