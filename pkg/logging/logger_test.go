package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"gibber":  slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for level, want := range cases {
		l := New(level)
		assert.True(t, l.Enabled(context.Background(), want), "level %q should enable %s", level, want)
		assert.False(t, l.Enabled(context.Background(), want-1), "level %q should not enable below %s", level, want)
	}
}

func TestWithCarriesAttributes(t *testing.T) {
	l := Default().With("component", "test")
	assert.NotNil(t, l.Logger)
}
