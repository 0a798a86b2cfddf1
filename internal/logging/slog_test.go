package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func debugLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		level string
		log   func(l *SlogLogger)
	}{
		{"DEBUG", func(l *SlogLogger) { l.Debug(ctx, "fetch started", "session", 1) }},
		{"INFO", func(l *SlogLogger) { l.Info(ctx, "notes loaded", "count", 3) }},
		{"WARN", func(l *SlogLogger) { l.Warn(ctx, "remote mutation failed", "op", "delete") }},
		{"ERROR", func(l *SlogLogger) { l.Error(ctx, "load notes", "error", "boom") }},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			l, buf := debugLogger()
			tc.log(l)
			assert.Contains(t, buf.String(), "level="+tc.level)
		})
	}
}

func TestSlogLogger_With(t *testing.T) {
	l, buf := debugLogger()

	l.With("module", "viewmodel").Warn(context.Background(), "remote mutation failed", "note_id", "n1")

	out := buf.String()
	for _, want := range []string{`msg="remote mutation failed"`, "module=viewmodel", "note_id=n1"} {
		assert.Contains(t, out, want)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewTextLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, "warn")

	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown", "note_id", "n1")

	assert.NotContains(t, buf.String(), "msg=hidden")
	assert.Contains(t, buf.String(), "note_id=n1")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().With("module", "test").Error(context.TODO(), "dropped")
	})
}
