package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelWarn,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestComponent_TagsRecordsWithComponentAttr(t *testing.T) {
	var buf bytes.Buffer
	defaultLogger = slog.New(slog.NewTextHandler(&buf, nil))

	Component("eventlog").Info("hello")

	assert.Contains(t, buf.String(), "component=eventlog")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestGetLogger_InitializesOnFirstUseOnly(t *testing.T) {
	defaultLogger = nil
	first := GetLogger()
	assert.NotNil(t, first)
	assert.Same(t, first, GetLogger(), "GetLogger must not re-initialize once set")
}
