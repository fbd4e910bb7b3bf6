// Package log implements the log delegate (section 4.8.3): formats and
// dispatches agent-originated log lines to the event log.
package log

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/eventlog"
)

// Level is the log delegate's own three-level severity, distinct from
// eventlog.Level but mapped onto it 1:1 below.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func parseLevel(s string) (Level, bool) {
	switch s {
	case "info":
		return Info, true
	case "warning":
		return Warning, true
	case "error":
		return Error, true
	default:
		return 0, false
	}
}

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Config is the log delegate's type-specific configuration (section 4.8.3).
type Config struct {
	MinLevel string `mapstructure:"min_level"`
}

// DecodeConfig decodes a generic config map into Config.
func DecodeConfig(raw map[string]any) (Config, error) {
	var cfg Config
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.MinLevel == "" {
		cfg.MinLevel = "info"
	}
	return cfg, nil
}

// Handler implements delegate.Handler for the log delegate, dispatching
// formatted lines to an eventlog.Log sink (section 4.9).
type Handler struct {
	minLevel Level
	sink     *eventlog.Log
	now      func() time.Time
}

// New builds a log delegate Handler writing to sink.
func New(cfg Config, sink *eventlog.Log) *Handler {
	min, ok := parseLevel(cfg.MinLevel)
	if !ok {
		min = Info
	}
	return &Handler{minLevel: min, sink: sink, now: time.Now}
}

// Type implements delegate.Handler.
func (h *Handler) Type() string { return "log" }

// Handle implements delegate.Handler per section 4.8.3's rules.
func (h *Handler) Handle(message *data.MapValue, senderID int64) *data.MapValue {
	levelStr := message.GetString("level")
	text := message.GetString("message")
	if levelStr == "" || text == "" {
		return errorResponse("Invalid message")
	}

	agentIDField := message.GetData("agent_id")
	if agentIDField != nil {
		if data.GetType(agentIDField) != data.Integer {
			return errorResponse("Invalid agent_id")
		}
		if data.GetInteger(agentIDField) != senderID {
			return errorResponse("agent_id does not match sender_id")
		}
	}

	level, ok := parseLevel(levelStr)
	if !ok {
		return errorResponse("Invalid log level")
	}
	if level < h.minLevel {
		return errorResponse("Log level below minimum")
	}

	line := fmt.Sprintf("%s level=%s agent=%d message=%s", h.timestamp(), level, senderID, text)
	switch level {
	case Warning:
		h.sink.Warning(line)
	case Error:
		h.sink.Error(line)
	default:
		h.sink.Info(line)
	}

	resp := data.NewMap()
	resp.SetString("status", "success")
	return resp
}

func (h *Handler) timestamp() string {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	return now().UTC().Format("2006-01-02T15:04:05Z")
}

func errorResponse(message string) *data.MapValue {
	resp := data.NewMap()
	resp.SetString("status", "error")
	resp.SetString("message", message)
	return resp
}
