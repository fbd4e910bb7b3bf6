// Package network implements the network delegate (section 4.8.2): a
// stub HTTP-shaped delegate. No real transport is wired — an explicit
// non-goal — only whitelist validation and a canned stub response.
package network

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/quenio/agerun/pkg/data"
)

// Defaults mirror the original's AR_NETWORK_DELEGATE__DEFAULT_* constants.
const (
	DefaultMaxResponseSize = 1024 * 1024
	DefaultTimeoutSeconds  = 30
)

// Config is the network delegate's type-specific configuration
// (section 4.8.2). An empty Whitelist means "allow any URL".
type Config struct {
	Whitelist        []string `mapstructure:"whitelist"`
	MaxResponseSize  int64    `mapstructure:"max_response_size"`
	TimeoutSeconds   int      `mapstructure:"timeout_seconds"`
}

// DecodeConfig decodes a generic config map into Config, applying defaults.
func DecodeConfig(raw map[string]any) (Config, error) {
	var cfg Config
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	return withDefaults(cfg), nil
}

func withDefaults(cfg Config) Config {
	if cfg.MaxResponseSize == 0 {
		cfg.MaxResponseSize = DefaultMaxResponseSize
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return cfg
}

// Handler implements delegate.Handler for the stub network delegate.
type Handler struct {
	cfg Config
}

// New builds a network delegate Handler from cfg.
func New(cfg Config) *Handler {
	return &Handler{cfg: withDefaults(cfg)}
}

// Type implements delegate.Handler.
func (h *Handler) Type() string { return "network" }

// Handle implements delegate.Handler per section 4.8.2's stub contract.
func (h *Handler) Handle(message *data.MapValue, senderID int64) *data.MapValue {
	action := message.GetString("action")
	url := message.GetString("url")
	if action == "" || url == "" {
		return errorResponse("Invalid message")
	}
	if !h.isWhitelisted(url) {
		return errorResponse("URL not whitelisted")
	}

	switch action {
	case "GET":
		return h.stubResponse()
	case "POST":
		if message.GetString("body") == "" {
			return errorResponse("Missing body")
		}
		return h.stubResponse()
	default:
		return errorResponse("Unknown action")
	}
}

func (h *Handler) isWhitelisted(url string) bool {
	if len(h.cfg.Whitelist) == 0 {
		return true
	}
	for _, prefix := range h.cfg.Whitelist {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// stubResponse carries a request_id correlation identifier (a
// github.com/google/uuid v4) so a future real transport could match
// responses to requests without changing the wire schema spec.md §4.8.2 names.
func (h *Handler) stubResponse() *data.MapValue {
	const content = "stub"
	if int64(len(content)) > h.cfg.MaxResponseSize {
		return errorResponse("Response too large")
	}
	resp := data.NewMap()
	resp.SetString("status", "success")
	resp.SetString("content", content)
	resp.SetInteger("stubbed", 1)
	resp.SetString("request_id", uuid.NewString())
	return resp
}

func errorResponse(message string) *data.MapValue {
	resp := data.NewMap()
	resp.SetString("status", "error")
	resp.SetString("message", message)
	return resp
}
