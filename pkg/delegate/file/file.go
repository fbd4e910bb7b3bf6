// Package file implements the file delegate (section 4.8.1): mediates
// read/write access to a sandboxed directory tree.
package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/quenio/agerun/pkg/data"
)

// DefaultMaxFileSize is used when Config.MaxFileSize is 0, mirroring
// the teacher's read_file tool default (pkg/tool/filetool.ReadFileConfig).
const DefaultMaxFileSize = 10 * 1024 * 1024

// Config is the file delegate's type-specific configuration (section 4.8.1).
type Config struct {
	AllowedPath string `mapstructure:"allowed_path"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

// DecodeConfig decodes a generic config map into Config, applying
// defaults — grounded on pkg/config's mapstructure-based decoding.
func DecodeConfig(raw map[string]any) (Config, error) {
	var cfg Config
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return cfg, nil
}

// Handler implements delegate.Handler for the file delegate.
type Handler struct {
	cfg Config
}

// New builds a file delegate Handler from cfg.
func New(cfg Config) *Handler {
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Handler{cfg: cfg}
}

// Type implements delegate.Handler.
func (h *Handler) Type() string { return "file" }

// Handle implements delegate.Handler per section 4.8.1's message/response schema.
func (h *Handler) Handle(message *data.MapValue, senderID int64) *data.MapValue {
	action := message.GetString("action")
	path := message.GetString("path")

	resolved, err := h.resolvePath(path)
	if err != nil {
		return errorResponse("Invalid path")
	}

	switch action {
	case "read":
		return h.handleRead(resolved)
	case "write":
		return h.handleWrite(resolved, message.GetString("content"))
	default:
		return errorResponse("Unknown action")
	}
}

// resolvePath rejects any path containing ".." or escaping AllowedPath
// lexically — grounded on pkg/tool/filetool.validatePath's
// filepath.Clean + filepath.Abs + strings.HasPrefix shape.
func (h *Handler) resolvePath(path string) (string, error) {
	if strings.Contains(path, "..") {
		return "", os.ErrInvalid
	}
	full := filepath.Join(h.cfg.AllowedPath, path)
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	absRoot, err := filepath.Abs(h.cfg.AllowedPath)
	if err != nil {
		return "", err
	}
	if absFull != absRoot && !strings.HasPrefix(absFull, absRoot+string(filepath.Separator)) {
		return "", os.ErrInvalid
	}
	return absFull, nil
}

func (h *Handler) handleRead(path string) *data.MapValue {
	info, err := os.Stat(path)
	if err != nil {
		return errorResponse("File not found")
	}
	if info.Size() > h.cfg.MaxFileSize {
		return errorResponse("File too large")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return errorResponse("Read failed")
	}
	resp := data.NewMap()
	resp.SetString("status", "success")
	resp.SetString("content", string(content))
	return resp
}

func (h *Handler) handleWrite(path, content string) *data.MapValue {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errorResponse("Write failed")
	}
	resp := data.NewMap()
	resp.SetString("status", "success")
	return resp
}

func errorResponse(message string) *data.MapValue {
	resp := data.NewMap()
	resp.SetString("status", "error")
	resp.SetString("message", message)
	return resp
}
