package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenio/agerun/pkg/data"
)

func newMessage(action, path, content string) *data.MapValue {
	m := data.NewMap()
	m.SetString("action", action)
	m.SetString("path", path)
	if content != "" {
		m.SetString("content", content)
	}
	return m
}

func TestHandle_WriteThenRead(t *testing.T) {
	dir := t.TempDir()
	h := New(Config{AllowedPath: dir})

	writeResp := h.Handle(newMessage("write", "note.txt", "hello"), 1)
	assert.Equal(t, "success", writeResp.GetString("status"))

	readResp := h.Handle(newMessage("read", "note.txt", ""), 1)
	assert.Equal(t, "success", readResp.GetString("status"))
	assert.Equal(t, "hello", readResp.GetString("content"))
}

func TestHandle_RejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	h := New(Config{AllowedPath: dir})

	resp := h.Handle(newMessage("read", "../outside.txt", ""), 1)
	assert.Equal(t, "error", resp.GetString("status"))
	assert.Equal(t, "Invalid path", resp.GetString("message"))
}

func TestHandle_RejectsOversizedRead(t *testing.T) {
	dir := t.TempDir()
	bigPath := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(bigPath, make([]byte, 100), 0o644))

	h := New(Config{AllowedPath: dir, MaxFileSize: 10})
	resp := h.Handle(newMessage("read", "big.txt", ""), 1)
	assert.Equal(t, "error", resp.GetString("status"))
	assert.Equal(t, "File too large", resp.GetString("message"))
}

func TestDecodeConfig_AppliesDefault(t *testing.T) {
	cfg, err := DecodeConfig(map[string]any{"allowed_path": "/tmp/x"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", cfg.AllowedPath)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
}
