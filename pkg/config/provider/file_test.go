package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestNewFileProvider_ResolvesToAbsolutePath(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  level: info\n")

	p, err := NewFileProvider(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p.path))
}

func TestFileProvider_Load_ReturnsFileBytes(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  level: debug\n")

	p, err := NewFileProvider(path)
	require.NoError(t, err)

	data, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), "level: debug")
}

func TestFileProvider_Load_MissingFileErrors(t *testing.T) {
	p, err := NewFileProvider(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	_, err = p.Load(context.Background())
	assert.Error(t, err)
}

func TestFileProvider_Type_ReportsFile(t *testing.T) {
	p, err := NewFileProvider("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, TypeFile, p.Type())
}

func TestFileProvider_Watch_SignalsOnWrite(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  level: info\n")

	p, err := NewFileProvider(path)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := p.Watch(ctx)
	require.NoError(t, err)
	require.NotNil(t, changes)

	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: debug\n"), 0644))

	select {
	case _, ok := <-changes:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification after writing the watched file")
	}
}

func TestFileProvider_Close_IsIdempotentAndRejectsFurtherWatch(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  level: info\n")

	p, err := NewFileProvider(path)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Watch(context.Background())
	assert.Error(t, err)
}

func TestNew_UnsupportedProviderTypeErrors(t *testing.T) {
	_, err := New(ProviderConfig{Type: Type("s3")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "s3")
}

func TestNew_DefaultsToFileProvider(t *testing.T) {
	path := writeTempConfig(t, "logger:\n  level: info\n")

	p, err := New(ProviderConfig{Path: path})
	require.NoError(t, err)
	assert.Equal(t, TypeFile, p.Type())
}
