package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenio/agerun/pkg/config/provider"
)

// stubProvider feeds a fixed byte payload and an optional change channel,
// standing in for provider.FileProvider so Loader can be tested without
// touching the filesystem.
type stubProvider struct {
	data    []byte
	loadErr error
	changes chan struct{}
	closed  bool
}

func (p *stubProvider) Type() provider.Type { return provider.TypeFile }

func (p *stubProvider) Load(ctx context.Context) ([]byte, error) {
	return p.data, p.loadErr
}

func (p *stubProvider) Watch(ctx context.Context) (<-chan struct{}, error) {
	return p.changes, nil
}

func (p *stubProvider) Close() error {
	p.closed = true
	return nil
}

var _ provider.Provider = (*stubProvider)(nil)

func TestLoader_Load_DecodesDefaultsAndValidates(t *testing.T) {
	yamlDoc := []byte(`
logger:
  level: debug
persistence:
  methodology_path: methodology.yaml
  agency_path: agency.yaml
http:
  addr: "${AGERUN_TEST_HTTP_ADDR:-:8080}"
`)
	l := NewLoader(&stubProvider{data: yamlDoc})

	cfg, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "simple", cfg.Logger.Format, "SetDefaults must fill in the default format")
	assert.Equal(t, "methodology.yaml", cfg.Persistence.MethodologyPath)
	assert.Equal(t, ":8080", cfg.HTTP.Addr, "unset env var must fall back to the ${VAR:-default} default")
	assert.True(t, cfg.MetricsEnabled(), "metrics default on when unset")
}

func TestLoader_Load_RejectsInvalidLogLevel(t *testing.T) {
	yamlDoc := []byte(`
logger:
  level: not-a-level
persistence:
  methodology_path: methodology.yaml
  agency_path: agency.yaml
`)
	l := NewLoader(&stubProvider{data: yamlDoc})

	_, err := l.Load(context.Background())
	assert.Error(t, err)
}

func TestLoader_Load_MissingMethodologyPathGetsDefault(t *testing.T) {
	yamlDoc := []byte(`
persistence:
  agency_path: agency.yaml
`)
	l := NewLoader(&stubProvider{data: yamlDoc})

	cfg, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "methodology.yaml", cfg.Persistence.MethodologyPath)
}

func TestLoader_Close_ClosesUnderlyingProvider(t *testing.T) {
	p := &stubProvider{}
	l := NewLoader(p)

	require.NoError(t, l.Close())
	assert.True(t, p.closed)
}

func TestLoader_Watch_InvokesOnChangeAfterReload(t *testing.T) {
	yamlDoc := []byte(`
persistence:
  methodology_path: methodology.yaml
  agency_path: agency.yaml
`)
	changes := make(chan struct{}, 1)
	p := &stubProvider{data: yamlDoc, changes: changes}

	reloaded := make(chan *Config, 1)
	l := NewLoader(p, WithOnChange(func(c *Config) { reloaded <- c }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = l.Watch(ctx) }()
	changes <- struct{}{}

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "methodology.yaml", cfg.Persistence.MethodologyPath)
	case <-ctx.Done():
		t.Fatal("onChange was never invoked")
	}
}

func TestDecodeConfig_UnknownLoggerFieldsAreIgnored(t *testing.T) {
	raw := map[string]any{
		"logger": map[string]any{"level": "warn", "format": "verbose", "color": "always"},
	}
	cfg := &Config{}
	require.NoError(t, decodeConfig(raw, cfg))
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "verbose", cfg.Logger.Format)
}

func TestParseBytes_FallsBackToJSON(t *testing.T) {
	result, err := parseBytes([]byte(`{"http": {"addr": ":9999"}}`))
	require.NoError(t, err)
	httpSection, ok := result["http"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ":9999", httpSection["addr"])
}
