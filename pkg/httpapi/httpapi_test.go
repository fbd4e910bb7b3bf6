package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenio/agerun/pkg/agent"
	"github.com/quenio/agerun/pkg/method"
	"github.com/quenio/agerun/pkg/metrics"
)

type fakeSystem struct {
	agents      *agent.Registry
	methodology *method.Methodology
}

func (f *fakeSystem) Agents() *agent.Registry           { return f.agents }
func (f *fakeSystem) Methodology() *method.Methodology { return f.methodology }

func newFakeSystem(t *testing.T) *fakeSystem {
	t.Helper()
	methodology := method.NewMethodology()
	m, err := method.Compile("greeter", method.Version{Major: 1, Minor: 0, Patch: 0}, "memory.x := 1")
	require.NoError(t, err)
	methodology.Register(m)

	agents := agent.NewRegistry()
	spawned, err := agents.Spawn(methodology, m, nil)
	require.NoError(t, err)
	spawned.Memory().SetString("note", "hi")

	return &fakeSystem{agents: agents, methodology: methodology}
}

func TestListAgents(t *testing.T) {
	sys := newFakeSystem(t)
	r := Router(sys, metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []agentSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "greeter", body[0].MethodName)
	assert.Equal(t, "1.0.0", body[0].MethodVersion)
}

func TestGetAgent_ReturnsMemorySnapshot(t *testing.T) {
	sys := newFakeSystem(t)
	r := Router(sys, metrics.New())
	id := sys.agents.Agents()[0].ID()

	req := httptest.NewRequest(http.MethodGet, "/agents/"+strconv.FormatInt(id, 10), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "note")
	assert.Contains(t, rec.Body.String(), "hi")
}

func TestGetAgent_UnknownIDIs404(t *testing.T) {
	sys := newFakeSystem(t)
	r := Router(sys, metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/agents/999", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMethods(t *testing.T) {
	sys := newFakeSystem(t)
	r := Router(sys, metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/methods", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []methodSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "greeter", body[0].Name)
}

func TestMetricsEndpoint(t *testing.T) {
	sys := newFakeSystem(t)
	r := Router(sys, metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
