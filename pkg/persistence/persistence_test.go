package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenio/agerun/pkg/agent"
	"github.com/quenio/agerun/pkg/eventlog"
	"github.com/quenio/agerun/pkg/method"
)

func newLog() *eventlog.Log { return eventlog.New(nil, eventlog.DefaultCapacity) }

func TestMethodology_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "methodology.yaml")

	src := method.NewMethodology()
	m, err := method.Compile("greeter", method.Version{Major: 1, Minor: 0, Patch: 0}, "memory.x := 1")
	require.NoError(t, err)
	src.Register(m)

	require.NoError(t, SaveMethodology(path, src))

	dst := method.NewMethodology()
	require.NoError(t, LoadMethodology(path, dst, newLog()))

	got, ok := dst.Get("greeter", method.Version{Major: 1, Minor: 0, Patch: 0})
	require.True(t, ok)
	assert.Equal(t, "memory.x := 1", got.Source)
}

func TestMethodology_SkipsEntryWithBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "methodology.yaml")
	yamlContent := []byte("- name: bad\n  version: not-a-version\n  instructions: \"memory.x := 1\"\n")
	require.NoError(t, writeFile(path, yamlContent))

	dst := method.NewMethodology()
	require.NoError(t, LoadMethodology(path, dst, newLog()))
	assert.Empty(t, dst.List())
}

func TestAgency_SnapshotAndRestoreRoundTrip(t *testing.T) {
	methodology := method.NewMethodology()
	m, err := method.Compile("greeter", method.Version{Major: 1, Minor: 0, Patch: 0}, "memory.x := 1")
	require.NoError(t, err)
	methodology.Register(m)

	agents := agent.NewRegistry()
	spawned, err := agents.Spawn(methodology, m, nil)
	require.NoError(t, err)
	spawned.Memory().SetString("note", "hello")

	snap := Snapshot(agents)
	require.Len(t, snap.Agents, 1)
	assert.Equal(t, spawned.ID(), snap.Agents[0].ID)
	assert.Equal(t, "hello", snap.Agents[0].Memory["note"])

	restoredAgents := agent.NewRegistry()
	require.NoError(t, Restore(snap, methodology, restoredAgents))

	restored, ok := restoredAgents.Get(spawned.ID())
	require.True(t, ok)
	assert.Equal(t, "hello", restored.Memory().GetString("note"))
	assert.Equal(t, 0, restored.QueueLen(), "restored agents do not get a fresh spawn lifecycle message")
}

func TestAgency_LoadSkipsUnknownMethod(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agency.yaml")
	yamlContent := []byte("version: \"1.0\"\nagents:\n  - id: 1\n    method_name: ghost\n    method_version: 1.0.0\n    memory: {}\n")
	require.NoError(t, writeFile(path, yamlContent))

	methodology := method.NewMethodology()
	agents := agent.NewRegistry()
	require.NoError(t, LoadAgency(path, methodology, agents))
	assert.Equal(t, 0, agents.Count())
}

func TestAgency_LoadAdvancesNextID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agency.yaml")
	yamlContent := []byte("version: \"1.0\"\nagents:\n  - id: 5\n    method_name: greeter\n    method_version: 1.0.0\n    memory: {}\n")
	require.NoError(t, writeFile(path, yamlContent))

	methodology := method.NewMethodology()
	m, err := method.Compile("greeter", method.Version{Major: 1, Minor: 0, Patch: 0}, "memory.x := 1")
	require.NoError(t, err)
	methodology.Register(m)

	agents := agent.NewRegistry()
	require.NoError(t, LoadAgency(path, methodology, agents))

	next, spawnErr := agents.Spawn(methodology, m, nil)
	require.NoError(t, spawnErr)
	assert.Equal(t, int64(6), next.ID())
}

func writeFile(path string, content []byte) error {
	return os.WriteFile(path, content, 0o644)
}
