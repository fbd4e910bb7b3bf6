package persistence

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quenio/agerun/pkg/agent"
	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/method"
)

// AgencyVersion is the only agency file schema version understood
// (section 6.3: `{version: "1.0", ...}`).
const AgencyVersion = "1.0"

// AgentEntry is one agency file record (section 6.3).
type AgentEntry struct {
	ID            int64          `yaml:"id"`
	MethodName    string         `yaml:"method_name"`
	MethodVersion string         `yaml:"method_version"`
	Memory        map[string]any `yaml:"memory"`
}

// AgencyFile is the top-level agency snapshot document.
type AgencyFile struct {
	Version string       `yaml:"version"`
	Agents  []AgentEntry `yaml:"agents"`
}

// LoadAgency reads an agency YAML file and restores every entry whose
// (method_name, method_version) is registered in methodology, into
// agents. Per section 6.3: entries referencing an unknown method, or
// with id<=0 or missing method fields, are skipped; a malformed
// top-level `agents` (not a list) is a fatal load error surfaced by
// yaml.Unmarshal's own type mismatch. After a successful load, the
// registry's id allocator is advanced past every restored id.
func LoadAgency(path string, methodology *method.Methodology, agents *agent.Registry) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("persistence: read agency file: %w", err)
	}

	var file AgencyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("persistence: parse agency file: %w", err)
	}

	return Restore(file, methodology, agents)
}

// SaveAgency snapshots every agent in agents to an AgencyFile and
// writes it to path.
func SaveAgency(path string, agents *agent.Registry) error {
	file := Snapshot(agents)
	out, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("persistence: encode agency file: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("persistence: write agency file: %w", err)
	}
	return nil
}

// Snapshot captures the current state of every registered agent as an
// AgencyFile — a pure capture step separated from how it's written to
// disk, the seam original_source/modules/ar_agent_store_fixture.h's
// test fixtures use for round-trip verification (section 8.2).
func Snapshot(agents *agent.Registry) AgencyFile {
	list := agents.Agents()
	entries := make([]AgentEntry, len(list))
	for i, a := range list {
		entries[i] = AgentEntry{
			ID:            a.ID(),
			MethodName:    a.Method().Name,
			MethodVersion: a.Method().Version.String(),
			Memory:        data.ToNative(a.Memory()).(map[string]any),
		}
	}
	return AgencyFile{Version: AgencyVersion, Agents: entries}
}

// Restore applies an AgencyFile snapshot to agents, exactly as
// LoadAgency applies a file read from disk — the pure-apply
// counterpart to Snapshot.
func Restore(file AgencyFile, methodology *method.Methodology, agents *agent.Registry) error {
	var maxID int64
	for _, e := range file.Agents {
		if e.ID <= 0 || e.MethodName == "" || e.MethodVersion == "" {
			continue
		}
		v, err := method.ParseVersion(e.MethodVersion)
		if err != nil {
			continue
		}
		m, ok := methodology.Get(e.MethodName, v)
		if !ok {
			continue
		}
		memory := nativeMapToValue(e.Memory)
		a := agent.Restore(m, e.ID, memory, data.NewMap())
		if err := agents.Adopt(methodology, a); err != nil {
			continue
		}
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	agents.SetNextID(maxID + 1)
	return nil
}

func nativeMapToValue(raw map[string]any) *data.MapValue {
	if raw == nil {
		return data.NewMap()
	}
	v := data.FromNative(raw)
	m, ok := v.(*data.MapValue)
	if !ok {
		return data.NewMap()
	}
	return m
}
