// Package persistence implements the methodology and agency YAML file
// formats (section 6.3): load/save plus a pure Snapshot/Restore seam
// over a running system, grounded on the teacher's gopkg.in/yaml.v3 +
// fsnotify config-loading stack (pkg/config/loader.go,
// pkg/config/provider/file.go).
package persistence

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quenio/agerun/pkg/eventlog"
	"github.com/quenio/agerun/pkg/method"
)

// MethodEntry is one methodology file record (section 6.3).
type MethodEntry struct {
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Instructions string `yaml:"instructions"`
}

// LoadMethodology reads a methodology YAML file (a bare list of
// MethodEntry) and compiles every entry into m. Entries with an
// unparsable version or a compile failure are skipped and logged
// rather than failing the whole load — the methodology file schema
// itself has no "malformed entry" rule the way the agency file does
// (section 6.3), so this mirrors agency's forgiving stance.
func LoadMethodology(path string, m *method.Methodology, log *eventlog.Log) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("persistence: read methodology file: %w", err)
	}

	var entries []MethodEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("persistence: parse methodology file: %w", err)
	}

	for _, e := range entries {
		v, err := method.ParseVersion(e.Version)
		if err != nil {
			log.Warning(fmt.Sprintf("persistence: skipping method %s: %s", e.Name, err))
			continue
		}
		compiled, err := method.Compile(e.Name, v, e.Instructions)
		if err != nil {
			log.Warning(fmt.Sprintf("persistence: skipping method %s@%s: %s", e.Name, e.Version, err))
			continue
		}
		m.Register(compiled)
	}
	return nil
}

// SaveMethodology writes every registered method to path as a
// methodology YAML file.
func SaveMethodology(path string, m *method.Methodology) error {
	methods := m.List()
	entries := make([]MethodEntry, len(methods))
	for i, meth := range methods {
		entries[i] = MethodEntry{
			Name:         meth.Name,
			Version:      meth.Version.String(),
			Instructions: meth.Source,
		}
	}
	out, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("persistence: encode methodology file: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("persistence: write methodology file: %w", err)
	}
	return nil
}

// ReloadMethodology re-reads path and registers every entry into m,
// replacing any (name, version) already present — Methodology.Register
// always replaces same-identity methods, so this is a straightforward
// re-application rather than a diff against what's currently loaded.
func ReloadMethodology(path string, m *method.Methodology, log *eventlog.Log) error {
	return LoadMethodology(path, m, log)
}
