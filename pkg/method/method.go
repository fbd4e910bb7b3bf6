// Package method implements Method and the Methodology registry: the
// (name, version) -> compiled instruction AST store that compile,
// spawn, and destroy mutate.
package method

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/quenio/agerun/internal/registry"
	"github.com/quenio/agerun/pkg/lang/instr"
)

// Version is a parsed MAJOR.MINOR.PATCH identifier (section 3.5).
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion parses a "major.minor.patch" string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("method: invalid version %q, want major.minor.patch", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("method: invalid version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v sorts before other (semver precedence).
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// Method stores the raw source and the instruction AST list parsed
// once at registration (section 4.5).
type Method struct {
	Name         string
	Version      Version
	Source       string
	Instructions []instr.AST
}

// Key is the Methodology registry key for (name, version).
func Key(name string, version Version) string {
	return name + "@" + version.String()
}

// Compile parses source's instruction lines (one per non-blank line)
// into a Method. A parse error on any line fails the whole compile,
// matching section 4.4's "compile ... result = 1 if registration
// succeeded" — a partially-parsed method is never registered.
func Compile(name string, version Version, source string) (*Method, error) {
	var asts []instr.AST
	for lineNo, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		ast, err := instr.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("method %s: line %d: %w", Key(name, version), lineNo+1, err)
		}
		asts = append(asts, ast)
	}
	return &Method{Name: name, Version: version, Source: source, Instructions: asts}, nil
}

// Methodology is the (name, version) -> Method registry. Registering
// the same identity twice replaces the prior entry (section 3.8).
type Methodology struct {
	base *registry.BaseRegistry[*Method]

	mu        sync.RWMutex
	refCounts map[string]int
}

// NewMethodology creates an empty Methodology.
func NewMethodology() *Methodology {
	return &Methodology{
		base:      registry.NewBaseRegistry[*Method](),
		refCounts: make(map[string]int),
	}
}

// Register adds or replaces (name, version) -> m, per section 3.8's
// "registering the same identity twice replaces the prior entry" —
// unlike the generic registry's reject-on-duplicate Register, this
// always succeeds.
func (mt *Methodology) Register(m *Method) {
	key := Key(m.Name, m.Version)
	_ = mt.base.Remove(key)
	_ = mt.base.Register(key, m)
}

// Get looks up the exact (name, version).
func (mt *Methodology) Get(name string, version Version) (*Method, bool) {
	return mt.base.Get(Key(name, version))
}

// Latest returns the semver-max registered version of name.
func (mt *Methodology) Latest(name string) (*Method, bool) {
	var candidates []*Method
	for _, m := range mt.base.List() {
		if m.Name == name {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.Less(candidates[j].Version)
	})
	return candidates[len(candidates)-1], true
}

// List returns every registered method.
func (mt *Methodology) List() []*Method {
	return mt.base.List()
}

// Acquire records that one more agent now references (name, version).
// Called by pkg/agent on spawn.
func (mt *Methodology) Acquire(name string, version Version) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.refCounts[Key(name, version)]++
}

// Release records that one fewer agent references (name, version).
// Called by pkg/agent on destroy.
func (mt *Methodology) Release(name string, version Version) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	key := Key(name, version)
	if mt.refCounts[key] > 0 {
		mt.refCounts[key]--
	}
	if mt.refCounts[key] == 0 {
		delete(mt.refCounts, key)
	}
}

// Unregister removes (name, version), failing if any live agent still
// references it (section 4.5).
func (mt *Methodology) Unregister(name string, version Version) error {
	key := Key(name, version)

	mt.mu.RLock()
	refs := mt.refCounts[key]
	mt.mu.RUnlock()
	if refs > 0 {
		return fmt.Errorf("method: %s still referenced by %d agent(s)", key, refs)
	}

	return mt.base.Remove(key)
}
