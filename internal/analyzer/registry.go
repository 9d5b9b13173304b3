// Package analyzer contains the static-analysis tool adapters and the
// extension registry that dispatches changed files to them.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/nitpickbot/nitpick/internal/domain/port/driven"
)

// Registry maps a file extension to one or more ordered analyzers. It is
// populated during startup configuration and frozen before polling begins;
// the frozen table is safe for unsynchronized concurrent reads.
type Registry struct {
	byExt  map[string][]driven.Analyzer
	frozen bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string][]driven.Analyzer)}
}

// Register binds an analyzer to a file extension. Analyzers bound to the same
// extension run in registration order. Registration after Freeze is rejected.
func (r *Registry) Register(ext string, a driven.Analyzer) error {
	if r.frozen {
		return fmt.Errorf("registry is frozen, cannot register %s for %s", a.Name(), ext)
	}
	ext = normalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("invalid file extension for analyzer %s", a.Name())
	}
	r.byExt[ext] = append(r.byExt[ext], a)
	return nil
}

// Freeze marks the registry read-only. Idempotent.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Resolve returns the ordered analyzers for a file extension. Unrecognized
// extensions resolve to an empty list; unsupported file types are skipped,
// not errors.
func (r *Registry) Resolve(ext string) []driven.Analyzer {
	return r.byExt[normalizeExt(ext)]
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// BuildRegistry constructs a frozen registry from configured bindings of
// file extension to analyzer identifiers.
func BuildRegistry(bindings map[string][]string) (*Registry, error) {
	builtin := map[string]driven.Analyzer{
		"flake8":     Flake8{},
		"pydocstyle": Pydocstyle{},
		"rubocop":    Rubocop{},
		"eslint":     ESLint{},
	}

	reg := NewRegistry()
	for ext, ids := range bindings {
		for _, id := range ids {
			a, ok := builtin[id]
			if !ok {
				return nil, fmt.Errorf("unknown analyzer %q bound to %s", id, ext)
			}
			if err := reg.Register(ext, a); err != nil {
				return nil, err
			}
		}
	}
	reg.Freeze()
	return reg, nil
}
