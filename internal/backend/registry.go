package backend

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// tables is one immutable snapshot of the registry state. Lookups load a
// snapshot once and never see a mutation mid-read; writers build a fresh
// snapshot and swap it in.
type tables struct {
	backends   map[string]Backend
	order      []string
	deprecated map[string]string
	aliases    map[string]string
	groups     map[string][]string
}

func emptyTables() *tables {
	return &tables{
		backends:   map[string]Backend{},
		deprecated: map[string]string{},
		aliases:    map[string]string{},
		groups:     map[string][]string{},
	}
}

func (t *tables) clone() *tables {
	next := &tables{
		backends:   make(map[string]Backend, len(t.backends)),
		order:      append([]string(nil), t.order...),
		deprecated: make(map[string]string, len(t.deprecated)),
		aliases:    make(map[string]string, len(t.aliases)),
		groups:     make(map[string][]string, len(t.groups)),
	}
	for k, v := range t.backends {
		next.backends[k] = v
	}
	for k, v := range t.deprecated {
		next.deprecated[k] = v
	}
	for k, v := range t.aliases {
		next.aliases[k] = v
	}
	for k, v := range t.groups {
		next.groups[k] = append([]string(nil), v...)
	}
	return next
}

// Registry holds backend handles keyed by canonical name, plus the three
// auxiliary lookup tables: deprecated-name, alias and group. All four are
// populated at provider-initialization time and read per resolution call.
type Registry struct {
	mu      sync.Mutex // serializes writers only
	current atomic.Pointer[tables]
}

func NewRegistry() *Registry {
	r := &Registry{}
	r.current.Store(emptyTables())
	return r
}

func (r *Registry) snapshot() *tables {
	return r.current.Load()
}

func (r *Registry) update(mutate func(*tables) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.current.Load().clone()
	if err := mutate(next); err != nil {
		return err
	}
	r.current.Store(next)
	return nil
}

// Register adds a backend under its canonical name. Registering a name
// twice is rejected: canonical names are unique for the life of a registry.
func (r *Registry) Register(b Backend) error {
	if b == nil {
		return fmt.Errorf("register: nil backend")
	}
	name := b.Name()
	if name == "" {
		return fmt.Errorf("register: backend has empty canonical name")
	}
	return r.update(func(t *tables) error {
		if _, exists := t.backends[name]; exists {
			return fmt.Errorf("register: backend %q already registered", name)
		}
		t.backends[name] = b
		t.order = append(t.order, name)
		return nil
	})
}

// MapDeprecated records a legacy name for a canonical one. The canonical
// target does not have to be registered: a target that never shows up is
// the normal "optional component not installed" state, not a corruption.
func (r *Registry) MapDeprecated(oldName, canonical string) {
	_ = r.update(func(t *tables) error {
		t.deprecated[oldName] = canonical
		return nil
	})
}

// SetAlias records an account-scoped display name for a canonical one.
func (r *Registry) SetAlias(alias, canonical string) {
	_ = r.update(func(t *tables) error {
		t.aliases[alias] = canonical
		return nil
	})
}

// SetGroup records a priority-ordered candidate list for a group name.
// Order is significant: resolution picks the first available candidate.
func (r *Registry) SetGroup(group string, candidates ...string) {
	_ = r.update(func(t *tables) error {
		t.groups[group] = append([]string(nil), candidates...)
		return nil
	})
}

// Get fetches a backend by exact canonical name. Availability is not
// consulted: an exact request is honored verbatim.
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.snapshot().backends[name]
	return b, ok
}

// List returns all registered backends in registration order.
func (r *Registry) List() []Backend {
	t := r.snapshot()
	out := make([]Backend, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.backends[name])
	}
	return out
}

// Deprecated returns a copy of the old-name to canonical-name table.
func (r *Registry) Deprecated() map[string]string {
	t := r.snapshot()
	out := make(map[string]string, len(t.deprecated))
	for k, v := range t.deprecated {
		out[k] = v
	}
	return out
}

// Aliases returns a copy of the display-name to canonical-name table.
func (r *Registry) Aliases() map[string]string {
	t := r.snapshot()
	out := make(map[string]string, len(t.aliases))
	for k, v := range t.aliases {
		out[k] = v
	}
	return out
}

// Groups returns a copy of the group table. Candidate order is preserved.
func (r *Registry) Groups() map[string][]string {
	t := r.snapshot()
	out := make(map[string][]string, len(t.groups))
	for k, v := range t.groups {
		out[k] = append([]string(nil), v...)
	}
	return out
}
