package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Digital-Shane/media-renamer/internal/media"
)

// Registry manages the providers available for one run and tracks which of
// them have been disabled by authentication failures.
type Registry struct {
	mu         sync.RWMutex
	providers  map[string]Provider
	priorities map[string]map[media.Kind]int
	disabled   map[string]error
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers:  make(map[string]Provider),
		priorities: make(map[string]map[media.Kind]int),
		disabled:   make(map[string]error),
	}
}

// Register adds a provider to the registry. priorities maps each kind the
// provider serves to its priority for that kind; higher runs first. A
// provider with no entry for a kind is never consulted for it.
func (r *Registry) Register(p Provider, priorities map[media.Kind]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}
	if len(priorities) == 0 {
		return fmt.Errorf("provider %s serves no media kinds", name)
	}

	prio := make(map[media.Kind]int, len(priorities))
	for k, v := range priorities {
		prio[k] = v
	}
	r.providers[name] = p
	r.priorities[name] = prio
	return nil
}

// Get returns a provider by name
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	return p, exists
}

// Names returns every registered provider name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// ForKind returns the enabled providers serving kind, highest priority
// first. Equal priorities are ordered by name so the result is stable.
func (r *Registry) ForKind(kind media.Kind) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type entry struct {
		name     string
		priority int
	}
	var entries []entry
	for name, prio := range r.priorities {
		if _, off := r.disabled[name]; off {
			continue
		}
		if p, ok := prio[kind]; ok {
			entries = append(entries, entry{name: name, priority: p})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].name < entries[j].name
	})

	result := make([]Provider, 0, len(entries))
	for _, e := range entries {
		result = append(result, r.providers[e.name])
	}
	return result
}

// Disable removes a provider from ForKind results for the rest of the run.
// The first cause recorded is kept.
func (r *Registry) Disable(name string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return
	}
	if _, already := r.disabled[name]; already {
		return
	}
	if cause == nil {
		cause = fmt.Errorf("provider %s disabled", name)
	}
	r.disabled[name] = cause
}

// DisabledReason returns the cause a provider was disabled with, or nil if
// it is still enabled.
func (r *Registry) DisabledReason(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.disabled[name]
}

// AnyDisabled reports whether any provider was disabled during the run.
func (r *Registry) AnyDisabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.disabled) > 0
}

// DisabledFor returns the cause of the first disabled provider, by name,
// that serves kind. It is nil when every provider for kind is enabled.
func (r *Registry) DisabledFor(kind media.Kind) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, prio := range r.priorities {
		if _, ok := prio[kind]; ok {
			if _, off := r.disabled[name]; off {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return r.disabled[names[0]]
}
