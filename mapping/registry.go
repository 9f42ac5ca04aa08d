// registry.go - Strategy lookup and selection

package mapping

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry holds the strategies available to a process.
type Registry struct {
	mu      sync.RWMutex
	mappers map[string]Mapper
}

// NewRegistry builds a registry holding ms.
func NewRegistry(ms ...Mapper) *Registry {
	r := &Registry{mappers: make(map[string]Mapper, len(ms))}
	for _, m := range ms {
		r.Register(m)
	}
	return r
}

var builtin = NewRegistry(Native, JSON, MgoCompat)

// Builtin returns the registry of the built-in strategies. Build a new
// registry from Builtin().Mappers() to add custom ones.
func Builtin() *Registry {
	return builtin
}

// Register adds m, replacing any strategy with the same name.
func (r *Registry) Register(m Mapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappers[m.Name()] = m
}

// Lookup returns the strategy registered under name.
func (r *Registry) Lookup(name string) (Mapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappers[name]
	return m, ok
}

// Mappers returns every strategy, highest priority first.
func (r *Registry) Mappers() []Mapper {
	r.mu.RLock()
	ms := make([]Mapper, 0, len(r.mappers))
	for _, m := range r.mappers {
		ms = append(ms, m)
	}
	r.mu.RUnlock()

	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Priority() != ms[j].Priority() {
			return ms[i].Priority() > ms[j].Priority()
		}
		return ms[i].Name() < ms[j].Name()
	})
	return ms
}

// Select returns the strategy named by override, or the highest priority one
// when override is empty.
func (r *Registry) Select(override string) (Mapper, error) {
	if override != "" {
		m, ok := r.Lookup(override)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownMapper, "%q", override)
		}
		return m, nil
	}
	ms := r.Mappers()
	if len(ms) == 0 {
		return nil, errors.Wrap(ErrUnknownMapper, "no strategy registered")
	}
	return ms[0], nil
}
