// cache.go - Process-wide cache of resolved field names

package property

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type segment struct {
	name   string
	inline bool
}

var (
	names     sync.Map // nameKey -> segment
	namesSize atomic.Int64
)

type nameKey struct {
	resolver string
	field    fieldID
}

// CacheLen reports how many field names have been resolved and cached.
func CacheLen() int {
	return int(namesSize.Load())
}

// resolve returns the cached segment of d under r, computing it once.
// Entries are never invalidated.
func (d *Descriptor) resolve(r Resolver) segment {
	key := nameKey{resolver: r.Key(), field: d.id()}
	if s, ok := names.Load(key); ok {
		return s.(segment)
	}

	var s segment
	if d.Resolver == r.Key() && (d.Name != "" || d.Inline) {
		s = segment{name: d.Name, inline: d.Inline}
	} else {
		name, inline, err := r.FieldName(d.sf)
		if err != nil {
			panic(fmt.Sprintf("property: %s: %v", d.Key(), err))
		}
		if name == "" && !inline {
			panic(fmt.Sprintf("property: %s is not mapped by %s", d.Key(), r.Key()))
		}
		s = segment{name: name, inline: inline}
	}

	actual, loaded := names.LoadOrStore(key, s)
	if !loaded {
		namesSize.Add(1)
	}
	return actual.(segment)
}
