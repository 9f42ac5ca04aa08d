// collection.go - Sequence and keyed-container path variants

package property

import (
	"fmt"
	"strconv"
)

const (
	posOp    = "$"
	allPosOp = "$[]"
)

// Col is the path of a sequence field. Its element views are produced by wrap
// so that generated path types can keep navigating.
type Col[T, E any] struct {
	Node[T]
	wrap func(Node[T]) E
}

// NewCol builds a collection path at n.
func NewCol[T, E any](n Node[T], wrap func(Node[T]) E) Col[T, E] {
	return Col[T, E]{Node: n, wrap: wrap}
}

// Elem addresses the elements. Mongo matches a dotted path through an array
// against each element, so the path is unchanged.
func (c Col[T, E]) Elem() E { return c.wrap(c.Node) }

// PosOp appends the positional operator $.
func (c Col[T, E]) PosOp() E { return c.wrap(c.Node.Custom(posOp)) }

// AllPosOp appends the all positional operator $[].
func (c Col[T, E]) AllPosOp() E { return c.wrap(c.Node.Custom(allPosOp)) }

// FilteredPosOp appends the filtered positional operator $[id].
func (c Col[T, E]) FilteredPosOp(id string) E { return c.wrap(c.Node.Custom(filteredPosOp(id))) }

// Pos appends an array index.
func (c Col[T, E]) Pos(i int) E { return c.wrap(c.Node.Custom(strconv.Itoa(i))) }

// Map is the path of a keyed field.
type Map[T any, K comparable, V any] struct {
	Node[T]
	wrap func(Node[T]) V
}

// NewMap builds a map path at n.
func NewMap[T any, K comparable, V any](n Node[T], wrap func(Node[T]) V) Map[T, K, V] {
	return Map[T, K, V]{Node: n, wrap: wrap}
}

// Key addresses the value stored under k.
func (m Map[T, K, V]) Key(k K) V { return m.wrap(m.Node.Custom(KeyProjection(k))) }

// KeyProjection renders a map key as a path segment.
func KeyProjection[K comparable](k K) string {
	return fmt.Sprint(k)
}

func filteredPosOp(id string) string {
	return "$[" + id + "]"
}

// Elem addresses the elements of p.
func Elem[T, E any](p Prop[T, []E]) Prop[T, E] {
	return Prop[T, E]{Node: p.Node}
}

// PosOp appends $ to p.
func PosOp[T, E any](p Prop[T, []E]) Prop[T, E] {
	return Prop[T, E]{Node: p.Node.Custom(posOp)}
}

// AllPosOp appends $[] to p.
func AllPosOp[T, E any](p Prop[T, []E]) Prop[T, E] {
	return Prop[T, E]{Node: p.Node.Custom(allPosOp)}
}

// FilteredPosOp appends $[id] to p.
func FilteredPosOp[T, E any](p Prop[T, []E], id string) Prop[T, E] {
	return Prop[T, E]{Node: p.Node.Custom(filteredPosOp(id))}
}

// Pos appends index i to p.
func Pos[T, E any](p Prop[T, []E], i int) Prop[T, E] {
	return Prop[T, E]{Node: p.Node.Custom(strconv.Itoa(i))}
}

// Key appends map key k to p.
func Key[T any, K comparable, V any](p Prop[T, map[K]V], k K) Prop[T, V] {
	return Prop[T, V]{Node: p.Node.Custom(KeyProjection(k))}
}
