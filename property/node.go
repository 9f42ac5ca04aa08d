// node.go - Property path chains

package property

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
)

// Path is anything that renders to a dotted document field path.
type Path interface {
	PathWith(r Resolver) string
}

// link is one step of a chain. A child points to its previous step; the
// previous step never knows its children.
type link struct {
	prev *link
	desc *Descriptor // field step
	raw  string      // dynamic step, used when desc is nil
	memo atomic.Pointer[memo]
}

type memo struct {
	key  string
	path string
}

func (l *link) segment(r Resolver) string {
	if l.desc == nil {
		return l.raw
	}
	s := l.desc.resolve(r)
	if s.inline {
		return ""
	}
	return s.name
}

func (l *link) path(r Resolver) string {
	if l == nil {
		return ""
	}
	key := r.Key()
	if m := l.memo.Load(); m != nil && m.key == key {
		return m.path
	}

	p := l.prev.path(r)
	seg := l.segment(r)
	switch {
	case p == "":
		p = seg
	case seg != "":
		p = p + "." + seg
	}

	// dynamic steps are recomputed on every call
	if l.desc != nil {
		l.memo.Store(&memo{key: key, path: p})
	}
	return p
}

func (l *link) dynamic() bool {
	for ; l != nil; l = l.prev {
		if l.desc == nil {
			return true
		}
	}
	return false
}

// Node is a path into documents of type T. The zero Node is the document root.
type Node[T any] struct {
	l *link
}

// PathWith renders the path with r.
func (n Node[T]) PathWith(r Resolver) string {
	return n.l.path(r)
}

// Path renders the path with the default resolver.
func (n Node[T]) Path() string {
	return n.l.path(Default())
}

func (n Node[T]) String() string {
	return n.Path()
}

// IsRoot reports whether n is the document root.
func (n Node[T]) IsRoot() bool {
	return n.l == nil
}

// Dynamic reports whether any step of n was built at runtime rather than
// from a struct field.
func (n Node[T]) Dynamic() bool {
	return n.l.dynamic()
}

// Custom appends a literal segment.
func (n Node[T]) Custom(name string) Node[T] {
	return Node[T]{l: &link{prev: n.l, raw: name}}
}

func (n Node[T]) field(d *Descriptor) Node[T] {
	return Node[T]{l: &link{prev: n.l, desc: d}}
}

// Field is a path whose addressed value has type R. Only Prop implements it.
type Field[R any] interface {
	Path
	fieldOf(*R)
}

// Prop is a typed path into documents of type T addressing a value of type R.
type Prop[T, R any] struct {
	Node[T]
}

func (Prop[T, R]) fieldOf(*R) {}

// AsProp gives n a value type.
func AsProp[R, T any](n Node[T]) Prop[T, R] {
	return Prop[T, R]{Node: n}
}

// Step appends the field described by d. Generated code calls it with
// registered descriptors.
func Step[R, T any](parent Node[T], d *Descriptor) Prop[T, R] {
	return Prop[T, R]{Node: parent.field(d)}
}

// Of returns the path of field on T. It panics when T has no such field or
// when the field does not hold R values.
func Of[T, R any](field string) Prop[T, R] {
	d := DescriptorOf(reflect.TypeFor[T](), field)
	checkType[R](d)
	return Step[R](Node[T]{}, d)
}

// Div descends from p into field of the struct p addresses. Pointers,
// slices and arrays are looked through: a sequence has the path of its
// element. Only R needs to be given: Div[string](owner, "Name").
func Div[R, T, M any](p Prop[T, M], field string) Prop[T, R] {
	owner := reflect.TypeFor[M]()
	if structOf(owner) == nil {
		panic(fmt.Sprintf("property: cannot descend into %v at %q", owner, p.Path()))
	}
	d := DescriptorOf(owner, field)
	checkType[R](d)
	return Step[R](p.Node, d)
}

// Custom appends a literal name to parent. The result is never cached.
func Custom[R, T any](parent Node[T], name string) Prop[T, R] {
	return Prop[T, R]{Node: parent.Custom(name)}
}

func checkType[R any](d *Descriptor) {
	want := reflect.TypeFor[R]()
	got := d.Type()
	switch {
	case got == want:
	case got.Kind() == reflect.Ptr && got.Elem() == want:
	case want.Kind() == reflect.Interface && got.Implements(want):
	default:
		panic(fmt.Sprintf("property: %s holds %v, not %v", d.Key(), got, want))
	}
}

// Join renders paths with r and joins them with dots, skipping empty ones.
func Join(r Resolver, paths ...Path) string {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		if s := p.PathWith(r); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}
