// model.go - Model of a generated descriptor file

package gen

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind is the shape of the path accessor generated for a field.
type Kind int

const (
	// Scalar fields get a typed property.
	Scalar Kind = iota
	// Nested fields hold a mapped struct, or a pointer to one.
	Nested
	// Slice fields hold a sequence of non-mapped values.
	Slice
	// NestedSlice fields hold a sequence of mapped structs.
	NestedSlice
	// Map fields hold non-mapped values under keys.
	Map
	// NestedMap fields hold mapped structs under keys.
	NestedMap
)

func (k Kind) String() string {
	switch k {
	case Nested:
		return "nested"
	case Slice:
		return "slice"
	case NestedSlice:
		return "nested-slice"
	case Map:
		return "map"
	case NestedMap:
		return "nested-map"
	}
	return "scalar"
}

// File is everything rendered into one package's output file.
type File struct {
	Package  string
	PkgPath  string
	Dir      string
	Resolver string // key of the resolver the names were computed with

	StdImports   []string // import specs, sorted
	OtherImports []string
	Types        []*Struct
}

// Described returns the types having at least one field.
func (f *File) Described() []*Struct {
	var out []*Struct
	for _, s := range f.Types {
		if len(s.Fields) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// HasFields reports whether any type has a field.
func (f *File) HasFields() bool {
	return len(f.Described()) > 0
}

// Struct is a mapped struct type.
type Struct struct {
	Name   string
	Fields []*Field
}

// Path is the name of the generated path type.
func (s *Struct) Path() string { return s.Name + "Path" }

// Root is the name of the generated root path variable.
func (s *Struct) Root() string { return s.Name + "_" }

// Field is one mapped field of a Struct.
type Field struct {
	Name    string // Go field name
	Method  string // accessor name
	Var     string // descriptor variable
	DocName string // name the field is stored under
	Inline  bool
	Kind    Kind

	Type   string // field type as written in the package
	Elem   string // element or value type of Slice and Map fields
	Key    string // key type of Map and NestedMap fields
	Target string // mapped struct of Nested, NestedSlice and NestedMap fields
}

// Result is the accessor's return type.
func (f *Field) Result() string {
	switch f.Kind {
	case Nested:
		return f.Target + "Path[T]"
	case NestedSlice:
		return fmt.Sprintf("property.Col[T, %sPath[T]]", f.Target)
	case Slice:
		return fmt.Sprintf("property.Col[T, property.Prop[T, %s]]", f.Elem)
	case Map:
		return fmt.Sprintf("property.Map[T, %s, property.Prop[T, %s]]", f.Key, f.Elem)
	case NestedMap:
		return fmt.Sprintf("property.Map[T, %s, %sPath[T]]", f.Key, f.Target)
	}
	return fmt.Sprintf("property.Prop[T, %s]", f.Type)
}

// Expr is the accessor's return expression.
func (f *Field) Expr() string {
	step := fmt.Sprintf("property.Step[%s](p.Node, %s)", f.Type, f.Var)
	wrap := fmt.Sprintf("func(n property.Node[T]) %sPath[T] { return %sPath[T]{n} }", f.Target, f.Target)
	switch f.Kind {
	case Nested:
		return fmt.Sprintf("%sPath[T]{%s.Node}", f.Target, step)
	case NestedSlice:
		return fmt.Sprintf("property.NewCol(%s.Node, %s)", step, wrap)
	case Slice:
		return fmt.Sprintf("property.NewCol(%s.Node, property.AsProp[%s, T])", step, f.Elem)
	case Map:
		return fmt.Sprintf("property.NewMap[T, %s](%s.Node, property.AsProp[%s, T])", f.Key, step, f.Elem)
	case NestedMap:
		return fmt.Sprintf("property.NewMap[T, %s](%s.Node, %s)", f.Key, step, wrap)
	}
	return step
}

// reserved are the names promoted from property.Node, which accessors must
// not shadow.
var reserved = map[string]bool{
	"Node":     true,
	"Path":     true,
	"PathWith": true,
	"String":   true,
	"IsRoot":   true,
	"Dynamic":  true,
	"Custom":   true,
}

func methodName(field string) string {
	if reserved[field] {
		return field + "_"
	}
	return field
}

// lowerCamel lowercases the leading upper-case run of s, keeping the last
// rune of a run followed by lower case: Owner -> owner, URLPart -> urlPart.
func lowerCamel(s string) string {
	rs := []rune(s)
	n := 0
	for n < len(rs) && unicode.IsUpper(rs[n]) {
		n++
	}
	if n > 1 && n < len(rs) && unicode.IsLower(rs[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		rs[i] = unicode.ToLower(rs[i])
	}
	return string(rs)
}

func descriptorVar(owner, field string) string {
	return lowerCamel(owner) + field + "Field"
}

func importSpec(name, path string) string {
	last := path[strings.LastIndex(path, "/")+1:]
	if name == "" || name == last {
		return fmt.Sprintf("%q", path)
	}
	return fmt.Sprintf("%s %q", name, path)
}

func isStd(path string) bool {
	first := path
	if i := strings.IndexByte(path, '/'); i >= 0 {
		first = path[:i]
	}
	return !strings.Contains(first, ".")
}
