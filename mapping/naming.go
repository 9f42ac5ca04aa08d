// naming.go - Default collection names derived from type names

package mapping

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// NameStyle formats a type name into a collection name.
type NameStyle int

const (
	// Camel lowercases the leading run of upper-case characters: OwnerPet -> ownerPet.
	Camel NameStyle = iota
	// Snake separates words with underscores: OwnerPet -> owner_pet.
	Snake
	// Lower lowercases everything: OwnerPet -> ownerpet.
	Lower
)

// ParseNameStyle parses camel, snake or lower. The empty string is Camel.
func ParseNameStyle(s string) (NameStyle, error) {
	switch strings.ToLower(s) {
	case "", "camel":
		return Camel, nil
	case "snake":
		return Snake, nil
	case "lower":
		return Lower, nil
	}
	return Camel, errors.Errorf("unknown collection naming %q", s)
}

func (s NameStyle) String() string {
	switch s {
	case Snake:
		return "snake"
	case Lower:
		return "lower"
	}
	return "camel"
}

// Format applies the style to name.
func (s NameStyle) Format(name string) string {
	switch s {
	case Snake:
		return snakeCase(name)
	case Lower:
		return strings.ToLower(name)
	}
	return camelCase(name)
}

// CollectionName returns the default collection name for documents of type t.
func CollectionName(t reflect.Type, style NameStyle) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	// generic instantiations carry their type arguments in the name
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return style.Format(name)
}

func camelCase(name string) string {
	rs := []rune(name)
	out := make([]rune, len(rs))
	for i, r := range rs {
		if i == 0 || (unicode.IsUpper(r) && unicode.IsUpper(rs[i-1])) {
			out[i] = unicode.ToLower(r)
		} else {
			out[i] = r
		}
	}
	return string(out)
}

func snakeCase(name string) string {
	var b strings.Builder
	rs := []rune(name)
	for i, r := range rs {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(rs[i-1]) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
