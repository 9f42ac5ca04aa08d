// resolver.go - Field name resolution for property paths

package property

import (
	"reflect"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

// Resolver turns a struct field into the name it is stored under.
//
// Key identifies the naming rules. Two resolvers with the same key must
// resolve every field identically, since resolved names are cached by key.
type Resolver interface {
	Key() string
	FieldName(f reflect.StructField) (name string, inline bool, err error)
}

// TagResolver resolves names with one of the driver's struct tag parsers, so a
// resolved path always matches what the codec writes.
type TagResolver struct {
	Name   string
	Parser bsoncodec.StructTagParser
}

// Key implements Resolver.
func (t TagResolver) Key() string { return t.Name }

// FieldName implements Resolver.
func (t TagResolver) FieldName(f reflect.StructField) (string, bool, error) {
	tags, err := t.Parser.ParseStructTags(f)
	if err != nil {
		return "", false, err
	}
	if tags.Skip {
		return "", false, nil
	}
	return tags.Name, tags.Inline, nil
}

var (
	// BSON resolves with bson tags, falling back to the lowercased field name.
	BSON Resolver = TagResolver{Name: "bson", Parser: bsoncodec.DefaultStructTagParser}
	// JSON resolves with bson tags, then json tags, then the lowercased field name.
	JSON Resolver = TagResolver{Name: "json", Parser: bsoncodec.JSONFallbackStructTagParser}
)

type resolverBox struct{ r Resolver }

var defaultResolver atomic.Pointer[resolverBox]

func init() {
	defaultResolver.Store(&resolverBox{r: BSON})
}

// Default returns the resolver used by Path and String.
func Default() Resolver {
	return defaultResolver.Load().r
}

// SetDefault replaces the resolver used by Path and String. It is meant to be
// called once at startup; collections render paths with their own mapper.
func SetDefault(r Resolver) {
	if r == nil {
		r = BSON
	}
	defaultResolver.Store(&resolverBox{r: r})
}
