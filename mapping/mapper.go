// mapper.go - Object mapping strategies between Go values and BSON

package mapping

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/mgocompat"

	"github.com/kinfkong/kmgo/property"
)

var (
	// ErrUnknownMapper is returned when an explicit strategy name is not registered.
	ErrUnknownMapper = errors.New("unknown mapping strategy")
	// ErrNoIDField is returned when a type has no field stored as _id.
	ErrNoIDField = errors.New("no _id field")
	// ErrUnsupportedID is returned when no id can be generated for the id field type.
	ErrUnsupportedID = errors.New("generation for id property type not supported")
	// ErrNotAddressable is returned when an id cannot be written back into a document.
	ErrNotAddressable = errors.New("document is not addressable")
)

// Mapper converts between Go values and BSON. Each strategy also resolves
// field names, so property paths rendered with a Mapper match what it writes.
type Mapper interface {
	property.Resolver

	Name() string
	Priority() int
	Registry() *bsoncodec.Registry

	Marshal(v interface{}) (bson.Raw, error)
	Unmarshal(data []byte, v interface{}) error
	ToJSON(v interface{}) ([]byte, error)
	FromJSON(data []byte, v interface{}) error

	// IDField finds the field of t stored as _id. Its Index is the full
	// index path, through inline structs.
	IDField(t reflect.Type) (reflect.StructField, error)
	GetID(v interface{}) (interface{}, error)
	SetID(v interface{}, id interface{}) error
}

// Built-in strategies.
var (
	// Native uses the driver's default codecs and bson tags.
	Native = NewStrategy("bson", 100, property.BSON, bson.NewRegistry())
	// JSON reads bson tags first and json tags second.
	JSON = NewStrategy("json", 50, property.JSON, newJSONRegistry())
	// MgoCompat encodes the way the legacy mgo driver did.
	MgoCompat = NewStrategy("mgocompat", 0, property.BSON, mgocompat.Registry)
)

func newJSONRegistry() *bsoncodec.Registry {
	r := bson.NewRegistry()
	sc, err := bsoncodec.NewStructCodec(bsoncodec.JSONFallbackStructTagParser)
	if err != nil {
		panic(err)
	}
	r.RegisterKindEncoder(reflect.Struct, sc)
	r.RegisterKindDecoder(reflect.Struct, sc)
	return r
}

type strategy struct {
	property.Resolver

	name     string
	priority int
	registry *bsoncodec.Registry
	ids      sync.Map // reflect.Type -> idLookup
}

type idLookup struct {
	field reflect.StructField
	err   error
}

// NewStrategy builds a Mapper from a codec registry and the resolver that
// names fields the same way the registry's struct codec does.
func NewStrategy(name string, priority int, r property.Resolver, registry *bsoncodec.Registry) Mapper {
	return &strategy{
		Resolver: r,
		name:     name,
		priority: priority,
		registry: registry,
	}
}

func (s *strategy) Name() string                  { return s.name }
func (s *strategy) Priority() int                 { return s.priority }
func (s *strategy) Registry() *bsoncodec.Registry { return s.registry }

func (s *strategy) Marshal(v interface{}) (bson.Raw, error) {
	data, err := bson.MarshalWithRegistry(s.registry, v)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: encode %T", s.name, v)
	}
	return bson.Raw(data), nil
}

func (s *strategy) Unmarshal(data []byte, v interface{}) error {
	if err := bson.UnmarshalWithRegistry(s.registry, data, v); err != nil {
		return errors.Wrapf(err, "%s: decode %T", s.name, v)
	}
	return nil
}

func (s *strategy) ToJSON(v interface{}) ([]byte, error) {
	data, err := bson.MarshalExtJSONWithRegistry(s.registry, v, false, false)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: encode %T to json", s.name, v)
	}
	return data, nil
}

func (s *strategy) FromJSON(data []byte, v interface{}) error {
	if err := bson.UnmarshalExtJSONWithRegistry(s.registry, data, false, v); err != nil {
		return errors.Wrapf(err, "%s: decode json into %T", s.name, v)
	}
	return nil
}

func (s *strategy) IDField(t reflect.Type) (reflect.StructField, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return reflect.StructField{}, errors.Wrapf(ErrNoIDField, "%v is not a struct", t)
	}
	if l, ok := s.ids.Load(t); ok {
		lookup := l.(idLookup)
		return lookup.field, lookup.err
	}

	f, ok, err := s.findID(t, nil)
	lookup := idLookup{field: f, err: err}
	if err == nil && !ok {
		lookup.err = errors.Wrapf(ErrNoIDField, "%v", t)
	}
	s.ids.Store(t, lookup)
	return lookup.field, lookup.err
}

func (s *strategy) findID(t reflect.Type, prefix []int) (reflect.StructField, bool, error) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}
		name, inline, err := s.FieldName(f)
		if err != nil {
			return reflect.StructField{}, false, errors.Wrapf(err, "%v.%s", t, f.Name)
		}
		index := append(append([]int(nil), prefix...), i)
		if inline {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() != reflect.Struct {
				continue
			}
			if found, ok, err := s.findID(ft, index); ok || err != nil {
				return found, ok, err
			}
			continue
		}
		if name == "_id" {
			f.Index = index
			return f, true, nil
		}
	}
	return reflect.StructField{}, false, nil
}
