// id.go - Id discovery, access and generation

package mapping

import (
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const idKey = "_id"

var (
	tObjectID = reflect.TypeOf(primitive.ObjectID{})
	tUUID     = reflect.TypeOf(uuid.UUID{})
	tD        = reflect.TypeOf(bson.D{})
)

func (s *strategy) GetID(v interface{}) (interface{}, error) {
	switch d := v.(type) {
	case nil:
		return nil, errors.Wrap(ErrNoIDField, "nil document")
	case bson.M:
		return d[idKey], nil
	case map[string]interface{}:
		return d[idKey], nil
	case bson.D:
		for _, e := range d {
			if e.Key == idKey {
				return e.Value, nil
			}
		}
		return nil, nil
	case bson.Raw:
		rv, err := d.LookupErr(idKey)
		if err != nil {
			return nil, nil
		}
		return rv, nil
	}

	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil, errors.Wrapf(ErrNoIDField, "nil %T", v)
		}
		val = val.Elem()
	}
	if val.Kind() == reflect.Map {
		return mapID(val)
	}
	if val.Kind() == reflect.Slice && val.Type().ConvertibleTo(tD) {
		return s.GetID(val.Convert(tD).Interface())
	}

	f, err := s.IDField(val.Type())
	if err != nil {
		return nil, err
	}
	fv, err := val.FieldByIndexErr(f.Index)
	if err != nil {
		return nil, nil
	}
	return fv.Interface(), nil
}

func (s *strategy) SetID(v interface{}, id interface{}) error {
	switch d := v.(type) {
	case bson.M:
		d[idKey] = id
		return nil
	case map[string]interface{}:
		d[idKey] = id
		return nil
	case *bson.D:
		*d = withID(*d, id)
		return nil
	}

	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return errors.Wrapf(ErrNotAddressable, "%T", v)
	}
	val = val.Elem()
	if val.Kind() == reflect.Map {
		return setMapID(val, id)
	}

	f, err := s.IDField(val.Type())
	if err != nil {
		return err
	}
	fv, err := val.FieldByIndexErr(f.Index)
	if err != nil {
		return errors.Wrapf(ErrNotAddressable, "%T: %v", v, err)
	}
	return assign(fv, id)
}

// mapKeyOf returns the _id key for maps keyed by a string kind.
func mapKeyOf(m reflect.Value) (reflect.Value, error) {
	kt := m.Type().Key()
	if kt.Kind() != reflect.String {
		return reflect.Value{}, errors.Wrapf(ErrNoIDField, "%v has non-string keys", m.Type())
	}
	return reflect.ValueOf(idKey).Convert(kt), nil
}

func mapID(m reflect.Value) (interface{}, error) {
	key, err := mapKeyOf(m)
	if err != nil {
		return nil, err
	}
	v := m.MapIndex(key)
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

func setMapID(m reflect.Value, id interface{}) error {
	key, err := mapKeyOf(m)
	if err != nil {
		return err
	}
	if m.IsNil() {
		return errors.Wrapf(ErrNotAddressable, "nil %v", m.Type())
	}
	elem := reflect.New(m.Type().Elem()).Elem()
	if err := assign(elem, id); err != nil {
		return err
	}
	m.SetMapIndex(key, elem)
	return nil
}

func assign(dst reflect.Value, id interface{}) error {
	src := reflect.ValueOf(id)
	switch {
	case !src.IsValid():
		dst.Set(reflect.Zero(dst.Type()))
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	case dst.Kind() == reflect.Ptr && src.Type().ConvertibleTo(dst.Type().Elem()):
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(src.Convert(dst.Type().Elem()))
		dst.Set(p)
	default:
		return errors.Errorf("cannot store %T id in %v field", id, dst.Type())
	}
	return nil
}

func withID(d bson.D, id interface{}) bson.D {
	for i, e := range d {
		if e.Key == idKey {
			d[i].Value = id
			return d
		}
	}
	return append(bson.D{{Key: idKey, Value: id}}, d...)
}

// IDGenerator creates ids for documents inserted without one.
type IDGenerator interface {
	Name() string
	// Generate returns a new id assignable to a field of type t.
	Generate(t reflect.Type) (interface{}, error)
}

// ObjectIDGenerator generates ObjectIDs, or their hex form for string ids.
type ObjectIDGenerator struct{}

func (ObjectIDGenerator) Name() string { return "objectid" }

func (g ObjectIDGenerator) Generate(t reflect.Type) (interface{}, error) {
	return generate(t, func(t reflect.Type) (interface{}, bool) {
		switch {
		case t == tObjectID, t.Kind() == reflect.Interface:
			return primitive.NewObjectID(), true
		case t.Kind() == reflect.String:
			return reflect.ValueOf(primitive.NewObjectID().Hex()).Convert(t).Interface(), true
		}
		return nil, false
	})
}

// UUIDGenerator generates random UUIDs, as strings for string ids.
type UUIDGenerator struct{}

func (UUIDGenerator) Name() string { return "uuid" }

func (g UUIDGenerator) Generate(t reflect.Type) (interface{}, error) {
	return generate(t, func(t reflect.Type) (interface{}, bool) {
		switch {
		case t == tUUID:
			return uuid.New(), true
		case t == tObjectID:
			return primitive.NewObjectID(), true
		case t.Kind() == reflect.String:
			return reflect.ValueOf(uuid.NewString()).Convert(t).Interface(), true
		case t.Kind() == reflect.Interface:
			return uuid.NewString(), true
		}
		return nil, false
	})
}

func generate(t reflect.Type, gen func(reflect.Type) (interface{}, bool)) (interface{}, error) {
	if t.Kind() == reflect.Ptr {
		id, err := generate(t.Elem(), gen)
		if err != nil {
			return nil, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(reflect.ValueOf(id))
		return p.Interface(), nil
	}
	id, ok := gen(t)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedID, "%v", t)
	}
	return id, nil
}

// ParseIDGenerator returns the generator registered under name. The empty
// name selects ObjectIDGenerator.
func ParseIDGenerator(name string) (IDGenerator, error) {
	switch strings.ToLower(name) {
	case "", "objectid":
		return ObjectIDGenerator{}, nil
	case "uuid":
		return UUIDGenerator{}, nil
	}
	return nil, errors.Errorf("unknown id generator %q", name)
}

// EnsureID gives doc an id when it has none. It returns the document to
// insert, which is doc itself unless doc is a bson.D or a struct value, and
// the id it carries. Types without an _id field are returned unchanged with a
// nil id; the driver assigns one on insert.
func EnsureID(m Mapper, gen IDGenerator, doc interface{}) (interface{}, interface{}, error) {
	switch d := doc.(type) {
	case nil:
		return nil, nil, errors.New("nil document")
	case bson.Raw:
		rv, err := d.LookupErr(idKey)
		if err != nil {
			return d, nil, nil
		}
		return d, rv, nil
	case bson.D:
		if id, _ := m.GetID(d); !isZero(id) {
			return d, id, nil
		}
		id, err := gen.Generate(reflect.TypeOf((*interface{})(nil)).Elem())
		if err != nil {
			return nil, nil, err
		}
		return withID(d, id), id, nil
	case *bson.D:
		out, id, err := EnsureID(m, gen, *d)
		if err != nil {
			return nil, nil, err
		}
		*d = out.(bson.D)
		return d, id, nil
	}

	base := reflect.ValueOf(doc)
	for base.Kind() == reflect.Ptr {
		if base.IsNil() {
			return nil, nil, errors.Errorf("nil %T document", doc)
		}
		base = base.Elem()
	}

	if base.Kind() == reflect.Map {
		id, err := mapID(base)
		if err != nil {
			return nil, nil, err
		}
		if !isZero(id) {
			return doc, id, nil
		}
		if id, err = gen.Generate(base.Type().Elem()); err != nil {
			return nil, nil, err
		}
		if err := setMapID(base, id); err != nil {
			return nil, nil, err
		}
		return doc, id, nil
	}

	f, err := m.IDField(base.Type())
	if errors.Is(err, ErrNoIDField) {
		return doc, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	fv, ferr := base.FieldByIndexErr(f.Index)
	if ferr == nil && !fv.IsZero() {
		return doc, fv.Interface(), nil
	}

	id, err := gen.Generate(f.Type)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%v.%s", base.Type(), f.Name)
	}
	if ferr == nil && fv.CanSet() {
		if err := assign(fv, id); err != nil {
			return nil, nil, err
		}
		return doc, id, nil
	}

	// struct values cannot be updated in place: insert an encoded copy
	raw, err := m.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, nil, errors.Wrap(err, "decode document")
	}
	return withID(d, id), id, nil
}

func isZero(id interface{}) bool {
	if id == nil {
		return true
	}
	return reflect.ValueOf(id).IsZero()
}
