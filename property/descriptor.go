// descriptor.go - Static field descriptors and the process-wide lookup

package property

import (
	"fmt"
	"reflect"
	"sync"
)

// Descriptor names one mapped struct field. kmgo-gen emits a Descriptor per
// field with Name already resolved; reflective lookups build the same record
// with Name left empty.
type Descriptor struct {
	Owner    reflect.Type
	Field    string
	Name     string
	Inline   bool
	Resolver string

	sf reflect.StructField
}

// Key returns the readable name of the field, pkgpath.Type.Field.
func (d *Descriptor) Key() string {
	return typeKey(d.Owner) + "." + d.Field
}

// fieldID identifies a field by its owner type's identity, so distinct
// types printing alike never share an entry.
type fieldID struct {
	owner reflect.Type
	field string
}

func (d *Descriptor) id() fieldID {
	return fieldID{owner: d.Owner, field: d.Field}
}

// Type returns the declared type of the field.
func (d *Descriptor) Type() reflect.Type {
	return d.sf.Type
}

var descriptors sync.Map // fieldID -> *Descriptor

// Register validates d and loads it into the process-wide lookup. The first
// registration of a field wins; later ones return the stored descriptor.
func Register(d Descriptor) *Descriptor {
	owner := structOf(d.Owner)
	if owner == nil {
		panic(fmt.Sprintf("property: %v is not a struct type", d.Owner))
	}
	sf, ok := directField(owner, d.Field)
	if !ok {
		panic(fmt.Sprintf("property: %s has no field %s", owner, d.Field))
	}
	d.Owner = owner
	d.sf = sf
	actual, _ := descriptors.LoadOrStore(d.id(), &d)
	return actual.(*Descriptor)
}

// Lookup returns the registered descriptor of owner.field.
func Lookup(owner reflect.Type, field string) (*Descriptor, bool) {
	owner = structOf(owner)
	if owner == nil {
		return nil, false
	}
	d, ok := descriptors.Load(fieldID{owner: owner, field: field})
	if !ok {
		return nil, false
	}
	return d.(*Descriptor), true
}

// DescriptorOf returns the descriptor of owner.field, registering a
// reflective one on first use. It panics when the field does not exist.
func DescriptorOf(owner reflect.Type, field string) *Descriptor {
	if d, ok := Lookup(owner, field); ok {
		return d
	}
	return Register(Descriptor{Owner: owner, Field: field})
}

// directField finds a field declared on t itself. Promoted fields are not
// considered since the codec nests them unless the embedding is inline.
func directField(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Name == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// structOf peels pointers, slices and arrays down to a struct type.
func structOf(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Struct:
			return t
		default:
			return nil
		}
	}
	return nil
}

func typeKey(t reflect.Type) string {
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
