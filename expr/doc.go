// doc.go - Lazily rendered documents

// Package expr builds filters, updates, sorts, projections, index keys and
// aggregation stages from property paths. Documents are rendered when a
// collection uses them, with the field naming of the collection's mapper:
//
//	f := expr.And(
//		expr.Eq(model.Owner_.Pet().Kind(), "dog"),
//		expr.Gt(model.Owner_.Age(), 18),
//	)
//	f.Render(property.BSON) // {$and: [{pet.species: "dog"}, {age: {$gt: 18}}]}
package expr

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kinfkong/kmgo/property"
)

// Doc is a document rendered on demand with a field-name resolver.
type Doc func(r property.Resolver) bson.D

// Render renders d with r. A nil Doc renders as an empty document.
func (d Doc) Render(r property.Resolver) bson.D {
	if d == nil {
		return bson.D{}
	}
	return d(r)
}

// MarshalBSON renders d with the default resolver.
func (d Doc) MarshalBSON() ([]byte, error) {
	return bson.Marshal(d.Render(property.Default()))
}

func (d Doc) String() string {
	data, err := bson.MarshalExtJSON(d.Render(property.Default()), false, false)
	if err != nil {
		return "<invalid: " + err.Error() + ">"
	}
	return string(data)
}

// Raw wraps a static document.
func Raw(d bson.D) Doc {
	return func(property.Resolver) bson.D { return d }
}

// RenderAll renders every document of ds with r.
func RenderAll(r property.Resolver, ds ...Doc) []bson.D {
	out := make([]bson.D, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			out = append(out, d.Render(r))
		}
	}
	return out
}

type ref struct{ p property.Path }

// Ref refers to the value of a field inside an aggregation expression: "$path".
func Ref(p property.Path) interface{} {
	return ref{p: p}
}

func renderValue(r property.Resolver, v interface{}) interface{} {
	switch x := v.(type) {
	case Doc:
		return x.Render(r)
	case ref:
		return "$" + x.p.PathWith(r)
	case []Doc:
		out := make(bson.A, 0, len(x))
		for _, d := range x {
			out = append(out, d.Render(r))
		}
		return out
	case bson.A:
		out := make(bson.A, len(x))
		for i, e := range x {
			out[i] = renderValue(r, e)
		}
		return out
	case []interface{}:
		return renderValue(r, bson.A(x))
	case bson.D:
		out := make(bson.D, len(x))
		for i, e := range x {
			out[i] = bson.E{Key: e.Key, Value: renderValue(r, e.Value)}
		}
		return out
	}
	return v
}

func field(p property.Path, v interface{}) Doc {
	return func(r property.Resolver) bson.D {
		return bson.D{{Key: p.PathWith(r), Value: renderValue(r, v)}}
	}
}

func fieldOp(p property.Path, op string, v interface{}) Doc {
	return func(r property.Resolver) bson.D {
		return bson.D{{Key: p.PathWith(r), Value: bson.D{{Key: op, Value: renderValue(r, v)}}}}
	}
}

func operator(op string, v interface{}) Doc {
	return func(r property.Resolver) bson.D {
		return bson.D{{Key: op, Value: renderValue(r, v)}}
	}
}

// concat renders ds in order into one document.
func concat(ds ...Doc) Doc {
	return func(r property.Resolver) bson.D {
		out := bson.D{}
		for _, d := range ds {
			if d != nil {
				out = append(out, d.Render(r)...)
			}
		}
		return out
	}
}

func values[V any](vs []V) bson.A {
	out := make(bson.A, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// Name is a literal field path rendered the same way by every resolver.
type Name string

func (n Name) PathWith(property.Resolver) string { return string(n) }
