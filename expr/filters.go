// filters.go - Query filters

package expr

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinfkong/kmgo/property"
)

// Eq matches documents where the field equals v.
func Eq[R any](f property.Field[R], v R) Doc { return field(f, v) }

// Ne matches documents where the field differs from v.
func Ne[R any](f property.Field[R], v R) Doc { return fieldOp(f, "$ne", v) }

func Lt[R any](f property.Field[R], v R) Doc  { return fieldOp(f, "$lt", v) }
func Lte[R any](f property.Field[R], v R) Doc { return fieldOp(f, "$lte", v) }
func Gt[R any](f property.Field[R], v R) Doc  { return fieldOp(f, "$gt", v) }
func Gte[R any](f property.Field[R], v R) Doc { return fieldOp(f, "$gte", v) }

// In matches documents where the field equals any of vs.
func In[R any](f property.Field[R], vs ...R) Doc { return fieldOp(f, "$in", values(vs)) }

// Nin matches documents where the field equals none of vs.
func Nin[R any](f property.Field[R], vs ...R) Doc { return fieldOp(f, "$nin", values(vs)) }

// EqAny matches any path against an untyped value.
func EqAny(p property.Path, v interface{}) Doc { return field(p, v) }

// Exists matches documents that have, or lack, the field.
func Exists(p property.Path, exists bool) Doc { return fieldOp(p, "$exists", exists) }

// Type matches documents where the field has BSON type t.
func Type(p property.Path, t bsontype.Type) Doc { return fieldOp(p, "$type", int32(t)) }

// Regex matches string fields against pattern.
func Regex(p property.Path, pattern, options string) Doc {
	return field(p, primitive.Regex{Pattern: pattern, Options: options})
}

// Size matches arrays with n elements.
func Size(p property.Path, n int) Doc { return fieldOp(p, "$size", n) }

// All matches arrays holding every one of vs.
func All(p property.Path, vs ...interface{}) Doc { return fieldOp(p, "$all", bson.A(vs)) }

// ElemMatch matches arrays with at least one element matching f.
func ElemMatch(p property.Path, f Doc) Doc { return fieldOp(p, "$elemMatch", f) }

// Mod matches numeric fields where value % divisor == remainder.
func Mod(p property.Path, divisor, remainder int64) Doc {
	return fieldOp(p, "$mod", bson.A{divisor, remainder})
}

// And matches documents matching every filter. Nil filters are skipped.
func And(fs ...Doc) Doc { return logical("$and", fs) }

// Or matches documents matching any filter.
func Or(fs ...Doc) Doc { return logical("$or", fs) }

// Nor matches documents matching no filter.
func Nor(fs ...Doc) Doc { return logical("$nor", fs) }

func logical(op string, fs []Doc) Doc {
	return func(r property.Resolver) bson.D {
		rendered := RenderAll(r, fs...)
		if len(rendered) == 0 {
			return bson.D{}
		}
		arr := make(bson.A, len(rendered))
		for i, d := range rendered {
			arr[i] = d
		}
		return bson.D{{Key: op, Value: arr}}
	}
}

// Not negates each field condition of f.
func Not(f Doc) Doc {
	return func(r property.Resolver) bson.D {
		in := f.Render(r)
		out := make(bson.D, 0, len(in))
		for _, e := range in {
			var cond interface{}
			switch v := e.Value.(type) {
			case bson.D:
				cond = v
				if len(v) == 0 || !strings.HasPrefix(v[0].Key, "$") {
					cond = bson.D{{Key: "$eq", Value: v}}
				}
			case primitive.Regex:
				cond = v
			default:
				cond = bson.D{{Key: "$eq", Value: v}}
			}
			out = append(out, bson.E{Key: e.Key, Value: bson.D{{Key: "$not", Value: cond}}})
		}
		return out
	}
}

// Text runs a $text search.
func Text(search string) Doc {
	return operator("$text", bson.D{{Key: "$search", Value: search}})
}

// Where matches with a JavaScript expression.
func Where(js string) Doc { return operator("$where", js) }
