// updates.go - Update operators

package expr

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kinfkong/kmgo/property"
)

func update(op string, p property.Path, v interface{}) Doc {
	return operator(op, field(p, v))
}

// Set sets the field to v.
func Set[R any](f property.Field[R], v R) Doc { return update("$set", f, v) }

// SetValue sets any path to an untyped value.
func SetValue(p property.Path, v interface{}) Doc { return update("$set", p, v) }

// SetOnInsert sets the field only when an upsert inserts a document.
func SetOnInsert[R any](f property.Field[R], v R) Doc { return update("$setOnInsert", f, v) }

// Unset removes the fields.
func Unset(ps ...property.Path) Doc {
	ds := make([]Doc, len(ps))
	for i, p := range ps {
		ds[i] = field(p, "")
	}
	return operator("$unset", concat(ds...))
}

// Inc adds n to the field.
func Inc(p property.Path, n interface{}) Doc { return update("$inc", p, n) }

// Mul multiplies the field by n.
func Mul(p property.Path, n interface{}) Doc { return update("$mul", p, n) }

// Min keeps the smaller of the field and v.
func Min[R any](f property.Field[R], v R) Doc { return update("$min", f, v) }

// Max keeps the larger of the field and v.
func Max[R any](f property.Field[R], v R) Doc { return update("$max", f, v) }

// Rename moves the field to another path.
func Rename(p, to property.Path) Doc {
	return func(r property.Resolver) bson.D {
		return bson.D{{Key: "$rename", Value: bson.D{{Key: p.PathWith(r), Value: to.PathWith(r)}}}}
	}
}

// CurrentDate sets the field to the current date.
func CurrentDate(p property.Path) Doc { return update("$currentDate", p, true) }

// AddToSet adds v to the array unless present.
func AddToSet(p property.Path, v interface{}) Doc { return update("$addToSet", p, v) }

// AddEachToSet adds every one of vs to the array unless present.
func AddEachToSet(p property.Path, vs ...interface{}) Doc {
	return update("$addToSet", p, bson.D{{Key: "$each", Value: bson.A(vs)}})
}

// Push appends v to the array.
func Push(p property.Path, v interface{}) Doc { return update("$push", p, v) }

// PushEach appends vs to the array.
func PushEach(p property.Path, vs ...interface{}) Doc {
	return update("$push", p, bson.D{{Key: "$each", Value: bson.A(vs)}})
}

// Pull removes every element equal to v, or matching v when v is a Doc.
func Pull(p property.Path, v interface{}) Doc { return update("$pull", p, v) }

// PullAll removes every element equal to one of vs.
func PullAll(p property.Path, vs ...interface{}) Doc { return update("$pullAll", p, bson.A(vs)) }

// PullByFilter removes the array elements described by f.
func PullByFilter(f Doc) Doc { return operator("$pull", f) }

// PopFirst removes the first array element.
func PopFirst(p property.Path) Doc { return update("$pop", p, -1) }

// PopLast removes the last array element.
func PopLast(p property.Path) Doc { return update("$pop", p, 1) }

// Combine merges updates. Fields under the same operator are gathered in a
// single operator document.
func Combine(us ...Doc) Doc {
	return func(r property.Resolver) bson.D {
		out := bson.D{}
		index := map[string]int{}
		for _, d := range RenderAll(r, us...) {
			for _, e := range d {
				fields, ok := e.Value.(bson.D)
				i, seen := index[e.Key]
				if !seen || !ok {
					index[e.Key] = len(out)
					out = append(out, e)
					continue
				}
				prev, _ := out[i].Value.(bson.D)
				out[i].Value = append(append(bson.D{}, prev...), fields...)
			}
		}
		return out
	}
}
