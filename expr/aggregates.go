// aggregates.go - Aggregation pipeline stages

package expr

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kinfkong/kmgo/property"
)

// Match filters documents with f.
func Match(f Doc) Doc { return operator("$match", f) }

// Project reshapes documents with the projection p.
func Project(p Doc) Doc { return operator("$project", p) }

// SortStage orders documents with the sort s.
func SortStage(s Doc) Doc { return operator("$sort", s) }

// Limit passes the first n documents.
func Limit(n int64) Doc { return operator("$limit", n) }

// Skip drops the first n documents.
func Skip(n int64) Doc { return operator("$skip", n) }

// Sample picks n random documents.
func Sample(n int64) Doc { return operator("$sample", bson.D{{Key: "size", Value: n}}) }

// Count writes the number of documents into a field named as.
func Count(as string) Doc { return operator("$count", as) }

// Unwind emits one document per element of the array at p.
func Unwind(p property.Path) Doc { return operator("$unwind", Ref(p)) }

// AddFields adds computed fields.
func AddFields(fields Doc) Doc { return operator("$addFields", fields) }

// ReplaceRoot replaces each document with the value of root, usually a Ref.
func ReplaceRoot(root interface{}) Doc {
	return operator("$replaceRoot", bson.D{{Key: "newRoot", Value: root}})
}

// Lookup joins documents of from whose foreign field equals the local field.
func Lookup(from string, local, foreign property.Path, as string) Doc {
	return func(r property.Resolver) bson.D {
		return bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "localField", Value: local.PathWith(r)},
			{Key: "foreignField", Value: foreign.PathWith(r)},
			{Key: "as", Value: as},
		}}}
	}
}

// Accumulator computes one output field of a $group stage.
type Accumulator struct {
	Name  string
	Op    string
	Value interface{}
}

// Accumulate builds an accumulator with any operator.
func Accumulate(name, op string, v interface{}) Accumulator {
	return Accumulator{Name: name, Op: op, Value: v}
}

func Sum(name string, v interface{}) Accumulator     { return Accumulate(name, "$sum", v) }
func Avg(name string, v interface{}) Accumulator     { return Accumulate(name, "$avg", v) }
func First(name string, v interface{}) Accumulator   { return Accumulate(name, "$first", v) }
func Last(name string, v interface{}) Accumulator    { return Accumulate(name, "$last", v) }
func PushAcc(name string, v interface{}) Accumulator { return Accumulate(name, "$push", v) }

// Group groups documents by id and computes accs for each group. id is
// usually a Ref, a Doc of Refs, or nil for a single group.
func Group(id interface{}, accs ...Accumulator) Doc {
	return func(r property.Resolver) bson.D {
		g := bson.D{{Key: "_id", Value: renderValue(r, id)}}
		for _, a := range accs {
			g = append(g, bson.E{Key: a.Name, Value: bson.D{{Key: a.Op, Value: renderValue(r, a.Value)}}})
		}
		return bson.D{{Key: "$group", Value: g}}
	}
}

// Pipeline renders stages with r.
func Pipeline(r property.Resolver, stages ...Doc) bson.A {
	out := make(bson.A, 0, len(stages))
	for _, s := range RenderAll(r, stages...) {
		out = append(out, s)
	}
	return out
}
