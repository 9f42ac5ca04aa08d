// sorts.go - Sorts, projections and index keys

package expr

import (
	"github.com/kinfkong/kmgo/property"
)

func each(ps []property.Path, v interface{}) Doc {
	ds := make([]Doc, len(ps))
	for i, p := range ps {
		ds[i] = field(p, v)
	}
	return concat(ds...)
}

// Ascending sorts by the fields in increasing order.
func Ascending(ps ...property.Path) Doc { return each(ps, 1) }

// Descending sorts by the fields in decreasing order.
func Descending(ps ...property.Path) Doc { return each(ps, -1) }

// MetaTextScore sorts or projects the $text relevance score into the field.
func MetaTextScore(p property.Path) Doc { return fieldOp(p, "$meta", "textScore") }

// OrderBy chains sort specifications.
func OrderBy(sorts ...Doc) Doc { return concat(sorts...) }

// Include projects the fields.
func Include(ps ...property.Path) Doc { return each(ps, 1) }

// Exclude removes the fields from results.
func Exclude(ps ...property.Path) Doc { return each(ps, 0) }

// ExcludeID removes _id from results.
func ExcludeID() Doc { return field(Name("_id"), 0) }

// ElemMatchProjection projects the first array element matching f.
func ElemMatchProjection(p property.Path, f Doc) Doc { return fieldOp(p, "$elemMatch", f) }

// Slice projects the first n array elements, or the last -n.
func Slice(p property.Path, n int) Doc { return fieldOp(p, "$slice", n) }

// SliceFrom projects limit array elements after skip.
func SliceFrom(p property.Path, skip, limit int) Doc {
	return fieldOp(p, "$slice", []interface{}{skip, limit})
}

// Fields chains projections.
func Fields(projections ...Doc) Doc { return concat(projections...) }

// IndexAscending builds an ascending index key.
func IndexAscending(ps ...property.Path) Doc { return each(ps, 1) }

// IndexDescending builds a descending index key.
func IndexDescending(ps ...property.Path) Doc { return each(ps, -1) }

// IndexText builds a text index key.
func IndexText(ps ...property.Path) Doc { return each(ps, "text") }

// IndexHashed builds a hashed index key.
func IndexHashed(p property.Path) Doc { return field(p, "hashed") }

// IndexGeo2DSphere builds a 2dsphere index key.
func IndexGeo2DSphere(ps ...property.Path) Doc { return each(ps, "2dsphere") }

// CompoundIndex chains index keys.
func CompoundIndex(keys ...Doc) Doc { return concat(keys...) }
