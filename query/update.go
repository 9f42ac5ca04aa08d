// update.go - Update documents derived from whole objects

package query

import (
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// HasOperators reports whether d has a top-level $ operator key.
func HasOperators(d bson.D) bool {
	for _, e := range d {
		if strings.HasPrefix(e.Key, "$") {
			return true
		}
	}
	return false
}

// SetModifier turns an encoded object into an update. A document that
// already holds update operators is returned as is; any other document is
// wrapped in $set without its _id. When onlyNotNull is true null fields are
// left out, so they do not overwrite stored values.
func SetModifier(raw bson.Raw, onlyNotNull bool) (bson.D, error) {
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, errors.Wrap(err, "decode update")
	}
	if HasOperators(d) {
		return d, nil
	}

	set := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key == "_id" {
			continue
		}
		if onlyNotNull && e.Value == nil {
			continue
		}
		set = append(set, e)
	}
	return bson.D{{Key: "$set", Value: set}}, nil
}

// ExtractID returns the _id of an encoded document.
func ExtractID(raw bson.Raw) (bson.RawValue, error) {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return bson.RawValue{}, errors.New("has to contain _id field")
	}
	return v, nil
}
