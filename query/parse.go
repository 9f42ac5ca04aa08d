// parse.go - JSON query templates to BSON documents

package query

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// Parse turns a JSON query template into a document. It accepts strict or
// relaxed extended JSON as well as shell-style syntax:
//
//	query.Parse(`{name: 'ann', age: {$gt: 18}}`)
func Parse(s string) (bson.D, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "{}" {
		return bson.D{}, nil
	}
	norm, err := Normalize(Format(trimmed))
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON([]byte(norm), false, &d); err != nil {
		return nil, errors.Wrapf(err, "invalid json %q", s)
	}
	return d, nil
}

// MustParse is like Parse but panics on error. It is meant for templates
// known at compile time.
func MustParse(s string) bson.D {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Parsef interpolates args into format and parses the result. Property paths
// format as their dotted path with %s.
func Parsef(format string, args ...interface{}) (bson.D, error) {
	return Parse(fmt.Sprintf(format, args...))
}

// ParseList parses several documents. A single argument starting with [ is
// read as a JSON array of documents.
func ParseList(args ...string) ([]bson.D, error) {
	if len(args) == 1 {
		if s := strings.TrimSpace(args[0]); strings.HasPrefix(s, "[") {
			return parseArray(s)
		}
	}
	out := make([]bson.D, 0, len(args))
	for _, a := range args {
		d, err := Parse(a)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseArray(s string) ([]bson.D, error) {
	norm, err := Normalize(Format(s))
	if err != nil {
		return nil, err
	}
	// extended JSON must be a document at the top level
	var wrapper struct {
		List []bson.D `bson:"l"`
	}
	if err := bson.UnmarshalExtJSON([]byte(`{"l":`+norm+`}`), false, &wrapper); err != nil {
		return nil, errors.Wrapf(err, "invalid json array %q", s)
	}
	return wrapper.List, nil
}
