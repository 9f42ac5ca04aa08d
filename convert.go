// convert.go - Conversion of filter, update and pipeline arguments

package kmgo

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/kinfkong/kmgo/expr"
	"github.com/kinfkong/kmgo/query"
)

// document converts a single document argument: template strings are parsed
// and expr documents are rendered with the client's mapper.
func (c *Client) document(v interface{}) (interface{}, error) {
	switch d := v.(type) {
	case nil:
		return bson.D{}, nil
	case string:
		return query.Parse(d)
	case expr.Doc:
		return d.Render(c.mapper), nil
	}
	return v, nil
}

// filter combines filters with $and. Nil filters are skipped.
func (c *Client) filter(filters []interface{}) (interface{}, error) {
	parts := make(bson.A, 0, len(filters))
	for _, f := range filters {
		if f == nil {
			continue
		}
		d, err := c.document(f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, d)
	}
	var out interface{}
	switch len(parts) {
	case 0:
		out = bson.D{}
	case 1:
		out = parts[0]
	default:
		out = bson.D{{Key: "$and", Value: parts}}
	}
	c.debug("filter", out)
	return out, nil
}

type skipNulls struct{ v interface{} }

// SkipNulls marks an update value whose nil fields are left untouched
// instead of being set to null.
func SkipNulls(v interface{}) interface{} {
	return skipNulls{v: v}
}

// update converts an update argument. Values without update operators,
// structs included, become a $set of their fields other than _id.
func (c *Client) update(u interface{}) (interface{}, error) {
	onlyNotNull := false
	if s, ok := u.(skipNulls); ok {
		u, onlyNotNull = s.v, true
	}

	var out interface{}
	switch d := u.(type) {
	case nil:
		return nil, errors.New("nil update")
	case string:
		parsed, err := query.Parse(d)
		if err != nil {
			return nil, err
		}
		if out, err = c.setModifier(parsed, onlyNotNull); err != nil {
			return nil, err
		}
	case expr.Doc:
		set, err := c.setModifier(d.Render(c.mapper), onlyNotNull)
		if err != nil {
			return nil, err
		}
		out = set
	case bson.D, bson.M:
		set, err := c.setModifier(d, onlyNotNull)
		if err != nil {
			return nil, err
		}
		out = set
	case map[string]interface{}:
		set, err := c.setModifier(bson.M(d), onlyNotNull)
		if err != nil {
			return nil, err
		}
		out = set
	case []bson.D, bson.A:
		// update pipeline
		out = d
	default:
		raw, err := c.mapper.Marshal(u)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %T update", u)
		}
		set, err := query.SetModifier(raw, onlyNotNull)
		if err != nil {
			return nil, err
		}
		out = set
	}
	c.debug("update", out)
	return out, nil
}

// pipeline converts aggregation stages. A template string holding an array
// expands into several stages.
func (c *Client) pipeline(stages []interface{}) ([]interface{}, error) {
	out := make([]interface{}, 0, len(stages))
	for _, s := range stages {
		if str, ok := s.(string); ok && strings.HasPrefix(strings.TrimSpace(str), "[") {
			list, err := query.ParseList(str)
			if err != nil {
				return nil, err
			}
			for _, d := range list {
				out = append(out, d)
			}
			continue
		}
		d, err := c.document(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	c.debug("pipeline", out)
	return out, nil
}

func hasUpdateOperators(doc interface{}) bool {
	switch d := doc.(type) {
	case bson.D:
		return query.HasOperators(d)
	case bson.M:
		for k := range d {
			if strings.HasPrefix(k, "$") {
				return true
			}
		}
	}
	return false
}

// setModifier passes documents holding update operators through and turns
// any other document into a $set without _id.
func (c *Client) setModifier(doc interface{}, onlyNotNull bool) (interface{}, error) {
	if hasUpdateOperators(doc) {
		return doc, nil
	}
	raw, err := c.mapper.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode update")
	}
	return query.SetModifier(raw, onlyNotNull)
}

// docSlice converts documents to the slice the driver expects.
func docSlice[T any](docs []T) []interface{} {
	out := make([]interface{}, len(docs))
	for i := range docs {
		out[i] = docs[i]
	}
	return out
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c *Client) debug(kind string, v interface{}) {
	if ce := c.log.Check(zap.DebugLevel, "rendered "+kind); ce != nil {
		data, err := bson.MarshalExtJSON(bson.D{{Key: kind, Value: v}}, false, false)
		if err != nil {
			ce.Write(zap.Error(err))
			return
		}
		ce.Write(zap.ByteString(kind, data))
	}
}
