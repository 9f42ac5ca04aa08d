// indexes.go - Index management

package kmgo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Server codes of an index that exists with other options or another name.
const (
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// EnsureIndex creates an index on keys, an expr.Doc or key document. When an
// index with the same keys exists with other options, it is dropped and
// created again.
func (c *Collection[T]) EnsureIndex(ctx context.Context, keys interface{}, opts ...*options.IndexOptions) (string, error) {
	k, err := c.client().document(keys)
	if err != nil {
		return "", err
	}
	model := mongodrv.IndexModel{Keys: k, Options: options.MergeIndexOptions(opts...)}

	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	name, err := c.coll.Indexes().CreateOne(ctx, model)

	var cmdErr mongodrv.CommandError
	if !errors.As(err, &cmdErr) || (cmdErr.Code != codeIndexOptionsConflict && cmdErr.Code != codeIndexKeySpecsConflict) {
		return name, err
	}
	c.client().log.Info("recreating index",
		zap.String("collection", c.name),
		zap.String("reason", cmdErr.Message))
	if _, err := c.coll.Indexes().DropOneWithKey(ctx, k); err != nil {
		return "", err
	}
	return c.coll.Indexes().CreateOne(ctx, model)
}

// EnsureUniqueIndex creates a unique index on keys.
func (c *Collection[T]) EnsureUniqueIndex(ctx context.Context, keys interface{}, opts ...*options.IndexOptions) (string, error) {
	return c.EnsureIndex(ctx, keys, append(opts, options.Index().SetUnique(true))...)
}

// EnsureIndexSpec creates the index described in the legacy form.
func (c *Collection[T]) EnsureIndexSpec(ctx context.Context, index Index) error {
	_, err := c.EnsureIndex(ctx, index.keys(), index.options())
	return err
}

// EnsureIndexKey creates an index on fields, each prefixed with "-" for
// descending order.
func (c *Collection[T]) EnsureIndexKey(ctx context.Context, key ...string) error {
	return c.EnsureIndexSpec(ctx, Index{Key: key})
}

// Indexes lists the indexes of the collection in the legacy form.
func (c *Collection[T]) Indexes(ctx context.Context) ([]Index, error) {
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()

	specs, err := c.coll.Indexes().ListSpecifications(ctx)
	if err != nil {
		return nil, err
	}
	indexes := make([]Index, 0, len(specs))
	for _, spec := range specs {
		var keys bson.D
		if err := bson.Unmarshal(spec.KeysDocument, &keys); err != nil {
			return nil, err
		}
		index := Index{Name: spec.Name}
		for _, e := range keys {
			order := ""
			switch v := e.Value.(type) {
			case int32:
				if v < 0 {
					order = "-"
				}
			case int64:
				if v < 0 {
					order = "-"
				}
			case float64:
				if v < 0 {
					order = "-"
				}
			}
			index.Key = append(index.Key, order+e.Key)
		}
		if spec.Unique != nil {
			index.Unique = *spec.Unique
		}
		if spec.Sparse != nil {
			index.Sparse = *spec.Sparse
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

// DropIndex drops the index called name.
func (c *Collection[T]) DropIndex(ctx context.Context, name string) error {
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	_, err := c.coll.Indexes().DropOne(ctx, name)
	return err
}

// DropIndexOfKeys drops the index on keys.
func (c *Collection[T]) DropIndexOfKeys(ctx context.Context, keys interface{}) error {
	k, err := c.client().document(keys)
	if err != nil {
		return err
	}
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	_, err = c.coll.Indexes().DropOneWithKey(ctx, k)
	return err
}
