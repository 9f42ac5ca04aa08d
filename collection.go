// collection.go - Typed collection operations

package kmgo

import (
	"context"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kinfkong/kmgo/mapping"
	"github.com/kinfkong/kmgo/property"
	"github.com/kinfkong/kmgo/query"
)

// GetCollection returns the collection holding T documents. Without a name,
// the name is derived from T with the client's naming style.
func GetCollection[T any](db *Database, name ...string) *Collection[T] {
	n := ""
	if len(name) > 0 {
		n = name[0]
	}
	if n == "" {
		n = mapping.CollectionName(typeOf[T](), db.client.naming)
	}
	return &Collection[T]{
		coll: db.db.Collection(n),
		name: n,
		db:   db,
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Database returns the database of the collection.
func (c *Collection[T]) Database() *Database { return c.db }

// Driver returns the underlying driver collection.
func (c *Collection[T]) Driver() *mongodrv.Collection { return c.coll }

func (c *Collection[T]) client() *Client { return c.db.client }

func (c *Collection[T]) mapper() mapping.Mapper { return c.db.client.mapper }

func idFilter(id interface{}) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func zeroID(id interface{}) bool {
	return id == nil || reflect.ValueOf(id).IsZero()
}

// InsertOne inserts doc, generating its id when it has none. The id is
// written back into doc.
func (c *Collection[T]) InsertOne(ctx context.Context, doc *T) error {
	if doc == nil {
		return errors.New("nil document")
	}
	prepared, _, err := mapping.EnsureID(c.mapper(), c.client().ids, doc)
	if err != nil {
		return err
	}

	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	_, err = c.coll.InsertOne(ctx, prepared)
	return err
}

// InsertMany inserts docs in order, generating missing ids in place.
func (c *Collection[T]) InsertMany(ctx context.Context, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	prepared := make([]interface{}, len(docs))
	for i := range docs {
		d, _, err := mapping.EnsureID(c.mapper(), c.client().ids, &docs[i])
		if err != nil {
			return errors.Wrapf(err, "document %d", i)
		}
		prepared[i] = d
	}

	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	_, err := c.coll.InsertMany(ctx, prepared)
	return err
}

// Save inserts doc when its id is unset, and replaces or upserts the
// document with the same id otherwise.
func (c *Collection[T]) Save(ctx context.Context, doc *T) error {
	id, err := c.mapper().GetID(doc)
	if err != nil && !errors.Is(err, mapping.ErrNoIDField) {
		return err
	}
	if zeroID(id) {
		return c.InsertOne(ctx, doc)
	}
	_, err = c.ReplaceOne(ctx, idFilter(id), doc, options.Replace().SetUpsert(true))
	return err
}

// Find starts a query on the documents matching every filter.
func (c *Collection[T]) Find(filters ...interface{}) *Query[T] {
	f, err := c.client().filter(filters)
	return &Query[T]{
		coll:   c,
		filter: f,
		err:    err,
	}
}

// FindOne returns the first document matching filters, or ErrNotFound.
func (c *Collection[T]) FindOne(ctx context.Context, filters ...interface{}) (*T, error) {
	return c.Find(filters...).One(ctx)
}

// FindOneByID returns the document with id, or ErrNotFound.
func (c *Collection[T]) FindOneByID(ctx context.Context, id interface{}) (*T, error) {
	return c.Find(idFilter(id)).One(ctx)
}

// CountDocuments counts the documents matching filters.
func (c *Collection[T]) CountDocuments(ctx context.Context, filters ...interface{}) (int64, error) {
	return c.Find(filters...).Count(ctx)
}

// EstimatedCount returns the collection size from its metadata.
func (c *Collection[T]) EstimatedCount(ctx context.Context) (int64, error) {
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	return c.coll.EstimatedDocumentCount(ctx)
}

// Distinct returns the distinct values of field among the documents
// matching filters.
func (c *Collection[T]) Distinct(ctx context.Context, field property.Path, filters ...interface{}) ([]interface{}, error) {
	f, err := c.client().filter(filters)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	return c.coll.Distinct(ctx, field.PathWith(c.mapper()), f)
}

// Projection returns the values of field in the documents matching filters.
// Documents without the field are skipped.
func Projection[R, T any](ctx context.Context, c *Collection[T], field property.Field[R], filters ...interface{}) ([]R, error) {
	path := field.PathWith(c.mapper())
	q := c.Find(filters...).Select(bson.D{{Key: path, Value: 1}, {Key: "_id", Value: 0}})
	if q.err != nil {
		return nil, q.err
	}

	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	cursor, err := c.coll.Find(ctx, q.filter, q.findOptions())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	keys := strings.Split(path, ".")
	var out []R
	for cursor.Next(ctx) {
		rv, err := cursor.Current.LookupErr(keys...)
		if err != nil {
			continue
		}
		var v R
		if err := rv.UnmarshalWithRegistry(c.mapper().Registry(), &v); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
		out = append(out, v)
	}
	return out, cursor.Err()
}

// DeleteOne removes the first document matching filters.
func (c *Collection[T]) DeleteOne(ctx context.Context, filters ...interface{}) (*ChangeInfo, error) {
	f, err := c.client().filter(filters)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	res, err := c.coll.DeleteOne(ctx, f)
	if err != nil {
		return nil, err
	}
	return deleteInfo(res), nil
}

// DeleteOneByID removes the document with id.
func (c *Collection[T]) DeleteOneByID(ctx context.Context, id interface{}) (*ChangeInfo, error) {
	return c.DeleteOne(ctx, idFilter(id))
}

// DeleteMany removes every document matching filters.
func (c *Collection[T]) DeleteMany(ctx context.Context, filters ...interface{}) (*ChangeInfo, error) {
	f, err := c.client().filter(filters)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	res, err := c.coll.DeleteMany(ctx, f)
	if err != nil {
		return nil, err
	}
	return deleteInfo(res), nil
}

// replacement encodes doc without its _id, which a replace cannot change.
func (c *Collection[T]) replacement(doc *T) (bson.D, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	raw, err := c.mapper().Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %T", doc)
	}
	elems, err := raw.Elements()
	if err != nil {
		return nil, err
	}
	out := make(bson.D, 0, len(elems))
	for _, e := range elems {
		if e.Key() == "_id" {
			continue
		}
		out = append(out, bson.E{Key: e.Key(), Value: e.Value()})
	}
	return out, nil
}

// ReplaceOne replaces the first document matching filter with doc.
func (c *Collection[T]) ReplaceOne(ctx context.Context, filter interface{}, doc *T, opts ...*options.ReplaceOptions) (*ChangeInfo, error) {
	f, err := c.client().filter([]interface{}{filter})
	if err != nil {
		return nil, err
	}
	repl, err := c.replacement(doc)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	res, err := c.coll.ReplaceOne(ctx, f, repl, opts...)
	if err != nil {
		return nil, err
	}
	return updateInfo(res), nil
}

// ReplaceOneByID replaces the document with id.
func (c *Collection[T]) ReplaceOneByID(ctx context.Context, id interface{}, doc *T, opts ...*options.ReplaceOptions) (*ChangeInfo, error) {
	return c.ReplaceOne(ctx, idFilter(id), doc, opts...)
}

// UpdateOne updates the first document matching filter.
func (c *Collection[T]) UpdateOne(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*ChangeInfo, error) {
	return c.updateDocs(ctx, false, filter, update, opts)
}

// UpdateOneByID updates the document with id.
func (c *Collection[T]) UpdateOneByID(ctx context.Context, id, update interface{}, opts ...*options.UpdateOptions) (*ChangeInfo, error) {
	return c.updateDocs(ctx, false, idFilter(id), update, opts)
}

// UpdateMany updates every document matching filter.
func (c *Collection[T]) UpdateMany(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*ChangeInfo, error) {
	return c.updateDocs(ctx, true, filter, update, opts)
}

func (c *Collection[T]) updateDocs(ctx context.Context, many bool, filter, update interface{}, opts []*options.UpdateOptions) (*ChangeInfo, error) {
	f, err := c.client().filter([]interface{}{filter})
	if err != nil {
		return nil, err
	}
	u, err := c.client().update(update)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	var res *mongodrv.UpdateResult
	if many {
		res, err = c.coll.UpdateMany(ctx, f, u, opts...)
	} else {
		res, err = c.coll.UpdateOne(ctx, f, u, opts...)
	}
	if err != nil {
		return nil, err
	}
	return updateInfo(res), nil
}

// FindOneAndUpdate updates the first document matching filter and returns
// it, before the update unless opts ask for the new document.
func (c *Collection[T]) FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*T, error) {
	f, err := c.client().filter([]interface{}{filter})
	if err != nil {
		return nil, err
	}
	u, err := c.client().update(update)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	return decodeOne[T](c.coll.FindOneAndUpdate(ctx, f, u, opts...))
}

// FindOneAndReplace replaces the first document matching filter and returns it.
func (c *Collection[T]) FindOneAndReplace(ctx context.Context, filter interface{}, doc *T, opts ...*options.FindOneAndReplaceOptions) (*T, error) {
	f, err := c.client().filter([]interface{}{filter})
	if err != nil {
		return nil, err
	}
	repl, err := c.replacement(doc)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	return decodeOne[T](c.coll.FindOneAndReplace(ctx, f, repl, opts...))
}

// FindOneAndDelete removes the first document matching filters and returns it.
func (c *Collection[T]) FindOneAndDelete(ctx context.Context, filters ...interface{}) (*T, error) {
	f, err := c.client().filter(filters)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	return decodeOne[T](c.coll.FindOneAndDelete(ctx, f))
}

// Aggregate starts an aggregation. Stages may be template strings, expr
// documents or plain documents.
func (c *Collection[T]) Aggregate(stages ...interface{}) *Pipe[T] {
	pipeline, err := c.client().pipeline(stages)
	return &Pipe[T]{
		coll:      c,
		pipeline:  pipeline,
		batchSize: 101,
		err:       err,
	}
}

// AggregateTo runs an aggregation on c and decodes its results as R.
func AggregateTo[R, T any](ctx context.Context, c *Collection[T], stages ...interface{}) ([]R, error) {
	p := c.Aggregate(stages...)
	out := &Pipe[R]{
		coll:      &Collection[R]{coll: c.coll, name: c.name, db: c.db},
		pipeline:  p.pipeline,
		batchSize: p.batchSize,
		err:       p.err,
	}
	return out.All(ctx)
}

// Bulk starts an ordered bulk write.
func (c *Collection[T]) Bulk() *Bulk[T] {
	return &Bulk[T]{
		coll:    c,
		ordered: true,
	}
}

// BulkWrite runs write models given as driver models or JSON templates
// such as `[{deleteMany: {filter: {}}}]`.
func (c *Collection[T]) BulkWrite(ctx context.Context, requests ...interface{}) (*BulkResult, error) {
	b := c.Bulk()
	for _, r := range requests {
		switch m := r.(type) {
		case string:
			models, err := query.WriteModels(m)
			if err != nil {
				return nil, err
			}
			b.operations = append(b.operations, models...)
		case mongodrv.WriteModel:
			b.operations = append(b.operations, m)
		default:
			return nil, errors.Errorf("unsupported write model %T", r)
		}
	}
	return b.Run(ctx)
}

// Drop drops the collection.
func (c *Collection[T]) Drop(ctx context.Context) error {
	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	return c.coll.Drop(ctx)
}

func decodeOne[T any](res *mongodrv.SingleResult) (*T, error) {
	if err := res.Err(); err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var doc T
	if err := res.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func updateInfo(res *mongodrv.UpdateResult) *ChangeInfo {
	return &ChangeInfo{
		Updated:    int(res.ModifiedCount),
		Matched:    int(res.MatchedCount),
		UpsertedId: res.UpsertedID,
	}
}

func deleteInfo(res *mongodrv.DeleteResult) *ChangeInfo {
	return &ChangeInfo{
		Removed: int(res.DeletedCount),
		Matched: int(res.DeletedCount),
	}
}
