// query.go - Find queries

package kmgo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kinfkong/kmgo/expr"
)

// Sort orders results by fields, each prefixed with "-" for descending order.
func (q *Query[T]) Sort(fields ...string) *Query[T] {
	var sort bson.D
	for _, field := range fields {
		order := 1
		if strings.HasPrefix(field, "-") {
			order = -1
			field = field[1:]
		}
		sort = append(sort, bson.E{Key: field, Value: order})
	}
	q.sort = sort
	return q
}

// SortBy orders results with a sort document, usually built with expr.
func (q *Query[T]) SortBy(sort interface{}) *Query[T] {
	d, err := q.coll.client().document(sort)
	if err != nil && q.err == nil {
		q.err = err
	}
	q.sort = d
	return q
}

// Skip skips the first n results.
func (q *Query[T]) Skip(n int) *Query[T] {
	q.skip = int64(n)
	return q
}

// Limit returns at most n results.
func (q *Query[T]) Limit(n int) *Query[T] {
	q.limit = int64(n)
	return q
}

// Batch sets the cursor batch size.
func (q *Query[T]) Batch(n int) *Query[T] {
	q.batch = int32(n)
	return q
}

// Select sets the projection.
func (q *Query[T]) Select(projection interface{}) *Query[T] {
	d, err := q.coll.client().document(projection)
	if err != nil && q.err == nil {
		q.err = err
	}
	q.projection = d
	return q
}

// Projection sets the projection from expr documents.
func (q *Query[T]) Projection(projections ...expr.Doc) *Query[T] {
	return q.Select(expr.Fields(projections...))
}

// Collation sets the string comparison rules.
func (q *Query[T]) Collation(collation *Collation) *Query[T] {
	q.collation = collation.options()
	return q
}

func (q *Query[T]) findOptions() *options.FindOptions {
	opts := options.Find()
	if q.projection != nil {
		opts.SetProjection(q.projection)
	}
	if q.sort != nil {
		opts.SetSort(q.sort)
	}
	if q.skip > 0 {
		opts.SetSkip(q.skip)
	}
	if q.limit > 0 {
		opts.SetLimit(q.limit)
	}
	if q.batch > 0 {
		opts.SetBatchSize(q.batch)
	}
	if q.collation != nil {
		opts.SetCollation(q.collation)
	}
	return opts
}

// One returns the first result, or ErrNotFound.
func (q *Query[T]) One(ctx context.Context) (*T, error) {
	if q.err != nil {
		return nil, q.err
	}
	opts := options.FindOne()
	if q.projection != nil {
		opts.SetProjection(q.projection)
	}
	if q.sort != nil {
		opts.SetSort(q.sort)
	}
	if q.skip > 0 {
		opts.SetSkip(q.skip)
	}
	if q.collation != nil {
		opts.SetCollation(q.collation)
	}

	ctx, cancel := q.coll.client().opContext(ctx)
	defer cancel()
	return decodeOne[T](q.coll.coll.FindOne(ctx, q.filter, opts))
}

// All returns every result.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	return q.Iter(ctx).All()
}

// Count counts the results, honoring Skip and Limit.
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	opts := options.Count()
	if q.skip > 0 {
		opts.SetSkip(q.skip)
	}
	if q.limit > 0 {
		opts.SetLimit(q.limit)
	}
	if q.collation != nil {
		opts.SetCollation(q.collation)
	}

	ctx, cancel := q.coll.client().opContext(ctx)
	defer cancel()
	return q.coll.coll.CountDocuments(ctx, q.filter, opts)
}

// Iter opens a cursor over the results. The default timeout, when it
// applies, covers the whole iteration.
func (q *Query[T]) Iter(ctx context.Context) *Iter[T] {
	if q.err != nil {
		return &Iter[T]{err: q.err}
	}
	ctx, cancel := q.coll.client().opContext(ctx)
	cursor, err := q.coll.coll.Find(ctx, q.filter, q.findOptions())
	return newIter[T](ctx, cancel, cursor, err)
}

// Apply updates or removes the first result and decodes it. It returns the
// document before the change unless change.ReturnNew is set.
func (q *Query[T]) Apply(ctx context.Context, change Change) (*T, *ChangeInfo, error) {
	if q.err != nil {
		return nil, nil, q.err
	}
	c := q.coll

	if change.Remove {
		opts := options.FindOneAndDelete()
		if q.sort != nil {
			opts.SetSort(q.sort)
		}
		if q.projection != nil {
			opts.SetProjection(q.projection)
		}
		ctx, cancel := c.client().opContext(ctx)
		defer cancel()
		doc, err := decodeOne[T](c.coll.FindOneAndDelete(ctx, q.filter, opts))
		if err != nil {
			return nil, &ChangeInfo{}, err
		}
		return doc, &ChangeInfo{Removed: 1, Matched: 1}, nil
	}

	update, err := c.client().update(change.Update)
	if err != nil {
		return nil, nil, err
	}
	cmd := bson.D{
		{Key: "findAndModify", Value: c.coll.Name()},
		{Key: "query", Value: q.filter},
		{Key: "update", Value: update},
		{Key: "new", Value: change.ReturnNew},
		{Key: "upsert", Value: change.Upsert},
	}
	if q.sort != nil {
		cmd = append(cmd, bson.E{Key: "sort", Value: q.sort})
	}
	if q.projection != nil {
		cmd = append(cmd, bson.E{Key: "fields", Value: q.projection})
	}

	ctx, cancel := c.client().opContext(ctx)
	defer cancel()
	// transactions carry their own write concern
	if wc := c.client().safe.document(); len(wc) > 0 && mongodrv.SessionFromContext(ctx) == nil {
		cmd = append(cmd, bson.E{Key: "writeConcern", Value: wc})
	}

	var reply findAndModifyReply
	opts := options.RunCmd().SetReadPreference(readpref.Primary())
	if err := c.coll.Database().RunCommand(ctx, cmd, opts).Decode(&reply); err != nil {
		return nil, &ChangeInfo{}, err
	}

	info := &ChangeInfo{}
	if reply.LastError.UpdatedExisting {
		info.Updated, info.Matched = reply.LastError.N, reply.LastError.N
	} else if reply.LastError.Upserted != nil {
		info.UpsertedId = reply.LastError.Upserted
	}
	if reply.Value.Type != bson.TypeEmbeddedDocument {
		if info.UpsertedId != nil {
			// inserted, and the caller asked for the document before the change
			return nil, info, nil
		}
		return nil, info, ErrNotFound
	}
	var doc T
	if err := c.client().mapper.Unmarshal(reply.Value.Value, &doc); err != nil {
		return nil, info, err
	}
	return &doc, info, nil
}

type findAndModifyReply struct {
	Value     bson.RawValue `bson:"value"`
	LastError struct {
		N               int         `bson:"n"`
		UpdatedExisting bool        `bson:"updatedExisting"`
		Upserted        interface{} `bson:"upserted"`
	} `bson:"lastErrorObject"`
}
