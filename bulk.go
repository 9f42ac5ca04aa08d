// bulk.go - Bulk writes

package kmgo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kinfkong/kmgo/mapping"
)

// Unordered lets the server continue past failed operations.
func (b *Bulk[T]) Unordered() *Bulk[T] {
	b.ordered = false
	return b
}

func (b *Bulk[T]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Insert queues documents for insertion, generating missing ids in place.
func (b *Bulk[T]) Insert(docs ...*T) *Bulk[T] {
	c := b.coll.client()
	for _, doc := range docs {
		if doc == nil {
			b.fail(errors.New("nil document"))
			continue
		}
		prepared, _, err := mapping.EnsureID(c.mapper, c.ids, doc)
		if err != nil {
			b.fail(err)
			continue
		}
		b.operations = append(b.operations, mongodrv.NewInsertOneModel().SetDocument(prepared))
	}
	return b
}

// pairs converts selector and update pairs.
func (b *Bulk[T]) pairs(op string, pairs []interface{}, add func(filter, update interface{})) *Bulk[T] {
	if len(pairs)%2 != 0 {
		panic("Bulk." + op + " requires an even number of parameters")
	}
	c := b.coll.client()
	for i := 0; i < len(pairs); i += 2 {
		filter, err := c.filter([]interface{}{pairs[i]})
		if err != nil {
			b.fail(err)
			continue
		}
		update, err := c.update(pairs[i+1])
		if err != nil {
			b.fail(err)
			continue
		}
		add(filter, update)
	}
	return b
}

// Update queues selector and update pairs, each updating one document.
func (b *Bulk[T]) Update(pairs ...interface{}) *Bulk[T] {
	return b.pairs("Update", pairs, func(f, u interface{}) {
		b.operations = append(b.operations, mongodrv.NewUpdateOneModel().SetFilter(f).SetUpdate(u))
	})
}

// UpdateAll queues selector and update pairs, each updating every match.
func (b *Bulk[T]) UpdateAll(pairs ...interface{}) *Bulk[T] {
	return b.pairs("UpdateAll", pairs, func(f, u interface{}) {
		b.operations = append(b.operations, mongodrv.NewUpdateManyModel().SetFilter(f).SetUpdate(u))
	})
}

// Upsert queues selector and update pairs, inserting when nothing matches.
func (b *Bulk[T]) Upsert(pairs ...interface{}) *Bulk[T] {
	return b.pairs("Upsert", pairs, func(f, u interface{}) {
		b.operations = append(b.operations, mongodrv.NewUpdateOneModel().SetFilter(f).SetUpdate(u).SetUpsert(true))
	})
}

// Remove queues selectors, each removing one document.
func (b *Bulk[T]) Remove(selectors ...interface{}) *Bulk[T] {
	return b.remove(selectors, false)
}

// RemoveAll queues selectors, each removing every match.
func (b *Bulk[T]) RemoveAll(selectors ...interface{}) *Bulk[T] {
	return b.remove(selectors, true)
}

func (b *Bulk[T]) remove(selectors []interface{}, many bool) *Bulk[T] {
	c := b.coll.client()
	for _, s := range selectors {
		if s == nil {
			s = bson.D{}
		}
		filter, err := c.filter([]interface{}{s})
		if err != nil {
			b.fail(err)
			continue
		}
		if many {
			b.operations = append(b.operations, mongodrv.NewDeleteManyModel().SetFilter(filter))
		} else {
			b.operations = append(b.operations, mongodrv.NewDeleteOneModel().SetFilter(filter))
		}
	}
	return b
}

// Len returns the number of queued operations.
func (b *Bulk[T]) Len() int {
	return len(b.operations)
}

// Run executes the queued operations. On a bulk write exception the partial
// result is returned along with the driver error.
func (b *Bulk[T]) Run(ctx context.Context) (*BulkResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.operations) == 0 {
		return &BulkResult{}, nil
	}

	ctx, cancel := b.coll.client().opContext(ctx)
	defer cancel()
	opts := options.BulkWrite().SetOrdered(b.ordered)
	res, err := b.coll.coll.BulkWrite(ctx, b.operations, opts)
	return convertBulkResult(res), err
}

func convertBulkResult(res *mongodrv.BulkWriteResult) *BulkResult {
	if res == nil {
		return &BulkResult{}
	}
	// deletes count as both matched and modified
	return &BulkResult{
		Matched:     int(res.MatchedCount + res.DeletedCount),
		Modified:    int(res.ModifiedCount + res.DeletedCount + res.UpsertedCount),
		Inserted:    int(res.InsertedCount),
		Upserted:    int(res.UpsertedCount),
		Deleted:     int(res.DeletedCount),
		UpsertedIDs: res.UpsertedIDs,
	}
}
