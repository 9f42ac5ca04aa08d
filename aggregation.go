// aggregation.go - Aggregation pipelines

package kmgo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Iter runs the pipeline and returns an iterator over its results.
func (p *Pipe[T]) Iter(ctx context.Context) *Iter[T] {
	if p.err != nil {
		return &Iter[T]{err: p.err}
	}
	opts := options.Aggregate()
	if p.allowDisk {
		opts.SetAllowDiskUse(true)
	}
	if p.batchSize > 0 {
		opts.SetBatchSize(p.batchSize)
	}
	if p.maxTime > 0 {
		opts.SetMaxTime(p.maxTime)
	}
	if p.collation != nil {
		opts.SetCollation(p.collation)
	}

	ctx, cancel := p.coll.client().opContext(ctx)
	cursor, err := p.coll.coll.Aggregate(ctx, p.pipeline, opts)
	return newIter[T](ctx, cancel, cursor, err)
}

// All returns every result.
func (p *Pipe[T]) All(ctx context.Context) ([]T, error) {
	return p.Iter(ctx).All()
}

// One returns the first result, or ErrNotFound.
func (p *Pipe[T]) One(ctx context.Context) (*T, error) {
	it := p.Iter(ctx)
	defer it.Close()
	if it.Next() {
		doc := it.Doc()
		return &doc, nil
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

// Explain decodes the server's execution plan for the pipeline into result.
func (p *Pipe[T]) Explain(ctx context.Context, result interface{}) error {
	if p.err != nil {
		return p.err
	}
	cmd := bson.D{
		{Key: "aggregate", Value: p.coll.name},
		{Key: "pipeline", Value: p.pipeline},
		{Key: "explain", Value: true},
	}
	return p.coll.db.Run(ctx, cmd, result)
}

// AllowDiskUse lets stages write temporary files.
func (p *Pipe[T]) AllowDiskUse() *Pipe[T] {
	p.allowDisk = true
	return p
}

// Batch sets the cursor batch size.
func (p *Pipe[T]) Batch(n int) *Pipe[T] {
	p.batchSize = int32(n)
	return p
}

// SetMaxTime bounds the server execution time.
func (p *Pipe[T]) SetMaxTime(d time.Duration) *Pipe[T] {
	p.maxTime = d
	return p
}

// Collation sets the string comparison rules.
func (p *Pipe[T]) Collation(collation *Collation) *Pipe[T] {
	p.collation = collation.options()
	return p
}
