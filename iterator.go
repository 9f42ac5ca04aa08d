// iterator.go - Cursor iteration

package kmgo

import (
	"context"

	mongodrv "go.mongodb.org/mongo-driver/mongo"
)

func newIter[T any](ctx context.Context, cancel context.CancelFunc, cursor *mongodrv.Cursor, err error) *Iter[T] {
	if err != nil {
		cancel()
	}
	return &Iter[T]{
		cursor: cursor,
		ctx:    ctx,
		cancel: cancel,
		err:    err,
	}
}

// Next advances to the next document. It returns false at the end of the
// cursor or on error; see Err.
func (it *Iter[T]) Next() bool {
	if it.err != nil || it.cursor == nil {
		return false
	}
	if !it.cursor.Next(it.ctx) {
		it.err = it.cursor.Err()
		return false
	}
	var doc T
	if err := it.cursor.Decode(&doc); err != nil {
		it.err = err
		return false
	}
	it.doc = doc
	return true
}

// Doc returns the current document.
func (it *Iter[T]) Doc() T {
	return it.doc
}

// Err returns the first error met while iterating.
func (it *Iter[T]) Err() error {
	return it.err
}

// Close closes the cursor and returns the first error met.
func (it *Iter[T]) Close() error {
	if it.cursor != nil {
		if err := it.cursor.Close(context.Background()); err != nil && it.err == nil {
			it.err = err
		}
		it.cursor = nil
	}
	if it.cancel != nil {
		it.cancel()
		it.cancel = nil
	}
	return it.err
}

// All decodes the remaining documents and closes the iterator.
func (it *Iter[T]) All() ([]T, error) {
	defer it.Close()
	if it.err != nil {
		return nil, it.err
	}
	docs := []T{}
	for it.Next() {
		docs = append(docs, it.doc)
	}
	if it.err != nil {
		return nil, it.err
	}
	return docs, nil
}
