// changestream.go - Change streams

package kmgo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Namespace names the collection an event happened in.
type Namespace struct {
	DB   string `bson:"db"`
	Coll string `bson:"coll"`
}

// UpdateDescription lists the fields an update changed.
type UpdateDescription struct {
	UpdatedFields bson.Raw `bson:"updatedFields"`
	RemovedFields []string `bson:"removedFields"`
}

// ChangeEvent is a change stream event on T documents.
type ChangeEvent[T any] struct {
	ID                bson.Raw            `bson:"_id"`
	OperationType     string              `bson:"operationType"`
	FullDocument      *T                  `bson:"fullDocument,omitempty"`
	DocumentKey       bson.Raw            `bson:"documentKey,omitempty"`
	Namespace         Namespace           `bson:"ns"`
	UpdateDescription *UpdateDescription  `bson:"updateDescription,omitempty"`
	ClusterTime       primitive.Timestamp `bson:"clusterTime"`
}

// Watch opens a change stream. Updates carry the current full document.
// The stream lives until ctx ends or it is closed; no default timeout applies.
func (c *Collection[T]) Watch(ctx context.Context, stages ...interface{}) (*ChangeStream[T], error) {
	pipeline, err := c.client().pipeline(stages)
	if err != nil {
		return nil, err
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := c.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}
	return &ChangeStream[T]{stream: stream}, nil
}

// Listen calls fn for every event until ctx ends or fn returns an error.
// It returns nil when ctx ends.
func (c *Collection[T]) Listen(ctx context.Context, fn func(ChangeEvent[T]) error, stages ...interface{}) error {
	cs, err := c.Watch(ctx, stages...)
	if err != nil {
		return err
	}
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		if err := fn(cs.Event()); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return cs.Err()
}

// Next blocks until the next event. It returns false when ctx ends or the
// stream fails; see Err.
func (cs *ChangeStream[T]) Next(ctx context.Context) bool {
	if cs.err != nil {
		return false
	}
	if !cs.stream.Next(ctx) {
		cs.err = cs.stream.Err()
		return false
	}
	var ev ChangeEvent[T]
	if err := cs.stream.Decode(&ev); err != nil {
		cs.err = err
		return false
	}
	cs.event = ev
	return true
}

// Event returns the current event.
func (cs *ChangeStream[T]) Event() ChangeEvent[T] {
	return cs.event
}

// Err returns the first error met.
func (cs *ChangeStream[T]) Err() error {
	return cs.err
}

// ResumeToken returns the token to resume after the current event.
func (cs *ChangeStream[T]) ResumeToken() bson.Raw {
	return cs.stream.ResumeToken()
}

// Close closes the stream.
func (cs *ChangeStream[T]) Close(ctx context.Context) error {
	return cs.stream.Close(ctx)
}
