// types.go - Type definitions of the typed collection layer

package kmgo

import (
	"context"
	"time"

	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/kinfkong/kmgo/mapping"
)

// Client is a connection to a deployment with a fixed mapping strategy.
type Client struct {
	client     *mongodrv.Client
	dbName     string
	mode       Mode
	safe       *Safe
	mapper     mapping.Mapper
	ids        mapping.IDGenerator
	naming     mapping.NameStyle
	timeout    time.Duration
	log        *zap.Logger
	isOriginal bool // only the original disconnects on Close
}

// Database is a database handle bound to a client's settings.
type Database struct {
	db     *mongodrv.Database
	name   string
	client *Client
}

// Collection holds documents of type T.
type Collection[T any] struct {
	coll *mongodrv.Collection
	name string
	db   *Database
}

// Query is a find operation being built.
type Query[T any] struct {
	coll       *Collection[T]
	filter     interface{}
	sort       interface{}
	skip       int64
	limit      int64
	batch      int32
	projection interface{}
	collation  *options.Collation
	err        error
}

// Iter iterates over decoded documents of a cursor.
type Iter[T any] struct {
	cursor *mongodrv.Cursor
	ctx    context.Context
	cancel context.CancelFunc
	err    error
	doc    T
}

// Pipe is an aggregation being built.
type Pipe[T any] struct {
	coll      *Collection[T]
	pipeline  []interface{}
	allowDisk bool
	batchSize int32
	maxTime   time.Duration
	collation *options.Collation
	err       error
}

// Bulk queues write models for a single bulk write.
type Bulk[T any] struct {
	coll       *Collection[T]
	operations []mongodrv.WriteModel
	ordered    bool
	err        error
}

// ChangeStream iterates over change events of a collection.
type ChangeStream[T any] struct {
	stream *mongodrv.ChangeStream
	event  ChangeEvent[T]
	err    error
}
