// session.go - Client connection and database handles

package kmgo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"

	"github.com/kinfkong/kmgo/mapping"
)

const defaultDatabase = "test"

// Connect connects with cfg. A nil cfg uses DefaultConfig.
func Connect(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return connect(ctx, cfg, logger)
}

// Dial connects to uri with the default settings and no logging.
func Dial(uri string) (*Client, error) {
	return DialWithTimeout(uri, 10*time.Second)
}

// DialWithTimeout is Dial bounded by timeout. Non-positive timeouts mean 10s.
func DialWithTimeout(uri string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := DefaultConfig()
	cfg.URI = uri
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return connect(ctx, cfg, zap.NewNop())
}

func connect(ctx context.Context, cfg *Config, logger *zap.Logger) (*Client, error) {
	mapper, err := mapping.Builtin().Select(cfg.Mapping)
	if err != nil {
		return nil, err
	}
	ids, err := mapping.ParseIDGenerator(cfg.IDGenerator)
	if err != nil {
		return nil, err
	}
	naming, err := mapping.ParseNameStyle(cfg.CollectionNaming)
	if err != nil {
		return nil, err
	}
	mode, err := ParseMode(cfg.ReadPreference)
	if err != nil {
		return nil, err
	}

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetRetryWrites(cfg.RetryWrites).
		SetRegistry(mapper.Registry())
	if cfg.Logging.Driver {
		clientOptions.SetLoggerOptions(driverLogger(logger, cfg.Logging))
	}

	client, err := mongodrv.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = databaseFromURI(cfg.URI)
	}
	safe := cfg.WriteConcern

	logger.Info("connected",
		zap.String("database", dbName),
		zap.String("mapping", mapper.Name()),
		zap.String("read_preference", cfg.ReadPreference))

	return &Client{
		client:     client,
		dbName:     dbName,
		mode:       mode,
		safe:       &safe,
		mapper:     mapper,
		ids:        ids,
		naming:     naming,
		timeout:    cfg.GetTimeout(),
		log:        logger,
		isOriginal: true,
	}, nil
}

func databaseFromURI(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Database == "" {
		return defaultDatabase
	}
	return cs.Database
}

// Close disconnects the client. Copies never disconnect.
func (c *Client) Close() {
	if !c.isOriginal || c.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.client.Disconnect(ctx); err != nil {
		c.log.Warn("disconnect failed", zap.Error(err))
		return
	}
	c.log.Info("disconnected", zap.String("database", c.dbName))
	_ = c.log.Sync()
}

// Copy returns a client sharing the connection, with its own mode and safety.
func (c *Client) Copy() *Client {
	cp := *c
	if c.safe != nil {
		safe := *c.safe
		cp.safe = &safe
	}
	cp.isOriginal = false
	return &cp
}

// Clone behaves like Copy.
func (c *Client) Clone() *Client {
	return c.Copy()
}

// SetMode sets the read preference of handles obtained afterwards. refresh is
// accepted for compatibility and ignored.
func (c *Client) SetMode(mode Mode, refresh bool) {
	c.mode = mode
}

// Mode returns the read preference mode.
func (c *Client) Mode() Mode {
	return c.mode
}

// SetSafe sets the write concern of handles obtained afterwards. A nil safe
// uses the server default.
func (c *Client) SetSafe(safe *Safe) {
	c.safe = safe
}

// Safe returns the write concern.
func (c *Client) Safe() *Safe {
	return c.safe
}

// Mapper returns the mapping strategy selected when the client connected.
func (c *Client) Mapper() mapping.Mapper {
	return c.mapper
}

// Logger returns the client logger.
func (c *Client) Logger() *zap.Logger {
	return c.log
}

// opContext applies the default timeout unless ctx has a deadline.
func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok || c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Ping checks that the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.opContext(ctx)
	defer cancel()
	return c.client.Ping(ctx, readpref.Primary())
}

// BuildInfo returns server build information.
func (c *Client) BuildInfo(ctx context.Context) (BuildInfo, error) {
	var info BuildInfo
	err := c.DB("admin").Run(ctx, bson.D{{Key: "buildInfo", Value: 1}}, &info)
	return info, err
}

// DB returns a database handle. The empty name is the client's database.
func (c *Client) DB(name string) *Database {
	if name == "" {
		name = c.dbName
	}
	opts := options.Database().SetReadPreference(c.mode.readPref())
	if wc := c.safe.writeConcern(); wc != nil {
		opts.SetWriteConcern(wc)
	}
	if c.safe != nil && c.safe.RMode != "" {
		opts.SetReadConcern(&readconcern.ReadConcern{Level: c.safe.RMode})
	}
	return &Database{
		db:     c.client.Database(name, opts),
		name:   name,
		client: c,
	}
}

// Run runs a command against the admin database.
func (c *Client) Run(ctx context.Context, cmd interface{}, result interface{}) error {
	return c.DB("admin").Run(ctx, cmd, result)
}

// WithTransaction runs fn inside a transaction, committing when it returns
// nil. Operations inside fn must use the context they are given.
func (c *Client) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := c.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(context.Background())

	_, err = sess.WithTransaction(ctx, func(sc mongodrv.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Name returns the database name.
func (db *Database) Name() string {
	return db.name
}

// C returns an untyped collection.
func (db *Database) C(name string) *Collection[bson.M] {
	return GetCollection[bson.M](db, name)
}

// Run runs a command. cmd may be a template string, an expr.Doc or any
// document. A nil result discards the reply.
func (db *Database) Run(ctx context.Context, cmd interface{}, result interface{}) error {
	ctx, cancel := db.client.opContext(ctx)
	defer cancel()

	command, err := db.client.document(cmd)
	if err != nil {
		return err
	}
	res := db.db.RunCommand(ctx, command)
	if result == nil {
		return res.Err()
	}
	return res.Decode(result)
}

// Drop drops the database.
func (db *Database) Drop(ctx context.Context) error {
	ctx, cancel := db.client.opContext(ctx)
	defer cancel()
	return db.db.Drop(ctx)
}

// CollectionNames lists the collections of the database.
func (db *Database) CollectionNames(ctx context.Context) ([]string, error) {
	ctx, cancel := db.client.opContext(ctx)
	defer cancel()
	names, err := db.db.ListCollectionNames(ctx, bson.D{})
	return names, errors.Wrapf(err, "list collections of %s", db.name)
}
