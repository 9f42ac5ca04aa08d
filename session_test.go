package kmgo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kinfkong/kmgo"
	"github.com/kinfkong/kmgo/example/model"
	"github.com/kinfkong/kmgo/expr"
)

func TestClientPingAndBuildInfo(t *testing.T) {
	// Setup
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()

	require.NoError(t, tdb.Client.Ping(ctx))

	info, err := tdb.Client.BuildInfo(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Version)
	assert.True(t, info.VersionAtLeast(3, 6))

	var reply bson.M
	require.NoError(t, tdb.Client.Run(ctx, `{ping: 1}`, &reply))
	assert.EqualValues(t, 1, reply["ok"])
}

func TestClientCopy(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()

	cp := tdb.Client.Copy()
	cp.SetMode(kmgo.SecondaryPreferred, true)
	cp.SetSafe(&kmgo.Safe{WMode: "majority"})
	assert.Equal(t, kmgo.SecondaryPreferred, cp.Mode())
	assert.Equal(t, kmgo.Primary, tdb.Client.Mode())
	assert.Equal(t, 1, tdb.Client.Safe().W)
	assert.Equal(t, tdb.Client.Mapper(), cp.Mapper())

	// closing a copy leaves the original connected
	cp.Close()
	require.NoError(t, tdb.Client.Ping(ctx))
}

func TestDialDatabaseFromURI(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" || testing.Short() {
		t.Skip("MONGODB_TEST_URL not set")
	}
	client, err := kmgo.DialWithTimeout(url, 30*time.Second)
	require.NoError(t, err)
	defer client.Close()

	assert.NotEmpty(t, client.DB("").Name())
	assert.Equal(t, "other", client.DB("other").Name())
}

func TestDatabaseCommands(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	db := tdb.DB()

	InsertTestOwners(t, tdb.Owners())
	require.NoError(t, kmgo.GetCollection[model.Counter](db).InsertOne(ctx, &model.Counter{ID: 1}))

	names, err := db.CollectionNames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"owner", "counter"}, names)

	var reply bson.M
	require.NoError(t, db.Run(ctx, bson.D{{Key: "count", Value: "owner"}}, &reply))
	assert.EqualValues(t, 3, reply["n"])

	require.NoError(t, kmgo.GetCollection[model.Counter](db).Drop(ctx))
	names, err = db.CollectionNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, names)
}

func TestOperationTimeout(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tdb.Owners().FindOne(ctx, expr.Eq(owner.Name(), "x"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, kmgo.ErrNotFound)
}

func TestTransaction(t *testing.T) {
	if os.Getenv("MONGODB_TEST_REPLICA_SET") == "" {
		t.Skip("transactions need a replica set")
	}
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := tdb.Owners()
	owners := InsertTestOwners(t, coll)

	err := tdb.Client.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := coll.UpdateOneByID(ctx, owners[0].ID, expr.Inc(owner.Age(), 1)); err != nil {
			return err
		}
		_, err := coll.DeleteOneByID(ctx, owners[1].ID)
		return err
	})
	require.NoError(t, err)

	n, err := coll.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
