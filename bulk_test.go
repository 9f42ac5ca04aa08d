package kmgo_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/kinfkong/kmgo"
	"github.com/kinfkong/kmgo/example/model"
	"github.com/kinfkong/kmgo/expr"
)

func TestBulkInsert(t *testing.T) {
	// Setup
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := tdb.Owners()

	docs := SampleOwners()
	bulk := coll.Bulk()
	for i := range docs {
		bulk.Insert(&docs[i])
	}
	assert.Equal(t, 3, bulk.Len())

	result, err := bulk.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	for _, d := range docs {
		assert.False(t, d.ID.IsZero())
	}

	count, err := coll.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestBulkMixed(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := tdb.Owners()
	InsertTestOwners(t, coll)

	result, err := coll.Bulk().
		Update(expr.Eq(owner.Name(), "John Doe"), expr.Set(owner.Age(), 1)).
		UpdateAll(expr.Eq(owner.Pet().Kind(), "dog"), expr.Push(owner.Tags(), "dog-owner")).
		Upsert(expr.Eq(owner.Name(), "New"), `{age: 2}`).
		Remove(expr.Eq(owner.Name(), "Jane Smith")).
		Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Upserted)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 4, result.Matched)
	assert.Len(t, result.UpsertedIDs, 1)

	tagged, err := coll.CountDocuments(ctx, expr.EqAny(owner.Tags(), "dog-owner"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), tagged)

	result, err = coll.Bulk().RemoveAll(nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Deleted)
}

func TestBulkUnorderedContinuesPastErrors(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := kmgo.GetCollection[model.Counter](tdb.DB())

	result, err := coll.Bulk().Unordered().
		Insert(&model.Counter{ID: 1}, &model.Counter{ID: 1}, &model.Counter{ID: 2}).
		Run(ctx)
	require.Error(t, err)
	var bwe mongodrv.BulkWriteException
	require.True(t, errors.As(err, &bwe))
	assert.Len(t, bwe.WriteErrors, 1)
	assert.Equal(t, 2, result.Inserted)

	// ordered bulks stop at the first failure
	result, err = coll.Bulk().
		Insert(&model.Counter{ID: 3}, &model.Counter{ID: 2}, &model.Counter{ID: 4}).
		Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, result.Inserted)
}

func TestBulkArguments(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	coll := tdb.Owners()

	assert.PanicsWithValue(t, "Bulk.Update requires an even number of parameters", func() {
		coll.Bulk().Update(expr.Eq(owner.Name(), "x"))
	})

	// conversion errors are reported by Run
	_, err := coll.Bulk().Update(`{name: `, `{age: 1}`).Run(context.Background())
	assert.Error(t, err)

	result, err := coll.Bulk().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &kmgo.BulkResult{}, result)
}

func TestBulkWriteTemplates(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := tdb.Owners()
	owners := InsertTestOwners(t, coll)

	result, err := coll.BulkWrite(ctx,
		`{updateOne: {filter: {name: 'John Doe'}, update: {$set: {age: 60}}}}`,
		`{deleteMany: {filter: {age: {$lt: 30}}}}`,
		mongodrv.NewDeleteOneModel().SetFilter(expr.Eq(owner.Name(), "Bob Johnson")),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Deleted)

	john, err := coll.FindOneByID(ctx, owners[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 60, john.Age)
}
