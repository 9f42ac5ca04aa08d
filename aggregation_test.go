package kmgo_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kinfkong/kmgo"
	"github.com/kinfkong/kmgo/expr"
)

type kindStats struct {
	Kind   string  `bson:"_id"`
	Count  int     `bson:"count"`
	AvgAge float64 `bson:"avgAge"`
}

func TestAggregateTyped(t *testing.T) {
	// Setup
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := tdb.Owners()
	InsertTestOwners(t, coll)

	stats, err := kmgo.AggregateTo[kindStats](ctx, coll,
		expr.Match(expr.Gte(owner.Age(), 18)),
		expr.Group(expr.Ref(owner.Pet().Kind()),
			expr.Sum("count", 1),
			expr.Avg("avgAge", expr.Ref(owner.Age())),
		),
		expr.SortStage(expr.Ascending(expr.Name("_id"))),
	)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, kindStats{Kind: "cat", Count: 1, AvgAge: 25}, stats[0])
	assert.Equal(t, kindStats{Kind: "dog", Count: 2, AvgAge: 32.5}, stats[1])
}

func TestAggregateSameType(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := tdb.Owners()
	InsertTestOwners(t, coll)

	oldest, err := coll.Aggregate(
		expr.SortStage(expr.Descending(owner.Age())),
		expr.Limit(1),
	).AllowDiskUse().Batch(10).SetMaxTime(5 * time.Second).One(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bob Johnson", oldest.Name)

	// template strings may hold several stages
	young, err := coll.Aggregate(`[{$match: {age: {$lt: 31}}}, {$sort: {age: 1}}]`).All(ctx)
	require.NoError(t, err)
	require.Len(t, young, 2)
	assert.Equal(t, "Jane Smith", young[0].Name)

	_, err = coll.Aggregate(expr.Match(expr.Eq(owner.Name(), "nobody"))).One(ctx)
	assert.True(t, errors.Is(err, kmgo.ErrNotFound))
}

func TestAggregateUnwindAndCount(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := tdb.Owners()
	InsertTestOwners(t, coll)

	counts, err := kmgo.AggregateTo[bson.M](ctx, coll,
		expr.Unwind(owner.Tags()),
		expr.Count("tags"),
	)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.EqualValues(t, 3, counts[0]["tags"])
}

func TestAggregateExplain(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Close(t)
	ctx := context.Background()
	coll := tdb.Owners()
	InsertTestOwners(t, coll)

	var plan bson.M
	err := coll.Aggregate(expr.Match(expr.Eq(owner.Name(), "John Doe"))).Explain(ctx, &plan)
	require.NoError(t, err)
	assert.NotEmpty(t, plan)
}
