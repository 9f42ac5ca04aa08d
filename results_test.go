package kmgo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func TestParseMode(t *testing.T) {
	for name, want := range map[string]Mode{
		"":                   Primary,
		"primary":            Primary,
		"PrimaryPreferred":   PrimaryPreferred,
		"secondary":          Secondary,
		"secondaryPreferred": SecondaryPreferred,
		"nearest":            Nearest,
	} {
		got, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseMode("anywhere")
	assert.Error(t, err)
}

func TestModeReadPref(t *testing.T) {
	assert.Equal(t, readpref.PrimaryMode, Strong.readPref().Mode())
	assert.Equal(t, readpref.SecondaryPreferredMode, Monotonic.readPref().Mode())
	assert.Equal(t, readpref.SecondaryPreferredMode, Eventual.readPref().Mode())
	assert.Equal(t, readpref.NearestMode, Nearest.readPref().Mode())
}

func TestSafeWriteConcern(t *testing.T) {
	var nilSafe *Safe
	assert.Nil(t, nilSafe.writeConcern())

	wc := (&Safe{W: 2, WTimeout: 250}).writeConcern()
	assert.Equal(t, 2, wc.W)
	assert.Equal(t, 250*time.Millisecond, wc.WTimeout)
	assert.Nil(t, wc.Journal)

	wc = (&Safe{W: 2, WMode: "majority", FSync: true}).writeConcern()
	assert.Equal(t, "majority", wc.W)
	require.NotNil(t, wc.Journal)
	assert.True(t, *wc.Journal)
}

func TestSafeCommandDocument(t *testing.T) {
	var nilSafe *Safe
	assert.Empty(t, nilSafe.document())
	assert.Empty(t, (&Safe{}).document())

	assert.Equal(t, bson.D{
		{Key: "w", Value: int32(2)},
		{Key: "wtimeout", Value: int32(250)},
	}, (&Safe{W: 2, WTimeout: 250}).document())

	assert.Equal(t, bson.D{
		{Key: "w", Value: "majority"},
		{Key: "j", Value: true},
	}, (&Safe{W: 2, WMode: "majority", FSync: true}).document())
}

func TestIndexKeysAndOptions(t *testing.T) {
	index := Index{
		Key:         []string{"name", "-age"},
		Unique:      true,
		Name:        "by_name_age",
		ExpireAfter: 90 * time.Second,
		Collation:   &Collation{Locale: "en", Strength: 2},
	}
	assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "age", Value: -1}}, index.keys())

	opts := index.options()
	assert.True(t, *opts.Unique)
	assert.Equal(t, "by_name_age", *opts.Name)
	assert.Equal(t, int32(90), *opts.ExpireAfterSeconds)
	assert.Equal(t, "en", opts.Collation.Locale)
	assert.Nil(t, opts.PartialFilterExpression)
}

func TestVersionAtLeast(t *testing.T) {
	bi := &BuildInfo{VersionArray: []int{4, 4, 2, 0}}
	assert.True(t, bi.VersionAtLeast(4))
	assert.True(t, bi.VersionAtLeast(4, 4, 2))
	assert.True(t, bi.VersionAtLeast(3, 6))
	assert.False(t, bi.VersionAtLeast(4, 4, 3))
	assert.False(t, bi.VersionAtLeast(5))
	assert.False(t, (&BuildInfo{}).VersionAtLeast(1))
}

func TestConvertBulkResult(t *testing.T) {
	assert.Equal(t, &BulkResult{}, convertBulkResult(nil))

	res := convertBulkResult(&mongodrv.BulkWriteResult{
		InsertedCount: 2,
		MatchedCount:  3,
		ModifiedCount: 1,
		DeletedCount:  4,
		UpsertedCount: 1,
		UpsertedIDs:   map[int64]interface{}{5: "x"},
	})
	assert.Equal(t, 7, res.Matched)
	assert.Equal(t, 6, res.Modified)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Upserted)
	assert.Equal(t, 4, res.Deleted)
	assert.Equal(t, "x", res.UpsertedIDs[5])
}

func TestOpContextAppliesDefaultTimeout(t *testing.T) {
	c := &Client{timeout: time.Minute}
	ctx, cancel := c.opContext(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	// an existing deadline wins
	short, cancelShort := context.WithTimeout(context.Background(), time.Second)
	defer cancelShort()
	ctx, cancel = c.opContext(short)
	defer cancel()
	deadline, _ = ctx.Deadline()
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 2*time.Second)
}
