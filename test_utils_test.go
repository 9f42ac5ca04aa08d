package kmgo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinfkong/kmgo"
	"github.com/kinfkong/kmgo/example/model"
)

// TestDB holds the test client and a database unique to one test.
type TestDB struct {
	Client *kmgo.Client
	DBName string
}

// NewTestDB connects to MONGODB_TEST_URL. Tests are skipped when it is unset.
func NewTestDB(t *testing.T, mapping ...string) *TestDB {
	t.Helper()
	mongoURL := os.Getenv("MONGODB_TEST_URL")
	if mongoURL == "" || testing.Short() {
		t.Skip("MONGODB_TEST_URL not set")
	}

	cfg := kmgo.DefaultConfig()
	cfg.URI = mongoURL
	cfg.Timeout = "30s"
	cfg.Logging.Level = "warn"
	if len(mapping) > 0 {
		cfg.Mapping = mapping[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := kmgo.Connect(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test MongoDB")

	return &TestDB{
		Client: client,
		DBName: "kmgo_test_" + primitive.NewObjectID().Hex(),
	}
}

// Close drops the test database and disconnects.
func (tdb *TestDB) Close(t *testing.T) {
	if tdb.Client == nil {
		return
	}
	if err := tdb.DB().Drop(context.Background()); err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
	tdb.Client.Close()
}

// DB returns the test database.
func (tdb *TestDB) DB() *kmgo.Database {
	return tdb.Client.DB(tdb.DBName)
}

// Owners returns the owner collection of the test database.
func (tdb *TestDB) Owners() *kmgo.Collection[model.Owner] {
	return kmgo.GetCollection[model.Owner](tdb.DB())
}

// SampleOwners returns sample owners without ids.
func SampleOwners() []model.Owner {
	now := time.Now().Truncate(time.Millisecond)
	return []model.Owner{
		{
			Name:  "John Doe",
			Email: "john@example.com",
			Age:   30,
			Pet:   model.Pet{Name: "Rex", Kind: "dog", BirthYear: 2018},
			Tags:  []string{"new", "featured"},
			Audit: model.Audit{CreatedAt: now},
		},
		{
			Name:  "Jane Smith",
			Email: "jane@example.com",
			Age:   25,
			Pet:   model.Pet{Name: "Tom", Kind: "cat", BirthYear: 2020},
			Pets:  []model.Pet{{Name: "Kit", Kind: "cat"}},
			Tags:  []string{"bestseller"},
			Audit: model.Audit{CreatedAt: now.Add(-24 * time.Hour)},
		},
		{
			Name:    "Bob Johnson",
			Email:   "bob@example.com",
			Age:     35,
			Pet:     model.Pet{Name: "Fido", Kind: "dog", BirthYear: 2015},
			Address: &model.Address{Street: "Main St", City: "Springfield"},
			Audit:   model.Audit{CreatedAt: now.Add(-48 * time.Hour)},
		},
	}
}

// InsertTestOwners inserts the sample owners and returns them with their ids.
func InsertTestOwners(t *testing.T, c *kmgo.Collection[model.Owner]) []model.Owner {
	t.Helper()
	owners := SampleOwners()
	require.NoError(t, c.InsertMany(context.Background(), owners), "Failed to insert test data")
	return owners
}
