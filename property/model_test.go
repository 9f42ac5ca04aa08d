package property_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinfkong/kmgo/example/model"
	"github.com/kinfkong/kmgo/property"
)

func TestGeneratedPaths(t *testing.T) {
	tests := []struct {
		name string
		path property.Path
		want string
	}{
		{"nested struct", model.Owner_.Pet().Name(), "pet.name"},
		{"tag override", model.Owner_.Pet().Kind(), "pet.species"},
		{"collection element", model.Owner_.Pets().Elem().Name(), "pets.name"},
		{"collection itself", model.Owner_.Pets(), "pets"},
		{"positional", model.Owner_.Pets().PosOp().Name(), "pets.$.name"},
		{"all positional", model.Owner_.Pets().AllPosOp().BirthYear(), "pets.$[].birthyear"},
		{"filtered positional", model.Owner_.Pets().FilteredPosOp("p").Kind(), "pets.$[p].species"},
		{"index", model.Owner_.Pets().Pos(0).Name(), "pets.0.name"},
		{"scalar collection", model.Owner_.Tags().Elem(), "tags"},
		{"map key", model.Owner_.Scores().Key("math"), "scores.math"},
		{"pointer struct", model.Owner_.Address().City(), "address.city"},
		{"inline", model.Owner_.Audit().CreatedAt(), "createdAt"},
		{"id", model.Owner_.ID(), "_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.path.PathWith(property.BSON))
		})
	}
}

func TestGeneratedMatchesReflective(t *testing.T) {
	pets := property.Of[model.Owner, []model.Pet]("Pets")
	reflective := property.Div[string](pets, "Name")

	assert.Equal(t, model.Owner_.Pets().Elem().Name().Path(), reflective.Path())
}

func TestResolverChoosesNames(t *testing.T) {
	email := model.Owner_.Email()
	assert.Equal(t, "email", email.PathWith(property.BSON))
	assert.Equal(t, "mail", email.PathWith(property.JSON))

	// the bson tag wins over the json tag under both resolvers
	nick := model.Owner_.Nick()
	assert.Equal(t, "nickname", nick.PathWith(property.BSON))
	assert.Equal(t, "nickname", nick.PathWith(property.JSON))
}

func TestGeneratedPathsAreCached(t *testing.T) {
	p := model.Owner_.Address().Street()
	first := p.Path()
	size := property.CacheLen()

	require.Equal(t, first, model.Owner_.Address().Street().Path())
	assert.Equal(t, size, property.CacheLen())
}

func TestDescriptorsAreRegistered(t *testing.T) {
	d, ok := property.Lookup(reflect.TypeFor[model.Pet](), "Kind")
	require.True(t, ok)
	assert.Equal(t, "species", d.Name)
	assert.Equal(t, "github.com/kinfkong/kmgo/example/model.Pet.Kind", d.Key())
}

func TestDefaultResolver(t *testing.T) {
	t.Cleanup(func() { property.SetDefault(nil) })

	property.SetDefault(property.JSON)
	assert.Equal(t, "mail", model.Owner_.Email().String())

	property.SetDefault(nil)
	assert.Equal(t, "email", model.Owner_.Email().String())
}
