package property

import (
	"reflect"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"gopkg.in/check.v1"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func Test(t *testing.T) { check.TestingT(t) }

type PathSuite struct{}

var _ = check.Suite(&PathSuite{})

type pathOwner struct {
	ID     string            `bson:"_id"`
	Pet    pathPet           `bson:"pet"`
	Pets   []pathPet         `bson:"pets"`
	Best   *pathPet          `bson:"best,omitempty"`
	Nick   string            `json:"nick"`
	Notes  map[string]string `bson:"notes"`
	Hidden string            `bson:"-"`
	Stamp  pathStamp         `bson:",inline"`
}

type pathPet struct {
	Name  string `bson:"name"`
	Owner *pathOwner
	Toys  []pathToy `bson:"toys"`
}

type pathToy struct {
	Label string `bson:"label"`
}

type pathStamp struct {
	Version int `bson:"v"`
}

func (s *PathSuite) TestChainJoinsWithDots(c *check.C) {
	pet := Of[pathOwner, pathPet]("Pet")
	name := Div[string](pet, "Name")
	c.Assert(name.Path(), check.Equals, "pet.name")

	toys := Div[[]pathToy](pet, "Toys")
	label := Div[string](toys, "Label")
	c.Assert(label.Path(), check.Equals, pet.Path()+"."+"toys"+"."+"label")
}

func (s *PathSuite) TestRootHasNoLeadingDot(c *check.C) {
	c.Assert(Of[pathOwner, pathPet]("Pet").Path(), check.Equals, "pet")
	c.Assert(Node[pathOwner]{}.Path(), check.Equals, "")
	c.Assert(Node[pathOwner]{}.IsRoot(), check.Equals, true)
}

func (s *PathSuite) TestTagOverridesDeclaredName(c *check.C) {
	c.Assert(Of[pathOwner, string]("ID").Path(), check.Equals, "_id")
	// declared name is lowercased when no tag applies
	c.Assert(Div[*pathOwner](Of[pathOwner, pathPet]("Pet"), "Owner").Path(), check.Equals, "pet.owner")
	c.Assert(Of[pathOwner, string]("Nick").PathWith(BSON), check.Equals, "nick")
	c.Assert(Of[pathOwner, string]("Nick").PathWith(JSON), check.Equals, "nick")
}

func (s *PathSuite) TestCollectionPathIsElementPath(c *check.C) {
	pets := Of[pathOwner, []pathPet]("Pets")
	c.Assert(Div[string](pets, "Name").Path(), check.Equals, "pets.name")
	c.Assert(Div[string](Elem(pets), "Name").Path(), check.Equals, "pets.name")
	c.Assert(Div[string](Of[pathOwner, pathPet]("Best"), "Name").Path(), check.Equals, "best.name")
}

func (s *PathSuite) TestPositionalOperators(c *check.C) {
	pets := Of[pathOwner, []pathPet]("Pets")
	c.Assert(Div[string](PosOp(pets), "Name").Path(), check.Equals, "pets.$.name")
	c.Assert(Div[string](AllPosOp(pets), "Name").Path(), check.Equals, "pets.$[].name")
	c.Assert(Div[string](FilteredPosOp(pets, "elem"), "Name").Path(), check.Equals, "pets.$[elem].name")
	c.Assert(Div[string](Pos(pets, 2), "Name").Path(), check.Equals, "pets.2.name")
}

func (s *PathSuite) TestMapKeyIsExplicit(c *check.C) {
	notes := Of[pathOwner, map[string]string]("Notes")
	c.Assert(notes.Path(), check.Equals, "notes")
	c.Assert(Key(notes, "today").Path(), check.Equals, "notes.today")
}

func (s *PathSuite) TestInlineAddsNoSegment(c *check.C) {
	stamp := Of[pathOwner, pathStamp]("Stamp")
	c.Assert(Div[int](stamp, "Version").Path(), check.Equals, "v")
}

func (s *PathSuite) TestCustomSegments(c *check.C) {
	pet := Of[pathOwner, pathPet]("Pet")
	c.Assert(Custom[string](pet.Node, "nickname").Path(), check.Equals, "pet.nickname")
	c.Assert(Custom[string](Node[pathOwner]{}, "score").Path(), check.Equals, "score")
	c.Assert(Custom[string](pet.Node, "x").Dynamic(), check.Equals, true)
	c.Assert(pet.Dynamic(), check.Equals, false)
}

func (s *PathSuite) TestLookupFailuresPanic(c *check.C) {
	c.Assert(func() { Of[pathOwner, string]("Missing") }, check.PanicMatches, `property: .* has no field Missing`)
	c.Assert(func() { Of[pathOwner, int]("Nick") }, check.PanicMatches, `property: .* holds string, not int`)
	c.Assert(func() { Of[pathOwner, string]("Hidden").Path() }, check.PanicMatches, `property: .* is not mapped by bson`)
	c.Assert(func() { Div[string](Of[pathOwner, string]("Nick"), "Name") }, check.PanicMatches, `property: cannot descend .*`)
}

func (s *PathSuite) TestFieldCacheIsIdempotent(c *check.C) {
	build := func() Prop[pathOwner, string] {
		return Div[string](Of[pathOwner, []pathPet]("Pets"), "Name")
	}
	first := build().Path()
	size := CacheLen()

	second := build().Path()
	c.Assert(second, check.Equals, first)
	c.Assert(CacheLen(), check.Equals, size)
}

func (s *PathSuite) TestDynamicStepsAreNeverCached(c *check.C) {
	root := Node[pathOwner]{}
	before := CacheLen()
	for i := 0; i < 5; i++ {
		p := Custom[string](root, "free").Custom("form")
		c.Assert(p.Path(), check.Equals, "free.form")
	}
	c.Assert(CacheLen(), check.Equals, before)
}

func (s *PathSuite) TestCacheIsKeyedByResolver(c *check.C) {
	nick := Of[pathOwner, string]("Nick")
	nick.PathWith(BSON)
	size := CacheLen()
	nick.PathWith(JSON)
	c.Assert(CacheLen() >= size, check.Equals, true)
	nick.PathWith(JSON)
	after := CacheLen()
	nick.PathWith(JSON)
	c.Assert(CacheLen(), check.Equals, after)
}

func (s *PathSuite) TestRegisteredNameSkipsReflection(c *check.C) {
	type generated struct {
		Value int `bson:"reflected"`
	}
	d := Register(Descriptor{Owner: reflect.TypeOf(generated{}), Field: "Value", Name: "stored", Resolver: "bson"})
	c.Assert(Step[int](Node[generated]{}, d).Path(), check.Equals, "stored")

	again := DescriptorOf(reflect.TypeOf(&generated{}), "Value")
	c.Assert(again, check.Equals, d)
}

func (s *PathSuite) TestConcurrentResolution(c *check.C) {
	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Div[string](Of[pathOwner, pathPet]("Pet"), "Name").Path()
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		c.Assert(r, check.Equals, "pet.name")
	}
}

func (s *PathSuite) TestJoin(c *check.C) {
	pet := Of[pathOwner, pathPet]("Pet")
	c.Assert(Join(BSON, pet, Node[pathOwner]{}, Of[pathOwner, string]("ID")), check.Equals, "pet._id")
}

func firstLocalPath() string {
	type local struct {
		V int `bson:"first"`
	}
	return Of[local, int]("V").Path()
}

func secondLocalPath() string {
	type local struct {
		V int `bson:"second"`
	}
	return Of[local, int]("V").Path()
}

func (s *PathSuite) TestTypesPrintingAlikeKeepTheirOwnNames(c *check.C) {
	c.Assert(firstLocalPath(), check.Equals, "first")
	c.Assert(secondLocalPath(), check.Equals, "second")
	c.Assert(firstLocalPath(), check.Equals, "first")
}
