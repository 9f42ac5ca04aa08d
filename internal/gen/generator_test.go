package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newGenerator(t *testing.T, cfg Config) *Generator {
	t.Helper()
	g, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return g
}

func buildDir(t *testing.T, g *Generator, dir string) *File {
	t.Helper()
	pkgs, err := g.Load(context.Background(), dir, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	file, err := g.Build(pkgs[0])
	require.NoError(t, err)
	return file
}

func fieldsByName(s *Struct) map[string]*Field {
	out := make(map[string]*Field, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f
	}
	return out
}

func TestNewRejectsUnknownTag(t *testing.T) {
	_, err := New(Config{Tag: "yaml"}, nil)
	assert.ErrorContains(t, err, `unknown tag "yaml"`)

	g, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "bson", g.cfg.Tag)
	assert.Equal(t, DefaultOutput, g.cfg.Output)
}

func TestExampleModelIsUpToDate(t *testing.T) {
	g := newGenerator(t, Config{})
	file := buildDir(t, g, "../../example/model")
	require.NotNil(t, file)

	src, err := g.Render(file)
	require.NoError(t, err)
	want, err := os.ReadFile("../../example/model/kmgo_fields.go")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(src), "run go generate ./example/model")
}

func TestBuildClassifiesFields(t *testing.T) {
	g := newGenerator(t, Config{})
	file := buildDir(t, g, "testdata/shop")
	require.NotNil(t, file)

	assert.Equal(t, "shop", file.Package)
	assert.Equal(t, "bson", file.Resolver)
	assert.Equal(t, []string{`"reflect"`, `"time"`}, file.StdImports)
	assert.Equal(t, []string{
		`"github.com/kinfkong/kmgo/property"`,
		`"go.mongodb.org/mongo-driver/bson/primitive"`,
	}, file.OtherImports)

	require.Len(t, file.Types, 3)
	assert.Equal(t, "Order", file.Types[0].Name)
	assert.Equal(t, "Customer", file.Types[1].Name)
	assert.Equal(t, "Line", file.Types[2].Name)

	fields := fieldsByName(file.Types[0])
	assert.NotContains(t, fields, "Ignored")
	assert.NotContains(t, fields, "internal")

	tests := []struct {
		field   string
		kind    Kind
		typ     string
		target  string
		docName string
	}{
		{"ID", Scalar, "primitive.ObjectID", "", "_id"},
		{"Customer", Nested, "*Customer", "Customer", "customer"},
		{"Lines", NestedSlice, "[]Line", "Line", "lines"},
		{"Notes", Slice, "[]string", "", "notes"},
		{"Payload", Scalar, "[]byte", "", "payload"},
		{"ByRegion", NestedMap, "map[string]Customer", "Customer", "byRegion"},
		{"Totals", Map, "map[string]float64", "", "totals"},
		{"Path", Scalar, "string", "", "path"},
		{"Placed", Scalar, "time.Time", "", "placed"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := fields[tt.field]
			require.NotNil(t, f)
			assert.Equal(t, tt.kind, f.Kind, f.Kind.String())
			assert.Equal(t, tt.typ, f.Type)
			assert.Equal(t, tt.target, f.Target)
			assert.Equal(t, tt.docName, f.DocName)
		})
	}

	assert.Equal(t, "Path_", fields["Path"].Method)
	assert.Equal(t, "orderPathField", fields["Path"].Var)
	assert.Equal(t, "float64", fields["Totals"].Elem)
	assert.Equal(t, "string", fields["ByRegion"].Key)
}

func TestBuildWithJSONTags(t *testing.T) {
	g := newGenerator(t, Config{Tag: "json"})
	file := buildDir(t, g, "testdata/shop")
	require.NotNil(t, file)

	assert.Equal(t, "json", file.Resolver)
	assert.Equal(t, "placedAt", fieldsByName(file.Types[0])["Placed"].DocName)
	assert.Equal(t, "fullName", fieldsByName(file.Types[1])["Name"].DocName)
	// bson tags still take precedence
	assert.Equal(t, "_id", fieldsByName(file.Types[0])["ID"].DocName)
}

func TestBuildAllExported(t *testing.T) {
	g := newGenerator(t, Config{All: true})
	file := buildDir(t, g, "testdata/shop")
	require.NotNil(t, file)

	var names []string
	for _, s := range file.Types {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Order", "Customer", "Line", "Draft"}, names)
}

func TestBuildRejectsMarkedNonStruct(t *testing.T) {
	g := newGenerator(t, Config{})
	pkgs, err := g.Load(context.Background(), "testdata/bad", ".")
	require.NoError(t, err)

	_, err = g.Build(pkgs[0])
	assert.ErrorContains(t, err, "Names must be a non-generic struct type")
}

func TestRenderShop(t *testing.T) {
	g := newGenerator(t, Config{Tag: "json"})
	src, err := g.Render(buildDir(t, g, "testdata/shop"))
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, "// Code generated by kmgo-gen. DO NOT EDIT.\n\npackage shop\n")
	assert.Contains(t, out, `Field: "Name", Name: "fullName", Resolver: "json"`)
	assert.Contains(t, out, "func (p OrderPath[T]) Path_() property.Prop[T, string] {")
	assert.Contains(t, out, "func (p OrderPath[T]) Lines() property.Col[T, LinePath[T]] {")
	assert.Contains(t, out, "func (p OrderPath[T]) ByRegion() property.Map[T, string, CustomerPath[T]] {")
	assert.Contains(t, out, "func (p OrderPath[T]) Payload() property.Prop[T, []byte] {")
	assert.Contains(t, out, "var Line_ = LinePath[Line]{}")
	assert.NotContains(t, out, "Draft")
}

func TestRenderTypeWithoutFields(t *testing.T) {
	g := newGenerator(t, Config{})
	src, err := g.Render(&File{
		Package:      "empty",
		Resolver:     "bson",
		OtherImports: []string{`"github.com/kinfkong/kmgo/property"`},
		Types:        []*Struct{{Name: "Marker"}},
	})
	require.NoError(t, err)

	want := `// Code generated by kmgo-gen. DO NOT EDIT.

package empty

import (
	"github.com/kinfkong/kmgo/property"
)

// MarkerPath addresses the fields of Marker.
type MarkerPath[T any] struct{ property.Node[T] }

// Marker_ is the root path of Marker documents.
var Marker_ = MarkerPath[Marker]{}
`
	assert.Equal(t, want, string(src))
}

func TestRunWritesChangedFiles(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var dump bytes.Buffer
	out := filepath.Join(t.TempDir(), "gen", "shop_fields.go")
	g, err := New(Config{Output: out, Dump: &dump}, zap.New(core))
	require.NoError(t, err)

	results, err := g.Run(context.Background(), "testdata/shop", ".")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, out, results[0].Path)
	assert.Equal(t, 3, results[0].Types)
	assert.True(t, results[0].Changed)
	assert.Contains(t, dump.String(), "Order")

	src, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(src), "type OrderPath[T any] struct{ property.Node[T] }")

	results, err = g.Run(context.Background(), "testdata/shop", ".")
	require.NoError(t, err)
	assert.False(t, results[0].Changed)

	entries := logs.FilterMessage("generated").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "github.com/kinfkong/kmgo/internal/gen/testdata/shop", entries[0].ContextMap()["package"])
}

func TestRunSkipsPackagesWithoutMappedTypes(t *testing.T) {
	g := newGenerator(t, Config{})
	results, err := g.Run(context.Background(), "../../query", ".")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunRejectsSharedOutputPath(t *testing.T) {
	g := newGenerator(t, Config{Output: filepath.Join(t.TempDir(), "x.go")})
	_, err := g.Run(context.Background(), "testdata", "./shop", "./bad")
	assert.ErrorContains(t, err, "packages matched")
}

func TestWriteSkipsIdenticalContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b.go")

	changed, err := Write(path, []byte("package b\n"))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Write(path, []byte("package b\n"))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = Write(path, []byte("package b // changed\n"))
	require.NoError(t, err)
	assert.True(t, changed)
}
