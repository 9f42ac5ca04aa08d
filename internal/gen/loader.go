// loader.go - Package loading and mapped struct discovery

package gen

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"golang.org/x/tools/go/packages"
)

// Directive marks a struct type for generation in its doc comment.
const Directive = "kmgo:data"

const propertyPkg = "github.com/kinfkong/kmgo/property"

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// tagParsers resolve stored names the same way the codecs do.
var tagParsers = map[string]bsoncodec.StructTagParser{
	"bson": bsoncodec.DefaultStructTagParser,
	"json": bsoncodec.JSONFallbackStructTagParser,
}

// Load loads the packages matching patterns, relative to dir. Previously
// generated output files are read as empty so stale descriptors never break
// type checking.
func (g *Generator) Load(ctx context.Context, dir string, patterns ...string) ([]*packages.Package, error) {
	output := filepath.Base(g.cfg.Output)
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    loadMode,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			mode := parser.AllErrors | parser.ParseComments
			if filepath.Base(filename) == output {
				mode = parser.PackageClauseOnly
			}
			return parser.ParseFile(fset, filename, src, mode)
		},
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load packages")
	}
	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e.Error())
		}
	}
	if len(errs) > 0 {
		return nil, errors.Errorf("package errors: %s", strings.Join(errs, "; "))
	}
	return pkgs, nil
}

// Build collects the mapped structs of pkg. It returns nil when pkg has none.
func (g *Generator) Build(pkg *packages.Package) (*File, error) {
	if len(pkg.GoFiles) == 0 {
		return nil, errors.Errorf("%s has no Go files", pkg.PkgPath)
	}
	specs, err := g.selectTypes(pkg)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, nil
	}

	b := &builder{
		pkg:      pkg,
		parser:   tagParsers[g.cfg.Tag],
		selected: make(map[*types.TypeName]bool, len(specs)),
		imports:  map[string]string{"reflect": "reflect", propertyPkg: "property"},
		names:    map[string]string{"reflect": "reflect", "property": propertyPkg},
		vars:     map[string]bool{},
	}
	for _, obj := range specs {
		b.selected[obj] = true
	}

	file := &File{
		Package:  pkg.Name,
		PkgPath:  pkg.PkgPath,
		Dir:      filepath.Dir(pkg.GoFiles[0]),
		Resolver: g.cfg.Tag,
	}
	for _, obj := range specs {
		s, err := b.structOf(obj)
		if err != nil {
			return nil, err
		}
		file.Types = append(file.Types, s)
	}
	if !file.HasFields() {
		delete(b.imports, "reflect")
	}

	paths := make([]string, 0, len(b.imports))
	for path := range b.imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		spec := importSpec(b.imports[path], path)
		if isStd(path) {
			file.StdImports = append(file.StdImports, spec)
		} else {
			file.OtherImports = append(file.OtherImports, spec)
		}
	}
	return file, nil
}

// selectTypes returns the struct types to generate, in declaration order.
func (g *Generator) selectTypes(pkg *packages.Package) ([]*types.TypeName, error) {
	var out []*types.TypeName
	for _, f := range pkg.Syntax {
		if ast.IsGenerated(f) {
			continue
		}
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				marked := hasDirective(doc)
				if !marked && !(g.cfg.All && ts.Name.IsExported()) {
					continue
				}

				obj, _ := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
				if obj == nil || ts.Assign.IsValid() {
					if marked {
						return nil, errors.Errorf("%s: %s is an alias", pkg.Fset.Position(ts.Pos()), ts.Name.Name)
					}
					continue
				}
				named, _ := obj.Type().(*types.Named)
				_, isStruct := obj.Type().Underlying().(*types.Struct)
				generic := named != nil && named.TypeParams().Len() > 0
				if !isStruct || generic {
					if marked {
						return nil, errors.Errorf("%s: %s must be a non-generic struct type to carry %s",
							pkg.Fset.Position(ts.Pos()), ts.Name.Name, Directive)
					}
					continue
				}
				out = append(out, obj)
			}
		}
	}
	return out, nil
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		if text == Directive || strings.HasPrefix(text, Directive+" ") {
			return true
		}
	}
	return false
}

type builder struct {
	pkg      *packages.Package
	parser   bsoncodec.StructTagParser
	selected map[*types.TypeName]bool
	imports  map[string]string // path -> name
	names    map[string]string // name -> path
	vars     map[string]bool
}

func (b *builder) structOf(obj *types.TypeName) (*Struct, error) {
	s := &Struct{Name: obj.Name()}
	for _, name := range []string{s.Path(), s.Root()} {
		if b.pkg.Types.Scope().Lookup(name) != nil {
			return nil, errors.Errorf("%s: %s is already declared", b.pkg.PkgPath, name)
		}
	}

	st := obj.Type().Underlying().(*types.Struct)
	for i := 0; i < st.NumFields(); i++ {
		v := st.Field(i)
		if !v.Exported() {
			continue
		}
		tags, err := b.parser.ParseStructTags(reflect.StructField{
			Name: v.Name(),
			Tag:  reflect.StructTag(st.Tag(i)),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", s.Name, v.Name())
		}
		if tags.Skip {
			continue
		}

		f := &Field{
			Name:    v.Name(),
			Method:  methodName(v.Name()),
			Var:     b.variable(s.Name, v.Name()),
			DocName: tags.Name,
			Inline:  tags.Inline,
		}
		b.classify(f, v.Type())
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func (b *builder) variable(owner, field string) string {
	name := descriptorVar(owner, field)
	for i := 2; b.vars[name] || b.pkg.Types.Scope().Lookup(name) != nil; i++ {
		name = fmt.Sprintf("%s%d", descriptorVar(owner, field), i)
	}
	b.vars[name] = true
	return name
}

func (b *builder) classify(f *Field, t types.Type) {
	f.Type = b.typeString(t)
	if target, ok := b.mapped(t); ok {
		f.Kind, f.Target = Nested, target
		return
	}

	var elem types.Type
	switch u := types.Unalias(t).(type) {
	case *types.Slice:
		elem = u.Elem()
	case *types.Array:
		elem = u.Elem()
	case *types.Map:
		f.Key = b.typeString(u.Key())
		f.Elem = b.typeString(u.Elem())
		if target, ok := b.mapped(u.Elem()); ok {
			f.Kind, f.Target = NestedMap, target
		} else {
			f.Kind = Map
		}
		return
	default:
		f.Kind = Scalar
		return
	}

	if basic, ok := elem.(*types.Basic); ok && basic.Kind() == types.Byte {
		// binary data
		f.Kind = Scalar
		return
	}
	f.Elem = b.typeString(elem)
	if target, ok := b.mapped(elem); ok {
		f.Kind, f.Target = NestedSlice, target
	} else {
		f.Kind = Slice
	}
}

// mapped reports the selected struct t holds, looking through one pointer.
func (b *builder) mapped(t types.Type) (string, bool) {
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || !b.selected[named.Obj()] {
		return "", false
	}
	return named.Obj().Name(), true
}

func (b *builder) typeString(t types.Type) string {
	return types.TypeString(t, b.qualify)
}

// qualify names other packages, recording their imports.
func (b *builder) qualify(p *types.Package) string {
	if p == b.pkg.Types {
		return ""
	}
	if name, ok := b.imports[p.Path()]; ok {
		return name
	}
	name := p.Name()
	for i := 2; b.names[name] != ""; i++ {
		name = fmt.Sprintf("%s%d", p.Name(), i)
	}
	b.imports[p.Path()] = name
	b.names[name] = p.Path()
	return name
}
