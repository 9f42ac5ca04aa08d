// generator.go - Descriptor file generation

package gen

import (
	"bytes"
	"context"
	"go/format"
	"io"
	"path/filepath"
	"runtime"
	"sync"
	"text/template"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultOutput is the file written into each package.
const DefaultOutput = "kmgo_fields.go"

// Config controls a Generator.
type Config struct {
	// Tag selects how stored names are computed: "bson" or "json".
	Tag string
	// All generates every exported struct, marked or not.
	All bool
	// Output is a file name placed in each package directory, or a path
	// when a single package is generated.
	Output string
	// Dump receives a dump of each collected File when set.
	Dump io.Writer
}

// Result reports one generated package.
type Result struct {
	PkgPath string
	Path    string
	Types   int
	Changed bool
}

// Generator writes path descriptor files for mapped structs.
type Generator struct {
	cfg Config
	log *zap.Logger

	dumpMu sync.Mutex
}

// New validates cfg and returns a Generator logging to log.
func New(cfg Config, log *zap.Logger) (*Generator, error) {
	if cfg.Tag == "" {
		cfg.Tag = "bson"
	}
	if _, ok := tagParsers[cfg.Tag]; !ok {
		return nil, errors.Errorf("unknown tag %q, want bson or json", cfg.Tag)
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{cfg: cfg, log: log}, nil
}

// Run generates every package matching patterns, relative to dir. Packages
// without mapped structs are skipped.
func (g *Generator) Run(ctx context.Context, dir string, patterns ...string) ([]Result, error) {
	pkgs, err := g.Load(ctx, dir, patterns...)
	if err != nil {
		return nil, err
	}
	if len(pkgs) > 1 && filepath.Base(g.cfg.Output) != g.cfg.Output {
		return nil, errors.Errorf("output %s names a directory but %d packages matched", g.cfg.Output, len(pkgs))
	}

	results := make([]*Result, len(pkgs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, pkg := range pkgs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := g.Build(pkg)
			if err != nil {
				return err
			}
			if file == nil {
				g.log.Debug("no mapped structs", zap.String("package", pkg.PkgPath))
				return nil
			}
			g.dump(file)

			src, err := g.Render(file)
			if err != nil {
				return errors.Wrap(err, pkg.PkgPath)
			}
			path := g.outputPath(file)
			changed, err := Write(path, src)
			if err != nil {
				return err
			}
			g.log.Info("generated",
				zap.String("package", pkg.PkgPath),
				zap.String("path", path),
				zap.Int("types", len(file.Types)),
				zap.Bool("changed", changed))
			results[i] = &Result{PkgPath: pkg.PkgPath, Path: path, Types: len(file.Types), Changed: changed}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (g *Generator) outputPath(f *File) string {
	if filepath.Base(g.cfg.Output) == g.cfg.Output {
		return filepath.Join(f.Dir, g.cfg.Output)
	}
	return g.cfg.Output
}

func (g *Generator) dump(f *File) {
	if g.cfg.Dump == nil {
		return
	}
	g.dumpMu.Lock()
	defer g.dumpMu.Unlock()
	spew.Fdump(g.cfg.Dump, f)
}

// Render returns the formatted source of f.
func (g *Generator) Render(f *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, f); err != nil {
		return nil, errors.Wrap(err, "executing template")
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "formatting generated code:\n%s", buf.String())
	}
	return src, nil
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by kmgo-gen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .StdImports}}
	{{.}}
{{- end}}
{{- if and .StdImports .OtherImports}}
{{end}}
{{- range .OtherImports}}
	{{.}}
{{- end}}
)
{{if .HasFields}}
var (
{{- range $i, $s := .Described}}
{{- if $i}}
{{end}}
{{- range .Fields}}
	{{.Var}} = property.Register(property.Descriptor{Owner: reflect.TypeFor[{{$s.Name}}](), Field: "{{.Name}}", Name: {{printf "%q" .DocName}}, {{if .Inline}}Inline: true, {{end}}Resolver: "{{$.Resolver}}"})
{{- end}}
{{- end}}
)
{{end}}
{{- range .Types}}
{{- $s := .}}
// {{.Path}} addresses the fields of {{.Name}}.
type {{.Path}}[T any] struct{ property.Node[T] }

// {{.Root}} is the root path of {{.Name}} documents.
var {{.Root}} = {{.Path}}[{{.Name}}]{}
{{- range .Fields}}

func (p {{$s.Path}}[T]) {{.Method}}() {{.Result}} {
	return {{.Expr}}
}
{{- end}}
{{end}}`))
