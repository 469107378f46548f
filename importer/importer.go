// Package importer resolves @use/@forward/@import URLs against an
// fs.FS, the same filesystem-backed load strategy the teacher's
// importer.Importer uses, generalized from LESS's flat "just try the
// literal path" lookup into Sass's partial/extension/index precedence
// rules (a stylesheet named "_grid.scss" is loaded as "grid"; a bare
// directory load falls back to its "_index" partial).
package importer

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/go-sass/sass/ast"
	"github.com/go-sass/sass/parser"
)

// Importer resolves Sass import URLs against a filesystem.
type Importer struct {
	fsys fs.FS
}

// New creates an Importer that resolves URLs against fsys.
func New(fsys fs.FS) *Importer {
	return &Importer{fsys: fsys}
}

// Resolved is one successfully loaded and parsed stylesheet.
type Resolved struct {
	CanonicalURL string // the resolved file path, used as a module registry key
	Stylesheet   *ast.Stylesheet
	Syntax       Syntax
}

// Syntax identifies which surface syntax a resolved file was parsed as.
type Syntax int

const (
	SyntaxSCSS Syntax = iota
	SyntaxIndented
	SyntaxCSS
)

// Load resolves url (as written in an @use/@forward/@import) relative
// to fromPath (the importing file's own resolved path, "" for the
// entry stylesheet) and parses the result.
func (imp *Importer) Load(url, fromPath string) (*Resolved, error) {
	candidate, syntax, err := imp.resolve(url, fromPath)
	if err != nil {
		return nil, err
	}
	content, err := fs.ReadFile(imp.fsys, candidate)
	if err != nil {
		return nil, fmt.Errorf("import not found: %q (resolved as %q): %w", url, candidate, err)
	}
	sheet, err := parseBySyntax(string(content), candidate, syntax)
	if err != nil {
		return nil, err
	}
	return &Resolved{CanonicalURL: candidate, Stylesheet: sheet, Syntax: syntax}, nil
}

func parseBySyntax(source, name string, syntax Syntax) (*ast.Stylesheet, error) {
	switch syntax {
	case SyntaxCSS:
		return parser.ParseCSS(source, name)
	case SyntaxIndented:
		return parser.ParseIndented(source, name)
	default:
		return parser.ParseSCSS(source, name)
	}
}

// resolve applies Sass's load-path precedence: for a URL with no
// extension, try (in order) each of .scss/.sass/.css in both partial
// (leading underscore) and plain form, and finally an index/_index
// partial inside a same-named directory. A URL that already names an
// extension is tried as-is (plus its partial form).
func (imp *Importer) resolve(url, fromPath string) (string, Syntax, error) {
	dir := "."
	if fromPath != "" {
		dir = path.Dir(fromPath)
	}
	clean := strings.TrimPrefix(url, "./")
	base := path.Join(dir, clean)

	if candidate, syntax, ok := imp.tryCandidates(base); ok {
		return candidate, syntax, nil
	}
	// Directory-style load: `@use "foo"` resolving to `foo/_index.scss`.
	if candidate, syntax, ok := imp.tryCandidates(path.Join(base, "index")); ok {
		return candidate, syntax, nil
	}
	return "", 0, fmt.Errorf("import not found: %q (searched from %q)", url, dir)
}

func (imp *Importer) tryCandidates(base string) (string, Syntax, bool) {
	for _, candidate := range candidatePaths(base) {
		syntax, ok := syntaxOf(candidate)
		if !ok {
			continue
		}
		if imp.exists(candidate) {
			return candidate, syntax, true
		}
	}
	return "", 0, false
}

func (imp *Importer) exists(p string) bool {
	_, err := fs.Stat(imp.fsys, p)
	return err == nil
}

// candidatePaths enumerates every file name Sass's load algorithm
// would try for path base: if base already names a recognized
// extension, only its plain and partial form; otherwise every
// extension, partial preferred over plain (a directory containing both
// a plain and partial file for the same name is itself an ambiguity
// error in real Sass -- this compiler simply prefers the partial).
func candidatePaths(base string) []string {
	if _, ok := syntaxOf(base); ok {
		dir, file := path.Split(base)
		return []string{path.Join(dir, "_"+file), base}
	}
	dir, file := path.Split(base)
	var out []string
	for _, ext := range []string{".scss", ".sass", ".css"} {
		out = append(out, path.Join(dir, "_"+file+ext))
		out = append(out, base+ext)
	}
	return out
}

func syntaxOf(p string) (Syntax, bool) {
	switch {
	case strings.HasSuffix(p, ".scss"):
		return SyntaxSCSS, true
	case strings.HasSuffix(p, ".sass"):
		return SyntaxIndented, true
	case strings.HasSuffix(p, ".css"):
		return SyntaxCSS, true
	default:
		return 0, false
	}
}
