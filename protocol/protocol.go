// Package protocol defines the message types an embedded-host
// wrapper (a long-running `sass --embedded` process talking
// length-delimited frames to a parent build tool, the same shape
// `bep/godartsass` wraps around dart-sass's own embedded protocol)
// would exchange. It is value types only: no framing, no transport,
// no subprocess -- that stays out of scope, this package exists so a
// future embedded host has a typed surface to compile against.
package protocol

import "github.com/google/uuid"

// CompilationID correlates a CompileRequest with its CompileResponse
// across a connection carrying many in-flight compiles at once.
type CompilationID string

// NewCompilationID mints a fresh correlation id.
func NewCompilationID() CompilationID {
	return CompilationID(uuid.New().String())
}

// OutputStyle mirrors serializer.Style across the wire boundary so
// this package has no import-time dependency on serializer.
type OutputStyle int

const (
	OutputExpanded OutputStyle = iota
	OutputCompressed
)

// CompileRequest asks the embedded host to compile one entrypoint.
type CompileRequest struct {
	CompilationID CompilationID
	Path          string
	Source        string // set instead of Path for a string-based compile
	Style         OutputStyle
	SourceMap     bool
	LoadPaths     []string
}

// CompileResponse carries back either a successful compile's output
// or the diagnostics from a failed one.
type CompileResponse struct {
	CompilationID CompilationID
	CSS           string
	SourceMap     string
	LoadedURLs    []string
	Errors        []Diagnostic
}

// Diagnostic is a wire-friendly rendering of a sasserror.Error.
type Diagnostic struct {
	Kind    string
	Message string
	Source  string
	Line    int
	Column  int
}
