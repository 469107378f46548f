// Package serializer renders a cssast.Tree to CSS text, in expanded or
// compressed style, optionally emitting a source map. It generalizes
// the indent-tracking bytes.Buffer writer from the teacher's
// formatter/formatter.go (writeIndent/formatRule/formatAtRule) from
// LESS's flat ast.Rule tree onto cssast.Tree's arena shape, and adds
// the compressed-output mode and source-map bookkeeping the teacher's
// formatter never needed.
package serializer

import (
	"bytes"

	"github.com/go-sass/sass/cssast"
	internalstrings "github.com/go-sass/sass/internal/strings"
	"github.com/go-sass/sass/sasserror"
)

// Style selects expanded (human-readable) or compressed output.
type Style int

const (
	Expanded Style = iota
	Compressed
)

// Options configures a serialization pass.
type Options struct {
	Style      Style
	IndentSize int // Expanded only; defaults to 2
	SourceMap  bool
}

// Result is a serialized stylesheet plus its optional source map.
type Result struct {
	CSS       string
	SourceMap *SourceMap
}

// Serializer walks a cssast.Tree and renders it to CSS text.
type Serializer struct {
	opts   Options
	buf    bytes.Buffer
	indent int
	line   int
	column int
	sm     *sourceMapBuilder
}

// New creates a Serializer for the given options.
func New(opts Options) *Serializer {
	if opts.IndentSize == 0 {
		opts.IndentSize = 2
	}
	s := &Serializer{opts: opts, line: 1, column: 0}
	if opts.SourceMap {
		s.sm = newSourceMapBuilder()
	}
	return s
}

// Serialize renders the tree rooted at t.Root() to CSS.
func (s *Serializer) Serialize(t *cssast.Tree) Result {
	s.buf.Reset()
	children := t.Children(t.Root())
	for i, c := range children {
		s.writeNode(t, c)
		if s.opts.Style == Expanded && i < len(children)-1 && !t.IsEmpty(c) {
			s.writeByte('\n')
		}
	}
	res := Result{CSS: s.buf.String()}
	if s.sm != nil {
		res.SourceMap = s.sm.build()
	}
	return res
}

func (s *Serializer) writeNode(t *cssast.Tree, id cssast.NodeID) {
	node := t.Node(id)
	switch node.Kind {
	case cssast.KindStyleRule:
		s.writeStyleRule(t, id)
	case cssast.KindAtRule:
		s.writeAtRule(t, id)
	case cssast.KindDeclaration:
		s.writeDeclaration(node)
	case cssast.KindComment:
		s.writeComment(node)
	}
}

func (s *Serializer) writeStyleRule(t *cssast.Tree, id cssast.NodeID) {
	node := t.Node(id)
	if t.IsEmpty(id) {
		return
	}
	s.recordMapping(node.Span)
	s.writeIndent()
	s.writeString(node.Selector)
	s.writeOpenBrace()
	s.writeBody(t, id)
	s.writeCloseBrace()
}

func (s *Serializer) writeAtRule(t *cssast.Tree, id cssast.NodeID) {
	node := t.Node(id)
	s.recordMapping(node.Span)
	s.writeIndent()
	s.writeByte('@')
	s.writeString(node.AtRuleName)
	if node.AtRuleParams != "" {
		s.writeByte(' ')
		s.writeString(node.AtRuleParams)
	}
	if len(t.Children(id)) == 0 {
		s.writeByte(';')
		s.newlineExpanded()
		return
	}
	s.writeOpenBrace()
	s.writeBody(t, id)
	s.writeCloseBrace()
}

func (s *Serializer) writeBody(t *cssast.Tree, id cssast.NodeID) {
	s.indent++
	for _, c := range t.Children(id) {
		child := t.Node(c)
		if child.Kind == cssast.KindStyleRule && t.IsEmpty(c) {
			continue
		}
		s.writeNode(t, c)
	}
	s.indent--
}

func (s *Serializer) writeDeclaration(node *cssast.Node) {
	s.recordMapping(node.Span)
	s.writeIndent()
	s.writeString(node.Property)
	s.writeByte(':')
	if s.opts.Style == Expanded {
		s.writeByte(' ')
	}
	s.writeString(internalstrings.TrimSpace(node.Value))
	s.writeByte(';')
	s.newlineExpanded()
}

func (s *Serializer) writeComment(node *cssast.Node) {
	if !node.CommentLoud {
		return
	}
	s.writeIndent()
	s.writeString("/*")
	s.writeString(node.CommentText)
	s.writeString("*/")
	s.newlineExpanded()
}

func (s *Serializer) writeOpenBrace() {
	if s.opts.Style == Expanded {
		s.writeString(" {\n")
		s.line++
		s.column = 0
	} else {
		s.writeByte('{')
	}
}

func (s *Serializer) writeCloseBrace() {
	s.writeIndent()
	s.writeByte('}')
	s.newlineExpanded()
}

func (s *Serializer) newlineExpanded() {
	if s.opts.Style == Expanded {
		s.writeByte('\n')
	}
}

func (s *Serializer) writeIndent() {
	if s.opts.Style != Expanded {
		return
	}
	for i := 0; i < s.indent*s.opts.IndentSize; i++ {
		s.writeByte(' ')
	}
}

func (s *Serializer) writeByte(b byte) {
	s.buf.WriteByte(b)
	if b == '\n' {
		s.line++
		s.column = 0
	} else {
		s.column++
	}
}

func (s *Serializer) writeString(str string) {
	s.buf.WriteString(str)
	for _, r := range str {
		if r == '\n' {
			s.line++
			s.column = 0
		} else {
			s.column++
		}
	}
}

func (s *Serializer) recordMapping(span sasserror.Span) {
	if s.sm == nil || span.Source == "" {
		return
	}
	s.sm.add(mapping{
		GeneratedLine:   s.line,
		GeneratedColumn: s.column,
		Source:          span.Source,
		SourceLine:      span.Start.Line,
		SourceColumn:    span.Start.Column,
	})
}
