package parser

import (
	"strings"

	"github.com/go-sass/sass/ast"
)

// ParseIndented parses Sass's indented syntax (.sass files): no braces
// or semicolons, block nesting expressed purely through indentation.
// Rather than duplicating the SCSS grammar with an indentation-aware
// variant, this desugars indented source into brace/semicolon SCSS
// text -- inserting "{"/"}" at indent changes and ";" at the end of
// each leaf line -- and hands the result to ParseSCSS, the same
// "normalize surface syntax, share one grammar" approach dart-sass
// takes internally between its two front ends.
func ParseIndented(source, name string) (*ast.Stylesheet, error) {
	scss := desugarIndented(source)
	return ParseSCSS(scss, name)
}

type indentedLine struct {
	indent int
	text   string
}

// desugarIndented converts indented-syntax source to equivalent
// brace/semicolon SCSS text.
func desugarIndented(source string) string {
	raw := strings.Split(source, "\n")
	lines := make([]indentedLine, 0, len(raw))
	for _, l := range raw {
		trimmed := strings.TrimRight(l, " \t\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		indent := 0
		for indent < len(trimmed) && (trimmed[indent] == ' ' || trimmed[indent] == '\t') {
			indent++
		}
		lines = append(lines, indentedLine{indent: indent, text: strings.TrimSpace(trimmed)})
	}

	var out strings.Builder
	var stack []int
	for i, line := range lines {
		for len(stack) > 0 && line.indent < stack[len(stack)-1] {
			out.WriteString("}\n")
			stack = stack[:len(stack)-1]
		}

		text := strings.TrimSuffix(line.text, ";")
		opensBlock := i+1 < len(lines) && lines[i+1].indent > line.indent

		switch {
		case strings.HasPrefix(text, "//"):
			out.WriteString(text)
			out.WriteByte('\n')
		case opensBlock:
			out.WriteString(text)
			out.WriteString(" {\n")
			stack = append(stack, line.indent)
		case isBlocklessDirective(text):
			out.WriteString(text)
			out.WriteByte('\n')
		default:
			out.WriteString(text)
			out.WriteString(";\n")
		}
	}
	for range stack {
		out.WriteString("}\n")
	}
	return out.String()
}

// isBlocklessDirective reports whether text is a line of a `/* */`
// comment (it starts with "/*" or ends with "*/") and so shouldn't
// have a ";" appended even though it doesn't open a nested block.
// Every other non-block line, at-rules included, gets a ";".
func isBlocklessDirective(text string) bool {
	return strings.HasPrefix(text, "/*") || strings.HasSuffix(text, "*/")
}
