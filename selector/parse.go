package selector

import (
	"fmt"
	"strings"
)

// parser is a small recursive-descent selector parser, in the same
// peek/advance style as parser.Parser in the teacher (see
// parser/parser.go's isMixinCall/parseSelector helpers) but structured
// over runes rather than the teacher's pre-lexed Token stream, since
// selector text arrives as a single interpolation-resolved string by
// the time the evaluator hands it to this package.
type parser struct {
	input []rune
	pos   int
}

// Parse parses a comma-separated selector list.
func Parse(s string) (*List, error) {
	p := &parser{input: []rune(s)}
	list, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("selector: unexpected trailing input %q", string(p.input[p.pos:]))
	}
	return list, nil
}

func (p *parser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func (p *parser) parseList() (*List, error) {
	list := &List{}
	for {
		p.skipSpace()
		c, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		list.Complex = append(list.Complex, c)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return list, nil
}

func (p *parser) parseComplex() (*Complex, error) {
	complex := &Complex{}
	p.skipSpace()
	if comb := p.tryCombinator(); comb != Descendant {
		complex.LeadingCombinator = comb
		p.skipSpace()
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) || p.peek() == ',' {
			break
		}
		compound, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		if compound != nil {
			complex.Components = append(complex.Components, Component{Compound: compound})
		}
		sawSpace := p.skipSpaceReport()
		if p.pos >= len(p.input) || p.peek() == ',' {
			break
		}
		if comb := p.tryCombinator(); comb != Descendant {
			complex.Components = append(complex.Components, Component{Combinator: comb})
			p.skipSpace()
		} else if sawSpace {
			complex.Components = append(complex.Components, Component{Combinator: Descendant})
		} else {
			break
		}
	}
	return complex, nil
}

func (p *parser) skipSpaceReport() bool {
	start := p.pos
	p.skipSpace()
	return p.pos > start
}

func (p *parser) tryCombinator() Combinator {
	switch p.peek() {
	case '>':
		p.pos++
		return Child
	case '~':
		p.pos++
		return Sibling
	case '+':
		p.pos++
		return NextSibling
	default:
		return Descendant
	}
}

func (p *parser) parseCompound() (*Compound, error) {
	c := &Compound{}
	for {
		s, ok, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		c.Simple = append(c.Simple, s)
	}
	if len(c.Simple) == 0 {
		return nil, fmt.Errorf("selector: expected a simple selector near %q", string(p.input[p.pos:]))
	}
	return c, nil
}

func (p *parser) parseSimple() (Simple, bool, error) {
	switch p.peek() {
	case '*':
		p.pos++
		return Simple{Kind: KindUniversal}, true, nil
	case '&':
		p.pos++
		return Simple{Kind: KindParent}, true, nil
	case '.':
		p.pos++
		return Simple{Kind: KindClass, Name: p.parseIdent()}, true, nil
	case '#':
		p.pos++
		return Simple{Kind: KindID, Name: p.parseIdent()}, true, nil
	case '%':
		p.pos++
		return Simple{Kind: KindPlaceholder, Name: p.parseIdent()}, true, nil
	case '[':
		return p.parseAttribute()
	case ':':
		return p.parsePseudo()
	default:
		if isIdentStart(p.peek()) {
			return Simple{Kind: KindType, Name: p.parseIdent()}, true, nil
		}
		return Simple{}, false, nil
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '-' || r == '\\' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (p *parser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
		p.pos++
	}
	return string(p.input[start:p.pos])
}

func (p *parser) parseAttribute() (Simple, bool, error) {
	p.pos++ // consume '['
	p.skipSpace()
	name := p.parseIdent()
	p.skipSpace()
	s := Simple{Kind: KindAttribute, Name: name}
	if p.peek() != ']' {
		op := p.parseAttrOp()
		s.AttrOp = op
		p.skipSpace()
		s.AttrValue = p.parseAttrValue()
		p.skipSpace()
		if p.peek() == 'i' || p.peek() == 'I' {
			s.AttrCI = true
			p.pos++
			p.skipSpace()
		}
	}
	if p.peek() != ']' {
		return Simple{}, false, fmt.Errorf("selector: expected ']'")
	}
	p.pos++
	return s, true, nil
}

func (p *parser) parseAttrOp() string {
	start := p.pos
	for p.pos < len(p.input) && strings.ContainsRune("~|^$*=", p.input[p.pos]) {
		p.pos++
	}
	return string(p.input[start:p.pos])
}

func (p *parser) parseAttrValue() string {
	if p.peek() == '"' || p.peek() == '\'' {
		quote := p.peek()
		p.pos++
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != quote {
			p.pos++
		}
		val := string(p.input[start:p.pos])
		if p.pos < len(p.input) {
			p.pos++
		}
		return val
	}
	return p.parseIdent()
}

func (p *parser) parsePseudo() (Simple, bool, error) {
	p.pos++ // first ':'
	elem := false
	if p.peek() == ':' {
		elem = true
		p.pos++
	}
	name := p.parseIdent()
	s := Simple{Kind: KindPseudo, Name: name, PseudoElement: elem}
	if p.peek() == '(' {
		p.pos++
		if isSelectorPseudo(name) {
			inner, err := p.parseList()
			if err != nil {
				return Simple{}, false, err
			}
			s.PseudoArgList = inner
		} else {
			start := p.pos
			depth := 1
			for p.pos < len(p.input) && depth > 0 {
				switch p.input[p.pos] {
				case '(':
					depth++
				case ')':
					depth--
					if depth == 0 {
						s.PseudoArgRaw = string(p.input[start:p.pos])
					}
				}
				if depth > 0 {
					p.pos++
				}
			}
		}
		p.skipSpace()
		if p.peek() != ')' {
			return Simple{}, false, fmt.Errorf("selector: expected ')' in :%s()", name)
		}
		p.pos++
	}
	return s, true, nil
}

func isSelectorPseudo(name string) bool {
	switch strings.ToLower(name) {
	case "not", "is", "matches", "has", "where":
		return true
	default:
		return false
	}
}
