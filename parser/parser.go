package parser

import (
	"strconv"
	"strings"

	"github.com/go-sass/sass/ast"
	"github.com/go-sass/sass/sasserror"
)

// Parser is a recursive-descent parser over a pre-lexed Token slice,
// in the same peek/advance/match/check style as the teacher's
// parser.Parser (parser/parser.go), generalized from LESS's grammar to
// SCSS's (real nested block control-flow, $variables, module
// directives, richer expression grammar).
type Parser struct {
	tokens []Token
	pos    int
	source string
}

// ParseSCSS parses SCSS-syntax source into a Stylesheet.
func ParseSCSS(source, name string) (*ast.Stylesheet, error) {
	toks, err := NewLexer(source, name).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: toks, source: name}
	return p.parseStylesheet()
}

// ParseCSS parses plain-CSS-syntax source: the same grammar as SCSS,
// restricted by rejecting SassScript-only productions (enforced by
// validateCSSOnly after a normal parse, mirroring how the teacher
// reuses one parser for both `compile` and `fmt` with different
// downstream handling rather than forking the grammar).
func ParseCSS(source, name string) (*ast.Stylesheet, error) {
	sheet, err := ParseSCSS(source, name)
	if err != nil {
		return nil, err
	}
	if err := validateCSSOnly(sheet.Statements); err != nil {
		return nil, err
	}
	return sheet, nil
}

func validateCSSOnly(stmts []ast.Statement) error {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.VariableDecl, *ast.IfStatement, *ast.EachStatement, *ast.ForStatement,
			*ast.WhileStatement, *ast.FunctionDecl, *ast.MixinDecl, *ast.IncludeStatement,
			*ast.UseStatement, *ast.ForwardStatement, *ast.ExtendStatement:
			return sasserror.Syntax(n.Span(), "this feature is not supported in plain CSS")
		case *ast.StyleRule:
			if err := validateCSSOnly(n.Body); err != nil {
				return err
			}
		case *ast.AtRule:
			if err := validateCSSOnly(n.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Parser) peek() Token  { return p.tokens[p.pos] }
func (p *Parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}
func (p *Parser) advance() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}
func (p *Parser) check(t TokenType) bool { return p.peek().Type == t }
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}
func (p *Parser) expect(t TokenType) (Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return Token{}, sasserror.Syntax(p.spanAt(p.peek()), "expected %s, found %q", t, p.peek().Value)
}

func (p *Parser) spanAt(t Token) sasserror.Span {
	return sasserror.Span{Source: p.source, Start: t.Pos, End: t.Pos}
}

func (p *Parser) parseStylesheet() (*ast.Stylesheet, error) {
	sheet := &ast.Stylesheet{}
	for !p.check(TokEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			sheet.Statements = append(sheet.Statements, stmt)
		}
	}
	return sheet, nil
}

func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.check(TokRBrace) && !p.check(TokEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	start := p.peek()
	switch {
	case p.check(TokSemi):
		p.advance()
		return nil, nil
	case p.check(TokComment):
		tok := p.advance()
		return &ast.Comment{Base: ast.NewBase(p.spanAt(start)), Text: tok.Value, Loud: strings.HasPrefix(tok.Value, "!")}, nil
	case p.check(TokVariable):
		return p.parseVariableDecl()
	case p.check(TokAt):
		return p.parseAtStatement()
	default:
		return p.parseRuleOrDeclaration()
	}
}

func (p *Parser) parseVariableDecl() (ast.Statement, error) {
	start := p.peek()
	tok := p.advance() // TokVariable
	name := tok.Value
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	value, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	decl := &ast.VariableDecl{Base: ast.NewBase(p.spanAt(start)), Name: name, Value: value}
	for p.check(TokBang) {
		p.advance()
		flag := p.advance().Value
		switch strings.ToLower(flag) {
		case "default":
			decl.Default = true
		case "global":
			decl.Global = true
		default:
			return nil, sasserror.Syntax(p.spanAt(start), "unknown flag !%s", flag)
		}
	}
	p.match(TokSemi)
	return decl, nil
}

func (p *Parser) parseAtStatement() (ast.Statement, error) {
	start := p.peek()
	name := p.advance().Value // consumed TokAt
	switch strings.ToLower(name) {
	case "if":
		return p.parseIf(start)
	case "each":
		return p.parseEach(start)
	case "for":
		return p.parseFor(start)
	case "while":
		return p.parseWhile(start)
	case "mixin":
		return p.parseMixinDecl(start)
	case "function":
		return p.parseFunctionDecl(start)
	case "include":
		return p.parseInclude(start)
	case "content":
		return p.parseContent(start)
	case "return":
		v, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		p.match(TokSemi)
		return &ast.ReturnStatement{Base: ast.NewBase(p.spanAt(start)), Value: v}, nil
	case "use":
		return p.parseUse(start)
	case "forward":
		return p.parseForward(start)
	case "import":
		return p.parseImport(start)
	case "extend":
		return p.parseExtend(start)
	case "warn":
		v, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		p.match(TokSemi)
		return &ast.WarnStatement{Base: ast.NewBase(p.spanAt(start)), Value: v}, nil
	case "error":
		v, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		p.match(TokSemi)
		return &ast.ErrorStatement{Base: ast.NewBase(p.spanAt(start)), Value: v}, nil
	case "debug":
		v, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		p.match(TokSemi)
		return &ast.DebugStatement{Base: ast.NewBase(p.spanAt(start)), Value: v}, nil
	case "at-root":
		return p.parseAtRoot(start)
	case "else":
		return nil, sasserror.Syntax(p.spanAt(start), "@else must follow @if")
	default:
		return p.parseGenericAtRule(start, name)
	}
}

func (p *Parser) parseIf(start Token) (ast.Statement, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Base: ast.NewBase(p.spanAt(start)), Condition: cond, Body: body}
	if p.check(TokAt) && strings.EqualFold(p.peekAt(0).Value, "else") {
		elseStart := p.advance() // @
		p.advance()              // else
		if p.check(TokAt) && strings.EqualFold(p.peek().Value, "if") {
			p.advance()
			elseClause, err := p.parseIf(elseStart)
			if err != nil {
				return nil, err
			}
			stmt.Else = elseClause.(*ast.IfStatement)
		} else {
			elseBody, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = &ast.IfStatement{Base: ast.NewBase(p.spanAt(elseStart)), Body: elseBody}
		}
	}
	return stmt, nil
}

func (p *Parser) parseEach(start Token) (ast.Statement, error) {
	var vars []string
	for {
		tok, err := p.expect(TokVariable)
		if err != nil {
			return nil, err
		}
		vars = append(vars, tok.Value)
		if !p.match(TokComma) {
			break
		}
	}
	if err := p.expectIdent("in"); err != nil {
		return nil, err
	}
	list, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.EachStatement{Base: ast.NewBase(p.spanAt(start)), Variables: vars, List: list, Body: body}, nil
}

func (p *Parser) parseFor(start Token) (ast.Statement, error) {
	tok, err := p.expect(TokVariable)
	if err != nil {
		return nil, err
	}
	if err := p.expectIdent("from"); err != nil {
		return nil, err
	}
	from, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	exclusive := false
	if p.checkIdent("to") {
		p.advance()
		exclusive = true
	} else if err := p.expectIdent("through"); err != nil {
		return nil, err
	}
	to, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Base: ast.NewBase(p.spanAt(start)), Variable: tok.Value, From: from, To: to, Exclusive: exclusive, Body: body}, nil
}

func (p *Parser) parseWhile(start Token) (ast.Statement, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Base: ast.NewBase(p.spanAt(start)), Condition: cond, Body: body}, nil
}

func (p *Parser) parseParamList() ([]ast.Param, error) {
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.check(TokRParen) {
		tok, err := p.expect(TokVariable)
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: tok.Value}
		if p.match(TokEllipsis) {
			param.Rest = true
		} else if p.match(TokColon) {
			def, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		if !p.match(TokComma) {
			break
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseMixinDecl(start Token) (ast.Statement, error) {
	name := p.advance().Value
	var params []ast.Param
	if p.check(TokLParen) {
		var err error
		params, err = p.parseParamList()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.MixinDecl{Base: ast.NewBase(p.spanAt(start)), Name: name, Params: params, Body: body, HasContent: containsContent(body)}, nil
}

func containsContent(body []ast.Statement) bool {
	for _, s := range body {
		switch n := s.(type) {
		case *ast.ContentStatement:
			return true
		case *ast.StyleRule:
			if containsContent(n.Body) {
				return true
			}
		case *ast.IfStatement:
			for ifn := n; ifn != nil; ifn = ifn.Else {
				if containsContent(ifn.Body) {
					return true
				}
			}
		}
	}
	return false
}

func (p *Parser) parseFunctionDecl(start Token) (ast.Statement, error) {
	name := p.advance().Value
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Base: ast.NewBase(p.spanAt(start)), Name: name, Params: params, Body: body}, nil
}

func (p *Parser) parseArgList() ([]ast.Argument, error) {
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	var args []ast.Argument
	for !p.check(TokRParen) {
		arg := ast.Argument{}
		if p.check(TokVariable) && p.peekAt(1).Type == TokColon {
			arg.Name = p.advance().Value
			p.advance()
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		arg.Value = val
		if p.match(TokEllipsis) {
			arg.Rest = true
		}
		args = append(args, arg)
		if !p.match(TokComma) {
			break
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseInclude(start Token) (ast.Statement, error) {
	namespace, name, err := p.parseNamespacedName()
	if err != nil {
		return nil, err
	}
	var args []ast.Argument
	if p.check(TokLParen) {
		args, err = p.parseArgList()
		if err != nil {
			return nil, err
		}
	}
	stmt := &ast.IncludeStatement{Base: ast.NewBase(p.spanAt(start)), Namespace: namespace, Name: name, Args: args}
	if p.checkIdent("using") {
		p.advance()
		stmt.ContentParams, err = p.parseParamList()
		if err != nil {
			return nil, err
		}
	}
	if p.check(TokLBrace) {
		content, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Content = content
	} else {
		p.match(TokSemi)
	}
	return stmt, nil
}

func (p *Parser) parseNamespacedName() (namespace, name string, err error) {
	first := p.advance().Value
	if p.check(TokDot) {
		p.advance()
		name = p.advance().Value
		return first, name, nil
	}
	return "", first, nil
}

func (p *Parser) parseContent(start Token) (ast.Statement, error) {
	var args []ast.Argument
	if p.check(TokLParen) {
		var err error
		args, err = p.parseArgList()
		if err != nil {
			return nil, err
		}
	}
	p.match(TokSemi)
	return &ast.ContentStatement{Base: ast.NewBase(p.spanAt(start)), Args: args}, nil
}

func (p *Parser) parseUse(start Token) (ast.Statement, error) {
	urlTok, err := p.expect(TokString)
	if err != nil {
		return nil, err
	}
	stmt := &ast.UseStatement{Base: ast.NewBase(p.spanAt(start)), URL: urlTok.Value}
	if p.checkIdent("as") {
		p.advance()
		if p.check(TokStar) {
			p.advance()
			stmt.Namespace = "*"
		} else {
			stmt.Namespace = p.advance().Value
		}
	}
	if p.checkIdent("with") {
		p.advance()
		cfg, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		stmt.Configuration = cfg
	}
	p.match(TokSemi)
	return stmt, nil
}

func (p *Parser) parseForward(start Token) (ast.Statement, error) {
	urlTok, err := p.expect(TokString)
	if err != nil {
		return nil, err
	}
	stmt := &ast.ForwardStatement{Base: ast.NewBase(p.spanAt(start)), URL: urlTok.Value}
	if p.checkIdent("as") {
		p.advance()
		stmt.Prefix = p.advance().Value
		p.match(TokStar)
	}
	if p.checkIdent("show") {
		p.advance()
		stmt.Show = p.parseIdentList()
	} else if p.checkIdent("hide") {
		p.advance()
		stmt.Hide = p.parseIdentList()
	}
	if p.checkIdent("with") {
		p.advance()
		cfg, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		stmt.Configuration = cfg
	}
	p.match(TokSemi)
	return stmt, nil
}

func (p *Parser) parseIdentList() []string {
	var names []string
	for {
		names = append(names, p.advance().Value)
		if !p.match(TokComma) {
			break
		}
	}
	return names
}

func (p *Parser) parseImport(start Token) (ast.Statement, error) {
	var urls []string
	for {
		tok, err := p.expect(TokString)
		if err != nil {
			return nil, err
		}
		urls = append(urls, tok.Value)
		if !p.match(TokComma) {
			break
		}
	}
	p.match(TokSemi)
	return &ast.ImportStatement{Base: ast.NewBase(p.spanAt(start)), URLs: urls}, nil
}

func (p *Parser) parseExtend(start Token) (ast.Statement, error) {
	var b strings.Builder
	for !p.check(TokSemi) && !p.check(TokEOF) && !p.check(TokBang) {
		b.WriteString(p.advance().Value)
		b.WriteByte(' ')
	}
	optional := false
	if p.match(TokBang) {
		if strings.EqualFold(p.peek().Value, "optional") {
			p.advance()
			optional = true
		}
	}
	p.match(TokSemi)
	return &ast.ExtendStatement{Base: ast.NewBase(p.spanAt(start)), SelectorText: strings.TrimSpace(b.String()), Optional: optional}, nil
}

func (p *Parser) parseAtRoot(start Token) (ast.Statement, error) {
	var query ast.Expression
	if p.check(TokLParen) {
		var err error
		query, err = p.parseParenExpr()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.AtRootStatement{Base: ast.NewBase(p.spanAt(start)), Query: query, Body: body}, nil
}

// parseGenericAtRule handles any at-rule this parser doesn't give
// special SassScript treatment to (@media, @supports, @keyframes,
// @font-face, @page, @charset, vendor at-rules, ...): its parameters
// are collected as raw text (still interpolation-aware) and passed
// through, the same catch-all shape as ast.AtRule in the teacher.
func (p *Parser) parseGenericAtRule(start Token, name string) (ast.Statement, error) {
	params, err := p.parseInterpolatedTextExpr(func() bool {
		return p.check(TokLBrace) || p.check(TokSemi) || p.check(TokEOF)
	})
	if err != nil {
		return nil, err
	}
	rule := &ast.AtRule{Base: ast.NewBase(p.spanAt(start)), Name: name, Params: params}
	if p.check(TokLBrace) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		rule.Body = body
	} else {
		p.match(TokSemi)
	}
	return rule, nil
}

// parseRuleOrDeclaration disambiguates a bare `ident ... { }` style
// rule from a `property: value;` declaration by scanning ahead for a
// top-level ':' before the next '{' or ';' -- the same lookahead the
// teacher's isMixinCall/parseSelector pairing uses to tell a selector
// from a declaration.
func (p *Parser) parseRuleOrDeclaration() (ast.Statement, error) {
	start := p.peek()
	if p.looksLikeDeclaration() {
		return p.parseDeclaration(start)
	}
	return p.parseStyleRule(start)
}

func (p *Parser) looksLikeDeclaration() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		t := p.tokens[i]
		switch t.Type {
		case TokLParen, TokLBracket, TokInterpStart:
			depth++
		case TokRParen, TokRBracket, TokInterpEnd:
			depth--
		case TokLBrace:
			if depth == 0 {
				return false
			}
		case TokSemi, TokEOF:
			if depth == 0 {
				return false
			}
		case TokColon:
			if depth == 0 {
				// A pseudo-class colon directly followed by an
				// identifier-then-'{' is a selector, not a declaration;
				// we approximate by requiring the colon not be the very
				// first token (bare `:hover { }` selectors start with
				// colon) and not be immediately followed by another
				// colon (::before).
				if i == p.pos {
					return false
				}
				if i+1 < len(p.tokens) && p.tokens[i+1].Type == TokColon {
					return false
				}
				return true
			}
		}
	}
	return false
}

func (p *Parser) parseDeclaration(start Token) (ast.Statement, error) {
	prop, err := p.parseInterpolatedTextExpr(func() bool { return p.check(TokColon) })
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	decl := &ast.Declaration{Base: ast.NewBase(p.spanAt(start)), Property: prop}
	if !p.check(TokLBrace) {
		val, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		decl.Value = val
		if p.match(TokBang) {
			p.advance() // "important" (or similar), treated as a trailing flag for now
		}
	}
	if p.check(TokLBrace) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		decl.Body = body
	} else {
		p.match(TokSemi)
	}
	return decl, nil
}

func (p *Parser) parseStyleRule(start Token) (ast.Statement, error) {
	selExpr, err := p.parseInterpolatedTextExpr(func() bool { return p.check(TokLBrace) })
	if err != nil {
		return nil, err
	}
	text := textOf(selExpr)
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.StyleRule{Base: ast.NewBase(p.spanAt(start)), SelectorText: text, Selector: selExpr, Body: body}, nil
}

func textOf(e ast.Expression) string {
	if s, ok := e.(*ast.StringLit); ok {
		return s.Text
	}
	return ""
}

// parseInterpolatedTextExpr collects raw tokens up to stop() into a
// StringLit, splitting out any #{...} spans into Chunks so the
// evaluator can resolve them while leaving literal text untouched --
// used for selectors, at-rule parameters and declaration properties,
// all of which are "mostly text, sometimes interpolated" in Sass.
func (p *Parser) parseInterpolatedTextExpr(stop func() bool) (ast.Expression, error) {
	start := p.peek()
	lit := &ast.StringLit{Base: ast.NewBase(p.spanAt(start))}
	var text strings.Builder
	for !stop() && !p.check(TokEOF) {
		if p.check(TokInterpStart) {
			if text.Len() > 0 {
				lit.Chunks = append(lit.Chunks, &ast.StringLit{Base: ast.NewBase(p.spanAt(start)), Text: text.String()})
				text.Reset()
			}
			p.advance()
			expr, err := p.parseExpressionList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokInterpEnd); err != nil {
				return nil, err
			}
			lit.Chunks = append(lit.Chunks, &ast.Interpolation{Base: ast.NewBase(p.spanAt(start)), Expr: expr})
			continue
		}
		tok := p.advance()
		text.WriteString(tokenText(tok))
	}
	if text.Len() > 0 {
		if len(lit.Chunks) == 0 {
			lit.Text = text.String()
			return lit, nil
		}
		lit.Chunks = append(lit.Chunks, &ast.StringLit{Base: ast.NewBase(p.spanAt(start)), Text: text.String()})
	}
	if len(lit.Chunks) == 0 {
		lit.Text = ""
	}
	return lit, nil
}

func tokenText(t Token) string {
	switch t.Type {
	case TokVariable:
		return "$" + t.Value
	case TokAt:
		return "@" + t.Value
	case TokString:
		return string(t.Quote) + t.Value + string(t.Quote)
	default:
		return t.Value
	}
}

func (p *Parser) expectIdent(kw string) error {
	if !p.checkIdent(kw) {
		return sasserror.Syntax(p.spanAt(p.peek()), "expected %q, found %q", kw, p.peek().Value)
	}
	p.advance()
	return nil
}

func (p *Parser) checkIdent(kw string) bool {
	return p.check(TokIdent) && strings.EqualFold(p.peek().Value, kw)
}

// parseExpressionList parses a comma-separated (list context) or
// space-separated expression sequence, collapsing to a single
// Expression when there's exactly one item, matching how a
// declaration value like `1px solid red` is a space list while
// `1px, 2px` is a comma list.
func (p *Parser) parseExpressionList() (ast.Expression, error) {
	start := p.peek()
	var commaItems []ast.Expression
	first, err := p.parseSpaceList()
	if err != nil {
		return nil, err
	}
	commaItems = append(commaItems, first)
	for p.match(TokComma) {
		next, err := p.parseSpaceList()
		if err != nil {
			return nil, err
		}
		commaItems = append(commaItems, next)
	}
	if len(commaItems) == 1 {
		return commaItems[0], nil
	}
	return &ast.ListExpr{Base: ast.NewBase(p.spanAt(start)), Items: commaItems, Comma: true}, nil
}

func (p *Parser) parseSpaceList() (ast.Expression, error) {
	start := p.peek()
	var items []ast.Expression
	for {
		if p.exprListEnds() {
			break
		}
		item, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, sasserror.Syntax(p.spanAt(start), "expected expression")
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &ast.ListExpr{Base: ast.NewBase(p.spanAt(start)), Items: items, Comma: false}, nil
}

func (p *Parser) exprListEnds() bool {
	switch p.peek().Type {
	case TokSemi, TokLBrace, TokRBrace, TokRParen, TokRBracket, TokComma, TokEOF, TokColon, TokBang, TokInterpEnd:
		return true
	}
	if p.checkIdent("from") || p.checkIdent("through") || p.checkIdent("to") || p.checkIdent("in") ||
		p.checkIdent("as") || p.checkIdent("with") || p.checkIdent("show") || p.checkIdent("hide") || p.checkIdent("using") {
		return true
	}
	return false
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.checkIdent("or") {
		start := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(p.spanAt(start)), Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.checkIdent("and") {
		start := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(p.spanAt(start)), Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Expression, error) {
	if p.checkIdent("not") {
		start := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(p.spanAt(start)), Op: "not", Operand: operand}, nil
	}
	return p.parseEquality()
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.check(TokEqEq) || p.check(TokNe) {
		op := p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(p.spanAt(op)), Op: string(op.Type), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.check(TokLt) || p.check(TokLe) || p.check(TokGt) || p.check(TokGe) {
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(p.spanAt(op)), Op: string(op.Type), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isAdditiveOp() {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(p.spanAt(op)), Op: string(op.Type), Left: left, Right: right}
	}
	return left, nil
}

// isAdditiveOp treats '+'/'-' as binary only when not immediately
// followed by whitespace-free sign ambiguity the lexer already
// resolved at the token level (the lexer does not merge unary signs
// into numbers unless contiguous, so a standalone TokPlus/TokMinus
// here is always a binary operator candidate).
func (p *Parser) isAdditiveOp() bool {
	return p.check(TokPlus) || p.check(TokMinus)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(TokStar) || p.check(TokPercent) || p.isDivisionSlash() {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		opStr := string(op.Type)
		if op.Type == TokSlash {
			opStr = "/"
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(p.spanAt(op)), Op: opStr, Left: left, Right: right}
	}
	return left, nil
}

// isDivisionSlash allows '/' to only be consumed as arithmetic inside
// a parenthesized context in real Sass (bare `1/2` in a declaration is
// a slash-separated list, not division, pending the `math.div`
// migration) -- this parser keeps it simple and always treats '/' as
// division inside parseMultiplicative, and the evaluator always divides
// (value.Divide); no slash-separated list form is produced.
func (p *Parser) isDivisionSlash() bool {
	return p.check(TokSlash)
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.check(TokMinus) || p.check(TokPlus) {
		op := p.advance()
		// A '-' immediately before an identifier with no space is
		// generally part of the identifier (e.g. `-webkit-transform`),
		// already captured by the lexer's isIdentStart('-'); this
		// branch only fires for a genuine leading unary sign before a
		// number/variable/paren.
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(p.spanAt(op)), Op: string(op.Type), Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	start := p.peek()
	switch {
	case p.check(TokNumber):
		return p.parseNumberLit()
	case p.check(TokString):
		return p.parseStringLitExpr()
	case p.check(TokVariable):
		return p.parseVariableRef()
	case p.check(TokInterpStart):
		interp, err := p.parseInterpolation()
		if err != nil {
			return nil, err
		}
		if p.check(TokIdent) && adjacent(p.tokens[p.pos-1], p.peek()) {
			suffix := p.advance()
			return &ast.StringLit{Base: ast.NewBase(p.spanAt(start)), Chunks: []ast.Expression{interp, &ast.StringLit{Base: ast.NewBase(p.spanAt(suffix)), Text: suffix.Value}}}, nil
		}
		return interp, nil
	case p.check(TokHash):
		return p.parseHexColor()
	case p.check(TokAmp):
		p.advance()
		return &ast.SelectorRef{Base: ast.NewBase(p.spanAt(start))}, nil
	case p.check(TokLParen):
		return p.parseParenOrMap()
	case p.check(TokLBracket):
		return p.parseBracketedList()
	case p.checkIdent("true"):
		p.advance()
		return &ast.BoolLit{Base: ast.NewBase(p.spanAt(start)), Value: true}, nil
	case p.checkIdent("false"):
		p.advance()
		return &ast.BoolLit{Base: ast.NewBase(p.spanAt(start)), Value: false}, nil
	case p.checkIdent("null"):
		p.advance()
		return &ast.NullLit{Base: ast.NewBase(p.spanAt(start))}, nil
	case p.check(TokIdent):
		return p.parseIdentOrCall()
	default:
		return nil, sasserror.Syntax(p.spanAt(start), "expected expression, found %q", start.Value)
	}
}

func (p *Parser) parseNumberLit() (ast.Expression, error) {
	tok := p.advance()
	n, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return nil, sasserror.Syntax(p.spanAt(tok), "invalid number %q", tok.Value)
	}
	lit := &ast.NumberLit{Base: ast.NewBase(p.spanAt(tok)), Value: n}
	if p.check(TokPercent) && adjacent(tok, p.peek()) {
		p.advance()
		lit.Unit = "%"
	} else if p.check(TokIdent) && adjacent(tok, p.peek()) {
		lit.Unit = p.advance().Value
	}
	return lit, nil
}

// adjacent reports whether next immediately follows prev in the
// source with no intervening whitespace, by comparing prev's end
// offset (start offset + rune length of its literal text) against
// next's start offset -- units must be written directly against their
// number (`10px`) to be parsed as part of it, so `0 auto` stays a
// two-item space list rather than a bogus "auto" unit.
func adjacent(prev, next Token) bool {
	end := prev.Pos.Offset + len([]rune(prev.Value))
	return end == next.Pos.Offset
}

func (p *Parser) parseStringLitExpr() (ast.Expression, error) {
	tok := p.advance()
	lit := &ast.StringLit{Base: ast.NewBase(p.spanAt(tok)), Quoted: tok.Quote != 0, Text: tok.Value}
	for p.check(TokInterpStart) {
		if lit.Chunks == nil {
			lit.Chunks = []ast.Expression{&ast.StringLit{Base: lit.Base, Text: lit.Text, Quoted: lit.Quoted}}
		}
		p.advance()
		expr, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokInterpEnd); err != nil {
			return nil, err
		}
		lit.Chunks = append(lit.Chunks, &ast.Interpolation{Base: lit.Base, Expr: expr})
		if p.check(TokString) {
			next := p.advance()
			lit.Chunks = append(lit.Chunks, &ast.StringLit{Base: lit.Base, Text: next.Value, Quoted: next.Quote != 0})
		}
	}
	return lit, nil
}

// parseVariableRef parses a bare "$name". Namespaced references
// ("module.$name") start from an identifier token instead and are
// handled by parseIdentOrCall, since Sass namespaces are bare idents,
// never "$"-prefixed.
func (p *Parser) parseVariableRef() (ast.Expression, error) {
	tok := p.advance()
	return &ast.VariableRef{Base: ast.NewBase(p.spanAt(tok)), Name: tok.Value}, nil
}

func (p *Parser) parseInterpolation() (ast.Expression, error) {
	start := p.advance() // #{
	expr, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokInterpEnd); err != nil {
		return nil, err
	}
	return &ast.Interpolation{Base: ast.NewBase(p.spanAt(start)), Expr: expr}, nil
}

func (p *Parser) parseHexColor() (ast.Expression, error) {
	start := p.advance() // #
	ident := p.advance()
	return &ast.ColorLit{Base: ast.NewBase(p.spanAt(start)), Hex: ident.Value}, nil
}

func (p *Parser) parseParenOrMap() (ast.Expression, error) {
	start := p.advance() // (
	if p.check(TokRParen) {
		p.advance()
		return &ast.ListExpr{Base: ast.NewBase(p.spanAt(start))}, nil
	}
	first, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	if p.check(TokColon) {
		return p.parseMapTail(start, first)
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return &ast.ParenExpr{Base: ast.NewBase(p.spanAt(start)), Inner: first}, nil
}

func (p *Parser) parseMapTail(start Token, firstKey ast.Expression) (ast.Expression, error) {
	p.advance() // :
	firstVal, err := p.parseSpaceList()
	if err != nil {
		return nil, err
	}
	m := &ast.MapExpr{Base: ast.NewBase(p.spanAt(start)), Keys: []ast.Expression{firstKey}, Values: []ast.Expression{firstVal}}
	for p.match(TokComma) {
		if p.check(TokRParen) {
			break
		}
		k, err := p.parseSpaceList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		v, err := p.parseSpaceList()
		if err != nil {
			return nil, err
		}
		m.Keys = append(m.Keys, k)
		m.Values = append(m.Values, v)
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseParenExpr() (ast.Expression, error) {
	e, err := p.parseParenOrMap()
	return e, err
}

func (p *Parser) parseBracketedList() (ast.Expression, error) {
	start := p.advance() // [
	if p.check(TokRBracket) {
		p.advance()
		return &ast.ListExpr{Base: ast.NewBase(p.spanAt(start)), Bracketed: true}, nil
	}
	list, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBracket); err != nil {
		return nil, err
	}
	if le, ok := list.(*ast.ListExpr); ok {
		le.Bracketed = true
		return le, nil
	}
	return &ast.ListExpr{Base: ast.NewBase(p.spanAt(start)), Items: []ast.Expression{list}, Bracketed: true}, nil
}

func (p *Parser) parseIdentOrCall() (ast.Expression, error) {
	start := p.peek()
	name := p.advance().Value
	if p.check(TokDot) && p.peekAt(1).Type == TokVariable {
		p.advance()
		varTok := p.advance()
		return &ast.VariableRef{Base: ast.NewBase(p.spanAt(start)), Namespace: name, Name: varTok.Value}, nil
	}
	namespace := ""
	if p.check(TokDot) && p.peekAt(1).Type == TokIdent {
		p.advance()
		namespace = name
		name = p.advance().Value
	}
	if p.check(TokLParen) {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Base: ast.NewBase(p.spanAt(start)), Namespace: namespace, Name: name, Args: args}, nil
	}
	if namespace != "" {
		name = namespace + "." + name
	}
	return &ast.StringLit{Base: ast.NewBase(p.spanAt(start)), Text: name}, nil
}
