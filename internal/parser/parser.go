// Package parser turns MSlash source into the tagged AST.
// Expressions use Pratt parsing; whole files go through the block-matching
// loader in loader.go.
package parser

import (
	"mslash/internal/ast"
	"mslash/internal/diag"
	"mslash/internal/lexer"
	"mslash/internal/span"
	"mslash/internal/token"
	"strconv"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or ||
	bpAnd        = 20 // and &&
	bpNot        = 25 // not
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * / %
	bpPrefix     = 70 // ! -
	bpPostfix    = 80 // () [] .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.OR:
		return bpOr
	case token.AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return bpMultiply
	case token.LPAREN, token.LBRACKET, token.DOT:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on the tokens of one expression.
type Parser struct {
	tokens []token.Token
	pos    int
	err    error
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseExpr parses src as a single complete expression. origin is the
// position of src[0] in its file and is used for error locations.
func ParseExpr(src string, origin span.Position) (ast.Expr, error) {
	tokens, err := lexer.New(src, origin).Tokenize()
	if err != nil {
		return nil, err
	}
	p := New(tokens)
	expr := p.parseExpr(bpNone)
	if p.err != nil {
		return nil, p.err
	}
	if !p.isAtEnd() {
		tok := p.peek()
		return nil, diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression, tok.Span,
			"unexpected '%s' in expression", tok.Lexeme)
	}
	return expr, nil
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	if tok.Kind == token.EOF {
		p.error(tok.Span, "expected '%s' before end of expression", kind)
	} else {
		p.error(tok.Span, "expected '%s', got '%s'", kind, tok.Lexeme)
	}
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

// error records the first parse error; later ones are consequences of it.
func (p *Parser) error(s span.Span, format string, args ...interface{}) {
	if p.err == nil {
		p.err = diag.Errorf(diag.SyntaxError, diag.CodeInvalidExpression, s, format, args...)
	}
}

func (p *Parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// ============================================================
// Expression parsing
// ============================================================

func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil || p.err != nil {
		return nil
	}

	for p.err == nil {
		bp := infixBP(p.peekKind())
		if bp <= minBP {
			break
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.INT:
		p.advance()
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.error(tok.Span, "integer literal %s out of range", tok.Lexeme)
			return nil
		}
		return &ast.IntLiteral{ExprBase: exprBase(tok.Span), Value: val}

	case token.FLOAT:
		p.advance()
		val, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.FloatLiteral{ExprBase: exprBase(tok.Span), Value: val}

	case token.STRING:
		p.advance()
		expr, err := parseString(tok.Lexeme, tok.Span.Start.Advance(1), tok.Span)
		if err != nil {
			p.fail(err)
			return nil
		}
		return expr

	case token.KW_TRUE, token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{ExprBase: exprBase(tok.Span), Value: tok.Kind == token.KW_TRUE}

	case token.KW_NONE:
		p.advance()
		return &ast.NoneLiteral{ExprBase: exprBase(tok.Span)}

	case token.IDENT:
		p.advance()
		return &ast.IdentExpr{ExprBase: exprBase(tok.Span), Name: tok.Lexeme}

	case token.LPAREN:
		return p.parseParenOrMap()

	case token.BANG, token.MINUS, token.KW_NOT:
		p.advance()
		bp := bpPrefix
		if tok.Kind == token.KW_NOT {
			bp = bpNot
		}
		operand := p.parseExpr(bp)
		if operand == nil {
			return nil
		}
		op := tok.Kind
		if op == token.KW_NOT {
			op = token.BANG
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       op,
			Operand:  operand,
		}

	case token.KW_NEW:
		return p.parseNewExpr()

	case token.LBRACKET:
		return p.parseListLiteral()

	case token.EOF:
		p.error(tok.Span, "expected an expression")
		return nil

	default:
		p.error(tok.Span, "unexpected '%s' in expression", tok.Lexeme)
		return nil
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.AND, token.OR:
		// Binary infix operator (left-associative)
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			return nil
		}
		return &ast.BinaryExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       tok.Kind,
			Left:     left,
			Right:    right,
		}

	case token.LPAREN:
		// Call expression: callee(args)
		p.advance()
		args, end := p.parseArgs()
		return &ast.CallExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, end),
			Callee:   left,
			Args:     args,
		}

	case token.LBRACKET:
		// Index expression: object[index]
		p.advance()
		index := p.parseExpr(bpNone)
		end, _ := p.expect(token.RBRACKET)
		return &ast.IndexExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, end.Span.End),
			Object:   left,
			Index:    index,
		}

	case token.DOT:
		// Member access: object.property
		p.advance()
		propTok, _ := p.expect(token.IDENT)
		return &ast.MemberExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, propTok.Span.End),
			Object:   left,
			Property: propTok.Lexeme,
		}

	default:
		return left
	}
}

// parseArgs parses a comma-separated argument list after '(' up to and
// including ')'. It returns the arguments and the end position.
func (p *Parser) parseArgs() ([]ast.Expr, span.Position) {
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		args = append(args, p.parseExpr(bpNone))
		for p.err == nil && p.check(token.COMMA) {
			p.advance()
			args = append(args, p.parseExpr(bpNone))
		}
	}
	end, _ := p.expect(token.RPAREN)
	return args, end.Span.End
}

// parseParenOrMap parses a grouped expression "(expr)", a map literal
// "(k: v, ...)", or the empty map "()".
func (p *Parser) parseParenOrMap() ast.Expr {
	start := p.advance() // consume '('

	if p.check(token.RPAREN) {
		end := p.advance()
		return &ast.MapLiteral{ExprBase: makeExprBase(start.Span.Start, end.Span.End)}
	}

	first := p.parseExpr(bpNone)
	if first == nil {
		return nil
	}
	if !p.check(token.COLON) {
		p.expect(token.RPAREN)
		return first
	}

	lit := &ast.MapLiteral{}
	key := first
	for p.err == nil {
		p.expect(token.COLON)
		value := p.parseExpr(bpNone)
		lit.Keys = append(lit.Keys, key)
		lit.Values = append(lit.Values, value)
		if !p.check(token.COMMA) {
			break
		}
		p.advance()
		key = p.parseExpr(bpNone)
	}
	end, _ := p.expect(token.RPAREN)
	lit.ExprBase = makeExprBase(start.Span.Start, end.Span.End)
	return lit
}

// parseListLiteral parses: [ expr, expr, ... ]
func (p *Parser) parseListLiteral() ast.Expr {
	start := p.advance() // consume '['
	var elements []ast.Expr

	if !p.check(token.RBRACKET) {
		elements = append(elements, p.parseExpr(bpNone))
		for p.err == nil && p.check(token.COMMA) {
			p.advance()
			if p.check(token.RBRACKET) {
				break // trailing comma
			}
			elements = append(elements, p.parseExpr(bpNone))
		}
	}
	end, _ := p.expect(token.RBRACKET)

	return &ast.ListLiteral{
		ExprBase: makeExprBase(start.Span.Start, end.Span.End),
		Elements: elements,
	}
}

// parseNewExpr parses: new ClassName(args)
func (p *Parser) parseNewExpr() ast.Expr {
	start := p.advance() // consume 'new'

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	var args []ast.Expr
	end := nameTok.Span.End
	if p.check(token.LPAREN) {
		p.advance()
		args, end = p.parseArgs()
	}

	return &ast.NewExpr{
		ExprBase:  makeExprBase(start.Span.Start, end),
		ClassName: nameTok.Lexeme,
		Args:      args,
	}
}

// ---- span helpers ----

func exprBase(s span.Span) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: s}}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(s span.Span) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: s}}
}

func makeDeclBase(s span.Span) ast.DeclBase {
	return ast.DeclBase{NodeBase: ast.NodeBase{Span: s}}
}
