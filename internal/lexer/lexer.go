// Package lexer implements the lexical layer of MSlash: splitting scripts into
// statement lines and tokenizing the expressions found on them.
package lexer

import (
	"mslash/internal/diag"
	"mslash/internal/span"
	"mslash/internal/token"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes a single expression.
type Lexer struct {
	source string
	origin span.Position // position of source[0]

	pos int // current read position in source
}

// New creates a new Lexer for the expression text starting at origin.
func New(source string, origin span.Position) *Lexer {
	return &Lexer{source: source, origin: origin}
}

// Tokenize scans the entire expression and returns its tokens, ending with EOF.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, nil
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) curPos() span.Position {
	return l.origin.Advance(l.pos)
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.pos++
		} else {
			break
		}
	}
}

func (l *Lexer) errorf(code string, start span.Position, format string, args ...interface{}) error {
	return diag.Errorf(diag.SyntaxError, code, l.makeSpan(start), format, args...)
}

func (l *Lexer) tok(kind token.Kind, lexeme string, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// ---- token reading ----

func (l *Lexer) nextToken() (token.Token, error) {
	l.skipWhitespace()

	start := l.curPos()
	if l.pos >= len(l.source) {
		return l.tok(token.EOF, "", start), nil
	}

	ch := l.peek()
	switch {
	case ch == '"' || ch == '\'':
		return l.readString(start, ch)
	case isDigit(ch):
		return l.readNumber(start), nil
	case isIdentStart(l.source[l.pos:]):
		return l.readIdentifier(start), nil
	}
	return l.readOperator(start)
}

// readString reads a quoted string literal. The lexeme is the raw text between
// the quotes: escapes and ${...} segments are decoded by the parser. Quotes
// inside an interpolation segment do not terminate the literal.
func (l *Lexer) readString(start span.Position, quote byte) (token.Token, error) {
	l.pos++ // opening quote
	textStart := l.pos
	depth := 0

	for l.pos < len(l.source) {
		ch := l.peek()
		switch {
		case ch == '\\':
			l.pos += 2
			continue
		case ch == '$' && l.peekNext() == '{':
			depth++
			l.pos += 2
			continue
		case depth > 0 && ch == '{':
			depth++
		case depth > 0 && ch == '}':
			depth--
		case depth > 0 && (ch == '"' || ch == '\''):
			// nested literal inside an interpolation segment
			inner := ch
			l.pos++
			for l.pos < len(l.source) && l.peek() != inner {
				if l.peek() == '\\' {
					l.pos++
				}
				l.pos++
			}
		case depth == 0 && ch == quote:
			text := l.source[textStart:l.pos]
			l.pos++ // closing quote
			return l.tok(token.STRING, text, start), nil
		}
		l.pos++
	}

	return token.Token{}, l.errorf(diag.CodeUnterminatedString, start, "unterminated string literal")
}

// readNumber reads an integer or float literal.
func (l *Lexer) readNumber(start span.Position) token.Token {
	isFloat := false
	numStart := l.pos

	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.pos++
	}

	// Check for decimal point
	if l.peek() == '.' && isDigit(l.peekNext()) {
		isFloat = true
		l.pos++ // skip '.'
		for l.pos < len(l.source) && isDigit(l.peek()) {
			l.pos++
		}
	}

	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return l.tok(kind, l.source[numStart:l.pos], start)
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	identStart := l.pos
	for l.pos < len(l.source) && isIdentPart(l.source[l.pos:]) {
		_, size := utf8.DecodeRuneInString(l.source[l.pos:])
		l.pos += size
	}
	lexeme := l.source[identStart:l.pos]
	return l.tok(token.LookupIdent(lexeme), lexeme, start)
}

// readOperator reads an operator or delimiter token.
func (l *Lexer) readOperator(start span.Position) (token.Token, error) {
	ch := l.peek()
	l.pos++

	two := func(next byte, yes, no token.Kind) (token.Token, error) {
		if l.peek() == next {
			l.pos++
			return l.tok(yes, yes.String(), start), nil
		}
		return l.tok(no, no.String(), start), nil
	}

	switch ch {
	case '(':
		return l.tok(token.LPAREN, "(", start), nil
	case ')':
		return l.tok(token.RPAREN, ")", start), nil
	case '[':
		return l.tok(token.LBRACKET, "[", start), nil
	case ']':
		return l.tok(token.RBRACKET, "]", start), nil
	case ',':
		return l.tok(token.COMMA, ",", start), nil
	case '.':
		return l.tok(token.DOT, ".", start), nil
	case ':':
		return l.tok(token.COLON, ":", start), nil
	case '+':
		return l.tok(token.PLUS, "+", start), nil
	case '-':
		return l.tok(token.MINUS, "-", start), nil
	case '*':
		return l.tok(token.STAR, "*", start), nil
	case '/':
		return l.tok(token.SLASH, "/", start), nil
	case '%':
		return l.tok(token.PERCENT, "%", start), nil
	case '!':
		return two('=', token.NEQ, token.BANG)
	case '=':
		return two('=', token.EQ, token.ASSIGN)
	case '<':
		return two('=', token.LTE, token.LT)
	case '>':
		return two('=', token.GTE, token.GT)
	case '&':
		if l.peek() == '&' {
			l.pos++
			return l.tok(token.AND, "&&", start), nil
		}
		return token.Token{}, l.errorf(diag.CodeInvalidExpression, start, "unexpected character: '%c', did you mean '&&'?", ch)
	case '|':
		if l.peek() == '|' {
			l.pos++
			return l.tok(token.OR, "||", start), nil
		}
		return token.Token{}, l.errorf(diag.CodeInvalidExpression, start, "unexpected character: '%c', did you mean '||'?", ch)
	default:
		r, _ := utf8.DecodeRuneInString(l.source[l.pos-1:])
		return token.Token{}, l.errorf(diag.CodeInvalidExpression, start, "unexpected character: '%c'", r)
	}
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isIdentStart reports whether the rune at the start of s begins an identifier.
func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}

// isIdentPart reports whether the rune at the start of s continues an identifier.
func isIdentPart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsIdent reports whether s is a valid identifier (and not a keyword).
func IsIdent(s string) bool {
	if s == "" || !isIdentStart(s) {
		return false
	}
	for i := 0; i < len(s); {
		if !isIdentPart(s[i:]) {
			return false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return token.LookupIdent(s) == token.IDENT
}
