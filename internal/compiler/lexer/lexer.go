package lexer

import (
	"github.com/hyperlace-lang/hyperlace/internal/compiler/diag"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/token"
)

// Lexer scans Hyperlace source text into tokens. It is restartable from the
// start of the input: construct a fresh Lexer (or call Lex again) to rescan.
type Lexer struct {
	input        string
	position     int  // current char index
	readPosition int  // next char index
	ch           byte // current char

	line   int // 1-indexed
	column int // 1-indexed
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Lex scans the whole input and returns the token stream, terminated by a
// single EOF token. The first malformed token aborts the scan.
func Lex(input string) ([]token.Token, error) {
	l := NewLexer(input)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.TokenEOF {
			return toks, nil
		}
	}
}

// readChar advances the lexer and updates the current character, tracking
// line/column as it goes. ch == 0 signals end of input.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}

	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else if l.ch != 0 {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token in the input. Comments are consumed and
// never surfaced.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	startLine := l.line
	startCol := l.column

	switch l.ch {
	case 0:
		return token.Token{Type: token.TokenEOF, Line: startLine, Column: startCol}, nil
	case '/':
		if l.peekChar() == '/' {
			l.readComment()
			return l.NextToken()
		}
		l.readChar()
		return l.newToken(token.TokenSymbol, "/", startLine, startCol), nil
	case '=':
		l.readChar()
		return l.newToken(token.TokenAssign, "=", startLine, startCol), nil
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.newToken(token.TokenAugAssign, "+=", startLine, startCol), nil
		}
		l.readChar()
		return l.newToken(token.TokenSymbol, "+", startLine, startCol), nil
	case ';':
		l.readChar()
		return l.newToken(token.TokenEndOfLine, ";", startLine, startCol), nil
	case '(', ')', '{', '}', ',', '.', '-', '*', '?', ':':
		lit := string(l.ch)
		l.readChar()
		return l.newToken(token.TokenSymbol, lit, startLine, startCol), nil
	case '"':
		return l.readString(startLine, startCol)
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			if token.Keywords[ident] {
				return l.newToken(token.TokenKeyword, ident, startLine, startCol), nil
			}
			return l.newToken(token.TokenIdentifier, ident, startLine, startCol), nil
		}
		if isDigit(l.ch) {
			return l.newToken(token.TokenNumber, l.readNumber(), startLine, startCol), nil
		}
		return token.Token{}, diag.Lexf(startLine, startCol, "unrecognized character %q", string(l.ch))
	}
}

func (l *Lexer) newToken(t token.Type, literal string, line, col int) token.Token {
	return token.Token{Type: t, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\n' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber scans a maximal digit run with at most one embedded decimal
// point. A second '.' ends the number and lexes as its own Symbol.
func (l *Lexer) readNumber() string {
	start := l.position
	seenPoint := false
	for {
		if isDigit(l.ch) {
			l.readChar()
			continue
		}
		if l.ch == '.' && !seenPoint && isDigit(l.peekChar()) {
			seenPoint = true
			l.readChar()
			continue
		}
		break
	}
	return l.input[start:l.position]
}

func (l *Lexer) readString(startLine, startCol int) (token.Token, error) {
	l.readChar() // consume opening quote
	start := l.position
	for l.ch != '"' {
		if l.ch == 0 {
			return token.Token{}, diag.Lexf(startLine, startCol, "unterminated string literal")
		}
		l.readChar()
	}
	lit := l.input[start:l.position]
	l.readChar() // consume closing quote
	return l.newToken(token.TokenString, lit, startLine, startCol), nil
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
