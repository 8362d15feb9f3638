package token

// Type is the lexical category of a token. Hyperlace keeps the category set
// deliberately small: individual punctuation marks all share TokenSymbol and
// are told apart by their lexeme.
type Type string

const (
	TokenIdentifier Type = "IDENTIFIER"
	TokenNumber     Type = "NUMBER"
	TokenString     Type = "STRING"
	TokenKeyword    Type = "KEYWORD"
	TokenSymbol     Type = "SYMBOL"
	TokenComment    Type = "COMMENT" // classified but never emitted by the lexer

	TokenAssign    Type = "ASSIGN"     // =
	TokenAugAssign Type = "AUG_ASSIGN" // +=
	TokenEndOfLine Type = "EOL"        // ;
	TokenEOF       Type = "EOF"
)

// Keywords is the reserved word set. Identifiers matching one of these lex as
// TokenKeyword instead.
var Keywords = map[string]bool{
	"Start":  true,
	"if":     true,
	"else":   true,
	"while":  true,
	"for":    true,
	"Init":   true,
	"enum":   true,
	"return": true,
}

// Token is a single lexical unit. Line and Column identify the token's first
// character, 1-based, in the text handed to the lexer.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}

func (t Token) IsSymbol(lit string) bool {
	return t.Type == TokenSymbol && t.Literal == lit
}

func (t Token) IsKeyword(word string) bool {
	return t.Type == TokenKeyword && t.Literal == word
}
