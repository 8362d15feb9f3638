package parser

import (
	"github.com/hyperlace-lang/hyperlace/internal/compiler/ast"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/diag"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/token"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	PrecLowest
	PrecAssign  // =
	PrecCond    // ?:
	PrecSum     // +, -
	PrecProduct // *, /
	PrecPrefix  // -x
	PrecCall    // foo(...), obj.field
	PrecPrimary
)

// precedences maps infix symbol lexemes to their binding power.
var precedences = map[string]int{
	"?": PrecCond,
	"+": PrecSum,
	"-": PrecSum,
	"*": PrecProduct,
	"/": PrecProduct,
	".": PrecCall,
}

// Parser consumes a complete token stream by position index. It does not
// recover: the first grammar violation aborts the whole unit.
type Parser struct {
	toks []token.Token
	pos  int

	// struct names declared so far, used to tell Person() apart from a
	// zero-argument function call
	structNames map[string]bool
}

func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, structNames: make(map[string]bool)}
}

// Parse builds the ordered top-level statement list.
func Parse(toks []token.Token) (*ast.Program, error) {
	return New(toks).ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// --- Token handling ---

func (p *Parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Type: token.TokenEOF}
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return token.Token{Type: token.TokenEOF}
}

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.cur().Type == token.TokenEOF
}

func (p *Parser) errf(tok token.Token, format string, args ...any) error {
	return diag.Parsef(tok.Line, tok.Column, format, args...)
}

func (p *Parser) expectSymbol(lit string) error {
	if !p.cur().IsSymbol(lit) {
		return p.errf(p.cur(), "expected %q, got %q", lit, p.cur().Literal)
	}
	p.advance()
	return nil
}

func (p *Parser) expectType(t token.Type, what string) (token.Token, error) {
	if p.cur().Type != t {
		return token.Token{}, p.errf(p.cur(), "expected %s, got %q", what, p.cur().Literal)
	}
	return p.advance(), nil
}

func (p *Parser) expectIdentifier(what string) (token.Token, error) {
	return p.expectType(token.TokenIdentifier, what)
}

// --- Statements ---

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.cur()
	switch {
	case tok.Type == token.TokenIdentifier &&
		(p.peek().Type == token.TokenAssign || p.peek().Type == token.TokenAugAssign || p.peek().IsSymbol(".")):
		return p.parseAssignment(true)
	case tok.IsKeyword("Start"):
		return p.parseFunctionDef()
	case tok.IsKeyword("if"):
		return p.parseIfStatement()
	case tok.IsKeyword("while"):
		return p.parseWhileLoop()
	case tok.IsKeyword("for"):
		return p.parseForLoop()
	case tok.IsKeyword("Init"):
		return p.parseStructDef()
	case tok.IsKeyword("enum"):
		return p.parseEnumDef()
	case tok.IsKeyword("return"):
		return p.parseReturnStatement()
	default:
		return nil, p.errf(tok, "unexpected statement")
	}
}

// parseAssignment handles x = expr, x += expr, and dotted field targets like
// p.age = expr. Augmented assignment desugars into a plain assignment of a
// synthesized addition. terminated controls whether the closing ';' is
// required (a for-loop increment clause ends at ')' instead).
func (p *Parser) parseAssignment(terminated bool) (ast.Statement, error) {
	nameTok := p.advance()
	name := nameTok.Literal
	var target ast.Expression = &ast.IdentifierRef{Token: nameTok, Name: nameTok.Literal}
	for p.cur().IsSymbol(".") {
		dotTok := p.advance()
		fieldTok, err := p.expectIdentifier("field name after '.'")
		if err != nil {
			return nil, err
		}
		name += "." + fieldTok.Literal
		target = &ast.FieldAccess{Token: dotTok, Object: target, Field: fieldTok.Literal}
	}

	opTok := p.advance() // = or +=
	if opTok.Type != token.TokenAssign && opTok.Type != token.TokenAugAssign {
		return nil, p.errf(opTok, "expected %q in assignment, got %q", "=", opTok.Literal)
	}

	value, err := p.parseExpression(PrecLowest)
	if err != nil {
		return nil, err
	}

	if opTok.Type == token.TokenAugAssign {
		value = &ast.BinaryExpr{
			Token:    opTok,
			Operator: "+",
			Left:     target,
			Right:    value,
		}
	}

	if terminated {
		if p.cur().Type != token.TokenEndOfLine {
			return nil, p.errf(p.cur(), "expected %q after assignment", ";")
		}
		p.advance()
	}

	return &ast.Assignment{Token: opTok, Name: name, Value: value, Mutable: true}, nil
}

func (p *Parser) parseFunctionDef() (ast.Statement, error) {
	startTok := p.advance() // Start

	nameTok, err := p.expectIdentifier("function name after Start")
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}

	var params []string
	if !p.cur().IsSymbol(")") {
		for {
			paramTok, err := p.expectIdentifier("parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, paramTok.Literal)
			if p.cur().IsSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDef{Token: startTok, Name: nameTok.Literal, Params: params, Body: body}, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	ifTok := p.advance()

	cond, err := p.parseParenExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseBranch []ast.Statement
	if p.cur().IsKeyword("else") {
		p.advance()
		elseBranch, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
		if elseBranch == nil {
			elseBranch = []ast.Statement{}
		}
	}

	return &ast.IfStatement{Token: ifTok, Condition: cond, Then: then, Else: elseBranch}, nil
}

func (p *Parser) parseWhileLoop() (ast.Statement, error) {
	whileTok := p.advance()

	cond, err := p.parseParenExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.WhileLoop{Token: whileTok, Condition: cond, Body: body}, nil
}

func (p *Parser) parseForLoop() (ast.Statement, error) {
	forTok := p.advance()

	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}

	init, err := p.parseClauseAssignment(true)
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpression(PrecLowest)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.TokenEndOfLine {
		return nil, p.errf(p.cur(), "expected %q after for-loop condition", ";")
	}
	p.advance()

	incr, err := p.parseClauseAssignment(false)
	if err != nil {
		return nil, err
	}

	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.ForLoop{Token: forTok, Init: init, Condition: cond, Increment: incr, Body: body}, nil
}

// parseClauseAssignment parses the initializer or increment clause of a for
// loop, which must be an assignment.
func (p *Parser) parseClauseAssignment(terminated bool) (ast.Statement, error) {
	tok := p.cur()
	if tok.Type != token.TokenIdentifier ||
		(p.peek().Type != token.TokenAssign && p.peek().Type != token.TokenAugAssign) {
		return nil, p.errf(tok, "expected assignment in for-loop clause")
	}
	return p.parseAssignment(terminated)
}

func (p *Parser) parseStructDef() (ast.Statement, error) {
	initTok := p.advance() // Init

	nameTok, err := p.expectIdentifier("struct name")
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	var fields []string
	for !p.cur().IsSymbol("}") {
		fieldTok, err := p.expectIdentifier("field name")
		if err != nil {
			return nil, err
		}
		fields = append(fields, fieldTok.Literal)
		if p.cur().Type != token.TokenEndOfLine {
			return nil, p.errf(p.cur(), "expected %q after field name", ";")
		}
		p.advance()
	}
	p.advance() // }

	p.structNames[nameTok.Literal] = true

	return &ast.StructDef{Token: initTok, Name: nameTok.Literal, Fields: fields}, nil
}

func (p *Parser) parseEnumDef() (ast.Statement, error) {
	enumTok := p.advance()

	nameTok, err := p.expectIdentifier("enum name")
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}

	var variants []string
	if !p.cur().IsSymbol("}") {
		for {
			variantTok, err := p.expectIdentifier("enum variant name")
			if err != nil {
				return nil, err
			}
			variants = append(variants, variantTok.Literal)
			if p.cur().IsSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}

	return &ast.EnumDef{Token: enumTok, Name: nameTok.Literal, Variants: variants}, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	retTok := p.advance()

	var value ast.Expression
	if p.cur().Type != token.TokenEndOfLine {
		var err error
		value, err = p.parseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
	}
	if p.cur().Type != token.TokenEndOfLine {
		return nil, p.errf(p.cur(), "expected %q after return statement", ";")
	}
	p.advance()

	return &ast.ReturnStatement{Token: retTok, Value: value}, nil
}

func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.cur().IsSymbol("}") {
		if p.atEnd() {
			return nil, p.errf(p.cur(), "unexpected end of input, expected %q", "}")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // }
	return stmts, nil
}

func (p *Parser) parseParenExpression() (ast.Expression, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return expr, nil
}

// --- Expressions ---

// parseExpression implements precedence climbing: it parses a prefix
// expression, then folds in infix operators that bind tighter than the given
// level.
func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.curPrecedence() {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) curPrecedence() int {
	tok := p.cur()
	if tok.Type != token.TokenSymbol {
		return PrecLowest
	}
	if prec, ok := precedences[tok.Literal]; ok {
		return prec
	}
	return PrecLowest
}

func (p *Parser) parsePrefix() (ast.Expression, error) {
	tok := p.cur()
	switch {
	case tok.Type == token.TokenNumber:
		p.advance()
		return &ast.NumberLiteral{Token: tok, Value: tok.Literal}, nil
	case tok.Type == token.TokenIdentifier:
		return p.parseIdentifierExpression()
	case tok.IsSymbol("-"):
		// Unary minus desugars to 0 - x.
		p.advance()
		operand, err := p.parseExpression(PrecPrefix)
		if err != nil {
			return nil, err
		}
		zero := &ast.NumberLiteral{Token: tok, Value: "0"}
		return &ast.BinaryExpr{Token: tok, Operator: "-", Left: zero, Right: operand}, nil
	case tok.IsSymbol("("):
		p.advance()
		expr, err := p.parseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errf(tok, "invalid expression")
	}
}

// parseIdentifierExpression handles a primary identifier and its immediate
// call form: a bare reference, foo(args), or Person() when Person is a
// declared struct name.
func (p *Parser) parseIdentifierExpression() (ast.Expression, error) {
	nameTok := p.advance()

	if !p.cur().IsSymbol("(") {
		return &ast.IdentifierRef{Token: nameTok, Name: nameTok.Literal}, nil
	}
	p.advance() // (

	var args []ast.Expression
	if !p.cur().IsSymbol(")") {
		for {
			arg, err := p.parseExpression(PrecLowest)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().IsSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}

	if len(args) == 0 && p.structNames[nameTok.Literal] {
		return &ast.StructInit{Token: nameTok, StructName: nameTok.Literal}, nil
	}
	return &ast.FunctionCall{Token: nameTok, Name: nameTok.Literal, Arguments: args}, nil
}

func (p *Parser) parseInfix(left ast.Expression) (ast.Expression, error) {
	opTok := p.cur()
	switch opTok.Literal {
	case "+", "-", "*", "/":
		p.advance()
		right, err := p.parseExpression(precedences[opTok.Literal])
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Token: opTok, Operator: opTok.Literal, Left: left, Right: right}, nil
	case "?":
		return p.parseTernary(left)
	case ".":
		return p.parseFieldAccess(left)
	default:
		return nil, p.errf(opTok, "unexpected operator %q", opTok.Literal)
	}
}

// parseTernary parses cond ? then : else. The else branch re-enters at lowest
// precedence, which makes the operator right-associative.
func (p *Parser) parseTernary(cond ast.Expression) (ast.Expression, error) {
	qTok := p.advance() // ?

	then, err := p.parseExpression(PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpression(PrecLowest)
	if err != nil {
		return nil, err
	}

	return &ast.TernaryExpr{Token: qTok, Condition: cond, Then: then, Else: elseExpr}, nil
}

func (p *Parser) parseFieldAccess(obj ast.Expression) (ast.Expression, error) {
	dotTok := p.advance() // .

	fieldTok, err := p.expectIdentifier("field name")
	if err != nil {
		return nil, err
	}

	return &ast.FieldAccess{Token: dotTok, Object: obj, Field: fieldTok.Literal}, nil
}
