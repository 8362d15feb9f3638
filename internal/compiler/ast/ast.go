package ast

import (
	"bytes"
	"strings"

	"github.com/hyperlace-lang/hyperlace/internal/compiler/token"
)

// --- Interfaces ---

type Node interface {
	TokenLiteral() string
	String() string
}

// Statement produces effects or control flow.
type Statement interface {
	Node
	statementNode()
}

// Expression produces a value.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// --- Program ---

// Program is an ordered sequence of top-level statements; order is execution
// order.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// --- Statements ---

// Assignment -> x = expr;  (also the desugared form of x += expr;)
type Assignment struct {
	Token   token.Token // =
	Name    string
	Value   Expression
	Mutable bool
}

func (a *Assignment) statementNode()       {}
func (a *Assignment) TokenLiteral() string { return a.Token.Literal }
func (a *Assignment) String() string {
	var out bytes.Buffer
	out.WriteString(a.Name + " = ")
	if a.Value != nil {
		out.WriteString(a.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// FunctionDef -> Start name(a, b) { ... }
type FunctionDef struct {
	Token  token.Token // Start
	Name   string
	Params []string
	Body   []Statement
}

func (f *FunctionDef) statementNode()       {}
func (f *FunctionDef) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionDef) String() string {
	var out bytes.Buffer
	out.WriteString("Start " + f.Name + "(" + strings.Join(f.Params, ", ") + ") ")
	out.WriteString(blockString(f.Body))
	return out.String()
}

// IfStatement -> if (cond) { ... } else { ... }
type IfStatement struct {
	Token     token.Token // if
	Condition Expression
	Then      []Statement
	Else      []Statement // nil when there is no else branch
}

func (i *IfStatement) statementNode()       {}
func (i *IfStatement) TokenLiteral() string { return i.Token.Literal }
func (i *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (" + i.Condition.String() + ") ")
	out.WriteString(blockString(i.Then))
	if i.Else != nil {
		out.WriteString(" else ")
		out.WriteString(blockString(i.Else))
	}
	return out.String()
}

// WhileLoop -> while (cond) { ... }
type WhileLoop struct {
	Token     token.Token // while
	Condition Expression
	Body      []Statement
}

func (w *WhileLoop) statementNode()       {}
func (w *WhileLoop) TokenLiteral() string { return w.Token.Literal }
func (w *WhileLoop) String() string {
	return "while (" + w.Condition.String() + ") " + blockString(w.Body)
}

// ForLoop -> for (init; cond; incr) { ... }
type ForLoop struct {
	Token     token.Token // for
	Init      Statement
	Condition Expression
	Increment Statement
	Body      []Statement
}

func (f *ForLoop) statementNode()       {}
func (f *ForLoop) TokenLiteral() string { return f.Token.Literal }
func (f *ForLoop) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	out.WriteString(f.Init.String() + " ")
	out.WriteString(f.Condition.String() + "; ")
	out.WriteString(strings.TrimSuffix(f.Increment.String(), ";"))
	out.WriteString(") ")
	out.WriteString(blockString(f.Body))
	return out.String()
}

// StructDef -> Init Person { name; age; }
type StructDef struct {
	Token  token.Token // Init
	Name   string
	Fields []string
}

func (s *StructDef) statementNode()       {}
func (s *StructDef) TokenLiteral() string { return s.Token.Literal }
func (s *StructDef) String() string {
	return "Init " + s.Name + " { " + strings.Join(s.Fields, "; ") + " }"
}

// EnumDef -> enum Color { Red, Green, Blue }
type EnumDef struct {
	Token    token.Token // enum
	Name     string
	Variants []string
}

func (e *EnumDef) statementNode()       {}
func (e *EnumDef) TokenLiteral() string { return e.Token.Literal }
func (e *EnumDef) String() string {
	return "enum " + e.Name + " { " + strings.Join(e.Variants, ", ") + " }"
}

// ReturnStatement -> return expr; or return;
type ReturnStatement struct {
	Token token.Token // return
	Value Expression  // nil for a bare return
}

func (r *ReturnStatement) statementNode()       {}
func (r *ReturnStatement) TokenLiteral() string { return r.Token.Literal }
func (r *ReturnStatement) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

// --- Expressions ---

// NumberLiteral keeps the numeric text verbatim; no numeric conversion
// happens before codegen.
type NumberLiteral struct {
	Token token.Token
	Value string
}

func (n *NumberLiteral) expressionNode()        {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string { return n.Value }
func (n *NumberLiteral) GetToken() token.Token { return n.Token }

// IdentifierRef is a bare variable reference.
type IdentifierRef struct {
	Token token.Token
	Name  string
}

func (i *IdentifierRef) expressionNode()       {}
func (i *IdentifierRef) TokenLiteral() string { return i.Token.Literal }
func (i *IdentifierRef) String() string { return i.Name }
func (i *IdentifierRef) GetToken() token.Token { return i.Token }

// BinaryExpr -> left op right
type BinaryExpr struct {
	Token    token.Token // the operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpr) expressionNode()       {}
func (b *BinaryExpr) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpr) String() string { return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")" }
func (b *BinaryExpr) GetToken() token.Token { return b.Token }

// TernaryExpr -> cond ? then : else
type TernaryExpr struct {
	Token     token.Token // ?
	Condition Expression
	Then      Expression
	Else      Expression
}

func (t *TernaryExpr) expressionNode()       {}
func (t *TernaryExpr) TokenLiteral() string { return t.Token.Literal }
func (t *TernaryExpr) String() string {
	return "(" + t.Condition.String() + " ? " + t.Then.String() + " : " + t.Else.String() + ")"
}
func (t *TernaryExpr) GetToken() token.Token { return t.Token }

// FunctionCall -> callee(arg1, arg2)
type FunctionCall struct {
	Token     token.Token // the callee identifier
	Name      string
	Arguments []Expression
}

func (f *FunctionCall) expressionNode()      {}
func (f *FunctionCall) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionCall) String() string {
	args := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		args[i] = a.String()
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}
func (f *FunctionCall) GetToken() token.Token { return f.Token }

// StructInit -> Person()  (zero-argument call on a declared struct name)
type StructInit struct {
	Token      token.Token
	StructName string
}

func (s *StructInit) expressionNode()       {}
func (s *StructInit) TokenLiteral() string { return s.Token.Literal }
func (s *StructInit) String() string { return s.StructName + "()" }
func (s *StructInit) GetToken() token.Token { return s.Token }

// FieldAccess -> object.field, left-associative and chainable.
type FieldAccess struct {
	Token  token.Token // .
	Object Expression
	Field  string
}

func (f *FieldAccess) expressionNode()       {}
func (f *FieldAccess) TokenLiteral() string { return f.Token.Literal }
func (f *FieldAccess) String() string { return f.Object.String() + "." + f.Field }
func (f *FieldAccess) GetToken() token.Token { return f.Token }

func blockString(stmts []Statement) string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range stmts {
		out.WriteString("\t" + s.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}
