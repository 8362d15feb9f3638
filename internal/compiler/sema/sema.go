package sema

import (
	"strings"

	"github.com/hyperlace-lang/hyperlace/internal/compiler/ast"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/diag"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/scope"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/symbols"
)

// Analyzer walks the AST in program order and enforces the declaration rules:
// every identifier reference must resolve to a name assigned (or bound as a
// parameter) earlier in the same or an enclosing scope, and return statements
// may only appear inside a function body. The first violation aborts the walk.
type Analyzer struct {
	current   *scope.Scope
	funcDepth int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{current: scope.NewScope(nil, "global")}
}

// Analyze validates a whole program against a fresh global scope.
func Analyze(prog *ast.Program) error {
	return NewAnalyzer().Analyze(prog)
}

func (a *Analyzer) Analyze(prog *ast.Program) error {
	return a.walkStatements(prog.Statements)
}

func (a *Analyzer) walkStatements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := a.walkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) walkStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Assignment:
		// The value is checked before the target is declared, so a
		// self-referential x = x + 1 is only legal when x already exists.
		if err := a.walkExpression(s.Value); err != nil {
			return err
		}
		if base, _, dotted := strings.Cut(s.Name, "."); dotted {
			// A field store requires the base variable itself to exist.
			if _, ok := a.current.Lookup(base); !ok {
				return diag.Semanticf("Use of undeclared variable '%s'", base)
			}
			return nil
		}
		a.current.Define(s.Name, symbols.SymbolInfo{Kind: symbols.KindVariable, Mutable: s.Mutable})
		return nil

	case *ast.FunctionDef:
		return a.walkFunction(s)

	case *ast.IfStatement:
		if err := a.walkExpression(s.Condition); err != nil {
			return err
		}
		if err := a.walkStatements(s.Then); err != nil {
			return err
		}
		return a.walkStatements(s.Else)

	case *ast.WhileLoop:
		if err := a.walkExpression(s.Condition); err != nil {
			return err
		}
		return a.walkStatements(s.Body)

	case *ast.ForLoop:
		if err := a.walkStatement(s.Init); err != nil {
			return err
		}
		if err := a.walkExpression(s.Condition); err != nil {
			return err
		}
		if err := a.walkStatement(s.Increment); err != nil {
			return err
		}
		return a.walkStatements(s.Body)

	case *ast.StructDef:
		a.current.Define(s.Name, symbols.SymbolInfo{Kind: symbols.KindStruct})
		return nil

	case *ast.EnumDef:
		a.current.Define(s.Name, symbols.SymbolInfo{Kind: symbols.KindEnum})
		for i, variant := range s.Variants {
			a.current.Define(variant, symbols.SymbolInfo{Kind: symbols.KindEnumVariant, Index: i})
		}
		return nil

	case *ast.ReturnStatement:
		if a.funcDepth == 0 {
			return diag.Semanticf("return statement used outside a function")
		}
		if s.Value != nil {
			return a.walkExpression(s.Value)
		}
		return nil

	default:
		return diag.Semanticf("unsupported statement kind %T", stmt)
	}
}

// walkFunction analyzes a function body in a fresh scope. The scope is popped
// on exit whether or not analysis succeeds.
func (a *Analyzer) walkFunction(fn *ast.FunctionDef) error {
	a.current = scope.NewScope(a.current, fn.Name)
	a.funcDepth++
	defer func() {
		a.funcDepth--
		a.current = a.current.Outer
	}()

	for i, param := range fn.Params {
		a.current.Define(param, symbols.SymbolInfo{Kind: symbols.KindParam, Mutable: true, Index: i})
	}
	return a.walkStatements(fn.Body)
}

func (a *Analyzer) walkExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.NumberLiteral, *ast.StructInit:
		return nil

	case *ast.IdentifierRef:
		if _, ok := a.current.Lookup(e.Name); !ok {
			return diag.Semanticf("Use of undeclared variable '%s'", e.Name)
		}
		return nil

	case *ast.BinaryExpr:
		if err := a.walkExpression(e.Left); err != nil {
			return err
		}
		return a.walkExpression(e.Right)

	case *ast.TernaryExpr:
		if err := a.walkExpression(e.Condition); err != nil {
			return err
		}
		if err := a.walkExpression(e.Then); err != nil {
			return err
		}
		return a.walkExpression(e.Else)

	case *ast.FunctionCall:
		for _, arg := range e.Arguments {
			if err := a.walkExpression(arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.FieldAccess:
		return a.walkExpression(e.Object)

	default:
		return diag.Semanticf("unsupported expression kind %T", expr)
	}
}
