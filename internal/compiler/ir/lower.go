package ir

import (
	"fmt"

	"github.com/hyperlace-lang/hyperlace/internal/compiler/ast"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/diag"
)

// Emitter lowers a validated AST to the linear IR. Every statement kind is
// lowered here; the code generator never reads the AST.
type Emitter struct {
	instrs     []Instr
	tempCount  int
	labelCount int

	cells    []string
	cellSeen map[string]bool

	// params maps parameter names to slots while lowering a function body;
	// nil at top level.
	params map[string]int

	// enum variants lower to their ordinal as a numeric literal
	enumVariants map[string]int

	funcs []*ast.FunctionDef
}

func NewEmitter() *Emitter {
	return &Emitter{
		cellSeen:     make(map[string]bool),
		enumVariants: make(map[string]int),
	}
}

// Emit lowers a whole program: top-level statements in program order, then
// the bodies of the functions they defined.
func Emit(prog *ast.Program) (*Program, error) {
	return NewEmitter().Emit(prog)
}

func (e *Emitter) Emit(prog *ast.Program) (*Program, error) {
	for _, stmt := range prog.Statements {
		if err := e.lowerStatement(stmt); err != nil {
			return nil, err
		}
	}
	// Index loop: lowering a body may queue further functions defined inside
	// it, and those must be lowered too.
	for i := 0; i < len(e.funcs); i++ {
		if err := e.lowerFunction(e.funcs[i]); err != nil {
			return nil, err
		}
	}
	return &Program{Instrs: e.instrs, Cells: e.cells, Temps: e.tempCount}, nil
}

func (e *Emitter) emit(ins Instr) {
	e.instrs = append(e.instrs, ins)
}

func (e *Emitter) newTemp() int {
	t := e.tempCount
	e.tempCount++
	return t
}

func (e *Emitter) newLabel() int {
	n := e.labelCount
	e.labelCount++
	return n
}

// cell registers a named storage cell on first use, preserving first-use
// order for the data section.
func (e *Emitter) cell(name string) Operand {
	if !e.cellSeen[name] {
		e.cellSeen[name] = true
		e.cells = append(e.cells, name)
	}
	return Ref(name)
}

func (e *Emitter) lowerStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Assignment:
		src, err := e.lowerExpression(s.Value)
		if err != nil {
			return err
		}
		e.emit(Store{Target: e.targetOperand(s.Name), Src: src})
		return nil

	case *ast.FunctionDef:
		// Bodies are lowered after all top-level code.
		e.funcs = append(e.funcs, s)
		return nil

	case *ast.IfStatement:
		return e.lowerIf(s)

	case *ast.WhileLoop:
		return e.lowerWhile(s)

	case *ast.ForLoop:
		return e.lowerFor(s)

	case *ast.ReturnStatement:
		if s.Value == nil {
			e.emit(Ret{})
			return nil
		}
		src, err := e.lowerExpression(s.Value)
		if err != nil {
			return err
		}
		e.emit(Ret{Src: &src})
		return nil

	case *ast.StructDef:
		// Declarations produce no instructions; field cells are created on
		// first access.
		return nil

	case *ast.EnumDef:
		for i, variant := range s.Variants {
			e.enumVariants[variant] = i
		}
		return nil

	default:
		return diag.Emitf("cannot lower statement kind %T", stmt)
	}
}

func (e *Emitter) lowerStatements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := e.lowerStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// targetOperand resolves an assignment target: a parameter slot inside a
// function body, a named cell otherwise.
func (e *Emitter) targetOperand(name string) Operand {
	if e.params != nil {
		if slot, ok := e.params[name]; ok {
			return Arg(slot)
		}
	}
	return e.cell(name)
}

func (e *Emitter) lowerIf(s *ast.IfStatement) error {
	n := e.newLabel()
	endLabel := fmt.Sprintf("L_if_end_%d", n)
	elseLabel := fmt.Sprintf("L_if_else_%d", n)

	cond, err := e.lowerExpression(s.Condition)
	if err != nil {
		return err
	}
	if s.Else != nil {
		e.emit(Jz{Cond: cond, Target: elseLabel})
	} else {
		e.emit(Jz{Cond: cond, Target: endLabel})
	}
	e.emit(Label{Name: fmt.Sprintf("L_if_then_%d", n)})
	if err := e.lowerStatements(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		e.emit(Jmp{Target: endLabel})
		e.emit(Label{Name: elseLabel})
		if err := e.lowerStatements(s.Else); err != nil {
			return err
		}
	}
	e.emit(Label{Name: endLabel})
	return nil
}

func (e *Emitter) lowerWhile(s *ast.WhileLoop) error {
	n := e.newLabel()
	headLabel := fmt.Sprintf("L_while_head_%d", n)
	endLabel := fmt.Sprintf("L_while_end_%d", n)

	e.emit(Label{Name: headLabel})
	cond, err := e.lowerExpression(s.Condition)
	if err != nil {
		return err
	}
	e.emit(Jz{Cond: cond, Target: endLabel})
	if err := e.lowerStatements(s.Body); err != nil {
		return err
	}
	e.emit(Jmp{Target: headLabel})
	e.emit(Label{Name: endLabel})
	return nil
}

func (e *Emitter) lowerFor(s *ast.ForLoop) error {
	n := e.newLabel()
	headLabel := fmt.Sprintf("L_for_head_%d", n)
	endLabel := fmt.Sprintf("L_for_end_%d", n)

	if err := e.lowerStatement(s.Init); err != nil {
		return err
	}
	e.emit(Label{Name: headLabel})
	cond, err := e.lowerExpression(s.Condition)
	if err != nil {
		return err
	}
	e.emit(Jz{Cond: cond, Target: endLabel})
	if err := e.lowerStatements(s.Body); err != nil {
		return err
	}
	if err := e.lowerStatement(s.Increment); err != nil {
		return err
	}
	e.emit(Jmp{Target: headLabel})
	e.emit(Label{Name: endLabel})
	return nil
}

func (e *Emitter) lowerFunction(fn *ast.FunctionDef) error {
	e.emit(FuncBegin{Name: fn.Name, Params: fn.Params})

	e.params = make(map[string]int, len(fn.Params))
	for i, p := range fn.Params {
		e.params[p] = i
	}
	defer func() { e.params = nil }()

	if err := e.lowerStatements(fn.Body); err != nil {
		return err
	}

	// Guarantee a return on the fall-through path.
	if _, ok := e.instrs[len(e.instrs)-1].(Ret); !ok {
		e.emit(Ret{})
	}
	e.emit(FuncEnd{Name: fn.Name})
	return nil
}

func (e *Emitter) lowerExpression(expr ast.Expression) (Operand, error) {
	switch x := expr.(type) {
	case *ast.NumberLiteral:
		return Num(x.Value), nil

	case *ast.IdentifierRef:
		if e.params != nil {
			if slot, ok := e.params[x.Name]; ok {
				return Arg(slot), nil
			}
		}
		if ordinal, ok := e.enumVariants[x.Name]; ok {
			return Num(fmt.Sprintf("%d", ordinal)), nil
		}
		return e.cell(x.Name), nil

	case *ast.BinaryExpr:
		left, err := e.lowerExpression(x.Left)
		if err != nil {
			return Operand{}, err
		}
		right, err := e.lowerExpression(x.Right)
		if err != nil {
			return Operand{}, err
		}
		t := e.newTemp()
		e.emit(BinOp{Dst: t, Op: x.Operator, Left: left, Right: right})
		return Tmp(t), nil

	case *ast.TernaryExpr:
		return e.lowerTernary(x)

	case *ast.FunctionCall:
		return e.lowerCall(x)

	case *ast.StructInit:
		// A struct instance starts as a fresh zero value.
		return Num("0"), nil

	case *ast.FieldAccess:
		path, err := fieldPath(x)
		if err != nil {
			return Operand{}, err
		}
		return e.cell(path), nil

	default:
		return Operand{}, diag.Emitf("cannot lower expression kind %T", expr)
	}
}

// lowerTernary materializes cond ? a : b through a temporary and a
// compare-and-branch pair.
func (e *Emitter) lowerTernary(x *ast.TernaryExpr) (Operand, error) {
	n := e.newLabel()
	elseLabel := fmt.Sprintf("L_tern_else_%d", n)
	endLabel := fmt.Sprintf("L_tern_end_%d", n)
	t := e.newTemp()

	cond, err := e.lowerExpression(x.Condition)
	if err != nil {
		return Operand{}, err
	}
	e.emit(Jz{Cond: cond, Target: elseLabel})

	then, err := e.lowerExpression(x.Then)
	if err != nil {
		return Operand{}, err
	}
	e.emit(Copy{Dst: t, Src: then})
	e.emit(Jmp{Target: endLabel})

	e.emit(Label{Name: elseLabel})
	elseOp, err := e.lowerExpression(x.Else)
	if err != nil {
		return Operand{}, err
	}
	e.emit(Copy{Dst: t, Src: elseOp})
	e.emit(Label{Name: endLabel})

	return Tmp(t), nil
}

// lowerCall evaluates arguments left to right, pushes them right to left, and
// captures the return value in a temporary.
func (e *Emitter) lowerCall(x *ast.FunctionCall) (Operand, error) {
	args := make([]Operand, len(x.Arguments))
	for i, arg := range x.Arguments {
		op, err := e.lowerExpression(arg)
		if err != nil {
			return Operand{}, err
		}
		args[i] = op
	}
	for i := len(args) - 1; i >= 0; i-- {
		e.emit(Param{Src: args[i]})
	}
	t := e.newTemp()
	e.emit(Call{Dst: t, Name: x.Name, NArgs: len(args)})
	return Tmp(t), nil
}

// fieldPath flattens a field-access chain rooted at an identifier into a
// dotted cell name, e.g. p.name.
func fieldPath(x *ast.FieldAccess) (string, error) {
	switch obj := x.Object.(type) {
	case *ast.IdentifierRef:
		return obj.Name + "." + x.Field, nil
	case *ast.FieldAccess:
		base, err := fieldPath(obj)
		if err != nil {
			return "", err
		}
		return base + "." + x.Field, nil
	default:
		return "", diag.Emitf("field access requires a named object, got %T", x.Object)
	}
}
