package ir

import (
	"fmt"
	"strings"
)

// OperandKind classifies an instruction operand.
type OperandKind int

const (
	KindNum OperandKind = iota // numeric literal, textual value
	KindRef                    // named storage cell
	KindTmp                    // compiler temporary
	KindArg                    // function parameter slot
)

// Operand is a value source (or STORE destination). Name is set for NUM and
// REF operands, Index for TMP and ARG operands.
type Operand struct {
	Kind  OperandKind
	Name  string
	Index int
}

func Num(text string) Operand { return Operand{Kind: KindNum, Name: text} }
func Ref(name string) Operand { return Operand{Kind: KindRef, Name: name} }
func Tmp(index int) Operand   { return Operand{Kind: KindTmp, Index: index} }
func Arg(index int) Operand   { return Operand{Kind: KindArg, Index: index} }

func (o Operand) String() string {
	switch o.Kind {
	case KindNum:
		return fmt.Sprintf("NUM(%s)", o.Name)
	case KindRef:
		return fmt.Sprintf("REF(%s)", o.Name)
	case KindTmp:
		return fmt.Sprintf("TMP(t%d)", o.Index)
	case KindArg:
		return fmt.Sprintf("ARG(%d)", o.Index)
	}
	return "?"
}

// Instr is one linear IR instruction. Instruction order is control-flow
// order; labels and jumps express everything beyond straight-line code.
type Instr interface {
	instr()
	String() string
}

// Store writes a value into a named cell or a parameter slot.
type Store struct {
	Target Operand // KindRef or KindArg
	Src    Operand
}

func (Store) instr() {}
func (s Store) String() string {
	if s.Target.Kind == KindRef {
		return fmt.Sprintf("STORE %s <- %s", s.Target.Name, s.Src)
	}
	return fmt.Sprintf("STORE %s <- %s", s.Target, s.Src)
}

// Copy moves a value into a temporary.
type Copy struct {
	Dst int
	Src Operand
}

func (Copy) instr()           {}
func (c Copy) String() string { return fmt.Sprintf("COPY t%d <- %s", c.Dst, c.Src) }

// BinOp applies an arithmetic operator and leaves the result in a temporary.
type BinOp struct {
	Dst   int
	Op    string // +, -, *, /
	Left  Operand
	Right Operand
}

func (BinOp) instr() {}
func (b BinOp) String() string {
	return fmt.Sprintf("BINOP t%d <- %s %s %s", b.Dst, b.Left, b.Op, b.Right)
}

// Label marks a jump target.
type Label struct {
	Name string
}

func (Label) instr()           {}
func (l Label) String() string { return fmt.Sprintf("LABEL %s", l.Name) }

// Jmp is an unconditional jump.
type Jmp struct {
	Target string
}

func (Jmp) instr()           {}
func (j Jmp) String() string { return fmt.Sprintf("JMP %s", j.Target) }

// Jz jumps when the condition evaluates to zero.
type Jz struct {
	Cond   Operand
	Target string
}

func (Jz) instr()           {}
func (j Jz) String() string { return fmt.Sprintf("JZ %s -> %s", j.Cond, j.Target) }

// Param pushes one call argument. Arguments are pushed right-to-left.
type Param struct {
	Src Operand
}

func (Param) instr()           {}
func (p Param) String() string { return fmt.Sprintf("PARAM %s", p.Src) }

// Call invokes a function; the callee pops its own frame. The result lands in
// a temporary.
type Call struct {
	Dst   int
	Name  string
	NArgs int
}

func (Call) instr()           {}
func (c Call) String() string { return fmt.Sprintf("CALL %s, %d -> t%d", c.Name, c.NArgs, c.Dst) }

// Ret returns from the current function. Src is nil for a bare return.
type Ret struct {
	Src *Operand
}

func (Ret) instr() {}
func (r Ret) String() string {
	if r.Src == nil {
		return "RET"
	}
	return fmt.Sprintf("RET %s", *r.Src)
}

// FuncBegin opens a function body in the instruction stream. Function bodies
// follow all top-level code.
type FuncBegin struct {
	Name   string
	Params []string
}

func (FuncBegin) instr() {}
func (f FuncBegin) String() string {
	return fmt.Sprintf("FUNC %s(%s)", f.Name, strings.Join(f.Params, ", "))
}

// FuncEnd closes a function body.
type FuncEnd struct {
	Name string
}

func (FuncEnd) instr()           {}
func (f FuncEnd) String() string { return fmt.Sprintf("ENDFUNC %s", f.Name) }

// Program is the complete lowered unit: all top-level instructions in program
// order, followed by function bodies.
type Program struct {
	Instrs []Instr

	// Cells lists named storage cells in first-use order; Temps is the number
	// of temporaries allocated across the whole program.
	Cells []string
	Temps int
}

// String renders the flat textual instruction log written to the .fir file.
func (p *Program) String() string {
	var out strings.Builder
	for _, ins := range p.Instrs {
		out.WriteString(ins.String())
		out.WriteString("\n")
	}
	return out.String()
}
