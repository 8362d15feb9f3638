package codegen

import (
	"fmt"
	"strings"

	"github.com/hyperlace-lang/hyperlace/internal/compiler/diag"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/ir"
)

// Generator translates a lowered IR program into NASM x86-64 assembly text.
// Values move through the rax scratch register; rbx holds the second operand
// of arithmetic. There is no register allocation: every named value lives in
// an 8-byte data cell, parameters live on the caller's stack.
type Generator struct {
	builder strings.Builder

	// nParams is the parameter count of the function currently being
	// emitted, used by ret to pop the callee's own frame.
	nParams int
}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the whole program: a .data section with one zeroed
// quadword cell per name in first-use order, then a .text section holding the
// top-level code, the process exit sequence, and the function bodies.
func Generate(prog *ir.Program) (string, error) {
	return NewGenerator().Generate(prog)
}

func (g *Generator) Generate(prog *ir.Program) (string, error) {
	g.line("section .data")
	for _, cell := range prog.Cells {
		g.line(cellName(cell) + " dq 0")
	}
	for i := 0; i < prog.Temps; i++ {
		g.line(fmt.Sprintf("tmp%d dq 0", i))
	}

	g.line("")
	g.line("section .text")
	g.line(" global _start")
	g.line("_start:")

	exited := false
	for _, ins := range prog.Instrs {
		if _, ok := ins.(ir.FuncBegin); ok && !exited {
			g.emitExit()
			exited = true
		}
		if err := g.emitInstr(ins); err != nil {
			return "", err
		}
	}
	if !exited {
		g.emitExit()
	}

	return g.builder.String(), nil
}

func (g *Generator) line(s string) {
	g.builder.WriteString(s)
	g.builder.WriteString("\n")
}

func (g *Generator) ins(format string, args ...any) {
	g.line("    " + fmt.Sprintf(format, args...))
}

// emitExit writes the fixed exit-code-zero sequence.
func (g *Generator) emitExit() {
	g.ins("mov rax, 60")
	g.ins("xor rdi, rdi")
	g.ins("syscall")
}

func (g *Generator) emitInstr(instr ir.Instr) error {
	switch ins := instr.(type) {
	case ir.Store:
		g.load("rax", ins.Src)
		switch ins.Target.Kind {
		case ir.KindRef:
			g.ins("mov [%s], rax", cellName(ins.Target.Name))
		case ir.KindArg:
			g.ins("mov [rbp+%d], rax", argOffset(ins.Target.Index))
		default:
			return diag.Codegenf("invalid store target %s", ins.Target)
		}
		return nil

	case ir.Copy:
		g.load("rax", ins.Src)
		g.ins("mov [tmp%d], rax", ins.Dst)
		return nil

	case ir.BinOp:
		g.load("rax", ins.Left)
		g.load("rbx", ins.Right)
		switch ins.Op {
		case "+":
			g.ins("add rax, rbx")
		case "-":
			g.ins("sub rax, rbx")
		case "*":
			g.ins("imul rax, rbx")
		case "/":
			g.ins("cqo")
			g.ins("idiv rbx")
		default:
			return diag.Codegenf("unknown operator %q", ins.Op)
		}
		g.ins("mov [tmp%d], rax", ins.Dst)
		return nil

	case ir.Label:
		g.line(ins.Name + ":")
		return nil

	case ir.Jmp:
		g.ins("jmp %s", ins.Target)
		return nil

	case ir.Jz:
		g.load("rax", ins.Cond)
		g.ins("cmp rax, 0")
		g.ins("je %s", ins.Target)
		return nil

	case ir.Param:
		g.load("rax", ins.Src)
		g.ins("push rax")
		return nil

	case ir.Call:
		g.ins("call %s", ins.Name)
		g.ins("mov [tmp%d], rax", ins.Dst)
		return nil

	case ir.Ret:
		if ins.Src != nil {
			g.load("rax", *ins.Src)
		} else {
			g.ins("xor rax, rax")
		}
		g.ins("mov rsp, rbp")
		g.ins("pop rbp")
		g.ins("ret %d", 8*g.nParams)
		return nil

	case ir.FuncBegin:
		g.line("")
		g.line(ins.Name + ":")
		g.ins("push rbp")
		g.ins("mov rbp, rsp")
		g.nParams = len(ins.Params)
		return nil

	case ir.FuncEnd:
		g.nParams = 0
		return nil

	default:
		return diag.Codegenf("unknown instruction %T", instr)
	}
}

// load moves an operand's value into the given register.
func (g *Generator) load(reg string, op ir.Operand) {
	switch op.Kind {
	case ir.KindNum:
		g.ins("mov %s, %s", reg, op.Name)
	case ir.KindRef:
		g.ins("mov %s, [%s]", reg, cellName(op.Name))
	case ir.KindTmp:
		g.ins("mov %s, [tmp%d]", reg, op.Index)
	case ir.KindArg:
		g.ins("mov %s, [rbp+%d]", reg, argOffset(op.Index))
	}
}

// argOffset maps a parameter slot to its frame offset: return address and the
// saved rbp sit below the arguments.
func argOffset(slot int) int {
	return 16 + 8*slot
}

// cellName makes a dotted field path usable as a NASM label.
func cellName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
