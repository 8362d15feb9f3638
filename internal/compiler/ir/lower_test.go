package ir

import (
	"strings"
	"testing"

	"github.com/hyperlace-lang/hyperlace/internal/compiler/lexer"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/parser"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/sema"
)

func lower(t *testing.T, input string) *Program {
	t.Helper()
	toks, err := lexer.Lex(input)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := sema.Analyze(prog); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	irProg, err := Emit(prog)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	return irProg
}

// lines splits the textual IR log, dropping the trailing empty entry.
func lines(p *Program) []string {
	text := strings.TrimSuffix(p.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestStoreNumberAndReference(t *testing.T) {
	p := lower(t, "x = 5;\ny = x;")

	got := lines(p)
	expected := []string{
		"STORE x <- NUM(5)",
		"STORE y <- REF(x)",
	}
	if len(got) != len(expected) {
		t.Fatalf("instruction count expected=%d, got=%d\n%s", len(expected), len(got), p.String())
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
	if len(p.Cells) != 2 || p.Cells[0] != "x" || p.Cells[1] != "y" {
		t.Errorf("cells expected=[x y], got=%v", p.Cells)
	}
}

func TestBinaryExpressionUsesTemp(t *testing.T) {
	p := lower(t, "x = 1;\ny = x + 2;")

	got := lines(p)
	expected := []string{
		"STORE x <- NUM(1)",
		"BINOP t0 <- REF(x) + NUM(2)",
		"STORE y <- TMP(t0)",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
	if p.Temps != 1 {
		t.Errorf("temps expected=1, got=%d", p.Temps)
	}
}

func TestNestedExpressionTempChain(t *testing.T) {
	p := lower(t, "x = 1 + 2 * 3;")

	got := lines(p)
	expected := []string{
		"BINOP t0 <- NUM(2) * NUM(3)",
		"BINOP t1 <- NUM(1) + TMP(t0)",
		"STORE x <- TMP(t1)",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestIfWithoutElse(t *testing.T) {
	p := lower(t, "x = 1;\nif (x) { y = 2; }")

	got := lines(p)
	expected := []string{
		"STORE x <- NUM(1)",
		"JZ REF(x) -> L_if_end_0",
		"LABEL L_if_then_0",
		"STORE y <- NUM(2)",
		"LABEL L_if_end_0",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestIfElseBranches(t *testing.T) {
	p := lower(t, "x = 1;\nif (x) { y = 2; } else { y = 3; }")

	got := lines(p)
	expected := []string{
		"STORE x <- NUM(1)",
		"JZ REF(x) -> L_if_else_0",
		"LABEL L_if_then_0",
		"STORE y <- NUM(2)",
		"JMP L_if_end_0",
		"LABEL L_if_else_0",
		"STORE y <- NUM(3)",
		"LABEL L_if_end_0",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestWhileLoopShape(t *testing.T) {
	p := lower(t, "x = 2;\nwhile (x) { x = x - 1; }")

	got := lines(p)
	expected := []string{
		"STORE x <- NUM(2)",
		"LABEL L_while_head_0",
		"JZ REF(x) -> L_while_end_0",
		"BINOP t0 <- REF(x) - NUM(1)",
		"STORE x <- TMP(t0)",
		"JMP L_while_head_0",
		"LABEL L_while_end_0",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestForLoopShape(t *testing.T) {
	p := lower(t, "for (i = 0; i; i = i - 1) { x = i; }")

	got := lines(p)
	expected := []string{
		"STORE i <- NUM(0)",
		"LABEL L_for_head_0",
		"JZ REF(i) -> L_for_end_0",
		"STORE x <- REF(i)",
		"BINOP t0 <- REF(i) - NUM(1)",
		"STORE i <- TMP(t0)",
		"JMP L_for_head_0",
		"LABEL L_for_end_0",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestLabelCountersAreDistinct(t *testing.T) {
	p := lower(t, `x = 1;
if (x) { y = 1; }
if (x) { y = 2; }
while (x) { x = x - 1; }`)

	text := p.String()
	for _, label := range []string{"L_if_end_0", "L_if_end_1", "L_while_head_2"} {
		if !strings.Contains(text, label) {
			t.Errorf("expected label %q in:\n%s", label, text)
		}
	}
}

func TestTernaryLowering(t *testing.T) {
	p := lower(t, "c = 1;\nx = c ? 10 : 20;")

	got := lines(p)
	expected := []string{
		"STORE c <- NUM(1)",
		"JZ REF(c) -> L_tern_else_0",
		"COPY t0 <- NUM(10)",
		"JMP L_tern_end_0",
		"LABEL L_tern_else_0",
		"COPY t0 <- NUM(20)",
		"LABEL L_tern_end_0",
		"STORE x <- TMP(t0)",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestFunctionLoweringAfterTopLevel(t *testing.T) {
	p := lower(t, `Start add(a, b) {
	c = a + b;
	return c;
}
x = add(3, 4);`)

	got := lines(p)
	expected := []string{
		"PARAM NUM(4)",
		"PARAM NUM(3)",
		"CALL add, 2 -> t0",
		"STORE x <- TMP(t0)",
		"FUNC add(a, b)",
		"BINOP t1 <- ARG(0) + ARG(1)",
		"STORE c <- TMP(t1)",
		"RET REF(c)",
		"ENDFUNC add",
	}
	if len(got) != len(expected) {
		t.Fatalf("instruction count expected=%d, got=%d\n%s", len(expected), len(got), p.String())
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestFunctionDefinedInsideFunctionIsLowered(t *testing.T) {
	p := lower(t, `Start outer() {
	Start inner() {
		return 1;
	}
	return inner();
}
x = outer();`)

	got := lines(p)
	expected := []string{
		"CALL outer, 0 -> t0",
		"STORE x <- TMP(t0)",
		"FUNC outer()",
		"CALL inner, 0 -> t1",
		"RET TMP(t1)",
		"ENDFUNC outer",
		"FUNC inner()",
		"RET NUM(1)",
		"ENDFUNC inner",
	}
	if len(got) != len(expected) {
		t.Fatalf("instruction count expected=%d, got=%d\n%s", len(expected), len(got), p.String())
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestParamsPushedRightToLeft(t *testing.T) {
	p := lower(t, `Start f(a, b, c) { return a; }
x = f(1, 2, 3);`)

	got := lines(p)
	expected := []string{
		"PARAM NUM(3)",
		"PARAM NUM(2)",
		"PARAM NUM(1)",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
}

func TestParameterAssignmentTargetsSlot(t *testing.T) {
	p := lower(t, `Start f(a) {
	a = a + 1;
	return a;
}`)

	text := p.String()
	if !strings.Contains(text, "STORE ARG(0) <- TMP(t0)") {
		t.Errorf("expected parameter slot store in:\n%s", text)
	}
}

func TestFallThroughReturnInserted(t *testing.T) {
	p := lower(t, "Start f() { x = 1; }")

	got := lines(p)
	last, prev := got[len(got)-1], got[len(got)-2]
	if last != "ENDFUNC f" {
		t.Errorf("final instr expected=%q, got=%q", "ENDFUNC f", last)
	}
	if prev != "RET" {
		t.Errorf("fall-through instr expected=%q, got=%q", "RET", prev)
	}
}

func TestEnumVariantLowersToOrdinal(t *testing.T) {
	p := lower(t, "enum Color { Red, Green, Blue }\nc = Green;")

	got := lines(p)
	if got[0] != "STORE c <- NUM(1)" {
		t.Errorf("instrs[0] expected=%q, got=%q", "STORE c <- NUM(1)", got[0])
	}
}

func TestStructInitAndFieldCells(t *testing.T) {
	p := lower(t, `Init Person {
	name;
	age;
}
p = Person();
p.age = 30;
x = p.age;`)

	got := lines(p)
	expected := []string{
		"STORE p <- NUM(0)",
		"STORE p.age <- NUM(30)",
		"STORE x <- REF(p.age)",
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("instrs[%d] expected=%q, got=%q", i, want, got[i])
		}
	}
	if len(p.Cells) != 3 || p.Cells[1] != "p.age" {
		t.Errorf("cells expected=[p p.age x], got=%v", p.Cells)
	}
}

func TestCellsInFirstUseOrder(t *testing.T) {
	p := lower(t, "b = 1;\na = b;\nc = a;")

	if len(p.Cells) != 3 || p.Cells[0] != "b" || p.Cells[1] != "a" || p.Cells[2] != "c" {
		t.Errorf("cells expected=[b a c], got=%v", p.Cells)
	}
}
