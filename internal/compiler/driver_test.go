package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperlace-lang/hyperlace/internal/compiler/diag"
)

func TestCompileSimpleAssignment(t *testing.T) {
	res, err := Compile("x = 5;")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if got := strings.TrimSpace(res.IRText); got != "STORE x <- NUM(5)" {
		t.Errorf("IR expected=%q, got=%q", "STORE x <- NUM(5)", got)
	}
	for _, want := range []string{"x dq 0", "mov rax, 5", "mov [x], rax", "mov rax, 60"} {
		if !strings.Contains(res.Assembly, want) {
			t.Errorf("assembly missing %q:\n%s", want, res.Assembly)
		}
	}
}

func TestCompileVariableReference(t *testing.T) {
	res, err := Compile("x = 5;\ny = x;")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := "STORE x <- NUM(5)\nSTORE y <- REF(x)\n"
	if res.IRText != want {
		t.Errorf("IR expected=%q, got=%q", want, res.IRText)
	}
}

func TestCompileMacroExpansion(t *testing.T) {
	res, err := Compile("x = 5;\n|inc|")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if !strings.Contains(res.Expanded.Text, "x = x + 1;") {
		t.Errorf("expanded text expected to contain %q, got=%q", "x = x + 1;", res.Expanded.Text)
	}
	if !strings.Contains(res.IRText, "BINOP t0 <- REF(x) + NUM(1)") {
		t.Errorf("IR missing incremented store:\n%s", res.IRText)
	}
}

func TestCompileUndeclaredVariable(t *testing.T) {
	_, err := Compile("y = x;")
	if err == nil {
		t.Fatalf("expected semantic error")
	}

	var d *diag.Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("expected *diag.Diagnostic, got %T", err)
	}
	if d.Stage != diag.StageSemantic {
		t.Errorf("stage expected=%s, got=%s", diag.StageSemantic, d.Stage)
	}
	if d.Message != "Use of undeclared variable 'x'" {
		t.Errorf("message expected=%q, got=%q", "Use of undeclared variable 'x'", d.Message)
	}
}

func TestCompileMacroAloneIsRejected(t *testing.T) {
	// |inc| expands to x = x + 1; with no prior declaration of x, which the
	// semantic pass must reject.
	_, err := Compile("|inc|")
	if err == nil {
		t.Fatalf("expected semantic error")
	}
	if !strings.Contains(err.Error(), "Use of undeclared variable 'x'") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCompileStageTagging(t *testing.T) {
	cases := []struct {
		input string
		stage diag.Stage
	}{
		{`x = "unterminated`, diag.StageLex},
		{"x = ;", diag.StageParse},
		{"y = q;", diag.StageSemantic},
	}

	for _, c := range cases {
		_, err := Compile(c.input)
		if err == nil {
			t.Errorf("%q: expected error", c.input)
			continue
		}
		var d *diag.Diagnostic
		if !errors.As(err, &d) {
			t.Errorf("%q: expected *diag.Diagnostic, got %T", c.input, err)
			continue
		}
		if d.Stage != c.stage {
			t.Errorf("%q: stage expected=%s, got=%s", c.input, c.stage, d.Stage)
		}
	}
}

func TestErrorPositionMapsToOriginalSource(t *testing.T) {
	// The parse error sits on line 3 of the original file. Macro expansion
	// flattens everything to one line; the diagnostic must still point at the
	// original position.
	_, err := Compile("x = 1;\n|inc|\ny = ;")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	var d *diag.Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("expected *diag.Diagnostic, got %T", err)
	}
	if d.Line != 3 {
		t.Errorf("line expected=3, got=%d (%v)", d.Line, err)
	}
}

func TestCompileWithSharedTableIsolation(t *testing.T) {
	res1, err := Compile("x = 1; |inc|")
	if err != nil {
		t.Fatalf("first Compile failed: %v", err)
	}
	res2, err := Compile("x = 1; |inc|")
	if err != nil {
		t.Fatalf("second Compile failed: %v", err)
	}
	if res1.IRText != res2.IRText {
		t.Errorf("compilations diverged:\n%s\nvs\n%s", res1.IRText, res2.IRText)
	}
}

func TestCompileAndWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.hl")
	if err := os.WriteFile(src, []byte("x = 5;\ny = x;"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	asmPath, err := CompileAndWrite(src, outDir)
	if err != nil {
		t.Fatalf("CompileAndWrite failed: %v", err)
	}
	if asmPath != filepath.Join(outDir, "prog.asm") {
		t.Errorf("asm path expected=%q, got=%q", filepath.Join(outDir, "prog.asm"), asmPath)
	}

	for _, name := range []string{"prog.fir", "prog.asm", "prog.ast"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	irText, err := os.ReadFile(filepath.Join(outDir, "prog.fir"))
	if err != nil {
		t.Fatalf("reading IR artifact: %v", err)
	}
	if string(irText) != "STORE x <- NUM(5)\nSTORE y <- REF(x)\n" {
		t.Errorf("IR artifact content unexpected: %q", irText)
	}

	astText, err := os.ReadFile(filepath.Join(outDir, "prog.ast"))
	if err != nil {
		t.Fatalf("reading AST artifact: %v", err)
	}
	if !strings.Contains(string(astText), "<Program>") {
		t.Errorf("AST artifact missing root element: %q", astText)
	}
}

func TestCompileAndWriteRejectsWrongExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.txt")
	if err := os.WriteFile(src, []byte("x = 5;"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := CompileAndWrite(src, filepath.Join(dir, "out"))
	if err == nil {
		t.Fatalf("expected extension error")
	}
	var d *diag.Diagnostic
	if !errors.As(err, &d) || d.Stage != diag.StageIO {
		t.Errorf("expected io diagnostic, got %v", err)
	}
}

func TestCompileAndWriteLeavesNoArtifactsOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.hl")
	if err := os.WriteFile(src, []byte("y = x;"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	if _, err := CompileAndWrite(src, outDir); err == nil {
		t.Fatalf("expected semantic error")
	}

	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("output directory created despite failed build")
	}
}

func TestResultSummary(t *testing.T) {
	res, err := Compile("x = 1;\ny = x + 2;")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := "parsed 2 statement(s), 3 IR instruction(s)"
	if res.Summary() != want {
		t.Errorf("summary expected=%q, got=%q", want, res.Summary())
	}
}

func TestFullPipelineProgram(t *testing.T) {
	src := `count = 3;
total = 0;
while (count) {
	total = total + count;
	count = count - 1;
}
Start double(n) {
	return n * 2;
}
result = double(total);`

	res, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	for _, want := range []string{
		"LABEL L_while_head_0",
		"FUNC double(n)",
		"CALL double, 1 ->",
		"RET TMP(",
	} {
		if !strings.Contains(res.IRText, want) {
			t.Errorf("IR missing %q:\n%s", want, res.IRText)
		}
	}
	for _, want := range []string{
		"count dq 0",
		"total dq 0",
		"result dq 0",
		"double:",
		"ret 8",
	} {
		if !strings.Contains(res.Assembly, want) {
			t.Errorf("assembly missing %q:\n%s", want, res.Assembly)
		}
	}
}
