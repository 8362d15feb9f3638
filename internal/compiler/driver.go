package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperlace-lang/hyperlace/internal/compiler/ast"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/astdump"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/codegen"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/diag"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/ir"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/lexer"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/macro"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/parser"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/sema"
	"github.com/hyperlace-lang/hyperlace/internal/compiler/token"
)

// SourceExt is the required extension for Hyperlace source files.
const SourceExt = ".hl"

// Result holds every artifact of one successful compilation.
type Result struct {
	Expanded macro.Result
	Tokens   []token.Token
	Program  *ast.Program
	IR       *ir.Program
	IRText   string
	Assembly string
}

// Compile runs the full pipeline on an in-memory source blob using the
// default macro table. Any failure is a *diag.Diagnostic identifying the
// stage, with line/column mapped back to the original (pre-expansion) source.
func Compile(source string) (*Result, error) {
	table := macro.NewTable()
	table.LoadDefaults()
	return CompileWith(table, source)
}

// CompileWith is Compile with an explicit macro table, so independent
// compilations never share state.
func CompileWith(table *macro.Table, source string) (*Result, error) {
	expanded := table.Expand(source)

	res, err := compileExpanded(expanded.Text)
	if err != nil {
		return nil, remapPosition(err, expanded)
	}
	res.Expanded = expanded
	return res, nil
}

func compileExpanded(src string) (*Result, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}

	prog, err := parser.Parse(toks)
	if err != nil {
		return nil, err
	}

	if err := sema.Analyze(prog); err != nil {
		return nil, err
	}

	irProg, err := ir.Emit(prog)
	if err != nil {
		return nil, err
	}

	asm, err := codegen.Generate(irProg)
	if err != nil {
		return nil, err
	}

	return &Result{
		Tokens:   toks,
		Program:  prog,
		IR:       irProg,
		IRText:   irProg.String(),
		Assembly: asm,
	}, nil
}

// remapPosition rewrites a positioned diagnostic from expanded-text
// coordinates back to the original source.
func remapPosition(err error, expanded macro.Result) error {
	var d *diag.Diagnostic
	if errors.As(err, &d) && d.Line > 0 {
		d.Line, d.Column = expanded.OriginalPos(d.Line, d.Column)
	}
	return err
}

// CompileAndWrite compiles a source file and writes the IR listing, the
// assembly, and the AST dump next to each other under outDir. Nothing is
// written unless the whole pipeline succeeds. It returns the assembly path.
func CompileAndWrite(srcPath, outDir string) (string, error) {
	if err := validateExtension(srcPath); err != nil {
		return "", err
	}

	content, err := os.ReadFile(srcPath)
	if err != nil {
		return "", diag.IOf("reading %s: %v", srcPath, err)
	}

	res, err := Compile(string(content))
	if err != nil {
		return "", err
	}

	return writeArtifacts(res, srcPath, outDir)
}

func validateExtension(path string) error {
	if filepath.Ext(path) != SourceExt {
		return diag.IOf("source must have %s extension", SourceExt)
	}
	return nil
}

func writeArtifacts(res *Result, srcPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", diag.IOf("creating %s: %v", outDir, err)
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), SourceExt)
	irPath := filepath.Join(outDir, base+".fir")
	asmPath := filepath.Join(outDir, base+".asm")
	astPath := filepath.Join(outDir, base+".ast")

	if err := os.WriteFile(irPath, []byte(res.IRText), 0o644); err != nil {
		return "", diag.IOf("writing IR file: %v", err)
	}
	if err := os.WriteFile(asmPath, []byte(res.Assembly), 0o644); err != nil {
		return "", diag.IOf("writing ASM file: %v", err)
	}
	if err := os.WriteFile(astPath, []byte(astdump.WriteXML(res.Program)), 0o644); err != nil {
		return "", diag.IOf("writing AST file: %v", err)
	}

	return asmPath, nil
}

// Summary is the one-line status printed after a successful build.
func (r *Result) Summary() string {
	return fmt.Sprintf("parsed %d statement(s), %d IR instruction(s)",
		len(r.Program.Statements), len(r.IR.Instrs))
}
