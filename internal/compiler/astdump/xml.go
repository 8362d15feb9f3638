// Package astdump renders the AST as an XML-like structural dump. The dump is
// a diagnostic artifact only; no compiler stage consumes it.
package astdump

import (
	"fmt"
	"strings"

	"github.com/hyperlace-lang/hyperlace/internal/compiler/ast"
)

// WriteXML renders a whole program as an XML document with one element per
// statement kind.
func WriteXML(prog *ast.Program) string {
	var out strings.Builder
	out.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	writeStatements(&out, prog.Statements, 0, "Program")
	return out.String()
}

func writeStatements(out *strings.Builder, stmts []ast.Statement, depth int, wrapper string) {
	pad := strings.Repeat("  ", depth)
	fmt.Fprintf(out, "%s<%s>\n", pad, wrapper)
	for _, stmt := range stmts {
		writeStatement(out, stmt, depth+1)
	}
	fmt.Fprintf(out, "%s</%s>\n", pad, wrapper)
}

func writeStatement(out *strings.Builder, stmt ast.Statement, depth int) {
	pad := strings.Repeat("  ", depth)
	switch s := stmt.(type) {
	case *ast.Assignment:
		fmt.Fprintf(out, "%s<Assignment>\n", pad)
		fmt.Fprintf(out, "%s  <Target>%s</Target>\n", pad, s.Name)
		fmt.Fprintf(out, "%s  <Value>%s</Value>\n", pad, exprString(s.Value))
		fmt.Fprintf(out, "%s</Assignment>\n", pad)

	case *ast.FunctionDef:
		fmt.Fprintf(out, "%s<Function name=%q>\n", pad, s.Name)
		for _, p := range s.Params {
			fmt.Fprintf(out, "%s  <Param>%s</Param>\n", pad, p)
		}
		writeStatements(out, s.Body, depth+1, "Body")
		fmt.Fprintf(out, "%s</Function>\n", pad)

	case *ast.IfStatement:
		fmt.Fprintf(out, "%s<If>\n", pad)
		fmt.Fprintf(out, "%s  <Condition>%s</Condition>\n", pad, exprString(s.Condition))
		writeStatements(out, s.Then, depth+1, "Then")
		if s.Else != nil {
			writeStatements(out, s.Else, depth+1, "Else")
		}
		fmt.Fprintf(out, "%s</If>\n", pad)

	case *ast.WhileLoop:
		fmt.Fprintf(out, "%s<While>\n", pad)
		fmt.Fprintf(out, "%s  <Condition>%s</Condition>\n", pad, exprString(s.Condition))
		writeStatements(out, s.Body, depth+1, "Body")
		fmt.Fprintf(out, "%s</While>\n", pad)

	case *ast.ForLoop:
		fmt.Fprintf(out, "%s<For>\n", pad)
		fmt.Fprintf(out, "%s  <Initializer>\n", pad)
		writeStatement(out, s.Init, depth+2)
		fmt.Fprintf(out, "%s  </Initializer>\n", pad)
		fmt.Fprintf(out, "%s  <Condition>%s</Condition>\n", pad, exprString(s.Condition))
		fmt.Fprintf(out, "%s  <Increment>\n", pad)
		writeStatement(out, s.Increment, depth+2)
		fmt.Fprintf(out, "%s  </Increment>\n", pad)
		writeStatements(out, s.Body, depth+1, "Body")
		fmt.Fprintf(out, "%s</For>\n", pad)

	case *ast.StructDef:
		fmt.Fprintf(out, "%s<Struct name=%q>\n", pad, s.Name)
		for _, f := range s.Fields {
			fmt.Fprintf(out, "%s  <Field>%s</Field>\n", pad, f)
		}
		fmt.Fprintf(out, "%s</Struct>\n", pad)

	case *ast.EnumDef:
		fmt.Fprintf(out, "%s<Enum name=%q>\n", pad, s.Name)
		for _, v := range s.Variants {
			fmt.Fprintf(out, "%s  <Variant>%s</Variant>\n", pad, v)
		}
		fmt.Fprintf(out, "%s</Enum>\n", pad)

	case *ast.ReturnStatement:
		if s.Value == nil {
			fmt.Fprintf(out, "%s<Return/>\n", pad)
		} else {
			fmt.Fprintf(out, "%s<Return>%s</Return>\n", pad, exprString(s.Value))
		}
	}
}

func exprString(expr ast.Expression) string {
	if expr == nil {
		return ""
	}
	return xmlEscape(expr.String())
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
