package diag

import "fmt"

// Stage identifies the pipeline stage a diagnostic originated from.
type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StageSemantic Stage = "semantic"
	StageEmit     Stage = "emit"
	StageCodegen  Stage = "codegen"
	StageIO       Stage = "io"
)

// Diagnostic is the single error type every compiler stage reports. The
// pipeline aborts on the first diagnostic; there is no warning tier.
type Diagnostic struct {
	Stage   Stage
	Message string
	Line    int // 1-based, 0 when the stage has no position (semantic, io)
	Column  int
}

func (d *Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%d:%d: %s error: %s", d.Line, d.Column, d.Stage, d.Message)
	}
	return fmt.Sprintf("%s error: %s", d.Stage, d.Message)
}

func Lexf(line, col int, format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: StageLex, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func Parsef(line, col int, format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: StageParse, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func Semanticf(format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: StageSemantic, Message: fmt.Sprintf(format, args...)}
}

func Emitf(format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: StageEmit, Message: fmt.Sprintf(format, args...)}
}

func Codegenf(format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: StageCodegen, Message: fmt.Sprintf(format, args...)}
}

func IOf(format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: StageIO, Message: fmt.Sprintf(format, args...)}
}
