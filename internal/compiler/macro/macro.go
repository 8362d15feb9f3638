package macro

import (
	"sort"
	"strings"
)

// Table maps literal textual triggers to literal replacement text. A Table is
// a plain value owned by one compilation run; nothing here is process-global.
type Table struct {
	macros map[string]string
}

func NewTable() *Table {
	return &Table{macros: make(map[string]string)}
}

// Define registers a trigger. The replacement is inserted verbatim at
// expansion time and is not itself re-expanded.
func (t *Table) Define(trigger, replacement string) {
	t.macros[trigger] = replacement
}

// LoadDefaults installs the stock shorthand macros.
func (t *Table) LoadDefaults() {
	t.Define("|inc|", "x = x + 1;")
	t.Define("|dec|", "x = x - 1;")
	t.Define("|reset|", "x = 0;")
}

// segment records where one expanded chunk (a passthrough word or one macro
// replacement) begins in the expanded text, and the original position of the
// word that produced it.
type segment struct {
	offset int // 0-based byte offset into the expanded text
	line   int // 1-based original line
	column int // 1-based original column
}

// Result is one expansion: the expanded text plus enough bookkeeping to map
// positions in the expanded text back to the original source.
type Result struct {
	Text string
	segs []segment
}

// Expand whitespace-tokenizes src, substitutes exact trigger matches, and
// rejoins with single spaces. It is a single non-recursive pass: replacement
// text is never rescanned for further triggers. Original spacing and line
// breaks are not preserved; use OriginalPos to recover source positions.
func (t *Table) Expand(src string) Result {
	var out strings.Builder
	var segs []segment

	line, col := 1, 1
	i := 0
	for i < len(src) {
		ch := src[i]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			if ch == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
			continue
		}

		wordLine, wordCol := line, col
		start := i
		for i < len(src) && src[i] != ' ' && src[i] != '\t' && src[i] != '\r' && src[i] != '\n' {
			i++
			col++
		}
		word := src[start:i]

		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		segs = append(segs, segment{offset: out.Len(), line: wordLine, column: wordCol})
		if repl, ok := t.macros[word]; ok {
			out.WriteString(repl)
		} else {
			out.WriteString(word)
		}
	}

	return Result{Text: out.String(), segs: segs}
}

// OriginalPos maps a 1-based (line, column) position in the expanded text back
// to the original source position of the word that covers it. The expanded
// text is a single line, so any line other than 1 is returned unchanged.
func (r Result) OriginalPos(line, column int) (int, int) {
	if line != 1 || len(r.segs) == 0 {
		return line, column
	}
	offset := column - 1
	// First segment starting beyond the offset; the one before it covers it.
	n := sort.Search(len(r.segs), func(i int) bool { return r.segs[i].offset > offset })
	if n == 0 {
		n = 1
	}
	seg := r.segs[n-1]
	return seg.line, seg.column
}
