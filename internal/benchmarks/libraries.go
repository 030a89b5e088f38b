package benchmarks

import (
	"bytes"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	godebug "github.com/kylelemons/godebug/diff"
	mb0 "github.com/mb0/diff"
	gointernal "github.com/rogpeppe/go-internal/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
	"znkr.io/dmp"
	"znkr.io/dmp/textdiff"
)

// Impl is a line diff implementation under benchmark. Diff returns a human readable rendering of
// the line diff of x and y. The renderings of different implementations are only roughly
// comparable, none of them is required to be a valid unified diff.
type Impl struct {
	Name string
	Diff func(x, y []byte) []byte
}

var Impls = []Impl{
	{"znkr-dmp", dmpLines},
	{"znkr-dmp-indent", dmpLinesIndent},
	{"znkr-dmp-chars", dmpChars},
	{"go-internal", goInternal},
	{"diffmatchpatch", sergi},
	{"godebug", godebugDiff},
	{"mb0", mb0Diff},
	{"udiff", udiffUnified},
}

func dmpLines(x, y []byte) []byte {
	return render(textdiff.Lines(string(x), string(y)))
}

func dmpLinesIndent(x, y []byte) []byte {
	return render(textdiff.Lines(string(x), string(y), textdiff.IndentHeuristic()))
}

// dmpChars renders a character diff. Edits don't end at line boundaries, so lines are split
// wherever an edit starts or ends.
func dmpChars(x, y []byte) []byte {
	return render(dmp.Diff(string(x), string(y)))
}

func goInternal(x, y []byte) []byte {
	return gointernal.Diff("x", x, "y", y)
}

func sergi(x, y []byte) []byte {
	other := diffmatchpatch.New()
	rx, ry, lines := other.DiffLinesToRunes(string(x), string(y))
	diffs := other.DiffCharsToLines(other.DiffMainRunes(rx, ry, false), lines)

	var buf bytes.Buffer
	for _, d := range diffs {
		writeLines(&buf, prefixes[d.Type], d.Text)
	}
	return buf.Bytes()
}

var prefixes = map[diffmatchpatch.Operation]string{
	diffmatchpatch.DiffInsert: "+",
	diffmatchpatch.DiffDelete: "-",
	diffmatchpatch.DiffEqual:  " ",
}

func godebugDiff(x, y []byte) []byte {
	return []byte(godebug.Diff(string(x), string(y)))
}

func mb0Diff(x, y []byte) []byte {
	xl := bytes.SplitAfter(x, []byte("\n"))
	yl := bytes.SplitAfter(y, []byte("\n"))
	var buf bytes.Buffer
	emit := func(prefix string, lines [][]byte) {
		for _, l := range lines {
			buf.WriteString(prefix)
			buf.Write(l)
		}
	}
	next := 0 // next unprinted line of x
	for _, ch := range mb0.Diff(len(xl), len(yl), mb0lines{xl, yl}) {
		emit(" ", xl[next:ch.A])
		emit("-", xl[ch.A:ch.A+ch.Del])
		emit("+", yl[ch.B:ch.B+ch.Ins])
		next = ch.A + ch.Del
	}
	emit(" ", xl[next:])
	return buf.Bytes()
}

func udiffUnified(x, y []byte) []byte {
	return []byte(udiff.Unified("x", "y", string(x), string(y)))
}

// render writes every line of diffs prefixed by its operation.
func render(diffs []dmp.Edit) []byte {
	var buf bytes.Buffer
	for _, d := range diffs {
		switch d.Op {
		case dmp.Insert:
			writeLines(&buf, "+", d.Text)
		case dmp.Delete:
			writeLines(&buf, "-", d.Text)
		case dmp.Equal:
			writeLines(&buf, " ", d.Text)
		}
	}
	return buf.Bytes()
}

func writeLines(buf *bytes.Buffer, prefix, text string) {
	for line := range strings.Lines(text) {
		buf.WriteString(prefix)
		buf.WriteString(line)
	}
}

// mb0lines implements mb0.Data for two lists of lines.
type mb0lines struct {
	x, y [][]byte
}

func (d mb0lines) Equal(i, j int) bool { return bytes.Equal(d.x[i], d.y[j]) }
