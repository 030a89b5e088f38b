// Copyright 2025 Florian Zenker (flo@znkr.io)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package indentheuristic shifts the boundaries of line edits to positions that are easier to read
// for humans. It's an implementation of the indentation heuristic by Michael Haggerty
// (https://github.com/mhagger/diff-slider-tools).
//
// An edit script is rarely the only solution with the same number of edits. A group of deleted
// lines that is followed by a line equal to the first line of the group can be slid down by one
// line without changing the result, and the same is true for sliding up. The same applies to
// groups of inserted lines. The heuristic uses this freedom to
//
//  1. merge adjacent groups if sliding makes them touch,
//  2. align groups of deletions with groups of insertions, if possible, and
//  3. otherwise, place the group where the indentation of the surrounding lines suggests a block
//     boundary.
//
// The scores used in (3) were fitted by Michael Haggerty to human rated diffs.
package indentheuristic

import (
	"cmp"

	"znkr.io/dmp/internal/edits"
	"znkr.io/dmp/internal/tokens"
)

// Never slide a group more than this many lines.
const maxSliding = 100

// Indentation is clamped to this value.
const maxIndent = 200

// Don't look at more than this number of consecutive blank lines.
const maxBlanks = 20

const (
	startOfFilePenalty              = 1   // No non-blank lines before the split
	endOfFilePenalty                = 21  // No non-blank lines after the split
	totalBlankWeight                = -30 // Weight for number of blank lines around the split
	postBlankWeight                 = 6   // Weight for number of blank lines after the split
	relativeIndentPenalty           = -4  // Indented more than predecessor
	relativeIndentWithBlankPenalty  = 10  // Indented more than predecessor, with blank lines
	relativeOutdentPenalty          = 24  // Indented less than predecessor
	relativeOutdentWithBlankPenalty = 17  // Indented less than predecessor, with blank lines
	relativeDentPenalty             = 23  // Indented less than predecessor but not less than successor
	relativeDentWithBlankPenalty    = 17  // Same as above, with blank lines
)

// Only the sign of the difference of the effective indents of two splits counts. It's weighted
// with this factor and added to the difference of their penalties.
const indentWeight = 60

// Apply shifts the deletions and insertions in diffs. The texts of all edits must consist of whole
// lines, only the very last line of each text may lack a trailing newline. The result describes
// the same texts as diffs.
func Apply(diffs []edits.Diff) []edits.Diff {
	var x, y side
	for _, d := range diffs {
		lines := tokens.SplitLines(d.Text)
		switch d.Op {
		case edits.Equal:
			x.add(lines, false)
			y.add(lines, false)
		case edits.Delete:
			x.add(lines, true)
		case edits.Insert:
			y.add(lines, true)
		}
	}
	// Sentinels, they are never changed.
	x.changed = append(x.changed, false)
	y.changed = append(y.changed, false)

	slide(&x, &y)
	slide(&y, &x)
	return join(&x, &y)
}

// side is one of the two texts of a diff.
type side struct {
	lines   []string
	changed []bool // one entry per line plus a sentinel
}

func (s *side) add(lines []string, changed bool) {
	s.lines = append(s.lines, lines...)
	for range lines {
		s.changed = append(s.changed, changed)
	}
}

// join converts x and y back into an edit script.
func join(x, y *side) []edits.Diff {
	var out []edits.Diff
	emit := func(op edits.Op, lines []string) {
		if len(lines) == 0 {
			return
		}
		var n int
		for _, l := range lines {
			n += len(l)
		}
		buf := make([]byte, 0, n)
		for _, l := range lines {
			buf = append(buf, l...)
		}
		out = append(out, edits.Diff{Op: op, Text: string(buf)})
	}
	n, m := len(x.lines), len(y.lines)
	for s, t := 0, 0; s < n || t < m; {
		s0 := s
		for s < n && x.changed[s] {
			s++
		}
		emit(edits.Delete, x.lines[s0:s])
		t0 := t
		for t < m && y.changed[t] {
			t++
		}
		emit(edits.Insert, y.lines[t0:t])
		s0 = s
		for s < n && t < m && !x.changed[s] && !y.changed[t] {
			s++
			t++
		}
		emit(edits.Equal, x.lines[s0:s])
	}
	return out
}

// slide moves the groups of changed lines in s. The groups in o are kept in sync with the groups
// in s, so that unchanged lines stay paired.
func slide(s, o *side) {
	g, og := newGroup(s), newGroup(o)
	for g.next() {
		if !og.next() {
			panic("groups out of sync")
		}
		if g.len() == 0 {
			continue
		}

		// Slide the group up and down as far as possible to find the range it can be moved in.
		// Sliding might merge the group with adjacent groups, in which case the range changes and
		// we have to repeat.
		aligned := -1  // end of the group if it's aligned with a group in o
		lowest := g.end // smallest possible end
		for n := 0; n != g.len(); {
			n = g.len()
			aligned = -1

			for g.up() {
				og.prev()
			}
			lowest = g.end
			if og.len() > 0 {
				aligned = g.end
			}

			for g.down() {
				og.next()
				if og.len() > 0 {
					aligned = g.end
				}
			}
		}

		switch {
		case lowest == g.end:
			// The group can't be moved.
		case aligned >= 0:
			for og.len() == 0 {
				if !g.up() {
					panic("aligned group disappeared")
				}
				og.prev()
			}
		default:
			// The group is at its highest end now, find the best end by sliding it up.
			n := g.len()
			best := -1
			var bestScore score
			for end := max(lowest, g.end-n-1, g.end-maxSliding); end <= g.end; end++ {
				var sc score
				sc.add(s.lines, end)
				sc.add(s.lines, end-n)
				if best < 0 || sc.cmp(bestScore) <= 0 {
					best, bestScore = end, sc
				}
			}
			for g.end > best {
				g.up()
				og.prev()
			}
		}
	}
	if og.next() {
		panic("groups out of sync")
	}
}

// group is a run of changed lines [start, end) followed by the unchanged line at end. Groups can
// be empty.
type group struct {
	*side
	start, end int
}

func newGroup(s *side) *group {
	return &group{side: s, start: -1, end: -1}
}

func (g *group) len() int { return g.end - g.start }

// last is the index of the sentinel.
func (g *group) last() int { return len(g.changed) - 1 }

// next moves to the next group. It returns false if there is none.
func (g *group) next() bool {
	if g.end == g.last() {
		return false
	}
	g.start = g.end + 1
	g.end = g.start
	for g.end < g.last() && g.changed[g.end] {
		g.end++
	}
	return true
}

// prev moves to the previous group. It returns false if there is none.
func (g *group) prev() bool {
	if g.start == 0 {
		return false
	}
	g.end = g.start - 1
	g.start = g.end
	for g.start > 0 && g.changed[g.start-1] {
		g.start--
	}
	return true
}

// down slides the group down by one line, merging it with the next group if they touch
// afterwards. It returns false if that's not possible.
func (g *group) down() bool {
	if g.end == g.last() || g.lines[g.start] != g.lines[g.end] {
		return false
	}
	g.changed[g.start], g.changed[g.end] = false, true
	g.start++
	g.end++
	for g.end < g.last() && g.changed[g.end] {
		g.end++
	}
	return true
}

// up slides the group up by one line, merging it with the previous group if they touch
// afterwards. It returns false if that's not possible.
func (g *group) up() bool {
	if g.start == 0 || g.lines[g.start-1] != g.lines[g.end-1] {
		return false
	}
	g.changed[g.start-1], g.changed[g.end-1] = true, false
	g.start--
	g.end--
	for g.start > 0 && g.changed[g.start-1] {
		g.start--
	}
	return true
}

// score rates a set of splits. Smaller is better.
type score struct {
	indent  int // sum of effective indents
	penalty int
}

// add adds the score for splitting lines before line i.
func (sc *score) add(lines []string, i int) {
	indent := -1 // indent of line i, -1 for blank lines and the end of the text
	if i < len(lines) {
		indent = indentOf(lines[i])
	}

	preBlank, preIndent := 0, -1
	for j := i - 1; j >= 0; j-- {
		if preIndent = indentOf(lines[j]); preIndent >= 0 {
			break
		}
		if preBlank++; preBlank == maxBlanks {
			preIndent = 0
			break
		}
	}

	postBlank, postIndent := 0, -1
	for j := i + 1; j < len(lines); j++ {
		if postIndent = indentOf(lines[j]); postIndent >= 0 {
			break
		}
		if postBlank++; postBlank == maxBlanks {
			postIndent = 0
			break
		}
	}

	if preIndent < 0 && preBlank == 0 {
		sc.penalty += startOfFilePenalty
	}
	if i >= len(lines) {
		sc.penalty += endOfFilePenalty
	}

	blankAfter := 0
	if indent < 0 {
		blankAfter = 1 + postBlank
	}
	blank := preBlank + blankAfter
	sc.penalty += totalBlankWeight*blank + postBlankWeight*blankAfter

	if indent < 0 {
		indent = postIndent
	}
	sc.indent += indent

	switch {
	case indent < 0 || preIndent < 0:
		// Nothing to compare with.
	case indent > preIndent:
		if blank > 0 {
			sc.penalty += relativeIndentWithBlankPenalty
		} else {
			sc.penalty += relativeIndentPenalty
		}
	case indent == preIndent:
		// Same block.
	case postIndent >= 0 && postIndent > indent:
		// Less indented than the predecessor, but the next line is indented more: Likely the
		// start of a new block.
		if blank > 0 {
			sc.penalty += relativeOutdentWithBlankPenalty
		} else {
			sc.penalty += relativeOutdentPenalty
		}
	default:
		// Likely the end of a block.
		if blank > 0 {
			sc.penalty += relativeDentWithBlankPenalty
		} else {
			sc.penalty += relativeDentPenalty
		}
	}
}

func (sc score) cmp(other score) int {
	return indentWeight*cmp.Compare(sc.indent, other.indent) + sc.penalty - other.penalty
}

// indentOf returns the indentation of line or -1 if it consists only of whitespace.
func indentOf(line string) int {
	n := 0
	for i := range len(line) {
		switch line[i] {
		case ' ':
			n++
		case '\t':
			n += 8 - n%8
		case '\n', '\v', '\r':
		default:
			return n
		}
		if n >= maxIndent {
			return maxIndent
		}
	}
	return -1
}
