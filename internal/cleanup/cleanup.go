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

// Package cleanup post-processes edit scripts.
//
// A minimal diff is not always the most useful one. The passes in this package trade minimality
// for readability ([Semantic], [SemanticLossless]) or for a smaller number of edits ([Efficiency]).
// [Merge] restores the canonical form every other package in this module relies on:
//
//   - no edit has an empty text,
//   - no two adjacent edits have the same operation,
//   - a deletion always precedes an insertion at the same position.
//
// All functions may modify the provided slice and return the cleaned up result. All of them are
// idempotent.
package cleanup

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"znkr.io/dmp/internal/edits"
)

// Merge reorders and merges like edit sections and factors out common prefixes and suffixes of
// adjacent deletions and insertions. Afterwards, it shifts single edits that are surrounded by
// equalities sideways to eliminate one of the equalities, e.g.,
//
//	A<ins>BA</ins>C -> <ins>AB</ins>AC
//
// This is repeated until nothing changes anymore.
func Merge(diffs []edits.Diff) []edits.Diff {
	for {
		diffs = coalesce(diffs)
		var changed bool
		diffs, changed = shift(diffs)
		if !changed {
			return diffs
		}
	}
}

// coalesce merges adjacent edits of the same kind and normalizes runs of deletions and insertions
// into one deletion followed by one insertion.
func coalesce(diffs []edits.Diff) []edits.Diff {
	out := make([]edits.Diff, 0, len(diffs))
	equal := func(text string) {
		if text == "" {
			return
		}
		if n := len(out); n > 0 && out[n-1].Op == edits.Equal {
			out[n-1].Text += text
			return
		}
		out = append(out, edits.Diff{Op: edits.Equal, Text: text})
	}

	var del, ins string
	// flush appends the pending run of deletions and insertions and returns the common suffix
	// that needs to be prepended to the next equality.
	flush := func() (suffix string) {
		if del != "" && ins != "" {
			if n := edits.CommonPrefixString(del, ins); n > 0 {
				equal(ins[:n])
				del, ins = del[n:], ins[n:]
			}
			if n := edits.CommonSuffixString(del, ins); n > 0 {
				suffix = ins[len(ins)-n:]
				del, ins = del[:len(del)-n], ins[:len(ins)-n]
			}
		}
		if del != "" {
			out = append(out, edits.Diff{Op: edits.Delete, Text: del})
		}
		if ins != "" {
			out = append(out, edits.Diff{Op: edits.Insert, Text: ins})
		}
		del, ins = "", ""
		return suffix
	}

	for _, d := range diffs {
		switch d.Op {
		case edits.Delete:
			del += d.Text
		case edits.Insert:
			ins += d.Text
		case edits.Equal:
			suffix := flush()
			equal(suffix + d.Text)
		}
	}
	equal(flush())
	return out
}

// shift looks for single edits surrounded on both sides by equalities which can be shifted
// sideways to eliminate an equality.
func shift(diffs []edits.Diff) ([]edits.Diff, bool) {
	changed := false
	for i := 1; i < len(diffs)-1; i++ {
		prev, cur, next := &diffs[i-1], &diffs[i], &diffs[i+1]
		if prev.Op != edits.Equal || next.Op != edits.Equal {
			continue
		}
		switch {
		case strings.HasSuffix(cur.Text, prev.Text):
			// Shift the edit over the previous equality.
			cur.Text = prev.Text + cur.Text[:len(cur.Text)-len(prev.Text)]
			next.Text = prev.Text + next.Text
			diffs = slices.Delete(diffs, i-1, i)
			changed = true
		case strings.HasPrefix(cur.Text, next.Text):
			// Shift the edit over the next equality.
			prev.Text += next.Text
			cur.Text = cur.Text[len(next.Text):] + next.Text
			diffs = slices.Delete(diffs, i+1, i+2)
			changed = true
		}
	}
	return diffs, changed
}

// Semantic reduces the number of edits by eliminating semantically trivial equalities: An
// equality that is not longer than the edits on either side of it is turned into a deletion and
// an insertion. Afterwards, edits are aligned to semantic boundaries (see [SemanticLossless]) and
// overlaps between deletions and insertions are extracted into equalities, e.g.,
//
//	<del>abcxxx</del><ins>xxxdef</ins> -> <del>abc</del>xxx<ins>def</ins>
//	<del>xxxabc</del><ins>defxxx</ins> -> <ins>def</ins>xxx<del>abc</del>
//
// Aligning edits and extracting overlaps can leave equalities that qualify for elimination, so
// the whole pass is repeated until the script doesn't change anymore.
func Semantic(diffs []edits.Diff) []edits.Diff {
	// A round that changes the script usually eliminates an equality, so the number of rounds is
	// bounded by the length of the script. The bound guards against rounds that undo each other.
	for range len(diffs) + 2 {
		next := semanticPass(edits.Clone(diffs))
		if slices.Equal(next, diffs) {
			break
		}
		diffs = next
	}
	return diffs
}

func semanticPass(diffs []edits.Diff) []edits.Diff {
	changed := false
	var equalities []int // Stack of indices of equalities.
	var last string      // Text of the last equality, empty if there is none.
	// Number of runes that changed before (1) and after (2) the last equality.
	var ins1, del1, ins2, del2 int
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		if d.Op == edits.Equal {
			equalities = append(equalities, i)
			ins1, del1 = ins2, del2
			ins2, del2 = 0, 0
			last = d.Text
			continue
		}
		if d.Op == edits.Insert {
			ins2 += utf8.RuneCountInString(d.Text)
		} else {
			del2 += utf8.RuneCountInString(d.Text)
		}
		// Eliminate an equality that is smaller or equal to the edits on both sides of it.
		n := utf8.RuneCountInString(last)
		if last == "" || n > max(ins1, del1) || n > max(ins2, del2) {
			continue
		}
		j := equalities[len(equalities)-1]
		diffs = slices.Insert(diffs, j, edits.Diff{Op: edits.Delete, Text: last})
		diffs[j+1].Op = edits.Insert
		// Throw away the equality we just deleted and the one before it, it needs to be
		// reevaluated.
		equalities = equalities[:len(equalities)-1]
		if len(equalities) > 0 {
			equalities = equalities[:len(equalities)-1]
		}
		if len(equalities) > 0 {
			i = equalities[len(equalities)-1]
		} else {
			i = -1
		}
		ins1, del1, ins2, del2 = 0, 0, 0, 0
		last = ""
		changed = true
	}

	if changed {
		diffs = Merge(diffs)
	}
	diffs = SemanticLossless(diffs)

	// Only extract an overlap if it is as big as the edit ahead or behind it.
	for i := 1; i < len(diffs); i++ {
		if diffs[i-1].Op != edits.Delete || diffs[i].Op != edits.Insert {
			continue
		}
		del := []rune(diffs[i-1].Text)
		ins := []rune(diffs[i].Text)
		n1 := edits.CommonOverlap(del, ins)
		n2 := edits.CommonOverlap(ins, del)
		if n1 >= n2 {
			if 2*n1 >= len(del) || 2*n1 >= len(ins) {
				diffs = slices.Insert(diffs, i, edits.Diff{Op: edits.Equal, Text: string(ins[:n1])})
				diffs[i-1].Text = string(del[:len(del)-n1])
				diffs[i+1].Text = string(ins[n1:])
				i++
			}
		} else {
			if 2*n2 >= len(del) || 2*n2 >= len(ins) {
				// Reverse overlap, the insertion and deletion need to swap places.
				diffs = slices.Insert(diffs, i, edits.Diff{Op: edits.Equal, Text: string(del[:n2])})
				diffs[i-1] = edits.Diff{Op: edits.Insert, Text: string(ins[:len(ins)-n2])}
				diffs[i+1] = edits.Diff{Op: edits.Delete, Text: string(del[n2:])}
				i++
			}
		}
		i++
	}
	return diffs
}

// SemanticLossless shifts single edits that are surrounded on both sides by equalities so that
// they align with word, line or sentence boundaries, e.g.,
//
//	The c<ins>at c</ins>ame. -> The <ins>cat </ins>came.
//
// The texts that are described by the diff don't change.
func SemanticLossless(diffs []edits.Diff) []edits.Diff {
	for i := 1; i < len(diffs)-1; i++ {
		if diffs[i-1].Op != edits.Equal || diffs[i+1].Op != edits.Equal {
			continue
		}
		eq1, edit, eq2 := diffs[i-1].Text, diffs[i].Text, diffs[i+1].Text

		// First, shift the edit as far left as possible.
		if n := edits.CommonSuffixString(eq1, edit); n > 0 {
			common := edit[len(edit)-n:]
			eq1 = eq1[:len(eq1)-n]
			edit = common + edit[:len(edit)-n]
			eq2 = common + eq2
		}

		// Second, step rune by rune right, looking for the best fit.
		best1, bestEdit, best2 := eq1, edit, eq2
		bestScore := score(eq1, edit) + score(edit, eq2)
		for edit != "" && eq2 != "" {
			r1, n := utf8.DecodeRuneInString(edit)
			r2, _ := utf8.DecodeRuneInString(eq2)
			if r1 != r2 {
				break
			}
			eq1 += edit[:n]
			edit = edit[n:] + eq2[:n]
			eq2 = eq2[n:]
			// The >= encourages trailing rather than leading whitespace on edits.
			if s := score(eq1, edit) + score(edit, eq2); s >= bestScore {
				bestScore = s
				best1, bestEdit, best2 = eq1, edit, eq2
			}
		}

		if diffs[i-1].Text == best1 {
			continue
		}
		// We have an improvement, save it back to the diff.
		if best1 != "" {
			diffs[i-1].Text = best1
		} else {
			diffs = slices.Delete(diffs, i-1, i)
			i--
		}
		diffs[i].Text = bestEdit
		if best2 != "" {
			diffs[i+1].Text = best2
		} else {
			diffs = slices.Delete(diffs, i+1, i+2)
			i--
		}
	}
	return diffs
}

// Boundary scores used by [SemanticLossless].
const (
	scoreNone        = 0
	scoreNonAlphaNum = 1
	scoreWhitespace  = 2
	scoreSentenceEnd = 3
	scoreLineBreak   = 4
	scoreBlankLine   = 5
	scoreEdge        = 6
)

// score computes how well the boundary between a and b aligns with a logical boundary in the
// text. Higher is better.
func score(a, b string) int {
	if a == "" || b == "" {
		// Edges are the best.
		return scoreEdge
	}

	r1, _ := utf8.DecodeLastRuneInString(a)
	r2, _ := utf8.DecodeRuneInString(b)
	nonAlphaNum1 := !unicode.IsLetter(r1) && !unicode.IsDigit(r1)
	nonAlphaNum2 := !unicode.IsLetter(r2) && !unicode.IsDigit(r2)
	whitespace1 := nonAlphaNum1 && unicode.IsSpace(r1)
	whitespace2 := nonAlphaNum2 && unicode.IsSpace(r2)
	lineBreak1 := whitespace1 && (r1 == '\r' || r1 == '\n')
	lineBreak2 := whitespace2 && (r2 == '\r' || r2 == '\n')
	blankLine1 := lineBreak1 && (strings.HasSuffix(a, "\n\n") || strings.HasSuffix(a, "\n\r\n"))
	blankLine2 := lineBreak2 && blankLineStart(b)

	switch {
	case blankLine1 || blankLine2:
		return scoreBlankLine
	case lineBreak1 || lineBreak2:
		return scoreLineBreak
	case nonAlphaNum1 && !whitespace1 && whitespace2:
		return scoreSentenceEnd
	case whitespace1 || whitespace2:
		return scoreWhitespace
	case nonAlphaNum1 || nonAlphaNum2:
		return scoreNonAlphaNum
	}
	return scoreNone
}

// blankLineStart reports whether s starts with a blank line (\r?\n\r?\n).
func blankLineStart(s string) bool {
	s = strings.TrimPrefix(s, "\r")
	if !strings.HasPrefix(s, "\n") {
		return false
	}
	s = strings.TrimPrefix(s[1:], "\r")
	return strings.HasPrefix(s, "\n")
}

// Efficiency reduces the number of edits by eliminating operationally trivial equalities. An
// equality is eliminated when it's shorter than editCost and surrounded by deletions and
// insertions on both sides, or when it's shorter than editCost/2 and three of the four
// surrounding positions contain an edit. Larger values of editCost result in fewer, larger edits.
// Like [Semantic], the pass is repeated until the script doesn't change anymore.
func Efficiency(diffs []edits.Diff, editCost int) []edits.Diff {
	for range len(diffs) + 2 {
		next := efficiencyPass(edits.Clone(diffs), editCost)
		if slices.Equal(next, diffs) {
			break
		}
		diffs = next
	}
	return diffs
}

func efficiencyPass(diffs []edits.Diff, editCost int) []edits.Diff {
	changed := false
	var equalities []int // Stack of indices of candidate equalities.
	var last string      // Text of the last candidate, empty if there is none.
	// Whether there is an insertion or deletion before (pre) or after (post) the last equality.
	var preIns, preDel, postIns, postDel bool
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		if d.Op == edits.Equal {
			if utf8.RuneCountInString(d.Text) < editCost && (postIns || postDel) {
				// Candidate found.
				equalities = append(equalities, i)
				preIns, preDel = postIns, postDel
				last = d.Text
			} else {
				// Not a candidate, and can never become one.
				equalities = equalities[:0]
				last = ""
			}
			postIns, postDel = false, false
			continue
		}

		if d.Op == edits.Delete {
			postDel = true
		} else {
			postIns = true
		}

		// Five types to be split:
		//
		//	<ins>A</ins><del>B</del>XY<ins>C</ins><del>D</del>
		//	<ins>A</ins>X<ins>C</ins><del>D</del>
		//	<ins>A</ins><del>B</del>X<ins>C</ins>
		//	<del>A</del>X<ins>C</ins><del>D</del>
		//	<ins>A</ins><del>B</del>X<del>C</del>
		if last == "" {
			continue
		}
		sides := count(preIns) + count(preDel) + count(postIns) + count(postDel)
		if sides != 4 && (sides != 3 || 2*utf8.RuneCountInString(last) >= editCost) {
			continue
		}
		j := equalities[len(equalities)-1]
		diffs = slices.Insert(diffs, j, edits.Diff{Op: edits.Delete, Text: last})
		diffs[j+1].Op = edits.Insert
		equalities = equalities[:len(equalities)-1]
		last = ""
		if preIns && preDel {
			// No changes made which could affect previous entry, keep going.
			postIns, postDel = true, true
			equalities = equalities[:0]
		} else {
			if len(equalities) > 0 {
				equalities = equalities[:len(equalities)-1]
			}
			if len(equalities) > 0 {
				i = equalities[len(equalities)-1]
			} else {
				i = -1
			}
			postIns, postDel = false, false
		}
		changed = true
	}

	if changed {
		diffs = Merge(diffs)
	}
	return diffs
}

func count(b bool) int {
	if b {
		return 1
	}
	return 0
}
