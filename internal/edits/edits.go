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

// Package edits contains the edit script representation shared by the diff, cleanup and patch
// implementations and helpers to work with it.
package edits

import (
	"slices"
	"unicode/utf8"
)

// Op describes an edit operation.
//
//go:generate go tool golang.org/x/tools/cmd/stringer -type=Op
type Op int8

const (
	Delete Op = -1 // Text only present in the first input.
	Equal  Op = 0  // Text present in both inputs.
	Insert Op = 1  // Text only present in the second input.
)

// Diff is a single edit of an edit script: an operation and the text it applies to.
type Diff struct {
	Op   Op
	Text string
}

// Patch is a single hunk of a patch: an edit script including surrounding context and its
// position in the texts it was computed for. Start1 and Length1 describe the span in the first
// text, Start2 and Length2 the span in the second text. All positions and lengths are counted in
// runes.
type Patch struct {
	Diffs            []Diff
	Start1, Start2   int
	Length1, Length2 int
}

// ClonePatches returns a deep copy of patches.
func ClonePatches(patches []Patch) []Patch {
	out := make([]Patch, len(patches))
	for i, p := range patches {
		out[i] = p
		out[i].Diffs = Clone(p.Diffs)
	}
	return out
}

// Text1 reconstructs the first input of a diff (all equalities and deletions).
func Text1(diffs []Diff) string {
	n := 0
	for _, d := range diffs {
		if d.Op != Insert {
			n += len(d.Text)
		}
	}
	buf := make([]byte, 0, n)
	for _, d := range diffs {
		if d.Op != Insert {
			buf = append(buf, d.Text...)
		}
	}
	return string(buf)
}

// Text2 reconstructs the second input of a diff (all equalities and insertions).
func Text2(diffs []Diff) string {
	n := 0
	for _, d := range diffs {
		if d.Op != Delete {
			n += len(d.Text)
		}
	}
	buf := make([]byte, 0, n)
	for _, d := range diffs {
		if d.Op != Delete {
			buf = append(buf, d.Text...)
		}
	}
	return string(buf)
}

// Levenshtein returns the number of inserted and deleted runes in diffs.
func Levenshtein(diffs []Diff) int {
	n := 0
	for _, d := range diffs {
		if d.Op != Equal {
			n += utf8.RuneCountInString(d.Text)
		}
	}
	return n
}

// Substitutions returns the edit distance of diffs when a deletion directly followed or preceded
// by an insertion counts as a substitution: Every run of edits between two equalities costs the
// larger of its deleted and inserted rune counts.
func Substitutions(diffs []Diff) int {
	n := 0
	ins, del := 0, 0
	for _, d := range diffs {
		switch d.Op {
		case Insert:
			ins += utf8.RuneCountInString(d.Text)
		case Delete:
			del += utf8.RuneCountInString(d.Text)
		case Equal:
			n += max(ins, del)
			ins, del = 0, 0
		}
	}
	return n + max(ins, del)
}

// XIndex translates loc, a rune offset into the first input, to the equivalent offset in the
// second input. A location inside a deletion maps to the start of the deletion in the second
// input.
func XIndex(diffs []Diff, loc int) int {
	chars1, chars2 := 0, 0
	last1, last2 := 0, 0
	i := 0
	for ; i < len(diffs); i++ {
		n := utf8.RuneCountInString(diffs[i].Text)
		if diffs[i].Op != Insert {
			chars1 += n
		}
		if diffs[i].Op != Delete {
			chars2 += n
		}
		if chars1 > loc {
			break
		}
		last1, last2 = chars1, chars2
	}
	if i < len(diffs) && diffs[i].Op == Delete {
		// The location was deleted.
		return last2
	}
	return last2 + (loc - last1)
}

// Clone returns a copy of diffs that doesn't share memory with the original.
func Clone(diffs []Diff) []Diff {
	return slices.Clone(diffs)
}

// CommonPrefixString returns the length in bytes of the common prefix of a and b. The prefix
// always ends at a rune boundary.
func CommonPrefixString(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	if i < len(a) && i < len(b) {
		for i > 0 && !utf8.RuneStart(a[i]) {
			i--
		}
	}
	return i
}

// CommonSuffixString returns the length in bytes of the common suffix of a and b. The suffix
// always starts at a rune boundary.
func CommonSuffixString(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	for i > 0 && !utf8.RuneStart(a[len(a)-i]) {
		i--
	}
	return i
}

// CommonPrefix returns the length of the common prefix of a and b.
func CommonPrefix(a, b []rune) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// CommonSuffix returns the length of the common suffix of a and b.
func CommonSuffix(a, b []rune) int {
	i, j := len(a), len(b)
	n := 0
	for i > 0 && j > 0 && a[i-1] == b[j-1] {
		i--
		j--
		n++
	}
	return n
}

// CommonOverlap returns the length of the longest suffix of a that is a prefix of b.
func CommonOverlap(a, b []rune) int {
	// Eliminate the null case.
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Truncate the longer string.
	if len(a) > len(b) {
		a = a[len(a)-len(b):]
	} else if len(a) < len(b) {
		b = b[:len(a)]
	}
	n := len(a)
	if slices.Equal(a, b) {
		return n
	}

	// Start by looking for a single character match and increase length until no match is found.
	// Performance analysis: https://neil.fraser.name/news/2010/11/04/
	best := 0
	length := 1
	for {
		pattern := a[n-length:]
		found := index(b, pattern)
		if found == -1 {
			return best
		}
		length += found
		if found == 0 || slices.Equal(a[n-length:], b[:length]) {
			best = length
			length++
		}
	}
}

// Index returns the index of the first instance of pattern in s at or after from or -1 if it's
// not present.
func Index(s, pattern []rune, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		return -1
	}
	i := index(s[from:], pattern)
	if i < 0 {
		return -1
	}
	return from + i
}

// LastIndex returns the index of the last instance of pattern in s that starts at or before from
// or -1 if it's not present.
func LastIndex(s, pattern []rune, from int) int {
	if from < 0 {
		return -1
	}
	end := min(len(s), from+len(pattern))
	for i := end - len(pattern); i >= 0; i-- {
		if slices.Equal(s[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

func index(s, pattern []rune) int {
	n := len(pattern)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(s); i++ {
		if s[i] == pattern[0] && slices.Equal(s[i:i+n], pattern) {
			return i
		}
	}
	return -1
}
