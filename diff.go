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

package dmp

import (
	"time"

	"znkr.io/dmp/internal/cleanup"
	"znkr.io/dmp/internal/config"
	"znkr.io/dmp/internal/edits"
	"znkr.io/dmp/internal/myers"
)

// Op describes an edit operation.
type Op = edits.Op

const (
	Delete = edits.Delete // Text only present in the first text.
	Equal  = edits.Equal  // Text present in both texts.
	Insert = edits.Insert // Text only present in the second text.
)

// Edit describes a single edit of an edit script.
//
// An edit script transforms a first text into a second text. The concatenation of the texts of
// all Equal and Delete edits is the first text ([Text1]), the concatenation of the texts of all
// Equal and Insert edits is the second text ([Text2]).
type Edit = edits.Diff

// Diff compares text1 and text2 and returns an edit script that transforms text1 into text2.
//
// The result is in canonical form: No edit has an empty text, no two adjacent edits have the same
// operation, and a deletion always precedes an insertion at the same position. If text1 and text2
// are identical, the result is a single Equal edit (or nothing if both are empty).
//
// The following options are supported: [dmp.LineMode], [dmp.Timeout], [dmp.Deadline]
//
// Important: The output is not guaranteed to be stable and may change with minor version upgrades.
// DO NOT rely on the output being stable.
func Diff(text1, text2 string, opts ...Option) []Edit {
	cfg := config.FromOptions(opts, config.Diff)
	cfg.Deadline = cfg.DiffDeadline(time.Now())
	return myers.Diff(text1, text2, cfg)
}

// CleanupMerge brings diffs into canonical form: It merges adjacent edits with the same
// operation, factors out common prefixes and suffixes of adjacent deletions and insertions, and
// shifts single edits sideways to eliminate equalities where possible.
func CleanupMerge(diffs []Edit) []Edit {
	return cleanup.Merge(edits.Clone(diffs))
}

// CleanupSemantic reduces the number of edits by eliminating semantically trivial equalities.
// The result is easier for humans to read, but not minimal anymore.
func CleanupSemantic(diffs []Edit) []Edit {
	return cleanup.Semantic(edits.Clone(diffs))
}

// CleanupSemanticLossless shifts single edits that are surrounded by equalities sideways to align
// them with word, sentence or line boundaries. The number of edits doesn't change.
func CleanupSemanticLossless(diffs []Edit) []Edit {
	return cleanup.SemanticLossless(edits.Clone(diffs))
}

// CleanupEfficiency reduces the number of edits by eliminating short equalities between edits,
// where short is defined relative to the cost of an edit.
//
// The following option is supported: [dmp.EditCost]
func CleanupEfficiency(diffs []Edit, opts ...Option) []Edit {
	cfg := config.FromOptions(opts, config.EditCost)
	return cleanup.Efficiency(edits.Clone(diffs), cfg.EditCost)
}

// Levenshtein returns the number of inserted and deleted runes in diffs.
func Levenshtein(diffs []Edit) int {
	return edits.Levenshtein(diffs)
}

// Text1 returns the first text of an edit script.
func Text1(diffs []Edit) string {
	return edits.Text1(diffs)
}

// Text2 returns the second text of an edit script.
func Text2(diffs []Edit) string {
	return edits.Text2(diffs)
}

// XIndex translates loc, a rune offset into the first text of diffs, to the equivalent offset in
// the second text. Locations inside a deletion map to the position where the deletion happened.
func XIndex(diffs []Edit, loc int) int {
	return edits.XIndex(diffs, loc)
}
