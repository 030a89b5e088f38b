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

	"znkr.io/dmp/internal/config"
	"znkr.io/dmp/internal/edits"
	"znkr.io/dmp/internal/patch"
	"znkr.io/dmp/internal/patchtext"
)

// Patch is a single hunk of a patch.
//
// A hunk contains the edits to transform Length1 runes starting at Start1 in the first text into
// Length2 runes starting at Start2 in the second text. The edits include some unchanged context
// around the changes. Start1 is relative to the first text after all preceding hunks have been
// applied.
type Patch = edits.Patch

// ParseError is returned by [PatchFromText] for malformed patch texts.
type ParseError = patchtext.ParseError

// Errors wrapped by [ParseError].
var (
	ErrHeader = patchtext.ErrHeader // A hunk header is malformed.
	ErrPrefix = patchtext.ErrPrefix // An edit line starts with an unknown character.
	ErrEscape = patchtext.ErrEscape // An edit line contains an invalid escape sequence.
	ErrLength = patchtext.ErrLength // The edits of a hunk don't match the lengths in its header.
)

// MakePatch computes a patch that transforms text1 into text2.
//
// The edit script between the texts is computed with [Diff] and, unless it's trivial, cleaned up
// with [CleanupSemantic] and [CleanupEfficiency].
//
// The following options are supported: [dmp.LineMode], [dmp.Timeout], [dmp.Deadline],
// [dmp.EditCost], [dmp.Margin], [dmp.MaxBits]
func MakePatch(text1, text2 string, opts ...Option) []Patch {
	cfg := config.FromOptions(opts, config.Patch)
	cfg.Deadline = cfg.DiffDeadline(time.Now())
	return patch.MakeFromTexts(text1, text2, cfg)
}

// MakePatchFromDiffs computes a patch from an edit script.
//
// The following options are supported: [dmp.Margin], [dmp.MaxBits]
func MakePatchFromDiffs(diffs []Edit, opts ...Option) []Patch {
	cfg := config.FromOptions(opts, config.Margin|config.MaxBits)
	return patch.Make(edits.Text1(diffs), diffs, cfg)
}

// MakePatchFromTextAndDiffs computes a patch from an edit script whose first text is text1. It
// panics if text1 doesn't have the same length as the first text of diffs.
//
// The following options are supported: [dmp.Margin], [dmp.MaxBits]
func MakePatchFromTextAndDiffs(text1 string, diffs []Edit, opts ...Option) []Patch {
	cfg := config.FromOptions(opts, config.Margin|config.MaxBits)
	return patch.Make(text1, diffs, cfg)
}

// PatchToText returns the textual representation of patches. The format resembles a unified
// diff, but edits are rune based and their texts are percent-encoded:
//
//	@@ -1,8 +1,7 @@
//	 Th
//	-at
//	+e
//	  qui
func PatchToText(patches []Patch) string {
	return patchtext.Format(patches)
}

// PatchFromText parses the textual representation of patches as produced by [PatchToText]. On
// error, it returns a *[ParseError] and no patches.
func PatchFromText(text string) ([]Patch, error) {
	return patchtext.Parse(text)
}

// ApplyPatches applies patches to text. It returns the patched text and, in the same order as
// patches, whether each hunk could be applied. Hunks are located approximately using [Match];
// hunks that can't be located are skipped. Hunks longer than [MaxBits] are applied in pieces and
// only count as applied if every piece was applied.
//
// The input patches are not modified.
//
// The following options are supported: [dmp.Timeout], [dmp.Deadline], [dmp.MatchThreshold],
// [dmp.MatchDistance], [dmp.MaxBits], [dmp.DeleteThreshold], [dmp.Margin]
func ApplyPatches(patches []Patch, text string, opts ...Option) (string, []bool) {
	cfg := config.FromOptions(opts, config.Apply)
	cfg.Deadline = cfg.DiffDeadline(time.Now())
	return patch.Apply(patches, text, cfg)
}
