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
	"fmt"
	"strings"
	"unicode/utf8"
)

// MismatchError is returned by [Replay] if the text doesn't match the edit script.
type MismatchError struct {
	Offset int    // Rune offset into the text.
	Want   string // Text expected by the edit script.
	Got    string // Text found at Offset.
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("text mismatch at offset %d: want %q, got %q", e.Offset, e.Want, e.Got)
}

// Replay applies an edit script to text, which is expected to be the first text of diffs. Unlike
// [ApplyPatches], Replay doesn't tolerate any differences: The texts of all Equal and Delete
// edits must be found in text at the expected position. Text after the end of the edit script is
// kept as is.
//
// Replay returns the transformed text and whether any edit changed the text. If text doesn't
// match the edit script, Replay returns the unchanged text, whether any edit before the mismatch
// would have changed the text, and a *[MismatchError].
func Replay(text string, diffs []Edit) (string, bool, error) {
	var sb strings.Builder
	sb.Grow(len(text))
	pos := 0 // byte offset into text
	dirty := false
	for _, d := range diffs {
		switch d.Op {
		case Insert:
			sb.WriteString(d.Text)
			dirty = dirty || d.Text != ""
		case Equal, Delete:
			if !strings.HasPrefix(text[pos:], d.Text) {
				return text, dirty, &MismatchError{
					Offset: utf8.RuneCountInString(text[:pos]),
					Want:   d.Text,
					Got:    text[pos:min(len(text), pos+len(d.Text))],
				}
			}
			pos += len(d.Text)
			if d.Op == Equal {
				sb.WriteString(d.Text)
			} else {
				dirty = dirty || d.Text != ""
			}
		}
	}
	sb.WriteString(text[pos:])
	return sb.String(), dirty, nil
}
