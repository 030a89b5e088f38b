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

// Package tokens maps lines or words of a text to single runes so that the diff algorithm can
// operate on whole tokens instead of characters.
//
// Each distinct token is assigned a pseudo-rune. The pseudo-runes skip the surrogate range, so
// that a sequence of them survives a round trip through a Go string unchanged.
package tokens

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
	"znkr.io/dmp/internal/edits"
)

const surrogateMin, surrogateMax = 0xd800, 0xdfff

// MaxTokens is the maximum number of distinct tokens an Encoder can represent.
const MaxTokens = utf8.MaxRune + 1 - (surrogateMax - surrogateMin + 1)

// SplitLines splits s after every '\n'. The lines include the newline character, a last line
// without a newline is returned as is.
func SplitLines(s string) []string {
	n := strings.Count(s, "\n")
	if len(s) > 0 && s[len(s)-1] != '\n' {
		n++
	}
	a := make([]string, 0, n)
	for len(s) > 0 {
		m := strings.IndexByte(s, '\n')
		if m < 0 {
			a = append(a, s)
			break
		}
		a = append(a, s[:m+1])
		s = s[m+1:]
	}
	return a
}

// SplitWords splits s into words according to the Unicode text segmentation rules (UAX #29).
// Whitespace and punctuation become tokens of their own, so the concatenation of all words is s.
func SplitWords(s string) []string {
	var a []string
	it := words.FromString(s)
	for it.Next() {
		a = append(a, it.Value())
	}
	return a
}

// Encoder assigns pseudo-runes to tokens. The same Encoder must be used for both inputs of a
// diff, so that equal tokens are represented by the same rune.
type Encoder struct {
	tokens []string
	ids    map[string]rune
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{ids: make(map[string]rune)}
}

// Len returns the number of distinct tokens seen so far.
func (e *Encoder) Len() int { return len(e.tokens) }

// Encode returns the pseudo-rune representation of parts. Once the encoder holds limit-1
// distinct tokens, the remainder of parts is treated as a single token. limit must not exceed
// MaxTokens.
//
// When encoding two inputs, the first should use a smaller limit than the second, so that there
// are runes left for the second input.
func (e *Encoder) Encode(parts []string, limit int) []rune {
	limit = min(limit, MaxTokens)
	out := make([]rune, 0, len(parts))
	for i, part := range parts {
		if len(e.tokens) >= limit-1 {
			if _, ok := e.ids[part]; !ok {
				part = strings.Join(parts[i:], "")
				out = append(out, e.id(part))
				break
			}
		}
		out = append(out, e.id(part))
	}
	return out
}

func (e *Encoder) id(token string) rune {
	if r, ok := e.ids[token]; ok {
		return r
	}
	r := toRune(len(e.tokens))
	e.tokens = append(e.tokens, token)
	e.ids[token] = r
	return r
}

// Decode rewrites the texts of diffs in place, replacing every pseudo-rune by its token.
func (e *Encoder) Decode(diffs []edits.Diff) {
	var sb strings.Builder
	for i := range diffs {
		sb.Reset()
		for _, r := range diffs[i].Text {
			sb.WriteString(e.tokens[fromRune(r)])
		}
		diffs[i].Text = sb.String()
	}
}

func toRune(i int) rune {
	if i >= surrogateMin {
		i += surrogateMax - surrogateMin + 1
	}
	return rune(i)
}

func fromRune(r rune) int {
	i := int(r)
	if i > surrogateMax {
		i -= surrogateMax - surrogateMin + 1
	}
	return i
}
