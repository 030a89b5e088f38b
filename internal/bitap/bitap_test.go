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

package bitap

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"znkr.io/dmp/internal/config"
)

func TestAlphabet(t *testing.T) {
	tests := []struct {
		pattern string
		want    map[rune]uint64
	}{
		{"abc", map[rune]uint64{'a': 4, 'b': 2, 'c': 1}},
		{"abcaba", map[rune]uint64{'a': 37, 'b': 18, 'c': 8}},
		{"äöä", map[rune]uint64{'ä': 5, 'ö': 2}},
	}
	for _, tt := range tests {
		got := alphabet([]rune(tt.pattern))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("alphabet(%q) differs [-want,+got]:\n%s", tt.pattern, diff)
		}
	}
}

func TestBitap(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		pattern   string
		loc       int
		threshold float64
		distance  int
		want      int // -1 means no match
	}{
		{"exact-1", "abcdefghijk", "fgh", 5, 0.5, 100, 5},
		{"exact-2", "abcdefghijk", "fgh", 0, 0.5, 100, 5},
		{"fuzzy-1", "abcdefghijk", "efxhi", 0, 0.5, 100, 4},
		{"fuzzy-2", "abcdefghijk", "cdefxyhijk", 5, 0.5, 100, 2},
		{"fuzzy-3", "abcdefghijk", "bxy", 1, 0.5, 100, -1},
		{"overflow", "123456789xx0", "3456789x0", 2, 0.5, 100, 2},
		{"before-start", "abcdef", "xxabc", 4, 0.5, 100, 0},
		{"beyond-end", "abcdef", "defyy", 4, 0.5, 100, 3},
		{"oversized-pattern", "abcdef", "xabcdefy", 0, 0.5, 100, 0},
		{"threshold-1", "abcdefghijk", "efxyhi", 1, 0.4, 100, 4},
		{"threshold-2", "abcdefghijk", "efxyhi", 1, 0.3, 100, -1},
		{"threshold-3", "abcdefghijk", "bcdef", 1, 0.0, 100, 1},
		{"multiple-select-1", "abcdexyzabcde", "abccde", 3, 0.5, 100, 0},
		{"multiple-select-2", "abcdexyzabcde", "abccde", 5, 0.5, 100, 8},
		{"strict-distance-1", "abcdefghijklmnopqrstuvwxyz", "abcdefg", 24, 0.5, 10, -1},
		{"strict-distance-2", "abcdefghijklmnopqrstuvwxyz", "abcdxxefg", 1, 0.5, 10, 0},
		{"loose-distance", "abcdefghijklmnopqrstuvwxyz", "abcdefg", 24, 0.5, 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := matcher{pattern: []rune(tt.pattern), loc: tt.loc, threshold: tt.threshold, distance: tt.distance}
			got, ok := m.bitap([]rune(tt.text))
			if !ok {
				got = -1
			}
			if got != tt.want {
				t.Errorf("bitap(%q, %q, %d) = %d, want %d", tt.text, tt.pattern, tt.loc, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	cfg := func(threshold float64, distance int) config.Config {
		cfg := config.Default
		cfg.MatchThreshold = threshold
		cfg.MatchDistance = distance
		return cfg
	}
	tests := []struct {
		name    string
		text    string
		pattern string
		loc     int
		cfg     config.Config
		want    int
		wantOK  bool
	}{
		{"equality", "abcdef", "abcdef", 1000, config.Default, 0, true},
		{"empty-text", "", "abcdef", 1, config.Default, 0, false},
		{"empty-pattern", "abcdef", "", 3, config.Default, 3, true},
		{"empty-both", "", "", 3, config.Default, 0, true},
		{"exact", "abcdef", "de", 3, config.Default, 3, true},
		{"beyond-end", "abcdef", "defy", 4, config.Default, 3, true},
		{"oversized-pattern", "abcdef", "abcdefy", 0, config.Default, 0, true},
		{"negative-location", "abcdef", "bc", -5, config.Default, 1, true},
		{
			name:    "complex",
			text:    "I am the very model of a modern major general.",
			pattern: " that berry ",
			loc:     5,
			cfg:     cfg(0.7, 1000),
			want:    4,
			wantOK:  true,
		},
		{
			name:    "prefer-exact-far-away",
			text:    "abc12345678901234567890abbc",
			pattern: "abc",
			loc:     26,
			cfg:     cfg(0.5, 1000),
			want:    0,
			wantOK:  true,
		},
		{
			name:    "prefer-fuzzy-nearby",
			text:    "abc12345678901234567890abbc",
			pattern: "abc",
			loc:     26,
			cfg:     cfg(0.5, 10),
			want:    25,
			wantOK:  true,
		},
		{
			name:    "no-match",
			text:    "abcdef",
			pattern: "xyz",
			loc:     0,
			cfg:     config.Default,
			want:    0,
			wantOK:  false,
		},
		{
			name:    "multibyte",
			text:    "Grüße aus Köln",
			pattern: "Köln",
			loc:     3,
			cfg:     config.Default,
			want:    10,
			wantOK:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match([]rune(tt.text), []rune(tt.pattern), tt.loc, tt.cfg)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Match(%q, %q, %d) = %d, %v, want %d, %v", tt.text, tt.pattern, tt.loc, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchLongPattern(t *testing.T) {
	text := strings.Repeat("0123456789", 10)
	pattern := text[15:60] // 45 runes, longer than MaxBits

	tests := []struct {
		loc    int
		want   int
		wantOK bool
	}{
		{15, 15, true},
		{0, 5, true},
		{20, 15, true},
		{30, 25, true},
	}
	for _, tt := range tests {
		got, ok := Match([]rune(text), []rune(pattern), tt.loc, config.Default)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Match(..., %d) = %d, %v, want %d, %v", tt.loc, got, ok, tt.want, tt.wantOK)
		}
	}

	// A single error in a long pattern can't be found.
	fuzzy := []rune(pattern)
	fuzzy[20] = 'x'
	if got, ok := Match([]rune(text), fuzzy, 15, config.Default); ok {
		t.Errorf("Match(...) with fuzzy long pattern = %d, true, want no match", got)
	}
}

func TestMatchSubstring(t *testing.T) {
	rng := rand.New(rand.NewChaCha8([32]byte{}))
	for i := range 500 {
		text := make([]rune, 10+rng.IntN(100))
		for j := range text {
			text[j] = rune('a' + rng.IntN(4))
		}
		start := rng.IntN(len(text))
		end := start + 1 + rng.IntN(min(32, len(text)-start))
		pattern := text[start:end]
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			got, ok := Match(text, pattern, start, config.Default)
			if !ok || got != start {
				t.Errorf("Match(%q, %q, %d) = %d, %v, want %d, true", string(text), string(pattern), start, got, ok, start)
			}
		})
	}
}
