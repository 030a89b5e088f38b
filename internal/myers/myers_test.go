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

package myers

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"znkr.io/dmp/internal/config"
	"znkr.io/dmp/internal/edits"
)

func eq(s string) edits.Diff  { return edits.Diff{Op: edits.Equal, Text: s} }
func del(s string) edits.Diff { return edits.Diff{Op: edits.Delete, Text: s} }
func ins(s string) edits.Diff { return edits.Diff{Op: edits.Insert, Text: s} }

// charMode is a configuration without deadline and without token mode.
var charMode = config.Config{}

func TestDiff(t *testing.T) {
	tests := []struct {
		x, y string
		want []edits.Diff
	}{
		{"", "", nil},
		{"abc", "abc", []edits.Diff{eq("abc")}},
		{"", "abc", []edits.Diff{ins("abc")}},
		{"abc", "", []edits.Diff{del("abc")}},
		{"abc", "ab123c", []edits.Diff{eq("ab"), ins("123"), eq("c")}},
		{"a123bc", "abc", []edits.Diff{eq("a"), del("123"), eq("bc")}},
		{"abc", "a123b456c", []edits.Diff{eq("a"), ins("123"), eq("b"), ins("456"), eq("c")}},
		{"a123b456c", "abc", []edits.Diff{eq("a"), del("123"), eq("b"), del("456"), eq("c")}},
		{"a", "b", []edits.Diff{del("a"), ins("b")}},
		{"cat", "map", []edits.Diff{del("c"), ins("m"), eq("a"), del("t"), ins("p")}},
		{"Good dog", "Bad dog", []edits.Diff{del("Goo"), ins("Ba"), eq("d dog")}},
		{
			"Apples are a fruit.", "Bananas are also fruit.",
			[]edits.Diff{del("Apple"), ins("Banana"), eq("s are a"), ins("lso"), eq(" fruit.")},
		},
		{
			"ax\t", "ڀx\u0000",
			[]edits.Diff{del("a"), ins("ڀ"), eq("x"), del("\t"), ins("\u0000")},
		},
		{
			"1ayb2", "abxab",
			[]edits.Diff{del("1"), eq("a"), del("y"), eq("b"), del("2"), ins("xab")},
		},
		{
			"abcy", "xaxcxabc",
			[]edits.Diff{ins("xaxcx"), eq("abc"), del("y")},
		},
		{
			"ABCDa=bcd=efghijklmnopqrsEFGHIJKLMNOefg", "a-bcd-efghijklmnopqrs",
			[]edits.Diff{
				del("ABCD"), eq("a"), del("="), ins("-"), eq("bcd"), del("="), ins("-"),
				eq("efghijklmnopqrs"), del("EFGHIJKLMNOefg"),
			},
		},
		{
			"a [[Pennsylvania]] and [[New", " and [[Pennsylvania]]",
			[]edits.Diff{ins(" "), eq("a"), ins("nd"), eq(" [[Pennsylvania]]"), del(" and [[New")},
		},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q-%q", tt.x, tt.y), func(t *testing.T) {
			got := Diff(tt.x, tt.y, charMode)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Diff(...) differs [-want,+got]:\n%s", diff)
			}
		})
	}
}

func TestDiffDeadline(t *testing.T) {
	past := config.Config{Deadline: time.Unix(1, 0)}
	got := Diff("cat", "map", past)
	want := []edits.Diff{del("cat"), ins("map")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff(...) differs [-want,+got]:\n%s", diff)
	}

	future := config.Config{Deadline: time.Now().Add(time.Hour)}
	got = Diff("cat", "map", future)
	want = []edits.Diff{del("c"), ins("m"), eq("a"), del("t"), ins("p")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff(...) differs [-want,+got]:\n%s", diff)
	}
}

func TestDiffTimeout(t *testing.T) {
	x := "`Twas brillig, and the slithy toves\nDid gyre and gimble in the wabe:\nAll mimsy were the borogoves,\nAnd the mome raths outgrabe.\n"
	y := "I am the very model of a modern major general,\nI've information vegetable, animal, and mineral,\nI know the kings of England, and I quote the fights historical,\nFrom Marathon to Waterloo, in order categorical.\n"
	// Make the inputs large enough to guarantee a timeout.
	x = strings.Repeat(x, 1024)
	y = strings.Repeat(y, 1024)

	const timeout = 100 * time.Millisecond
	start := time.Now()
	got := Diff(x, y, config.Config{Deadline: start.Add(timeout)})
	elapsed := time.Since(start)

	if edits.Text1(got) != x || edits.Text2(got) != y {
		t.Errorf("Diff(...) after timeout doesn't reconstruct the inputs")
	}
	if elapsed < timeout {
		t.Errorf("Diff(...) took %v, expected to take at least the timeout %v", elapsed, timeout)
	}
	// Be very forgiving, the deadline is only checked between iterations.
	if elapsed > 100*timeout {
		t.Errorf("Diff(...) took %v, expected to stop shortly after the timeout %v", elapsed, timeout)
	}
}

func TestHalfMatch(t *testing.T) {
	tests := []struct {
		x, y string
		want []string // x1, x2, y1, y2, common or nil
	}{
		// No match.
		{"1234567890", "abcdef", nil},
		{"12345", "23", nil},

		// Single match.
		{"1234567890", "a345678z", []string{"12", "90", "a", "z", "345678"}},
		{"a345678z", "1234567890", []string{"a", "z", "12", "90", "345678"}},
		{"abc56789z", "1234567890", []string{"abc", "z", "1234", "0", "56789"}},
		{"a23456xyz", "1234567890", []string{"a", "xyz", "1", "7890", "23456"}},

		// Multiple matches.
		{"121231234123451234123121", "a1234123451234z", []string{"12123", "123121", "a", "z", "1234123451234"}},
		{"x-=-=-=-=-=-=-=-=-=-=-=-=", "xx-=-=-=-=-=-=-=", []string{"", "-=-=-=-=-=", "x", "", "x-=-=-=-=-=-=-="}},
		{"-=-=-=-=-=-=-=-=-=-=-=-=y", "-=-=-=-=-=-=-=yy", []string{"-=-=-=-=-=", "", "", "y", "-=-=-=-=-=-=-=y"}},

		// Non-optimal half match, the optimal diff would be
		// -q+x=H-i+e=lloHe+Hu=llo-Hew+y not -qHillo+x=HelloHe-w+Hulloy.
		{"qHilloHelloHew", "xHelloHeHulloy", []string{"qHillo", "w", "x", "Hulloy", "HelloHe"}},
	}

	d := differ{deadline: time.Now().Add(time.Hour)}
	for _, tt := range tests {
		hm, ok := d.halfMatch([]rune(tt.x), []rune(tt.y))
		var got []string
		if ok {
			got = []string{string(hm.x1), string(hm.x2), string(hm.y1), string(hm.y2), string(hm.common)}
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("halfMatch(%q, %q) differs [-want,+got]:\n%s", tt.x, tt.y, diff)
		}
	}

	// Without a deadline, the optimal diff is always computed.
	var unlimited differ
	if _, ok := unlimited.halfMatch([]rune("qHilloHelloHew"), []rune("xHelloHeHulloy")); ok {
		t.Errorf("halfMatch(...) without deadline found a match")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		x, y string
		s, t int
	}{
		{"cat", "map", 2, 2},
		{"ab", "ba", 2, 1},
		{"abc", "xbz", 2, 2},
	}
	for _, tt := range tests {
		s, u, ok := split([]rune(tt.x), []rune(tt.y), time.Time{})
		if !ok || s != tt.s || u != tt.t {
			t.Errorf("split(%q, %q) = %d, %d, %v, want %d, %d, true", tt.x, tt.y, s, u, ok, tt.s, tt.t)
		}
	}

	if _, _, ok := split([]rune("cat"), []rune("map"), time.Unix(1, 0)); ok {
		t.Errorf("split(...) with expired deadline succeeded")
	}
}

func TestDiffTokenMode(t *testing.T) {
	tests := []struct {
		name  string
		x, y  string
		exact bool // whether the result matches a rune level diff exactly
	}{
		{
			name:  "lines",
			x:     strings.Repeat("1234567890\n", 13),
			y:     strings.Repeat("abcdefghij\n", 13),
			exact: true,
		},
		{
			name:  "single-line",
			x:     strings.Repeat("1234567890", 13),
			y:     strings.Repeat("abcdefghij", 13),
			exact: true,
		},
		{
			name: "overlap",
			x:    strings.Repeat("1234567890\n", 13),
			y:    strings.Repeat("abcdefghij\n1234567890\n1234567890\n1234567890\n", 3) + "abcdefghij\n",
		},
		{
			name: "words",
			x:    strings.Repeat("The quick brown fox jumps over the lazy dog. ", 5),
			y:    strings.Repeat("The quick red fox leaps over the sleepy dog. ", 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := Diff(tt.x, tt.y, charMode)
			for _, cfg := range []config.Config{{LineMode: true}, {WordMode: true}} {
				got := Diff(tt.x, tt.y, cfg)
				if edits.Text1(got) != tt.x || edits.Text2(got) != tt.y {
					t.Errorf("Diff(...) with %+v doesn't reconstruct the inputs: %v", cfg, got)
				}
				if tt.exact && cfg.LineMode {
					if diff := cmp.Diff(want, got); diff != "" {
						t.Errorf("Diff(...) in line mode differs from rune mode [-want,+got]:\n%s", diff)
					}
				}
			}
		})
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		x, y []string
		want []edits.Diff
	}{
		{
			name: "empty",
			want: nil,
		},
		{
			name: "replace",
			x:    []string{"a\n", "b\n", "c\n"},
			y:    []string{"a\n", "x\n", "c\n"},
			want: []edits.Diff{eq("a\n"), del("b\n"), ins("x\n"), eq("c\n")},
		},
		{
			// Tokens are atomic even if they share a prefix.
			name: "shared-prefix",
			x:    []string{"abc", "def"},
			y:    []string{"abd", "def"},
			want: []edits.Diff{del("abc"), ins("abd"), eq("def")},
		},
		{
			name: "repeated",
			x:    []string{"a", "b", "a", "b"},
			y:    []string{"b", "a", "b"},
			want: []edits.Diff{del("a"), eq("bab")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.x, tt.y, charMode)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokens(...) result are different [-want,+got]:\n%s", diff)
			}
		})
	}
}

func TestDiffRandom(t *testing.T) {
	rng := rand.New(rand.NewChaCha8([32]byte{}))
	configs := []config.Config{
		charMode,
		{LineMode: true},
		{WordMode: true},
		{Deadline: time.Now().Add(time.Hour)},
		{Deadline: time.Now().Add(time.Hour), LineMode: true},
	}
	for range 200 {
		x := randomText(rng)
		y := mutate(rng, x)
		for _, cfg := range configs {
			got := Diff(x, y, cfg)
			if edits.Text1(got) != x || edits.Text2(got) != y {
				t.Fatalf("Diff(%q, %q) = %v doesn't reconstruct the inputs", x, y, got)
			}
			checkCanonical(t, got)
		}
	}
}

// checkCanonical verifies that diffs are merged.
func checkCanonical(t *testing.T, diffs []edits.Diff) {
	t.Helper()
	for i, d := range diffs {
		if d.Text == "" {
			t.Fatalf("diff %v contains an empty edit", diffs)
		}
		if i > 0 && diffs[i-1].Op == d.Op {
			t.Fatalf("diff %v contains adjacent edits of the same kind", diffs)
		}
		if i > 0 && diffs[i-1].Op == edits.Insert && d.Op == edits.Delete {
			t.Fatalf("diff %v contains an insertion before a deletion", diffs)
		}
	}
}

func randomText(rng *rand.Rand) string {
	words := []string{"foo", "bar", "baz", "qux", " ", "\n", "ä", "日本", "."}
	var sb strings.Builder
	for range rng.IntN(200) {
		sb.WriteString(words[rng.IntN(len(words))])
	}
	return sb.String()
}

func mutate(rng *rand.Rand, s string) string {
	r := []rune(s)
	for range rng.IntN(10) {
		i := 0
		if len(r) > 0 {
			i = rng.IntN(len(r))
		}
		switch rng.IntN(3) {
		case 0:
			r = append(r[:i:i], append([]rune("xyz"[:1+rng.IntN(3)]), r[i:]...)...)
		case 1:
			if len(r) > 0 {
				r = append(r[:i:i], r[min(len(r), i+1+rng.IntN(5)):]...)
			}
		case 2:
			if len(r) > 0 {
				r[i] = 'Z'
			}
		}
	}
	return string(r)
}

func FuzzDiff(f *testing.F) {
	f.Add("", "")
	f.Add("abc", "ab123c")
	f.Add("Apples are a fruit.", "Bananas are also fruit.")
	f.Add(strings.Repeat("line\n", 30), strings.Repeat("line\nother\n", 15))
	f.Fuzz(func(t *testing.T, x, y string) {
		// Invalid UTF-8 is replaced, normalize the inputs first.
		x, y = string([]rune(x)), string([]rune(y))
		for _, cfg := range []config.Config{charMode, {LineMode: true}, {WordMode: true}} {
			got := Diff(x, y, cfg)
			if edits.Text1(got) != x || edits.Text2(got) != y {
				t.Fatalf("Diff(%q, %q) = %v doesn't reconstruct the inputs", x, y, got)
			}
			checkCanonical(t, got)
		}
	})
}
