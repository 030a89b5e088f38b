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

package patchtext

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"znkr.io/dmp/internal/edits"
)

func eq(s string) edits.Diff  { return edits.Diff{Op: edits.Equal, Text: s} }
func del(s string) edits.Diff { return edits.Diff{Op: edits.Delete, Text: s} }
func ins(s string) edits.Diff { return edits.Diff{Op: edits.Insert, Text: s} }

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		patches []edits.Patch
		want    string
	}{
		{
			name: "empty",
			want: "",
		},
		{
			name: "simple",
			patches: []edits.Patch{{
				Start1: 20, Start2: 21, Length1: 18, Length2: 17,
				Diffs: []edits.Diff{eq("jump"), del("s"), ins("ed"), eq(" over "), del("the"), ins("a"), eq("\nlaz")},
			}},
			want: "@@ -21,18 +22,17 @@\n jump\n-s\n+ed\n  over \n-the\n+a\n %0Alaz\n",
		},
		{
			name:    "length-one",
			patches: []edits.Patch{{Start1: 0, Start2: 0, Length1: 1, Length2: 1, Diffs: []edits.Diff{del("a"), ins("b")}}},
			want:    "@@ -1 +1 @@\n-a\n+b\n",
		},
		{
			name:    "empty-target",
			patches: []edits.Patch{{Start1: 0, Start2: 0, Length1: 3, Length2: 0, Diffs: []edits.Diff{del("abc")}}},
			want:    "@@ -1,3 +0,0 @@\n-abc\n",
		},
		{
			name:    "empty-source",
			patches: []edits.Patch{{Start1: 0, Start2: 0, Length1: 0, Length2: 3, Diffs: []edits.Diff{ins("abc")}}},
			want:    "@@ -0,0 +1,3 @@\n+abc\n",
		},
		{
			name: "character-encoding",
			patches: []edits.Patch{{
				Start1: 0, Start2: 0, Length1: 21, Length2: 21,
				Diffs: []edits.Diff{del("`1234567890-=[]\\;',./"), ins("~!@#$%^&*()_+{}|:\"<>?")},
			}},
			want: "@@ -1,21 +1,21 @@\n-%601234567890-=%5B%5D%5C;',./\n+~!@#$%25%5E&*()_+%7B%7D%7C:%22%3C%3E?\n",
		},
		{
			name:    "multibyte",
			patches: []edits.Patch{{Start1: 2, Start2: 2, Length1: 1, Length2: 1, Diffs: []edits.Diff{del("ä"), ins("ö")}}},
			want:    "@@ -3 +3 @@\n-%C3%A4\n+%C3%B6\n",
		},
		{
			name: "multiple-hunks",
			patches: []edits.Patch{
				{Start1: 0, Start2: 0, Length1: 9, Length2: 9, Diffs: []edits.Diff{del("f"), ins("F"), eq("oo+fooba")}},
				{Start1: 6, Start2: 6, Length1: 9, Length2: 9, Diffs: []edits.Diff{eq("obar"), del(","), ins("."), eq(" tes")}},
			},
			want: "@@ -1,9 +1,9 @@\n-f\n+F\n oo+fooba\n@@ -7,9 +7,9 @@\n obar\n-,\n+.\n  tes\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.patches)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Format(...) differs [-want,+got]:\n%s", diff)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []edits.Patch
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "simple",
			text: "@@ -21,18 +22,17 @@\n jump\n-s\n+ed\n  over \n-the\n+a\n %0alaz\n",
			want: []edits.Patch{{
				Start1: 20, Start2: 21, Length1: 18, Length2: 17,
				Diffs: []edits.Diff{eq("jump"), del("s"), ins("ed"), eq(" over "), del("the"), ins("a"), eq("\nlaz")},
			}},
		},
		{
			name: "implicit-length",
			text: "@@ -1 +1 @@\n-a\n+b\n",
			want: []edits.Patch{{Start1: 0, Start2: 0, Length1: 1, Length2: 1, Diffs: []edits.Diff{del("a"), ins("b")}}},
		},
		{
			name: "zero-length",
			text: "@@ -0,0 +1,3 @@\n+abc\n",
			want: []edits.Patch{{Start1: 0, Start2: 0, Length1: 0, Length2: 3, Diffs: []edits.Diff{ins("abc")}}},
		},
		{
			name: "character-encoding",
			text: "@@ -1,21 +1,21 @@\n-%601234567890-=%5B%5D%5C;',./\n+~!@#$%25%5E&*()_+%7B%7D%7C:%22%3C%3E?\n",
			want: []edits.Patch{{
				Start1: 0, Start2: 0, Length1: 21, Length2: 21,
				Diffs: []edits.Diff{del("`1234567890-=[]\\;',./"), ins("~!@#$%^&*()_+{}|:\"<>?")},
			}},
		},
		{
			name: "empty-lines",
			text: "@@ -1 +1 @@\n\n-a\n\n+b",
			want: []edits.Patch{{Start1: 0, Start2: 0, Length1: 1, Length2: 1, Diffs: []edits.Diff{del("a"), ins("b")}}},
		},
		{
			name: "multiple-hunks",
			text: "@@ -1,9 +1,9 @@\n-f\n+F\n oo+fooba\n@@ -7,9 +7,9 @@\n obar\n-,\n+.\n  tes\n",
			want: []edits.Patch{
				{Start1: 0, Start2: 0, Length1: 9, Length2: 9, Diffs: []edits.Diff{del("f"), ins("F"), eq("oo+fooba")}},
				{Start1: 6, Start2: 6, Length1: 9, Length2: 9, Diffs: []edits.Diff{eq("obar"), del(","), ins("."), eq(" tes")}},
			},
		},
		{
			name: "hunk-without-edits",
			text: "@@ -1,0 +1,0 @@\n",
			want: []edits.Patch{{Start1: 1, Start2: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.text, err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse(%q) differs [-want,+got]:\n%s", tt.text, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *ParseError
	}{
		{"garbage", "Bad\nPatch\n", &ParseError{Line: 1, Text: "Bad", Err: ErrHeader}},
		{"missing-suffix", "@@ -1 +1\n-a\n", &ParseError{Line: 1, Text: "@@ -1 +1", Err: ErrHeader}},
		{"signed-number", "@@ -+1 +1 @@\n-a\n", &ParseError{Line: 1, Text: "@@ -+1 +1 @@", Err: ErrHeader}},
		{"zero-start", "@@ -0 +1 @@\n-a\n", &ParseError{Line: 1, Text: "@@ -0 +1 @@", Err: ErrHeader}},
		{"bad-prefix", "@@ -1 +1 @@\n-a\nxb\n", &ParseError{Line: 3, Text: "xb", Err: ErrPrefix}},
		{"bad-second-header", "@@ -1 +1 @@\n-a\n+b\n@@ bad\n", &ParseError{Line: 4, Text: "@@ bad", Err: ErrHeader}},
		{"empty-length", "@@ -1, +1, @@\n-a\n+b\n", &ParseError{Line: 1, Text: "@@ -1, +1, @@", Err: ErrHeader}},
		{"truncated-escape", "@@ -1 +1 @@\n-%4\n", &ParseError{Line: 2, Text: "-%4", Err: ErrEscape}},
		{"bad-escape", "@@ -1 +1 @@\n-%zz\n", &ParseError{Line: 2, Text: "-%zz", Err: ErrEscape}},
		{"invalid-utf8", "@@ -1 +1 @@\n+%C3\n", &ParseError{Line: 2, Text: "+%C3", Err: ErrEscape}},
		{"short-body", "@@ -1,3 +1,3 @@\n a\n", &ParseError{Line: 1, Text: "@@ -1,3 +1,3 @@", Err: ErrLength}},
		{"long-body", "@@ -1 +1 @@\n-ab\n+b\n", &ParseError{Line: 1, Text: "@@ -1 +1 @@", Err: ErrLength}},
		{"multibyte-length", "@@ -1,2 +1,2 @@\n ü\n", &ParseError{Line: 1, Text: "@@ -1,2 +1,2 @@", Err: ErrLength}},
		{
			name: "second-hunk-length",
			text: "@@ -1 +1 @@\n-a\n+b\n@@ -5,2 +5 @@\n x\n-y\n+z\n",
			want: &ParseError{Line: 4, Text: "@@ -5,2 +5 @@", Err: ErrLength},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err == nil {
				t.Fatalf("Parse(%q) = %v, want error", tt.text, got)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) returned %T, want *ParseError", tt.text, err)
			}
			if diff := cmp.Diff(tt.want, perr, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("Parse(%q) error differs [-want,+got]:\n%s", tt.text, diff)
			}
			if !errors.Is(err, tt.want.Err) {
				t.Errorf("errors.Is(%v, %v) = false, want true", err, tt.want.Err)
			}
		})
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add("jump", "s", "ed", 20, 21)
	f.Add("\nlaz", "`1234567890-=[]\\;',./", "~!@#$%^&*()_+{}|:\"<>?", 0, 0)
	f.Add("", "", "", 0, 0)
	f.Add("Köln", "ä", "%0A", 3, 7)
	f.Fuzz(func(t *testing.T, equal, deleted, inserted string, start1, start2 int) {
		if !utf8.ValidString(equal) || !utf8.ValidString(deleted) || !utf8.ValidString(inserted) {
			t.Skip()
		}
		if start1 < 0 || start2 < 0 || start1 > 1<<30 || start2 > 1<<30 {
			t.Skip()
		}
		diffs := []edits.Diff{eq(equal), del(deleted), ins(inserted)}
		in := []edits.Patch{{
			Diffs:   diffs,
			Start1:  start1,
			Start2:  start2,
			Length1: utf8.RuneCountInString(equal + deleted),
			Length2: utf8.RuneCountInString(equal + inserted),
		}}
		text := Format(in)
		out, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(Format(...)) failed: %v\n%s", err, text)
		}
		if diff := cmp.Diff(in, out); diff != "" {
			t.Errorf("Parse(Format(...)) differs [-want,+got]:\n%s", diff)
		}
	})
}

func FuzzParse(f *testing.F) {
	f.Add("@@ -21,18 +22,17 @@\n jump\n-s\n+ed\n  over \n-the\n+a\n %0Alaz\n")
	f.Add("@@ -1 +1 @@\n-a\n+b\n")
	f.Add("@@ -0,0 +1,3 @@\n+abc\n")
	f.Add("Bad\nPatch\n")
	f.Fuzz(func(t *testing.T, text string) {
		patches, err := Parse(text)
		if err != nil {
			return
		}
		again, err := Parse(Format(patches))
		if err != nil {
			t.Fatalf("Parse(Format(Parse(%q))) failed: %v", text, err)
		}
		if diff := cmp.Diff(patches, again, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Parse(Format(Parse(%q))) differs [-want,+got]:\n%s", text, diff)
		}
	})
}
