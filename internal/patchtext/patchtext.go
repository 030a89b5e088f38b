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

// Package patchtext implements the textual representation of patches.
//
// A patch is a sequence of hunks. Every hunk starts with a header line
//
//	@@ -start1,length1 +start2,length2 @@
//
// followed by one line per edit. The first character of an edit line describes the operation
// (' ' for equal, '-' for delete and '+' for insert), the rest is the edit's text with all
// characters except for letters, digits, space and -_.!~*'();/?:@&=+$,# percent-encoded. Starts
// are 1-based. A length of 1 is omitted, an empty span is written as start,0 where start is the
// position before the span.
package patchtext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"znkr.io/dmp/internal/edits"
)

// Errors wrapped by [ParseError].
var (
	ErrHeader = errors.New("invalid hunk header")
	ErrPrefix = errors.New("invalid edit prefix")
	ErrEscape = errors.New("invalid escape sequence")
	ErrLength = errors.New("hunk length doesn't match header")
)

// ParseError describes a problem parsing a patch text.
type ParseError struct {
	Line int    // 1-based line number
	Text string // the offending line
	Err  error  // one of ErrHeader, ErrPrefix, ErrEscape or ErrLength
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Format returns the textual representation of patches.
func Format(patches []edits.Patch) string {
	var b []byte
	for _, p := range patches {
		b = AppendHunk(b, p)
	}
	return string(b)
}

// AppendHunk appends the textual representation of p to b.
func AppendHunk(b []byte, p edits.Patch) []byte {
	b = append(b, "@@ -"...)
	b = appendCoords(b, p.Start1, p.Length1)
	b = append(b, " +"...)
	b = appendCoords(b, p.Start2, p.Length2)
	b = append(b, " @@\n"...)
	for _, d := range p.Diffs {
		switch d.Op {
		case edits.Insert:
			b = append(b, '+')
		case edits.Delete:
			b = append(b, '-')
		case edits.Equal:
			b = append(b, ' ')
		}
		b = appendEscaped(b, d.Text)
		b = append(b, '\n')
	}
	return b
}

func appendCoords(b []byte, start, length int) []byte {
	switch length {
	case 0:
		b = strconv.AppendInt(b, int64(start), 10)
		return append(b, ",0"...)
	case 1:
		return strconv.AppendInt(b, int64(start+1), 10)
	default:
		b = strconv.AppendInt(b, int64(start+1), 10)
		b = append(b, ',')
		return strconv.AppendInt(b, int64(length), 10)
	}
}

// unescaped contains all bytes that are not percent-encoded.
var unescaped = func() (t [256]bool) {
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	for _, c := range " -_.!~*'();/?:@&=+$,#" {
		t[c] = true
	}
	return t
}()

func appendEscaped(b []byte, s string) []byte {
	const hex = "0123456789ABCDEF"
	for i := range len(s) {
		c := s[i]
		if unescaped[c] {
			b = append(b, c)
			continue
		}
		b = append(b, '%', hex[c>>4], hex[c&0xf])
	}
	return b
}

// unescape decodes all percent-encoded bytes in s. The result must be valid UTF-8.
func unescape(s string) (string, bool) {
	if !strings.Contains(s, "%") {
		return s, utf8.ValidString(s)
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b = append(b, s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", false
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", false
		}
		b = append(b, hi<<4|lo)
		i += 2
	}
	return string(b), utf8.Valid(b)
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Parse parses the textual representation of a patch. Empty lines are ignored. Either all hunks
// are parsed successfully or a *ParseError is returned.
func Parse(text string) ([]edits.Patch, error) {
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	var patches []edits.Patch
	for i := 0; i < len(lines); {
		if lines[i] == "" {
			i++
			continue
		}
		header := i
		p, ok := parseHeader(lines[header])
		if !ok {
			return nil, &ParseError{Line: header + 1, Text: lines[header], Err: ErrHeader}
		}
		i++

	body:
		for ; i < len(lines); i++ {
			line := lines[i]
			if line == "" {
				continue
			}
			var op edits.Op
			switch line[0] {
			case '+':
				op = edits.Insert
			case '-':
				op = edits.Delete
			case ' ':
				op = edits.Equal
			case '@':
				// Start of the next hunk.
				break body
			default:
				return nil, &ParseError{Line: i + 1, Text: line, Err: ErrPrefix}
			}
			s, ok := unescape(line[1:])
			if !ok {
				return nil, &ParseError{Line: i + 1, Text: line, Err: ErrEscape}
			}
			p.Diffs = append(p.Diffs, edits.Diff{Op: op, Text: s})
		}
		if utf8.RuneCountInString(edits.Text1(p.Diffs)) != p.Length1 ||
			utf8.RuneCountInString(edits.Text2(p.Diffs)) != p.Length2 {
			return nil, &ParseError{Line: header + 1, Text: lines[header], Err: ErrLength}
		}
		patches = append(patches, p)
	}
	return patches, nil
}

func parseHeader(line string) (edits.Patch, bool) {
	var p edits.Patch
	rest, ok := strings.CutPrefix(line, "@@ -")
	if !ok {
		return p, false
	}
	rest, ok = strings.CutSuffix(rest, " @@")
	if !ok {
		return p, false
	}
	coords1, coords2, ok := strings.Cut(rest, " +")
	if !ok {
		return p, false
	}
	var ok1, ok2 bool
	p.Start1, p.Length1, ok1 = parseCoords(coords1)
	p.Start2, p.Length2, ok2 = parseCoords(coords2)
	return p, ok1 && ok2
}

func parseCoords(s string) (start, length int, ok bool) {
	a, b, hasLength := strings.Cut(s, ",")
	start, ok = atoi(a)
	if !ok {
		return 0, 0, false
	}
	switch {
	case !hasLength:
		length = 1
	case b == "0":
		return start, 0, true
	default:
		if length, ok = atoi(b); !ok {
			return 0, 0, false
		}
	}
	if start == 0 {
		// A non-empty span can't start before the first rune.
		return 0, 0, false
	}
	return start - 1, length, true
}

// atoi parses a non-negative decimal number.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
