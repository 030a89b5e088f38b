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

// Package patch creates and applies patches.
//
// A patch is a list of hunks. Each hunk contains an edit script including some context around
// the edits and the position of the edits in both texts. Unlike unified diffs, hunk positions
// are rolling: the position of a hunk in the first text is expressed relative to the text after
// all previous hunks have been applied. This makes it possible to apply hunks one after another,
// even if some of them fail.
//
// When a patch is applied, every hunk is located in the target text using fuzzy matching. This
// allows patches to be applied to texts that differ from the text they were created from.
package patch

import (
	"slices"
	"unicode/utf8"

	"znkr.io/dmp/internal/bitap"
	"znkr.io/dmp/internal/cleanup"
	"znkr.io/dmp/internal/config"
	"znkr.io/dmp/internal/edits"
	"znkr.io/dmp/internal/myers"
)

// MakeFromTexts computes a patch that transforms text1 into text2.
func MakeFromTexts(text1, text2 string, cfg config.Config) []edits.Patch {
	diffs := myers.Diff(text1, text2, cfg)
	if len(diffs) > 2 {
		diffs = cleanup.Semantic(diffs)
		diffs = cleanup.Efficiency(diffs, cfg.EditCost)
	}
	return Make(text1, diffs, cfg)
}

// Make computes a patch from diffs. The first input of diffs must be text1.
func Make(text1 string, diffs []edits.Diff, cfg config.Config) []edits.Patch {
	if len(diffs) == 0 {
		return nil
	}
	n := 0
	for _, d := range diffs {
		if d.Op != edits.Insert {
			n += utf8.RuneCountInString(d.Text)
		}
	}
	if n != utf8.RuneCountInString(text1) {
		panic("text1 doesn't match the first text of the diffs")
	}

	var (
		patches []edits.Patch
		p       edits.Patch
		// Positions in the first and second text.
		count1, count2 int
		// The text before and after applying the current hunk. Hunk positions are relative to
		// the text after all previous hunks have been applied.
		prepatch  = []rune(text1)
		postpatch = []rune(text1)
	)
	for i, d := range diffs {
		text := []rune(d.Text)
		if len(p.Diffs) == 0 && d.Op != edits.Equal {
			// A new hunk starts here.
			p.Start1, p.Start2 = count1, count2
		}

		switch d.Op {
		case edits.Insert:
			p.Diffs = append(p.Diffs, d)
			p.Length2 += len(text)
			postpatch = slices.Insert(postpatch, count2, text...)
		case edits.Delete:
			p.Diffs = append(p.Diffs, d)
			p.Length1 += len(text)
			postpatch = slices.Delete(postpatch, count2, count2+len(text))
		case edits.Equal:
			if len(text) <= 2*cfg.Margin && len(p.Diffs) > 0 && i != len(diffs)-1 {
				// Small equality inside a hunk.
				p.Diffs = append(p.Diffs, d)
				p.Length1 += len(text)
				p.Length2 += len(text)
			}
			if len(text) >= 2*cfg.Margin && len(p.Diffs) > 0 {
				// Time for a new hunk.
				addContext(&p, prepatch, cfg)
				patches = append(patches, p)
				p = edits.Patch{}
				prepatch = slices.Clone(postpatch)
				count1 = count2
			}
		}

		if d.Op != edits.Insert {
			count1 += len(text)
		}
		if d.Op != edits.Delete {
			count2 += len(text)
		}
	}

	// Pick up the leftover hunk.
	if len(p.Diffs) > 0 {
		addContext(&p, prepatch, cfg)
		patches = append(patches, p)
	}
	return patches
}

// addContext grows the context around the edits of p until the hunk is unique within text, but
// not beyond what the matcher can locate. Another cfg.Margin runes are added on top.
func addContext(p *edits.Patch, text []rune, cfg config.Config) {
	if len(text) == 0 {
		return
	}
	limit := bitap.MaxPattern(cfg) - 2*cfg.Margin
	pattern := text[p.Start2 : p.Start2+p.Length1]
	padding := 0
	for edits.Index(text, pattern, 0) != edits.LastIndex(text, pattern, len(text)) && len(pattern) < limit {
		padding += cfg.Margin
		pattern = text[max(0, p.Start2-padding):min(len(text), p.Start2+p.Length1+padding)]
		if cfg.Margin == 0 {
			break
		}
	}
	padding += cfg.Margin

	prefix := text[max(0, p.Start2-padding):p.Start2]
	if len(prefix) > 0 {
		p.Diffs = slices.Insert(p.Diffs, 0, edits.Diff{Op: edits.Equal, Text: string(prefix)})
	}
	end := p.Start2 + p.Length1
	suffix := text[end:min(len(text), end+padding)]
	if len(suffix) > 0 {
		p.Diffs = append(p.Diffs, edits.Diff{Op: edits.Equal, Text: string(suffix)})
	}

	p.Start1 -= len(prefix)
	p.Start2 -= len(prefix)
	p.Length1 += len(prefix) + len(suffix)
	p.Length2 += len(prefix) + len(suffix)
}

// Apply applies patches to text. It returns the new text and for every hunk in patches if it
// could be applied. Hunks that are larger than the matcher can handle are split before they are
// applied, such a hunk is only reported as applied if all of its pieces were applied.
//
// The input patches are not modified.
func Apply(patches []edits.Patch, text string, cfg config.Config) (string, []bool) {
	if len(patches) == 0 {
		return text, nil
	}

	patches = edits.ClonePatches(patches)
	padding := []rune(addPadding(patches, cfg.Margin))
	buf := slices.Concat(padding, []rune(text), padding)
	pieces, origin := splitMax(patches, cfg)

	// Edits inside of a hunk are never diffed line by line.
	dcfg := cfg
	dcfg.LineMode = false
	dcfg.WordMode = false

	size := bitap.MaxPattern(cfg)
	// delta is the offset between the expected and the actual location of the previous hunk.
	delta := 0
	results := make([]bool, len(pieces))
	for i, p := range pieces {
		expected := p.Start2 + delta
		text1 := []rune(edits.Text1(p.Diffs))

		var start, end int
		var ok bool
		long := len(text1) > size
		if long {
			// splitMax only leaves oversized hunks for very large deletions. Locate the head and
			// the tail of the hunk separately.
			start, ok = bitap.Match(buf, text1[:size], expected, cfg)
			if ok {
				end, ok = bitap.Match(buf, text1[len(text1)-size:], expected+len(text1)-size, cfg)
				ok = ok && start < end
			}
		} else {
			start, ok = bitap.Match(buf, text1, expected, cfg)
		}
		if !ok {
			// Subtract the delta for this failed hunk from subsequent hunks.
			delta -= p.Length2 - p.Length1
			continue
		}

		results[i] = true
		delta = start - expected
		var text2 []rune
		if long {
			text2 = buf[start:min(end+size, len(buf))]
		} else {
			text2 = buf[start:min(start+len(text1), len(buf))]
		}
		if slices.Equal(text1, text2) {
			buf = slices.Replace(buf, start, start+len(text1), []rune(edits.Text2(p.Diffs))...)
			continue
		}

		// Imperfect match. Diff the expected and the actual text to translate positions.
		diffs := myers.Diff(string(text1), string(text2), dcfg)
		if long && float64(edits.Substitutions(diffs))/float64(len(text1)) > cfg.DeleteThreshold {
			// The ends match, but the content in between is too different.
			results[i] = false
			continue
		}
		diffs = cleanup.SemanticLossless(diffs)
		index1 := 0
		for _, d := range p.Diffs {
			n := utf8.RuneCountInString(d.Text)
			switch d.Op {
			case edits.Insert:
				at := min(start+edits.XIndex(diffs, index1), len(buf))
				buf = slices.Insert(buf, at, []rune(d.Text)...)
			case edits.Delete:
				from := min(start+edits.XIndex(diffs, index1), len(buf))
				to := max(from, min(start+edits.XIndex(diffs, index1+n), len(buf)))
				buf = slices.Delete(buf, from, to)
			}
			if d.Op != edits.Delete {
				index1 += n
			}
		}
	}

	applied := make([]bool, len(patches))
	for i := range applied {
		applied[i] = true
	}
	for i, ok := range results {
		applied[origin[i]] = applied[origin[i]] && ok
	}

	from := min(len(padding), len(buf))
	to := max(from, len(buf)-len(padding))
	return string(buf[from:to]), applied
}

// addPadding adds margin runes of padding to the start and the end of patches, so that edits at
// the edges of a text can be matched. The padding consists of the runes 1 to margin. It returns
// the padding. The patches are modified in place.
func addPadding(patches []edits.Patch, margin int) string {
	pad := make([]rune, margin)
	for i := range pad {
		pad[i] = rune(i + 1)
	}
	padding := string(pad)

	for i := range patches {
		patches[i].Start1 += margin
		patches[i].Start2 += margin
	}

	first := &patches[0]
	if len(first.Diffs) == 0 || first.Diffs[0].Op != edits.Equal {
		first.Diffs = slices.Insert(first.Diffs, 0, edits.Diff{Op: edits.Equal, Text: padding})
		first.Start1 -= margin
		first.Start2 -= margin
		first.Length1 += margin
		first.Length2 += margin
	} else if n := utf8.RuneCountInString(first.Diffs[0].Text); n < margin {
		// Grow the first equality.
		extra := margin - n
		first.Diffs[0].Text = string(pad[n:]) + first.Diffs[0].Text
		first.Start1 -= extra
		first.Start2 -= extra
		first.Length1 += extra
		first.Length2 += extra
	}

	last := &patches[len(patches)-1]
	if len(last.Diffs) == 0 || last.Diffs[len(last.Diffs)-1].Op != edits.Equal {
		last.Diffs = append(last.Diffs, edits.Diff{Op: edits.Equal, Text: padding})
		last.Length1 += margin
		last.Length2 += margin
	} else if n := utf8.RuneCountInString(last.Diffs[len(last.Diffs)-1].Text); n < margin {
		// Grow the last equality.
		extra := margin - n
		last.Diffs[len(last.Diffs)-1].Text += string(pad[:extra])
		last.Length1 += extra
		last.Length2 += extra
	}

	return padding
}

// splitMax breaks up hunks that are longer than the longest pattern the matcher can locate. For
// every resulting hunk, origin holds the index of the hunk in patches it was cut from.
func splitMax(patches []edits.Patch, cfg config.Config) (out []edits.Patch, origin []int) {
	margin := cfg.Margin
	size := max(bitap.MaxPattern(cfg), 2*margin+1)

	out = make([]edits.Patch, 0, len(patches))
	origin = make([]int, 0, len(patches))
	for src, big := range patches {
		if big.Length1 <= size {
			out = append(out, big)
			origin = append(origin, src)
			continue
		}

		start1, start2 := big.Start1, big.Start2
		diffs := slices.Clone(big.Diffs)
		var precontext []rune
		for len(diffs) > 0 {
			p := edits.Patch{
				Start1: start1 - len(precontext),
				Start2: start2 - len(precontext),
			}
			empty := true
			if len(precontext) > 0 {
				p.Length1 = len(precontext)
				p.Length2 = len(precontext)
				p.Diffs = append(p.Diffs, edits.Diff{Op: edits.Equal, Text: string(precontext)})
			}
			for len(diffs) > 0 && p.Length1 < size-margin {
				op, text := diffs[0].Op, []rune(diffs[0].Text)
				switch {
				case op == edits.Insert:
					// Insertions are harmless.
					p.Length2 += len(text)
					start2 += len(text)
					p.Diffs = append(p.Diffs, diffs[0])
					diffs = diffs[1:]
					empty = false
				case op == edits.Delete && len(p.Diffs) == 1 && p.Diffs[0].Op == edits.Equal && len(text) > 2*size:
					// A large deletion, let it pass in one chunk.
					p.Length1 += len(text)
					start1 += len(text)
					p.Diffs = append(p.Diffs, diffs[0])
					diffs = diffs[1:]
					empty = false
				default:
					// Deletion or equality, only take as much as fits.
					chunk := text[:min(len(text), size-p.Length1-margin)]
					p.Length1 += len(chunk)
					start1 += len(chunk)
					if op == edits.Equal {
						p.Length2 += len(chunk)
						start2 += len(chunk)
					} else {
						empty = false
					}
					p.Diffs = append(p.Diffs, edits.Diff{Op: op, Text: string(chunk)})
					if len(chunk) == len(text) {
						diffs = diffs[1:]
					} else {
						diffs[0].Text = string(text[len(chunk):])
					}
				}
			}

			// Head context for the next hunk.
			precontext = []rune(edits.Text2(p.Diffs))
			precontext = precontext[max(0, len(precontext)-margin):]

			// Tail context for this hunk.
			postcontext := []rune(edits.Text1(diffs))
			postcontext = postcontext[:min(len(postcontext), margin)]
			if len(postcontext) > 0 {
				p.Length1 += len(postcontext)
				p.Length2 += len(postcontext)
				if n := len(p.Diffs); n > 0 && p.Diffs[n-1].Op == edits.Equal {
					p.Diffs[n-1].Text += string(postcontext)
				} else {
					p.Diffs = append(p.Diffs, edits.Diff{Op: edits.Equal, Text: string(postcontext)})
				}
			}

			if !empty {
				out = append(out, p)
				origin = append(origin, src)
			}
		}
	}
	return out, origin
}
