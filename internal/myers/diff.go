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
	"slices"
	"time"

	"znkr.io/dmp/internal/cleanup"
	"znkr.io/dmp/internal/config"
	"znkr.io/dmp/internal/edits"
	"znkr.io/dmp/internal/tokens"
)

// tokenModeMin is the length both texts must exceed before they are diffed token by token first.
const tokenModeMin = 100

// Diff compares x and y rune by rune and returns an edit script that transforms x into y.
//
// The computation stops looking for an optimal result once cfg.Deadline has passed. If
// cfg.WordMode or cfg.LineMode is set, long texts are first diffed word by word or line by line
// respectively. Invalid UTF-8 is replaced by utf8.RuneError.
func Diff(x, y string, cfg config.Config) []edits.Diff {
	d := differ{deadline: cfg.Deadline}
	switch {
	case cfg.WordMode:
		d.tokenize = tokens.SplitWords
	case cfg.LineMode:
		d.tokenize = tokens.SplitLines
	}
	return d.run([]rune(x), []rune(y), d.tokenize != nil)
}

type differ struct {
	deadline time.Time
	tokenize func(string) []string // nil disables token mode

	stack []task
	out   []edits.Diff
}

type taskKind int8

const (
	solveTask taskKind = iota // diff x and y
	emitTask                  // append diff to the result
	mergeTask                 // merge everything appended since from
)

// task is a unit of work for the differ. Instead of recursing into sub-problems, the differ
// pushes tasks onto a stack and processes them in order. A sub-problem is represented by a
// solveTask that, when processed, pushes its own mergeTask first, so that the merge runs after
// everything the sub-problem produced has been appended.
type task struct {
	kind taskKind

	// solveTask
	x, y   []rune
	tokens bool // whether token mode may be used

	// emitTask
	diff edits.Diff

	// mergeTask
	from int
}

func solve(x, y []rune, useTokens bool) task {
	return task{kind: solveTask, x: x, y: y, tokens: useTokens}
}

func emit(op edits.Op, text string) task {
	return task{kind: emitTask, diff: edits.Diff{Op: op, Text: text}}
}

func (d *differ) run(x, y []rune, useTokens bool) []edits.Diff {
	d.stack = append(d.stack[:0], solve(x, y, useTokens))
	d.out = nil
	for len(d.stack) > 0 {
		t := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		switch t.kind {
		case solveTask:
			d.solve(t.x, t.y, t.tokens)
		case emitTask:
			if t.diff.Text != "" {
				d.out = append(d.out, t.diff)
			}
		case mergeTask:
			merged := cleanup.Merge(slices.Clone(d.out[t.from:]))
			d.out = append(d.out[:t.from], merged...)
		}
	}
	return d.out
}

func (d *differ) push(tasks ...task) {
	for i := len(tasks) - 1; i >= 0; i-- {
		d.stack = append(d.stack, tasks[i])
	}
}

// solve strips the common prefix and suffix of x and y and schedules the computation of the
// remaining middle part.
func (d *differ) solve(x, y []rune, useTokens bool) {
	if slices.Equal(x, y) {
		if len(x) > 0 {
			d.out = append(d.out, edits.Diff{Op: edits.Equal, Text: string(x)})
		}
		return
	}

	p := edits.CommonPrefix(x, y)
	prefix := x[:p]
	x, y = x[p:], y[p:]
	s := edits.CommonSuffix(x, y)
	suffix := x[len(x)-s:]
	x, y = x[:len(x)-s], y[:len(y)-s]

	d.stack = append(d.stack, task{kind: mergeTask, from: len(d.out)})
	d.stack = append(d.stack, emit(edits.Equal, string(suffix)))
	if len(prefix) > 0 {
		d.out = append(d.out, edits.Diff{Op: edits.Equal, Text: string(prefix)})
	}
	d.push(d.compute(x, y, useTokens)...)
}

// compute returns the tasks that diff x and y.
//
// Important: x and y must not have a common prefix or a common suffix.
func (d *differ) compute(x, y []rune, useTokens bool) []task {
	if len(x) == 0 {
		return []task{emit(edits.Insert, string(y))}
	}
	if len(y) == 0 {
		return []task{emit(edits.Delete, string(x))}
	}

	long, short, op := x, y, edits.Delete
	if len(x) < len(y) {
		long, short, op = y, x, edits.Insert
	}
	if i := edits.Index(long, short, 0); i >= 0 {
		// The shorter text is inside the longer text.
		return []task{
			emit(op, string(long[:i])),
			emit(edits.Equal, string(short)),
			emit(op, string(long[i+len(short):])),
		}
	}
	if len(short) == 1 {
		// After the previous check, the single rune can't be an equality.
		return []task{emit(edits.Delete, string(x)), emit(edits.Insert, string(y))}
	}

	if hm, ok := d.halfMatch(x, y); ok {
		return []task{
			solve(hm.x1, hm.y1, useTokens),
			emit(edits.Equal, string(hm.common)),
			solve(hm.x2, hm.y2, useTokens),
		}
	}

	if useTokens && d.tokenize != nil && len(x) > tokenModeMin && len(y) > tokenModeMin {
		return d.tokenMode(x, y)
	}

	s, t, ok := split(x, y, d.deadline)
	if !ok {
		return []task{emit(edits.Delete, string(x)), emit(edits.Insert, string(y))}
	}
	return []task{solve(x[:s], y[:t], false), solve(x[s:], y[t:], false)}
}

// halfMatch splits x and y around a common substring that is at least half as long as the longer
// of the two.
type halfMatch struct {
	x1, x2 []rune // x = x1 + common + x2
	y1, y2 []rune // y = y1 + common + y2
	common []rune
}

// halfMatch looks for a common substring of x and y that is at least half the length of the
// longer text. This speedup can produce non-minimal diffs, it's only used if there is a deadline.
func (d *differ) halfMatch(x, y []rune) (halfMatch, bool) {
	if d.deadline.IsZero() {
		return halfMatch{}, false
	}

	long, short := y, x
	if len(x) > len(y) {
		long, short = x, y
	}
	if len(long) < 4 || 2*len(short) < len(long) {
		return halfMatch{}, false
	}

	// Use the second and the third quarter of the longer text as seeds.
	hm1, ok1 := halfMatchAt(long, short, (len(long)+3)/4)
	hm2, ok2 := halfMatchAt(long, short, (len(long)+1)/2)
	var hm halfMatch
	switch {
	case !ok1 && !ok2:
		return halfMatch{}, false
	case !ok2:
		hm = hm1
	case !ok1:
		hm = hm2
	case len(hm1.common) > len(hm2.common):
		hm = hm1
	default:
		hm = hm2
	}

	// hm is in terms of long (x) and short (y).
	if len(x) > len(y) {
		return hm, true
	}
	return halfMatch{x1: hm.y1, x2: hm.y2, y1: hm.x1, y2: hm.x2, common: hm.common}, true
}

// halfMatchAt uses the quarter of long starting at i as a seed to find the longest common
// substring of long and short. The result is in terms of x = long and y = short.
func halfMatchAt(long, short []rune, i int) (halfMatch, bool) {
	seed := long[i : i+len(long)/4]
	var best halfMatch
	n := 0
	for j := edits.Index(short, seed, 0); j >= 0; j = edits.Index(short, seed, j+1) {
		p := edits.CommonPrefix(long[i:], short[j:])
		s := edits.CommonSuffix(long[:i], short[:j])
		if n < p+s {
			n = p + s
			best = halfMatch{
				x1:     long[:i-s],
				x2:     long[i+p:],
				y1:     short[:j-s],
				y2:     short[j+p:],
				common: short[j-s : j+p],
			}
		}
	}
	if 2*n < len(long) {
		return halfMatch{}, false
	}
	return best, true
}

// Tokens compares the token sequences x and y and returns an edit script that transforms the
// concatenation of x into the concatenation of y. The text of every edit consists of whole
// tokens.
func Tokens(x, y []string, cfg config.Config) []edits.Diff {
	return diffTokens(x, y, cfg.Deadline)
}

func diffTokens(x, y []string, deadline time.Time) []edits.Diff {
	// The first text may use at most two thirds of the available runes, so that the second text
	// has some room left.
	enc := tokens.NewEncoder()
	tx := enc.Encode(x, tokens.MaxTokens*2/3)
	ty := enc.Encode(y, tokens.MaxTokens)

	d := differ{deadline: deadline}
	diffs := d.run(tx, ty, false)
	enc.Decode(diffs)
	return diffs
}

// tokenMode diffs x and y token by token and schedules a rune level diff for every replaced
// block of tokens.
func (d *differ) tokenMode(x, y []rune) []task {
	diffs := diffTokens(d.tokenize(string(x)), d.tokenize(string(y)), d.deadline)

	// Eliminate freak matches (e.g. blank lines).
	diffs = cleanup.Semantic(diffs)

	var tasks []task
	var del, ins string
	flush := func() {
		switch {
		case del != "" && ins != "":
			tasks = append(tasks, solve([]rune(del), []rune(ins), false))
		case del != "":
			tasks = append(tasks, emit(edits.Delete, del))
		case ins != "":
			tasks = append(tasks, emit(edits.Insert, ins))
		}
		del, ins = "", ""
	}
	for _, diff := range diffs {
		switch diff.Op {
		case edits.Delete:
			del += diff.Text
		case edits.Insert:
			ins += diff.Text
		case edits.Equal:
			flush()
			tasks = append(tasks, emit(edits.Equal, diff.Text))
		}
	}
	flush()
	return tasks
}
