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

// Package bitap implements fuzzy string search with the Bitap algorithm.
//
// The search looks for the best approximate occurrence of a pattern near an expected location.
// Candidates are rated by a score that combines the number of errors relative to the pattern
// length and the distance from the expected location:
//
//	score = errors/len(pattern) + |location - expected|/distance
//
// A score of 0 is a perfect match at the expected location. Candidates with a score above the
// configured threshold are ignored.
//
// ## References:
//
// Wu, S. and Manber, U. Fast text searching: allowing errors. Communications of the ACM 35(10),
// 83-91 (1992). https://doi.org/10.1145/135239.135244
package bitap

import (
	"znkr.io/dmp/internal/config"
	"znkr.io/dmp/internal/edits"
)

// maxWordBits is the number of bits in the bit vectors used by the search. Patterns can never be
// longer than this, regardless of the configuration.
const maxWordBits = 64

// Match locates the best occurrence of pattern in text near loc. It returns the start of the
// occurrence and true, or 0 and false if there's no occurrence with a score within
// cfg.MatchThreshold.
//
// Patterns longer than cfg.MaxBits can only be found verbatim.
func Match(text, pattern []rune, loc int, cfg config.Config) (int, bool) {
	loc = max(0, min(loc, len(text)))
	switch {
	case equal(text, pattern):
		// Shortcut (potentially not guaranteed by the algorithm).
		return 0, true
	case len(text) == 0:
		return 0, false
	case loc+len(pattern) <= len(text) && equal(text[loc:loc+len(pattern)], pattern):
		// Perfect match at the expected location.
		return loc, true
	case len(pattern) > MaxPattern(cfg):
		return exact(text, pattern, loc, cfg)
	}
	m := matcher{pattern: pattern, loc: loc, threshold: cfg.MatchThreshold, distance: cfg.MatchDistance}
	return m.bitap(text)
}

// MaxPattern returns the length of the longest pattern that Match can find with errors.
func MaxPattern(cfg config.Config) int {
	return min(cfg.MaxBits, maxWordBits)
}

func equal(a, b []rune) bool {
	return len(a) == len(b) && edits.CommonPrefix(a, b) == len(a)
}

// exact looks for the verbatim occurrences of pattern closest to loc on either side.
func exact(text, pattern []rune, loc int, cfg config.Config) (int, bool) {
	m := matcher{pattern: pattern, loc: loc, threshold: cfg.MatchThreshold, distance: cfg.MatchDistance}
	best, threshold := -1, m.threshold
	for _, i := range []int{edits.Index(text, pattern, loc), edits.LastIndex(text, pattern, loc)} {
		if i < 0 {
			continue
		}
		if s := m.score(0, i); s <= threshold {
			best, threshold = i, s
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

type matcher struct {
	pattern   []rune
	loc       int
	threshold float64
	distance  int
}

// score computes the score of a match with e errors at location x.
func (m *matcher) score(e, x int) float64 {
	accuracy := float64(e) / float64(len(m.pattern))
	proximity := abs(m.loc - x)
	if m.distance == 0 {
		// Only the expected location is acceptable.
		if proximity == 0 {
			return accuracy
		}
		return 1.0
	}
	return accuracy + float64(proximity)/float64(m.distance)
}

// alphabet returns the bit masks of all runes in pattern. Bit len(pattern)-1-i is set in the
// mask of pattern[i].
func alphabet(pattern []rune) map[rune]uint64 {
	s := make(map[rune]uint64, len(pattern))
	for i, r := range pattern {
		s[r] |= 1 << (len(pattern) - i - 1)
	}
	return s
}

func (m *matcher) bitap(text []rune) (int, bool) {
	pattern, loc := m.pattern, m.loc
	s := alphabet(pattern)

	// Highest score beyond which we give up. Exact matches nearby tighten the threshold.
	threshold := m.threshold
	if i := edits.Index(text, pattern, loc); i >= 0 {
		threshold = min(m.score(0, i), threshold)
		if i := edits.LastIndex(text, pattern, loc+len(pattern)); i >= 0 {
			threshold = min(m.score(0, i), threshold)
		}
	}

	matchmask := uint64(1) << (len(pattern) - 1)
	best := -1

	binMax := len(pattern) + len(text)
	var lastRD []uint64
	for d := range len(pattern) {
		// Scan for the best match, each iteration allows for one more error. Run a binary search
		// to determine how far from loc we can stray at this error level.
		binMin, binMid := 0, binMax
		for binMin < binMid {
			if m.score(d, loc+binMid) <= threshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		// Use the result from this iteration as the maximum for the next.
		binMax = binMid
		start := max(1, loc-binMid+1)
		finish := min(loc+binMid, len(text)) + len(pattern)

		rd := make([]uint64, finish+2)
		rd[finish+1] = 1<<d - 1
		for j := finish; j >= start; j-- {
			var charMatch uint64
			if j-1 < len(text) {
				charMatch = s[text[j-1]]
			}
			if d == 0 {
				// First pass: exact match.
				rd[j] = (rd[j+1]<<1 | 1) & charMatch
			} else {
				// Subsequent passes: fuzzy match.
				rd[j] = (rd[j+1]<<1|1)&charMatch | ((lastRD[j+1]|lastRD[j])<<1 | 1) | lastRD[j+1]
			}
			if rd[j]&matchmask == 0 {
				continue
			}
			// This match will almost certainly be better than any existing match. But check
			// anyway.
			if score := m.score(d, j-1); score <= threshold {
				threshold = score
				best = j - 1
				if best <= loc {
					// Already passed loc, downhill from here on in.
					break
				}
				// When passing loc, don't exceed our current distance from loc.
				start = max(1, 2*loc-best)
			}
		}
		if m.score(d+1, loc) > threshold {
			// No hope for a (better) match at greater error levels.
			break
		}
		lastRD = rd
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
