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

// Package myers computes character level diffs of texts.
//
// The core of the package is Myers' O(ND) algorithm in its linear space variant: Instead of
// searching for an optimal path through the edit graph from the top left to the bottom right, the
// search is started from both ends simultaneously until the two searches overlap. The point where
// they meet is on an optimal path (the "middle snake") and splits the problem into two smaller
// ones that are solved independently.
//
// # Edit Graph
//
// For the inputs x = "ABCABBA" and y = "CBABAC", the graph modelling all edits from x to y is:
//
//	(0,0)   A   B   C   A   B   B   A
//	    ┌───┬───┬───┬───┬───┬───┬───┐ 0
//	    │   │   │ ╲ │   │   │   │   │
//	 C  ├───┼───┼───┼───┼───┼───┼───┤ 1
//	    │   │ ╲ │   │   │ ╲ │ ╲ │   │
//	 B  ├───┼───┼───┼───┼───┼───┼───┤ 2
//	    │ ╲ │   │   │ ╲ │   │   │ ╲ │
//	 A  ├───┼───┼───┼───┼───┼───┼───┤ 3
//	    │   │ ╲ │   │   │ ╲ │ ╲ │   │
//	 B  ├───┼───┼───┼───┼───┼───┼───┤ 4
//	    │ ╲ │   │   │ ╲ │   │   │ ╲ │
//	 A  ├───┼───┼───┼───┼───┼───┼───┤ 5
//	    │   │   │ ╲ │   │   │   │   │
//	 C  └───┴───┴───┴───┴───┴───┴───┘
//	    0   1   2   3   4   5   6     (7,6)
//
// A step to the right deletes a rune from x, a step down inserts a rune from y and a diagonal
// step keeps a rune that's present in both. A d-path is a path with d non-diagonal steps. It
// always ends on a diagonal k = s - t in {-d, -d+2, ..., d}. For every d, the algorithm only
// remembers the furthest reaching d-path per diagonal.
//
// If len(x) - len(y) is odd, the forward search finds the overlap; otherwise the backward search
// does.
//
// # Speedups
//
// Before running the search, [Diff] tries a number of cheaper strategies: Common prefixes and
// suffixes are stripped, a text that is fully contained in the other text is handled directly and
// if a deadline is set, a long common substring ("half match") is used to split the problem
// without searching. For long texts, the diff is first computed on lines (or words) and only the
// changed regions are diffed rune by rune afterwards.
//
// # Deadline
//
// The search checks the deadline once for every d. When it has passed, the remaining region is
// reported as a single deletion followed by an insertion. The result is always a valid diff, it
// may just not be minimal.
//
// ## References:
//
// Myers, E.W. An O(ND) difference algorithm and its variations. Algorithmica 1, 251-266 (1986).
// https://doi.org/10.1007/BF01840446
package myers
