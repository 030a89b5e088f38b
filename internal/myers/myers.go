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

import "time"

// split finds the middle snake of an optimal path from (0, 0) to (len(x), len(y)) and returns a
// point (s, t) on it. The diff of x and y is the diff of x[:s] and y[:t] followed by the diff of
// x[s:] and y[t:].
//
// If the deadline passes before the middle snake is found, ok is false.
//
// Important: x and y must not be empty and len(x)+len(y) must be at least 3.
func split(x, y []rune, deadline time.Time) (s, t int, ok bool) {
	n, m := len(x), len(y)
	dmax := (n + m + 1) / 2

	// v-arrays for forwards and backwards iteration respectively. A v-array stores the furthest
	// reaching endpoint of a d-path in diagonal k in v[v0+k]. The endpoints only store the
	// s-coordinate since t = s - k. For the backward iteration, coordinates are measured from the
	// end of x and y.
	v0 := dmax
	vlen := 2*dmax + 2
	buf := make([]int, 2*vlen) // allocate space for vf and vb with a single allocation
	for i := range buf {
		buf[i] = -1
	}
	vf, vb := buf[:vlen], buf[vlen:]
	vf[v0+1] = 0
	vb[v0+1] = 0

	delta := n - m
	// If the total number of runes is odd, the forward path will collide with the backward path.
	odd := delta%2 != 0

	// Bounds for the diagonals to search. They shrink when a path runs off the edge of the graph.
	var kfmin, kfmax, kbmin, kbmax int

	for d := range dmax {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return 0, 0, false
		}

		// Forward search.
		for k := -d + kfmin; k <= d-kfmax; k += 2 {
			i := v0 + k
			var s int
			if k == -d || (k != d && vf[i-1] < vf[i+1]) {
				s = vf[i+1] // down (insertion)
			} else {
				s = vf[i-1] + 1 // right (deletion)
			}
			t := s - k
			for s < n && t < m && x[s] == y[t] {
				s++
				t++
			}
			vf[i] = s

			switch {
			case s > n:
				// Ran off the right of the graph.
				kfmax += 2
			case t > m:
				// Ran off the bottom of the graph.
				kfmin += 2
			case odd:
				j := v0 + delta - k
				if j >= 0 && j < vlen && vb[j] != -1 {
					// Mirror the backward endpoint on diagonal k into forward coordinates.
					if s >= n-vb[j] {
						return s, t, true
					}
				}
			}
		}

		// Backward search.
		for k := -d + kbmin; k <= d-kbmax; k += 2 {
			i := v0 + k
			var s int
			if k == -d || (k != d && vb[i-1] < vb[i+1]) {
				s = vb[i+1]
			} else {
				s = vb[i-1] + 1
			}
			t := s - k
			for s < n && t < m && x[n-s-1] == y[m-t-1] {
				s++
				t++
			}
			vb[i] = s

			switch {
			case s > n:
				kbmax += 2
			case t > m:
				kbmin += 2
			case !odd:
				j := v0 + delta - k
				if j >= 0 && j < vlen && vf[j] != -1 {
					sf := vf[j]
					tf := v0 + sf - j
					if sf >= n-s {
						return sf, tf, true
					}
				}
			}
		}
	}

	// The searches always overlap before d reaches dmax.
	return 0, 0, false
}
