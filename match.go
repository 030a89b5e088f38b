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

package dmp

import (
	"znkr.io/dmp/internal/bitap"
	"znkr.io/dmp/internal/config"
)

// Match locates the best approximate occurrence of pattern in text near loc. Positions are rune
// offsets. It returns the location of the occurrence and true, or 0 and false if no occurrence
// is good enough.
//
// Candidates are scored by the number of errors relative to the length of the pattern plus the
// distance from loc relative to [MatchDistance]. Candidates with a score above [MatchThreshold]
// are rejected. Patterns longer than [MaxBits] are only found verbatim.
//
// The following options are supported: [dmp.MatchThreshold], [dmp.MatchDistance], [dmp.MaxBits]
func Match(text, pattern string, loc int, opts ...Option) (int, bool) {
	cfg := config.FromOptions(opts, config.Match)
	return bitap.Match([]rune(text), []rune(pattern), loc, cfg)
}
