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

package textdiff

import (
	"znkr.io/dmp"
	"znkr.io/dmp/internal/config"
)

// IndentHeuristic applies a heuristic to make line diffs easier to read by improving the placement
// of edit boundaries.
//
// The heuristic shifts groups of inserted or deleted lines to positions that align with
// indentation patterns. It's particularly effective with code and structured text.
func IndentHeuristic() dmp.Option {
	return func(cfg *config.Config) config.Flag {
		cfg.IndentHeuristic = true
		return config.IndentHeuristic
	}
}

// WordMode makes [dmp.Diff] and the patch functions compare long texts word by word before
// refining the result character by character. It takes precedence over [dmp.LineMode].
func WordMode() dmp.Option {
	return func(cfg *config.Config) config.Flag {
		cfg.WordMode = true
		return config.WordMode
	}
}
