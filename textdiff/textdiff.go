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

// Package textdiff provides functions to compare texts token by token. The edit scripts are the
// same kind of scripts the dmp package produces, but every edit consists of whole lines or words.
// Such scripts are often easier to read and the diffs are faster to compute for large texts.
//
// The scripts can be used with all functions in the dmp package that accept an edit script, e.g.,
// to create patches with [dmp.MakePatchFromDiffs].
package textdiff

import (
	"time"

	"znkr.io/dmp"
	"znkr.io/dmp/internal/config"
	"znkr.io/dmp/internal/indentheuristic"
	"znkr.io/dmp/internal/myers"
	"znkr.io/dmp/internal/tokens"
)

// Lines compares x and y line by line and returns an edit script that transforms x into y. A line
// includes its terminating newline, the last line of a text might not have one.
//
// The following options are supported: [dmp.Timeout], [dmp.Deadline], [IndentHeuristic]
//
// Important: The output is not guaranteed to be stable and may change with minor version upgrades.
// DO NOT rely on the output being stable.
func Lines(x, y string, opts ...dmp.Option) []dmp.Edit {
	cfg := config.FromOptions(opts, config.Deadline|config.IndentHeuristic)
	cfg.Deadline = cfg.DiffDeadline(time.Now())
	diffs := myers.Tokens(tokens.SplitLines(x), tokens.SplitLines(y), cfg)
	if cfg.IndentHeuristic {
		diffs = indentheuristic.Apply(diffs)
	}
	return diffs
}

// Words compares x and y word by word and returns an edit script that transforms x into y. Words
// are determined by the Unicode text segmentation rules. Whitespace and punctuation are words of
// their own.
//
// The following options are supported: [dmp.Timeout], [dmp.Deadline]
//
// Important: The output is not guaranteed to be stable and may change with minor version upgrades.
// DO NOT rely on the output being stable.
func Words(x, y string, opts ...dmp.Option) []dmp.Edit {
	cfg := config.FromOptions(opts, config.Deadline)
	cfg.Deadline = cfg.DiffDeadline(time.Now())
	return myers.Tokens(tokens.SplitWords(x), tokens.SplitWords(y), cfg)
}
