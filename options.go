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
	"time"

	"znkr.io/dmp/internal/config"
)

// Option configures the behavior of the functions in this package.
//
// Every function documents the options it supports. Passing an unsupported option panics.
type Option = config.Option

// LineMode enables or disables the line-level pre-pass for long texts. If enabled, texts that are
// both longer than 100 runes are first compared line by line. The result is then refined
// character by character. This is much faster for large texts with few changes but may produce
// slightly less minimal diffs. The default is true.
func LineMode(enable bool) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.LineMode = enable
		return config.LineMode
	}
}

// Deadline sets an absolute deadline for diff computations. Once the deadline has passed, the
// diff algorithm stops looking for a minimal diff. Deadline overrides [Timeout].
func Deadline(t time.Time) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Deadline = t
		return config.Deadline
	}
}

// Timeout bounds the time spent to compute a diff. The deadline is computed when the function is
// called. A zero or negative timeout disables the time bound. The default is 1s.
func Timeout(d time.Duration) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Timeout = d
		cfg.Deadline = time.Time{}
		return config.Deadline
	}
}

// EditCost sets the cost of an empty edit operation in terms of edit characters. It's used by
// [CleanupEfficiency] to decide if a short equality between edits is worth keeping. The default
// is 4.
func EditCost(n int) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.EditCost = max(0, n)
		return config.EditCost
	}
}

// MatchThreshold sets the score at which a match is rejected. 0.0 only accepts a perfect match at
// the expected location, 1.0 accepts almost anything. The default is 0.5.
func MatchThreshold(f float64) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.MatchThreshold = f
		return config.MatchThreshold
	}
}

// MatchDistance sets how far from the expected location a match may be. A match n runes away
// from the expected location adds n/MatchDistance to its score. A distance of 0 only accepts
// matches at the expected location. The default is 1000.
func MatchDistance(n int) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.MatchDistance = max(0, n)
		return config.MatchDistance
	}
}

// MaxBits sets the maximum length of a pattern that can be located approximately. Longer
// patterns are only found verbatim. Hunks are split to fit this size before they are applied. The
// value is capped at 64. The default is 32.
func MaxBits(n int) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.MaxBits = n
		return config.MaxBits
	}
}

// Margin sets the number of context runes around the edits of a hunk. The default is 4.
func Margin(n int) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Margin = n
		return config.Margin
	}
}

// DeleteThreshold sets how closely the text covered by a large deletion needs to match the
// expected text when a patch is applied. 0.0 requires a perfect match, 1.0 accepts anything. The
// default is 0.5.
func DeleteThreshold(f float64) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.DeleteThreshold = f
		return config.DeleteThreshold
	}
}
