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

// Package config provides shared configuration mechanisms for packages in this module.
//
// This package is an implementation detail, the configuration surface for users is provided via
// dmp.Option.
package config

import "time"

// Config collects all configurable parameters for the diff, match and patch functions in this
// module. A Config is a plain value: it's built once per call from a set of options and never
// modified afterwards.
type Config struct {
	// Deadline after which the diff algorithm stops looking for an optimal solution. The zero
	// value means no deadline.
	Deadline time.Time

	// Timeout is used to compute a Deadline if none is set explicitly. Zero or negative values
	// disable the timeout.
	Timeout time.Duration

	// If set, diffs of long texts are first computed on lines and then refined.
	LineMode bool

	// If set, diffs of long texts are first computed on words instead of lines and then refined.
	// Takes precedence over LineMode.
	WordMode bool

	// If set, textdiff.Lines shifts line edits to positions that are easier to read.
	IndentHeuristic bool

	// Cost of an empty edit operation in terms of edit characters, used by the efficiency cleanup.
	EditCost int

	// At what point is no match declared (0.0 = perfection, 1.0 = very loose).
	MatchThreshold float64

	// How far to search for a match (0 = exact location, 1000+ = broad match). A match this many
	// characters away from the expected location adds 1.0 to the score.
	MatchDistance int

	// When deleting a large block of text, how close the contents have to match the expected
	// contents (0.0 = perfection, 1.0 = very loose).
	DeleteThreshold float64

	// Number of context characters around each hunk.
	Margin int

	// Maximum pattern length for the bitap algorithm. Also bounds hunk sizes when applying
	// patches.
	MaxBits int
}

// Default is the default configuration.
var Default = Config{
	Deadline:        time.Time{},
	Timeout:         time.Second,
	LineMode:        true,
	WordMode:        false,
	IndentHeuristic: false,
	EditCost:        4,
	MatchThreshold:  0.5,
	MatchDistance:   1000,
	DeleteThreshold: 0.5,
	Margin:          4,
	MaxBits:         32,
}

// DiffDeadline returns the deadline for diff computations. It uses Deadline if it's set,
// otherwise it's derived from Timeout and now.
func (cfg Config) DiffDeadline(now time.Time) time.Time {
	if !cfg.Deadline.IsZero() {
		return cfg.Deadline
	}
	if cfg.Timeout <= 0 {
		return time.Time{}
	}
	return now.Add(cfg.Timeout)
}

// Flag describes a single config entry. This is used to detect if configurations are being set
// that are not supported by the function they are passed to.
type Flag int

const (
	Deadline Flag = 1 << iota
	LineMode
	EditCost
	MatchThreshold
	MatchDistance
	DeleteThreshold
	Margin
	MaxBits
	WordMode
	IndentHeuristic
)

// Diff is the set of flags that influence diff computations.
const Diff = Deadline | LineMode | WordMode

// Match is the set of flags that influence match computations.
const Match = MatchThreshold | MatchDistance | MaxBits

// Patch is the set of flags that influence patch computations.
const Patch = Diff | EditCost | Margin | MaxBits

// Apply is the set of flags that influence patch application.
const Apply = Deadline | Match | DeleteThreshold | Margin

// Option is the mechanism used to expose the configuration to users.
type Option func(*Config) Flag

// FromOptions creates a configuration from a set of options.
func FromOptions(opts []Option, allowed Flag) Config {
	cfg := Default
	for _, opt := range opts {
		flag := opt(&cfg)
		if flag & ^allowed != 0 {
			panic("Option " + printFlag(flag) + " not allowed here")
		}
	}
	if cfg.MaxBits <= 0 {
		panic("MaxBits must be positive")
	}
	if cfg.Margin < 0 {
		panic("Margin must not be negative")
	}
	return cfg
}

func printFlag(flag Flag) string {
	switch flag {
	case Deadline:
		return "dmp.Deadline"
	case LineMode:
		return "dmp.LineMode"
	case EditCost:
		return "dmp.EditCost"
	case MatchThreshold:
		return "dmp.MatchThreshold"
	case MatchDistance:
		return "dmp.MatchDistance"
	case DeleteThreshold:
		return "dmp.DeleteThreshold"
	case Margin:
		return "dmp.Margin"
	case MaxBits:
		return "dmp.MaxBits"
	case WordMode:
		return "textdiff.WordMode"
	case IndentHeuristic:
		return "textdiff.IndentHeuristic"
	default:
		panic("never reached")
	}
}
