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

// eval validates the diff and patch functions on the history of a git repository. For every file
// changed by a commit, it computes edit scripts with several configurations, creates a patch from
// each of them, and checks that both replaying the edit script and applying the patch (after a
// round trip through the text format) produce the new version of the file.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/profile"
	"znkr.io/dmp"
	"znkr.io/dmp/internal/cmd/eval/internal/git"
	"znkr.io/dmp/textdiff"
)

type config struct {
	repo     string
	sample   int
	parallel int
	stats    string
	validate bool
	timeout  time.Duration
	profile  string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.repo, "repo", "", "repository to use for evaluation")
	flag.IntVar(&cfg.sample, "sample", 0, "if >0, sample commits to the value of the flag")
	flag.IntVar(&cfg.parallel, "parallel", runtime.GOMAXPROCS(0), "number of evaluations to run in parallel")
	flag.StringVar(&cfg.stats, "stats", "", "CSV file to store stats in")
	flag.BoolVar(&cfg.validate, "validate", true, "if validation should be performed")
	flag.DurationVar(&cfg.timeout, "timeout", time.Second, "time bound for a single diff")
	flag.StringVar(&cfg.profile, "profile", "", "write a profile to the current directory (cpu or mem)")
	flag.Parse()

	if len(flag.CommandLine.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected command line arguments: %v\n", flag.CommandLine.Args())
		os.Exit(1)
	}

	switch cfg.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown profile %q\n", cfg.profile)
		os.Exit(1)
	}

	if err := run(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type variant struct {
	name string
	diff func(x, y string, timeout time.Duration) []dmp.Edit
}

var variants = []variant{
	{"default", func(x, y string, timeout time.Duration) []dmp.Edit {
		return dmp.Diff(x, y, dmp.Timeout(timeout))
	}},
	{"chars", func(x, y string, timeout time.Duration) []dmp.Edit {
		return dmp.Diff(x, y, dmp.Timeout(timeout), dmp.LineMode(false))
	}},
	{"words", func(x, y string, timeout time.Duration) []dmp.Edit {
		return dmp.Diff(x, y, dmp.Timeout(timeout), textdiff.WordMode())
	}},
	{"lines", func(x, y string, timeout time.Duration) []dmp.Edit {
		return textdiff.Lines(x, y, dmp.Timeout(timeout))
	}},
	{"indent-heuristic", func(x, y string, timeout time.Duration) []dmp.Edit {
		return textdiff.Lines(x, y, dmp.Timeout(timeout), textdiff.IndentHeuristic())
	}},
}

// change is a file modified by a commit.
type change struct {
	commit   string
	path     string
	old, new string
}

func (c change) String() string { return c.commit + ":" + c.path }

// validate checks that diffs transform old into new, both directly and as a patch.
func validate(old, new string, diffs []dmp.Edit) error {
	got, _, err := dmp.Replay(old, diffs)
	if err != nil {
		return fmt.Errorf("replaying edit script: %v", err)
	}
	if got != new {
		return fmt.Errorf("replayed edit script doesn't produce the new file")
	}

	text := dmp.PatchToText(dmp.MakePatchFromTextAndDiffs(old, diffs))
	patches, err := dmp.PatchFromText(text)
	if err != nil {
		return fmt.Errorf("parsing patch: %v", err)
	}
	got, applied := dmp.ApplyPatches(patches, old)
	if i := slices.Index(applied, false); i >= 0 {
		return fmt.Errorf("hunk %d of %d failed to apply", i+1, len(applied))
	}
	if got != new {
		return fmt.Errorf("file is different after applying patch. got:\n%s\nwant:\n%s", got, new)
	}
	return nil
}

// evaluate runs all variants on c.
func evaluate(cfg *config, c change, p *progress, stats *statsWriter) {
	n, m := changedRunes(c.old, c.new)
	for _, v := range variants {
		start := time.Now()
		diffs := v.diff(c.old, c.new, cfg.timeout)
		duration := time.Since(start)

		if stats != nil {
			err := stats.write(record{
				change:   c,
				variant:  v.name,
				N:        n,
				M:        m,
				D:        dmp.Levenshtein(diffs),
				duration: duration,
			})
			if err != nil {
				p.notef(c.String(), "failed to write stats: %v", err)
			}
		}

		if cfg.validate {
			if err := validate(c.old, c.new, diffs); err != nil {
				p.notef(c.String()+":"+v.name, "%v", err)
			}
		}
	}
	p.evals.Add(1)
}

// changedRunes returns the number of runes in old and new after removing the common prefix and
// suffix.
func changedRunes(old, new string) (n, m int) {
	for len(old) > 0 && len(new) > 0 && old[0] == new[0] {
		old, new = old[1:], new[1:]
	}
	for len(old) > 0 && len(new) > 0 && old[len(old)-1] == new[len(new)-1] {
		old, new = old[:len(old)-1], new[:len(new)-1]
	}
	return utf8.RuneCountInString(old), utf8.RuneCountInString(new)
}

// sample returns n randomly picked commits.
func sample(commits []string, n int) []string {
	if n <= 0 || n >= len(commits) {
		return commits
	}
	picked := rand.Perm(len(commits))[:n]
	out := make([]string, n)
	for i, j := range picked {
		out[i] = commits[j]
	}
	return out
}

func run(cfg *config) error {
	var stats *statsWriter
	if cfg.stats != "" {
		f, err := os.Create(cfg.stats)
		if err != nil {
			return fmt.Errorf("creating stats file: %v", err)
		}
		defer f.Close()
		stats = newStatsWriter(f)
	}

	repo, err := git.Open(cfg.repo)
	if err != nil {
		return fmt.Errorf("opening git repository: %v", err)
	}

	commits, err := repo.Commits()
	if err != nil {
		return fmt.Errorf("reading commits: %v", err)
	}
	commits = sample(commits, cfg.sample)

	p := newProgress(len(commits))
	p.start()

	// Read changes from the repository.
	changes := make(chan change)
	var readers sync.WaitGroup
	chunkSize := max(1, len(commits)/(4*runtime.GOMAXPROCS(0)))
	for chunk := range slices.Chunk(commits, chunkSize) {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for _, commit := range chunk {
				files, err := repo.Changes(commit)
				if err != nil {
					p.notef(commit, "error processing commit: %v", err)
				}
				for _, file := range files {
					readers.Add(1)
					repo.ReadBlobs([]string{file.OldBlob, file.NewBlob}, func(res []string) {
						defer readers.Done()
						// Patches are text based, binary files can't be represented.
						if !utf8.ValidString(res[0]) || !utf8.ValidString(res[1]) {
							return
						}
						changes <- change{commit: commit, path: file.Path, old: res[0], new: res[1]}
					})
				}
				p.commits.Add(1)
			}
		}()
	}

	// Evaluate changes.
	var workers sync.WaitGroup
	for range cfg.parallel {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for c := range changes {
				evaluate(cfg, c, p, stats)
			}
		}()
	}

	readers.Wait()
	repo.Close()
	close(changes)
	workers.Wait()

	if stats != nil {
		if err := stats.flush(); err != nil {
			p.notef("", "failed to flush stats: %v", err)
		}
	}
	p.stop()
	return nil
}
