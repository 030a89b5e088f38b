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

package main

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var bars = []string{" ", "▏", "▎", "▍", "▌", "▋", "▊", "▉", "█"}

// progress renders a progress bar to stdout. Notes are printed above the bar.
type progress struct {
	total   int
	commits atomic.Int64
	evals   atomic.Int64

	begin time.Time
	notes chan string
	done  chan struct{}
	wg    sync.WaitGroup
}

func newProgress(total int) *progress {
	return &progress{
		total: total,
		notes: make(chan string),
		done:  make(chan struct{}),
	}
}

func (p *progress) start() {
	p.begin = time.Now()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case note := <-p.notes:
				fmt.Printf("\r%s\n", note)
				p.render()
			case <-ticker.C:
				p.render()
			case <-p.done:
				p.render()
				fmt.Printf("\n")
				return
			}
		}
	}()
}

// stop renders the final state. No notes must be added afterwards.
func (p *progress) stop() {
	close(p.done)
	p.wg.Wait()
}

func (p *progress) notef(prefix, format string, args ...any) {
	p.notes <- prefix + ": " + fmt.Sprintf(format, args...)
}

func (p *progress) render() {
	const width = 60
	commits, evals := p.commits.Load(), p.evals.Load()
	frac := 1.0
	if p.total > 0 {
		frac = float64(commits) / float64(p.total)
	}
	whole := int(frac * width)
	last := ""
	if whole < width {
		_, rem := math.Modf(frac * width)
		last = bars[min(len(bars)-1, int(rem*float64(len(bars))))]
	}
	bar := strings.Repeat(bars[len(bars)-1], whole) + last

	elapsed := time.Since(p.begin).Seconds()
	var commitsPerSec, evalsPerSec int
	if elapsed > 0 {
		commitsPerSec = int(float64(commits) / elapsed)
		evalsPerSec = int(float64(evals) / elapsed)
	}
	fmt.Printf("\r[%-*s] % 3.1f%% (%d commits/s, %d evals/s) ", width, bar, 100*frac, commitsPerSec, evalsPerSec)
}
