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
	"encoding/csv"
	"io"
	"strconv"
	"sync"
	"time"
)

// record is a single row of the stats file.
type record struct {
	change   change
	variant  string
	N, M     int // runes in the changed region
	D        int // inserted and deleted runes
	duration time.Duration
}

// statsWriter writes records as CSV. It's safe for concurrent use.
type statsWriter struct {
	mu     sync.Mutex
	w      *csv.Writer
	header bool
}

func newStatsWriter(w io.Writer) *statsWriter {
	return &statsWriter{w: csv.NewWriter(w)}
}

func (s *statsWriter) write(r record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.header {
		if err := s.w.Write([]string{"commit_id", "file", "variant", "N", "M", "D", "duration_ns"}); err != nil {
			return err
		}
		s.header = true
	}
	return s.w.Write([]string{
		r.change.commit,
		r.change.path,
		r.variant,
		strconv.Itoa(r.N),
		strconv.Itoa(r.M),
		strconv.Itoa(r.D),
		strconv.FormatInt(r.duration.Nanoseconds(), 10),
	})
}

func (s *statsWriter) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	return s.w.Error()
}
