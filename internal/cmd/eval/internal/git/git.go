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

// Package git reads commits and blobs from a git repository by shelling out to the git binary.
// It's only meant to feed file revisions into the evaluation.
package git

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// nullID is used by git for the missing side of added and deleted files.
const nullID = "0000000000000000000000000000000000000000"

// Repo is a git repository opened for reading.
type Repo struct {
	dir  string
	reqs chan<- request
	done chan struct{}
}

// Open opens the repository in dir. Close must be called to release the cat-file process.
func Open(dir string) (*Repo, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	reqs, done, err := catFile(dir)
	if err != nil {
		return nil, err
	}
	return &Repo{dir: dir, reqs: reqs, done: done}, nil
}

// Close waits for all pending reads and stops the cat-file process.
func (r *Repo) Close() {
	close(r.reqs)
	<-r.done
}

// Commits returns the IDs of all non-merge commits reachable from HEAD.
func (r *Repo) Commits() ([]string, error) {
	out, err := git("-C", r.dir, "rev-list", "--no-merges", "HEAD")
	if err != nil {
		return nil, err
	}
	return strings.Fields(out), nil
}

// Change is a file modified by a commit.
type Change struct {
	Path    string
	OldBlob string
	NewBlob string
}

// Changes returns the files modified by commit.
func (r *Repo) Changes(commit string) ([]Change, error) {
	out, err := git("-C", r.dir, "diff-tree", "-r", commit)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(out, "\n")[1:]
	ret := make([]Change, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if line[0] != ':' {
			return nil, fmt.Errorf("diff-tree line not starting with ':': %q", line)
		}
		// :<old mode> <new mode> <old blob> <new blob> <status>\t<path>
		fields := strings.Fields(line[1:])
		if len(fields) < 6 {
			return nil, fmt.Errorf("malformed diff-tree line: %q", line)
		}
		ret = append(ret, Change{
			Path:    fields[5],
			OldBlob: fields[2],
			NewBlob: fields[3],
		})
	}
	return ret, nil
}

// ReadBlobs reads the contents of the blobs asynchronously and calls cb with the contents in the
// same order. The null ID reads as an empty blob. cb is called from a separate goroutine.
func (r *Repo) ReadBlobs(ids []string, cb func([]string)) {
	r.reqs <- request{ids, cb}
}

func git(args ...string) (string, error) {
	var wout, werr strings.Builder
	cmd := exec.Command("git", args...)
	cmd.Stdout = &wout
	cmd.Stderr = &werr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running git command %v: %v\n%s", cmd, err, werr.String())
	}
	return wout.String(), nil
}

type request struct {
	ids []string
	cb  func([]string)
}

// catFile starts a git cat-file process in batch mode. Requests are written in batches, each
// batch is followed by a flush command so that git writes the contents without waiting for more
// input.
func catFile(dir string) (chan<- request, chan struct{}, error) {
	cmd := exec.Command("git", "-C", dir, "cat-file", "--batch-command", "--buffer")
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("connecting stdin: %v", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("connecting stdout: %v", err)
	}
	var werr bytes.Buffer
	cmd.Stderr = &werr
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting git cat-file: %v", err)
	}

	reqs := make(chan request)
	batches := make(chan []request, runtime.GOMAXPROCS(0))
	done := make(chan struct{})

	go func() {
		defer close(batches)
		defer in.Close()
		const maxBatch = 32
		for {
			// Block for the first request of a batch, then take whatever is available.
			req, ok := <-reqs
			if !ok {
				return
			}
			batch := []request{req}
		More:
			for len(batch) < maxBatch {
				select {
				case req, ok := <-reqs:
					if !ok {
						break More
					}
					batch = append(batch, req)
				default:
					break More
				}
			}
			for _, req := range batch {
				for _, id := range req.ids {
					if id == nullID {
						continue
					}
					if _, err := fmt.Fprintf(in, "contents %s\n", id); err != nil {
						panic(fmt.Sprintf("writing to git cat-file: %v", err))
					}
				}
			}
			if _, err := io.WriteString(in, "flush\n"); err != nil {
				panic(fmt.Sprintf("writing to git cat-file: %v", err))
			}
			batches <- batch
		}
	}()

	go func() {
		defer close(done)
		r := bufio.NewReader(out)
		for batch := range batches {
			for _, req := range batch {
				contents := make([]string, len(req.ids))
				for i, id := range req.ids {
					if id == nullID {
						continue
					}
					blob, err := readBlob(r, id)
					if err != nil {
						panic(fmt.Sprintf("%v\n%s", err, werr.String()))
					}
					contents[i] = blob
				}
				req.cb(contents)
			}
		}
		cmd.Wait()
	}()

	return reqs, done, nil
}

// readBlob reads a single "<id> <type> <size>" header and the contents that follow it.
func readBlob(r *bufio.Reader, id string) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return "", fmt.Errorf("found %v fields, expected 3: %q", len(fields), line)
	}
	if fields[0] != id {
		return "", fmt.Errorf("ids don't match %s vs %s", fields[0], id)
	}
	n, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n+1) // contents are followed by a newline
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}
