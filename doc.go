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

// Package dmp computes differences between texts, locates text approximately and creates and
// applies patches that tolerate changes to the text they are applied to.
//
// The package is organized around three operations:
//
//   - [Diff] compares two texts and returns an edit script. The cleanup functions
//     ([CleanupSemantic], [CleanupEfficiency], ...) post-process an edit script to make it easier to
//     read or cheaper to store.
//   - [Match] finds the best approximate occurrence of a pattern near an expected location.
//   - [MakePatch] turns two texts or an edit script into a list of hunks with context. Patches can
//     be serialized with [PatchToText], parsed with [PatchFromText] and applied to a text with
//     [ApplyPatches]. Applying a patch uses [Match] to locate each hunk, so patches can be applied
//     to texts that have changed since the patch was created.
//
// All positions and lengths in this package count runes, not bytes. Invalid UTF-8 is treated as
// utf8.RuneError.
//
// Diffs are computed with Myers' algorithm. By default, long texts are first compared line by
// line and the result is refined character by character afterwards ([LineMode]). The computation
// is bounded by a deadline ([Timeout], [Deadline]); after the deadline has passed, the remaining
// differences are reported as a single deletion and insertion. The result is still a valid edit
// script, it's just not minimal.
//
// Note: For diffs of texts at line or word granularity, please see [znkr.io/dmp/textdiff].
//
// [znkr.io/dmp/textdiff]: https://pkg.go.dev/znkr.io/dmp/textdiff
package dmp
