// Copyright 2025 walteh LLC
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

// Package walk enumerates the candidate files of a source tree.
package walk

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/casemod/pkg/model"
	"gitlab.com/tozd/go/errors"
)

// 🚶 Options controls which paths a walk yields.
type Options struct {
	// Exclude holds doublestar globs. A pattern without "/" also matches
	// against the base name, so "node_modules" prunes it at any depth.
	Exclude []string
	// Extensions is the allowlist of file suffixes (".tsx", ".d.ts").
	// Empty means every file.
	Extensions []string
	// FollowSymlinks descends into symlinked directories.
	FollowSymlinks bool
}

// 🔁 CycleError reports a symlinked directory that leads back into the
// directory chain currently being walked.
type CycleError struct {
	Path   model.FilePath
	Target string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("symlink cycle at %s (points to %s)", e.Path, e.Target)
}

// Walk returns a lazy sequence of the files under root that pass opts.
// Every range over the result walks the tree again. Entries are visited in
// lexical order. Per-path failures are yielded as errors and the walk continues.
func Walk(ctx context.Context, root string, opts Options) iter.Seq2[model.FilePath, error] {
	return func(yield func(model.FilePath, error) bool) {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			yield("", errors.Errorf("resolving root %s: %w", root, err))
			return
		}
		w := &walker{
			ctx:    ctx,
			root:   root,
			opts:   opts,
			yield:  yield,
			active: map[string]bool{resolved: true},
		}
		w.dir(".")
	}
}

type walker struct {
	ctx    context.Context
	root   string
	opts   Options
	yield  func(model.FilePath, error) bool
	active map[string]bool // real paths of the directories on the current descent
}

// dir walks one directory and reports false once the consumer stops.
func (w *walker) dir(rel string) bool {
	osDir := filepath.Join(w.root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(osDir)
	if err != nil {
		return w.yield(model.FilePath(rel), errors.Errorf("reading directory %s: %w", rel, err))
	}

	for _, entry := range entries {
		if err := w.ctx.Err(); err != nil {
			w.yield("", errors.Errorf("walk cancelled: %w", err))
			return false
		}

		fp := model.FilePath(path.Join(rel, entry.Name()))
		osPath := filepath.Join(osDir, entry.Name())

		isDir := entry.IsDir()
		isLink := entry.Type()&os.ModeSymlink != 0
		if isLink {
			info, err := os.Stat(osPath)
			if err != nil {
				if !w.yield(fp, errors.Errorf("following symlink %s: %w", fp, err)) {
					return false
				}
				continue
			}
			if !info.IsDir() {
				// a link is not owned by the tree; renaming or rewriting it would
				// replace the link itself
				zerolog.Ctx(w.ctx).Debug().Str("path", string(fp)).Msg("skipping symlinked file")
				continue
			}
			if !w.opts.FollowSymlinks {
				continue
			}
			isDir = true
		}

		if isDir {
			if w.excluded(fp) {
				zerolog.Ctx(w.ctx).Debug().Str("dir", string(fp)).Msg("pruning excluded directory")
				continue
			}
			if !w.descend(fp, osPath) {
				return false
			}
			continue
		}

		if !entry.Type().IsRegular() || w.excluded(fp) || !w.allowed(entry.Name()) {
			continue
		}
		if !w.yield(fp, nil) {
			return false
		}
	}
	return true
}

func (w *walker) descend(fp model.FilePath, osPath string) bool {
	if !w.opts.FollowSymlinks {
		return w.dir(string(fp))
	}

	resolved, err := filepath.EvalSymlinks(osPath)
	if err != nil {
		return w.yield(fp, errors.Errorf("resolving %s: %w", fp, err))
	}
	if w.active[resolved] {
		return w.yield(fp, &CycleError{Path: fp, Target: resolved})
	}
	w.active[resolved] = true
	defer delete(w.active, resolved)
	return w.dir(string(fp))
}

func (w *walker) excluded(fp model.FilePath) bool {
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, string(fp)); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, fp.Base()); ok {
				return true
			}
		}
	}
	return false
}

func (w *walker) allowed(name string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	for _, ext := range w.opts.Extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}

// Collect drains seq into a sorted path slice and the per-path errors.
func Collect(seq iter.Seq2[model.FilePath, error]) ([]model.FilePath, []error) {
	var (
		paths []model.FilePath
		errs  []error
	)
	for fp, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, fp)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths, errs
}
