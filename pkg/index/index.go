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

// Package index finds module references in source files and resolves them
// against a rename plan.
package index

import (
	"context"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/casemod/pkg/model"
	"github.com/walteh/casemod/pkg/plan"
	"golang.org/x/sync/errgroup"
)

// 🔎 Indexer extracts and resolves references. It holds no mutable state and
// may be used from many goroutines.
type Indexer struct {
	// Root is the OS path of the tree, used to tell unmanaged files from
	// unresolved specifiers.
	Root    string
	Mapping *plan.Mapping
	Matcher *Matcher
	// Extensions are appended, in order, to extension-less specifiers.
	Extensions []string
	// RootAliases are prefixes that address the root ("@/", "~/").
	RootAliases []string
	// Concurrency bounds IndexAll. Zero means GOMAXPROCS.
	Concurrency int
}

// Index returns the references found in content, ordered by position.
func (x *Indexer) Index(owner model.FilePath, content []byte) []model.ImportReference {
	matches := x.Matcher.find(content)
	refs := make([]model.ImportReference, 0, len(matches))
	for _, m := range matches {
		ref := model.ImportReference{
			Owner: owner,
			Raw:   string(content[m.start:m.end]),
			Span:  model.Span{Start: m.start, End: m.end},
			Quote: m.quote,
		}
		x.resolve(&ref)
		refs = append(refs, ref)
	}
	return refs
}

// Resolve classifies spec as if it were written inside quote in owner.
func (x *Indexer) Resolve(owner model.FilePath, spec, quote string) model.ImportReference {
	ref := model.ImportReference{Owner: owner, Raw: spec, Quote: quote}
	x.resolve(&ref)
	return ref
}

func (x *Indexer) resolve(ref *model.ImportReference) {
	if ref.Quote == "`" && strings.Contains(ref.Raw, "${") {
		ref.Kind = model.KindDynamic
		return
	}

	pathPart, _ := SplitSuffix(ref.Raw)
	logical, rooted, ok := x.logicalPath(ref.Owner, pathPart)
	if !rooted {
		ref.Kind = model.KindExternal
		return
	}
	if !ok {
		ref.Kind = model.KindUnresolved
		return
	}

	if target, how, found := x.probe(logical, x.Mapping.Contains); found {
		ref.Kind = model.KindInPlan
		ref.Target = target
		ref.Resolution = how
		return
	}
	if target, how, found := x.probe(logical, x.onDisk); found {
		ref.Kind = model.KindUnmanaged
		ref.Target = target
		ref.Resolution = how
		return
	}
	if x.dirOnDisk(logical) {
		ref.Kind = model.KindUnmanaged
		return
	}
	ref.Kind = model.KindUnresolved
}

// logicalPath maps a specifier to a root-relative path. rooted is false for
// bare package specifiers; ok is false when a rooted specifier escapes the root.
func (x *Indexer) logicalPath(owner model.FilePath, spec string) (fp model.FilePath, rooted, ok bool) {
	if IsRelative(spec) {
		fp, ok = model.Join(owner.Dir(), spec)
		return fp, true, ok
	}
	for _, alias := range x.aliases() {
		if strings.HasPrefix(spec, alias) {
			fp, ok = model.Join(".", strings.TrimPrefix(spec, alias))
			return fp, true, ok
		}
	}
	return "", false, false
}

// aliases returns RootAliases longest first so "@/app/" beats "@/".
func (x *Indexer) aliases() []string {
	out := append([]string(nil), x.RootAliases...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func (x *Indexer) probe(logical model.FilePath, exists func(model.FilePath) bool) (model.FilePath, model.Resolution, bool) {
	if exists(logical) {
		return logical, model.ResolvedExact, true
	}
	for _, ext := range x.Extensions {
		if c := model.FilePath(string(logical) + ext); exists(c) {
			return c, model.ResolvedExtension, true
		}
	}
	for _, ext := range x.Extensions {
		if c := model.FilePath(string(logical) + "/index" + ext); exists(c) {
			return c, model.ResolvedIndex, true
		}
	}
	return "", model.ResolvedNone, false
}

func (x *Indexer) onDisk(fp model.FilePath) bool {
	info, err := os.Stat(fp.OS(x.Root))
	return err == nil && info.Mode().IsRegular()
}

func (x *Indexer) dirOnDisk(fp model.FilePath) bool {
	info, err := os.Stat(fp.OS(x.Root))
	return err == nil && info.IsDir()
}

// IsRelative reports whether spec starts with a same-directory or
// parent-directory marker.
func IsRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// SplitSuffix separates a query or fragment ("?raw", "#hash") from the path
// part of a specifier.
func SplitSuffix(spec string) (pathPart, suffix string) {
	if i := strings.IndexAny(spec, "?#"); i >= 0 {
		return spec[:i], spec[i:]
	}
	return spec, ""
}

// 📦 Result is the outcome of indexing one file. Content is kept so the
// rewrite phase does not read the file a second time.
type Result struct {
	File    model.FilePath
	Content []byte
	Refs    []model.ImportReference
	Err     error
}

// ReadFunc loads the current content of a logical file.
type ReadFunc func(ctx context.Context, fp model.FilePath) ([]byte, error)

// IndexAll indexes files on a bounded worker pool. A read failure is recorded
// in that file's Result and does not stop the others. Results keep the order
// of files.
func (x *Indexer) IndexAll(ctx context.Context, files []model.FilePath, read ReadFunc) ([]Result, error) {
	limit := x.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, fp := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := read(gctx, fp)
			if err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Str("file", string(fp)).Msg("index read failed")
				results[i] = Result{File: fp, Err: err}
				return nil
			}
			results[i] = Result{File: fp, Content: content, Refs: x.Index(fp, content)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
