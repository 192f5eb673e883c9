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

// Package plan builds the authoritative old-path to new-path mapping of a run.
package plan

import (
	"fmt"
	"sort"

	"github.com/walteh/casemod/pkg/model"
	"github.com/walteh/casemod/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

// 🔀 Entry is one planned move. From == To for files already in canonical form.
type Entry struct {
	From model.FilePath `json:"from"`
	To   model.FilePath `json:"to"`
}

// 💥 CollisionError aborts planning: two sources share a destination, or the
// destination is an existing file outside the plan (Occupied).
type CollisionError struct {
	Destination model.FilePath
	First       model.FilePath
	Second      model.FilePath
	Occupied    bool
}

func (e *CollisionError) Error() string {
	if e.Occupied {
		return fmt.Sprintf("rename collision: %s would overwrite existing file %s", e.First, e.Destination)
	}
	return fmt.Sprintf("rename collision: %s and %s both map to %s", e.First, e.Second, e.Destination)
}

// 🗺️ Mapping is an injective map from source paths to destination paths,
// total over the candidates it was built from. It is read-only after
// construction and safe to share between goroutines.
type Mapping struct {
	policy  string
	forward map[model.FilePath]model.FilePath
	reverse map[model.FilePath]model.FilePath
	sources []model.FilePath
}

// Policy names the naming policy the mapping was built with.
func (m *Mapping) Policy() string {
	return m.policy
}

// Lookup returns the destination planned for src.
func (m *Mapping) Lookup(src model.FilePath) (model.FilePath, bool) {
	dst, ok := m.forward[src]
	return dst, ok
}

// Source returns the source that moves to dst.
func (m *Mapping) Source(dst model.FilePath) (model.FilePath, bool) {
	src, ok := m.reverse[dst]
	return src, ok
}

// Contains reports whether src is a key of the mapping.
func (m *Mapping) Contains(src model.FilePath) bool {
	_, ok := m.forward[src]
	return ok
}

// Len returns the number of entries, identity entries included.
func (m *Mapping) Len() int {
	return len(m.sources)
}

// Entries returns every entry ordered by source path.
func (m *Mapping) Entries() []Entry {
	entries := make([]Entry, 0, len(m.sources))
	for _, src := range m.sources {
		entries = append(entries, Entry{From: src, To: m.forward[src]})
	}
	return entries
}

// Renames returns the entries whose destination differs from their source.
func (m *Mapping) Renames() []Entry {
	var entries []Entry
	for _, src := range m.sources {
		if dst := m.forward[src]; dst != src {
			entries = append(entries, Entry{From: src, To: dst})
		}
	}
	return entries
}

// IsIdentity reports whether every source maps to itself, i.e. running the
// plan would move nothing.
func (m *Mapping) IsIdentity() bool {
	for src, dst := range m.forward {
		if src != dst {
			return false
		}
	}
	return true
}

type options struct {
	occupied func(from, to model.FilePath) bool
}

// Option configures Build.
type Option func(*options)

// WithOccupied reports whether moving from to to would land on an existing
// file other than from. It is asked only for destinations outside the
// candidate set; a yes is treated as a collision.
func WithOccupied(fn func(from, to model.FilePath) bool) Option {
	return func(o *options) {
		o.occupied = fn
	}
}

// 🏗️ Build converts the base name of every path with policy and returns the
// verified mapping. Directories are never renamed. Any collision aborts the
// whole build.
func Build(paths []model.FilePath, policy naming.Policy, opts ...Option) (*Mapping, error) {
	if policy == nil {
		return nil, errors.Errorf("naming policy is required")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	sorted := append([]model.FilePath(nil), paths...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	entries := make([]Entry, 0, len(sorted))
	for i, src := range sorted {
		if i > 0 && sorted[i-1] == src {
			continue
		}
		dst := src.WithBase(naming.ConvertBase(policy, src.Base()))
		entries = append(entries, Entry{From: src, To: dst})
	}

	m, err := newMapping(policy.Name(), entries)
	if err != nil {
		return nil, err
	}

	if o.occupied != nil {
		for _, e := range m.Renames() {
			if m.Contains(e.To) {
				continue
			}
			if o.occupied(e.From, e.To) {
				return nil, &CollisionError{Destination: e.To, First: e.From, Occupied: true}
			}
		}
	}

	return m, nil
}

// FromEntries rebuilds a mapping from stored entries and re-verifies it.
func FromEntries(policy string, entries []Entry) (*Mapping, error) {
	for i, e := range entries {
		if _, err := model.ParseFilePath(string(e.From)); err != nil {
			return nil, errors.Errorf("entry %d: from: %w", i, err)
		}
		if _, err := model.ParseFilePath(string(e.To)); err != nil {
			return nil, errors.Errorf("entry %d: to: %w", i, err)
		}
		if e.From.Dir() != e.To.Dir() {
			return nil, errors.Errorf("entry %d: %s -> %s moves between directories", i, e.From, e.To)
		}
	}
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })
	m, err := newMapping(policy, sorted)
	if err != nil {
		return nil, err
	}
	// a destination that is itself moving would make the renames order dependent
	for _, e := range m.Renames() {
		if next, ok := m.forward[e.To]; ok && next != e.To {
			return nil, errors.Errorf("chained rename %s -> %s -> %s", e.From, e.To, next)
		}
	}
	return m, nil
}

// newMapping expects entries sorted by From.
func newMapping(policy string, entries []Entry) (*Mapping, error) {
	m := &Mapping{
		policy:  policy,
		forward: make(map[model.FilePath]model.FilePath, len(entries)),
		reverse: make(map[model.FilePath]model.FilePath, len(entries)),
		sources: make([]model.FilePath, 0, len(entries)),
	}
	for _, e := range entries {
		if prev, ok := m.forward[e.From]; ok {
			if prev == e.To {
				continue
			}
			return nil, errors.Errorf("source %s is mapped twice (%s, %s)", e.From, prev, e.To)
		}
		if other, ok := m.reverse[e.To]; ok {
			return nil, &CollisionError{Destination: e.To, First: other, Second: e.From}
		}
		m.forward[e.From] = e.To
		m.reverse[e.To] = e.From
		m.sources = append(m.sources, e.From)
	}
	return m, nil
}
