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

// Package report accumulates the per-file outcome of a migration run.
package report

import (
	"sort"

	"github.com/walteh/casemod/pkg/model"
)

// RecordKind is the outcome of one file.
type RecordKind string

const (
	Unchanged        RecordKind = "unchanged"
	Renamed          RecordKind = "renamed"
	ContentRewritten RecordKind = "rewritten"
	Both             RecordKind = "renamed+rewritten"
	Failed           RecordKind = "failed"
)

// 📝 Record describes what happened to one file.
type Record struct {
	File     model.FilePath `json:"file"`
	NewFile  model.FilePath `json:"new_file,omitempty"`
	Kind     RecordKind     `json:"kind"`
	Reason   string         `json:"reason,omitempty"`
	Rewrites int            `json:"rewrites,omitempty"`
	// Diff is only filled on dry runs.
	Diff string `json:"diff,omitempty"`
}

// WarningKind classifies a non-fatal finding.
type WarningKind string

const (
	WarnUnresolved WarningKind = "unresolved"
	WarnDynamic    WarningKind = "dynamic"
	WarnAmbiguous  WarningKind = "ambiguous"
	WarnUnstable   WarningKind = "unstable"
	WarnWalk       WarningKind = "walk"
)

// ⚠️ Warning is a finding that does not stop the run.
type Warning struct {
	Kind      WarningKind    `json:"kind"`
	File      model.FilePath `json:"file,omitempty"`
	Specifier string         `json:"specifier,omitempty"`
	Detail    string         `json:"detail,omitempty"`
}

// Batch is the private accumulator of one worker.
type Batch struct {
	Records  []Record
	Warnings []Warning
}

// Add appends a record.
func (b *Batch) Add(r Record) {
	b.Records = append(b.Records, r)
}

// Warn appends warnings.
func (b *Batch) Warn(w ...Warning) {
	b.Warnings = append(b.Warnings, w...)
}

// Collision is the planning failure that aborted a run.
type Collision struct {
	Destination model.FilePath `json:"destination"`
	First       model.FilePath `json:"first"`
	Second      model.FilePath `json:"second,omitempty"`
	Occupied    bool           `json:"occupied,omitempty"`
}

// 📊 Report is the result of a run.
type Report struct {
	Root       string     `json:"root"`
	Policy     string     `json:"policy"`
	DryRun     bool       `json:"dry_run"`
	Candidates int        `json:"candidates"`
	Collision  *Collision `json:"collision,omitempty"`
	Records    []Record   `json:"records"`
	Warnings   []Warning  `json:"warnings"`
}

// New starts an empty report.
func New(root, policy string, dryRun bool) *Report {
	return &Report{
		Root:     root,
		Policy:   policy,
		DryRun:   dryRun,
		Records:  []Record{},
		Warnings: []Warning{},
	}
}

// Merge appends the content of worker batches. It is not safe for concurrent
// use; call it after the workers are done.
func (r *Report) Merge(batches ...*Batch) {
	for _, b := range batches {
		if b == nil {
			continue
		}
		r.Records = append(r.Records, b.Records...)
		r.Warnings = append(r.Warnings, b.Warnings...)
	}
}

// Finalize sorts records by file and warnings by file then specifier, so the
// report does not depend on worker scheduling.
func (r *Report) Finalize() {
	sort.SliceStable(r.Records, func(i, j int) bool {
		return r.Records[i].File < r.Records[j].File
	})
	sort.SliceStable(r.Warnings, func(i, j int) bool {
		a, b := r.Warnings[i], r.Warnings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Specifier != b.Specifier {
			return a.Specifier < b.Specifier
		}
		return a.Kind < b.Kind
	})
}

// Summary holds the counts of a report. A file that was both renamed and
// rewritten counts towards Renamed and Rewritten.
type Summary struct {
	Files     int `json:"files"`
	Renamed   int `json:"renamed"`
	Rewritten int `json:"rewritten"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Warnings  int `json:"warnings"`
}

// Summary counts records by kind.
func (r *Report) Summary() Summary {
	s := Summary{Files: len(r.Records), Warnings: len(r.Warnings)}
	for _, rec := range r.Records {
		switch rec.Kind {
		case Renamed:
			s.Renamed++
		case ContentRewritten:
			s.Rewritten++
		case Both:
			s.Renamed++
			s.Rewritten++
		case Failed:
			s.Failed++
		default:
			s.Unchanged++
		}
	}
	return s
}

// Failures returns the failed records.
func (r *Report) Failures() []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.Kind == Failed {
			out = append(out, rec)
		}
	}
	return out
}

// Changed reports whether any file was (or on a dry run would be) renamed or
// rewritten.
func (r *Report) Changed() bool {
	for _, rec := range r.Records {
		switch rec.Kind {
		case Renamed, ContentRewritten, Both:
			return true
		}
	}
	return false
}
