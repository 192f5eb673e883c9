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

// Package rewrite replaces module specifiers so they follow the rename plan
// and the user's rewrite rules.
package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/walteh/casemod/pkg/index"
	"github.com/walteh/casemod/pkg/model"
	"github.com/walteh/casemod/pkg/plan"
	"github.com/walteh/casemod/pkg/report"
)

const sourcePlan = "plan"

// ✏️ Edit is one specifier replacement.
type Edit struct {
	Span model.Span
	Old  string
	New  string
	// Source is "plan" or "rule <index>".
	Source string
}

// Result is the rewritten content of one file.
type Result struct {
	Content  []byte
	Changed  bool
	Edits    []Edit
	Warnings []report.Warning
}

// Resolver classifies a specifier written into owner.
type Resolver interface {
	Resolve(owner model.FilePath, spec, quote string) model.ImportReference
}

// Rewriter is read-only and safe for concurrent use.
type Rewriter struct {
	Mapping *plan.Mapping
	Rules   *RuleSet
	// Resolver, when set, routes rule outputs that name a planned file
	// through the plan, so they point at the file's new name.
	Resolver Resolver
}

// Rewrite computes the new content of owner. References to planned files are
// updated first; every other static reference is then offered to the rules.
// Dynamic references are never touched. content is not modified.
func (r *Rewriter) Rewrite(owner model.FilePath, content []byte, refs []model.ImportReference) Result {
	var res Result

	for _, ref := range refs {
		switch ref.Kind {
		case model.KindDynamic:
			res.Warnings = append(res.Warnings, report.Warning{
				Kind:      report.WarnDynamic,
				File:      owner,
				Specifier: ref.Raw,
				Detail:    "interpolated specifier left as is",
			})
			continue
		case model.KindInPlan:
			if next, ok := r.planned(ref); !ok {
				res.Warnings = append(res.Warnings, report.Warning{
					Kind:      report.WarnUnresolved,
					File:      owner,
					Specifier: ref.Raw,
					Detail:    fmt.Sprintf("cannot rebuild specifier for %s", ref.Target),
				})
			} else if next != ref.Raw {
				res.Edits = append(res.Edits, Edit{Span: ref.Span, Old: ref.Raw, New: next, Source: sourcePlan})
			}
			continue
		}

		m, matched := r.Rules.match(owner, ref.Raw)
		if !matched {
			if ref.Kind == model.KindUnresolved {
				res.Warnings = append(res.Warnings, report.Warning{
					Kind:      report.WarnUnresolved,
					File:      owner,
					Specifier: ref.Raw,
					Detail:    "no file found for specifier",
				})
			}
			continue
		}

		if len(m.shadowed) > 0 {
			res.Warnings = append(res.Warnings, report.Warning{
				Kind:      report.WarnAmbiguous,
				File:      owner,
				Specifier: ref.Raw,
				Detail:    fmt.Sprintf("rule %d applied, shadowing rules %s", m.index, joinInts(m.shadowed)),
			})
		}

		if m.result == ref.Raw {
			continue
		}
		if reason := r.unstable(owner, m.result, ref.Quote); reason != "" {
			res.Warnings = append(res.Warnings, report.Warning{
				Kind:      report.WarnUnstable,
				File:      owner,
				Specifier: ref.Raw,
				Detail:    fmt.Sprintf("rule %d not applied: %s", m.index, reason),
			})
			continue
		}
		out, reason := r.followPlan(owner, m.result, ref.Quote)
		if reason != "" {
			res.Warnings = append(res.Warnings, report.Warning{
				Kind:      report.WarnUnstable,
				File:      owner,
				Specifier: ref.Raw,
				Detail:    fmt.Sprintf("rule %d not applied: %s", m.index, reason),
			})
			continue
		}
		res.Edits = append(res.Edits, Edit{Span: ref.Span, Old: ref.Raw, New: out, Source: fmt.Sprintf("rule %d", m.index)})
	}

	res.Content, res.Changed = Apply(content, res.Edits)
	return res
}

// unstable explains why a rule output cannot be written, or returns "".
func (r *Rewriter) unstable(owner model.FilePath, out, quote string) string {
	if strings.Contains(out, quote) || strings.Contains(out, "\n") {
		return "replacement contains the quote delimiter or a newline"
	}
	if again, ok := r.Rules.match(owner, out); ok && again.result != out {
		return fmt.Sprintf("output %q is rewritten again by rule %d", out, again.index)
	}
	return ""
}

// followPlan rewrites a rule output that names a planned file to the file's
// destination. reason is set when the output cannot be rebuilt.
func (r *Rewriter) followPlan(owner model.FilePath, out, quote string) (string, string) {
	if r.Resolver == nil {
		return out, ""
	}
	ref := r.Resolver.Resolve(owner, out, quote)
	if ref.Kind != model.KindInPlan {
		return out, ""
	}
	next, ok := r.planned(ref)
	if !ok {
		return "", fmt.Sprintf("output %q names %s, which is renamed to a form the specifier cannot follow", out, ref.Target)
	}
	return next, ""
}

// planned builds the specifier for a reference to a planned file. Everything
// up to the last segment is kept verbatim, as are the extension style and any
// query or fragment suffix. ok is false when the specifier does not end in the
// name of its target.
func (r *Rewriter) planned(ref model.ImportReference) (string, bool) {
	dst, found := r.Mapping.Lookup(ref.Target)
	if !found || dst == ref.Target {
		return ref.Raw, true
	}

	pathPart, suffix := index.SplitSuffix(ref.Raw)
	head, last := "", pathPart
	if i := strings.LastIndex(pathPart, "/"); i >= 0 {
		head, last = pathPart[:i+1], pathPart[i+1:]
	}

	oldBase, newBase := ref.Target.Base(), dst.Base()

	switch ref.Resolution {
	case model.ResolvedExact:
		if last != oldBase {
			return "", false
		}
		last = newBase
	case model.ResolvedExtension:
		if !strings.HasPrefix(oldBase, last) || last == "" {
			return "", false
		}
		ext := oldBase[len(last):]
		if !strings.HasSuffix(newBase, ext) {
			return "", false
		}
		last = strings.TrimSuffix(newBase, ext)
	case model.ResolvedIndex:
		// the specifier names the directory; point it at the renamed file
		stem, _, _ := strings.Cut(newBase, ".")
		return strings.TrimSuffix(pathPart, "/") + "/" + stem + suffix, true
	default:
		return "", false
	}

	return head + last + suffix, true
}

// Apply splices edits into content in one pass. Edits must not overlap.
// The input slice is not modified.
func Apply(content []byte, edits []Edit) ([]byte, bool) {
	if len(edits) == 0 {
		return content, false
	}
	sorted := append([]Edit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, e := range sorted {
		b.Write(content[last:e.Span.Start])
		b.WriteString(e.New)
		last = e.Span.End
	}
	b.Write(content[last:])
	return []byte(b.String()), true
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return strings.Join(parts, ", ")
}
