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

// Package engine runs a migration: walk, plan, index, rewrite and rename.
package engine

import (
	"context"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/walteh/casemod/pkg/index"
	"github.com/walteh/casemod/pkg/model"
	"github.com/walteh/casemod/pkg/naming"
	"github.com/walteh/casemod/pkg/plan"
	"github.com/walteh/casemod/pkg/report"
	"github.com/walteh/casemod/pkg/rewrite"
	"github.com/walteh/casemod/pkg/walk"
	"github.com/walteh/casemod/pkg/workspace"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ⚙️ Options configures a run.
type Options struct {
	Root           string
	Exclude        []string
	Extensions     []string
	FollowSymlinks bool
	Policy         naming.Policy
	Rules          []rewrite.Rule
	Syntax         index.Syntax
	RootAliases    []string
	Concurrency    int
	// Plan replaces planning with a previously saved mapping.
	Plan *plan.Mapping
	// PlanOut, when set, receives a snapshot of the mapping.
	PlanOut string
	// DryRun computes every change and writes nothing but PlanOut.
	DryRun bool
}

// unit is one file moving through the rewrite phase. logical is the path the
// plan knows it by, location is where it is on disk now.
type unit struct {
	logical  model.FilePath
	location model.FilePath
	dest     model.FilePath
}

// prepared is the state shared by Plan and Run once the tree has been walked
// and the renames planned.
type prepared struct {
	ws      *workspace.Manager
	rep     *report.Report
	files   []model.FilePath
	mapping *plan.Mapping
	rules   *rewrite.RuleSet
	matcher *index.Matcher
}

func prepare(ctx context.Context, opts Options) (*prepared, error) {
	logger := zerolog.Ctx(ctx)

	if info, err := os.Stat(opts.Root); err != nil {
		return nil, errors.Errorf("reading root: %w", err)
	} else if !info.IsDir() {
		return nil, errors.Errorf("root %s is not a directory", opts.Root)
	}

	rules, err := rewrite.Compile(opts.Rules)
	if err != nil {
		return nil, errors.Errorf("compiling rules: %w", err)
	}
	syntax := opts.Syntax
	if len(syntax.Markers) == 0 && len(syntax.Quotes) == 0 {
		syntax = index.DefaultSyntax
	}
	matcher, err := syntax.Compile()
	if err != nil {
		return nil, errors.Errorf("compiling syntax: %w", err)
	}

	ws := workspace.New(opts.Root)

	policyName := ""
	if opts.Plan != nil {
		policyName = opts.Plan.Policy()
	} else if opts.Policy != nil {
		policyName = opts.Policy.Name()
	}
	p := &prepared{
		ws:      ws,
		rep:     report.New(ws.Root(), policyName, opts.DryRun),
		rules:   rules,
		matcher: matcher,
	}

	// walk
	files, walkErrs := walk.Collect(walk.Walk(ctx, ws.Root(), walk.Options{
		Exclude:        opts.Exclude,
		Extensions:     opts.Extensions,
		FollowSymlinks: opts.FollowSymlinks,
	}))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, werr := range walkErrs {
		w := report.Warning{Kind: report.WarnWalk, Detail: werr.Error()}
		var cycle *walk.CycleError
		if errors.As(werr, &cycle) {
			w.File = cycle.Path
		}
		p.rep.Warnings = append(p.rep.Warnings, w)
	}
	p.files = files
	p.rep.Candidates = len(files)
	logger.Debug().Int("files", len(files)).Int("walk_errors", len(walkErrs)).Msg("walked tree")

	// plan
	p.mapping = opts.Plan
	if p.mapping == nil {
		p.mapping, err = plan.Build(files, opts.Policy, plan.WithOccupied(ws.Occupied))
		if err != nil {
			var ce *plan.CollisionError
			if errors.As(err, &ce) {
				p.rep.Collision = &report.Collision{
					Destination: ce.Destination,
					First:       ce.First,
					Second:      ce.Second,
					Occupied:    ce.Occupied,
				}
				p.rep.Finalize()
				return p, errors.Errorf("planning renames: %w", err)
			}
			return nil, errors.Errorf("planning renames: %w", err)
		}
	}
	logger.Debug().Int("entries", p.mapping.Len()).Int("renames", len(p.mapping.Renames())).Msg("planned renames")

	if opts.PlanOut != "" {
		if err := plan.Save(ctx, p.mapping, opts.PlanOut); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// 🗺️ Plan walks the tree and computes the rename mapping without touching
// any file other than PlanOut. The report carries walk warnings and, on a
// collision, the colliding paths.
func Plan(ctx context.Context, opts Options) (*plan.Mapping, *report.Report, error) {
	p, err := prepare(ctx, opts)
	if err != nil {
		if p != nil {
			return nil, p.rep, err
		}
		return nil, nil, err
	}
	p.rep.Finalize()
	return p.mapping, p.rep, nil
}

// 🚀 Run executes a migration and returns its report. A rename collision is
// returned as a *plan.CollisionError together with a report describing it;
// nothing is modified in that case. Per-file failures are recorded in the
// report and do not make Run fail.
func Run(ctx context.Context, opts Options) (*report.Report, error) {
	logger := zerolog.Ctx(ctx)

	p, err := prepare(ctx, opts)
	if err != nil {
		if p != nil {
			return p.rep, err
		}
		return nil, err
	}
	ws, rep, files, mapping, rules, matcher := p.ws, p.rep, p.files, p.mapping, p.rules, p.matcher

	units, missing, skipped := locate(ws, mapping, files)
	batch := &report.Batch{}
	for _, fp := range missing {
		batch.Add(report.Record{File: fp, Kind: report.Failed, Reason: "planned source no longer exists"})
	}
	for _, fp := range skipped {
		batch.Warn(report.Warning{Kind: report.WarnWalk, File: fp, Detail: "planned source was not walked (excluded or filtered); left as is"})
	}
	rep.Merge(batch)

	// index
	indexer := &index.Indexer{
		Root:        ws.Root(),
		Mapping:     mapping,
		Matcher:     matcher,
		Extensions:  opts.Extensions,
		RootAliases: opts.RootAliases,
		Concurrency: opts.Concurrency,
	}
	locations := make(map[model.FilePath]model.FilePath, len(units))
	logical := make([]model.FilePath, len(units))
	for i, u := range units {
		locations[u.logical] = u.location
		logical[i] = u.logical
	}
	results, err := indexer.IndexAll(ctx, logical, func(ctx context.Context, fp model.FilePath) ([]byte, error) {
		return ws.ReadFile(ctx, locations[fp])
	})
	if err != nil {
		return nil, errors.Errorf("indexing references: %w", err)
	}

	// rewrite and rename
	rw := &rewrite.Rewriter{Mapping: mapping, Rules: rules, Resolver: indexer}
	batches := make([]*report.Batch, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(opts.Concurrency))
	for i, u := range units {
		batches[i] = &report.Batch{}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			apply(gctx, ws, rw, u, results[i], opts.DryRun, batches[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.Merge(batches...)
	rep.Finalize()

	s := rep.Summary()
	logger.Info().
		Bool("dry_run", opts.DryRun).
		Int("renamed", s.Renamed).
		Int("rewritten", s.Rewritten).
		Int("failed", s.Failed).
		Int("warnings", s.Warnings).
		Msg("migration finished")

	return rep, nil
}

// Check is a dry run that reports whether a run would change anything.
func Check(ctx context.Context, opts Options) (bool, *report.Report, error) {
	opts.DryRun = true
	opts.PlanOut = ""
	rep, err := Run(ctx, opts)
	if err != nil {
		return false, rep, err
	}
	return rep.Changed(), rep, nil
}

// locate pairs every walked file with its plan entry. A planned source that
// is gone while its destination exists was moved by an earlier, interrupted
// run; it is processed at its destination. Sources missing from both places
// are returned as missing; sources on disk that the walk did not yield (now
// excluded, or filtered out) are returned as skipped.
func locate(ws *workspace.Manager, mapping *plan.Mapping, files []model.FilePath) (units []unit, missing, skipped []model.FilePath) {
	walked := make(map[model.FilePath]bool, len(files))
	for _, fp := range files {
		walked[fp] = true
	}

	claimed := map[model.FilePath]bool{}
	for _, e := range mapping.Entries() {
		switch {
		case walked[e.From]:
			units = append(units, unit{logical: e.From, location: e.From, dest: e.To})
		case e.From != e.To && walked[e.To] && !ws.Exists(e.From):
			units = append(units, unit{logical: e.From, location: e.To, dest: e.To})
			claimed[e.To] = true
		case !ws.Exists(e.From):
			missing = append(missing, e.From)
		default:
			skipped = append(skipped, e.From)
		}
	}
	for _, fp := range files {
		if mapping.Contains(fp) || claimed[fp] {
			continue
		}
		units = append(units, unit{logical: fp, location: fp, dest: fp})
	}
	return units, missing, skipped
}

func apply(ctx context.Context, ws *workspace.Manager, rw *rewrite.Rewriter, u unit, res index.Result, dryRun bool, batch *report.Batch) {
	logger := zerolog.Ctx(ctx).With().Str("file", string(u.logical)).Logger()

	if res.Err != nil {
		batch.Add(report.Record{File: u.logical, Kind: report.Failed, Reason: res.Err.Error()})
		return
	}

	out := rw.Rewrite(u.logical, res.Content, res.Refs)
	batch.Warn(out.Warnings...)

	rec := report.Record{File: u.logical, Rewrites: len(out.Edits)}
	moving := u.location != u.dest
	if moving || u.logical != u.dest {
		rec.NewFile = u.dest
	}
	switch {
	case moving && out.Changed:
		rec.Kind = report.Both
	case moving:
		rec.Kind = report.Renamed
	case out.Changed:
		rec.Kind = report.ContentRewritten
	default:
		rec.Kind = report.Unchanged
	}

	if dryRun {
		rec.Diff = rewrite.Diff(string(u.logical), string(u.dest), res.Content, out.Content)
		batch.Add(rec)
		return
	}

	if out.Changed {
		if err := ws.WriteFileAtomic(ctx, u.location, out.Content); err != nil {
			logger.Debug().Err(err).Msg("rewrite failed")
			batch.Add(report.Record{File: u.logical, Kind: report.Failed, Reason: err.Error()})
			return
		}
	}
	if moving {
		if err := ws.Rename(ctx, u.location, u.dest); err != nil {
			logger.Debug().Err(err).Msg("rename failed")
			reason := err.Error()
			if out.Changed {
				reason = "content rewritten but " + reason
			}
			batch.Add(report.Record{File: u.logical, Kind: report.Failed, Reason: reason, Rewrites: len(out.Edits)})
			return
		}
	}

	batch.Add(rec)
}

func limit(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
