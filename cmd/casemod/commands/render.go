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

package commands

import (
	"context"
	"io"

	"github.com/walteh/casemod/cmd/casemod/opts"
	"github.com/walteh/casemod/pkg/log"
	"github.com/walteh/casemod/pkg/report"
	"gitlab.com/tozd/go/errors"
)

// ErrChangesPending is returned by check when a run would change the tree.
var ErrChangesPending = errors.Base("changes pending")

// 🖨️ render prints a finished report to out, either as JSON or as the usual
// per-file lines, warnings, table and summary.
func render(ctx context.Context, out io.Writer, o *opts.RootOpts, rep *report.Report, asJSON bool) error {
	if asJSON {
		if err := rep.WriteJSON(out); err != nil {
			return errors.Errorf("writing report: %w", err)
		}
		return nil
	}

	if rep.Collision != nil {
		o.UserLogger.LogCollision(*rep.Collision)
		return nil
	}

	logger := log.FromContext(ctx)
	if rep.DryRun {
		logger.Header("dry run, nothing is written")
	} else {
		logger.Header("normalizing file names")
	}

	logger.StartRun(ctx, log.RunInfo{Root: rep.Root, Policy: rep.Policy, DryRun: rep.DryRun})
	for _, rec := range rep.Records {
		if rec.Kind == report.Unchanged {
			continue
		}
		logger.LogRecord(ctx, rec)
	}
	logger.EndRun(ctx)
	logger.LogNewline()

	for _, w := range rep.Warnings {
		o.UserLogger.LogWarning(w)
	}

	if rep.DryRun {
		for _, rec := range rep.Records {
			o.UserLogger.LogDiff(rec)
		}
	}

	if rep.Changed() || len(rep.Failures()) > 0 {
		if err := rep.RenderTable(out); err != nil {
			return errors.Errorf("rendering table: %w", err)
		}
	}

	o.UserLogger.LogSummary(rep.Summary(), rep.DryRun)
	return nil
}

// failures prints each failed record and turns them into a command error so
// the exit code is non-zero.
func failures(ctx context.Context, rep *report.Report) error {
	failed := rep.Failures()
	if len(failed) == 0 {
		return nil
	}
	logger := log.FromContext(ctx)
	for _, rec := range failed {
		logger.Errorf("%s: %s", rec.File, rec.Reason)
	}
	logger.Warningf("%d of %d files were left untouched", len(failed), len(rep.Records))
	return errors.Errorf("%d files failed", len(failed))
}
