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

package log

import (
	"context"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/casemod/pkg/report"
)

// 📢 UserLogger prints warnings, collisions and summaries as pterm status
// lines.
type UserLogger struct {
	log zerolog.Logger
	out io.Writer
}

// 🎯 NewUserLogger creates a user logger writing to out
func NewUserLogger(ctx context.Context, out io.Writer) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

func (u *UserLogger) printer(base pterm.PrefixPrinter, prefix string) *pterm.PrefixPrinter {
	return base.WithPrefix(pterm.Prefix{Text: prefix, Style: base.Prefix.Style}).WithWriter(u.out)
}

// ⚠️ LogWarning prints one non-fatal finding
func (u *UserLogger) LogWarning(w report.Warning) {
	var prefix string
	switch w.Kind {
	case report.WarnUnresolved:
		prefix = "❓"
	case report.WarnDynamic:
		prefix = "🧩"
	case report.WarnAmbiguous:
		prefix = "🔀"
	case report.WarnUnstable:
		prefix = "🌀"
	default:
		prefix = "🚶"
	}

	msg := string(w.Kind)
	if w.File != "" {
		msg += " " + string(w.File)
	}
	if w.Specifier != "" {
		msg += fmt.Sprintf(" %q", w.Specifier)
	}
	if w.Detail != "" {
		msg += ": " + w.Detail
	}

	u.printer(pterm.Warning, prefix).Println(msg)
	u.log.Warn().
		Str("kind", string(w.Kind)).
		Str("file", string(w.File)).
		Str("specifier", w.Specifier).
		Msg(w.Detail)
}

// 💥 LogCollision explains why planning stopped
func (u *UserLogger) LogCollision(c report.Collision) {
	var msg string
	if c.Occupied {
		msg = fmt.Sprintf("%s would overwrite existing file %s", c.First, c.Destination)
	} else {
		msg = fmt.Sprintf("%s and %s both become %s", c.First, c.Second, c.Destination)
	}
	u.printer(pterm.Error, "💥").Println(msg)
	u.printer(pterm.Info, "💡").Println("rename one of them by hand, then run again; nothing was changed")
	u.log.Error().Str("destination", string(c.Destination)).Msg(msg)
}

// 📊 LogSummary prints the final counts
func (u *UserLogger) LogSummary(s report.Summary, dryRun bool) {
	verb := "changed"
	if dryRun {
		verb = "would change"
	}
	touched := s.Files - s.Unchanged - s.Failed
	msg := fmt.Sprintf("%s %d of %d files: %d renamed, %d rewritten, %d failed, %d warnings",
		verb, touched, s.Files, s.Renamed, s.Rewritten, s.Failed, s.Warnings)

	switch {
	case s.Failed > 0:
		u.printer(pterm.Error, "❌").Println(msg)
		u.log.Error().Int("failed", s.Failed).Msg(msg)
	case touched == 0:
		u.printer(pterm.Success, "✅").Println("already canonical, nothing to do")
		u.log.Info().Msg("already canonical")
	default:
		u.printer(pterm.Success, "✨").Println(msg)
		u.log.Info().Msg(msg)
	}
}

// 🔍 LogDiff prints a dry-run diff
func (u *UserLogger) LogDiff(rec report.Record) {
	if rec.Diff == "" {
		return
	}
	u.printer(pterm.Info, "📄").Println(string(rec.File))
	fmt.Fprint(u.out, rec.Diff)
	u.log.Debug().Str("file", string(rec.File)).Msg("printed diff")
}
