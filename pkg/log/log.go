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
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/casemod/pkg/report"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 40 // width of the original path
	statusWidth = 18 // width of the outcome
)

// 📦 RunInfo describes the run being logged.
type RunInfo struct {
	Root   string
	Policy string
	DryRun bool
}

// 🎯 Logger prints one colored line per changed file and mirrors every line
// to zerolog.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	run     *RunInfo
	records int
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatRecord formats a file outcome for display
func (l *Logger) formatRecord(rec report.Record) string {
	var symbol rune
	var symbolColor color.Attribute
	switch rec.Kind {
	case report.Failed:
		symbol = '✗'
		symbolColor = color.FgRed
	case report.Both:
		symbol = '⇄'
		symbolColor = color.FgMagenta
	case report.Renamed:
		symbol = '→'
		symbolColor = color.FgGreen
	case report.ContentRewritten:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	detail := ""
	switch {
	case rec.Kind == report.Failed:
		detail = color.New(color.FgRed).Sprint(rec.Reason)
	case rec.NewFile != "" && rec.NewFile != rec.File:
		detail = color.New(color.FgGreen).Sprint(string(rec.NewFile))
	}
	if rec.Rewrites > 0 {
		if detail != "" {
			detail += " "
		}
		detail += color.New(color.Faint).Sprintf("(%d refs)", rec.Rewrites)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, rec.File),
		fmt.Sprintf("%-*s", statusWidth, rec.Kind),
		detail)
}

// 📝 LogRecord logs the outcome of one file
func (l *Logger) LogRecord(ctx context.Context, rec report.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records++
	fmt.Fprintln(l.console, l.formatRecord(rec))

	l.zlog.Debug().
		Str("file", string(rec.File)).
		Str("new_file", string(rec.NewFile)).
		Str("kind", string(rec.Kind)).
		Str("reason", rec.Reason).
		Int("rewrites", rec.Rewrites).
		Msg("file outcome")
}

// 📝 StartRun prints the header of a run
func (l *Logger) StartRun(ctx context.Context, info RunInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.run = &info
	l.records = 0

	mode := "apply"
	if info.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(l.console, "[migrating %s]\n", color.New(color.FgCyan).Sprint(info.Root))
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(info.Policy),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(mode))

	l.zlog.Info().
		Str("root", info.Root).
		Str("policy", info.Policy).
		Bool("dry_run", info.DryRun).
		Msg("starting run")
}

// 📝 EndRun closes the current run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.run == nil {
		return
	}

	l.zlog.Info().
		Str("root", l.run.Root).
		Int("files", l.records).
		Msg("run complete")

	l.run = nil
	l.records = 0
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("casemod")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
