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

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/casemod/pkg/engine"
	"github.com/walteh/casemod/pkg/index"
	"github.com/walteh/casemod/pkg/naming"
	"github.com/walteh/casemod/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes. filename is used in diagnostics
	// and to locate the config directory.
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Default values applied by Defaults.
var (
	DefaultPolicy      = "kebab"
	DefaultExclude     = []string{"node_modules", ".git", "dist", "build", ".next", "out", "coverage"}
	DefaultExtensions  = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}
	DefaultRootAliases = []string{"@/", "~/"}
)

// 📏 Rule is a specifier rewrite rule.
type Rule struct {
	Match       string `json:"match" yaml:"match" hcl:"match"`
	Replacement string `json:"replacement" yaml:"replacement" hcl:"replacement"`
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty" hcl:"kind,optional"`
	Scope       string `json:"scope,omitempty" yaml:"scope,omitempty" hcl:"scope,optional"`
}

// 📝 Syntax overrides how references are recognized.
type Syntax struct {
	Markers []string `json:"markers,omitempty" yaml:"markers,omitempty" hcl:"markers,optional"`
	Quotes  []string `json:"quotes,omitempty" yaml:"quotes,omitempty" hcl:"quotes,optional"`
}

// 📚 Config is the complete configuration of a run.
type Config struct {
	Root           string   `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`
	Policy         string   `json:"policy,omitempty" yaml:"policy,omitempty" hcl:"policy,optional"`
	Exclude        []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	Extensions     []string `json:"extensions,omitempty" yaml:"extensions,omitempty" hcl:"extensions,optional"`
	RootAliases    []string `json:"root_aliases,omitempty" yaml:"root_aliases,omitempty" hcl:"root_aliases,optional"`
	FollowSymlinks bool     `json:"follow_symlinks,omitempty" yaml:"follow_symlinks,omitempty" hcl:"follow_symlinks,optional"`
	Concurrency    int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional"`
	PlanOut        string   `json:"plan_out,omitempty" yaml:"plan_out,omitempty" hcl:"plan_out,optional"`
	Syntax         *Syntax  `json:"syntax,omitempty" yaml:"syntax,omitempty" hcl:"syntax,block"`
	Rules          []Rule   `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rule,block"`

	location string
}

// Location returns the file the config was loaded from, if any.
func (cfg *Config) Location() string {
	return cfg.location
}

// Defaults fills every unset field.
func (cfg *Config) Defaults() {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Policy == "" {
		cfg.Policy = DefaultPolicy
	}
	if cfg.Exclude == nil {
		cfg.Exclude = append([]string(nil), DefaultExclude...)
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.RootAliases == nil {
		cfg.RootAliases = append([]string(nil), DefaultRootAliases...)
	}
}

// 🔍 Validate checks every field and names the first offending one.
func (cfg *Config) Validate() error {
	if _, err := naming.Get(cfg.Policy); err != nil {
		return errors.Errorf("policy: %w", err)
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.Errorf("extensions[%d]: %q must start with a dot", i, ext)
		}
	}
	for i, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("exclude[%d]: invalid glob %q", i, pattern)
		}
	}
	for i, alias := range cfg.RootAliases {
		if alias == "" || !strings.HasSuffix(alias, "/") {
			return errors.Errorf("root_aliases[%d]: %q must end with a slash", i, alias)
		}
	}
	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency: must not be negative, got %d", cfg.Concurrency)
	}
	if _, err := rewrite.Compile(cfg.rewriteRules()); err != nil {
		return errors.Errorf("rules: %w", err)
	}
	if cfg.Syntax != nil {
		if _, err := cfg.indexSyntax().Compile(); err != nil {
			return errors.Errorf("syntax: %w", err)
		}
	}
	return nil
}

func (cfg *Config) rewriteRules() []rewrite.Rule {
	rules := make([]rewrite.Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, rewrite.Rule{
			Match:       r.Match,
			Replacement: r.Replacement,
			Kind:        rewrite.RuleKind(r.Kind),
			Scope:       r.Scope,
		})
	}
	return rules
}

// indexSyntax fills the unset half of a partial override from the defaults.
func (cfg *Config) indexSyntax() index.Syntax {
	if cfg.Syntax == nil {
		return index.DefaultSyntax
	}
	s := index.Syntax{Markers: cfg.Syntax.Markers, Quotes: cfg.Syntax.Quotes}
	if len(s.Markers) == 0 {
		s.Markers = index.DefaultSyntax.Markers
	}
	if len(s.Quotes) == 0 {
		s.Quotes = index.DefaultSyntax.Quotes
	}
	return s
}

// EngineOptions converts a validated config into run options.
func (cfg *Config) EngineOptions() (engine.Options, error) {
	policy, err := naming.Get(cfg.Policy)
	if err != nil {
		return engine.Options{}, errors.Errorf("policy: %w", err)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return engine.Options{}, errors.Errorf("resolving root %s: %w", cfg.Root, err)
	}
	return engine.Options{
		Root:           root,
		Exclude:        cfg.Exclude,
		Extensions:     cfg.Extensions,
		FollowSymlinks: cfg.FollowSymlinks,
		Policy:         policy,
		Rules:          cfg.rewriteRules(),
		Syntax:         cfg.indexSyntax(),
		RootAliases:    cfg.RootAliases,
		Concurrency:    cfg.Concurrency,
		PlanOut:        cfg.PlanOut,
	}, nil
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s (policy=%s, %d rules)", cfg.Root, cfg.Policy, len(cfg.Rules))
}
