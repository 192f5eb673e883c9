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

package rewrite

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/casemod/pkg/model"
	"gitlab.com/tozd/go/errors"
)

// RuleKind selects how a rule's Match is compared to a specifier.
type RuleKind string

const (
	// RuleExact replaces a specifier equal to Match.
	RuleExact RuleKind = "exact"
	// RulePrefix replaces the Match prefix and keeps the remainder.
	RulePrefix RuleKind = "prefix"
	// RulePattern treats Match as a regular expression over the whole
	// specifier; Replacement may use $1 style captures.
	RulePattern RuleKind = "pattern"
)

// 📏 Rule is a user supplied specifier rewrite.
type Rule struct {
	Match       string
	Replacement string
	Kind        RuleKind
	// Scope is a doublestar glob over the owner file. Empty matches every file.
	Scope string
}

type compiledRule struct {
	Rule
	index int
	re    *regexp.Regexp
}

// RuleSet is an ordered, validated list of rules.
type RuleSet struct {
	rules []compiledRule
}

// Compile validates rules in order. Errors name the offending rule index.
func Compile(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		if r.Kind == "" {
			r.Kind = RuleExact
		}
		if r.Match == "" {
			return nil, errors.Errorf("rule %d: match is empty", i)
		}
		c := compiledRule{Rule: r, index: i}
		switch r.Kind {
		case RuleExact, RulePrefix:
		case RulePattern:
			re, err := regexp.Compile(`^(?:` + r.Match + `)$`)
			if err != nil {
				return nil, errors.Errorf("rule %d: invalid pattern %q: %w", i, r.Match, err)
			}
			c.re = re
		default:
			return nil, errors.Errorf("rule %d: unknown kind %q (want exact, prefix or pattern)", i, r.Kind)
		}
		if r.Scope != "" && !doublestar.ValidatePattern(r.Scope) {
			return nil, errors.Errorf("rule %d: invalid scope glob %q", i, r.Scope)
		}
		rs.rules = append(rs.rules, c)
	}
	return rs, nil
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

func (c compiledRule) inScope(owner model.FilePath) bool {
	if c.Scope == "" {
		return true
	}
	ok, err := doublestar.Match(c.Scope, string(owner))
	return err == nil && ok
}

func (c compiledRule) apply(spec string) (string, bool) {
	switch c.Kind {
	case RulePrefix:
		if strings.HasPrefix(spec, c.Match) {
			return c.Replacement + spec[len(c.Match):], true
		}
	case RulePattern:
		loc := c.re.FindStringSubmatchIndex(spec)
		if loc == nil {
			return "", false
		}
		return string(c.re.ExpandString(nil, c.Replacement, spec, loc)), true
	default:
		if spec == c.Match {
			return c.Replacement, true
		}
	}
	return "", false
}

// ruleMatch is the outcome of trying every in-scope rule against a specifier.
type ruleMatch struct {
	result   string
	index    int
	shadowed []int
}

// match applies the first in-scope rule that matches spec and lists the
// indices of later rules that would also have matched.
func (rs *RuleSet) match(owner model.FilePath, spec string) (ruleMatch, bool) {
	if rs == nil {
		return ruleMatch{}, false
	}
	var (
		m     ruleMatch
		found bool
	)
	for _, r := range rs.rules {
		if !r.inScope(owner) {
			continue
		}
		out, ok := r.apply(spec)
		if !ok {
			continue
		}
		if found {
			m.shadowed = append(m.shadowed, r.index)
			continue
		}
		m.result, m.index, found = out, r.index, true
	}
	return m, found
}
