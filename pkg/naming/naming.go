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

// Package naming converts identifiers between file-naming conventions.
package naming

import (
	"sort"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// 🔤 Policy converts an identifier into a target naming convention.
// Convert must be total, deterministic and idempotent on its own output.
type Policy interface {
	Name() string
	Convert(identifier string) string
}

var policies = map[string]Policy{}

// Register makes a policy available through Get.
func Register(p Policy) {
	policies[p.Name()] = p
}

func init() {
	Register(Kebab)
	Register(Snake)
	Register(Identity)
}

// Get returns the registered policy with the given name.
func Get(name string) (Policy, error) {
	p, ok := policies[name]
	if !ok {
		return nil, errors.Errorf("unknown naming policy %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the registered policies in lexical order.
func Names() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	// Kebab is hyphen-lowercase: AIConfigDialog -> ai-config-dialog.
	Kebab Policy = separatorPolicy{name: "kebab", sep: '-'}
	// Snake is underscore-lowercase: AIConfigDialog -> ai_config_dialog.
	Snake Policy = separatorPolicy{name: "snake", sep: '_'}
	// Identity leaves every name alone.
	Identity Policy = identityPolicy{}
)

type identityPolicy struct{}

func (identityPolicy) Name() string            { return "identity" }
func (identityPolicy) Convert(s string) string { return s }

// separatorPolicy lowercases words and joins them with sep. Acronym runs
// stay one word. Leading and trailing separator runs (_app, __init__) are
// kept verbatim since frameworks give them meaning.
type separatorPolicy struct {
	name string
	sep  rune
}

func (p separatorPolicy) Name() string {
	return p.name
}

func (p separatorPolicy) Convert(s string) string {
	runes := []rune(s)

	lead := 0
	for lead < len(runes) && isSeparator(runes[lead]) {
		lead++
	}
	if lead == len(runes) {
		return s
	}
	trail := len(runes)
	for trail > lead && isSeparator(runes[trail-1]) {
		trail--
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	b.WriteString(string(runes[:lead]))

	pending := false
	for i := lead; i < trail; i++ {
		r := runes[i]
		if isSeparator(r) {
			pending = true
			continue
		}
		if i > lead && !pending && isBoundary(runes, i) {
			pending = true
		}
		if pending {
			b.WriteRune(p.sep)
			pending = false
		}
		b.WriteRune(unicode.ToLower(r))
	}

	b.WriteString(string(runes[trail:]))
	return b.String()
}

// isBoundary reports whether a word starts at runes[i].
func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	if !unicode.IsUpper(cur) {
		return false
	}
	// camel: fooBar, page2Layout
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// end of an acronym run followed by a capitalized word: AIConfig
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == ' '
}

// ConvertBase converts each dot-separated segment of a file base name and
// keeps the final extension verbatim: TagList.Stories.tsx ->
// tag-list.stories.tsx, dataManager.d.ts -> data-manager.d.ts. Dot files are
// returned unchanged.
func ConvertBase(p Policy, base string) string {
	if base == "" || strings.HasPrefix(base, ".") {
		return base
	}
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return p.Convert(base)
	}
	segments := strings.Split(base[:i], ".")
	for j, seg := range segments {
		segments[j] = p.Convert(seg)
	}
	return strings.Join(segments, ".") + base[i:]
}
