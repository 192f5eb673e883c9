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

package index

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// 📝 Syntax describes how the host module system spells a reference: a
// declaration marker followed by a quoted literal.
type Syntax struct {
	// Markers are regular expression fragments, tried as alternatives.
	Markers []string
	// Quotes are single delimiter characters.
	Quotes []string
}

// DefaultSyntax covers ES modules, CommonJS and the common dynamic forms.
var DefaultSyntax = Syntax{
	Markers: []string{
		`\bfrom`,
		`\bimport`,
		`\bimport\s*\(`,
		`\brequire\s*\(`,
		`\brequire\.resolve\s*\(`,
		`\bjest\.mock\s*\(`,
		`\bvi\.mock\s*\(`,
	},
	Quotes: []string{"'", `"`, "`"},
}

// Matcher is a compiled Syntax.
type Matcher struct {
	re     *regexp.Regexp
	quotes []string
}

// Compile builds the matcher. Each quote becomes its own capture group so the
// delimiter of every match is known.
func (s Syntax) Compile() (*Matcher, error) {
	if len(s.Markers) == 0 {
		return nil, errors.Errorf("syntax: at least one marker is required")
	}
	if len(s.Quotes) == 0 {
		return nil, errors.Errorf("syntax: at least one quote is required")
	}

	markers := make([]string, 0, len(s.Markers))
	for i, m := range s.Markers {
		if m == "" {
			return nil, errors.Errorf("syntax: marker %d is empty", i)
		}
		if _, err := regexp.Compile(m); err != nil {
			return nil, errors.Errorf("syntax: marker %d: %w", i, err)
		}
		markers = append(markers, "(?:"+m+")")
	}

	literals := make([]string, 0, len(s.Quotes))
	for i, q := range s.Quotes {
		r, size := utf8.DecodeRuneInString(q)
		if size == 0 || size != len(q) || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return nil, errors.Errorf("syntax: quote %d (%q) must be a single punctuation character", i, q)
		}
		esc := fmt.Sprintf(`\x{%x}`, r)
		literals = append(literals, esc+`([^`+esc+`\n]*)`+esc)
	}

	pattern := `(?:` + strings.Join(markers, "|") + `)\s*(?:` + strings.Join(literals, "|") + `)`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("syntax: compiling %q: %w", pattern, err)
	}
	return &Matcher{re: re, quotes: append([]string(nil), s.Quotes...)}, nil
}

type match struct {
	start, end int
	quote      string
}

// find returns the spans of every quoted specifier in content.
func (m *Matcher) find(content []byte) []match {
	var out []match
	for _, loc := range m.re.FindAllSubmatchIndex(content, -1) {
		for qi, q := range m.quotes {
			start, end := loc[2+2*qi], loc[3+2*qi]
			if start < 0 {
				continue
			}
			if end > start {
				out = append(out, match{start: start, end: end, quote: q})
			}
			break
		}
	}
	return out
}
