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
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/casemod/pkg/index"
	"github.com/walteh/casemod/pkg/model"
	"github.com/walteh/casemod/pkg/naming"
	"github.com/walteh/casemod/pkg/plan"
	"github.com/walteh/casemod/pkg/report"
)

type fixture struct {
	root    string
	files   map[model.FilePath]string
	mapping *plan.Mapping
	indexer *index.Indexer
}

func newFixture(t *testing.T, files map[model.FilePath]string) *fixture {
	t.Helper()
	root := t.TempDir()
	paths := make([]model.FilePath, 0, len(files))
	for fp, content := range files {
		p := fp.OS(root)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		if fp.Ext() != ".css" {
			paths = append(paths, fp)
		}
	}
	m, err := plan.Build(paths, naming.Kebab)
	require.NoError(t, err)
	matcher, err := index.DefaultSyntax.Compile()
	require.NoError(t, err)
	return &fixture{
		root:    root,
		files:   files,
		mapping: m,
		indexer: &index.Indexer{
			Root:        root,
			Mapping:     m,
			Matcher:     matcher,
			Extensions:  []string{".ts", ".tsx", ".js"},
			RootAliases: []string{"@/"},
		},
	}
}

func (f *fixture) rewrite(t *testing.T, rules *RuleSet, owner model.FilePath, content string) Result {
	t.Helper()
	rw := &Rewriter{Mapping: f.mapping, Rules: rules, Resolver: f.indexer}
	return rw.Rewrite(owner, []byte(content), f.indexer.Index(owner, []byte(content)))
}

func TestRewritePlanDriven(t *testing.T) {
	f := newFixture(t, map[model.FilePath]string{
		"components/TagList.tsx":  "",
		"components/tag-form.tsx": "",
		"components/Owner.tsx":    "",
		"components/index.ts":     "",
		"utils/dataManager.ts":    "",
		"styles/Main.css":         "",
	})

	tests := []struct {
		name string
		spec string
		want string
	}{
		{name: "extension_less", spec: "./TagList", want: "./tag-list"},
		{name: "with_extension", spec: "./TagList.tsx", want: "./tag-list.tsx"},
		{name: "parent_directory", spec: "../utils/dataManager", want: "../utils/data-manager"},
		{name: "redundant_segments_kept", spec: "./../components/TagList", want: "./../components/tag-list"},
		{name: "root_alias", spec: "@/utils/dataManager", want: "@/utils/data-manager"},
		{name: "query_suffix", spec: "./TagList?raw", want: "./tag-list?raw"},
		{name: "already_canonical", spec: "./tag-form", want: "./tag-form"},
		{name: "index_directory", spec: ".", want: "."},
		{name: "unmanaged", spec: "../styles/Main.css", want: "../styles/Main.css"},
		{name: "external", spec: "react", want: "react"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.rewrite(t, nil, "components/Owner.tsx", "import x from '"+tt.spec+"';\n")
			assert.Equal(t, "import x from '"+tt.want+"';\n", string(res.Content))
			assert.Equal(t, tt.spec != tt.want, res.Changed)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestRewriteKeepsEverythingElse(t *testing.T) {
	f := newFixture(t, map[model.FilePath]string{
		"components/TagList.tsx": "",
		"components/TagForm.tsx": "",
	})

	content := "// TagList is imported below\n" +
		"import { TagForm } from \"./TagForm\"\n" +
		"const label = './TagForm'\n" +
		"export { TagList } from './TagList'\n"

	res := f.rewrite(t, nil, "components/TagList.tsx", content)
	assert.Equal(t, "// TagList is imported below\n"+
		"import { TagForm } from \"./tag-form\"\n"+
		"const label = './TagForm'\n"+
		"export { TagList } from './tag-list'\n", string(res.Content))

	require.Len(t, res.Edits, 2)
	assert.Equal(t, "plan", res.Edits[0].Source)
	assert.Equal(t, "./TagForm", res.Edits[0].Old)
}

func TestRewriteRules(t *testing.T) {
	f := newFixture(t, map[model.FilePath]string{
		"app/page.tsx":   "",
		"legacy/Old.tsx": "",
	})

	tests := []struct {
		name      string
		rules     []Rule
		owner     model.FilePath
		spec      string
		want      string
		wantWarns []report.WarningKind
	}{
		{
			name:  "exact",
			rules: []Rule{{Match: "@/lib/api", Replacement: "@/services/api", Kind: RuleExact}},
			owner: "app/page.tsx", spec: "@/lib/api", want: "@/services/api",
		},
		{
			name:  "prefix",
			rules: []Rule{{Match: "@old/", Replacement: "@new/", Kind: RulePrefix}},
			owner: "app/page.tsx", spec: "@old/ui/Button", want: "@new/ui/Button",
		},
		{
			name:  "pattern",
			rules: []Rule{{Match: `lodash/(\w+)`, Replacement: "lodash-es/$1", Kind: RulePattern}},
			owner: "app/page.tsx", spec: "lodash/merge", want: "lodash-es/merge",
		},
		{
			name:  "pattern_is_anchored",
			rules: []Rule{{Match: `lodash/(\w+)`, Replacement: "lodash-es/$1", Kind: RulePattern}},
			owner: "app/page.tsx", spec: "my-lodash/merge", want: "my-lodash/merge",
		},
		{
			name:  "scope_excludes_owner",
			rules: []Rule{{Match: "@old/", Replacement: "@new/", Kind: RulePrefix, Scope: "legacy/**"}},
			owner: "app/page.tsx", spec: "@old/x", want: "@old/x",
		},
		{
			name:  "scope_includes_owner",
			rules: []Rule{{Match: "@old/", Replacement: "@new/", Kind: RulePrefix, Scope: "legacy/**"}},
			owner: "legacy/Old.tsx", spec: "@old/x", want: "@new/x",
		},
		{
			name: "first_match_wins",
			rules: []Rule{
				{Match: "@old/", Replacement: "@first/", Kind: RulePrefix},
				{Match: "@old/x", Replacement: "@second/x", Kind: RuleExact},
			},
			owner: "app/page.tsx", spec: "@old/x", want: "@first/x",
			wantWarns: []report.WarningKind{report.WarnAmbiguous},
		},
		{
			name:  "unstable_rule_skipped",
			rules: []Rule{{Match: "a", Replacement: "aa", Kind: RulePrefix}},
			owner: "app/page.tsx", spec: "a/b", want: "a/b",
			wantWarns: []report.WarningKind{report.WarnUnstable},
		},
		{
			name:  "rule_fixes_unresolved",
			rules: []Rule{{Match: "./Gone", Replacement: "./page", Kind: RuleExact}},
			owner: "app/page.tsx", spec: "./Gone", want: "./page",
		},
		{
			name:  "output_follows_plan",
			rules: []Rule{{Match: "legacy-old", Replacement: "@/legacy/Old", Kind: RuleExact}},
			owner: "app/page.tsx", spec: "legacy-old", want: "@/legacy/old",
		},
		{
			name:  "output_follows_plan_with_extension",
			rules: []Rule{{Match: "legacy-old", Replacement: "../legacy/Old.tsx", Kind: RuleExact}},
			owner: "app/page.tsx", spec: "legacy-old", want: "../legacy/old.tsx",
		},
		{
			name:  "unresolved_without_rule",
			owner: "app/page.tsx", spec: "./Gone", want: "./Gone",
			wantWarns: []report.WarningKind{report.WarnUnresolved},
		},
		{
			name:  "replacement_with_quote",
			rules: []Rule{{Match: "x", Replacement: "it's", Kind: RuleExact}},
			owner: "app/page.tsx", spec: "x", want: "x",
			wantWarns: []report.WarningKind{report.WarnUnstable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := Compile(tt.rules)
			require.NoError(t, err)

			res := f.rewrite(t, rules, tt.owner, "import x from '"+tt.spec+"'")
			assert.Equal(t, "import x from '"+tt.want+"'", string(res.Content))

			var kinds []report.WarningKind
			for _, w := range res.Warnings {
				kinds = append(kinds, w.Kind)
				assert.Equal(t, tt.owner, w.File)
				assert.Equal(t, tt.spec, w.Specifier)
			}
			assert.Equal(t, tt.wantWarns, kinds)
		})
	}
}

func TestRulesNeverTouchPlannedReferences(t *testing.T) {
	f := newFixture(t, map[model.FilePath]string{"a/TagList.tsx": "", "a/b.ts": ""})
	rules, err := Compile([]Rule{{Match: `\./.*`, Replacement: "./other", Kind: RulePattern}})
	require.NoError(t, err)

	res := f.rewrite(t, rules, "a/b.ts", "import a from './TagList'\nimport b from './b'\n")
	assert.Equal(t, "import a from './tag-list'\nimport b from './b'\n", string(res.Content))
}

func TestRewriteDynamic(t *testing.T) {
	f := newFixture(t, map[model.FilePath]string{"pages/Home.tsx": ""})
	rules, err := Compile([]Rule{{Match: `.*`, Replacement: "./x", Kind: RulePattern}})
	require.NoError(t, err)

	content := "const p = import(`./${name}`)"
	res := f.rewrite(t, rules, "pages/Home.tsx", content)
	assert.False(t, res.Changed)
	assert.Equal(t, content, string(res.Content))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, report.WarnDynamic, res.Warnings[0].Kind)
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		rules  []Rule
		errStr string
	}{
		{name: "empty_match", rules: []Rule{{Match: "a", Replacement: "b"}, {Replacement: "x"}}, errStr: "rule 1: match is empty"},
		{name: "bad_pattern", rules: []Rule{{Match: "(", Kind: RulePattern}}, errStr: "rule 0: invalid pattern"},
		{name: "bad_kind", rules: []Rule{{Match: "a", Kind: "glob"}}, errStr: "rule 0: unknown kind"},
		{name: "bad_scope", rules: []Rule{{Match: "a", Scope: "[a-"}}, errStr: "rule 0: invalid scope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.rules)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errStr)
		})
	}

	rs, err := Compile([]Rule{{Match: "a", Replacement: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, RuleExact, rs.rules[0].Kind, "kind defaults to exact")
}

func TestApply(t *testing.T) {
	content := []byte("0123456789")
	edits := []Edit{
		{Span: model.Span{Start: 6, End: 8}, New: "xyz"},
		{Span: model.Span{Start: 1, End: 3}, New: ""},
	}
	out, changed := Apply(content, edits)
	assert.True(t, changed)
	assert.Equal(t, "0345xyz89", string(out))
	assert.Equal(t, "0123456789", string(content))
	assert.Equal(t, 6, edits[0].Span.Start, "input order untouched")

	out, changed = Apply(content, nil)
	assert.False(t, changed)
	assert.Equal(t, content, out)
}

// After moving every file and rewriting every reference, each reference must
// resolve to the destination of what it resolved to before, and a second
// rewrite must find nothing to do.
func TestRoundTrip(t *testing.T) {
	files := map[model.FilePath]string{
		"components/TagList.tsx":   "import { TagForm } from './TagForm'\n",
		"components/TagForm.tsx":   "import { TagList } from './TagList'\nimport dm from '@/utils/dataManager'\n",
		"utils/dataManager.ts":     "export default {}\n",
		"features/Panel.tsx":       "import dm from '../utils/dataManager'\nimport { TagList } from '../components/TagList.tsx'\n",
		"features/board/Board.tsx": "import dm from '../../utils/dataManager'\nimport P from '../Panel'\n",
	}
	before := newFixture(t, files)

	moved := map[model.FilePath]string{}
	wantTargets := map[model.FilePath][]model.FilePath{}
	for owner, content := range files {
		refs := before.indexer.Index(owner, []byte(content))
		res := (&Rewriter{Mapping: before.mapping}).Rewrite(owner, []byte(content), refs)
		dst, ok := before.mapping.Lookup(owner)
		require.True(t, ok)
		moved[dst] = string(res.Content)
		for _, ref := range refs {
			require.Equal(t, model.KindInPlan, ref.Kind, "%s in %s", ref.Raw, owner)
			target, _ := before.mapping.Lookup(ref.Target)
			wantTargets[dst] = append(wantTargets[dst], target)
		}
	}

	after := newFixture(t, moved)
	assert.True(t, after.mapping.IsIdentity(), "the moved tree is canonical")

	owners := make([]model.FilePath, 0, len(moved))
	for owner := range moved {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })

	for _, owner := range owners {
		content := moved[owner]
		refs := after.indexer.Index(owner, []byte(content))
		var got []model.FilePath
		for _, ref := range refs {
			require.Equal(t, model.KindInPlan, ref.Kind, "%s in %s", ref.Raw, owner)
			got = append(got, ref.Target)
		}
		assert.Equal(t, wantTargets[owner], got, "targets of %s", owner)

		res := (&Rewriter{Mapping: after.mapping}).Rewrite(owner, []byte(content), refs)
		assert.False(t, res.Changed, "second rewrite of %s", owner)
	}
}

func TestDiff(t *testing.T) {
	before := []byte("import a from './TagList'\nconst x = 1\n")
	after := []byte("import a from './tag-list'\nconst x = 1\n")

	d := Diff("components/TagForm.tsx", "components/tag-form.tsx", before, after)
	assert.Equal(t, "--- components/TagForm.tsx\n"+
		"+++ components/tag-form.tsx\n"+
		"-import a from './TagList'\n"+
		"+import a from './tag-list'\n", d)

	assert.Empty(t, Diff("a.ts", "a.ts", before, before))
	assert.Equal(t, "--- A.ts\n+++ a.ts\n", Diff("A.ts", "a.ts", before, before))
}
