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

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	r := New("/tmp/app", "kebab", false)
	r.Candidates = 4

	a := &Batch{}
	a.Add(Record{File: "components/TagList.tsx", NewFile: "components/tag-list.tsx", Kind: Both, Rewrites: 1})
	a.Warn(Warning{Kind: WarnUnresolved, File: "components/TagList.tsx", Specifier: "./Missing"})

	b := &Batch{}
	b.Add(Record{File: "utils/dataManager.ts", NewFile: "utils/data-manager.ts", Kind: Renamed})
	b.Add(Record{File: "app/page.tsx", Kind: ContentRewritten, Rewrites: 2})
	b.Add(Record{File: "app/layout.tsx", Kind: Unchanged})
	b.Add(Record{File: "app/Broken.tsx", Kind: Failed, Reason: "permission denied"})
	b.Warn(Warning{Kind: WarnDynamic, File: "app/page.tsx", Specifier: "./${x}"})

	r.Merge(b, nil, a)
	r.Finalize()
	return r
}

func TestMergeAndFinalize(t *testing.T) {
	r := sampleReport()

	var files []string
	for _, rec := range r.Records {
		files = append(files, string(rec.File))
	}
	assert.Equal(t, []string{
		"app/Broken.tsx",
		"app/layout.tsx",
		"app/page.tsx",
		"components/TagList.tsx",
		"utils/dataManager.ts",
	}, files)

	require.Len(t, r.Warnings, 2)
	assert.Equal(t, WarnDynamic, r.Warnings[0].Kind)
	assert.Equal(t, WarnUnresolved, r.Warnings[1].Kind)
}

func TestSummary(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, Summary{
		Files:     5,
		Renamed:   2,
		Rewritten: 2,
		Unchanged: 1,
		Failed:    1,
		Warnings:  2,
	}, r.Summary())

	failures := r.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "permission denied", failures[0].Reason)
	assert.True(t, r.Changed())
}

func TestChanged(t *testing.T) {
	r := New("/tmp/app", "kebab", true)
	assert.False(t, r.Changed())

	r.Merge(&Batch{Records: []Record{{File: "a.ts", Kind: Unchanged}, {File: "b.ts", Kind: Failed}}})
	assert.False(t, r.Changed(), "failures are not pending changes")

	r.Merge(&Batch{Records: []Record{{File: "C.ts", NewFile: "c.ts", Kind: Renamed}}})
	assert.True(t, r.Changed())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().RenderTable(&buf))
	out := buf.String()

	assert.Contains(t, out, "components/TagList.tsx")
	assert.Contains(t, out, "components/tag-list.tsx")
	assert.Contains(t, out, "permission denied")
	assert.NotContains(t, out, "app/layout.tsx", "unchanged files are only counted")
	assert.Contains(t, strings.ToUpper(out), "TOTAL FILES 5")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.Collision = &Collision{Destination: "ai.tsx", First: "AI.tsx", Second: "Ai.tsx"}
	require.NoError(t, r.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "kebab", decoded["policy"])
	assert.Equal(t, "ai.tsx", decoded["collision"].(map[string]any)["destination"])
	assert.Len(t, decoded["records"], 5)
}
