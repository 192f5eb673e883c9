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

package walk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/casemod/pkg/model"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("// "+f+"\n"), 0o644))
	}
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"components/TagList.tsx",
		"components/TagForm.tsx",
		"components/styles.css",
		"utils/dataManager.ts",
		"types/api.d.ts",
		"node_modules/react/index.js",
		"app/node_modules/left-pad/index.ts",
		"dist/bundle.js",
		"generated/Schema.ts",
		"README.md",
	)

	tests := []struct {
		name string
		opts Options
		want []model.FilePath
	}{
		{
			name: "extensions_and_exclusions",
			opts: Options{
				Exclude:    []string{"node_modules", "dist", "generated/**"},
				Extensions: []string{".ts", ".tsx"},
			},
			want: []model.FilePath{
				"components/TagForm.tsx",
				"components/TagList.tsx",
				"types/api.d.ts",
				"utils/dataManager.ts",
			},
		},
		{
			name: "no_allowlist",
			opts: Options{Exclude: []string{"node_modules", "dist", "generated"}},
			want: []model.FilePath{
				"README.md",
				"components/TagForm.tsx",
				"components/TagList.tsx",
				"components/styles.css",
				"types/api.d.ts",
				"utils/dataManager.ts",
			},
		},
		{
			name: "path_glob_exclusion",
			opts: Options{
				Exclude:    []string{"**/node_modules", "dist", "components/*.css"},
				Extensions: []string{".css", ".js"},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := Collect(Walk(testContext(t), root, tt.opts))
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalkIsRestartable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a/One.ts", "b/Two.ts")

	seq := Walk(testContext(t), root, Options{})
	first, _ := Collect(seq)
	second, _ := Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestWalkStopsEarly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.ts", "b.ts", "c.ts")

	var seen []model.FilePath
	for fp, err := range Walk(testContext(t), root, Options{}) {
		require.NoError(t, err)
		seen = append(seen, fp)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []model.FilePath{"a.ts", "b.ts"}, seen)
}

func TestWalkSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/Main.ts")
	if err := os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "src", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	t.Run("not_followed", func(t *testing.T) {
		got, errs := Collect(Walk(testContext(t), root, Options{}))
		assert.Empty(t, errs)
		assert.Equal(t, []model.FilePath{"src/Main.ts"}, got)
	})

	t.Run("followed", func(t *testing.T) {
		got, errs := Collect(Walk(testContext(t), root, Options{FollowSymlinks: true}))
		assert.Equal(t, []model.FilePath{"src/Main.ts"}, got)
		require.Len(t, errs, 1)

		var cycle *CycleError
		require.True(t, errors.As(errs[0], &cycle))
		assert.Equal(t, model.FilePath("src/loop"), cycle.Path)
	})
}

func TestWalkSkipsSymlinkedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Real.ts")
	if err := os.Symlink(filepath.Join(root, "Real.ts"), filepath.Join(root, "Alias.ts")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, errs := Collect(Walk(testContext(t), root, Options{FollowSymlinks: true}))
	assert.Empty(t, errs)
	assert.Equal(t, []model.FilePath{"Real.ts"}, got)
}

func TestWalkMissingRoot(t *testing.T) {
	_, errs := Collect(Walk(testContext(t), filepath.Join(t.TempDir(), "missing"), Options{}))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "resolving root")
}
