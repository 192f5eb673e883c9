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

package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKebabConvert(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "AIConfigDialog", want: "ai-config-dialog"},
		{in: "TagList", want: "tag-list"},
		{in: "TagForm", want: "tag-form"},
		{in: "dataManager", want: "data-manager"},
		{in: "XMLHttpRequest", want: "xml-http-request"},
		{in: "parseHTML", want: "parse-html"},
		{in: "HTML5Parser", want: "html5-parser"},
		{in: "Page2Layout", want: "page2-layout"},
		{in: "AI", want: "ai"},
		{in: "Ai", want: "ai"},
		{in: "tag-list", want: "tag-list"},
		{in: "tag_list", want: "tag-list"},
		{in: "Tag__List", want: "tag-list"},
		{in: "_app", want: "_app"},
		{in: "__init__", want: "__init__"},
		{in: "___", want: "___"},
		{in: "", want: ""},
		{in: "[postId]", want: "[post-id]"},
		{in: "ÜberCool", want: "über-cool"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Kebab.Convert(tt.in))
		})
	}
}

func TestSnakeConvert(t *testing.T) {
	assert.Equal(t, "ai_config_dialog", Snake.Convert("AIConfigDialog"))
	assert.Equal(t, "tag_list", Snake.Convert("tag-list"))
}

func TestConvertIsIdempotent(t *testing.T) {
	inputs := []string{
		"AIConfigDialog", "TagList", "tag-list", "already-hyphenated-name",
		"AIThing", "ABTest", "a", "A", "x1Y2", "HTMLElement", "_app", "some_mixed-Name",
		"URLs", "iOSDevice", "MyAPIKey",
	}

	for _, p := range []Policy{Kebab, Snake, Identity} {
		for _, in := range inputs {
			once := p.Convert(in)
			assert.Equal(t, once, p.Convert(once), "%s: convert(convert(%q))", p.Name(), in)
		}
	}
}

func TestConvertBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "TagList.tsx", want: "tag-list.tsx"},
		{in: "TagList.test.tsx", want: "tag-list.test.tsx"},
		{in: "dataManager.d.ts", want: "data-manager.d.ts"},
		{in: "TagList.Stories.tsx", want: "tag-list.stories.tsx"},
		{in: "UserCard.SSR.test.tsx", want: "user-card.ssr.test.tsx"},
		{in: "Button.JSX", want: "button.JSX"},
		{in: "Makefile", want: "makefile"},
		{in: ".eslintrc.js", want: ".eslintrc.js"},
		{in: "index.ts", want: "index.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertBase(Kebab, tt.in))
		})
	}
}

func TestGet(t *testing.T) {
	p, err := Get("kebab")
	require.NoError(t, err)
	assert.Equal(t, "kebab", p.Name())

	_, err = Get("screaming")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity, kebab, snake")
}
