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

package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/casemod/pkg/config"
)

func ExampleLoad() {
	ctx := context.Background()

	configYAML := `
policy: kebab
exclude: [node_modules, "**/__generated__/**"]
rules:
  - match: "@old/ui/"
    replacement: "@new/ui/"
    kind: prefix
`

	tmpDir, err := os.MkdirTemp("", "casemod-example")
	if err != nil {
		fmt.Printf("Error creating dir: %v\n", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, ".casemod.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	fmt.Printf("Policy: %s\n", cfg.Policy)
	fmt.Printf("Excluded: %v\n", cfg.Exclude)
	fmt.Printf("Extensions: %v\n", cfg.Extensions)
	fmt.Printf("First rule: %s -> %s (%s)\n", cfg.Rules[0].Match, cfg.Rules[0].Replacement, cfg.Rules[0].Kind)

	// Output:
	// Policy: kebab
	// Excluded: [node_modules **/__generated__/**]
	// Extensions: [.ts .tsx .js .jsx .mjs .cjs]
	// First rule: @old/ui/ -> @new/ui/ (prefix)
}
