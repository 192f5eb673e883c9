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
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// FileNames are the config files Discover looks for, in order.
var FileNames = []string{".casemod.yaml", ".casemod.yml", ".casemod.json", ".casemod.hcl"}

// 🎯 Load reads, parses, defaults and validates a config file. The format
// is chosen by extension. A relative root is taken relative to the file.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	dir := filepath.Dir(path)
	if cfg.Root == "" {
		cfg.Root = dir
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(dir, cfg.Root)
	}
	if cfg.PlanOut != "" && !filepath.IsAbs(cfg.PlanOut) {
		cfg.PlanOut = filepath.Join(dir, cfg.PlanOut)
	}

	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config %s: %w", path, err)
	}

	logger.Debug().Str("root", cfg.Root).Str("policy", cfg.Policy).Int("rules", len(cfg.Rules)).Msg("loaded configuration")
	return cfg, nil
}

// Discover returns the first of FileNames present in dir.
func Discover(dir string) (string, bool) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
