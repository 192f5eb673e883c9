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

package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/casemod/cmd/casemod/opts"
	"github.com/walteh/casemod/pkg/config"
	"github.com/walteh/casemod/pkg/log"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	rootDir    string
	debug      bool
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: discovered in the root)")
	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "tree to migrate (overrides the config)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Level {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return level
}

// loadConfig finds and loads the config, falling back to defaults when the
// tree has none.
func loadConfig(ctx context.Context) (*config.Config, error) {
	dir := rootDir
	if dir == "" {
		dir = "."
	}

	path := configFile
	if path == "" {
		if found, ok := config.Discover(dir); ok {
			path = found
		}
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{Root: dir}
		cfg.Defaults()
	}

	if rootDir != "" {
		abs, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, errors.Errorf("resolving root: %w", err)
		}
		cfg.Root = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid config: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.Location()).Str("summary", cfg.String()).Msg("loaded config")
	return cfg, nil
}

// newRootOpts fills o once flags are parsed
func newRootOpts(ctx context.Context, cmd *cobra.Command, o *opts.RootOpts) error {
	level := setupLogging()
	o.Logger = log.New(cmd.OutOrStdout(), level)
	ctx = zerolog.DefaultContextLogger.WithContext(ctx)
	ctx = log.NewContext(ctx, o.Logger)
	cmd.SetContext(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	o.Config = cfg
	o.UserLogger = log.NewUserLogger(ctx, cmd.OutOrStdout())
	return nil
}
