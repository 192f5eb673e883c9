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

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/casemod/cmd/casemod/opts"
	"github.com/walteh/casemod/pkg/engine"
	"github.com/walteh/casemod/pkg/plan"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates the run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	var (
		dryRun   bool
		planFile string
		planOut  string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rename files to the naming policy and fix every reference",
		Long: `Run migrates the tree in one pass.
It will:
1. Walk the tree and plan every rename
2. Stop before touching anything if two files would collide
3. Rewrite references in every file
4. Rename files to their new names`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())

			runOpts, err := o.Config.EngineOptions()
			if err != nil {
				return errors.Errorf("building options: %w", err)
			}
			runOpts.DryRun = dryRun
			if planOut != "" {
				runOpts.PlanOut = planOut
			}
			if planFile != "" {
				m, err := plan.Load(ctx, planFile)
				if err != nil {
					return errors.Errorf("loading plan: %w", err)
				}
				runOpts.Plan = m
			}

			rep, runErr := engine.Run(ctx, runOpts)
			if rep != nil {
				if err := render(ctx, cmd.OutOrStdout(), o, rep, asJSON); err != nil {
					return err
				}
			}
			if runErr != nil {
				return errors.Errorf("running migration: %w", runErr)
			}
			return failures(ctx, rep)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute every change and print diffs without writing")
	cmd.Flags().StringVar(&planFile, "plan", "", "use a saved plan instead of planning again")
	cmd.Flags().StringVar(&planOut, "plan-out", "", "write the plan to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}
