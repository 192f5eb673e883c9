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
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/casemod/cmd/casemod/opts"
	"github.com/walteh/casemod/pkg/engine"
	"github.com/walteh/casemod/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewPlanCmd creates the plan command
func NewPlanCmd(o *opts.RootOpts) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the renames a run would make",
		Long: `Plan walks the tree and prints every planned rename without changing any file.
With --out the plan is also saved, so a later "run --plan" can use it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "plan").Logger().WithContext(cmd.Context())

			runOpts, err := o.Config.EngineOptions()
			if err != nil {
				return errors.Errorf("building options: %w", err)
			}
			if out != "" {
				runOpts.PlanOut = out
			}

			mapping, rep, err := engine.Plan(ctx, runOpts)
			if err != nil {
				if rep != nil && rep.Collision != nil {
					o.UserLogger.LogCollision(*rep.Collision)
				}
				return errors.Errorf("planning: %w", err)
			}

			for _, w := range rep.Warnings {
				o.UserLogger.LogWarning(w)
			}

			renames := mapping.Renames()
			for _, e := range renames {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", e.From, e.To)
			}
			logger := log.FromContext(ctx)
			if len(renames) == 0 {
				logger.Success("already canonical, nothing to rename")
			} else {
				logger.Infof("%d of %d files would be renamed", len(renames), mapping.Len())
			}
			if runOpts.PlanOut != "" {
				logger.Successf("plan saved to %s", runOpts.PlanOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "save the plan to this file")

	return cmd
}
