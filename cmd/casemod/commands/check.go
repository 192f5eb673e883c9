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
	"github.com/walteh/casemod/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates the check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Exit non-zero if a run would change anything",
		Long: `Check does a dry run and fails when any file would be renamed or rewritten.
Use it in CI to keep a migrated tree canonical.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())

			runOpts, err := o.Config.EngineOptions()
			if err != nil {
				return errors.Errorf("building options: %w", err)
			}

			pending, rep, err := engine.Check(ctx, runOpts)
			if rep != nil {
				if rerr := render(ctx, cmd.OutOrStdout(), o, rep, asJSON); rerr != nil {
					return rerr
				}
			}
			if err != nil {
				return errors.Errorf("checking: %w", err)
			}
			if pending {
				log.FromContext(ctx).Warning("tree is not canonical, run `casemod run` to fix it")
				return ErrChangesPending
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}
