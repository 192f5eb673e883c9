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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/casemod/cmd/casemod/commands"
	"github.com/walteh/casemod/cmd/casemod/opts"
	"gitlab.com/tozd/go/errors"
)

func newRootCmd() (*cobra.Command, *opts.RootOpts) {
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "casemod",
		Short: "Rename source files to one naming convention and fix every import",
		Long: `casemod renames every source file in a tree to a single naming policy
(kebab-case by default) and rewrites the import specifiers that point at them,
so the tree still resolves after the move.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return newRootOpts(cmd.Context(), cmd, o)
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewPlanCmd(o),
		commands.NewCheckCmd(o),
		newVersionCmd(),
	)

	return rootCmd, o
}

func main() {
	rootCmd, o := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		switch {
		case errors.Is(err, commands.ErrChangesPending):
			// check already explained what is pending
		case o.Logger != nil:
			o.Logger.Error(err.Error())
		default:
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		}
		os.Exit(1)
	}
}
