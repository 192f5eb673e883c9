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
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gitlab.com/tozd/go/errors"
)

// RenderTable writes the changed and failed records as a table, followed by
// the summary counts. Unchanged files are only counted.
func (r *Report) RenderTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Outcome", "New Path", "Rewrites"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, rec := range r.Records {
		if rec.Kind == Unchanged {
			continue
		}
		newPath := ""
		if rec.NewFile != "" && rec.NewFile != rec.File {
			newPath = string(rec.NewFile)
		}
		outcome := string(rec.Kind)
		if rec.Kind == Failed && rec.Reason != "" {
			outcome = fmt.Sprintf("%s: %s", rec.Kind, rec.Reason)
		}
		table.Append([]string{string(rec.File), outcome, newPath, fmt.Sprintf("%d", rec.Rewrites)})
	}

	s := r.Summary()
	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", s.Files),
		fmt.Sprintf("%d renamed / %d rewritten", s.Renamed, s.Rewritten),
		fmt.Sprintf("%d unchanged / %d failed", s.Unchanged, s.Failed),
		fmt.Sprintf("%d warnings", s.Warnings),
	})

	table.Render()
	return nil
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Errorf("encoding report: %w", err)
	}
	return nil
}
