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

package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/casemod/pkg/workspace"
	"gitlab.com/tozd/go/errors"
)

const snapshotVersion = 1

// 📸 Snapshot is the on-disk form of a Mapping. It is written for inspection
// and only read back when a run is handed the file explicitly.
type Snapshot struct {
	Version int     `json:"version"`
	Policy  string  `json:"policy"`
	Entries []Entry `json:"entries"`
}

// Snapshot captures m.
func (m *Mapping) Snapshot() Snapshot {
	return Snapshot{
		Version: snapshotVersion,
		Policy:  m.policy,
		Entries: m.Entries(),
	}
}

// Save writes the snapshot of m to path atomically.
func Save(ctx context.Context, m *Mapping, path string) error {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return errors.Errorf("marshaling plan: %w", err)
	}
	data = append(data, '\n')

	if err := workspace.WriteFileAtomic(path, data); err != nil {
		return errors.Errorf("writing plan %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("entries", m.Len()).Msg("saved plan snapshot")
	return nil
}

// Load reads a snapshot written by Save and re-verifies it.
func Load(ctx context.Context, path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading plan %s: %w", path, err)
	}

	var snap Snapshot
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&snap); err != nil {
		return nil, errors.Errorf("parsing plan %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, errors.Errorf("plan %s has unsupported version %d", path, snap.Version)
	}

	m, err := FromEntries(snap.Policy, snap.Entries)
	if err != nil {
		return nil, errors.Errorf("verifying plan %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("entries", m.Len()).Msg("loaded plan snapshot")
	return m, nil
}
