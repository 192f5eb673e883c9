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

// Package workspace is the only place a migration touches the file system.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/casemod/pkg/model"
	"gitlab.com/tozd/go/errors"
)

// 🚫 AccessError reports a file that could not be read, stat'ed or renamed.
type AccessError struct {
	Path model.FilePath
	Op   string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// 💥 PartialWriteError reports a failed temp-then-replace write. The original
// file is left as it was.
type PartialWriteError struct {
	Path  string
	Stage string
	Err   error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("atomic write of %s failed at %s: %v", e.Path, e.Stage, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// 🔧 Manager confines reads, writes and renames to one root directory.
type Manager struct {
	root string
}

// 🏭 New creates a manager rooted at root.
func New(root string) *Manager {
	return &Manager{root: filepath.Clean(root)}
}

// Root returns the OS path of the root directory.
func (m *Manager) Root() string {
	return m.root
}

// Abs returns the OS path of fp.
func (m *Manager) Abs(fp model.FilePath) string {
	return fp.OS(m.root)
}

// ReadFile reads fp.
func (m *Manager) ReadFile(ctx context.Context, fp model.FilePath) ([]byte, error) {
	content, err := os.ReadFile(m.Abs(fp))
	if err != nil {
		return nil, &AccessError{Path: fp, Op: "read", Err: err}
	}
	return content, nil
}

// Exists reports whether fp names an existing file or directory.
func (m *Manager) Exists(fp model.FilePath) bool {
	_, err := os.Stat(m.Abs(fp))
	return err == nil
}

// Occupied reports whether to names an existing file that is not from. On a
// case-insensitive file system a case-only rename finds from itself at to.
func (m *Manager) Occupied(from, to model.FilePath) bool {
	dstInfo, err := os.Lstat(m.Abs(to))
	if err != nil {
		return false
	}
	srcInfo, err := os.Lstat(m.Abs(from))
	return err != nil || !os.SameFile(srcInfo, dstInfo)
}

// WriteFileAtomic replaces fp's content through a temp file in the same directory.
func (m *Manager) WriteFileAtomic(ctx context.Context, fp model.FilePath, content []byte) error {
	zerolog.Ctx(ctx).Debug().Str("path", string(fp)).Int("bytes", len(content)).Msg("writing file")
	return WriteFileAtomic(m.Abs(fp), content)
}

// Rename moves from to to. The destination must not exist unless it is the
// same file under a different letter case.
func (m *Manager) Rename(ctx context.Context, from, to model.FilePath) error {
	if from == to {
		return nil
	}
	src, dst := m.Abs(from), m.Abs(to)

	srcInfo, err := os.Lstat(src)
	if err != nil {
		return &AccessError{Path: from, Op: "rename", Err: err}
	}
	if dstInfo, err := os.Lstat(dst); err == nil && !os.SameFile(srcInfo, dstInfo) {
		return &AccessError{Path: from, Op: "rename", Err: errors.Errorf("destination %s already exists", to)}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &AccessError{Path: to, Op: "mkdir", Err: err}
	}

	zerolog.Ctx(ctx).Debug().Str("from", string(from)).Str("to", string(to)).Msg("renaming file")

	// case-insensitive file systems treat a case-only rename as a no-op, so
	// hop through an intermediate name
	if strings.EqualFold(string(from), string(to)) {
		tmp := dst + ".casemod-rename"
		if err := os.Rename(src, tmp); err != nil {
			return &AccessError{Path: from, Op: "rename", Err: err}
		}
		if err := os.Rename(tmp, dst); err != nil {
			_ = os.Rename(tmp, src)
			return &AccessError{Path: from, Op: "rename", Err: err}
		}
		return nil
	}

	if err := os.Rename(src, dst); err != nil {
		return &AccessError{Path: from, Op: "rename", Err: err}
	}
	return nil
}

// WriteFileAtomic writes content to path through a temp file in the same
// directory and renames it over path. The existing mode is kept.
func WriteFileAtomic(path string, content []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".casemod-*")
	if err != nil {
		return &PartialWriteError{Path: path, Stage: "create", Err: err}
	}
	tmpName := tmp.Name()

	fail := func(stage string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PartialWriteError{Path: path, Stage: stage, Err: err}
	}

	if _, err := tmp.Write(content); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fail("chmod", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fail("replace", err)
	}
	return nil
}
