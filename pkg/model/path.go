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

// Package model holds the value types shared by every stage of a migration run.
package model

import (
	"path"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📄 FilePath is a root-relative, slash-separated, cleaned path.
// It never starts with "/" and never escapes the root with "..".
type FilePath string

// ParseFilePath validates and cleans a slash separated root-relative path.
func ParseFilePath(s string) (FilePath, error) {
	if s == "" {
		return "", errors.Errorf("empty path")
	}
	if strings.HasPrefix(s, "/") {
		return "", errors.Errorf("path %q is absolute", s)
	}
	c := path.Clean(s)
	if c == "." {
		return "", errors.Errorf("path %q names the root", s)
	}
	if c == ".." || strings.HasPrefix(c, "../") {
		return "", errors.Errorf("path %q escapes the root", s)
	}
	return FilePath(c), nil
}

// NewFilePath converts an OS path below root into a FilePath.
func NewFilePath(root, osPath string) (FilePath, error) {
	rel, err := filepath.Rel(root, osPath)
	if err != nil {
		return "", errors.Errorf("relativizing %s: %w", osPath, err)
	}
	return ParseFilePath(filepath.ToSlash(rel))
}

// Join resolves a relative slash path against dir (a directory inside the root,
// "." for the root itself). ok is false when the result would escape the root.
func Join(dir, rel string) (FilePath, bool) {
	p, err := ParseFilePath(path.Join(dir, rel))
	if err != nil {
		return "", false
	}
	return p, true
}

func (p FilePath) String() string {
	return string(p)
}

// Dir returns the parent directory, "." for files at the root.
func (p FilePath) Dir() string {
	return path.Dir(string(p))
}

// Base returns the last element.
func (p FilePath) Base() string {
	return path.Base(string(p))
}

// Ext returns the final extension including the dot.
func (p FilePath) Ext() string {
	return path.Ext(string(p))
}

// WithBase swaps the last element for base, keeping the directory.
func (p FilePath) WithBase(base string) FilePath {
	dir := p.Dir()
	if dir == "." {
		return FilePath(base)
	}
	return FilePath(dir + "/" + base)
}

// OS returns the OS path of p under root.
func (p FilePath) OS(root string) string {
	return filepath.Join(root, filepath.FromSlash(string(p)))
}
