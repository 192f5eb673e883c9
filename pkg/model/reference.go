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

package model

// Span is a half-open byte range [Start, End) in a file's content.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// 🏷️ ReferenceKind classifies a module reference after resolution.
type ReferenceKind int

const (
	KindUnknown    ReferenceKind = iota
	KindInPlan                   // resolved target is a source in the rename mapping
	KindUnmanaged                // resolved to a file that exists but is outside the plan
	KindExternal                 // bare package specifier, never resolved against the tree
	KindUnresolved               // relative or root-relative but nothing exists there
	KindDynamic                  // interpolated literal, value unknown at rewrite time
)

func (k ReferenceKind) String() string {
	switch k {
	case KindInPlan:
		return "in-plan"
	case KindUnmanaged:
		return "unmanaged"
	case KindExternal:
		return "external"
	case KindUnresolved:
		return "unresolved"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Resolution records how a specifier reached its target.
type Resolution int

const (
	ResolvedNone      Resolution = iota
	ResolvedExact                // specifier names the file including its extension
	ResolvedExtension            // an allowlisted extension was appended
	ResolvedIndex                // specifier names a directory holding an index file
)

func (r Resolution) String() string {
	switch r {
	case ResolvedExact:
		return "exact"
	case ResolvedExtension:
		return "extension"
	case ResolvedIndex:
		return "index"
	default:
		return "none"
	}
}

// 🔗 ImportReference is one module specifier found in a file.
type ImportReference struct {
	Owner      FilePath      // file containing the reference
	Raw        string        // specifier text between the quotes
	Span       Span          // byte span of Raw in the owner's content
	Quote      string        // delimiter surrounding Raw
	Kind       ReferenceKind // classification after resolution
	Target     FilePath      // resolved file, empty unless Kind is InPlan or Unmanaged
	Resolution Resolution    // how Target was found
}

// Resolved reports whether the reference was statically resolved to a file.
func (r ImportReference) Resolved() bool {
	return r.Target != ""
}
