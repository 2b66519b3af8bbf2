// Copyright 2020-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package toctree

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opendocs/toctree/moniker"
)

// FilePath is an opaque identifier for a TOC (or other content) file. Two
// FilePaths compare equal only when they refer to the same revision of the
// same working-tree location; a git-commit revision of a path is a distinct
// identity from its working-tree counterpart, so both can be cached and
// loaded independently.
type FilePath struct {
	// Path is the normalized, slash-separated location of the file.
	Path string
	// Commit is the git revision this path was resolved against, or empty
	// for the working tree.
	Commit string
}

// NewFilePath builds a working-tree FilePath, normalizing separators the
// way the rest of the loader expects (forward slashes, no "./" prefix).
func NewFilePath(path string) FilePath {
	return FilePath{Path: normalizePath(path)}
}

// NewGitCommitFilePath builds a FilePath scoped to a historical revision.
func NewGitCommitFilePath(path, commit string) FilePath {
	return FilePath{Path: normalizePath(path), Commit: commit}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// IsGitCommit reports whether this FilePath refers to a file as it existed
// in a historical git revision, as opposed to the current working tree.
func (f FilePath) IsGitCommit() bool {
	return f.Commit != ""
}

// String returns the normalized string form of the path. Two FilePaths with
// the same Path but different Commit have the same String() but are not
// cache-equivalent; use the FilePath value itself (or Key()) as a map key.
func (f FilePath) String() string {
	return f.Path
}

// Key returns a value suitable for use as a map key that fully captures
// FilePath's identity, including the commit discriminator.
func (f FilePath) Key() string {
	if f.Commit == "" {
		return f.Path
	}
	return f.Commit + "@" + f.Path
}

// Dir returns the FilePath of the containing directory, preserving the
// commit discriminator.
func (f FilePath) Dir() FilePath {
	return FilePath{Path: normalizePath(filepath.Dir(f.Path)), Commit: f.Commit}
}

// Join returns the FilePath formed by resolving rel against f's directory,
// preserving the commit discriminator.
func (f FilePath) Join(rel string) FilePath {
	if filepath.IsAbs(rel) {
		return FilePath{Path: normalizePath(rel), Commit: f.Commit}
	}
	return FilePath{Path: normalizePath(filepath.Join(filepath.Dir(f.Path), rel)), Commit: f.Commit}
}

// Document is the opaque handle the external document registry hands back
// for any resolved piece of content, TOC or otherwise.
type Document struct {
	// ContentType distinguishes, e.g., "markdown" from "toc" from "redirect".
	ContentType string
	FilePath    FilePath
}

// SourceLocation pinpoints a node's origin for diagnostics.
type SourceLocation struct {
	File   FilePath
	Line   int
	Column int
}

func (s SourceLocation) String() string {
	if s.Line == 0 {
		return s.File.String()
	}
	return fmt.Sprintf("%s:%d:%d", s.File.String(), s.Line, s.Column)
}

// TocHrefKind is the closed set of href classifications produced by
// HrefClassifier. It is a tagged variant, not a stringly-typed value;
// switches over it fall back to a default case for values outside the set.
type TocHrefKind int

const (
	// KindNone is returned for an empty or absent href.
	KindNone TocHrefKind = iota
	// KindAbsolutePath is an absolute path or an external URL.
	KindAbsolutePath
	// KindRelativeFile references a single non-TOC file relative to the
	// current document.
	KindRelativeFile
	// KindRelativeFolder references a directory to be probed for a TOC.
	KindRelativeFolder
	// KindTocFile explicitly names a reserved TOC file.
	KindTocFile
)

func (k TocHrefKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAbsolutePath:
		return "absolute"
	case KindRelativeFile:
		return "relative-file"
	case KindRelativeFolder:
		return "relative-folder"
	case KindTocFile:
		return "toc-file"
	default:
		return "unknown"
	}
}

// IsTocInclude reports whether a node bearing an href of this kind is an
// inclusion of another TOC (a folder to probe, or an explicit TOC file).
func (k TocHrefKind) IsTocInclude() bool {
	return k == KindTocFile || k == KindRelativeFolder
}

// TocNode is a single node of an in-memory, resolved (or pre-resolution
// input) TOC tree.
type TocNode struct {
	// Name is the display string. Non-empty on every fully resolved node;
	// MissingAttribute is reported when resolution would otherwise leave
	// it empty.
	Name string
	// Href is the final resolved URL or path. May be empty.
	Href string
	// TocHref and TopicHref are input-only: populated by the external
	// parser, consumed and cleared during resolution (§3 invariant 3).
	TocHref   string
	TopicHref string
	// UID, when non-empty, is resolved via the XrefResolver.
	UID string
	// Homepage is the resolved topic href when the author supplied
	// TopicHref but no Href.
	Homepage string
	// Document is the backing resolved document, if any.
	Document *Document
	// Monikers is this subtree's aggregated version filter set.
	Monikers moniker.List
	// Items are the ordered children.
	Items []*TocNode
	// Children holds glob patterns for a join-only node: it names the
	// slot a JoinTocMerger grafts matching reference-TOC items into.
	Children []string
	// Source locates this node's origin for diagnostics.
	Source SourceLocation
}

// Clone returns a shallow copy of the node with its own Items slice (but
// sharing *TocNode children and the *Document pointer, both of which are
// treated as immutable once published per §3 invariant 1).
func (n *TocNode) Clone() *TocNode {
	if n == nil {
		return nil
	}
	clone := *n
	if n.Items != nil {
		clone.Items = make([]*TocNode, len(n.Items))
		copy(clone.Items, n.Items)
	}
	if n.Children != nil {
		clone.Children = append([]string(nil), n.Children...)
	}
	return &clone
}

// JoinConfig maps a normalized reference-TOC path to the (optional)
// top-level TOC it should be grafted into.
type JoinConfig struct {
	entries map[string]string // referenceToc path -> topLevelToc path (possibly empty)
}

// JoinEntry is one row of join configuration as authored.
type JoinEntry struct {
	ReferenceToc string `yaml:"referenceToc"`
	TopLevelToc  string `yaml:"topLevelToc,omitempty"`
}

// NewJoinConfig indexes entries by their normalized referenceToc path.
// Entries with an empty ReferenceToc are ignored, matching §6.
func NewJoinConfig(entries []JoinEntry) JoinConfig {
	cfg := JoinConfig{entries: make(map[string]string, len(entries))}
	for _, e := range entries {
		if strings.TrimSpace(e.ReferenceToc) == "" {
			continue
		}
		cfg.entries[NewFilePath(e.ReferenceToc).Key()] = e.TopLevelToc
	}
	return cfg
}

// TopLevelFor returns the configured top-level TOC path for the given
// reference TOC path, and whether a join entry exists for it at all (an
// entry with an empty TopLevelToc still counts as configured, it simply
// has nothing to merge into).
func (c JoinConfig) TopLevelFor(referenceToc FilePath) (string, bool) {
	if c.entries == nil {
		return "", false
	}
	top, ok := c.entries[referenceToc.Key()]
	return top, ok
}

// IsEmpty reports whether no join entries were configured.
func (c JoinConfig) IsEmpty() bool {
	return len(c.entries) == 0
}

// ParseJoinConfig decodes a join configuration document (SPEC_FULL §10,
// "Configuration") of the form:
//
//	joins:
//	  - referenceToc: docs/reference/TOC.yml
//	    topLevelToc: docs/TOC.yml
//
// into a JoinConfig, the same way a caller would hand-build one with
// NewJoinConfig, but sourced from an on-disk config file rather than Go
// literals.
func ParseJoinConfig(data []byte) (JoinConfig, error) {
	var doc struct {
		Joins []JoinEntry `yaml:"joins"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return JoinConfig{}, fmt.Errorf("parsing join config: %w", err)
	}
	return NewJoinConfig(doc.Joins), nil
}
