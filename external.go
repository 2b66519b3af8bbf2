package toctree

import (
	"context"

	"github.com/opendocs/toctree/diag"
	"github.com/opendocs/toctree/moniker"
)

// UrlKind is the external URL utility's own classification of a raw
// string, consumed by HrefClassifier step 2 (§4.1).
type UrlKind int

const (
	UrlKindRelative UrlKind = iota
	UrlKindAbsolutePath
	UrlKindExternal
)

// UrlClassifier is the external URL utility HrefClassifier defers to
// before applying its own folder/file/TOC rules (§4.1 step 2).
type UrlClassifier interface {
	Classify(href string) UrlKind
}

// Parser turns a TOC file's bytes into an in-memory tree of input-level
// (pre-resolution) nodes. Out of scope for this module (§1 non-goals);
// the loader only depends on this interface.
type Parser interface {
	Parse(ctx context.Context, file FilePath, sink *diag.Sink) (*TocNode, error)
}

// LinkResolver resolves hrefs to their final form and probes for content
// at a given path, per §6.
type LinkResolver interface {
	// ResolveLink resolves href as it appears in currentFile (part of the
	// load chain rooted at rootFile) to its final href and backing
	// Document, if any.
	ResolveLink(ctx context.Context, href string, currentFile, rootFile FilePath) (resolvedHref string, doc *Document, err error)
	// ResolveContent returns the document (TOC or otherwise) that href
	// points at, relative to currentFile. Used for the folder-probing
	// sequence in TocHrefResolver.
	ResolveContent(ctx context.Context, href string, currentFile FilePath) (doc *Document, err error)
}

// XrefResolver resolves UID cross-references, using the current file's
// monikers as disambiguation context (§6).
type XrefResolver interface {
	ResolveXrefByUid(ctx context.Context, uid string, currentFile, rootFile FilePath, monikers moniker.List) (link, displayName string, declaringFile *Document, err error)
}

// MonikerProvider supplies the file-level monikers for a given path (§6),
// the leaf input to MonikerAggregator.
type MonikerProvider interface {
	GetFileLevelMonikers(ctx context.Context, sink *diag.Sink, file FilePath) moniker.List
}

// ContentValidator runs the two out-of-band validations the loader
// triggers: breadcrumb external-link checks per node, and duplicate-entry
// checks over one file's accumulated referenced files (§6).
type ContentValidator interface {
	ValidateTocBreadcrumbLinkExternal(file FilePath, node *TocNode)
	ValidateTocEntryDuplicated(file FilePath, referencedFiles []*Document)
}

// DependencyMapBuilder records a dependency edge discovered while loading,
// e.g. the folder-landing-page edge recorded by RelativeFolder resolution
// (§4.3 step 4).
type DependencyMapBuilder interface {
	AddDependencyItem(from, to FilePath, kind string, fromContentType string)
}

// DocumentProvider looks up a previously-registered Document by FilePath.
// It is the registry Document handles ultimately come from (§3). TocLoader
// carries one in its Documents field but never calls it: every Document
// the loader records comes from the LinkResolver or XrefResolver.
type DocumentProvider interface {
	GetDocument(file FilePath) (*Document, bool)
}

const (
	// DependencyKindTocFolderLanding is the edge kind recorded when a
	// RelativeFolder include's effective landing href is taken from its
	// first resolvable item (§4.3 step 4).
	DependencyKindTocFolderLanding = "toc-folder-landing"
	// DocumentContentTypeToc is the ContentType used for TOC documents
	// themselves, as opposed to the content they reference.
	DocumentContentTypeToc = "toc"
)
