package toctree

import (
	"context"
	"fmt"
	"sync"

	"github.com/opendocs/toctree/diag"
	"github.com/opendocs/toctree/moniker"
)

// fakeParser stands in for the out-of-scope file-format parser (§1, §6):
// tests register an already-built input tree per FilePath and get a
// shallow clone back each time Parse is invoked for it.
type fakeParser struct {
	mu    sync.Mutex
	trees map[string]*TocNode
}

func newFakeParser() *fakeParser {
	return &fakeParser{trees: make(map[string]*TocNode)}
}

func (p *fakeParser) add(file FilePath, root *TocNode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trees[file.Key()] = root
}

func (p *fakeParser) Parse(ctx context.Context, file FilePath, sink *diag.Sink) (*TocNode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	root, ok := p.trees[file.Key()]
	if !ok {
		return nil, fmt.Errorf("fakeParser: no tree registered for %s", file.Key())
	}
	return root.Clone(), nil
}

type fakeHit struct {
	doc *Document
	err error
}

// fakeLinkResolver is a hand-fed stand-in for LinkResolver (§6): tests
// register the document (or error) a given href string should resolve
// to, separately for ResolveLink's and ResolveContent's href spaces
// (they are keyed the same way here for test convenience, but nothing
// requires a production implementation to treat them identically).
type fakeLinkResolver struct {
	mu      sync.Mutex
	links   map[string]fakeHit
	content map[string]fakeHit
}

func newFakeLinkResolver() *fakeLinkResolver {
	return &fakeLinkResolver{links: map[string]fakeHit{}, content: map[string]fakeHit{}}
}

func (f *fakeLinkResolver) setLink(href string, doc *Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[href] = fakeHit{doc: doc}
}

func (f *fakeLinkResolver) setLinkErr(href string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[href] = fakeHit{err: err}
}

func (f *fakeLinkResolver) setContent(href string, doc *Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[href] = fakeHit{doc: doc}
}

func (f *fakeLinkResolver) ResolveLink(ctx context.Context, href string, currentFile, rootFile FilePath) (string, *Document, error) {
	f.mu.Lock()
	hit, ok := f.links[href]
	f.mu.Unlock()
	if !ok {
		return href, nil, nil
	}
	if hit.err != nil {
		return "", nil, hit.err
	}
	return href, hit.doc, nil
}

func (f *fakeLinkResolver) ResolveContent(ctx context.Context, href string, currentFile FilePath) (*Document, error) {
	f.mu.Lock()
	hit, ok := f.content[href]
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return hit.doc, hit.err
}

// fakeXrefResolver is a minimal stand-in for XrefResolver (§6).
type fakeXrefResolver struct {
	mu    sync.Mutex
	byUID map[string]struct {
		link, name string
		declaring  *Document
	}
}

func newFakeXrefResolver() *fakeXrefResolver {
	return &fakeXrefResolver{byUID: map[string]struct {
		link, name string
		declaring  *Document
	}{}}
}

func (f *fakeXrefResolver) set(uid, link, name string, declaring *Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUID[uid] = struct {
		link, name string
		declaring  *Document
	}{link, name, declaring}
}

func (f *fakeXrefResolver) ResolveXrefByUid(ctx context.Context, uid string, currentFile, rootFile FilePath, monikers moniker.List) (string, string, *Document, error) {
	f.mu.Lock()
	hit, ok := f.byUID[uid]
	f.mu.Unlock()
	if !ok {
		return "", "", nil, nil
	}
	return hit.link, hit.name, hit.declaring, nil
}

// fakeMonikerProvider hands back file-level monikers built against a
// single shared Interner so Union/Equal behave meaningfully across the
// whole test (see TocLoader.Interner).
type fakeMonikerProvider struct {
	mu  sync.Mutex
	in  *moniker.Interner
	set map[string][]string
}

func newFakeMonikerProvider(in *moniker.Interner) *fakeMonikerProvider {
	return &fakeMonikerProvider{in: in, set: map[string][]string{}}
}

func (f *fakeMonikerProvider) set_(file FilePath, names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set[file.Key()] = names
}

func (f *fakeMonikerProvider) GetFileLevelMonikers(ctx context.Context, sink *diag.Sink, file FilePath) moniker.List {
	f.mu.Lock()
	names := f.set[file.Key()]
	f.mu.Unlock()
	return moniker.New(f.in, names...)
}

// fakeValidator records every call it receives without rejecting anything.
type fakeValidator struct {
	mu          sync.Mutex
	breadcrumbs int
	duplicates  [][]*Document
}

func (v *fakeValidator) ValidateTocBreadcrumbLinkExternal(file FilePath, node *TocNode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.breadcrumbs++
}

func (v *fakeValidator) ValidateTocEntryDuplicated(file FilePath, referencedFiles []*Document) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.duplicates = append(v.duplicates, referencedFiles)
}

// fakeDeps records dependency edges added via AddDependencyItem.
type fakeDeps struct {
	mu    sync.Mutex
	edges []depEdge
}

type depEdge struct {
	from, to        FilePath
	kind            string
	fromContentType string
}

func (d *fakeDeps) AddDependencyItem(from, to FilePath, kind, fromContentType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.edges = append(d.edges, depEdge{from, to, kind, fromContentType})
}

func docNames(docs []*Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		out = append(out, d.FilePath.Key())
	}
	return out
}
