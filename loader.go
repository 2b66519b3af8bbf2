package toctree

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/opendocs/toctree/diag"
	"github.com/opendocs/toctree/moniker"
)

// LoadOptions configures a single Load call. The zero value is usable:
// MaxParallelism falls back to runtime.GOMAXPROCS(0), mirroring the
// teacher's own Compiler.MaxParallelism default (compiler.go).
type LoadOptions struct {
	// MaxParallelism bounds concurrent sibling TOC file loads. Zero means
	// runtime.GOMAXPROCS(0).
	MaxParallelism int
}

// LoadStats reports what one Load call did, supplementing spec §8's
// correctness properties with the operational visibility a real build
// tool needs (SPEC_FULL §12.2).
type LoadStats struct {
	FilesLoaded int
	Warnings    int
	Errors      int
}

// LoadResult is the (node, referencedFiles, referencedTocs) triple §4.9
// and §3 invariant 5 describe: everything one Load call publishes for a
// file. ReferencedFiles and ReferencedTocs are frozen snapshots (§3
// "Lifecycle") taken once the load that produced them completes; callers
// must not mutate them.
type LoadResult struct {
	Node            *TocNode
	ReferencedFiles []*Document
	ReferencedTocs  []*Document
}

// TocLoader is the façade component of §2/§4.9: it wires the other eight
// components together behind a single Load entry point and owns the
// per-session state (moniker interner, memo cache) that is shared across
// every file touched by its loads. Each Load call gets its own diagnostic
// sink.
type TocLoader struct {
	Parser    Parser
	Links     LinkResolver
	Xrefs     XrefResolver
	Monikers  MonikerProvider
	Validator ContentValidator
	Deps      DependencyMapBuilder
	Documents DocumentProvider
	URLs      UrlClassifier

	// JoinConfig configures the automatic grafting §4.9 step 2 describes:
	// when Load(file) is called for a file whose normalized path is some
	// join entry's referenceToc, and that entry names a topLevelToc, the
	// returned node is topLevelToc's own tree with file's matching items
	// grafted in — not file's own tree. The zero value (no entries)
	// disables this entirely; every Load then simply returns the loaded
	// file's own tree, unmodified.
	JoinConfig JoinConfig

	initOnce   sync.Once
	classifier HrefClassifier
	hrefs      TocHrefResolver
	interner   *moniker.Interner
	cache      *MemoCache
}

// NewTocLoader builds a TocLoader from its external collaborators (§6).
// Only Parser and Links are required; the rest may be nil, in which case
// the corresponding step of NodeResolver is simply skipped.
func NewTocLoader(parser Parser, links LinkResolver) *TocLoader {
	l := &TocLoader{Parser: parser, Links: links}
	return l
}

// init lazily wires the loader's internal collaborators. It is idempotent
// and safe for concurrent callers (Interner and LoadWithStats can race on
// the first call from separate goroutines) because the one-time setup runs
// behind a sync.Once, the same pattern the teacher uses for its own
// lazily-computed, concurrently-accessed fields (compiler.go's
// descriptorProtoCheck).
func (l *TocLoader) init() {
	l.initOnce.Do(func() {
		l.classifier = HrefClassifier{URLs: l.URLs}
		l.hrefs = TocHrefResolver{Links: l.Links}
		l.interner = moniker.NewInterner()
		l.cache = NewMemoCache()
	})
}

// Interner returns the moniker.Interner this loader's MonikerAggregator
// uses to build and compare moniker sets (SPEC_FULL §12.4). A
// MonikerProvider implementation must build every List it returns against
// this same Interner — Union and Equal only produce meaningful results
// when every operand was interned by the same instance — so callers
// should wire their MonikerProvider to it before the first Load, e.g. by
// capturing loader.Interner() in a closure passed to NewTocLoader's
// caller. Safe to call before or after init(); it lazily allocates the
// Interner exactly once.
func (l *TocLoader) Interner() *moniker.Interner {
	l.init()
	return l.interner
}

// loader is the per-Load execution context: the TocLoader's collaborators
// (including its shared MemoCache, so §3 invariant 5 / §8 property 1 hold
// across repeated Load calls on the same TocLoader, not just within one)
// plus the state scoped to a single call (diagnostic sink, semaphore).
type loader struct {
	*TocLoader
	sink *diag.Sink
	sem  *semaphore.Weighted
}

// Load resolves file into a fully resolved TocNode tree plus its
// referencedFiles/referencedTocs side-tables, per §2's overall flow and
// §4.9's (node, referencedFiles, referencedTocs) triple. Diagnostics are
// available afterward via the returned Sink; Load itself only returns an
// error for conditions that abort the whole call (parse failure of any
// TOC file the load reaches, including a join's topLevelToc, a circular
// reference, context cancellation).
func (l *TocLoader) Load(ctx context.Context, file FilePath) (LoadResult, *diag.Sink, error) {
	result, _, sink, err := l.LoadWithStats(ctx, file, LoadOptions{})
	return result, sink, err
}

// LoadWithStats is Load plus LoadOptions and operational counters
// (SPEC_FULL §12.2).
func (l *TocLoader) LoadWithStats(ctx context.Context, file FilePath, opts LoadOptions) (LoadResult, LoadStats, *diag.Sink, error) {
	l.init()

	parallelism := opts.MaxParallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	ld := &loader{
		TocLoader: l,
		sink:      diag.NewSink(),
		sem:       semaphore.NewWeighted(int64(parallelism)),
	}

	refFiles := newDocList()
	refTocs := newDocList()
	node, err := ld.loadTocFile(ctx, nil, file, file, refFiles, refTocs)
	if err != nil {
		stats := LoadStats{}
		stats.Warnings, stats.Errors = ld.sink.CountBySeverity()
		return LoadResult{}, stats, ld.sink, err
	}

	result := LoadResult{
		Node:            node,
		ReferencedFiles: refFiles.Snapshot(),
		ReferencedTocs:  refTocs.Snapshot(),
	}

	// §4.9 step 2: if file is configured as a join entry's referenceToc
	// and that entry names a topLevelToc, the node this Load call hands
	// back is topLevelToc's own tree with file's matching items grafted
	// in, not file's own tree. ReferencedFiles/ReferencedTocs still
	// describe what loading file itself touched.
	//
	// The merged tree is itself published through the loader's MemoCache,
	// under a key distinct from file's own (a plain file.Key() is already
	// taken by file's un-merged node, cached by loadTocFile above), so
	// that repeated Load(file) calls return the same merged *TocNode
	// rather than a fresh graftJoinSlots clone every time (§3 invariant 5,
	// §8 property 1).
	if topPath, ok := l.JoinConfig.TopLevelFor(file); ok && strings.TrimSpace(topPath) != "" {
		joined, joinErr := l.cache.getOrCompute("join:"+file.Key(), func() (tocTriple, error) {
			topFile := NewFilePath(topPath)
			topNode, topErr := ld.loadTocFile(ctx, nil, topFile, topFile, newDocList(), newDocList())
			if topErr != nil {
				return tocTriple{}, topErr
			}
			merged := mergeJoinedTocs(topFile, topNode, map[FilePath]*TocNode{file: node}, l.JoinConfig)
			return tocTriple{node: merged}, nil
		})
		if joinErr != nil {
			stats := LoadStats{}
			stats.Warnings, stats.Errors = ld.sink.CountBySeverity()
			return LoadResult{}, stats, ld.sink, joinErr
		}
		result.Node = joined.node
	}

	stats := LoadStats{}
	if result.Node != nil {
		stats.FilesLoaded = countFiles(result.Node, map[string]bool{})
	}
	stats.Warnings, stats.Errors = ld.sink.CountBySeverity()

	return result, stats, ld.sink, nil
}

// Join implements the façade's JoinTocMerger entry point (§4.8) for trees
// that were not loaded by this same TocLoader call — e.g. two trees
// loaded by separate TocLoader instances, or assembled by a caller that
// wants to control the merge directly rather than relying on JoinConfig's
// automatic trigger during Load. Most callers should prefer setting
// JoinConfig and letting Load(referenceToc) perform the merge per §4.9
// step 2; this method exists for the cases that don't fit that shape.
func (l *TocLoader) Join(topLevelPath FilePath, topLevel *TocNode, referenceTocs map[FilePath]*TocNode, cfg JoinConfig) *TocNode {
	return mergeJoinedTocs(topLevelPath, topLevel, referenceTocs, cfg)
}

func countFiles(node *TocNode, seen map[string]bool) int {
	if node == nil || node.Document == nil {
		n := 0
		for _, c := range node.Items {
			n += countFiles(c, seen)
		}
		return n
	}
	key := node.Document.FilePath.Key()
	n := 0
	if !seen[key] {
		seen[key] = true
		n = 1
	}
	for _, c := range node.Items {
		n += countFiles(c, seen)
	}
	return n
}
