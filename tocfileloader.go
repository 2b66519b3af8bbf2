package toctree

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/opendocs/toctree/diag"
)

// loadTocFile implements TocFileLoader (§4.5): push file onto the
// recursion guard, then parse it and resolve its items (in parallel,
// bounded by the loader's semaphore), memoizing the result in the
// TocLoader's MemoCache, which later Load calls on the same TocLoader
// reuse.
//
// The guard push happens here, in the cached wrapper, rather than inside
// the factory MemoCache hands to its singleflight group. That ordering
// matters: a genuine cycle re-enters this function with file already on
// its own guard, a cheap in-memory check with no lock involved, so it
// fails fast with CircularReference before ever touching the cache. If
// the push were deferred into the factory instead, a cyclic re-entry
// would be a second call to getOrCompute for the SAME key from within
// the goroutine tree that is still computing that key's first call —
// singleflight.Group.Do blocks a duplicate call for an in-flight key
// until the original finishes, so that second call would wait forever
// on a computation that can only finish once it returns, deadlocking the
// whole load instead of reporting the cycle (§8 property 2, S4).
func (l *loader) loadTocFile(ctx context.Context, guard Guard, file, rootFile FilePath, refFiles, refTocs *docList) (*TocNode, error) {
	nextGuard, err := guard.Push(SourceLocation{File: file}, file)
	if err != nil {
		if d, ok := err.(diag.Positioned); ok {
			l.sink.Report(d)
		}
		return nil, err
	}

	t, err := l.cache.getOrCompute(file.Key(), func() (tocTriple, error) {
		return l.doLoadTocFile(ctx, nextGuard, file, rootFile)
	})
	if err != nil {
		return nil, err
	}
	refFiles.AppendAll(&docList{items: t.referencedFiles})
	refTocs.AppendAll(&docList{items: t.referencedTocs})
	return t.node, nil
}

// doLoadTocFile runs the uncached body of loadTocFile once per file per
// TocLoader (again only after a failed attempt), guaranteed by
// MemoCache's single-flight semantics.
// guard already has file pushed onto it by the caller.
func (l *loader) doLoadTocFile(ctx context.Context, guard Guard, file, rootFile FilePath) (tocTriple, error) {
	loc := SourceLocation{File: file}
	root, err := l.Parser.Parse(ctx, file, l.sink)
	if err != nil {
		return tocTriple{}, fmt.Errorf("parsing %s: %w", file.String(), err)
	}

	refFiles := newDocList()
	refTocs := newDocList()

	items, err := l.loadTocNodes(ctx, guard, root.Items, file, rootFile, refFiles, refTocs)
	if err != nil {
		return tocTriple{}, err
	}
	root.Items = items
	root.Source = loc
	// The file's own container node is a node like any other for §4.7's
	// purposes: it carries no href/document of its own, so its only
	// contribution to the union is its children's already-aggregated
	// monikers.
	root.Monikers = l.aggregateMonikers(ctx, root)

	if file == rootFile && l.Validator != nil {
		l.Validator.ValidateTocEntryDuplicated(file, refFiles.Snapshot())
	}

	return tocTriple{
		node:            root,
		referencedFiles: refFiles.Snapshot(),
		referencedTocs:  refTocs.Snapshot(),
	}, nil
}

// loadTocNodes resolves each of inputs independently, fanning sibling
// resolution out across the loader's semaphore (§4.5, §5): every sibling
// gets its own scratch referencedFiles/referencedTocs list, merged into
// the parent's under mutual exclusion once it completes, and writes its
// result into a fixed slot so output order always matches input order
// regardless of completion order.
func (l *loader) loadTocNodes(ctx context.Context, guard Guard, inputs []*TocNode, file, rootFile FilePath, refFiles, refTocs *docList) ([]*TocNode, error) {
	out := make([]*TocNode, len(inputs))
	if len(inputs) == 0 {
		return out, nil
	}

	grp, gctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		i, input := i, input
		grp.Go(func() error {
			if err := l.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer l.sem.Release(1)

			scratchFiles := newDocList()
			scratchTocs := newDocList()
			resolved, err := l.resolveNode(gctx, guard, input, file, rootFile, scratchFiles, scratchTocs)
			if err != nil {
				return err
			}
			out[i] = resolved
			refFiles.AppendAll(scratchFiles)
			refTocs.AppendAll(scratchTocs)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
