package toctree

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// tocTriple is the unit MemoCache publishes: a resolved node plus the two
// accumulator snapshots built alongside it (§3 invariant 1, §4.6).
type tocTriple struct {
	node            *TocNode
	referencedFiles []*Document
	referencedTocs  []*Document
}

// MemoCache memoizes one tocTriple per FilePath for the lifetime of a
// single TocLoader. It composes two mechanisms rather than one:
//
//   - singleflight.Group collapses concurrent callers racing to load the
//     same file into a single in-flight computation, which is what keeps
//     diamond-shaped includes from doing the work twice while both sides
//     are still running (§8 property 1).
//   - a plain map published under a mutex keeps the result around after
//     that singleflight call returns, since singleflight only dedups
//     overlapping calls, not later ones (§3 invariant 1 requires the
//     triple to be reusable for the rest of the load, not just while the
//     first call is in flight).
type MemoCache struct {
	group singleflight.Group

	mu   sync.RWMutex
	done map[string]tocTriple
}

// NewMemoCache returns an empty MemoCache.
func NewMemoCache() *MemoCache {
	return &MemoCache{done: make(map[string]tocTriple)}
}

// getOrCompute returns the published triple for key, computing it via
// factory at most once per successful result. A failed computation is not
// published, so a later call for the same key runs factory again.
func (c *MemoCache) getOrCompute(key string, factory func() (tocTriple, error)) (tocTriple, error) {
	if t, ok := c.lookup(key); ok {
		return t, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if t, ok := c.lookup(key); ok {
			return t, nil
		}
		t, err := factory()
		if err != nil {
			return tocTriple{}, err
		}
		c.mu.Lock()
		c.done[key] = t
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return tocTriple{}, err
	}
	return v.(tocTriple), nil
}

func (c *MemoCache) lookup(key string) (tocTriple, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.done[key]
	return t, ok
}
