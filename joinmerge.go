package toctree

import "github.com/gobwas/glob"

// mergeJoinedTocs implements JoinTocMerger (§4.8). topLevelPath identifies
// topLevel among the possible targets named in cfg; referenceTocs holds
// every reference TOC that might have entries to graft in, keyed by the
// path JoinConfig knows it by.
//
// A "join slot" is any node whose Children holds glob patterns (the parser
// leaves Children empty for an ordinary node); it may also carry literal
// items of its own.
// For each reference TOC configured to feed topLevelPath, its items are
// walked in pre-order and matched against the slot's patterns, first
// pattern first; a match is grafted into the slot and removed from that
// reference TOC's remaining pool, so a later slot in the same walk can
// never re-graft an item an earlier slot already claimed. That shrinking
// pool is what makes the walk a single cascading pass rather than N
// independent scans — see §9 Open Question 1, resolved this way so that
// a top-level TOC with several slots partitions one reference TOC's
// entries across them instead of duplicating entries into every slot
// whose pattern happens to match.
func mergeJoinedTocs(topLevelPath FilePath, topLevel *TocNode, referenceTocs map[FilePath]*TocNode, cfg JoinConfig) *TocNode {
	if topLevel == nil {
		return nil
	}

	pools := make(map[FilePath][]*TocNode, len(referenceTocs))
	for path, tree := range referenceTocs {
		if top, ok := cfg.TopLevelFor(path); !ok || normalizePath(top) != topLevelPath.Path {
			continue
		}
		pools[path] = flattenPreOrder(tree)
	}

	return graftJoinSlots(topLevel, pools)
}

func flattenPreOrder(node *TocNode) []*TocNode {
	if node == nil {
		return nil
	}
	var out []*TocNode
	var walk func(*TocNode)
	walk = func(n *TocNode) {
		out = append(out, n)
		for _, c := range n.Items {
			walk(c)
		}
	}
	for _, c := range node.Items {
		walk(c)
	}
	return out
}

func graftJoinSlots(node *TocNode, pools map[FilePath][]*TocNode) *TocNode {
	if node == nil {
		return nil
	}
	clone := node.Clone()
	items := node.Items

	if len(node.Children) > 0 {
		patterns := compileGlobs(node.Children)
		var grafted []*TocNode
		for path, pool := range pools {
			var remaining []*TocNode
			for _, item := range pool {
				if matchesAny(patterns, item.Name) {
					grafted = append(grafted, item)
					continue
				}
				remaining = append(remaining, item)
			}
			pools[path] = remaining
		}
		// §4.8 step 2 adds matched items to node.items rather than
		// replacing it; a join slot's own literal items (if any) are
		// preserved ahead of the grafted ones.
		items = append(append([]*TocNode(nil), node.Items...), grafted...)
		clone.Children = nil
	}

	// The walk continues into the materialized items, grafted ones
	// included, so a grafted item that is itself a join slot draws from
	// whatever the pool still holds.
	if len(items) > 0 {
		out := make([]*TocNode, len(items))
		for i, c := range items {
			out[i] = graftJoinSlots(c, pools)
		}
		clone.Items = out
	}
	return clone
}

func compileGlobs(patterns []string) []glob.Glob {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		out = append(out, g)
	}
	return out
}

func matchesAny(patterns []glob.Glob, name string) bool {
	for _, g := range patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
