package toctree

import (
	"context"

	"github.com/opendocs/toctree/moniker"
)

// aggregateMonikers implements MonikerAggregator (§4.7) for one already
// assembled node: it unions the node's own href-derived monikers with
// every child's monikers, then collapses any child whose set equals that
// union back down to the default (empty) set, since such a child adds no
// filtering information beyond what its parent already carries.
//
// Children produced by grafting a cached TocFile include (rather than
// resolved fresh, in-line, by this same call) are cloned before this
// compression runs, so the redundancy collapse — which mutates Monikers
// in place — never reaches back into a published cache entry (§3
// invariant 1).
func (l *loader) aggregateMonikers(ctx context.Context, node *TocNode) moniker.List {
	lists := make([]moniker.List, 0, len(node.Items)+1)

	if node.Href != "" {
		if l.classifier.Classify(node.Href) == KindAbsolutePath {
			lists = append(lists, moniker.Default)
		} else if node.Document != nil && l.Monikers != nil {
			lists = append(lists, l.Monikers.GetFileLevelMonikers(ctx, l.sink, node.Document.FilePath))
		}
	}
	for _, child := range node.Items {
		lists = append(lists, child.Monikers)
	}

	union := moniker.Union(lists...)

	for _, child := range node.Items {
		if child.Monikers.Equal(union) {
			child.Monikers = moniker.Default
		}
	}
	return union
}
