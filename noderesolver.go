package toctree

import (
	"context"

	"github.com/opendocs/toctree/diag"
	"github.com/opendocs/toctree/moniker"
)

// deriveTocHref implements §4.3 step 1: prefer an explicit tocHref, but
// only if it classifies as a TOC include or an absolute path; otherwise
// report InvalidTocHref and fall back to href itself, if href is a TOC
// include.
func (l *loader) deriveTocHref(loc SourceLocation, input *TocNode) (string, TocHrefKind) {
	if input.TocHref != "" {
		k := l.classifier.Classify(input.TocHref)
		if k.IsTocInclude() || k == KindAbsolutePath {
			return input.TocHref, k
		}
		l.sink.Report(diag.NewInvalidTocHref(loc.String(), input.TocHref))
	}
	if input.Href != "" {
		if k := l.classifier.Classify(input.Href); k.IsTocInclude() {
			return input.Href, k
		}
	}
	return "", KindNone
}

// deriveTopicHref implements §4.3 step 2.
func (l *loader) deriveTopicHref(loc SourceLocation, input *TocNode) string {
	if input.TopicHref != "" {
		if l.classifier.Classify(input.TopicHref).IsTocInclude() {
			l.sink.Report(diag.NewInvalidTopicHref(loc.String(), input.TopicHref))
		} else {
			return input.TopicHref
		}
	}
	if input.Href == "" || !l.classifier.Classify(input.Href).IsTocInclude() {
		return input.Href
	}
	return ""
}

// getFirstItem walks items looking for the first one with a direct href.
// If none has one, it descends into only the first item's own subtree —
// not every sibling's — and repeats. This asymmetry (depth-first into
// item zero only, never breadth across siblings once one level down) is
// deliberate: see §9 Open Question 2. It is preserved verbatim rather
// than "fixed" into a full pre-order search.
func getFirstItem(items []*TocNode) *TocNode {
	for _, it := range items {
		if it.Href != "" {
			return it
		}
	}
	if len(items) > 0 {
		return getFirstItem(items[0].Items)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveNode implements NodeResolver (§4.3) for a single input node
// within file, part of the load chain rooted at rootFile. guard, refFiles
// and refTocs are the ones scoped to this node's own resolution (callers
// decide, per branch, whether those accumulators are fresh or shared with
// the parent — see the RelativeFolder case below).
func (l *loader) resolveNode(ctx context.Context, guard Guard, input *TocNode, file, rootFile FilePath, refFiles, refTocs *docList) (*TocNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := input.Source
	if loc.File.Path == "" {
		loc.File = file
	}

	tocHref, tocKind := l.deriveTocHref(loc, input)
	topicHref := l.deriveTopicHref(loc, input)

	if l.Validator != nil {
		l.Validator.ValidateTocBreadcrumbLinkExternal(file, input)
	}

	var (
		// includedItems is subChildren in the §4.3 step 6 sense: it
		// replaces this node's own items wholesale, which step 6 scopes
		// to the TocFile-inclusion case only. A RelativeFolder include
		// also produces a probed subtree (below), but never publishes it
		// here — it keeps its own authored items per §4.3 step 4.
		includedItems []*TocNode
		// subChildrenFirst is the first item of whatever subtree step 4
		// recursively loaded (TocFile's included tree, or RelativeFolder's
		// probed tree); §4.3 step 7 falls back to its href/document for
		// both kinds, even though only TocFile's subtree becomes this
		// node's own items.
		subChildrenFirst *TocNode
		tocHrefResolved  string
		tocHrefDocument  *Document
	)

	switch {
	case tocHref == "":
		// no TOC include on this node

	case tocKind == KindAbsolutePath:
		tocHrefResolved = tocHref

	case tocKind == KindTocFile:
		doc, err := l.hrefs.Resolve(ctx, l.sink, loc, file, rootFile, tocHref, tocKind, refTocs)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			sub, err := l.loadTocFile(ctx, guard, doc.FilePath, rootFile, refFiles, refTocs)
			if err != nil {
				return nil, err
			}
			includedItems = cloneItems(sub.Items)
			tocHrefDocument = doc
			subChildrenFirst = getFirstItem(includedItems)
		}

	case tocKind == KindRelativeFolder:
		doc, err := l.hrefs.Resolve(ctx, l.sink, loc, file, rootFile, tocHref, tocKind, nil)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			freshFiles := newDocList()
			sub, err := l.loadTocFile(ctx, guard, doc.FilePath, rootFile, freshFiles, refTocs)
			if err != nil {
				return nil, err
			}
			probedItems := cloneItems(sub.Items)
			tocHrefDocument = doc
			subChildrenFirst = getFirstItem(probedItems)
			if subChildrenFirst != nil && subChildrenFirst.Document != nil && l.Deps != nil {
				l.Deps.AddDependencyItem(file, subChildrenFirst.Document.FilePath, DependencyKindTocFolderLanding, DocumentContentTypeToc)
			}
		}
	}

	// processTopicItem (§4.3 step 5). addToReferencedFiles is true unless
	// this node's tocHref processing was a TocFile inclusion
	// (includedItems != nil) — in that case the topic document, if any,
	// belongs to the included subtree's own accounting, not this file's.
	// A RelativeFolder include keeps its own items (step 6), so its topic
	// document, if any, still belongs to this file.
	addToReferencedFiles := includedItems == nil
	resolvedTopicHref, displayName, topicDocument, err := l.processTopicItem(ctx, loc, file, rootFile, topicHref, input.UID, addToReferencedFiles, refFiles)
	if err != nil {
		return nil, err
	}

	// Determine children (§4.3 step 6): a TocFile inclusion's subChildren
	// replace this node's own items entirely; every other node — including
	// a RelativeFolder include — resolves its own authored input.Items.
	var items []*TocNode
	if includedItems != nil {
		items = includedItems
	} else if len(input.Items) > 0 {
		items, err = l.loadTocNodes(ctx, guard, input.Items, file, rootFile, refFiles, refTocs)
		if err != nil {
			return nil, err
		}
	}

	href := firstNonEmpty(tocHrefResolved, resolvedTopicHref)
	if href == "" && subChildrenFirst != nil {
		href = subChildrenFirst.Href
	}

	name := input.Name
	if name == "" {
		name = displayName
	}

	var homepage string
	if input.Href == "" && topicHref != "" {
		homepage = resolvedTopicHref
	}

	document := topicDocument
	if document == nil {
		document = tocHrefDocument
	}
	if document == nil && subChildrenFirst != nil {
		document = subChildrenFirst.Document
	}

	resolved := &TocNode{
		Name:     name,
		Href:     href,
		UID:      input.UID,
		Homepage: homepage,
		Document: document,
		Items:    items,
		Children: input.Children,
		Source:   loc,
	}

	if resolved.Name == "" {
		l.sink.Report(diag.NewMissingAttribute(loc.String(), "name"))
	}

	resolved.Monikers = l.aggregateMonikers(ctx, resolved)
	return resolved, nil
}

// processTopicItem implements §4.3 step 5.
func (l *loader) processTopicItem(ctx context.Context, loc SourceLocation, file, rootFile FilePath, topicHref, uid string, addToReferencedFiles bool, refFiles *docList) (resolvedHref, displayName string, document *Document, err error) {
	if topicHref != "" {
		resolvedHref, document, err = l.Links.ResolveLink(ctx, topicHref, file, rootFile)
		if err != nil {
			l.sink.Report(diag.NewCollaboratorError(loc.String(), err))
			return "", "", nil, nil
		}
		if addToReferencedFiles && document != nil {
			refFiles.Append(document)
		}
		return resolvedHref, "", document, nil
	}

	if uid != "" && l.Xrefs != nil {
		monikers := moniker.Default
		if l.Monikers != nil {
			monikers = l.Monikers.GetFileLevelMonikers(ctx, l.sink, file)
		}
		link, name, declaring, err := l.Xrefs.ResolveXrefByUid(ctx, uid, file, rootFile, monikers)
		if err != nil {
			l.sink.Report(diag.NewCollaboratorError(loc.String(), err))
			return "", "", nil, nil
		}
		if declaring != nil {
			refFiles.Append(declaring)
		}
		return link, name, declaring, nil
	}

	return "", "", nil, nil
}

// cloneItems shallow-clones a slice of nodes grafted in from a cached
// sub-load, so later in-place mutation (moniker redundancy compression,
// §4.7 step 3) never touches the published cache entry those nodes came
// from.
func cloneItems(items []*TocNode) []*TocNode {
	if items == nil {
		return nil
	}
	out := make([]*TocNode, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
