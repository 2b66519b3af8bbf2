package toctree

import (
	"context"
	"path"

	"github.com/opendocs/toctree/diag"
)

// folderProbeNames is the fixed, ordered candidate list RelativeFolder
// resolution probes (§4.2); the first working-tree hit wins.
var folderProbeNames = []string{"TOC.md", "TOC.json", "TOC.yml"}

// TocHrefResolver resolves a node's tocHref to the Document it names,
// dispatching on the TocHrefKind already produced by HrefClassifier
// (§4.2). It never recurses into the resolved document's own contents —
// that is loadTocFile's job, driven by NodeResolver.
type TocHrefResolver struct {
	Links LinkResolver
}

// Resolve implements §4.2:
//
//   - KindRelativeFolder: probe folderProbeNames in order under href.
//     Working-tree hits win outright; a git-commit-only hit is kept as a
//     fallback but a later working-tree hit still takes priority, matching
//     the "prefer the working tree" tie-break from §9 note 3. If nothing
//     resolves at all, report FileNotFound and return (nil, nil) — that is
//     a recorded warning, not a fatal error for the branch.
//   - KindTocFile: resolve href directly via the link resolver and, when
//     non-nil, append the resulting document to referencedTocs.
//
// Any other kind is a caller error (NodeResolver never invokes Resolve for
// a kind that isn't a TOC include).
func (r TocHrefResolver) Resolve(ctx context.Context, sink *diag.Sink, loc SourceLocation, currentFile, rootFile FilePath, href string, kind TocHrefKind, referencedTocs *docList) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch kind {
	case KindRelativeFolder:
		var gitHit *Document
		for _, name := range folderProbeNames {
			probe := path.Join(href, name)
			doc, err := r.Links.ResolveContent(ctx, probe, currentFile)
			if err != nil {
				sink.Report(diag.NewCollaboratorError(loc.String(), err))
				continue
			}
			if doc == nil {
				continue
			}
			if !doc.FilePath.IsGitCommit() {
				return doc, nil
			}
			if gitHit == nil {
				gitHit = doc
			}
		}
		if gitHit != nil {
			return gitHit, nil
		}
		sink.Report(diag.NewFileNotFound(loc.String(), href))
		return nil, nil

	case KindTocFile:
		_, doc, err := r.Links.ResolveLink(ctx, href, currentFile, rootFile)
		if err != nil {
			sink.Report(diag.NewCollaboratorError(loc.String(), err))
			return nil, nil
		}
		if doc != nil {
			referencedTocs.Append(doc)
		}
		return doc, nil

	default:
		return nil, nil
	}
}
