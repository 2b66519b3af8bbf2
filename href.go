package toctree

import "strings"

// reservedTocNames are the file names HrefClassifier treats as an explicit
// TOC file reference (§4.1 step 4), matched case-insensitively.
var reservedTocNames = map[string]bool{
	"toc.md":                true,
	"toc.yml":               true,
	"toc.json":              true,
	"toc.experimental.md":   true,
	"toc.experimental.yml":  true,
	"toc.experimental.json": true,
}

// HrefClassifier turns a raw href string into its TocHrefKind (§4.1). It
// defers to an external UrlClassifier for the external/absolute-path
// distinction and applies the loader's own folder/file/TOC-file rules to
// whatever remains.
type HrefClassifier struct {
	URLs UrlClassifier
}

// Classify implements §4.1's five-step algorithm:
//  1. Empty href classifies as KindNone.
//  2. Delegate to the URL utility; an absolute path or external URL
//     classifies as KindAbsolutePath.
//  3. A trailing path separator classifies as KindRelativeFolder.
//  4. A last path segment matching a reserved TOC file name (case
//     insensitive) classifies as KindTocFile.
//  5. Anything else is KindRelativeFile.
func (c HrefClassifier) Classify(href string) TocHrefKind {
	if href == "" {
		return KindNone
	}
	if c.URLs != nil {
		switch c.URLs.Classify(href) {
		case UrlKindAbsolutePath, UrlKindExternal:
			return KindAbsolutePath
		}
	}

	clean := href
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if clean == "" {
		return KindNone
	}
	if strings.HasSuffix(clean, "/") || strings.HasSuffix(clean, `\`) {
		return KindRelativeFolder
	}

	seg := lastPathSegment(clean)
	if reservedTocNames[strings.ToLower(seg)] {
		return KindTocFile
	}
	return KindRelativeFile
}

func lastPathSegment(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
