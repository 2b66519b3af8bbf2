package toctree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadAggregatesAndCompressesMonikers exercises MonikerAggregator
// (§4.7) end to end through TocLoader, covering S6: a parent's aggregated
// set is the union of its children's file-level monikers, and any child
// whose own set equals that union is compressed back down to Default
// since it narrows nothing beyond what the parent already expresses.
func TestLoadAggregatesAndCompressesMonikers(t *testing.T) {
	parser := newFakeParser()
	links := newFakeLinkResolver()

	root := NewFilePath("root.yml")
	parser.add(root, &TocNode{Items: []*TocNode{
		{Name: "Wide", Href: "wide.md"},
		{Name: "Narrow", Href: "narrow.md"},
	}})

	wideDoc := &Document{ContentType: "markdown", FilePath: NewFilePath("wide.md")}
	narrowDoc := &Document{ContentType: "markdown", FilePath: NewFilePath("narrow.md")}
	links.setLink("wide.md", wideDoc)
	links.setLink("narrow.md", narrowDoc)

	loader := NewTocLoader(parser, links)
	monikers := newFakeMonikerProvider(loader.Interner())
	monikers.set_(wideDoc.FilePath, "v1", "v2")
	monikers.set_(narrowDoc.FilePath, "v1")
	loader.Monikers = monikers

	result, sink, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, sink.Items())

	require.Len(t, result.Node.Items, 2)
	wide := result.Node.Items[0]
	narrow := result.Node.Items[1]

	assert.True(t, wide.Monikers.IsDefault(), "Wide's own set equals the union, so it compresses to Default")
	assert.Equal(t, []string{"v1"}, narrow.Monikers.Names(), "Narrow's set is strictly smaller than the union, so it stays explicit")
	assert.Equal(t, []string{"v1", "v2"}, result.Node.Monikers.Names(), "the file's own container node aggregates to the union of its children")
}

// TestLoadAbsolutePathContributesDefaultMonikers covers §4.7 step 1's
// External/AbsolutePath case: a node with an absolute href never consults
// the MonikerProvider and contributes the default (empty) set.
func TestLoadAbsolutePathContributesDefaultMonikers(t *testing.T) {
	parser := newFakeParser()
	links := newFakeLinkResolver()

	root := NewFilePath("root.yml")
	parser.add(root, &TocNode{Items: []*TocNode{
		{Name: "External", Href: "https://example.com/x"},
	}})

	loader := NewTocLoader(parser, links)
	loader.URLs = fakeURLClassifier{external: map[string]bool{"https://example.com/x": true}}
	monikers := newFakeMonikerProvider(loader.Interner())
	loader.Monikers = monikers

	result, sink, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, sink.Items())

	require.Len(t, result.Node.Items, 1)
	assert.True(t, result.Node.Items[0].Monikers.IsDefault())
	assert.True(t, result.Node.Monikers.IsDefault())
}
