package toctree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTocNodeCloneEquality mirrors the teacher's ast.Clone test
// (ast/clone_test.go): a clone must compare equal to its source, and
// mutating the clone's own Items slice must never reach back into the
// original (the pointer slots themselves are shared and immutable once
// published, per §3 invariant 1, but the slice header is not).
func TestTocNodeCloneEquality(t *testing.T) {
	original := &TocNode{
		Name: "Parent",
		Href: "parent.md",
		Items: []*TocNode{
			{Name: "Child", Href: "child.md"},
		},
		Children: []string{"Guide/*"},
	}

	clone := original.Clone()
	if diff := cmp.Diff(original, clone); diff != "" {
		t.Errorf("Clone() differs from source (-want +got):\n%s", diff)
	}

	clone.Items = append(clone.Items, &TocNode{Name: "Appended"})
	assert.Len(t, original.Items, 1, "mutating the clone's Items slice must not affect the source")
	assert.Len(t, clone.Items, 2)

	clone.Children[0] = "Other/*"
	assert.Equal(t, "Guide/*", original.Children[0], "mutating the clone's Children slice must not affect the source")
}

func TestTocNodeCloneNil(t *testing.T) {
	var n *TocNode
	assert.Nil(t, n.Clone())
}

// TestParseJoinConfig covers the SPEC_FULL §10 configuration format: a
// join config document is decoded with yaml.v3 the same way the rest of
// the loader's ambient stack favors library decoding over hand-rolled
// parsing.
func TestParseJoinConfig(t *testing.T) {
	data := []byte(`
joins:
  - referenceToc: docs/reference/TOC.yml
    topLevelToc: docs/TOC.yml
  - referenceToc: docs/other/TOC.yml
`)
	cfg, err := ParseJoinConfig(data)
	require.NoError(t, err)

	top, ok := cfg.TopLevelFor(NewFilePath("docs/reference/TOC.yml"))
	assert.True(t, ok)
	assert.Equal(t, "docs/TOC.yml", top)

	top, ok = cfg.TopLevelFor(NewFilePath("docs/other/TOC.yml"))
	assert.True(t, ok)
	assert.Empty(t, top)

	_, ok = cfg.TopLevelFor(NewFilePath("unconfigured/TOC.yml"))
	assert.False(t, ok)
}

func TestParseJoinConfigInvalidYAML(t *testing.T) {
	_, err := ParseJoinConfig([]byte("joins: [this is not a list of mappings"))
	assert.Error(t, err)
}

func TestParseJoinConfigEmpty(t *testing.T) {
	cfg, err := ParseJoinConfig(nil)
	require.NoError(t, err)
	assert.True(t, cfg.IsEmpty())
}
