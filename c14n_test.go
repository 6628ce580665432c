//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/xmlgo/internal/handles"
)

func TestConflictingVisibilityFailsBeforeNativeCall(t *testing.T) {
	// No library needed: the check precedes any native work, even on a
	// document that was never parsed.
	var doc *Document
	_, err := doc.Canonicalize(&C14NOptions{
		IsVisible: func(Node, Node) bool { return true },
		Nodes:     []Node{{}},
	})
	assert.ErrorIs(t, err, ErrConflictingVisibility)
}

func TestCanonicalizeWholeDocument(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, `<r z="2" a="1"><!-- note --><e/></r>`)

	out, err := doc.Canonicalize(nil)
	require.NoError(t, err)
	assert.Equal(t, `<r a="1" z="2"><e></e></r>`, string(out))

	out, err = doc.Canonicalize(&C14NOptions{WithComments: true})
	require.NoError(t, err)
	assert.Equal(t, `<r a="1" z="2"><!-- note --><e></e></r>`, string(out))
}

func TestCanonicalizeNodeSet(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, `<r><a><b/></a><c/></r>`)

	a, err := doc.FindFirst("//a", nil)
	require.NoError(t, err)

	before := handles.Count()
	out, err := doc.Canonicalize(&C14NOptions{Nodes: []Node{a}})
	require.NoError(t, err)
	assert.Equal(t, `<a><b></b></a>`, string(out))
	assert.Equal(t, before, handles.Count(), "callback state is released")

	other := mustParse(t, `<x/>`)
	x, err := other.Root()
	require.NoError(t, err)
	_, err = doc.Canonicalize(&C14NOptions{Nodes: []Node{x}})
	assert.ErrorIs(t, err, ErrForeignNode)
}

func TestCanonicalizeVisibilityCascade(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, `<r><a><b/></a><c/></r>`)

	var seen []string
	hideA := func(n, _ Node) bool {
		if n.Type() == ElementNode {
			seen = append(seen, n.Name())
		}
		return n.Name() != "a"
	}

	out, err := doc.Canonicalize(&C14NOptions{IsVisible: hideA, Cascade: true})
	require.NoError(t, err)
	assert.Equal(t, `<r><c></c></r>`, string(out))
	assert.NotContains(t, seen, "b", "descendants of a hidden element are not consulted")

	seen = nil
	out, err = doc.Canonicalize(&C14NOptions{IsVisible: hideA})
	require.NoError(t, err)
	assert.Equal(t, `<r><b></b><c></c></r>`, string(out))
	assert.Contains(t, seen, "b")
}

func TestCanonicalizeExclusive(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, `<r xmlns:u="urn:unused" xmlns:p="urn:p"><p:a/></r>`)

	a, err := doc.FindFirst("//*[local-name()='a']", nil)
	require.NoError(t, err)

	out, err := doc.Canonicalize(&C14NOptions{Mode: C14NExclusive10, Nodes: []Node{a}})
	require.NoError(t, err)
	assert.Equal(t, `<p:a xmlns:p="urn:p"></p:a>`, string(out))

	out, err = doc.Canonicalize(&C14NOptions{
		Mode:              C14NExclusive10,
		Nodes:             []Node{a},
		InclusivePrefixes: []string{"u"},
	})
	require.NoError(t, err)
	assert.Equal(t, `<p:a xmlns:p="urn:p" xmlns:u="urn:unused"></p:a>`, string(out))
}

func TestCanonicalizePanicSurfaces(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, `<r><a/></r>`)

	assert.PanicsWithValue(t, "predicate failed", func() {
		_, _ = doc.Canonicalize(&C14NOptions{IsVisible: func(n, _ Node) bool {
			if n.Name() == "a" {
				panic("predicate failed")
			}
			return true
		}})
	})
}
