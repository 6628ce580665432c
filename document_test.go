//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndNavigate(t *testing.T) {
	requireLibXML(t)

	doc := mustParse(t, "<root id=\"1\">\n  <a>hello</a>\n  <b/>\n</root>")

	root, err := doc.Root()
	require.NoError(t, err)
	assert.Equal(t, "root", root.Name())
	assert.Equal(t, ElementNode, root.Type())
	assert.Equal(t, 1, root.Line())
	assert.Equal(t, DocumentNode, root.Parent().Type())
	assert.Same(t, doc, root.Document())

	id, ok := root.Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "1", id)

	var names []string
	for _, c := range root.Children() {
		if c.Type() == ElementNode {
			names = append(names, c.Name())
		}
	}
	assert.Equal(t, []string{"a", "b"}, names)

	a, err := doc.FindFirst("/root/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", a.Content())
	assert.Equal(t, 2, a.Line())
	assert.True(t, a.Parent().Equal(root))
}

func TestParseErrorCarriesEveryRecord(t *testing.T) {
	requireLibXML(t)

	_, err := ParseString("<a>\n<b>\n</a>", &ParseOptions{URL: "broken.xml"})
	require.Error(t, err)
	assert.True(t, IsStructured(err))
	assert.ErrorIs(t, err, ErrFailed)

	recs := Records(err)
	require.NotEmpty(t, recs)

	var msg strings.Builder
	for _, r := range recs {
		msg.WriteString(r.Message)
		assert.Equal(t, "broken.xml", r.File)
	}
	assert.Equal(t, msg.String(), err.Error())
}

func TestParseFile(t *testing.T) {
	requireLibXML(t)

	path := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte("<doc><x/></doc>"), 0o644))

	doc, err := ParseFile(path, nil)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, path, doc.URL())
	root, err := doc.Root()
	require.NoError(t, err)
	assert.Equal(t, "doc", root.Name())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.xml"), nil)
	assert.Error(t, err)
}

func TestCloseIsIdempotentAndDisposes(t *testing.T) {
	requireLibXML(t)

	doc, err := ParseString("<r><a/></r>", nil)
	require.NoError(t, err)
	root, err := doc.Root()
	require.NoError(t, err)

	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())

	assert.True(t, doc.Disposed())
	_, err = doc.Root()
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = doc.Serialize()
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = doc.Find("//a", nil)
	assert.ErrorIs(t, err, ErrDisposed)

	// Reads through nodes of a closed document are silent.
	assert.True(t, root.IsNil())
	assert.Equal(t, "", root.Name())
	assert.Equal(t, NodeType(0), root.Type())
	assert.Nil(t, root.Children())
}

func TestInternalSubsetIdentity(t *testing.T) {
	requireLibXML(t)

	doc, err := ParseString(`<!DOCTYPE r [<!ELEMENT r EMPTY>]><r/>`, nil)
	require.NoError(t, err)

	sub := doc.InternalSubset()
	require.NotNil(t, sub)
	assert.Same(t, sub, doc.InternalSubset(), "one wrapper per live handle")
	assert.True(t, sub.Attached())

	// Closing the subset leaves the document intact.
	require.NoError(t, sub.Close())
	require.NoError(t, doc.ValidateDTD(nil))

	again := doc.InternalSubset()
	require.NotNil(t, again)

	require.NoError(t, doc.Close())
	assert.True(t, again.Disposed(), "closing a document closes its subset wrapper")

	plain := mustParse(t, "<r/>")
	assert.Nil(t, plain.InternalSubset())
}

func TestSerialize(t *testing.T) {
	requireLibXML(t)

	doc := mustParse(t, "<r><a>1</a></r>")
	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), "<r><a>1</a></r>")
	assert.Equal(t, string(out), doc.String())
}

func TestProcessXInclude(t *testing.T) {
	requireLibXML(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.xml"), []byte("<part>included</part>"), 0o644))
	main := filepath.Join(dir, "main.xml")
	require.NoError(t, os.WriteFile(main, []byte(
		`<doc xmlns:xi="http://www.w3.org/2001/XInclude"><xi:include href="part.xml"/></doc>`), 0o644))

	doc, err := ParseFile(main, &ParseOptions{Flags: ParseNoXIncNode})
	require.NoError(t, err)
	defer doc.Close()

	n, err := doc.ProcessXInclude()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	part, err := doc.FindFirst("/doc/part", nil)
	require.NoError(t, err)
	assert.Equal(t, "included", part.Content())
}

func TestZeroNode(t *testing.T) {
	var n Node
	assert.True(t, n.IsNil())
	assert.Equal(t, "", n.Name())
	assert.Equal(t, "", n.Content())
	assert.Equal(t, 0, n.Line())
	assert.True(t, n.Parent().IsNil())
	assert.Nil(t, n.Children())
	assert.Equal(t, "<nil>", n.String())

	_, ok := n.Attr("x")
	assert.False(t, ok)
	_, err := n.Find("*", nil)
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestNilDocument(t *testing.T) {
	var doc *Document
	_, err := doc.Root()
	assert.ErrorIs(t, err, ErrDisposed)
	assert.NoError(t, doc.Close())
	assert.Nil(t, doc.InternalSubset())
}
