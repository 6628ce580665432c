//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `<catalog xmlns:b="urn:books">
  <b:book id="1"><title>Go</title><price>30</price></b:book>
  <b:book id="2"><title>XML</title><price>45</price></b:book>
  <dvd id="3"><title>Film</title></dvd>
</catalog>`

func TestFindWithNamespaces(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, catalog)

	books, err := doc.Find("//bk:book", Namespaces{"bk": "urn:books"})
	require.NoError(t, err)
	require.Len(t, books, 2)

	id, _ := books[1].Attr("id")
	assert.Equal(t, "2", id)

	_, err = doc.Find("//bk:book", nil)
	assert.Error(t, err, "unbound prefix")
}

func TestFindFirstAbsentIsNotAnError(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, catalog)

	n, err := doc.FindFirst("//magazine", nil)
	require.NoError(t, err)
	assert.True(t, n.IsNil())

	n, err = doc.FindFirst("//dvd/title", nil)
	require.NoError(t, err)
	assert.Equal(t, "Film", n.Content())
}

func TestRelativeQueries(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, catalog)

	dvd, err := doc.FindFirst("//dvd", nil)
	require.NoError(t, err)

	title, err := dvd.FindFirst("title", nil)
	require.NoError(t, err)
	assert.Equal(t, "Film", title.Content())

	res, err := dvd.Evaluate("string(@id)", nil)
	require.NoError(t, err)
	assert.Equal(t, XPathString, res.Kind)
	assert.Equal(t, "3", res.String)
}

func TestRelativeQueriesFromDocument(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, "<r><a/><a/></r>")

	nodes, err := doc.Find("r/a", nil)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	res, err := doc.Evaluate("count(r)", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Number)

	first, err := doc.FindFirst("r", nil)
	require.NoError(t, err)
	assert.Equal(t, "r", first.Name())

	nodes, err = doc.Node().Find("r/a", nil)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	x, err := CompileXPath("count(r/a)")
	require.NoError(t, err)
	defer x.Close()
	res, err = doc.EvaluateXPath(x, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Number)
}

func TestEvaluateKinds(t *testing.T) {
	requireLibXML(t)
	doc := mustParse(t, catalog)
	ns := Namespaces{"b": "urn:books"}

	res, err := doc.Evaluate("sum(//b:book/price)", ns)
	require.NoError(t, err)
	assert.Equal(t, XPathNumber, res.Kind)
	assert.Equal(t, 75.0, res.Number)

	res, err = doc.Evaluate("count(//title) = 3", nil)
	require.NoError(t, err)
	assert.Equal(t, XPathBoolean, res.Kind)
	assert.True(t, res.Bool)

	_, err = doc.Find("count(//title)", nil)
	assert.ErrorIs(t, err, ErrNotNodeSet)
}

func TestCompiledXPathReuse(t *testing.T) {
	requireLibXML(t)

	x, err := CompileXPath("count(//item)")
	require.NoError(t, err)
	defer x.Close()
	assert.Equal(t, "count(//item)", x.String())

	for i, src := range []string{"<l/>", "<l><item/></l>", "<l><item/><item/></l>"} {
		doc := mustParse(t, src)
		res, err := doc.EvaluateXPath(x, nil)
		require.NoError(t, err)
		assert.Equal(t, float64(i), res.Number)
	}

	require.NoError(t, x.Close())
	require.NoError(t, x.Close())
	_, err = mustParse(t, "<l/>").EvaluateXPath(x, nil)
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestCompileXPathError(t *testing.T) {
	requireLibXML(t)

	_, err := CompileXPath("//[")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailed)
}
