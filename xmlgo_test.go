//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireLibXML skips the test when libxml2 cannot be loaded.
func requireLibXML(t *testing.T) {
	t.Helper()
	if err := Init(); err != nil {
		t.Skipf("libxml2 not available: %v", err)
	}
}

// mustParse parses s and closes the document when the test ends.
func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s, nil)
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestInit(t *testing.T) {
	requireLibXML(t)

	assert.True(t, IsLoaded())
	assert.NotEmpty(t, Version())
	assert.NotEmpty(t, LibraryPath())
	t.Logf("libxml2 %s from %s", Version(), LibraryPath())
}
