//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAgainstInternalSubset(t *testing.T) {
	requireLibXML(t)

	good := mustParse(t, `<!DOCTYPE r [<!ELEMENT r (a)><!ELEMENT a EMPTY>]><r><a/></r>`)
	assert.NoError(t, good.ValidateDTD(nil))
	assert.NoError(t, good.ValidateDTD(good.InternalSubset()))

	bad := mustParse(t, `<!DOCTYPE r [<!ELEMENT r (a)><!ELEMENT a EMPTY>]><r><b/></r>`)
	err := bad.ValidateDTD(nil)
	require.Error(t, err)
	assert.True(t, IsStructured(err))
}

func TestExternalDTD(t *testing.T) {
	requireLibXML(t)

	path := filepath.Join(t.TempDir(), "note.dtd")
	require.NoError(t, os.WriteFile(path, []byte("<!ELEMENT note (to)>\n<!ELEMENT to (#PCDATA)>\n"), 0o644))

	dtd, err := ParseDTDFile(path)
	require.NoError(t, err)
	assert.False(t, dtd.Attached())

	assert.NoError(t, mustParse(t, "<note><to>you</to></note>").ValidateDTD(dtd))
	assert.Error(t, mustParse(t, "<note><from>me</from></note>").ValidateDTD(dtd))

	require.NoError(t, dtd.Close())
	require.NoError(t, dtd.Close())
	assert.ErrorIs(t, mustParse(t, "<note/>").ValidateDTD(dtd), ErrDisposed)
}

func TestParseDTDFileMissing(t *testing.T) {
	requireLibXML(t)

	_, err := ParseDTDFile(filepath.Join(t.TempDir(), "missing.dtd"))
	assert.ErrorIs(t, err, ErrFailed)
}
