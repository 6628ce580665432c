//go:build !ios && !android && (amd64 || arm64)

package libxml

import (
	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
)

// ParseDTDFile parses an external DTD.
func ParseDTDFile(path string) (Dtd, error) {
	if xmlParseDTD == nil {
		return 0, bindings.ErrNotLoaded
	}
	var dtd uintptr
	err := Guard("parse dtd "+path, func() bool {
		dtd = xmlParseDTD(0, path)
		return dtd != 0
	})
	return dtd, err
}

// FreeDtd frees dtd. Callers must not free a DTD attached to a document.
func FreeDtd(dtd Dtd) {
	if dtd == 0 || xmlFreeDtd == nil {
		return
	}
	xmlFreeDtd(dtd)
}

// DtdAttached reports whether dtd is owned by a document, which frees it
// along with itself.
func DtdAttached(dtd Dtd) bool {
	return dtd != 0 && readPtr(dtd, nodeParent) != 0
}

// ValidateDtd validates doc against dtd, or against its own internal and
// external subsets when dtd is 0.
func ValidateDtd(doc Doc, dtd Dtd) error {
	if xmlNewValidCtxt == nil {
		return bindings.ErrNotLoaded
	}
	return GuardContext("validate dtd", xmlNewValidCtxt, xmlFreeValidCtxt, func(vctxt uintptr) bool {
		if dtd == 0 {
			return xmlValidateDocument(vctxt, doc) == 1
		}
		return xmlValidateDtd(vctxt, doc, dtd) == 1
	})
}
