//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"runtime"
	"sync"

	"github.com/obinnaokechukwu/xmlgo/lifecycle"
	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// DTD is a document type definition, either parsed from a file or the
// internal subset of a Document.
type DTD struct {
	lifecycle.Object
	doc *Document // owner, for internal subsets
}

// attachedDTDs holds internal subsets handed out as wrappers. Their memory
// belongs to the owning document and may already be gone by the time the
// wrapper's release runs, so ownership is decided here instead of by
// reading the native parent field.
var attachedDTDs sync.Map

var dtds = lifecycle.NewRegistry[DTD]("DTD", lifecycle.Conditional(dtdOwned, func(h lifecycle.Handle) {
	libxml.FreeDtd(uintptr(h))
}))

func dtdOwned(h lifecycle.Handle) bool {
	if _, ok := attachedDTDs.LoadAndDelete(h); ok {
		return true
	}
	return libxml.DtdAttached(uintptr(h))
}

func wrapAttachedDTD(h uintptr, doc *Document) *DTD {
	attachedDTDs.Store(lifecycle.Handle(h), struct{}{})
	return dtds.Get(lifecycle.Handle(h), func() *DTD { return &DTD{doc: doc} })
}

// ParseDTDFile parses an external DTD.
func ParseDTDFile(path string) (*DTD, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	h, err := libxml.ParseDTDFile(path)
	if err != nil {
		return nil, err
	}
	// A freshly parsed DTD may reuse the address of an internal subset
	// whose wrapper has not been cleaned up yet.
	attachedDTDs.Delete(lifecycle.Handle(h))
	return dtds.Get(lifecycle.Handle(h), func() *DTD { return &DTD{} }), nil
}

// Attached reports whether the DTD belongs to a document.
func (t *DTD) Attached() bool {
	return t != nil && t.doc != nil
}

// Close releases the DTD. The internal subset of a document is left to the
// document. Close is safe to call more than once.
func (t *DTD) Close() error {
	dtds.Dispose(t)
	return nil
}

// ValidateDTD validates d against dtd. A nil dtd validates against the
// document's own DOCTYPE declarations.
func (d *Document) ValidateDTD(dtd *DTD) error {
	h, err := d.handle()
	if err != nil {
		return err
	}
	defer runtime.KeepAlive(d)

	var dh uintptr
	if dtd != nil {
		if dtd.Disposed() || (dtd.doc != nil && dtd.doc.Disposed()) {
			return ErrDisposed
		}
		dh = uintptr(dtd.Handle())
		defer runtime.KeepAlive(dtd)
	}
	return libxml.ValidateDtd(h, dh)
}
