//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"runtime"

	"github.com/obinnaokechukwu/xmlgo/internal/bridge"
	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// C14NMode selects the canonicalization algorithm.
type C14NMode int

const (
	C14N10          C14NMode = libxml.C14N10          // Canonical XML 1.0
	C14NExclusive10 C14NMode = libxml.C14NExclusive10 // Exclusive XML Canonicalization 1.0
	C14N11          C14NMode = libxml.C14N11          // Canonical XML 1.1
)

// C14NOptions configures Canonicalize. The zero value canonicalizes the
// whole document with C14N 1.0, without comments.
//
// IsVisible and Nodes both restrict output and are mutually exclusive.
type C14NOptions struct {
	Mode         C14NMode
	WithComments bool

	// InclusivePrefixes lists namespace prefixes treated inclusively in
	// exclusive mode.
	InclusivePrefixes []string

	// IsVisible is consulted for every node, attribute and namespace
	// declaration. parent is the element the node is being output under.
	IsVisible func(node, parent Node) bool

	// Cascade makes a node whose parent was excluded by IsVisible excluded
	// too, without consulting IsVisible.
	Cascade bool

	// Nodes restricts output to these nodes and their descendants.
	Nodes []Node
}

// Canonicalize returns the canonical form of the document, or of the part
// of it selected by opts.
func (d *Document) Canonicalize(opts *C14NOptions) ([]byte, error) {
	if opts == nil {
		opts = &C14NOptions{}
	}
	if opts.IsVisible != nil && len(opts.Nodes) > 0 {
		return nil, ErrConflictingVisibility
	}
	h, err := d.handle()
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(d)

	var cb *bridge.Callback
	switch {
	case opts.IsVisible != nil:
		isVisible := opts.IsVisible
		cb = bridge.Wrap(func(node, parent uintptr) bool {
			return isVisible(Node{doc: d, ptr: node}, Node{doc: d, ptr: parent})
		}, opts.Cascade)

	case len(opts.Nodes) > 0:
		roots := make([]uintptr, len(opts.Nodes))
		for i, n := range opts.Nodes {
			if !n.live() {
				return nil, ErrDisposed
			}
			if n.doc != d {
				return nil, ErrForeignNode
			}
			roots[i] = n.ptr
		}
		cb = bridge.Wrap(bridge.NodeSet(roots, libxml.Parent, h), false)
	}

	var visible, token uintptr
	if cb != nil {
		defer cb.Release()
		visible, token = cb.Addr(), cb.Token()
	}
	out, err := libxml.Canonicalize(h, visible, token, int(opts.Mode), opts.InclusivePrefixes, opts.WithComments)
	if cb != nil {
		if p := cb.Recovered(); p != nil {
			panic(p)
		}
	}
	return out, err
}
