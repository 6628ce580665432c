//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"fmt"
	"runtime"

	"github.com/obinnaokechukwu/xmlgo/lifecycle"
	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// Namespaces maps prefixes used in an XPath expression to namespace URIs.
type Namespaces map[string]string

// XPathKind is the type of an XPath result.
type XPathKind int

const (
	XPathUndefined XPathKind = libxml.XPathUndefined
	XPathNodeSet   XPathKind = libxml.XPathNodeSet
	XPathBoolean   XPathKind = libxml.XPathBoolean
	XPathNumber    XPathKind = libxml.XPathNumber
	XPathString    XPathKind = libxml.XPathString
)

// XPathResult is the value of an evaluated expression. Only the field
// matching Kind is set.
type XPathResult struct {
	Kind   XPathKind
	Nodes  []Node
	String string
	Number float64
	Bool   bool
}

// XPath is a compiled XPath expression. It can be evaluated against any
// number of documents.
type XPath struct {
	lifecycle.Object
	expr string
}

var xpaths = lifecycle.NewRegistry[XPath]("XPath", func(h lifecycle.Handle) {
	libxml.FreeXPath(uintptr(h))
})

// CompileXPath compiles expr.
func CompileXPath(expr string) (*XPath, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	h, err := libxml.CompileXPath(expr)
	if err != nil {
		return nil, err
	}
	return xpaths.Get(lifecycle.Handle(h), func() *XPath {
		return &XPath{expr: expr}
	}), nil
}

// String returns the source expression.
func (x *XPath) String() string {
	return x.expr
}

// Close releases the compiled expression. It is safe to call more than once.
func (x *XPath) Close() error {
	xpaths.Dispose(x)
	return nil
}

// eval runs x with ctx as the context node. ctx is the document handle for
// document-level queries.
func (x *XPath) eval(d *Document, ctx uintptr, ns Namespaces) (XPathResult, error) {
	h, err := d.handle()
	if err != nil {
		return XPathResult{}, err
	}
	if x == nil || x.Disposed() {
		return XPathResult{}, ErrDisposed
	}
	defer runtime.KeepAlive(d)
	defer runtime.KeepAlive(x)

	v, err := libxml.EvalXPath(h, ctx, uintptr(x.Handle()), ns)
	if err != nil {
		return XPathResult{}, err
	}

	res := XPathResult{
		Kind:   XPathKind(v.Type),
		String: v.String,
		Number: v.Number,
		Bool:   v.Bool,
	}
	if len(v.Nodes) > 0 {
		res.Nodes = make([]Node, len(v.Nodes))
		for i, p := range v.Nodes {
			res.Nodes[i] = Node{doc: d, ptr: p}
		}
	}
	return res, nil
}

func evaluate(d *Document, ctx uintptr, expr string, ns Namespaces) (XPathResult, error) {
	x, err := CompileXPath(expr)
	if err != nil {
		return XPathResult{}, err
	}
	defer x.Close()
	return x.eval(d, ctx, ns)
}

func find(d *Document, ctx uintptr, expr string, ns Namespaces) ([]Node, error) {
	res, err := evaluate(d, ctx, expr, ns)
	if err != nil {
		return nil, err
	}
	if res.Kind != XPathNodeSet {
		return nil, fmt.Errorf("%w: %q", ErrNotNodeSet, expr)
	}
	return res.Nodes, nil
}

// firstOf returns the first node, or an absent Node when there is none.
func firstOf(nodes []Node, err error) (Node, error) {
	if err != nil || len(nodes) == 0 {
		return Node{}, err
	}
	return nodes[0], nil
}

// Evaluate evaluates expr with the document node as context.
func (d *Document) Evaluate(expr string, ns Namespaces) (XPathResult, error) {
	return evaluate(d, 0, expr, ns)
}

// EvaluateXPath evaluates a compiled expression with the document node as
// context.
func (d *Document) EvaluateXPath(x *XPath, ns Namespaces) (XPathResult, error) {
	return x.eval(d, 0, ns)
}

// Find returns the nodes selected by expr.
func (d *Document) Find(expr string, ns Namespaces) ([]Node, error) {
	return find(d, 0, expr, ns)
}

// FindFirst returns the first node selected by expr. When nothing matches
// it returns an absent Node (IsNil) and no error.
func (d *Document) FindFirst(expr string, ns Namespaces) (Node, error) {
	return firstOf(d.Find(expr, ns))
}

// Evaluate evaluates expr with n as the context node.
func (n Node) Evaluate(expr string, ns Namespaces) (XPathResult, error) {
	if !n.live() {
		return XPathResult{}, ErrDisposed
	}
	return evaluate(n.doc, n.ptr, expr, ns)
}

// Find returns the nodes selected by expr relative to n.
func (n Node) Find(expr string, ns Namespaces) ([]Node, error) {
	if !n.live() {
		return nil, ErrDisposed
	}
	return find(n.doc, n.ptr, expr, ns)
}

// FindFirst returns the first node selected by expr relative to n, or an
// absent Node when nothing matches.
func (n Node) FindFirst(expr string, ns Namespaces) (Node, error) {
	return firstOf(n.Find(expr, ns))
}
