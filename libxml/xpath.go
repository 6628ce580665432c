//go:build !ios && !android && (amd64 || arm64)

package libxml

import (
	"unsafe"

	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
)

// XPath result kinds (xmlXPathObjectType).
const (
	XPathUndefined = 0
	XPathNodeSet   = 1
	XPathBoolean   = 2
	XPathNumber    = 3
	XPathString    = 4
)

// xmlXPathObject, xmlNodeSet and xmlXPathContext offsets (64-bit).
const (
	xpoType    = 0
	xpoNodeSet = 8
	xpoBool    = 16
	xpoFloat   = 24
	xpoString  = 32
	nsNodeNr   = 0
	nsNodeTab  = 8
	xpcNode    = 8
)

// XPathValue is a Go copy of an xmlXPathObject.
type XPathValue struct {
	Type   int
	Nodes  []Node
	String string
	Number float64
	Bool   bool
}

// CompileXPath compiles expr.
func CompileXPath(expr string) (XPathComp, error) {
	if xmlXPathCompile == nil {
		return 0, bindings.ErrNotLoaded
	}
	var comp uintptr
	err := Guard("compile xpath "+expr, func() bool {
		comp = xmlXPathCompile(expr)
		return comp != 0
	})
	return comp, err
}

// FreeXPath frees a compiled expression.
func FreeXPath(comp XPathComp) {
	if comp == 0 || xmlXPathFreeCompExpr == nil {
		return
	}
	xmlXPathFreeCompExpr(comp)
}

// EvalXPath evaluates comp against doc with node as the context node (0 for
// the document). ns maps prefixes to namespace URIs.
//
// Namespace nodes in a node-set result are copies owned by the result object
// and are dropped, since they do not outlive the evaluation.
func EvalXPath(doc Doc, node Node, comp XPathComp, ns map[string]string) (XPathValue, error) {
	if xmlXPathCompiledEval == nil {
		return XPathValue{}, bindings.ErrNotLoaded
	}

	alloc := func() uintptr { return xmlXPathNewContext(doc) }

	var val XPathValue
	err := GuardContext("evaluate xpath", alloc, xmlXPathFreeContext, func(ctx uintptr) bool {
		for prefix, uri := range ns {
			if xmlXPathRegisterNs(ctx, prefix, uri) != 0 {
				return false
			}
		}
		// xmlXPathNewContext leaves the context node NULL.
		if node == 0 {
			node = doc
		}
		*(*uintptr)(unsafe.Pointer(ctx + xpcNode)) = node

		obj := xmlXPathCompiledEval(comp, ctx)
		if obj == 0 {
			return false
		}
		defer xmlXPathFreeObject(obj)
		val = readXPathObject(obj)
		return true
	})
	return val, err
}

func readXPathObject(obj uintptr) XPathValue {
	v := XPathValue{Type: int(readInt32(obj, xpoType))}
	switch v.Type {
	case XPathNodeSet:
		v.Nodes = readNodeSet(readPtr(obj, xpoNodeSet))
	case XPathBoolean:
		v.Bool = readInt32(obj, xpoBool) != 0
	case XPathNumber:
		v.Number = readFloat64(obj, xpoFloat)
	case XPathString:
		v.String = GoString(readPtr(obj, xpoString))
	}
	return v
}

func readNodeSet(set uintptr) []Node {
	if set == 0 {
		return nil
	}
	n := int(readInt32(set, nsNodeNr))
	tab := readPtr(set, nsNodeTab)
	if n <= 0 || tab == 0 {
		return nil
	}
	nodes := make([]Node, 0, n)
	for _, p := range unsafe.Slice((*uintptr)(unsafe.Pointer(tab)), n) {
		if p == 0 || NodeType(p) == NamespaceDecl {
			continue
		}
		nodes = append(nodes, p)
	}
	return nodes
}
