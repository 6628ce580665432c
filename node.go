//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"runtime"

	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// NodeType identifies the kind of a Node.
type NodeType int

// Node types, matching libxml2's xmlElementType.
const (
	ElementNode      NodeType = libxml.ElementNode
	AttributeNode    NodeType = libxml.AttributeNode
	TextNode         NodeType = libxml.TextNode
	CDATASectionNode NodeType = libxml.CDATASectionNode
	PINode           NodeType = libxml.PINode
	CommentNode      NodeType = libxml.CommentNode
	DocumentNode     NodeType = libxml.DocumentNode
	DTDNode          NodeType = libxml.DTDNode
	NamespaceNode    NodeType = libxml.NamespaceDecl
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case AttributeNode:
		return "attribute"
	case TextNode:
		return "text"
	case CDATASectionNode:
		return "cdata"
	case PINode:
		return "processing-instruction"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	case DTDNode:
		return "dtd"
	case NamespaceNode:
		return "namespace"
	default:
		return "unknown"
	}
}

// Node is a node inside a Document. Nodes are owned by their document and
// are plain values; they need no Close. Once the document is closed every
// accessor returns its zero value.
type Node struct {
	doc *Document
	ptr uintptr
}

// IsNil reports whether n refers to no node, either because it was never
// set (a FindFirst miss) or because its document has been closed.
func (n Node) IsNil() bool {
	return !n.live()
}

func (n Node) live() bool {
	return n.ptr != 0 && n.doc != nil && !n.doc.Disposed()
}

func (n Node) wrap(p uintptr) Node {
	if p == 0 {
		return Node{}
	}
	return Node{doc: n.doc, ptr: p}
}

// Document returns the document n belongs to.
func (n Node) Document() *Document {
	return n.doc
}

// Type returns the node's type.
func (n Node) Type() NodeType {
	if !n.live() {
		return 0
	}
	defer runtime.KeepAlive(n.doc)
	return NodeType(libxml.NodeType(n.ptr))
}

// Name returns the node's name; for namespace nodes, the prefix.
func (n Node) Name() string {
	if !n.live() {
		return ""
	}
	defer runtime.KeepAlive(n.doc)
	return libxml.NodeName(n.ptr)
}

// Content returns the text content of the node and its descendants.
func (n Node) Content() string {
	if !n.live() {
		return ""
	}
	defer runtime.KeepAlive(n.doc)
	return libxml.Content(n.ptr)
}

// Attr returns the value of the named attribute and whether it is present.
func (n Node) Attr(name string) (string, bool) {
	if !n.live() {
		return "", false
	}
	defer runtime.KeepAlive(n.doc)
	return libxml.Prop(n.ptr, name)
}

// Line returns the source line the node was parsed from, or 0.
func (n Node) Line() int {
	if !n.live() {
		return 0
	}
	defer runtime.KeepAlive(n.doc)
	return libxml.Line(n.ptr)
}

// Parent returns the node's parent. The root element's parent is the
// document node.
func (n Node) Parent() Node {
	if !n.live() {
		return Node{}
	}
	defer runtime.KeepAlive(n.doc)
	return n.wrap(libxml.Parent(n.ptr))
}

// FirstChild returns the node's first child.
func (n Node) FirstChild() Node {
	if !n.live() {
		return Node{}
	}
	defer runtime.KeepAlive(n.doc)
	return n.wrap(libxml.FirstChild(n.ptr))
}

// NextSibling returns the node's next sibling.
func (n Node) NextSibling() Node {
	if !n.live() {
		return Node{}
	}
	defer runtime.KeepAlive(n.doc)
	return n.wrap(libxml.NextSibling(n.ptr))
}

// Children returns the node's children in document order.
func (n Node) Children() []Node {
	var out []Node
	for c := n.FirstChild(); !c.IsNil(); c = c.NextSibling() {
		out = append(out, c)
	}
	return out
}

// Equal reports whether n and other are the same node.
func (n Node) Equal(other Node) bool {
	return n.ptr == other.ptr && n.doc == other.doc
}

// String returns a short description of the node.
func (n Node) String() string {
	if !n.live() {
		return "<nil>"
	}
	return n.Type().String() + " " + n.Name()
}
