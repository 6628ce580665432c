//go:build !ios && !android && (amd64 || arm64)

package libxml

import (
	"unsafe"

	"fortio.org/safecast"

	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
)

// Node types (xmlElementType).
const (
	ElementNode      = 1
	AttributeNode    = 2
	TextNode         = 3
	CDATASectionNode = 4
	PINode           = 7
	CommentNode      = 8
	DocumentNode     = 9
	DTDNode          = 14
	NamespaceDecl    = 18
)

// xmlNode field offsets (64-bit). xmlDoc and xmlDtd share the leading
// layout up to doc.
const (
	nodeType     = 8
	nodeName     = 16
	nodeChildren = 24
	nodeParent   = 40
	nodeNext     = 48
	nodeDoc      = 64
	nsPrefix     = 24
)

// isNamespace reports whether p is an xmlNs rather than an xmlNode. The two
// share only the type field, so structural accessors must not read past it.
func isNamespace(p uintptr) bool {
	return readInt32(p, nodeType) == NamespaceDecl
}

// cString returns a NUL-terminated copy of s, or nil for "" so that optional
// arguments reach native code as NULL.
func cString(s string) unsafe.Pointer {
	if s == "" {
		return nil
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return unsafe.Pointer(&b[0])
}

// ReadMemory parses data into a new document. url is used for resolving
// relative references and in diagnostics; it may be empty.
func ReadMemory(data []byte, url string, options int) (Doc, error) {
	if xmlCtxtReadMemory == nil {
		return 0, bindings.ErrNotLoaded
	}
	size, err := safecast.Conv[int32](len(data))
	if err != nil {
		return 0, err
	}
	opts, err := safecast.Conv[int32](options)
	if err != nil {
		return 0, err
	}

	var doc uintptr
	err = GuardContext("parse", xmlNewParserCtxt, xmlFreeParserCtxt, func(ctxt uintptr) bool {
		var buf unsafe.Pointer
		if len(data) > 0 {
			buf = unsafe.Pointer(&data[0])
		}
		doc = xmlCtxtReadMemory(ctxt, buf, size, cString(url), 0, opts)
		return doc != 0
	})
	return doc, err
}

// ReadFile parses the file at filename into a new document.
func ReadFile(filename string, options int) (Doc, error) {
	if xmlCtxtReadFile == nil {
		return 0, bindings.ErrNotLoaded
	}
	opts, err := safecast.Conv[int32](options)
	if err != nil {
		return 0, err
	}

	var doc uintptr
	err = GuardContext("parse "+filename, xmlNewParserCtxt, xmlFreeParserCtxt, func(ctxt uintptr) bool {
		doc = xmlCtxtReadFile(ctxt, filename, 0, opts)
		return doc != 0
	})
	return doc, err
}

// FreeDoc frees doc and everything it owns, including its internal subset.
func FreeDoc(doc Doc) {
	if doc == 0 || xmlFreeDoc == nil {
		return
	}
	xmlFreeDoc(doc)
}

// RootElement returns the document element, or 0.
func RootElement(doc Doc) Node {
	if doc == 0 || xmlDocGetRootElement == nil {
		return 0
	}
	return xmlDocGetRootElement(doc)
}

// IntSubset returns the document's internal DTD, or 0.
func IntSubset(doc Doc) Dtd {
	if doc == 0 || xmlGetIntSubset == nil {
		return 0
	}
	return xmlGetIntSubset(doc)
}

// DumpMemory serializes doc.
func DumpMemory(doc Doc) ([]byte, error) {
	if xmlDocDumpMemory == nil {
		return nil, bindings.ErrNotLoaded
	}
	var mem uintptr
	var size int32
	xmlDocDumpMemory(doc, &mem, &size)
	if mem == 0 {
		return nil, &OpError{Op: "serialize"}
	}
	defer Free(mem)
	return GoBytes(mem, int(size)), nil
}

// XInclude performs XInclude substitution and returns the number of
// substitutions made.
func XInclude(doc Doc, options int) (int, error) {
	if xmlXIncludeProcessFlags == nil {
		return 0, bindings.ErrNotLoaded
	}
	opts, err := safecast.Conv[int32](options)
	if err != nil {
		return 0, err
	}
	var n int32
	err = Guard("xinclude", func() bool {
		n = xmlXIncludeProcessFlags(doc, opts)
		return n >= 0
	})
	return int(n), err
}

// NodeType returns node's xmlElementType.
func NodeType(node Node) int {
	if node == 0 {
		return 0
	}
	return int(readInt32(node, nodeType))
}

// NodeName returns node's name, or the prefix of a namespace node.
func NodeName(node Node) string {
	if node == 0 {
		return ""
	}
	if isNamespace(node) {
		return GoString(readPtr(node, nsPrefix))
	}
	return GoString(readPtr(node, nodeName))
}

// Parent returns node's parent, or 0. Namespace nodes report no parent;
// their element is the parent argument of the callback that saw them.
func Parent(node Node) Node {
	if node == 0 || isNamespace(node) {
		return 0
	}
	return readPtr(node, nodeParent)
}

// FirstChild returns node's first child, or 0.
func FirstChild(node Node) Node {
	if node == 0 || isNamespace(node) {
		return 0
	}
	return readPtr(node, nodeChildren)
}

// NextSibling returns node's next sibling, or 0.
func NextSibling(node Node) Node {
	if node == 0 || isNamespace(node) {
		return 0
	}
	return readPtr(node, nodeNext)
}

// OwnerDoc returns the document node belongs to.
func OwnerDoc(node Node) Doc {
	if node == 0 || isNamespace(node) {
		return 0
	}
	return readPtr(node, nodeDoc)
}

// Content returns the text content of node and its descendants.
func Content(node Node) string {
	if node == 0 || isNamespace(node) || xmlNodeGetContent == nil {
		return ""
	}
	return takeString(xmlNodeGetContent(node))
}

// Prop returns the value of node's attribute name and whether it is set.
func Prop(node Node, name string) (string, bool) {
	if node == 0 || isNamespace(node) || xmlGetProp == nil {
		return "", false
	}
	p := xmlGetProp(node, name)
	if p == 0 {
		return "", false
	}
	return takeString(p), true
}

// Line returns the source line node was parsed from, or 0.
func Line(node Node) int {
	if node == 0 || isNamespace(node) || xmlGetLineNo == nil {
		return 0
	}
	n := xmlGetLineNo(node)
	if n < 0 {
		return 0
	}
	return int(n)
}
