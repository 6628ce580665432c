//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"runtime"

	"github.com/obinnaokechukwu/xmlgo/lifecycle"
	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// ParseFlag mirrors libxml2's XML_PARSE_* options.
type ParseFlag int

const (
	ParseRecover    ParseFlag = 1 << 0  // Recover on errors
	ParseNoEnt      ParseFlag = 1 << 1  // Substitute entities
	ParseDTDLoad    ParseFlag = 1 << 2  // Load the external subset
	ParseDTDAttr    ParseFlag = 1 << 3  // Default DTD attributes
	ParseDTDValid   ParseFlag = 1 << 4  // Validate with the DTD
	ParseNoError    ParseFlag = 1 << 5  // Suppress error reports
	ParseNoWarning  ParseFlag = 1 << 6  // Suppress warning reports
	ParsePedantic   ParseFlag = 1 << 7  // Pedantic error reporting
	ParseNoBlanks   ParseFlag = 1 << 8  // Remove blank nodes
	ParseXInclude   ParseFlag = 1 << 10 // Implement XInclude substitution
	ParseNoNet      ParseFlag = 1 << 11 // Forbid network access
	ParseNoDict     ParseFlag = 1 << 12 // Do not reuse the context dictionary
	ParseNsClean    ParseFlag = 1 << 13 // Remove redundant namespace declarations
	ParseNoCDATA    ParseFlag = 1 << 14 // Merge CDATA as text nodes
	ParseNoXIncNode ParseFlag = 1 << 15 // Do not generate XInclude start/end nodes
	ParseCompact    ParseFlag = 1 << 16 // Compact small text nodes
	ParseHuge       ParseFlag = 1 << 19 // Relax hardcoded parser limits
	ParseBigLines   ParseFlag = 1 << 22 // Store line numbers above 65535
)

// ParseOptions configures parsing.
type ParseOptions struct {
	// URL is the document's base URL, used to resolve relative references
	// and in diagnostics.
	URL string

	Flags ParseFlag
}

// Document is a parsed XML document.
//
// A Document is not safe for concurrent use while it is being closed.
type Document struct {
	lifecycle.Object
	url   string
	flags ParseFlag
}

var documents = lifecycle.NewRegistry[Document]("Document", func(h lifecycle.Handle) {
	libxml.FreeDoc(uintptr(h))
})

func wrapDocument(h uintptr, url string, flags ParseFlag) *Document {
	return documents.Get(lifecycle.Handle(h), func() *Document {
		return &Document{url: url, flags: flags}
	})
}

// ParseString parses an XML document from a string.
func ParseString(s string, opts *ParseOptions) (*Document, error) {
	return ParseBytes([]byte(s), opts)
}

// ParseBytes parses an XML document from memory.
func ParseBytes(data []byte, opts *ParseOptions) (*Document, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &ParseOptions{}
	}
	h, err := libxml.ReadMemory(data, opts.URL, int(opts.Flags))
	if err != nil {
		return nil, err
	}
	return wrapDocument(h, opts.URL, opts.Flags), nil
}

// ParseFile parses the XML document at path. opts.URL is ignored; the path
// is the document's URL.
func ParseFile(path string, opts *ParseOptions) (*Document, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	var flags ParseFlag
	if opts != nil {
		flags = opts.Flags
	}
	h, err := libxml.ReadFile(path, int(flags))
	if err != nil {
		return nil, err
	}
	return wrapDocument(h, path, flags), nil
}

// handle returns the native document, or ErrDisposed.
func (d *Document) handle() (uintptr, error) {
	if d == nil {
		return 0, ErrDisposed
	}
	h := d.Handle()
	if h == 0 {
		return 0, ErrDisposed
	}
	return uintptr(h), nil
}

// URL returns the URL the document was parsed with.
func (d *Document) URL() string {
	return d.url
}

// Root returns the document element. A document without one yields
// ErrNoRoot.
func (d *Document) Root() (Node, error) {
	h, err := d.handle()
	if err != nil {
		return Node{}, err
	}
	defer runtime.KeepAlive(d)

	root := libxml.RootElement(h)
	if root == 0 {
		return Node{}, ErrNoRoot
	}
	return Node{doc: d, ptr: root}, nil
}

// Node returns the document node itself.
func (d *Document) Node() Node {
	h, err := d.handle()
	if err != nil {
		return Node{}
	}
	return Node{doc: d, ptr: h}
}

// InternalSubset returns the DTD declared inside the document, or nil.
// Repeated calls return the same *DTD. The DTD belongs to the document:
// closing it does not free it, and it becomes unusable once the document
// is closed.
func (d *Document) InternalSubset() *DTD {
	h, err := d.handle()
	if err != nil {
		return nil
	}
	defer runtime.KeepAlive(d)

	sub := libxml.IntSubset(h)
	if sub == 0 {
		return nil
	}
	return wrapAttachedDTD(sub, d)
}

// ProcessXInclude performs XInclude substitution using the document's parse
// flags and returns the number of substitutions made.
func (d *Document) ProcessXInclude() (int, error) {
	h, err := d.handle()
	if err != nil {
		return 0, err
	}
	defer runtime.KeepAlive(d)
	return libxml.XInclude(h, int(d.flags))
}

// Serialize returns the document as XML.
func (d *Document) Serialize() ([]byte, error) {
	h, err := d.handle()
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(d)
	return libxml.DumpMemory(h)
}

// String returns the serialized document, or "" if it cannot be serialized.
func (d *Document) String() string {
	b, err := d.Serialize()
	if err != nil {
		return ""
	}
	return string(b)
}

// Close releases the document. Its internal subset wrapper, if one was
// handed out, is closed first. Nodes obtained from the document become
// empty. Close is safe to call more than once.
func (d *Document) Close() error {
	if d == nil {
		return nil
	}
	if h := d.Handle(); h != 0 {
		if sub := libxml.IntSubset(uintptr(h)); sub != 0 {
			if dtd, ok := dtds.Peek(lifecycle.Handle(sub)); ok {
				dtds.Dispose(dtd)
			}
		}
	}
	documents.Dispose(d)
	return nil
}
