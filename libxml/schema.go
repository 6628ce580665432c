//go:build !ios && !android && (amd64 || arm64)

package libxml

import (
	"runtime"
	"unsafe"

	"fortio.org/safecast"

	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
)

// ParseSchemaMemory compiles an XML Schema from data. Diagnostics are
// collected through the parser context's own structured handler.
func ParseSchemaMemory(data []byte) (Schema, error) {
	if xmlSchemaNewMemParserCtxt == nil {
		return 0, bindings.ErrNotLoaded
	}
	size, err := safecast.Conv[int32](len(data))
	if err != nil {
		return 0, err
	}

	var buf unsafe.Pointer
	if len(data) > 0 {
		buf = unsafe.Pointer(&data[0])
	}
	alloc := func() uintptr { return xmlSchemaNewMemParserCtxt(buf, size) }

	var schema uintptr
	err = CollectContext("compile schema", alloc, xmlSchemaFreeParserCtxt, func(ctxt, token uintptr) bool {
		schema = parseSchema(ctxt, token)
		return schema != 0
	})
	runtime.KeepAlive(data)
	return schema, err
}

// ParseSchemaDoc compiles an XML Schema from an already parsed document.
func ParseSchemaDoc(doc Doc) (Schema, error) {
	if xmlSchemaNewDocParserCtxt == nil {
		return 0, bindings.ErrNotLoaded
	}

	alloc := func() uintptr { return xmlSchemaNewDocParserCtxt(doc) }

	var schema uintptr
	err := CollectContext("compile schema", alloc, xmlSchemaFreeParserCtxt, func(ctxt, token uintptr) bool {
		schema = parseSchema(ctxt, token)
		return schema != 0
	})
	return schema, err
}

func parseSchema(ctxt, token uintptr) uintptr {
	xmlSchemaSetParserStructuredErrors(ctxt, ErrorHandler(), token)
	return xmlSchemaParse(ctxt)
}

// FreeSchema frees a compiled schema.
func FreeSchema(schema Schema) {
	if schema == 0 || xmlSchemaFree == nil {
		return
	}
	xmlSchemaFree(schema)
}

// NewSchemaValidCtxt creates a validation context for schema.
func NewSchemaValidCtxt(schema Schema) (SchemaValidCtx, error) {
	if xmlSchemaNewValidCtxt == nil {
		return 0, bindings.ErrNotLoaded
	}
	var vctxt uintptr
	err := Guard("create schema validator", func() bool {
		vctxt = xmlSchemaNewValidCtxt(schema)
		return vctxt != 0
	})
	return vctxt, err
}

// FreeSchemaValidCtxt frees a validation context.
func FreeSchemaValidCtxt(vctxt SchemaValidCtx) {
	if vctxt == 0 || xmlSchemaFreeValidCtxt == nil {
		return
	}
	xmlSchemaFreeValidCtxt(vctxt)
}

// ValidateDoc validates doc against the context's schema.
func ValidateDoc(vctxt SchemaValidCtx, doc Doc) error {
	return validate(vctxt, "validate document", func() int32 {
		return xmlSchemaValidateDoc(vctxt, doc)
	})
}

// ValidateElement validates the subtree rooted at elem.
func ValidateElement(vctxt SchemaValidCtx, elem Node) error {
	return validate(vctxt, "validate element", func() int32 {
		return xmlSchemaValidateOneElement(vctxt, elem)
	})
}

// validate runs one validation call. The handler is detached afterwards so
// a freed token is never reachable from the context.
func validate(vctxt uintptr, op string, call func() int32) error {
	if xmlSchemaSetValidStructuredErrors == nil {
		return bindings.ErrNotLoaded
	}
	return Collect(op, func(token uintptr) bool {
		xmlSchemaSetValidStructuredErrors(vctxt, ErrorHandler(), token)
		defer xmlSchemaSetValidStructuredErrors(vctxt, 0, 0)
		return call() == 0
	})
}
