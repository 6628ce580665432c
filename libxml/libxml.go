//go:build !ios && !android && (amd64 || arm64)

// Package libxml provides low-level bindings to libxml2.
//
// Handles are plain uintptr values; this package never takes ownership of
// them. Ownership, identity and release are managed one level up by the
// lifecycle registries in package xmlgo.
package libxml

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
	"github.com/obinnaokechukwu/xmlgo/internal/platform"
)

// Struct offsets in this package assume 8-byte pointers; this fails to
// compile anywhere else.
var _ [platform.PointerSize - 8]struct{}

// Opaque libxml2 pointers.
type (
	Doc            = uintptr
	Node           = uintptr
	Dtd            = uintptr
	ParserCtxt     = uintptr
	XPathComp      = uintptr
	XPathCtxt      = uintptr
	XPathObject    = uintptr
	Schema         = uintptr
	SchemaParser   = uintptr
	SchemaValidCtx = uintptr
	ValidCtxt      = uintptr
	OutputBuffer   = uintptr
)

// Function bindings - registered by Load
var (
	xmlInitParser func()

	xmlNewParserCtxt  func() uintptr
	xmlFreeParserCtxt func(ctxt uintptr)
	xmlCtxtReadMemory func(ctxt uintptr, buf unsafe.Pointer, size int32, url unsafe.Pointer, encoding uintptr, options int32) uintptr
	xmlCtxtReadFile   func(ctxt uintptr, filename string, encoding uintptr, options int32) uintptr

	xmlFreeDoc           func(doc uintptr)
	xmlDocGetRootElement func(doc uintptr) uintptr
	xmlGetIntSubset      func(doc uintptr) uintptr
	xmlDocDumpMemory     func(doc uintptr, mem *uintptr, size *int32)
	xmlNodeGetContent    func(node uintptr) uintptr
	xmlGetProp           func(node uintptr, name string) uintptr
	xmlGetLineNo         func(node uintptr) int32

	xmlFreeDtd          func(dtd uintptr)
	xmlParseDTD         func(externalID uintptr, systemID string) uintptr
	xmlNewValidCtxt     func() uintptr
	xmlFreeValidCtxt    func(vctxt uintptr)
	xmlValidateDtd      func(vctxt, doc, dtd uintptr) int32
	xmlValidateDocument func(vctxt, doc uintptr) int32

	xmlSetStructuredErrorFunc func(ctx, handler uintptr)

	// Thread-local slots holding the current structured handler and its
	// context. Optional; absent from some builds.
	xmlStructuredErrorSlot        func() uintptr
	xmlStructuredErrorContextSlot func() uintptr
	xmlXIncludeProcessFlags   func(doc uintptr, flags int32) int32

	xmlXPathCompile      func(expr string) uintptr
	xmlXPathFreeCompExpr func(comp uintptr)
	xmlXPathNewContext   func(doc uintptr) uintptr
	xmlXPathFreeContext  func(ctx uintptr)
	xmlXPathRegisterNs   func(ctx uintptr, prefix, uri string) int32
	xmlXPathCompiledEval func(comp, ctx uintptr) uintptr
	xmlXPathFreeObject   func(obj uintptr)

	xmlSchemaNewMemParserCtxt          func(buf unsafe.Pointer, size int32) uintptr
	xmlSchemaNewDocParserCtxt          func(doc uintptr) uintptr
	xmlSchemaSetParserStructuredErrors func(ctxt, handler, ctx uintptr)
	xmlSchemaParse                     func(ctxt uintptr) uintptr
	xmlSchemaFreeParserCtxt            func(ctxt uintptr)
	xmlSchemaFree                      func(schema uintptr)
	xmlSchemaNewValidCtxt              func(schema uintptr) uintptr
	xmlSchemaSetValidStructuredErrors  func(ctxt, handler, ctx uintptr)
	xmlSchemaValidateDoc               func(vctxt, doc uintptr) int32
	xmlSchemaValidateOneElement        func(vctxt, elem uintptr) int32
	xmlSchemaFreeValidCtxt             func(vctxt uintptr)

	xmlC14NExecute            func(doc, isVisible, userData uintptr, mode int32, prefixes uintptr, withComments int32, buf uintptr) int32
	xmlAllocOutputBuffer      func(encoder uintptr) uintptr
	xmlOutputBufferGetContent func(out uintptr) uintptr
	xmlOutputBufferGetSize    func(out uintptr) uintptr
	xmlOutputBufferClose      func(out uintptr) int32
	xmlStrdup                 func(s string) uintptr

	// xmlFree and xmlMalloc are global function-pointer variables in
	// libxml2, not functions; these hold the pointers they contain.
	xmlFreeFn   uintptr
	xmlMallocFn uintptr
)

var (
	loadOnce sync.Once
	loadErr  error
)

// Load loads libxml2, registers every binding and initializes the parser.
// It is safe to call multiple times.
func Load() error {
	loadOnce.Do(func() {
		loadErr = registerBindings()
	})
	return loadErr
}

// IsLoaded reports whether Load succeeded.
func IsLoaded() bool {
	return bindings.IsLoaded() && loadErr == nil && xmlFreeFn != 0
}

func registerBindings() error {
	if err := bindings.Load(); err != nil {
		return err
	}
	lib := bindings.Lib()

	purego.RegisterLibFunc(&xmlInitParser, lib, "xmlInitParser")

	purego.RegisterLibFunc(&xmlNewParserCtxt, lib, "xmlNewParserCtxt")
	purego.RegisterLibFunc(&xmlFreeParserCtxt, lib, "xmlFreeParserCtxt")
	purego.RegisterLibFunc(&xmlCtxtReadMemory, lib, "xmlCtxtReadMemory")
	purego.RegisterLibFunc(&xmlCtxtReadFile, lib, "xmlCtxtReadFile")

	purego.RegisterLibFunc(&xmlFreeDoc, lib, "xmlFreeDoc")
	purego.RegisterLibFunc(&xmlDocGetRootElement, lib, "xmlDocGetRootElement")
	purego.RegisterLibFunc(&xmlGetIntSubset, lib, "xmlGetIntSubset")
	purego.RegisterLibFunc(&xmlDocDumpMemory, lib, "xmlDocDumpMemory")
	purego.RegisterLibFunc(&xmlNodeGetContent, lib, "xmlNodeGetContent")
	purego.RegisterLibFunc(&xmlGetProp, lib, "xmlGetProp")
	purego.RegisterLibFunc(&xmlGetLineNo, lib, "xmlGetLineNo")

	purego.RegisterLibFunc(&xmlFreeDtd, lib, "xmlFreeDtd")
	purego.RegisterLibFunc(&xmlParseDTD, lib, "xmlParseDTD")
	purego.RegisterLibFunc(&xmlNewValidCtxt, lib, "xmlNewValidCtxt")
	purego.RegisterLibFunc(&xmlFreeValidCtxt, lib, "xmlFreeValidCtxt")
	purego.RegisterLibFunc(&xmlValidateDtd, lib, "xmlValidateDtd")
	purego.RegisterLibFunc(&xmlValidateDocument, lib, "xmlValidateDocument")

	purego.RegisterLibFunc(&xmlSetStructuredErrorFunc, lib, "xmlSetStructuredErrorFunc")
	if sym, err := purego.Dlsym(lib, "__xmlStructuredError"); err == nil {
		purego.RegisterFunc(&xmlStructuredErrorSlot, sym)
	}
	if sym, err := purego.Dlsym(lib, "__xmlStructuredErrorContext"); err == nil {
		purego.RegisterFunc(&xmlStructuredErrorContextSlot, sym)
	}
	purego.RegisterLibFunc(&xmlXIncludeProcessFlags, lib, "xmlXIncludeProcessFlags")

	purego.RegisterLibFunc(&xmlXPathCompile, lib, "xmlXPathCompile")
	purego.RegisterLibFunc(&xmlXPathFreeCompExpr, lib, "xmlXPathFreeCompExpr")
	purego.RegisterLibFunc(&xmlXPathNewContext, lib, "xmlXPathNewContext")
	purego.RegisterLibFunc(&xmlXPathFreeContext, lib, "xmlXPathFreeContext")
	purego.RegisterLibFunc(&xmlXPathRegisterNs, lib, "xmlXPathRegisterNs")
	purego.RegisterLibFunc(&xmlXPathCompiledEval, lib, "xmlXPathCompiledEval")
	purego.RegisterLibFunc(&xmlXPathFreeObject, lib, "xmlXPathFreeObject")

	purego.RegisterLibFunc(&xmlSchemaNewMemParserCtxt, lib, "xmlSchemaNewMemParserCtxt")
	purego.RegisterLibFunc(&xmlSchemaNewDocParserCtxt, lib, "xmlSchemaNewDocParserCtxt")
	purego.RegisterLibFunc(&xmlSchemaSetParserStructuredErrors, lib, "xmlSchemaSetParserStructuredErrors")
	purego.RegisterLibFunc(&xmlSchemaParse, lib, "xmlSchemaParse")
	purego.RegisterLibFunc(&xmlSchemaFreeParserCtxt, lib, "xmlSchemaFreeParserCtxt")
	purego.RegisterLibFunc(&xmlSchemaFree, lib, "xmlSchemaFree")
	purego.RegisterLibFunc(&xmlSchemaNewValidCtxt, lib, "xmlSchemaNewValidCtxt")
	purego.RegisterLibFunc(&xmlSchemaSetValidStructuredErrors, lib, "xmlSchemaSetValidStructuredErrors")
	purego.RegisterLibFunc(&xmlSchemaValidateDoc, lib, "xmlSchemaValidateDoc")
	purego.RegisterLibFunc(&xmlSchemaValidateOneElement, lib, "xmlSchemaValidateOneElement")
	purego.RegisterLibFunc(&xmlSchemaFreeValidCtxt, lib, "xmlSchemaFreeValidCtxt")

	purego.RegisterLibFunc(&xmlC14NExecute, lib, "xmlC14NExecute")
	purego.RegisterLibFunc(&xmlAllocOutputBuffer, lib, "xmlAllocOutputBuffer")
	purego.RegisterLibFunc(&xmlOutputBufferGetContent, lib, "xmlOutputBufferGetContent")
	purego.RegisterLibFunc(&xmlOutputBufferGetSize, lib, "xmlOutputBufferGetSize")
	purego.RegisterLibFunc(&xmlOutputBufferClose, lib, "xmlOutputBufferClose")
	purego.RegisterLibFunc(&xmlStrdup, lib, "xmlStrdup")

	freeVar, err := bindings.Symbol("xmlFree")
	if err != nil {
		return err
	}
	mallocVar, err := bindings.Symbol("xmlMalloc")
	if err != nil {
		return err
	}
	xmlFreeFn = *(*uintptr)(unsafe.Pointer(freeVar))
	xmlMallocFn = *(*uintptr)(unsafe.Pointer(mallocVar))

	xmlInitParser()
	return nil
}

// Version returns the libxml2 version string, e.g. "21207".
func Version() string {
	sym, err := bindings.Symbol("xmlParserVersion")
	if err != nil {
		return ""
	}
	return GoString(*(*uintptr)(unsafe.Pointer(sym)))
}
