//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"errors"
	"runtime"

	"github.com/obinnaokechukwu/xmlgo/lifecycle"
	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// Schema is a compiled W3C XML Schema.
type Schema struct {
	lifecycle.Object
}

var schemas = lifecycle.NewRegistry[Schema]("Schema", func(h lifecycle.Handle) {
	libxml.FreeSchema(uintptr(h))
})

func wrapSchema(h uintptr) *Schema {
	return schemas.Get(lifecycle.Handle(h), func() *Schema { return &Schema{} })
}

// CompileSchema compiles an XML Schema from its source.
func CompileSchema(data []byte) (*Schema, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	h, err := libxml.ParseSchemaMemory(data)
	if err != nil {
		return nil, err
	}
	return wrapSchema(h), nil
}

// CompileSchemaDocument compiles an XML Schema from a parsed document. The
// document may be closed once this returns.
func CompileSchemaDocument(doc *Document) (*Schema, error) {
	h, err := doc.handle()
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(doc)

	s, err := libxml.ParseSchemaDoc(h)
	if err != nil {
		return nil, err
	}
	return wrapSchema(s), nil
}

// CompileSchemaFile compiles the XML Schema at path. Relative includes and
// imports are resolved against path.
func CompileSchemaFile(path string) (*Schema, error) {
	doc, err := ParseFile(path, &ParseOptions{Flags: ParseNoNet})
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return CompileSchemaDocument(doc)
}

// NewValidator creates a validator for s.
func (s *Schema) NewValidator() (*Validator, error) {
	return NewValidator(s)
}

// Validate validates doc against s.
func (s *Schema) Validate(doc *Document) error {
	v, err := s.NewValidator()
	if err != nil {
		return err
	}
	defer v.Close()
	return v.Validate(DocumentTarget(doc))
}

// Close releases the schema. Validators created from it fail with
// ErrDisposed afterwards. Close is safe to call more than once.
func (s *Schema) Close() error {
	schemas.Dispose(s)
	return nil
}

// TargetKind distinguishes what a Target validates.
type TargetKind int

const (
	TargetDocument TargetKind = iota + 1
	TargetElement
)

// Target is what a Validator validates: a whole document or a single
// element subtree. Build one with DocumentTarget or ElementTarget.
type Target struct {
	kind TargetKind
	doc  *Document
	node Node
}

// DocumentTarget validates the whole of doc.
func DocumentTarget(doc *Document) Target {
	return Target{kind: TargetDocument, doc: doc}
}

// ElementTarget validates the subtree rooted at elem.
func ElementTarget(elem Node) Target {
	return Target{kind: TargetElement, doc: elem.doc, node: elem}
}

// Kind returns the target's kind.
func (t Target) Kind() TargetKind {
	return t.kind
}

var errInvalidTarget = errors.New("xmlgo: invalid validation target")

// Validator validates documents or elements against a Schema. A Validator
// is not safe for concurrent use; create one per goroutine.
type Validator struct {
	lifecycle.Object
	schema *Schema
}

var validators = lifecycle.NewRegistry[Validator]("Validator", func(h lifecycle.Handle) {
	libxml.FreeSchemaValidCtxt(uintptr(h))
})

// NewValidator creates a validator for s. The validator keeps s reachable.
func NewValidator(s *Schema) (*Validator, error) {
	if s == nil || s.Disposed() {
		return nil, ErrDisposed
	}
	defer runtime.KeepAlive(s)

	h, err := libxml.NewSchemaValidCtxt(uintptr(s.Handle()))
	if err != nil {
		return nil, err
	}
	return validators.Get(lifecycle.Handle(h), func() *Validator {
		return &Validator{schema: s}
	}), nil
}

// Schema returns the schema v validates against.
func (v *Validator) Schema() *Schema {
	return v.schema
}

// Validate validates t. A validation failure is a *StructuredError listing
// every violation.
func (v *Validator) Validate(t Target) error {
	if v == nil || v.Disposed() || v.schema.Disposed() {
		return ErrDisposed
	}
	defer runtime.KeepAlive(v)

	switch t.kind {
	case TargetDocument:
		h, err := t.doc.handle()
		if err != nil {
			return err
		}
		defer runtime.KeepAlive(t.doc)
		return libxml.ValidateDoc(uintptr(v.Handle()), h)

	case TargetElement:
		if !t.node.live() {
			return ErrDisposed
		}
		if t.node.Type() != ElementNode {
			return errInvalidTarget
		}
		defer runtime.KeepAlive(t.doc)
		return libxml.ValidateElement(uintptr(v.Handle()), t.node.ptr)

	default:
		return errInvalidTarget
	}
}

// Close releases the validator. It is safe to call more than once.
func (v *Validator) Close() error {
	validators.Dispose(v)
	return nil
}
