package refgraph

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNilRecord is returned when the top-level value passed to Encode is nil.
	ErrNilRecord = errors.New("refgraph: nil record")

	// ErrTooDeep is returned when a graph nests deeper than the codec's
	// maximum depth.
	ErrTooDeep = errors.New("refgraph: graph too deep")
)

// TypeMismatchError reports a value whose runtime type is not the
// declared record type.
type TypeMismatchError struct {
	Declared reflect.Type
	Actual   reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("refgraph: value of type %v is not of declared type %v", e.Actual, e.Declared)
}

// NoDefaultConstructorError reports a decode target that cannot be
// allocated as an empty record.
type NoDefaultConstructorError struct {
	Type reflect.Type
}

func (e *NoDefaultConstructorError) Error() string {
	return fmt.Sprintf("refgraph: type %v has no empty constructor", e.Type)
}

// UnknownFieldError reports an encoded field name with no declared field.
type UnknownFieldError struct {
	Type reflect.Type
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("refgraph: type %v has no field %q", e.Type, e.Name)
}

// LeafFormatError reports a leaf literal that does not parse as its kind.
type LeafFormatError struct {
	Kind Kind
	Text string
	Err  error
}

func (e *LeafFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("refgraph: invalid %s literal %q: %v", e.Kind, e.Text, e.Err)
	}
	return fmt.Sprintf("refgraph: invalid %s literal %q", e.Kind, e.Text)
}

func (e *LeafFormatError) Unwrap() error { return e.Err }

// AccessOp says whether a field was being read or written.
type AccessOp uint8

const (
	AccessRead AccessOp = iota
	AccessWrite
)

func (op AccessOp) String() string {
	if op == AccessWrite {
		return "write"
	}
	return "read"
}

// FieldAccessError reports a field the codec is not allowed to read or
// write. On encode the field is skipped. On decode it is collected as a
// warning, or returned as a fatal error when the codec is strict.
type FieldAccessError struct {
	Type  reflect.Type
	Field string
	Op    AccessOp
}

func (e *FieldAccessError) Error() string {
	return fmt.Sprintf("refgraph: cannot %s field %s of %v", e.Op, e.Field, e.Type)
}

// SyntaxError reports malformed encoded text.
type SyntaxError struct {
	Reason string
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("refgraph: %s at offset %d", e.Reason, e.Offset)
}

// ReferenceError reports a back-reference that points outside the
// reference table or at a record of the wrong type.
type ReferenceError struct {
	Index int
	Want  reflect.Type
	Got   reflect.Type // nil when the index is out of range
}

func (e *ReferenceError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("refgraph: back-reference ~%d~ does not exist", e.Index)
	}
	return fmt.Sprintf("refgraph: back-reference ~%d~ is %v, want %v", e.Index, e.Got, e.Want)
}

// Unwrap exposes the type disagreement as a TypeMismatchError.
func (e *ReferenceError) Unwrap() error {
	if e.Got == nil {
		return nil
	}
	return &TypeMismatchError{Declared: e.Want, Actual: e.Got}
}

// SchemaError reports a struct declaration the codec cannot describe.
type SchemaError struct {
	Type   reflect.Type
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("refgraph: type %v: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("refgraph: field %s of %v: %s", e.Field, e.Type, e.Reason)
}

// ReservedRuneError reports text that already contains the quote
// sentinel and so cannot be encoded losslessly.
type ReservedRuneError struct {
	Text string
}

func (e *ReservedRuneError) Error() string {
	return fmt.Sprintf("refgraph: text %q contains reserved rune %U", e.Text, quoteSentinel)
}

// fieldPath prefixes err with the type and field being processed. The
// typed error stays reachable through errors.As.
func fieldPath(err error, typ reflect.Type, field string) error {
	return fmt.Errorf("%s.%s: %w", typ.Name(), field, err)
}
