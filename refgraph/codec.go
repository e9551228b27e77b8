package refgraph

import (
	"log/slog"
	"reflect"
)

// DefaultMaxDepth bounds record nesting for codecs built without
// WithMaxDepth.
const DefaultMaxDepth = 10000

// Codec encodes and decodes record graphs. A Codec is immutable once
// built and may be shared between goroutines; every call owns its own
// reference table.
type Codec struct {
	tracer   Tracer
	strict   bool
	tagName  string
	maxDepth int
}

// Option configures a Codec.
type Option func(*Codec)

// WithTracer reports every field and span the codec visits to t.
func WithTracer(t Tracer) Option {
	return func(c *Codec) {
		c.tracer = t
	}
}

// WithLogger traces through logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		c.tracer = NewLogTracer(logger)
	}
}

// WithStrictAccess makes a denied field write a fatal decode error
// instead of a warning.
func WithStrictAccess() Option {
	return func(c *Codec) {
		c.strict = true
	}
}

// WithTagName sets the struct tag key used to rename or exclude fields.
func WithTagName(name string) Option {
	return func(c *Codec) {
		c.tagName = name
	}
}

// WithMaxDepth sets the maximum record nesting depth. Values below 1
// select DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(c *Codec) {
		if depth <= 0 {
			depth = DefaultMaxDepth
		}
		c.maxDepth = depth
	}
}

// New returns a Codec configured by opts.
func New(opts ...Option) *Codec {
	c := &Codec{
		tracer:   nopTracer{},
		tagName:  DefaultTagName,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = nopTracer{}
	}
	return c
}

var defaultCodec = New()

// TypeOf returns the record type descriptor for T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Marshal encodes the graph rooted at v with the default codec.
func Marshal[T any](v *T) (string, error) {
	return defaultCodec.Encode(v, TypeOf[T]())
}

// Unmarshal decodes text into a new graph rooted at a *T with the
// default codec.
func Unmarshal[T any](text string) (*T, error) {
	v, err := defaultCodec.Decode(text, TypeOf[T]())
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// recordType normalizes a declared type to the struct type it names.
func recordType(typ reflect.Type) reflect.Type {
	if typ != nil && typ.Kind() == reflect.Pointer {
		return typ.Elem()
	}
	return typ
}
