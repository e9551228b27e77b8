package refgraph

import (
	"context"
	"log/slog"
	"reflect"
)

// Tracer observes a codec at work. Implementations must not affect the
// result; they only see what the codec does.
type Tracer interface {
	// FieldEncoded is called for every field written during encode.
	FieldEncoded(typ reflect.Type, field string, kind Kind)

	// FieldSkipped is called for fields left out of the output, and for
	// fields a decode could not write.
	FieldSkipped(typ reflect.Type, field string, reason string)

	// SpanRead is called for every raw span split out of a record body.
	SpanRead(typ reflect.Type, raw string)

	// BackReference is called when a field is written or read as ~pos~.
	BackReference(typ reflect.Type, field string, pos int)
}

type nopTracer struct{}

func (nopTracer) FieldEncoded(reflect.Type, string, Kind)   {}
func (nopTracer) FieldSkipped(reflect.Type, string, string) {}
func (nopTracer) SpanRead(reflect.Type, string)             {}
func (nopTracer) BackReference(reflect.Type, string, int)   {}

// LogTracer writes one debug record per event to a slog.Logger.
type LogTracer struct {
	logger *slog.Logger
}

// NewLogTracer returns a tracer logging to logger. A nil logger uses
// slog.Default().
func NewLogTracer(logger *slog.Logger) *LogTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTracer{logger: logger}
}

func (t *LogTracer) FieldEncoded(typ reflect.Type, field string, kind Kind) {
	t.logger.LogAttrs(context.Background(), slog.LevelDebug, "encode field",
		slog.String("type", typ.String()),
		slog.String("field", field),
		slog.String("kind", kind.String()))
}

func (t *LogTracer) FieldSkipped(typ reflect.Type, field string, reason string) {
	t.logger.LogAttrs(context.Background(), slog.LevelDebug, "skip field",
		slog.String("type", typ.String()),
		slog.String("field", field),
		slog.String("reason", reason))
}

func (t *LogTracer) SpanRead(typ reflect.Type, raw string) {
	t.logger.LogAttrs(context.Background(), slog.LevelDebug, "read span",
		slog.String("type", typ.String()),
		slog.String("span", raw))
}

func (t *LogTracer) BackReference(typ reflect.Type, field string, pos int) {
	t.logger.LogAttrs(context.Background(), slog.LevelDebug, "back-reference",
		slog.String("type", typ.String()),
		slog.String("field", field),
		slog.Int("ref", pos))
}
