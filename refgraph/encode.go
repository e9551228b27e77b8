package refgraph

import (
	"reflect"
	"strconv"
	"strings"
)

// Encode writes the graph rooted at v. typ is the declared record type,
// either T or *T; v must be a non-nil *T.
func (c *Codec) Encode(v any, typ reflect.Type) (string, error) {
	declared := recordType(typ)
	if declared == nil {
		return "", &TypeMismatchError{Declared: typ, Actual: reflect.TypeOf(v)}
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != reflect.PointerTo(declared) {
		return "", &TypeMismatchError{Declared: declared, Actual: reflect.TypeOf(v)}
	}
	if rv.IsNil() {
		return "", ErrNilRecord
	}

	e := &encoder{codec: c, refs: newRefTable()}
	if err := e.encodeRecord(rv, 0); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

type encoder struct {
	codec *Codec
	refs  *refTable
	sb    strings.Builder
}

// encodeRecord writes {field,...} for the non-nil record pointer ptr.
func (e *encoder) encodeRecord(ptr reflect.Value, depth int) error {
	if depth >= e.codec.maxDepth {
		return ErrTooDeep
	}

	typ := ptr.Type().Elem()
	schema, err := schemaOf(typ, e.codec.tagName)
	if err != nil {
		return err
	}

	e.refs.register(ptr)
	rec := ptr.Elem()
	tr := e.codec.tracer

	for _, sf := range schema.Skipped {
		tr.FieldSkipped(typ, sf.GoName, sf.Reason)
	}

	e.sb.WriteByte(recordOpen)
	first := true
	for i := range schema.Fields {
		f := &schema.Fields[i]
		if !f.Accessible {
			tr.FieldSkipped(typ, f.Name, "inaccessible")
			continue
		}
		if f.IsAbsent(rec) {
			tr.FieldSkipped(typ, f.Name, "absent")
			continue
		}

		if !first {
			e.sb.WriteByte(fieldSep)
		}
		first = false
		e.sb.WriteString(f.Name)
		e.sb.WriteByte(nameSep)

		fv := rec.Field(f.Index)
		if f.Kind == KindRecord {
			// Named pointer types are walked as plain *T.
			fv = fv.Convert(reflect.PointerTo(f.Record))
			if pos, ok := e.refs.lookup(fv); ok {
				tr.BackReference(typ, f.Name, pos)
				e.writeBackref(pos)
				continue
			}
			tr.FieldEncoded(typ, f.Name, f.Kind)
			if err := e.encodeRecord(fv, depth+1); err != nil {
				return fieldPath(err, typ, f.Name)
			}
			continue
		}

		if f.Optional {
			fv = fv.Elem()
		}
		lit, err := encodeLeaf(fv, f.Kind)
		if err != nil {
			return fieldPath(err, typ, f.Name)
		}
		tr.FieldEncoded(typ, f.Name, f.Kind)
		e.sb.WriteString(lit)
	}
	e.sb.WriteByte(recordClose)
	return nil
}

func (e *encoder) writeBackref(pos int) {
	e.sb.WriteByte(backrefDelim)
	e.sb.WriteString(strconv.Itoa(pos))
	e.sb.WriteByte(backrefDelim)
}
