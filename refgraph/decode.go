package refgraph

import (
	"reflect"
	"strconv"
)

// DecodeResult contains a decoded graph and the non-fatal problems met
// while building it.
type DecodeResult struct {
	Value any // *T

	// Warnings lists fields that could not be written and kept their
	// zero value. Always empty for strict codecs.
	Warnings []*FieldAccessError
}

// HasWarnings returns true if any field was left unwritten.
func (r *DecodeResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Decode builds a new graph from text and returns its root as a *T,
// where typ is T or *T.
func (c *Codec) Decode(text string, typ reflect.Type) (any, error) {
	res, err := c.DecodeWithReport(text, typ)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// DecodeWithReport is like Decode but also returns the fields that were
// skipped because they could not be written.
func (c *Codec) DecodeWithReport(text string, typ reflect.Type) (*DecodeResult, error) {
	declared := recordType(typ)
	if declared == nil || declared.Kind() != reflect.Struct {
		return nil, &NoDefaultConstructorError{Type: typ}
	}

	d := &decoder{codec: c, refs: newRefTable()}
	root, err := d.decodeRecord(text, 0, declared, 0)
	if err != nil {
		return nil, err
	}
	return &DecodeResult{Value: root.Interface(), Warnings: d.warnings}, nil
}

type decoder struct {
	codec    *Codec
	refs     *refTable
	warnings []*FieldAccessError
}

// decodeRecord builds a *typ from text, which starts at offset in the
// top-level input.
func (d *decoder) decodeRecord(text string, offset int, typ reflect.Type, depth int) (reflect.Value, error) {
	if depth >= d.codec.maxDepth {
		return reflect.Value{}, ErrTooDeep
	}
	if len(text) < 2 || text[0] != recordOpen || text[len(text)-1] != recordClose {
		return reflect.Value{}, &SyntaxError{Reason: "expected {...}", Offset: offset}
	}
	if typ.Kind() != reflect.Struct {
		return reflect.Value{}, &NoDefaultConstructorError{Type: typ}
	}
	schema, err := schemaOf(typ, d.codec.tagName)
	if err != nil {
		return reflect.Value{}, err
	}

	// Register before filling fields so ~N~ can point back at this record.
	ptr := reflect.New(typ)
	d.refs.register(ptr)
	rec := ptr.Elem()
	tr := d.codec.tracer

	spans, err := splitSpans(text[1:len(text)-1], offset+1)
	if err != nil {
		return reflect.Value{}, err
	}

	for _, sp := range spans {
		tr.SpanRead(typ, sp.raw())

		f, ok := schema.Lookup(sp.name)
		if !ok {
			return reflect.Value{}, &UnknownFieldError{Type: typ, Name: sp.name}
		}
		if !f.Accessible {
			ae := &FieldAccessError{Type: typ, Field: f.Name, Op: AccessWrite}
			if d.codec.strict {
				return reflect.Value{}, ae
			}
			tr.FieldSkipped(typ, f.Name, "inaccessible")
			d.warnings = append(d.warnings, ae)
			continue
		}

		voff := sp.offset + len(sp.name) + 1
		if err := d.decodeField(rec.Field(f.Index), f, sp.value, voff, typ, depth); err != nil {
			return reflect.Value{}, fieldPath(err, typ, f.Name)
		}
	}
	return ptr, nil
}

// decodeField decodes one raw value into dst.
func (d *decoder) decodeField(dst reflect.Value, f *Field, raw string, offset int, owner reflect.Type, depth int) error {
	if f.Kind == KindRecord {
		if pos, ok, err := parseBackref(raw, offset); err != nil {
			return err
		} else if ok {
			target, found := d.refs.at(pos)
			if !found {
				return &ReferenceError{Index: pos, Want: f.Record}
			}
			if target.Type().Elem() != f.Record {
				return &ReferenceError{Index: pos, Want: f.Record, Got: target.Type().Elem()}
			}
			d.codec.tracer.BackReference(owner, f.Name, pos)
			dst.Set(target)
			return nil
		}

		child, err := d.decodeRecord(raw, offset, f.Record, depth+1)
		if err != nil {
			return err
		}
		dst.Set(child)
		return nil
	}

	if f.Optional {
		leaf := reflect.New(dst.Type().Elem())
		if err := decodeLeaf(raw, f.Kind, leaf.Elem()); err != nil {
			return err
		}
		dst.Set(leaf)
		return nil
	}
	return decodeLeaf(raw, f.Kind, dst)
}

// parseBackref recognizes ~N~. ok is false when raw is not a
// back-reference at all.
func parseBackref(raw string, offset int) (pos int, ok bool, err error) {
	if len(raw) == 0 || raw[0] != backrefDelim {
		return 0, false, nil
	}
	if len(raw) < 3 || raw[len(raw)-1] != backrefDelim {
		return 0, false, &SyntaxError{Reason: "malformed back-reference " + strconv.Quote(raw), Offset: offset}
	}
	// ParseUint takes digits only, no sign.
	n, perr := strconv.ParseUint(raw[1:len(raw)-1], 10, strconv.IntSize-1)
	if perr != nil {
		return 0, false, &SyntaxError{Reason: "malformed back-reference " + strconv.Quote(raw), Offset: offset}
	}
	return int(n), true, nil
}
