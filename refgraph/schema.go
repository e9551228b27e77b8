package refgraph

import (
	"reflect"
	"strings"
	"sync"
)

// DefaultTagName is the struct tag key read when deriving schemas.
const DefaultTagName = "refgraph"

// reservedNameChars may not appear in an encoded field name.
const reservedNameChars = `,:{}"~`

// Schema describes the encodable fields of one record type.
type Schema struct {
	Type   reflect.Type // Struct type
	Fields []Field      // Declaration order

	// Skipped lists declared fields that are never encoded, with the reason.
	Skipped []SkippedField

	byName map[string]int
}

// Field is one declared field of a record type.
type Field struct {
	Name     string       // Encoded name
	GoName   string       // Go field name
	Kind     Kind         // Leaf kind, or KindRecord
	Optional bool         // Pointer to a leaf; nil is absent
	Record   reflect.Type // Struct type for KindRecord
	Index    int          // Field index in the struct

	// Accessible is false for unexported fields.
	Accessible bool
}

// SkippedField is a declared field left out of the schema.
type SkippedField struct {
	GoName string
	Reason string // "transient" or "embedded"
}

// Lookup returns the field with the given encoded name.
func (s *Schema) Lookup(name string) (*Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return &s.Fields[i], true
}

// IsAbsent reports whether the field's value in rec is nil.
func (f *Field) IsAbsent(rec reflect.Value) bool {
	if f.Kind == KindRecord || f.Optional {
		return rec.Field(f.Index).IsNil()
	}
	return false
}

// schemaKey identifies a cached schema.
type schemaKey struct {
	typ reflect.Type
	tag string
}

// schemaCache maps schemaKey to *Schema.
var schemaCache sync.Map

// SchemaOf returns the schema of a record type using the default tag
// name. typ may be the struct type or a pointer to it.
func SchemaOf(typ reflect.Type) (*Schema, error) {
	return schemaOf(typ, DefaultTagName)
}

func schemaOf(typ reflect.Type, tag string) (*Schema, error) {
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, &SchemaError{Type: typ, Reason: "not a struct type"}
	}

	key := schemaKey{typ: typ, tag: tag}
	if s, ok := schemaCache.Load(key); ok {
		return s.(*Schema), nil
	}

	s, err := buildSchema(typ, tag)
	if err != nil {
		return nil, err
	}
	actual, _ := schemaCache.LoadOrStore(key, s)
	return actual.(*Schema), nil
}

func buildSchema(typ reflect.Type, tag string) (*Schema, error) {
	s := &Schema{
		Type:   typ,
		byName: make(map[string]int, typ.NumField()),
	}

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)

		if sf.Anonymous {
			s.Skipped = append(s.Skipped, SkippedField{GoName: sf.Name, Reason: "embedded"})
			continue
		}

		name := sf.Name
		if tv, ok := sf.Tag.Lookup(tag); ok {
			if tv == "-" {
				s.Skipped = append(s.Skipped, SkippedField{GoName: sf.Name, Reason: "transient"})
				continue
			}
			if tv != "" {
				name = tv
			}
		}
		if name == "" || strings.ContainsAny(name, reservedNameChars) {
			return nil, &SchemaError{Type: typ, Field: sf.Name, Reason: "invalid encoded name " + `"` + name + `"`}
		}
		if _, dup := s.byName[name]; dup {
			return nil, &SchemaError{Type: typ, Field: sf.Name, Reason: "duplicate encoded name " + `"` + name + `"`}
		}

		f := Field{
			Name:       name,
			GoName:     sf.Name,
			Index:      i,
			Accessible: sf.IsExported(),
		}

		ft := sf.Type
		switch {
		case ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.Struct:
			f.Kind = KindRecord
			f.Record = ft.Elem()
		case ft.Kind() == reflect.Pointer:
			k, ok := leafKinds[ft.Elem().Kind()]
			if !ok {
				return nil, &SchemaError{Type: typ, Field: sf.Name, Reason: "unsupported type " + ft.String()}
			}
			f.Kind = k
			f.Optional = true
		default:
			k, ok := leafKinds[ft.Kind()]
			if !ok {
				return nil, &SchemaError{Type: typ, Field: sf.Name, Reason: "unsupported type " + ft.String()}
			}
			f.Kind = k
		}

		s.byName[name] = len(s.Fields)
		s.Fields = append(s.Fields, f)
	}

	return s, nil
}
