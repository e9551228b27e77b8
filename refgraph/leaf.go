package refgraph

import (
	"reflect"
	"strconv"
	"strings"
)

// Kind is the declared kind of a record field.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindText   // string
	KindRecord // *struct
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint:
		return "uint"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindText:
		return "text"
	case KindRecord:
		return "record"
	default:
		return "invalid"
	}
}

// IsLeaf reports whether the kind is a primitive or text leaf.
func (k Kind) IsLeaf() bool {
	return k >= KindBool && k <= KindText
}

// leafKinds maps Go reflect kinds to leaf kinds.
var leafKinds = map[reflect.Kind]Kind{
	reflect.Bool:    KindBool,
	reflect.Int:     KindInt,
	reflect.Int8:    KindInt8,
	reflect.Int16:   KindInt16,
	reflect.Int32:   KindInt32,
	reflect.Int64:   KindInt64,
	reflect.Uint:    KindUint,
	reflect.Uint8:   KindUint8,
	reflect.Uint16:  KindUint16,
	reflect.Uint32:  KindUint32,
	reflect.Uint64:  KindUint64,
	reflect.Float32: KindFloat32,
	reflect.Float64: KindFloat64,
	reflect.String:  KindText,
}

const (
	textDelim = '"'

	// quoteSentinel stands in for '"' inside encoded text.
	quoteSentinel = '\uE000'
)

var (
	quoteEscaper   = strings.NewReplacer(string(textDelim), string(quoteSentinel))
	quoteUnescaper = strings.NewReplacer(string(quoteSentinel), string(textDelim))
)

// encodeLeaf writes the literal for a leaf value. v must hold a value of
// the Go kind matching k.
func encodeLeaf(v reflect.Value, k Kind) (string, error) {
	switch k {
	case KindBool:
		return strconv.FormatBool(v.Bool()), nil
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.Int(), 10), nil
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case KindFloat32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), nil
	case KindFloat64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case KindText:
		return encodeText(v.String())
	default:
		return "", &LeafFormatError{Kind: k, Text: v.String()}
	}
}

// encodeText frames s as a text literal.
func encodeText(s string) (string, error) {
	if strings.ContainsRune(s, quoteSentinel) {
		return "", &ReservedRuneError{Text: s}
	}
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(textDelim)
	sb.WriteString(quoteEscaper.Replace(s))
	sb.WriteByte(textDelim)
	return sb.String(), nil
}

// decodeText reverses encodeText.
func decodeText(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != textDelim || lit[len(lit)-1] != textDelim {
		return "", &LeafFormatError{Kind: KindText, Text: lit}
	}
	return quoteUnescaper.Replace(lit[1 : len(lit)-1]), nil
}

// decodeLeaf parses lit as kind k and stores it into dst, which must be
// settable and of the matching Go kind.
func decodeLeaf(lit string, k Kind, dst reflect.Value) error {
	switch k {
	case KindBool:
		b, err := strconv.ParseBool(lit)
		if err != nil {
			return &LeafFormatError{Kind: k, Text: lit, Err: numError(err)}
		}
		dst.SetBool(b)
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		n, err := strconv.ParseInt(lit, 10, dst.Type().Bits())
		if err != nil {
			return &LeafFormatError{Kind: k, Text: lit, Err: numError(err)}
		}
		dst.SetInt(n)
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		n, err := strconv.ParseUint(lit, 10, dst.Type().Bits())
		if err != nil {
			return &LeafFormatError{Kind: k, Text: lit, Err: numError(err)}
		}
		dst.SetUint(n)
	case KindFloat32, KindFloat64:
		f, err := strconv.ParseFloat(lit, dst.Type().Bits())
		if err != nil {
			return &LeafFormatError{Kind: k, Text: lit, Err: numError(err)}
		}
		dst.SetFloat(f)
	case KindText:
		s, err := decodeText(lit)
		if err != nil {
			return err
		}
		dst.SetString(s)
	default:
		return &LeafFormatError{Kind: k, Text: lit}
	}
	return nil
}

// numError strips the strconv wrapper, which repeats the literal.
func numError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
