package refgraph

import "strings"

const (
	fieldSep     = ','
	nameSep      = ':'
	recordOpen   = '{'
	recordClose  = '}'
	backrefDelim = '~'
)

// span is one raw name:value entry of a record body.
type span struct {
	name   string
	value  string
	offset int // Offset of name in the top-level input
}

// raw returns the span as it appeared in the input.
func (s span) raw() string {
	return s.name + string(nameSep) + s.value
}

// SplitFields splits a record body (the text between the outer braces)
// into its raw name:value spans. Nested records and quoted text are kept
// whole even when they contain commas.
func SplitFields(body string) ([]string, error) {
	spans, err := splitSpans(body, 0)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = s.raw()
	}
	return out, nil
}

// splitSpans scans body left to right. base is the offset of body in the
// top-level input and is only used for error positions.
func splitSpans(body string, base int) ([]span, error) {
	var spans []span
	pos := 0
	for pos < len(body) {
		colon := strings.IndexByte(body[pos:], nameSep)
		if colon < 0 {
			return nil, &SyntaxError{Reason: "expected name:value", Offset: base + pos}
		}
		name := body[pos : pos+colon]
		if name == "" || strings.ContainsAny(name, reservedNameChars) {
			return nil, &SyntaxError{Reason: "invalid field name " + `"` + name + `"`, Offset: base + pos}
		}

		vstart := pos + colon + 1
		vend, err := valueEnd(body, vstart, base)
		if err != nil {
			return nil, err
		}
		spans = append(spans, span{name: name, value: body[vstart:vend], offset: base + pos})

		// The value must be followed by a separator or the end of the body.
		switch {
		case vend == len(body):
			pos = vend
		case body[vend] == fieldSep:
			pos = vend + 1
			if pos == len(body) {
				return nil, &SyntaxError{Reason: "trailing separator", Offset: base + vend}
			}
		default:
			return nil, &SyntaxError{Reason: "expected separator after value", Offset: base + vend}
		}
	}
	return spans, nil
}

// valueEnd returns the index just past the value starting at start.
func valueEnd(body string, start, base int) (int, error) {
	if start >= len(body) {
		return start, nil
	}
	switch body[start] {
	case recordOpen:
		return matchBrace(body, start, base)
	case textDelim:
		// The second delimiter of the span closes the literal; quotes
		// inside the text were replaced by the sentinel.
		end := strings.IndexByte(body[start+1:], textDelim)
		if end < 0 {
			return 0, &SyntaxError{Reason: "unterminated text", Offset: base + start}
		}
		return start + 1 + end + 1, nil
	default:
		end := strings.IndexByte(body[start:], fieldSep)
		if end < 0 {
			return len(body), nil
		}
		return start + end, nil
	}
}

// matchBrace returns the index just past the '}' closing the record that
// opens at body[open]. Quoted text is skipped so braces inside it do not
// count.
func matchBrace(body string, open, base int) (int, error) {
	depth := 0
	for i := open; i < len(body); i++ {
		switch body[i] {
		case recordOpen:
			depth++
		case recordClose:
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		case textDelim:
			end := strings.IndexByte(body[i+1:], textDelim)
			if end < 0 {
				return 0, &SyntaxError{Reason: "unterminated text", Offset: base + i}
			}
			i += end + 1
		}
	}
	return 0, &SyntaxError{Reason: "unterminated record", Offset: base + open}
}
