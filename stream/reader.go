package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/Neumenon/refgraph/refgraph"
)

const headerPrefix = "@snap{"

// Reader reads snapshot frames from an io.Reader.
type Reader struct {
	r          *bufio.Reader
	maxPayload int
	verify     bool
	zdec       *zstd.Decoder
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the maximum stored payload size (default: 64 MiB).
func WithMaxPayload(max int) ReaderOption {
	return func(r *Reader) {
		r.maxPayload = max
	}
}

// WithoutVerification skips CRC and content sum checks.
func WithoutVerification() ReaderOption {
	return func(r *Reader) {
		r.verify = false
	}
}

// NewReader creates a frame reader. CRC and content sums are verified
// when present unless WithoutVerification is given.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:          bufio.NewReader(r),
		maxPayload: MaxPayloadSize,
		verify:     true,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Close releases the decompressor.
func (r *Reader) Close() {
	if r.zdec != nil {
		r.zdec.Close()
		r.zdec = nil
	}
}

// Next reads and returns the next frame, with its payload decompressed.
// Returns io.EOF when no more frames are available.
func (r *Reader) Next() (*Frame, error) {
	headerLine, err := r.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && headerLine == "" {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	frame, storedLen, err := parseHeader(headerLine)
	if err != nil {
		return nil, err
	}
	if storedLen > r.maxPayload {
		return nil, &ParseError{Reason: fmt.Sprintf("payload too large: %d > %d", storedLen, r.maxPayload), Offset: -1}
	}

	var stored []byte
	if storedLen > 0 {
		stored = make([]byte, storedLen)
		if _, err := io.ReadFull(r.r, stored); err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
	}

	// Consume trailing newline (optional at EOF)
	if b, err := r.r.ReadByte(); err == nil && b != '\n' {
		r.r.UnreadByte()
	}

	if r.verify && frame.CRC != nil {
		if computed := ComputeCRC(stored); computed != *frame.CRC {
			return nil, &CRCMismatchError{Expected: *frame.CRC, Got: computed}
		}
	}

	frame.Payload = stored
	if frame.Encoding == EncodingZstd && len(stored) > 0 {
		if r.zdec == nil {
			zdec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(r.maxPayload)))
			if err != nil {
				return nil, fmt.Errorf("create zstd decoder: %w", err)
			}
			r.zdec = zdec
		}
		frame.Payload, err = r.zdec.DecodeAll(stored, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}
	}

	if r.verify && frame.Sum != nil {
		if ContentSum(frame.Payload) != *frame.Sum {
			return nil, ErrSumMismatch
		}
	}

	return frame, nil
}

// ReadAll reads all frames until EOF.
func (r *Reader) ReadAll() ([]*Frame, error) {
	var frames []*Frame
	for {
		frame, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}

// ReadGraph decodes the snapshot in f as a graph rooted at a *T, where
// typ is T or *T.
func ReadGraph(codec *refgraph.Codec, f *Frame, typ reflect.Type) (any, error) {
	if want := typeName(typ); f.Type != "" && f.Type != want {
		return nil, &TypeMismatchError{Frame: f.Type, Want: want}
	}
	v, err := codec.Decode(string(f.Payload), typ)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", f.Seq, err)
	}
	return v, nil
}

// parseHeader parses the @snap{...} header line and returns the frame
// and the stored payload length.
func parseHeader(line string) (*Frame, int, error) {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, headerPrefix) {
		return nil, 0, &ParseError{Reason: "expected " + headerPrefix, Offset: 0}
	}
	endIdx := strings.LastIndex(line, "}")
	if endIdx < len(headerPrefix) {
		return nil, 0, &ParseError{Reason: "missing closing }", Offset: len(line)}
	}

	frame := &Frame{Version: Version}
	storedLen := -1

	for _, pair := range tokenize(line[len(headerPrefix):endIdx]) {
		eqIdx := strings.Index(pair, "=")
		if eqIdx < 0 {
			continue // skip malformed pairs
		}
		key := pair[:eqIdx]
		val := pair[eqIdx+1:]

		switch key {
		case "v":
			v, err := strconv.ParseUint(val, 10, 8)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid version", Offset: -1}
			}
			frame.Version = uint8(v)

		case "seq":
			seq, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid seq", Offset: -1}
			}
			frame.Seq = seq

		case "type":
			name, err := strconv.Unquote(val)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid type: " + val, Offset: -1}
			}
			frame.Type = name

		case "len":
			l, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid len", Offset: -1}
			}
			storedLen = int(l)

		case "crc":
			crc, err := strconv.ParseUint(strings.TrimPrefix(val, "crc32:"), 16, 32)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid crc: " + val, Offset: -1}
			}
			c := uint32(crc)
			frame.CRC = &c

		case "sum":
			sum, ok := HexToSum(strings.TrimPrefix(val, "blake3:"))
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid sum: " + val, Offset: -1}
			}
			frame.Sum = &sum

		case "enc":
			enc, ok := ParseEncoding(val)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid enc: " + val, Offset: -1}
			}
			frame.Encoding = enc
		}
	}

	if frame.Version != Version {
		return nil, 0, &ParseError{Reason: fmt.Sprintf("unsupported version %d", frame.Version), Offset: -1}
	}
	if storedLen < 0 {
		return nil, 0, &ParseError{Reason: "missing len", Offset: -1}
	}
	return frame, storedLen, nil
}

// tokenize splits key=value pairs separated by spaces, keeping quoted
// values whole.
func tokenize(s string) []string {
	var tokens []string
	var current bytes.Buffer
	inQuote := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && inQuote && i+1 < len(s):
			current.WriteByte(c)
			i++
			current.WriteByte(s[i])
		case c == '"':
			inQuote = !inQuote
			current.WriteByte(c)
		case (c == ' ' || c == '\t') && !inQuote:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
