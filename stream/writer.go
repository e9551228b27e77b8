package stream

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/Neumenon/refgraph/refgraph"
)

// Writer writes snapshot frames to an io.Writer.
type Writer struct {
	w        io.Writer
	withCRC  bool
	withSum  bool
	compress bool
	zenc     *zstd.Encoder
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCRC adds a CRC-32 of the stored bytes to every frame.
func WithCRC() WriterOption {
	return func(w *Writer) {
		w.withCRC = true
	}
}

// WithSum adds the BLAKE3 content sum to every frame.
func WithSum() WriterOption {
	return func(w *Writer) {
		w.withSum = true
	}
}

// WithCompression stores payloads zstd-compressed.
func WithCompression() WriterOption {
	return func(w *Writer) {
		w.compress = true
	}
}

// NewWriter creates a frame writer.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	writer := &Writer{w: w}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// Close releases the compressor. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.zenc != nil {
		err := w.zenc.Close()
		w.zenc = nil
		return err
	}
	return nil
}

// WriteFrame writes a single frame. Encoding, CRC and Sum are filled in
// from the writer's options when the frame leaves them unset.
func (w *Writer) WriteFrame(f *Frame) error {
	enc := f.Encoding
	if enc == EncodingNone && w.compress {
		enc = EncodingZstd
	}

	stored := f.Payload
	if enc == EncodingZstd {
		if w.zenc == nil {
			zenc, err := zstd.NewWriter(nil)
			if err != nil {
				return fmt.Errorf("create zstd encoder: %w", err)
			}
			w.zenc = zenc
		}
		stored = w.zenc.EncodeAll(f.Payload, nil)
	}

	var header strings.Builder
	header.WriteString("@snap{v=")
	if f.Version == 0 {
		header.WriteString(strconv.Itoa(int(Version)))
	} else {
		header.WriteString(strconv.Itoa(int(f.Version)))
	}

	header.WriteString(" seq=")
	header.WriteString(strconv.FormatUint(f.Seq, 10))

	if f.Type != "" {
		header.WriteString(" type=")
		header.WriteString(strconv.Quote(f.Type))
	}

	header.WriteString(" len=")
	header.WriteString(strconv.Itoa(len(stored)))

	crc := f.CRC
	if crc == nil && w.withCRC && len(stored) > 0 {
		computed := ComputeCRC(stored)
		crc = &computed
	}
	if crc != nil {
		header.WriteString(fmt.Sprintf(" crc=%08x", *crc))
	}

	sum := f.Sum
	if sum == nil && w.withSum {
		computed := ContentSum(f.Payload)
		sum = &computed
	}
	if sum != nil {
		header.WriteString(" sum=blake3:")
		header.WriteString(SumToHex(*sum))
	}

	if enc != EncodingNone {
		header.WriteString(" enc=")
		header.WriteString(enc.String())
	}

	header.WriteString("}\n")

	if _, err := io.WriteString(w.w, header.String()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(stored) > 0 {
		if _, err := w.w.Write(stored); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}

// WriteGraph encodes the graph rooted at v with codec and writes it as
// frame seq. typ is the declared record type of v.
func (w *Writer) WriteGraph(codec *refgraph.Codec, seq uint64, v any, typ reflect.Type) error {
	text, err := codec.Encode(v, typ)
	if err != nil {
		return fmt.Errorf("encode snapshot %d: %w", seq, err)
	}
	return w.WriteFrame(&Frame{
		Version: Version,
		Seq:     seq,
		Type:    typeName(typ),
		Payload: []byte(text),
	})
}

// typeName is the record type name written into frame headers.
func typeName(typ reflect.Type) string {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ.String()
}
