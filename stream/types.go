// Package stream frames encoded graph snapshots for storage or transport.
//
// Each frame is a header line followed by exactly len payload bytes:
//
//	@snap{v=1 seq=N type="Name" len=N [crc=XXXXXXXX] [sum=blake3:HEX] [enc=zstd]}\n
//	<payload bytes>\n
//
// The payload is refgraph text, optionally zstd-compressed. crc covers
// the stored (possibly compressed) bytes; sum is the BLAKE3-256 digest of
// the uncompressed text, so two frames carrying the same snapshot have
// the same sum regardless of compression.
package stream

import (
	"errors"
	"fmt"
)

// Version is the frame format version.
const Version uint8 = 1

// MaxPayloadSize is the default maximum stored payload size (64 MiB).
const MaxPayloadSize = 64 * 1024 * 1024

// Encoding names the transformation applied to a stored payload.
type Encoding uint8

const (
	EncodingNone Encoding = iota
	EncodingZstd
)

// String returns the encoding name used in frame headers.
func (e Encoding) String() string {
	switch e {
	case EncodingNone:
		return "none"
	case EncodingZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", e)
	}
}

// ParseEncoding parses an encoding name.
func ParseEncoding(s string) (Encoding, bool) {
	switch s {
	case "none", "":
		return EncodingNone, true
	case "zstd":
		return EncodingZstd, true
	default:
		return 0, false
	}
}

// Frame is one snapshot in a stream.
type Frame struct {
	Version  uint8
	Seq      uint64
	Type     string // Record type name of the root
	Payload  []byte // Uncompressed refgraph text
	Encoding Encoding

	// Optional fields
	CRC *uint32   // CRC-32 of the stored bytes
	Sum *[32]byte // BLAKE3-256 of Payload
}

// HasCRC returns true if CRC is present.
func (f *Frame) HasCRC() bool {
	return f.CRC != nil
}

// HasSum returns true if the content sum is present.
func (f *Frame) HasSum() bool {
	return f.Sum != nil
}

// ErrSumMismatch is returned when a payload does not match its content sum.
var ErrSumMismatch = errors.New("stream: content sum mismatch")

// ParseError reports a malformed frame.
type ParseError struct {
	Reason string
	Offset int
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("stream: %s at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("stream: %s", e.Reason)
}

// CRCMismatchError is returned when CRC verification fails.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("stream: CRC mismatch: expected %08x, got %08x", e.Expected, e.Got)
}

// TypeMismatchError is returned when a frame holds a snapshot of a
// different record type than the caller asked for.
type TypeMismatchError struct {
	Frame string
	Want  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("stream: frame holds %s, want %s", e.Frame, e.Want)
}
