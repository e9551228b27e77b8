package stream

import (
	"encoding/hex"
	"hash/crc32"

	"github.com/zeebo/blake3"
)

// crcTable is the IEEE CRC-32 table.
var crcTable = crc32.MakeTable(crc32.IEEE)

// ComputeCRC computes CRC-32 IEEE of the given bytes.
func ComputeCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// ContentSum computes the BLAKE3-256 digest of a snapshot's text.
func ContentSum(text []byte) [32]byte {
	return blake3.Sum256(text)
}

// SumToHex converts a digest to a lowercase hex string.
func SumToHex(sum [32]byte) string {
	return hex.EncodeToString(sum[:])
}

// HexToSum parses a 64-character hex string into a digest.
func HexToSum(s string) ([32]byte, bool) {
	var sum [32]byte
	if len(s) != 64 {
		return sum, false
	}
	if _, err := hex.Decode(sum[:], []byte(s)); err != nil {
		return sum, false
	}
	return sum, true
}
