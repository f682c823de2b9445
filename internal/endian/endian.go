// Package endian converts between the classic Macintosh big-endian on-disk
// integer encodings and native unsigned integers.
package endian

import "encoding/binary"

// Read16 decodes a 2-byte big-endian word.
func Read16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// Read32 decodes a 4-byte big-endian word.
func Read32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// Write16 encodes v into the first 2 bytes of b, most significant byte first.
func Write16(v uint16, b []byte) {
	binary.BigEndian.PutUint16(b, v)
}

// Write32 encodes v into the first 4 bytes of b, most significant byte first.
func Write32(v uint32, b []byte) {
	binary.BigEndian.PutUint32(b, v)
}
