package diskcopy

import (
	"fmt"
	"io"

	"github.com/containerd/errdefs"

	"github.com/deploymenttheory/go-dc42/internal/endian"
)

// checksumChunkSize is the working-buffer size for streamed checksum updates.
const checksumChunkSize = 1024

// Checksum accumulates the Disk Copy 4.2 rotating checksum over a sequence
// of big-endian 16-bit words. It is not a CRC: each step adds the word to a
// 32-bit running sum and rotates the sum right one bit, wrapping the dropped
// bit into bit 31.
type Checksum struct {
	sum uint32
}

// NewChecksum creates an accumulator seeded with initial. Pass 0 to start a
// fresh computation; a nonzero seed continues a previous one.
func NewChecksum(initial uint32) *Checksum {
	return &Checksum{sum: initial}
}

// Update feeds a single 16-bit word and returns the updated sum.
func (c *Checksum) Update(word uint16) uint32 {
	s := c.sum + uint32(word)
	if s&0x1 != 0 {
		c.sum = 0x80000000 | ((s >> 1) & 0x7fffffff)
	} else {
		c.sum = (s >> 1) & 0x7fffffff
	}
	return c.sum
}

// Sum returns the current accumulator value.
func (c *Checksum) Sum() uint32 {
	return c.sum
}

// UpdateFromBytes feeds every consecutive big-endian word in buf. The buffer
// must hold a whole number of 16-bit words.
func (c *Checksum) UpdateFromBytes(buf []byte) error {
	if err := checkEven(uint32(len(buf))); err != nil {
		return err
	}
	for i := 0; i < len(buf); i += 2 {
		c.Update(endian.Read16(buf[i : i+2]))
	}
	return nil
}

// UpdateFromReader feeds exactly byteCount bytes from r, chunked through a
// bounded working buffer. The reader is consumed from its current position;
// a short read fails with the byte counts read and remaining.
func (c *Checksum) UpdateFromReader(r io.Reader, byteCount uint32) error {
	if err := checkEven(byteCount); err != nil {
		return err
	}

	buf := make([]byte, checksumChunkSize)
	remaining := byteCount
	var bytesRead uint32

	for remaining > 0 {
		chunk := remaining
		if chunk > checksumChunkSize {
			chunk = checksumChunkSize
		}
		if _, err := io.ReadFull(r, buf[:chunk]); err != nil {
			return fmt.Errorf(
				"failed to read %d bytes after %d bytes read, %d bytes remaining: %v: %w",
				chunk, bytesRead, remaining, err, errdefs.ErrOutOfRange)
		}
		if err := c.UpdateFromBytes(buf[:chunk]); err != nil {
			return err
		}
		bytesRead += chunk
		remaining -= chunk
	}
	return nil
}

// checkEven rejects byte counts that do not cover a whole number of words.
func checkEven(byteCount uint32) error {
	if byteCount%2 != 0 {
		return fmt.Errorf("byte count %d is not an even number of bytes: %w",
			byteCount, errdefs.ErrInvalidArgument)
	}
	return nil
}
