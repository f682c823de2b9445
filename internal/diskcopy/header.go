// Package diskcopy implements the Apple Disk Copy 4.2 ("DC42") container
// format: the fixed 84-byte header codec, its validation rules, and the
// rotating checksum used over the data and tag regions.
package diskcopy

import (
	"fmt"
	"io"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/deploymenttheory/go-dc42/internal/endian"
)

// Constants fixed by the DC42 on-disk format.
const (
	// HeaderLength is the size of the container header in bytes.
	HeaderLength = 84

	// MaxNameLength is the longest volume name the header can carry.
	MaxNameLength = 63

	// magicWord is the value the 16-bit private field must hold.
	magicWord uint16 = 0x0100
)

// Disk format codes (header byte 80).
const (
	DiskFormat400K  = 0 // GCR CLV single-sided
	DiskFormat800K  = 1 // GCR CLV double-sided
	DiskFormat720K  = 2 // MFM CAV double-density
	DiskFormat1440K = 3 // MFM CAV high-density
)

// Header is the fixed 84-byte record preceding the payload of a DC42
// container. Multi-byte fields are stored big-endian on disk.
type Header struct {
	NameLength byte
	NameBytes  [MaxNameLength]byte

	DataSize     uint32
	TagSize      uint32
	DataChecksum uint32
	TagChecksum  uint32

	// DiskFormat encodes the physical geometry; FormatByte is a bit-field
	// whose meaning depends on DiskFormat (GCR format nybble for codes 0-1,
	// MFM sector size and sidedness for codes 2-3).
	DiskFormat byte
	FormatByte byte

	// Private must equal 0x0100; effectively a magic number.
	Private uint16
}

// DecodeHeader parses exactly HeaderLength bytes into a Header.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < HeaderLength {
		return nil, fmt.Errorf("insufficient data for header: %d bytes: %w",
			len(data), errdefs.ErrOutOfRange)
	}

	h := &Header{
		NameLength:   data[0],
		DataSize:     endian.Read32(data[64:68]),
		TagSize:      endian.Read32(data[68:72]),
		DataChecksum: endian.Read32(data[72:76]),
		TagChecksum:  endian.Read32(data[76:80]),
		DiskFormat:   data[80],
		FormatByte:   data[81],
		Private:      endian.Read16(data[82:84]),
	}
	copy(h.NameBytes[:], data[1:64])
	return h, nil
}

// ReadHeader seeks to the start of the stream, consumes exactly HeaderLength
// bytes, and leaves the stream positioned at the start of the data region.
func ReadHeader(s io.ReadSeeker) (*Header, error) {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("could not seek to header: %v: %w", err, errdefs.ErrOutOfRange)
	}
	buf := make([]byte, HeaderLength)
	if _, err := io.ReadFull(s, buf); err != nil {
		return nil, fmt.Errorf("could not read %d header bytes: %v: %w",
			HeaderLength, err, errdefs.ErrOutOfRange)
	}
	return DecodeHeader(buf)
}

// EncodeBytes serializes the header into a fresh HeaderLength-byte buffer.
func (h *Header) EncodeBytes() []byte {
	buf := make([]byte, HeaderLength)
	buf[0] = h.NameLength
	copy(buf[1:64], h.NameBytes[:])
	endian.Write32(h.DataSize, buf[64:68])
	endian.Write32(h.TagSize, buf[68:72])
	endian.Write32(h.DataChecksum, buf[72:76])
	endian.Write32(h.TagChecksum, buf[76:80])
	buf[80] = h.DiskFormat
	buf[81] = h.FormatByte
	endian.Write16(h.Private, buf[82:84])
	return buf
}

// Encode writes the header at the stream's current position. The caller is
// responsible for positioning the stream first.
func (h *Header) Encode(w io.Writer) error {
	if _, err := w.Write(h.EncodeBytes()); err != nil {
		return fmt.Errorf("could not write header: %v: %w", err, errdefs.ErrResourceExhausted)
	}
	return nil
}

// CreateForHFS builds a header for an HFS floppy image. dataBlockCount is
// the volume size in 512-byte blocks and must match a recognized floppy
// geometry (400k, 800k, 720k or 1440k). tagByteCount and tagChecksum are
// zero for images without tag data.
func CreateForHFS(name string, dataBlockCount, dataChecksum, tagByteCount, tagChecksum uint32) (*Header, error) {
	if len(name) > MaxNameLength {
		return nil, fmt.Errorf("name %q length %d is longer than the DC42 maximum %d: %w",
			name, len(name), MaxNameLength, errdefs.ErrInvalidArgument)
	}

	var diskFormat, formatByte byte
	switch dataBlockCount {
	case 800:
		diskFormat, formatByte = DiskFormat400K, 0x12
	case 1600:
		diskFormat, formatByte = DiskFormat800K, 0x22
	case 1440:
		diskFormat, formatByte = DiskFormat720K, 0x22
	case 2880:
		diskFormat, formatByte = DiskFormat1440K, 0x22
	default:
		return nil, fmt.Errorf("HFS data block count %d is not recognized as a valid floppy geometry: %w",
			dataBlockCount, errdefs.ErrInvalidArgument)
	}

	h := &Header{
		NameLength:   byte(len(name)),
		DataSize:     dataBlockCount * 512,
		TagSize:      tagByteCount,
		DataChecksum: dataChecksum,
		TagChecksum:  tagChecksum,
		DiskFormat:   diskFormat,
		FormatByte:   formatByte,
		Private:      magicWord,
	}
	copy(h.NameBytes[:], name)
	return h, nil
}

// Name returns the volume name carried in the header.
func (h *Header) Name() string {
	n := int(h.NameLength)
	if n > MaxNameLength {
		n = MaxNameLength
	}
	return string(h.NameBytes[:n])
}

// TotalFileSize is the size in bytes of the container file the header
// describes: header plus data region plus tag region.
func (h *Header) TotalFileSize() uint32 {
	return HeaderLength + h.DataSize + h.TagSize
}

// Validate checks the header for well-formedness and returns the total
// container size it describes. The first violated rule is reported.
func (h *Header) Validate() (uint32, error) {
	if h.NameLength > MaxNameLength {
		return 0, fmt.Errorf("invalid name length %d: %w",
			h.NameLength, errdefs.ErrFailedPrecondition)
	}
	if _, err := DiskFormatName(h.DiskFormat); err != nil {
		return 0, err
	}
	if _, err := FormatByteName(h.FormatByte); err != nil {
		return 0, err
	}
	if h.Private != magicWord {
		return 0, fmt.Errorf("invalid magic number 0x%x != 0x%x: %w",
			h.Private, magicWord, errdefs.ErrFailedPrecondition)
	}
	if h.DataSize%2 != 0 {
		return 0, fmt.Errorf("data size %d is not an even number of bytes: %w",
			h.DataSize, errdefs.ErrFailedPrecondition)
	}
	return h.TotalFileSize(), nil
}

// VerifyDataChecksum seeks to the data region, checksums exactly DataSize
// bytes, and compares the result to the header's declared data checksum.
func (h *Header) VerifyDataChecksum(s io.ReadSeeker) error {
	if _, err := s.Seek(HeaderLength, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek to data region at %d: %v: %w",
			HeaderLength, err, errdefs.ErrOutOfRange)
	}

	sum := NewChecksum(0)
	if err := sum.UpdateFromReader(s, h.DataSize); err != nil {
		return err
	}
	if computed := sum.Sum(); computed != h.DataChecksum {
		return fmt.Errorf("computed data checksum %x does not match header sum %x: %w",
			computed, h.DataChecksum, ErrChecksumMismatch)
	}
	return nil
}

// VerifyTagChecksum checksums the tag region trailing the data region and
// compares it to the declared tag checksum. A header with no tag bytes
// verifies trivially without touching the stream.
func (h *Header) VerifyTagChecksum(s io.ReadSeeker) error {
	if h.TagSize == 0 {
		return nil
	}
	tagOffset := int64(HeaderLength) + int64(h.DataSize)
	if _, err := s.Seek(tagOffset, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek to tag region at %d: %v: %w",
			tagOffset, err, errdefs.ErrOutOfRange)
	}

	sum := NewChecksum(0)
	if err := sum.UpdateFromReader(s, h.TagSize); err != nil {
		return err
	}
	if computed := sum.Sum(); computed != h.TagChecksum {
		return fmt.Errorf("computed tag checksum %x does not match header sum %x: %w",
			computed, h.TagChecksum, ErrChecksumMismatch)
	}
	return nil
}

// DiskFormatName decodes the disk format code into a human-readable
// capacity, or fails for codes outside the recognized set.
func DiskFormatName(code byte) (string, error) {
	switch code {
	case DiskFormat400K:
		return "400k", nil
	case DiskFormat800K:
		return "800k", nil
	case DiskFormat720K:
		return "720k", nil
	case DiskFormat1440K:
		return "1440k", nil
	default:
		return "", fmt.Errorf("unknown disk format byte %d: %w",
			code, errdefs.ErrFailedPrecondition)
	}
}

// FormatByteName decodes the format byte, or fails for values outside the
// recognized set.
func FormatByteName(fb byte) (string, error) {
	switch fb {
	case 0x02:
		return "400k (alternate)", nil
	case 0x12:
		return "400k", nil
	case 0x22:
		return ">400k", nil
	case 0x24:
		return "800k Apple II", nil
	default:
		return "", fmt.Errorf("unknown format byte %d: %w",
			fb, errdefs.ErrFailedPrecondition)
	}
}

// String renders a human-readable multi-line description of the header.
func (h *Header) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "name[%d]: %s\n", h.NameLength, h.Name())
	fmt.Fprintf(&b, "0x%x data bytes (%d k)\n", h.DataSize, h.DataSize>>10)
	fmt.Fprintf(&b, "0x%x tag bytes (%d k)\n", h.TagSize, h.TagSize>>10)
	fmt.Fprintf(&b, "Data Checksum: %x Tag Checksum: %x\n", h.DataChecksum, h.TagChecksum)

	diskFormat, err := DiskFormatName(h.DiskFormat)
	if err != nil {
		diskFormat = "<unknown>"
	}
	fmt.Fprintf(&b, "Disk Format: %d (%s)\n", h.DiskFormat, diskFormat)

	formatByte, err := FormatByteName(h.FormatByte)
	if err != nil {
		formatByte = "<unknown>"
	}
	fmt.Fprintf(&b, "Format Byte: %d (%s)\n", h.FormatByte, formatByte)
	fmt.Fprintf(&b, "Private word: 0x%x\n", h.Private)
	return b.String()
}
