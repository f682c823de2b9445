// Package hfs provides very basic support for HFS floppy volumes: just
// enough of the Master Directory Block to extract the volume name and the
// declared volume size when building a Disk Copy container.
package hfs

import (
	"fmt"
	"io"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/deploymenttheory/go-dc42/internal/endian"
)

// Constants fixed by the HFS on-disk format.
const (
	// MDBSize is the size of the Master Directory Block record in bytes.
	MDBSize = 512

	// MDBOffset is the byte offset of the MDB within a raw volume image
	// (logical block 2).
	MDBOffset = 1024

	// BlockSize is the HFS logical block size in bytes.
	BlockSize = 512

	// Signature is the value a valid MDB carries in its first word.
	Signature uint16 = 0x4244

	// MaxVolumeNameLength is the longest volume name the MDB can declare.
	MaxVolumeNameLength = 27
)

// MasterDirectoryBlock is the fixed 512-byte volume descriptor at byte
// offset 1024 of a raw HFS image. Only the fields needed to size and name
// the volume are interpreted; the rest of the record is ignored.
type MasterDirectoryBlock struct {
	Signature            uint16
	CreationDate         uint32
	ModificationDate     uint32
	Attributes           uint16
	RootFileCount        uint16
	VolumeBitmapBlock    uint16
	NextAllocationSearch uint16
	AllocationBlockCount uint16
	AllocationBlockSize  uint32 // bytes
	DefaultClumpSize     uint32
	FirstAllocationBlock uint16
	NextCatalogNodeID    uint32
	FreeAllocationBlocks uint16
	NameLength           byte
	NameBytes            [MaxVolumeNameLength]byte
}

// DecodeMDB parses exactly MDBSize bytes into a MasterDirectoryBlock.
func DecodeMDB(data []byte) (*MasterDirectoryBlock, error) {
	if len(data) < MDBSize {
		return nil, fmt.Errorf("insufficient data for Master Directory Block: %d bytes: %w",
			len(data), errdefs.ErrOutOfRange)
	}

	mdb := &MasterDirectoryBlock{
		Signature:            endian.Read16(data[0:2]),
		CreationDate:         endian.Read32(data[2:6]),
		ModificationDate:     endian.Read32(data[6:10]),
		Attributes:           endian.Read16(data[10:12]),
		RootFileCount:        endian.Read16(data[12:14]),
		VolumeBitmapBlock:    endian.Read16(data[14:16]),
		NextAllocationSearch: endian.Read16(data[16:18]),
		AllocationBlockCount: endian.Read16(data[18:20]),
		AllocationBlockSize:  endian.Read32(data[20:24]),
		DefaultClumpSize:     endian.Read32(data[24:28]),
		FirstAllocationBlock: endian.Read16(data[28:30]),
		NextCatalogNodeID:    endian.Read32(data[30:34]),
		FreeAllocationBlocks: endian.Read16(data[34:36]),
		NameLength:           data[36],
	}
	copy(mdb.NameBytes[:], data[37:37+MaxVolumeNameLength])
	return mdb, nil
}

// ReadMDB seeks a raw-image stream to the MDB offset and decodes the record.
func ReadMDB(s io.ReadSeeker) (*MasterDirectoryBlock, error) {
	if _, err := s.Seek(MDBOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("could not seek to HFS Master Directory Block at %d: %v: %w",
			MDBOffset, err, errdefs.ErrOutOfRange)
	}
	buf := make([]byte, MDBSize)
	if _, err := io.ReadFull(s, buf); err != nil {
		return nil, fmt.Errorf("could not read %d MDB bytes: %v: %w",
			MDBSize, err, errdefs.ErrOutOfRange)
	}
	return DecodeMDB(buf)
}

// Valid checks the MDB for basic validity and returns the declared size of
// the volume in 512-byte blocks.
//
// The first allocation block number counts blocks at the start of the volume
// (boot blocks, the MDB, at least one bitmap block). Two further blocks at
// the end of the disk are unavailable: a backup MDB and a final block
// reserved for Apple.
func (m *MasterDirectoryBlock) Valid() (uint64, error) {
	if m.Signature != Signature {
		return 0, fmt.Errorf("signature %x did not match magic number %x: %w",
			m.Signature, Signature, errdefs.ErrFailedPrecondition)
	}
	if m.AllocationBlockSize%BlockSize != 0 {
		return 0, fmt.Errorf("declared allocation size %d not a multiple of block size %d: %w",
			m.AllocationBlockSize, BlockSize, errdefs.ErrFailedPrecondition)
	}
	nonAllocated := uint64(m.FirstAllocationBlock) + 2
	allocationBlocks := uint64(m.AllocationBlockSize/BlockSize) * uint64(m.AllocationBlockCount)
	return nonAllocated + allocationBlocks, nil
}

// VolumeName extracts the declared volume name. Callers should check Valid
// first for a meaningful result.
func (m *MasterDirectoryBlock) VolumeName() (string, error) {
	if m.NameLength > MaxVolumeNameLength {
		return "", fmt.Errorf("declared volume name length %d > maximum %d: %w",
			m.NameLength, MaxVolumeNameLength, errdefs.ErrFailedPrecondition)
	}
	return string(m.NameBytes[:m.NameLength]), nil
}

// String renders a human-readable multi-line description of the MDB.
func (m *MasterDirectoryBlock) String() string {
	n := int(m.NameLength)
	if n > MaxVolumeNameLength {
		n = MaxVolumeNameLength
	}
	var b strings.Builder
	fmt.Fprintf(&b, "name[%d]: %s\n", m.NameLength, string(m.NameBytes[:n]))
	fmt.Fprintf(&b, "%d allocation blocks each %d bytes\n", m.AllocationBlockCount, m.AllocationBlockSize)
	fmt.Fprintf(&b, "%d first allocation block\n", m.FirstAllocationBlock)
	fmt.Fprintf(&b, "%d free allocation blocks\n", m.FreeAllocationBlocks)
	return b.String()
}
