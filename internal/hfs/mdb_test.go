package hfs

import (
	"bytes"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-dc42/internal/endian"
)

// buildMDBBytes assembles a 512-byte MDB record describing a volume whose
// declared size works out to (firstAlloc + 2) + allocBlocks*(allocSize/512).
func buildMDBBytes(name string, allocBlocks uint16, allocSize uint32, firstAlloc uint16) []byte {
	data := make([]byte, MDBSize)
	endian.Write16(Signature, data[0:2])
	endian.Write32(0xa0000000, data[2:6])  // creation date
	endian.Write32(0xa0000100, data[6:10]) // modification date
	endian.Write16(allocBlocks, data[18:20])
	endian.Write32(allocSize, data[20:24])
	endian.Write16(firstAlloc, data[28:30])
	endian.Write16(allocBlocks/2, data[34:36]) // free blocks
	data[36] = byte(len(name))
	copy(data[37:37+MaxVolumeNameLength], name)
	return data
}

// buildImage embeds an MDB at the fixed offset of a raw volume image.
func buildImage(mdb []byte, totalBlocks int) []byte {
	image := make([]byte, totalBlocks*BlockSize)
	copy(image[MDBOffset:], mdb)
	return image
}

func TestDecodeMDB(t *testing.T) {
	mdb, err := DecodeMDB(buildMDBBytes("Untitled", 788, 512, 10))
	require.NoError(t, err)

	assert.Equal(t, Signature, mdb.Signature)
	assert.Equal(t, uint16(788), mdb.AllocationBlockCount)
	assert.Equal(t, uint32(512), mdb.AllocationBlockSize)
	assert.Equal(t, uint16(10), mdb.FirstAllocationBlock)
	assert.Equal(t, uint16(394), mdb.FreeAllocationBlocks)
	assert.Equal(t, byte(8), mdb.NameLength)
}

func TestDecodeMDBInsufficientData(t *testing.T) {
	_, err := DecodeMDB(make([]byte, MDBSize-1))
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrOutOfRange)
}

func TestReadMDBFromImage(t *testing.T) {
	image := buildImage(buildMDBBytes("Floppy", 788, 512, 10), 800)
	mdb, err := ReadMDB(bytes.NewReader(image))
	require.NoError(t, err)

	name, err := mdb.VolumeName()
	require.NoError(t, err)
	assert.Equal(t, "Floppy", name)
}

func TestReadMDBTruncatedImage(t *testing.T) {
	_, err := ReadMDB(bytes.NewReader(make([]byte, MDBOffset+100)))
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrOutOfRange)
}

func TestValidBlockMath(t *testing.T) {
	tests := []struct {
		name           string
		allocBlocks    uint16
		allocSize      uint32
		firstAlloc     uint16
		expectedBlocks uint64
	}{
		{name: "400k floppy", allocBlocks: 788, allocSize: 512, firstAlloc: 10, expectedBlocks: 800},
		{name: "800k floppy", allocBlocks: 1588, allocSize: 512, firstAlloc: 10, expectedBlocks: 1600},
		{name: "multi-block allocation", allocBlocks: 390, allocSize: 1024, firstAlloc: 18, expectedBlocks: 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mdb, err := DecodeMDB(buildMDBBytes("V", tt.allocBlocks, tt.allocSize, tt.firstAlloc))
			require.NoError(t, err)
			blocks, err := mdb.Valid()
			require.NoError(t, err)
			assert.Equal(t, tt.expectedBlocks, blocks)
		})
	}
}

func TestValidBadSignature(t *testing.T) {
	raw := buildMDBBytes("V", 788, 512, 10)
	endian.Write16(0x4845, raw[0:2])
	mdb, err := DecodeMDB(raw)
	require.NoError(t, err)

	_, err = mdb.Valid()
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrFailedPrecondition)
}

func TestValidMisalignedAllocationSize(t *testing.T) {
	mdb, err := DecodeMDB(buildMDBBytes("V", 788, 600, 10))
	require.NoError(t, err)

	_, err = mdb.Valid()
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrFailedPrecondition)
	assert.Contains(t, err.Error(), "600")
}

func TestVolumeNameLengthOverMaximum(t *testing.T) {
	raw := buildMDBBytes("V", 788, 512, 10)
	raw[36] = MaxVolumeNameLength + 1
	mdb, err := DecodeMDB(raw)
	require.NoError(t, err)

	_, err = mdb.VolumeName()
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrFailedPrecondition)
}

func TestMDBString(t *testing.T) {
	mdb, err := DecodeMDB(buildMDBBytes("Untitled", 788, 512, 10))
	require.NoError(t, err)
	s := mdb.String()
	assert.Contains(t, s, "name[8]: Untitled")
	assert.Contains(t, s, "788 allocation blocks each 512 bytes")
	assert.Contains(t, s, "10 first allocation block")
}
