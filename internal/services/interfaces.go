package services

import "github.com/deploymenttheory/go-dc42/internal/diskcopy"

// Imager sequences the header codec, checksum engine and HFS reader to
// implement the container commands. Implementations own stream positioning
// and the chunked payload copy loops; any output file left behind after a
// failure must be treated as incomplete.
type Imager interface {
	// Create reads a raw HFS volume image and writes a Disk Copy container
	// holding its payload, deriving the header from the image's Master
	// Directory Block.
	Create(inputImage, diskCopy string) error

	// Extract decodes and validates a container header, then copies exactly
	// the declared data region into outputImage while computing the rotating
	// checksum. A mismatch fails unless ignoreChecksum downgrades it to a
	// warning. Returns the number of payload bytes copied.
	Extract(diskCopy, outputImage string, ignoreChecksum bool) (uint32, error)

	// Verify decodes and validates a container header and checks the data
	// checksum, plus the tag checksum when the header declares tag bytes.
	// The decoded header is returned for display.
	Verify(diskCopy string) (*diskcopy.Header, error)

	// DescribeContainer renders the header description of a container file.
	DescribeContainer(diskCopy string) (string, error)

	// DescribeImage renders the Master Directory Block description of a raw
	// HFS volume image.
	DescribeImage(rawImage string) (string, error)
}
