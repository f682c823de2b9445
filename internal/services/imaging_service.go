// Package services implements the command orchestration for go-dc42:
// building, extracting and verifying Disk Copy 4.2 containers.
package services

import (
	"fmt"
	"io"
	"os"

	"github.com/containerd/errdefs"
	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-dc42/internal/config"
	"github.com/deploymenttheory/go-dc42/internal/diskcopy"
	"github.com/deploymenttheory/go-dc42/internal/hfs"
)

// copyBlockSize is the chunk size for payload copy loops, one HFS block.
const copyBlockSize = 512

// ImagingService implements Imager over files on the local filesystem.
type ImagingService struct {
	cfg    *config.ToolConfig
	logger *logrus.Logger
}

var _ Imager = (*ImagingService)(nil)

// NewImagingService creates an ImagingService. A nil logger falls back to
// the logrus standard logger.
func NewImagingService(cfg *config.ToolConfig, logger *logrus.Logger) *ImagingService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg == nil {
		cfg = &config.ToolConfig{}
	}
	return &ImagingService{cfg: cfg, logger: logger}
}

// Create reads a raw HFS volume image and writes a Disk Copy container.
func (s *ImagingService) Create(inputImage, diskCopy string) error {
	input, err := os.Open(inputImage)
	if err != nil {
		return fmt.Errorf("could not open input image %q: %w", inputImage, err)
	}
	defer input.Close()

	mdb, err := hfs.ReadMDB(input)
	if err != nil {
		return err
	}
	s.logger.Debugf("read HFS MDB:\n%s", mdb)

	blockCount, err := mdb.Valid()
	if err != nil {
		return err
	}
	name, err := mdb.VolumeName()
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"volume": name,
		"blocks": blockCount,
	}).Info("read HFS volume image")

	// Checksum the whole declared block range up front so the header can
	// be written before the payload.
	if _, err := input.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek input image: %v: %w", err, errdefs.ErrOutOfRange)
	}
	sum := diskcopy.NewChecksum(0)
	if err := sum.UpdateFromReader(input, uint32(blockCount)*512); err != nil {
		return err
	}

	header, err := diskcopy.CreateForHFS(name, uint32(blockCount), sum.Sum(), 0, 0)
	if err != nil {
		return err
	}

	output, err := s.createOutput(diskCopy)
	if err != nil {
		return err
	}
	defer output.Close()

	if err := header.Encode(output); err != nil {
		return err
	}

	if _, err := input.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("could not seek input image: %v: %w", err, errdefs.ErrOutOfRange)
	}
	buf := make([]byte, copyBlockSize)
	for b := uint64(0); b < blockCount; b++ {
		if _, err := io.ReadFull(input, buf); err != nil {
			return fmt.Errorf("could not read block %d of HFS input: %v: %w",
				b, err, errdefs.ErrOutOfRange)
		}
		if _, err := output.Write(buf); err != nil {
			return fmt.Errorf("could not write block %d of Disk Copy output: %v: %w",
				b, err, errdefs.ErrResourceExhausted)
		}
	}
	return output.Close()
}

// Extract copies the container's data region into outputImage, verifying
// the data checksum on the way through. ignoreChecksum downgrades a
// mismatch to a warning; it never applies to anything else.
func (s *ImagingService) Extract(diskCopy, outputImage string, ignoreChecksum bool) (uint32, error) {
	input, err := os.Open(diskCopy)
	if err != nil {
		return 0, fmt.Errorf("could not open disk copy %q: %w", diskCopy, err)
	}
	defer input.Close()

	header, err := diskcopy.ReadHeader(input)
	if err != nil {
		return 0, err
	}
	if _, err := header.Validate(); err != nil {
		return 0, err
	}

	output, err := s.createOutput(outputImage)
	if err != nil {
		return 0, err
	}
	defer output.Close()

	// The stream sits at the end of the header, ready to read data.
	// Validate guarantees an even data size, so every chunk is a whole
	// number of checksum words.
	sum := diskcopy.NewChecksum(0)
	buf := make([]byte, copyBlockSize)
	total := header.DataSize
	remaining := total
	for remaining > 0 {
		chunk := remaining
		if chunk > copyBlockSize {
			chunk = copyBlockSize
		}
		if _, err := io.ReadFull(input, buf[:chunk]); err != nil {
			return 0, fmt.Errorf("could not read %d bytes of Disk Copy input after %d: %v: %w",
				chunk, total-remaining, err, errdefs.ErrOutOfRange)
		}
		remaining -= chunk
		if err := sum.UpdateFromBytes(buf[:chunk]); err != nil {
			return 0, err
		}
		if _, err := output.Write(buf[:chunk]); err != nil {
			return 0, fmt.Errorf("could not write %d bytes of image output at %d: %v: %w",
				chunk, total-remaining, err, errdefs.ErrResourceExhausted)
		}
	}

	if computed := sum.Sum(); computed != header.DataChecksum {
		if !ignoreChecksum {
			return 0, fmt.Errorf("data checksum %x does not match header %x: %w",
				computed, header.DataChecksum, diskcopy.ErrChecksumMismatch)
		}
		s.logger.WithFields(logrus.Fields{
			"computed": fmt.Sprintf("%x", computed),
			"declared": fmt.Sprintf("%x", header.DataChecksum),
		}).Warn("ignoring data checksum mismatch")
	}

	if err := output.Close(); err != nil {
		return 0, fmt.Errorf("could not finish image output: %v: %w", err, errdefs.ErrResourceExhausted)
	}
	return total, nil
}

// Verify decodes, validates and checksum-verifies a container. The tag
// checksum is checked whenever the header declares tag bytes.
func (s *ImagingService) Verify(diskCopy string) (*diskcopy.Header, error) {
	f, err := os.Open(diskCopy)
	if err != nil {
		return nil, fmt.Errorf("could not open disk copy %q: %w", diskCopy, err)
	}
	defer f.Close()

	header, err := diskcopy.ReadHeader(f)
	if err != nil {
		return nil, err
	}
	if _, err := header.Validate(); err != nil {
		return nil, err
	}
	if err := header.VerifyDataChecksum(f); err != nil {
		return nil, err
	}
	if err := header.VerifyTagChecksum(f); err != nil {
		return nil, err
	}
	return header, nil
}

// DescribeContainer renders the header description of a container file.
func (s *ImagingService) DescribeContainer(diskCopy string) (string, error) {
	f, err := os.Open(diskCopy)
	if err != nil {
		return "", fmt.Errorf("could not open disk copy %q: %w", diskCopy, err)
	}
	defer f.Close()

	header, err := diskcopy.ReadHeader(f)
	if err != nil {
		return "", err
	}
	return header.String(), nil
}

// DescribeImage renders the MDB description of a raw HFS volume image.
func (s *ImagingService) DescribeImage(rawImage string) (string, error) {
	f, err := os.Open(rawImage)
	if err != nil {
		return "", fmt.Errorf("could not open image %q: %w", rawImage, err)
	}
	defer f.Close()

	mdb, err := hfs.ReadMDB(f)
	if err != nil {
		return "", err
	}
	return mdb.String(), nil
}

// createOutput opens path for writing, honoring the configured overwrite
// policy.
func (s *ImagingService) createOutput(path string) (*os.File, error) {
	if !s.cfg.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("output %q already exists and overwrite is disabled: %w",
				path, errdefs.ErrAlreadyExists)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create output %q: %v: %w",
			path, err, errdefs.ErrResourceExhausted)
	}
	return f, nil
}
