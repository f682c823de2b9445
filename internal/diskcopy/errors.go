package diskcopy

import "errors"

// ErrChecksumMismatch reports that a computed rotating checksum disagreed
// with the value declared in a container header. It is deliberately a class
// of its own rather than a validation error: extraction callers may downgrade
// it to a warning, which is never permitted for format errors.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// IsChecksumMismatch reports whether err is (or wraps) a checksum mismatch.
func IsChecksumMismatch(err error) bool {
	return errors.Is(err, ErrChecksumMismatch)
}
