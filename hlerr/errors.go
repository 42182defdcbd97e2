// Package hlerr defines the sentinel error kinds shared by every hltool
// subsystem. Callers compare with errors.Is; cmd/hltool exits with code 1
// on any error, whichever kind it is.
package hlerr

import "errors"

var (
	// ErrTruncated means a read needed more bytes than the source had left.
	ErrTruncated = errors.New("truncated: not enough bytes to satisfy read")

	// ErrUnsupportedFormat means a decoded GBM header has a bit depth
	// outside {4,8}.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrPaletteOverflow means an RGBA image quantised to more than 256
	// distinct colors, or a decoded GBM pixel index lies beyond its
	// palette.
	ErrPaletteOverflow = errors.New("image quantises to more than 256 colors")

	// ErrHashCollision means two distinct logical paths hashed to the same
	// 32-bit value during archive creation.
	ErrHashCollision = errors.New("hash collision between two distinct paths")

	// ErrManifestMismatch means the manifest and the entry index disagree
	// about which paths exist.
	ErrManifestMismatch = errors.New("manifest and archive entries disagree")

	// ErrNonASCIIPath means a logical path contains a byte outside ASCII.
	ErrNonASCIIPath = errors.New("path contains non-ASCII bytes")

	// ErrIncompatibleVersion means vfs.json's recorded tool version does
	// not match the running tool's version.
	ErrIncompatibleVersion = errors.New("incompatible tool version")

	// ErrStagingDirty means .tmp/ exists but was not produced by a prior
	// hltool run, so it is not safe to remove automatically.
	ErrStagingDirty = errors.New("staging directory exists and is not a prior hltool run")
)
