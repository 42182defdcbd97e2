// Package binfmt implements the fixed-endian binary primitives that every
// hltool record format is built from: strict byte reads, fixed-width
// integers, and the legacy (EUC-KR) string encodings used by the game's
// text fields.
package binfmt

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kyufie-go/hltool/hlerr"
)

// ReadExact reads exactly n bytes from r, returning hlerr.ErrTruncated if
// fewer are available.
func ReadExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: wanted %d bytes: %v", hlerr.ErrTruncated, n, err)
	}
	return buf, nil
}

// ReadExactLenient behaves like ReadExact but returns (nil, true, nil) for
// "end" instead of an error when the source is exhausted before any byte
// of this read was consumed. It is used only by the VFS top-level scan
// loop to detect end-of-archive; a partial read (some but not all of n
// bytes available) is still a truncation error.
func ReadExactLenient(r io.Reader, n int) (data []byte, atEnd bool, err error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err == io.EOF && read == 0 {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: wanted %d bytes, got %d: %v", hlerr.ErrTruncated, n, read, err)
	}
	return buf, false, nil
}

// Endian selects the byte order used by ReadInt/WriteInt. The wire format
// is little-endian throughout except where noted.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

func byteOrder(e Endian) binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ReadInt reads a fixed-width integer of the given bit width (8, 16, or
// 32) and sign, in the given byte order.
func ReadInt(r io.Reader, bits int, endian Endian, signed bool) (int64, error) {
	if bits%8 != 0 || bits == 0 {
		return 0, fmt.Errorf("binfmt: bits must be a nonzero multiple of 8, got %d", bits)
	}
	raw, err := ReadExact(r, bits/8)
	if err != nil {
		return 0, err
	}
	bo := byteOrder(endian)
	var u uint64
	switch bits {
	case 8:
		u = uint64(raw[0])
	case 16:
		u = uint64(bo.Uint16(raw))
	case 32:
		u = uint64(bo.Uint32(raw))
	default:
		return 0, fmt.Errorf("binfmt: unsupported int width %d", bits)
	}
	if !signed {
		return int64(u), nil
	}
	switch bits {
	case 8:
		return int64(int8(u)), nil
	case 16:
		return int64(int16(u)), nil
	case 32:
		return int64(int32(u)), nil
	}
	return int64(u), nil
}

// WriteInt writes v as a fixed-width integer of the given bit width and
// byte order. v is truncated to the low bits bits; callers are expected
// to pass values that already fit.
func WriteInt(w io.Writer, v int64, bits int, endian Endian) error {
	if bits%8 != 0 || bits == 0 {
		return fmt.Errorf("binfmt: bits must be a nonzero multiple of 8, got %d", bits)
	}
	bo := byteOrder(endian)
	buf := make([]byte, bits/8)
	switch bits {
	case 8:
		buf[0] = byte(v)
	case 16:
		bo.PutUint16(buf, uint16(v))
	case 32:
		bo.PutUint32(buf, uint32(v))
	default:
		return fmt.Errorf("binfmt: unsupported int width %d", bits)
	}
	_, err := w.Write(buf)
	return err
}
