package recordfmt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kyufie-go/hltool/binfmt"
	"github.com/kyufie-go/hltool/diag"
)

// Codec reads and writes one field's value. ReadField consumes exactly
// the bytes that belong to the field (except the Bytes(*) codec, which
// consumes whatever remains of the bounded reader it's given). WriteField
// reports how many bytes it wrote, which Schema.Write sums into its own
// return value.
type Codec interface {
	ReadField(r io.Reader, sink *diag.Sink) (any, error)
	WriteField(w io.Writer, v any, sink *diag.Sink) (int, error)
}

// Int is a fixed-width integer field. Values are carried as int64 in the
// Document regardless of width.
type Int struct {
	Bits   int
	Endian binfmt.Endian
	Signed bool
}

func (c Int) ReadField(r io.Reader, _ *diag.Sink) (any, error) {
	return binfmt.ReadInt(r, c.Bits, c.Endian, c.Signed)
}

func (c Int) WriteField(w io.Writer, v any, _ *diag.Sink) (int, error) {
	n, ok := v.(int64)
	if !ok {
		n = int64(toInt(v))
	}
	if err := binfmt.WriteInt(w, n, c.Bits, c.Endian); err != nil {
		return 0, err
	}
	return c.Bits / 8, nil
}

func toInt(v any) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	default:
		return 0
	}
}

// legacyStyle selects which of the two legacy string wire shapes a
// LegacyString codec reads/writes.
type legacyStyle int

const (
	// StyleP8 is a u8 byte-length prefix followed by the encoded bytes.
	StyleP8 legacyStyle = iota
	// StyleCStr is bytes up to a 0x00 terminator.
	StyleCStr
)

// LegacyString is a length-prefixed or NUL-terminated string encoded in
// the legacy (EUC-KR) codepage. Values are carried as decoded Go strings.
type LegacyString struct {
	Style legacyStyle
}

// P8LegacyString is a u8-length-prefixed legacy string field.
func P8LegacyString() LegacyString { return LegacyString{Style: StyleP8} }

// CStrLegacyString is a NUL-terminated legacy string field.
func CStrLegacyString() LegacyString { return LegacyString{Style: StyleCStr} }

func (c LegacyString) ReadField(r io.Reader, sink *diag.Sink) (any, error) {
	if c.Style == StyleCStr {
		return binfmt.ReadLegacyStringCstr(r, sink)
	}
	return binfmt.ReadLegacyStringP8(r, sink)
}

func (c LegacyString) WriteField(w io.Writer, v any, sink *diag.Sink) (int, error) {
	s, _ := v.(string)
	var buf bytes.Buffer
	var err error
	if c.Style == StyleCStr {
		err = binfmt.WriteLegacyStringCstr(&buf, s, sink)
	} else {
		err = binfmt.WriteLegacyStringP8(&buf, s, sink)
	}
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf.Bytes())
	return n, err
}

// Bytes is a fixed-size (N >= 0) or remainder-of-slice (N == -1) opaque
// byte blob.
type Bytes struct {
	N int // -1 means "remainder of the bounded reader"
}

// FixedBytes is an opaque blob of exactly n bytes.
func FixedBytes(n int) Bytes { return Bytes{N: n} }

// RemainderBytes consumes whatever remains of the reader it's given. It
// is only valid as the last field of a schema used inside a bounded
// sub-slice (a Pascal/Extended array element); Schema does not check
// this.
func RemainderBytes() Bytes { return Bytes{N: -1} }

func (c Bytes) ReadField(r io.Reader, _ *diag.Sink) (any, error) {
	if c.N < 0 {
		return io.ReadAll(r)
	}
	return binfmt.ReadExact(r, c.N)
}

func (c Bytes) WriteField(w io.Writer, v any, _ *diag.Sink) (int, error) {
	b, _ := v.([]byte)
	return w.Write(b)
}

// Struct is a field whose value is itself a nested, fixed-schema record
// (Item's per-group equipment tail, e.g.), represented as a nested
// *Document rather than a flat field of the outer schema.
type Struct struct {
	Schema Schema
}

func (c Struct) ReadField(r io.Reader, sink *diag.Sink) (any, error) {
	return c.Schema.Read(r, sink)
}

func (c Struct) WriteField(w io.Writer, v any, sink *diag.Sink) (int, error) {
	doc, ok := v.(*Document)
	if !ok {
		return 0, fmt.Errorf("recordfmt: Struct field expects *Document, got %T", v)
	}
	return c.Schema.Write(w, doc, sink)
}
