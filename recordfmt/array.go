package recordfmt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kyufie-go/hltool/binfmt"
	"github.com/kyufie-go/hltool/diag"
)

// ElementFunc decodes one array element from its already-length-bounded
// sub-slice. idx is the element's position within the array.
type ElementFunc func(sub *bytes.Reader, idx int) (*Document, error)

// ElementWriteFunc encodes one array element into buf; buf is later
// measured and its length backpatched ahead of it, so writers never need
// to seek.
type ElementWriteFunc func(buf *bytes.Buffer, e *Document, idx int) error

// ReadPascalArray reads a count prefix of countBits, then count elements
// each prefixed by its own length of lenBits, decoding every element's
// bounded sub-slice with readElem.
func ReadPascalArray(r io.Reader, countBits, lenBits int, sink *diag.Sink, readElem ElementFunc) ([]*Document, error) {
	count, err := binfmt.ReadInt(r, countBits, binfmt.LittleEndian, false)
	if err != nil {
		return nil, fmt.Errorf("pascal array count: %w", err)
	}
	out := make([]*Document, 0, count)
	for i := 0; i < int(count); i++ {
		length, err := binfmt.ReadInt(r, lenBits, binfmt.LittleEndian, false)
		if err != nil {
			return nil, fmt.Errorf("pascal array element %d length: %w", i, err)
		}
		raw, err := binfmt.ReadExact(r, int(length))
		if err != nil {
			return nil, fmt.Errorf("pascal array element %d: %w", i, err)
		}
		doc, err := readElem(bytes.NewReader(raw), i)
		if err != nil {
			return nil, fmt.Errorf("pascal array element %d: %w", i, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// WritePascalArray writes a countBits-wide count followed by each
// element, each preceded by its own lenBits-wide length. Every element
// is built into a scratch buffer first so its length is known before the
// length prefix is written, matching the archive-as-append-stream design
// (no seeking back to patch a length after the fact).
func WritePascalArray(w io.Writer, countBits, lenBits int, elements []*Document, writeElem ElementWriteFunc) error {
	if err := binfmt.WriteInt(w, int64(len(elements)), countBits, binfmt.LittleEndian); err != nil {
		return fmt.Errorf("pascal array count: %w", err)
	}
	for i, e := range elements {
		var buf bytes.Buffer
		if err := writeElem(&buf, e, i); err != nil {
			return fmt.Errorf("pascal array element %d: %w", i, err)
		}
		if err := binfmt.WriteInt(w, int64(buf.Len()), lenBits, binfmt.LittleEndian); err != nil {
			return fmt.Errorf("pascal array element %d length: %w", i, err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("pascal array element %d: %w", i, err)
		}
	}
	return nil
}

// ReadExtArray reads an Extended array: a u8 count, followed by count
// length values of lenWidth bytes each (the length vector, stored
// contiguously rather than interleaved with payloads), followed by the
// concatenated element payloads those lengths describe. lenWidth is not
// self-describing — callers resolve it out of band (e.g. from a scene
// header byte) before calling this.
func ReadExtArray(r io.Reader, lenWidth int, sink *diag.Sink, readElem ElementFunc) ([]*Document, error) {
	count, err := binfmt.ReadInt(r, 8, binfmt.LittleEndian, false)
	if err != nil {
		return nil, fmt.Errorf("extended array count: %w", err)
	}
	lens := make([]int64, count)
	for i := range lens {
		lens[i], err = binfmt.ReadInt(r, lenWidth*8, binfmt.LittleEndian, false)
		if err != nil {
			return nil, fmt.Errorf("extended array length vector[%d]: %w", i, err)
		}
	}
	out := make([]*Document, count)
	for i, length := range lens {
		raw, err := binfmt.ReadExact(r, int(length))
		if err != nil {
			return nil, fmt.Errorf("extended array element %d: %w", i, err)
		}
		out[i], err = readElem(bytes.NewReader(raw), i)
		if err != nil {
			return nil, fmt.Errorf("extended array element %d: %w", i, err)
		}
	}
	return out, nil
}

// WriteExtArray writes an Extended array's u8 count, then the lenWidth-
// byte length vector, then the concatenated element payloads, each
// element again built into a scratch buffer first so every length in
// the vector is known before any of the vector is written.
func WriteExtArray(w io.Writer, lenWidth int, elements []*Document, writeElem ElementWriteFunc) error {
	if err := binfmt.WriteInt(w, int64(len(elements)), 8, binfmt.LittleEndian); err != nil {
		return fmt.Errorf("extended array count: %w", err)
	}
	bufs := make([]bytes.Buffer, len(elements))
	for i, e := range elements {
		if err := writeElem(&bufs[i], e, i); err != nil {
			return fmt.Errorf("extended array element %d: %w", i, err)
		}
	}
	for i := range bufs {
		if err := binfmt.WriteInt(w, int64(bufs[i].Len()), lenWidth*8, binfmt.LittleEndian); err != nil {
			return fmt.Errorf("extended array length vector[%d]: %w", i, err)
		}
	}
	for i := range bufs {
		if _, err := w.Write(bufs[i].Bytes()); err != nil {
			return fmt.Errorf("extended array element %d: %w", i, err)
		}
	}
	return nil
}
