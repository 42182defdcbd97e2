package recordfmt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kyufie-go/hltool/diag"
)

// Field pairs a Document key with the codec that reads/writes it.
type Field struct {
	Key   string
	Codec Codec
}

// Schema is an ordered list of fields describing one record element. The
// order is both the binary field order and, absent an explicit Project
// call by the caller, the JSON display order.
type Schema struct {
	Fields []Field
}

// Read decodes one element from r in schema order.
func (s Schema) Read(r io.Reader, sink *diag.Sink) (*Document, error) {
	doc := NewDocument()
	for _, f := range s.Fields {
		v, err := f.Codec.ReadField(r, sink)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		doc.Set(f.Key, v)
	}
	return doc, nil
}

// ReadBounded decodes one element from a bounded sub-slice (an array
// element's payload, already sliced out by its length prefix), and warns
// TrailingBytes on sink if any bytes of the sub-slice are left unconsumed
// once every field has been read. The unconsumed remainder is not kept in
// the returned Document, so Write does not reproduce it.
func (s Schema) ReadBounded(r *bytes.Reader, sink *diag.Sink) (*Document, error) {
	doc, err := s.Read(r, sink)
	if err != nil {
		return nil, err
	}
	if rem := r.Len(); rem > 0 {
		sink.Warn("trailing bytes: %d unconsumed byte(s) in record", rem)
	}
	return doc, nil
}

// Write encodes doc in schema order into w, returning the number of
// bytes written.
func (s Schema) Write(w io.Writer, doc *Document, sink *diag.Sink) (int, error) {
	total := 0
	for _, f := range s.Fields {
		v := doc.MustGet(f.Key)
		n, err := f.Codec.WriteField(w, v, sink)
		if err != nil {
			return total, fmt.Errorf("field %q: %w", f.Key, err)
		}
		total += n
	}
	return total, nil
}
