// Package recordfmt implements the structured-record DSL: the small
// algebra of primitive field codecs (fixed-width integers, legacy
// strings, opaque byte blobs) composed into the two container shapes
// every known record file uses (Pascal array, Extended array), plus the
// ordered Document type that carries a record's binary field order and
// its (possibly different) JSON display order.
package recordfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is an ordered set of named field values. Unlike
// map[string]any, iteration order is significant and preserved: binary
// writers replay fields in schema (binary) order, while the JSON sidecar
// may present them in a different, human-friendlier order via Project.
type Document struct {
	keys []string
	vals map[string]any
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{vals: make(map[string]any)}
}

// Set appends key (or overwrites its value, preserving original
// position if key already exists).
func (d *Document) Set(key string, val any) *Document {
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = val
	return d
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.vals[key]
	return v, ok
}

// MustGet returns the value stored under key, panicking if absent. Used
// internally by Schema.Write, which only looks up keys it itself wrote
// during Read (or that a sidecar round-tripped back unmodified).
func (d *Document) MustGet(key string) any {
	v, ok := d.vals[key]
	if !ok {
		panic(fmt.Sprintf("recordfmt: document missing required field %q", key))
	}
	return v
}

// Keys returns the fields in their current order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Project returns a new Document with the same values as d, presented in
// the given key order. order must contain exactly the same set of keys
// as d; this is the "editable sidecar may reorder fields" mechanism from
// the design notes — it never changes binary layout, since Schema.Write
// always reads fields back out by name in the schema's own order.
func (d *Document) Project(order []string) *Document {
	if len(order) != len(d.keys) {
		panic(fmt.Sprintf("recordfmt: display order has %d keys, document has %d", len(order), len(d.keys)))
	}
	out := NewDocument()
	for _, k := range order {
		v, ok := d.vals[k]
		if !ok {
			panic(fmt.Sprintf("recordfmt: display order references unknown field %q", k))
		}
		out.Set(k, v)
	}
	return out
}

// MarshalJSON emits the document as a compact JSON object with keys in
// their current order; indentation is left to the caller (the processors
// write sidecars with json.MarshalIndent). Byte-slice values serialise as
// arrays of integers 0..255.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := marshalValue(d.vals[k])
		if err != nil {
			return nil, fmt.Errorf("recordfmt: marshal field %q: %w", k, err)
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		ints := make([]int, len(t))
		for i, b := range t {
			ints[i] = int(b)
		}
		return json.Marshal(ints)
	case []*Document:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v)
	}
}

// UnmarshalJSON decodes a JSON object back into the document, preserving
// the key order as it appears in the JSON text. Values are decoded using
// a best-effort guess (object -> *Document, array of numbers that all
// fit in a byte -> []byte, whole numbers -> int64, otherwise the raw
// encoding/json decode). The processors' Assemble methods decode every
// JSON sidecar through this, and Schema.Write uses the guessed types as
// they are; it does not re-type values from the schema.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("recordfmt: expected JSON object")
	}
	*d = *NewDocument()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("recordfmt: expected string key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		val, err := unmarshalValue(raw)
		if err != nil {
			return fmt.Errorf("recordfmt: field %q: %w", key, err)
		}
		d.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return err
	}
	return nil
}

func unmarshalValue(raw json.RawMessage) (any, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch t := probe.(type) {
	case map[string]any:
		sub := NewDocument()
		if err := sub.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return sub, nil
	case []any:
		if bs, ok := asByteSlice(t); ok {
			return bs, nil
		}
		return t, nil
	case float64:
		return int64(t), nil
	default:
		return probe, nil
	}
}

func asByteSlice(arr []any) ([]byte, bool) {
	out := make([]byte, len(arr))
	for i, e := range arr {
		f, ok := e.(float64)
		if !ok || f < 0 || f > 255 || f != float64(int64(f)) {
			return nil, false
		}
		out[i] = byte(f)
	}
	return out, true
}
