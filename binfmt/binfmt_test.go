package binfmt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kyufie-go/hltool/hlerr"
)

func TestReadExactTruncated(t *testing.T) {
	_, err := ReadExact(bytes.NewReader([]byte{1, 2}), 4)
	if !errors.Is(err, hlerr.ErrTruncated) {
		t.Fatalf("ReadExact: got %v, want ErrTruncated", err)
	}
}

func TestReadExactLenientEndOfStream(t *testing.T) {
	data, atEnd, err := ReadExactLenient(bytes.NewReader(nil), 8)
	if err != nil {
		t.Fatalf("ReadExactLenient: %v", err)
	}
	if !atEnd || data != nil {
		t.Fatalf("ReadExactLenient at EOF: atEnd=%v data=%v, want true/nil", atEnd, data)
	}
}

func TestReadExactLenientPartialReadIsTruncation(t *testing.T) {
	_, atEnd, err := ReadExactLenient(bytes.NewReader([]byte{1, 2, 3}), 8)
	if atEnd {
		t.Fatalf("ReadExactLenient: partial read reported as atEnd")
	}
	if !errors.Is(err, hlerr.ErrTruncated) {
		t.Fatalf("ReadExactLenient: got %v, want ErrTruncated", err)
	}
}

func TestIntRoundTrip(t *testing.T) {
	cases := []struct {
		bits   int
		endian Endian
		signed bool
		v      int64
	}{
		{8, LittleEndian, false, 200},
		{8, LittleEndian, true, -5},
		{16, LittleEndian, false, 40000},
		{16, BigEndian, true, -1234},
		{32, LittleEndian, false, 3000000000},
		{32, BigEndian, true, -70000},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WriteInt(&buf, c.v, c.bits, c.endian); err != nil {
			t.Fatalf("WriteInt(%+v): %v", c, err)
		}
		got, err := ReadInt(&buf, c.bits, c.endian, c.signed)
		if err != nil {
			t.Fatalf("ReadInt(%+v): %v", c, err)
		}
		if got != c.v {
			t.Fatalf("round-trip %+v: got %d, want %d", c, got, c.v)
		}
	}
}

func TestLegacyStringP8RoundTrip(t *testing.T) {
	sink := testSink()
	var buf bytes.Buffer
	want := "hello world"
	if err := WriteLegacyStringP8(&buf, want, sink); err != nil {
		t.Fatalf("WriteLegacyStringP8: %v", err)
	}
	got, err := ReadLegacyStringP8(&buf, sink)
	if err != nil {
		t.Fatalf("ReadLegacyStringP8: %v", err)
	}
	if got != want {
		t.Fatalf("round-trip = %q, want %q", got, want)
	}
}

func TestLegacyStringCstrRoundTrip(t *testing.T) {
	sink := testSink()
	var buf bytes.Buffer
	want := "terminated string"
	if err := WriteLegacyStringCstr(&buf, want, sink); err != nil {
		t.Fatalf("WriteLegacyStringCstr: %v", err)
	}
	got, err := ReadLegacyStringCstr(&buf, sink)
	if err != nil {
		t.Fatalf("ReadLegacyStringCstr: %v", err)
	}
	if got != want {
		t.Fatalf("round-trip = %q, want %q", got, want)
	}
}

func TestLegacyStringP8RejectsOverlongEncoding(t *testing.T) {
	sink := testSink()
	var buf bytes.Buffer
	long := make([]byte, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'a')
	}
	err := WriteLegacyStringP8(&buf, string(long), sink)
	if err == nil {
		t.Fatalf("WriteLegacyStringP8: expected error for overlong string, got nil")
	}
}
