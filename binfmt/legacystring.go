package binfmt

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/kyufie-go/hltool/diag"
)

// Every record string field is encoded in the legacy Korean codepage
// (EUC-KR). Grounded on other_examples/icza-screp's
// repparser.go, the only pack example decoding legacy Korean game text.

// ReadLegacyStringP8 reads a u8 length prefix followed by that many bytes,
// decoded from EUC-KR. A decode error produces a LegacyEncodingLoss
// warning on sink and a best-effort lossy string rather than failing.
func ReadLegacyStringP8(r io.Reader, sink *diag.Sink) (string, error) {
	n, err := ReadInt(r, 8, LittleEndian, false)
	if err != nil {
		return "", err
	}
	raw, err := ReadExact(r, int(n))
	if err != nil {
		return "", err
	}
	return decodeLegacy(raw, sink), nil
}

// WriteLegacyStringP8 encodes s to EUC-KR and writes a u8 byte-length
// prefix (not codepoint count) followed by the encoded bytes.
func WriteLegacyStringP8(w io.Writer, s string, sink *diag.Sink) error {
	raw := encodeLegacy(s, sink)
	if len(raw) > 0xff {
		return fmt.Errorf("binfmt: legacy string %q encodes to %d bytes, exceeds u8 length prefix", s, len(raw))
	}
	if err := WriteInt(w, int64(len(raw)), 8, LittleEndian); err != nil {
		return err
	}
	_, err := w.Write(raw)
	return err
}

// ReadLegacyStringCstr reads bytes up to (and consuming) a 0x00
// terminator, then decodes them from EUC-KR.
func ReadLegacyStringCstr(r io.Reader, sink *diag.Sink) (string, error) {
	var raw []byte
	for {
		b, err := ReadExact(r, 1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			break
		}
		raw = append(raw, b[0])
	}
	return decodeLegacy(raw, sink), nil
}

// WriteLegacyStringCstr encodes s to EUC-KR and appends a 0x00
// terminator.
func WriteLegacyStringCstr(w io.Writer, s string, sink *diag.Sink) error {
	raw := encodeLegacy(s, sink)
	if _, err := w.Write(raw); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

func decodeLegacy(raw []byte, sink *diag.Sink) string {
	var sb strings.Builder
	data := raw
	lossy := false
	for len(data) > 0 {
		dec := korean.EUCKR.NewDecoder()
		out, n, err := transform.Bytes(dec, data)
		sb.Write(out)
		if err == nil {
			break
		}
		lossy = true
		if n >= len(data) {
			break
		}
		// Replace the byte that could not be decoded with U+FFFD and keep
		// going with the rest of the input.
		sb.WriteRune(utf8.RuneError)
		data = data[n+1:]
	}
	if lossy {
		sink.Warn("legacy encoding loss: unable to decode legacy string, result may be malformed")
	}
	return sb.String()
}

func encodeLegacy(s string, sink *diag.Sink) []byte {
	enc := korean.EUCKR.NewEncoder()
	out, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		sink.Warn("unable to encode legacy string %q, result may be malformed", s)
		// Best-effort: drop runes the codepage can't represent one at a
		// time instead of failing the whole field.
		var sb []byte
		for _, r := range s {
			enc2 := korean.EUCKR.NewEncoder()
			rb, _, rerr := transform.Bytes(enc2, []byte(string(r)))
			if rerr == nil {
				sb = append(sb, rb...)
			}
		}
		return sb
	}
	return out
}
