package procs

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kyufie-go/hltool/binfmt"
	"github.com/kyufie-go/hltool/diag"
)

// commonTextProcessor round-trips a bare Pascal array of Pascal strings
// (no per-element struct), so its JSON sidecar is a plain array of
// strings rather than an array of objects.
type commonTextProcessor struct {
	targets []string
}

// NewCommonTextProcessor builds the common-text record processor.
func NewCommonTextProcessor() Processor {
	return &commonTextProcessor{targets: []string{
		"c/csv/common_text.dat",
		"c/csv/name.dat",
		"c/csv/mission_text.dat",
		"c/csv/menu_text.dat",
		"c/csv/ingame_text.dat",
		"c/csv/tips.dat",
	}}
}

func (p *commonTextProcessor) Name() string      { return "commontextproc" }
func (p *commonTextProcessor) WorkDir() string   { return "common_text" }
func (p *commonTextProcessor) Targets() []string { return p.targets }

func (p *commonTextProcessor) Disassemble(target, rawPath, sidecarDir string, sink *diag.Sink) error {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return err
	}
	strs, err := readStringPascalArray(bytes.NewReader(raw), sink)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	return writeJSONSidecar(sidecarPath(sidecarDir, target), strs)
}

func (p *commonTextProcessor) Assemble(target, sidecarDir, outPath string, sink *diag.Sink) error {
	var strs []string
	if err := readJSONSidecar(sidecarPath(sidecarDir, target), &strs); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := writeStringPascalArray(&buf, strs, sink); err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

func readStringPascalArray(r *bytes.Reader, sink *diag.Sink) ([]string, error) {
	count, err := binfmt.ReadInt(r, 16, binfmt.LittleEndian, false)
	if err != nil {
		return nil, fmt.Errorf("pascal array count: %w", err)
	}
	out := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		length, err := binfmt.ReadInt(r, 16, binfmt.LittleEndian, false)
		if err != nil {
			return nil, fmt.Errorf("element %d length: %w", i, err)
		}
		raw, err := binfmt.ReadExact(r, int(length))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		s, err := binfmt.ReadLegacyStringP8(bytes.NewReader(raw), sink)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func writeStringPascalArray(w *bytes.Buffer, strs []string, sink *diag.Sink) error {
	if err := binfmt.WriteInt(w, int64(len(strs)), 16, binfmt.LittleEndian); err != nil {
		return fmt.Errorf("pascal array count: %w", err)
	}
	for i, s := range strs {
		var elem bytes.Buffer
		if err := binfmt.WriteLegacyStringP8(&elem, s, sink); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if err := binfmt.WriteInt(w, int64(elem.Len()), 16, binfmt.LittleEndian); err != nil {
			return fmt.Errorf("element %d length: %w", i, err)
		}
		if _, err := w.Write(elem.Bytes()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}
