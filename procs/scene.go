package procs

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kyufie-go/hltool/binfmt"
	"github.com/kyufie-go/hltool/diag"
)

// sceneProcessor round-trips a scene file: a 15-byte header whose first
// three bytes give the length-vector entry width (1 or 2 bytes) of each
// of the file's three Extended arrays, followed by those three arrays. The first two
// are still-unidentified raw byte blobs; the third holds the scene's
// strings (its name, dialogue, and so on).
type sceneProcessor struct {
	targets []string
}

// NewSceneProcessor builds the scene record processor.
func NewSceneProcessor() Processor {
	return &sceneProcessor{targets: numberedTargets("c/map/%05d.scn", 218)}
}

func (p *sceneProcessor) Name() string      { return "sceneproc" }
func (p *sceneProcessor) WorkDir() string   { return "scene" }
func (p *sceneProcessor) Targets() []string { return p.targets }

type sceneSidecar struct {
	Header  [15]int    `json:"header"`
	Arr1    [][]byte   `json:"arr1"`
	Arr2    [][]byte   `json:"arr2"`
	Strings []string   `json:"strings"`
}

func (p *sceneProcessor) Disassemble(target, rawPath, sidecarDir string, sink *diag.Sink) error {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return err
	}
	r := bytes.NewReader(raw)

	var header [15]int
	for i := range header {
		b, err := binfmt.ReadInt(r, 8, binfmt.LittleEndian, false)
		if err != nil {
			return fmt.Errorf("%s: header[%d]: %w", target, i, err)
		}
		header[i] = int(b)
	}

	arr1, err := readExtArrayBytes(r, header[0])
	if err != nil {
		return fmt.Errorf("%s: arr1: %w", target, err)
	}
	arr2, err := readExtArrayBytes(r, header[1])
	if err != nil {
		return fmt.Errorf("%s: arr2: %w", target, err)
	}
	strings, err := readExtArrayStrings(r, header[2], sink)
	if err != nil {
		return fmt.Errorf("%s: strings: %w", target, err)
	}

	out := sceneSidecar{Header: header, Arr1: arr1, Arr2: arr2, Strings: strings}
	return writeJSONSidecar(sidecarPath(sidecarDir, target), out)
}

func (p *sceneProcessor) Assemble(target, sidecarDir, outPath string, sink *diag.Sink) error {
	var in sceneSidecar
	if err := readJSONSidecar(sidecarPath(sidecarDir, target), &in); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, b := range in.Header {
		if err := binfmt.WriteInt(&buf, int64(b), 8, binfmt.LittleEndian); err != nil {
			return fmt.Errorf("%s: header: %w", target, err)
		}
	}
	if err := writeExtArrayBytes(&buf, in.Header[0], in.Arr1); err != nil {
		return fmt.Errorf("%s: arr1: %w", target, err)
	}
	if err := writeExtArrayBytes(&buf, in.Header[1], in.Arr2); err != nil {
		return fmt.Errorf("%s: arr2: %w", target, err)
	}
	if err := writeExtArrayStrings(&buf, in.Header[2], in.Strings, sink); err != nil {
		return fmt.Errorf("%s: strings: %w", target, err)
	}

	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

func readExtArrayBytes(r *bytes.Reader, lenWidth int) ([][]byte, error) {
	count, err := binfmt.ReadInt(r, 8, binfmt.LittleEndian, false)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	lens := make([]int64, count)
	for i := range lens {
		lens[i], err = binfmt.ReadInt(r, lenWidth*8, binfmt.LittleEndian, false)
		if err != nil {
			return nil, fmt.Errorf("length vector[%d]: %w", i, err)
		}
	}
	out := make([][]byte, count)
	for i, l := range lens {
		out[i], err = binfmt.ReadExact(r, int(l))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

func writeExtArrayBytes(w *bytes.Buffer, lenWidth int, elements [][]byte) error {
	if err := binfmt.WriteInt(w, int64(len(elements)), 8, binfmt.LittleEndian); err != nil {
		return fmt.Errorf("count: %w", err)
	}
	for i, e := range elements {
		if err := binfmt.WriteInt(w, int64(len(e)), lenWidth*8, binfmt.LittleEndian); err != nil {
			return fmt.Errorf("length vector[%d]: %w", i, err)
		}
	}
	for i, e := range elements {
		if _, err := w.Write(e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func readExtArrayStrings(r *bytes.Reader, lenWidth int, sink *diag.Sink) ([]string, error) {
	count, err := binfmt.ReadInt(r, 8, binfmt.LittleEndian, false)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	lens := make([]int64, count)
	for i := range lens {
		lens[i], err = binfmt.ReadInt(r, lenWidth*8, binfmt.LittleEndian, false)
		if err != nil {
			return nil, fmt.Errorf("length vector[%d]: %w", i, err)
		}
	}
	out := make([]string, count)
	for i, l := range lens {
		raw, err := binfmt.ReadExact(r, int(l))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		// A scene string is NUL-terminated text but stored inside an
		// already length-bounded slot; decode only up to the first NUL,
		// matching the original's chunked read-until-NUL reader.
		nul := bytes.IndexByte(raw, 0)
		if nul < 0 {
			nul = len(raw)
		}
		s, err := binfmt.ReadLegacyStringCstr(bytes.NewReader(append(raw[:nul:nul], 0)), sink)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

func writeExtArrayStrings(w *bytes.Buffer, lenWidth int, elements []string, sink *diag.Sink) error {
	bufs := make([]bytes.Buffer, len(elements))
	for i, s := range elements {
		if err := binfmt.WriteLegacyStringCstr(&bufs[i], s, sink); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	if err := binfmt.WriteInt(w, int64(len(elements)), 8, binfmt.LittleEndian); err != nil {
		return fmt.Errorf("count: %w", err)
	}
	for i := range bufs {
		if err := binfmt.WriteInt(w, int64(bufs[i].Len()), lenWidth*8, binfmt.LittleEndian); err != nil {
			return fmt.Errorf("length vector[%d]: %w", i, err)
		}
	}
	for i := range bufs {
		if _, err := w.Write(bufs[i].Bytes()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}
