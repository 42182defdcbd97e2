package procs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kyufie-go/hltool/diag"
	"github.com/kyufie-go/hltool/recordfmt"
)

// sidecarPath is where a Document-based processor keeps target's JSON
// sidecar: <sidecarDir>/<basename(target)>.json, matching
// Processor.convert_target_name in the original tool.
func sidecarPath(sidecarDir, target string) string {
	return filepath.Join(sidecarDir, filepath.Base(target)+".json")
}

// docArrayProcessor implements the common shape shared by quest, enemy,
// class and skill files: a single Pascal array of fixed-schema elements,
// round-tripped to a JSON array of objects. displayOrder, if non-nil,
// reorders each element's fields for the JSON sidecar without touching
// binary layout.
type docArrayProcessor struct {
	name, workDir string
	targets       []string
	schema        recordfmt.Schema
	displayOrder  []string
}

func (p *docArrayProcessor) Name() string      { return p.name }
func (p *docArrayProcessor) WorkDir() string   { return p.workDir }
func (p *docArrayProcessor) Targets() []string { return p.targets }

func (p *docArrayProcessor) Disassemble(target, rawPath, sidecarDir string, sink *diag.Sink) error {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return err
	}
	docs, err := recordfmt.ReadPascalArray(bytes.NewReader(raw), 16, 16, sink,
		func(sub *bytes.Reader, idx int) (*recordfmt.Document, error) {
			return p.schema.ReadBounded(sub, sink)
		})
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	if p.displayOrder != nil {
		for i, d := range docs {
			docs[i] = d.Project(p.displayOrder)
		}
	}
	return writeJSONSidecar(sidecarPath(sidecarDir, target), docs)
}

func (p *docArrayProcessor) Assemble(target, sidecarDir, outPath string, sink *diag.Sink) error {
	var docs []*recordfmt.Document
	if err := readJSONSidecar(sidecarPath(sidecarDir, target), &docs); err != nil {
		return err
	}
	var buf bytes.Buffer
	err := recordfmt.WritePascalArray(&buf, 16, 16, docs,
		func(elemBuf *bytes.Buffer, e *recordfmt.Document, idx int) error {
			_, err := p.schema.Write(elemBuf, e, sink)
			return err
		})
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

func writeJSONSidecar(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSONSidecar(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
