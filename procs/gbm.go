package procs

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kyufie-go/hltool/diag"
	"github.com/kyufie-go/hltool/gbmfmt"
)

// gbmProcessor round-trips a single GBM image into a PNG plus a small
// JSON sidecar carrying the header fields the PNG format can't hold
// (color_bit, unk0).
type gbmProcessor struct {
	targets []string
}

// NewGBMProcessor builds the standalone-GBM-image record processor.
func NewGBMProcessor() Processor {
	targets := numberedTargets("c/map/face_%02d.gbm", 22)
	targets = append(targets, numberedTargets("c/map/fgi_%03d.gbm", 3)...)
	targets = append(targets, numberedTargets("c/map/obj_%03d.gbm", 255)...)
	targets = append(targets, numberedTargets("c/map/tile_%03d.gbm", 62)...)
	return &gbmProcessor{targets: targets}
}

func (p *gbmProcessor) Name() string      { return "gbmproc" }
func (p *gbmProcessor) WorkDir() string   { return "gbm_sprites" }
func (p *gbmProcessor) Targets() []string { return p.targets }

func (p *gbmProcessor) Disassemble(target, rawPath, sidecarDir string, sink *diag.Sink) error {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return err
	}
	img, sc, err := gbmfmt.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}

	base := filepath.Base(target)
	pngPath := filepath.Join(sidecarDir, base+".png")
	pngFile, err := os.Create(pngPath)
	if err != nil {
		return err
	}
	defer pngFile.Close()
	if err := png.Encode(pngFile, img); err != nil {
		return fmt.Errorf("%s: encode png: %w", target, err)
	}

	return writeJSONSidecar(sidecarPath(sidecarDir, target), sc)
}

func (p *gbmProcessor) Assemble(target, sidecarDir, outPath string, sink *diag.Sink) error {
	var sc gbmfmt.Sidecar
	if err := readJSONSidecar(sidecarPath(sidecarDir, target), &sc); err != nil {
		return err
	}

	base := filepath.Base(target)
	pngPath := filepath.Join(sidecarDir, base+".png")
	pngFile, err := os.Open(pngPath)
	if err != nil {
		return err
	}
	defer pngFile.Close()
	img, err := png.Decode(pngFile)
	if err != nil {
		return fmt.Errorf("%s: decode png: %w", target, err)
	}

	raw, err := gbmfmt.Encode(img, sc.ColorBit, sc.Unk0)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	return os.WriteFile(outPath, raw, 0o644)
}
