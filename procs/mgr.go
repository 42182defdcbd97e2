package procs

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kyufie-go/hltool/diag"
	"github.com/kyufie-go/hltool/gbmfmt"
)

// mgrProcessor round-trips an MGR sprite sheet into a directory of
// numbered PNGs plus an mgr.json sidecar. Unlike the other processors,
// it manages its own sidecar layout entirely (mirroring the original's
// no_json special case) rather than going through sidecarPath; only
// mgr.json itself is written with writeJSONSidecar.
type mgrProcessor struct {
	targets []string
}

// NewMGRProcessor builds the MGR sprite sheet record processor. Two
// targets that appear in a naive range-based listing are intentionally
// excluded: c/sp/img0/003.mgr and c/sp/img1/013.mgr are never MGR
// targets in the original tool and round-trip only as opaque raw files.
func NewMGRProcessor() Processor {
	targets := numberedTargets("c/sp/img0/%03d.mgr", 128, 3)
	targets = append(targets, numberedTargets("c/sp/img1/%03d.mgr", 57, 13)...)
	targets = append(targets, numberedTargets("c/sp/img2/%03d.mgr", 49)...)
	targets = append(targets, numberedTargets("c/sp/img3/%03d.mgr", 49)...)
	targets = append(targets, numberedTargets("c/sp/img4/%03d.mgr", 68)...)
	targets = append(targets, numberedTargets("c/sp/img5/%03d.mgr", 26)...)
	targets = append(targets, numberedTargets("c/sp/img6/%03d.mgr", 17)...)
	targets = append(targets, numberedTargets("c/par/pimg%02d.mgr", 9)...)
	targets = append(targets,
		"c/img/gmenu.mgr",
		"c/img/icon.mgr",
		"c/img/menu.mgr",
		"c/img/shadow.mgr",
		"c/img/touch.mgr",
		"c/img/ui.mgr",
		"c/img/worldmap.mgr",
	)
	targets = append(targets,
		"c/map_sp/fgi_img00.mgr",
		"c/map_sp/ms_img00.mgr",
		"c/map_sp/ms_img01.mgr",
		"c/map_sp/ms_img02.mgr",
		"c/map_sp/ms_img03.mgr",
		"c/map_sp/ms_img09.mgr",
	)
	return &mgrProcessor{targets: targets}
}

func (p *mgrProcessor) Name() string      { return "mgrproc" }
func (p *mgrProcessor) WorkDir() string   { return "mgr_sprites" }
func (p *mgrProcessor) Targets() []string { return p.targets }

// mgrSheetDir is where one target's numbered PNGs and mgr.json live:
// <sidecarDir>/<parent-dir-of-target>/<basename-of-target>/.
func mgrSheetDir(sidecarDir, target string) string {
	parent := filepath.Base(filepath.Dir(target))
	base := filepath.Base(target)
	return filepath.Join(sidecarDir, parent, base)
}

func (p *mgrProcessor) Disassemble(target, rawPath, sidecarDir string, sink *diag.Sink) error {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return err
	}
	images, entries, err := gbmfmt.DecodeMGR(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}

	dir := mgrSheetDir(sidecarDir, target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, img := range images {
		f, err := os.Create(filepath.Join(dir, entries[i].Path))
		if err != nil {
			return err
		}
		err = png.Encode(f, img)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: encode png %d: %w", target, i, err)
		}
	}
	return writeJSONSidecar(filepath.Join(dir, "mgr.json"), entries)
}

func (p *mgrProcessor) Assemble(target, sidecarDir, outPath string, sink *diag.Sink) error {
	dir := mgrSheetDir(sidecarDir, target)

	var entries []gbmfmt.MGREntry
	if err := readJSONSidecar(filepath.Join(dir, "mgr.json"), &entries); err != nil {
		return err
	}

	images := make([]*image.NRGBA, len(entries))
	for i, e := range entries {
		f, err := os.Open(filepath.Join(dir, e.Path))
		if err != nil {
			return err
		}
		decoded, err := png.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: decode png %d: %w", target, i, err)
		}
		nrgba, ok := decoded.(*image.NRGBA)
		if !ok {
			b := decoded.Bounds()
			conv := image.NewNRGBA(b)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					conv.Set(x, y, decoded.At(x, y))
				}
			}
			nrgba = conv
		}
		images[i] = nrgba
	}

	var buf bytes.Buffer
	if err := gbmfmt.EncodeMGR(&buf, images, entries); err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}
