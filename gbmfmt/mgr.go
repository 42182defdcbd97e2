package gbmfmt

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/kyufie-go/hltool/binfmt"
)

// MGREntry is one sprite sheet slot's disassembled sidecar, written out
// as mgr.json alongside the numbered PNGs.
type MGREntry struct {
	Path     string `json:"path"`
	ColorBit int    `json:"color_bit"`
	Unk0     int    `json:"unk0"`
}

// DecodeMGR reads an MGR sprite sheet: a 32-bit-length-prefixed Pascal
// array of GBM payloads, addressed by index.
func DecodeMGR(r io.Reader) ([]*image.NRGBA, []MGREntry, error) {
	count, err := binfmt.ReadInt(r, 32, binfmt.LittleEndian, false)
	if err != nil {
		return nil, nil, fmt.Errorf("mgr count: %w", err)
	}
	images := make([]*image.NRGBA, 0, count)
	entries := make([]MGREntry, 0, count)
	for i := 0; i < int(count); i++ {
		length, err := binfmt.ReadInt(r, 32, binfmt.LittleEndian, false)
		if err != nil {
			return nil, nil, fmt.Errorf("mgr entry %d length: %w", i, err)
		}
		raw, err := binfmt.ReadExact(r, int(length))
		if err != nil {
			return nil, nil, fmt.Errorf("mgr entry %d: %w", i, err)
		}
		img, sc, err := Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, nil, fmt.Errorf("mgr entry %d: %w", i, err)
		}
		images = append(images, img)
		entries = append(entries, MGREntry{
			Path:     fmt.Sprintf("%d.png", i),
			ColorBit: sc.ColorBit,
			Unk0:     sc.Unk0,
		})
	}
	return images, entries, nil
}

// EncodeMGR writes images back out as an MGR sprite sheet, pairing each
// image with the color_bit/unk0 recorded in its matching entry.
func EncodeMGR(w io.Writer, images []*image.NRGBA, entries []MGREntry) error {
	if len(images) != len(entries) {
		return fmt.Errorf("mgrfmt: %d images but %d sidecar entries", len(images), len(entries))
	}
	if err := binfmt.WriteInt(w, int64(len(images)), 32, binfmt.LittleEndian); err != nil {
		return fmt.Errorf("mgr count: %w", err)
	}
	for i, img := range images {
		raw, err := Encode(img, entries[i].ColorBit, entries[i].Unk0)
		if err != nil {
			return fmt.Errorf("mgr entry %d: %w", i, err)
		}
		if err := binfmt.WriteInt(w, int64(len(raw)), 32, binfmt.LittleEndian); err != nil {
			return fmt.Errorf("mgr entry %d length: %w", i, err)
		}
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("mgr entry %d: %w", i, err)
		}
	}
	return nil
}
