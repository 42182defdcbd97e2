package gbmfmt

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestGBMRoundTrip8bpp(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	colors := []color.NRGBA{
		{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255},
		{255, 255, 0, 255}, {0, 0, 0, 0}, {255, 255, 255, 255},
	}
	i := 0
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.SetNRGBA(x, y, colors[i])
			i++
		}
	}

	raw, err := Encode(src, 8, 5)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, sc, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sc.ColorBit != 8 || sc.Unk0 != 5 {
		t.Fatalf("sidecar = %+v, want color_bit=8 unk0=5", sc)
	}
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Fatalf("decoded size = %v, want 3x2", got.Bounds())
	}
	// The transparent source pixel must decode back to alpha 0.
	if a := got.NRGBAAt(1, 1).A; a != 0 {
		t.Fatalf("transparent pixel decoded with alpha %d, want 0", a)
	}
}

func TestGBMRoundTripOddWidth4bpp(t *testing.T) {
	// Odd width exercises the discarded-low-nibble row padding path.
	src := solidImage(5, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(4, 0, color.NRGBA{R: 200, G: 0, B: 0, A: 255})

	raw, err := Encode(src, 4, 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Bounds().Dx() != 5 || got.Bounds().Dy() != 2 {
		t.Fatalf("decoded size = %v, want 5x2", got.Bounds())
	}
	c := got.NRGBAAt(4, 0)
	if c.A == 0 {
		t.Fatalf("last pixel of odd row decoded as transparent/unset")
	}
}

func TestEncodePaletteOverflow(t *testing.T) {
	// Build 272 pixels whose 5/6-bit quantized (r, g) pair is unique by
	// construction: index decomposes uniquely into (r5, g6) in base
	// 32x64, and each channel value is the exact inverse of to565's
	// rounding formula for its bucket, so every pixel survives
	// quantization into a distinct palette entry.
	const n = 272
	img := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for i := 0; i < n; i++ {
		r5 := i % 32
		g6 := (i / 32) % 64
		r8 := uint8(math.Round(float64(r5) * 255.0 / 31.0))
		g8 := uint8(math.Round(float64(g6) * 255.0 / 63.0))
		img.SetNRGBA(i, 0, color.NRGBA{R: r8, G: g8, B: 128, A: 255})
	}
	if _, err := Encode(img, 8, 0); err == nil {
		t.Fatalf("Encode: expected palette overflow error, got nil")
	}
}

func TestMGRRoundTrip(t *testing.T) {
	images := []*image.NRGBA{
		solidImage(2, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 255}),
		solidImage(3, 1, color.NRGBA{R: 4, G: 5, B: 6, A: 255}),
	}
	entries := []MGREntry{
		{Path: "0.png", ColorBit: 8, Unk0: 0},
		{Path: "1.png", ColorBit: 8, Unk0: 1},
	}

	var buf bytes.Buffer
	if err := EncodeMGR(&buf, images, entries); err != nil {
		t.Fatalf("EncodeMGR: %v", err)
	}

	gotImages, gotEntries, err := DecodeMGR(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeMGR: %v", err)
	}
	if len(gotImages) != 2 || len(gotEntries) != 2 {
		t.Fatalf("got %d images / %d entries, want 2/2", len(gotImages), len(gotEntries))
	}
	if gotEntries[1].Unk0 != 1 {
		t.Fatalf("entry[1].Unk0 = %d, want 1", gotEntries[1].Unk0)
	}
	if gotImages[0].Bounds().Dx() != 2 || gotImages[1].Bounds().Dx() != 3 {
		t.Fatalf("unexpected decoded dimensions: %v / %v", gotImages[0].Bounds(), gotImages[1].Bounds())
	}
}
