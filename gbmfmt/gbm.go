// Package gbmfmt implements the GBM palette image format and the MGR
// sprite sheet container built out of it. A GBM image stores an 8-bit or
// 4-bit-per-pixel index buffer against an RGB565 palette, with the
// sentinel color 0xF81F marking full transparency.
package gbmfmt

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/kyufie-go/hltool/binfmt"
	"github.com/kyufie-go/hltool/hlerr"
)

const transparent565 = 0xf81f

// Sidecar carries the two GBM header fields a disassembled image keeps
// alongside its PNG: the bit depth and the still-unidentified high
// nibble of the header's color byte.
type Sidecar struct {
	ColorBit int `json:"color_bit"`
	Unk0     int `json:"unk0"`
}

func to565(c color.NRGBA) uint16 {
	if c.A == 0 {
		return transparent565
	}
	r := uint16(math.Round(float64(c.R)/(255.0/31.0))) & 0x1f
	g := uint16(math.Round(float64(c.G)/(255.0/63.0))) & 0x3f
	b := uint16(math.Round(float64(c.B)/(255.0/31.0))) & 0x1f
	return b | g<<5 | r<<11
}

func from565(v uint16) color.NRGBA {
	b := v & 0x1f
	g := (v >> 5) & 0x3f
	r := (v >> 11) & 0x1f
	a := uint8(255)
	if v == transparent565 {
		a = 0
	}
	return color.NRGBA{
		R: uint8(math.Round(float64(r) * (255.0 / 31.0))),
		G: uint8(math.Round(float64(g) * (255.0 / 63.0))),
		B: uint8(math.Round(float64(b) * (255.0 / 31.0))),
		A: a,
	}
}

// Decode reads one GBM image from r, expanding its palette-indexed pixel
// data into a full RGBA image. The returned Sidecar must be kept
// alongside the image (normally as a JSON sidecar) so Encode can later
// reproduce the same color_bit/unk0 header values.
func Decode(r io.Reader) (*image.NRGBA, Sidecar, error) {
	colorByte, err := binfmt.ReadInt(r, 8, binfmt.LittleEndian, false)
	if err != nil {
		return nil, Sidecar{}, fmt.Errorf("gbm header: %w", err)
	}
	paletteSize, err := binfmt.ReadInt(r, 8, binfmt.LittleEndian, false)
	if err != nil {
		return nil, Sidecar{}, fmt.Errorf("gbm header: %w", err)
	}
	width, err := binfmt.ReadInt(r, 16, binfmt.LittleEndian, false)
	if err != nil {
		return nil, Sidecar{}, fmt.Errorf("gbm header: %w", err)
	}
	height, err := binfmt.ReadInt(r, 16, binfmt.LittleEndian, false)
	if err != nil {
		return nil, Sidecar{}, fmt.Errorf("gbm header: %w", err)
	}

	colorBit := int(colorByte) & 0xf
	unk0 := int(colorByte) >> 4
	if colorBit != 4 && colorBit != 8 {
		return nil, Sidecar{}, fmt.Errorf("%w: unsupported GBM color resolution %d", hlerr.ErrUnsupportedFormat, colorBit)
	}

	palette := make([]uint16, paletteSize)
	for i := range palette {
		v, err := binfmt.ReadInt(r, 16, binfmt.LittleEndian, false)
		if err != nil {
			return nil, Sidecar{}, fmt.Errorf("gbm palette[%d]: %w", i, err)
		}
		palette[i] = uint16(v)
	}

	var indices []int
	if colorBit == 8 {
		raw, err := binfmt.ReadExact(r, int(width*height))
		if err != nil {
			return nil, Sidecar{}, fmt.Errorf("gbm pixel data: %w", err)
		}
		indices = make([]int, len(raw))
		for i, b := range raw {
			indices[i] = int(b)
		}
	} else {
		indices, err = read4bitPixels(r, int(width), int(height))
		if err != nil {
			return nil, Sidecar{}, fmt.Errorf("gbm pixel data: %w", err)
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	for i, idx := range indices {
		if idx < 0 || idx >= len(palette) {
			return nil, Sidecar{}, fmt.Errorf("%w: pixel index %d exceeds palette size %d", hlerr.ErrPaletteOverflow, idx, len(palette))
		}
		x := i % int(width)
		y := i / int(width)
		img.SetNRGBA(x, y, from565(palette[idx]))
	}

	return img, Sidecar{ColorBit: colorBit, Unk0: unk0}, nil
}

// read4bitPixels decodes a 4-bit-per-pixel row matrix: each byte holds
// two palette indices, high nibble first. A row with an odd width has
// one unused low-nibble pixel at the end of its last byte, discarded
// here.
func read4bitPixels(r io.Reader, width, height int) ([]int, error) {
	rowBytes := (width + 1) / 2
	odd := width%2 != 0
	indices := make([]int, 0, width*height)
	for y := 0; y < height; y++ {
		row, err := binfmt.ReadExact(r, rowBytes)
		if err != nil {
			return nil, err
		}
		for _, b := range row {
			indices = append(indices, int(b>>4), int(b&0xf))
		}
		if odd {
			indices = indices[:len(indices)-1]
		}
	}
	return indices, nil
}

// Encode quantizes img to the GBM palette format at the given bit depth
// (4 or 8) and returns the encoded bytes. colorBit and unk0 are written
// verbatim into the header's color byte.
func Encode(img image.Image, colorBit, unk0 int) ([]byte, error) {
	if colorBit != 4 && colorBit != 8 {
		return nil, fmt.Errorf("gbmfmt: color_bit must be 4 or 8, got %d", colorBit)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	palette := make([]uint16, 0, 256)
	paletteIndex := make(map[uint16]int, 256)
	pixels := make([]int, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			nrgba := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c := to565(nrgba)
			idx, ok := paletteIndex[c]
			if !ok {
				idx = len(palette)
				palette = append(palette, c)
				paletteIndex[c] = idx
			}
			pixels = append(pixels, idx)
		}
	}
	if len(palette) > 256 {
		return nil, fmt.Errorf("%w: image uses %d distinct colors, GBM palette limit is 256", hlerr.ErrPaletteOverflow, len(palette))
	}

	var buf bytes.Buffer
	colorByte := int64(unk0<<4) | int64(colorBit&0xf)
	if err := binfmt.WriteInt(&buf, colorByte, 8, binfmt.LittleEndian); err != nil {
		return nil, err
	}
	if err := binfmt.WriteInt(&buf, int64(len(palette)), 8, binfmt.LittleEndian); err != nil {
		return nil, err
	}
	if err := binfmt.WriteInt(&buf, int64(width), 16, binfmt.LittleEndian); err != nil {
		return nil, err
	}
	if err := binfmt.WriteInt(&buf, int64(height), 16, binfmt.LittleEndian); err != nil {
		return nil, err
	}
	for _, p := range palette {
		if err := binfmt.WriteInt(&buf, int64(p), 16, binfmt.LittleEndian); err != nil {
			return nil, err
		}
	}

	if colorBit == 8 {
		for _, idx := range pixels {
			if err := binfmt.WriteInt(&buf, int64(idx), 8, binfmt.LittleEndian); err != nil {
				return nil, err
			}
		}
	} else if err := write4bitPixels(&buf, pixels, width, height); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func write4bitPixels(w io.Writer, pixels []int, width, height int) error {
	odd := width%2 != 0
	pos := 0
	for y := 0; y < height; y++ {
		row := append([]int(nil), pixels[pos:pos+width]...)
		pos += width
		if odd {
			row = append(row, 0)
		}
		for i := 0; i < len(row); i += 2 {
			b := byte(row[i]&0xf)<<4 | byte(row[i+1]&0xf)
			if _, err := w.Write([]byte{b}); err != nil {
				return err
			}
		}
	}
	return nil
}
