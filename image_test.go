package paintcore

import (
	"errors"
	"testing"

	"github.com/gogpu/paintcore/internal/zlibio"
)

func deflateBytes(data []byte) []byte { return zlibio.Deflate(data) }

func solidImage(w, h int, p Pixel) *Image {
	img := NewImage(w, h)
	for i := range img.pixels {
		img.pixels[i] = p
	}
	return img
}

// TestNewImage verifies zero fill.
func TestNewImage(t *testing.T) {
	img := NewImage(3, 2)
	if img.Width() != 3 || img.Height() != 2 {
		t.Fatalf("size = %dx%d", img.Width(), img.Height())
	}
	for _, p := range img.Pixels() {
		if p != 0 {
			t.Fatal("new image not zero filled")
		}
	}
}

// TestImageCompressedRoundTrip verifies the full-image wire cycle.
func TestImageCompressedRoundTrip(t *testing.T) {
	img := NewImage(5, 4)
	for i := range img.pixels {
		img.pixels[i] = PixelFromBGRA(uint8(i), uint8(i*2), uint8(i*3), 255)
	}
	decoded, err := NewImageFromCompressed(5, 4, img.Compress())
	if err != nil {
		t.Fatalf("NewImageFromCompressed: %v", err)
	}
	for i := range img.pixels {
		if decoded.pixels[i] != img.pixels[i] {
			t.Fatalf("pixel %d differs", i)
		}
	}
}

// TestNewImageFromCompressed_WrongSize verifies the size contract.
func TestNewImageFromCompressed_WrongSize(t *testing.T) {
	img := NewImage(2, 2)
	if _, err := NewImageFromCompressed(3, 3, img.Compress()); !errors.Is(err, ErrDecode) {
		t.Errorf("got %v, want ErrDecode", err)
	}
}

// TestNewImageFromCompressedMonochrome verifies bit extraction, MSB
// first, with rows padded to 32-bit boundaries.
func TestNewImageFromCompressedMonochrome(t *testing.T) {
	// 5x2 mask: row padding is 4 bytes. Bits 10101 and 01010.
	raw := []byte{
		0xa8, 0, 0, 0, // 1010 1000
		0x50, 0, 0, 0, // 0101 0000
	}
	img, err := NewImageFromCompressedMonochrome(5, 2, deflateBytes(raw))
	if err != nil {
		t.Fatalf("monochrome decode: %v", err)
	}
	wantRow0 := []bool{true, false, true, false, true}
	for x, want := range wantRow0 {
		got := img.PixelAt(x, 0) == Pixel(0xffffffff)
		if got != want {
			t.Errorf("row 0 bit %d = %v, want %v", x, got, want)
		}
		if img.PixelAt(x, 0) != 0 && img.PixelAt(x, 0) != Pixel(0xffffffff) {
			t.Errorf("mask pixel %d is neither white nor clear", x)
		}
	}
	if img.PixelAt(0, 1) != 0 || img.PixelAt(1, 1) != Pixel(0xffffffff) {
		t.Error("row 1 bits wrong")
	}
}

// TestSubimage verifies in-bounds copies and zero-filled exteriors.
func TestSubimage(t *testing.T) {
	img := NewImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetPixelAt(x, y, PixelFromBGRA(uint8(x), uint8(y), 0, 255))
		}
	}

	sub := img.Subimage(1, 1, 2, 2)
	if sub.PixelAt(0, 0) != PixelFromBGRA(1, 1, 0, 255) {
		t.Error("interior copy wrong")
	}

	// Extends off every edge: interior lands offset, exterior is zero.
	sub = img.Subimage(-2, -2, 8, 8)
	if sub.PixelAt(0, 0) != 0 {
		t.Error("exterior should be zero")
	}
	if sub.PixelAt(2, 2) != PixelFromBGRA(0, 0, 0, 255) {
		t.Error("translated interior wrong")
	}
	if sub.PixelAt(7, 7) != 0 {
		t.Error("far exterior should be zero")
	}
}

// TestImageTransform_Identity verifies an identity-sized axis-aligned
// quad reproduces the source pixels at full coverage.
func TestImageTransform_Identity(t *testing.T) {
	red := PixelFromBGRA(0, 0, 255, 255)
	src := solidImage(4, 4, red)
	dc := NewDrawContext(DrawContextOptions{})

	dst, offsetX, offsetY, err := src.Transform(dc, MakeQuad(0, 0, 4, 0, 4, 4, 0, 4))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if offsetX != 0 || offsetY != 0 {
		t.Errorf("offset = (%d,%d), want (0,0)", offsetX, offsetY)
	}
	if dst.Width() != 5 || dst.Height() != 5 {
		t.Fatalf("destination = %dx%d, want 5x5 (inclusive quad bounds)", dst.Width(), dst.Height())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if dst.PixelAt(x, y) != red {
				t.Fatalf("pixel (%d,%d) = %08x, want solid red", x, y, uint32(dst.PixelAt(x, y)))
			}
		}
	}
}

// TestImageTransform_Translated verifies the returned offset is the
// quad bounds' top-left corner.
func TestImageTransform_Translated(t *testing.T) {
	src := solidImage(4, 4, PixelFromBGRA(0, 255, 0, 255))
	dc := NewDrawContext(DrawContextOptions{})

	_, offsetX, offsetY, err := src.Transform(dc, MakeQuad(10, 20, 14, 20, 14, 24, 10, 24))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if offsetX != 10 || offsetY != 20 {
		t.Errorf("offset = (%d,%d), want (10,20)", offsetX, offsetY)
	}
}

// TestImageTransform_Degenerate verifies a collapsed quad fails.
func TestImageTransform_Degenerate(t *testing.T) {
	src := solidImage(4, 4, PixelFromBGRA(0, 255, 0, 255))
	dc := NewDrawContext(DrawContextOptions{})
	_, _, _, err := src.Transform(dc, MakeQuad(0, 0, 0, 0, 0, 0, 0, 0))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}
