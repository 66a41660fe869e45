package paintcore

import "testing"

// TestPixelChannels verifies the canonical channel layout.
func TestPixelChannels(t *testing.T) {
	p := PixelFromBGRA(0x11, 0x22, 0x33, 0x44)
	if uint32(p) != 0x44332211 {
		t.Fatalf("packed value = %08x, want 44332211", uint32(p))
	}
	if p.B() != 0x11 || p.G() != 0x22 || p.R() != 0x33 || p.A() != 0x44 {
		t.Errorf("channels = %02x %02x %02x %02x", p.B(), p.G(), p.R(), p.A())
	}
}

// TestPixelBytesRoundTrip verifies wire serialization is the
// canonical little-endian BGRA order.
func TestPixelBytesRoundTrip(t *testing.T) {
	in := []Pixel{PixelFromBGRA(1, 2, 3, 4), PixelFromBGRA(0xff, 0, 0x80, 0xff)}
	raw := pixelsToBytes(in)
	if raw[0] != 1 || raw[1] != 2 || raw[2] != 3 || raw[3] != 4 {
		t.Errorf("wire order = % x, want b g r a", raw[:4])
	}
	out := make([]Pixel, len(in))
	pixelsFromBytes(out, raw)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("pixel %d: got %08x, want %08x", i, uint32(out[i]), uint32(in[i]))
		}
	}
}

// TestPremultiplyUnpremultiply verifies opaque pixels pass through
// both conversions and premultiplying a half-transparent pixel keeps
// its alpha and does not raise its color channels.
func TestPremultiplyUnpremultiply(t *testing.T) {
	opaque := PixelFromBGRA(10, 20, 30, 255)
	if opaque.Premultiply() != opaque || opaque.Unpremultiply() != opaque {
		t.Error("opaque pixels must be fixed points")
	}
	if Pixel(0).Premultiply() != 0 {
		t.Error("transparent stays transparent")
	}
	straight := PixelFromBGRA(200, 100, 50, 128)
	premul := straight.Premultiply()
	if premul.A() != 128 {
		t.Errorf("alpha changed: %d", premul.A())
	}
	if premul.B() > straight.B() {
		t.Error("premultiplied channel exceeds straight value")
	}
}

// TestCompositePixels_OpacityScaling verifies opacity folds into the
// source before blending.
func TestCompositePixels_OpacityScaling(t *testing.T) {
	dst := []Pixel{0}
	src := []Pixel{PixelFromBGRA(0, 0, 255, 255)}
	compositePixels(dst, src, 128, BlendNormal)
	if dst[0].A() != 128 {
		t.Errorf("alpha = %d, want 128", dst[0].A())
	}
	if dst[0].R() != 128 {
		t.Errorf("red = %d, want 128 (premultiplied)", dst[0].R())
	}
}

// TestCompositeMask_SkipsZeroCoverage verifies untouched pixels stay
// bit-identical.
func TestCompositeMask_SkipsZeroCoverage(t *testing.T) {
	dst := []Pixel{PixelFromBGRA(9, 9, 9, 255), PixelFromBGRA(9, 9, 9, 255)}
	mask := []uint8{0, 255}
	compositeMask(dst, PixelFromBGRA(0, 0, 255, 255), mask, BlendNormal)
	if dst[0] != PixelFromBGRA(9, 9, 9, 255) {
		t.Error("zero-coverage pixel was touched")
	}
	if dst[1] != PixelFromBGRA(0, 0, 255, 255) {
		t.Errorf("full-coverage pixel = %08x", uint32(dst[1]))
	}
}
