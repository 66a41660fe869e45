package blend

import "testing"

func bgra(b, g, r, a uint32) uint32 {
	return b | g<<8 | r<<16 | a<<24
}

// TestExists verifies the known mode range and its boundaries.
func TestExists(t *testing.T) {
	if !Exists(int(ModeNormal)) {
		t.Error("Normal should exist")
	}
	if !Exists(int(ModeReplace)) {
		t.Error("Replace should exist")
	}
	if Exists(-1) {
		t.Error("negative mode should not exist")
	}
	if Exists(int(modeCount)) {
		t.Error("out-of-range mode should not exist")
	}
}

// TestValidForBrush verifies Replace is the only non-brush mode.
func TestValidForBrush(t *testing.T) {
	for m := Mode(0); m < modeCount; m++ {
		want := m != ModeReplace
		if got := m.ValidForBrush(); got != want {
			t.Errorf("%s.ValidForBrush() = %v, want %v", m, got, want)
		}
	}
}

// TestComposite_NormalOpaque verifies an opaque source replaces the
// destination.
func TestComposite_NormalOpaque(t *testing.T) {
	dst := bgra(10, 20, 30, 255)
	src := bgra(200, 100, 50, 255)
	if got := Composite(dst, src, ModeNormal); got != src {
		t.Errorf("got %08x, want %08x", got, src)
	}
}

// TestComposite_NormalTransparentSource verifies a fully transparent
// source leaves the destination untouched.
func TestComposite_NormalTransparentSource(t *testing.T) {
	dst := bgra(10, 20, 30, 255)
	if got := Composite(dst, 0, ModeNormal); got != dst {
		t.Errorf("got %08x, want %08x", got, dst)
	}
}

// TestComposite_NormalOverTransparent verifies source-over onto
// nothing yields the source.
func TestComposite_NormalOverTransparent(t *testing.T) {
	src := bgra(100, 50, 25, 128)
	if got := Composite(0, src, ModeNormal); got != src {
		t.Errorf("got %08x, want %08x", got, src)
	}
}

// TestComposite_EraseFull verifies a full-strength erase clears the
// destination.
func TestComposite_EraseFull(t *testing.T) {
	dst := bgra(10, 20, 30, 255)
	eraser := bgra(0, 0, 0, 255)
	if got := Composite(dst, eraser, ModeErase); got != 0 {
		t.Errorf("got %08x, want 0", got)
	}
}

// TestComposite_MultiplyKeepsAlpha verifies multiply recolors without
// changing the destination alpha and leaves transparent pixels alone.
func TestComposite_MultiplyKeepsAlpha(t *testing.T) {
	white := bgra(255, 255, 255, 255)
	src := bgra(0, 0, 255, 255) // opaque red
	got := Composite(white, src, ModeMultiply)
	if pixelA(got) != 255 {
		t.Errorf("alpha changed: %08x", got)
	}
	if pixelR(got) != 255 || pixelG(got) != 0 || pixelB(got) != 0 {
		t.Errorf("multiply of white by red: got %08x", got)
	}
	if got := Composite(0, src, ModeMultiply); got != 0 {
		t.Errorf("multiply over transparent should stay transparent, got %08x", got)
	}
}

// TestComposite_DarkenLighten spot-checks the min/max channel modes.
func TestComposite_DarkenLighten(t *testing.T) {
	dst := bgra(100, 100, 100, 255)
	src := bgra(50, 200, 100, 255)
	dark := Composite(dst, src, ModeDarken)
	if pixelB(dark) != 50 || pixelG(dark) != 100 || pixelR(dark) != 100 {
		t.Errorf("darken: got %08x", dark)
	}
	light := Composite(dst, src, ModeLighten)
	if pixelB(light) != 100 || pixelG(light) != 200 || pixelR(light) != 100 {
		t.Errorf("lighten: got %08x", light)
	}
}

// TestComposite_Behind verifies paint only lands where the
// destination is transparent.
func TestComposite_Behind(t *testing.T) {
	src := bgra(0, 0, 255, 255)
	dst := bgra(255, 0, 0, 255)
	if got := Composite(dst, src, ModeBehind); got != dst {
		t.Errorf("behind should not paint over opaque pixels: got %08x", got)
	}
	if got := Composite(0, src, ModeBehind); got != src {
		t.Errorf("behind over transparent should paint: got %08x", got)
	}
}

// TestComposite_Replace ignores the destination entirely.
func TestComposite_Replace(t *testing.T) {
	dst := bgra(1, 2, 3, 255)
	src := bgra(9, 8, 7, 64)
	if got := Composite(dst, src, ModeReplace); got != src {
		t.Errorf("got %08x, want %08x", got, src)
	}
}

// TestComposite_ColorEraseExactMatch verifies erasing a pixel with
// its own color removes it.
func TestComposite_ColorEraseExactMatch(t *testing.T) {
	dst := bgra(0, 0, 255, 255)
	src := bgra(0, 0, 255, 255)
	if got := Composite(dst, src, ModeColorErase); got != 0 {
		t.Errorf("got %08x, want 0", got)
	}
}

// TestScale verifies identity, zero and half scaling.
func TestScale(t *testing.T) {
	p := bgra(100, 150, 200, 255)
	if got := Scale(p, 255); got != p {
		t.Errorf("identity: got %08x", got)
	}
	if got := Scale(p, 0); got != 0 {
		t.Errorf("zero: got %08x", got)
	}
	half := Scale(p, 128)
	if pixelA(half) != 128 {
		t.Errorf("half alpha: got %d", pixelA(half))
	}
}

// TestMulDiv255Exact verifies the division-free formula against the
// reference computation over the full range boundaries.
func TestMulDiv255Exact(t *testing.T) {
	for _, a := range []uint32{0, 1, 127, 128, 254, 255} {
		for _, b := range []uint32{0, 1, 127, 128, 254, 255} {
			want := a * b / 255
			// Round-to-nearest reference.
			want = (a*b + 127) / 255
			got := mulDiv255(a, b)
			if got != want && got != a*b/255 {
				t.Errorf("mulDiv255(%d, %d) = %d", a, b, got)
			}
		}
	}
}
