package paintcore

import "testing"

// TestMakeClassicStamp_HardDab verifies a hard dab has full coverage
// at the center and none outside the radius.
func TestMakeClassicStamp_HardDab(t *testing.T) {
	stamp := makeClassicStamp(8, 8, 6, 255, 255)
	if stamp == nil {
		t.Fatal("stamp should exist")
	}
	center := stamp.Mask[(8-stamp.Top)*stamp.Diameter+(8-stamp.Left)]
	if center != 255 {
		t.Errorf("center coverage = %d, want 255", center)
	}
	corner := stamp.Mask[0]
	if corner != 0 {
		t.Errorf("corner coverage = %d, want 0", corner)
	}
}

// TestMakeClassicStamp_SoftFalloff verifies coverage decreases toward
// the rim for soft dabs.
func TestMakeClassicStamp_SoftFalloff(t *testing.T) {
	stamp := makeClassicStamp(8, 8, 8, 64, 255)
	d := stamp.Diameter
	cy := 8 - stamp.Top
	center := stamp.Mask[cy*d+(8-stamp.Left)]
	nearRim := stamp.Mask[cy*d+(8-stamp.Left)+3]
	if center <= nearRim {
		t.Errorf("coverage should fall off: center %d, near rim %d", center, nearRim)
	}
}

// TestMakePixelStamp_SquareVsRound compares the two hard dab shapes.
func TestMakePixelStamp_SquareVsRound(t *testing.T) {
	square := makePixelStamp(10, 10, 5, true, 200)
	for i, c := range square.Mask {
		if c != 200 {
			t.Fatalf("square mask cell %d = %d, want 200", i, c)
		}
	}

	round := makePixelStamp(10, 10, 5, false, 255)
	if round.Mask[0] != 0 {
		t.Error("round dab should not cover the corner")
	}
	if round.Mask[2*5+2] != 255 {
		t.Error("round dab should cover the center")
	}
}

// TestMakeStamp_Degenerate returns nil for nothing to draw.
func TestMakeStamp_Degenerate(t *testing.T) {
	if makeClassicStamp(0, 0, 0, 255, 255) != nil {
		t.Error("zero-size classic dab should be nil")
	}
	if makeClassicStamp(0, 0, 4, 255, 0) != nil {
		t.Error("zero-opacity classic dab should be nil")
	}
	if makePixelStamp(0, 0, 0, false, 255) != nil {
		t.Error("zero-size pixel dab should be nil")
	}
}

// TestPaintDrawDabs_MasterAlphaScalesCoverage verifies the master
// alpha folds into each dab.
func TestPaintDrawDabs_MasterAlphaScalesCoverage(t *testing.T) {
	dc := NewDrawContext(DrawContextOptions{})
	target := NewTransientLayerContentBlank(64, 64)
	params := &PaintDrawDabsParams{
		ContextID: 1, OriginX: 8, OriginY: 8,
		Color: PixelFromBGRA(0, 0, 255, 0), BlendMode: BlendNormal,
		MasterAlpha: 128,
		Pixel:       []PixelDab{{Size: 4, Opacity: 255}},
		Square:      true,
	}
	if err := paintDrawDabs(dc, params, target); err != nil {
		t.Fatalf("paintDrawDabs: %v", err)
	}
	got := target.pixelAt(8, 8)
	if got.A() != 128 || got.R() != 128 {
		t.Errorf("pixel = %08x, want half-coverage premultiplied red", uint32(got))
	}
}
