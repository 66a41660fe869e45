package paintcore

import "testing"

var red = PixelFromBGRA(0, 0, 255, 255)
var white = PixelFromBGRA(255, 255, 255, 255)

// TestLayerContentTileAt returns blank outside the grid.
func TestLayerContentTileAt(t *testing.T) {
	lc := NewLayerContent(100, 70, nil)
	if lc.TileAt(0, 0) != BlankTile() {
		t.Error("fresh content should be blank")
	}
	if lc.TileAt(5, 0) != BlankTile() || lc.TileAt(-1, 0) != BlankTile() {
		t.Error("out-of-grid positions should read blank")
	}
}

// TestPutImage_AcrossTileBoundary writes an image straddling four
// tiles and reads it back.
func TestPutImage_AcrossTileBoundary(t *testing.T) {
	tlc := NewTransientLayerContentBlank(128, 128)
	img := solidImage(16, 16, red)
	tlc.PutImage(1, BlendNormal, 56, 56, img)
	lc := tlc.Persist()

	for _, pt := range [][2]int{{56, 56}, {71, 71}, {63, 64}, {64, 63}} {
		if lc.pixelAt(pt[0], pt[1]) != red {
			t.Errorf("pixel (%d,%d) not written", pt[0], pt[1])
		}
	}
	if lc.pixelAt(55, 56) != 0 || lc.pixelAt(72, 71) != 0 {
		t.Error("pixels outside the image were written")
	}
	// Only the four corner tiles got materialized.
	if lc.TileAt(0, 0).isBlankRef() || lc.TileAt(1, 1).isBlankRef() {
		t.Error("touched tiles should not be blank")
	}
}

// TestPutImage_ClipsToContent verifies negative placement clips.
func TestPutImage_ClipsToContent(t *testing.T) {
	tlc := NewTransientLayerContentBlank(64, 64)
	tlc.PutImage(1, BlendNormal, -8, -8, solidImage(16, 16, red))
	lc := tlc.Persist()
	if lc.pixelAt(7, 7) != red {
		t.Error("clipped image interior missing")
	}
	if lc.pixelAt(8, 8) != 0 {
		t.Error("pixels beyond the clipped image were written")
	}
}

// TestFillRect fills a subrectangle and nothing else.
func TestFillRect(t *testing.T) {
	tlc := NewTransientLayerContentBlank(64, 64)
	tlc.FillRect(1, BlendNormal, 4, 4, 12, 12, red)
	lc := tlc.Persist()
	if lc.pixelAt(4, 4) != red || lc.pixelAt(11, 11) != red {
		t.Error("fill missing inside the rectangle")
	}
	if lc.pixelAt(3, 4) != 0 || lc.pixelAt(12, 11) != 0 {
		t.Error("fill leaked outside the rectangle")
	}
}

// TestSelect_WithMask gates selection by a monochrome mask.
func TestSelect_WithMask(t *testing.T) {
	tlc := NewTransientLayerContentBlank(64, 64)
	tlc.FillRect(1, BlendNormal, 0, 0, 4, 4, red)
	lc := tlc.Persist()

	mask := NewImage(4, 4)
	mask.SetPixelAt(1, 1, Pixel(0xffffffff))
	sel := lc.Select(MakeRect(0, 0, 4, 4), mask)
	if sel.PixelAt(1, 1) != red {
		t.Error("masked-in pixel missing")
	}
	if sel.PixelAt(0, 0) != 0 {
		t.Error("masked-out pixel selected")
	}

	full := lc.Select(MakeRect(0, 0, 4, 4), nil)
	if full.PixelAt(0, 0) != red {
		t.Error("unmasked selection missing pixels")
	}
}

// TestResize_TranslatesPixels verifies growth on the left/top
// translates content, tile-aligned or not.
func TestResize_TranslatesPixels(t *testing.T) {
	base := NewTransientLayerContentBlank(64, 64)
	base.FillRect(1, BlendNormal, 0, 0, 2, 2, red)
	lc := base.Persist()

	aligned := lc.Resize(1, 64, 0, 0, 64).Persist()
	if aligned.Width() != 128 || aligned.Height() != 128 {
		t.Fatalf("aligned size = %dx%d", aligned.Width(), aligned.Height())
	}
	if aligned.pixelAt(64, 64) != red || aligned.pixelAt(65, 65) != red {
		t.Error("aligned translation lost pixels")
	}
	if aligned.pixelAt(0, 0) != 0 {
		t.Error("exposed area should be blank")
	}

	odd := lc.Resize(1, 3, 0, 0, 5).Persist()
	if odd.pixelAt(5, 3) != red || odd.pixelAt(6, 4) != red {
		t.Error("unaligned translation lost pixels")
	}
	if odd.pixelAt(4, 3) != 0 || odd.pixelAt(7, 4) != 0 {
		t.Error("unaligned translation smeared pixels")
	}
}

// TestResize_Crop verifies negative borders crop content.
func TestResize_Crop(t *testing.T) {
	base := NewTransientLayerContentBlank(64, 64)
	base.FillRect(1, BlendNormal, 10, 10, 12, 12, red)
	lc := base.Persist()

	cropped := lc.Resize(1, -8, 0, 0, -8).Persist()
	if cropped.Width() != 56 || cropped.Height() != 56 {
		t.Fatalf("cropped size = %dx%d", cropped.Width(), cropped.Height())
	}
	if cropped.pixelAt(2, 2) != red {
		t.Error("cropped content should shift up-left")
	}
}

// TestMerge composites one content onto another and skips blank
// source tiles.
func TestMerge(t *testing.T) {
	dst := NewTransientLayerContentBlank(128, 64)
	dst.FillRect(1, BlendNormal, 0, 0, 128, 64, white)

	srcT := NewTransientLayerContentBlank(128, 64)
	srcT.FillRect(1, BlendNormal, 0, 0, 4, 4, red)
	src := srcT.Persist()

	dst.Merge(1, src, 255, BlendNormal)
	lc := dst.Persist()
	if lc.pixelAt(0, 0) != red {
		t.Error("merge did not composite source pixels")
	}
	if lc.pixelAt(100, 10) != white {
		t.Error("merge disturbed untouched area")
	}
}

// TestTransientSublayer_CreateAndMerge exercises the sublayer
// lifecycle: create on demand, find again, merge away.
func TestTransientSublayer_CreateAndMerge(t *testing.T) {
	tlc := NewTransientLayerContentBlank(64, 64)
	sub, props := tlc.TransientSublayer(7, BlendMultiply, 0x80)
	if props.ID() != 7 {
		t.Fatalf("sublayer props id = %d", props.ID())
	}
	sub.FillRect(7, BlendNormal, 0, 0, 4, 4, red)

	again, _ := tlc.TransientSublayer(7, BlendNormal, 255)
	if again != sub {
		t.Error("second lookup should find the same sublayer")
	}

	lc := tlc.Persist()
	if lc.SubProps().Count() != 1 || lc.SubProps().At(0).Opacity() != 0x80 {
		t.Fatal("persisted sublayer props wrong")
	}
	if lc.SubProps().At(0).BlendMode() != BlendMultiply {
		t.Error("sublayer blend mode wrong")
	}

	reopened := NewTransientLayerContent(lc)
	j := reopened.sublayerIndexByID(7)
	if j < 0 {
		t.Fatal("sublayer lost on persist")
	}
	reopened.MergeSublayerAt(7, j)
	merged := reopened.Persist()
	if merged.SubProps().Count() != 0 {
		t.Error("merged sublayer should be gone")
	}
}

// TestDiff_TileGranularity marks exactly the rewritten tiles.
func TestDiff_TileGranularity(t *testing.T) {
	baseT := NewTransientLayerContentBlank(128, 128)
	base := baseT.Persist()
	props := &LayerProps{id: 1, opacity: 255, blendMode: BlendNormal}

	next := NewTransientLayerContent(base)
	next.FillRect(1, BlendNormal, 70, 70, 80, 80, red)
	lc := next.Persist()

	d := NewCanvasDiff()
	d.Begin(128, 128, 128, 128, false)
	lc.Diff(props, base, props, d)

	var marked [][2]int
	d.EachPos(func(x, y int) { marked = append(marked, [2]int{x, y}) })
	if len(marked) != 1 || marked[0] != [2]int{1, 1} {
		t.Errorf("marked = %v, want just (1,1)", marked)
	}
}

// TestDiff_PropsChangeMarksAll marks the whole layer when a
// render-affecting property changes.
func TestDiff_PropsChangeMarksAll(t *testing.T) {
	lc := NewTransientLayerContentBlank(128, 128).Persist()
	a := &LayerProps{id: 1, opacity: 255, blendMode: BlendNormal}
	b := &LayerProps{id: 1, opacity: 128, blendMode: BlendNormal}

	d := NewCanvasDiff()
	d.Begin(128, 128, 128, 128, false)
	lc.Diff(a, lc, b, d)
	count := 0
	d.EachIndex(func(int) { count++ })
	if count != 4 {
		t.Errorf("marked %d tiles, want all 4", count)
	}
}

// TestDiff_RewrittenIdenticalTileStaysClean verifies content
// comparison backs up the pointer fast path.
func TestDiff_RewrittenIdenticalTileStaysClean(t *testing.T) {
	props := &LayerProps{id: 1, opacity: 255, blendMode: BlendNormal}
	first := NewTransientLayerContentBlank(64, 64)
	first.FillRect(1, BlendNormal, 0, 0, 8, 8, red)
	a := first.Persist()

	second := NewTransientLayerContent(a)
	second.FillRect(1, BlendNormal, 0, 0, 8, 8, red)
	b := second.Persist()

	if a.TileAt(0, 0) == b.TileAt(0, 0) {
		t.Fatal("test premise: the tile should have been rewritten")
	}
	d := NewCanvasDiff()
	d.Begin(64, 64, 64, 64, false)
	b.Diff(props, a, props, d)
	if d.TilesChanged() {
		t.Error("identical rewritten tile should not be marked")
	}
}

// TestFlattenTileTo composites content and sublayers onto a target
// tile.
func TestFlattenTileTo(t *testing.T) {
	tlc := NewTransientLayerContentBlank(64, 64)
	tlc.FillRect(1, BlendNormal, 0, 0, 64, 64, white)
	sub, _ := tlc.TransientSublayer(9, BlendMultiply, 255)
	sub.FillRect(9, BlendNormal, 0, 0, 64, 64, red)
	lc := tlc.Persist()

	tt := NewTransientTileBlank(0)
	lc.FlattenTileTo(1, 0, tt, 255, BlendNormal)
	got := tt.PixelAt(5, 5)
	if got != red {
		t.Errorf("flattened pixel = %08x, want multiply(white, red) = red", uint32(got))
	}
}

// TestFillRect_IdenticalRewriteStillBlankCollapse verifies writing
// nothing visible persists back to the blank singleton.
func TestFillRect_IdenticalRewriteStillBlankCollapse(t *testing.T) {
	tlc := NewTransientLayerContentBlank(64, 64)
	tlc.FillRect(1, BlendErase, 0, 0, 8, 8, PixelFromBGRA(0, 0, 0, 255))
	lc := tlc.Persist()
	if lc.TileAt(0, 0) != BlankTile() {
		t.Error("erasing a blank tile should persist back to blank")
	}
}
