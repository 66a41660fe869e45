package paintcore

import "math/bits"

// CanvasDiff is a reusable per-tile change bitmap built by comparing
// two canvas snapshots. One bit per canvas tile, packed into uint64
// words; a separate flag records whether any layer props changed so
// observers can refresh layer list UIs.
//
// A CanvasDiff is owned by a single observer and is not safe for
// concurrent use.
type CanvasDiff struct {
	xtiles, ytiles    int
	words             []uint64
	layerPropsChanged bool
}

// NewCanvasDiff returns an empty diff.
func NewCanvasDiff() *CanvasDiff {
	return &CanvasDiff{}
}

func (d *CanvasDiff) count() int { return d.xtiles * d.ytiles }

// Begin resizes the bitmap for the current canvas dimensions and
// resets it. If the dimensions changed, every tile is marked.
// TODO: mark only newly added tiles as changed, not all of them.
func (d *CanvasDiff) Begin(oldWidth, oldHeight, currentWidth, currentHeight int, layerPropsChanged bool) {
	d.xtiles = tileCountRoundUp(currentWidth)
	d.ytiles = tileCountRoundUp(currentHeight)
	nwords := (d.count() + 63) / 64
	if nwords > len(d.words) {
		d.words = make([]uint64, nwords)
	}
	words := d.words[:nwords]
	if oldWidth != currentWidth || oldHeight != currentHeight {
		d.markAll(words)
	} else {
		for i := range words {
			words[i] = 0
		}
	}
	d.layerPropsChanged = layerPropsChanged
}

func (d *CanvasDiff) markAll(words []uint64) {
	total := d.count()
	full := total / 64
	for i := 0; i < full; i++ {
		words[i] = ^uint64(0)
	}
	if rem := total % 64; rem > 0 {
		words[full] = 1<<rem - 1
	}
}

// XTiles returns the bitmap width in tiles.
func (d *CanvasDiff) XTiles() int { return d.xtiles }

// YTiles returns the bitmap height in tiles.
func (d *CanvasDiff) YTiles() int { return d.ytiles }

// Mark sets the tile at the given index changed.
func (d *CanvasDiff) Mark(index int) {
	d.words[index/64] |= 1 << (index % 64)
}

// MarkPos sets the tile at grid position (x, y) changed if it lies
// within the bitmap.
func (d *CanvasDiff) MarkPos(x, y int) {
	if x >= 0 && x < d.xtiles && y >= 0 && y < d.ytiles {
		d.Mark(y*d.xtiles + x)
	}
}

// marked reports whether the tile at index is already changed.
func (d *CanvasDiff) marked(index int) bool {
	return d.words[index/64]&(1<<(index%64)) != 0
}

// Check invokes fn for every tile not yet marked changed and marks
// those for which fn returns true.
func (d *CanvasDiff) Check(fn func(index int) bool) {
	total := d.count()
	for i := 0; i < total; i++ {
		if !d.marked(i) && fn(i) {
			d.Mark(i)
		}
	}
}

// CheckAll marks every tile changed.
func (d *CanvasDiff) CheckAll() {
	nwords := (d.count() + 63) / 64
	d.markAll(d.words[:nwords])
}

// EachIndex calls fn with the index of every changed tile in
// ascending order.
func (d *CanvasDiff) EachIndex(fn func(index int)) {
	total := d.count()
	nwords := (total + 63) / 64
	for w := 0; w < nwords; w++ {
		word := d.words[w]
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			index := w*64 + bit
			if index >= total {
				break
			}
			fn(index)
			word &^= 1 << bit
		}
	}
}

// EachPos calls fn with the grid position of every changed tile in
// row-major order.
func (d *CanvasDiff) EachPos(fn func(x, y int)) {
	d.EachIndex(func(index int) {
		fn(index%d.xtiles, index/d.xtiles)
	})
}

// TilesChanged reports whether any tile is marked changed.
func (d *CanvasDiff) TilesChanged() bool {
	total := d.count()
	nwords := (total + 63) / 64
	for w := 0; w < nwords; w++ {
		if d.words[w] != 0 {
			return true
		}
	}
	return false
}

// LayerPropsChangedReset reads and clears the layer props flag.
func (d *CanvasDiff) LayerPropsChangedReset() bool {
	changed := d.layerPropsChanged
	d.layerPropsChanged = false
	return changed
}
