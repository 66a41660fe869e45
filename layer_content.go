package paintcore

// LayerContent is the pixel content of one layer: a grid of
// ⌈w/64⌉×⌈h/64⌉ tile references plus an ordered set of sublayers used
// to accumulate indirect brush strokes. Immutable; tiles and
// sublayers are shared between snapshots.
type LayerContent struct {
	width, height int
	tiles         []*Tile
	subContents   *LayerContentList
	subProps      *LayerPropsList
}

// Shared empty sublayer lists. Untouched sublayer state must persist
// to the same pointer so snapshot diffs can compare by identity.
var (
	emptyLayerContentList = &LayerContentList{}
	emptyLayerPropsList   = &LayerPropsList{}
)

// NewLayerContent creates content of the given size with every grid
// cell set to fill, or blank when fill is nil.
func NewLayerContent(width, height int, fill *Tile) *LayerContent {
	if fill == nil {
		fill = BlankTile()
	}
	tiles := make([]*Tile, tileTotalRound(width, height))
	for i := range tiles {
		tiles[i] = fill
	}
	return &LayerContent{
		width:       width,
		height:      height,
		tiles:       tiles,
		subContents: emptyLayerContentList,
		subProps:    emptyLayerPropsList,
	}
}

// Width returns the content width in pixels.
func (lc *LayerContent) Width() int { return lc.width }

// Height returns the content height in pixels.
func (lc *LayerContent) Height() int { return lc.height }

func (lc *LayerContent) xtiles() int { return tileCountRoundUp(lc.width) }
func (lc *LayerContent) ytiles() int { return tileCountRoundUp(lc.height) }

// TileAt returns the tile at grid position (x, y), or the blank tile
// when the position lies outside the grid.
func (lc *LayerContent) TileAt(x, y int) *Tile {
	if x < 0 || y < 0 || x >= lc.xtiles() || y >= lc.ytiles() {
		return BlankTile()
	}
	return lc.tiles[y*lc.xtiles()+x]
}

// SubContents returns the sublayer contents, parallel to SubProps.
func (lc *LayerContent) SubContents() *LayerContentList { return lc.subContents }

// SubProps returns the sublayer props, parallel to SubContents.
func (lc *LayerContent) SubProps() *LayerPropsList { return lc.subProps }

// pixelAt reads one pixel, treating out-of-bounds as transparent.
func (lc *LayerContent) pixelAt(x, y int) Pixel {
	if x < 0 || y < 0 || x >= lc.width || y >= lc.height {
		return 0
	}
	return lc.TileAt(x/TileSize, y/TileSize).PixelAt(x%TileSize, y%TileSize)
}

// ToImage flattens every tile into one image of the content's size.
func (lc *LayerContent) ToImage() *Image {
	img := NewImage(lc.width, lc.height)
	xt, yt := lc.xtiles(), lc.ytiles()
	for ty := 0; ty < yt; ty++ {
		for tx := 0; tx < xt; tx++ {
			t := lc.tiles[ty*xt+tx]
			if t.pixels == nil {
				continue
			}
			w := min(TileSize, lc.width-tx*TileSize)
			h := min(TileSize, lc.height-ty*TileSize)
			for row := 0; row < h; row++ {
				d := (ty*TileSize+row)*lc.width + tx*TileSize
				s := row * TileSize
				copy(img.pixels[d:d+w], t.pixels[s:s+w])
			}
		}
	}
	return img
}

// Select copies the rectangular region out of the content as an
// image, optionally gated by a monochrome mask of the same size: mask
// pixels with zero alpha blank out the selection.
func (lc *LayerContent) Select(rect Rect, mask *Image) *Image {
	img := NewImage(rect.Width(), rect.Height())
	for y := 0; y < rect.Height(); y++ {
		for x := 0; x < rect.Width(); x++ {
			if mask != nil && mask.PixelAt(x, y).A() == 0 {
				continue
			}
			img.pixels[y*rect.Width()+x] = lc.pixelAt(rect.X1+x, rect.Y1+y)
		}
	}
	return img
}

// Resize produces transient content of the new dimensions. Existing
// pixels are translated by (left, top); newly exposed area is blank.
// Sublayers are carried along at the same offset.
func (lc *LayerContent) Resize(contextID uint32, top, right, bottom, left int) *TransientLayerContent {
	width := lc.width + left + right
	height := lc.height + top + bottom
	tlc := NewTransientLayerContentBlank(width, height)

	if left%TileSize == 0 && top%TileSize == 0 {
		// Tile-aligned translation: share the surviving tiles.
		dx, dy := left/TileSize, top/TileSize
		xt, yt := tlc.xtiles(), tlc.ytiles()
		for ty := 0; ty < yt; ty++ {
			for tx := 0; tx < xt; tx++ {
				src := lc.TileAt(tx-dx, ty-dy)
				if src.pixels != nil {
					tlc.tiles[ty*xt+tx] = tileRef{t: src}
				}
			}
		}
	} else {
		tlc.blitFrom(lc, left, top)
	}

	for i := 0; i < lc.subContents.Count(); i++ {
		sub := lc.subContents.At(i).Resize(contextID, top, right, bottom, left)
		tlc.subContents = append(tlc.subContents, contentRef{tlc: sub})
		tlc.subProps = append(tlc.subProps, propsRef{lp: lc.subProps.At(i)})
		tlc.subDirty = true
	}
	return tlc
}

// Diff compares this content and its props against the previous
// snapshot's, marking changed canvas tiles. A render-affecting props
// change or a sublayer change marks the whole layer; otherwise tiles
// are compared by identity first and content second, so a rewritten
// but identical tile stays clean.
func (lc *LayerContent) Diff(ownProps *LayerProps, prev *LayerContent, prevProps *LayerProps, diff *CanvasDiff) {
	if ownProps.renderChanged(prevProps) ||
		lc.subContents != prev.subContents || lc.subProps != prev.subProps {
		lc.DiffMark(diff)
		return
	}
	if lc == prev {
		return
	}
	if lc.width != prev.width || lc.height != prev.height {
		lc.DiffMark(diff)
		prev.DiffMark(diff)
		return
	}
	xt, yt := lc.xtiles(), lc.ytiles()
	for ty := 0; ty < yt; ty++ {
		for tx := 0; tx < xt; tx++ {
			a := lc.tiles[ty*xt+tx]
			b := prev.tiles[ty*xt+tx]
			if a != b && !a.samePixels(b) {
				diff.MarkPos(tx, ty)
			}
		}
	}
}

// DiffMark marks every canvas tile covered by this content.
func (lc *LayerContent) DiffMark(diff *CanvasDiff) {
	xt, yt := lc.xtiles(), lc.ytiles()
	for ty := 0; ty < yt; ty++ {
		for tx := 0; tx < xt; tx++ {
			diff.MarkPos(tx, ty)
		}
	}
}

// FlattenTileTo composites one canvas tile of this layer onto a
// mutable target tile, sublayers included. canvasXTiles is the canvas
// grid width; tileIndex addresses that grid.
func (lc *LayerContent) FlattenTileTo(canvasXTiles, tileIndex int, tt *TransientTile, opacity uint8, mode BlendMode) {
	tx := tileIndex % canvasXTiles
	ty := tileIndex / canvasXTiles
	if lc.subContents.Count() == 0 {
		t := lc.TileAt(tx, ty)
		if !t.isBlankRef() {
			tt.composeTile(t, opacity, mode)
		}
		return
	}
	// Indirect strokes in progress: flatten content and sublayers
	// into a scratch tile first so the layer composites as one unit.
	scratch := NewTransientTileBlank(0)
	if t := lc.TileAt(tx, ty); !t.isBlankRef() {
		scratch.composeTile(t, 255, BlendNormal)
	}
	for i := 0; i < lc.subContents.Count(); i++ {
		props := lc.subProps.At(i)
		if !props.Visible() {
			continue
		}
		if t := lc.subContents.At(i).TileAt(tx, ty); !t.isBlankRef() {
			scratch.composeTile(t, props.Opacity(), props.BlendMode())
		}
	}
	tt.composeTile(scratch.Persist(), opacity, mode)
}

// isBlankRef reports whether the tile is the shared blank singleton.
func (t *Tile) isBlankRef() bool { return t == blankTile }

// LayerContentList is an ordered, immutable list of layer contents.
type LayerContentList struct {
	contents []*LayerContent
}

// Count returns the number of entries.
func (cl *LayerContentList) Count() int { return len(cl.contents) }

// At returns the content at the given position.
func (cl *LayerContentList) At(i int) *LayerContent { return cl.contents[i] }

// tileRef points at exactly one of an immutable or transient tile.
type tileRef struct {
	t  *Tile
	tt *TransientTile
}

func (r tileRef) persist() *Tile {
	if r.tt != nil {
		return r.tt.Persist()
	}
	if r.t == nil {
		return BlankTile()
	}
	return r.t
}

// pixels returns a read-only view of the referenced tile's pixels,
// nil for blank.
func (r tileRef) pixels() []Pixel {
	if r.tt != nil {
		return r.tt.pixels
	}
	if r.t == nil {
		return nil
	}
	return r.t.pixels
}

// contentRef points at exactly one of an immutable or transient layer
// content.
type contentRef struct {
	lc  *LayerContent
	tlc *TransientLayerContent
}

func (r contentRef) persist() *LayerContent {
	if r.tlc != nil {
		return r.tlc.Persist()
	}
	return r.lc
}

// TransientLayerContent is a uniquely owned, mutable layer content
// under construction. It shares untouched tiles and sublayers with
// the immutable content it was cloned from and materializes a
// transient tile for every grid cell it writes.
type TransientLayerContent struct {
	width, height int
	tiles         []tileRef
	subContents   []contentRef
	subProps      []propsRef

	// origSubContents/origSubProps are the immutable sublayer lists
	// this content was cloned from; untouched sublayer state persists
	// back to these exact pointers so diffs can compare by identity.
	origSubContents *LayerContentList
	origSubProps    *LayerPropsList
	subDirty        bool
}

// NewTransientLayerContent shallow-clones immutable content into
// mutable form, sharing all tiles and sublayers.
func NewTransientLayerContent(lc *LayerContent) *TransientLayerContent {
	tiles := make([]tileRef, len(lc.tiles))
	for i, t := range lc.tiles {
		tiles[i] = tileRef{t: t}
	}
	subContents := make([]contentRef, lc.subContents.Count())
	subProps := make([]propsRef, lc.subProps.Count())
	for i := range subContents {
		subContents[i] = contentRef{lc: lc.subContents.At(i)}
		subProps[i] = propsRef{lp: lc.subProps.At(i)}
	}
	return &TransientLayerContent{
		width:           lc.width,
		height:          lc.height,
		tiles:           tiles,
		subContents:     subContents,
		subProps:        subProps,
		origSubContents: lc.subContents,
		origSubProps:    lc.subProps,
	}
}

// NewTransientLayerContentBlank creates mutable all-blank content.
func NewTransientLayerContentBlank(width, height int) *TransientLayerContent {
	return &TransientLayerContent{
		width:           width,
		height:          height,
		tiles:           make([]tileRef, tileTotalRound(width, height)),
		origSubContents: emptyLayerContentList,
		origSubProps:    emptyLayerPropsList,
	}
}

// Persist freezes the content, recursively persisting transient tiles
// and sublayers.
func (tlc *TransientLayerContent) Persist() *LayerContent {
	tiles := make([]*Tile, len(tlc.tiles))
	for i, r := range tlc.tiles {
		tiles[i] = r.persist()
	}
	subContents := tlc.origSubContents
	subProps := tlc.origSubProps
	if tlc.subDirty {
		if len(tlc.subContents) == 0 {
			subContents = emptyLayerContentList
			subProps = emptyLayerPropsList
		} else {
			contents := make([]*LayerContent, len(tlc.subContents))
			props := make([]*LayerProps, len(tlc.subProps))
			for i := range tlc.subContents {
				contents[i] = tlc.subContents[i].persist()
				props[i] = tlc.subProps[i].persist()
			}
			subContents = &LayerContentList{contents: contents}
			subProps = &LayerPropsList{props: props}
		}
	}
	return &LayerContent{
		width:       tlc.width,
		height:      tlc.height,
		tiles:       tiles,
		subContents: subContents,
		subProps:    subProps,
	}
}

// Width returns the content width in pixels.
func (tlc *TransientLayerContent) Width() int { return tlc.width }

// Height returns the content height in pixels.
func (tlc *TransientLayerContent) Height() int { return tlc.height }

func (tlc *TransientLayerContent) xtiles() int { return tileCountRoundUp(tlc.width) }
func (tlc *TransientLayerContent) ytiles() int { return tileCountRoundUp(tlc.height) }

// transientTileAt upgrades the grid cell at (x, y) to a transient
// tile and returns it. The position must be inside the grid.
func (tlc *TransientLayerContent) transientTileAt(contextID uint32, x, y int) *TransientTile {
	i := y*tlc.xtiles() + x
	if tlc.tiles[i].tt == nil {
		tlc.tiles[i] = tileRef{tt: NewTransientTile(tlc.tiles[i].t, contextID)}
	}
	return tlc.tiles[i].tt
}

// pixelAt reads one pixel, treating out-of-bounds as transparent.
func (tlc *TransientLayerContent) pixelAt(x, y int) Pixel {
	if x < 0 || y < 0 || x >= tlc.width || y >= tlc.height {
		return 0
	}
	px := tlc.tiles[(y/TileSize)*tlc.xtiles()+x/TileSize].pixels()
	if px == nil {
		return 0
	}
	return px[(y%TileSize)*TileSize+x%TileSize]
}

// ToImage flattens the in-progress content into one image, mainly for
// render previews and tests.
func (tlc *TransientLayerContent) ToImage() *Image {
	img := NewImage(tlc.width, tlc.height)
	for y := 0; y < tlc.height; y++ {
		for x := 0; x < tlc.width; x++ {
			img.pixels[y*tlc.width+x] = tlc.pixelAt(x, y)
		}
	}
	return img
}

// forEachTouchedTile visits every grid cell overlapping the clipped
// rectangle [l,r)×[t,b), handing fn the transient tile and the
// tile-local subrectangle.
func (tlc *TransientLayerContent) forEachTouchedTile(contextID uint32, l, t, r, b int,
	fn func(tt *TransientTile, tileX, tileY, localL, localT, localR, localB int)) {
	l = max(l, 0)
	t = max(t, 0)
	r = min(r, tlc.width)
	b = min(b, tlc.height)
	if l >= r || t >= b {
		return
	}
	for ty := t / TileSize; ty <= (b-1)/TileSize; ty++ {
		for tx := l / TileSize; tx <= (r-1)/TileSize; tx++ {
			tt := tlc.transientTileAt(contextID, tx, ty)
			localL := max(l-tx*TileSize, 0)
			localT := max(t-ty*TileSize, 0)
			localR := min(r-tx*TileSize, TileSize)
			localB := min(b-ty*TileSize, TileSize)
			fn(tt, tx, ty, localL, localT, localR, localB)
		}
	}
}

// PutImage composites an image into the content at (left, top) with
// the given blend mode, clipped to the content bounds.
func (tlc *TransientLayerContent) PutImage(contextID uint32, mode BlendMode, left, top int, img *Image) {
	tlc.forEachTouchedTile(contextID, left, top, left+img.width, top+img.height,
		func(tt *TransientTile, tx, ty, lL, lT, lR, lB int) {
			for row := lT; row < lB; row++ {
				srcY := ty*TileSize + row - top
				srcX := tx*TileSize + lL - left
				dst := tt.pixels[row*TileSize+lL : row*TileSize+lR]
				src := img.pixels[srcY*img.width+srcX : srcY*img.width+srcX+lR-lL]
				compositePixels(dst, src, 255, mode)
			}
		})
}

// FillRect composites a solid color over the rectangle [l,r)×[t,b).
func (tlc *TransientLayerContent) FillRect(contextID uint32, mode BlendMode, l, t, r, b int, color Pixel) {
	tlc.forEachTouchedTile(contextID, l, t, r, b,
		func(tt *TransientTile, tx, ty, lL, lT, lR, lB int) {
			for row := lT; row < lB; row++ {
				dst := tt.pixels[row*TileSize+lL : row*TileSize+lR]
				compositeSolid(dst, color, mode)
			}
		})
}

// eraseRect removes the rectangle's pixels, gated by an optional
// monochrome mask in rectangle-local coordinates.
func (tlc *TransientLayerContent) eraseRect(contextID uint32, rect Rect, mask *Image) {
	eraser := PixelFromBGRA(0, 0, 0, 255)
	tlc.forEachTouchedTile(contextID, rect.X1, rect.Y1, rect.X2+1, rect.Y2+1,
		func(tt *TransientTile, tx, ty, lL, lT, lR, lB int) {
			for row := lT; row < lB; row++ {
				for col := lL; col < lR; col++ {
					if mask != nil {
						mx := tx*TileSize + col - rect.X1
						my := ty*TileSize + row - rect.Y1
						if mask.PixelAt(mx, my).A() == 0 {
							continue
						}
					}
					i := row*TileSize + col
					tt.pixels[i] = composite1(tt.pixels[i], eraser, BlendErase)
				}
			}
		})
}

// PutTile stores a tile at grid position (x, y), then into the
// following repeat cells in row-major order.
func (tlc *TransientLayerContent) PutTile(tile *Tile, x, y, repeat int) {
	xt := tlc.xtiles()
	start := y*xt + x
	if start < 0 || start >= len(tlc.tiles) {
		return
	}
	for i := 0; i <= repeat && start+i < len(tlc.tiles); i++ {
		tlc.tiles[start+i] = tileRef{t: tile}
	}
}

// BrushStampApply composites a brush stamp's coverage mask with the
// given color.
func (tlc *TransientLayerContent) BrushStampApply(contextID uint32, color Pixel, mode BlendMode, stamp *BrushStamp) {
	d := stamp.Diameter
	tlc.forEachTouchedTile(contextID, stamp.Left, stamp.Top, stamp.Left+d, stamp.Top+d,
		func(tt *TransientTile, tx, ty, lL, lT, lR, lB int) {
			for row := lT; row < lB; row++ {
				my := ty*TileSize + row - stamp.Top
				mx := tx*TileSize + lL - stamp.Left
				dst := tt.pixels[row*TileSize+lL : row*TileSize+lR]
				maskRow := stamp.Mask[my*d+mx : my*d+mx+lR-lL]
				compositeMask(dst, color, maskRow, mode)
			}
		})
}

// Merge composites another layer content onto this one with the given
// opacity and blend mode. Blank source tiles are skipped; no mode in
// the layer set turns transparency into paint.
func (tlc *TransientLayerContent) Merge(contextID uint32, lc *LayerContent, opacity uint8, mode BlendMode) {
	xt, yt := tlc.xtiles(), tlc.ytiles()
	for ty := 0; ty < yt; ty++ {
		for tx := 0; tx < xt; tx++ {
			src := lc.TileAt(tx, ty)
			if src.isBlankRef() {
				continue
			}
			tt := tlc.transientTileAt(contextID, tx, ty)
			tt.composeTile(src, opacity, mode)
		}
	}
}

// ResizeTo regrows the content in place to the new dimensions,
// carrying over tiles at matching grid positions. Used by the render
// driver to track canvas resizes.
func (tlc *TransientLayerContent) ResizeTo(width, height int) {
	if width == tlc.width && height == tlc.height {
		return
	}
	oldXT := tlc.xtiles()
	oldYT := tlc.ytiles()
	old := tlc.tiles
	tlc.width = width
	tlc.height = height
	xt, yt := tlc.xtiles(), tlc.ytiles()
	tlc.tiles = make([]tileRef, xt*yt)
	for ty := 0; ty < min(yt, oldYT); ty++ {
		for tx := 0; tx < min(xt, oldXT); tx++ {
			tlc.tiles[ty*xt+tx] = old[ty*oldXT+tx]
		}
	}
}

// TransientSublayer finds the sublayer with the given id, creating it
// with the supplied props if absent, and returns both halves in
// mutable form.
func (tlc *TransientLayerContent) TransientSublayer(sublayerID int, mode BlendMode, opacity uint8) (*TransientLayerContent, *TransientLayerProps) {
	for i := range tlc.subProps {
		if tlc.subProps[i].view().id == sublayerID {
			return tlc.transientSublayerAt(i)
		}
	}
	sub := NewTransientLayerContentBlank(tlc.width, tlc.height)
	props := &TransientLayerProps{p: LayerProps{
		id:         sublayerID,
		sublayerID: sublayerID,
		opacity:    opacity,
		blendMode:  mode,
	}}
	tlc.subContents = append(tlc.subContents, contentRef{tlc: sub})
	tlc.subProps = append(tlc.subProps, propsRef{tlp: props})
	tlc.subDirty = true
	return sub, props
}

// transientSublayerAt upgrades the sublayer at the given position to
// mutable form.
func (tlc *TransientLayerContent) transientSublayerAt(i int) (*TransientLayerContent, *TransientLayerProps) {
	tlc.subDirty = true
	if tlc.subContents[i].tlc == nil {
		tlc.subContents[i] = contentRef{tlc: NewTransientLayerContent(tlc.subContents[i].lc)}
	}
	if tlc.subProps[i].tlp == nil {
		tlc.subProps[i] = propsRef{tlp: NewTransientLayerProps(tlc.subProps[i].lp)}
	}
	return tlc.subContents[i].tlc, tlc.subProps[i].tlp
}

// sublayerIndexByID returns the position of the sublayer with the
// given id, or -1.
func (tlc *TransientLayerContent) sublayerIndexByID(id int) int {
	for i := range tlc.subProps {
		if tlc.subProps[i].view().id == id {
			return i
		}
	}
	return -1
}

// MergeSublayerAt merges the sublayer at the given position into this
// content with the sublayer's opacity and blend mode, then removes it.
func (tlc *TransientLayerContent) MergeSublayerAt(contextID uint32, i int) {
	props := tlc.subProps[i].view()
	content := tlc.subContents[i].persist()
	tlc.Merge(contextID, content, props.opacity, props.blendMode)
	tlc.subContents = append(tlc.subContents[:i], tlc.subContents[i+1:]...)
	tlc.subProps = append(tlc.subProps[:i], tlc.subProps[i+1:]...)
	tlc.subDirty = true
}

// MergeAllSublayers merges every sublayer in order.
func (tlc *TransientLayerContent) MergeAllSublayers(contextID uint32) {
	for len(tlc.subProps) > 0 {
		tlc.MergeSublayerAt(contextID, 0)
	}
}

// RenderTile replaces one of this content's tiles with the flattened
// canvas tile at the same index. The render driver calls this for
// every tile a diff marked changed.
func (tlc *TransientLayerContent) RenderTile(cs *CanvasState, tileIndex int) {
	tlc.tiles[tileIndex] = tileRef{t: cs.FlattenTile(tileIndex)}
}

// blitFrom copies the source content's pixels translated by
// (dx, dy), for translations that are not tile-aligned.
func (tlc *TransientLayerContent) blitFrom(lc *LayerContent, dx, dy int) {
	l := max(dx, 0)
	t := max(dy, 0)
	r := min(dx+lc.width, tlc.width)
	b := min(dy+lc.height, tlc.height)
	tlc.forEachTouchedTile(0, l, t, r, b,
		func(tt *TransientTile, tx, ty, lL, lT, lR, lB int) {
			for row := lT; row < lB; row++ {
				y := ty*TileSize + row
				for col := lL; col < lR; col++ {
					x := tx*TileSize + col
					tt.pixels[row*TileSize+col] = lc.pixelAt(x-dx, y-dy)
				}
			}
		})
}

