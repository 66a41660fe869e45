package paintcore

import "fmt"

// FlatImageFlags selects what a full-canvas flatten includes.
type FlatImageFlags uint

const (
	// FlatImageIncludeBackground composites the canvas background
	// tile under the layers.
	FlatImageIncludeBackground FlatImageFlags = 1 << iota
	// FlatImageIncludeSublayers composites in-progress indirect
	// strokes as a preview.
	FlatImageIncludeSublayers
)

// LayerList is the ordered stack of a canvas's layers: parallel
// content and props lists indexed by position, bottom-most first.
// Layer ids are unique within the list. Immutable.
type LayerList struct {
	contents *LayerContentList
	props    *LayerPropsList
}

// NewLayerList returns an empty layer list.
func NewLayerList() *LayerList {
	return &LayerList{contents: &LayerContentList{}, props: NewLayerPropsList()}
}

// Count returns the number of layers.
func (ll *LayerList) Count() int { return ll.props.Count() }

// ContentAt returns the content of the layer at the given position.
func (ll *LayerList) ContentAt(i int) *LayerContent { return ll.contents.At(i) }

// PropsAt returns the props of the layer at the given position.
func (ll *LayerList) PropsAt(i int) *LayerProps { return ll.props.At(i) }

// IndexByID returns the position of the layer with the given id, or
// -1 if absent.
func (ll *LayerList) IndexByID(id int) int { return ll.props.IndexByID(id) }

// Props returns the underlying props list.
func (ll *LayerList) Props() *LayerPropsList { return ll.props }

// Diff marks the canvas tiles that render differently between this
// list and the previous snapshot's. Matched positions diff content
// and props; any structural change (count, order, membership) marks
// every affected layer.
func (ll *LayerList) Diff(prev *LayerList, diff *CanvasDiff) {
	if ll == prev {
		return
	}
	aligned := ll.Count() == prev.Count()
	if aligned {
		for i := 0; i < ll.Count(); i++ {
			if ll.PropsAt(i).ID() != prev.PropsAt(i).ID() {
				aligned = false
				break
			}
		}
	}
	if !aligned {
		for i := 0; i < ll.Count(); i++ {
			ll.ContentAt(i).DiffMark(diff)
		}
		for i := 0; i < prev.Count(); i++ {
			prev.ContentAt(i).DiffMark(diff)
		}
		return
	}
	for i := 0; i < ll.Count(); i++ {
		ll.ContentAt(i).Diff(ll.PropsAt(i), prev.ContentAt(i), prev.PropsAt(i), diff)
	}
}

// flattenTileTo composites one canvas tile of every visible layer,
// bottom to top, onto the target tile.
func (ll *LayerList) flattenTileTo(canvasXTiles, tileIndex int, tt *TransientTile) {
	for i := 0; i < ll.Count(); i++ {
		props := ll.PropsAt(i)
		if !props.Visible() {
			continue
		}
		ll.ContentAt(i).FlattenTileTo(canvasXTiles, tileIndex, tt, props.Opacity(), props.BlendMode())
	}
}

// mergeToFlatImage composites every visible layer onto the target
// content, bottom to top.
func (ll *LayerList) mergeToFlatImage(target *TransientLayerContent, flags FlatImageFlags) {
	for i := 0; i < ll.Count(); i++ {
		props := ll.PropsAt(i)
		if !props.Visible() {
			continue
		}
		content := ll.ContentAt(i)
		if flags&FlatImageIncludeSublayers != 0 && content.SubContents().Count() > 0 {
			merged := NewTransientLayerContent(content)
			merged.MergeAllSublayers(0)
			content = merged.Persist()
		}
		target.Merge(0, content, props.Opacity(), props.BlendMode())
	}
}

// TransientLayerList is a uniquely owned, mutable layer list under
// construction. Entries start out sharing the immutable list's nodes
// and are upgraded to transient form on first write.
type TransientLayerList struct {
	contents []contentRef
	props    []propsRef

	// orig is the immutable list this one was cloned from. The dirty
	// flags track which half actually changed; an untouched half
	// persists back to orig's exact list pointer so observers can
	// detect layer props changes by identity.
	orig          *LayerList
	contentsDirty bool
	propsDirty    bool
}

// NewTransientLayerList shallow-clones an immutable list, reserving
// room for additional entries.
func NewTransientLayerList(ll *LayerList, reserve int) *TransientLayerList {
	n := ll.Count()
	tll := &TransientLayerList{
		contents: make([]contentRef, n, n+reserve),
		props:    make([]propsRef, n, n+reserve),
		orig:     ll,
	}
	for i := 0; i < n; i++ {
		tll.contents[i] = contentRef{lc: ll.ContentAt(i)}
		tll.props[i] = propsRef{lp: ll.PropsAt(i)}
	}
	return tll
}

// Persist freezes the list and all transient entries.
func (tll *TransientLayerList) Persist() *LayerList {
	if !tll.contentsDirty && !tll.propsDirty {
		return tll.orig
	}
	contents := tll.orig.contents
	if tll.contentsDirty {
		persisted := make([]*LayerContent, len(tll.contents))
		for i := range tll.contents {
			persisted[i] = tll.contents[i].persist()
		}
		contents = &LayerContentList{contents: persisted}
	}
	props := tll.orig.props
	if tll.propsDirty {
		persisted := make([]*LayerProps, len(tll.props))
		for i := range tll.props {
			persisted[i] = tll.props[i].persist()
		}
		props = &LayerPropsList{props: persisted}
	}
	return &LayerList{contents: contents, props: props}
}

// Count returns the number of layers.
func (tll *TransientLayerList) Count() int { return len(tll.props) }

// indexByID returns the position of the layer with the given id, or -1.
func (tll *TransientLayerList) indexByID(id int) int {
	for i := range tll.props {
		if tll.props[i].view().id == id {
			return i
		}
	}
	return -1
}

// transientContentAt upgrades the content at the given position to
// mutable form.
func (tll *TransientLayerList) transientContentAt(i int) *TransientLayerContent {
	tll.contentsDirty = true
	if tll.contents[i].tlc == nil {
		tll.contents[i] = contentRef{tlc: NewTransientLayerContent(tll.contents[i].lc)}
	}
	return tll.contents[i].tlc
}

// transientPropsAt upgrades the props at the given position to
// mutable form.
func (tll *TransientLayerList) transientPropsAt(i int) *TransientLayerProps {
	tll.propsDirty = true
	if tll.props[i].tlp == nil {
		tll.props[i] = propsRef{tlp: NewTransientLayerProps(tll.props[i].lp)}
	}
	return tll.props[i].tlp
}

// resize translates every layer into the new canvas borders.
func (tll *TransientLayerList) resize(contextID uint32, top, right, bottom, left int) {
	tll.contentsDirty = true
	for i := range tll.contents {
		lc := tll.contents[i].persist()
		tll.contents[i] = contentRef{tlc: lc.Resize(contextID, top, right, bottom, left)}
	}
}

// LayerCreate adds a layer. When copy is set the new layer duplicates
// the source layer's content; when insert is set it is placed just
// above the source layer, otherwise on top of the stack. A non-nil
// fill tile initializes every grid cell.
func (tll *TransientLayerList) LayerCreate(layerID, sourceID int, fill *Tile,
	insert, copyContent bool, canvasWidth, canvasHeight int, title string) error {
	if layerID <= 0 {
		return fmt.Errorf("%w: layer create: invalid layer id %d", ErrInvalidArgument, layerID)
	}
	if tll.indexByID(layerID) >= 0 {
		return fmt.Errorf("%w: layer create: id %d", ErrAlreadyExists, layerID)
	}

	var content contentRef
	if copyContent {
		srcIndex := tll.indexByID(sourceID)
		if srcIndex < 0 {
			return fmt.Errorf("%w: layer create: source layer %d", ErrNotFound, sourceID)
		}
		// Sharing the immutable content is a full copy under
		// copy-on-write.
		content = contentRef{lc: tll.contents[srcIndex].persist()}
	} else {
		content = contentRef{lc: NewLayerContent(canvasWidth, canvasHeight, fill)}
	}

	pos := len(tll.props)
	if insert {
		srcIndex := tll.indexByID(sourceID)
		if srcIndex < 0 {
			return fmt.Errorf("%w: layer create: insert above layer %d", ErrNotFound, sourceID)
		}
		pos = srcIndex + 1
	}

	props := propsRef{lp: &LayerProps{
		id:        layerID,
		title:     normTitle(title),
		opacity:   255,
		blendMode: BlendNormal,
	}}

	tll.contents = append(tll.contents[:pos], append([]contentRef{content}, tll.contents[pos:]...)...)
	tll.props = append(tll.props[:pos], append([]propsRef{props}, tll.props[pos:]...)...)
	tll.contentsDirty = true
	tll.propsDirty = true
	return nil
}

// LayerAttr updates layer or sublayer properties. Addressing a
// sublayer that does not exist yet creates it.
func (tll *TransientLayerList) LayerAttr(layerID, sublayerID int, opacity uint8,
	blendMode int, censored, fixed bool) error {
	if !BlendModeExists(blendMode) {
		return fmt.Errorf("%w: layer attributes: unknown blend mode %d", ErrInvalidArgument, blendMode)
	}
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: layer attributes: layer %d", ErrNotFound, layerID)
	}
	mode := BlendMode(blendMode)
	if sublayerID != 0 {
		tlc := tll.transientContentAt(i)
		_, sp := tlc.TransientSublayer(sublayerID, mode, opacity)
		sp.SetOpacity(opacity)
		sp.SetBlendMode(mode)
		sp.SetCensored(censored)
		sp.SetFixed(fixed)
		return nil
	}
	props := tll.transientPropsAt(i)
	props.SetOpacity(opacity)
	props.SetBlendMode(mode)
	props.SetCensored(censored)
	props.SetFixed(fixed)
	return nil
}

// LayerReorder rearranges the stack to match the given permutation of
// existing layer ids.
func (tll *TransientLayerList) LayerReorder(layerIDs []int) error {
	if len(layerIDs) != len(tll.props) {
		return fmt.Errorf("%w: layer order: got %d ids for %d layers",
			ErrInvalidArgument, len(layerIDs), len(tll.props))
	}
	contents := make([]contentRef, 0, len(layerIDs))
	props := make([]propsRef, 0, len(layerIDs))
	seen := make(map[int]bool, len(layerIDs))
	for _, id := range layerIDs {
		if seen[id] {
			return fmt.Errorf("%w: layer order: duplicate layer id %d", ErrInvalidArgument, id)
		}
		seen[id] = true
		i := tll.indexByID(id)
		if i < 0 {
			return fmt.Errorf("%w: layer order: layer %d", ErrNotFound, id)
		}
		contents = append(contents, tll.contents[i])
		props = append(props, tll.props[i])
	}
	tll.contents = contents
	tll.props = props
	tll.contentsDirty = true
	tll.propsDirty = true
	return nil
}

// LayerRetitle replaces a layer's title.
func (tll *TransientLayerList) LayerRetitle(layerID int, title string) error {
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: layer retitle: layer %d", ErrNotFound, layerID)
	}
	tll.transientPropsAt(i).SetTitle(title)
	return nil
}

// LayerVisibility shows or hides a layer.
func (tll *TransientLayerList) LayerVisibility(layerID int, visible bool) error {
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: layer visibility: layer %d", ErrNotFound, layerID)
	}
	tll.transientPropsAt(i).SetVisible(visible)
	return nil
}

// LayerDelete removes a layer. With merge set, the layer's flattened
// contribution is first merged into the layer immediately below.
func (tll *TransientLayerList) LayerDelete(contextID uint32, layerID int, merge bool) error {
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: layer delete: layer %d", ErrNotFound, layerID)
	}
	if merge {
		if i == 0 {
			return fmt.Errorf("%w: layer delete: no layer below %d to merge into",
				ErrInvalidArgument, layerID)
		}
		props := tll.props[i].view()
		content := tll.contents[i].persist()
		if content.SubContents().Count() > 0 {
			flattened := NewTransientLayerContent(content)
			flattened.MergeAllSublayers(contextID)
			content = flattened.Persist()
		}
		below := tll.transientContentAt(i - 1)
		below.Merge(contextID, content, props.opacity, props.blendMode)
	}
	tll.contents = append(tll.contents[:i], tll.contents[i+1:]...)
	tll.props = append(tll.props[:i], tll.props[i+1:]...)
	tll.contentsDirty = true
	tll.propsDirty = true
	return nil
}

// PutImage decompresses an image payload and composites it into the
// addressed layer.
func (tll *TransientLayerList) PutImage(contextID uint32, layerID, blendMode int,
	x, y, width, height int, data []byte) error {
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: put image: layer %d", ErrNotFound, layerID)
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: put image: empty %dx%d image", ErrInvalidArgument, width, height)
	}
	img, err := NewImageFromCompressed(width, height, data)
	if err != nil {
		return err
	}
	tll.transientContentAt(i).PutImage(contextID, BlendMode(blendMode), x, y, img)
	return nil
}

// FillRect composites a solid color over the given pre-clipped
// rectangle of the addressed layer.
func (tll *TransientLayerList) FillRect(contextID uint32, layerID, blendMode int,
	left, top, right, bottom int, color Pixel) error {
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: fill rect: layer %d", ErrNotFound, layerID)
	}
	tll.transientContentAt(i).FillRect(contextID, BlendMode(blendMode), left, top, right, bottom, color)
	return nil
}

// PutTile stores a tile into the addressed layer or sublayer.
func (tll *TransientLayerList) PutTile(tile *Tile, layerID, sublayerID, x, y, repeat int) error {
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: put tile: layer %d", ErrNotFound, layerID)
	}
	tlc := tll.transientContentAt(i)
	if sublayerID != 0 {
		sub, _ := tlc.TransientSublayer(sublayerID, BlendNormal, 255)
		sub.PutTile(tile, x, y, repeat)
		return nil
	}
	tlc.PutTile(tile, x, y, repeat)
	return nil
}

// RegionMove lifts a rectangular selection, transforms it onto the
// destination quad and erases the source region, all within the
// addressed layer.
func (tll *TransientLayerList) RegionMove(dc *DrawContext, contextID uint32, layerID int,
	srcRect Rect, dstQuad Quad, mask *Image) error {
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: region move: layer %d", ErrNotFound, layerID)
	}
	src := tll.contents[i].persist().Select(srcRect, mask)
	moved, offsetX, offsetY, err := src.Transform(dc, dstQuad)
	if err != nil {
		return err
	}
	tlc := tll.transientContentAt(i)
	tlc.eraseRect(contextID, srcRect, mask)
	tlc.PutImage(contextID, BlendNormal, offsetX, offsetY, moved)
	return nil
}

// DrawDabs paints a dab stream into the addressed layer, directly or
// into the sublayer identified by sublayerID.
func (tll *TransientLayerList) DrawDabs(dc *DrawContext, layerID, sublayerID int,
	sublayerMode BlendMode, sublayerOpacity uint8, params *PaintDrawDabsParams) error {
	i := tll.indexByID(layerID)
	if i < 0 {
		return fmt.Errorf("%w: draw dabs: layer %d", ErrNotFound, layerID)
	}
	tlc := tll.transientContentAt(i)
	target := tlc
	if sublayerID != 0 {
		target, _ = tlc.TransientSublayer(sublayerID, sublayerMode, sublayerOpacity)
	}
	return paintDrawDabs(dc, params, target)
}
