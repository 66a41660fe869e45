package paintcore

import "fmt"

// CanvasState is one immutable snapshot of the whole canvas: its
// dimensions, an optional background tile and the layer stack.
// Snapshots are the atomic unit of publication and diffing; they are
// safe to share across goroutines and never change after Persist.
type CanvasState struct {
	width, height int
	background    *Tile
	layers        *LayerList
}

// NewCanvasState returns the empty 0×0 snapshot.
func NewCanvasState() *CanvasState {
	return &CanvasState{layers: NewLayerList()}
}

// Width returns the canvas width in pixels.
func (cs *CanvasState) Width() int { return cs.width }

// Height returns the canvas height in pixels.
func (cs *CanvasState) Height() int { return cs.height }

// BackgroundTile returns the background tile, or nil when unset.
func (cs *CanvasState) BackgroundTile() *Tile { return cs.background }

// Layers returns the snapshot's layer stack.
func (cs *CanvasState) Layers() *LayerList { return cs.layers }

func (cs *CanvasState) xtiles() int { return tileCountRoundUp(cs.width) }

// Handle applies one drawing message and returns the resulting
// snapshot. On failure the input snapshot is untouched and returned
// error carries one of the package's failure kinds. Some commands
// (PenUp with no matching sublayers, empty dab streams) return the
// receiver itself.
func (cs *CanvasState) Handle(dc *DrawContext, msg Message) (*CanvasState, error) {
	Logger().Debug("draw command", "type", fmt.Sprintf("%T", msg), "context", msg.messageContext())
	switch m := msg.(type) {
	case *MsgCanvasResize:
		return cs.handleCanvasResize(m)
	case *MsgLayerCreate:
		return cs.handleLayerCreate(m)
	case *MsgLayerAttr:
		return cs.handleLayerAttr(m)
	case *MsgLayerOrder:
		return cs.handleLayerOrder(m)
	case *MsgLayerRetitle:
		return cs.handleLayerRetitle(m)
	case *MsgLayerVisibility:
		return cs.handleLayerVisibility(m)
	case *MsgLayerDelete:
		return cs.handleLayerDelete(m)
	case *MsgPutImage:
		return cs.handlePutImage(m)
	case *MsgFillRect:
		return cs.handleFillRect(m)
	case *MsgRegionMove:
		return cs.handleRegionMove(dc, m)
	case *MsgPutTile:
		return cs.handlePutTile(m)
	case *MsgCanvasBackground:
		return cs.handleCanvasBackground(m)
	case *MsgPenUp:
		return cs.handlePenUp(m.ContextID)
	case *MsgDrawDabsClassic:
		params := &PaintDrawDabsParams{
			ContextID: m.ContextID, OriginX: m.X, OriginY: m.Y,
			Color: m.Color, Classic: m.Dabs,
		}
		return cs.handleDrawDabs(dc, m.LayerID, m.BlendMode, m.Indirect, len(m.Dabs), params)
	case *MsgDrawDabsPixel:
		params := &PaintDrawDabsParams{
			ContextID: m.ContextID, OriginX: m.X, OriginY: m.Y,
			Color: m.Color, Pixel: m.Dabs,
		}
		return cs.handleDrawDabs(dc, m.LayerID, m.BlendMode, m.Indirect, len(m.Dabs), params)
	case *MsgDrawDabsPixelSquare:
		params := &PaintDrawDabsParams{
			ContextID: m.ContextID, OriginX: m.X, OriginY: m.Y,
			Color: m.Color, Pixel: m.Dabs, Square: true,
		}
		return cs.handleDrawDabs(dc, m.LayerID, m.BlendMode, m.Indirect, len(m.Dabs), params)
	default:
		return nil, fmt.Errorf("%w: unhandled draw message type %T", ErrUnknownMessage, msg)
	}
}

func (cs *CanvasState) handleCanvasResize(m *MsgCanvasResize) (*CanvasState, error) {
	tcs := NewTransientCanvasState(cs)
	if err := tcs.Resize(m.ContextID, m.Top, m.Right, m.Bottom, m.Left); err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleLayerCreate(m *MsgLayerCreate) (*CanvasState, error) {
	var fill *Tile
	if m.Fill != 0 {
		fill = NewTileFromBGRA(m.ContextID, m.Fill)
	}
	tcs := NewTransientCanvasState(cs)
	err := tcs.transientLayers(1).LayerCreate(
		m.LayerID, m.SourceID, fill, m.Insert, m.Copy, tcs.width, tcs.height, m.Title)
	if err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleLayerAttr(m *MsgLayerAttr) (*CanvasState, error) {
	tcs := NewTransientCanvasState(cs)
	err := tcs.transientLayers(0).LayerAttr(
		m.LayerID, m.SublayerID, m.Opacity, m.BlendMode, m.Censored, m.Fixed)
	if err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleLayerOrder(m *MsgLayerOrder) (*CanvasState, error) {
	tcs := NewTransientCanvasState(cs)
	if err := tcs.transientLayers(0).LayerReorder(m.LayerIDs); err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleLayerRetitle(m *MsgLayerRetitle) (*CanvasState, error) {
	tcs := NewTransientCanvasState(cs)
	if err := tcs.transientLayers(0).LayerRetitle(m.LayerID, m.Title); err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleLayerVisibility(m *MsgLayerVisibility) (*CanvasState, error) {
	tcs := NewTransientCanvasState(cs)
	if err := tcs.transientLayers(0).LayerVisibility(m.LayerID, m.Visible); err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleLayerDelete(m *MsgLayerDelete) (*CanvasState, error) {
	tcs := NewTransientCanvasState(cs)
	if err := tcs.transientLayers(0).LayerDelete(m.ContextID, m.LayerID, m.Merge); err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handlePutImage(m *MsgPutImage) (*CanvasState, error) {
	if !BlendModeExists(m.BlendMode) {
		return nil, fmt.Errorf("%w: put image: unknown blend mode %d", ErrInvalidArgument, m.BlendMode)
	}
	tcs := NewTransientCanvasState(cs)
	err := tcs.transientLayers(0).PutImage(
		m.ContextID, m.LayerID, m.BlendMode, m.X, m.Y, m.W, m.H, m.Image)
	if err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleFillRect(m *MsgFillRect) (*CanvasState, error) {
	if !BlendModeExists(m.BlendMode) {
		return nil, fmt.Errorf("%w: fill rect: unknown blend mode %d", ErrInvalidArgument, m.BlendMode)
	}
	if !BlendMode(m.BlendMode).ValidForBrush() {
		return nil, fmt.Errorf("%w: fill rect: blend mode %s not applicable to brushes",
			ErrInvalidArgument, BlendMode(m.BlendMode))
	}
	left := max(m.X, 0)
	top := max(m.Y, 0)
	right := min(m.X+m.W, cs.width)
	bottom := min(m.Y+m.H, cs.height)
	if left >= right || top >= bottom {
		return nil, fmt.Errorf("%w: fill rect: effective area to fill is zero", ErrInvalidArgument)
	}
	tcs := NewTransientCanvasState(cs)
	err := tcs.transientLayers(0).FillRect(
		m.ContextID, m.LayerID, m.BlendMode, left, top, right, bottom, m.Color)
	if err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleRegionMove(dc *DrawContext, m *MsgRegionMove) (*CanvasState, error) {
	if m.SrcRect.Width() < 1 || m.SrcRect.Height() < 1 {
		return nil, fmt.Errorf("%w: region move: selection is empty", ErrInvalidArgument)
	}
	var mask *Image
	if m.Mask != nil {
		var err error
		mask, err = NewImageFromCompressedMonochrome(m.SrcRect.Width(), m.SrcRect.Height(), m.Mask)
		if err != nil {
			return nil, err
		}
	}
	maxSize := (int64(cs.width) + 1) * (int64(cs.height) + 1)
	if m.DstQuad.Bounds().Size() > maxSize {
		return nil, fmt.Errorf("%w: region move: attempt to scale beyond image size", ErrInvalidArgument)
	}
	tcs := NewTransientCanvasState(cs)
	err := tcs.transientLayers(0).RegionMove(dc, m.ContextID, m.LayerID, m.SrcRect, m.DstQuad, mask)
	if err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

// tileFromPayload materializes a tile from the color-or-compressed
// wire choice shared by MsgPutTile and MsgCanvasBackground.
func tileFromPayload(contextID uint32, color Pixel, compressed []byte) (*Tile, error) {
	if compressed == nil {
		return NewTileFromBGRA(contextID, color), nil
	}
	return NewTileFromCompressed(contextID, compressed)
}

func (cs *CanvasState) handlePutTile(m *MsgPutTile) (*CanvasState, error) {
	tile, err := tileFromPayload(m.ContextID, m.Color, m.Image)
	if err != nil {
		return nil, err
	}
	tcs := NewTransientCanvasState(cs)
	err = tcs.transientLayers(0).PutTile(tile, m.LayerID, m.SublayerID, m.X, m.Y, m.Repeat)
	if err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleCanvasBackground(m *MsgCanvasBackground) (*CanvasState, error) {
	tile, err := tileFromPayload(m.ContextID, m.Color, m.Image)
	if err != nil {
		return nil, err
	}
	tcs := NewTransientCanvasState(cs)
	tcs.background = tile
	return tcs.Persist(), nil
}

// handlePenUp merges every sublayer keyed by the drawing context into
// its parent layer. The walk is lazy: nothing is cloned until a
// matching sublayer is found, so in direct draw mode the input
// snapshot is returned unchanged.
func (cs *CanvasState) handlePenUp(contextID uint32) (*CanvasState, error) {
	sublayerID := int(contextID)
	var tcs *TransientCanvasState
	var tll *TransientLayerList
	for i := 0; i < cs.layers.Count(); i++ {
		if cs.layers.ContentAt(i).SubProps().IndexByID(sublayerID) < 0 {
			continue
		}
		if tcs == nil {
			tcs = NewTransientCanvasState(cs)
			tll = tcs.transientLayers(0)
		}
		tlc := tll.transientContentAt(i)
		for {
			j := tlc.sublayerIndexByID(sublayerID)
			if j < 0 {
				break
			}
			tlc.MergeSublayerAt(contextID, j)
		}
	}
	if tcs == nil {
		return cs, nil
	}
	return tcs.Persist(), nil
}

func (cs *CanvasState) handleDrawDabs(dc *DrawContext, layerID, blendMode int,
	indirect bool, dabCount int, params *PaintDrawDabsParams) (*CanvasState, error) {
	if !BlendModeExists(blendMode) {
		return nil, fmt.Errorf("%w: draw dabs: unknown blend mode %d", ErrInvalidArgument, blendMode)
	}
	if !BlendMode(blendMode).ValidForBrush() {
		return nil, fmt.Errorf("%w: draw dabs: blend mode %s not applicable to brushes",
			ErrInvalidArgument, BlendMode(blendMode))
	}
	if dabCount < 1 {
		return cs, nil // Nothing to do here.
	}

	var sublayerID int
	var sublayerMode BlendMode
	var sublayerOpacity uint8
	if indirect {
		sublayerID = int(params.ContextID)
		sublayerOpacity = params.Color.A()
		sublayerMode = BlendMode(blendMode)
		params.BlendMode = BlendNormal
		params.MasterAlpha = 255
	} else {
		params.BlendMode = BlendMode(blendMode)
		params.MasterAlpha = params.Color.A()
		if params.MasterAlpha == 0 {
			// Direct-mode colors usually carry a zero alpha byte; the
			// dab opacities alone control coverage then.
			params.MasterAlpha = 255
		}
	}

	tcs := NewTransientCanvasState(cs)
	err := tcs.transientLayers(0).DrawDabs(dc, layerID, sublayerID, sublayerMode, sublayerOpacity, params)
	if err != nil {
		return nil, err
	}
	return tcs.Persist(), nil
}

// ToFlatImage flattens the snapshot into a single image of the canvas
// size.
func (cs *CanvasState) ToFlatImage(flags FlatImageFlags) (*Image, error) {
	if cs.width < 1 || cs.height < 1 {
		return nil, fmt.Errorf("%w: can't create a flat image with zero pixels", ErrInvalidArgument)
	}
	target := NewTransientLayerContentBlank(cs.width, cs.height)
	if flags&FlatImageIncludeBackground != 0 && cs.background != nil {
		for i := range target.tiles {
			target.tiles[i] = tileRef{t: cs.background}
		}
	}
	cs.layers.mergeToFlatImage(target, flags)
	return target.Persist().ToImage(), nil
}

// FlattenTile composites one canvas tile of the full stack, including
// the background, into a fresh immutable tile.
func (cs *CanvasState) FlattenTile(tileIndex int) *Tile {
	var tt *TransientTile
	if cs.background != nil {
		tt = NewTransientTile(cs.background, 0)
	} else {
		tt = NewTransientTileBlank(0)
	}
	cs.layers.flattenTileTo(cs.xtiles(), tileIndex, tt)
	return tt.Persist()
}

// Diff fills the diff with the tiles that changed between prev and
// this snapshot. A nil prev marks everything on a fresh canvas; a
// background or dimension change marks all tiles.
func (cs *CanvasState) Diff(prev *CanvasState, diff *CanvasDiff) {
	if prev == nil {
		diff.Begin(0, 0, cs.width, cs.height, false)
		return
	}
	diff.Begin(prev.width, prev.height, cs.width, cs.height, cs.layers.props != prev.layers.props)
	if cs == prev {
		return
	}
	if cs.background != prev.background || cs.width != prev.width || cs.height != prev.height {
		diff.CheckAll()
		return
	}
	cs.layers.Diff(prev.layers, diff)
}

// Render re-flattens every changed tile of the snapshot into the
// target preview layer, resizing it to the canvas dimensions first.
func (cs *CanvasState) Render(target *TransientLayerContent, diff *CanvasDiff) {
	target.ResizeTo(cs.width, cs.height)
	diff.EachIndex(func(index int) {
		target.RenderTile(cs, index)
	})
}

// TransientCanvasState is a uniquely owned, mutable snapshot under
// construction: the Building state of a snapshot's lifecycle. Persist
// freezes it; dropping it before Persist discards the partial work
// without touching the source snapshot.
type TransientCanvasState struct {
	width, height int
	background    *Tile
	layers        *LayerList
	tlayers       *TransientLayerList
}

// NewTransientCanvasState shallow-clones a snapshot, sharing the
// background tile and layer stack.
func NewTransientCanvasState(cs *CanvasState) *TransientCanvasState {
	return &TransientCanvasState{
		width:      cs.width,
		height:     cs.height,
		background: cs.background,
		layers:     cs.layers,
	}
}

// transientLayers upgrades the layer list to mutable form, reserving
// room for that many insertions.
func (tcs *TransientCanvasState) transientLayers(reserve int) *TransientLayerList {
	if tcs.tlayers == nil {
		tcs.tlayers = NewTransientLayerList(tcs.layers, reserve)
	}
	return tcs.tlayers
}

// Persist freezes the snapshot, recursively persisting any transient
// children, and returns the immutable result.
func (tcs *TransientCanvasState) Persist() *CanvasState {
	layers := tcs.layers
	if tcs.tlayers != nil {
		layers = tcs.tlayers.Persist()
	}
	return &CanvasState{
		width:      tcs.width,
		height:     tcs.height,
		background: tcs.background,
		layers:     layers,
	}
}

// Resize grows or crops the canvas by the given border widths,
// translating every layer accordingly.
func (tcs *TransientCanvasState) Resize(contextID uint32, top, right, bottom, left int) error {
	north := -top
	west := -left
	east := tcs.width + right
	south := tcs.height + bottom
	if north >= south || west >= east {
		return fmt.Errorf("%w: invalid resize: borders are reversed", ErrInvalidArgument)
	}

	width := east + left
	height := south + top
	if width < 1 || height < 1 || width > MaxImageDimension || height > MaxImageDimension {
		return fmt.Errorf("%w: invalid resize: %dx%d", ErrInvalidArgument, width, height)
	}

	Logger().Debug("resize", "width", width, "height", height)
	tcs.width = width
	tcs.height = height

	if tcs.layers.Count() > 0 || tcs.tlayers != nil {
		tcs.transientLayers(0).resize(contextID, top, right, bottom, left)
	}
	return nil
}
