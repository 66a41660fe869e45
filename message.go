package paintcore

// Message is a typed drawing command. Wire decoding is not part of
// this package; a producer supplies these records and the interpreter
// consumes them in a single total order per canvas.
//
// The interface is sealed: only the message types in this package
// implement it.
type Message interface {
	messageContext() uint32
}

// MsgCanvasResize grows or shrinks the canvas by the given border
// widths. Negative values crop.
type MsgCanvasResize struct {
	ContextID                uint32
	Top, Right, Bottom, Left int
}

// MsgLayerCreate adds a layer. A zero Fill means no fill tile. When
// Copy is set the new layer duplicates SourceID's content; when
// Insert is set it is placed just above SourceID, otherwise on top.
type MsgLayerCreate struct {
	ContextID uint32
	LayerID   int
	SourceID  int
	Fill      Pixel
	Insert    bool
	Copy      bool
	Title     string
}

// MsgLayerAttr updates layer or sublayer properties.
type MsgLayerAttr struct {
	ContextID  uint32
	LayerID    int
	SublayerID int
	Opacity    uint8
	BlendMode  int
	Censored   bool
	Fixed      bool
}

// MsgLayerOrder reorders the stack to the given permutation of
// existing layer ids.
type MsgLayerOrder struct {
	ContextID uint32
	LayerIDs  []int
}

// MsgLayerRetitle renames a layer.
type MsgLayerRetitle struct {
	ContextID uint32
	LayerID   int
	Title     string
}

// MsgLayerVisibility shows or hides a layer.
type MsgLayerVisibility struct {
	ContextID uint32
	LayerID   int
	Visible   bool
}

// MsgLayerDelete removes a layer, optionally merging it into the
// layer below first.
type MsgLayerDelete struct {
	ContextID uint32
	LayerID   int
	Merge     bool
}

// MsgPutImage composites a zlib-compressed image into a layer.
type MsgPutImage struct {
	ContextID  uint32
	LayerID    int
	BlendMode  int
	X, Y       int
	W, H       int
	Image      []byte
}

// MsgFillRect composites a solid color over a rectangle of a layer.
type MsgFillRect struct {
	ContextID uint32
	LayerID   int
	BlendMode int
	X, Y      int
	W, H      int
	Color     Pixel
}

// MsgRegionMove transforms a rectangular selection of a layer onto a
// destination quad, erasing the source region. Mask, when non-nil, is
// a compressed monochrome selection mask of the source rectangle's
// size.
type MsgRegionMove struct {
	ContextID uint32
	LayerID   int
	SrcRect   Rect
	DstQuad   Quad
	Mask      []byte
}

// MsgPutTile stores a tile into a layer or sublayer. The payload is
// either a compressed tile (Image non-nil) or a solid color. Repeat
// fills that many additional grid cells in row-major order.
type MsgPutTile struct {
	ContextID  uint32
	LayerID    int
	SublayerID int
	X, Y       int
	Repeat     int
	Color      Pixel
	Image      []byte
}

// MsgCanvasBackground replaces the canvas background tile. The
// payload choice matches MsgPutTile.
type MsgCanvasBackground struct {
	ContextID uint32
	Color     Pixel
	Image     []byte
}

// MsgPenUp ends a stroke: every sublayer keyed by the drawing context
// is merged into its parent layer.
type MsgPenUp struct {
	ContextID uint32
}

// MsgDrawDabsClassic paints soft round dabs with subpixel positioning.
// In indirect mode the dabs accumulate into a sublayer keyed by the
// context id; the color's alpha becomes the sublayer opacity.
type MsgDrawDabsClassic struct {
	ContextID uint32
	LayerID   int
	X, Y      int
	Color     Pixel
	BlendMode int
	Indirect  bool
	Dabs      []ClassicDab
}

// MsgDrawDabsPixel paints hard round single-pixel-aligned dabs.
type MsgDrawDabsPixel struct {
	ContextID uint32
	LayerID   int
	X, Y      int
	Color     Pixel
	BlendMode int
	Indirect  bool
	Dabs      []PixelDab
}

// MsgDrawDabsPixelSquare paints hard square dabs.
type MsgDrawDabsPixelSquare struct {
	ContextID uint32
	LayerID   int
	X, Y      int
	Color     Pixel
	BlendMode int
	Indirect  bool
	Dabs      []PixelDab
}

func (m *MsgCanvasResize) messageContext() uint32        { return m.ContextID }
func (m *MsgLayerCreate) messageContext() uint32         { return m.ContextID }
func (m *MsgLayerAttr) messageContext() uint32           { return m.ContextID }
func (m *MsgLayerOrder) messageContext() uint32          { return m.ContextID }
func (m *MsgLayerRetitle) messageContext() uint32        { return m.ContextID }
func (m *MsgLayerVisibility) messageContext() uint32     { return m.ContextID }
func (m *MsgLayerDelete) messageContext() uint32         { return m.ContextID }
func (m *MsgPutImage) messageContext() uint32            { return m.ContextID }
func (m *MsgFillRect) messageContext() uint32            { return m.ContextID }
func (m *MsgRegionMove) messageContext() uint32          { return m.ContextID }
func (m *MsgPutTile) messageContext() uint32             { return m.ContextID }
func (m *MsgCanvasBackground) messageContext() uint32    { return m.ContextID }
func (m *MsgPenUp) messageContext() uint32               { return m.ContextID }
func (m *MsgDrawDabsClassic) messageContext() uint32     { return m.ContextID }
func (m *MsgDrawDabsPixel) messageContext() uint32       { return m.ContextID }
func (m *MsgDrawDabsPixelSquare) messageContext() uint32 { return m.ContextID }
