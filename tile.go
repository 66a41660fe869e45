package paintcore

import (
	"errors"
	"fmt"

	"github.com/gogpu/paintcore/internal/zlibio"
)

// TileSize is the side length of a square tile, the unit of storage,
// diffing and rendering.
const TileSize = 64

// TileLength is the number of pixels in one tile.
const TileLength = TileSize * TileSize

// tileCountRoundUp returns how many tiles cover the given pixel extent.
func tileCountRoundUp(pixels int) int {
	return (pixels + TileSize - 1) / TileSize
}

// tileTotalRound returns the tile count of a w×h pixel area.
func tileTotalRound(w, h int) int {
	return tileCountRoundUp(w) * tileCountRoundUp(h)
}

// Tile is an immutable 64×64 pixel block. The zero-content blank tile
// is a shared singleton with a nil pixel slice; every other tile owns
// a TileLength pixel slice. Tiles are shared freely between snapshots
// and must never be mutated.
type Tile struct {
	contextID uint32
	pixels    []Pixel
}

var blankTile = &Tile{}

// BlankTile returns the shared all-transparent tile.
func BlankTile() *Tile { return blankTile }

// NewTileFromBGRA creates a tile filled with a single premultiplied
// color. The context id tags authorship for downstream bookkeeping
// and does not affect pixel content.
func NewTileFromBGRA(contextID uint32, color Pixel) *Tile {
	if color == 0 {
		return blankTile
	}
	pixels := make([]Pixel, TileLength)
	for i := range pixels {
		pixels[i] = color
	}
	return &Tile{contextID: contextID, pixels: pixels}
}

// NewTileFromCompressed decompresses a zlib tile payload. The payload
// must inflate to exactly TileLength pixels in canonical byte order.
func NewTileFromCompressed(contextID uint32, data []byte) (*Tile, error) {
	var raw []byte
	err := zlibio.Inflate(data, func(size int) ([]byte, error) {
		if size != TileLength*4 {
			return nil, fmt.Errorf("%w: tile payload inflates to %d bytes, want %d",
				ErrDecode, size, TileLength*4)
		}
		raw = make([]byte, size)
		return raw, nil
	})
	if err != nil {
		return nil, wrapDecode(err)
	}
	pixels := make([]Pixel, TileLength)
	pixelsFromBytes(pixels, raw)
	t := &Tile{contextID: contextID, pixels: pixels}
	if t.Blank() {
		return blankTile, nil
	}
	return t, nil
}

// ContextID returns the id of the drawing context that produced the
// tile. The blank tile reports 0.
func (t *Tile) ContextID() uint32 { return t.contextID }

// Blank reports whether every pixel of the tile is zero.
func (t *Tile) Blank() bool {
	if t.pixels == nil {
		return true
	}
	for _, p := range t.pixels {
		if p != 0 {
			return false
		}
	}
	return true
}

// PixelAt returns the pixel at tile-local coordinates.
func (t *Tile) PixelAt(x, y int) Pixel {
	if t.pixels == nil {
		return 0
	}
	return t.pixels[y*TileSize+x]
}

// samePixels reports whether two tiles have identical pixel content.
// Used by the diff to avoid marking rewritten-but-unchanged tiles.
func (t *Tile) samePixels(o *Tile) bool {
	if t == o {
		return true
	}
	if t.pixels == nil {
		return o.Blank()
	}
	if o.pixels == nil {
		return t.Blank()
	}
	for i, p := range t.pixels {
		if p != o.pixels[i] {
			return false
		}
	}
	return true
}

// Compress deflates the tile's pixels in canonical byte order.
func (t *Tile) Compress() []byte {
	pixels := t.pixels
	if pixels == nil {
		pixels = make([]Pixel, TileLength)
	}
	return zlibio.Deflate(pixelsToBytes(pixels))
}

// TransientTile is a uniquely owned, mutable tile under construction.
// It always owns a full pixel slice; Persist freezes it into an
// immutable Tile.
type TransientTile struct {
	contextID uint32
	pixels    []Pixel
}

// NewTransientTile copies an immutable tile into mutable form.
func NewTransientTile(t *Tile, contextID uint32) *TransientTile {
	tt := NewTransientTileBlank(contextID)
	if t != nil && t.pixels != nil {
		copy(tt.pixels, t.pixels)
	}
	return tt
}

// NewTransientTileBlank creates a mutable all-transparent tile.
func NewTransientTileBlank(contextID uint32) *TransientTile {
	return &TransientTile{contextID: contextID, pixels: make([]Pixel, TileLength)}
}

// Persist freezes the tile. A tile that ended up all-zero persists to
// the shared blank singleton so later diffs compare it by identity.
func (tt *TransientTile) Persist() *Tile {
	allZero := true
	for _, p := range tt.pixels {
		if p != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return blankTile
	}
	return &Tile{contextID: tt.contextID, pixels: tt.pixels}
}

// PixelAt returns the pixel at tile-local coordinates.
func (tt *TransientTile) PixelAt(x, y int) Pixel {
	return tt.pixels[y*TileSize+x]
}

// SetPixelAt writes one pixel at tile-local coordinates.
func (tt *TransientTile) SetPixelAt(x, y int, p Pixel) {
	tt.pixels[y*TileSize+x] = p
}

// composeTile blends an entire source tile onto this one.
func (tt *TransientTile) composeTile(t *Tile, opacity uint8, mode BlendMode) {
	if t.pixels == nil {
		if mode == BlendNormal || mode == BlendBehind {
			return // blank source contributes nothing
		}
	}
	src := t.pixels
	if src == nil {
		src = make([]Pixel, TileLength)
	}
	compositePixels(tt.pixels, src, opacity, mode)
}

// wrapDecode tags codec failures with ErrDecode unless already tagged.
func wrapDecode(err error) error {
	if err == nil || errors.Is(err, ErrDecode) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDecode, err)
}
