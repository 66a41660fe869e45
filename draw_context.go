package paintcore

import "github.com/gogpu/paintcore/internal/raster"

// Default draw context sizing. The transform buffer holds the
// bilinearly fetched source pixels for one run of spans; the
// rasterizer pool holds per-row coverage cells.
const (
	DefaultTransformBufferTiles  = 1
	DefaultRasterPoolInitialSize = 4 * 1024
	DefaultRasterPoolMaxSize     = 64 * 1024
)

// DrawContextOptions parameterizes a DrawContext. Zero values select
// the defaults.
type DrawContextOptions struct {
	// TransformBufferTiles sizes the span fetch scratch buffer in
	// tile-lengths (TileLength pixels each).
	TransformBufferTiles int

	// RasterPoolInitialSize is the rasterizer pool's starting cell
	// count. The pool doubles on demand.
	RasterPoolInitialSize int

	// RasterPoolMaxSize caps pool growth; exceeding it fails the
	// operation with ErrResourceExhausted.
	RasterPoolMaxSize int
}

// DrawContext holds the scratch state one interpreter needs: the
// transform fetch buffer and the rasterizer pool. A DrawContext is
// exclusive to a single interpreter goroutine and must not be shared
// concurrently.
type DrawContext struct {
	transformBuf []Pixel
	pool         *raster.Pool
}

// NewDrawContext creates a draw context with the given options.
func NewDrawContext(opts DrawContextOptions) *DrawContext {
	tiles := opts.TransformBufferTiles
	if tiles < 1 {
		tiles = DefaultTransformBufferTiles
	}
	initial := opts.RasterPoolInitialSize
	if initial < 1 {
		initial = DefaultRasterPoolInitialSize
	}
	max := opts.RasterPoolMaxSize
	if max < 1 {
		max = DefaultRasterPoolMaxSize
	}
	return &DrawContext{
		transformBuf: make([]Pixel, tiles*TileLength),
		pool:         raster.NewPool(initial, max),
	}
}
