package paintcore

import (
	"fmt"

	"github.com/gogpu/paintcore/internal/raster"
	"github.com/gogpu/paintcore/internal/zlibio"
)

// MaxImageDimension bounds image and canvas sides; they must fit in
// 16 bits.
const MaxImageDimension = 32767

// Image is a plain RGBA pixel buffer value: width, height and a
// premultiplied BGRA pixel slice in row-major order. Unlike tiles and
// layers it carries no sharing machinery; copies are explicit.
type Image struct {
	width  int
	height int
	pixels []Pixel
}

// NewImage creates a zero-filled image.
func NewImage(width, height int) *Image {
	return &Image{
		width:  width,
		height: height,
		pixels: make([]Pixel, width*height),
	}
}

// NewImageFromCompressed decompresses a full-image zlib payload. The
// payload must inflate to exactly width*height pixels in canonical
// byte order; the explicit little-endian load keeps big-endian hosts
// correct.
func NewImageFromCompressed(width, height int, data []byte) (*Image, error) {
	expected := width * height * 4
	var raw []byte
	err := zlibio.Inflate(data, func(size int) ([]byte, error) {
		if size != expected {
			return nil, fmt.Errorf("%w: image decompression needs size %d, but got %d",
				ErrDecode, expected, size)
		}
		raw = make([]byte, size)
		return raw, nil
	})
	if err != nil {
		return nil, wrapDecode(err)
	}
	img := NewImage(width, height)
	pixelsFromBytes(img.pixels, raw)
	return img, nil
}

// Monochrome MSB format: 1 bit per pixel, bytes packed with the most
// significant bit first, lines padded to 32 bit boundaries.

// NewImageFromCompressedMonochrome decompresses a 1-bit mask payload:
// a set bit becomes opaque white, a clear bit transparent.
func NewImageFromCompressedMonochrome(width, height int, data []byte) (*Image, error) {
	lineWidth := (width + 31) / 32 * 4
	expected := lineWidth * height
	var raw []byte
	err := zlibio.Inflate(data, func(size int) ([]byte, error) {
		if size != expected {
			return nil, fmt.Errorf("%w: monochrome decompression needs size %d, but got %d",
				ErrDecode, expected, size)
		}
		raw = make([]byte, size)
		return raw, nil
	})
	if err != nil {
		return nil, wrapDecode(err)
	}
	img := NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			bit := raw[y*lineWidth+x/8] & (1 << (7 - x%8))
			if bit != 0 {
				img.pixels[y*width+x] = Pixel(0xffffffff)
			}
		}
	}
	return img, nil
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// Pixels returns the backing pixel slice in row-major order.
func (img *Image) Pixels() []Pixel { return img.pixels }

// PixelAt returns the pixel at (x, y). Coordinates must be in bounds.
func (img *Image) PixelAt(x, y int) Pixel {
	return img.pixels[y*img.width+x]
}

// SetPixelAt writes the pixel at (x, y). Coordinates must be in bounds.
func (img *Image) SetPixelAt(x, y int, p Pixel) {
	img.pixels[y*img.width+x] = p
}

// Compress deflates the image's pixels in canonical byte order,
// producing the wire payload NewImageFromCompressed accepts.
func (img *Image) Compress() []byte {
	return zlibio.Deflate(pixelsToBytes(img.pixels))
}

// Subimage copies the rectangle (x, y, width, height) out of the
// image. The rectangle may extend beyond the source; exterior pixels
// are zero.
func (img *Image) Subimage(x, y, width, height int) *Image {
	sub := NewImage(width, height)
	dstX, dstY := 0, 0
	if x < 0 {
		dstX = -x
	}
	if y < 0 {
		dstY = -y
	}
	srcX, srcY := max(x, 0), max(y, 0)
	copyWidth := min(width-dstX, img.width-srcX)
	copyHeight := min(height-dstY, img.height-srcY)
	for row := 0; row < copyHeight; row++ {
		d := (row+dstY)*width + dstX
		s := (row+srcY)*img.width + srcX
		copy(sub.pixels[d:d+copyWidth], img.pixels[s:s+copyWidth])
	}
	return sub
}

// Transform maps the image through a perspective transform onto the
// destination quad, rasterizing with antialiased edges and bilinear
// sampling. It returns the rendered image sized to the quad's
// bounding rectangle plus that rectangle's top-left corner in canvas
// coordinates.
func (img *Image) Transform(dc *DrawContext, dstQuad Quad) (*Image, int, int, error) {
	srcQuad := MakeQuad(0, 0, img.width, 0, img.width, img.height, 0, img.height)

	bounds := dstQuad.Bounds()
	translated := dstQuad.Translate(-bounds.X1, -bounds.Y1)

	tf, ok := QuadToQuad(srcQuad, translated)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: image transform failed", ErrInvalidArgument)
	}

	dst := NewImage(bounds.Width(), bounds.Height())
	if err := img.transformDraw(dc, dst, translated, tf); err != nil {
		return nil, 0, 0, err
	}
	return dst, bounds.X1, bounds.Y1, nil
}

// transformDraw renders img through tf into dst, sweeping the
// destination polygon with the rasterizer and fetching source pixels
// through the inverted matrix.
func (img *Image) transformDraw(dc *DrawContext, dst *Image, poly Quad, tf Transform) error {
	inv, ok := tf.Invert()
	if !ok {
		return fmt.Errorf("%w: transform matrix is not invertible", ErrInvalidArgument)
	}

	pts := [][2]float64{
		{float64(poly.X1), float64(poly.Y1)},
		{float64(poly.X2), float64(poly.Y2)},
		{float64(poly.X3), float64(poly.Y3)},
		{float64(poly.X4), float64(poly.Y4)},
	}
	buf := dc.transformBuf
	err := raster.Rasterize(pts, dst.width, dst.height, dc.pool, func(y int, spans []raster.Span) {
		for _, span := range spans {
			x := span.X
			remaining := span.Len
			for remaining > 0 {
				n := min(remaining, len(buf))
				fetchTransformedBilinear(img, inv, x, y, n, buf)
				row := dst.pixels[y*dst.width+x : y*dst.width+x+n]
				compositePixels(row, buf[:n], span.Coverage, BlendNormal)
				x += n
				remaining -= n
			}
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}
	return nil
}

// fetchTransformedBilinear walks one destination span and fills out
// with bilinearly interpolated source pixels. The matrix increments
// are hoisted out of the loop so each pixel costs three additions and
// one perspective divide.
func fetchTransformedBilinear(src *Image, tf Transform, x, y, length int, out []Pixel) {
	m := tf.Matrix
	fdx, fdy, fdw := m[0], m[1], m[2]
	cx := float64(x) + 0.5
	cy := float64(y) + 0.5
	fx := m[3]*cy + m[0]*cx + m[6]
	fy := m[4]*cy + m[1]*cx + m[7]
	fw := m[5]*cy + m[2]*cx + m[8]

	for i := 0; i < length; i++ {
		iw := 1.0
		if fw != 0 {
			iw = 1.0 / fw
		}
		px := fx*iw - 0.5
		py := fy*iw - 0.5

		x1 := int(px)
		if px < float64(x1) {
			x1--
		}
		y1 := int(py)
		if py < float64(y1) {
			y1--
		}

		distX := uint32((px - float64(x1)) * 256)
		distY := uint32((py - float64(y1)) * 256)

		x1, x2 := samplePixelBounds(0, src.width-1, x1)
		y1, y2 := samplePixelBounds(0, src.height-1, y1)

		r1 := src.pixels[y1*src.width:]
		r2 := src.pixels[y2*src.width:]
		out[i] = Pixel(interpolate4Pixels(
			uint32(r1[x1]), uint32(r1[x2]), uint32(r2[x1]), uint32(r2[x2]),
			distX, distY))

		fx += fdx
		fy += fdy
		fw += fdw
		// Force increment to avoid division by zero.
		if fw == 0 {
			fw += fdw
		}
	}
}

// samplePixelBounds clamps a sample coordinate to [l1, l2] and
// returns the two source texels to interpolate between.
func samplePixelBounds(l1, l2, v int) (int, int) {
	switch {
	case v < l1:
		return l1, l1
	case v >= l2:
		return l2, l2
	default:
		return v, v + 1
	}
}

// interpolatePixel mixes two packed pixels by a/256 and b/256,
// processing alternating bytes in parallel.
func interpolatePixel(x, a, y, b uint32) uint32 {
	t := (x&0xff00ff)*a + (y&0xff00ff)*b
	t >>= 8
	t &= 0xff00ff
	x = (x>>8&0xff00ff)*a + (y>>8&0xff00ff)*b
	x &= 0xff00ff00
	return x | t
}

// interpolate4Pixels bilinearly mixes four packed pixels.
func interpolate4Pixels(tl, tr, bl, br, distX, distY uint32) uint32 {
	idistX := 256 - distX
	idistY := 256 - distY
	top := interpolatePixel(tl, idistX, tr, distX)
	bottom := interpolatePixel(bl, idistX, br, distX)
	return interpolatePixel(top, idistY, bottom, distY)
}
