package paintcore

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// GuessImageFormat inspects the leading bytes of an image file.
// Currently only PNG is recognized.
func GuessImageFormat(header []byte) (string, bool) {
	if len(header) >= len(pngSignature) && bytes.Equal(header[:len(pngSignature)], pngSignature) {
		return "png", true
	}
	return "", false
}

// ReadImageFile reads an image file, guessing the format from its
// leading bytes.
func ReadImageFile(r io.Reader) (*Image, error) {
	br := newPeekReader(r)
	header, err := br.peek(len(pngSignature))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	format, ok := GuessImageFormat(header)
	if !ok {
		return nil, fmt.Errorf("%w: could not guess image file format", ErrDecode)
	}
	switch format {
	case "png":
		return ReadPNG(br)
	default:
		return nil, fmt.Errorf("%w: unsupported image format %q", ErrDecode, format)
	}
}

// ReadPNG decodes a PNG stream into an Image. Any source bit depth,
// palette or grayscale variant is accepted; the decoded image is
// collapsed to premultiplied 8-bit RGBA in one pass and then repacked
// into the canonical pixel layout. Dimensions beyond MaxImageDimension are
// rejected.
func ReadPNG(r io.Reader) (*Image, error) {
	decoded, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	bounds := decoded.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > MaxImageDimension || height > MaxImageDimension {
		return nil, fmt.Errorf("%w: PNG dimensions %dx%d exceed %d",
			ErrDecode, width, height, MaxImageDimension)
	}

	// One draw call normalizes every PNG variant (16-bit, paletted,
	// gray) to premultiplied 8-bit RGBA.
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), decoded, bounds.Min, draw.Src)

	img := NewImage(width, height)
	for y := 0; y < height; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
		for x := 0; x < width; x++ {
			img.pixels[y*width+x] = PixelFromBGRA(
				row[x*4+2], row[x*4+1], row[x*4+0], row[x*4+3])
		}
	}
	return img, nil
}

// WritePNG encodes the image as an 8-bit RGBA PNG with no interlace
// and default compression and filtering. Premultiplied pixels are
// converted to straight alpha on the way out.
func WritePNG(img *Image, w io.Writer) error {
	rgba := image.NewNRGBA(image.Rect(0, 0, img.width, img.height))
	for y := 0; y < img.height; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+img.width*4]
		for x := 0; x < img.width; x++ {
			p := img.pixels[y*img.width+x].Unpremultiply()
			row[x*4+0] = p.R()
			row[x*4+1] = p.G()
			row[x*4+2] = p.B()
			row[x*4+3] = p.A()
		}
	}
	if err := png.Encode(w, rgba); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// ToImageRGBA converts to a stdlib premultiplied image.RGBA, sharing
// no memory with the source.
func (img *Image) ToImageRGBA() *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, img.width, img.height))
	for y := 0; y < img.height; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+img.width*4]
		for x := 0; x < img.width; x++ {
			p := img.pixels[y*img.width+x]
			row[x*4+0] = p.R()
			row[x*4+1] = p.G()
			row[x*4+2] = p.B()
			row[x*4+3] = p.A()
		}
	}
	return rgba
}

// peekReader lets ReadImageFile sniff the format without consuming
// the header bytes.
type peekReader struct {
	r      io.Reader
	buf    []byte
	offset int
}

func newPeekReader(r io.Reader) *peekReader {
	return &peekReader{r: r}
}

func (pr *peekReader) peek(n int) ([]byte, error) {
	for len(pr.buf) < n {
		chunk := make([]byte, n-len(pr.buf))
		read, err := pr.r.Read(chunk)
		pr.buf = append(pr.buf, chunk[:read]...)
		if err != nil {
			return pr.buf, err
		}
	}
	return pr.buf[:n], nil
}

func (pr *peekReader) Read(p []byte) (int, error) {
	if pr.offset < len(pr.buf) {
		n := copy(p, pr.buf[pr.offset:])
		pr.offset += n
		return n, nil
	}
	return pr.r.Read(p)
}
