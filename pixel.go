package paintcore

import (
	"encoding/binary"

	"github.com/gogpu/paintcore/internal/blend"
)

// BlendMode selects how source pixels combine with destination
// pixels. The zero-based numeric values are the wire values carried
// by drawing messages.
type BlendMode = blend.Mode

// Blend modes, re-exported from the internal blend package.
const (
	BlendErase      = blend.ModeErase
	BlendNormal     = blend.ModeNormal
	BlendMultiply   = blend.ModeMultiply
	BlendDivide     = blend.ModeDivide
	BlendBurn       = blend.ModeBurn
	BlendDodge      = blend.ModeDodge
	BlendDarken     = blend.ModeDarken
	BlendLighten    = blend.ModeLighten
	BlendSubtract   = blend.ModeSubtract
	BlendAdd        = blend.ModeAdd
	BlendRecolor    = blend.ModeRecolor
	BlendBehind     = blend.ModeBehind
	BlendColorErase = blend.ModeColorErase
	BlendReplace    = blend.ModeReplace
)

// BlendModeExists reports whether the raw wire value names a known
// blend mode.
func BlendModeExists(mode int) bool { return blend.Exists(mode) }

// Pixel is one canvas pixel: 32-bit premultiplied BGRA. Blue lives in
// the least significant byte, then green, red and alpha, which is the
// canonical little-endian in-memory order.
type Pixel uint32

// PixelFromBGRA builds a pixel from premultiplied channel values.
func PixelFromBGRA(b, g, r, a uint8) Pixel {
	return Pixel(uint32(b) | uint32(g)<<8 | uint32(r)<<16 | uint32(a)<<24)
}

// B returns the blue channel.
func (p Pixel) B() uint8 { return uint8(p) }

// G returns the green channel.
func (p Pixel) G() uint8 { return uint8(p >> 8) }

// R returns the red channel.
func (p Pixel) R() uint8 { return uint8(p >> 16) }

// A returns the alpha channel.
func (p Pixel) A() uint8 { return uint8(p >> 24) }

// Premultiply converts a straight-alpha pixel to premultiplied form.
func (p Pixel) Premultiply() Pixel {
	a := uint32(p.A())
	if a == 255 {
		return p
	}
	if a == 0 {
		return 0
	}
	mul := func(c uint8) uint8 {
		t := uint32(c)*a + 1
		return uint8((t + t>>8) >> 8)
	}
	return PixelFromBGRA(mul(p.B()), mul(p.G()), mul(p.R()), uint8(a))
}

// Unpremultiply converts a premultiplied pixel to straight alpha,
// e.g. for PNG export. Channels are clamped to 255.
func (p Pixel) Unpremultiply() Pixel {
	a := uint32(p.A())
	if a == 255 {
		return p
	}
	if a == 0 {
		return 0
	}
	un := func(c uint8) uint8 {
		u := uint32(c) * 255 / a
		if u > 255 {
			return 255
		}
		return uint8(u)
	}
	return PixelFromBGRA(un(p.B()), un(p.G()), un(p.R()), uint8(a))
}

// pixelsToBytes serializes pixels in the canonical wire order.
func pixelsToBytes(pixels []Pixel) []byte {
	out := make([]byte, len(pixels)*4)
	for i, p := range pixels {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(p))
	}
	return out
}

// pixelsFromBytes deserializes canonical wire bytes into dst. The
// explicit little-endian load keeps big-endian hosts correct.
func pixelsFromBytes(dst []Pixel, data []byte) {
	for i := range dst {
		dst[i] = Pixel(binary.LittleEndian.Uint32(data[i*4:]))
	}
}

// compositePixels blends src onto dst, scaling src by opacity first.
// The slices must have equal length.
func compositePixels(dst, src []Pixel, opacity uint8, mode BlendMode) {
	for i, s := range src {
		scaled := blend.Scale(uint32(s), opacity)
		dst[i] = Pixel(blend.Composite(uint32(dst[i]), scaled, mode))
	}
}

// composite1 blends one source pixel onto one destination pixel at
// full opacity.
func composite1(dst, src Pixel, mode BlendMode) Pixel {
	return Pixel(blend.Composite(uint32(dst), uint32(src), mode))
}

// compositeSolid blends a solid color over a destination run.
func compositeSolid(dst []Pixel, color Pixel, mode BlendMode) {
	for i := range dst {
		dst[i] = Pixel(blend.Composite(uint32(dst[i]), uint32(color), mode))
	}
}

// compositeMask stamps a single color through a coverage mask. Each
// mask byte scales the color before blending.
func compositeMask(dst []Pixel, color Pixel, mask []uint8, mode BlendMode) {
	for i, cov := range mask {
		if cov == 0 {
			continue
		}
		scaled := blend.Scale(uint32(color), cov)
		dst[i] = Pixel(blend.Composite(uint32(dst[i]), scaled, mode))
	}
}
