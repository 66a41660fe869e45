// Package blend implements the canvas blend modes on premultiplied
// BGRA pixels.
//
// A pixel is a uint32 holding premultiplied channels in canonical
// order: blue in the least significant byte, then green, red, alpha.
// All operations are integer-only and deterministic, so replaying a
// command log reproduces a canvas bit for bit.
package blend

// Mode identifies a blend mode. The numeric values are the wire
// values carried by drawing messages.
type Mode uint8

const (
	ModeErase Mode = iota
	ModeNormal
	ModeMultiply
	ModeDivide
	ModeBurn
	ModeDodge
	ModeDarken
	ModeLighten
	ModeSubtract
	ModeAdd
	ModeRecolor
	ModeBehind
	ModeColorErase
	ModeReplace

	modeCount
)

var modeNames = [modeCount]string{
	"Erase", "Normal", "Multiply", "Divide", "Burn", "Dodge", "Darken",
	"Lighten", "Subtract", "Add", "Recolor", "Behind", "ColorErase",
	"Replace",
}

// String returns the mode name, or "Unknown" for out-of-range values.
func (m Mode) String() string {
	if m < modeCount {
		return modeNames[m]
	}
	return "Unknown"
}

// Exists reports whether the raw wire value names a known blend mode.
func Exists(mode int) bool {
	return mode >= 0 && mode < int(modeCount)
}

// ValidForBrush reports whether the mode may be used by brush
// operations (dabs, fills). Replace rewrites pixels wholesale and is
// reserved for tile placement.
func (m Mode) ValidForBrush() bool {
	return m < modeCount && m != ModeReplace
}

// Channel accessors for the canonical pixel layout.

func pixelB(p uint32) uint32 { return p & 0xff }
func pixelG(p uint32) uint32 { return p >> 8 & 0xff }
func pixelR(p uint32) uint32 { return p >> 16 & 0xff }
func pixelA(p uint32) uint32 { return p >> 24 }

func makePixel(b, g, r, a uint32) uint32 {
	return b | g<<8 | r<<16 | a<<24
}

// mulDiv255 multiplies two channel values and divides by 255 exactly
// without an integer division (Alvy Ray Smith's formula). Exactness
// matters here: snapshots must be bit-reproducible from the command
// log.
func mulDiv255(a, b uint32) uint32 {
	t := a*b + 1
	return (t + t>>8) >> 8
}

func addClamp(a, b uint32) uint32 {
	sum := a + b
	if sum > 255 {
		return 255
	}
	return sum
}

func subClamp(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}

// Scale multiplies every channel of a premultiplied pixel by
// factor/255. Scaling by 255 is the identity.
func Scale(p uint32, factor uint8) uint32 {
	if factor == 255 {
		return p
	}
	if factor == 0 {
		return 0
	}
	f := uint32(factor)
	return makePixel(
		mulDiv255(pixelB(p), f),
		mulDiv255(pixelG(p), f),
		mulDiv255(pixelR(p), f),
		mulDiv255(pixelA(p), f))
}

// Composite blends a premultiplied source pixel onto a premultiplied
// destination pixel. Opacity must already be folded into src via
// Scale; Composite itself takes no coverage parameter.
func Composite(dst, src uint32, mode Mode) uint32 {
	switch mode {
	case ModeErase:
		return Scale(dst, uint8(255-pixelA(src)))
	case ModeNormal:
		return compositeNormal(dst, src)
	case ModeBehind:
		return compositeNormal(src, dst)
	case ModeReplace:
		return src
	case ModeRecolor:
		return separable(dst, src, func(s, d uint32) uint32 { return s })
	case ModeMultiply:
		return separable(dst, src, mulDiv255)
	case ModeDivide:
		return separable(dst, src, channelDivide)
	case ModeBurn:
		return separable(dst, src, channelBurn)
	case ModeDodge:
		return separable(dst, src, channelDodge)
	case ModeDarken:
		return separable(dst, src, channelDarken)
	case ModeLighten:
		return separable(dst, src, channelLighten)
	case ModeSubtract:
		return separable(dst, src, subFlipped)
	case ModeAdd:
		return separable(dst, src, addFlipped)
	case ModeColorErase:
		return compositeColorErase(dst, src)
	default:
		return compositeNormal(dst, src)
	}
}

// compositeNormal is standard source-over on premultiplied pixels:
// out = S + D*(1 - Sa).
func compositeNormal(dst, src uint32) uint32 {
	sa := pixelA(src)
	if sa == 255 {
		return src
	}
	if sa == 0 {
		return dst
	}
	inv := 255 - sa
	return makePixel(
		pixelB(src)+mulDiv255(pixelB(dst), inv),
		pixelG(src)+mulDiv255(pixelG(dst), inv),
		pixelR(src)+mulDiv255(pixelR(dst), inv),
		sa+mulDiv255(pixelA(dst), inv))
}

// separable applies a per-channel blend function on unmultiplied
// channels, keeping the destination alpha. The source alpha acts as
// the blending strength: out_c = d_c + Sa*(B(s_c, d_c) - d_c). A
// fully transparent destination stays transparent; these modes only
// recolor existing pixels.
func separable(dst, src uint32, fn func(s, d uint32) uint32) uint32 {
	sa := pixelA(src)
	da := pixelA(dst)
	if sa == 0 || da == 0 {
		return dst
	}
	sb, sg, sr := unmult(pixelB(src), sa), unmult(pixelG(src), sa), unmult(pixelR(src), sa)
	db, dg, dr := unmult(pixelB(dst), da), unmult(pixelG(dst), da), unmult(pixelR(dst), da)
	ob := lerpChannel(db, fn(sb, db), sa)
	og := lerpChannel(dg, fn(sg, dg), sa)
	or := lerpChannel(dr, fn(sr, dr), sa)
	return makePixel(mulDiv255(ob, da), mulDiv255(og, da), mulDiv255(or, da), da)
}

// compositeColorErase reduces the destination alpha where the
// destination color matches the source color. The surviving color is
// chosen so that compositing the source back over the result
// approximately reproduces the original pixel.
func compositeColorErase(dst, src uint32) uint32 {
	sa := pixelA(src)
	da := pixelA(dst)
	if sa == 0 || da == 0 {
		return dst
	}
	sb, sg, sr := unmult(pixelB(src), sa), unmult(pixelG(src), sa), unmult(pixelR(src), sa)
	db, dg, dr := unmult(pixelB(dst), da), unmult(pixelG(dst), da), unmult(pixelR(dst), da)

	a := eraseAlpha(sb, db)
	if g := eraseAlpha(sg, dg); g > a {
		a = g
	}
	if r := eraseAlpha(sr, dr); r > a {
		a = r
	}
	if a == 0 {
		// Exact color match: erase entirely, scaled by source strength.
		return Scale(dst, uint8(255-sa))
	}

	oa := mulDiv255(da, a)
	full := makePixel(
		mulDiv255(eraseChannel(sb, db, a), oa),
		mulDiv255(eraseChannel(sg, dg, a), oa),
		mulDiv255(eraseChannel(sr, dr, a), oa),
		oa)
	if sa == 255 {
		return full
	}
	return lerpPixel(dst, full, sa)
}

// eraseAlpha computes how much of the destination channel survives
// removal of the source channel: 0 when equal, growing with distance.
func eraseAlpha(s, d uint32) uint32 {
	switch {
	case d == s:
		return 0
	case d > s:
		return (d - s) * 255 / (255 - s)
	default:
		return (s - d) * 255 / s
	}
}

// eraseChannel solves d = (1-a)*s + a*c for the surviving color c.
func eraseChannel(s, d, a uint32) uint32 {
	n := int32(d*255) - int32((255-a)*s)
	if n <= 0 {
		return 0
	}
	c := uint32(n) / a
	if c > 255 {
		return 255
	}
	return c
}

func lerpChannel(from, to, t uint32) uint32 {
	return from + mulDiv255(to, t) - mulDiv255(from, t)
}

func lerpPixel(from, to uint32, t uint32) uint32 {
	return makePixel(
		lerpChannel(pixelB(from), pixelB(to), t),
		lerpChannel(pixelG(from), pixelG(to), t),
		lerpChannel(pixelR(from), pixelR(to), t),
		lerpChannel(pixelA(from), pixelA(to), t))
}

func unmult(c, a uint32) uint32 {
	if a == 0 {
		return 0
	}
	u := c * 255 / a
	if u > 255 {
		return 255
	}
	return u
}

// Per-channel blend functions on unmultiplied values.

func channelDivide(s, d uint32) uint32 {
	v := d * 256 / (s + 1)
	if v > 255 {
		return 255
	}
	return v
}

func channelBurn(s, d uint32) uint32 {
	if s == 0 {
		if d == 255 {
			return 255
		}
		return 0
	}
	v := (255 - d) * 255 / s
	if v > 255 {
		return 0
	}
	return 255 - v
}

func channelDodge(s, d uint32) uint32 {
	if s == 255 {
		return 255
	}
	v := d * 255 / (255 - s)
	if v > 255 {
		return 255
	}
	return v
}

func channelDarken(s, d uint32) uint32 {
	if s < d {
		return s
	}
	return d
}

func channelLighten(s, d uint32) uint32 {
	if s > d {
		return s
	}
	return d
}

func subFlipped(s, d uint32) uint32 { return subClamp(d, s) }
func addFlipped(s, d uint32) uint32 { return addClamp(d, s) }
