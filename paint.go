package paintcore

import (
	"math"

	"github.com/gogpu/paintcore/internal/blend"
)

// ClassicDab is one soft round brush stamp. X and Y are offsets from
// the message origin in quarter-pixel units; Size is the diameter in
// 1/256 pixel units.
type ClassicDab struct {
	X, Y     int32
	Size     uint16
	Hardness uint8
	Opacity  uint8
}

// PixelDab is one hard pixel-aligned stamp: offsets from the message
// origin in whole pixels, diameter in whole pixels.
type PixelDab struct {
	X, Y    int32
	Size    uint8
	Opacity uint8
}

// PaintDrawDabsParams carries one decoded dab stream to the painter.
// Exactly one of Classic and Pixel is set; Square selects the square
// variant for pixel dabs.
//
// MasterAlpha scales every dab's coverage. In direct mode the
// interpreter folds the dab color's alpha in here; in indirect mode
// the alpha becomes the sublayer opacity instead and MasterAlpha
// stays 255, which keeps the two paths pixel-identical after the
// stroke merges.
type PaintDrawDabsParams struct {
	ContextID   uint32
	OriginX     int
	OriginY     int
	Color       Pixel
	BlendMode   BlendMode
	MasterAlpha uint8
	Classic     []ClassicDab
	Pixel       []PixelDab
	Square      bool
}

// BrushStamp is one rasterized dab: a Diameter×Diameter coverage mask
// positioned at (Left, Top) in layer coordinates.
type BrushStamp struct {
	Left, Top int
	Diameter  int
	Mask      []uint8
}

// paintDrawDabs stamps every dab of the stream into the target
// content. The dab color's straight RGB is stamped at the coverage
// the mask provides; alpha enters only through MasterAlpha.
func paintDrawDabs(dc *DrawContext, params *PaintDrawDabsParams, target *TransientLayerContent) error {
	color := PixelFromBGRA(params.Color.B(), params.Color.G(), params.Color.R(), 255)
	if params.Classic != nil {
		for i := range params.Classic {
			dab := &params.Classic[i]
			stamp := makeClassicStamp(
				float64(params.OriginX)+float64(dab.X)/4,
				float64(params.OriginY)+float64(dab.Y)/4,
				float64(dab.Size)/256,
				dab.Hardness,
				scaleOpacity(dab.Opacity, params.MasterAlpha))
			if stamp != nil {
				target.BrushStampApply(params.ContextID, color, params.BlendMode, stamp)
			}
		}
		return nil
	}
	for i := range params.Pixel {
		dab := &params.Pixel[i]
		stamp := makePixelStamp(
			params.OriginX+int(dab.X),
			params.OriginY+int(dab.Y),
			int(dab.Size),
			params.Square,
			scaleOpacity(dab.Opacity, params.MasterAlpha))
		if stamp != nil {
			target.BrushStampApply(params.ContextID, color, params.BlendMode, stamp)
		}
	}
	return nil
}

func scaleOpacity(opacity, master uint8) uint8 {
	if master == 255 {
		return opacity
	}
	return uint8(blend.Scale(uint32(opacity)<<24, master) >> 24)
}

// makeClassicStamp rasterizes a soft round dab centered at (cx, cy).
// Coverage falls from full inside hardness·radius to zero at the rim.
func makeClassicStamp(cx, cy, diameter float64, hardness, opacity uint8) *BrushStamp {
	if diameter <= 0 || opacity == 0 {
		return nil
	}
	radius := diameter / 2
	left := int(math.Floor(cx - radius))
	top := int(math.Floor(cy - radius))
	size := int(math.Ceil(cx+radius)) - left
	if s := int(math.Ceil(cy+radius)) - top; s > size {
		size = s
	}
	if size < 1 {
		size = 1
	}
	hard := float64(hardness) / 255
	mask := make([]uint8, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(left+x) + 0.5 - cx
			dy := float64(top+y) + 0.5 - cy
			dist := math.Sqrt(dx*dx+dy*dy) / radius
			var cov float64
			switch {
			case dist >= 1:
				cov = 0
			case dist <= hard:
				cov = 1
			default:
				cov = 1 - (dist-hard)/(1-hard)
			}
			mask[y*size+x] = uint8(cov*float64(opacity) + 0.5)
		}
	}
	return &BrushStamp{Left: left, Top: top, Diameter: size, Mask: mask}
}

// makePixelStamp rasterizes a hard dab of the given whole-pixel
// diameter: a filled square, or a circle clipped to the pixel grid.
func makePixelStamp(cx, cy, diameter int, square bool, opacity uint8) *BrushStamp {
	if diameter < 1 || opacity == 0 {
		return nil
	}
	left := cx - diameter/2
	top := cy - diameter/2
	mask := make([]uint8, diameter*diameter)
	if square {
		for i := range mask {
			mask[i] = opacity
		}
	} else {
		radius := float64(diameter) / 2
		center := float64(diameter) / 2
		for y := 0; y < diameter; y++ {
			for x := 0; x < diameter; x++ {
				dx := float64(x) + 0.5 - center
				dy := float64(y) + 0.5 - center
				if dx*dx+dy*dy <= radius*radius {
					mask[y*diameter+x] = opacity
				}
			}
		}
	}
	return &BrushStamp{Left: left, Top: top, Diameter: diameter, Mask: mask}
}
