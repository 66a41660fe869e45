// Package raster provides the scanline polygon rasterizer behind
// perspective image transforms.
//
// The rasterizer sweeps a convex or concave quad with 4× vertical
// subsampling and exact horizontal coverage, emitting antialiased
// spans to a callback. Scratch memory comes from a Pool that doubles
// on demand up to a hard cap.
package raster

import (
	"errors"
	"math"
	"sort"
)

// ErrPoolExhausted is returned when rasterization would need more
// scratch cells than the pool's configured maximum.
var ErrPoolExhausted = errors.New("raster: scratch pool exhausted")

// subsamples is the number of horizontal sample lines per output row.
// Each contributes up to 64 coverage units, so a fully covered cell
// accumulates 256, clamped to 255 on emission.
const subsamples = 4

// Span is a horizontal run of destination pixels with uniform
// antialiased coverage.
type Span struct {
	X        int
	Len      int
	Coverage uint8
}

// SpanFunc receives the coverage spans of one destination row. Spans
// are ordered by X and non-overlapping.
type SpanFunc func(y int, spans []Span)

// Pool holds the rasterizer's scratch cells. It grows by doubling and
// refuses to grow beyond max.
type Pool struct {
	cells []int32
	spans []Span
	max   int
}

// NewPool creates a pool with the given initial and maximum cell
// counts. A non-positive max means the initial size is also the cap.
func NewPool(initial, max int) *Pool {
	if initial < 1 {
		initial = 1
	}
	if max < initial {
		max = initial
	}
	return &Pool{cells: make([]int32, initial), max: max}
}

// ensure grows the cell buffer to at least n cells, doubling until it
// fits or the cap is hit.
func (p *Pool) ensure(n int) error {
	if n <= len(p.cells) {
		return nil
	}
	size := len(p.cells)
	for size < n {
		size *= 2
	}
	if size > p.max {
		return ErrPoolExhausted
	}
	p.cells = make([]int32, size)
	return nil
}

// Rasterize sweeps the polygon given by pts (in destination pixel
// coordinates), clipped to the rectangle [0,clipW)×[0,clipH), and
// calls fn for every row that has nonzero coverage.
func Rasterize(pts [][2]float64, clipW, clipH int, pool *Pool, fn SpanFunc) error {
	if len(pts) < 3 || clipW < 1 || clipH < 1 {
		return nil
	}
	if err := pool.ensure(clipW); err != nil {
		return err
	}
	row := pool.cells[:clipW]

	minY, maxY := pts[0][1], pts[0][1]
	for _, pt := range pts[1:] {
		minY = math.Min(minY, pt[1])
		maxY = math.Max(maxY, pt[1])
	}
	yStart := int(math.Floor(minY))
	yEnd := int(math.Ceil(maxY))
	if yStart < 0 {
		yStart = 0
	}
	if yEnd > clipH {
		yEnd = clipH
	}

	var xs []float64
	for y := yStart; y < yEnd; y++ {
		for i := range row {
			row[i] = 0
		}
		dirtyLo, dirtyHi := clipW, 0

		for s := 0; s < subsamples; s++ {
			sy := float64(y) + (float64(s)+0.5)/subsamples
			xs = xs[:0]
			for i := range pts {
				a, b := pts[i], pts[(i+1)%len(pts)]
				if (a[1] <= sy) == (b[1] <= sy) {
					continue
				}
				t := (sy - a[1]) / (b[1] - a[1])
				xs = append(xs, a[0]+t*(b[0]-a[0]))
			}
			if len(xs) < 2 {
				continue
			}
			sort.Float64s(xs)
			for i := 0; i+1 < len(xs); i += 2 {
				lo, hi := accumulate(row, xs[i], xs[i+1], clipW)
				if lo < dirtyLo {
					dirtyLo = lo
				}
				if hi > dirtyHi {
					dirtyHi = hi
				}
			}
		}

		if dirtyLo >= dirtyHi {
			continue
		}
		spans := pool.spans[:0]
		x := dirtyLo
		for x < dirtyHi {
			c := coverageAt(row[x])
			if c == 0 {
				x++
				continue
			}
			run := x + 1
			for run < dirtyHi && coverageAt(row[run]) == c {
				run++
			}
			spans = append(spans, Span{X: x, Len: run - x, Coverage: c})
			x = run
		}
		if len(spans) > 0 {
			fn(y, spans)
		}
		pool.spans = spans[:0]
	}
	return nil
}

// accumulate adds one subsample's coverage for the interval [xa, xb)
// into the row buffer and reports the touched cell range.
func accumulate(row []int32, xa, xb float64, clipW int) (int, int) {
	if xa < 0 {
		xa = 0
	}
	if xb > float64(clipW) {
		xb = float64(clipW)
	}
	if xa >= xb {
		return clipW, 0
	}
	ia := int(xa)
	ib := int(xb)
	if ib >= clipW {
		ib = clipW - 1
	}
	if ia == ib {
		row[ia] += int32((xb-xa)*64 + 0.5)
	} else {
		row[ia] += int32((float64(ia+1)-xa)*64 + 0.5)
		for i := ia + 1; i < ib; i++ {
			row[i] += 64
		}
		if frac := xb - float64(ib); frac > 0 {
			row[ib] += int32(frac*64 + 0.5)
		}
	}
	return ia, ib + 1
}

func coverageAt(v int32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
