package paintcore

import "math"

// Rect is an axis-aligned rectangle with inclusive corner
// coordinates, matching the wire convention: a rectangle covering
// pixels x..x+w-1 has X2 = x+w-1.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// MakeRect builds a rectangle from an origin and a size.
func MakeRect(x, y, w, h int) Rect {
	return Rect{X1: x, Y1: y, X2: x + w - 1, Y2: y + h - 1}
}

// Width returns the pixel width of the rectangle.
func (r Rect) Width() int { return r.X2 - r.X1 + 1 }

// Height returns the pixel height of the rectangle.
func (r Rect) Height() int { return r.Y2 - r.Y1 + 1 }

// Size returns Width*Height as a 64-bit value, safe against overflow
// for oversized quads.
func (r Rect) Size() int64 { return int64(r.Width()) * int64(r.Height()) }

// Valid reports whether the rectangle covers at least one pixel.
func (r Rect) Valid() bool { return r.X1 <= r.X2 && r.Y1 <= r.Y2 }

// Quad is a (possibly non-rectangular) destination quadrilateral with
// corners in drawing order.
type Quad struct {
	X1, Y1, X2, Y2, X3, Y3, X4, Y4 int
}

// MakeQuad builds a quad from its four corners.
func MakeQuad(x1, y1, x2, y2, x3, y3, x4, y4 int) Quad {
	return Quad{x1, y1, x2, y2, x3, y3, x4, y4}
}

// Bounds returns the inclusive bounding rectangle of the quad.
func (q Quad) Bounds() Rect {
	minX := min4(q.X1, q.X2, q.X3, q.X4)
	maxX := max4(q.X1, q.X2, q.X3, q.X4)
	minY := min4(q.Y1, q.Y2, q.Y3, q.Y4)
	maxY := max4(q.Y1, q.Y2, q.Y3, q.Y4)
	return Rect{X1: minX, Y1: minY, X2: maxX, Y2: maxY}
}

// Translate returns the quad shifted by (dx, dy).
func (q Quad) Translate(dx, dy int) Quad {
	return Quad{
		q.X1 + dx, q.Y1 + dy, q.X2 + dx, q.Y2 + dy,
		q.X3 + dx, q.Y3 + dy, q.X4 + dx, q.Y4 + dy,
	}
}

func min4(a, b, c, d int) int { return min(min(a, b), min(c, d)) }
func max4(a, b, c, d int) int { return max(max(a, b), max(c, d)) }

// Transform is a 3×3 perspective matrix in column-major order, the
// same layout the span fetcher sweeps:
//
//	| m0 m3 m6 |   | x |
//	| m1 m4 m7 | · | y |
//	| m2 m5 m8 |   | w |
type Transform struct {
	Matrix [9]float64
}

// Mul returns t·o.
func (t Transform) Mul(o Transform) Transform {
	a, b := t.Matrix, o.Matrix
	var out [9]float64
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			out[col*3+row] = a[row]*b[col*3] + a[3+row]*b[col*3+1] + a[6+row]*b[col*3+2]
		}
	}
	return Transform{Matrix: out}
}

// Invert returns the inverse matrix, or ok=false when the matrix is
// singular.
func (t Transform) Invert() (Transform, bool) {
	m := t.Matrix
	// Cofactor expansion along the first row (m0, m3, m6).
	c0 := m[4]*m[8] - m[7]*m[5]
	c1 := m[7]*m[2] - m[1]*m[8]
	c2 := m[1]*m[5] - m[4]*m[2]
	det := m[0]*c0 + m[3]*c1 + m[6]*c2
	if math.Abs(det) < 1e-12 {
		return Transform{}, false
	}
	inv := 1 / det
	out := [9]float64{
		c0 * inv,
		c1 * inv,
		c2 * inv,
		(m[6]*m[5] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[6]*m[2]) * inv,
		(m[3]*m[2] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[6]*m[4]) * inv,
		(m[6]*m[1] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[3]*m[1]) * inv,
	}
	return Transform{Matrix: out}, true
}

// Apply maps a point through the matrix, including the perspective
// divide.
func (t Transform) Apply(x, y float64) (float64, float64) {
	m := t.Matrix
	w := m[2]*x + m[5]*y + m[8]
	if w == 0 {
		w = 1
	}
	return (m[0]*x + m[3]*y + m[6]) / w, (m[1]*x + m[4]*y + m[7]) / w
}

// unitSquareToQuad derives the projective mapping of the unit square
// onto the given quad corners (Heckbert's construction). ok is false
// when the corners are collinear.
func unitSquareToQuad(x1, y1, x2, y2, x3, y3, x4, y4 float64) (Transform, bool) {
	dx1 := x2 - x3
	dx2 := x4 - x3
	dy1 := y2 - y3
	dy2 := y4 - y3
	sx := x1 - x2 + x3 - x4
	sy := y1 - y2 + y3 - y4

	det := dx1*dy2 - dx2*dy1
	if math.Abs(det) < 1e-12 {
		return Transform{}, false
	}

	g := (sx*dy2 - dx2*sy) / det
	h := (dx1*sy - sx*dy1) / det

	var m [9]float64
	m[0] = x2 - x1 + g*x2 // a
	m[1] = y2 - y1 + g*y2 // d
	m[2] = g
	m[3] = x4 - x1 + h*x4 // b
	m[4] = y4 - y1 + h*y4 // e
	m[5] = h
	m[6] = x1
	m[7] = y1
	m[8] = 1
	return Transform{Matrix: m}, true
}

// QuadToQuad derives the projective transform mapping the corners of
// src onto the corners of dst, in order. ok is false when either quad
// is degenerate.
func QuadToQuad(src, dst Quad) (Transform, bool) {
	s2src, ok := unitSquareToQuad(
		float64(src.X1), float64(src.Y1), float64(src.X2), float64(src.Y2),
		float64(src.X3), float64(src.Y3), float64(src.X4), float64(src.Y4))
	if !ok {
		return Transform{}, false
	}
	s2dst, ok := unitSquareToQuad(
		float64(dst.X1), float64(dst.Y1), float64(dst.X2), float64(dst.Y2),
		float64(dst.X3), float64(dst.Y3), float64(dst.X4), float64(dst.Y4))
	if !ok {
		return Transform{}, false
	}
	src2s, ok := s2src.Invert()
	if !ok {
		return Transform{}, false
	}
	return s2dst.Mul(src2s), true
}
