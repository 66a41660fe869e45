package paintcore

import (
	"math"
	"testing"
)

// TestRect verifies the inclusive-corner convention.
func TestRect(t *testing.T) {
	r := MakeRect(2, 3, 10, 20)
	if r.X2 != 11 || r.Y2 != 22 {
		t.Errorf("corners = (%d,%d), want (11,22)", r.X2, r.Y2)
	}
	if r.Width() != 10 || r.Height() != 20 {
		t.Errorf("size = %dx%d, want 10x20", r.Width(), r.Height())
	}
	if r.Size() != 200 {
		t.Errorf("Size = %d, want 200", r.Size())
	}
	if !r.Valid() {
		t.Error("rect should be valid")
	}
	if MakeRect(0, 0, 0, 5).Valid() {
		t.Error("zero-width rect should be invalid")
	}
}

// TestQuadBounds verifies the bounding rectangle of a rotated quad.
func TestQuadBounds(t *testing.T) {
	q := MakeQuad(5, 0, 10, 5, 5, 10, 0, 5)
	b := q.Bounds()
	if b.X1 != 0 || b.Y1 != 0 || b.X2 != 10 || b.Y2 != 10 {
		t.Errorf("bounds = %+v", b)
	}
}

// TestQuadTranslate verifies corner-wise translation.
func TestQuadTranslate(t *testing.T) {
	q := MakeQuad(1, 2, 3, 4, 5, 6, 7, 8).Translate(-1, -2)
	if q.X1 != 0 || q.Y1 != 0 || q.X4 != 6 || q.Y4 != 6 {
		t.Errorf("translated = %+v", q)
	}
}

// TestTransformInvert verifies a matrix composed with its inverse
// maps points to themselves.
func TestTransformInvert(t *testing.T) {
	tf, ok := QuadToQuad(
		MakeQuad(0, 0, 4, 0, 4, 4, 0, 4),
		MakeQuad(1, 1, 9, 2, 8, 9, 0, 8))
	if !ok {
		t.Fatal("quad to quad failed")
	}
	inv, ok := tf.Invert()
	if !ok {
		t.Fatal("invert failed")
	}
	id := tf.Mul(inv)
	for _, pt := range [][2]float64{{0, 0}, {2, 3}, {4, 4}} {
		x, y := id.Apply(pt[0], pt[1])
		if math.Abs(x-pt[0]) > 1e-9 || math.Abs(y-pt[1]) > 1e-9 {
			t.Errorf("identity maps (%v,%v) to (%v,%v)", pt[0], pt[1], x, y)
		}
	}
}

// TestQuadToQuad_MapsCorners verifies each source corner lands on its
// destination corner.
func TestQuadToQuad_MapsCorners(t *testing.T) {
	src := MakeQuad(0, 0, 8, 0, 8, 8, 0, 8)
	dst := MakeQuad(2, 1, 12, 3, 11, 13, 1, 10)
	tf, ok := QuadToQuad(src, dst)
	if !ok {
		t.Fatal("quad to quad failed")
	}
	srcPts := [][2]float64{{0, 0}, {8, 0}, {8, 8}, {0, 8}}
	dstPts := [][2]float64{{2, 1}, {12, 3}, {11, 13}, {1, 10}}
	for i := range srcPts {
		x, y := tf.Apply(srcPts[i][0], srcPts[i][1])
		if math.Abs(x-dstPts[i][0]) > 1e-6 || math.Abs(y-dstPts[i][1]) > 1e-6 {
			t.Errorf("corner %d maps to (%v,%v), want (%v,%v)", i, x, y, dstPts[i][0], dstPts[i][1])
		}
	}
}

// TestQuadToQuad_Degenerate verifies collinear corners are rejected.
func TestQuadToQuad_Degenerate(t *testing.T) {
	src := MakeQuad(0, 0, 4, 0, 4, 4, 0, 4)
	if _, ok := QuadToQuad(src, MakeQuad(0, 0, 1, 1, 2, 2, 3, 3)); ok {
		t.Error("collinear destination should fail")
	}
}
