// Package geom holds the 2D affine transform and rectangle math shared by
// every stage of the scene compiler: the flattener composes matrices while
// walking the stacking-context tree, the compiler applies them when packing
// vertices, and the frame assembler recomposes them with the scroll offset.
package geom

import "math"

// Matrix is a 2D affine transform in row-major 2x3 form:
//
//	| a  b  c |
//	| d  e  f |
//
// applying x' = a*x + b*y + c, y' = d*x + e*y + f.
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, B: 0, C: x, D: 0, E: 1, F: y}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, E: y}
}

// Multiply composes m then other (other applied to the result of m), i.e.
// the accumulated-transform composition used by the flattener: each
// stacking context's bounds translation is multiplied onto the parent's
// accumulated transform.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: other.A*m.A + other.B*m.D,
		B: other.A*m.B + other.B*m.E,
		C: other.A*m.C + other.B*m.F + other.C,
		D: other.D*m.A + other.E*m.D,
		E: other.D*m.B + other.E*m.E,
		F: other.D*m.C + other.E*m.F + other.F,
	}
}

// TransformPoint applies the transform to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{X: m.A*p.X + m.B*p.Y + m.C, Y: m.D*p.X + m.E*p.Y + m.F}
}

// TransformRect returns the axis-aligned bounding box of the transformed
// rectangle corners.
func (m Matrix) TransformRect(r Rect) Rect {
	corners := [4]Point{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X, r.Y + r.H},
		{r.X + r.W, r.Y + r.H},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := m.TransformPoint(c)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// IsIdentity reports whether m performs no transformation.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
