package geom

// MaxRect is the fixed sentinel used as "no clip" (spec §6).
var MaxRect = Rect{X: -1000, Y: -1000, W: 10000, H: 10000}

// Point is a 2D coordinate in device-independent units.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle with top-left origin (X, Y) and size (W, H).
type Rect struct {
	X, Y, W, H float64
}

// NewRect builds a rectangle from origin and size.
func NewRect(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Translate offsets the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect { return Rect{r.X + dx, r.Y + dy, r.W, r.H} }

// Intersects reports whether r and o share any area, using half-open edge
// comparison so that abutting rectangles (sharing only an edge) do not
// count as intersecting — this matches the AABB tree split/insert rule.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// Intersect returns the overlapping area of r and o. Empty (W<=0 or H<=0)
// if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.MaxX(), o.MaxX())
	y1 := min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.MaxX(), o.MaxX())
	y1 := max(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// ClipRegion is an item's clip: a main rectangle plus zero or more complex
// rounded-rectangle clip regions (spec §3 "Each item carries ... a clip
// region").
type ClipRegion struct {
	Main     Rect
	Complex  []ComplexClip
}

// ComplexClip is a rounded-rectangle clip region.
type ComplexClip struct {
	Rect          Rect
	CornerRadius  float64
}

// NoClip returns a clip region with no restriction (MaxRect, no complex regions).
func NoClip() ClipRegion { return ClipRegion{Main: MaxRect} }
