package compiler

import (
	"math"

	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/flatten"
	"github.com/scenelayer/compositor/geom"
)

// gradientHalfExtent is the perpendicular extrusion half-width used to
// turn the 1D gradient axis into a polygon band. Clipping it against the
// item rectangle recovers the true band only where the rectangle lies
// within this distance of the axis; parts farther out are not covered
// (spec §4.4 Gradient, §9 open question iii).
const gradientHalfExtent = 1000.0

// gradientVertex is one corner of the rotated gradient band polygon,
// carrying its own color so clipping can interpolate color at new
// boundary vertices the way the stop-pair band does upstream.
type gradientVertex struct {
	X, Y       float64
	R, G, B, A float32
}

// addGradient decomposes the gradient into one perpendicular-extruded
// band per stop pair, clips the rotated band polygon against the item's
// rectangle with a Sutherland-Hodgman pass, and emits the result as a
// triangle fan (spec §4.4 Gradient).
func (c *TileCompiler) addGradient(b *DrawCommandBuilder, key fingerprint.ItemKey, item *displaylist.DisplayItem, fdl *flatten.FlatDrawList, clip geom.Rect) {
	g := item.Gradient
	if len(g.Stops) < 2 {
		return
	}
	dx, dy := g.End.X-g.Start.X, g.End.Y-g.Start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return // shape violation: zero-length gradient axis, silently skipped
	}
	ux, uy := dx/length, dy/length // unit vector along the axis
	px, py := -uy, ux              // unit perpendicular vector

	bounds := item.Rect.Intersect(clip)
	if bounds.Empty() {
		return
	}

	band := func(offset float64) (geom.Point, geom.Point) {
		ax := g.Start.X + ux*offset
		ay := g.Start.Y + uy*offset
		return geom.Point{X: ax + px*gradientHalfExtent, Y: ay + py*gradientHalfExtent},
			geom.Point{X: ax - px*gradientHalfExtent, Y: ay - py*gradientHalfExtent}
	}

	for i := 0; i < len(g.Stops)-1; i++ {
		s0, s1 := g.Stops[i], g.Stops[i+1]
		o0, o1 := s0.Offset*length, s1.Offset*length

		a1, a2 := band(o0)
		b1, b2 := band(o1)

		r0, g0, bl0, a0 := vertexColor(s0.Color)
		r1, g1, bl1, a1c := vertexColor(s1.Color)

		polygon := []gradientVertex{
			{X: a2.X, Y: a2.Y, R: r0, G: g0, B: bl0, A: a0},
			{X: b2.X, Y: b2.Y, R: r1, G: g1, B: bl1, A: a1c},
			{X: b1.X, Y: b1.Y, R: r1, G: g1, B: bl1, A: a1c},
			{X: a1.X, Y: a1.Y, R: r0, G: g0, B: bl0, A: a0},
		}

		clipped := clipPolygonToRect(polygon, bounds)
		if len(clipped) < 3 {
			continue
		}

		verts := make([]Vertex, len(clipped))
		for i, v := range clipped {
			verts[i] = Vertex{X: float32(v.X), Y: float32(v.Y), R: v.R, G: v.G, B: v.B, A: v.A}
		}
		b.AddTriangleFan(key, key.DrawList, ProgramGradient, WhiteTexture, DummyMask, verts)
	}
}

// clipPolygonToRect runs a Sutherland-Hodgman clip of polygon (any
// winding, any vertex count) against bounds' four half-planes in turn,
// linearly interpolating position and color at each new boundary vertex.
func clipPolygonToRect(polygon []gradientVertex, bounds geom.Rect) []gradientVertex {
	type edge struct {
		inside    func(gradientVertex) bool
		intersect func(a, b gradientVertex) gradientVertex
	}
	lerp := func(a, b gradientVertex, t float64) gradientVertex {
		f := float32(t)
		return gradientVertex{
			X: a.X + (b.X-a.X)*t,
			Y: a.Y + (b.Y-a.Y)*t,
			R: a.R + (b.R-a.R)*f,
			G: a.G + (b.G-a.G)*f,
			B: a.B + (b.B-a.B)*f,
			A: a.A + (b.A-a.A)*f,
		}
	}
	edges := [4]edge{
		{
			inside:    func(v gradientVertex) bool { return v.X >= bounds.X },
			intersect: func(a, b gradientVertex) gradientVertex { return lerp(a, b, (bounds.X-a.X)/(b.X-a.X)) },
		},
		{
			inside:    func(v gradientVertex) bool { return v.X <= bounds.MaxX() },
			intersect: func(a, b gradientVertex) gradientVertex { return lerp(a, b, (bounds.MaxX()-a.X)/(b.X-a.X)) },
		},
		{
			inside:    func(v gradientVertex) bool { return v.Y >= bounds.Y },
			intersect: func(a, b gradientVertex) gradientVertex { return lerp(a, b, (bounds.Y-a.Y)/(b.Y-a.Y)) },
		},
		{
			inside:    func(v gradientVertex) bool { return v.Y <= bounds.MaxY() },
			intersect: func(a, b gradientVertex) gradientVertex { return lerp(a, b, (bounds.MaxY()-a.Y)/(b.Y-a.Y)) },
		},
	}

	for _, e := range edges {
		if len(polygon) == 0 {
			break
		}
		var out []gradientVertex
		prev := polygon[len(polygon)-1]
		prevIn := e.inside(prev)
		for _, cur := range polygon {
			curIn := e.inside(cur)
			switch {
			case curIn && prevIn:
				out = append(out, cur)
			case curIn && !prevIn:
				out = append(out, e.intersect(prev, cur), cur)
			case !curIn && prevIn:
				out = append(out, e.intersect(prev, cur))
			}
			prev, prevIn = cur, curIn
		}
		polygon = out
	}
	return polygon
}
