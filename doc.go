// Package compositor is a retained-mode 2D scene compiler: it ingests a
// tree of stacking contexts and display lists, flattens them into a flat
// depth-ordered stream with per-item transforms, spatially indexes them,
// culls against a viewport, compiles visible regions into GPU-ready
// batches (vertex buffers, index buffers, texture bindings, matrix
// palettes, draw/composite commands), and emits per-frame delta updates
// to a renderer.
//
// # Quick start
//
//	c, err := compositor.New(geom.Size{W: 800, H: 600}, mySink,
//	    compositor.WithFontFactory(myFontFactory))
//	c.Send(coordinator.AddImage{ID: imgID, Width: 64, Height: 64, Bytes: pixels})
//	c.Send(coordinator.SetRootStackingContext{Root: root})
//
// # Architecture
//
// The library is organized as a pipeline of leaf packages, each owning one
// stage: fingerprint (identifiers), displaylist (scene data model),
// flatten (stacking-context walk), spatial (AABB tree), asset (resource
// scheduling), compiler (per-tile batch builder), frame (assembly), delta
// (update protocol), and coordinator (the single-threaded control loop
// tying them together). This package is the public entry point.
package compositor
