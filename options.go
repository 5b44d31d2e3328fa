package compositor

import (
	"log/slog"

	"github.com/gogpu/gpucontext"

	"github.com/scenelayer/compositor/asset"
	"github.com/scenelayer/compositor/coordinator"
	"github.com/scenelayer/compositor/fontctx"
	"github.com/scenelayer/compositor/geom"
	"github.com/scenelayer/compositor/texturecache"
)

// Option configures a Compositor during construction.
//
// Example:
//
//	c, err := compositor.New(geom.Size{W: 800, H: 600}, sink,
//	    compositor.WithWorkers(4),
//	    compositor.WithCache(texturecache.NewMemCache(4096, 4096)))
type Option func(*coordinator.Config)

// WithWorkers overrides the worker pool size (spec §5 default 8).
func WithWorkers(n int) Option {
	return func(c *coordinator.Config) { c.Workers = n }
}

// WithSplitSize overrides the spatial index's split threshold (spec §4.2
// default 512).
func WithSplitSize(size float64) Option {
	return func(c *coordinator.Config) { c.SplitSize = size }
}

// WithCache supplies a texture cache implementation other than the
// in-memory default.
func WithCache(cache texturecache.Cache) Option {
	return func(c *coordinator.Config) { c.Cache = cache }
}

// WithRasterSource supplies a procedural raster producer other than the
// built-in analytic one.
func WithRasterSource(src asset.RasterSource) Option {
	return func(c *coordinator.Config) { c.RasterSource = src }
}

// WithFontFactory supplies the per-worker font context factory used for
// glyph rasterization (spec §5 "Global state").
func WithFontFactory(f fontctx.Factory) Option {
	return func(c *coordinator.Config) { c.FontFactory = f }
}

// WithLogger attaches a logger to the Compositor's coordinator, in
// addition to the package-level SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(c *coordinator.Config) { c.Logger = l }
}

// WithDevicePixelRatio overrides the default device pixel ratio (1) used
// for every frame.
func WithDevicePixelRatio(dpr float64) Option {
	return func(c *coordinator.Config) { c.DevicePixelRatio = dpr }
}

// WithDevice shares a GPU device handle with the default texture cache, so
// its render targets and uploads can eventually be realized against the
// host application's own device (gpucontext.DeviceProvider, the same
// handle render.DeviceHandle aliases in the gogpu ecosystem) instead of
// being held as plain bytes. Has no effect when combined with WithCache.
func WithDevice(provider gpucontext.DeviceProvider) Option {
	return func(c *coordinator.Config) { c.Device = provider }
}

// baseConfig builds a coordinator.Config from a viewport size and applies
// opts in order.
func baseConfig(viewport geom.Size, opts []Option) coordinator.Config {
	cfg := coordinator.Config{ViewportSize: viewport, Logger: Logger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
