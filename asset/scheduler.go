package asset

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/scenelayer/compositor/fingerprint"
	"github.com/scenelayer/compositor/fontctx"
	"github.com/scenelayer/compositor/internal/wpool"
	"github.com/scenelayer/compositor/texturecache"
)

// BlurInflationFactor is the fixed multiplier applied to a glyph's
// bounding box when it is rasterized with blur, carried from the original
// implementation's BLUR_INFLATION_FACTOR constant (spec §4.3, §9).
const BlurInflationFactor = 3.0

// ImageSource resolves a registered image template's raw bytes for
// synchronous insertion into the texture cache.
type ImageSource interface {
	ImageBytes(id fingerprint.ImageID) (w, h int, bytes []byte, ok bool)
}

// RasterSource produces a procedurally rasterized mask (rounded corner,
// box-shadow corner, border corner) for a RasterKey.
type RasterSource interface {
	Rasterize(key fingerprint.RasterKey) (w, h int, bytes []byte, ok bool)
}

// GlyphRasterJob is one outstanding glyph rasterization request. Workers
// never touch the texture cache directly (spec §5 "Concurrency
// contract"): they write the result back onto the job object, and the
// scheduler drains results into the cache single-threaded once the pool
// scope closes.
type GlyphRasterJob struct {
	Key    fingerprint.GlyphKey
	Result fontctx.GlyphRaster
	Err    error
}

// Scheduler ensures every resource a set of visible tiles need is present
// in the texture cache before compilation runs.
type Scheduler struct {
	Cache   texturecache.Cache
	Images  ImageSource
	Rasters RasterSource
	Pool    *wpool.WorkerPool
	Logger  *slog.Logger

	// contexts holds one fontctx.Context per pool worker, provisioned once
	// at startup via InitWorkers (spec §5, §9 "Global state").
	contexts []fontctx.Context
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// InitWorkers fans out one factory call per worker and parks each
// goroutine until every worker has entered the barrier, so each worker
// thread owns exactly one Context for the lifetime of the pool (spec §5,
// §9).
func (s *Scheduler) InitWorkers(factory fontctx.Factory) error {
	n := s.Pool.Workers()
	s.contexts = make([]fontctx.Context, n)

	released := make(chan struct{})
	errs := make([]error, n)
	var ready sync.WaitGroup
	ready.Add(n)

	work := make([]func(), n)
	for i := range n {
		i := i
		work[i] = func() {
			ctx, err := factory()
			errs[i] = err
			s.contexts[i] = ctx
			ready.Done()
			<-released // park until every worker has created its context
		}
	}
	go s.Pool.ExecuteAll(work)
	ready.Wait()
	close(released)

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("asset: worker font context init: %w", err)
		}
	}
	return nil
}

// Run ensures every resource named in rl is present in the cache. Images
// and procedural rasters are inserted synchronously; glyphs are
// rasterized across the worker pool and drained single-threaded.
func (s *Scheduler) Run(rl ResourceList) error {
	for _, id := range rl.Images {
		if s.Cache.Exists(id) {
			continue
		}
		w, h, bytes, ok := s.Images.ImageBytes(id)
		if !ok {
			// Missing image template at compile time is a programmer-error
			// assertion (spec §7a): the scheduler's job is to populate it
			// before the compiler runs.
			return fmt.Errorf("asset: missing image template %v", id)
		}
		if err := s.Cache.Insert(id, texturecache.BlitOp{Width: w, Height: h, Bytes: bytes}); err != nil {
			return fmt.Errorf("asset: insert image %v: %w", id, err)
		}
	}

	for _, key := range rl.Rasters {
		id := key.ImageID()
		if s.Cache.Exists(id) {
			continue
		}
		w, h, bytes, ok := s.Rasters.Rasterize(key)
		if !ok {
			return fmt.Errorf("asset: missing mask for raster %+v", key)
		}
		if err := s.Cache.Insert(id, texturecache.BlitOp{Width: w, Height: h, Bytes: bytes}); err != nil {
			return fmt.Errorf("asset: insert raster %+v: %w", key, err)
		}
	}

	return s.runGlyphs(rl.Glyphs)
}

func (s *Scheduler) runGlyphs(glyphs []fingerprint.GlyphKey) error {
	var missing []fingerprint.GlyphKey
	for _, g := range glyphs {
		id := g.ImageID()
		if !s.Cache.Exists(id) {
			missing = append(missing, g)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	jobs := make([]*GlyphRasterJob, len(missing))
	work := make([]func(), len(missing))
	for i, g := range missing {
		job := &GlyphRasterJob{Key: g}
		jobs[i] = job
		workerIdx := i % max(1, len(s.contexts))
		work[i] = func() {
			ctx := s.contexts[workerIdx]
			if ctx == nil {
				job.Err = fmt.Errorf("asset: worker %d has no font context", workerIdx)
				return
			}
			raster, err := ctx.RasterizeGlyph(job.Key.Font, job.Key.Size, job.Key.Blur, job.Key.Glyph)
			job.Result, job.Err = raster, err
		}
	}
	s.Pool.ExecuteAll(work)

	// Drain single-threaded: workers never touch the texture cache
	// (spec §5 "Concurrency contract").
	for _, job := range jobs {
		if job.Err != nil {
			return fmt.Errorf("asset: missing glyph raster %+v: %w", job.Key, job.Err)
		}
		id := job.Key.ImageID()
		r := job.Result
		if job.Key.Blur > 0 {
			inflate := int(float64(job.Key.Blur) * BlurInflationFactor)
			if err := s.Cache.Insert(id, texturecache.BlurOp{
				Width: r.Width + inflate, Height: r.Height + inflate,
				Bytes: r.Bytes, BlurRadius: float64(job.Key.Blur),
			}); err != nil {
				return fmt.Errorf("asset: insert blurred glyph %+v: %w", job.Key, err)
			}
			continue
		}
		if err := s.Cache.Insert(id, texturecache.BlitOp{Width: r.Width, Height: r.Height, Bytes: r.Bytes}); err != nil {
			return fmt.Errorf("asset: insert glyph %+v: %w", job.Key, err)
		}
	}
	return nil
}
