// Package surface provides the CPU rendering-target abstraction the raster
// renderer backend and the rendering cache's pooled backing tiles draw
// onto.
//
// Surface decouples drawing operations (Fill, Stroke, DrawImage) from how
// pixels actually get written, so renderer.RasterBackend and
// rendercache.RenderingCache share one drawing vocabulary over two
// different concerns: a single on-screen surface versus a pool of
// small cached tile surfaces. The only backend shipped is ImageSurface,
// rendering into an *image.RGBA via internal/raster's scanline filler;
// the optional capability interfaces (ClippableSurface, ResizableSurface,
// BlendableSurface, ...) and the name-based Registry exist so a caller
// can type-assert or register an alternate CPU backend without every
// call site needing to know which one is in play.
//
// # Usage
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.White)
//
//	path := surface.NewPath()
//	path.MoveTo(100, 100)
//	path.LineTo(200, 100)
//	path.LineTo(150, 200)
//	path.Close()
//
//	s.Fill(path, surface.FillStyle{
//	    Color: color.RGBA{255, 0, 0, 255},
//	    Rule:  surface.FillRuleNonZero,
//	})
//
//	img := s.Snapshot()
package surface
