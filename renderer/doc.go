// Package renderer implements spec.md §4.6's Abstract Renderer contract:
// the Renderer interface every back-end (raster, vector) satisfies, a
// named-backend registry for selecting one, object-scoped path batching,
// and the Viewport (§4.8) that maps between canvas and screen space for
// both the rendering cache and pointer events.
package renderer
