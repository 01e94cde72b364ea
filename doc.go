// Package vecboard implements the math and path primitives shared by the
// whiteboard engine: 2D vectors, 3x3 affine matrices, axis-aligned
// rectangles, and parametric paths built from lines and quadratic/cubic
// Bezier curves.
//
// # Sub-packages
//
// Sub-packages build the rest of the engine on top of this foundation:
//
//   - stroke: online smoother that turns pointer samples into Bezier ribbons
//   - scene: spatial index over editable components
//   - command: reversible commands with undo/redo history
//   - rendercache: hierarchical tile cache with an LRU backing-surface pool
//   - renderer: abstract renderer contract, raster and vector back-ends
//   - svgcodec: sandboxed SVG loader and deterministic writer
//   - events: viewport/pointer event dispatch
//
// # Coordinate system
//
// Canvas space has the origin at the top-left, X increasing right, Y
// increasing down, matching SVG's coordinate system.
//
// vecboard produces no log output unless a host calls SetLogger.
package vecboard
