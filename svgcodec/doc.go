// Package svgcodec converts between an SVG document and an in-memory
// scene.EditorImage, per spec.md §4.7: Load walks a parsed document's DOM
// depth-first, mapping each element to a scene.Component; Write drives
// renderer's vector back-end to stream a document back out. A third file,
// component_codec.go, registers the per-kind JSON encode/decode pair
// command.AddElementCommand needs to serialize an arbitrary component into
// undo/redo history, independent of the full-document SVG text path.
//
// Grounded on encoding/xml for both directions: no third-party XML/SVG
// library appears anywhere in the example pack, and encoding/xml's decoder
// has no script execution or external-entity expansion to worry about,
// which is most of what spec.md §4.7's sandboxing requirement actually
// needs from the parser itself.
package svgcodec
