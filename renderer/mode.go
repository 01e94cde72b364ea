package renderer

// PipelineMode selects which of the raster back-end's two threshold sets
// spec.md §4.6 applies: draft mode trades fidelity for speed during an
// interactive drag, normal mode is used for a settled frame. Spec.md names
// the thresholds ("draft-mode-dependent threshold") without naming a mode
// type; grounded on the teacher's PipelineMode/RasterizerMode
// enum-with-String() idiom (pipeline_mode.go, rasterizer_mode.go).
type PipelineMode int

const (
	// NormalMode is the default: tighter curve-flattening tolerance and
	// smaller skip-thresholds, for a settled frame.
	NormalMode PipelineMode = iota

	// DraftMode loosens both, for a frame rendered while the user is
	// actively manipulating the canvas (e.g. mid-drag).
	DraftMode
)

// String returns the mode's name.
func (m PipelineMode) String() string {
	switch m {
	case NormalMode:
		return "normal"
	case DraftMode:
		return "draft"
	default:
		return "unknown"
	}
}
