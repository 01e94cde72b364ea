// Package stroke synthesizes a filled ribbon outline from a timed stream of
// pointer samples. It has no dependency on scene, command, or rendercache:
// a Stroke produced here satisfies those packages' Component interface
// structurally, without an import cycle.
package stroke

import (
	"math"

	"github.com/vecboard/vecboard"
)

// Sample is one timed pointer observation fed to a Builder.
type Sample struct {
	Pos    vecboard.Vec2
	Width  float64
	Color  vecboard.RGBA
	TimeMS float64
}

// sameEpsilon is the distance below which two positions are treated as
// duplicates by AddPoint's rejection step.
const sameEpsilon = 1e-9

func (s Sample) approxEqual(o Sample) bool {
	return math.Abs(s.Pos.X-o.Pos.X) < sameEpsilon && math.Abs(s.Pos.Y-o.Pos.Y) < sameEpsilon
}

func (s Sample) isValid() bool {
	return !math.IsNaN(s.Pos.X) && !math.IsNaN(s.Pos.Y) && !math.IsNaN(s.Width) && !math.IsNaN(s.TimeMS)
}
