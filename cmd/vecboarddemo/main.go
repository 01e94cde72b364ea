// Command vecboarddemo exercises the vecboard whiteboard engine end to
// end: it builds a small document through the undo/redo command layer,
// exports it to SVG, and loads the export back to confirm it round-trips.
package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/command"
	"github.com/vecboard/vecboard/scene"
	"github.com/vecboard/vecboard/stroke"
	"github.com/vecboard/vecboard/svgcodec"
)

func main() {
	var (
		width  = flag.Int("width", 800, "document width")
		height = flag.Int("height", 600, "document height")
		output = flag.String("output", "demo.svg", "output SVG path")
	)
	flag.Parse()

	region := vecboard.NewRect2XYWH(0, 0, float64(*width), float64(*height))
	img := scene.NewEditorImage(region)
	history := command.NewUndoRedoHistory(img)

	background := scene.NewGridBackground(region, vecboard.RGB(1, 1, 1), vecboard.RGB(0.85, 0.85, 0.9), 32)
	mustPush(history, command.NewAddElementCommand(background, true))

	strokeComponent := scene.NewStrokeComponent(drawWave(*width, *height))
	mustPush(history, command.NewAddElementCommand(strokeComponent, false))

	star := scene.NewStrokeComponent(drawStar(float64(*width)*0.75, float64(*height)*0.3, 80, 35))
	starCmd := command.NewAddElementCommand(star, false)
	mustPush(history, starCmd)

	label := scene.NewTextComponent("vecboard", vecboard.V2(40, 50),
		vecboard.TextStyle{Size: 32, Family: "sans-serif", RenderingStyle: vecboard.DefaultRenderingStyle()})
	mustPush(history, command.NewAddElementCommand(label, false))

	// Undo the most recent command (the label), then redo it, demonstrating
	// the history stack round trips a command without disturbing the rest
	// of the document.
	if ok, err := history.Undo(); err != nil || !ok {
		log.Fatalf("undo label: ok=%v err=%v", ok, err)
	}
	if ok, err := history.Redo(); err != nil || !ok {
		log.Fatalf("redo label: ok=%v err=%v", ok, err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	defer f.Close()

	if err := svgcodec.Write(img, f, svgcodec.WriteOptions{}); err != nil {
		log.Fatalf("write svg: %v", err)
	}
	log.Printf("wrote %s (%dx%d, %d undo entries)\n", *output, *width, *height, history.UndoLen())

	verifyRoundTrip(*output)
}

// drawWave feeds a sequence of samples through stroke.Builder the way a
// live pointer stream would, producing a smoothed ribbon stroke rather
// than a raw polygon.
func drawWave(width, height int) stroke.Stroke {
	b := stroke.NewBuilder(stroke.Sample{Pos: vecboard.V2(20, float64(height)/2), Width: 6, Color: vecboard.RGB(0.2, 0.4, 0.9)}, 0.25, 4)
	steps := 40
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := 20 + t*(float64(width)-40)
		y := float64(height)/2 + 60*math.Sin(t*2*math.Pi)
		if err := b.AddPoint(stroke.Sample{Pos: vecboard.V2(x, y), Width: 6, Color: vecboard.RGB(0.2, 0.4, 0.9)}); err != nil {
			log.Printf("drawWave: AddPoint: %v", err)
		}
	}
	return b.Build()
}

// drawStar builds a five-pointed (ten-vertex) star polygon directly, the way the SVG
// codec's loader builds a Stroke from an already-finished `<path>`
// outline rather than a live pointer stream.
func drawStar(cx, cy, outerR, innerR float64) stroke.Stroke {
	const points = 5
	loop := make([]vecboard.Vec2, 0, points*2)
	for i := 0; i < points*2; i++ {
		angle := float64(i) * math.Pi / points
		r := outerR
		if i%2 == 1 {
			r = innerR
		}
		loop = append(loop, vecboard.V2(cx+r*math.Cos(angle), cy+r*math.Sin(angle)))
	}
	bbox := vecboard.NewRect2XYWH(cx-outerR, cy-outerR, outerR*2, outerR*2)
	style := vecboard.DefaultRenderingStyle().WithFill(vecboard.RGB(1, 0.8, 0))
	return stroke.FromPolygons([][]vecboard.Vec2{loop}, bbox, style)
}

func verifyRoundTrip(path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("reopen %s: %v", path, err)
	}
	defer f.Close()

	loaded, err := svgcodec.Load(f, svgcodec.LoadOptions{Sandboxed: true})
	if err != nil {
		log.Fatalf("load %s back: %v", path, err)
	}
	region := loaded.ExportRect()
	log.Printf("round trip ok: reloaded document is %vx%v\n", region.Width(), region.Height())
}

func mustPush(h *command.UndoRedoHistory, cmd *command.AddElementCommand) {
	if err := h.Push(cmd, true); err != nil {
		log.Fatalf("push command: %v", err)
	}
}
