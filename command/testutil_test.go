package command

import (
	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/scene"
)

func newEditor() *scene.EditorImage {
	return scene.NewEditorImage(vecboard.NewRect2XYWH(0, 0, 500, 500))
}

func backgroundAt(x, y, w, h float64) scene.BackgroundComponent {
	return scene.NewSolidBackground(vecboard.NewRect2XYWH(x, y, w, h), vecboard.RGBA{A: 1})
}
