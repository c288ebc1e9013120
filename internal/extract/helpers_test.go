package extract

import (
	"github.com/gnemet/LayoutForge/internal/figma"
)

func box(x, y, w, h float64) *figma.Rect {
	return &figma.Rect{X: x, Y: y, Width: w, Height: h}
}

func textNode(id, name, chars string, b *figma.Rect) *figma.Node {
	return &figma.Node{ID: id, Name: name, Type: "TEXT", AbsoluteBoundingBox: b, Characters: figma.String(chars)}
}

func rectNode(id, name string, b *figma.Rect) *figma.Node {
	return &figma.Node{ID: id, Name: name, Type: "RECTANGLE", AbsoluteBoundingBox: b}
}

func solid(r, g, b float64) figma.Paint {
	return figma.Paint{Type: "SOLID", Color: &figma.RGBA{R: r, G: g, B: b, A: figma.Float(1)}}
}

// slideDoc wraps frame children into document > page > frame.
func slideDoc(pageName, frameName string, children ...*figma.Node) *figma.Node {
	frame := &figma.Node{
		ID:                  "1:1",
		Name:                frameName,
		Type:                "FRAME",
		AbsoluteBoundingBox: box(0, 0, 1200, 675),
		Children:            children,
	}
	page := &figma.Node{ID: "0:1", Name: pageName, Type: "CANVAS", Children: []*figma.Node{frame}}
	return &figma.Node{ID: "0:0", Name: "Document", Type: "DOCUMENT", Children: []*figma.Node{page}}
}

func newTestEngine(f FilterConfig) *Engine {
	return New(MustDefaultTables(), f, nil)
}
