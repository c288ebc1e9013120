package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnemet/LayoutForge/internal/figma"
)

func TestExtractColorSolid(t *testing.T) {
	fill := solid(1, 0, 0)
	n := &figma.Node{Fills: []figma.Paint{fill}}
	color, variable := ExtractColor(n)
	assert.Equal(t, "#ff0000", color)
	assert.Empty(t, variable)

	fill.Opacity = figma.Float(0.5)
	color, _ = ExtractColor(&figma.Node{Fills: []figma.Paint{fill}})
	assert.Equal(t, "#ff000080", color)
}

func TestExtractColorSkipsHiddenAndImageFills(t *testing.T) {
	hidden := solid(1, 1, 1)
	hidden.Visible = figma.Bool(false)
	bound := solid(0, 0, 1)
	bound.BoundVariables = &figma.BoundVariables{Color: &figma.VariableAlias{ID: "VariableID:1:2"}}

	n := &figma.Node{Fills: []figma.Paint{{Type: "IMAGE"}, hidden, bound}}
	color, variable := ExtractColor(n)
	assert.Equal(t, "#0000ff", color)
	assert.Equal(t, "VariableID:1:2", variable)
}

func TestExtractColorGradients(t *testing.T) {
	stops := []figma.ColorStop{
		{Position: 0, Color: figma.RGBA{R: 1, A: figma.Float(1)}},
		{Position: 1, Color: figma.RGBA{B: 1, A: figma.Float(1)}},
	}
	tests := []struct {
		paintType string
		handles   []figma.Vector
		want      string
	}{
		{"GRADIENT_LINEAR", []figma.Vector{{X: 0.5, Y: 0}, {X: 0.5, Y: 1}}, "linear-gradient(180deg, #ff0000 0%, #0000ff 100%)"},
		{"GRADIENT_LINEAR", []figma.Vector{{X: 0, Y: 0.5}, {X: 1, Y: 0.5}}, "linear-gradient(90deg, #ff0000 0%, #0000ff 100%)"},
		{"GRADIENT_RADIAL", nil, "radial-gradient(circle, #ff0000 0%, #0000ff 100%)"},
		{"GRADIENT_ANGULAR", nil, "conic-gradient(#ff0000 0%, #0000ff 100%)"},
		{"GRADIENT_DIAMOND", nil, "radial-gradient(ellipse, #ff0000 0%, #0000ff 100%)"},
	}
	for _, tt := range tests {
		n := &figma.Node{Fills: []figma.Paint{{Type: tt.paintType, GradientHandlePositions: tt.handles, GradientStops: stops}}}
		color, _ := ExtractColor(n)
		assert.Equal(t, tt.want, color)
	}
}

func TestExtractColorDirectString(t *testing.T) {
	n := &figma.Node{Color: json.RawMessage(`"#ABCDEF"`)}
	color, _ := ExtractColor(n)
	assert.Equal(t, "#abcdef", color)

	color, variable := ExtractColor(&figma.Node{Color: json.RawMessage(`{"r":1}`)})
	assert.Empty(t, color)
	assert.Empty(t, variable)
}
