package extract

import (
	"fmt"
	"math"
	"strings"

	"github.com/gnemet/LayoutForge/internal/figma"
)

var gradientTypes = map[string]bool{
	"GRADIENT_LINEAR":  true,
	"GRADIENT_RADIAL":  true,
	"GRADIENT_ANGULAR": true,
	"GRADIENT_DIAMOND": true,
}

// ExtractColor returns the node's color (hex or CSS gradient) and the
// bound color variable id. Either may be empty.
//
// The first visible SOLID or gradient fill wins; without one, a direct
// string color on the node is used.
func ExtractColor(n *figma.Node) (color, variable string) {
	for i := range n.Fills {
		fill := &n.Fills[i]
		if fill.Visible != nil && !*fill.Visible {
			continue
		}
		switch {
		case fill.Type == "SOLID":
			if fill.Color == nil {
				continue
			}
			return solidHex(fill), fillVariable(fill)
		case gradientTypes[fill.Type]:
			return gradientCSS(fill), fillVariable(fill)
		}
	}
	if c, ok := n.DirectColor(); ok {
		return strings.ToLower(c), ""
	}
	return "", ""
}

func fillVariable(fill *figma.Paint) string {
	if fill.BoundVariables != nil && fill.BoundVariables.Color != nil && fill.BoundVariables.Color.ID != "" {
		return fill.BoundVariables.Color.ID
	}
	return fill.FillStyleID
}

func solidHex(fill *figma.Paint) string {
	alpha := 1.0
	switch {
	case fill.Opacity != nil:
		alpha = *fill.Opacity
	case fill.Color.A != nil:
		alpha = *fill.Color.A
	}
	return rgbaHex(*fill.Color, alpha)
}

// rgbaHex formats #rrggbb, or #rrggbbaa when alpha < 1.
func rgbaHex(c figma.RGBA, alpha float64) string {
	hex := fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
	if alpha < 1 {
		hex += fmt.Sprintf("%02x", channel(alpha))
	}
	return hex
}

func channel(v float64) int {
	n := int(math.Round(v * 255))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

func stopColor(c figma.RGBA) string {
	alpha := 1.0
	if c.A != nil {
		alpha = *c.A
	}
	return rgbaHex(c, alpha)
}

func gradientStops(fill *figma.Paint) string {
	parts := make([]string, 0, len(fill.GradientStops))
	for _, s := range fill.GradientStops {
		parts = append(parts, fmt.Sprintf("%s %d%%", stopColor(s.Color), int(math.Round(s.Position*100))))
	}
	return strings.Join(parts, ", ")
}

// gradientCSS renders a fill as the equivalent CSS gradient.
func gradientCSS(fill *figma.Paint) string {
	stops := gradientStops(fill)
	switch fill.Type {
	case "GRADIENT_LINEAR":
		return fmt.Sprintf("linear-gradient(%ddeg, %s)", linearAngle(fill.GradientHandlePositions), stops)
	case "GRADIENT_RADIAL":
		return fmt.Sprintf("radial-gradient(circle, %s)", stops)
	case "GRADIENT_ANGULAR":
		return fmt.Sprintf("conic-gradient(%s)", stops)
	default:
		return fmt.Sprintf("radial-gradient(ellipse, %s)", stops)
	}
}

// linearAngle converts the first two handle points to a CSS angle in
// [0, 360). CSS measures clockwise from "to top", hence the +90.
func linearAngle(handles []figma.Vector) int {
	if len(handles) < 2 {
		return 180
	}
	dx := handles[1].X - handles[0].X
	dy := handles[1].Y - handles[0].Y
	deg := math.Atan2(dy, dx)*180/math.Pi + 90
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return int(math.Round(deg)) % 360
}
