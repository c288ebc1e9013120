package extract

import (
	"math"
	"strings"

	"github.com/gnemet/LayoutForge/internal/figma"
)

// ExtractCornerRadius returns [tl, tr, br, bl] and whether any corner is
// rounded.
func ExtractCornerRadius(n *figma.Node) ([4]int, bool) {
	if n.CornerRadius != nil && *n.CornerRadius > 0 {
		r := int(*n.CornerRadius)
		return [4]int{r, r, r, r}, true
	}
	if len(n.RectangleCornerRadii) == 4 {
		var out [4]int
		has := false
		for i, v := range n.RectangleCornerRadii {
			out[i] = int(v)
			if v > 0 {
				has = true
			}
		}
		return out, has
	}
	return [4]int{}, false
}

// ExtractBlur returns the first positive visible LAYER_BLUR radius on the
// node or, failing that, anywhere in its subtree.
func ExtractBlur(n *figma.Node) float64 {
	return extractBlur(n, 0, defaultMaxDepth)
}

func extractBlur(n *figma.Node, depth, maxDepth int) float64 {
	if n == nil || depth > maxDepth {
		return 0
	}
	for _, e := range n.Effects {
		if e.Type != "LAYER_BLUR" || (e.Visible != nil && !*e.Visible) {
			continue
		}
		if e.Radius != nil && *e.Radius > 0 {
			return *e.Radius
		}
	}
	for _, child := range n.Children {
		if b := extractBlur(child, depth+1, maxDepth); b > 0 {
			return b
		}
	}
	return 0
}

// ExtractOpacity returns the node opacity, else the first visible SOLID
// fill opacity, else 1.
func ExtractOpacity(n *figma.Node) float64 {
	if n.Opacity != nil {
		return *n.Opacity
	}
	for _, f := range n.Fills {
		if f.Type != "SOLID" || (f.Visible != nil && !*f.Visible) {
			continue
		}
		if f.Opacity != nil {
			return *f.Opacity
		}
		break
	}
	return 1
}

// ExtractRotation truncates the node rotation to whole degrees.
func ExtractRotation(n *figma.Node) int {
	if n.Rotation == nil {
		return 0
	}
	return int(*n.Rotation)
}

// NormalizeFontWeight buckets a weight into one of the three tiers
// (lowest, middle, highest). An invalid weight maps to the middle tier.
func NormalizeFontWeight(w figma.Number, tiers []int) int {
	if len(tiers) != 3 {
		tiers = []int{300, 400, 700}
	}
	if !w.Valid || math.IsNaN(w.Value) {
		return tiers[1]
	}
	switch {
	case w.Value <= 350:
		return tiers[0]
	case w.Value <= 550:
		return tiers[1]
	default:
		return tiers[2]
	}
}

// NormalizeFontFamily lowercases a family name and reduces it to
// [a-z0-9_]: "Open Sans-Bold" -> "open_sans_bold".
func NormalizeFontFamily(family string) string {
	s := strings.ToLower(strings.TrimSpace(family))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
