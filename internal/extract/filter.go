package extract

import (
	"math"
	"strings"

	"github.com/gnemet/LayoutForge/internal/figma"
)

// Record is the narrow accessor shared by raw nodes and built blocks, so
// the filters never care which representation they are looking at.
type Record interface {
	Get(key string) (any, bool)
}

func recordString(r Record, key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ShouldInclude applies the visibility, marker, z-index and filter-mode
// gates. A field the record does not carry satisfies its mode predicate.
func (f *FilterConfig) ShouldInclude(r Record) bool {
	if f.ExcludeHidden {
		if v, ok := r.Get("visible"); ok {
			if visible, isBool := v.(bool); isBool && !visible {
				return false
			}
		}
	}

	name, _ := recordString(r, "name")
	if f.ReadyToDevMarker != "" &&
		!strings.Contains(strings.ToLower(name), strings.ToLower(f.ReadyToDevMarker)) {
		return false
	}
	if f.RequireZIndex && !HasZIndex(name) {
		return false
	}

	switch f.Mode {
	case ModeSpecificSlides:
		for _, key := range []string{"slide_number", "slideNumber"} {
			if v, ok := r.Get(key); ok {
				n, isInt := v.(int)
				return isInt && f.TargetSlides[n]
			}
		}
	case ModeSpecificBlocks:
		if t, ok := recordString(r, "sql_type"); ok {
			return f.TargetBlockTypes[t]
		}
	case ModeByType:
		if c, ok := recordString(r, "parent_container"); ok {
			return f.TargetContainers[c]
		}
	}
	return true
}

// isTargetFrame reports whether a node is a slide candidate.
func (f *FilterConfig) isTargetFrame(n *figma.Node, t *Tables) bool {
	box := n.AbsoluteBoundingBox
	if box == nil {
		return false
	}
	if f.ReadyToDevMarker != "" &&
		!strings.Contains(strings.ToLower(n.Name), strings.ToLower(f.ReadyToDevMarker)) {
		return false
	}
	if f.RequireZIndex && !HasZIndex(n.Name) {
		return false
	}
	if math.Abs(box.Width-t.TargetWidth) >= 1 || math.Abs(box.Height-t.TargetHeight) >= 1 {
		return false
	}
	return box.Width*box.Height >= f.MinArea
}
