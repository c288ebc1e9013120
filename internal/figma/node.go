// Package figma holds the Figma document model consumed by the layout
// extractor, plus the REST client and local loaders that produce it.
package figma

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// File is a decoded Figma file response.
type File struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Document     Node   `json:"document"`
}

// Node mirrors a node of the Figma REST document tree. Every field is
// optional; pointers distinguish "absent" from zero values.
type Node struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Type                 string     `json:"type"` // TEXT, RECTANGLE, FRAME, GROUP, ...
	AbsoluteBoundingBox  *Rect      `json:"absoluteBoundingBox,omitempty"`
	Visible              *bool      `json:"visible,omitempty"` // nil = visible
	Children             []*Node    `json:"children,omitempty"`
	Style                *TextStyle `json:"style,omitempty"`
	Fills                []Paint    `json:"fills,omitempty"`
	Effects              []Effect   `json:"effects,omitempty"`
	CornerRadius         *float64   `json:"cornerRadius,omitempty"`
	RectangleCornerRadii []float64  `json:"rectangleCornerRadii,omitempty"`
	Characters           *string    `json:"characters,omitempty"`
	Rotation             *float64   `json:"rotation,omitempty"`
	Opacity              *float64   `json:"opacity,omitempty"`

	// Color is a non-standard direct color some exports carry on the node.
	// Only a JSON string value is honoured.
	Color json.RawMessage `json:"color,omitempty"`
}

// Rect is an absolute bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextStyle holds the typography keys the extractor reads.
type TextStyle struct {
	TextAlignVertical   string   `json:"textAlignVertical,omitempty"`
	TextAlignHorizontal string   `json:"textAlignHorizontal,omitempty"`
	FontSize            *float64 `json:"fontSize,omitempty"`
	FontWeight          Number   `json:"fontWeight,omitempty"`
	FontFamily          string   `json:"fontFamily,omitempty"`
}

// Paint is a fill entry.
type Paint struct {
	Type                    string          `json:"type"` // SOLID, GRADIENT_LINEAR, IMAGE, ...
	Visible                 *bool           `json:"visible,omitempty"`
	Color                   *RGBA           `json:"color,omitempty"`
	Opacity                 *float64        `json:"opacity,omitempty"`
	BoundVariables          *BoundVariables `json:"boundVariables,omitempty"`
	FillStyleID             string          `json:"fillStyleId,omitempty"`
	GradientHandlePositions []Vector        `json:"gradientHandlePositions,omitempty"`
	GradientStops           []ColorStop     `json:"gradientStops,omitempty"`
}

// RGBA is a color with Figma's 0-1 channel range.
type RGBA struct {
	R float64  `json:"r"`
	G float64  `json:"g"`
	B float64  `json:"b"`
	A *float64 `json:"a,omitempty"`
}

// BoundVariables links paint properties to design variables.
type BoundVariables struct {
	Color *VariableAlias `json:"color,omitempty"`
}

// VariableAlias references a variable by id.
type VariableAlias struct {
	ID string `json:"id"`
}

// Vector is a 2D point in normalized gradient space.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ColorStop is one stop of a gradient.
type ColorStop struct {
	Position float64 `json:"position"`
	Color    RGBA    `json:"color"`
}

// Effect is a visual effect entry.
type Effect struct {
	Type    string   `json:"type"` // DROP_SHADOW, LAYER_BLUR, ...
	Visible *bool    `json:"visible,omitempty"`
	Radius  *float64 `json:"radius,omitempty"`
}

// IsVisible reports the effective visibility (absent means visible).
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// ExplicitlyHidden reports whether the node carries visible=false.
func (n *Node) ExplicitlyHidden() bool {
	return n.Visible != nil && !*n.Visible
}

// DirectColor returns the node's string-typed color field, if any.
func (n *Node) DirectColor() (string, bool) {
	raw := bytes.TrimSpace(n.Color)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// Text returns the characters of a TEXT node ("" when absent).
func (n *Node) Text() string {
	if n.Characters == nil {
		return ""
	}
	return *n.Characters
}

// Get implements the record accessor used by the extraction filters.
// Raw nodes only expose name and visibility; derived fields are absent.
func (n *Node) Get(key string) (any, bool) {
	switch key {
	case "name":
		return n.Name, true
	case "visible":
		if n.Visible == nil {
			return nil, false
		}
		return *n.Visible, true
	case "id":
		return n.ID, true
	case "type":
		return n.Type, true
	}
	return nil, false
}

// Number is a numeric JSON value that tolerates strings and garbage.
// Valid is false when the value was absent, null or unparseable; Present
// tells the last two apart.
type Number struct {
	Value   float64
	Valid   bool
	Present bool
}

// UnmarshalJSON accepts numbers and numeric strings; anything else yields
// an invalid Number instead of failing the whole document.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	n.Present = true
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	n.Value, n.Valid = v, true
	return nil
}

// MarshalJSON writes null for invalid values.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Float returns a pointer to v, for building nodes in code.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
