// Package extract turns a Figma document tree into slide layout records:
// it finds slide frames, classifies their blocks, resolves the hidden
// slideColors palette and serializes the result for SQL insertion.
package extract

import (
	"github.com/gnemet/LayoutForge/internal/figma"
)

// Block types (the sql_type enumeration).
const (
	TypeText        = "text"
	TypeSlideTitle  = "slideTitle"
	TypeBlockTitle  = "blockTitle"
	TypeSubTitle    = "subTitle"
	TypeNumber      = "number"
	TypeEmail       = "email"
	TypeDate        = "date"
	TypeName        = "name"
	TypePercentage  = "percentage"
	TypeImage       = "image"
	TypeInfographik = "infographik"
	TypeTable       = "table"
	TypeFigure      = "figure"
	TypeIcon        = "icon"
	TypeBackground  = "background"
	TypeWatermark   = "watermark"
	TypeChart       = "chart"
)

var knownBlockTypes = map[string]bool{
	TypeText: true, TypeSlideTitle: true, TypeBlockTitle: true, TypeSubTitle: true,
	TypeNumber: true, TypeEmail: true, TypeDate: true, TypeName: true,
	TypePercentage: true, TypeImage: true, TypeInfographik: true, TypeTable: true,
	TypeFigure: true, TypeIcon: true, TypeBackground: true, TypeWatermark: true,
	TypeChart: true,
}

// textTypes carry text content and typography.
var textTypes = map[string]bool{
	TypeText: true, TypeSlideTitle: true, TypeBlockTitle: true, TypeSubTitle: true,
	TypeNumber: true, TypeEmail: true, TypeDate: true, TypeName: true,
	TypePercentage: true,
}

// IsTextType reports whether blocks of this type carry text content.
func IsTextType(t string) bool { return textTypes[t] }

// Mode selects the filter predicate applied to slides and blocks.
type Mode string

const (
	ModeAll            Mode = "ALL"
	ModeSpecificSlides Mode = "SPECIFIC_SLIDES"
	ModeSpecificBlocks Mode = "SPECIFIC_BLOCKS"
	ModeByType         Mode = "BY_TYPE"
)

// FilterConfig is immutable for one extraction run.
type FilterConfig struct {
	Mode             Mode            `json:"mode"`
	TargetSlides     map[int]bool    `json:"-"`
	TargetBlockTypes map[string]bool `json:"-"`
	TargetContainers map[string]bool `json:"-"`
	RequireZIndex    bool            `json:"-"`
	MinArea          float64         `json:"-"`
	ExcludeHidden    bool            `json:"-"`
	ReadyToDevMarker string          `json:"-"`
}

// DefaultFilter is mode ALL with z-index required and hidden nodes excluded.
func DefaultFilter() FilterConfig {
	return FilterConfig{
		Mode:          ModeAll,
		RequireZIndex: true,
		ExcludeHidden: true,
	}
}

// Dimensions are frame-relative, rounded.
type Dimensions struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	W        int `json:"w"`
	H        int `json:"h"`
	Rotation int `json:"rotation"`
}

// Styles is the per-block style bundle.
type Styles struct {
	TextVertical   string   `json:"textVertical"`
	TextHorizontal string   `json:"textHorizontal"`
	FontSize       int      `json:"fontSize"`
	Weight         int      `json:"weight"`
	TextTransform  string   `json:"textTransform"`
	ZIndex         int      `json:"zIndex"`
	BorderRadius   [4]int   `json:"borderRadius"`
	Opacity        float64  `json:"opacity"`
	Blur           *float64 `json:"blur,omitempty"` // non-text types only
}

// Block is one detected element of a slide. It is immutable after
// collection.
type Block struct {
	ID              string     `json:"id"`
	FigmaType       string     `json:"figma_type"`
	SQLType         string     `json:"sql_type"`
	Name            string     `json:"name"`
	Dimensions      Dimensions `json:"dimensions"`
	Styles          Styles     `json:"styles"`
	SlideNumber     *int       `json:"slide_number"`
	ParentContainer string     `json:"parent_container"`
	IsTarget        bool       `json:"is_target"`
	TextContent     *string    `json:"text_content"`
	Comment         *string    `json:"comment"`
	NodeColor       *string    `json:"node_color,omitempty"`
	ColorVariable   *string    `json:"color_variable,omitempty"`
}

// Get implements Record for constructed blocks.
func (b *Block) Get(key string) (any, bool) {
	switch key {
	case "name":
		return b.Name, true
	case "sql_type":
		return b.SQLType, true
	case "slide_number", "slideNumber":
		if b.SlideNumber == nil {
			return nil, false
		}
		return *b.SlideNumber, true
	case "parent_container":
		return b.ParentContainer, true
	case "id":
		return b.ID, true
	}
	return nil, false
}

// FrameSize is the configured slide canvas size.
type FrameSize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Slide is one detected slide frame with its blocks. Source is the frame
// node the slide was detected on; it is used by palette resolution only and
// never serialized.
type Slide struct {
	Number        *int
	ContainerName string
	FrameName     string
	SlideType     string
	Blocks        []*Block
	FrameID       string
	Dimensions    FrameSize

	Source *figma.Node
}
