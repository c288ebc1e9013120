package extract

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Unmapped-container policies.
const (
	UnmappedNull         = "null"
	UnmappedDefaultToOne = "default_to_one"
)

// Slide-type precedence policies.
const (
	PrecedenceNumber    = "number"
	PrecedenceFrameName = "frame_name"
)

// TypeDefaults are the per-block-type style fallbacks.
type TypeDefaults struct {
	Type           string `yaml:"type" mapstructure:"type" json:"type"`
	FontSize       int    `yaml:"font_size" mapstructure:"font_size" json:"font_size"`
	Weight         int    `yaml:"weight" mapstructure:"weight" json:"weight"`
	TextTransform  string `yaml:"text_transform" mapstructure:"text_transform" json:"text_transform"`
	ZIndex         int    `yaml:"z_index" mapstructure:"z_index" json:"z_index"`
	TextVertical   string `yaml:"text_vertical" mapstructure:"text_vertical" json:"text_vertical,omitempty"`
	TextHorizontal string `yaml:"text_horizontal" mapstructure:"text_horizontal" json:"text_horizontal,omitempty"`
}

// Tables is the injected product configuration the engine is parameterized
// over. Number-keyed maps use decimal string keys.
type Tables struct {
	TargetWidth         float64           `yaml:"target_width" mapstructure:"target_width" json:"TARGET_WIDTH"`
	TargetHeight        float64           `yaml:"target_height" mapstructure:"target_height" json:"TARGET_HEIGHT"`
	MaxDepth            int               `yaml:"max_depth" mapstructure:"max_depth" json:"MAX_DEPTH"`
	UnmappedContainer   string            `yaml:"on_unmapped_container" mapstructure:"on_unmapped_container" json:"ON_UNMAPPED_CONTAINER"`
	SlideTypePrecedence string            `yaml:"slide_type_precedence" mapstructure:"slide_type_precedence" json:"SLIDE_TYPE_PRECEDENCE"`
	DefaultSlideType    string            `yaml:"default_slide_type" mapstructure:"default_slide_type" json:"DEFAULT_SLIDE_TYPE"`
	DefaultFolder       string            `yaml:"default_folder" mapstructure:"default_folder" json:"DEFAULT_FOLDER"`
	ContainerNumbers    map[string]int    `yaml:"container_slide_numbers" mapstructure:"container_slide_numbers" json:"CONTAINER_SLIDE_NUMBERS"`
	SlideTypes          map[string]string `yaml:"slide_types" mapstructure:"slide_types" json:"SLIDE_TYPES"`
	SlideFolders        map[string]string `yaml:"slide_folders" mapstructure:"slide_folders" json:"SLIDE_FOLDERS"`
	SlideTypeKeywords   map[string]string `yaml:"slide_type_keywords" mapstructure:"slide_type_keywords" json:"SLIDE_TYPE_KEYWORDS"`
	NamePatterns        map[string]string `yaml:"name_patterns" mapstructure:"name_patterns" json:"-"`
	ValidFontWeights    []int             `yaml:"valid_font_weights" mapstructure:"valid_font_weights" json:"-"`
	ValidBlockTypes     []string          `yaml:"valid_block_types" mapstructure:"valid_block_types" json:"-"`
	SlideLayoutTypes    []string          `yaml:"slide_layout_types" mapstructure:"slide_layout_types" json:"-"`
	TypeDefaults        []TypeDefaults    `yaml:"type_defaults" mapstructure:"type_defaults" json:"-"`
}

// DefaultTables decodes the embedded default tables.
func DefaultTables() (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(defaultTablesYAML, &t); err != nil {
		return nil, fmt.Errorf("decoding default tables: %w", err)
	}
	return &t, nil
}

// MustDefaultTables is DefaultTables for static initialisation and tests.
func MustDefaultTables() *Tables {
	t, err := DefaultTables()
	if err != nil {
		panic(err)
	}
	return t
}

// Validate checks the policy enums and the minimum table invariants.
func (t *Tables) Validate() error {
	if t.TargetWidth <= 0 || t.TargetHeight <= 0 {
		return fmt.Errorf("target size must be positive, got %gx%g", t.TargetWidth, t.TargetHeight)
	}
	switch t.UnmappedContainer {
	case UnmappedNull, UnmappedDefaultToOne:
	default:
		return fmt.Errorf("unknown on_unmapped_container policy %q", t.UnmappedContainer)
	}
	switch t.SlideTypePrecedence {
	case PrecedenceNumber, PrecedenceFrameName:
	default:
		return fmt.Errorf("unknown slide_type_precedence %q", t.SlideTypePrecedence)
	}
	if len(t.ValidFontWeights) != 3 {
		return fmt.Errorf("valid_font_weights needs exactly three tiers, got %d", len(t.ValidFontWeights))
	}
	for _, bt := range t.ValidBlockTypes {
		if !knownBlockTypes[bt] {
			return fmt.Errorf("valid_block_types: %q is not a known block type", bt)
		}
	}
	for pattern, bt := range t.NamePatterns {
		if !knownBlockTypes[bt] {
			return fmt.Errorf("name_patterns[%q]: %q is not a known block type", pattern, bt)
		}
	}
	return nil
}

// SlideNumber maps a container name to a slide number. ok is false when the
// name is unmapped and the policy keeps it empty.
func (t *Tables) SlideNumber(container string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(container))
	for name, n := range t.ContainerNumbers {
		if strings.ToLower(strings.TrimSpace(name)) == key {
			return n, true
		}
	}
	if t.UnmappedContainer == UnmappedDefaultToOne {
		return 1, true
	}
	return 0, false
}

// SlideType maps a slide number to its layout type.
func (t *Tables) SlideType(number int) string {
	if v, ok := t.SlideTypes[strconv.Itoa(number)]; ok && v != "" {
		return v
	}
	return t.defaultSlideType()
}

// Folder maps a slide number to its output folder.
func (t *Tables) Folder(number *int) string {
	if number != nil {
		if v, ok := t.SlideFolders[strconv.Itoa(*number)]; ok && v != "" {
			return v
		}
	}
	if t.DefaultFolder == "" {
		return "other"
	}
	return t.DefaultFolder
}

func (t *Tables) defaultSlideType() string {
	if t.DefaultSlideType == "" {
		return "classic"
	}
	return t.DefaultSlideType
}

// Defaults returns the style defaults for a block type (zero value if none).
func (t *Tables) Defaults(blockType string) TypeDefaults {
	for _, d := range t.TypeDefaults {
		if d.Type == blockType {
			return d
		}
	}
	return TypeDefaults{Type: blockType}
}

func (t *Tables) validTypeSet() map[string]bool {
	set := make(map[string]bool, len(t.ValidBlockTypes)+1)
	for _, bt := range t.ValidBlockTypes {
		set[bt] = true
	}
	set[TypeText] = true
	return set
}
