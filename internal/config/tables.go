package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/gnemet/LayoutForge/internal/extract"
)

// LoadTables returns the embedded extraction tables with the YAML file at
// path merged on top. Maps merge key by key; lists replace. An empty path
// returns the defaults. Viper lowercases map keys, which every lookup
// table already matches case-insensitively.
func LoadTables(path string) (*extract.Tables, error) {
	t, err := extract.DefaultTables()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return t, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading tables %s: %w", path, err)
	}

	// Decoding into a filled slice reuses its elements, so a list the file
	// sets starts empty.
	lists := map[string]func(){
		"type_defaults":      func() { t.TypeDefaults = nil },
		"valid_block_types":  func() { t.ValidBlockTypes = nil },
		"valid_font_weights": func() { t.ValidFontWeights = nil },
		"slide_layout_types": func() { t.SlideLayoutTypes = nil },
	}
	for key, reset := range lists {
		if v.IsSet(key) {
			reset()
		}
	}
	if err := v.Unmarshal(t); err != nil {
		return nil, fmt.Errorf("decoding tables %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("tables %s: %w", path, err)
	}
	return t, nil
}

// ApplyOverrides copies the canvas size from the application config onto
// the tables when it is set.
func (c *ExtractionConfig) ApplyOverrides(t *extract.Tables) {
	if c.TargetWidth > 0 {
		t.TargetWidth = c.TargetWidth
	}
	if c.TargetHeight > 0 {
		t.TargetHeight = c.TargetHeight
	}
}

// Filter builds the engine filter from the configured defaults.
func (c *ExtractionConfig) Filter() (extract.FilterConfig, error) {
	f := extract.DefaultFilter()
	if c.Mode != "" {
		m := extract.Mode(strings.ToUpper(c.Mode))
		switch m {
		case extract.ModeAll, extract.ModeSpecificSlides, extract.ModeSpecificBlocks, extract.ModeByType:
			f.Mode = m
		default:
			return f, fmt.Errorf("unknown extraction mode %q", c.Mode)
		}
	}
	f.RequireZIndex = c.RequireZIndex
	f.ExcludeHidden = c.ExcludeHidden
	f.MinArea = c.MinArea
	f.ReadyToDevMarker = c.ReadyToDevMarker
	return f, nil
}
