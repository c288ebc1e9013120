package extract

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// SlideRecord is the serialized form of one slide.
type SlideRecord struct {
	SlideNumber               *int          `json:"slide_number"`
	ContainerName             string        `json:"container_name"`
	FrameName                 string        `json:"frame_name"`
	SlideType                 string        `json:"slide_type"`
	Sentences                 int           `json:"sentences"`
	FrameID                   string        `json:"frame_id"`
	Dimensions                FrameSize     `json:"dimensions"`
	FolderName                string        `json:"folder_name"`
	BlockCount                int           `json:"block_count"`
	SlideConfig               PaletteConfig `json:"slideConfig"`
	PresentationPaletteColors []string      `json:"presentationPaletteColors"`
	Blocks                    []BlockRecord `json:"blocks"`
}

// FigureInfo describes a figure block by its base name and index.
type FigureInfo struct {
	Name       string `json:"name"`
	Index      string `json:"index,omitempty"`
	Color      string `json:"color,omitempty"`
	FontFamily string `json:"fontFamily,omitempty"`
}

// PrecompiledImageInfo marks images rendered ahead of time.
type PrecompiledImageInfo struct {
	Name string `json:"name"`
}

// BlockRecord is a block merged with its palette enrichment.
type BlockRecord struct {
	Block

	Color                string                `json:"color,omitempty"`
	FontFamily           string                `json:"fontFamily,omitempty"`
	AllColors            []string              `json:"all_colors,omitempty"`
	AllFonts             []string              `json:"all_fonts,omitempty"`
	Words                int                   `json:"words"`
	FigureInfo           *FigureInfo           `json:"figure_info,omitempty"`
	PrecompiledImageInfo *PrecompiledImageInfo `json:"precompiled_image_info,omitempty"`
}

const precompiledPrefix = "image precompiled"

// SerializeSlide builds the output record of a slide whose palette has
// already been resolved.
func SerializeSlide(s *Slide, cfg PaletteConfig, colors []string, t *Tables) SlideRecord {
	if cfg == nil {
		cfg = PaletteConfig{}
	}
	if colors == nil {
		colors = []string{}
	}
	rec := SlideRecord{
		SlideNumber:               s.Number,
		ContainerName:             s.ContainerName,
		FrameName:                 s.FrameName,
		SlideType:                 s.SlideType,
		Sentences:                 slideSentences(s.Blocks),
		FrameID:                   s.FrameID,
		Dimensions:                s.Dimensions,
		FolderName:                t.Folder(s.Number),
		BlockCount:                len(s.Blocks),
		SlideConfig:               cfg,
		PresentationPaletteColors: colors,
		Blocks:                    make([]BlockRecord, 0, len(s.Blocks)),
	}
	for _, b := range s.Blocks {
		rec.Blocks = append(rec.Blocks, serializeBlock(b, cfg))
	}
	return rec
}

// slideSentences counts the sentences of the longest text content on the
// slide, measured in characters, floored at 1.
func slideSentences(blocks []*Block) int {
	longest, longestLen := "", 0
	for _, b := range blocks {
		if b.TextContent == nil || !IsTextType(b.SQLType) {
			continue
		}
		if n := utf8.RuneCountInString(*b.TextContent); n > longestLen {
			longest, longestLen = *b.TextContent, n
		}
	}
	if n := CountSentences(longest); n > 0 {
		return n
	}
	return 1
}

func serializeBlock(b *Block, cfg PaletteConfig) BlockRecord {
	rec := BlockRecord{Block: *b}
	if b.NodeColor != nil {
		rec.Color = *b.NodeColor
	}
	if b.TextContent != nil {
		rec.Words = CountWords(*b.TextContent)
	}

	switch {
	case b.SQLType == TypeBackground:
		if e, ok := cfg.first(TypeBackground); ok {
			if e.Color != "" {
				rec.Color = e.Color
			}
			rec.FontFamily = e.FontFamily
		}

	case b.SQLType == TypeFigure:
		base, index := figureBaseName(b.Name)
		if b.NodeColor == nil {
			rec.AllColors, rec.AllFonts = aggregate(cfg, TypeFigure)
			if e, ok := matchFigure(cfg, base, index); ok {
				rec.Color, rec.FontFamily = e.Color, e.FontFamily
			}
			if rec.Color == "" && len(rec.AllColors) > 0 {
				rec.Color = rec.AllColors[0]
			}
			if rec.FontFamily == "" && len(rec.AllFonts) > 0 {
				rec.FontFamily = rec.AllFonts[0]
			}
		}
		rec.FigureInfo = &FigureInfo{Name: base, Index: index, Color: rec.Color, FontFamily: rec.FontFamily}

	case IsTextType(b.SQLType):
		if _, ok := cfg[b.SQLType]; ok {
			rec.AllColors, rec.AllFonts = aggregate(cfg, b.SQLType)
			if rec.Color == "" && len(rec.AllColors) > 0 {
				rec.Color = rec.AllColors[0]
			}
			if rec.FontFamily == "" && len(rec.AllFonts) > 0 {
				rec.FontFamily = rec.AllFonts[0]
			}
		}

	case b.SQLType == TypeImage:
		clean := strings.ToLower(strings.TrimSpace(b.Name))
		if strings.HasPrefix(clean, precompiledPrefix) {
			rest := strings.TrimSpace(cleanName(b.Name)[len(precompiledPrefix):])
			rec.PrecompiledImageInfo = &PrecompiledImageInfo{Name: rest}
		}
	}
	return rec
}

// matchFigure finds the palette entry whose figure name is the block's
// index or, once names are resolved, its base name.
func matchFigure(cfg PaletteConfig, base, index string) (PaletteEntry, bool) {
	for _, hex := range cfg.sortedColors(TypeFigure) {
		for _, e := range cfg[TypeFigure][hex] {
			if e.FigureName == "" {
				continue
			}
			if (index != "" && e.FigureName == index) || (base != "" && e.FigureName == base) {
				return e, true
			}
		}
	}
	return PaletteEntry{}, false
}

// aggregate collects the distinct colors and fonts under a block type,
// sorted.
func aggregate(cfg PaletteConfig, blockType string) (colors, fonts []string) {
	seenColor := make(map[string]bool)
	seenFont := make(map[string]bool)
	for _, hex := range cfg.sortedColors(blockType) {
		for _, e := range cfg[blockType][hex] {
			if e.Color != "" && !seenColor[e.Color] {
				seenColor[e.Color] = true
				colors = append(colors, e.Color)
			}
			if e.FontFamily != "" && !seenFont[e.FontFamily] {
				seenFont[e.FontFamily] = true
				fonts = append(fonts, e.FontFamily)
			}
		}
	}
	sort.Strings(colors)
	sort.Strings(fonts)
	return colors, fonts
}
