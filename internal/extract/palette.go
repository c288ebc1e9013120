package extract

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gnemet/LayoutForge/internal/figma"
)

// PaletteEntry is one TEXT swatch under a slideColors color group.
type PaletteEntry struct {
	Color         string `json:"color,omitempty"`
	ColorVariable string `json:"color_variable,omitempty"`
	FontFamily    string `json:"fontFamily,omitempty"`
	FigureName    string `json:"figureName,omitempty"`
}

// PaletteConfig is block type -> color hex -> entries.
type PaletteConfig map[string]map[string][]PaletteEntry

// sortedColors returns the color group keys of one block type, sorted.
func (p PaletteConfig) sortedColors(blockType string) []string {
	groups := p[blockType]
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// first returns the first entry of the lowest color group of blockType.
func (p PaletteConfig) first(blockType string) (PaletteEntry, bool) {
	for _, hex := range p.sortedColors(blockType) {
		if entries := p[blockType][hex]; len(entries) > 0 {
			return entries[0], true
		}
	}
	return PaletteEntry{}, false
}

// ResolvePalette reads the slideColors child of a slide frame. Without one
// it returns an empty config and an empty color list.
func ResolvePalette(frame *figma.Node) (PaletteConfig, []string) {
	cfg := PaletteConfig{}
	colors := []string{}
	if frame == nil {
		return cfg, colors
	}

	var palette *figma.Node
	for _, child := range frame.Children {
		if child != nil && child.Name == PaletteNodeName {
			palette = child
			break
		}
	}
	if palette == nil {
		return cfg, colors
	}

	seen := make(map[string]bool)
	for _, group := range palette.Children {
		if group == nil {
			continue
		}
		blockType := strings.TrimSpace(group.Name)
		for _, colorGroup := range group.Children {
			if colorGroup == nil {
				continue
			}
			hex := strings.ToLower(strings.TrimSpace(colorGroup.Name))
			if hex != "" && !seen[hex] {
				seen[hex] = true
				colors = append(colors, hex)
			}
			for _, swatch := range colorGroup.Children {
				if swatch == nil || swatch.Type != "TEXT" {
					continue
				}
				var entry PaletteEntry
				entry.Color, entry.ColorVariable = ExtractColor(swatch)
				if swatch.Style != nil {
					entry.FontFamily = NormalizeFontFamily(swatch.Style.FontFamily)
				}
				if blockType == TypeFigure {
					entry.FigureName = strings.TrimSpace(swatch.Name)
				}
				if entry == (PaletteEntry{}) {
					continue
				}
				if cfg[blockType] == nil {
					cfg[blockType] = make(map[string][]PaletteEntry)
				}
				cfg[blockType][hex] = append(cfg[blockType][hex], entry)
			}
		}
	}
	sort.Strings(colors)
	return cfg, colors
}

type figureRef struct {
	base   string
	index  string
	zIndex int
	hasZ   bool
}

func figureRefs(blocks []*Block) []figureRef {
	var refs []figureRef
	for _, b := range blocks {
		if b.SQLType != TypeFigure {
			continue
		}
		base, index := figureBaseName(b.Name)
		refs = append(refs, figureRef{
			base:   base,
			index:  index,
			zIndex: ExtractZIndex(b.Name),
			hasZ:   HasZIndex(b.Name),
		})
	}
	return refs
}

// ResolveFigureNames replaces the bare indices of figure palette entries
// with the base names of the figure blocks they refer to. An entry that
// matches nothing falls back to the first figure block on the slide.
func ResolveFigureNames(cfg PaletteConfig, blocks []*Block) {
	groups, ok := cfg[TypeFigure]
	if !ok {
		return
	}
	refs := figureRefs(blocks)
	for hex, entries := range groups {
		for i := range entries {
			if entries[i].FigureName == "" {
				continue
			}
			entries[i].FigureName = resolveFigureName(entries[i].FigureName, refs)
		}
		groups[hex] = entries
	}
}

func resolveFigureName(index string, refs []figureRef) string {
	for _, r := range refs {
		if r.index != "" && r.index == index {
			return r.base
		}
	}
	if n, err := strconv.Atoi(index); err == nil {
		for _, r := range refs {
			if r.hasZ && r.zIndex == n {
				return r.base
			}
		}
	}
	if len(refs) > 0 {
		return refs[0].base
	}
	return index
}
