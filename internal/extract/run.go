package extract

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/gnemet/LayoutForge/internal/figma"
)

// Source fetches a design document and its node comments.
// figma.Client and figma.FileSource implement it.
type Source interface {
	Fetch(ctx context.Context, ref string) (*figma.File, map[string]string, error)
}

// Result is the complete output of one extraction.
type Result struct {
	Metadata Metadata      `json:"metadata"`
	Slides   []SlideRecord `json:"slides"`
}

// Metadata describes the run that produced a Result.
type Metadata struct {
	FileID                    string            `json:"file_id"`
	FigmaConfig               *Tables           `json:"figma_config"`
	ExtractionSummary         ExtractionSummary `json:"extraction_summary"`
	FilterConfig              FilterSummary     `json:"filter_config"`
	SQLGeneratorCompatibility SQLCompatibility  `json:"sql_generator_compatibility"`
	Error                     string            `json:"error,omitempty"`
}

// ExtractionSummary counts what was extracted.
type ExtractionSummary struct {
	TotalSlides       int               `json:"total_slides"`
	TotalBlocks       int               `json:"total_blocks"`
	SlideTypes        map[string]int    `json:"slide_types"`
	BlockTypes        map[string]int    `json:"block_types"`
	SlideDistribution map[string]string `json:"slide_distribution"`
}

// FilterSummary is the filter configuration with its sets as sorted lists.
type FilterSummary struct {
	Mode             Mode     `json:"mode"`
	TargetSlides     []int    `json:"target_slides"`
	TargetBlockTypes []string `json:"target_block_types"`
	TargetContainers []string `json:"target_containers"`
}

// SQLCompatibility lists the enumerations downstream SQL generation accepts.
type SQLCompatibility struct {
	ValidBlockTypes  []string `json:"valid_block_types"`
	ValidFontWeights []int    `json:"valid_font_weights"`
	SlideLayoutTypes []string `json:"slide_layout_types"`
}

// Run fetches ref from src and extracts it. A fetch failure does not
// return an error: it is reported in Metadata.Error with no slides.
func (e *Engine) Run(ctx context.Context, src Source, fileID, ref string) *Result {
	file, comments, err := src.Fetch(ctx, ref)
	if err == nil && file == nil {
		err = fmt.Errorf("source returned no document for %s", ref)
	}
	if err != nil {
		e.log.Printf("extract: fetching %s: %v", ref, err)
		res := e.newResult(fileID)
		res.Metadata.Error = err.Error()
		return res
	}
	return e.Extract(fileID, &file.Document, comments)
}

// Extract runs the whole pipeline over an in-memory document. The output
// is a deterministic function of the document, the comments and the
// engine configuration.
func (e *Engine) Extract(fileID string, root *figma.Node, comments map[string]string) *Result {
	res := e.newResult(fileID)
	for _, s := range e.ExtractSlides(root, comments) {
		cfg, colors := ResolvePalette(s.Source)
		ResolveFigureNames(cfg, s.Blocks)
		res.Slides = append(res.Slides, SerializeSlide(s, cfg, colors, e.tables))
	}
	res.Metadata.ExtractionSummary = summarize(res.Slides)
	e.log.Printf("extract: %s: %d slides, %d blocks", fileID,
		res.Metadata.ExtractionSummary.TotalSlides, res.Metadata.ExtractionSummary.TotalBlocks)
	return res
}

func (e *Engine) newResult(fileID string) *Result {
	return &Result{
		Metadata: Metadata{
			FileID:            fileID,
			FigmaConfig:       e.tables,
			ExtractionSummary: summarize(nil),
			FilterConfig:      summarizeFilter(e.filter),
			SQLGeneratorCompatibility: SQLCompatibility{
				ValidBlockTypes:  e.tables.ValidBlockTypes,
				ValidFontWeights: e.tables.ValidFontWeights,
				SlideLayoutTypes: e.tables.SlideLayoutTypes,
			},
		},
		Slides: []SlideRecord{},
	}
}

func summarize(slides []SlideRecord) ExtractionSummary {
	sum := ExtractionSummary{
		SlideTypes:        map[string]int{},
		BlockTypes:        map[string]int{},
		SlideDistribution: map[string]string{},
	}
	for _, s := range slides {
		sum.TotalSlides++
		sum.TotalBlocks += len(s.Blocks)
		sum.SlideTypes[s.SlideType]++
		for _, b := range s.Blocks {
			sum.BlockTypes[b.SQLType]++
		}
		if s.SlideNumber != nil {
			sum.SlideDistribution[strconv.Itoa(*s.SlideNumber)] = s.ContainerName
		}
	}
	return sum
}

func summarizeFilter(f FilterConfig) FilterSummary {
	out := FilterSummary{
		Mode:             f.Mode,
		TargetSlides:     []int{},
		TargetBlockTypes: sortedKeys(f.TargetBlockTypes),
		TargetContainers: sortedKeys(f.TargetContainers),
	}
	for n, ok := range f.TargetSlides {
		if ok {
			out.TargetSlides = append(out.TargetSlides, n)
		}
	}
	sort.Ints(out.TargetSlides)
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := []string{}
	for k, ok := range set {
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
