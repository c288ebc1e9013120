package extract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/LayoutForge/internal/figma"
)

func heroDoc() *figma.Node {
	return slideDoc("Page 1", "hero z-index 0",
		textNode("2:1", "slideTitle z-index 1", "Hello. World!", box(100, 50, 800, 100)),
	)
}

func TestExtractEndToEnd(t *testing.T) {
	e := newTestEngine(DefaultFilter())
	res := e.Extract("file123", heroDoc(), nil)

	require.Len(t, res.Slides, 1)
	s := res.Slides[0]
	require.NotNil(t, s.SlideNumber)
	assert.Equal(t, 1, *s.SlideNumber)
	assert.Equal(t, "title", s.SlideType)
	assert.Equal(t, "title", s.FolderName)
	assert.Equal(t, 2, s.Sentences)
	assert.Equal(t, "1:1", s.FrameID)
	assert.Equal(t, FrameSize{W: 1200, H: 675}, s.Dimensions)

	require.Len(t, s.Blocks, 1)
	b := s.Blocks[0]
	assert.Equal(t, TypeSlideTitle, b.SQLType)
	require.NotNil(t, b.TextContent)
	assert.Equal(t, "Hello. World!", *b.TextContent)
	assert.Equal(t, 2, b.Words)
	assert.Equal(t, Dimensions{X: 100, Y: 50, W: 800, H: 100}, b.Dimensions)
	assert.Equal(t, 1, b.Styles.ZIndex)
	assert.Equal(t, 48, b.Styles.FontSize)
	assert.Equal(t, 700, b.Styles.Weight)
	assert.Nil(t, b.Styles.Blur)

	sum := res.Metadata.ExtractionSummary
	assert.Equal(t, 1, sum.TotalSlides)
	assert.Equal(t, 1, sum.TotalBlocks)
	assert.Equal(t, map[string]int{"title": 1}, sum.SlideTypes)
	assert.Equal(t, map[string]int{TypeSlideTitle: 1}, sum.BlockTypes)
	assert.Equal(t, map[string]string{"1": "Page 1"}, sum.SlideDistribution)
	assert.Equal(t, "file123", res.Metadata.FileID)
	assert.Empty(t, res.Metadata.Error)
}

func TestExtractSpecificSlidesExcludesUnlistedNumbers(t *testing.T) {
	f := DefaultFilter()
	f.Mode = ModeSpecificSlides
	f.TargetSlides = map[int]bool{2: true}

	res := newTestEngine(f).Extract("f", heroDoc(), nil)
	assert.Empty(t, res.Slides)
	assert.Equal(t, []int{2}, res.Metadata.FilterConfig.TargetSlides)
}

func TestExtractSpecificBlocks(t *testing.T) {
	doc := slideDoc("hero", "hero z-index 0",
		textNode("2:1", "slideTitle z-index 1", "Title", box(0, 0, 100, 20)),
		textNode("2:2", "body text z-index 2", "Body", box(0, 40, 100, 20)),
	)
	f := DefaultFilter()
	f.Mode = ModeSpecificBlocks
	f.TargetBlockTypes = map[string]bool{TypeSlideTitle: true}

	res := newTestEngine(f).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	require.Len(t, res.Slides[0].Blocks, 1)
	assert.Equal(t, "2:1", res.Slides[0].Blocks[0].ID)
}

func TestExtractByTypeDropsEmptySlides(t *testing.T) {
	f := DefaultFilter()
	f.Mode = ModeByType
	f.TargetContainers = map[string]bool{"2cols": true}

	res := newTestEngine(f).Extract("f", heroDoc(), nil)
	assert.Empty(t, res.Slides)
}

func TestExtractKeepsEmptySlidesInModeAll(t *testing.T) {
	doc := slideDoc("hero", "hero z-index 0")
	res := newTestEngine(DefaultFilter()).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	assert.Equal(t, 0, res.Slides[0].BlockCount)
	assert.Equal(t, 1, res.Slides[0].Sentences)
}

func TestExtractUnmappedContainerPolicy(t *testing.T) {
	tables := MustDefaultTables()
	tables.UnmappedContainer = UnmappedNull

	res := New(tables, DefaultFilter(), nil).Extract("f", heroDoc(), nil)
	require.Len(t, res.Slides, 1)
	assert.Nil(t, res.Slides[0].SlideNumber)
	assert.Equal(t, "classic", res.Slides[0].SlideType)
	assert.Equal(t, "other", res.Slides[0].FolderName)
	assert.Nil(t, res.Slides[0].Blocks[0].SlideNumber)
}

func TestExtractFrameNamePrecedence(t *testing.T) {
	tables := MustDefaultTables()
	tables.SlideTypePrecedence = PrecedenceFrameName
	doc := slideDoc("hero", "quarterly chart z-index 0",
		textNode("2:1", "text z-index 1", "x", box(0, 0, 10, 10)))

	res := New(tables, DefaultFilter(), nil).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	assert.Equal(t, "chart", res.Slides[0].SlideType)
	require.NotNil(t, res.Slides[0].SlideNumber)
	assert.Equal(t, 1, *res.Slides[0].SlideNumber)
}

func TestExtractSkipsFramesOfOtherSizes(t *testing.T) {
	doc := slideDoc("hero", "hero z-index 0")
	doc.Children[0].Children[0].AbsoluteBoundingBox = box(0, 0, 1920, 1080)

	res := newTestEngine(DefaultFilter()).Extract("f", doc, nil)
	assert.Empty(t, res.Slides)
}

func TestExtractFullBleedImages(t *testing.T) {
	full := box(0, 0, 1200, 675)
	doc := slideDoc("hero", "hero z-index 0",
		rectNode("3:1", "image z-index 1", full),
		rectNode("3:2", "image precompiled foo z-index 1", full),
		rectNode("3:3", "background z-index 0", full),
	)

	res := newTestEngine(DefaultFilter()).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	blocks := res.Slides[0].Blocks
	require.Len(t, blocks, 2)

	assert.Equal(t, "3:2", blocks[0].ID)
	assert.Equal(t, TypeImage, blocks[0].SQLType)
	require.NotNil(t, blocks[0].PrecompiledImageInfo)
	assert.Equal(t, "foo", blocks[0].PrecompiledImageInfo.Name)
	require.NotNil(t, blocks[0].Styles.Blur)
	assert.Equal(t, 0.0, *blocks[0].Styles.Blur)

	assert.Equal(t, "3:3", blocks[1].ID)
	assert.Equal(t, TypeBackground, blocks[1].SQLType)
}

func TestExtractHiddenNodesAndRequiredZIndex(t *testing.T) {
	hidden := textNode("2:2", "text z-index 2", "hidden", box(0, 0, 10, 10))
	hidden.Visible = figma.Bool(false)
	grp := &figma.Node{ID: "2:3", Name: "Group 1", Type: "GROUP", AbsoluteBoundingBox: box(0, 0, 50, 50),
		Children: []*figma.Node{textNode("2:4", "text z-index 3", "nested", box(0, 0, 10, 10))}}
	doc := slideDoc("hero", "hero z-index 0",
		hidden,
		grp,
		textNode("2:5", "untagged", "x", box(0, 0, 10, 10)),
	)

	res := newTestEngine(DefaultFilter()).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	assert.Empty(t, res.Slides[0].Blocks, "untagged group prunes its subtree, hidden node is excluded")

	f := DefaultFilter()
	f.RequireZIndex = false
	f.ExcludeHidden = false
	res = newTestEngine(f).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	ids := []string{}
	for _, b := range res.Slides[0].Blocks {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"2:2", "2:4"}, ids)
}

func TestExtractReadyToDevMarker(t *testing.T) {
	f := DefaultFilter()
	f.ReadyToDevMarker = "READY"

	doc := slideDoc("hero", "hero z-index 0 ready",
		textNode("2:1", "slideTitle z-index 1 ready", "Done.", box(0, 0, 100, 20)),
		textNode("2:2", "text z-index 2", "Draft.", box(0, 30, 100, 20)),
	)
	res := newTestEngine(f).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	require.Len(t, res.Slides[0].Blocks, 1)
	assert.Equal(t, "2:1", res.Slides[0].Blocks[0].ID)

	res = newTestEngine(f).Extract("f", heroDoc(), nil)
	assert.Empty(t, res.Slides, "frames without the marker are not slides")
}

func TestExtractAttachesComments(t *testing.T) {
	res := newTestEngine(DefaultFilter()).Extract("f", heroDoc(), map[string]string{"2:1": "make it bold"})
	require.Len(t, res.Slides, 1)
	require.NotNil(t, res.Slides[0].Blocks[0].Comment)
	assert.Equal(t, "make it bold", *res.Slides[0].Blocks[0].Comment)
}

func TestExtractDepthLimit(t *testing.T) {
	tables := MustDefaultTables()
	tables.MaxDepth = 3
	card := &figma.Node{ID: "2:1", Name: "card z-index 2", Type: "FRAME", AbsoluteBoundingBox: box(10, 10, 300, 200),
		Children: []*figma.Node{textNode("2:2", "text z-index 3", "deep", box(20, 20, 100, 20))}}
	doc := slideDoc("hero", "hero z-index 0", card)

	res := New(tables, DefaultFilter(), nil).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	require.Len(t, res.Slides[0].Blocks, 1)
	assert.Equal(t, "2:1", res.Slides[0].Blocks[0].ID)
}

func TestExtractIsIdempotent(t *testing.T) {
	doc := paletteDoc()
	e := newTestEngine(DefaultFilter())

	first, err := json.Marshal(e.Extract("f", doc, nil))
	require.NoError(t, err)
	second, err := json.Marshal(e.Extract("f", doc, nil))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

type failingSource struct{ err error }

func (s failingSource) Fetch(context.Context, string) (*figma.File, map[string]string, error) {
	return nil, nil, s.err
}

type memorySource struct{ file *figma.File }

func (s memorySource) Fetch(context.Context, string) (*figma.File, map[string]string, error) {
	return s.file, map[string]string{}, nil
}

func TestRunReportsFetchErrors(t *testing.T) {
	res := newTestEngine(DefaultFilter()).Run(context.Background(), failingSource{errors.New("boom")}, "abc", "abc")
	assert.Equal(t, "boom", res.Metadata.Error)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"slides":[]`)
}

func TestRunExtractsFetchedDocument(t *testing.T) {
	src := memorySource{file: &figma.File{Name: "deck", Document: *heroDoc()}}
	res := newTestEngine(DefaultFilter()).Run(context.Background(), src, "abc", "abc")
	assert.Empty(t, res.Metadata.Error)
	assert.Len(t, res.Slides, 1)
}

func TestRunReportsMissingDocument(t *testing.T) {
	res := newTestEngine(DefaultFilter()).Run(context.Background(), memorySource{}, "abc", "abc")
	assert.Contains(t, res.Metadata.Error, "no document")
	assert.Empty(t, res.Slides)
}

func TestExtractFontWeightFallbacks(t *testing.T) {
	styled := func(id string, w figma.Number) *figma.Node {
		n := textNode(id, "slideTitle z-index 1", "Title.", box(0, 0, 100, 20))
		n.Style = &figma.TextStyle{FontWeight: w}
		return n
	}
	doc := slideDoc("hero", "hero z-index 0",
		styled("2:1", figma.Number{}),
		styled("2:2", figma.Number{Present: true}),
		styled("2:3", figma.Number{Value: 300, Valid: true, Present: true}),
	)

	res := newTestEngine(DefaultFilter()).Extract("f", doc, nil)
	require.Len(t, res.Slides, 1)
	weights := map[string]int{}
	for _, b := range res.Slides[0].Blocks {
		weights[b.ID] = b.Styles.Weight
	}
	assert.Equal(t, map[string]int{"2:1": 700, "2:2": 400, "2:3": 300}, weights,
		"absent weight keeps the type default, an unparseable one is the middle tier")
}
