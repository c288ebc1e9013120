package database

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/LayoutForge/internal/extract"
	"github.com/gnemet/LayoutForge/internal/figma"
)

func sampleResult() *extract.Result {
	title := &figma.Node{
		ID: "2:1", Name: "slideTitle z-index 1", Type: "TEXT",
		AbsoluteBoundingBox: &figma.Rect{X: 10, Y: 10, Width: 500, Height: 60},
		Characters:          figma.String("Quarterly results. Up and to the right."),
	}
	frame := &figma.Node{
		ID: "1:1", Name: "hero z-index 0", Type: "FRAME",
		AbsoluteBoundingBox: &figma.Rect{Width: 1200, Height: 675},
		Children:            []*figma.Node{title},
	}
	page := &figma.Node{ID: "0:1", Name: "hero", Type: "CANVAS", Children: []*figma.Node{frame}}
	e := extract.New(extract.MustDefaultTables(), extract.DefaultFilter(), nil)
	return e.Extract("deck", page, map[string]string{"2:1": "keep short"})
}

func TestLayoutFromRecord(t *testing.T) {
	res := sampleResult()
	require.Len(t, res.Slides, 1)

	l, err := layoutFromRecord("deck", res.Slides[0])
	require.NoError(t, err)
	assert.Equal(t, "deck", l.FileID)
	assert.Equal(t, "1:1", l.FrameID)
	assert.True(t, l.SlideNumber.Valid)
	assert.Equal(t, int64(1), l.SlideNumber.Int64)
	assert.Equal(t, "title", l.SlideType)
	assert.Equal(t, 2, l.Sentences)
	assert.JSONEq(t, `{}`, string(l.SlideConfig))
	assert.Equal(t, []string{}, l.PaletteColors)
}

func TestBlockFromRecord(t *testing.T) {
	res := sampleResult()
	require.Len(t, res.Slides[0].Blocks, 1)

	b, err := blockFromRecord(res.Slides[0].Blocks[0])
	require.NoError(t, err)
	assert.Equal(t, "2:1", b.NodeID)
	assert.Equal(t, extract.TypeSlideTitle, b.SQLType)
	assert.Equal(t, []int64{0, 0, 0, 0}, b.BorderRadius)
	assert.Equal(t, 1, b.ZIndex)
	assert.Equal(t, 7, b.Words)
	assert.Equal(t, "keep short", b.Comment.String)
	assert.True(t, b.TextContent.Valid)
	assert.False(t, b.Color.Valid)
	assert.Equal(t, []string{}, b.AllColors)
	assert.Contains(t, string(b.Styles), `"zIndex":1`)
}

// TestSaveExtraction runs against a real database when
// LAYOUTFORGE_TEST_DB holds a connection string.
func TestSaveExtraction(t *testing.T) {
	dsn := os.Getenv("LAYOUTFORGE_TEST_DB")
	if dsn == "" {
		t.Skip("LAYOUTFORGE_TEST_DB not set")
	}
	db, err := NewConnection(dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, db))

	res := sampleResult()
	for i := 0; i < 2; i++ {
		n, err := SaveExtraction(ctx, db, "test-deck", res)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	layouts, err := GetLayoutsByFile(db, "test-deck")
	require.NoError(t, err)
	require.Len(t, layouts, 1, "saving twice replaces the previous rows")

	blocks, err := GetBlocksByLayout(db, layouts[0].ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "2:1", blocks[0].NodeID)
	assert.Equal(t, []int64{0, 0, 0, 0}, blocks[0].BorderRadius)
}
