package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/LayoutForge/internal/config"
	"github.com/gnemet/LayoutForge/internal/extract"
)

func TestParseInts(t *testing.T) {
	nums, err := parseInts(" 1, 2,,10 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 10}, nums)

	_, err = parseInts("1,x")
	assert.Error(t, err)
}

func TestParseSet(t *testing.T) {
	assert.Equal(t, map[string]bool{"slideTitle": true, "image": true}, parseSet("slideTitle, image,"))
	assert.Empty(t, parseSet(""))
}

func TestBuildFilter(t *testing.T) {
	cfg = &config.Config{Extraction: config.ExtractionConfig{Mode: "ALL", RequireZIndex: true, ExcludeHidden: true}}
	cmd := newExtractCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--mode", "specific_slides", "--slides", "2,3", "--include-hidden"}))

	var opts extractOptions
	opts.mode, _ = cmd.Flags().GetString("mode")
	opts.slides, _ = cmd.Flags().GetString("slides")
	opts.includeHidden, _ = cmd.Flags().GetBool("include-hidden")

	f, err := buildFilter(cmd, &opts)
	require.NoError(t, err)
	assert.Equal(t, extract.ModeSpecificSlides, f.Mode)
	assert.Equal(t, map[int]bool{2: true, 3: true}, f.TargetSlides)
	assert.False(t, f.ExcludeHidden)
	assert.True(t, f.RequireZIndex)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, writeJSON(path, map[string]int{"slides": 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1, got["slides"])
}
