package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractZIndex(t *testing.T) {
	assert.Equal(t, 7, ExtractZIndex("foo z-index 7 bar"))
	assert.Equal(t, 0, ExtractZIndex("no tag here"))
	assert.Equal(t, 0, ExtractZIndex("z-index"))
	assert.Equal(t, 12, ExtractZIndex("card z-index12"))
}

func TestCountSentences(t *testing.T) {
	assert.Equal(t, 0, CountSentences(""))
	assert.Equal(t, 1, CountSentences("Hello world"))
	assert.Equal(t, 2, CountSentences("Hello. World!"))
	assert.Equal(t, 3, CountSentences("Why? Because. Yes!!"))
	assert.Equal(t, 0, CountSentences(" ... "))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords("  "))
	assert.Equal(t, 3, CountWords("one  two\nthree"))
}

func TestFigureBaseName(t *testing.T) {
	tests := []struct {
		in, base, index string
	}{
		{"figure (logoRfs_2) z-index 3", "logoRfs", "2"},
		{"figure (arrow) z-index 1", "arrow", ""},
		{"star_10 z-index 1", "star", "10"},
		{"plain", "plain", ""},
	}
	for _, tt := range tests {
		base, index := figureBaseName(tt.in)
		assert.Equal(t, tt.base, base, tt.in)
		assert.Equal(t, tt.index, index, tt.in)
	}
}
