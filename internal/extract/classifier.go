package extract

import (
	"sort"
	"strings"

	"github.com/gnemet/LayoutForge/internal/figma"
)

type namePattern struct {
	pattern string
	sqlType string
}

// rule is one keyword group of the per-node-type heuristics. All of the
// "all" groups must match as well as one of the keywords.
type rule struct {
	label    string
	keywords []string
	all      [][]string
	sqlType  string
}

var (
	titleWords     = []string{"title", "heading", "headline"}
	subtitleWords  = []string{"subtitle", "sub_title", "sub-title", "subheading", "caption"}
	mainSlideWords = []string{"slide", "main"}
)

// textRules are tried in order. Title words come first, so "subtitle"
// without an explicit name table entry is a block title.
var textRules = []rule{
	{label: "text_title", keywords: titleWords, all: [][]string{mainSlideWords}, sqlType: TypeSlideTitle},
	{label: "text_title", keywords: titleWords, sqlType: TypeBlockTitle},
	{label: "text_subtitle", keywords: subtitleWords, sqlType: TypeSubTitle},
	{label: "text_number", keywords: []string{"number", "num", "digit", "count", "stat"}, sqlType: TypeNumber},
	{label: "text_email", keywords: []string{"email", "e-mail", "mail", "@"}, sqlType: TypeEmail},
	{label: "text_date", keywords: []string{"date", "year", "month", "day"}, sqlType: TypeDate},
	{label: "text_name", keywords: []string{"name", "author", "person", "speaker"}, sqlType: TypeName},
	{label: "text_percentage", keywords: []string{"percent", "%"}, sqlType: TypePercentage},
}

// Background comes before icon and image so "image_bottom background"
// resolves to background.
var rectangleRules = []rule{
	{label: "rectangle_background", keywords: []string{"background", "bg", "backdrop"}, sqlType: TypeBackground},
	{label: "rectangle_icon", keywords: []string{"icon", "ico", "logo"}, sqlType: TypeIcon},
	{label: "rectangle_image", keywords: []string{"image", "img", "photo", "picture", "pic"}, sqlType: TypeImage},
	{label: "rectangle_figure", sqlType: TypeFigure},
}

var containerRules = []rule{
	{label: "frame_table", keywords: []string{"table", "grid", "data", "chart", "graph", "diagram"}, sqlType: TypeTable},
	{label: "frame_infographik", keywords: []string{"infographic", "infographik", "infog"}, sqlType: TypeInfographik},
	{label: "frame_watermark", keywords: []string{"watermark"}, sqlType: TypeWatermark},
	{label: "frame_figure", sqlType: TypeFigure},
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func (r rule) matches(name string) bool {
	if len(r.keywords) > 0 && !containsAny(name, r.keywords) {
		return false
	}
	for _, group := range r.all {
		if !containsAny(name, group) {
			return false
		}
	}
	return true
}

// Classifier maps nodes to block types. It is immutable and safe for
// concurrent use.
type Classifier struct {
	patterns []namePattern
	valid    map[string]bool
}

// NewClassifier precomputes the explicit name table, longest pattern
// first so "block_title" is tried before "title".
func NewClassifier(t *Tables) *Classifier {
	c := &Classifier{valid: t.validTypeSet()}
	for p, st := range t.NamePatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		c.patterns = append(c.patterns, namePattern{pattern: p, sqlType: st})
	}
	sort.Slice(c.patterns, func(i, j int) bool {
		a, b := c.patterns[i], c.patterns[j]
		if len(a.pattern) != len(b.pattern) {
			return len(a.pattern) > len(b.pattern)
		}
		return a.pattern < b.pattern
	})
	return c
}

// Classify returns (figma_type label, sql_type). sql_type is always a
// member of the valid set; unresolved nodes are ("text", "text").
func (c *Classifier) Classify(n *figma.Node) (string, string) {
	name := cleanName(n.Name)

	for _, p := range c.patterns {
		if strings.Contains(name, p.pattern) && c.valid[p.sqlType] {
			return p.pattern, p.sqlType
		}
	}

	var rules []rule
	switch n.Type {
	case "TEXT":
		rules = textRules
	case "RECTANGLE":
		rules = rectangleRules
	case "FRAME", "GROUP":
		rules = containerRules
	}
	for _, r := range rules {
		if r.matches(name) && c.valid[r.sqlType] {
			return r.label, r.sqlType
		}
	}
	return TypeText, TypeText
}
