package extract

import (
	"math"
	"sort"
	"strings"

	"github.com/gnemet/LayoutForge/internal/figma"
)

const (
	defaultMaxDepth = 256

	// PaletteNodeName is the hidden child of a slide frame holding the
	// palette, never a block itself.
	PaletteNodeName = "slideColors"
)

// Logger receives progress and diagnostic messages. *log.Logger satisfies
// it; a nil Logger means silent operation.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Engine extracts slides from design documents. It holds no per-run state
// and may be shared across goroutines.
type Engine struct {
	tables     *Tables
	filter     FilterConfig
	classifier *Classifier
	log        Logger
}

// New builds an engine over the given tables and filter.
func New(tables *Tables, filter FilterConfig, logger Logger) *Engine {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Engine{
		tables:     tables,
		filter:     filter,
		classifier: NewClassifier(tables),
		log:        logger,
	}
}

// Tables returns the tables the engine was built with.
func (e *Engine) Tables() *Tables { return e.tables }

// Filter returns the engine's filter configuration.
func (e *Engine) Filter() FilterConfig { return e.filter }

// Classify exposes the engine's classifier.
func (e *Engine) Classify(n *figma.Node) (string, string) { return e.classifier.Classify(n) }

func (e *Engine) maxDepth() int {
	if e.tables.MaxDepth > 0 {
		return e.tables.MaxDepth
	}
	return defaultMaxDepth
}

// walk carries the inputs of one extraction call.
type walk struct {
	*Engine
	comments map[string]string
}

// ExtractSlides finds every slide frame under root and collects its
// blocks. comments maps node ids to their first comment and may be nil.
func (e *Engine) ExtractSlides(root *figma.Node, comments map[string]string) []*Slide {
	if root == nil {
		return nil
	}
	w := &walk{Engine: e, comments: comments}
	return w.findSlides(root, "", 0)
}

func (w *walk) findSlides(n *figma.Node, parentName string, depth int) []*Slide {
	if depth > w.maxDepth() {
		w.log.Printf("extract: depth limit %d reached at node %s (%q), subtree skipped", w.maxDepth(), n.ID, n.Name)
		return nil
	}
	if w.filter.isTargetFrame(n, w.tables) {
		if s := w.buildSlide(n, parentName, depth); s != nil {
			return []*Slide{s}
		}
		return nil
	}
	var slides []*Slide
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		slides = append(slides, w.findSlides(child, n.Name, depth+1)...)
	}
	return slides
}

func (w *walk) buildSlide(frame *figma.Node, container string, depth int) *Slide {
	var number *int
	if n, ok := w.tables.SlideNumber(container); ok {
		number = &n
	}
	if w.filter.Mode == ModeSpecificSlides && (number == nil || !w.filter.TargetSlides[*number]) {
		return nil
	}

	origin := *frame.AbsoluteBoundingBox
	var blocks []*Block
	for _, child := range frame.Children {
		if child == nil || child.Name == PaletteNodeName {
			continue
		}
		blocks = append(blocks, w.collectBlocks(child, origin, number, container, depth+1)...)
	}

	slide := &Slide{
		Number:        number,
		ContainerName: container,
		FrameName:     frame.Name,
		SlideType:     w.slideType(frame.Name, number),
		Blocks:        blocks,
		FrameID:       frame.ID,
		Dimensions:    FrameSize{W: w.tables.TargetWidth, H: w.tables.TargetHeight},
		Source:        frame,
	}
	w.log.Printf("extract: slide %q in %q: %d blocks", frame.Name, container, len(blocks))
	if len(blocks) == 0 && w.filter.Mode != ModeAll {
		return nil
	}
	return slide
}

// slideType resolves the layout type. With frame_name precedence a keyword
// at the end of the frame name wins over the number table.
func (e *Engine) slideType(frameName string, number *int) string {
	if e.tables.SlideTypePrecedence == PrecedenceFrameName {
		if t := e.SlideTypeFromName(frameName); t != "" {
			return t
		}
	}
	if number == nil {
		return e.tables.defaultSlideType()
	}
	return e.tables.SlideType(*number)
}

// SlideTypeFromName matches the tail of a cleaned frame name against the
// slide_type_keywords table, longest keyword first. "" when nothing matches.
func (e *Engine) SlideTypeFromName(frameName string) string {
	name := cleanName(frameName)
	keywords := make([]string, 0, len(e.tables.SlideTypeKeywords))
	for k := range e.tables.SlideTypeKeywords {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})
	for _, k := range keywords {
		if k != "" && strings.HasSuffix(name, strings.ToLower(k)) {
			return e.tables.SlideTypeKeywords[k]
		}
	}
	return ""
}

func (w *walk) collectBlocks(n *figma.Node, origin figma.Rect, number *int, container string, depth int) []*Block {
	if n.AbsoluteBoundingBox == nil {
		return nil
	}
	if depth > w.maxDepth() {
		w.log.Printf("extract: depth limit %d reached at node %s (%q), subtree skipped", w.maxDepth(), n.ID, n.Name)
		return nil
	}
	if !w.filter.ShouldInclude(n) {
		return nil
	}

	var blocks []*Block
	if HasZIndex(n.Name) {
		if b := w.buildBlock(n, origin, number, container); b != nil && w.filter.ShouldInclude(b) {
			blocks = append(blocks, b)
		}
	}

	if w.filter.ExcludeHidden && n.ExplicitlyHidden() {
		return blocks
	}
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		blocks = append(blocks, w.collectBlocks(child, origin, number, container, depth+1)...)
	}
	return blocks
}

// buildBlock returns nil for full-bleed images, which duplicate the slide
// preview rather than describe a layout slot.
func (w *walk) buildBlock(n *figma.Node, origin figma.Rect, number *int, container string) *Block {
	figmaType, sqlType := w.classifier.Classify(n)
	box := n.AbsoluteBoundingBox
	dims := Dimensions{
		X:        round(box.X - origin.X),
		Y:        round(box.Y - origin.Y),
		W:        round(box.Width),
		H:        round(box.Height),
		Rotation: ExtractRotation(n),
	}
	if sqlType == TypeImage && w.isFullBleed(dims) &&
		!strings.Contains(strings.ToLower(n.Name), "precompiled") {
		w.log.Printf("extract: skipping full-bleed image %q", n.Name)
		return nil
	}

	b := &Block{
		ID:              n.ID,
		FigmaType:       figmaType,
		SQLType:         sqlType,
		Name:            n.Name,
		Dimensions:      dims,
		Styles:          w.buildStyles(n, sqlType),
		SlideNumber:     number,
		ParentContainer: container,
		IsTarget:        true,
	}
	if IsTextType(sqlType) && n.Type == "TEXT" && n.Characters != nil {
		text := *n.Characters
		b.TextContent = &text
	}
	if c, ok := w.comments[n.ID]; ok {
		b.Comment = &c
	}
	if color, variable := ExtractColor(n); color != "" || variable != "" {
		if color != "" {
			b.NodeColor = &color
		}
		if variable != "" {
			b.ColorVariable = &variable
		}
	}
	return b
}

func (w *walk) isFullBleed(d Dimensions) bool {
	return d.X == 0 && d.Y == 0 &&
		d.W == round(w.tables.TargetWidth) && d.H == round(w.tables.TargetHeight)
}

func (w *walk) buildStyles(n *figma.Node, sqlType string) Styles {
	def := w.tables.Defaults(sqlType)
	s := Styles{
		TextVertical:   firstNonEmpty(def.TextVertical, "top"),
		TextHorizontal: firstNonEmpty(def.TextHorizontal, "left"),
		FontSize:       def.FontSize,
		Weight:         def.Weight,
		TextTransform:  firstNonEmpty(def.TextTransform, "none"),
		ZIndex:         def.ZIndex,
		Opacity:        ExtractOpacity(n),
	}
	if st := n.Style; st != nil {
		if v := strings.ToLower(st.TextAlignVertical); v != "" {
			s.TextVertical = v
		}
		if h := strings.ToLower(st.TextAlignHorizontal); h != "" {
			s.TextHorizontal = h
		}
		if st.FontSize != nil && *st.FontSize > 0 {
			s.FontSize = round(*st.FontSize)
		}
		// an unparseable weight is the middle tier, not the type default
		if st.FontWeight.Valid || st.FontWeight.Present {
			s.Weight = NormalizeFontWeight(st.FontWeight, w.tables.ValidFontWeights)
		}
	}
	if s.Weight == 0 {
		s.Weight = NormalizeFontWeight(figma.Number{}, w.tables.ValidFontWeights)
	}
	if z := ExtractZIndex(n.Name); z != 0 {
		s.ZIndex = z
	}
	s.BorderRadius, _ = ExtractCornerRadius(n)
	if !IsTextType(sqlType) {
		blur := extractBlur(n, 0, w.maxDepth())
		s.Blur = &blur
	}
	return s
}

func round(v float64) int {
	return int(math.Round(v))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
