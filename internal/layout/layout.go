package layout

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
	"github.com/dshills/caretkit/internal/logging"
)

// Config configures the layout engine.
type Config struct {
	// Width is the viewport width in cells.
	Width int

	// AtomicWidth is the cell width of atomic inline nodes without a
	// width attribute.
	AtomicWidth int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() Config {
	return Config{Width: 80, AtomicWidth: 3}
}

// Glyph is a rendered cluster or atomic label at a cell position.
type Glyph struct {
	X, Y int
	Text string
	Node *html.Node
}

// Stop is a caret position with its cell coordinates, used for hit
// testing.
type Stop struct {
	Row       int
	X         float64
	Container *html.Node
	Offset    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.Component(l, "layout") }
}

// Engine lays out a tree and answers geometry queries. Engine is not safe
// for concurrent use.
type Engine struct {
	root   *html.Node
	config Config
	logger *zap.Logger

	valid     bool
	signature uint64
	ids       map[*html.Node]int

	rects  map[*html.Node][]geom.Rect
	carets map[*html.Node][]geom.Rect
	order  []*html.Node
	stops  []Stop
	glyphs []Glyph
	height int
	runs   int
}

// New creates an engine for the tree under root. A nil root panics.
func New(root *html.Node, cfg Config, opts ...Option) *Engine {
	if root == nil {
		panic("layout: engine requires a root")
	}
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.AtomicWidth <= 0 {
		cfg.AtomicWidth = def.AtomicWidth
	}
	e := &Engine{root: root, config: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetConfig replaces the configuration and invalidates the layout.
func (e *Engine) SetConfig(cfg Config) {
	if cfg.Width > 0 {
		e.config.Width = cfg.Width
	}
	if cfg.AtomicWidth > 0 {
		e.config.AtomicWidth = cfg.AtomicWidth
	}
	e.Invalidate()
}

// Invalidate forces a relayout on the next query.
func (e *Engine) Invalidate() {
	e.valid = false
}

// Runs returns how many times the layout has been computed.
func (e *Engine) Runs() int {
	return e.runs
}

// NodeRects implements geom.Provider.
func (e *Engine) NodeRects(n *html.Node) []geom.Rect {
	e.ensure()
	return append([]geom.Rect(nil), e.rects[n]...)
}

// RangeRects implements geom.Provider.
func (e *Engine) RangeRects(r dom.Range) []geom.Rect {
	e.ensure()
	c := r.StartContainer
	if c == nil {
		return nil
	}

	if dom.IsText(c) {
		start, ok := e.caretRect(c, r.StartOffset)
		if !ok {
			return nil
		}
		if r.Collapsed() {
			return []geom.Rect{start}
		}
		if end, ok := e.caretRect(r.EndContainer, r.EndOffset); ok && end.Top == start.Top {
			return []geom.Rect{{Left: start.Left, Top: start.Top, Right: end.Left, Bottom: start.Bottom}}
		}
		return nil
	}

	if !r.Collapsed() {
		if n := r.SelectedNode(); n != nil {
			return e.NodeRects(n)
		}
		return nil
	}
	if after := dom.ChildAt(c, r.StartOffset); after != nil {
		if rects := e.rects[after]; len(rects) > 0 {
			return []geom.Rect{rects[0].Collapse(true)}
		}
	}
	if before := dom.ChildAt(c, r.StartOffset-1); before != nil {
		if rect, ok := geom.Last(e.rects[before]); ok {
			return []geom.Rect{rect.Collapse(false)}
		}
	}
	if rects := e.rects[c]; len(rects) > 0 {
		return []geom.Rect{rects[0].Collapse(true)}
	}
	return nil
}

func (e *Engine) caretRect(n *html.Node, offset int) (geom.Rect, bool) {
	carets := e.carets[n]
	if offset < 0 || offset >= len(carets) {
		return geom.Rect{}, false
	}
	return carets[offset], true
}

// HitTest returns the caret position nearest to the point (x, y). Rows
// without caret positions resolve to the nearest row that has some.
func (e *Engine) HitTest(x, y float64) (*html.Node, int, bool) {
	e.ensure()
	if len(e.stops) == 0 {
		return nil, 0, false
	}
	row := int(math.Floor(y))
	bestRow, bestRowDist := -1, math.MaxInt
	for _, s := range e.stops {
		d := s.Row - row
		if d < 0 {
			d = -d
		}
		if d < bestRowDist {
			bestRow, bestRowDist = s.Row, d
		}
	}

	var best *Stop
	bestDist := math.Inf(1)
	for i := range e.stops {
		s := &e.stops[i]
		if s.Row != bestRow {
			continue
		}
		if d := math.Abs(s.X - x); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best.Container, best.Offset, true
}

// NodeAt returns the deepest element whose box contains (x, y), or root.
func (e *Engine) NodeAt(x, y float64) *html.Node {
	e.ensure()
	for i := len(e.order) - 1; i >= 0; i-- {
		n := e.order[i]
		for _, r := range e.rects[n] {
			if x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom {
				return n
			}
		}
	}
	return e.root
}

// Glyphs returns the rendered cells in layout order.
func (e *Engine) Glyphs() []Glyph {
	e.ensure()
	return e.glyphs
}

// Height returns the number of rows used by the layout.
func (e *Engine) Height() int {
	e.ensure()
	return e.height
}

func (e *Engine) ensure() {
	if e.valid {
		if sig, ok := e.sign(); ok && sig == e.signature {
			return
		}
	}
	e.layout()
}

// sign hashes the tree structure, the text and the attributes. It fails
// when the tree holds a node the last layout never saw.
func (e *Engine) sign() (uint64, bool) {
	h := fnv.New64a()
	known := dom.Walk(e.root, func(n *html.Node) bool {
		id, ok := e.ids[n]
		if !ok {
			return false
		}
		fmt.Fprintf(h, "%d<%d|%s|", id, e.ids[n.Parent], n.Data)
		for _, a := range n.Attr {
			fmt.Fprintf(h, "%s=%s;", a.Key, a.Val)
		}
		return true
	})
	return h.Sum64(), known
}

func (e *Engine) layout() {
	e.ids = make(map[*html.Node]int)
	dom.Walk(e.root, func(n *html.Node) bool {
		e.ids[n] = len(e.ids) + 1
		return true
	})
	e.rects = make(map[*html.Node][]geom.Rect)
	e.carets = make(map[*html.Node][]geom.Rect)
	e.order = e.order[:0]
	e.stops = e.stops[:0]
	e.glyphs = e.glyphs[:0]

	f := &flow{e: e}
	f.block(e.root)
	e.height = f.row

	e.signature, _ = e.sign()
	e.valid = true
	e.runs++
	e.logger.Debug("layout computed", zap.Int("rows", e.height), zap.Int("run", e.runs))
}

type flow struct {
	e        *Engine
	row, col int
	lineOpen bool
}

func (f *flow) width() int {
	return f.e.config.Width
}

func (f *flow) newline() {
	f.row++
	f.col = 0
	f.lineOpen = false
}

func (f *flow) breakLine() {
	if f.lineOpen {
		f.newline()
	}
}

func (f *flow) cell(col, width int) geom.Rect {
	return geom.Rect{
		Left:   float64(col),
		Top:    float64(f.row),
		Right:  float64(col + width),
		Bottom: float64(f.row + 1),
	}
}

func (f *flow) stop(container *html.Node, offset, col int) {
	f.e.stops = append(f.e.stops, Stop{Row: f.row, X: float64(col), Container: container, Offset: offset})
}

func (f *flow) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		f.node(c)
	}
}

func (f *flow) node(n *html.Node) {
	switch {
	case dom.IsText(n):
		f.text(n)
	case !dom.IsElement(n), caret.IsBogusAll(n):
	case caret.IsBr(n):
		f.br(n)
	case caret.IsAtomic(n) && caret.IsBlock(n):
		f.atomicBlock(n)
	case caret.IsAtomic(n):
		f.atomicInline(n)
	case caret.IsBlock(n):
		f.block(n)
	default:
		f.inline(n)
	}
}

func (f *flow) block(n *html.Node) {
	f.breakLine()
	if n != f.e.root {
		f.e.order = append(f.e.order, n)
	}
	start := f.row
	f.children(n)
	f.breakLine()
	if f.row == start {
		// An empty block still occupies a line.
		f.stop(n, 0, 0)
		f.row++
	}
	f.e.rects[n] = []geom.Rect{{
		Left:   0,
		Top:    float64(start),
		Right:  float64(f.width()),
		Bottom: float64(f.row),
	}}
}

func (f *flow) inline(n *html.Node) {
	f.e.order = append(f.e.order, n)
	startRow, startCol := f.row, f.col
	f.children(n)

	var rects []geom.Rect
	for row := startRow; row <= f.row; row++ {
		left, right := 0, f.width()
		if row == startRow {
			left = startCol
		}
		if row == f.row {
			right = f.col
		}
		if row != startRow && row == f.row && right == 0 {
			break
		}
		rects = append(rects, geom.Rect{
			Left:   float64(left),
			Top:    float64(row),
			Right:  float64(right),
			Bottom: float64(row + 1),
		})
	}
	f.e.rects[n] = rects
}

func (f *flow) br(n *html.Node) {
	f.e.order = append(f.e.order, n)
	f.e.rects[n] = []geom.Rect{f.cell(f.col, 0)}
	f.stop(n.Parent, dom.NodeIndex(n), f.col)
	f.newline()
}

func (f *flow) atomicInline(n *html.Node) {
	w := f.atomicWidth(n)
	if f.col > 0 && f.col+w > f.width() {
		f.newline()
	}
	f.e.order = append(f.e.order, n)
	idx := dom.NodeIndex(n)
	f.stop(n.Parent, idx, f.col)
	f.e.rects[n] = []geom.Rect{f.cell(f.col, w)}
	f.e.glyphs = append(f.e.glyphs, Glyph{X: f.col, Y: f.row, Text: label(n, w), Node: n})
	f.col += w
	f.lineOpen = true
	f.stop(n.Parent, idx+1, f.col)
}

func (f *flow) atomicBlock(n *html.Node) {
	f.breakLine()
	f.e.order = append(f.e.order, n)
	idx := dom.NodeIndex(n)
	w := f.width()
	f.stop(n.Parent, idx, 0)
	f.e.rects[n] = []geom.Rect{f.cell(0, w)}
	f.e.glyphs = append(f.e.glyphs, Glyph{X: 0, Y: f.row, Text: label(n, w), Node: n})
	f.stop(n.Parent, idx+1, w)
	f.newline()
}

func (f *flow) atomicWidth(n *html.Node) int {
	w := f.e.config.AtomicWidth
	if v, err := strconv.Atoi(strings.TrimSpace(dom.AttrValue(n, "width"))); err == nil && v > 0 {
		w = v
	}
	if w > f.width() {
		w = f.width()
	}
	return w
}

func (f *flow) text(n *html.Node) {
	if skipText(n) {
		return
	}
	data := n.Data
	carets := make([]geom.Rect, len(data)+1)
	var rects []geom.Rect
	fragCol := f.col
	closeFrag := func() {
		rects = append(rects, f.cell(fragCol, f.col-fragCol))
	}

	prevSpace := true
	g := uniseg.NewGraphemes(data)
	for g.Next() {
		from, to := g.Positions()
		s := g.Str()
		w := cellWidth(s)
		space := isSpace(s)

		wrap := f.col > 0 && f.col+w > f.width() && !space
		if !wrap && !space && prevSpace && f.col > 0 {
			wrap = f.col+wordWidth(data[from:]) > f.width()
		}
		if wrap {
			if f.col > fragCol {
				closeFrag()
			}
			f.newline()
			fragCol = 0
		}

		for o := from; o < to; o++ {
			carets[o] = f.cell(f.col, 0)
		}
		f.stop(n, from, f.col)
		if w > 0 {
			f.e.glyphs = append(f.e.glyphs, Glyph{X: f.col, Y: f.row, Text: s, Node: n})
			f.lineOpen = true
		}
		f.col += w
		prevSpace = space
	}
	carets[len(data)] = f.cell(f.col, 0)
	f.stop(n, len(data), f.col)
	closeFrag()

	f.e.carets[n] = carets
	f.e.rects[n] = rects
}

// skipText reports whether n is whitespace between blocks, which renders
// nothing, or text in a raw-text parent.
func skipText(n *html.Node) bool {
	if p := n.Parent; p != nil && (p.DataAtom == atom.Script || p.DataAtom == atom.Style) {
		return true
	}
	if strings.TrimSpace(n.Data) != "" {
		return false
	}
	if strings.Contains(n.Data, caret.ZWSP) {
		return false
	}
	prev, next := n.PrevSibling, n.NextSibling
	return (prev == nil || caret.IsBlock(prev)) && (next == nil || caret.IsBlock(next)) &&
		(prev != nil || next != nil || caret.IsBlock(n.Parent))
}

func isSpace(s string) bool {
	return s == " " || s == "\t" || s == "\n" || s == "\r\n" || s == "\r"
}

func cellWidth(s string) int {
	if s == caret.ZWSP {
		return 0
	}
	if isSpace(s) {
		return 1
	}
	return runewidth.StringWidth(s)
}

func wordWidth(s string) int {
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if isSpace(g.Str()) {
			break
		}
		w += cellWidth(g.Str())
	}
	return w
}

// label renders an atomic node as exactly w cells.
func label(n *html.Node, w int) string {
	if n.DataAtom == atom.Hr {
		return strings.Repeat("─", w)
	}
	name := dom.AttrValue(n, "alt")
	if name == "" {
		name = n.Data
	}
	s := "[" + name + "]"
	if dom.HasAttr(n, caret.AttrSelected) {
		s = "{" + name + "}"
	}
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "")
	}
	return runewidth.FillRight(s, w)
}
