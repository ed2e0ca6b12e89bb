package statespace

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"github.com/zeu5/vacuum-world/util"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	ErrInvalidSize = errors.New("grid dimensions must be positive")
	ErrOutside     = errors.New("position outside the grid")
	ErrNoPath      = errors.New("no path between positions")
)

// StateSpace is the undirected graph of a Width x Height grid
type StateSpace struct {
	Width  int
	Height int
	graph  *simple.UndirectedGraph
}

func New(width, height int) (*StateSpace, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	s := &StateSpace{
		Width:  width,
		Height: height,
		graph:  simple.NewUndirectedGraph(),
	}
	for _, p := range s.States() {
		s.graph.AddNode(simple.Node(s.id(p)))
	}
	for _, p := range s.States() {
		for _, m := range AllMovements {
			n := p.Add(m)
			if !s.Contains(n) || s.graph.HasEdgeBetween(s.id(p), s.id(n)) {
				continue
			}
			s.graph.SetEdge(s.graph.NewEdge(simple.Node(s.id(p)), simple.Node(s.id(n))))
		}
	}
	return s, nil
}

func (s *StateSpace) id(p Position) int64 {
	return int64(p.X*s.Height + p.Y)
}

func (s *StateSpace) position(id int64) Position {
	return Position{X: int(id) / s.Height, Y: int(id) % s.Height}
}

func (s *StateSpace) Contains(p Position) bool {
	return inBounds(p, s.Width, s.Height)
}

// States lists every position, x major
func (s *StateSpace) States() []Position {
	out := make([]Position, 0, s.Width*s.Height)
	for x := 0; x < s.Width; x++ {
		for y := 0; y < s.Height; y++ {
			out = append(out, Position{X: x, Y: y})
		}
	}
	return out
}

func (s *StateSpace) NumEdges() int {
	return s.graph.Edges().Len()
}

// Edges lists each edge once, from the lower to the higher state id
func (s *StateSpace) Edges() [][2]Position {
	out := make([][2]Position, 0)
	for _, p := range s.States() {
		for _, n := range s.Neighbours(p) {
			if s.id(p) < s.id(n) {
				out = append(out, [2]Position{p, n})
			}
		}
	}
	return out
}

func (s *StateSpace) Neighbours(p Position) []Position {
	if !s.Contains(p) {
		return nil
	}
	out := make([]Position, 0, len(AllMovements))
	for _, m := range AllMovements {
		n := p.Add(m)
		if s.Contains(n) && s.graph.HasEdgeBetween(s.id(p), s.id(n)) {
			out = append(out, n)
		}
	}
	return out
}

// ShortestPath between two positions, both ends included
func (s *StateSpace) ShortestPath(from, to Position) ([]Position, error) {
	if !s.Contains(from) || !s.Contains(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOutside, from, to)
	}
	shortest := path.DijkstraFrom(simple.Node(s.id(from)), s.graph)
	nodes, weight := shortest.To(s.id(to))
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoPath, from, to)
	}
	out := make([]Position, len(nodes))
	for i, n := range nodes {
		out[i] = s.position(n.ID())
	}
	return out, nil
}

// layout places (x, y) at (y, -x) so that rows read top to bottom
func layout(p Position) plotter.XY {
	return plotter.XY{X: float64(p.Y), Y: -float64(p.X)}
}

// Render draws the state space with labelled nodes and saves it to file
func (s *StateSpace) Render(file, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()

	edges := graph.EdgesOf(s.graph.Edges())
	for _, e := range edges {
		line, err := plotter.NewLine(plotter.XYs{
			layout(s.position(e.From().ID())),
			layout(s.position(e.To().ID())),
		})
		if err != nil {
			return err
		}
		line.Color = color.Gray{Y: 128}
		p.Add(line)
	}

	states := s.States()
	xys := make(plotter.XYs, len(states))
	labels := make([]string, len(states))
	for i, st := range states {
		xys[i] = layout(st)
		labels[i] = st.String()
	}
	nodes, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	nodes.GlyphStyle.Shape = draw.CircleGlyph{}
	nodes.GlyphStyle.Radius = vg.Points(14)
	nodes.GlyphStyle.Color = color.RGBA{R: 173, G: 216, B: 230, A: 255}
	p.Add(nodes)

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	for i := range names.TextStyle {
		names.TextStyle[i].XAlign = draw.XCenter
		names.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(names)

	p.X.Min, p.X.Max = -0.5, float64(s.Height)-0.5
	p.Y.Min, p.Y.Max = -float64(s.Width)+0.5, 0.5

	if err := util.EnsureDir(filepath.Dir(file)); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, file)
}
