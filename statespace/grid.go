// Package statespace models a small grid world as a state space: every cell
// (x, y) is a state and the four moves connect neighbouring cells.
package statespace

import (
	"fmt"

	"github.com/zeu5/vacuum-world/types"
)

type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func (p Position) Add(m *Movement) Position {
	return Position{X: p.X + m.DX, Y: p.Y + m.DY}
}

type Movement struct {
	Direction string
	DX        int
	DY        int
}

var _ types.Action = &Movement{}

func (m *Movement) Hash() string {
	return m.Direction
}

var (
	MovementUp    = &Movement{"Up", 0, 1}
	MovementDown  = &Movement{"Down", 0, -1}
	MovementLeft  = &Movement{"Left", -1, 0}
	MovementRight = &Movement{"Right", 1, 0}
	// AllMovements in the order neighbours are explored
	AllMovements = []*Movement{MovementUp, MovementRight, MovementDown, MovementLeft}
)

// GridState is a position that knows which moves stay inside its grid
type GridState struct {
	Position
	width  int
	height int
}

var _ types.State = &GridState{}

func (s *GridState) Hash() string {
	return s.Position.String()
}

func (s *GridState) Actions() []types.Action {
	out := make([]types.Action, 0, len(AllMovements))
	for _, m := range AllMovements {
		if inBounds(s.Add(m), s.width, s.height) {
			out = append(out, m)
		}
	}
	return out
}

func inBounds(p Position, width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// GridEnvironment walks the grid from Start. Every step costs 1 and the
// episode ends at Goal.
type GridEnvironment struct {
	Width  int
	Height int
	Start  Position
	Goal   Position
	CurPos Position
}

var _ types.Environment = &GridEnvironment{}

func NewGridEnvironment(width, height int, start, goal Position) *GridEnvironment {
	return &GridEnvironment{
		Width:  width,
		Height: height,
		Start:  start,
		Goal:   goal,
		CurPos: start,
	}
}

func (g *GridEnvironment) state() *GridState {
	return &GridState{Position: g.CurPos, width: g.Width, height: g.Height}
}

func (g *GridEnvironment) Reset() types.State {
	g.CurPos = g.Start
	return g.state()
}

func (g *GridEnvironment) Step(a types.Action) (types.State, float64, bool) {
	movement, ok := a.(*Movement)
	if !ok {
		return g.state(), 0, false
	}
	if next := g.CurPos.Add(movement); inBounds(next, g.Width, g.Height) {
		g.CurPos = next
	}
	return g.state(), -1, g.CurPos == g.Goal
}

// GoalReached holds once the walk lands on goal
func GoalReached(goal Position) types.Condition {
	return func(_ types.State, _ types.Action, ns types.State) bool {
		s, ok := ns.(*GridState)
		return ok && s.Position == goal
	}
}
