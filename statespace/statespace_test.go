package statespace

import (
	"errors"
	"os"
	"path"
	"reflect"
	"testing"

	"github.com/zeu5/vacuum-world/types"
)

func TestStateSpace3x3(t *testing.T) {
	s, err := New(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.States()); n != 9 {
		t.Errorf("expected 9 states, got %d", n)
	}
	if n := s.NumEdges(); n != 12 {
		t.Errorf("expected 12 edges, got %d", n)
	}
	if n := len(s.Edges()); n != 12 {
		t.Errorf("expected 12 listed edges, got %d", n)
	}

	tests := []struct {
		p    Position
		want int
	}{
		{Position{0, 0}, 2},
		{Position{0, 1}, 3},
		{Position{1, 1}, 4},
		{Position{2, 2}, 2},
	}
	for _, tt := range tests {
		if got := len(s.Neighbours(tt.p)); got != tt.want {
			t.Errorf("%s: expected %d neighbours, got %d", tt.p, tt.want, got)
		}
	}
}

func TestShortestPath(t *testing.T) {
	s, err := New(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.ShortestPath(Position{0, 0}, Position{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 5 {
		t.Fatalf("expected 5 positions, got %v", p)
	}
	if p[0] != (Position{0, 0}) || p[4] != (Position{2, 2}) {
		t.Errorf("path does not connect the ends: %v", p)
	}
	for i := 1; i < len(p); i++ {
		dx, dy := p[i].X-p[i-1].X, p[i].Y-p[i-1].Y
		if dx*dx+dy*dy != 1 {
			t.Errorf("step %d is not a single move: %v", i, p)
		}
	}
	if _, err := s.ShortestPath(Position{0, 0}, Position{5, 5}); !errors.Is(err, ErrOutside) {
		t.Errorf("expected ErrOutside, got %v", err)
	}
}

func TestInvalidSize(t *testing.T) {
	if _, err := New(0, 3); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestRender(t *testing.T) {
	s, err := New(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	file := path.Join(t.TempDir(), "plots", "state_space.png")
	if err := s.Render(file, "State space of a 3x3 grid"); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(file); err != nil || info.Size() == 0 {
		t.Fatalf("expected a rendered image: %v", err)
	}
}

func TestGridEnvironment(t *testing.T) {
	env := NewGridEnvironment(3, 3, Position{0, 0}, Position{0, 1})
	st := env.Reset().(*GridState)
	want := []string{"Up", "Right"}
	got := make([]string, 0)
	for _, a := range st.Actions() {
		got = append(got, a.Hash())
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v from the corner, got %v", want, got)
	}

	_, r, done := env.Step(MovementDown)
	if env.CurPos != (Position{0, 0}) || r != -1 || done {
		t.Errorf("moving off the grid should stay put, got %s", env.CurPos)
	}
	_, _, done = env.Step(MovementUp)
	if !done {
		t.Error("expected the goal to end the episode")
	}
}

func TestVisitAnalyzer(t *testing.T) {
	env := NewGridEnvironment(3, 3, Position{0, 0}, Position{2, 2})
	agent := types.NewAgent(&types.AgentConfig{
		Episodes:    3,
		Horizon:     10,
		Policy:      types.NewRandomPolicy(4),
		Environment: env,
	})
	traces := agent.Run()
	ds := VisitAnalyzer("random", traces).(*VisitDataSet)
	total := 0
	for _, tr := range traces {
		total += tr.Len() + 1
	}
	space, _ := New(3, 3)
	sum := 0
	for _, p := range space.States() {
		sum += ds.Count(p)
	}
	if sum != total {
		t.Errorf("expected %d visits, got %d", total, sum)
	}
	if ds.Count(Position{0, 0}) < 3 {
		t.Error("every episode starts at the origin")
	}

	dir := t.TempDir()
	if err := HeatMapComparator(dir)([]string{"random"}, []types.DataSet{ds}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path.Join(dir, "random_visits.png")); err != nil {
		t.Errorf("expected a heat map: %v", err)
	}
}
