package scenarios

import (
	"bytes"
	"context"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/zeu5/vacuum-world/config"
	"github.com/zeu5/vacuum-world/store"
	"github.com/zeu5/vacuum-world/vacuum"
)

func TestRootCommandHasEveryScenario(t *testing.T) {
	root := GetRootCommand(config.Default())
	want := []string{
		"reflex", "model-reflex", "goal", "utility", "learn",
		"qlearn-critic", "qlearn", "compare",
		"mas-shared", "mas-qlearn", "mas",
		"statespace", "routes", "serve",
	}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("missing subcommand %s", name)
		}
	}
}

func TestRoutesCommand(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	root := GetRootCommand(config.Default())
	root.SetOut(&out)
	root.SetArgs([]string{"routes", "--save", dir})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path.Join(dir, "route_dataset.csv")); err != nil {
		t.Fatalf("expected the csv: %v", err)
	}
	for _, want := range []string{"Mean estimated travel time", "Dijkstra", "Flooded at Slipi"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output is missing %q", want)
		}
	}
}

func TestGoalCommandRejectsBadWorld(t *testing.T) {
	root := GetRootCommand(config.Default())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"goal", "--world", "room-A=wet"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an invalid status")
	}
}

func TestUtilityCommand(t *testing.T) {
	var out bytes.Buffer
	root := GetRootCommand(config.Default())
	root.SetOut(&out)
	root.SetArgs([]string{"utility", "--no-color", "--scheme", "complex", "--world", "room-A=dirty,room-B=clean,room-C=clean", "--location", "room-A", "--steps", "10", "--stop-when-clean"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "All rooms are clean, stopping early.") {
		t.Errorf("expected an early stop, got\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Utility scheme: complex") {
		t.Error("expected the scheme in the run header")
	}
}

func TestQLearnCommandRejectsUnknownDynamics(t *testing.T) {
	root := GetRootCommand(config.Default())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"qlearn", "--save", t.TempDir(), "--dynamics", "gravity"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "unknown dynamics") {
		t.Fatalf("expected an unknown dynamics error, got %v", err)
	}
}

func TestTrainDecayWithOtherDynamics(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	_, err := TrainDecay(context.Background(), DecayTrainerConfig{
		Episodes: 3,
		Horizon:  10,
		Seed:     5,
		SaveDir:  dir,
		Dynamics: vacuum.ProblemGeneratorDynamics{},
		Output:   &out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Training with problem-generator dynamics") {
		t.Errorf("expected the dynamics header, got\n%s", out.String())
	}
}

func TestMASQLearnCommandResumes(t *testing.T) {
	dir := t.TempDir()
	args := []string{"mas-qlearn", "--save", dir, "--seed", "4", "--episodes", "2", "--horizon", "50"}
	for i := 0; i < 2; i++ {
		root := GetRootCommand(config.Default())
		root.SetOut(&bytes.Buffer{})
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	saved := path.Join(dir, "qtables", "mas_qtable.json")
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("expected %s: %v", saved, err)
	}

	// a stored table is read before training starts
	if err := os.WriteFile(saved, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	root := GetRootCommand(config.Default())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "loading mas_qtable") {
		t.Fatalf("expected a load error, got %v", err)
	}
}

func TestRoutes(t *testing.T) {
	var out bytes.Buffer
	file := path.Join(t.TempDir(), "routes.csv")
	if err := Routes(file, "Normal", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2024-01-02 03:04:05") {
		t.Error("expected the execution timestamp in the table")
	}
}

func TestTrainDecayResumes(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(path.Join(dir, "qtables"))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	c := DecayTrainerConfig{
		Episodes: 10,
		Horizon:  20,
		Seed:     3,
		SaveDir:  dir,
		Store:    s,
		Key:      "qtable",
		Output:   &out,
	}
	rewards, err := TrainDecay(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if len(rewards) != 10 {
		t.Fatalf("expected 10 rewards, got %d", len(rewards))
	}
	if !strings.Contains(out.String(), "Episode 10, Total Reward:") {
		t.Error("missing the per episode line")
	}
	if !strings.Contains(out.String(), "Training with decay dynamics") {
		t.Error("expected the default dynamics header")
	}
	for _, f := range []string{"qlearn_rewards.png", "qlearn_rewards.json", "qlearn_qtable.json", "qtables/qtable.json"} {
		if _, err := os.Stat(path.Join(dir, f)); err != nil {
			t.Errorf("expected %s: %v", f, err)
		}
	}

	out.Reset()
	if _, err := TrainDecay(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Q-table loaded from qtable") {
		t.Error("expected the second run to resume from the stored table")
	}
}

func TestRunCriticLearner(t *testing.T) {
	var out bytes.Buffer
	world, err := vacuum.ParseWorld("room-A=dirty,room-B=clean,room-C=dirty")
	if err != nil {
		t.Fatal(err)
	}
	traces, q, err := RunCriticLearner(context.Background(), CriticLearnerConfig{
		Episodes: 3,
		Horizon:  10,
		World:    world,
		Location: vacuum.RoomB,
		Seed:     8,
		Printer:  vacuum.NewPrinter(&out, false),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(traces) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(traces))
	}
	if q.Len() == 0 {
		t.Error("expected learned values")
	}
	for _, want := range []string{"=== Episode 1 ===", "[Decision]", "[Q-Table]", "Episode 3 finished"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output is missing %q", want)
		}
	}
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	if err := Compare(context.Background(), 5, 10, dir, 4, &out); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"comparison_config.json", "rewards.png", "rewards.html", "rewards.json", "lengths.png", "coverage.png"} {
		if _, err := os.Stat(path.Join(dir, f)); err != nil {
			t.Errorf("expected %s: %v", f, err)
		}
	}
	if !strings.Contains(out.String(), "Property AllClean satisfied in") {
		t.Error("expected the property summary")
	}
}

func TestStateSpaceWalk(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	if err := StateSpace(context.Background(), 3, 3, dir, true, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Shortest path (0,0) -> (2,2)") {
		t.Errorf("missing the shortest path, got\n%s", out.String())
	}
	for _, f := range []string{"state_space.png", "state_space_edges.txt", "walk/Random_visits.png", "walk/lengths.png"} {
		if _, err := os.Stat(path.Join(dir, f)); err != nil {
			t.Errorf("expected %s: %v", f, err)
		}
	}
}

func TestCancelledTraining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rewards, err := TrainDecay(ctx, DecayTrainerConfig{Episodes: 5, Horizon: 5, Seed: 1})
	if err == nil || len(rewards) != 0 {
		t.Fatalf("expected a cancelled run, got %v and %v", rewards, err)
	}
}
