package multiagent

import (
	"bytes"
	"context"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/zeu5/vacuum-world/store"
	"github.com/zeu5/vacuum-world/vacuum"
)

func TestChannel(t *testing.T) {
	c := NewChannel()
	if got := c.BelievedDirty(vacuum.ThreeRooms); len(got) != 3 {
		t.Fatalf("unreported rooms count as dirty, got %v", got)
	}
	c.Post(vacuum.RoomB, vacuum.Clean)
	if s, ok := c.Get(vacuum.RoomB); !ok || s != vacuum.Clean {
		t.Fatalf("expected room-B clean, got %v %v", s, ok)
	}
	want := []vacuum.Room{vacuum.RoomA, vacuum.RoomC}
	if got := c.BelievedDirty(vacuum.ThreeRooms); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Error("expected an empty channel after Clear")
	}
}

func TestChannelConcurrentPosts(t *testing.T) {
	c := NewChannel()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Post(vacuum.ThreeRooms[i%3], vacuum.Clean)
			c.BelievedDirty(vacuum.ThreeRooms)
		}(i)
	}
	wg.Wait()
	if c.Len() != 3 {
		t.Errorf("expected 3 rooms, got %d", c.Len())
	}
}

func TestBoardUnion(t *testing.T) {
	b := NewBoard()
	b.Broadcast("agent0", []vacuum.Room{vacuum.RoomC})
	b.Broadcast("agent1", []vacuum.Room{vacuum.RoomA, vacuum.RoomC})
	want := []vacuum.Room{vacuum.RoomA, vacuum.RoomC}
	if got := b.Known(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	b.Clear()
	if len(b.Known()) != 0 {
		t.Error("expected nothing known after Clear")
	}
}

func TestSharedRewardRoundsDown(t *testing.T) {
	s := NewSharedSimulation(SharedConfig{Agents: 3, Seed: 1})
	s.share(s.agents[0], -5)
	s.share(s.agents[1], 10)
	want := []float64{-5 + 5, -3 + 10, -3 + 5}
	for i, a := range s.agents {
		if a.reward != want[i] {
			t.Errorf("agent %d: expected %g, got %g", i, want[i], a.reward)
		}
	}
}

func TestSharedSimulationCleansEverything(t *testing.T) {
	var out bytes.Buffer
	s := NewSharedSimulation(SharedConfig{
		Agents:   3,
		Episodes: 3,
		Steps:    10,
		Seed:     42,
		Printer:  vacuum.NewPrinter(&out, false),
	})
	results, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(results))
	}
	for _, res := range results {
		if !res.AllClean {
			t.Errorf("episode %d left dirty rooms", res.Episode)
		}
		if len(res.Rewards) != 3 {
			t.Errorf("expected 3 rewards, got %v", res.Rewards)
		}
	}
	if !strings.Contains(out.String(), "[Episode 1 Result]") {
		t.Error("missing episode summary")
	}
}

func TestSharedSingleAgentSingleRoom(t *testing.T) {
	s := NewSharedSimulation(SharedConfig{Agents: 1, Rooms: []vacuum.Room{vacuum.RoomA}, Steps: 5, Seed: 3})
	res, err := s.RunEpisode(1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 1 || res.Rewards[0] != 10 {
		t.Errorf("expected one clean for 10, got %d steps and %v", res.Steps, res.Rewards)
	}
	if s, ok := s.Channel().Get(vacuum.RoomA); !ok || s != vacuum.Clean {
		t.Error("expected the clean to be posted")
	}
}

func TestZeroConfigsGetDefaults(t *testing.T) {
	shared := NewSharedSimulation(SharedConfig{Seed: 1})
	res, err := shared.RunEpisode(1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps == 0 {
		t.Error("shared simulation ran an empty episode")
	}
	if shared.config.Episodes != 5 || shared.config.Steps != 10 {
		t.Errorf("unexpected shared defaults %+v", shared.config)
	}

	conflict := NewConflictTrainer(ConflictConfig{Seed: 1})
	cres, err := conflict.RunEpisode(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if cres.Steps == 0 {
		t.Error("conflict trainer ran an empty episode")
	}
	if conflict.config.Episodes != 200 || conflict.config.Steps != 30 {
		t.Errorf("unexpected conflict defaults %+v", conflict.config)
	}
}

func TestSharedRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSharedSimulation(SharedConfig{Episodes: 5, Steps: 5, Seed: 1})
	results, err := s.Run(ctx)
	if err == nil || len(results) != 0 {
		t.Fatalf("expected cancellation before any episode, got %d results and %v", len(results), err)
	}
}

func TestJointAction(t *testing.T) {
	a := ParseJointAction("move-room-B")
	if a.Kind != "move" || a.Target != vacuum.RoomB || a.Hash() != "move-room-B" {
		t.Errorf("unexpected action %+v", a)
	}
	if c := ParseJointAction("clean"); c.Kind != "clean" || c.Hash() != "clean" {
		t.Errorf("unexpected action %+v", c)
	}
	if n := len(JointActions(vacuum.ThreeRooms)); n != 4 {
		t.Errorf("expected 4 actions, got %d", n)
	}
}

func TestJointEnvironmentRewards(t *testing.T) {
	e := NewJointEnvironment(vacuum.ThreeRooms, 2, 1)
	if err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if !e.World.IsDirty(vacuum.RoomA) || !e.World.IsDirty(vacuum.RoomC) {
		t.Fatal("expected every room dirty after reset")
	}
	e.Locations[0] = vacuum.RoomA
	e.Locations[1] = vacuum.RoomA

	rewards, done := e.Step([]*JointAction{{Kind: "clean"}, {Kind: "clean"}})
	if rewards[0] != 10 || rewards[1] != -2 || done {
		t.Errorf("expected the first cleaner to win, got %v", rewards)
	}
	rewards, _ = e.Step([]*JointAction{{Kind: "move", Target: vacuum.RoomB}, {Kind: "move", Target: "room-Z"}})
	if rewards[0] != -1 || rewards[1] != -5 {
		t.Errorf("expected -1 and -5, got %v", rewards)
	}
	if e.Locations[0] != vacuum.RoomB || e.Locations[1] != vacuum.RoomA {
		t.Errorf("unexpected locations %v", e.Locations)
	}
}

func TestQLearningTrainer(t *testing.T) {
	config := DefaultQLearningConfig()
	config.Episodes = 20
	config.Seed = 5
	tr := NewQLearningTrainer(config)
	results, err := tr.Train(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 20 {
		t.Fatalf("expected 20 episodes, got %d", len(results))
	}
	for _, res := range results {
		if res.Steps > config.MaxSteps {
			t.Errorf("episode %d ran %d steps", res.Episode, res.Steps)
		}
		// every agent learns from the same average
		if res.Rewards[0] != res.Rewards[1] || res.Rewards[1] != res.Rewards[2] {
			t.Errorf("expected equal totals, got %v", res.Rewards)
		}
	}
	want := math.Max(0.05, math.Pow(0.99, 20))
	if got := tr.Policy(0).Epsilon(); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected epsilon %g, got %g", want, got)
	}
	if tr.Comm().Len() == 0 {
		t.Error("expected communication values")
	}

	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := tr.Save(ctx, s, "mas_qtable"); err != nil {
		t.Fatal(err)
	}
	restored := NewQLearningTrainer(config)
	if err := restored.Load(ctx, s, "mas_qtable"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tr.Tables(), restored.Tables()) {
		t.Error("restored tables differ")
	}
	if err := restored.Load(ctx, s, "missing"); err != nil {
		t.Errorf("a missing key should be ignored, got %v", err)
	}
}

func newConflictEnv(t *testing.T, agents int) *ConflictEnvironment {
	t.Helper()
	e := NewConflictEnvironment(vacuum.ThreeRooms, agents, 9)
	if err := e.Reset(1.0); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestConflictMoveCollision(t *testing.T) {
	e := newConflictEnv(t, 2)
	e.Place(0, vacuum.RoomA)
	e.Place(1, vacuum.RoomC)
	rewards, _, _ := e.Step([]Intent{{Kind: "move", Target: vacuum.RoomB}, {Kind: "move", Target: vacuum.RoomB}})
	if rewards[0]+rewards[1] != -3 {
		t.Errorf("expected one loser paying 3, got %v", rewards)
	}
	inB := 0
	for _, l := range e.Locations {
		if l == vacuum.RoomB {
			inB++
		}
	}
	if inB != 1 {
		t.Errorf("expected exactly one agent in room-B, got %v", e.Locations)
	}
}

func TestConflictRedundantClean(t *testing.T) {
	e := newConflictEnv(t, 2)
	e.Place(0, vacuum.RoomA)
	e.Place(1, vacuum.RoomA)
	rewards, info, _ := e.Step([]Intent{{Kind: "clean"}, {Kind: "clean"}})
	if rewards[0]+rewards[1] != 5 {
		t.Errorf("expected +10 and -5, got %v", rewards)
	}
	if e.World.IsDirty(vacuum.RoomA) {
		t.Error("expected room-A clean")
	}
	if !strings.Contains(info[0]+info[1], "redundant_clean_attempt") {
		t.Errorf("missing redundant clean info: %v", info)
	}

	rewards, _, _ = e.Step([]Intent{{Kind: "clean"}, {Kind: "idle"}})
	if rewards[0] != -4 || rewards[1] != -1 {
		t.Errorf("expected -4 and -1, got %v", rewards)
	}
}

func TestConflictMovesResolveBeforeCleans(t *testing.T) {
	e := newConflictEnv(t, 2)
	e.Place(0, vacuum.RoomA)
	e.Place(1, vacuum.RoomB)
	rewards, _, _ := e.Step([]Intent{{Kind: "move", Target: vacuum.RoomB}, {Kind: "clean"}})
	if rewards[0] != 0 || rewards[1] != 10 {
		t.Errorf("expected 0 and 10, got %v", rewards)
	}
	if e.Locations[0] != vacuum.RoomB {
		t.Errorf("expected agent0 in room-B, got %s", e.Locations[0])
	}
}

func TestConflictTrainer(t *testing.T) {
	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	config := DefaultConflictConfig()
	config.Episodes = 5
	config.Seed = 11
	config.Store = s
	tr := NewConflictTrainer(config)
	history, err := tr.Train(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, series := range history.Rewards {
		if len(series) != 5 {
			t.Errorf("%s: expected 5 episodes, got %d", history.Names[i], len(series))
		}
	}
	keys, err := s.Keys(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"qtable_agent0", "qtable_agent1", "qtable_agent2"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("expected %v, got %v", want, keys)
	}

	restored := NewConflictTrainer(config)
	if err := restored.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := range tr.Names() {
		if !reflect.DeepEqual(tr.Policy(i).QTable().Snapshot(), restored.Policy(i).QTable().Snapshot()) {
			t.Errorf("agent %d: restored table differs", i)
		}
	}
}

func TestConflictCommunication(t *testing.T) {
	config := DefaultConflictConfig()
	config.Seed = 2
	tr := NewConflictTrainer(config)
	if err := tr.env.Reset(1.0); err != nil {
		t.Fatal(err)
	}
	if got := tr.share(); len(got) != 3 {
		t.Errorf("expected every room known dirty, got %v", got)
	}
	tr.env.Place(0, vacuum.RoomA)
	if r := tr.target(0, []vacuum.Room{vacuum.RoomA, vacuum.RoomC}); r != vacuum.RoomC {
		t.Errorf("expected the known dirty room-C, got %s", r)
	}

	config.DisableComm = true
	silent := NewConflictTrainer(config)
	silent.env.Reset(1.0)
	if got := silent.share(); len(got) != 0 {
		t.Errorf("expected nothing shared, got %v", got)
	}
}
