package vacuum

import (
	"fmt"
	"strings"

	"github.com/zeu5/vacuum-world/types"
	"golang.org/x/exp/rand"
)

// Move is the kind of action the vacuum takes
type Move struct {
	Kind string
}

var _ types.Action = &Move{}

func (m *Move) Hash() string {
	return m.Kind
}

var (
	ActionClean                = &Move{"clean"}
	ActionMove                 = &Move{"move"}
	AllActions  []types.Action = []types.Action{ActionClean, ActionMove}
)

// RoomsState is the location of the vacuum together with every room's status
type RoomsState struct {
	Location Room
	Rooms    []RoomStatus
}

var _ types.State = &RoomsState{}

func (s *RoomsState) Hash() string {
	parts := make([]string, len(s.Rooms))
	for i, r := range s.Rooms {
		parts[i] = fmt.Sprintf("%s:%s", r.Room, r.Status)
	}
	return fmt.Sprintf("%s|%s", s.Location, strings.Join(parts, ","))
}

func (s *RoomsState) Actions() []types.Action {
	return AllActions
}

// Current is the status of the room the vacuum is in
func (s *RoomsState) Current() Status {
	for _, r := range s.Rooms {
		if r.Room == s.Location {
			return r.Status
		}
	}
	return ""
}

func (s *RoomsState) AllClean() bool {
	for _, r := range s.Rooms {
		if r.Status != Clean {
			return false
		}
	}
	return true
}

// LocalView keys states by location and the status of the current room only
func LocalView() types.StateAbstractor {
	return func(s types.State) string {
		rs, ok := s.(*RoomsState)
		if !ok {
			return s.Hash()
		}
		return fmt.Sprintf("%s|%s", rs.Location, rs.Current())
	}
}

// AllCleanReached holds on the first transition into a state where every room is clean
func AllCleanReached() types.Condition {
	return func(_ types.State, _ types.Action, ns types.State) bool {
		rs, ok := ns.(*RoomsState)
		return ok && rs.AllClean()
	}
}

// Dynamics decides how an action changes the world and what it earns.
// The reward schemes of the different trainers are deliberately kept apart.
type Dynamics interface {
	Name() string
	// Reset prepares the world for a new episode. first is true on the very first reset.
	Reset(env *RoomsEnvironment, first bool)
	// Apply performs the action and returns its reward
	Apply(env *RoomsEnvironment, a *Move) float64
}

type RoomsEnvironmentConfig struct {
	Rooms    []Room
	Initial  *World // nil draws a random world on reset
	Location Room   // empty draws a random location on reset
	// StopWhenClean ends the episode once every room is clean
	StopWhenClean bool
	Dynamics      Dynamics
	Seed          uint64
}

// RoomsEnvironment is the single vacuum Q-learning environment
type RoomsEnvironment struct {
	config   RoomsEnvironmentConfig
	World    *World
	Location Room
	rand     *rand.Rand
	resets   int
}

var _ types.Environment = &RoomsEnvironment{}

func NewRoomsEnvironment(config RoomsEnvironmentConfig) *RoomsEnvironment {
	if len(config.Rooms) == 0 {
		if config.Initial != nil {
			config.Rooms = config.Initial.Rooms()
		} else {
			config.Rooms = ThreeRooms
		}
	}
	if config.Dynamics == nil {
		config.Dynamics = DecayDynamics{}
	}
	return &RoomsEnvironment{
		config: config,
		rand:   types.NewRand(config.Seed),
	}
}

func (e *RoomsEnvironment) Rand() *rand.Rand {
	return e.rand
}

func (e *RoomsEnvironment) Rooms() []Room {
	return e.config.Rooms
}

// State snapshots the current world
func (e *RoomsEnvironment) State() *RoomsState {
	return &RoomsState{
		Location: e.Location,
		Rooms:    e.World.Snapshot(),
	}
}

func (e *RoomsEnvironment) Reset() types.State {
	e.config.Dynamics.Reset(e, e.resets == 0)
	e.resets++
	return e.State()
}

func (e *RoomsEnvironment) Step(a types.Action) (types.State, float64, bool) {
	move, ok := a.(*Move)
	if !ok {
		return e.State(), 0, false
	}
	reward := e.config.Dynamics.Apply(e, move)
	done := e.config.StopWhenClean && e.World.AllClean()
	return e.State(), reward, done
}

// install puts the configured (or a random) world and location in place
func (e *RoomsEnvironment) install(dirtyProb float64) {
	if e.config.Initial != nil {
		e.World = e.config.Initial.Clone()
	} else {
		e.World, _ = RandomWorld(e.rand, e.config.Rooms, dirtyProb)
	}
	if e.config.Location != "" && e.World.Has(e.config.Location) {
		e.Location = e.config.Location
	} else {
		rooms := e.World.Rooms()
		e.Location = rooms[e.rand.Intn(len(rooms))]
	}
}

func (e *RoomsEnvironment) moveToRandomOther() {
	others := e.World.Others(e.Location)
	if len(others) == 0 {
		return
	}
	e.Location = others[e.rand.Intn(len(others))]
}

// DecayDynamics: every episode starts from a fresh random world.
// Cleaning a dirty room earns 10, cleaning a clean one -2. Moving jumps
// straight into a random dirty room for 5, or costs 10 when nothing is dirty.
type DecayDynamics struct{}

func (DecayDynamics) Name() string { return "decay" }

func (DecayDynamics) Reset(env *RoomsEnvironment, _ bool) {
	env.install(0.5)
}

func (DecayDynamics) Apply(env *RoomsEnvironment, a *Move) float64 {
	switch a.Kind {
	case "clean":
		if env.World.Clean(env.Location) {
			return 10
		}
		return -2
	case "move":
		dirty := env.World.DirtyRooms()
		if len(dirty) == 0 {
			return -10
		}
		env.Location = dirty[env.rand.Intn(len(dirty))]
		return 5
	}
	return 0
}

// CriticDynamics: the world is installed once and persists across episodes.
// Cleaning earns 10 on a dirty room and -5 on a clean one. Moving goes to a
// random other room and earns 3 while some room is dirty, -10 otherwise.
type CriticDynamics struct{}

func (CriticDynamics) Name() string { return "critic" }

func (CriticDynamics) Reset(env *RoomsEnvironment, first bool) {
	if first {
		env.install(0.5)
	}
}

func (CriticDynamics) Apply(env *RoomsEnvironment, a *Move) float64 {
	switch a.Kind {
	case "clean":
		if env.World.Clean(env.Location) {
			return 10
		}
		return -5
	case "move":
		anyDirty := env.World.AnyDirty()
		env.moveToRandomOther()
		if anyDirty {
			return 3
		}
		return -10
	}
	return 0
}

// ProblemGeneratorDynamics backs the learning agent with a critic and a
// problem generator: clean 10 / -5, move to a random other room 1 / -2.
// The world persists across episodes like CriticDynamics.
type ProblemGeneratorDynamics struct{}

func (ProblemGeneratorDynamics) Name() string { return "problem-generator" }

func (ProblemGeneratorDynamics) Reset(env *RoomsEnvironment, first bool) {
	if first {
		env.install(0.5)
	}
}

func (ProblemGeneratorDynamics) Apply(env *RoomsEnvironment, a *Move) float64 {
	switch a.Kind {
	case "clean":
		if env.World.Clean(env.Location) {
			return 10
		}
		return -5
	case "move":
		anyDirty := env.World.AnyDirty()
		env.moveToRandomOther()
		if anyDirty {
			return 1
		}
		return -2
	}
	return 0
}

// DynamicsByName looks up the reward scheme used by a trainer
func DynamicsByName(name string) (Dynamics, error) {
	switch name {
	case "decay":
		return DecayDynamics{}, nil
	case "critic":
		return CriticDynamics{}, nil
	case "problem-generator":
		return ProblemGeneratorDynamics{}, nil
	}
	return nil, fmt.Errorf("unknown dynamics %q", name)
}
