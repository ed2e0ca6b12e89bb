package multiagent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zeu5/vacuum-world/policies"
	"github.com/zeu5/vacuum-world/store"
	"github.com/zeu5/vacuum-world/types"
	"github.com/zeu5/vacuum-world/vacuum"
	"golang.org/x/exp/rand"
)

// JointAction is what one agent does in a joint step: "clean" or a move to
// a named room, hashed as "move-<room>"
type JointAction struct {
	Kind   string
	Target vacuum.Room
}

var _ types.Action = &JointAction{}

func (a *JointAction) Hash() string {
	if a.Kind == "move" {
		return "move-" + string(a.Target)
	}
	return a.Kind
}

func ParseJointAction(s string) *JointAction {
	if target, ok := strings.CutPrefix(s, "move-"); ok {
		return &JointAction{Kind: "move", Target: vacuum.Room(target)}
	}
	return &JointAction{Kind: s}
}

// JointActions is clean followed by a move to every room
func JointActions(rooms []vacuum.Room) []types.Action {
	out := []types.Action{&JointAction{Kind: "clean"}}
	for _, r := range rooms {
		out = append(out, &JointAction{Kind: "move", Target: r})
	}
	return out
}

// JointEnvironment is one world shared by several agents. Actions are applied
// in agent order.
type JointEnvironment struct {
	rooms     []vacuum.Room
	World     *vacuum.World
	Locations []vacuum.Room
	rand      *rand.Rand
}

func NewJointEnvironment(rooms []vacuum.Room, agents int, seed uint64) *JointEnvironment {
	return &JointEnvironment{
		rooms:     rooms,
		Locations: make([]vacuum.Room, agents),
		rand:      types.NewRand(seed),
	}
}

// Reset makes every room dirty and scatters the agents
func (e *JointEnvironment) Reset() error {
	w, err := vacuum.AllDirty(e.rooms)
	if err != nil {
		return err
	}
	e.World = w
	for i := range e.Locations {
		e.Locations[i] = e.rooms[e.rand.Intn(len(e.rooms))]
	}
	return nil
}

// Step applies one action per agent: clean dirty 10, clean clean -2,
// move -1, move to an unknown room -5
func (e *JointEnvironment) Step(actions []*JointAction) ([]float64, bool) {
	rewards := make([]float64, len(actions))
	for i, a := range actions {
		switch a.Kind {
		case "clean":
			if e.World.Clean(e.Locations[i]) {
				rewards[i] = 10
			} else {
				rewards[i] = -2
			}
		case "move":
			if e.World.Has(a.Target) {
				e.Locations[i] = a.Target
				rewards[i] = -1
			} else {
				rewards[i] = -5
			}
		}
	}
	return rewards, e.World.AllClean()
}

// agentView is the joint state as seen by one agent: every room plus its
// own location
type agentView struct {
	world    string
	location vacuum.Room
	actions  []types.Action
}

var _ types.State = &agentView{}

func (v *agentView) Hash() string {
	return v.world + "|" + string(v.location)
}

func (v *agentView) Actions() []types.Action {
	return v.actions
}

type QLearningConfig struct {
	Agents       int
	Rooms        []vacuum.Room
	Episodes     int
	MaxSteps     int // per episode, an episode otherwise runs until clean
	Alpha        float64
	Gamma        float64
	Epsilon      float64
	EpsilonDecay float64
	EpsilonMin   float64
	Seed         uint64
	Printer      *vacuum.Printer
}

// DefaultQLearningConfig is three agents over three rooms for 200 episodes
func DefaultQLearningConfig() QLearningConfig {
	return QLearningConfig{
		Agents:       3,
		Rooms:        vacuum.ThreeRooms,
		Episodes:     200,
		MaxSteps:     1000,
		Alpha:        0.1,
		Gamma:        0.9,
		Epsilon:      1.0,
		EpsilonDecay: 0.99,
		EpsilonMin:   0.05,
	}
}

// QLearningTrainer trains one Q-learner per agent on the average reward of
// the joint step. A communication table accumulates a tenth of that average
// per action and room state.
type QLearningTrainer struct {
	config   QLearningConfig
	env      *JointEnvironment
	names    []string
	policies []*policies.EpsilonGreedyPolicy
	actions  []types.Action
	comm     *policies.QTable
}

func NewQLearningTrainer(config QLearningConfig) *QLearningTrainer {
	if config.Agents <= 0 {
		config.Agents = 3
	}
	if len(config.Rooms) == 0 {
		config.Rooms = vacuum.ThreeRooms
	}
	if config.MaxSteps <= 0 {
		config.MaxSteps = 1000
	}
	t := &QLearningTrainer{
		config:   config,
		env:      NewJointEnvironment(config.Rooms, config.Agents, config.Seed),
		names:    make([]string, config.Agents),
		policies: make([]*policies.EpsilonGreedyPolicy, config.Agents),
		actions:  JointActions(config.Rooms),
		comm:     policies.NewQTable(),
	}
	for i := range t.policies {
		t.names[i] = fmt.Sprintf("agent%d", i)
		t.policies[i] = policies.NewEpsilonGreedyPolicy(policies.EpsilonGreedyConfig{
			Alpha:        config.Alpha,
			Gamma:        config.Gamma,
			Epsilon:      config.Epsilon,
			EpsilonDecay: config.EpsilonDecay,
			EpsilonMin:   config.EpsilonMin,
			Seed:         agentSeed(config.Seed, i),
		})
	}
	return t
}

func agentSeed(seed uint64, i int) uint64 {
	if seed == 0 {
		return 0
	}
	return seed + uint64(i) + 1
}

func (t *QLearningTrainer) Names() []string {
	return t.names
}

func (t *QLearningTrainer) Policy(i int) *policies.EpsilonGreedyPolicy {
	return t.policies[i]
}

func (t *QLearningTrainer) Comm() *policies.QTable {
	return t.comm
}

// Tables snapshots every agent's Q-table in agent order
func (t *QLearningTrainer) Tables() []policies.Table {
	out := make([]policies.Table, len(t.policies))
	for i, p := range t.policies {
		out[i] = p.QTable().Snapshot()
	}
	return out
}

func (t *QLearningTrainer) view(i int) *agentView {
	return &agentView{
		world:    t.env.World.Hash(),
		location: t.env.Locations[i],
		actions:  t.actions,
	}
}

func (t *QLearningTrainer) RunEpisode(episode int) (EpisodeResult, error) {
	if err := t.env.Reset(); err != nil {
		return EpisodeResult{}, err
	}
	totals := make([]float64, len(t.policies))
	steps := 0
	done := false
	for !done && steps < t.config.MaxSteps {
		worldKey := t.env.World.Hash()
		states := make([]*agentView, len(t.policies))
		acts := make([]*JointAction, len(t.policies))
		for i, p := range t.policies {
			states[i] = t.view(i)
			a, _ := p.NextAction(steps, states[i], t.actions)
			acts[i] = ParseJointAction(a.Hash())
		}

		var rewards []float64
		rewards, done = t.env.Step(acts)
		avg := 0.0
		for _, r := range rewards {
			avg += r
		}
		avg = avg / float64(len(rewards))

		for i, p := range t.policies {
			totals[i] += avg
			p.Update(steps, states[i], acts[i], avg, t.view(i))
			t.comm.Add(worldKey, acts[i].Hash(), 0.1*avg)
		}
		steps++
	}
	for _, p := range t.policies {
		p.UpdateIteration(episode, nil)
	}
	return EpisodeResult{
		Episode:  episode,
		Steps:    steps,
		AllClean: done,
		Names:    t.names,
		Rewards:  totals,
	}, nil
}

func (t *QLearningTrainer) Train(ctx context.Context) ([]EpisodeResult, error) {
	results := make([]EpisodeResult, 0, t.config.Episodes)
	for ep := 1; ep <= t.config.Episodes; ep++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}
		res, err := t.RunEpisode(ep)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if ep == 1 || ep%10 == 0 {
			t.config.Printer.Line("Episode %d: rewards = %s", ep, formatRewards(res))
		}
	}
	return results, nil
}

// Save writes every agent's table under a single key
func (t *QLearningTrainer) Save(ctx context.Context, s store.Store, key string) error {
	return s.Save(ctx, key, t.Tables())
}

// Load restores tables saved with Save. A missing key leaves the tables empty.
func (t *QLearningTrainer) Load(ctx context.Context, s store.Store, key string) error {
	var tables []policies.Table
	if err := s.Load(ctx, key, &tables); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	for i, table := range tables {
		if i < len(t.policies) {
			t.policies[i].QTable().Load(table)
		}
	}
	return nil
}

func formatRewards(res EpisodeResult) string {
	parts := make([]string, len(res.Names))
	for i, name := range res.Names {
		parts[i] = fmt.Sprintf("%s:%g", name, res.Rewards[i])
	}
	return strings.Join(parts, ", ")
}
