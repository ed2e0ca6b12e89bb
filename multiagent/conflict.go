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

var (
	ActionIdle = &vacuum.Move{Kind: "idle"}
	// ConflictActions are the choices of an independent learner, the target
	// of a move is picked afterwards
	ConflictActions = []types.Action{vacuum.ActionClean, vacuum.ActionMove, ActionIdle}
)

// Intent is an agent's resolved choice for a joint step
type Intent struct {
	Kind   string
	Target vacuum.Room // empty for a move picks a random other room
}

// ConflictEnvironment resolves simultaneous actions. Moves go first: when
// several agents head for the same room one of them, at random, gets in and
// the rest pay 3. Then cleans: one random cleaner of a dirty room earns 10
// and the others pay 5, everyone cleaning a clean room pays 4. Idling costs 1.
type ConflictEnvironment struct {
	rooms     []vacuum.Room
	World     *vacuum.World
	Locations []vacuum.Room
	rand      *rand.Rand
}

func NewConflictEnvironment(rooms []vacuum.Room, agents int, seed uint64) *ConflictEnvironment {
	return &ConflictEnvironment{
		rooms:     rooms,
		Locations: make([]vacuum.Room, agents),
		rand:      types.NewRand(seed),
	}
}

func (e *ConflictEnvironment) Rand() *rand.Rand {
	return e.rand
}

// Reset draws a fresh world, each room dirty with probability dirtyProb
func (e *ConflictEnvironment) Reset(dirtyProb float64) error {
	w, err := vacuum.RandomWorld(e.rand, e.rooms, dirtyProb)
	if err != nil {
		return err
	}
	e.World = w
	return nil
}

func (e *ConflictEnvironment) Place(agent int, r vacuum.Room) {
	e.Locations[agent] = r
}

func (e *ConflictEnvironment) randomOther(r vacuum.Room) vacuum.Room {
	others := e.World.Others(r)
	if len(others) == 0 {
		return r
	}
	return others[e.rand.Intn(len(others))]
}

// group collects agent indices by room, keeping rooms in first-seen order
type group struct {
	order   []vacuum.Room
	members map[vacuum.Room][]int
}

func newGroup() *group {
	return &group{members: make(map[vacuum.Room][]int)}
}

func (g *group) add(r vacuum.Room, agent int) {
	if _, ok := g.members[r]; !ok {
		g.order = append(g.order, r)
	}
	g.members[r] = append(g.members[r], agent)
}

// Step returns the reward and a short log line per agent, and whether every
// room is clean afterwards
func (e *ConflictEnvironment) Step(intents []Intent) ([]float64, []string, bool) {
	rewards := make([]float64, len(intents))
	info := make([]string, len(intents))

	moves := newGroup()
	for i, in := range intents {
		if in.Kind != "move" {
			continue
		}
		target := in.Target
		if target == "" {
			target = e.randomOther(e.Locations[i])
		}
		moves.add(target, i)
	}
	for _, target := range moves.order {
		agents := moves.members[target]
		winner := agents[e.rand.Intn(len(agents))]
		for _, i := range agents {
			if i == winner {
				e.Locations[i] = target
				info[i] += fmt.Sprintf("moved-> %s. ", target)
			} else {
				rewards[i] -= 3
				info[i] += fmt.Sprintf("move_conflict-> attempted %s, penalized. ", target)
			}
		}
	}

	cleaners := newGroup()
	for i, in := range intents {
		if in.Kind == "clean" {
			cleaners.add(e.Locations[i], i)
		}
	}
	for _, room := range cleaners.order {
		agents := cleaners.members[room]
		if !e.World.IsDirty(room) {
			for _, i := range agents {
				rewards[i] -= 4
				info[i] += fmt.Sprintf("cleaned_clean_room %s, penalized. ", room)
			}
			continue
		}
		winner := agents[e.rand.Intn(len(agents))]
		e.World.Clean(room)
		for _, i := range agents {
			if i == winner {
				rewards[i] += 10
				info[i] += fmt.Sprintf("cleaned %s. ", room)
			} else {
				rewards[i] -= 5
				info[i] += fmt.Sprintf("redundant_clean_attempt at %s, penalized. ", room)
			}
		}
	}

	for i, in := range intents {
		if in.Kind != "move" && in.Kind != "clean" {
			rewards[i] -= 1
			info[i] += "idle_penalty. "
		}
	}
	return rewards, info, e.World.AllClean()
}

// knowledgeView is what an independent learner keys its table on: its
// location, every room and the dirty rooms it has heard about
type knowledgeView struct {
	location vacuum.Room
	world    string
	known    []vacuum.Room
}

var _ types.State = &knowledgeView{}

func (v *knowledgeView) Hash() string {
	known := make([]string, len(v.known))
	for i, r := range v.known {
		known[i] = string(r)
	}
	return fmt.Sprintf("%s|%s|%s", v.location, v.world, strings.Join(known, ","))
}

func (v *knowledgeView) Actions() []types.Action {
	return ConflictActions
}

type ConflictConfig struct {
	Agents       int
	Rooms        []vacuum.Room
	Episodes     int
	Steps        int
	DirtyProb    float64
	Alpha        float64
	Gamma        float64
	Epsilon      float64
	EpsilonDecay float64
	EpsilonMin   float64
	// DisableComm stops agents from broadcasting what they perceive
	DisableComm bool
	Seed        uint64
	// Store, when set, provides the initial tables and receives them after
	// every episode under qtable_<agent>
	Store   store.Store
	Printer *vacuum.Printer
	// Verbose prints every agent's action and reward each step
	Verbose bool
}

func DefaultConflictConfig() ConflictConfig {
	return ConflictConfig{
		Agents:       3,
		Rooms:        vacuum.ThreeRooms,
		Episodes:     200,
		Steps:        30,
		DirtyProb:    0.5,
		Alpha:        0.2,
		Gamma:        0.9,
		Epsilon:      1.0,
		EpsilonDecay: 0.995,
		EpsilonMin:   0.05,
	}
}

// History is the total reward of every agent per episode
type History struct {
	Names   []string
	Rewards [][]float64
}

// ConflictTrainer runs independent Q-learners in a ConflictEnvironment
type ConflictTrainer struct {
	config   ConflictConfig
	env      *ConflictEnvironment
	board    *Board
	names    []string
	policies []*policies.EpsilonGreedyPolicy
	history  History
}

func NewConflictTrainer(config ConflictConfig) *ConflictTrainer {
	if config.Agents <= 0 {
		config.Agents = 3
	}
	if len(config.Rooms) == 0 {
		config.Rooms = vacuum.ThreeRooms
	}
	if config.Episodes <= 0 {
		config.Episodes = 200
	}
	if config.Steps <= 0 {
		config.Steps = 30
	}
	t := &ConflictTrainer{
		config:   config,
		env:      NewConflictEnvironment(config.Rooms, config.Agents, config.Seed),
		board:    NewBoard(),
		names:    make([]string, config.Agents),
		policies: make([]*policies.EpsilonGreedyPolicy, config.Agents),
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
	t.history = History{Names: t.names, Rewards: make([][]float64, config.Agents)}
	return t
}

func (t *ConflictTrainer) Names() []string {
	return t.names
}

func (t *ConflictTrainer) Policy(i int) *policies.EpsilonGreedyPolicy {
	return t.policies[i]
}

func (t *ConflictTrainer) History() History {
	return t.history
}

func tableKey(name string) string {
	return "qtable_" + name
}

// Load restores every agent's table from the store, skipping missing ones
func (t *ConflictTrainer) Load(ctx context.Context) error {
	if t.config.Store == nil {
		return nil
	}
	for i, name := range t.names {
		table := policies.Table{}
		err := t.config.Store.Load(ctx, tableKey(name), &table)
		if errors.Is(err, store.ErrNotFound) {
			continue
		} else if err != nil {
			return err
		}
		t.policies[i].QTable().Load(table)
	}
	return nil
}

func (t *ConflictTrainer) save(ctx context.Context) error {
	if t.config.Store == nil {
		return nil
	}
	for i, name := range t.names {
		if err := t.config.Store.Save(ctx, tableKey(name), t.policies[i].QTable().Snapshot()); err != nil {
			return err
		}
	}
	return nil
}

// share broadcasts every agent's perception and returns the union the agents
// integrate. Agents perceive every room.
func (t *ConflictTrainer) share() []vacuum.Room {
	t.board.Clear()
	if t.config.DisableComm {
		return nil
	}
	for _, name := range t.names {
		t.board.Broadcast(name, t.env.World.DirtyRooms())
	}
	return t.board.Known()
}

func (t *ConflictTrainer) view(i int, known []vacuum.Room) *knowledgeView {
	return &knowledgeView{
		location: t.env.Locations[i],
		world:    t.env.World.Hash(),
		known:    known,
	}
}

// target prefers a known dirty room other than the current one
func (t *ConflictTrainer) target(i int, known []vacuum.Room) vacuum.Room {
	here := t.env.Locations[i]
	candidates := make([]vacuum.Room, 0, len(known))
	for _, r := range known {
		if r != here {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) > 0 {
		return candidates[t.env.Rand().Intn(len(candidates))]
	}
	return t.env.randomOther(here)
}

func (t *ConflictTrainer) RunEpisode(ctx context.Context, episode int) (EpisodeResult, error) {
	if err := t.env.Reset(t.config.DirtyProb); err != nil {
		return EpisodeResult{}, err
	}
	for i := range t.names {
		t.env.Place(i, t.config.Rooms[t.env.Rand().Intn(len(t.config.Rooms))])
	}

	totals := make([]float64, len(t.names))
	steps := 0
	done := false
	for steps < t.config.Steps && !done {
		known := t.share()
		states := make([]*knowledgeView, len(t.names))
		chosen := make([]types.Action, len(t.names))
		intents := make([]Intent, len(t.names))
		for i, p := range t.policies {
			states[i] = t.view(i, known)
			a, _ := p.NextAction(steps, states[i], ConflictActions)
			chosen[i] = a
			intents[i] = Intent{Kind: a.Hash()}
			if a.Hash() == "move" {
				intents[i].Target = t.target(i, known)
			}
		}

		var rewards []float64
		var info []string
		rewards, info, done = t.env.Step(intents)
		for i, p := range t.policies {
			p.Update(steps, states[i], chosen[i], rewards[i], t.view(i, known))
			totals[i] += rewards[i]
			if t.config.Verbose {
				t.config.Printer.Line("[%s Step%d] action=%s reward=%g info=%s", t.names[i], steps, intents[i].Kind, rewards[i], info[i])
			}
		}
		steps++
	}

	for i, p := range t.policies {
		p.UpdateIteration(episode, nil)
		t.history.Rewards[i] = append(t.history.Rewards[i], totals[i])
	}
	if err := t.save(ctx); err != nil {
		return EpisodeResult{}, fmt.Errorf("saving tables: %w", err)
	}
	return EpisodeResult{
		Episode:  episode,
		Steps:    steps,
		AllClean: done,
		Names:    t.names,
		Rewards:  totals,
	}, nil
}

// Train loads any stored tables and runs every episode
func (t *ConflictTrainer) Train(ctx context.Context) (History, error) {
	if err := t.Load(ctx); err != nil {
		return t.history, fmt.Errorf("loading tables: %w", err)
	}
	for ep := 1; ep <= t.config.Episodes; ep++ {
		select {
		case <-ctx.Done():
			return t.history, ctx.Err()
		default:
		}
		res, err := t.RunEpisode(ctx, ep)
		if err != nil {
			return t.history, err
		}
		if ep == 1 || ep%10 == 0 {
			t.config.Printer.Line("Episode %d: rewards = %s", ep, formatRewards(res))
		}
	}
	return t.history, nil
}
