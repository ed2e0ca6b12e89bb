package agents

import (
	"encoding/json"

	"github.com/zeu5/vacuum-world/policies"
	"github.com/zeu5/vacuum-world/types"
	"github.com/zeu5/vacuum-world/vacuum"
	"golang.org/x/exp/rand"
)

const (
	// ExploreProb is how often the problem generator proposes a random action
	ExploreProb = 0.3
	// LearningRate of the running average kept per state and action
	LearningRate = 0.5
)

// LearningAgent learns state -> action values from a critic while a problem
// generator keeps it exploring. The state is the location together with the
// perceived status of the current room.
type LearningAgent struct {
	body
	model  model
	policy *policies.CriticPolicy
	rand   *rand.Rand
	total  float64
}

func NewLearningAgent(c Config) (*LearningAgent, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &LearningAgent{
		body:   newBody(c),
		model:  newModel(c.World),
		policy: policies.NewCriticPolicy(ExploreProb, LearningRate, vacuum.LocalView(), c.Seed),
		rand:   types.NewRand(types.DeriveSeed(c.Seed, 1)),
	}, nil
}

// Values are the learned state -> action values
func (a *LearningAgent) Values() policies.Table {
	return a.policy.QTable().Snapshot()
}

func (a *LearningAgent) TotalReward() float64 {
	return a.total
}

// critic judges an action against the perception taken before it
func critic(action *vacuum.Move, perceived vacuum.Status, w *vacuum.World) float64 {
	switch action {
	case vacuum.ActionClean:
		if perceived == vacuum.Dirty {
			return 10
		}
		return -5
	case vacuum.ActionMove:
		if w.AnyDirty() {
			return 1
		}
		return -2
	}
	return 0
}

func (a *LearningAgent) state() *vacuum.RoomsState {
	return &vacuum.RoomsState{Location: a.location, Rooms: a.world.Snapshot()}
}

func (a *LearningAgent) step() {
	s := a.perceive()
	a.model.update(a.location, s, a.printer)

	state := a.state()
	next, _ := a.policy.NextAction(0, state, vacuum.AllActions)
	action := next.(*vacuum.Move)
	a.printer.Decision(action.Kind)

	switch action {
	case vacuum.ActionClean:
		a.body.clean()
		a.model.rooms[a.location] = vacuum.Clean
		a.printer.Action("Cleaning %s", a.location)
	case vacuum.ActionMove:
		others := a.world.Others(a.location)
		if len(others) > 0 {
			a.moveTo(others[a.rand.Intn(len(others))])
		}
		a.printer.Action("Moving to %s", a.location)
	}

	reward := critic(action, s, a.world)
	a.total += reward
	a.policy.Update(0, state, action, reward, a.state())

	a.printer.Feedback(action.Kind, reward, a.total)
	if bs, err := json.Marshal(a.Values()); err == nil {
		a.printer.Line("[Q-values] %s", bs)
	}
}

func (a *LearningAgent) Run(steps int) Result {
	for i := 1; i <= steps; i++ {
		a.printer.Step(i)
		a.step()
	}
	a.printer.Success("\nSession finished")
	a.printer.Final(a.world)
	a.printer.Line("Total Reward: %g", a.total)
	return Result{Steps: steps, Total: a.total, World: a.world}
}
