package policies

import (
	"math"

	"github.com/zeu5/vacuum-world/types"
	"golang.org/x/exp/rand"
)

type EpsilonGreedyConfig struct {
	Alpha        float64 // learning rate
	Gamma        float64 // discount factor
	Epsilon      float64 // initial exploration probability
	EpsilonDecay float64 // multiplied in after each episode, 1 keeps epsilon fixed
	EpsilonMin   float64
	Seed         uint64
	Abstractor   types.StateAbstractor
}

// EpsilonGreedyPolicy is tabular Q-learning with epsilon-greedy exploration
type EpsilonGreedyPolicy struct {
	qTable     *QTable
	config     EpsilonGreedyConfig
	epsilon    float64
	abstractor types.StateAbstractor
	rand       *rand.Rand
}

var _ types.Policy = &EpsilonGreedyPolicy{}

func NewEpsilonGreedyPolicy(config EpsilonGreedyConfig) *EpsilonGreedyPolicy {
	if config.EpsilonDecay == 0 {
		config.EpsilonDecay = 1
	}
	abstractor := config.Abstractor
	if abstractor == nil {
		abstractor = types.DefaultAbstractor()
	}
	return &EpsilonGreedyPolicy{
		qTable:     NewQTable(),
		config:     config,
		epsilon:    config.Epsilon,
		abstractor: abstractor,
		rand:       types.NewRand(config.Seed),
	}
}

func (e *EpsilonGreedyPolicy) QTable() *QTable {
	return e.qTable
}

func (e *EpsilonGreedyPolicy) Epsilon() float64 {
	return e.epsilon
}

func (e *EpsilonGreedyPolicy) Reset() {
	e.qTable = NewQTable()
	e.epsilon = e.config.Epsilon
}

func (e *EpsilonGreedyPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if e.rand.Float64() < e.epsilon {
		return actions[e.rand.Intn(len(actions))], true
	}

	stateKey := e.abstractor(state)
	actionsMap := make(map[string]types.Action)
	actionKeys := make([]string, len(actions))
	for i, a := range actions {
		aKey := a.Hash()
		actionKeys[i] = aKey
		actionsMap[aKey] = a
	}
	best := e.qTable.BestAmong(stateKey, actionKeys, 0)
	if len(best) == 0 {
		return nil, false
	}
	return actionsMap[best[e.rand.Intn(len(best))]], true
}

// Update applies Q(s,a) <- Q(s,a) + alpha*(r + gamma*max Q(s',.) - Q(s,a))
func (e *EpsilonGreedyPolicy) Update(step int, state types.State, action types.Action, reward float64, nextState types.State) {
	nextMax := maxNext(e.qTable, e.abstractor(nextState), nextState.Actions())
	stateKey := e.abstractor(state)
	actionKey := action.Hash()
	old := e.qTable.Get(stateKey, actionKey, 0)
	e.qTable.Set(stateKey, actionKey, old+e.config.Alpha*(reward+e.config.Gamma*nextMax-old))
}

// UpdateIteration decays epsilon once per episode
func (e *EpsilonGreedyPolicy) UpdateIteration(_ int, _ *types.Trace) {
	e.epsilon = math.Max(e.config.EpsilonMin, e.epsilon*e.config.EpsilonDecay)
}

// maxNext is the best known value among the next state's actions, zero when
// none has been tried
func maxNext(q *QTable, stateKey string, actions []types.Action) float64 {
	if len(actions) == 0 {
		_, v := q.Max(stateKey, 0)
		return v
	}
	maxVal := math.Inf(-1)
	for _, a := range actions {
		v, ok := q.Peek(stateKey, a.Hash())
		if !ok {
			v = 0
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}
