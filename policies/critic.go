package policies

import (
	"github.com/zeu5/vacuum-world/types"
	"golang.org/x/exp/rand"
)

// CriticPolicy pairs a problem generator, which proposes a random action
// with probability explore, with a learner that moves the value of the
// taken action towards the critic's reward by rate:
//
//	Q(s,a) <- Q(s,a) + rate*(r - Q(s,a))
//
// There is no bootstrapping on the next state.
type CriticPolicy struct {
	qTable     *QTable
	explore    float64
	rate       float64
	abstractor types.StateAbstractor
	rand       *rand.Rand
}

var _ types.Policy = &CriticPolicy{}

func NewCriticPolicy(explore, rate float64, abstractor types.StateAbstractor, seed uint64) *CriticPolicy {
	if abstractor == nil {
		abstractor = types.DefaultAbstractor()
	}
	return &CriticPolicy{
		qTable:     NewQTable(),
		explore:    explore,
		rate:       rate,
		abstractor: abstractor,
		rand:       types.NewRand(seed),
	}
}

func (c *CriticPolicy) QTable() *QTable {
	return c.qTable
}

func (c *CriticPolicy) Reset() {
	c.qTable = NewQTable()
}

func (c *CriticPolicy) UpdateIteration(_ int, _ *types.Trace) {}

func (c *CriticPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	// problem generator
	if c.rand.Float64() < c.explore {
		return actions[c.rand.Intn(len(actions))], true
	}
	stateKey := c.abstractor(state)
	if !c.qTable.HasState(stateKey) {
		return actions[c.rand.Intn(len(actions))], true
	}
	best := ""
	bestVal := 0.0
	for _, a := range actions {
		v, ok := c.qTable.Peek(stateKey, a.Hash())
		if !ok {
			continue
		}
		if best == "" || v > bestVal {
			best = a.Hash()
			bestVal = v
		}
	}
	for _, a := range actions {
		if a.Hash() == best {
			return a, true
		}
	}
	return actions[c.rand.Intn(len(actions))], true
}

func (c *CriticPolicy) Update(step int, state types.State, action types.Action, reward float64, _ types.State) {
	stateKey := c.abstractor(state)
	actionKey := action.Hash()
	old := c.qTable.Get(stateKey, actionKey, 0)
	c.qTable.Set(stateKey, actionKey, old+c.rate*(reward-old))
}
