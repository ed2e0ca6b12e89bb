package policies

import (
	"math"

	"github.com/zeu5/vacuum-world/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftMaxPolicy samples actions with probability proportional to exp(Q/temperature)
// and learns with the same Q-learning update as EpsilonGreedyPolicy
type SoftMaxPolicy struct {
	qTable      *QTable
	alpha       float64
	gamma       float64
	temperature float64
	abstractor  types.StateAbstractor
	rand        rand.Source
}

var _ types.Policy = &SoftMaxPolicy{}

func NewSoftMaxPolicy(alpha, gamma, temperature float64, seed uint64) *SoftMaxPolicy {
	if temperature <= 0 {
		temperature = 1
	}
	return &SoftMaxPolicy{
		qTable:      NewQTable(),
		alpha:       alpha,
		gamma:       gamma,
		temperature: temperature,
		abstractor:  types.DefaultAbstractor(),
		rand:        types.NewSource(seed),
	}
}

func (s *SoftMaxPolicy) QTable() *QTable {
	return s.qTable
}

func (s *SoftMaxPolicy) Reset() {
	s.qTable = NewQTable()
}

func (s *SoftMaxPolicy) UpdateIteration(_ int, _ *types.Trace) {

}

func (s *SoftMaxPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	stateKey := s.abstractor(state)

	vals := make([]float64, len(actions))
	maxVal := math.Inf(-1)
	for i, action := range actions {
		vals[i] = s.qTable.Get(stateKey, action.Hash(), 0) / s.temperature
		if vals[i] > maxVal {
			maxVal = vals[i]
		}
	}
	// shift by the max so large values do not overflow
	sum := float64(0)
	weights := make([]float64, len(actions))
	for i, v := range vals {
		weights[i] = math.Exp(v - maxVal)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] = weights[i] / sum
	}
	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return nil, false
	}
	return actions[i], true
}

func (s *SoftMaxPolicy) Update(step int, state types.State, action types.Action, reward float64, nextState types.State) {
	nextMax := maxNext(s.qTable, s.abstractor(nextState), nextState.Actions())
	stateKey := s.abstractor(state)
	actionKey := action.Hash()
	curVal := s.qTable.Get(stateKey, actionKey, 0)
	s.qTable.Set(stateKey, actionKey, (1-s.alpha)*curVal+s.alpha*(reward+s.gamma*nextMax))
}
