package types

import (
	"time"

	"golang.org/x/exp/rand"
)

type Policy interface {
	// called at the end of each episode with the episode trace
	UpdateIteration(int, *Trace)
	NextAction(int, State, []Action) (Action, bool)
	// step, state, action, reward, nextState
	Update(int, State, Action, float64, State)
	Reset()
}

// NewSource seeds a source, seed 0 picks a time based seed
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewSource(seed)
}

// DeriveSeed gives every component its own stream of a fixed seed
func DeriveSeed(seed uint64, n int) uint64 {
	if seed == 0 {
		return 0
	}
	return seed*31 + uint64(n)
}

func NewRand(seed uint64) *rand.Rand {
	return rand.New(NewSource(seed))
}

type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

func NewRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{
		rand: NewRand(seed),
	}
}

func (r *RandomPolicy) Reset() {

}

func (r *RandomPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (r *RandomPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	i := r.rand.Intn(len(actions))
	return actions[i], true
}

func (r *RandomPolicy) Update(_ int, _ State, _ Action, _ float64, _ State) {}
