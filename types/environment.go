package types

// Environment the agent interacts with
type Environment interface {
	// Reset called at the start of each episode
	Reset() State
	// Step applies the action and returns the next state,
	// the reward of the transition and whether the episode is over
	Step(Action) (State, float64, bool)
}

// State of the system that RL policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state
	Actions() []Action
}

// And Action that RL policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

// StateAbstractor maps a state to the key policies learn on
type StateAbstractor func(State) string

// DefaultAbstractor keys states by their full hash
func DefaultAbstractor() StateAbstractor {
	return func(s State) string {
		return s.Hash()
	}
}
