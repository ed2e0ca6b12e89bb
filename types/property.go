package types

// Condition is a predicate on a single transition (state, action, nextState)
type Condition func(State, Action, State) bool

// Property is satisfied by a trace as soon as one transition meets the condition
type Property struct {
	Name      string
	Condition Condition
}

func NewProperty(name string, cond Condition) *Property {
	return &Property{Name: name, Condition: cond}
}

// Check returns the shortest prefix that satisfies the property
func (p *Property) Check(t *Trace) (*Trace, bool) {
	for i := 0; i < t.Len(); i++ {
		s, a, _, ns, _ := t.Get(i)
		if p.Condition(s, a, ns) {
			prefix, _ := t.GetPrefix(i + 1)
			return prefix, true
		}
	}
	return nil, false
}
