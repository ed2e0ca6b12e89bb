package policies

import (
	"math"
	"sort"

	"github.com/zeu5/vacuum-world/util"
)

// Table is the plain form of a Q-table, state -> action -> value
type Table map[string]map[string]float64

type QTable struct {
	table Table
}

func NewQTable() *QTable {
	return &QTable{
		table: make(Table),
	}
}

// Get returns the stored value, initializing it to def when absent
func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

// Peek returns the stored value without initializing it
func (q *QTable) Peek(state, action string) (float64, bool) {
	if _, ok := q.table[state]; !ok {
		return 0, false
	}
	val, ok := q.table[state][action]
	return val, ok
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

// Add increments the value, absent entries start at zero
func (q *QTable) Add(state, action string, delta float64) {
	q.Set(state, action, q.Get(state, action, 0)+delta)
}

func (q *QTable) HasState(state string) bool {
	vals, ok := q.table[state]
	return ok && len(vals) > 0
}

// Max over the actions known for the state, def when the state is unknown.
// Ties resolve to the lexicographically smallest action.
func (q *QTable) Max(state string, def float64) (string, float64) {
	vals, ok := q.table[state]
	if !ok || len(vals) == 0 {
		return "", def
	}
	actions := make([]string, 0, len(vals))
	for a := range vals {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	maxAction := ""
	maxVal := math.Inf(-1)
	for _, a := range actions {
		if vals[a] > maxVal {
			maxAction = a
			maxVal = vals[a]
		}
	}
	return maxAction, maxVal
}

// MaxAmong restricts the max to the given actions, unknown ones count as def.
// The first action in the given order wins ties.
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	maxAction := ""
	maxVal := math.Inf(-1)
	for _, a := range actions {
		val := q.Get(state, a, def)
		if val > maxVal {
			maxAction = a
			maxVal = val
		}
	}
	return maxAction, maxVal
}

// BestAmong lists every action that reaches the max value
func (q *QTable) BestAmong(state string, actions []string, def float64) []string {
	_, maxVal := q.MaxAmong(state, actions, def)
	best := make([]string, 0, len(actions))
	for _, a := range actions {
		if q.Get(state, a, def) == maxVal {
			best = append(best, a)
		}
	}
	return best
}

func (q *QTable) Len() int {
	size := 0
	for _, vals := range q.table {
		size += len(vals)
	}
	return size
}

// Snapshot copies the table out
func (q *QTable) Snapshot() Table {
	out := make(Table, len(q.table))
	for s, vals := range q.table {
		out[s] = make(map[string]float64, len(vals))
		for a, v := range vals {
			out[s][a] = v
		}
	}
	return out
}

// Load replaces the contents with a copy of t
func (q *QTable) Load(t Table) {
	q.table = make(Table, len(t))
	for s, vals := range t {
		q.table[s] = make(map[string]float64, len(vals))
		for a, v := range vals {
			q.table[s][a] = v
		}
	}
}

func (q *QTable) Record(filePath string) error {
	return util.WriteJSON(filePath, q.table)
}
