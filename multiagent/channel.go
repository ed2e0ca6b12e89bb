// Package multiagent runs several vacuums in one world: a shared reward
// simulation, joint Q-learning with a shared reward, and independent
// Q-learners that resolve conflicting moves and cleans.
package multiagent

import (
	"sort"
	"sync"

	"github.com/zeu5/vacuum-world/vacuum"
)

// Channel is the shared room -> status map agents post to
type Channel struct {
	mu    sync.Mutex
	rooms map[vacuum.Room]vacuum.Status
}

func NewChannel() *Channel {
	return &Channel{
		rooms: make(map[vacuum.Room]vacuum.Status),
	}
}

func (c *Channel) Post(r vacuum.Room, s vacuum.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[r] = s
}

func (c *Channel) Get(r vacuum.Room) (vacuum.Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.rooms[r]
	return s, ok
}

// BelievedDirty filters rooms to those nobody has reported clean
func (c *Channel) BelievedDirty(rooms []vacuum.Room) []vacuum.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]vacuum.Room, 0, len(rooms))
	for _, r := range rooms {
		if s, ok := c.rooms[r]; !ok || s == vacuum.Dirty {
			out = append(out, r)
		}
	}
	return out
}

func (c *Channel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms = make(map[vacuum.Room]vacuum.Status)
}

func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

// Board collects the dirty rooms broadcast by each agent in a round
type Board struct {
	mu       sync.Mutex
	messages map[string][]vacuum.Room
}

func NewBoard() *Board {
	return &Board{
		messages: make(map[string][]vacuum.Room),
	}
}

func (b *Board) Broadcast(agent string, dirty []vacuum.Room) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[agent] = append([]vacuum.Room(nil), dirty...)
}

// Known is the sorted union of every broadcast
func (b *Board) Known() []vacuum.Room {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := make(map[vacuum.Room]bool)
	for _, rooms := range b.messages {
		for _, r := range rooms {
			set[r] = true
		}
	}
	out := make([]vacuum.Room, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = make(map[string][]vacuum.Room)
}
