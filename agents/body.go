// Package agents implements the classic vacuum-world agent archetypes:
// simple reflex, model-based reflex, goal-based, utility-based and a
// learning agent with a critic and a problem generator.
package agents

import (
	"errors"
	"fmt"

	"github.com/zeu5/vacuum-world/vacuum"
)

// DefaultMaxSteps bounds the run-until loops when no limit is given
const DefaultMaxSteps = 1000

var ErrStepLimit = errors.New("step limit reached")

// Config shared by every agent
type Config struct {
	Location vacuum.Room
	World    *vacuum.World
	Printer  *vacuum.Printer
	Seed     uint64
}

func (c *Config) validate() error {
	if c.World == nil {
		return vacuum.ErrEmptyWorld
	}
	if !c.World.Has(c.Location) {
		return fmt.Errorf("start location: %w: %s", vacuum.ErrUnknownRoom, c.Location)
	}
	return nil
}

// Result of a run
type Result struct {
	Steps int
	Total float64 // accumulated reward or utility, zero for agents without one
	World *vacuum.World
}

// body holds what every vacuum has: a location in a world, a sensor for
// the current room and the two effectors
type body struct {
	location vacuum.Room
	world    *vacuum.World
	printer  *vacuum.Printer
}

func newBody(c Config) body {
	return body{
		location: c.Location,
		world:    c.World,
		printer:  c.Printer,
	}
}

func (b *body) Location() vacuum.Room {
	return b.location
}

func (b *body) perceive() vacuum.Status {
	s, _ := b.world.Status(b.location)
	b.printer.Perception(b.location, s)
	return s
}

func (b *body) clean() bool {
	return b.world.Clean(b.location)
}

func (b *body) moveTo(r vacuum.Room) {
	b.location = r
}

// model is the internal room -> status map of model keeping agents
type model struct {
	rooms map[vacuum.Room]vacuum.Status
	order []vacuum.Room
}

func newModel(w *vacuum.World) model {
	return model{
		rooms: w.Map(),
		order: w.Rooms(),
	}
}

func (m model) update(r vacuum.Room, s vacuum.Status, p *vacuum.Printer) {
	m.rooms[r] = s
	p.ModelUpdate(r, s, m.rooms, m.order)
}

func (m model) Snapshot() map[vacuum.Room]vacuum.Status {
	out := make(map[vacuum.Room]vacuum.Status, len(m.rooms))
	for r, s := range m.rooms {
		out[r] = s
	}
	return out
}

func stepLimit(maxSteps int) int {
	if maxSteps <= 0 {
		return DefaultMaxSteps
	}
	return maxSteps
}
