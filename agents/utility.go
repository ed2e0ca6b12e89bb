package agents

import (
	"fmt"

	"github.com/zeu5/vacuum-world/vacuum"
)

// UtilityScheme scores the two actions of a utility-based agent
type UtilityScheme interface {
	Name() string
	// Clean scores cleaning a room perceived with the given status
	Clean(perceived vacuum.Status) float64
	// Move scores being at location after a move
	Move(w *vacuum.World, location vacuum.Room) float64
	// Target picks where a move goes, false when there is nowhere to go
	Target(w *vacuum.World, location vacuum.Room) (vacuum.Room, bool)
}

// SimpleUtility: clean dirty +10, clean clean -2, any move -1.
// Moves only ever head for the first dirty room.
type SimpleUtility struct{}

func (SimpleUtility) Name() string { return "simple" }

func (SimpleUtility) Clean(perceived vacuum.Status) float64 {
	if perceived == vacuum.Dirty {
		return 10
	}
	return -2
}

func (SimpleUtility) Move(_ *vacuum.World, _ vacuum.Room) float64 {
	return -1
}

func (SimpleUtility) Target(w *vacuum.World, _ vacuum.Room) (vacuum.Room, bool) {
	return w.FirstWith(vacuum.Dirty)
}

// ComplexUtility weighs gains and losses: clean dirty +10, clean clean -5.
// While anything is dirty a move is judged by the first room other than the
// current one (+3 if dirty, -4 if clean); moving in a clean world costs 10.
type ComplexUtility struct{}

func (ComplexUtility) Name() string { return "complex" }

func (ComplexUtility) Clean(perceived vacuum.Status) float64 {
	if perceived == vacuum.Dirty {
		return 10
	}
	return -5
}

func (ComplexUtility) Move(w *vacuum.World, location vacuum.Room) float64 {
	if !w.AnyDirty() {
		return -10
	}
	for _, r := range w.Others(location) {
		if w.IsDirty(r) {
			return 3
		}
		return -4
	}
	return 0
}

func (ComplexUtility) Target(w *vacuum.World, location vacuum.Room) (vacuum.Room, bool) {
	if r, ok := w.FirstWith(vacuum.Dirty); ok {
		return r, true
	}
	others := w.Others(location)
	if len(others) == 0 {
		return "", false
	}
	return others[0], true
}

func UtilitySchemeByName(name string) (UtilityScheme, error) {
	switch name {
	case "simple":
		return SimpleUtility{}, nil
	case "complex":
		return ComplexUtility{}, nil
	}
	return nil, fmt.Errorf("unknown utility scheme %q", name)
}

// UtilityBasedAgent cleans when cleaning scores at least as well as moving
type UtilityBasedAgent struct {
	body
	model         model
	scheme        UtilityScheme
	stopWhenClean bool
	total         float64
}

func NewUtilityBasedAgent(c Config, scheme UtilityScheme, stopWhenClean bool) (*UtilityBasedAgent, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if scheme == nil {
		scheme = SimpleUtility{}
	}
	return &UtilityBasedAgent{
		body:          newBody(c),
		model:         newModel(c.World),
		scheme:        scheme,
		stopWhenClean: stopWhenClean,
	}, nil
}

func (a *UtilityBasedAgent) TotalUtility() float64 {
	return a.total
}

func (a *UtilityBasedAgent) clean(perceived vacuum.Status) {
	u := a.scheme.Clean(perceived)
	a.total += u
	a.body.clean()
	a.model.rooms[a.location] = vacuum.Clean
	a.printer.Action("Cleaning %s (Utility: %g, Total: %g)", a.location, u, a.total)
}

func (a *UtilityBasedAgent) move() {
	target, ok := a.scheme.Target(a.world, a.location)
	if !ok {
		a.printer.Action("No room to go to.")
		return
	}
	a.moveTo(target)
	u := a.scheme.Move(a.world, a.location)
	a.total += u
	a.printer.Action("Moving to %s (Utility: %g, Total: %g)", a.location, u, a.total)
}

func (a *UtilityBasedAgent) Run(steps int) Result {
	a.printer.Line("Utility scheme: %s", a.scheme.Name())
	done := 0
	for i := 1; i <= steps; i++ {
		a.printer.Step(i)
		s := a.perceive()
		a.model.update(a.location, s, a.printer)

		if a.scheme.Clean(s) >= a.scheme.Move(a.world, a.location) {
			a.clean(s)
		} else {
			a.move()
		}
		done = i

		if a.stopWhenClean && a.world.AllClean() {
			a.printer.Success("\nAll rooms are clean, stopping early.")
			break
		}
	}
	a.printer.Line("\nSession finished")
	a.printer.Final(a.world)
	a.printer.Line("Total Utility: %g", a.total)
	return Result{Steps: done, Total: a.total, World: a.world}
}
