package agents

import "github.com/zeu5/vacuum-world/vacuum"

// SimpleReflexAgent reacts to the current percept only:
// dirty -> clean, otherwise move on to the next room
type SimpleReflexAgent struct {
	body
}

func NewSimpleReflexAgent(c Config) (*SimpleReflexAgent, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &SimpleReflexAgent{body: newBody(c)}, nil
}

func (a *SimpleReflexAgent) step() {
	if a.perceive() == vacuum.Dirty {
		a.clean()
		a.printer.Action("Cleaning %s", a.location)
		return
	}
	a.moveTo(a.world.Next(a.location))
	a.printer.Action("Moving to %s", a.location)
}

func (a *SimpleReflexAgent) Run(steps int) Result {
	for i := 1; i <= steps; i++ {
		a.printer.Step(i)
		a.step()
	}
	a.printer.Line("\nDone.")
	a.printer.Final(a.world)
	return Result{Steps: steps, World: a.world}
}

// ModelBasedReflexAgent keeps an internal model of every room, updated from
// perception and from its own cleaning
type ModelBasedReflexAgent struct {
	body
	model model
}

func NewModelBasedReflexAgent(c Config) (*ModelBasedReflexAgent, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &ModelBasedReflexAgent{
		body:  newBody(c),
		model: newModel(c.World),
	}, nil
}

func (a *ModelBasedReflexAgent) Model() map[vacuum.Room]vacuum.Status {
	return a.model.Snapshot()
}

func (a *ModelBasedReflexAgent) step() {
	s := a.perceive()
	a.model.update(a.location, s, a.printer)
	if s == vacuum.Dirty {
		a.clean()
		a.model.rooms[a.location] = vacuum.Clean
		a.printer.Action("Cleaning %s", a.location)
		return
	}
	a.moveTo(a.world.Next(a.location))
	a.printer.Action("Moving to %s", a.location)
}

// Run performs a fixed number of steps
func (a *ModelBasedReflexAgent) Run(steps int) Result {
	for i := 1; i <= steps; i++ {
		a.printer.Step(i)
		a.step()
	}
	a.printer.Line("\nDone. Final environment:")
	a.printer.Line("%s", a.world)
	return Result{Steps: steps, World: a.world}
}

// RunUntilClean steps until no room is dirty
func (a *ModelBasedReflexAgent) RunUntilClean(maxSteps int) (Result, error) {
	limit := stepLimit(maxSteps)
	step := 0
	for a.world.AnyDirty() {
		if step >= limit {
			return Result{Steps: step, World: a.world}, ErrStepLimit
		}
		step++
		a.printer.Step(step)
		a.step()
	}
	a.printer.Success("\nAll rooms are clean")
	a.printer.Final(a.world)
	return Result{Steps: step, World: a.world}, nil
}
