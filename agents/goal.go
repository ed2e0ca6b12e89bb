package agents

import (
	"fmt"

	"github.com/zeu5/vacuum-world/vacuum"
)

// GoalBasedAgent works until every room has the goal status
type GoalBasedAgent struct {
	body
	model model
	goal  vacuum.Status
}

func NewGoalBasedAgent(c Config, goal vacuum.Status) (*GoalBasedAgent, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if goal == "" {
		goal = vacuum.Clean
	}
	if goal != vacuum.Clean && goal != vacuum.Dirty {
		return nil, fmt.Errorf("goal: %w: %q", vacuum.ErrInvalidStatus, goal)
	}
	return &GoalBasedAgent{
		body:  newBody(c),
		model: newModel(c.World),
		goal:  goal,
	}, nil
}

// GoalTest is true once every room has the goal status
func (a *GoalBasedAgent) GoalTest() bool {
	_, missing := a.world.FirstNot(a.goal)
	return !missing
}

func (a *GoalBasedAgent) step() {
	s := a.perceive()
	a.model.update(a.location, s, a.printer)
	if s != a.goal {
		a.clean()
		a.model.rooms[a.location] = vacuum.Clean
		a.printer.Action("Cleaning %s", a.location)
		return
	}
	if r, ok := a.world.FirstNot(a.goal); ok {
		a.moveTo(r)
		a.printer.Action("Moving to %s", a.location)
		return
	}
	a.printer.Action("No room left to go to.")
}

func (a *GoalBasedAgent) RunUntilGoal(maxSteps int) (Result, error) {
	limit := stepLimit(maxSteps)
	step := 0
	for !a.GoalTest() {
		if step >= limit {
			return Result{Steps: step, World: a.world}, ErrStepLimit
		}
		step++
		a.printer.Step(step)
		a.step()
	}
	a.printer.Success("\nGoal reached: every room is %s!", a.goal)
	a.printer.Final(a.world)
	return Result{Steps: step, World: a.world}, nil
}
