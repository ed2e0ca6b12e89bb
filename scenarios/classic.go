package scenarios

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/vacuum-world/agents"
	"github.com/zeu5/vacuum-world/vacuum"
)

// worldFlags are the flags every classic agent takes
type worldFlags struct {
	world    string
	location string
}

func (w *worldFlags) register(cmd *cobra.Command, world, location string) {
	cmd.Flags().StringVarP(&w.world, "world", "w", world, "Initial rooms, e.g. room-A=dirty,room-B=clean")
	cmd.Flags().StringVarP(&w.location, "location", "l", location, "Start room")
}

func (w *worldFlags) config(cmd *cobra.Command) (agents.Config, error) {
	world, err := vacuum.ParseWorld(w.world)
	if err != nil {
		return agents.Config{}, err
	}
	return agents.Config{
		Location: vacuum.Room(w.location),
		World:    world,
		Printer:  newPrinter(cmd),
		Seed:     seed,
	}, nil
}

func SimpleReflexCommand() *cobra.Command {
	var flags worldFlags
	var steps int
	cmd := &cobra.Command{
		Use:   "reflex",
		Short: "Simple reflex agent: clean when dirty, otherwise move on",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.config(cmd)
			if err != nil {
				return err
			}
			a, err := agents.NewSimpleReflexAgent(c)
			if err != nil {
				return err
			}
			a.Run(steps)
			return nil
		},
	}
	flags.register(cmd, "room-A=dirty,room-B=dirty", "room-A")
	cmd.Flags().IntVar(&steps, "steps", 6, "Number of steps")
	return cmd
}

func ModelReflexCommand() *cobra.Command {
	var flags worldFlags
	var steps int
	var maxSteps int
	cmd := &cobra.Command{
		Use:   "model-reflex",
		Short: "Model-based reflex agent, runs until every room is clean unless --steps is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.config(cmd)
			if err != nil {
				return err
			}
			a, err := agents.NewModelBasedReflexAgent(c)
			if err != nil {
				return err
			}
			if steps > 0 {
				a.Run(steps)
				return nil
			}
			_, err = a.RunUntilClean(maxSteps)
			return err
		},
	}
	flags.register(cmd, "room-A=dirty,room-B=dirty", "room-A")
	cmd.Flags().IntVar(&steps, "steps", 0, "Run a fixed number of steps instead of until clean")
	cmd.Flags().IntVar(&maxSteps, "max-steps", agents.DefaultMaxSteps, "Step limit when running until clean")
	return cmd
}

func GoalCommand() *cobra.Command {
	var flags worldFlags
	var goal string
	var maxSteps int
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Goal-based agent, runs until every room has the goal status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.config(cmd)
			if err != nil {
				return err
			}
			g, err := vacuum.ParseStatus(goal)
			if err != nil {
				return err
			}
			a, err := agents.NewGoalBasedAgent(c, g)
			if err != nil {
				return err
			}
			_, err = a.RunUntilGoal(maxSteps)
			return err
		},
	}
	flags.register(cmd, "room-A=dirty,room-B=clean,room-C=clean", "room-A")
	cmd.Flags().StringVar(&goal, "goal", "clean", "Goal status of every room")
	cmd.Flags().IntVar(&maxSteps, "max-steps", agents.DefaultMaxSteps, "Step limit")
	return cmd
}

func UtilityCommand() *cobra.Command {
	var flags worldFlags
	var scheme string
	var steps int
	var stopWhenClean bool
	cmd := &cobra.Command{
		Use:   "utility",
		Short: "Utility-based agent with the simple or the complex utility scheme",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.config(cmd)
			if err != nil {
				return err
			}
			s, err := agents.UtilitySchemeByName(scheme)
			if err != nil {
				return err
			}
			a, err := agents.NewUtilityBasedAgent(c, s, stopWhenClean)
			if err != nil {
				return err
			}
			a.Run(steps)
			return nil
		},
	}
	flags.register(cmd, "room-A=dirty,room-B=dirty,room-C=dirty", "room-B")
	cmd.Flags().StringVar(&scheme, "scheme", "simple", "Utility scheme: simple or complex")
	cmd.Flags().IntVar(&steps, "steps", 8, "Number of steps")
	cmd.Flags().BoolVar(&stopWhenClean, "stop-when-clean", false, "Stop as soon as every room is clean")
	return cmd
}

func LearnCommand() *cobra.Command {
	var flags worldFlags
	var steps int
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Learning agent with a critic and a problem generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.config(cmd)
			if err != nil {
				return err
			}
			a, err := agents.NewLearningAgent(c)
			if err != nil {
				return err
			}
			a.Run(steps)
			return nil
		},
	}
	flags.register(cmd, "room-A=dirty,room-B=clean,room-C=dirty", "room-B")
	cmd.Flags().IntVar(&steps, "steps", 12, "Number of steps")
	return cmd
}
