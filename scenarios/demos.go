package scenarios

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/vacuum-world/policies"
	"github.com/zeu5/vacuum-world/routes"
	"github.com/zeu5/vacuum-world/statespace"
	"github.com/zeu5/vacuum-world/types"
	"github.com/zeu5/vacuum-world/util"
)

func formatPath(p []statespace.Position) string {
	parts := make([]string, len(p))
	for i, pos := range p {
		parts[i] = pos.String()
	}
	return strings.Join(parts, " -> ")
}

// StateSpace lists and renders the grid state space, then optionally compares
// a random walk with a learner that has to reach the far corner
func StateSpace(ctx context.Context, width, height int, saveDir string, walk bool, out io.Writer) error {
	space, err := statespace.New(width, height)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "States (%d):\n", len(space.States()))
	for _, p := range space.States() {
		fmt.Fprintf(out, "  %s neighbours: %v\n", p, space.Neighbours(p))
	}
	fmt.Fprintf(out, "Edges: %d\n", space.NumEdges())
	edges := make([]string, 0, space.NumEdges())
	for _, e := range space.Edges() {
		edges = append(edges, fmt.Sprintf("%s %s", e[0], e[1]))
	}
	if err := util.WriteToFile(path.Join(saveDir, "state_space_edges.txt"), edges...); err != nil {
		return err
	}

	start := statespace.Position{X: 0, Y: 0}
	goal := statespace.Position{X: width - 1, Y: height - 1}
	shortest, err := space.ShortestPath(start, goal)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Shortest path %s -> %s: %s\n", start, goal, formatPath(shortest))

	file := path.Join(saveDir, "state_space.png")
	if err := space.Render(file, fmt.Sprintf("State space of a %dx%d grid", width, height)); err != nil {
		return err
	}
	fmt.Fprintf(out, "State space saved to %s\n", file)
	if !walk {
		return nil
	}

	walkDir := path.Join(saveDir, "walk")
	eps, hor := orDefault(episodes, 100), orDefault(horizon, 4*width*height)
	c := types.NewComparison(&types.ComparisonConfig{
		Episodes:   eps,
		Horizon:    hor,
		RecordPath: walkDir,
		Seed:       seed,
		Output:     out,
	})
	c.AddAnalysis("visits", statespace.VisitAnalyzer, statespace.HeatMapComparator(walkDir))
	c.AddAnalysis("lengths", types.EpisodeLengthAnalyzer(), types.PlotComparator(walkDir, "lengths", "Steps to the goal", "Steps"))
	properties := func() []*types.Property {
		return []*types.Property{types.NewProperty("GoalReached", statespace.GoalReached(goal))}
	}
	c.AddExperiment(types.NewExperimentWithProperties("Random", &types.AgentConfig{
		Episodes:    eps,
		Horizon:     hor,
		Policy:      types.NewRandomPolicy(types.DeriveSeed(seed, 1)),
		Environment: statespace.NewGridEnvironment(width, height, start, goal),
	}, properties()))
	c.AddExperiment(types.NewExperimentWithProperties("EpsilonGreedy", &types.AgentConfig{
		Episodes: eps,
		Horizon:  hor,
		Policy: policies.NewEpsilonGreedyPolicy(policies.EpsilonGreedyConfig{
			Alpha: 0.1, Gamma: 0.9, Epsilon: 1.0, EpsilonDecay: 0.97, EpsilonMin: 0.05, Seed: types.DeriveSeed(seed, 2),
		}),
		Environment: statespace.NewGridEnvironment(width, height, start, goal),
	}, properties()))
	return c.Run(ctx)
}

func StateSpaceCommand() *cobra.Command {
	var width, height int
	var walk bool
	cmd := &cobra.Command{
		Use:   "statespace",
		Short: "Build, list and draw the state space of a grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInterrupt(func(ctx context.Context) error {
				return StateSpace(ctx, width, height, path.Join(saveDir, "statespace"), walk, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 3, "Grid width")
	cmd.Flags().IntVar(&height, "height", 3, "Grid height")
	cmd.Flags().BoolVar(&walk, "walk", false, "Also compare a random and a learning walk to the far corner")
	return cmd
}

// Routes runs the tabular walkthrough over the route simulation results
func Routes(file, condition string, now time.Time, out io.Writer) error {
	d := routes.Simulated()
	d.Stamp(now)

	fmt.Fprintln(out, "=== Route simulation dataset ===")
	if err := d.Print(out); err != nil {
		return err
	}
	if err := d.Save(file); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nDataset saved to %s\n", file)

	fmt.Fprintln(out, "\nMean estimated travel time:")
	for _, g := range d.MeanTimeByAlgorithm() {
		fmt.Fprintf(out, "  %-10s %g\n", g.Algorithm, g.Mean)
	}

	fmt.Fprintf(out, "\nRoutes with condition %q:\n", condition)
	return d.WithCondition(condition).Print(out)
}

func RoutesCommand() *cobra.Command {
	var condition string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Tabular analysis of route search results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Routes(path.Join(saveDir, "route_dataset.csv"), condition, time.Now(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&condition, "condition", "Flooded", "Keep routes whose condition contains this text")
	return cmd
}
