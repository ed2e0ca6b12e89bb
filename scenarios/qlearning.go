package scenarios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/vacuum-world/policies"
	"github.com/zeu5/vacuum-world/store"
	"github.com/zeu5/vacuum-world/types"
	"github.com/zeu5/vacuum-world/util"
	"github.com/zeu5/vacuum-world/vacuum"
)

// loadTable fills q from the store, a missing key is not an error
func loadTable(ctx context.Context, s store.Store, key string, q *policies.QTable) (bool, error) {
	table := policies.Table{}
	err := s.Load(ctx, key, &table)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	q.Load(table)
	return true, nil
}

type DecayTrainerConfig struct {
	Episodes int
	Horizon  int
	Seed     uint64
	SaveDir  string
	Store    store.Store
	Key      string
	// Dynamics defaults to the decay reward scheme
	Dynamics vacuum.Dynamics
	Output   io.Writer
}

// TrainDecay is Q-learning with epsilon decay on a world that is redrawn at
// every episode. It resumes from and saves to the stored table and plots the
// reward of each episode.
func TrainDecay(ctx context.Context, c DecayTrainerConfig) ([]float64, error) {
	if c.Output == nil {
		c.Output = io.Discard
	}
	if c.Dynamics == nil {
		c.Dynamics = vacuum.DecayDynamics{}
	}
	fmt.Fprintf(c.Output, "Training with %s dynamics\n", c.Dynamics.Name())
	policy := policies.NewEpsilonGreedyPolicy(policies.EpsilonGreedyConfig{
		Alpha:        0.1,
		Gamma:        0.9,
		Epsilon:      1.0,
		EpsilonDecay: 0.99,
		EpsilonMin:   0.05,
		Seed:         types.DeriveSeed(c.Seed, 1),
	})
	if c.Store != nil {
		ok, err := loadTable(ctx, c.Store, c.Key, policy.QTable())
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", c.Key, err)
		}
		if ok {
			fmt.Fprintf(c.Output, "Q-table loaded from %s (size: %d)\n", c.Key, policy.QTable().Len())
		}
	}

	agent := types.NewAgent(&types.AgentConfig{
		Episodes: c.Episodes,
		Horizon:  c.Horizon,
		Policy:   policy,
		Environment: vacuum.NewRoomsEnvironment(vacuum.RoomsEnvironmentConfig{
			Rooms:         vacuum.ThreeRooms,
			StopWhenClean: true,
			Dynamics:      c.Dynamics,
			Seed:          types.DeriveSeed(c.Seed, 2),
		}),
	})

	rewards := make([]float64, 0, c.Episodes)
	for ep := 0; ep < c.Episodes; ep++ {
		select {
		case <-ctx.Done():
			return rewards, ctx.Err()
		default:
		}
		trace := agent.RunEpisode(ep)
		rewards = append(rewards, trace.TotalReward())
		fmt.Fprintf(c.Output, "Episode %d, Total Reward: %g, Epsilon: %.3f\n", ep+1, trace.TotalReward(), policy.Epsilon())
	}

	if c.Store != nil {
		if err := c.Store.Save(ctx, c.Key, policy.QTable().Snapshot()); err != nil {
			return rewards, err
		}
		fmt.Fprintf(c.Output, "Q-table saved to %s\n", c.Key)
	}
	if c.SaveDir != "" {
		if err := util.WriteJSON(path.Join(c.SaveDir, "qlearn_rewards.json"), rewards); err != nil {
			return rewards, err
		}
		if err := policy.QTable().Record(path.Join(c.SaveDir, "qlearn_qtable.json")); err != nil {
			return rewards, err
		}
		err := types.PlotSeries(
			path.Join(c.SaveDir, "qlearn_rewards.png"),
			"Learning Progress (Q-learning with Epsilon Decay)",
			"Episode", "Total Reward",
			[]string{"epsilon-decay"}, [][]float64{rewards},
		)
		if err != nil {
			return rewards, err
		}
	}
	return rewards, nil
}

func QLearnCommand() *cobra.Command {
	var key string
	var dynamics string
	cmd := &cobra.Command{
		Use:   "qlearn",
		Short: "Q-learning with epsilon decay over randomized worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := vacuum.DynamicsByName(dynamics)
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return withInterrupt(func(ctx context.Context) error {
				_, err := TrainDecay(ctx, DecayTrainerConfig{
					Episodes: orDefault(episodes, 200),
					Horizon:  orDefault(horizon, 20),
					Seed:     seed,
					SaveDir:  saveDir,
					Store:    s,
					Key:      key,
					Dynamics: d,
					Output:   cmd.OutOrStdout(),
				})
				return err
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "qtable", "Store key of the value table")
	cmd.Flags().StringVar(&dynamics, "dynamics", "decay", "Reward scheme: decay, critic or problem-generator")
	return cmd
}

// criticObserver prints the step by step trace of the critic learner and
// keeps the running total of the current episode
type criticObserver struct {
	printer *vacuum.Printer
	policy  *policies.EpsilonGreedyPolicy
	total   float64
}

func (o *criticObserver) observe(episode, step int, state types.State, action types.Action, reward float64, _ types.State) {
	if step == 0 {
		o.total = 0
		o.printer.Episode(episode + 1)
	}
	o.total += reward
	o.printer.Step(step + 1)
	if rs, ok := state.(*vacuum.RoomsState); ok {
		o.printer.Perception(rs.Location, rs.Current())
	}
	o.printer.Decision(action.Hash())
	o.printer.Feedback(action.Hash(), reward, o.total)
	if bs, err := json.Marshal(o.policy.QTable().Snapshot()); err == nil {
		o.printer.Line("[Q-Table] %s", bs)
	}
}

type CriticLearnerConfig struct {
	Episodes int
	Horizon  int
	World    *vacuum.World
	Location vacuum.Room
	Seed     uint64
	Printer  *vacuum.Printer
}

// RunCriticLearner is Q-learning (alpha 0.5, gamma 0.8, fixed epsilon 0.2)
// judged by a critic on a world that persists between episodes. Episodes end
// early once everything is clean.
func RunCriticLearner(ctx context.Context, c CriticLearnerConfig) ([]*types.Trace, *policies.QTable, error) {
	policy := policies.NewEpsilonGreedyPolicy(policies.EpsilonGreedyConfig{
		Alpha:   0.5,
		Gamma:   0.8,
		Epsilon: 0.2,
		Seed:    types.DeriveSeed(c.Seed, 1),
	})
	observer := &criticObserver{printer: c.Printer, policy: policy}
	agent := types.NewAgent(&types.AgentConfig{
		Episodes: c.Episodes,
		Horizon:  c.Horizon,
		Policy:   policy,
		Environment: vacuum.NewRoomsEnvironment(vacuum.RoomsEnvironmentConfig{
			Initial:       c.World,
			Location:      c.Location,
			StopWhenClean: true,
			Dynamics:      vacuum.CriticDynamics{},
			Seed:          types.DeriveSeed(c.Seed, 2),
		}),
		Observer: observer.observe,
	})

	traces := make([]*types.Trace, 0, c.Episodes)
	for ep := 0; ep < c.Episodes; ep++ {
		select {
		case <-ctx.Done():
			return traces, policy.QTable(), ctx.Err()
		default:
		}
		trace := agent.RunEpisode(ep)
		traces = append(traces, trace)
		if _, _, _, ns, ok := trace.Last(); ok {
			if rs, isRooms := ns.(*vacuum.RoomsState); isRooms && rs.AllClean() {
				c.Printer.Success("\nEvery room is clean, stopping early.")
			}
		}
		c.Printer.Line("\nEpisode %d finished, Total Reward: %g", ep+1, trace.TotalReward())
	}
	return traces, policy.QTable(), nil
}

func QLearnCriticCommand() *cobra.Command {
	var flags worldFlags
	cmd := &cobra.Command{
		Use:   "qlearn-critic",
		Short: "Q-learning with a critic on a world that persists between episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := vacuum.ParseWorld(flags.world)
			if err != nil {
				return err
			}
			return withInterrupt(func(ctx context.Context) error {
				_, _, err := RunCriticLearner(ctx, CriticLearnerConfig{
					Episodes: orDefault(episodes, 3),
					Horizon:  orDefault(horizon, 10),
					World:    world,
					Location: vacuum.Room(flags.location),
					Seed:     seed,
					Printer:  newPrinter(cmd),
				})
				return err
			})
		},
	}
	flags.register(cmd, "room-A=dirty,room-B=clean,room-C=dirty", "room-B")
	return cmd
}

// Compare runs the vacuum learners side by side on the decay environment
func Compare(ctx context.Context, episodes, horizon int, saveDir string, seed uint64, out io.Writer) error {
	c := types.NewComparison(&types.ComparisonConfig{
		Episodes:   episodes,
		Horizon:    horizon,
		RecordPath: saveDir,
		Seed:       seed,
		Output:     out,
	})
	c.AddAnalysis("rewards", types.RewardAnalyzer(), types.MultiComparator(
		types.PlotComparator(saveDir, "rewards", "Total reward per episode", "Total Reward"),
		types.ChartComparator(saveDir, "rewards", "Total reward per episode"),
		types.JSONComparator(saveDir, "rewards"),
	))
	c.AddAnalysis("lengths", types.EpisodeLengthAnalyzer(), types.PlotComparator(saveDir, "lengths", "Steps per episode", "Steps"))
	c.AddAnalysis("coverage", types.CoverageAnalyzer(), types.PlotComparator(saveDir, "coverage", "Distinct states visited", "States"))

	env := func(n int) types.Environment {
		return vacuum.NewRoomsEnvironment(vacuum.RoomsEnvironmentConfig{
			Rooms:         vacuum.ThreeRooms,
			StopWhenClean: true,
			Dynamics:      vacuum.DecayDynamics{},
			Seed:          types.DeriveSeed(seed, n),
		})
	}
	properties := func() []*types.Property {
		return []*types.Property{types.NewProperty("AllClean", vacuum.AllCleanReached())}
	}
	experiments := []struct {
		name   string
		policy types.Policy
	}{
		{"EpsilonGreedy", policies.NewEpsilonGreedyPolicy(policies.EpsilonGreedyConfig{
			Alpha: 0.1, Gamma: 0.9, Epsilon: 1.0, EpsilonDecay: 0.99, EpsilonMin: 0.05, Seed: types.DeriveSeed(seed, 10),
		})},
		{"EpsilonGreedyLocal", policies.NewEpsilonGreedyPolicy(policies.EpsilonGreedyConfig{
			Alpha: 0.1, Gamma: 0.9, Epsilon: 1.0, EpsilonDecay: 0.99, EpsilonMin: 0.05, Seed: types.DeriveSeed(seed, 11),
			Abstractor: vacuum.LocalView(),
		})},
		{"SoftMax", policies.NewSoftMaxPolicy(0.1, 0.9, 1.0, types.DeriveSeed(seed, 12))},
		{"Critic", policies.NewCriticPolicy(0.3, 0.5, vacuum.LocalView(), types.DeriveSeed(seed, 13))},
		{"Random", types.NewRandomPolicy(types.DeriveSeed(seed, 14))},
	}
	for i, e := range experiments {
		c.AddExperiment(types.NewExperimentWithProperties(e.name, &types.AgentConfig{
			Episodes:    episodes,
			Horizon:     horizon,
			Policy:      e.policy,
			Environment: env(20 + i),
		}, properties()))
	}
	return c.Run(ctx)
}

func CompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare the learners on the epsilon decay environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInterrupt(func(ctx context.Context) error {
				return Compare(ctx, orDefault(episodes, 200), orDefault(horizon, 20), path.Join(saveDir, "compare"), seed, cmd.OutOrStdout())
			})
		},
	}
}
