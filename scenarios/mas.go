package scenarios

import (
	"context"
	"fmt"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/vacuum-world/multiagent"
	"github.com/zeu5/vacuum-world/types"
)

func MASSharedCommand() *cobra.Command {
	var agentsCount int
	cmd := &cobra.Command{
		Use:   "mas-shared",
		Short: "Agents sharing rewards and a room status channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := multiagent.NewSharedSimulation(multiagent.SharedConfig{
				Agents:   agentsCount,
				Episodes: orDefault(episodes, 5),
				Steps:    orDefault(horizon, 10),
				Seed:     seed,
				Printer:  newPrinter(cmd),
			})
			return withInterrupt(func(ctx context.Context) error {
				_, err := sim.Run(ctx)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&agentsCount, "agents", 3, "Number of agents")
	return cmd
}

func MASQLearnCommand() *cobra.Command {
	var agentsCount int
	var key string
	cmd := &cobra.Command{
		Use:   "mas-qlearn",
		Short: "Joint Q-learning on the average reward with a communication table",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			config := multiagent.DefaultQLearningConfig()
			config.Agents = agentsCount
			config.Episodes = orDefault(episodes, config.Episodes)
			config.MaxSteps = orDefault(horizon, config.MaxSteps)
			config.Seed = seed
			config.Printer = newPrinter(cmd)
			trainer := multiagent.NewQLearningTrainer(config)

			return withInterrupt(func(ctx context.Context) error {
				if err := trainer.Load(ctx, s, key); err != nil {
					return fmt.Errorf("loading %s: %w", key, err)
				}
				if _, err := trainer.Train(ctx); err != nil {
					return err
				}
				if err := trainer.Save(ctx, s, key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Q-tables saved to %s (communication table: %d world states)\n", key, trainer.Comm().Len())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&agentsCount, "agents", 3, "Number of agents")
	cmd.Flags().StringVar(&key, "key", "mas_qtable", "Store key of the value tables")
	return cmd
}

func MASCommand() *cobra.Command {
	var agentsCount int
	var noComm bool
	var noSave bool
	var verbose bool
	cmd := &cobra.Command{
		Use:   "mas",
		Short: "Independent Q-learners with conflict handling and broadcast knowledge",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := multiagent.DefaultConflictConfig()
			config.Agents = agentsCount
			config.Episodes = orDefault(episodes, config.Episodes)
			config.Steps = orDefault(horizon, config.Steps)
			config.DisableComm = noComm
			config.Seed = seed
			config.Printer = newPrinter(cmd)
			config.Verbose = verbose
			if !noSave {
				s, err := openStore()
				if err != nil {
					return err
				}
				defer s.Close()
				config.Store = s
			}
			trainer := multiagent.NewConflictTrainer(config)

			return withInterrupt(func(ctx context.Context) error {
				history, err := trainer.Train(ctx)
				if err != nil {
					return err
				}
				return types.PlotSeries(
					path.Join(saveDir, "mas_rewards.png"),
					"MAS Agents Learning Progress",
					"Episode", "Total Reward per Episode",
					history.Names, history.Rewards,
				)
			})
		},
	}
	cmd.Flags().IntVar(&agentsCount, "agents", 3, "Number of agents")
	cmd.Flags().BoolVar(&noComm, "no-comm", false, "Disable broadcasting perceived dirty rooms")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Neither load nor save the agents' value tables")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every agent's action each step")
	return cmd
}
