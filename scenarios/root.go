// Package scenarios wires every agent, trainer and demo into one command line
package scenarios

import (
	"context"
	"os"
	"os/signal"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/vacuum-world/config"
	"github.com/zeu5/vacuum-world/store"
	"github.com/zeu5/vacuum-world/vacuum"
)

var (
	episodes  int
	horizon   int
	saveDir   string
	seed      uint64
	noColor   bool
	redisAddr string
)

func GetRootCommand(defaults config.Config) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "vacuum",
		Short:        "Vacuum world agents, learners and demos",
		SilenceUsage: true,
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 0, "Number of episodes to run, 0 keeps the scenario default")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 0, "Horizon of each episode, 0 keeps the scenario default")
	rootCommand.PersistentFlags().StringVarP(&saveDir, "save", "s", defaults.SaveDir, "Save the result data in the specified folder")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", defaults.Seed, "Random seed, 0 seeds from the clock")
	rootCommand.PersistentFlags().BoolVar(&noColor, "no-color", defaults.NoColor, "Disable colored output")
	rootCommand.PersistentFlags().StringVar(&redisAddr, "redis", defaults.RedisAddr, "Keep value tables in redis at this address instead of the save folder")
	// adding the subcommands here
	rootCommand.AddCommand(SimpleReflexCommand())
	rootCommand.AddCommand(ModelReflexCommand())
	rootCommand.AddCommand(GoalCommand())
	rootCommand.AddCommand(UtilityCommand())
	rootCommand.AddCommand(LearnCommand())
	rootCommand.AddCommand(QLearnCriticCommand())
	rootCommand.AddCommand(QLearnCommand())
	rootCommand.AddCommand(CompareCommand())
	rootCommand.AddCommand(MASSharedCommand())
	rootCommand.AddCommand(MASQLearnCommand())
	rootCommand.AddCommand(MASCommand())
	rootCommand.AddCommand(StateSpaceCommand())
	rootCommand.AddCommand(RoutesCommand())
	rootCommand.AddCommand(ServeCommand())
	return rootCommand
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func newPrinter(cmd *cobra.Command) *vacuum.Printer {
	return vacuum.NewPrinter(cmd.OutOrStdout(), !noColor)
}

func openStore() (store.Store, error) {
	return store.New(path.Join(saveDir, "qtables"), redisAddr)
}

// withInterrupt runs f with a context that is cancelled on an interrupt
func withInterrupt(f func(ctx context.Context) error) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	doneCh := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		cancel()
	}()
	defer close(doneCh)

	return f(ctx)
}
