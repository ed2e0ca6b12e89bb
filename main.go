package main

import (
	"fmt"
	"os"

	"github.com/zeu5/vacuum-world/config"
	"github.com/zeu5/vacuum-world/scenarios"
)

// main entry point to all the scenarios
func main() {
	config.LoadEnvFile(config.DefaultEnvFiles...)
	defaults, err := config.FromEnv()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	// rootCommand defines a command line argument parser (some arguments and a subcommand to run)
	rootCommand := scenarios.GetRootCommand(defaults)
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
