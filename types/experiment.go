package types

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/google/uuid"
	"github.com/zeu5/vacuum-world/util"
)

// Experiment encapsulates the different parameters to configure an agent and analyze the traces
type Experiment struct {
	Name            string
	config          *AgentConfig
	Result          []*Trace
	Properties      []*Property
	PropertiesStats []int
}

func NewExperiment(name string, config *AgentConfig) *Experiment {
	return &Experiment{
		Name:            name,
		config:          config,
		Result:          make([]*Trace, 0),
		Properties:      make([]*Property, 0),
		PropertiesStats: make([]int, 0),
	}
}

func NewExperimentWithProperties(name string, config *AgentConfig, properties []*Property) *Experiment {
	e := NewExperiment(name, config)
	e.Properties = properties
	e.PropertiesStats = make([]int, len(properties))
	return e
}

func (e *Experiment) hasProperties() bool {
	return len(e.Properties) != 0
}

// Run the experiment for the specified number of episodes
// Additionally, for each episode, check if any of the properties have been satisfied
func (e *Experiment) Run(ctx context.Context, out io.Writer) error {
	fmt.Fprintf(out, "Running Experiment: %s\n", e.Name)
	agent := NewAgent(e.config)
	e.Result = make([]*Trace, 0, e.config.Episodes)
	for i := 0; i < e.config.Episodes; i++ {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "")
			return ctx.Err()
		default:
		}
		fmt.Fprintf(out, "\rExperiment: %s, Episode: %d/%d", e.Name, i+1, e.config.Episodes)
		trace := agent.RunEpisode(i)
		e.Result = append(e.Result, trace)
		for j, prop := range e.Properties {
			if _, ok := prop.Check(trace); ok {
				e.PropertiesStats[j] += 1
			}
		}
	}
	fmt.Fprintln(out, "")
	if e.hasProperties() {
		for i, count := range e.PropertiesStats {
			fmt.Fprintf(out, "Property %s satisfied in %d episodes\n", e.Properties[i].Name, count)
		}
	}
	return nil
}

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the traces of an experiment to a DataSet
type Analyzer func(string, []*Trace) DataSet

// Comparator differentiates between different datasets with associated names
type Comparator func([]string, []DataSet) error

type analysis struct {
	analyzer   Analyzer
	comparator Comparator
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Episodes   int
	Horizon    int
	RecordPath string // path to store the results, empty disables recording
	Seed       uint64
	Output     io.Writer
}

type Comparison struct {
	ID          string
	Experiments []*Experiment
	analyses    map[string]analysis
	cConfig     *ComparisonConfig
}

func NewComparison(config *ComparisonConfig) *Comparison {
	if config.Output == nil {
		config.Output = io.Discard
	}
	return &Comparison{
		ID:          uuid.New().String(),
		Experiments: make([]*Experiment, 0),
		analyses:    make(map[string]analysis),
		cConfig:     config,
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) AddAnalysis(name string, a Analyzer, cmp Comparator) {
	c.analyses[name] = analysis{analyzer: a, comparator: cmp}
}

// Run every experiment, then hand the analyzed datasets to the comparators.
// Analyses run in name order.
func (c *Comparison) Run(ctx context.Context) error {
	if c.cConfig.RecordPath != "" {
		if err := c.recordConfig(); err != nil {
			return err
		}
	}
	names := make([]string, len(c.Experiments))
	for i, e := range c.Experiments {
		if err := e.Run(ctx, c.cConfig.Output); err != nil {
			return fmt.Errorf("experiment %s: %w", e.Name, err)
		}
		names[i] = e.Name
	}

	analysisNames := make([]string, 0, len(c.analyses))
	for name := range c.analyses {
		analysisNames = append(analysisNames, name)
	}
	sort.Strings(analysisNames)
	for _, name := range analysisNames {
		a := c.analyses[name]
		datasets := make([]DataSet, len(c.Experiments))
		for i, e := range c.Experiments {
			datasets[i] = a.analyzer(e.Name, e.Result)
		}
		if err := a.comparator(names, datasets); err != nil {
			return fmt.Errorf("analysis %s: %w", name, err)
		}
	}
	return nil
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig
	if err := util.EnsureDir(cfg.RecordPath); err != nil {
		return err
	}

	out := make(map[string]interface{})
	out["id"] = c.ID
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["seed"] = cfg.Seed

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	analyses := make([]string, 0)
	for name := range c.analyses {
		analyses = append(analyses, name)
	}
	sort.Strings(analyses)
	out["analyzers"] = analyses

	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(cfg.RecordPath, "comparison_config.json"), bs, 0644)
}
