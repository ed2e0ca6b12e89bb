package types

import (
	"path"

	"github.com/zeu5/vacuum-world/util"
)

// RewardAnalyzer computes the total reward collected in each episode
func RewardAnalyzer() Analyzer {
	return func(_ string, traces []*Trace) DataSet {
		rewards := make([]float64, len(traces))
		for i, t := range traces {
			rewards[i] = t.TotalReward()
		}
		return rewards
	}
}

// EpisodeLengthAnalyzer records the number of steps of each episode
func EpisodeLengthAnalyzer() Analyzer {
	return func(_ string, traces []*Trace) DataSet {
		lengths := make([]float64, len(traces))
		for i, t := range traces {
			lengths[i] = float64(t.Len())
		}
		return lengths
	}
}

// CoverageAnalyzer counts the unique states visited after each episode
func CoverageAnalyzer() Analyzer {
	return func(_ string, traces []*Trace) DataSet {
		uniqueStates := make(map[string]bool)
		numUniqueStates := make([]float64, 0, len(traces))
		for _, trace := range traces {
			for j := 0; j < trace.Len(); j++ {
				s, _, _, ns, _ := trace.Get(j)
				uniqueStates[s.Hash()] = true
				uniqueStates[ns.Hash()] = true
			}
			numUniqueStates = append(numUniqueStates, float64(len(uniqueStates)))
		}
		return numUniqueStates
	}
}

func toSeries(ds []DataSet) [][]float64 {
	series := make([][]float64, len(ds))
	for i, d := range ds {
		series[i] = d.([]float64)
	}
	return series
}

// PlotComparator draws every experiment's series as one line of a PNG plot
func PlotComparator(plotPath, name, title, yLabel string) Comparator {
	return func(names []string, ds []DataSet) error {
		return PlotSeries(path.Join(plotPath, name+".png"), title, "Episode", yLabel, names, toSeries(ds))
	}
}

// ChartComparator renders the same series as an interactive HTML chart
func ChartComparator(plotPath, name, title string) Comparator {
	return func(names []string, ds []DataSet) error {
		return ChartSeries(path.Join(plotPath, name+".html"), title, names, toSeries(ds))
	}
}

// JSONComparator stores the raw datasets keyed by experiment name
func JSONComparator(savePath, name string) Comparator {
	return func(names []string, ds []DataSet) error {
		out := make(map[string]DataSet, len(names))
		for i, n := range names {
			out[n] = ds[i]
		}
		return util.WriteJSON(path.Join(savePath, name+".json"), out)
	}
}

// MultiComparator fans the datasets out to several comparators
func MultiComparator(comparators ...Comparator) Comparator {
	return func(names []string, ds []DataSet) error {
		for _, c := range comparators {
			if err := c(names, ds); err != nil {
				return err
			}
		}
		return nil
	}
}
