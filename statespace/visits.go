package statespace

import (
	"path"

	"github.com/zeu5/vacuum-world/types"
	"github.com/zeu5/vacuum-world/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// VisitDataSet counts how often each cell was visited
type VisitDataSet struct {
	Visits map[int]map[int]int
	Width  int
	Height int
}

var _ plotter.GridXYZ = &VisitDataSet{}

func NewVisitDataSet(width, height int) *VisitDataSet {
	return &VisitDataSet{
		Visits: make(map[int]map[int]int),
		Width:  width,
		Height: height,
	}
}

func (v *VisitDataSet) Add(p Position) {
	if _, ok := v.Visits[p.X]; !ok {
		v.Visits[p.X] = make(map[int]int)
	}
	v.Visits[p.X][p.Y] += 1
	if p.X+1 > v.Width {
		v.Width = p.X + 1
	}
	if p.Y+1 > v.Height {
		v.Height = p.Y + 1
	}
}

func (v *VisitDataSet) Count(p Position) int {
	return v.Visits[p.X][p.Y]
}

func (v *VisitDataSet) Dims() (int, int) {
	return v.Width, v.Height
}

func (v *VisitDataSet) Z(c, r int) float64 {
	return float64(v.Visits[c][r])
}

func (v *VisitDataSet) X(c int) float64 {
	return float64(c)
}

func (v *VisitDataSet) Y(r int) float64 {
	return float64(r)
}

func (v *VisitDataSet) Min() float64 {
	return 0.0
}

func (v *VisitDataSet) Max() float64 {
	max := 0
	for _, vals := range v.Visits {
		for _, count := range vals {
			if count > max {
				max = count
			}
		}
	}
	return float64(max)
}

// VisitAnalyzer counts the visits of every state in the traces
func VisitAnalyzer(_ string, traces []*types.Trace) types.DataSet {
	dataSet := NewVisitDataSet(0, 0)
	for _, trace := range traces {
		for i := 0; i < trace.Len(); i++ {
			state, _, _, nextState, _ := trace.Get(i)
			if i == 0 {
				if s, ok := state.(*GridState); ok {
					dataSet.Add(s.Position)
				}
			}
			if s, ok := nextState.(*GridState); ok {
				dataSet.Add(s.Position)
			}
		}
	}
	return dataSet
}

// HeatMapComparator saves one visit heat map per experiment as
// <name>_visits.png and the raw counts as <name>_visits.json
func HeatMapComparator(plotPath string) types.Comparator {
	return func(names []string, ds []types.DataSet) error {
		for i, name := range names {
			dataSet, ok := ds[i].(*VisitDataSet)
			if !ok || dataSet.Width == 0 {
				continue
			}
			if err := util.WriteJSON(path.Join(plotPath, name+"_visits.json"), dataSet); err != nil {
				return err
			}
			p := plot.New()
			p.Title.Text = name
			p.Add(plotter.NewHeatMap(dataSet, palette.Heat(12, 1)))
			if err := util.EnsureDir(plotPath); err != nil {
				return err
			}
			if err := p.Save(4*vg.Inch, 4*vg.Inch, path.Join(plotPath, name+"_visits.png")); err != nil {
				return err
			}
		}
		return nil
	}
}
