// Package routes is a small tabular walkthrough over route search results:
// build a dataset, stamp it, print it, write it as CSV, then group and filter.
package routes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/zeu5/vacuum-world/util"
	"gonum.org/v1/gonum/stat"
)

// TimeLayout of the execution timestamp column
const TimeLayout = "2006-01-02 15:04:05"

var ErrBadRecord = errors.New("malformed route record")

var Columns = []string{"Algorithm", "Start", "Goal", "Total_Distance", "Estimated_Time", "Condition", "Executed_At"}

// Record is one route search result
type Record struct {
	Algorithm     string
	Start         string
	Goal          string
	TotalDistance float64
	EstimatedTime float64
	Condition     string
	ExecutedAt    string
}

func (r Record) row() []string {
	return []string{
		r.Algorithm,
		r.Start,
		r.Goal,
		strconv.FormatFloat(r.TotalDistance, 'f', -1, 64),
		strconv.FormatFloat(r.EstimatedTime, 'f', -1, 64),
		r.Condition,
		r.ExecutedAt,
	}
}

type Dataset struct {
	Records []Record
}

// Simulated is A* and Dijkstra from Kebon Jeruk to Kota Tua, in normal
// traffic and with a flood at Slipi
func Simulated() *Dataset {
	return &Dataset{Records: []Record{
		{Algorithm: "A*", Start: "Kebon Jeruk", Goal: "Kota Tua", TotalDistance: 19, EstimatedTime: 30, Condition: "Normal"},
		{Algorithm: "Dijkstra", Start: "Kebon Jeruk", Goal: "Kota Tua", TotalDistance: 19, EstimatedTime: 33, Condition: "Normal"},
		{Algorithm: "A*", Start: "Kebon Jeruk", Goal: "Kota Tua", TotalDistance: 21, EstimatedTime: 40, Condition: "Flooded at Slipi"},
		{Algorithm: "Dijkstra", Start: "Kebon Jeruk", Goal: "Kota Tua", TotalDistance: 21, EstimatedTime: 41, Condition: "Flooded at Slipi"},
	}}
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

// Stamp sets the execution time column of every record
func (d *Dataset) Stamp(t time.Time) {
	ts := t.Format(TimeLayout)
	for i := range d.Records {
		d.Records[i].ExecutedAt = ts
	}
}

// Print writes the dataset as an aligned table with a row index
func (d *Dataset) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(Columns, "\t"))
	for i, r := range d.Records {
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(r.row(), "\t"))
	}
	return tw.Flush()
}

func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, r := range d.Records {
		if err := writer.Write(r.row()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Save writes the CSV file, creating its directory
func (d *Dataset) Save(file string) error {
	if err := util.EnsureDir(filepath.Dir(file)); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.WriteCSV(f)
}

func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Columns)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRecord, err)
	}
	d := &Dataset{Records: make([]Record, 0, len(rows))}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		distance, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d distance %q", ErrBadRecord, i, row[3])
		}
		estimate, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d estimated time %q", ErrBadRecord, i, row[4])
		}
		d.Records = append(d.Records, Record{
			Algorithm:     row[0],
			Start:         row[1],
			Goal:          row[2],
			TotalDistance: distance,
			EstimatedTime: estimate,
			Condition:     row[5],
			ExecutedAt:    row[6],
		})
	}
	return d, nil
}

func Load(file string) (*Dataset, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// GroupMean is the mean estimated time of one algorithm
type GroupMean struct {
	Algorithm string
	Mean      float64
	Count     int
}

// MeanTimeByAlgorithm groups by algorithm, sorted by name
func (d *Dataset) MeanTimeByAlgorithm() []GroupMean {
	groups := make(map[string][]float64)
	for _, r := range d.Records {
		groups[r.Algorithm] = append(groups[r.Algorithm], r.EstimatedTime)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]GroupMean, len(names))
	for i, name := range names {
		out[i] = GroupMean{
			Algorithm: name,
			Mean:      stat.Mean(groups[name], nil),
			Count:     len(groups[name]),
		}
	}
	return out
}

func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	out := &Dataset{Records: make([]Record, 0)}
	for _, r := range d.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// WithCondition keeps the records whose condition contains substr
func (d *Dataset) WithCondition(substr string) *Dataset {
	return d.Filter(func(r Record) bool {
		return strings.Contains(r.Condition, substr)
	})
}
