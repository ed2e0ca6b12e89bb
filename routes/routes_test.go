package routes

import (
	"bytes"
	"errors"
	"path"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestStampAndPrint(t *testing.T) {
	d := Simulated()
	d.Stamp(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	for _, r := range d.Records {
		if r.ExecutedAt != "2024-03-01 09:30:00" {
			t.Fatalf("unexpected timestamp %q", r.ExecutedAt)
		}
	}
	var out bytes.Buffer
	if err := d.Print(&out); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected a header and 4 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "Estimated_Time") || !strings.HasPrefix(lines[3], "2") {
		t.Errorf("unexpected table\n%s", out.String())
	}
}

func TestCSVRoundTrip(t *testing.T) {
	d := Simulated()
	d.Stamp(time.Now())
	file := path.Join(t.TempDir(), "out", "routes.csv")
	if err := d.Save(file); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d.Records, loaded.Records) {
		t.Errorf("expected %v, got %v", d.Records, loaded.Records)
	}
}

func TestReadCSVRejectsBadNumbers(t *testing.T) {
	in := strings.Join(Columns, ",") + "\nA*,a,b,far,30,Normal,now\n"
	if _, err := ReadCSV(strings.NewReader(in)); !errors.Is(err, ErrBadRecord) {
		t.Fatalf("expected ErrBadRecord, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("only,two\n")); !errors.Is(err, ErrBadRecord) {
		t.Fatalf("expected ErrBadRecord for a short row, got %v", err)
	}
}

func TestMeanTimeByAlgorithm(t *testing.T) {
	got := Simulated().MeanTimeByAlgorithm()
	want := []GroupMean{
		{Algorithm: "A*", Mean: 35, Count: 2},
		{Algorithm: "Dijkstra", Mean: 37, Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWithCondition(t *testing.T) {
	flooded := Simulated().WithCondition("Flooded")
	if flooded.Len() != 2 {
		t.Fatalf("expected 2 flooded routes, got %d", flooded.Len())
	}
	for _, r := range flooded.Records {
		if r.TotalDistance != 21 {
			t.Errorf("unexpected record %+v", r)
		}
	}
	if Simulated().WithCondition("Snow").Len() != 0 {
		t.Error("expected no records for an unknown condition")
	}
}
