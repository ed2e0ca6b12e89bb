package vacuum

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/zeu5/vacuum-world/types"
)

func TestNewWorldValidation(t *testing.T) {
	tests := []struct {
		name  string
		rooms []RoomStatus
		err   error
	}{
		{"empty", nil, ErrEmptyWorld},
		{"duplicate", []RoomStatus{{RoomA, Dirty}, {RoomA, Clean}}, ErrDuplicateRoom},
		{"bad status", []RoomStatus{{RoomA, Status("wet")}}, ErrInvalidStatus},
		{"ok", []RoomStatus{{RoomA, Dirty}, {RoomB, Clean}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWorld(tt.rooms...)
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestParseWorld(t *testing.T) {
	w, err := ParseWorld("room-A=dirty, room-B=Clean,room-C=dirty")
	if err != nil {
		t.Fatal(err)
	}
	if w.Len() != 3 {
		t.Fatalf("expected 3 rooms, got %d", w.Len())
	}
	if s, _ := w.Status(RoomB); s != Clean {
		t.Errorf("room-B should be clean")
	}
	if _, err := ParseWorld("room-A"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected invalid status error, got %v", err)
	}
	if _, err := ParseWorld(""); !errors.Is(err, ErrEmptyWorld) {
		t.Errorf("expected empty world error, got %v", err)
	}
}

func TestWorldQueries(t *testing.T) {
	w := MustWorld(RoomStatus{RoomA, Clean}, RoomStatus{RoomB, Dirty}, RoomStatus{RoomC, Dirty})

	if r, ok := w.FirstWith(Dirty); !ok || r != RoomB {
		t.Errorf("first dirty should be room-B, got %s", r)
	}
	if w.Next(RoomC) != RoomA || w.Next(RoomA) != RoomB {
		t.Errorf("next should cycle through rooms")
	}
	if others := w.Others(RoomB); len(others) != 2 || others[0] != RoomA || others[1] != RoomC {
		t.Errorf("unexpected others %v", others)
	}
	if !w.Clean(RoomB) {
		t.Errorf("room-B was dirty")
	}
	if w.Clean(RoomB) {
		t.Errorf("room-B is already clean")
	}
	if err := w.Set(Room("room-Z"), Dirty); !errors.Is(err, ErrUnknownRoom) {
		t.Errorf("expected unknown room, got %v", err)
	}
	w.Clean(RoomC)
	if !w.AllClean() || w.AnyDirty() {
		t.Errorf("all rooms should be clean")
	}
	if w.String() != "[[room-A clean] [room-B clean] [room-C clean]]" {
		t.Errorf("unexpected string %s", w.String())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	w := MustWorld(RoomStatus{RoomA, Dirty})
	c := w.Clone()
	c.Clean(RoomA)
	if !w.IsDirty(RoomA) {
		t.Errorf("clone shares state with the original")
	}
}

func TestRandomWorldExtremes(t *testing.T) {
	rng := types.NewRand(1)
	w, err := RandomWorld(rng, ThreeRooms, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(w.DirtyRooms()) != 3 {
		t.Errorf("probability 1 should dirty every room")
	}
	w, _ = RandomWorld(rng, ThreeRooms, 0)
	if !w.AllClean() {
		t.Errorf("probability 0 should leave every room clean")
	}
}

func TestPrinterWithoutColors(t *testing.T) {
	buf := new(bytes.Buffer)
	p := NewPrinter(buf, false)
	p.Step(1)
	p.Perception(RoomA, Dirty)
	p.Feedback("clean", 10, 10)
	out := buf.String()
	for _, want := range []string{"--- Step 1 ---", "[Perception] Agent is in room-A, status: dirty", "Reward=10, Total=10"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}

	var nilPrinter *Printer
	nilPrinter.Step(1)
	nilPrinter.Action("nothing %d", 1)
}
