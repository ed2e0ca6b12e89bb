package vacuum

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
)

var (
	ErrEmptyWorld    = errors.New("world has no rooms")
	ErrDuplicateRoom = errors.New("room defined twice")
	ErrUnknownRoom   = errors.New("unknown room")
	ErrInvalidStatus = errors.New("invalid room status")
)

// Status of a single room
type Status string

const (
	Dirty Status = "dirty"
	Clean Status = "clean"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case Dirty:
		return Dirty, nil
	case Clean:
		return Clean, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

type Room string

const (
	RoomA Room = "room-A"
	RoomB Room = "room-B"
	RoomC Room = "room-C"
)

// ThreeRooms is the room layout most of the scenarios use
var ThreeRooms = []Room{RoomA, RoomB, RoomC}

type RoomStatus struct {
	Room   Room
	Status Status
}

// World is an ordered set of rooms, each with a defined status.
// The order matters: agents that scan for "the first dirty room"
// scan in this order.
type World struct {
	rooms  []Room
	status map[Room]Status
}

func NewWorld(rooms ...RoomStatus) (*World, error) {
	if len(rooms) == 0 {
		return nil, ErrEmptyWorld
	}
	w := &World{
		rooms:  make([]Room, 0, len(rooms)),
		status: make(map[Room]Status, len(rooms)),
	}
	for _, r := range rooms {
		if _, ok := w.status[r.Room]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoom, r.Room)
		}
		if r.Status != Dirty && r.Status != Clean {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidStatus, r.Room, r.Status)
		}
		w.rooms = append(w.rooms, r.Room)
		w.status[r.Room] = r.Status
	}
	return w, nil
}

// MustWorld is NewWorld for fixed layouts known to be valid
func MustWorld(rooms ...RoomStatus) *World {
	w, err := NewWorld(rooms...)
	if err != nil {
		panic(err)
	}
	return w
}

// AllDirty returns a world where every room needs cleaning
func AllDirty(rooms []Room) (*World, error) {
	return uniform(rooms, Dirty)
}

func uniform(rooms []Room, s Status) (*World, error) {
	statuses := make([]RoomStatus, len(rooms))
	for i, r := range rooms {
		statuses[i] = RoomStatus{Room: r, Status: s}
	}
	return NewWorld(statuses...)
}

// RandomWorld marks each room dirty with probability dirtyProb
func RandomWorld(rng *rand.Rand, rooms []Room, dirtyProb float64) (*World, error) {
	statuses := make([]RoomStatus, len(rooms))
	for i, r := range rooms {
		s := Clean
		if rng.Float64() < dirtyProb {
			s = Dirty
		}
		statuses[i] = RoomStatus{Room: r, Status: s}
	}
	return NewWorld(statuses...)
}

// ParseWorld reads worlds written as "room-A=dirty,room-B=clean"
func ParseWorld(def string) (*World, error) {
	statuses := make([]RoomStatus, 0)
	for _, part := range strings.Split(def, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: missing status for %q", ErrInvalidStatus, part)
		}
		s, err := ParseStatus(value)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, RoomStatus{Room: Room(strings.TrimSpace(name)), Status: s})
	}
	return NewWorld(statuses...)
}

func (w *World) Rooms() []Room {
	out := make([]Room, len(w.rooms))
	copy(out, w.rooms)
	return out
}

func (w *World) Len() int {
	return len(w.rooms)
}

func (w *World) Has(r Room) bool {
	_, ok := w.status[r]
	return ok
}

func (w *World) Status(r Room) (Status, bool) {
	s, ok := w.status[r]
	return s, ok
}

func (w *World) Set(r Room, s Status) error {
	if _, ok := w.status[r]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoom, r)
	}
	if s != Dirty && s != Clean {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	w.status[r] = s
	return nil
}

// Clean marks the room clean and reports whether it was dirty before
func (w *World) Clean(r Room) bool {
	wasDirty := w.status[r] == Dirty
	if _, ok := w.status[r]; ok {
		w.status[r] = Clean
	}
	return wasDirty
}

func (w *World) IsDirty(r Room) bool {
	return w.status[r] == Dirty
}

func (w *World) AllClean() bool {
	for _, r := range w.rooms {
		if w.status[r] != Clean {
			return false
		}
	}
	return true
}

func (w *World) AnyDirty() bool {
	return !w.AllClean()
}

// FirstWith returns the first room, in world order, with the given status
func (w *World) FirstWith(s Status) (Room, bool) {
	for _, r := range w.rooms {
		if w.status[r] == s {
			return r, true
		}
	}
	return "", false
}

// FirstNot returns the first room whose status differs from s
func (w *World) FirstNot(s Status) (Room, bool) {
	for _, r := range w.rooms {
		if w.status[r] != s {
			return r, true
		}
	}
	return "", false
}

func (w *World) DirtyRooms() []Room {
	out := make([]Room, 0)
	for _, r := range w.rooms {
		if w.status[r] == Dirty {
			out = append(out, r)
		}
	}
	return out
}

// Others lists every room except r, in world order
func (w *World) Others(r Room) []Room {
	out := make([]Room, 0, len(w.rooms))
	for _, o := range w.rooms {
		if o != r {
			out = append(out, o)
		}
	}
	return out
}

// Next is the room after r in cyclic order. Unknown rooms map to the first room.
func (w *World) Next(r Room) Room {
	for i, o := range w.rooms {
		if o == r {
			return w.rooms[(i+1)%len(w.rooms)]
		}
	}
	return w.rooms[0]
}

func (w *World) Snapshot() []RoomStatus {
	out := make([]RoomStatus, len(w.rooms))
	for i, r := range w.rooms {
		out[i] = RoomStatus{Room: r, Status: w.status[r]}
	}
	return out
}

func (w *World) Map() map[Room]Status {
	out := make(map[Room]Status, len(w.rooms))
	for r, s := range w.status {
		out[r] = s
	}
	return out
}

func (w *World) Clone() *World {
	return MustWorld(w.Snapshot()...)
}

// Hash is deterministic and independent of any agent location
func (w *World) Hash() string {
	parts := make([]string, len(w.rooms))
	for i, r := range w.rooms {
		parts[i] = fmt.Sprintf("%s:%s", r, w.status[r])
	}
	return strings.Join(parts, ",")
}

func (w *World) String() string {
	parts := make([]string, len(w.rooms))
	for i, r := range w.rooms {
		parts[i] = fmt.Sprintf("[%s %s]", r, w.status[r])
	}
	return "[" + strings.Join(parts, " ") + "]"
}
