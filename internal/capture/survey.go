// Package capture owns the in-progress survey: the floor collection and its
// mutation operations, the workflow state machine that gates them, and the
// interaction controller that turns canvas events into mutations.
package capture

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/dwellscan/survey-cli/internal/model"
)

// ErrNotFound indicates a reposition target that does not exist.
var ErrNotFound = eris.New("capture: point not found")

// Survey holds the ordered floor collection and the active-floor pointer.
// All point-append operations target the active floor. Survey performs no
// stage checking; the Workflow rejects stage-illegal calls before they get
// here.
type Survey struct {
	floors  []model.Floor
	active  int
	subs    map[int]func()
	nextSub int
}

// NewSurvey creates a survey with a single empty ground floor.
func NewSurvey() *Survey {
	return &Survey{
		floors: []model.Floor{model.NewFloor("Ground Floor", 0)},
		subs:   make(map[int]func()),
	}
}

// Subscribe registers a change callback, invoked after every mutation. The
// returned function cancels the subscription.
func (s *Survey) Subscribe(fn func()) func() {
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Survey) notify() {
	for _, fn := range s.subs {
		fn()
	}
}

// Floors returns a deep copy of the floor collection.
func (s *Survey) Floors() []model.Floor {
	return model.CloneFloors(s.floors)
}

// ActiveIndex returns the index of the active floor.
func (s *Survey) ActiveIndex() int { return s.active }

// Active returns a deep copy of the active floor.
func (s *Survey) Active() model.Floor {
	return s.floors[s.active].Clone()
}

func (s *Survey) activeRef() *model.Floor {
	return &s.floors[s.active]
}

// AppendBoundary appends a corner to the active floor's boundary.
func (s *Survey) AppendBoundary(p model.GeoPoint) {
	f := s.activeRef()
	f.Boundary = append(f.Boundary, p)
	s.notify()
}

// AppendSpace adds a classified marker to the active floor and returns it
// with its allocated id.
func (s *Survey) AppendSpace(category model.SpaceCategory, p model.GeoPoint) model.SpacePoint {
	sp := model.NewSpacePoint(category, p)
	f := s.activeRef()
	f.Spaces = append(f.Spaces, sp)
	s.notify()
	return sp
}

// UndoBoundary removes the most recently appended boundary corner. Returns
// false without error when the boundary is already empty.
func (s *Survey) UndoBoundary() bool {
	f := s.activeRef()
	if len(f.Boundary) == 0 {
		return false
	}
	f.Boundary = f.Boundary[:len(f.Boundary)-1]
	s.notify()
	return true
}

// UndoSpace removes the most recently added space marker. Returns false
// without error when the floor has no markers.
func (s *Survey) UndoSpace() bool {
	f := s.activeRef()
	if len(f.Spaces) == 0 {
		return false
	}
	f.Spaces = f.Spaces[:len(f.Spaces)-1]
	s.notify()
	return true
}

// RepositionBoundary moves the boundary corner at index to new coordinates,
// preserving its heading and capture time.
func (s *Survey) RepositionBoundary(index int, lat, lng float64) error {
	f := s.activeRef()
	if index < 0 || index >= len(f.Boundary) {
		return eris.Wrapf(ErrNotFound, "boundary index %d", index)
	}
	moved, err := f.Boundary[index].MovedTo(lat, lng)
	if err != nil {
		return err
	}
	f.Boundary[index] = moved
	s.notify()
	return nil
}

// RepositionSpace moves the marker with the given id, preserving its id,
// category, heading, and capture time.
func (s *Survey) RepositionSpace(id string, lat, lng float64) error {
	f := s.activeRef()
	for i := range f.Spaces {
		if f.Spaces[i].ID != id {
			continue
		}
		moved, err := f.Spaces[i].Location.MovedTo(lat, lng)
		if err != nil {
			return err
		}
		f.Spaces[i].Location = moved
		s.notify()
		return nil
	}
	return eris.Wrapf(ErrNotFound, "space id %s", id)
}

// AddFloor appends a new empty floor at the next sequential level, makes it
// active, and returns its index. An empty name gets a default derived from
// the level.
func (s *Survey) AddFloor(name string) int {
	level := 0
	for _, f := range s.floors {
		if f.Level >= level {
			level = f.Level + 1
		}
	}
	if name == "" {
		name = fmt.Sprintf("Floor %d", level)
	}
	s.floors = append(s.floors, model.NewFloor(name, level))
	s.active = len(s.floors) - 1
	s.notify()
	return s.active
}

// SwitchFloor changes the active-floor pointer.
func (s *Survey) SwitchFloor(index int) error {
	if index < 0 || index >= len(s.floors) {
		return eris.Wrapf(ErrNotFound, "floor index %d", index)
	}
	s.active = index
	s.notify()
	return nil
}

// Reset discards all floors and starts over with a single empty ground
// floor.
func (s *Survey) Reset() {
	s.floors = []model.Floor{model.NewFloor("Ground Floor", 0)}
	s.active = 0
	s.notify()
}

// Load replaces the survey content with a stored session's floors, used when
// resuming a saved session. An out-of-range active index falls back to 0.
func (s *Survey) Load(floors []model.Floor, active int) {
	if len(floors) == 0 {
		s.Reset()
		return
	}
	s.floors = model.CloneFloors(floors)
	if active < 0 || active >= len(s.floors) {
		active = 0
	}
	s.active = active
	s.notify()
}
