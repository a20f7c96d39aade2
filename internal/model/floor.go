package model

import (
	"time"

	"github.com/google/uuid"
)

// SpacePoint is a classified interior marker. ID is assigned at creation and
// stable for the marker's lifetime; it is the sole key for reposition and
// removal.
type SpacePoint struct {
	ID       string        `json:"id"`
	Category SpaceCategory `json:"category"`
	Location GeoPoint      `json:"location"`
}

// NewSpacePoint allocates an id and binds a category to a captured location.
func NewSpacePoint(category SpaceCategory, location GeoPoint) SpacePoint {
	return SpacePoint{
		ID:       uuid.NewString(),
		Category: category,
		Location: location,
	}
}

// Floor is one level of the surveyed building. Boundary order is
// semantically meaningful: it defines the polygon winding, and the polygon
// is implicitly closed from the last vertex back to the first. Spaces are
// kept in insertion order so "undo last" is well defined, but their order
// carries no geometric meaning.
type Floor struct {
	ID       string       `json:"id"`
	Level    int          `json:"level"`
	Name     string       `json:"name"`
	Boundary []GeoPoint   `json:"boundary"`
	Spaces   []SpacePoint `json:"spaces"`
}

// NewFloor creates an empty floor. Level 0 is the ground floor.
func NewFloor(name string, level int) Floor {
	return Floor{
		ID:    uuid.NewString(),
		Level: level,
		Name:  name,
	}
}

// Clone returns a deep copy of the floor.
func (f Floor) Clone() Floor {
	c := f
	c.Boundary = append([]GeoPoint(nil), f.Boundary...)
	c.Spaces = append([]SpacePoint(nil), f.Spaces...)
	return c
}

// Points returns the boundary vertices and space locations combined, the
// point set the projection window is derived from.
func (f Floor) Points() []GeoPoint {
	pts := make([]GeoPoint, 0, len(f.Boundary)+len(f.Spaces))
	pts = append(pts, f.Boundary...)
	for _, s := range f.Spaces {
		pts = append(pts, s.Location)
	}
	return pts
}

// Session is an ordered collection of floors under survey. Floor order is
// display order, not necessarily level order. Exactly one floor is active;
// all point-append operations target it.
type Session struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Floors      []Floor   `json:"floors"`
	ActiveFloor int       `json:"active_floor"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSession creates a session with a single empty ground floor.
func NewSession(name string) Session {
	now := time.Now().UTC()
	return Session{
		ID:        uuid.NewString(),
		Name:      name,
		Floors:    []Floor{NewFloor("Ground Floor", 0)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	c := s
	c.Floors = make([]Floor, len(s.Floors))
	for i, f := range s.Floors {
		c.Floors[i] = f.Clone()
	}
	return c
}

// CloneFloors deep-copies just the floor collection, used to isolate
// analysis input from later edits.
func CloneFloors(floors []Floor) []Floor {
	out := make([]Floor, len(floors))
	for i, f := range floors {
		out[i] = f.Clone()
	}
	return out
}
