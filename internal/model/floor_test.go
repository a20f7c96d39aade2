package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPoint(t *testing.T, lat, lng float64) GeoPoint {
	t.Helper()
	p, err := NewGeoPoint(lat, lng, 0)
	require.NoError(t, err)
	return p
}

func TestNewFloor_StartsEmpty(t *testing.T) {
	f := NewFloor("Ground Floor", 0)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, 0, f.Level)
	assert.Empty(t, f.Boundary)
	assert.Empty(t, f.Spaces)
}

func TestNewSpacePoint_UniqueIDs(t *testing.T) {
	loc := mustPoint(t, 10, 10)
	a := NewSpacePoint(SpaceKitchen, loc)
	b := NewSpacePoint(SpaceKitchen, loc)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestFloor_Points_CombinesBoundaryAndSpaces(t *testing.T) {
	f := NewFloor("Ground Floor", 0)
	f.Boundary = append(f.Boundary, mustPoint(t, 10, 10), mustPoint(t, 10, 11))
	f.Spaces = append(f.Spaces, NewSpacePoint(SpaceKitchen, mustPoint(t, 10.5, 10.5)))

	pts := f.Points()
	require.Len(t, pts, 3)
	assert.Equal(t, 10.5, pts[2].Latitude)
}

func TestFloor_Clone_IsDeep(t *testing.T) {
	f := NewFloor("Ground Floor", 0)
	f.Boundary = append(f.Boundary, mustPoint(t, 10, 10))

	c := f.Clone()
	c.Boundary[0].Latitude = 99

	assert.Equal(t, 10.0, f.Boundary[0].Latitude)
}

func TestNewSession_SingleGroundFloor(t *testing.T) {
	s := NewSession("site visit")
	require.Len(t, s.Floors, 1)
	assert.Equal(t, 0, s.Floors[0].Level)
	assert.Equal(t, 0, s.ActiveFloor)
}

func TestParseSpaceCategory(t *testing.T) {
	c, err := ParseSpaceCategory("kitchen")
	require.NoError(t, err)
	assert.Equal(t, SpaceKitchen, c)

	_, err = ParseSpaceCategory("garage")
	assert.Error(t, err)
}

func TestReport_Validate(t *testing.T) {
	r := &Report{
		OverallScore: 72,
		Spaces: []SpaceFinding{
			{Category: SpaceKitchen, Status: StatusGood},
		},
	}
	assert.NoError(t, r.Validate())

	r.OverallScore = 101
	assert.Error(t, r.Validate())

	r.OverallScore = 50
	r.Spaces[0].Status = "excellent"
	assert.Error(t, r.Validate())

	r.Spaces[0].Status = StatusPoor
	r.Spaces[0].Category = "garage"
	assert.Error(t, r.Validate())
}
