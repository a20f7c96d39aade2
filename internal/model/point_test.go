package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint_Valid(t *testing.T) {
	p, err := NewGeoPoint(10.5, 76.2, 135)
	require.NoError(t, err)
	assert.Equal(t, 10.5, p.Latitude)
	assert.Equal(t, 76.2, p.Longitude)
	assert.Equal(t, 135.0, p.Heading)
	assert.False(t, p.CapturedAt.IsZero())
}

func TestNewGeoPoint_InvalidCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
	}{
		{"latitude above range", 90.01, 0},
		{"latitude below range", -91, 0},
		{"longitude above range", 0, 180.5},
		{"longitude below range", 0, -181},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeoPoint(tt.lat, tt.lng, 0)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidCoordinate))
		})
	}
}

func TestNewGeoPoint_BoundaryValues(t *testing.T) {
	for _, c := range [][2]float64{{90, 180}, {-90, -180}, {0, 0}} {
		_, err := NewGeoPoint(c[0], c[1], 0)
		assert.NoError(t, err)
	}
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.9, 359.9},
		{360, 0},
		{725, 5},
		{-90, 270},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeHeading(tt.in), 1e-9)
	}
}

func TestMovedTo_PreservesHeadingAndTime(t *testing.T) {
	p, err := NewGeoPoint(10.4, 10.4, 135)
	require.NoError(t, err)

	moved, err := p.MovedTo(10.5, 10.5)
	require.NoError(t, err)
	assert.Equal(t, 10.5, moved.Latitude)
	assert.Equal(t, 10.5, moved.Longitude)
	assert.Equal(t, p.Heading, moved.Heading)
	assert.Equal(t, p.CapturedAt, moved.CapturedAt)
}

func TestMovedTo_RejectsInvalid(t *testing.T) {
	p, err := NewGeoPoint(0, 0, 0)
	require.NoError(t, err)
	_, err = p.MovedTo(120, 0)
	assert.True(t, eris.Is(err, ErrInvalidCoordinate))
}
