package store

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwellscan/survey-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testSession(t *testing.T, name string) model.Session {
	t.Helper()
	session := model.NewSession(name)
	floor := &session.Floors[0]
	for _, c := range [][2]float64{{12.97, 77.59}, {12.97, 77.60}, {12.98, 77.60}} {
		p, err := model.NewGeoPoint(c[0], c[1], 90)
		require.NoError(t, err)
		floor.Boundary = append(floor.Boundary, p)
	}
	loc, err := model.NewGeoPoint(12.975, 77.595, 180)
	require.NoError(t, err)
	floor.Spaces = append(floor.Spaces, model.NewSpacePoint(model.SpaceKitchen, loc))
	return session
}

func TestSQLiteStore_SessionRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	session := testSession(t, "Hillside Villa")
	require.NoError(t, s.CreateSession(ctx, &session))

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hillside Villa", got.Name)
	require.Len(t, got.Floors, 1)
	assert.Len(t, got.Floors[0].Boundary, 3)
	require.Len(t, got.Floors[0].Spaces, 1)
	assert.Equal(t, model.SpaceKitchen, got.Floors[0].Spaces[0].Category)
	assert.Equal(t, session.Floors[0].Spaces[0].ID, got.Floors[0].Spaces[0].ID)
}

func TestSQLiteStore_SaveSessionUpserts(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	session := testSession(t, "Hillside Villa")
	require.NoError(t, s.SaveSession(ctx, &session))

	session.Name = "Hillside Villa Revised"
	session.Floors = append(session.Floors, model.NewFloor("Floor 1", 1))
	session.ActiveFloor = 1
	require.NoError(t, s.SaveSession(ctx, &session))

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hillside Villa Revised", got.Name)
	assert.Len(t, got.Floors, 2)
	assert.Equal(t, 1, got.ActiveFloor)
}

func TestSQLiteStore_GetSessionNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetSession(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteStore_ListSessions(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first := testSession(t, "Plot A")
	second := testSession(t, "Plot B")
	second.UpdatedAt = first.UpdatedAt.Add(time.Minute)
	require.NoError(t, s.CreateSession(ctx, &first))
	require.NoError(t, s.CreateSession(ctx, &second))

	all, err := s.ListSessions(ctx, SessionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Plot B", all[0].Name, "most recently updated first")

	filtered, err := s.ListSessions(ctx, SessionFilter{Name: "Plot A"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)

	limited, err := s.ListSessions(ctx, SessionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_DeleteSession(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	session := testSession(t, "Plot A")
	require.NoError(t, s.CreateSession(ctx, &session))
	require.NoError(t, s.DeleteSession(ctx, session.ID))

	_, err := s.GetSession(ctx, session.ID)
	assert.True(t, eris.Is(err, ErrNotFound))

	err = s.DeleteSession(ctx, session.ID)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteStore_ReportRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	session := testSession(t, "Plot A")
	require.NoError(t, s.CreateSession(ctx, &session))

	report := &model.Report{
		OverallScore: 64,
		Summary:      "Kitchen placement needs attention",
		Spaces: []model.SpaceFinding{
			{Category: model.SpaceKitchen, Status: model.StatusFair, Observation: "South-east corner", FloorName: "Ground Floor"},
		},
		Language:    "en",
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.SaveReport(ctx, session.ID, report))

	got, err := s.GetReport(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 64, got.OverallScore)
	require.Len(t, got.Spaces, 1)
	assert.Equal(t, model.StatusFair, got.Spaces[0].Status)

	report.OverallScore = 70
	require.NoError(t, s.SaveReport(ctx, session.ID, report))
	got, err = s.GetReport(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, got.OverallScore)
}

func TestSQLiteStore_GetReportNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetReport(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}
