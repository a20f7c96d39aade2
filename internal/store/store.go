package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/dwellscan/survey-cli/internal/model"
)

// ErrNotFound is returned when a session or report does not exist.
var ErrNotFound = eris.New("store: not found")

// SessionFilter specifies criteria for listing sessions.
type SessionFilter struct {
	Name   string `json:"name,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for survey sessions and their
// generated reports.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, session *model.Session) error
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]model.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Reports
	SaveReport(ctx context.Context, sessionID string, report *model.Report) error
	GetReport(ctx context.Context, sessionID string) (*model.Report, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
