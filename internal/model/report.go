package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// SpaceStatus grades a single space in the compliance report.
type SpaceStatus string

const (
	StatusGood SpaceStatus = "good"
	StatusFair SpaceStatus = "fair"
	StatusPoor SpaceStatus = "poor"
)

// SpaceFinding is the per-space entry of a compliance report.
type SpaceFinding struct {
	Category    SpaceCategory `json:"category"`
	Status      SpaceStatus   `json:"status"`
	Observation string        `json:"observation"`
	Remedy      string        `json:"remedy,omitempty"`
	FloorName   string        `json:"floor_name,omitempty"`
}

// Report is the structured compliance report returned by the analysis
// collaborator.
type Report struct {
	OverallScore    int            `json:"overall_score"`
	Summary         string         `json:"summary"`
	Spaces          []SpaceFinding `json:"spaces"`
	GeneralRemedies []string       `json:"general_remedies,omitempty"`
	Language        string         `json:"language,omitempty"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// Validate checks the structural invariants of a parsed report.
func (r *Report) Validate() error {
	if r.OverallScore < 0 || r.OverallScore > 100 {
		return eris.Errorf("model: report score %d out of range [0,100]", r.OverallScore)
	}
	for i, s := range r.Spaces {
		switch s.Status {
		case StatusGood, StatusFair, StatusPoor:
		default:
			return eris.Errorf("model: report space %d has unknown status %q", i, s.Status)
		}
		if !s.Category.Valid() {
			return eris.Errorf("model: report space %d has unknown category %q", i, s.Category)
		}
	}
	return nil
}
