package capture

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dwellscan/survey-cli/internal/model"
)

// Stage is the current step of the capture workflow.
type Stage string

const (
	StageWelcome         Stage = "welcome"
	StageBoundaryCapture Stage = "boundary_capture"
	StageSpaceTagging    Stage = "space_tagging"
	StageAnalyzing       Stage = "analyzing"
	StageReport          Stage = "report"
)

// minBoundaryCorners is the smallest boundary that forms a polygon.
const minBoundaryCorners = 3

var (
	// ErrNotAllowed indicates an operation that is illegal in the current
	// workflow stage.
	ErrNotAllowed = eris.New("capture: operation not allowed in current stage")

	// ErrIncompleteBoundary indicates a floor with fewer than three boundary
	// corners blocking a stage transition.
	ErrIncompleteBoundary = eris.New("capture: floor boundary needs at least 3 corners")

	// ErrNoSpaces indicates finalization was attempted before any space was
	// tagged on the active floor.
	ErrNoSpaces = eris.New("capture: active floor has no tagged spaces")
)

// Workflow is the capture state machine. It owns stage transitions and gates
// every Survey mutation; mutations arriving in the wrong stage are rejected
// here and never reach the Survey. All methods are safe for concurrent use
// so HTTP handlers and sensor callbacks serialize through one lock.
type Workflow struct {
	mu         sync.Mutex
	survey     *Survey
	stage      Stage
	generation uint64
}

// NewWorkflow creates a workflow in the welcome stage around the given
// survey.
func NewWorkflow(s *Survey) *Workflow {
	return &Workflow{survey: s, stage: StageWelcome}
}

// Stage returns the current workflow stage.
func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Begin starts a capture session, moving from welcome to boundary capture.
func (w *Workflow) Begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageWelcome {
		return eris.Wrapf(ErrNotAllowed, "begin from %s", w.stage)
	}
	w.stage = StageBoundaryCapture
	return nil
}

// AdvanceToTagging moves the active floor from boundary capture to space
// tagging. Requires at least three boundary corners.
func (w *Workflow) AdvanceToTagging() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageBoundaryCapture {
		return eris.Wrapf(ErrNotAllowed, "advance from %s", w.stage)
	}
	f := w.survey.activeRef()
	if len(f.Boundary) < minBoundaryCorners {
		return eris.Wrapf(ErrIncompleteBoundary, "floor %q has %d", f.Name, len(f.Boundary))
	}
	w.stage = StageSpaceTagging
	return nil
}

// BackToBoundary returns from space tagging to boundary capture. Navigation
// back is always allowed from tagging.
func (w *Workflow) BackToBoundary() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageSpaceTagging {
		return eris.Wrapf(ErrNotAllowed, "back from %s", w.stage)
	}
	w.stage = StageBoundaryCapture
	return nil
}

// AddFloor appends a new empty floor, activates it, and drops back to
// boundary capture for that floor.
func (w *Workflow) AddFloor(name string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageBoundaryCapture && w.stage != StageSpaceTagging {
		return 0, eris.Wrapf(ErrNotAllowed, "add floor from %s", w.stage)
	}
	idx := w.survey.AddFloor(name)
	w.stage = StageBoundaryCapture
	return idx, nil
}

// SwitchFloor changes the active floor. The stage follows the new floor's
// own progress: under three corners puts it in boundary capture, otherwise
// space tagging.
func (w *Workflow) SwitchFloor(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageBoundaryCapture && w.stage != StageSpaceTagging {
		return eris.Wrapf(ErrNotAllowed, "switch floor from %s", w.stage)
	}
	if err := w.survey.SwitchFloor(index); err != nil {
		return err
	}
	if len(w.survey.activeRef().Boundary) < minBoundaryCorners {
		w.stage = StageBoundaryCapture
	} else {
		w.stage = StageSpaceTagging
	}
	return nil
}

// AppendBoundary adds a boundary corner; legal only during boundary capture.
func (w *Workflow) AppendBoundary(p model.GeoPoint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageBoundaryCapture {
		return eris.Wrapf(ErrNotAllowed, "append boundary in %s", w.stage)
	}
	w.survey.AppendBoundary(p)
	return nil
}

// AppendSpace adds a classified marker; legal only during space tagging.
func (w *Workflow) AppendSpace(category model.SpaceCategory, p model.GeoPoint) (model.SpacePoint, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageSpaceTagging {
		return model.SpacePoint{}, eris.Wrapf(ErrNotAllowed, "append space in %s", w.stage)
	}
	if !category.Valid() {
		return model.SpacePoint{}, eris.Errorf("capture: unknown space category %q", category)
	}
	return w.survey.AppendSpace(category, p), nil
}

// Undo removes the last-appended item from the collection the current stage
// is populating. Undoing with an empty collection is a no-op.
func (w *Workflow) Undo() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.stage {
	case StageBoundaryCapture:
		w.survey.UndoBoundary()
		return nil
	case StageSpaceTagging:
		w.survey.UndoSpace()
		return nil
	default:
		return eris.Wrapf(ErrNotAllowed, "undo in %s", w.stage)
	}
}

// RepositionBoundary drags a boundary corner to new coordinates. Legal in
// both per-floor stages so corrections stay possible while tagging.
func (w *Workflow) RepositionBoundary(index int, lat, lng float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageBoundaryCapture && w.stage != StageSpaceTagging {
		return eris.Wrapf(ErrNotAllowed, "reposition in %s", w.stage)
	}
	return w.survey.RepositionBoundary(index, lat, lng)
}

// RepositionSpace drags a space marker to new coordinates.
func (w *Workflow) RepositionSpace(id string, lat, lng float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageSpaceTagging {
		return eris.Wrapf(ErrNotAllowed, "reposition space in %s", w.stage)
	}
	return w.survey.RepositionSpace(id, lat, lng)
}

// FinalizeAnalysis validates the whole session and enters the analyzing
// stage. Every floor needs a complete boundary and the active floor at least
// one tagged space; validation failures leave the stage and all captured
// data untouched. The returned generation must be passed back to
// AnalysisSucceeded or AnalysisFailed so outcomes from a session that was
// reset in the meantime are discarded.
func (w *Workflow) FinalizeAnalysis() (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageSpaceTagging {
		return 0, eris.Wrapf(ErrNotAllowed, "finalize from %s", w.stage)
	}
	for i := range w.survey.floors {
		f := &w.survey.floors[i]
		if len(f.Boundary) < minBoundaryCorners {
			return 0, eris.Wrapf(ErrIncompleteBoundary, "floor %q has %d", f.Name, len(f.Boundary))
		}
	}
	if len(w.survey.activeRef().Spaces) == 0 {
		return 0, ErrNoSpaces
	}
	w.generation++
	w.stage = StageAnalyzing
	return w.generation, nil
}

// AnalysisSucceeded completes the analyzing stage. Returns false when the
// outcome is stale (the workflow was reset or is no longer analyzing), in
// which case it is discarded.
func (w *Workflow) AnalysisSucceeded(generation uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageAnalyzing || generation != w.generation {
		zap.L().Debug("capture: discarding stale analysis success",
			zap.Uint64("generation", generation),
			zap.String("stage", string(w.stage)),
		)
		return false
	}
	w.stage = StageReport
	return true
}

// AnalysisFailed returns the workflow to space tagging with all captured
// data intact. Returns false for stale outcomes.
func (w *Workflow) AnalysisFailed(generation uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageAnalyzing || generation != w.generation {
		zap.L().Debug("capture: discarding stale analysis failure",
			zap.Uint64("generation", generation),
			zap.String("stage", string(w.stage)),
		)
		return false
	}
	w.stage = StageSpaceTagging
	return true
}

// Reset discards the entire session and returns to the welcome stage. Safe
// from any stage, including mid-analysis; the generation bump invalidates
// any in-flight analysis outcome.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.generation++
	w.stage = StageWelcome
	w.survey.Reset()
}

// ActiveFloor returns a deep copy of the active floor.
func (w *Workflow) ActiveFloor() model.Floor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.survey.Active()
}

// ActiveIndex returns the active floor index.
func (w *Workflow) ActiveIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.survey.ActiveIndex()
}

// Floors returns a deep copy of the floor collection, isolated from later
// edits; this is the snapshot handed to the analysis collaborator.
func (w *Workflow) Floors() []model.Floor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.survey.Floors()
}
