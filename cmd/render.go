package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dwellscan/survey-cli/internal/capture"
	"github.com/dwellscan/survey-cli/internal/projection"
)

const (
	renderCols = 60
	renderRows = 24
)

// renderFloor draws the active floor as an ASCII grid: digits for boundary
// corners in capture order, letters for space markers.
func renderFloor(out io.Writer, ctrl *capture.Controller, wf *capture.Workflow) {
	floor := wf.ActiveFloor()
	fmt.Fprintf(out, "Floor %q: %d corners, %d spaces, zoom %.2f\n",
		floor.Name, len(floor.Boundary), len(floor.Spaces), ctrl.Zoom())

	view, err := ctrl.View()
	if err != nil {
		if eris.Is(err, projection.ErrNoContent) {
			fmt.Fprintln(out, "(nothing captured yet)")
			return
		}
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}

	grid := make([][]byte, renderRows)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(".", renderCols))
	}

	place := func(x, y float64, marker byte) {
		col := int(x / projection.ViewportSize * renderCols)
		row := int(y / projection.ViewportSize * renderRows)
		if col < 0 || col >= renderCols || row < 0 || row >= renderRows {
			return
		}
		grid[row][col] = marker
	}

	for i, p := range floor.Boundary {
		x, y := view.ProjectPoint(p)
		place(x, y, byte('1'+i%9))
	}
	for _, s := range floor.Spaces {
		x, y := view.ProjectPoint(s.Location)
		place(x, y, strings.ToUpper(string(s.Category))[0])
	}

	for _, row := range grid {
		fmt.Fprintln(out, string(row))
	}
	for _, s := range floor.Spaces {
		fmt.Fprintf(out, "  %c = %s\n", strings.ToUpper(string(s.Category))[0], s.Category)
	}
}
