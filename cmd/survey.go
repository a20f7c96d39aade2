package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dwellscan/survey-cli/internal/capture"
	"github.com/dwellscan/survey-cli/internal/model"
	"github.com/dwellscan/survey-cli/internal/sensor"
	"github.com/dwellscan/survey-cli/pkg/analysis"
	"github.com/dwellscan/survey-cli/pkg/geocode"
)

var (
	surveyName  string
	surveyPlace string
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Run an interactive capture session",
	Long: `Walks through the capture workflow on the terminal: mark boundary
corners, tag spaces, then finalize for analysis. Points come from the
configured sensor feed, or from the seed coordinate when no feed is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		latest := &sensor.Latest{}
		if cfg.Sensor.Source == "replay" {
			feed, err := sensor.NewReplay(ctx, cfg.Sensor.ReplayPath, cfg.Sensor.Speed)
			if err != nil {
				return err
			}
			defer feed.Close()
			go sensor.Watch(ctx, feed, latest)
		}

		var seed *model.GeoPoint
		if surveyPlace != "" {
			gc := geocode.NewClient(
				geocode.WithBaseURL(cfg.Geocode.BaseURL),
				geocode.WithUserAgent(cfg.Geocode.UserAgent),
				geocode.WithRateLimit(cfg.Geocode.RateLimit),
			)
			result, err := gc.Search(ctx, surveyPlace)
			if err != nil {
				return err
			}
			if !result.Matched {
				return eris.Errorf("place %q not found", surveyPlace)
			}
			p, err := model.NewGeoPoint(result.Latitude, result.Longitude, 0)
			if err != nil {
				return err
			}
			seed = &p
			fmt.Printf("Seeded at %s (%.5f, %.5f)\n", result.DisplayName, p.Latitude, p.Longitude)
		}

		survey := capture.NewSurvey()
		wf := capture.NewWorkflow(survey)
		var source capture.PointSource
		if cfg.Sensor.Source == "replay" {
			source = &capture.SensorSource{Latest: latest}
		} else {
			source = &capture.PointerSource{Latest: latest, Seed: seed}
		}
		ctrl := capture.NewController(wf, source)

		if err := wf.Begin(); err != nil {
			return err
		}

		session := model.NewSession(surveyName)
		fmt.Printf("Session %q started. Type 'help' for commands.\n", session.Name)

		return surveyLoop(ctx, cmd, st, wf, ctrl, &session)
	},
}

func surveyLoop(ctx context.Context, cmd *cobra.Command, st sessionSaver, wf *capture.Workflow, ctrl *capture.Controller, session *model.Session) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	prompt := func() {
		fmt.Fprintf(out, "[%s floor=%d] > ", wf.Stage(), wf.ActiveIndex())
	}

	prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			prompt()
			continue
		}

		var err error
		switch fields[0] {
		case "help":
			fmt.Fprint(out, surveyHelp)

		case "mark":
			// Center tap; the active strategy resolves the location.
			err = ctrl.Capture(capture.Event{X: 100, Y: 100})

		case "space":
			if len(fields) < 2 {
				err = eris.New("usage: space <category>")
				break
			}
			var category model.SpaceCategory
			category, err = model.ParseSpaceCategory(fields[1])
			if err != nil {
				break
			}
			if err = ctrl.ArmCategory(category); err != nil {
				break
			}
			err = ctrl.Capture(capture.Event{X: 100, Y: 100})

		case "undo":
			err = ctrl.Undo()

		case "next":
			err = wf.AdvanceToTagging()

		case "back":
			err = wf.BackToBoundary()

		case "floor":
			name := strings.TrimSpace(strings.TrimPrefix(line, "floor"))
			var idx int
			idx, err = wf.AddFloor(name)
			if err == nil {
				fmt.Fprintf(out, "Added floor %d\n", idx)
			}

		case "switch":
			if len(fields) < 2 {
				err = eris.New("usage: switch <index>")
				break
			}
			var idx int
			idx, err = strconv.Atoi(fields[1])
			if err != nil {
				break
			}
			err = wf.SwitchFloor(idx)

		case "zoom":
			if len(fields) < 2 {
				err = eris.New("usage: zoom <factor>")
				break
			}
			var z float64
			z, err = strconv.ParseFloat(fields[1], 64)
			if err != nil {
				break
			}
			fmt.Fprintf(out, "zoom %.2f\n", ctrl.SetZoom(z))

		case "status", "map":
			renderFloor(out, ctrl, wf)

		case "save":
			session.Floors = wf.Floors()
			session.ActiveFloor = wf.ActiveIndex()
			err = st.SaveSession(ctx, session)
			if err == nil {
				fmt.Fprintf(out, "Saved session %s\n", session.ID)
			}

		case "done":
			err = finalizeSurvey(ctx, out, st, wf, session)

		case "reset":
			wf.Reset()
			if beginErr := wf.Begin(); beginErr != nil {
				err = beginErr
			}
			fmt.Fprintln(out, "Session cleared.")

		case "quit", "exit":
			session.Floors = wf.Floors()
			session.ActiveFloor = wf.ActiveIndex()
			if err := st.SaveSession(ctx, session); err != nil {
				zap.L().Warn("survey: save on exit", zap.Error(err))
			}
			return nil

		default:
			err = eris.Errorf("unknown command %q, try 'help'", fields[0])
		}

		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		prompt()
	}
	return scanner.Err()
}

// sessionSaver is the slice of the store the interactive loop needs.
type sessionSaver interface {
	SaveSession(ctx context.Context, session *model.Session) error
	SaveReport(ctx context.Context, sessionID string, report *model.Report) error
}

func finalizeSurvey(ctx context.Context, out interface{ Write([]byte) (int, error) }, st sessionSaver, wf *capture.Workflow, session *model.Session) error {
	generation, err := wf.FinalizeAnalysis()
	if err != nil {
		return err
	}

	session.Floors = wf.Floors()
	session.ActiveFloor = wf.ActiveIndex()
	if err := st.SaveSession(ctx, session); err != nil {
		wf.AnalysisFailed(generation)
		return err
	}

	client := analysis.NewClient(cfg.Analysis.Key,
		analysis.WithModel(cfg.Analysis.Model),
		analysis.WithMaxTokens(int64(cfg.Analysis.MaxTokens)),
	)
	report, err := client.Analyze(ctx, analysis.Request{
		Floors:    session.Floors,
		Language:  cfg.Locale.Language,
		PlaceName: session.Name,
	})
	if err != nil {
		wf.AnalysisFailed(generation)
		return err
	}
	if !wf.AnalysisSucceeded(generation) {
		return nil
	}

	if err := st.SaveReport(ctx, session.ID, report); err != nil {
		return err
	}

	fmt.Fprintf(out, "Overall score: %d\n%s\n", report.OverallScore, report.Summary)
	for _, f := range report.Spaces {
		fmt.Fprintf(out, "  %-16s %-5s %s\n", f.Category, f.Status, f.Observation)
	}
	return nil
}

const surveyHelp = `commands:
  mark               capture a boundary corner (or space when armed)
  space <category>   tag a space at the current location
  undo               remove the last point of this stage
  next               advance to space tagging
  back               return to boundary capture
  floor [name]       add a new floor and switch to it
  switch <index>     switch active floor
  zoom <factor>      set zoom (0.4 to 8)
  status             render the active floor
  save               persist the session
  done               finalize and run analysis
  reset              discard everything and start over
  quit               save and exit
`

func init() {
	surveyCmd.Flags().StringVar(&surveyName, "name", "Survey", "session name")
	surveyCmd.Flags().StringVar(&surveyPlace, "place", "", "free-text address used to seed the first point")
	rootCmd.AddCommand(surveyCmd)
}
