package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dwellscan/survey-cli/internal/capture"
	"github.com/dwellscan/survey-cli/internal/model"
	"github.com/dwellscan/survey-cli/internal/store"
	"github.com/dwellscan/survey-cli/pkg/analysis"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the capture API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		api := &captureAPI{
			store:    st,
			sessions: make(map[string]*liveSession),
			analyzer: analysis.NewClient(cfg.Analysis.Key,
				analysis.WithModel(cfg.Analysis.Model),
				analysis.WithMaxTokens(int64(cfg.Analysis.MaxTokens)),
			),
			language: cfg.Locale.Language,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			return srv.Shutdown(ctx)
		})
		return g.Wait()
	},
}

// liveSession pairs a persisted session with its in-memory workflow. mu
// serializes handlers for the same session: the workflow has its own lock,
// but the session snapshot written by persist does not.
type liveSession struct {
	mu      sync.Mutex
	session model.Session
	wf      *capture.Workflow
}

type captureAPI struct {
	store    store.Store
	analyzer analysis.Client
	language string

	mu       sync.Mutex
	sessions map[string]*liveSession
}

func (a *captureAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", a.createSession)
		r.Get("/", a.listSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.getSession)
			r.Delete("/", a.deleteSession)
			r.Post("/boundary", a.appendBoundary)
			r.Post("/spaces", a.appendSpace)
			r.Post("/undo", a.undo)
			r.Post("/advance", a.advance)
			r.Post("/back", a.back)
			r.Post("/floors", a.addFloor)
			r.Post("/switch", a.switchFloor)
			r.Post("/reposition", a.reposition)
			r.Post("/analyze", a.analyze)
			r.Post("/reset", a.reset)
			r.Get("/report", a.getReport)
		})
	})

	return r
}

// live returns the in-memory workflow for a session, loading it from the
// store on first access.
func (a *captureAPI) live(r *http.Request) (*liveSession, error) {
	id := chi.URLParam(r, "id")

	a.mu.Lock()
	defer a.mu.Unlock()
	if ls, ok := a.sessions[id]; ok {
		return ls, nil
	}

	stored, err := a.store.GetSession(r.Context(), id)
	if err != nil {
		return nil, err
	}
	survey := capture.NewSurvey()
	survey.Load(stored.Floors, stored.ActiveFloor)
	wf := capture.NewWorkflow(survey)
	if err := wf.Begin(); err != nil {
		return nil, err
	}
	if stored.ActiveFloor >= 0 && stored.ActiveFloor < len(stored.Floors) &&
		len(stored.Floors[stored.ActiveFloor].Boundary) >= 3 {
		if err := wf.AdvanceToTagging(); err != nil {
			return nil, err
		}
	}
	ls := &liveSession{session: *stored, wf: wf}
	a.sessions[id] = ls
	return ls, nil
}

func (a *captureAPI) persist(r *http.Request, ls *liveSession) {
	ls.session.Floors = ls.wf.Floors()
	ls.session.ActiveFloor = ls.wf.ActiveIndex()
	if err := a.store.SaveSession(r.Context(), &ls.session); err != nil {
		zap.L().Error("serve: persist session", zap.String("session", ls.session.ID), zap.Error(err))
	}
}

func (a *captureAPI) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBadRequest)
		return
	}
	if req.Name == "" {
		req.Name = "Survey"
	}

	session := model.NewSession(req.Name)
	wf := capture.NewWorkflow(capture.NewSurvey())
	if err := wf.Begin(); err != nil {
		writeError(w, err)
		return
	}
	if err := a.store.CreateSession(r.Context(), &session); err != nil {
		writeError(w, err)
		return
	}

	a.mu.Lock()
	a.sessions[session.ID] = &liveSession{session: session, wf: wf}
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, sessionState(&session, wf))
}

func (a *captureAPI) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.store.ListSessions(r.Context(), store.SessionFilter{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (a *captureAPI) getSession(w http.ResponseWriter, r *http.Request) {
	ls, err := a.live(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, sessionState(&ls.session, ls.wf))
}

func (a *captureAPI) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.store.DeleteSession(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	a.mu.Lock()
	delete(a.sessions, id)
	a.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type pointRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Heading   float64 `json:"heading"`
}

func (a *captureAPI) appendBoundary(w http.ResponseWriter, r *http.Request) {
	ls, err := a.live(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBadRequest)
		return
	}
	p, err := model.NewGeoPoint(req.Latitude, req.Longitude, req.Heading)
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.wf.AppendBoundary(p); err != nil {
		writeError(w, err)
		return
	}
	a.persist(r, ls)
	writeJSON(w, http.StatusOK, sessionState(&ls.session, ls.wf))
}

func (a *captureAPI) appendSpace(w http.ResponseWriter, r *http.Request) {
	ls, err := a.live(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		pointRequest
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBadRequest)
		return
	}
	category, err := model.ParseSpaceCategory(req.Category)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	p, err := model.NewGeoPoint(req.Latitude, req.Longitude, req.Heading)
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	sp, err := ls.wf.AppendSpace(category, p)
	if err != nil {
		writeError(w, err)
		return
	}
	a.persist(r, ls)
	writeJSON(w, http.StatusOK, sp)
}

func (a *captureAPI) undo(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(ls *liveSession) error { return ls.wf.Undo() })
}

func (a *captureAPI) advance(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(ls *liveSession) error { return ls.wf.AdvanceToTagging() })
}

func (a *captureAPI) back(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(ls *liveSession) error { return ls.wf.BackToBoundary() })
}

func (a *captureAPI) addFloor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
	a.mutate(w, r, func(ls *liveSession) error {
		_, err := ls.wf.AddFloor(req.Name)
		return err
	})
}

func (a *captureAPI) switchFloor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBadRequest)
		return
	}
	a.mutate(w, r, func(ls *liveSession) error { return ls.wf.SwitchFloor(req.Index) })
}

func (a *captureAPI) reposition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind      string  `json:"kind"`
		Index     int     `json:"index"`
		ID        string  `json:"id"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBadRequest)
		return
	}
	a.mutate(w, r, func(ls *liveSession) error {
		switch req.Kind {
		case "boundary":
			return ls.wf.RepositionBoundary(req.Index, req.Latitude, req.Longitude)
		case "space":
			return ls.wf.RepositionSpace(req.ID, req.Latitude, req.Longitude)
		default:
			return eris.Errorf("unknown marker kind %q", req.Kind)
		}
	})
}

// reset discards the session's captured data. The workflow lands in the
// welcome stage after Reset; the API has no separate initialization call,
// so Begin runs immediately and clients always see boundary_capture.
func (a *captureAPI) reset(w http.ResponseWriter, r *http.Request) {
	ls, err := a.live(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.wf.Reset()
	if err := ls.wf.Begin(); err != nil {
		writeError(w, err)
		return
	}
	a.persist(r, ls)
	writeJSON(w, http.StatusOK, sessionState(&ls.session, ls.wf))
}

// analyze finalizes the session and runs analysis in the background. The
// workflow's generation counter discards the outcome if the session is
// reset while the request is in flight.
func (a *captureAPI) analyze(w http.ResponseWriter, r *http.Request) {
	ls, err := a.live(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	generation, err := ls.wf.FinalizeAnalysis()
	if err != nil {
		ls.mu.Unlock()
		writeError(w, err)
		return
	}
	a.persist(r, ls)
	sessionID := ls.session.ID
	placeName := ls.session.Name
	ls.mu.Unlock()

	floors := ls.wf.Floors()
	go func() {
		// Detached from the request context; the generation check handles
		// sessions reset mid-flight.
		ctx := context.Background()
		report, err := a.analyzer.Analyze(ctx, analysis.Request{
			Floors:    floors,
			Language:  a.language,
			PlaceName: placeName,
		})
		if err != nil {
			zap.L().Error("serve: analysis failed", zap.String("session", sessionID), zap.Error(err))
			ls.wf.AnalysisFailed(generation)
			return
		}
		if !ls.wf.AnalysisSucceeded(generation) {
			return
		}
		if err := a.store.SaveReport(ctx, sessionID, report); err != nil {
			zap.L().Error("serve: save report", zap.String("session", sessionID), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "analyzing"})
}

func (a *captureAPI) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *captureAPI) mutate(w http.ResponseWriter, r *http.Request, fn func(*liveSession) error) {
	ls, err := a.live(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := fn(ls); err != nil {
		writeError(w, err)
		return
	}
	a.persist(r, ls)
	writeJSON(w, http.StatusOK, sessionState(&ls.session, ls.wf))
}

type sessionStateResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Stage       capture.Stage `json:"stage"`
	ActiveFloor int           `json:"active_floor"`
	Floors      []model.Floor `json:"floors"`
}

func sessionState(session *model.Session, wf *capture.Workflow) sessionStateResponse {
	return sessionStateResponse{
		ID:          session.ID,
		Name:        session.Name,
		Stage:       wf.Stage(),
		ActiveFloor: wf.ActiveIndex(),
		Floors:      wf.Floors(),
	}
}

var errBadRequest = eris.New("invalid request body")

// writeError maps domain errors onto HTTP statuses: stage violations are
// conflicts, validation failures are unprocessable, missing rows are 404.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case eris.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case eris.Is(err, capture.ErrNotAllowed):
		status = http.StatusConflict
	case eris.Is(err, capture.ErrIncompleteBoundary),
		eris.Is(err, capture.ErrNoSpaces),
		eris.Is(err, model.ErrInvalidCoordinate):
		status = http.StatusUnprocessableEntity
	case eris.Is(err, store.ErrNotFound), eris.Is(err, capture.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("serve: request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
