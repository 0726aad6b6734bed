package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/graphmap/pkg/buildinfo"
	"github.com/matzehuels/graphmap/pkg/enrich"
	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/export"
	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/pipeline"
	"github.com/matzehuels/graphmap/pkg/store"
)

// RenderRequest is the body of POST /render.
type RenderRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
	// AttributesCSV is an optional attribute table merged into the nodes.
	AttributesCSV string `json:"attributes_csv,omitempty"`
	KeyColumn     string `json:"key_column,omitempty"`
}

// RenderResponse is the body returned by POST /render.
type RenderResponse struct {
	RunID     string        `json:"run_id"`
	GraphHash string        `json:"graph_hash"`
	CacheHit  bool          `json:"cache_hit"`
	Duration  time.Duration `json:"duration"`
	Summary   store.Summary `json:"summary"`
	Artifacts []string      `json:"artifacts"`
	Map       graph.Map     `json:"map"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Get().Version})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := RenderRequest{Options: s.opts.Defaults.Unvalidated()}
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	req.Options.Logger = s.logger

	var csvWarnings []*apperrors.Error
	if req.AttributesCSV != "" {
		table, warnings, err := enrich.ReadCSV(strings.NewReader(req.AttributesCSV), enrich.Options{KeyColumn: req.KeyColumn})
		if err != nil {
			writeError(w, err)
			return
		}
		req.Options.Attributes = table
		csvWarnings = warnings
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "request cancelled while queued"))
		return
	}
	defer s.sem.Release(1)
	start := time.Now()
	res, err := s.runner.Execute(ctx, req.Graph, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	m := res.Map
	for _, e := range csvWarnings {
		m.Warnings = append(m.Warnings, graph.Warning{Code: string(e.Code), Message: e.Message, IDs: e.IDs})
	}

	run := store.NewRun(res.GraphHash)
	m.RunID = run.ID
	files, err := export.Write(ctx, m, s.store.ArtifactDir(run.ID), export.Options{
		Map:    true,
		DOT:    s.opts.DOT,
		SVG:    s.opts.SVG,
		Logger: s.logger,
	})
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "write artifacts"))
		return
	}

	run.Duration = time.Since(start)
	run.Map = &m
	run.Artifacts = slashPaths(files.All())
	run.Summary = store.Summary{
		Nodes:       len(m.Nodes),
		Territories: len(m.Territories),
		Colors:      m.Coloring.Colors,
		Warnings:    len(m.Warnings),
		Fallback:    m.Coloring.Fallback,
		CacheHit:    res.CacheHit,
	}
	if err := s.store.Save(ctx, run); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "save run"))
		return
	}

	writeJSON(w, http.StatusCreated, RenderResponse{
		RunID:     run.ID,
		GraphHash: run.GraphHash,
		CacheHit:  res.CacheHit,
		Duration:  run.Duration,
		Summary:   run.Summary,
		Artifacts: run.Artifacts,
		Map:       m,
	})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "*")
	if err := apperrors.ValidatePath(name); err != nil {
		writeError(w, err)
		return
	}
	name = path.Clean(name)
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	found := false
	for _, a := range run.Artifacts {
		if a == name {
			found = true
			break
		}
	}
	if !found {
		writeError(w, apperrors.New(apperrors.ErrCodeNotFound, "run %s has no artifact %q", id, name))
		return
	}
	switch {
	case strings.HasSuffix(name, ".geojson"):
		w.Header().Set("Content-Type", "application/geo+json")
	case strings.HasSuffix(name, ".dot"):
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	}
	http.ServeFile(w, r, filepath.Join(s.store.ArtifactDir(id), filepath.FromSlash(name)))
}

func slashPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return out
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
	IDs     []string       `json:"ids,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	switch {
	case errors.Is(err, store.ErrNotFound):
		code = apperrors.ErrCodeNotFound
	case errors.Is(err, store.ErrInvalidID):
		code = apperrors.ErrCodeInvalidInput
	case code == "":
		code = apperrors.ErrCodeInternal
	}
	var maxErr *http.MaxBytesError
	status := statusOf(code)
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, map[string]errorBody{"error": {
		Code:    code,
		Message: apperrors.UserMessage(err),
		IDs:     apperrors.GetIDs(err),
	}})
}

func statusOf(code apperrors.Code) int {
	switch code.Category() {
	case apperrors.CategoryInput:
		return http.StatusBadRequest
	case apperrors.CategoryColoring:
		return http.StatusUnprocessableEntity
	case apperrors.CategoryResource:
		return http.StatusNotFound
	}
	if code == apperrors.ErrCodeUnsupported {
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
